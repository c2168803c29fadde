//go:build e2e

package e2e

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// startFixture serves the synthetic conferencing UI. Query parameters on the
// page URL control its behavior:
//
//	echo=0        skip the echo-test dialog (server-side disabled)
//	echo_delay=N  milliseconds before the echo-test button renders
//	fail_audio=N  first N microphone joins verify as not connected
//	ambiguous=1   failed joins show neither mute toggle nor indicator
//	muted=1       the mic connects muted (toggle reads "Unmute")
func startFixture(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, fixtureHTML)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const fixtureHTML = `<!DOCTYPE html>
<html>
<head><title>Conference Fixture</title></head>
<body>
  <div id="modal" class="ReactModal__Overlay">
    <button aria-label="Microphone">Microphone</button>
    <button aria-label="Listen only">Listen only</button>
  </div>
  <div id="main"></div>
  <script>
    const params = new URLSearchParams(location.search);
    const echoDelay = parseInt(params.get('echo_delay') || '150', 10);
    const withEcho = params.get('echo') !== '0';
    const failAudio = parseInt(params.get('fail_audio') || '0', 10);
    const ambiguous = params.get('ambiguous') === '1';
    const startMuted = params.get('muted') === '1';

    let audioAttempts = 0;
    window.__unmuted = false;
    window.__webcamShared = false;

    const modal = document.getElementById('modal');
    const main = document.getElementById('main');

    function el(tag, attrs, text) {
      const e = document.createElement(tag);
      for (const [k, v] of Object.entries(attrs || {})) e.setAttribute(k, v);
      if (text) e.textContent = text;
      return e;
    }

    modal.querySelector('[aria-label="Microphone"]').addEventListener('click', () => {
      audioAttempts++;
      if (!withEcho) {
        setTimeout(() => closeModal(true), echoDelay);
        return;
      }
      setTimeout(() => {
        if (modal.querySelector('[data-test="joinEchoTestButton"]')) return;
        const b = el('button', {'data-test': 'joinEchoTestButton', 'aria-label': 'Join audio'}, 'Join audio');
        b.addEventListener('click', () => closeModal(true));
        modal.appendChild(b);
      }, echoDelay);
    });

    modal.querySelector('[aria-label="Listen only"]').addEventListener('click', () => closeModal(false));

    function closeModal(withMic) {
      modal.style.display = 'none';
      renderMain(withMic);
    }

    function reopenModal() {
      main.innerHTML = '';
      const echo = modal.querySelector('[data-test="joinEchoTestButton"]');
      if (echo) echo.remove();
      modal.style.display = '';
    }

    function renderMain(withMic) {
      main.innerHTML = '';
      main.appendChild(el('button', {
        'data-test': 'userListToggleButton',
        'aria-label': 'Users and messages toggle'
      }, 'Users'));

      if (withMic) {
        if (audioAttempts <= failAudio) {
          if (!ambiguous) {
            const ja = el('button', {'data-test': 'joinAudio', 'aria-label': 'Join audio'}, 'Join audio');
            ja.addEventListener('click', reopenModal);
            main.appendChild(ja);
          }
        } else {
          const label = startMuted ? 'Unmute' : 'Mute';
          const toggle = el('button', {'aria-label': label}, label);
          toggle.addEventListener('click', () => {
            window.__unmuted = true;
            toggle.setAttribute('aria-label', 'Mute');
            toggle.textContent = 'Mute';
          });
          main.appendChild(toggle);
        }
      }

      const share = el('button', {'aria-label': 'Share webcam'}, 'Share webcam');
      share.addEventListener('click', () => {
        setTimeout(() => {
          const dlg = el('div', {id: 'camDialog'});
          const sel = el('select', {id: 'setCam', size: '3'});
          sel.appendChild(el('option', {value: 'fake'}, 'Fake camera'));
          dlg.appendChild(sel);
          const start = el('button', {'aria-label': 'Start sharing'}, 'Start sharing');
          start.addEventListener('click', () => {
            window.__webcamShared = true;
            dlg.remove();
          });
          dlg.appendChild(start);
          main.appendChild(dlg);
        }, 200);
      });
      main.appendChild(share);
    }
  </script>
</body>
</html>
`
