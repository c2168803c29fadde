// Package join drives a single page through the conference client's join
// flow: audio negotiation with one bounded retry, then optional webcam
// sharing. Every failure inside an attempt is swallowed into the outcome;
// nothing here can abort the surrounding run.
package join

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/labstack/gommon/log"

	"bbbstress/pkg/browser"
	"bbbstress/pkg/loadtest"
)

// errAudioNotConnected marks the one failure the state machine retries.
var errAudioNotConnected = errors.New("audio bridge did not connect")

// Client runs join attempts against pages of one shared browser session.
type Client struct {
	session *browser.Session
}

// NewClient returns a Client joining participants through session.
func NewClient(session *browser.Session) *Client {
	return &Client{session: session}
}

// Join navigates a fresh page to joinURL and walks it into the meeting. The
// page stays open afterwards so the participant keeps generating load; the
// session closes it at teardown. The returned outcome is the only record of
// failure.
func (c *Client) Join(ctx context.Context, p loadtest.ParticipantConfig, joinURL string) loadtest.JoinOutcome {
	out := loadtest.JoinOutcome{Participant: p}

	page, err := c.session.NewPage(joinURL)
	if err != nil {
		out.FailureReason = fmt.Sprintf("navigate: %v", err)
		return out
	}
	page = page.Context(ctx)

	if err := c.negotiateAudio(page, p.WantsMicrophone); err != nil {
		if !errors.Is(err, errAudioNotConnected) {
			// Hard failure inside the audio dialog; webcam is not attempted.
			out.FailureReason = err.Error()
			return out
		}
		// Soft failure: the participant stays in the meeting without a
		// verified audio bridge and webcam sharing is still attempted.
		log.Warnf("participant %s: %v", p.Identity, err)
		out.FailureReason = err.Error()
	}

	if p.WantsWebcam {
		if err := c.shareWebcam(page); err != nil {
			log.Warnf("participant %s: webcam: %v", p.Identity, err)
			if out.FailureReason == "" {
				out.FailureReason = fmt.Sprintf("webcam: %v", err)
			}
		}
	}

	out.Succeeded = out.FailureReason == ""
	return out
}

// negotiateAudio runs the audio dialog once and, if verification reports a
// dead bridge, backs out and runs it exactly once more.
func (c *Client) negotiateAudio(page *rod.Page, mic bool) error {
	err := c.connectAudio(page, mic)
	if err == nil || !errors.Is(err, errAudioNotConnected) {
		return err
	}

	log.Infof("audio not connected, retrying once")
	if rerr := c.reopenAudioDialog(page); rerr != nil {
		return fmt.Errorf("audio retry: %w", rerr)
	}
	if rerr := c.connectAudio(page, mic); rerr != nil {
		return fmt.Errorf("audio retry: %w", rerr)
	}
	return nil
}

// connectAudio walks the audio dialog: pick the audio mode, confirm the echo
// test when it shows up, wait out the modal close, then verify the bridge
// for microphone participants.
func (c *Client) connectAudio(page *rod.Page, mic bool) error {
	sel := selListenOnly
	if mic {
		sel = selMicrophone
	}
	choice, ok := find(page, sel, audioPromptTimeout)
	if !ok {
		return fmt.Errorf("audio choice %s not found within %v", sel, audioPromptTimeout)
	}
	if err := choice.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to activate audio choice: %w", err)
	}

	if mic {
		// The echo test is a server-side option; its absence is normal.
		if confirm, ok := find(page, selEchoTestJoin, echoTestTimeout); ok {
			if err := confirm.Click(proto.InputMouseButtonLeft, 1); err != nil {
				return fmt.Errorf("failed to confirm echo test: %w", err)
			}
		} else {
			log.Debugf("no echo test dialog within %v, assuming disabled", echoTestTimeout)
		}
	}

	c.waitModalClosed(page)

	if !mic {
		return nil
	}
	return c.verifyAudio(page)
}

// waitModalClosed detects that the audio dialog is gone. Two client versions
// render the dialog differently, so two detectors run in order: appearance
// of a main-UI control, then disappearance of the legacy react-modal
// overlay. When neither fires the modal is assumed closed anyway, after a
// page snapshot and a grace pause.
func (c *Client) waitModalClosed(page *rod.Page) {
	if _, ok := find(page, selMainUIReady, mainUIReadyTimeout); ok {
		return
	}
	if overlayGone(page) {
		return
	}
	log.Warnf("audio modal close not detected, assuming closed")
	savePageSnapshot(page)
	time.Sleep(modalCloseGrace)
}

func overlayGone(page *rod.Page) bool {
	has, overlay, err := page.Has(selLegacyOverlay)
	if err != nil || !has {
		return true
	}
	return overlay.Timeout(overlayGoneTimeout).WaitInvisible() == nil
}

// verifyAudio decides whether the audio bridge connected. The mute toggle
// appearing proves it did; a muted mic is unmuted so the participant
// transmits. Without the toggle, the toolbar join-audio marker doubles as a
// no-audio indicator: present means the bridge failed. Absent both, the
// bridge is treated as connected; the client gives no third signal to
// disambiguate.
func (c *Client) verifyAudio(page *rod.Page) error {
	if toggle, ok := find(page, selMuteToggle, micVerifyTimeout); ok {
		label, err := toggle.Attribute("aria-label")
		if err != nil {
			return fmt.Errorf("failed to read mute toggle state: %w", err)
		}
		if label != nil && *label == "Unmute" {
			if err := toggle.Click(proto.InputMouseButtonLeft, 1); err != nil {
				return fmt.Errorf("failed to unmute: %w", err)
			}
		}
		return nil
	}

	if has, _, err := page.Has(selToolbarJoinAudio); err == nil && has {
		return errAudioNotConnected
	}
	return nil
}

// reopenAudioDialog backs out of whatever state the dialog was left in and
// reopens it from the toolbar.
func (c *Client) reopenAudioDialog(page *rod.Page) error {
	if err := page.Keyboard.Press(input.Escape); err != nil {
		return fmt.Errorf("failed to send escape: %w", err)
	}
	time.Sleep(retryPause)

	btn, ok := find(page, selToolbarJoinAudio, toolbarJoinAudioTimeout)
	if !ok {
		return fmt.Errorf("toolbar join audio control not found within %v", toolbarJoinAudioTimeout)
	}
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to reopen audio dialog: %w", err)
	}
	return nil
}

// shareWebcam runs the webcam negotiation. The final wait for the Start
// sharing control has no upper bound: a client that never renders it hangs
// the attempt until the caller's context expires. Known latent defect, kept
// to match the observed behavior of the flow.
func (c *Client) shareWebcam(page *rod.Page) error {
	share, ok := find(page, selShareWebcam, shareWebcamTimeout)
	if !ok {
		return fmt.Errorf("share webcam control not found within %v", shareWebcamTimeout)
	}
	if err := share.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to open webcam dialog: %w", err)
	}

	// Fixed render delay for the device-selection dialog.
	time.Sleep(webcamDeviceUIPause)

	if opt, ok := find(page, selCameraOption, cameraOptionTimeout); ok {
		if err := opt.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("failed to pick camera: %w", err)
		}
	} else {
		log.Debugf("no camera option within %v, keeping preselected device", cameraOptionTimeout)
	}

	start, err := page.Element(selStartSharing)
	if err != nil {
		return fmt.Errorf("start sharing control: %w", err)
	}
	if err := start.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to start sharing: %w", err)
	}
	return nil
}

// find waits up to d for selector to appear. A timeout is a result, not an
// error; required steps turn the false into their own failure.
func find(page *rod.Page, selector string, d time.Duration) (*rod.Element, bool) {
	el, err := page.Timeout(d).Element(selector)
	if err != nil {
		return nil, false
	}
	return el.CancelTimeout(), true
}

// savePageSnapshot writes the rendered markup to a timestamped temp file for
// offline debugging. Best-effort: failures are logged, never escalated.
func savePageSnapshot(page *rod.Page) {
	html, err := page.HTML()
	if err != nil {
		log.Warnf("page snapshot: %v", err)
		return
	}
	f, err := os.CreateTemp("", fmt.Sprintf("audio-modal-%d-*.html", time.Now().UnixMilli()))
	if err != nil {
		log.Warnf("page snapshot: %v", err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(html); err != nil {
		log.Warnf("page snapshot: %v", err)
		return
	}
	log.Infof("saved audio modal snapshot to %s", f.Name())
}
