package browser

import (
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.Headless)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

// The launch flags are a fixed contract: headless-safe, no real media
// devices, no output audio. A flag silently dropped here makes runs
// non-deterministic on CI hosts.
func TestNewLauncherFlags(t *testing.T) {
	l := newLauncher(DefaultConfig())

	for _, f := range []string{
		"no-sandbox",
		"disable-gpu",
		"use-fake-device-for-media-stream",
		"use-fake-ui-for-media-stream",
		"mute-audio",
	} {
		_, has := l.Flags[flags.Flag(f)]
		assert.True(t, has, "missing flag %q", f)
	}

	policy, has := l.Flags[flags.Flag("autoplay-policy")]
	require.True(t, has)
	assert.Equal(t, []string{"no-user-gesture-required"}, policy)
}

func TestCloseIsIdempotent(t *testing.T) {
	// Close must tolerate a session that never launched, and repeat calls.
	var s *Session
	assert.NoError(t, s.Close())

	s = &Session{}
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestNewPageAfterClose(t *testing.T) {
	s := &Session{}
	require.NoError(t, s.Close())

	_, err := s.NewPage("http://example.invalid")
	assert.Error(t, err)
}
