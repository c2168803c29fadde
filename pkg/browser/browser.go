// Package browser manages the single shared Chrome process used by a load
// run. It wraps Rod with the fixed launch flags the conference UI needs to
// run headless with synthetic media devices.
package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config configures Chrome launch options.
type Config struct {
	Headless bool          // Run in headless mode (default: true)
	Timeout  time.Duration // Page navigation timeout (default: 30s)
}

// DefaultConfig returns sensible defaults for load testing.
func DefaultConfig() Config {
	return Config{
		Headless: true,
		Timeout:  30 * time.Second,
	}
}

// Session owns one Chrome process and every page opened on it. Pages stay
// open until the session is closed; closing the session closes them all.
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

// newLauncher builds the launcher with the fixed flag set. The flags must
// not vary between runs: sandboxing and GPU are off for container use, media
// devices are replaced with simulated sources, and output audio is muted so
// a run never plays conference audio on the host.
func newLauncher(cfg Config) *launcher.Launcher {
	return launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("use-fake-device-for-media-stream").
		Set("use-fake-ui-for-media-stream").
		Set("mute-audio").
		Set("autoplay-policy", "no-user-gesture-required")
}

// Launch starts Chrome and connects to it. A launch failure is fatal to the
// whole run and is not retried here or anywhere above.
func Launch(cfg Config) (*Session, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	l := newLauncher(cfg)
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}

	return &Session{
		launcher: l,
		browser:  b,
		timeout:  cfg.Timeout,
	}, nil
}

// NewPage opens a page and navigates it to url with the session's navigation
// timeout. The page is returned live; the caller owns its interaction but
// the session owns its lifetime.
func (s *Session) NewPage(url string) (*rod.Page, error) {
	if s == nil || s.browser == nil {
		return nil, errors.New("browser session is closed")
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if err := page.Timeout(s.timeout).Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	// Cancel timeout so later waits on the page use their own deadlines.
	page.CancelTimeout()
	return page, nil
}

// Close shuts down Chrome. It is idempotent and safe to call on a nil
// session or after a failed launch; the coordinator closes unconditionally.
func (s *Session) Close() error {
	if s == nil || s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.browser = nil
	if s.launcher != nil {
		s.launcher.Cleanup()
		s.launcher = nil
	}
	if err != nil {
		return fmt.Errorf("failed to close Chrome: %w", err)
	}
	return nil
}
