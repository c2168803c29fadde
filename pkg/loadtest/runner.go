package loadtest

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
)

// Gateway supplies the moderator credential and per-participant join URLs.
type Gateway interface {
	GetModeratorPassword(ctx context.Context, meetingID string) (string, error)
	GetJoinURL(identity, meetingID, password string) (string, error)
}

// Session is the coordinator's view of the shared browser process.
type Session interface {
	Close() error
}

// Joiner drives one participant's join attempt against the shared browser.
// A Joiner never returns an error: failures are swallowed into the outcome.
type Joiner interface {
	Join(ctx context.Context, p ParticipantConfig, joinURL string) JoinOutcome
}

// Spec holds the already-validated inputs for one run.
type Spec struct {
	MeetingID  string
	Duration   time.Duration
	Counts     Counts
	NamePrefix string
}

// Runner is the test coordinator.
type Runner struct {
	Gateway Gateway
	Launch  func(ctx context.Context) (Session, error)
	Joiner  func(Session) Joiner
	Pacing  Pacing

	// sleep is a test seam; nil means time.Sleep.
	sleep func(time.Duration)
}

// Run executes one load run: launch the browser and fetch the moderator
// password concurrently, join the whole roster, hold the meeting for
// spec.Duration, then close the browser. It returns only after the browser
// session has closed. Launch and credential failures are fatal; everything
// inside an individual join attempt is not.
func (r *Runner) Run(ctx context.Context, spec Spec) (*TestRun, error) {
	run := &TestRun{
		MeetingID: spec.MeetingID,
		Duration:  spec.Duration,
		StartedAt: time.Now(),
	}

	type launched struct {
		session Session
		err     error
	}
	ch := make(chan launched, 1)
	go func() {
		s, err := r.Launch(ctx)
		ch <- launched{s, err}
	}()

	password, credErr := r.Gateway.GetModeratorPassword(ctx, spec.MeetingID)
	l := <-ch

	if l.err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", l.err)
	}
	if credErr != nil {
		if err := l.session.Close(); err != nil {
			log.Warnf("browser close after credential failure: %v", err)
		}
		return nil, fmt.Errorf("failed to fetch moderator password for %s: %w", spec.MeetingID, credErr)
	}

	run.Roster = BuildRoster(spec.NamePrefix, spec.Counts)
	log.Infof("joining %d participants to meeting %s (camera=%d microphone=%d listenOnly=%d)",
		len(run.Roster), spec.MeetingID, spec.Counts.Camera, spec.Counts.Microphone, spec.Counts.ListenOnly)

	joiner := r.Joiner(l.session)
	run.Outcomes = r.Pacing.run(ctx, run.Roster, func(ctx context.Context, p ParticipantConfig) JoinOutcome {
		url, err := r.Gateway.GetJoinURL(p.Identity, spec.MeetingID, password)
		if err != nil {
			// Per-participant failure: record it and let the roster continue.
			log.Warnf("participant %s: join URL: %v", p.Identity, err)
			return JoinOutcome{Participant: p, FailureReason: fmt.Sprintf("join URL: %v", err)}
		}
		out := joiner.Join(ctx, p, url)
		if out.Succeeded {
			log.Infof("participant %s joined", p.Identity)
		} else {
			log.Warnf("participant %s failed to join: %s", p.Identity, out.FailureReason)
		}
		return out
	})

	log.Infof("roster complete: %d/%d joined, holding meeting for %v",
		run.Succeeded(), len(run.Roster), spec.Duration)

	sleep := r.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(spec.Duration)

	if err := l.session.Close(); err != nil {
		return nil, fmt.Errorf("failed to close browser session: %w", err)
	}
	run.EndedAt = time.Now()
	return run, nil
}
