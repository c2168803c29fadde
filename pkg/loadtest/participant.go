// Package loadtest builds the participant roster and drives a whole test
// run: launch the shared browser, fetch the moderator credential, join every
// synthetic participant in order, hold the meeting for the configured
// duration, then tear the browser down.
package loadtest

import (
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// ParticipantConfig describes one synthetic participant. It is immutable
// once built and discarded after its join attempt completes.
type ParticipantConfig struct {
	Identity        string
	WantsWebcam     bool
	WantsMicrophone bool
}

// Counts holds the requested cohort sizes for one run.
type Counts struct {
	Camera     int
	Microphone int
	ListenOnly int
}

// Total returns the number of participants the counts describe.
func (c Counts) Total() int {
	return c.Camera + c.Microphone + c.ListenOnly
}

// JoinOutcome is produced once per participant by the join state machine.
// It is recorded for reporting only; a failed outcome never aborts the run.
type JoinOutcome struct {
	Participant   ParticipantConfig
	Succeeded     bool
	FailureReason string
}

// TestRun is the record of one completed run.
type TestRun struct {
	MeetingID string
	Duration  time.Duration
	Roster    []ParticipantConfig
	Outcomes  []JoinOutcome
	StartedAt time.Time
	EndedAt   time.Time
}

// Succeeded returns how many outcomes succeeded.
func (r *TestRun) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded {
			n++
		}
	}
	return n
}

// BuildRoster expands cohort counts into the ordered participant list. The
// order is fixed: camera clients first, then microphone-only, then
// listen-only. Camera clients also join audio with a microphone, since
// webcam sharing presumes a full audio join. Identities get a short random
// suffix so repeated runs against the same meeting do not collide.
func BuildRoster(prefix string, counts Counts) []ParticipantConfig {
	if prefix == "" {
		prefix = "loadtest"
	}

	roster := make([]ParticipantConfig, 0, counts.Total())
	for i := 0; i < counts.Camera; i++ {
		roster = append(roster, ParticipantConfig{
			Identity:        identity(prefix, "cam", i),
			WantsWebcam:     true,
			WantsMicrophone: true,
		})
	}
	for i := 0; i < counts.Microphone; i++ {
		roster = append(roster, ParticipantConfig{
			Identity:        identity(prefix, "mic", i),
			WantsMicrophone: true,
		})
	}
	for i := 0; i < counts.ListenOnly; i++ {
		roster = append(roster, ParticipantConfig{
			Identity: identity(prefix, "listen", i),
		})
	}
	return roster
}

func identity(prefix, kind string, n int) string {
	return fmt.Sprintf("%s-%s%d-%s", prefix, kind, n+1, shortuuid.New()[:8])
}
