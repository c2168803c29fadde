//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bbbstress/pkg/browser"
	"bbbstress/pkg/join"
	"bbbstress/pkg/loadtest"
)

// fixtureGateway mints join URLs pointing at the fixture UI instead of a
// conference server.
type fixtureGateway struct {
	base string
}

func (g fixtureGateway) GetModeratorPassword(context.Context, string) (string, error) {
	return "mp", nil
}

func (g fixtureGateway) GetJoinURL(identity, meetingID, password string) (string, error) {
	return fmt.Sprintf("%s?identity=%s", g.base, identity), nil
}

// TestRun_ThreeCohorts drives a whole run end to end: one camera, one
// microphone and one listen-only participant against an always-succeeding
// UI, a 2s hold, then browser teardown.
func TestRun_ThreeCohorts(t *testing.T) {
	srv := startFixture(t)

	runner := &loadtest.Runner{
		Gateway: fixtureGateway{base: srv.URL},
		Launch: func(context.Context) (loadtest.Session, error) {
			return browser.Launch(browser.DefaultConfig())
		},
		Joiner: func(s loadtest.Session) loadtest.Joiner {
			return join.NewClient(s.(*browser.Session))
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	hold := 2 * time.Second
	start := time.Now()
	run, err := runner.Run(ctx, loadtest.Spec{
		MeetingID: "m1",
		Duration:  hold,
		Counts:    loadtest.Counts{Camera: 1, Microphone: 1, ListenOnly: 1},
	})
	require.NoError(t, err)

	require.Len(t, run.Outcomes, 3)
	for i, o := range run.Outcomes {
		assert.True(t, o.Succeeded, "outcome %d: %s", i, o.FailureReason)
	}

	// Cohort order is fixed: camera, microphone, listen-only.
	assert.True(t, run.Outcomes[0].Participant.WantsWebcam)
	assert.True(t, run.Outcomes[1].Participant.WantsMicrophone)
	assert.False(t, run.Outcomes[1].Participant.WantsWebcam)
	assert.False(t, run.Outcomes[2].Participant.WantsMicrophone)

	// The run completes only after the hold elapsed and the browser closed.
	assert.GreaterOrEqual(t, time.Since(start), hold)
	assert.False(t, run.EndedAt.IsZero())
}
