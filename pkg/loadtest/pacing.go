package loadtest

import (
	"context"
	"sync"
)

// Pacing controls how many join attempts may be in flight at once. The
// default of one worker is a deliberate ramp-up policy, not a resource
// limit: the browser could host concurrent pages, but joining one
// participant at a time keeps server-side load growth readable.
type Pacing struct {
	Concurrency int
}

// run drives attempt for every roster entry. Jobs are handed out in roster
// order; with one worker that makes attempts strictly sequential in order.
// Outcomes are returned indexed by roster position regardless of worker
// interleaving.
func (p Pacing) run(ctx context.Context, roster []ParticipantConfig, attempt func(context.Context, ParticipantConfig) JoinOutcome) []JoinOutcome {
	workers := p.Concurrency
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]JoinOutcome, len(roster))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = attempt(ctx, roster[i])
			}
		}()
	}

	for i := range roster {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}
