package broadcast

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of a running broadcast, pushed to the
// progress callback after every completion. Completed is monotonically
// non-decreasing across successive snapshots of one run.
type Snapshot struct {
	Completed int
	Total     int
	Sent      int
	Failed    int
	DryRun    int
	Pending   int
	Elapsed   time.Duration
	Rate      float64 // completions per second
}

// tally is the only shared mutable state of a run besides the budget:
// an append-only result sequence plus derived counters.
type tally struct {
	mu      sync.Mutex
	total   int
	started time.Time
	results []Result
	sent    int
	failed  int
	dry     int
}

func newTally(total int) *tally {
	return &tally{
		total:   total,
		started: time.Now(),
		results: make([]Result, 0, total),
	}
}

// record appends one result and pushes the resulting snapshot to onProgress.
// The callback runs under the tally lock so observers see completed counts
// in non-decreasing order; it must stay cheap.
func (t *tally) record(r Result, onProgress func(Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results = append(t.results, r)
	switch {
	case r.Outcome.Kind == KindSuccess:
		t.sent++
	case r.Outcome.Kind == KindDryRun:
		t.dry++
	default:
		t.failed++
	}
	if onProgress != nil {
		onProgress(t.snapshotLocked())
	}
}

func (t *tally) snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *tally) snapshotLocked() Snapshot {
	completed := len(t.results)
	elapsed := time.Since(t.started)
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(completed) / secs
	}
	return Snapshot{
		Completed: completed,
		Total:     t.total,
		Sent:      t.sent,
		Failed:    t.failed,
		DryRun:    t.dry,
		Pending:   t.total - completed,
		Elapsed:   elapsed,
		Rate:      rate,
	}
}

func (t *tally) final() []Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.results
}
