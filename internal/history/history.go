// Package history persists broadcast runs, per-recipient results and saved
// rosters, and aggregates session totals across runs.
package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"tgblast/internal/broadcast"
	"tgblast/pkg/logx"
)

var ErrDisabled = errors.New("history disabled")

// Config configures the history store.
//
// Driver values:
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", history is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // 0 means default
}

// RunRecord summarizes one broadcast run.
type RunRecord struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Sent       int
	Failed     int
	DryCount   int
	DryRun     bool
	HasImage   bool
	TextLen    int
}

// RosterRecord summarizes one saved recipient list.
type RosterRecord struct {
	ID      int64
	SavedAt time.Time
	Count   int
}

// Totals aggregates real (non-dry-run) delivery counts across all runs.
type Totals struct {
	Sent   int
	Failed int
	Runs   int
}

// SuccessRate returns the percentage of successful sends, or 0 when no
// real sends happened yet.
func (t Totals) SuccessRate() float64 {
	total := t.Sent + t.Failed
	if total == 0 {
		return 0
	}
	return float64(t.Sent) / float64(total) * 100
}

// Store is the persistence API used by the CLI and the scheduler.
type Store interface {
	SaveRun(ctx context.Context, rec RunRecord, results []broadcast.Result) (int64, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	RunResults(ctx context.Context, runID int64) ([]broadcast.Result, error)

	SaveRoster(ctx context.Context, ids []string) (int64, error)
	ListRosters(ctx context.Context, limit int) ([]RosterRecord, error)
	Roster(ctx context.Context, id int64) ([]string, error)

	SessionTotals(ctx context.Context) (Totals, error)
	Close() error
}

// Open initializes the configured store. It returns (nil, nil) if history
// is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown history driver: " + driver)
	}
}
