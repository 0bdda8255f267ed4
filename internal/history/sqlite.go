package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tgblast/internal/broadcast"
	"tgblast/pkg/logx"
)

//go:embed migrations.sql
var migrations string

// maxRosters bounds the saved-roster history; older lists are pruned on save.
const maxRosters = 10

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA foreign_keys = ON")

	st := &sqliteStore{db: db, log: log}
	if _, err := db.ExecContext(context.Background(), migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history migrate: %w", err)
	}
	return st, nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) SaveRun(ctx context.Context, rec RunRecord, results []broadcast.Result) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrDisabled
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs(started_at, finished_at, total, sent, failed, dry, dry_run, has_image, text_len)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		rec.StartedAt.Format(time.RFC3339Nano), rec.FinishedAt.Format(time.RFC3339Nano),
		rec.Total, rec.Sent, rec.Failed, rec.DryCount,
		boolInt(rec.DryRun), boolInt(rec.HasImage), rec.TextLen,
	)
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results(run_id, position, chat_id, status, detail) VALUES(?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for i, r := range results {
		if _, err := stmt.ExecContext(ctx, runID, i, r.ChatID, r.Outcome.Kind.Status(), r.Outcome.Detail); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	s.log.Debug("run persisted", logx.Int64("run_id", runID), logx.Int("results", len(results)))
	return runID, nil
}

func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, total, sent, failed, dry, dry_run, has_image, text_len
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec                RunRecord
			started, finished  string
			dryRunI, hasImageI int
		)
		if err := rows.Scan(&rec.ID, &started, &finished, &rec.Total, &rec.Sent,
			&rec.Failed, &rec.DryCount, &dryRunI, &hasImageI, &rec.TextLen); err != nil {
			return nil, err
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		rec.DryRun = dryRunI != 0
		rec.HasImage = hasImageI != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *sqliteStore) RunResults(ctx context.Context, runID int64) ([]broadcast.Result, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id, status, detail FROM results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []broadcast.Result
	for rows.Next() {
		var (
			chatID, status string
			detail         sql.NullString
		)
		if err := rows.Scan(&chatID, &status, &detail); err != nil {
			return nil, err
		}
		out = append(out, broadcast.Result{
			ChatID: chatID,
			Outcome: broadcast.Outcome{
				Kind:   broadcast.KindFromStatus(status),
				Detail: detail.String,
			},
		})
	}
	return out, rows.Err()
}

func (s *sqliteStore) SaveRoster(ctx context.Context, ids []string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrDisabled
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rosters(saved_at, count, ids) VALUES(?,?,?)`,
		time.Now().Format(time.RFC3339Nano), len(ids), strings.Join(ids, "\n"),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	// Keep only the newest lists.
	_, _ = s.db.ExecContext(ctx,
		`DELETE FROM rosters WHERE id NOT IN (SELECT id FROM rosters ORDER BY id DESC LIMIT ?)`,
		maxRosters)
	return id, nil
}

func (s *sqliteStore) ListRosters(ctx context.Context, limit int) ([]RosterRecord, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = maxRosters
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, saved_at, count FROM rosters ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RosterRecord
	for rows.Next() {
		var (
			rec   RosterRecord
			saved string
		)
		if err := rows.Scan(&rec.ID, &saved, &rec.Count); err != nil {
			return nil, err
		}
		rec.SavedAt, _ = time.Parse(time.RFC3339Nano, saved)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Roster(ctx context.Context, id int64) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	var ids string
	err := s.db.QueryRowContext(ctx, `SELECT ids FROM rosters WHERE id = ?`, id).Scan(&ids)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("roster %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	if ids == "" {
		return nil, nil
	}
	return strings.Split(ids, "\n"), nil
}

func (s *sqliteStore) SessionTotals(ctx context.Context) (Totals, error) {
	if s == nil || s.db == nil {
		return Totals{}, ErrDisabled
	}
	var t Totals
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(sent),0), COALESCE(SUM(failed),0), COUNT(*)
		 FROM runs WHERE dry_run = 0`).Scan(&t.Sent, &t.Failed, &t.Runs)
	return t, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
