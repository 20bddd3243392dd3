package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/robinvdvleuten/mymoney/calendar"
	"github.com/robinvdvleuten/mymoney/ledger"
)

var _ Recorder = (*SQLiteRecorder)(nil)

// SQLiteRecorder persists runs to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
	log logrus.FieldLogger
}

// Option configures a SQLiteRecorder.
type Option func(*SQLiteRecorder)

// WithLogger sets the logger used for open and close events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *SQLiteRecorder) {
		r.log = log
	}
}

// WithClock overrides the time source used for RecordedAt.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRecorder) {
		r.now = now
	}
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(path string, opts ...Option) (*SQLiteRecorder, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &SQLiteRecorder{now: time.Now, log: discard}
	for _, opt := range opts {
		opt(r)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Pragmas apply per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	r.db = db
	if err := r.migrate(); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.WithField("path", path).Debug("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			filename    TEXT NOT NULL,
			commands    INTEGER NOT NULL,
			failure     TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs(recorded_at)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			month  INTEGER NOT NULL,
			equity INTEGER NOT NULL,
			debt   INTEGER NOT NULL,
			gold   INTEGER NOT NULL,
			PRIMARY KEY (run_id, month)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

// RecordRun stores run and its snapshots in a single transaction.
func (r *SQLiteRecorder) RecordRun(ctx context.Context, run Run, snapshots []ledger.MonthSnapshot) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `INSERT INTO runs
		(recorded_at, filename, commands, failure)
		VALUES (?,?,?,?)`,
		r.now().Unix(), run.Filename, run.Commands, run.Failure,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	for _, s := range snapshots {
		_, err := tx.ExecContext(ctx, `INSERT INTO snapshots
			(run_id, month, equity, debt, gold)
			VALUES (?,?,?,?,?)`,
			id, int(s.Month), s.Equity, s.Debt, s.Gold,
		)
		if err != nil {
			return 0, fmt.Errorf("insert snapshot %s: %w", s.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Runs returns recorded runs, newest first.
func (r *SQLiteRecorder) Runs(ctx context.Context, limit int) ([]Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `SELECT id, recorded_at, filename, commands, failure FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			recordedAt int64
		)
		if err := rows.Scan(&run.ID, &recordedAt, &run.Filename, &run.Commands, &run.Failure); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.RecordedAt = time.Unix(recordedAt, 0).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Snapshots returns the snapshots recorded for runID in calendar order.
func (r *SQLiteRecorder) Snapshots(ctx context.Context, runID int64) ([]ledger.MonthSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("query run %d: %w", runID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("run %d: %w", runID, ErrRunNotFound)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT month, equity, debt, gold
		FROM snapshots WHERE run_id = ? ORDER BY month`, runID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var snapshots []ledger.MonthSnapshot
	for rows.Next() {
		var (
			month int
			s     ledger.MonthSnapshot
		)
		if err := rows.Scan(&month, &s.Equity, &s.Debt, &s.Gold); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.Month = calendar.Month(month)
		if !s.Month.Valid() {
			return nil, fmt.Errorf("run %d: invalid month %d", runID, month)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	r.log.Debug("closing sqlite recorder")
	return r.db.Close()
}
