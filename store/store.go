// Package store records finished runs and their month-by-month snapshots so
// projections can be compared later.
//
// OpenSQLite persists to a SQLite database; NoopRecorder is used when
// recording is disabled.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/robinvdvleuten/mymoney/ledger"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Run describes one recorded execution of a command file.
type Run struct {
	ID         int64
	Filename   string
	RecordedAt time.Time
	Commands   int
	// Failure holds the message of the fatal error that stopped the run, if
	// any.
	Failure string
}

// Failed reports whether the run stopped on a fatal error.
func (r Run) Failed() bool {
	return r.Failure != ""
}

// Recorder persists runs.
type Recorder interface {
	// RecordRun stores run and its snapshots and returns the new run ID.
	RecordRun(ctx context.Context, run Run, snapshots []ledger.MonthSnapshot) (int64, error)

	// Runs returns the most recent runs first. A limit of zero returns all.
	Runs(ctx context.Context, limit int) ([]Run, error)

	// Snapshots returns the snapshots of a run in calendar order.
	Snapshots(ctx context.Context, runID int64) ([]ledger.MonthSnapshot, error)

	Close() error
}

// NoopRecorder is a no-op implementation used when recording is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(context.Context, Run, []ledger.MonthSnapshot) (int64, error) {
	return 0, nil
}
func (n *NoopRecorder) Runs(context.Context, int) ([]Run, error) { return nil, nil }
func (n *NoopRecorder) Snapshots(context.Context, int64) ([]ledger.MonthSnapshot, error) {
	return nil, ErrRunNotFound
}
func (n *NoopRecorder) Close() error { return nil }
