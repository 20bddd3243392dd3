// Package ledger holds the month-by-month projection of a three-asset
// portfolio (equity, debt, gold) over a single calendar year.
//
// A ledger is empty until Initialize is called, after which it holds exactly
// one Snapshot for each of the twelve months: January carries the initial
// allocation and every other month starts at zero. Later commands only ever
// overwrite entries; they are never removed.
//
// Example usage:
//
//	l := ledger.New()
//	l.Initialize(ledger.Snapshot{Equity: 6000, Debt: 3000, Gold: 1000})
//
//	jan, err := l.Get(calendar.January)
//	if err != nil {
//	    // only possible before Initialize
//	}
//	l.Set(calendar.February, ledger.Snapshot{Equity: 6660, Debt: 4360, Gold: 2080})
package ledger

import (
	"github.com/robinvdvleuten/mymoney/calendar"
)

// Ledger maps months to portfolio snapshots. It is owned by a single
// interpreter for the lifetime of one run and is not safe for concurrent use.
type Ledger struct {
	months map[calendar.Month]Snapshot
}

// MonthSnapshot pairs a snapshot with the month it belongs to.
type MonthSnapshot struct {
	Month calendar.Month
	Snapshot
}

// New creates an empty, uninitialized ledger.
func New() *Ledger {
	return &Ledger{
		months: make(map[calendar.Month]Snapshot),
	}
}

// Initialize (re)creates all twelve entries. January is set to the given
// allocation, all other months to zero.
func (l *Ledger) Initialize(allocation Snapshot) {
	l.months = make(map[calendar.Month]Snapshot, 12)
	for _, m := range calendar.Months() {
		l.months[m] = Snapshot{}
	}
	l.months[calendar.January] = allocation
}

// Initialized reports whether every month has an entry.
func (l *Ledger) Initialized() bool {
	return len(l.months) == 12
}

// Get returns the snapshot for a month, or a *MissingMonthError when the
// month has no entry.
func (l *Ledger) Get(month calendar.Month) (Snapshot, error) {
	s, ok := l.months[month]
	if !ok {
		return Snapshot{}, &MissingMonthError{Month: month}
	}
	return s, nil
}

// Set overwrites the snapshot for a month unconditionally.
func (l *Ledger) Set(month calendar.Month, s Snapshot) {
	l.months[month] = s
}

// Snapshots returns the entries present in the ledger in calendar order.
func (l *Ledger) Snapshots() []MonthSnapshot {
	result := make([]MonthSnapshot, 0, len(l.months))
	for _, m := range calendar.Months() {
		if s, ok := l.months[m]; ok {
			result = append(result, MonthSnapshot{Month: m, Snapshot: s})
		}
	}
	return result
}
