package ledger

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/mymoney/calendar"
)

// ErrAmountOutOfRange is returned when an amount or a sum of amounts does
// not fit in an int64.
var ErrAmountOutOfRange = errors.New("amount out of range")

// MissingMonthError is returned when a month has no entry in the ledger.
// After Initialize this cannot happen, so callers treat it as a broken
// invariant (typically a command processed before ALLOCATE).
type MissingMonthError struct {
	Month calendar.Month
}

func (e *MissingMonthError) Error() string {
	return fmt.Sprintf("no portfolio recorded for %s", e.Month)
}

// GetMonth returns the month that was looked up.
func (e *MissingMonthError) GetMonth() calendar.Month {
	return e.Month
}
