// Package calendar declares the twelve months of the single year a portfolio
// is projected over.
//
// Months are a closed set used as ledger keys. Command files refer to them by
// their upper-case English names (JANUARY..DECEMBER). The calendar never
// wraps around: the month before January is January itself.
package calendar

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Month identifies one month of the projected year.
type Month int

const (
	January Month = iota + 1
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

var months = []Month{
	January, February, March, April, May, June,
	July, August, September, October, November, December,
}

var names = []string{
	"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
	"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER",
}

// UnknownMonthError is returned when a name or value is not one of the twelve months.
type UnknownMonthError struct {
	Name string
}

func (e *UnknownMonthError) Error() string {
	return fmt.Sprintf("unknown month %q", e.Name)
}

// Months returns the twelve months in calendar order.
func Months() []Month {
	return slices.Clone(months)
}

// Valid reports whether m is one of the twelve months.
func (m Month) Valid() bool {
	return m >= January && m <= December
}

// String returns the upper-case English name as used in command files.
func (m Month) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return names[m-1]
}

// Parse looks up a month by its upper-case name. Matching is exact.
func Parse(name string) (Month, error) {
	i := slices.Index(names, name)
	if i < 0 {
		return 0, &UnknownMonthError{Name: name}
	}
	return months[i], nil
}

// Previous returns the month before m. January has no predecessor in a
// single-year model and maps to itself.
func Previous(m Month) (Month, error) {
	if !m.Valid() {
		return 0, &UnknownMonthError{Name: m.String()}
	}
	if m == January {
		return January, nil
	}
	return m - 1, nil
}
