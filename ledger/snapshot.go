package ledger

import "fmt"

// Snapshot is the portfolio state for one month: whole currency units held
// in each asset class.
type Snapshot struct {
	Equity int64
	Debt   int64
	Gold   int64
}

// IsZero returns true if all three holdings are zero.
func (s Snapshot) IsZero() bool {
	return s.Equity == 0 && s.Debt == 0 && s.Gold == 0
}

// Total returns the combined value of the three holdings. Snapshots built
// by the interpreter always have a total in range; use CheckedTotal for
// anything else.
func (s Snapshot) Total() int64 {
	return s.Equity + s.Debt + s.Gold
}

// CheckedTotal is Total with ErrAmountOutOfRange on overflow.
func (s Snapshot) CheckedTotal() (int64, error) {
	total, err := AddAmounts(s.Equity, s.Debt)
	if err != nil {
		return 0, err
	}
	return AddAmounts(total, s.Gold)
}

// Add returns the element-wise sum of s and o.
func (s Snapshot) Add(o Snapshot) (Snapshot, error) {
	var sum Snapshot
	var err error
	if sum.Equity, err = AddAmounts(s.Equity, o.Equity); err != nil {
		return Snapshot{}, err
	}
	if sum.Debt, err = AddAmounts(s.Debt, o.Debt); err != nil {
		return Snapshot{}, err
	}
	if sum.Gold, err = AddAmounts(s.Gold, o.Gold); err != nil {
		return Snapshot{}, err
	}
	return sum, nil
}

// AddAmounts returns a+b, or ErrAmountOutOfRange when the sum overflows.
func AddAmounts(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrAmountOutOfRange
	}
	return sum, nil
}

// String formats the snapshot as three space-separated amounts in
// equity, debt, gold order. This is the BALANCE/REBALANCE output format.
func (s Snapshot) String() string {
	return fmt.Sprintf("%d %d %d", s.Equity, s.Debt, s.Gold)
}
