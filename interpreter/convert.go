package interpreter

import (
	"fmt"
	"math"
	"strconv"

	"github.com/robinvdvleuten/mymoney/ledger"
)

// parseAmounts converts exactly three integer arguments into a snapshot.
func parseAmounts(args []string) (ledger.Snapshot, error) {
	if len(args) != 3 {
		return ledger.Snapshot{}, fmt.Errorf("expected 3 amounts, got %d", len(args))
	}

	var values [3]int64
	for i, arg := range args {
		v, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return ledger.Snapshot{}, err
		}
		values[i] = v
	}

	return ledger.Snapshot{Equity: values[0], Debt: values[1], Gold: values[2]}, nil
}

// parseRates converts exactly three percentage arguments ("11.00" meaning
// 11%) into fractions.
func parseRates(args []string) (Fractions, error) {
	if len(args) != 3 {
		return Fractions{}, fmt.Errorf("expected 3 rates, got %d", len(args))
	}

	var values [3]float64
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return Fractions{}, err
		}
		values[i] = v / 100
	}

	return Fractions{Equity: values[0], Debt: values[1], Gold: values[2]}, nil
}

// floorAmount rounds a computed money value down to whole units. float64
// of math.MaxInt64 is 2^63, which is already out of range.
func floorAmount(v float64) (int64, error) {
	f := math.Floor(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNonFiniteAmount
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, ledger.ErrAmountOutOfRange
	}
	return int64(f), nil
}
