package interpreter

import "github.com/robinvdvleuten/mymoney/ledger"

// Fractions holds one real-valued factor per asset class. It is used both
// for the desired allocation split (summing to 1) and for monthly change
// rates (0.11 meaning +11%).
type Fractions struct {
	Equity float64
	Debt   float64
	Gold   float64
}

// Sum returns the sum of the three fractions.
func (f Fractions) Sum() float64 {
	return f.Equity + f.Debt + f.Gold
}

// Session holds the parameters set by commands during one run. It replaces
// what would otherwise be run-wide globals so that every run starts from a
// clean, inspectable state.
type Session struct {
	// Allocation is the initial split set by ALLOCATE and Total its sum.
	Allocation ledger.Snapshot
	Total      int64
	// Desired is Allocation expressed as fractions of Total. REBALANCE
	// restores a month to this split.
	Desired   Fractions
	Allocated bool

	// SIP is the monthly contribution added from February onward.
	SIP    ledger.Snapshot
	HasSIP bool

	// Rates are the change rates of the most recent well-formed CHANGE.
	Rates    Fractions
	HasRates bool
}

func (s *Session) allocate(allocation ledger.Snapshot) {
	s.Allocation = allocation
	s.Total = allocation.Total()

	total := float64(s.Total)
	s.Desired = Fractions{
		Equity: float64(allocation.Equity) / total,
		Debt:   float64(allocation.Debt) / total,
		Gold:   float64(allocation.Gold) / total,
	}
	s.Allocated = true
}
