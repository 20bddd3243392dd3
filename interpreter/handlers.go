package interpreter

import (
	"fmt"

	"github.com/robinvdvleuten/mymoney/calendar"
	"github.com/robinvdvleuten/mymoney/command"
	"github.com/robinvdvleuten/mymoney/ledger"
)

// allocate sets the initial allocation, derives the desired split from it
// and resets the ledger with the allocation in January.
func (in *Interpreter) allocate(cmd command.Command) error {
	allocation, err := parseAmounts(cmd.Args)
	if err == nil {
		var total int64
		if total, err = allocation.CheckedTotal(); err == nil && total == 0 {
			err = fmt.Errorf("total allocation is zero")
		}
	}
	if err != nil {
		return &ArgumentError{Kind: command.Allocate, Args: cmd.Args, Err: ErrInvalidAllocation, Cause: err}
	}

	in.session.allocate(allocation)
	in.ledger.Initialize(allocation)
	return nil
}

// sip stores the monthly contribution and replaces January's holdings with
// it. Malformed amounts leave both untouched.
func (in *Interpreter) sip(cmd command.Command) error {
	sip, err := parseAmounts(cmd.Args)
	if err == nil {
		_, err = sip.CheckedTotal()
	}
	if err != nil {
		return &ArgumentError{Kind: command.SIP, Args: cmd.Args, Err: ErrMalformedSIP, Cause: err}
	}

	in.session.SIP = sip
	in.session.HasSIP = true
	in.ledger.Set(calendar.January, sip)
	return nil
}

// change applies market rates to the target month, starting from the
// previous month plus the SIP contribution. Malformed rates are reported but
// the month is still recomputed with the rates already in the session.
func (in *Interpreter) change(cmd command.Command) error {
	var rateErr error
	n := len(cmd.Args)
	if n > 0 {
		rates, err := parseRates(cmd.Args[:n-1])
		if err != nil {
			rateErr = &ArgumentError{Kind: command.Change, Args: cmd.Args, Err: ErrMalformedChange, Cause: err}
		} else {
			in.session.Rates = rates
			in.session.HasRates = true
		}
	}

	month, err := calendar.Parse(cmd.Arg(n - 1))
	if err != nil {
		return err
	}
	if err := in.applyChange(month); err != nil {
		return err
	}

	return rateErr
}

func (in *Interpreter) applyChange(month calendar.Month) error {
	if !in.session.HasRates {
		return &MissingParameterError{Kind: command.Change, Parameter: "change rates"}
	}

	var sip ledger.Snapshot
	if month != calendar.January {
		if !in.session.HasSIP {
			return &MissingParameterError{Kind: command.Change, Parameter: "SIP"}
		}
		sip = in.session.SIP
	}

	prevMonth, err := calendar.Previous(month)
	if err != nil {
		return err
	}
	prev, err := in.ledger.Get(prevMonth)
	if err != nil {
		return err
	}

	base, err := prev.Add(sip)
	if err != nil {
		return err
	}

	rates := in.session.Rates
	next := ledger.Snapshot{}
	steps := []struct {
		dst  *int64
		base int64
		rate float64
	}{
		{&next.Equity, base.Equity, rates.Equity},
		{&next.Debt, base.Debt, rates.Debt},
		{&next.Gold, base.Gold, rates.Gold},
	}
	for _, s := range steps {
		current := float64(s.base)
		v, err := floorAmount(current + current*s.rate)
		if err != nil {
			return err
		}
		*s.dst = v
	}
	if _, err := next.CheckedTotal(); err != nil {
		return err
	}

	in.ledger.Set(month, next)
	return nil
}

// balance prints the holdings of one month.
func (in *Interpreter) balance(cmd command.Command) error {
	month, err := calendar.Parse(cmd.Arg(0))
	if err != nil {
		return err
	}

	s, err := in.ledger.Get(month)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(in.out, s.String())
	return err
}

// rebalance restores December (or June when December is empty) to the
// desired split and prints the result. Amounts are floored individually, so
// the rebalanced total may be slightly below the original. Every snapshot
// written by this package has a total in range, so Total cannot overflow.
func (in *Interpreter) rebalance(cmd command.Command) error {
	month, current, err := in.rebalanceTarget()
	if err != nil {
		return err
	}
	if month == 0 {
		if _, err := fmt.Fprintln(in.out, RebalanceErrorMessage); err != nil {
			return err
		}
		return ErrNoRebalanceTarget
	}
	if !in.session.Allocated {
		return &MissingParameterError{Kind: command.Rebalance, Parameter: "an allocation"}
	}

	total := float64(current.Total())
	desired := in.session.Desired
	var next ledger.Snapshot
	for _, s := range []struct {
		dst    *int64
		weight float64
	}{
		{&next.Equity, desired.Equity},
		{&next.Debt, desired.Debt},
		{&next.Gold, desired.Gold},
	} {
		v, err := floorAmount(s.weight * total)
		if err != nil {
			return err
		}
		*s.dst = v
	}

	in.ledger.Set(month, next)
	_, err = fmt.Fprintln(in.out, next.String())
	return err
}

// rebalanceTarget picks December if it holds anything, else June. A zero
// month means neither qualifies.
func (in *Interpreter) rebalanceTarget() (calendar.Month, ledger.Snapshot, error) {
	for _, m := range []calendar.Month{calendar.December, calendar.June} {
		s, err := in.ledger.Get(m)
		if err != nil {
			return 0, ledger.Snapshot{}, err
		}
		if !s.IsZero() {
			return m, s, nil
		}
	}
	return 0, ledger.Snapshot{}, nil
}
