package interpreter

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/robinvdvleuten/mymoney/calendar"
	"github.com/robinvdvleuten/mymoney/command"
	"github.com/robinvdvleuten/mymoney/ledger"
)

// run parses source, executes it and returns the printed output.
func run(t *testing.T, source string) (string, *Interpreter, error) {
	t.Helper()

	script, err := command.ParseBytesWithFilename(context.Background(), "input.txt", []byte(source))
	assert.NoError(t, err)

	var out bytes.Buffer
	in := New(&out)
	err = in.Run(context.Background(), script.Commands)
	return out.String(), in, err
}

func mustGet(t *testing.T, in *Interpreter, m calendar.Month) ledger.Snapshot {
	t.Helper()
	s, err := in.Ledger().Get(m)
	assert.NoError(t, err)
	return s
}

func TestAllocate(t *testing.T) {
	t.Run("InitializesLedger", func(t *testing.T) {
		out, in, err := run(t, "ALLOCATE 6000 3000 1000\n")
		assert.NoError(t, err)
		assert.Equal(t, "", out)

		assert.Equal(t, ledger.Snapshot{Equity: 6000, Debt: 3000, Gold: 1000}, mustGet(t, in, calendar.January))
		for _, m := range calendar.Months()[1:] {
			assert.True(t, mustGet(t, in, m).IsZero())
		}

		s := in.Session()
		assert.True(t, s.Allocated)
		assert.Equal(t, int64(10000), s.Total)
		assert.Equal(t, s.Allocation.Total(), s.Total)
		assert.Equal(t, 0.6, s.Desired.Equity)
		assert.Equal(t, 0.3, s.Desired.Debt)
		assert.Equal(t, 0.1, s.Desired.Gold)
	})

	t.Run("DesiredSumsToOne", func(t *testing.T) {
		for _, source := range []string{
			"ALLOCATE 6000 3000 1000",
			"ALLOCATE 1 1 1",
			"ALLOCATE 7 0 13",
			"ALLOCATE 8000 6000 3500",
			"ALLOCATE 123457 98765 4321",
		} {
			_, in, err := run(t, source)
			assert.NoError(t, err)
			assert.True(t, math.Abs(in.Session().Desired.Sum()-1) < 1e-9, "%s: sum %v", source, in.Session().Desired.Sum())
		}
	})

	t.Run("NonNumericIsFatal", func(t *testing.T) {
		out, in, err := run(t, "ALLOCATE 6000 abc 1000\nBALANCE JANUARY\n")
		assert.Error(t, err)
		assert.Equal(t, "", out)
		assert.IsError(t, err, ErrInvalidAllocation)
		assert.True(t, Fatal(err))
		assert.False(t, in.Ledger().Initialized())
		assert.Equal(t, "Please supply a valid command format is: ALLOCATE AMOUNT_EQUITY AMOUNT_DEBT AMOUNT_GOLD", Message(err))

		var execErr *ExecError
		assert.True(t, errors.As(err, &execErr))
		assert.Equal(t, 1, execErr.GetPosition().Line)
	})

	t.Run("WrongArity", func(t *testing.T) {
		_, _, err := run(t, "ALLOCATE 6000 3000\n")
		assert.IsError(t, err, ErrInvalidAllocation)
	})

	t.Run("TotalOutOfRangeIsFatal", func(t *testing.T) {
		out, in, err := run(t, "ALLOCATE 9223372036854775807 1 0\nREBALANCE\n")
		assert.IsError(t, err, ErrInvalidAllocation)
		assert.True(t, Fatal(err))
		assert.Equal(t, "", out)
		assert.False(t, in.Ledger().Initialized())
	})

	t.Run("ZeroTotal", func(t *testing.T) {
		_, _, err := run(t, "ALLOCATE 0 0 0\n")
		assert.IsError(t, err, ErrInvalidAllocation)
		assert.Contains(t, err.Error(), "total allocation is zero")
	})
}

func TestSIP(t *testing.T) {
	t.Run("OverwritesJanuary", func(t *testing.T) {
		_, in, err := run(t, "ALLOCATE 6000 3000 1000\nSIP 3000 2000 1000\n")
		assert.NoError(t, err)

		assert.Equal(t, ledger.Snapshot{Equity: 3000, Debt: 2000, Gold: 1000}, mustGet(t, in, calendar.January))
		assert.True(t, in.Session().HasSIP)
		assert.Equal(t, ledger.Snapshot{Equity: 3000, Debt: 2000, Gold: 1000}, in.Session().SIP)
		// The allocation and desired split are not affected.
		assert.Equal(t, int64(10000), in.Session().Total)
	})

	t.Run("MalformedIsAbsorbed", func(t *testing.T) {
		out, in, err := run(t, "ALLOCATE 6000 3000 1000\nSIP 3000 x 1000\nBALANCE JANUARY\n")
		assert.NoError(t, err)
		assert.Equal(t, "6000 3000 1000\n", out)
		assert.False(t, in.Session().HasSIP)
	})

	t.Run("TotalOutOfRangeIsAbsorbed", func(t *testing.T) {
		_, in, err := run(t, "ALLOCATE 6000 3000 1000\nSIP 9223372036854775807 1 0\n")
		assert.NoError(t, err)
		assert.False(t, in.Session().HasSIP)
		assert.Equal(t, ledger.Snapshot{Equity: 6000, Debt: 3000, Gold: 1000}, mustGet(t, in, calendar.January))
	})

	t.Run("MalformedKeepsPreviousSIP", func(t *testing.T) {
		_, in, err := run(t, "ALLOCATE 6000 3000 1000\nSIP 1 2 3\nSIP 4 5\n")
		assert.NoError(t, err)
		assert.Equal(t, ledger.Snapshot{Equity: 1, Debt: 2, Gold: 3}, in.Session().SIP)
	})

	t.Run("ExecuteReportsAbsorbedError", func(t *testing.T) {
		in := New(&bytes.Buffer{})
		err := in.Execute(context.Background(), command.Parse("SIP a b c"))
		assert.IsError(t, err, ErrMalformedSIP)
		assert.False(t, Fatal(err))
	})
}

func TestChange(t *testing.T) {
	t.Run("Formula", func(t *testing.T) {
		_, in, err := run(t, strings.Join([]string{
			"ALLOCATE 6000 3000 1000",
			"SIP 3000 2000 1000",
			"CHANGE 11.00% 9.00% 4.00% FEBRUARY",
		}, "\n"))
		assert.NoError(t, err)

		// floor((3000+3000)*1.11), floor((2000+2000)*1.09), floor((1000+1000)*1.04)
		assert.Equal(t, ledger.Snapshot{Equity: 6660, Debt: 4360, Gold: 2080}, mustGet(t, in, calendar.February))
		assert.Equal(t, Fractions{Equity: 0.11, Debt: 0.09, Gold: 0.04}, in.Session().Rates)
	})

	t.Run("FloorAtBoundary", func(t *testing.T) {
		_, in, err := run(t, strings.Join([]string{
			"ALLOCATE 100 100 100",
			"SIP 100 0 0",
			"CHANGE 0.5% 0.5% 0.5% JANUARY",
		}, "\n"))
		assert.NoError(t, err)

		// 100 + 100*0.005 = 100.5 -> 100
		assert.Equal(t, ledger.Snapshot{Equity: 100}, mustGet(t, in, calendar.January))
	})

	t.Run("NegativeRatesFloorDown", func(t *testing.T) {
		_, in, err := run(t, strings.Join([]string{
			"ALLOCATE 6000 3000 1000",
			"SIP 0 0 0",
			"CHANGE -0.5% -1.00% 0.00% JANUARY",
		}, "\n"))
		assert.NoError(t, err)

		// SIP replaced January with zeros.
		assert.Equal(t, ledger.Snapshot{}, mustGet(t, in, calendar.January))

		_, in, err = run(t, strings.Join([]string{
			"ALLOCATE 6000 3000 1000",
			"CHANGE -0.55% -1.00% 0.00% JANUARY",
		}, "\n"))
		assert.NoError(t, err)
		// 6000 - 33 = 5967, 3000 - 30 = 2970, 1000
		assert.Equal(t, ledger.Snapshot{Equity: 5967, Debt: 2970, Gold: 1000}, mustGet(t, in, calendar.January))
	})

	t.Run("JanuaryIgnoresSIP", func(t *testing.T) {
		_, in, err := run(t, strings.Join([]string{
			"ALLOCATE 6000 3000 1000",
			"SIP 2000 1000 500",
			"CHANGE 4.00% 10.00% 2.00% JANUARY",
		}, "\n"))
		assert.NoError(t, err)

		// January is computed from itself (2000 1000 500) with no SIP added.
		assert.Equal(t, ledger.Snapshot{Equity: 2080, Debt: 1100, Gold: 510}, mustGet(t, in, calendar.January))
	})

	t.Run("OnlyTouchesTargetMonth", func(t *testing.T) {
		_, in, err := run(t, strings.Join([]string{
			"ALLOCATE 6000 3000 1000",
			"SIP 3000 2000 1000",
			"CHANGE 11.00% 9.00% 4.00% MARCH",
		}, "\n"))
		assert.NoError(t, err)

		// February is still zero, so March is only the SIP grown by the rates.
		assert.True(t, mustGet(t, in, calendar.February).IsZero())
		assert.Equal(t, ledger.Snapshot{Equity: 3330, Debt: 2180, Gold: 1040}, mustGet(t, in, calendar.March))
	})

	t.Run("MalformedRatesStillRecompute", func(t *testing.T) {
		_, in, err := run(t, strings.Join([]string{
			"ALLOCATE 6000 3000 1000",
			"SIP 3000 2000 1000",
			"CHANGE 10.00% 10.00% 10.00% FEBRUARY",
			"CHANGE abc% 1.00% 1.00% MARCH",
		}, "\n"))
		assert.NoError(t, err)

		feb := mustGet(t, in, calendar.February)
		assert.Equal(t, ledger.Snapshot{Equity: 6600, Debt: 4400, Gold: 2200}, feb)

		// March uses the February rates because the March rates were malformed.
		assert.Equal(t, ledger.Snapshot{Equity: 10560, Debt: 7040, Gold: 3520}, mustGet(t, in, calendar.March))
		assert.Equal(t, Fractions{Equity: 0.1, Debt: 0.1, Gold: 0.1}, in.Session().Rates)
	})

	t.Run("MalformedRatesReturnAbsorbedError", func(t *testing.T) {
		in := New(&bytes.Buffer{})
		ctx := context.Background()
		assert.NoError(t, in.Execute(ctx, command.Parse("ALLOCATE 1 2 3")))
		assert.NoError(t, in.Execute(ctx, command.Parse("CHANGE 1% 1% 1% JANUARY")))

		err := in.Execute(ctx, command.Parse("CHANGE 1% 1% JANUARY"))
		assert.IsError(t, err, ErrMalformedChange)
		assert.False(t, Fatal(err))
	})

	t.Run("UnknownMonthIsFatal", func(t *testing.T) {
		_, _, err := run(t, "ALLOCATE 6000 3000 1000\nSIP 1 1 1\nCHANGE 1% 1% 1% FEBUARY\n")
		assert.Error(t, err)
		assert.True(t, Fatal(err))

		var unknown *calendar.UnknownMonthError
		assert.True(t, errors.As(err, &unknown))
		assert.Equal(t, "FEBUARY", unknown.Name)
	})

	t.Run("NoArguments", func(t *testing.T) {
		_, _, err := run(t, "ALLOCATE 6000 3000 1000\nCHANGE\n")
		assert.True(t, Fatal(err))
	})

	t.Run("WithoutSIPIsFatal", func(t *testing.T) {
		_, _, err := run(t, "ALLOCATE 6000 3000 1000\nCHANGE 1% 1% 1% FEBRUARY\n")
		var missing *MissingParameterError
		assert.True(t, errors.As(err, &missing))
		assert.Equal(t, "SIP", missing.Parameter)
		assert.True(t, Fatal(err))
	})

	t.Run("WithoutRatesIsFatal", func(t *testing.T) {
		_, _, err := run(t, "ALLOCATE 6000 3000 1000\nSIP 1 1 1\nCHANGE x y z FEBRUARY\n")
		var missing *MissingParameterError
		assert.True(t, errors.As(err, &missing))
		assert.Equal(t, "change rates", missing.Parameter)
	})

	t.Run("BeforeAllocateIsFatal", func(t *testing.T) {
		_, _, err := run(t, "SIP 1 1 1\nCHANGE 1% 1% 1% MARCH\n")
		var missing *ledger.MissingMonthError
		assert.True(t, errors.As(err, &missing))
		assert.Equal(t, calendar.February, missing.Month)
	})

	t.Run("NonFiniteRate", func(t *testing.T) {
		_, _, err := run(t, "ALLOCATE 1 1 1\nCHANGE NaN 1 1 JANUARY\n")
		assert.IsError(t, err, ErrNonFiniteAmount)
	})

	t.Run("GrowthOutOfRangeIsFatal", func(t *testing.T) {
		out, in, err := run(t, "ALLOCATE 6000000000000000000 1 1\n"+
			"SIP 6000000000000000000 1 1\n"+
			"CHANGE 100.00% 0.00% 0.00% JANUARY\n"+
			"BALANCE JANUARY\n")
		assert.IsError(t, err, ledger.ErrAmountOutOfRange)
		assert.True(t, Fatal(err))
		assert.Equal(t, "", out)
		assert.Equal(t, ledger.Snapshot{Equity: 6000000000000000000, Debt: 1, Gold: 1}, mustGet(t, in, calendar.January))
	})

	t.Run("SIPContributionOutOfRangeIsFatal", func(t *testing.T) {
		out, in, err := run(t, "ALLOCATE 1 1 1\n"+
			"SIP 5000000000000000000 0 0\n"+
			"CHANGE 0.00% 0.00% 0.00% JANUARY\n"+
			"CHANGE 0.00% 0.00% 0.00% FEBRUARY\n"+
			"BALANCE FEBRUARY\n")
		assert.IsError(t, err, ledger.ErrAmountOutOfRange)
		assert.Equal(t, "", out)
		assert.True(t, mustGet(t, in, calendar.February).IsZero())
	})

	t.Run("TotalOutOfRangeIsFatal", func(t *testing.T) {
		_, in, err := run(t, "ALLOCATE 1 1 1\n"+
			"SIP 4000000000000000000 4000000000000000000 0\n"+
			"CHANGE 20.00% 20.00% 0.00% JANUARY\n")
		assert.IsError(t, err, ledger.ErrAmountOutOfRange)
		assert.Equal(t, ledger.Snapshot{Equity: 4000000000000000000, Debt: 4000000000000000000}, mustGet(t, in, calendar.January))
	})
}

func TestFloorAmount(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want int64
		err  error
	}{
		{"Floors", 100.5, 100, nil},
		{"NegativeFloors", -0.5, -1, nil},
		{"MinInt64", math.MinInt64, math.MinInt64, nil},
		{"TwoToThe63", math.MaxInt64, 0, ledger.ErrAmountOutOfRange},
		{"AboveRange", 1.2e19, 0, ledger.ErrAmountOutOfRange},
		{"BelowRange", -1.2e19, 0, ledger.ErrAmountOutOfRange},
		{"NaN", math.NaN(), 0, ErrNonFiniteAmount},
		{"Inf", math.Inf(1), 0, ErrNonFiniteAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := floorAmount(tt.in)
			if tt.err != nil {
				assert.IsError(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBalance(t *testing.T) {
	t.Run("EndToEnd", func(t *testing.T) {
		out, _, err := run(t, strings.Join([]string{
			"ALLOCATE 6000 3000 1000",
			"SIP 3000 2000 1000",
			"CHANGE 11.00% 9.00% 4.00% FEBRUARY",
			"BALANCE FEBRUARY",
		}, "\n"))
		assert.NoError(t, err)
		assert.Equal(t, "6660 4360 2080\n", out)
	})

	t.Run("Idempotent", func(t *testing.T) {
		out, _, err := run(t, "ALLOCATE 6000 3000 1000\nBALANCE JANUARY\nBALANCE JANUARY\n")
		assert.NoError(t, err)
		assert.Equal(t, "6000 3000 1000\n6000 3000 1000\n", out)
	})

	t.Run("BeforeAllocateIsFatal", func(t *testing.T) {
		out, _, err := run(t, "BALANCE MARCH\n")
		assert.Equal(t, "", out)
		var missing *ledger.MissingMonthError
		assert.True(t, errors.As(err, &missing))
		assert.True(t, Fatal(err))
	})

	t.Run("UnknownMonthIsFatal", func(t *testing.T) {
		_, _, err := run(t, "ALLOCATE 1 2 3\nBALANCE\n")
		var unknown *calendar.UnknownMonthError
		assert.True(t, errors.As(err, &unknown))
	})
}

func TestRebalance(t *testing.T) {
	allocated := func(t *testing.T) (*Interpreter, *bytes.Buffer) {
		t.Helper()
		var out bytes.Buffer
		in := New(&out)
		assert.NoError(t, in.Execute(context.Background(), command.Parse("ALLOCATE 6000 3000 1000")))
		return in, &out
	}

	t.Run("December", func(t *testing.T) {
		in, out := allocated(t)
		in.Ledger().Set(calendar.December, ledger.Snapshot{Equity: 6000, Debt: 3000, Gold: 1000})

		assert.NoError(t, in.Execute(context.Background(), command.Parse("REBALANCE")))
		assert.Equal(t, "6000 3000 1000\n", out.String())
		assert.Equal(t, ledger.Snapshot{Equity: 6000, Debt: 3000, Gold: 1000}, mustGet(t, in, calendar.December))
	})

	t.Run("DecisionPrefersDecember", func(t *testing.T) {
		in, out := allocated(t)
		in.Ledger().Set(calendar.June, ledger.Snapshot{Equity: 100, Debt: 100, Gold: 100})
		in.Ledger().Set(calendar.December, ledger.Snapshot{Equity: 1000, Debt: 500, Gold: 500})

		assert.NoError(t, in.Execute(context.Background(), command.Parse("REBALANCE")))
		assert.Equal(t, "1200 600 200\n", out.String())
		assert.Equal(t, ledger.Snapshot{Equity: 100, Debt: 100, Gold: 100}, mustGet(t, in, calendar.June))
	})

	t.Run("FallsBackToJune", func(t *testing.T) {
		in, out := allocated(t)
		in.Ledger().Set(calendar.June, ledger.Snapshot{Equity: 100, Debt: 100, Gold: 100})

		assert.NoError(t, in.Execute(context.Background(), command.Parse("REBALANCE")))
		assert.Equal(t, "180 90 30\n", out.String())
		assert.Equal(t, ledger.Snapshot{Equity: 180, Debt: 90, Gold: 30}, mustGet(t, in, calendar.June))
		assert.True(t, mustGet(t, in, calendar.December).IsZero())
	})

	t.Run("NoTarget", func(t *testing.T) {
		in, out := allocated(t)
		before := in.Ledger().Snapshots()

		err := in.Execute(context.Background(), command.Parse("REBALANCE"))
		assert.IsError(t, err, ErrNoRebalanceTarget)
		assert.False(t, Fatal(err))
		assert.Equal(t, "CANNOT_REBALANCE\n", out.String())
		assert.Equal(t, before, in.Ledger().Snapshots())
	})

	t.Run("NoTargetContinuesRun", func(t *testing.T) {
		out, _, err := run(t, "ALLOCATE 6000 3000 1000\nREBALANCE\nBALANCE JANUARY\n")
		assert.NoError(t, err)
		assert.Equal(t, "CANNOT_REBALANCE\n6000 3000 1000\n", out)
	})

	t.Run("RoundingLossIsKept", func(t *testing.T) {
		var out bytes.Buffer
		in := New(&out)
		assert.NoError(t, in.Execute(context.Background(), command.Parse("ALLOCATE 1 1 1")))
		in.Ledger().Set(calendar.December, ledger.Snapshot{Equity: 50, Debt: 25, Gold: 25})

		assert.NoError(t, in.Execute(context.Background(), command.Parse("REBALANCE")))
		// Each third of 100 floors to 33; the lost unit is not redistributed.
		assert.Equal(t, "33 33 33\n", out.String())
		assert.Equal(t, int64(99), mustGet(t, in, calendar.December).Total())
	})

	t.Run("BeforeAllocateIsFatal", func(t *testing.T) {
		_, _, err := run(t, "REBALANCE\n")
		var missing *ledger.MissingMonthError
		assert.True(t, errors.As(err, &missing))
		assert.Equal(t, calendar.December, missing.Month)
	})
}

func TestUnrecognizedCommand(t *testing.T) {
	out, in, err := run(t, "ALLOCATE 6000 3000 1000\nWITHDRAW 100\nBALANCE JANUARY\n")
	assert.Equal(t, "", out)
	assert.True(t, Fatal(err))
	assert.True(t, in.Ledger().Initialized())

	var unrecognized *UnrecognizedCommandError
	assert.True(t, errors.As(err, &unrecognized))
	assert.Equal(t, "WITHDRAW", unrecognized.Keyword)
	assert.Equal(t, "Please enter a valid command. choices are: ALLOCATE, SIP, CHANGE, BALANCE, REBALANCE", Message(err))

	var execErr *ExecError
	assert.True(t, errors.As(err, &execErr))
	assert.Equal(t, "input.txt:2", execErr.GetPosition().String())

	_, _, err = run(t, "ALLOCATE 6000 3000 1000\n\nBALANCE JANUARY\n")
	assert.True(t, errors.As(err, &unrecognized))
	assert.Equal(t, "empty command", unrecognized.Error())
}

func TestFullYear(t *testing.T) {
	source := `ALLOCATE 6000 3000 1000
SIP 2000 1000 500
CHANGE 4.00% 10.00% 2.00% JANUARY
CHANGE -10.00% 40.00% 0.00% FEBRUARY
CHANGE 12.50% 12.50% 12.50% MARCH
CHANGE 8.00% -3.00% 7.00% APRIL
CHANGE 13.00% 21.00% 10.50% MAY
CHANGE 10.00% 8.00% -5.00% JUNE
BALANCE MARCH
REBALANCE
`
	out, in, err := run(t, source)
	assert.NoError(t, err)

	assert.Equal(t, "6381 4432 1698\n17203 8601 2867\n", out)

	assert.Equal(t, ledger.Snapshot{Equity: 2080, Debt: 1100, Gold: 510}, mustGet(t, in, calendar.January))
	assert.Equal(t, ledger.Snapshot{Equity: 3672, Debt: 2940, Gold: 1010}, mustGet(t, in, calendar.February))

	// December is empty, so June was rebalanced from 15935 9271 3467.
	assert.Equal(t, ledger.Snapshot{Equity: 17203, Debt: 8601, Gold: 2867}, mustGet(t, in, calendar.June))
	assert.True(t, mustGet(t, in, calendar.December).IsZero())
}

func TestRunLogsAbsorbedErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	script, err := command.ParseBytes(context.Background(), []byte("ALLOCATE 1 2 3\nSIP x y z\n"))
	assert.NoError(t, err)

	in := New(&bytes.Buffer{}, WithLogger(logger))
	assert.NoError(t, in.Run(context.Background(), script.Commands))

	var absorbed []*logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Message == "continuing after non-fatal error" {
			absorbed = append(absorbed, entry)
		}
	}
	assert.Equal(t, 1, len(absorbed))
	assert.Equal(t, "SIP", absorbed[0].Data["command"])
	assert.IsError(t, absorbed[0].Data[logrus.ErrorKey].(error), ErrMalformedSIP)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := New(&bytes.Buffer{})
	err := in.Run(ctx, []command.Command{command.Parse("ALLOCATE 1 2 3")})
	assert.IsError(t, err, context.Canceled)
	assert.False(t, in.Ledger().Initialized())
}
