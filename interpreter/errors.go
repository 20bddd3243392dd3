package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/mymoney/command"
)

var (
	// ErrInvalidAllocation is returned when ALLOCATE arguments are not three
	// integers with a non-zero sum. It stops the run.
	ErrInvalidAllocation = errors.New("invalid allocation")

	// ErrMalformedSIP is returned when SIP arguments are not three integers.
	// The run continues with the previous SIP amounts.
	ErrMalformedSIP = errors.New("malformed SIP")

	// ErrMalformedChange is returned when CHANGE rates are not three numbers.
	// The month is still recomputed with the previous rates.
	ErrMalformedChange = errors.New("malformed CHANGE")

	// ErrNoRebalanceTarget is returned when neither December nor June holds
	// anything to rebalance. The run continues.
	ErrNoRebalanceTarget = errors.New("no rebalance target")

	// ErrNonFiniteAmount is returned when a computation yields NaN or an
	// infinite amount.
	ErrNonFiniteAmount = errors.New("amount is not a finite number")
)

// RebalanceErrorMessage is printed when REBALANCE has no target month.
const RebalanceErrorMessage = "CANNOT_REBALANCE"

// fatalOnMalformed decides, per command kind, whether malformed numeric
// arguments stop the run. ALLOCATE establishes the state every later command
// relies on; SIP and CHANGE failures are absorbed for compatibility with
// existing command files.
var fatalOnMalformed = map[command.Kind]bool{
	command.Allocate: true,
	command.SIP:      false,
	command.Change:   false,
}

var usages = map[command.Kind]string{
	command.Allocate: "ALLOCATE AMOUNT_EQUITY AMOUNT_DEBT AMOUNT_GOLD",
	command.SIP:      "SIP AMOUNT_EQUITY AMOUNT_DEBT AMOUNT_GOLD",
	command.Change:   "CHANGE RATE_EQUITY% RATE_DEBT% RATE_GOLD% MONTH",
}

// Fatal reports whether err must stop processing of further commands.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoRebalanceTarget) {
		return false
	}
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return fatalOnMalformed[argErr.Kind]
	}
	return true
}

// Message returns the line shown to the user for err: the usage text for
// errors that carry one, the error text otherwise.
func Message(err error) string {
	var u interface{ Usage() string }
	if errors.As(err, &u) {
		return u.Usage()
	}
	return err.Error()
}

// ArgumentError is returned when the numeric arguments of a command cannot
// be converted.
type ArgumentError struct {
	Kind  command.Kind
	Args  []string
	Err   error // ErrInvalidAllocation, ErrMalformedSIP or ErrMalformedChange
	Cause error
}

func (e *ArgumentError) Error() string {
	if e.Cause == nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Err, e.Cause)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// Usage returns the expected format of the command.
func (e *ArgumentError) Usage() string {
	return fmt.Sprintf("Please supply a valid command format is: %s", usages[e.Kind])
}

// UnrecognizedCommandError is returned for a line whose keyword is not a
// known command, including blank lines. It stops the run.
type UnrecognizedCommandError struct {
	Keyword string
}

func (e *UnrecognizedCommandError) Error() string {
	if e.Keyword == "" {
		return "empty command"
	}
	return fmt.Sprintf("unrecognized command %q", e.Keyword)
}

// Usage lists the valid commands.
func (e *UnrecognizedCommandError) Usage() string {
	names := make([]string, 0, len(command.Kinds()))
	for _, k := range command.Kinds() {
		names = append(names, k.String())
	}
	return fmt.Sprintf("Please enter a valid command. choices are: %s", strings.Join(names, ", "))
}

// MissingParameterError is returned when a command needs a session parameter
// that no earlier command has set, such as CHANGE before any valid SIP.
type MissingParameterError struct {
	Kind      command.Kind
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s requires %s to be set first", e.Kind, e.Parameter)
}

// ExecError ties an error to the command that produced it.
type ExecError struct {
	Command command.Command
	Err     error
}

func (e *ExecError) Error() string {
	return e.Err.Error()
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// GetPosition returns the location of the failing command.
func (e *ExecError) GetPosition() command.Position {
	return e.Command.Pos
}
