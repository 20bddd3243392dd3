// Package interpreter executes MyMoney commands against a portfolio ledger.
//
// Commands are processed strictly in order. Each command updates the session
// parameters and the ledger; BALANCE and REBALANCE also print one line of
// three space-separated amounts (equity, debt, gold).
//
// Failures follow a fixed policy (see Fatal): malformed ALLOCATE arguments,
// unknown keywords and reads of missing state stop the run, while malformed
// SIP or CHANGE arguments and a REBALANCE without a target are absorbed and
// processing continues.
//
// Example usage:
//
//	script, _ := command.ParseBytes(ctx, source)
//
//	in := interpreter.New(os.Stdout)
//	if err := in.Run(ctx, script.Commands); err != nil {
//	    fmt.Println(interpreter.Message(err))
//	    os.Exit(1)
//	}
package interpreter

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/robinvdvleuten/mymoney/command"
	"github.com/robinvdvleuten/mymoney/ledger"
	"github.com/robinvdvleuten/mymoney/telemetry"
)

// Interpreter owns the session and ledger of a single run. It is not safe for
// concurrent use.
type Interpreter struct {
	session Session
	ledger  *ledger.Ledger
	out     io.Writer
	log     logrus.FieldLogger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger used for debug traces and absorbed errors.
func WithLogger(log logrus.FieldLogger) Option {
	return func(in *Interpreter) {
		in.log = log
	}
}

// New creates an interpreter that prints command output to out.
func New(out io.Writer, opts ...Option) *Interpreter {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	in := &Interpreter{
		ledger: ledger.New(),
		out:    out,
		log:    discard,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Session returns a copy of the current session parameters.
func (in *Interpreter) Session() Session {
	return in.session
}

// Ledger returns the ledger maintained by the interpreter.
func (in *Interpreter) Ledger() *ledger.Ledger {
	return in.ledger
}

// Run executes commands in order. It returns the first fatal error, wrapped
// in an *ExecError; absorbed errors are logged and skipped.
func (in *Interpreter) Run(ctx context.Context, commands []command.Command) error {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("interpreter.run (%d commands)", len(commands)))
	defer timer.End()

	for _, cmd := range commands {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := in.Execute(ctx, cmd)
		if err == nil {
			continue
		}
		if Fatal(err) {
			return err
		}
		in.log.WithFields(logrus.Fields{
			"command":  cmd.Kind.String(),
			"position": cmd.Pos.String(),
		}).WithError(err).Debug("continuing after non-fatal error")
	}

	return nil
}

// Execute processes a single command. The returned error, if any, is an
// *ExecError; use Fatal to decide whether processing may continue.
func (in *Interpreter) Execute(ctx context.Context, cmd command.Command) error {
	timer := telemetry.StartTimer(ctx, cmd.String())
	defer timer.End()

	in.log.WithFields(logrus.Fields{
		"command":  cmd.Kind.String(),
		"args":     cmd.Args,
		"position": cmd.Pos.String(),
	}).Debug("executing command")

	var err error
	switch cmd.Kind {
	case command.Allocate:
		err = in.allocate(cmd)
	case command.SIP:
		err = in.sip(cmd)
	case command.Change:
		err = in.change(cmd)
	case command.Balance:
		err = in.balance(cmd)
	case command.Rebalance:
		err = in.rebalance(cmd)
	default:
		err = &UnrecognizedCommandError{Keyword: cmd.Keyword}
	}

	if err != nil {
		return &ExecError{Command: cmd, Err: err}
	}
	return nil
}
