package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"
	"github.com/sirupsen/logrus"

	"github.com/robinvdvleuten/mymoney/config"
)

// DoctorCmd provides doctor utilities for debugging command files.
type DoctorCmd struct {
	Commands DoctorCommandsCmd `cmd:"" help:"Show the parsed commands of a command file."`
	Session  DoctorSessionCmd  `cmd:"" help:"Dump the session and ledger after running a command file."`
}

// DoctorCommandsCmd shows how each line of a command file is parsed.
type DoctorCommandsCmd struct {
	File string `help:"Command file to parse." arg:"" type:"existingfile"`
}

// Run executes the commands subcommand.
func (cmd *DoctorCommandsCmd) Run(ctx *kong.Context, globals *Globals, cfg *config.Config) error {
	script, err := newLoader(cfg).Load(context.Background(), cmd.File)
	if err != nil {
		return reportFailure(ctx, globals, nil, err)
	}

	// Format: KIND line "args"
	for _, c := range script.Commands {
		kind := c.Kind.String()
		if c.Keyword != "" && c.Keyword != kind {
			kind = fmt.Sprintf("%s(%s)", kind, c.Keyword)
		}
		_, _ = fmt.Fprintf(ctx.Stdout, "%-10s %4d    %q\n",
			kind,
			c.Pos.Line,
			c.Args)
	}

	return nil
}

// DoctorSessionCmd dumps the interpreter state after a run.
type DoctorSessionCmd struct {
	File string `help:"Command file to execute." arg:"" type:"existingfile"`
}

// Run executes the session subcommand.
func (cmd *DoctorSessionCmd) Run(ctx *kong.Context, globals *Globals, cfg *config.Config, log logrus.FieldLogger) error {
	exec, err := execute(context.Background(), cfg, cmd.File, io.Discard, log)
	if err != nil {
		return reportFailure(ctx, globals, nil, err)
	}

	p := repr.New(ctx.Stdout, repr.Indent("  "))
	p.Println(exec.interp.Session())
	p.Println(exec.interp.Ledger().Snapshots())

	if exec.err != nil {
		return reportFailure(ctx, globals, exec.script.Source, exec.err)
	}
	return nil
}
