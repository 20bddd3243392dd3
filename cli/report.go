package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/robinvdvleuten/mymoney/config"
	"github.com/robinvdvleuten/mymoney/output"
	"github.com/robinvdvleuten/mymoney/report"
)

type ReportCmd struct {
	File   string `help:"Command file to execute." arg:"" type:"existingfile"`
	Format string `help:"Output format (table or json). Defaults to report.format." placeholder:"FORMAT"`
}

func (cmd *ReportCmd) Run(ctx *kong.Context, globals *Globals, cfg *config.Config, log logrus.FieldLogger) error {
	name := cmd.Format
	if name == "" {
		name = cfg.Report.Format
	}
	format, err := report.ParseFormat(name)
	if err != nil {
		return err
	}

	runCtx, reportTelemetry := startTelemetry(ctx, cfg, fmt.Sprintf("report %s", filepath.Base(cmd.File)))
	defer reportTelemetry()

	exec, err := execute(runCtx, cfg, cmd.File, io.Discard, log)
	if err != nil {
		return reportFailure(ctx, globals, nil, err)
	}
	if exec.err != nil {
		return reportFailure(ctx, globals, exec.script.Source, exec.err)
	}

	r := report.New(output.NewStyles(ctx.Stdout), report.WithFormat(format))
	return r.Render(ctx.Stdout, report.Input{
		Ledger:  exec.interp.Ledger(),
		Desired: exec.interp.Session().Desired,
	})
}
