package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/robinvdvleuten/mymoney/config"
	"github.com/robinvdvleuten/mymoney/interpreter"
	"github.com/robinvdvleuten/mymoney/store"
)

type RunCmd struct {
	File   string `help:"Command file to execute." arg:"" optional:""`
	Record string `help:"Record the run into a SQLite database. Defaults to record.sqlite_path." placeholder:"DB"`
}

func (cmd *RunCmd) Run(ctx *kong.Context, globals *Globals, cfg *config.Config, log logrus.FieldLogger) error {
	if err := checkInputFile(ctx.Stdout, cmd.File); err != nil {
		return err
	}

	runCtx, reportTelemetry := startTelemetry(ctx, cfg, fmt.Sprintf("run %s", filepath.Base(cmd.File)))
	defer reportTelemetry()

	exec, err := execute(runCtx, cfg, cmd.File, ctx.Stdout, log)
	if err != nil {
		return reportFailure(ctx, globals, nil, err)
	}

	path := cmd.Record
	if path == "" {
		path = cfg.Record.SQLitePath
	}
	if err := recordRun(runCtx, ctx, path, exec, log); err != nil {
		return err
	}

	if exec.err != nil {
		return reportFailure(ctx, globals, exec.script.Source, exec.err)
	}
	return nil
}

// openRecorder returns a SQLite recorder for path, or a no-op recorder when
// path is empty.
func openRecorder(path string, log logrus.FieldLogger) (store.Recorder, error) {
	if path == "" {
		return store.NewNoopRecorder(), nil
	}
	return store.OpenSQLite(path, store.WithLogger(log))
}

func recordRun(ctx context.Context, kctx *kong.Context, path string, exec *execution, log logrus.FieldLogger) error {
	recorder, err := openRecorder(path, log)
	if err != nil {
		return err
	}
	defer recorder.Close() //nolint:errcheck

	filename, err := filepath.Abs(exec.script.Filename)
	if err != nil {
		filename = exec.script.Filename
	}

	run := store.Run{
		Filename: filename,
		Commands: len(exec.script.Commands),
	}
	if exec.err != nil {
		run.Failure = interpreter.Message(exec.err)
	}

	id, err := recorder.RecordRun(ctx, run, exec.interp.Ledger().Snapshots())
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	if id > 0 {
		printInfof(kctx.Stderr, "Recorded run #%d in %s", id, pathStyle.Render(path))
	}
	return nil
}
