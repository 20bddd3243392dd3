package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/robinvdvleuten/mymoney/command"
	"github.com/robinvdvleuten/mymoney/config"
	"github.com/robinvdvleuten/mymoney/interpreter"
	"github.com/robinvdvleuten/mymoney/loader"
	"github.com/robinvdvleuten/mymoney/output"
	"github.com/robinvdvleuten/mymoney/telemetry"
)

const (
	missingFileMessage = "Error: Supply a file path"
	invalidFileMessage = `Invalid File: to run file execute "mymoney <file_path>"`
)

// checkInputFile prints the usage line for a missing or unusable command
// file and returns a *CommandError.
func checkInputFile(w io.Writer, filename string) error {
	if filename == "" {
		_, _ = fmt.Fprintln(w, missingFileMessage)
		return NewCommandError(1)
	}

	info, err := os.Stat(filename)
	if err != nil || !info.Mode().IsRegular() {
		_, _ = fmt.Fprintln(w, invalidFileMessage)
		return NewCommandError(1)
	}
	return nil
}

// execution is the outcome of interpreting a command file.
type execution struct {
	script *command.Script
	interp *interpreter.Interpreter
	// err is the fatal error that stopped the run, if any.
	err error
}

// newLoader returns a loader honouring the configured size limit.
func newLoader(cfg *config.Config) *loader.Loader {
	return loader.New(loader.WithMaxSize(cfg.Load.MaxSize))
}

// execute loads filename and interprets it, printing command output to out.
// The returned error is only set when the file could not be loaded.
func execute(ctx context.Context, cfg *config.Config, filename string, out io.Writer, log logrus.FieldLogger) (*execution, error) {
	script, err := newLoader(cfg).Load(ctx, filename)
	if err != nil {
		return nil, err
	}

	in := interpreter.New(out, interpreter.WithLogger(log))
	return &execution{
		script: script,
		interp: in,
		err:    in.Run(ctx, script.Commands),
	}, nil
}

// reportFailure prints the user-facing message of err to stdout and, in
// verbose mode, the offending source line to stderr.
func reportFailure(ctx *kong.Context, globals *Globals, source []byte, err error) error {
	_, _ = fmt.Fprintln(ctx.Stdout, interpreter.Message(err))

	if globals.Verbose {
		_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer(source).Render(err))
	}

	return NewCommandError(1)
}

// startTelemetry installs a timing collector when telemetry is enabled. The
// returned function ends the root timer and prints the report once.
func startTelemetry(ctx *kong.Context, cfg *config.Config, name string) (context.Context, func()) {
	runCtx := context.Background()
	if !cfg.Telemetry {
		return runCtx, func() {}
	}

	collector := telemetry.NewTimingCollector()
	runCtx = telemetry.WithCollector(runCtx, collector)
	timer := collector.Start(name)

	var once sync.Once
	return runCtx, func() {
		once.Do(func() {
			timer.End()
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
		})
	}
}
