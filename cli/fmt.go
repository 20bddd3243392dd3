package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/mymoney/config"
	"github.com/robinvdvleuten/mymoney/formatter"
)

type FmtCmd struct {
	File          string `help:"Command file to format." arg:"" type:"existingfile"`
	Write         bool   `help:"Write the result back to the file instead of stdout." short:"w"`
	Yes           bool   `help:"Do not ask for confirmation before writing." short:"y"`
	Align         bool   `help:"Align argument columns."`
	RatePrecision int    `help:"Decimals written for CHANGE rates." default:"2"`
}

func (cmd *FmtCmd) Run(ctx *kong.Context, cfg *config.Config) error {
	runCtx, reportTelemetry := startTelemetry(ctx, cfg, fmt.Sprintf("fmt %s", filepath.Base(cmd.File)))
	defer reportTelemetry()

	source, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	f := formatter.New(
		formatter.WithAlignment(cmd.Align),
		formatter.WithRatePrecision(cmd.RatePrecision),
	)

	var buf bytes.Buffer
	if err := f.Format(runCtx, source, &buf); err != nil {
		return err
	}

	if !cmd.Write {
		_, err := ctx.Stdout.Write(buf.Bytes())
		return err
	}

	if bytes.Equal(buf.Bytes(), source) {
		printSuccess(ctx.Stderr, fmt.Sprintf("%s is already formatted", pathStyle.Render(cmd.File)))
		return nil
	}

	if !cmd.Yes && isTerminal() {
		confirmed, err := promptYesNo(fmt.Sprintf("Overwrite %s with the formatted version?", cmd.File))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !confirmed {
			printInfof(ctx.Stderr, "Left %s unchanged", pathStyle.Render(cmd.File))
			return nil
		}
	}

	info, err := os.Stat(cmd.File)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cmd.File, buf.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	printSuccess(ctx.Stderr, fmt.Sprintf("Formatted %s", pathStyle.Render(cmd.File)))
	return nil
}
