package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/robinvdvleuten/mymoney/config"
	"github.com/robinvdvleuten/mymoney/store"
)

type HistoryCmd struct {
	DB    string `help:"SQLite database with recorded runs. Defaults to record.sqlite_path." arg:"" optional:""`
	Limit int    `help:"Number of runs to list (0 for all)." default:"10"`
	RunID int64  `help:"Show the snapshots recorded for one run." name:"run" placeholder:"ID"`
}

func (cmd *HistoryCmd) Run(ctx *kong.Context, cfg *config.Config, log logrus.FieldLogger) error {
	path := cmd.DB
	if path == "" {
		path = cfg.Record.SQLitePath
	}
	if path == "" {
		return errors.New("no database given and record.sqlite_path is not set")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	recorder, err := store.OpenSQLite(path, store.WithLogger(log))
	if err != nil {
		return err
	}
	defer recorder.Close() //nolint:errcheck

	runCtx, reportTelemetry := startTelemetry(ctx, cfg, "history")
	defer reportTelemetry()

	if cmd.RunID > 0 {
		snapshots, err := recorder.Snapshots(runCtx, cmd.RunID)
		if err != nil {
			return err
		}

		rows := [][]string{{"MONTH", "EQUITY", "DEBT", "GOLD", "TOTAL"}}
		for _, s := range snapshots {
			rows = append(rows, []string{
				s.Month.String(),
				strconv.FormatInt(s.Equity, 10),
				strconv.FormatInt(s.Debt, 10),
				strconv.FormatInt(s.Gold, 10),
				strconv.FormatInt(s.Total(), 10),
			})
		}
		return writeTable(ctx.Stdout, rows, func(col int) bool { return col > 0 })
	}

	runs, err := recorder.Runs(runCtx, cmd.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		printInfof(ctx.Stderr, "No runs recorded in %s", pathStyle.Render(path))
		return nil
	}

	rows := [][]string{{"ID", "RECORDED", "COMMANDS", "STATUS", "FILE"}}
	for _, run := range runs {
		status := "ok"
		if run.Failed() {
			status = "failed: " + run.Failure
		}
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			run.RecordedAt.Local().Format(time.DateTime),
			strconv.Itoa(run.Commands),
			status,
			run.Filename,
		})
	}
	return writeTable(ctx.Stdout, rows, func(col int) bool { return col == 0 || col == 2 })
}
