package cli

import (
	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/robinvdvleuten/mymoney/config"
)

// Globals defines global flags available to all commands.
type Globals struct {
	Config    string `help:"Configuration file." default:".mymoney.yaml" type:"path" placeholder:"FILE"`
	LogLevel  string `help:"Log level (debug, info, warn, error). Overrides the configuration file." placeholder:"LEVEL"`
	Telemetry bool   `help:"Show timing telemetry for operations."`
	Verbose   bool   `help:"Show the offending line when a command file fails." short:"v"`
}

type Commands struct {
	Globals

	Run     RunCmd     `cmd:"" default:"withargs" help:"Execute a command file and print balances."`
	Report  ReportCmd  `cmd:"" help:"Print the month-by-month portfolio of a command file."`
	Fmt     FmtCmd     `cmd:"" help:"Format a command file."`
	Watch   WatchCmd   `cmd:"" help:"Re-run a command file whenever it changes."`
	History HistoryCmd `cmd:"" help:"List runs recorded in a SQLite database."`
	Doctor  DoctorCmd  `cmd:"" help:"Doctor utilities for debugging command files."`
}

// CLI is the root of the command tree.
type CLI struct {
	Version kong.VersionFlag `help:"Show version information."`
	Commands
}

// New creates the kong parser for c. Options are applied after the
// defaults so callers can replace writers, exit handling and variables.
func New(c *CLI, options ...kong.Option) (*kong.Kong, error) {
	defaults := []kong.Option{
		kong.Name("mymoney"),
		kong.Description("Track an equity, debt and gold portfolio through a year of monthly commands."),
		kong.UsageOnError(),
		kong.Vars{"version": "dev"},
		kong.Bind(&c.Globals),
	}
	return kong.New(c, append(defaults, options...)...)
}

// Run loads the configuration, applies the global flags on top of it and
// runs the selected command.
func Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return err
	}
	if globals.LogLevel != "" {
		cfg.LogLevel = globals.LogLevel
	}
	if globals.Telemetry {
		cfg.Telemetry = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(ctx.Stderr)
	logger.SetLevel(cfg.Level())
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	ctx.BindTo(logger, (*logrus.FieldLogger)(nil))
	return ctx.Run(cfg)
}
