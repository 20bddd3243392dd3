package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/robinvdvleuten/mymoney/cli"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""
)

func main() {
	_ = godotenv.Load()

	var c cli.CLI
	parser, err := cli.New(&c, kong.Vars{"version": buildVersion()})
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := cli.Run(ctx, &c.Globals); err != nil {
		var cmdErr *cli.CommandError
		if errors.As(err, &cmdErr) {
			os.Exit(cmdErr.ExitCode())
		}
		ctx.FatalIfErrorf(err)
	}
}

func buildVersion() string {
	version := Version
	if version == "" {
		version = "dev"
	}
	if CommitSHA == "" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, CommitSHA)
}
