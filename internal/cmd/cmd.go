// Package cmd implements specify's CLI.
package cmd

import (
	"errors"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/specify/internal/app"
	"go.followtheprocess.codes/specify/internal/tui"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

const long = `
Specs are YAML files of nested describe and context blocks holding examples (it),
lazily evaluated bindings (let) and before/after hooks.

Every block runs the moment it is reached, so an example only sees the lets and
hooks written above it. Failures are reported as they happen and never stop the
rest of the spec from running.

With no arguments, specify opens a picker to choose a spec file to run.
`

// Build returns the root specify CLI command.
func Build() (*cli.Command, error) {
	return cli.New(
		"specify",
		cli.Short("Run behaviour specs written in YAML"),
		cli.Long(long),
		cli.Allow(cli.NoArgs()),
		cli.Version(version),
		cli.Commit(commit),
		cli.BuildDate(date),
		cli.Run(func(cmd *cli.Command, args []string) error {
			err := tui.Run(".", cmd.Stdout(), cmd.Stderr(), app.RunOptions{})
			if errors.Is(err, tui.ErrNothingPicked) {
				return nil
			}
			return err
		}),
		cli.SubCommands(run, check, show),
	)
}

// run returns the run subcommand.
func run() (*cli.Command, error) {
	var (
		options app.RunOptions
		verbose bool
	)
	return cli.New(
		"run",
		cli.Short("Run spec files"),
		cli.Allow(cli.MinArgs(1)),
		cli.Flag(&options.NoColor, "no-color", cli.NoShortHand, false, "Disable colour in the report"),
		cli.Flag(&options.NoTrace, "no-trace", cli.NoShortHand, false, "Leave backtraces out of failure reports"),
		cli.Flag(&verbose, "verbose", 'v', false, "Enable debug logging"),
		cli.Run(func(cmd *cli.Command, args []string) error {
			specify := app.New(cmd.Stdout(), cmd.Stderr(), verbose)
			return specify.Run(args, options)
		}),
	)
}

// check returns the check subcommand.
func check() (*cli.Command, error) {
	return cli.New(
		"check",
		cli.Short("Check spec files for errors without running them"),
		cli.Allow(cli.MinArgs(1)),
		cli.Run(func(cmd *cli.Command, args []string) error {
			specify := app.New(cmd.Stdout(), cmd.Stderr(), false)
			return specify.Check(args)
		}),
	)
}

// show returns the show subcommand.
func show() (*cli.Command, error) {
	var options app.ShowOptions
	return cli.New(
		"show",
		cli.Short("Show an outline of a spec file"),
		cli.RequiredArg("file", "Path of the spec file"),
		cli.Flag(&options.JSON, "json", 'j', false, "Output the file as JSON"),
		cli.Run(func(cmd *cli.Command, args []string) error {
			specify := app.New(cmd.Stdout(), cmd.Stderr(), false)
			return specify.Show(cmd.Arg("file"), options)
		}),
	)
}
