// Package app implements the actual functionality exposed via the CLI.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.followtheprocess.codes/hue"
	"go.followtheprocess.codes/log"
	"go.followtheprocess.codes/msg"
	"go.followtheprocess.codes/specify"
	"go.followtheprocess.codes/specify/internal/specfile"
	"go.followtheprocess.codes/specify/internal/syntax"
)

// ErrFailed is returned from [App.Run] when any example failed.
var ErrFailed = errors.New("specs failed")

// App holds the state of the program.
type App struct {
	stdout io.Writer   // Normal program output is written here
	stderr io.Writer   // Logs and diagnostics
	logger *log.Logger // Debug logging, only shown with --verbose
}

// New returns a new instance of [App].
//
// If debug is true, debug logs are written to stderr.
func New(stdout, stderr io.Writer, debug bool) App {
	level := log.LevelInfo
	if debug {
		level = log.LevelDebug
	}

	return App{
		stdout: stdout,
		stderr: stderr,
		logger: log.New(stderr, log.WithLevel(level)),
	}
}

// RunOptions are the flags passed to the `specify run` subcommand.
type RunOptions struct {
	NoColor bool // Disable colour in the report
	NoTrace bool // Leave backtraces out of failure reports
}

// Run implements the `specify run` subcommand.
//
// Every file is loaded up front so that a mistake in any one of them is reported
// before anything runs. The files then run one after another on a single runner.
func (a App) Run(files []string, options RunOptions) error {
	if options.NoColor {
		hue.Enabled(false)
	}

	specs := make([]specfile.File, 0, len(files))
	for _, file := range files {
		spec, err := a.load(file)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}

	runner := specify.New(
		a.stdout,
		specify.WithLogger(a.logger),
		specify.WithTrace(!options.NoTrace),
	)

	for _, spec := range specs {
		a.logger.Debug("Running spec file", "file", spec.Name, "blocks", len(spec.Blocks))
		specfile.Run(spec, runner)
	}

	summary := runner.Summary()
	fmt.Fprintln(a.stdout)

	if runner.Failed() {
		return fmt.Errorf("%w: %s", ErrFailed, summary)
	}

	msg.Fsuccess(a.stdout, "%s", summary)
	return nil
}

// Check implements the `specify check` subcommand.
func (a App) Check(files []string) error {
	for _, file := range files {
		if _, err := a.load(file); err != nil {
			return err
		}

		msg.Fsuccess(a.stdout, "%s is valid", file)
	}

	return nil
}

// ShowOptions are the flags passed to the `specify show` subcommand.
type ShowOptions struct {
	JSON bool // Output the file in JSON
}

// Show implements the `specify show` subcommand.
func (a App) Show(file string, options ShowOptions) error {
	spec, err := a.load(file)
	if err != nil {
		return err
	}

	if options.JSON {
		return json.NewEncoder(a.stdout).Encode(spec)
	}

	fmt.Fprintln(a.stdout, strings.TrimSpace(spec.String()))
	return nil
}

// load opens and parses a spec file, reporting any problems with it to stderr.
func (a App) load(file string) (specfile.File, error) {
	f, err := os.Open(file)
	if err != nil {
		return specfile.File{}, err
	}
	defer f.Close()

	a.logger.Debug("Loading spec file", "file", file)

	spec, err := specfile.Parse(file, f, syntax.PrettyConsoleHandler(a.stderr))
	if err != nil {
		return specfile.File{}, fmt.Errorf("%s: %w", file, err)
	}

	return spec, nil
}
