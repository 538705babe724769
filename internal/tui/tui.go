// Package tui implements the terminal user interface for picking a spec file to run.
package tui

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"go.followtheprocess.codes/specify/internal/app"
	"go.followtheprocess.codes/specify/internal/tui/components/filepicker"
)

// ErrNothingPicked is returned from [Run] when the user quits without picking a file.
var ErrNothingPicked = errors.New("no spec file picked")

// Run runs the TUI starting in dir, this is what happens when users call `specify`
// with no arguments.
//
// Once a spec file is picked the TUI closes and the file is run exactly as it would
// be with `specify run <file>`.
func Run(dir string, stdout, stderr io.Writer, options app.RunOptions) error {
	model := filepicker.New(dir)

	tm, err := tea.NewProgram(model).Run()
	if err != nil {
		return err
	}

	final, ok := tm.(filepicker.Model)
	if !ok {
		return fmt.Errorf("tui error, final model was not as expected: %T", tm)
	}

	file := final.Selected()
	if file == "" {
		return ErrNothingPicked
	}

	return app.New(stdout, stderr, false).Run([]string{file}, options)
}
