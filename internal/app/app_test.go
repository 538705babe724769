package app_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"go.followtheprocess.codes/hue"
	"go.followtheprocess.codes/specify/internal/app"
	"go.followtheprocess.codes/specify/internal/specfile"
	"go.followtheprocess.codes/test"
)

var (
	good    = filepath.Join("testdata", "good.yaml")
	failing = filepath.Join("testdata", "failing.yaml")
	bad     = filepath.Join("testdata", "bad.yaml")
)

func TestCheck(t *testing.T) {
	hue.Enabled(false)

	t.Run("good", func(t *testing.T) {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		specify := app.New(stdout, stderr, false)

		err := specify.Check([]string{good, failing})
		test.Ok(t, err)

		// Stderr should be empty
		test.Equal(t, stderr.String(), "")

		// Stdout should have the success messages
		want := fmt.Sprintf("Success: %s is valid\nSuccess: %s is valid\n", good, failing)
		test.Equal(t, stdout.String(), want)
	})

	t.Run("bad", func(t *testing.T) {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		specify := app.New(stdout, stderr, false)

		err := specify.Check([]string{bad})
		test.Err(t, err)
		test.True(t, errors.Is(err, specfile.ErrInvalid), test.Context("wrong error: %v", err))

		got := stderr.String()

		// Replace \ with / on windows
		if runtime.GOOS == "windows" {
			got = strings.ReplaceAll(got, `\`, "/")
		}

		// Stderr should have the problem, with the offending line shown
		test.True(
			t,
			strings.Contains(got, "testdata/bad.yaml:3:7-9: let five is missing be"),
			test.Context("stderr was:\n%s", got),
		)
		test.True(t, strings.Contains(got, "3 |     - let: five"), test.Context("stderr was:\n%s", got))

		// Stdout should be empty
		test.Equal(t, stdout.String(), "")
	})

	t.Run("missing", func(t *testing.T) {
		specify := app.New(&bytes.Buffer{}, &bytes.Buffer{}, false)

		err := specify.Check([]string{filepath.Join("testdata", "missing.yaml")})
		test.Err(t, err)
	})
}

func TestRun(t *testing.T) {
	t.Run("passing", func(t *testing.T) {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		specify := app.New(stdout, stderr, false)

		err := specify.Run([]string{good}, app.RunOptions{NoColor: true, NoTrace: true})
		test.Ok(t, err)

		want := `arithmetic
  - adds
    (ok)
  - raises
    (ok)

Success: 2 examples, 0 failures
`
		test.Diff(t, stdout.String(), want)
		test.Equal(t, stderr.String(), "")
	})

	t.Run("failing", func(t *testing.T) {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		specify := app.New(stdout, stderr, false)

		err := specify.Run([]string{good, failing}, app.RunOptions{NoColor: true, NoTrace: true})
		test.Err(t, err)
		test.True(t, errors.Is(err, app.ErrFailed), test.Context("wrong error: %v", err))
		test.Equal(t, err.Error(), "specs failed: 3 examples, 1 failure")

		got := stdout.String()
		test.True(t, strings.Contains(got, "  - is wrong\n    (fail)\n      * expected 3 but got 2\n"), test.Context("report was:\n%s", got))
	})

	t.Run("invalid file runs nothing", func(t *testing.T) {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		specify := app.New(stdout, stderr, false)

		err := specify.Run([]string{good, bad}, app.RunOptions{NoColor: true})
		test.Err(t, err)
		test.True(t, errors.Is(err, specfile.ErrInvalid), test.Context("wrong error: %v", err))

		test.Equal(t, stdout.String(), "")
	})

	t.Run("verbose", func(t *testing.T) {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		specify := app.New(stdout, stderr, true)

		err := specify.Run([]string{good}, app.RunOptions{NoColor: true})
		test.Ok(t, err)

		logs := stderr.String()
		test.True(t, strings.Contains(logs, "Loading spec file"), test.Context("logs were:\n%s", logs))
		test.True(t, strings.Contains(logs, "Running example"), test.Context("logs were:\n%s", logs))
		test.True(t, strings.Contains(logs, "Resolving binding"), test.Context("logs were:\n%s", logs))
	})
}

func TestShow(t *testing.T) {
	t.Run("outline", func(t *testing.T) {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		specify := app.New(stdout, stderr, false)

		err := specify.Show(good, app.ShowOptions{})
		test.Ok(t, err)

		want := `describe arithmetic
  let five = 5
  it adds
    expect five + 1 == 6
  it raises
    expect raise("ValueError", "nope") raises ValueError
`
		test.Diff(t, stdout.String(), want)
		test.Equal(t, stderr.String(), "")
	})

	t.Run("json", func(t *testing.T) {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		specify := app.New(stdout, stderr, false)

		err := specify.Show(failing, app.ShowOptions{JSON: true})
		test.Ok(t, err)

		var got map[string]any
		test.Ok(t, json.Unmarshal(stdout.Bytes(), &got))
		test.Equal(t, got["name"], any(failing))

		blocks, ok := got["blocks"].([]any)
		test.True(t, ok, test.Context("blocks was %T", got["blocks"]))
		test.Equal(t, len(blocks), 1)
	})
}
