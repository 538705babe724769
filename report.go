package specify

import (
	"fmt"
	"io"
	"strings"

	"go.followtheprocess.codes/hue"
)

const (
	markerOK       = "(ok)"
	markerFail     = "(fail)"
	markerTeardown = "(teardown fail)"
)

// reporter writes human readable progress to a line oriented sink.
type reporter struct {
	w     io.Writer // Where the report goes
	trace bool      // Whether to include backtraces in failure reports
}

// indent returns the leading whitespace for a line at the given depth.
func indent(depth int) string {
	return strings.Repeat("  ", max(depth, 0))
}

// line writes a single uncoloured line at depth.
func (r reporter) line(depth int, text string) {
	fmt.Fprintf(r.w, "%s%s\n", indent(depth), text)
}

// scope reports entering a scope.
func (r reporter) scope(s *Scope) {
	r.line(s.depth, s.description)
}

// started reports an example moving from pending to running.
func (r reporter) started(e *Example) {
	r.line(e.scope.depth, "- "+e.Description())
}

// passed writes the success marker for an example.
func (r reporter) passed(e *Example) {
	fmt.Fprint(r.w, indent(e.scope.depth+1))
	hue.Green.Fprintln(r.w, markerOK)
}

// failed writes the failure marker for an example, followed by the failure details.
func (r reporter) failed(e *Example, f *failure) {
	r.failure(e.scope.depth+1, markerFail, e.scope.metadata, f)
}

// teardownFailed reports an after hook raising.
func (r reporter) teardownFailed(e *Example, f *failure) {
	r.failure(e.scope.depth+1, markerTeardown, e.scope.metadata, f)
}

// scopeFailed reports a scope's block raising outside of any example.
func (r reporter) scopeFailed(s *Scope, f *failure) {
	r.failure(s.depth+1, markerFail, s.metadata, f)
}

// failure writes marker then the details of f: metadata if there is any, the
// backtrace if enabled, the message and any diff.
func (r reporter) failure(depth int, marker string, metadata Metadata, f *failure) {
	fmt.Fprint(r.w, indent(depth))
	hue.Red.Fprintln(r.w, marker)

	detail := indent(depth + 1)

	if len(metadata) > 0 {
		fmt.Fprintf(r.w, "%smetadata: %s\n", detail, metadata)
	}

	if r.trace {
		fmt.Fprint(r.w, detail)
		hue.Red.Fprintln(r.w, "* backtrace:")
		for _, frame := range f.backtrace() {
			fmt.Fprint(r.w, detail)
			hue.Red.Fprint(r.w, "|")
			fmt.Fprintf(r.w, " %s\n", frame)
		}
	}

	fmt.Fprint(r.w, detail)
	hue.Red.Fprintf(r.w, "* %s\n", f.err)

	if diff := diffOf(f.err); diff != "" {
		for line := range strings.Lines(strings.TrimRight(diff, "\n")) {
			fmt.Fprintf(r.w, "%s  %s", detail, line)
		}
		fmt.Fprintln(r.w)
	}
}
