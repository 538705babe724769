package specify

import (
	"fmt"
	"io"

	"go.followtheprocess.codes/log"
)

// Summary is the outcome of everything a [Runner] has run so far.
type Summary struct {
	Examples int // Number of examples run
	Failures int // Number of examples (or scopes) that failed
}

// String returns a one line description of the [Summary] e.g. "12 examples, 1 failure".
func (s Summary) String() string {
	examples := "examples"
	if s.Examples == 1 {
		examples = "example"
	}

	failures := "failures"
	if s.Failures == 1 {
		failures = "failure"
	}

	return fmt.Sprintf("%d %s, %d %s", s.Examples, examples, s.Failures, failures)
}

// Option is a functional option for configuring a [Runner].
type Option func(r *Runner)

// WithLogger sets the logger used for debug tracing of the run, by default
// nothing is logged.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTrace sets whether failure reports include a backtrace, on by default.
func WithTrace(enabled bool) Option {
	return func(r *Runner) {
		r.reporter.trace = enabled
	}
}

// Runner declares and runs scopes and examples, writing the report to
// a sink as it goes.
//
// Everything happens synchronously in the calling goroutine, examples run one at a
// time in the order they are declared. A Runner is not safe for concurrent use.
type Runner struct {
	logger   *log.Logger // Debug logging, never part of the report
	active   *Example    // The example currently running, nil between examples
	reporter reporter    // Writes the report
	summary  Summary     // Running totals
}

// New returns a new [Runner] writing its report to w.
func New(w io.Writer, options ...Option) *Runner {
	r := &Runner{
		logger:   log.New(io.Discard),
		reporter: reporter{w: w, trace: true},
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// root returns the empty scope that all top level scopes descend from.
func (r *Runner) root() *Scope {
	return &Scope{
		runner:   r,
		bindings: make(map[string]Producer),
		depth:    -1,
	}
}

// Describe declares a top level scope and runs block in it immediately.
func (r *Runner) Describe(description string, block func(s *Scope), metadata ...Metadata) {
	r.root().Describe(description, block, metadata...)
}

// Context is an alias for [Runner.Describe].
func (r *Runner) Context(description string, block func(s *Scope), metadata ...Metadata) {
	r.root().Context(description, block, metadata...)
}

// Summary returns the totals of everything run so far.
func (r *Runner) Summary() Summary {
	return r.summary
}

// Failed reports whether anything run so far has failed.
func (r *Runner) Failed() bool {
	return r.summary.Failures > 0
}

// enter runs a scope's block.
//
// Anything raised directly by the block (i.e. not from inside one of its examples)
// is reported against the scope and counted as a failure, but goes no further so
// sibling scopes still run.
func (r *Runner) enter(s *Scope, block func(s *Scope)) {
	r.logger.Debug("Entering scope", "scope", s.description, "depth", s.depth)
	r.reporter.scope(s)

	if f := attempt(func() { block(s) }); f != nil {
		r.summary.Failures++
		r.logger.Debug("Scope failed", "scope", s.description, "error", f.err)
		r.reporter.scopeFailed(s, f)
	}
}

// run drives a single example through its lifecycle.
func (r *Runner) run(e *Example, body func(e *Example)) {
	r.active = e
	r.summary.Examples++

	defer func() {
		r.active = nil
	}()

	r.logger.Debug("Running example", "example", e.Description())
	r.reporter.started(e)
	e.state = Running

	// After hooks are guaranteed to run however the body exits
	defer r.finalize(e)

	f := attempt(func() {
		for _, hook := range e.scope.before {
			hook(e)
		}
		body(e)
	})

	if f != nil {
		e.state = Failed
		r.summary.Failures++
		r.logger.Debug("Example failed", "example", e.Description(), "error", f.err)
		r.reporter.failed(e, f)
		return
	}

	e.state = Passed
	r.reporter.passed(e)
}

// finalize runs every after hook in scope for e, in registration order.
//
// Each hook is isolated from the others, one raising is reported but does not
// stop the rest. A teardown failure never replaces a failure already reported for
// the example body, but an example that passed is counted as failed.
func (r *Runner) finalize(e *Example) {
	for _, hook := range e.scope.after {
		if f := attempt(func() { hook(e) }); f != nil {
			if e.state == Passed {
				r.summary.Failures++
			}
			e.state = Failed
			r.logger.Debug("After hook failed", "example", e.Description(), "error", f.err)
			r.reporter.teardownFailed(e, f)
		}
	}

	r.logger.Debug("Finished example", "example", e.Description(), "state", e.state)
	e.state = Finalized
}
