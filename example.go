package specify

import (
	"fmt"
	"strings"
)

// Example is a single leaf test case declared with [Scope.It].
//
// It carries a snapshot of the bindings, hooks and metadata in scope when it
// was declared, plus a cache of the bindings resolved while it runs.
type Example struct {
	scope     *Scope          // Leaf scope holding the snapshot
	cache     map[string]any  // Bindings resolved so far during this example
	resolving map[string]bool // Bindings currently being produced, to catch cycles
	state     State           // Current lifecycle state
}

// newExample returns a new [Example] wrapping the given leaf scope.
func newExample(scope *Scope) *Example {
	return &Example{
		scope:     scope,
		cache:     make(map[string]any),
		resolving: make(map[string]bool),
		state:     Pending,
	}
}

// Description returns the description the example was declared with.
func (e *Example) Description() string {
	return e.scope.description
}

// Metadata returns a copy of the example's merged metadata.
func (e *Example) Metadata() Metadata {
	return e.scope.Metadata()
}

// State returns the example's current lifecycle state.
func (e *Example) State() State {
	return e.state
}

// Get resolves the binding called name.
//
// The first call in an example runs the binding's [Producer], every subsequent call
// in the same example returns the same value. A different example runs the
// producer again from scratch.
//
// Get raises an [UnknownBindingError] if no binding called name is in scope.
func (e *Example) Get(name string) any {
	if value, ok := e.cache[name]; ok {
		return value
	}

	producer, ok := e.scope.bindings[name]
	if !ok {
		panic(&UnknownBindingError{Name: name})
	}

	if e.resolving[name] {
		usagef("binding %q depends on itself", name)
	}

	e.resolving[name] = true
	defer delete(e.resolving, name)

	e.scope.runner.logger.Debug("Resolving binding", "binding", name, "example", e.Description())

	value := producer(e)
	e.cache[name] = value

	return value
}

// Get resolves the binding called name and asserts it is of type T, raising a
// [UsageError] if it is not.
func Get[T any](e *Example, name string) T {
	value := e.Get(name)

	typed, ok := value.(T)
	if !ok {
		var zero T
		usagef("binding %q is %T, not %T", name, value, zero)
	}

	return typed
}

// Has reports whether a binding called name is in scope for the example, without
// resolving it.
func (e *Example) Has(name string) bool {
	_, ok := e.scope.bindings[name]
	return ok
}

// Printf writes a line to the report, indented to sit under the example.
func (e *Example) Printf(format string, args ...any) {
	line := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")
	e.scope.runner.reporter.line(e.scope.depth+1, line)
}

// Expect begins an expectation on operand, complete it with [ExpectationRequest.To].
//
// operand is either a concrete value or a deferred computation, one of:
//
//	func()
//	func() any
//	func() error
//	func(*Example) any
//	func(*Example) error
//	func(*Example) (any, error)
//
// A deferred computation is only run when the expectation is evaluated. It
// is considered to have raised if it panics or returns a non-nil error.
func (e *Example) Expect(operand any) ExpectationRequest {
	return ExpectationRequest{example: e, operand: operand}
}
