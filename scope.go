package specify

import (
	"maps"
	"slices"
)

// Producer computes the value of a named binding declared with [Scope.Let].
//
// It is called with the example being run so that it may refer to other bindings.
type Producer func(e *Example) any

// Hook is a before or after hook, run around every example declared after it
// in the same scope or any nested scope.
type Hook func(e *Example)

// A Scope is a single level of nesting in a spec, created by Describe or Context.
//
// Each scope starts with a copy of its parent's bindings and hooks, so anything
// declared in a scope is visible only to that scope and the scopes nested inside it.
type Scope struct {
	runner      *Runner             // The runner executing the spec
	bindings    map[string]Producer // Lazy bindings visible in this scope
	metadata    Metadata            // Merged metadata, child keys shadow parent keys
	description string              // Description of this scope
	before      []Hook              // Before hooks in registration order, outermost first
	after       []Hook              // After hooks in registration order, outermost first
	depth       int                 // Nesting depth, top level scopes are 0
}

// descend returns a new child [Scope] of s.
//
// Note that bindings and hooks are copied rather than shared, this is what stops
// declarations in the child leaking back into s or into the child's siblings.
func (s *Scope) descend(description string, metadata ...Metadata) *Scope {
	bindings := make(map[string]Producer, len(s.bindings))
	maps.Copy(bindings, s.bindings)

	return &Scope{
		runner:      s.runner,
		description: description,
		metadata:    s.metadata.merge(metadata...),
		bindings:    bindings,
		before:      slices.Clone(s.before),
		after:       slices.Clone(s.after),
		depth:       s.depth + 1,
	}
}

// Description returns the description the scope was declared with.
func (s *Scope) Description() string {
	return s.description
}

// Metadata returns a copy of the scope's merged metadata.
func (s *Scope) Metadata() Metadata {
	return s.metadata.merge()
}

// Describe declares a nested scope and runs block in it immediately.
func (s *Scope) Describe(description string, block func(s *Scope), metadata ...Metadata) {
	s.declaring("describe")
	s.runner.enter(s.descend(description, metadata...), block)
}

// Context is an alias for [Scope.Describe], use whichever reads better.
func (s *Scope) Context(description string, block func(s *Scope), metadata ...Metadata) {
	s.declaring("context")
	s.runner.enter(s.descend(description, metadata...), block)
}

// It declares an example and runs it to completion before returning.
//
// The example sees the bindings and hooks of s exactly as they are at the moment
// It is called: a hook declared later in the same scope does not apply to it.
func (s *Scope) It(description string, body func(e *Example), metadata ...Metadata) {
	s.declaring("it")
	s.runner.run(newExample(s.descend(description, metadata...)), body)
}

// Let declares a lazily evaluated, per-example memoised binding in s, replacing
// any binding of the same name inherited from a parent scope.
func (s *Scope) Let(name string, producer Producer) {
	s.declaring("let")
	s.bindings[name] = producer
}

// Before registers a hook to run before every example subsequently declared in s
// or in scopes nested in s.
func (s *Scope) Before(hook Hook) {
	s.declaring("before")
	s.before = append(s.before, hook)
}

// After registers a hook to run after every example subsequently declared in s
// or in scopes nested in s, whether that example passes or fails.
func (s *Scope) After(hook Hook) {
	s.declaring("after")
	s.after = append(s.after, hook)
}

// declaring raises a [UsageError] if called while an example is running.
func (s *Scope) declaring(what string) {
	if s.runner.active != nil {
		usagef("'%s' is not valid inside an example (running %q)", what, s.runner.active.Description())
	}
}
