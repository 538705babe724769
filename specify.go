// Package specify is a small behaviour specification test runner.
//
// Specs are declared with nested Describe/Context blocks containing examples ([Scope.It]),
// lazily evaluated bindings ([Scope.Let]) and before/after hooks. There is no separate
// collection phase, every block runs the moment it is declared and every example runs
// to completion, and is reported, before the block that declared it carries on.
//
// One consequence of this is that a hook only applies to the examples declared after
// it:
//
//	r := specify.New(os.Stdout)
//	r.Describe("numbers", func(s *specify.Scope) {
//		s.Let("five", func(e *specify.Example) any { return 5 })
//
//		s.It("can use let", func(e *specify.Example) {
//			e.Expect(e.Get("five")).To(specify.Eq(5))
//		})
//
//		s.After(func(e *specify.Example) {
//			// Never runs for "can use let"
//		})
//	})
//
// Failures are reported, never propagated: one failing example (or scope) never stops
// any other from running.
package specify

import "os"

// std is the runner behind the package level declaration functions.
var std = New(os.Stdout)

// Describe declares a top level scope on a runner that reports to [os.Stdout].
func Describe(description string, block func(s *Scope), metadata ...Metadata) {
	std.Describe(description, block, metadata...)
}

// Context declares a top level scope on a runner that reports to [os.Stdout].
func Context(description string, block func(s *Scope), metadata ...Metadata) {
	std.Context(description, block, metadata...)
}

// AnyFailed reports whether anything declared with the package level [Describe] or
// [Context] has failed, for use in choosing a process exit code.
func AnyFailed() bool {
	return std.Failed()
}
