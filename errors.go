package specify

import (
	"errors"
	"fmt"
)

// AssertionFailure is raised when an expectation does not hold.
type AssertionFailure struct {
	Message string // Human readable description of the mismatch
	Diff    string // Optional structural diff (-want +got), empty for scalar values
}

// Error implements the error interface for [AssertionFailure].
func (a *AssertionFailure) Error() string {
	return a.Message
}

// UnknownBindingError is raised when an example asks for a binding that was
// never declared anywhere in its scope chain.
type UnknownBindingError struct {
	Name string // Name of the binding that was asked for
}

// Error implements the error interface for [UnknownBindingError].
func (u *UnknownBindingError) Error() string {
	return fmt.Sprintf("unknown binding %q: no let with this name in scope", u.Name)
}

// UsageError is raised when the declaration surface is used incorrectly, e.g.
// declaring a hook from inside a running example, or passing a concrete value
// to an expectation that needs a deferred block.
type UsageError struct {
	Message string
}

// Error implements the error interface for [UsageError].
func (u *UsageError) Error() string {
	return u.Message
}

// usagef raises a [UsageError] with a formatted message.
func usagef(format string, args ...any) {
	panic(&UsageError{Message: fmt.Sprintf(format, args...)})
}

// PanicError wraps a panic value that was not itself an error.
type PanicError struct {
	Value any // The value passed to panic
}

// Error implements the error interface for [PanicError].
func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// asError converts a recovered panic value into an error.
func asError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return err
	}

	return &PanicError{Value: recovered}
}

// diffOf returns the structural diff carried by err if it is, or wraps, an
// [AssertionFailure].
func diffOf(err error) string {
	var failure *AssertionFailure
	if errors.As(err, &failure) {
		return failure.Diff
	}

	return ""
}
