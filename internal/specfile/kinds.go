package specfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr/file"
	"go.followtheprocess.codes/specify"
)

// ErrorKind is the name of a kind of error raised while running a spec file.
//
// Kinds are dotted names forming a hierarchy: "ValueError.Empty" is a subkind of
// "ValueError", and every kind is a subkind of [BaseError].
type ErrorKind string

// The kinds raised by the runner itself, anything else comes from a call to raise.
const (
	BaseError      ErrorKind = "Error"          // Matches any raised error
	RuntimeError   ErrorKind = "RuntimeError"   // A failure evaluating an expression
	NameError      ErrorKind = "NameError"      // An unknown binding was referenced
	UsageError     ErrorKind = "UsageError"     // The runner was used incorrectly
	AssertionError ErrorKind = "AssertionError" // An expectation did not hold
)

// Matches reports whether k is target or one of its subkinds.
func (k ErrorKind) Matches(target ErrorKind) bool {
	if target == BaseError || k == target {
		return true
	}

	return strings.HasPrefix(string(k), string(target)+".")
}

// IsValid reports whether k is a well formed kind name, one or more identifiers
// separated by dots.
func (k ErrorKind) IsValid() bool {
	if k == "" {
		return false
	}

	for part := range strings.SplitSeq(string(k), ".") {
		if !isIdentifier(part) {
			return false
		}
	}

	return true
}

// RaisedError is an error raised from an expression in a spec file.
type RaisedError struct {
	Kind    ErrorKind // What kind of error it is
	Message string    // Optional detail
}

// Error implements the error interface for [RaisedError].
func (r *RaisedError) Error() string {
	if r.Message == "" {
		return string(r.Kind)
	}

	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}

// ErrorKind returns the name of the kind of r, it is used in place of the Go type
// when describing the error in a failure report.
func (r *RaisedError) ErrorKind() string {
	return string(r.Kind)
}

// raised converts anything recovered while evaluating an expression into
// a [RaisedError] of the appropriate kind.
func raised(recovered any) *RaisedError {
	err, ok := recovered.(error)
	if !ok {
		return &RaisedError{Kind: RuntimeError, Message: fmt.Sprint(recovered)}
	}

	var (
		raise     *RaisedError
		unknown   *specify.UnknownBindingError
		usage     *specify.UsageError
		assertion *specify.AssertionFailure
		runtime   *file.Error
	)

	switch {
	case errors.As(err, &raise):
		return raise
	case errors.As(err, &unknown):
		return &RaisedError{Kind: NameError, Message: unknown.Error()}
	case errors.As(err, &usage):
		return &RaisedError{Kind: UsageError, Message: usage.Message}
	case errors.As(err, &assertion):
		return &RaisedError{Kind: AssertionError, Message: assertion.Message}
	case errors.As(err, &runtime):
		return &RaisedError{Kind: RuntimeError, Message: runtime.Message}
	default:
		return &RaisedError{Kind: RuntimeError, Message: err.Error()}
	}
}

// kindOf returns the [ErrorKind] of err.
func kindOf(err error) ErrorKind {
	return raised(err).Kind
}
