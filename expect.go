package specify

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// ExpectationRequest is an operand waiting to be checked, returned from [Example.Expect].
type ExpectationRequest struct {
	example *Example
	operand any
}

// To evaluates the expectation against the operand, raising an [AssertionFailure]
// if it does not hold.
func (r ExpectationRequest) To(expectation Expectation) {
	if expectation == nil {
		usagef("To called with a nil expectation")
	}

	if err := expectation.evaluate(r.example, r.operand); err != nil {
		panic(err)
	}
}

// Expectation is a rule an operand is checked against.
//
// There are exactly two kinds: equality ([Eq]) and error matching ([RaiseError],
// [RaiseErrorAs] and [RaiseErrorMatching]).
type Expectation interface {
	evaluate(e *Example, operand any) error
}

// Eq returns an [Expectation] that holds when the operand equals expected.
//
// A deferred operand is run first and its result compared.
func Eq(expected any) Expectation {
	return equality{expected: expected}
}

type equality struct {
	expected any
}

func (q equality) evaluate(e *Example, operand any) error {
	actual := operand
	if deferred, ok := deferral(operand); ok {
		value, err := deferred(e)
		if err != nil {
			return err
		}
		actual = value
	}

	if cmp.Equal(actual, q.expected, cmp.Exporter(exportAll)) {
		return nil
	}

	want, got := fmt.Sprintf("%#v", q.expected), fmt.Sprintf("%#v", actual)
	if want == got {
		// Same representation, different types e.g. int(2) and int64(2)
		want, got = fmt.Sprintf("%T(%s)", q.expected, want), fmt.Sprintf("%T(%s)", actual, got)
	}

	failure := &AssertionFailure{
		Message: fmt.Sprintf("expected %s but got %s", want, got),
	}

	if composite(q.expected) || composite(actual) {
		failure.Diff = cmp.Diff(q.expected, actual, cmp.Exporter(exportAll))
	}

	return failure
}

// exportAll lets equality look inside unexported struct fields.
func exportAll(reflect.Type) bool {
	return true
}

// composite reports whether value is of a kind for which a structural diff is
// more helpful than the plain representation.
func composite(value any) bool {
	if value == nil {
		return false
	}

	switch reflect.TypeOf(value).Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Pointer:
		return true
	default:
		return false
	}
}

// RaiseError returns an [Expectation] that the deferred operand raises an error
// matching target according to [errors.Is].
func RaiseError(target error) Expectation {
	return raising{
		kind:  fmt.Sprintf("%T (%v)", target, target),
		match: func(err error) bool { return errors.Is(err, target) },
	}
}

// RaiseErrorAs returns an [Expectation] that the deferred operand raises an error
// of type T, or one wrapping a T, according to [errors.As].
func RaiseErrorAs[T error]() Expectation {
	var zero T
	return raising{
		kind: fmt.Sprintf("%T", zero),
		match: func(err error) bool {
			var target T
			return errors.As(err, &target)
		},
	}
}

// RaiseErrorMatching returns an [Expectation] that the deferred operand raises an
// error for which match returns true. kind describes the expected error in failure
// messages.
func RaiseErrorMatching(kind string, match func(err error) bool) Expectation {
	return raising{kind: kind, match: match}
}

type raising struct {
	match func(err error) bool
	kind  string
}

// evaluate runs the deferred operand, a computation that completes without raising
// satisfies the expectation, only a raise of the wrong kind fails it.
func (r raising) evaluate(e *Example, operand any) error {
	deferred, ok := deferral(operand)
	if !ok {
		return &UsageError{
			Message: fmt.Sprintf(
				"raise_error requires a deferred block which is expected to raise %s, got concrete value %#v",
				r.kind,
				operand,
			),
		}
	}

	_, err := deferred(e)
	if err == nil || r.match(err) {
		return nil
	}

	return &AssertionFailure{
		Message: fmt.Sprintf("expected %s to be raised but got %s", r.kind, raisedDescription(err)),
	}
}

// raisedDescription describes an error that was raised for a failure message.
//
// An error with an ErrorKind method names its own kind in its message, so is
// shown as is. Anything else is shown with its Go type.
func raisedDescription(err error) string {
	if _, ok := err.(interface{ ErrorKind() string }); ok {
		return err.Error()
	}

	return fmt.Sprintf("%T: %v", err, err)
}

// deferral normalises the supported deferred computation shapes into one,
// reporting false if operand is a concrete value.
//
// Besides the common shapes handled directly, any function taking nothing or just
// the *Example, and returning nothing, a value, an error, or a value and an error,
// is deferred. Any other function is a usage error rather than a concrete value.
//
// The returned function recovers a panic and returns it as the error.
func deferral(operand any) (func(e *Example) (any, error), bool) {
	var fn func(e *Example) (any, error)

	switch op := operand.(type) {
	case func():
		fn = func(*Example) (any, error) { op(); return nil, nil }
	case func() any:
		fn = func(*Example) (any, error) { return op(), nil }
	case func() error:
		fn = func(*Example) (any, error) { return nil, op() }
	case func(*Example) any:
		fn = func(e *Example) (any, error) { return op(e), nil }
	case func(*Example) error:
		fn = func(e *Example) (any, error) { return nil, op(e) }
	case func(*Example) (any, error):
		fn = op
	default:
		value := reflect.ValueOf(operand)
		if value.Kind() != reflect.Func {
			return nil, false
		}
		fn = reflectDeferral(value)
	}

	return func(e *Example) (value any, err error) {
		defer func() {
			if recovered := recover(); recovered != nil {
				value = nil
				err = asError(recovered)
			}
		}()

		return fn(e)
	}, true
}

var (
	exampleType = reflect.TypeFor[*Example]()
	errorType   = reflect.TypeFor[error]()
)

// reflectDeferral adapts a function of any deferrable signature, raising a
// [UsageError] for one that cannot be deferred.
func reflectDeferral(fn reflect.Value) func(e *Example) (any, error) {
	t := fn.Type()

	takesExample := t.NumIn() == 1 && t.In(0) == exampleType
	if t.IsVariadic() || (t.NumIn() != 0 && !takesExample) {
		usagef("cannot defer %s, a deferred block takes no arguments or only the *Example", t)
	}

	returnsError := t.NumOut() > 0 && t.Out(t.NumOut()-1) == errorType
	if t.NumOut() > 2 || (t.NumOut() == 2 && !returnsError) {
		usagef("cannot defer %s, a deferred block returns at most a value and an error", t)
	}

	return func(e *Example) (any, error) {
		var in []reflect.Value
		if takesExample {
			in = []reflect.Value{reflect.ValueOf(e)}
		}

		out := fn.Call(in)

		var value any
		var err error
		if returnsError {
			if last := out[len(out)-1]; !last.IsNil() {
				err = last.Interface().(error)
			}
			out = out[:len(out)-1]
		}

		if len(out) == 1 {
			value = out[0].Interface()
		}

		return value, err
	}
}
