package specify

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
)

const maxFrames = 64 // Deepest call stack captured for a failure

// failure is a raised condition recovered at an example or scope boundary.
type failure struct {
	err   error    // What was raised
	trace []string // Call stack at the point of the raise, most recent call first
}

// attempt calls fn, recovering anything it raises as a [failure] along with the
// call stack from where it was raised.
func attempt(fn func()) (f *failure) {
	defer func() {
		if recovered := recover(); recovered != nil {
			f = &failure{
				err:   asError(recovered),
				trace: panicTrace(),
			}
		}
	}()

	fn()

	return nil
}

// panicTrace returns the call stack of a panicking goroutine, meant to be called
// from a deferred recover.
//
// Frames belonging to the recovery itself and to the go runtime are dropped so that
// the first frame is the one that raised.
func panicTrace() []string {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(0, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var (
		trace     []string
		panicking bool
	)
	for {
		frame, more := frames.Next()
		switch {
		case frame.Function == "runtime.gopanic":
			panicking = true
		case panicking && !strings.HasPrefix(frame.Function, "runtime."):
			trace = append(trace, fmt.Sprintf("%s:%d in %s", frame.File, frame.Line, frame.Function))
		}

		if !more {
			break
		}
	}

	return trace
}

// backtrace returns the trace in the order it is reported, outermost call first
// and the raising call last, directly above the failure message.
func (f *failure) backtrace() []string {
	reversed := slices.Clone(f.trace)
	slices.Reverse(reversed)
	return reversed
}
