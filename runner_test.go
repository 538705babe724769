package specify_test

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"go.followtheprocess.codes/hue"
	"go.followtheprocess.codes/log"
	"go.followtheprocess.codes/specify"
	"go.followtheprocess.codes/test"
)

type factoryUser struct {
	Name string
}

func userWithName(name string) *factoryUser {
	return &factoryUser{Name: name}
}

func TestRunnerReport(t *testing.T) {
	r, buf := newRunner(t)

	r.Context("some context", func(s *specify.Scope) {
		s.Let("five", func(*specify.Example) any { return 5 })
		s.Let("random", func(*specify.Example) any { return rand.Float64() })

		s.Before(func(e *specify.Example) { e.Printf("before describe") })

		s.Describe("some examples", func(s *specify.Scope) {
			s.Let("user", func(*specify.Example) any { return userWithName("guy smiley") })

			s.Before(func(e *specify.Example) { e.Printf("before test") })

			s.It("can use factories", func(e *specify.Example) {
				e.Expect(specify.Get[*factoryUser](e, "user").Name).To(specify.Eq("guy smiley"))
			})

			s.It("can pass", func(e *specify.Example) {
				e.Expect(1 + 1).To(specify.Eq(2))
			})

			s.It("can use let", func(e *specify.Example) {
				e.Expect(e.Get("five")).To(specify.Eq(5))
			})

			s.Context("can override lets", func(s *specify.Scope) {
				s.Before(func(e *specify.Example) { e.Printf("before nested") })
				s.Let("five", func(*specify.Example) any { return 6 })
				s.Let("seven", func(e *specify.Example) any { return specify.Get[int](e, "five") + 1 })

				s.It("like this", func(e *specify.Example) {
					e.Expect(e.Get("five")).To(specify.Eq(6))
				})

				s.It("and those can use other similarly scoped lets", func(e *specify.Example) {
					e.Expect(e.Get("seven")).To(specify.Eq(7))
				})

				s.Context("and even if we nest a lot it should be fine", func(s *specify.Scope) {
					s.Let("eight", func(e *specify.Example) any { return specify.Get[int](e, "seven") + 1 })

					s.It("like this", func(e *specify.Example) {
						e.Expect(e.Get("eight")).To(specify.Eq(8))
					})
				})
			})

			s.It("can use let with stable values", func(e *specify.Example) {
				ours := e.Get("random")
				e.Expect(ours).To(specify.Eq(e.Get("random")))
			})

			s.It("can fail", func(e *specify.Example) {
				e.Expect(1 + 1).To(specify.Eq(3))
			}, specify.Metadata{"test": 5})

			s.It("can expect exceptions", func(e *specify.Example) {
				e.Expect(func() {
					panic(&RuntimeErrorLike{msg: "expect me!"})
				}).To(specify.RaiseErrorAs[*RuntimeErrorLike]())
			}, specify.Metadata{"test": 5})

			s.It("can pass after failing", func(*specify.Example) {})

			s.After(func(e *specify.Example) {
				e.Printf("examples are run as they are declared so this is never called")
			})
		})
	})

	want := `some context
  some examples
    - can use factories
      before describe
      before test
      (ok)
    - can pass
      before describe
      before test
      (ok)
    - can use let
      before describe
      before test
      (ok)
    can override lets
      - like this
        before describe
        before test
        before nested
        (ok)
      - and those can use other similarly scoped lets
        before describe
        before test
        before nested
        (ok)
      and even if we nest a lot it should be fine
        - like this
          before describe
          before test
          before nested
          (ok)
    - can use let with stable values
      before describe
      before test
      (ok)
    - can fail
      before describe
      before test
      (fail)
        metadata: {test: 5}
        * expected 3 but got 2
    - can expect exceptions
      before describe
      before test
      (ok)
    - can pass after failing
      before describe
      before test
      (ok)
`

	test.Diff(t, buf.String(), want)

	summary := r.Summary()
	test.Equal(t, summary, specify.Summary{Examples: 10, Failures: 1})
	test.Equal(t, summary.String(), "10 examples, 1 failure")
	test.True(t, r.Failed())
}

func TestTeardown(t *testing.T) {
	r, buf := newRunner(t)

	var calls []string

	r.Describe("teardown", func(s *specify.Scope) {
		s.After(func(*specify.Example) {
			calls = append(calls, "first after")
			panic(errors.New("teardown broke"))
		})
		s.After(func(*specify.Example) {
			calls = append(calls, "second after")
		})

		s.It("body fails", func(e *specify.Example) {
			e.Expect(1).To(specify.Eq(2))
		})

		s.It("body passes", func(*specify.Example) {})
	})

	want := `teardown
  - body fails
    (fail)
      * expected 2 but got 1
    (teardown fail)
      * teardown broke
  - body passes
    (ok)
    (teardown fail)
      * teardown broke
`

	test.Diff(t, buf.String(), want)
	test.Equal(t, r.Summary(), specify.Summary{Examples: 2, Failures: 2})

	wantCalls := []string{"first after", "second after", "first after", "second after"}
	test.True(t, slices.Equal(calls, wantCalls), test.Context("got calls %v", calls))
}

func TestBeforeHookFailure(t *testing.T) {
	r, buf := newRunner(t)

	var calls []string

	r.Describe("setup", func(s *specify.Scope) {
		s.Before(func(*specify.Example) { panic("setup broke") })
		s.After(func(*specify.Example) { calls = append(calls, "after") })

		s.It("never gets to the body", func(*specify.Example) {
			calls = append(calls, "body")
		})
	})

	want := `setup
  - never gets to the body
    (fail)
      * panic: setup broke
`

	test.Diff(t, buf.String(), want)
	test.True(t, slices.Equal(calls, []string{"after"}), test.Context("got calls %v", calls))
}

func TestRuntimePanicIsAFailure(t *testing.T) {
	r, buf := newRunner(t)

	r.Describe("runtime", func(s *specify.Scope) {
		s.It("dereferences nil", func(*specify.Example) {
			var u *factoryUser
			_ = u.Name
		})
		s.It("carries on", func(*specify.Example) {})
	})

	got := buf.String()
	test.True(t, strings.Contains(got, "invalid memory address or nil pointer dereference"), test.Context("report was:\n%s", got))
	test.Equal(t, r.Summary(), specify.Summary{Examples: 2, Failures: 1})
}

func failingHelper() {
	panic(errors.New("deep down"))
}

func TestBacktrace(t *testing.T) {
	hue.Enabled(false)

	buf := &bytes.Buffer{}
	r := specify.New(buf)

	r.Describe("traces", func(s *specify.Scope) {
		s.It("fails deep down", func(*specify.Example) {
			failingHelper()
		})
	})

	got := buf.String()

	test.True(t, strings.Contains(got, "      * backtrace:\n"), test.Context("report was:\n%s", got))
	test.True(t, strings.Contains(got, "      | "), test.Context("report was:\n%s", got))
	test.True(t, strings.HasSuffix(got, "      * deep down\n"), test.Context("report was:\n%s", got))

	// Outermost call first, the raising call last
	outer := strings.Index(got, "TestBacktrace")
	inner := strings.Index(got, "failingHelper")
	test.True(t, outer != -1 && inner != -1, test.Context("report was:\n%s", got))
	test.True(t, outer < inner, test.Context("frames out of order:\n%s", got))
	test.True(t, !strings.Contains(got, "runtime.gopanic"), test.Context("runtime frames leaked:\n%s", got))
}

func TestSummaryString(t *testing.T) {
	tests := []struct {
		name    string          // Name of the test case
		want    string          // Expected string
		summary specify.Summary // Summary under test
	}{
		{name: "empty", summary: specify.Summary{}, want: "0 examples, 0 failures"},
		{name: "singular", summary: specify.Summary{Examples: 1, Failures: 1}, want: "1 example, 1 failure"},
		{name: "plural", summary: specify.Summary{Examples: 3, Failures: 2}, want: "3 examples, 2 failures"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.Equal(t, tt.summary.String(), tt.want)
		})
	}
}

func TestWithLogger(t *testing.T) {
	hue.Enabled(false)

	report := &bytes.Buffer{}
	logs := &bytes.Buffer{}

	logger := log.New(logs, log.WithLevel(log.LevelDebug))
	r := specify.New(report, specify.WithLogger(logger), specify.WithTrace(false))

	r.Describe("logged", func(s *specify.Scope) {
		s.Let("five", func(*specify.Example) any { return 5 })
		s.It("resolves", func(e *specify.Example) { e.Get("five") })
	})

	test.True(t, strings.Contains(logs.String(), "Running example"), test.Context("logs were:\n%s", logs))
	test.True(t, strings.Contains(logs.String(), "Resolving binding"), test.Context("logs were:\n%s", logs))
	test.True(t, !strings.Contains(report.String(), "Running example"), test.Context("logs leaked into report"))
}
