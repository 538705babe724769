package specify_test

import (
	"math/rand/v2"
	"strings"
	"testing"

	"go.followtheprocess.codes/specify"
	"go.followtheprocess.codes/test"
)

func TestLetMemoisedPerExample(t *testing.T) {
	r, _ := newRunner(t)

	calls := 0
	var values []any

	r.Describe("memo", func(s *specify.Scope) {
		s.Let("counter", func(*specify.Example) any {
			calls++
			return calls
		})

		s.It("first", func(e *specify.Example) {
			first := e.Get("counter")
			e.Expect(e.Get("counter")).To(specify.Eq(first))
			values = append(values, first)
		})

		s.It("second", func(e *specify.Example) {
			values = append(values, e.Get("counter"))
		})

		s.It("never asks", func(*specify.Example) {})
	})

	test.Equal(t, calls, 2, test.Context("producer should run once per example that uses it"))
	test.Equal(t, len(values), 2)
	test.Equal(t, values[0], any(1))
	test.Equal(t, values[1], any(2))
	test.Equal(t, r.Failed(), false)
}

func TestLetStableRandom(t *testing.T) {
	r, _ := newRunner(t)

	var seen []float64

	r.Context("random", func(s *specify.Scope) {
		s.Let("random", func(*specify.Example) any { return rand.Float64() })

		s.It("is stable within an example", func(e *specify.Example) {
			ours := e.Get("random")
			e.Expect(ours).To(specify.Eq(e.Get("random")))
			seen = append(seen, specify.Get[float64](e, "random"))
		})

		s.It("is recomputed in the next", func(e *specify.Example) {
			seen = append(seen, specify.Get[float64](e, "random"))
		})
	})

	test.Equal(t, r.Failed(), false)
	test.Equal(t, len(seen), 2)
}

func TestLetNeverEvaluatedUnlessUsed(t *testing.T) {
	r, _ := newRunner(t)

	r.Describe("lazy", func(s *specify.Scope) {
		s.Let("explosive", func(*specify.Example) any { panic("should not run") })
		s.It("does not touch it", func(e *specify.Example) {
			e.Expect(e.Has("explosive")).To(specify.Eq(true))
		})
	})

	test.Equal(t, r.Failed(), false)
}

func TestBindingErrors(t *testing.T) {
	tests := []struct {
		setup func(s *specify.Scope)   // Declare bindings
		body  func(e *specify.Example) // Example body
		name  string                   // Name of the test case
		want  string                   // Expected failure message line
	}{
		{
			name:  "unknown",
			setup: func(*specify.Scope) {},
			body:  func(e *specify.Example) { e.Get("missing") },
			want:  `* unknown binding "missing": no let with this name in scope`,
		},
		{
			name: "self referential",
			setup: func(s *specify.Scope) {
				s.Let("loop", func(e *specify.Example) any { return e.Get("loop") })
			},
			body: func(e *specify.Example) { e.Get("loop") },
			want: `* binding "loop" depends on itself`,
		},
		{
			name: "mutually recursive",
			setup: func(s *specify.Scope) {
				s.Let("a", func(e *specify.Example) any { return e.Get("b") })
				s.Let("b", func(e *specify.Example) any { return e.Get("a") })
			},
			body: func(e *specify.Example) { e.Get("a") },
			want: `* binding "a" depends on itself`,
		},
		{
			name: "wrong type",
			setup: func(s *specify.Scope) {
				s.Let("name", func(*specify.Example) any { return "guy smiley" })
			},
			body: func(e *specify.Example) { specify.Get[int](e, "name") },
			want: `* binding "name" is string, not int`,
		},
		{
			name: "used in a hook",
			setup: func(s *specify.Scope) {
				s.Before(func(e *specify.Example) { e.Get("nope") })
			},
			body: func(*specify.Example) {},
			want: `* unknown binding "nope": no let with this name in scope`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, buf := newRunner(t)

			r.Describe("bindings", func(s *specify.Scope) {
				tt.setup(s)
				s.It("fails", tt.body)
			})

			got := buf.String()
			test.True(t, strings.Contains(got, "    (fail)\n      "+tt.want+"\n"), test.Context("report was:\n%s", got))
			test.Equal(t, r.Summary(), specify.Summary{Examples: 1, Failures: 1})
		})
	}
}
