package specfile

import (
	"go.followtheprocess.codes/specify"
)

// Run runs every block in file with r, in the order they were written.
//
// Blocks are declared exactly as they would be in Go, so each it runs as soon
// as it is reached and only sees the lets and hooks written above it.
func Run(file File, r *specify.Runner) {
	for _, block := range file.Blocks {
		switch block.Kind {
		case KindDescribe:
			r.Describe(block.Description, scope(block.Body), block.Metadata)
		case KindContext:
			r.Context(block.Description, scope(block.Body), block.Metadata)
		}
	}
}

// scope returns the block function of a describe or context containing blocks.
func scope(blocks []Block) func(s *specify.Scope) {
	return func(s *specify.Scope) {
		for _, block := range blocks {
			declare(s, block)
		}
	}
}

// declare declares block in s.
func declare(s *specify.Scope, block Block) {
	x := block.Expr

	switch block.Kind {
	case KindDescribe:
		s.Describe(block.Description, scope(block.Body), block.Metadata)
	case KindContext:
		s.Context(block.Description, scope(block.Body), block.Metadata)
	case KindIt:
		s.It(block.Description, example(block.Body), block.Metadata)
	case KindLet:
		s.Let(block.Name, func(e *specify.Example) any { return evaluate(e, x) })
	case KindBefore:
		s.Before(func(e *specify.Example) { evaluate(e, x) })
	case KindAfter:
		s.After(func(e *specify.Example) { evaluate(e, x) })
	}
}

// example returns the body of an it made up of steps.
func example(steps []Block) func(e *specify.Example) {
	return func(e *specify.Example) {
		for _, step := range steps {
			perform(e, step)
		}
	}
}

// perform runs a single step of an example.
func perform(e *specify.Example, step Block) {
	switch step.Kind {
	case KindDo:
		evaluate(e, step.Expr)
	case KindExpect:
		if step.Want.IsZero() {
			x := step.Expr
			e.Expect(func(e *specify.Example) any { return evaluate(e, x) }).To(raiseError(step.RaiseError))
			return
		}
		e.Expect(evaluate(e, step.Expr)).To(specify.Eq(evaluate(e, step.Want)))
	case KindExpectValue:
		value := evaluate(e, step.Expr)
		if step.Want.IsZero() {
			e.Expect(value).To(raiseError(step.RaiseError))
			return
		}
		e.Expect(value).To(specify.Eq(evaluate(e, step.Want)))
	}
}

// raiseError returns an expectation that an error of kind, or one of its subkinds,
// is raised.
func raiseError(kind ErrorKind) specify.Expectation {
	return specify.RaiseErrorMatching(string(kind), func(err error) bool {
		return kindOf(err).Matches(kind)
	})
}
