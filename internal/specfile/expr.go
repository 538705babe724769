package specfile

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"unicode"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/builtin"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
	"go.followtheprocess.codes/specify"
	"go.followtheprocess.codes/specify/internal/syntax"
)

// Expr is a compiled expression from a spec file.
type Expr struct {
	program *vm.Program     // The compiled expression, with bindings looked up as they are reached
	Source  string          // The expression as written
	Pos     syntax.Position // Where it was written
}

// String returns the expression as written.
func (x Expr) String() string {
	return x.Source
}

// IsZero reports whether x is the zero Expr, i.e. there was no expression.
func (x Expr) IsZero() bool {
	return x.Source == ""
}

// MarshalText implements [encoding.TextMarshaler] for an [Expr].
func (x Expr) MarshalText() ([]byte, error) {
	return []byte(x.Source), nil
}

// Names that are always available to expressions and so cannot be bound with let.
const (
	raiseFunc = "raise"
	randFunc  = "rand"
	printFunc = "print"
)

// bindingFunc is what every binding an expression refers to is rewritten to call,
// it is not an identifier so no let can ever shadow it.
const bindingFunc = "$binding"

// keywords are the words the expr language reserves.
var keywords = []string{
	"true", "false", "nil", "let", "in", "not", "and", "or", "if", "else",
	"matches", "contains", "startsWith", "endsWith",
}

// functions are the functions compiled into every expression.
var functions = []expr.Option{
	expr.Function(raiseFunc, raise, new(func(string) any), new(func(string, string) any)),
	expr.Function(randFunc, func(...any) (any, error) { return rand.Float64(), nil }, new(func() float64)),
}

// compile compiles source into an [Expr].
//
// Every name source uses without declaring it is rewritten into a call that fetches
// the binding, so a binding only runs if evaluation actually reaches it.
func compile(source string, pos syntax.Position) (Expr, error) {
	tree, err := parser.Parse(source)
	if err != nil {
		return Expr{}, compileError(err)
	}

	patcher := &bindingPatcher{declared: declaredNames(tree.Node)}

	program, err := expr.Compile(source, append(slices.Clone(functions), expr.Patch(patcher))...)
	if err != nil {
		return Expr{}, compileError(err)
	}

	return Expr{
		Source:  source,
		Pos:     pos,
		program: program,
	}, nil
}

// compileError strips the source listing expr adds to its errors, positions are
// reported separately.
func compileError(err error) error {
	var compileErr *file.Error
	if errors.As(err, &compileErr) {
		return errors.New(compileErr.Message)
	}
	return err
}

// declaredNames returns the variables the expression rooted at node declares
// itself with let.
func declaredNames(node ast.Node) []string {
	collector := &declarationCollector{}
	ast.Walk(&node, collector)
	return collector.declared
}

// declarationCollector is an [ast.Visitor] recording the variables an expression
// declares.
type declarationCollector struct {
	declared []string
}

func (c *declarationCollector) Visit(node *ast.Node) {
	if n, ok := (*node).(*ast.VariableDeclaratorNode); ok {
		c.declared = append(c.declared, n.Name)
	}
}

// bindingPatcher is an [ast.Visitor] rewriting each identifier that must come
// from a let into bindingFunc("name").
type bindingPatcher struct {
	declared []string
}

func (p *bindingPatcher) Visit(node *ast.Node) {
	ident, ok := (*node).(*ast.IdentifierNode)
	if !ok || reserved(ident.Value) || slices.Contains(p.declared, ident.Value) {
		return
	}

	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: bindingFunc},
		Arguments: []ast.Node{&ast.StringNode{Value: ident.Value}},
	})
}

// reserved reports whether name belongs to the language or the runner.
func reserved(name string) bool {
	switch name {
	case raiseFunc, randFunc, printFunc, bindingFunc, "$env":
		return true
	}

	if _, ok := builtin.Index[name]; ok {
		return true
	}

	return slices.Contains(keywords, name)
}

// bindable reports whether name may be declared with let.
func bindable(name string) bool {
	return isIdentifier(name) && !reserved(name)
}

// isIdentifier reports whether s is a letter or underscore followed by any number
// of letters, digits or underscores.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}

	return true
}

// evaluate runs x for the example e and returns its value.
//
// Bindings are resolved through e when evaluation reaches them, so one behind a
// short circuit or an untaken branch never runs. Anything raised along the way is
// raised again as a *RaisedError.
func evaluate(e *specify.Example, x Expr) any {
	defer func() {
		if recovered := recover(); recovered != nil {
			panic(raised(recovered))
		}
	}()

	env := map[string]any{
		bindingFunc: func(name string) any { return e.Get(name) },
		printFunc:   printer(e),
	}

	value, err := expr.Run(x.program, env)
	if err != nil {
		panic(err)
	}

	return value
}

// printer returns the print function for e, it writes its arguments to the report
// separated by spaces.
func printer(e *specify.Example) func(args ...any) any {
	return func(args ...any) any {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, fmt.Sprint(arg))
		}

		e.Printf("%s", strings.Join(parts, " "))
		return nil
	}
}

// raise implements the raise function, raise(kind) or raise(kind, message).
func raise(params ...any) (any, error) {
	kind := ErrorKind(fmt.Sprint(params[0]))
	if !kind.IsValid() {
		return nil, &specify.UsageError{Message: fmt.Sprintf("raise: %q is not a valid error kind", kind)}
	}

	err := &RaisedError{Kind: kind}
	if len(params) > 1 {
		err.Message = fmt.Sprint(params[1])
	}

	return nil, err
}
