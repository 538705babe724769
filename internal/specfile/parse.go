package specfile

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
	"go.followtheprocess.codes/specify"
	"go.followtheprocess.codes/specify/internal/syntax"
)

// place is where in the file a block is being read.
type place int

const (
	topLevel  place = iota // The list of blocks making up the file
	inScope                // The body of a describe or context
	inExample              // The body of an it
)

// String returns a description of p for error messages.
func (p place) String() string {
	switch p {
	case topLevel:
		return "at the top level"
	case inScope:
		return "inside describe or context"
	case inExample:
		return "inside it"
	default:
		return fmt.Sprintf("place(%d)", int(p))
	}
}

// allowed are the block kinds that may be written in each place.
var allowed = map[place][]BlockKind{
	topLevel:  {KindDescribe, KindContext},
	inScope:   {KindDescribe, KindContext, KindIt, KindLet, KindBefore, KindAfter},
	inExample: {KindExpect, KindExpectValue, KindDo},
}

// modifiers are the keys other than its own that each block kind may have.
var modifiers = map[BlockKind][]string{
	KindDescribe:    {"metadata", "body"},
	KindContext:     {"metadata", "body"},
	KindIt:          {"metadata", "body"},
	KindLet:         {"be"},
	KindExpect:      {"eq", "raise_error"},
	KindExpectValue: {"eq", "raise_error"},
}

// Parse reads a spec file from r and checks it, compiling every expression.
//
// Each problem found is passed to handler along with its position, if there were
// any the returned error is [ErrInvalid]. name is used only in positions.
func Parse(name string, r io.Reader, handler syntax.ErrorHandler) (File, error) {
	// Spec files are small, it's fine to read the whole thing
	src, err := io.ReadAll(r)
	if err != nil {
		return File{}, fmt.Errorf("failed to read from input: %w", err)
	}

	l := &loader{name: name, handler: handler}

	tree, err := parser.ParseBytes(src, 0)
	if err != nil {
		var yamlErr yaml.Error
		if errors.As(err, &yamlErr) {
			l.errorf(yamlErr.GetToken(), "%s", yamlErr.GetMessage())
		} else {
			l.errorf(nil, "%v", err)
		}
		return File{}, ErrInvalid
	}

	file := File{Name: name}
	for _, doc := range tree.Docs {
		if doc.Body == nil {
			continue
		}
		file.Blocks = append(file.Blocks, l.blocks(doc.Body, topLevel)...)
	}

	if l.hadErrors {
		return File{}, ErrInvalid
	}

	return file, nil
}

// loader turns the YAML tree of a spec file into blocks.
type loader struct {
	handler   syntax.ErrorHandler // The error handler
	name      string              // Name of the file being loaded
	hadErrors bool                // Whether any problems were found
}

// blocks reads a list of blocks written in where.
func (l *loader) blocks(node ast.Node, where place) []Block {
	node = unwrap(node)
	if _, ok := node.(*ast.NullNode); ok || node == nil {
		return nil
	}

	seq, ok := node.(*ast.SequenceNode)
	if !ok {
		l.errorf(start(node), "expected a list of blocks, got %s", describe(node))
		return nil
	}

	blocks := make([]Block, 0, len(seq.Values))
	for _, value := range seq.Values {
		if block, ok := l.block(value, where); ok {
			blocks = append(blocks, block)
		}
	}

	return blocks
}

// block reads a single block written in where, reporting false if it was invalid.
func (l *loader) block(node ast.Node, where place) (Block, bool) {
	node = unwrap(node)

	mapping, ok := node.(ast.MapNode)
	if !ok {
		l.errorf(start(node), "expected a block, got %s", describe(node))
		return Block{}, false
	}

	var (
		primary []*ast.MappingValueNode
		kinds   []BlockKind
		others  []*ast.MappingValueNode
	)

	iter := mapping.MapRange()
	for iter.Next() {
		pair := iter.KeyValue()
		if kind, ok := kindOfKey(key(pair)); ok {
			primary = append(primary, pair)
			kinds = append(kinds, kind)
			continue
		}
		others = append(others, pair)
	}

	switch len(primary) {
	case 0:
		l.errorf(start(node), "block must have one of %s", strings.Join(keysFor(where), ", "))
		return Block{}, false
	case 1:
		// Exactly right
	default:
		l.errorf(primary[1].Key.GetToken(), "block has both %s and %s, only one is allowed", kinds[0], kinds[1])
		return Block{}, false
	}

	head, kind := primary[0], kinds[0]
	if !slices.Contains(allowed[where], kind) {
		l.errorf(head.Key.GetToken(), "%s is not allowed %s", kind, where)
		return Block{}, false
	}

	fields := make(map[string]*ast.MappingValueNode, len(others))
	valid := true
	for _, pair := range others {
		name := key(pair)
		if !slices.Contains(modifiers[kind], name) {
			l.errorf(pair.Key.GetToken(), "unexpected key %q in %s block", name, kind)
			valid = false
			continue
		}
		fields[name] = pair
	}

	block := Block{Kind: kind, Pos: l.position(head.Key.GetToken())}

	switch kind {
	case KindDescribe, KindContext, KindIt:
		block.Description = l.text(head.Value)
		if pair, ok := fields["metadata"]; ok {
			block.Metadata = l.metadata(pair.Value)
		}
		if pair, ok := fields["body"]; ok {
			within := inScope
			if kind == KindIt {
				within = inExample
			}
			block.Body = l.blocks(pair.Value, within)
		}
	case KindLet:
		block.Name = l.text(head.Value)
		if !bindable(block.Name) {
			l.errorf(head.Value.GetToken(), "%q cannot be used as a binding name", block.Name)
			valid = false
		}
		pair, ok := fields["be"]
		if !ok {
			l.errorf(head.Key.GetToken(), "let %s is missing be", block.Name)
			return Block{}, false
		}
		block.Expr, ok = l.expr(pair.Value)
		valid = valid && ok
	case KindExpect, KindExpectValue:
		var ok bool
		block.Expr, ok = l.expr(head.Value)
		valid = valid && ok

		eq, hasEq := fields["eq"]
		raise, hasRaise := fields["raise_error"]
		switch {
		case hasEq && hasRaise:
			l.errorf(raise.Key.GetToken(), "%s has both eq and raise_error, only one is allowed", kind)
			return Block{}, false
		case hasEq:
			block.Want, ok = l.expr(eq.Value)
			valid = valid && ok
		case hasRaise:
			block.RaiseError = ErrorKind(l.text(raise.Value))
			if !block.RaiseError.IsValid() {
				l.errorf(raise.Value.GetToken(), "%q is not a valid error kind", block.RaiseError)
				valid = false
			}
		default:
			l.errorf(head.Key.GetToken(), "%s must be followed by either eq or raise_error", kind)
			return Block{}, false
		}
	default:
		var ok bool
		block.Expr, ok = l.expr(head.Value)
		valid = valid && ok
	}

	return block, valid
}

// expr compiles the expression held in node.
func (l *loader) expr(node ast.Node) (Expr, bool) {
	node = unwrap(node)
	if node == nil {
		l.errorf(nil, "missing expression")
		return Expr{}, false
	}

	var source string
	switch n := node.(type) {
	case *ast.StringNode:
		source = n.Value
	case *ast.LiteralNode:
		source = strings.TrimSpace(n.Value.Value)
	case *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.InfinityNode, *ast.NanNode:
		source = n.GetToken().Value
	case *ast.NullNode:
		l.errorf(n.GetToken(), "missing expression")
		return Expr{}, false
	default:
		l.errorf(start(node), "expected an expression, got %s", describe(node))
		return Expr{}, false
	}

	if strings.TrimSpace(source) == "" {
		l.errorf(node.GetToken(), "missing expression")
		return Expr{}, false
	}

	pos := l.position(node.GetToken())

	compiled, err := compile(source, pos)
	if err != nil {
		l.errorf(node.GetToken(), "bad expression %q: %v", source, err)
		return Expr{}, false
	}

	return compiled, true
}

// text returns the text of the scalar held in node.
func (l *loader) text(node ast.Node) string {
	node = unwrap(node)
	if node == nil {
		l.errorf(nil, "missing value")
		return ""
	}

	switch n := node.(type) {
	case *ast.StringNode:
		return n.Value
	case *ast.LiteralNode:
		return strings.TrimSpace(n.Value.Value)
	case *ast.NullNode:
		l.errorf(n.GetToken(), "missing value")
		return ""
	case *ast.MappingNode, *ast.SequenceNode, *ast.MappingValueNode:
		l.errorf(start(node), "expected a single value, got %s", describe(node))
		return ""
	default:
		return node.GetToken().Value
	}
}

// metadata decodes a mapping of metadata.
func (l *loader) metadata(node ast.Node) specify.Metadata {
	node = unwrap(node)
	if _, ok := node.(*ast.NullNode); ok || node == nil {
		return nil
	}

	if _, ok := node.(ast.MapNode); !ok {
		l.errorf(start(node), "metadata must be a mapping, got %s", describe(node))
		return nil
	}

	var metadata map[string]any
	if err := yaml.NodeToValue(node, &metadata); err != nil {
		l.errorf(start(node), "bad metadata: %v", err)
		return nil
	}

	return metadata
}

// position returns the source position of tok, spanning its value.
func (l *loader) position(tok *token.Token) syntax.Position {
	if tok == nil || tok.Position == nil {
		return syntax.Position{Name: l.name, Line: 1, StartCol: 1, EndCol: 1}
	}

	start := max(tok.Position.Column, 1)
	end := max(start+len(tok.Value)-1, start)

	return syntax.Position{
		Name:     l.name,
		Line:     max(tok.Position.Line, 1),
		StartCol: start,
		EndCol:   end,
	}
}

// errorf calls the installed error handler with the position of tok and
// a formatted message.
func (l *loader) errorf(tok *token.Token, format string, a ...any) {
	l.hadErrors = true

	if l.handler == nil {
		return
	}

	l.handler(l.position(tok), fmt.Sprintf(format, a...))
}

// key returns the text of a mapping key.
func key(pair *ast.MappingValueNode) string {
	return pair.Key.GetToken().Value
}

// kindOfKey returns the [BlockKind] written with key, if there is one.
func kindOfKey(key string) (BlockKind, bool) {
	index := slices.Index(kindKeys[:], key)
	if index == -1 {
		return 0, false
	}

	return BlockKind(index), true
}

// keysFor returns the keys of the blocks allowed in where.
func keysFor(where place) []string {
	keys := make([]string, 0, len(allowed[where]))
	for _, kind := range allowed[where] {
		keys = append(keys, kind.String())
	}

	return keys
}

// start returns the token a node starts at, for a mapping this is its first key.
func start(node ast.Node) *token.Token {
	if mapping, ok := node.(*ast.MappingNode); ok && len(mapping.Values) != 0 {
		return mapping.Values[0].Key.GetToken()
	}

	if pair, ok := node.(*ast.MappingValueNode); ok {
		return pair.Key.GetToken()
	}

	return node.GetToken()
}

// unwrap returns the node an anchor or tag is attached to.
func unwrap(node ast.Node) ast.Node {
	for {
		switch n := node.(type) {
		case *ast.AnchorNode:
			node = n.Value
		case *ast.TagNode:
			node = n.Value
		default:
			return node
		}
	}
}

// describe returns a short description of the kind of YAML node, for error messages.
func describe(node ast.Node) string {
	switch node.Type() {
	case ast.MappingType, ast.MappingValueType:
		return "a mapping"
	case ast.SequenceType:
		return "a list"
	case ast.NullType:
		return "nothing"
	case ast.AliasType:
		return "an alias"
	default:
		return "a single value"
	}
}
