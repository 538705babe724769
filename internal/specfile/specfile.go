// Package specfile loads specs written as YAML files and runs them with a [specify.Runner].
//
// A spec file is a list of blocks, each a mapping with exactly one key naming
// what it is:
//
//	# arithmetic.yaml
//	- describe: arithmetic
//	  body:
//	    - let: five
//	      be: 5
//	    - before: print("setting up")
//	    - it: adds
//	      metadata:
//	        slow: false
//	      body:
//	        - expect: five + 1
//	          eq: 6
//	        - expect: raise("ValueError", "nope")
//	          raise_error: ValueError
//
// Everything to the right of let's be, before, after, do, expect, expect_value and
// eq is an expression in the expr language (https://expr-lang.org). Any name an
// expression uses that it does not declare itself is looked up as a binding.
package specfile

import (
	"errors"
	"fmt"
	"strings"

	"go.followtheprocess.codes/specify"
	"go.followtheprocess.codes/specify/internal/syntax"
)

// ErrInvalid is returned from [Parse] when the file is not a valid spec, details
// on each problem are passed to the [syntax.ErrorHandler] at the moment it is found.
var ErrInvalid = errors.New("invalid spec file")

// BlockKind is the kind of a [Block], named by its key in the file.
type BlockKind int

const (
	KindDescribe    BlockKind = iota // describe: <description>
	KindContext                      // context: <description>
	KindIt                           // it: <description>
	KindLet                          // let: <name>, be: <expr>
	KindBefore                       // before: <expr>
	KindAfter                        // after: <expr>
	KindExpect                       // expect: <expr>, eq: <expr> | raise_error: <kind>
	KindExpectValue                  // expect_value: <expr>, eq: <expr> | raise_error: <kind>
	KindDo                           // do: <expr>
)

var kindKeys = [...]string{
	KindDescribe:    "describe",
	KindContext:     "context",
	KindIt:          "it",
	KindLet:         "let",
	KindBefore:      "before",
	KindAfter:       "after",
	KindExpect:      "expect",
	KindExpectValue: "expect_value",
	KindDo:          "do",
}

// String returns the key a [BlockKind] is written with.
func (k BlockKind) String() string {
	if k < 0 || int(k) >= len(kindKeys) {
		return fmt.Sprintf("BlockKind(%d)", int(k))
	}

	return kindKeys[k]
}

// MarshalText implements [encoding.TextMarshaler] for a [BlockKind].
func (k BlockKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// A File is a single parsed spec file.
type File struct {
	Name   string  `json:"name"`             // Name of the file
	Blocks []Block `json:"blocks,omitempty"` // Top level describe and context blocks
}

// String implements [fmt.Stringer] for a [File], showing an outline of the blocks.
func (f File) String() string {
	builder := &strings.Builder{}
	for _, block := range f.Blocks {
		block.write(builder, 0)
	}

	return builder.String()
}

// Block is a single block of a spec file.
//
// Which fields are set depends on the Kind.
type Block struct {
	Metadata    specify.Metadata `json:"metadata,omitempty"`    // describe, context and it
	Description string           `json:"description,omitempty"` // describe, context and it
	Name        string           `json:"name,omitempty"`        // Name of a let
	RaiseError  ErrorKind        `json:"raiseError,omitempty"`  // Kind an expect expects to be raised
	Expr        Expr             `json:"expr,omitzero"`         // The expression of a let, hook, expect or do
	Want        Expr             `json:"eq,omitzero"`           // Expected value of an expect
	Body        []Block          `json:"body,omitempty"`        // Nested blocks of describe, context and it
	Pos         syntax.Position  `json:"-"`                     // Where the block starts
	Kind        BlockKind        `json:"kind"`                  // What the block is
}

// write writes an outline of the block to builder, indented to depth.
func (b Block) write(builder *strings.Builder, depth int) {
	builder.WriteString(strings.Repeat("  ", depth))

	switch b.Kind {
	case KindDescribe, KindContext, KindIt:
		fmt.Fprintf(builder, "%s %s", b.Kind, b.Description)
		if len(b.Metadata) != 0 {
			fmt.Fprintf(builder, " %s", b.Metadata)
		}
	case KindLet:
		fmt.Fprintf(builder, "let %s = %s", b.Name, b.Expr)
	case KindExpect, KindExpectValue:
		fmt.Fprintf(builder, "%s %s", b.Kind, b.Expr)
		if b.Want.IsZero() {
			fmt.Fprintf(builder, " raises %s", b.RaiseError)
		} else {
			fmt.Fprintf(builder, " == %s", b.Want)
		}
	default:
		fmt.Fprintf(builder, "%s %s", b.Kind, b.Expr)
	}

	builder.WriteByte('\n')

	for _, child := range b.Body {
		child.write(builder, depth+1)
	}
}
