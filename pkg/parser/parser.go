// Package parser provides the interface for parsing unit-script source code.
package parser

import (
	"github.com/unit-scripts/cobc/pkg/ast"
)

// Parser is the interface every unit-script parser implementation satisfies.
// This allows the participle-based implementation to be swapped for
// another (e.g. a hand-written recursive-descent one) without touching
// callers.
type Parser interface {
	// ParseFile parses a complete source file into an *ast.File.
	ParseFile(filename string, src []byte) (*ast.File, error)

	// ParseExpr parses a single standalone expression, for tooling and tests.
	ParseExpr(expr string) (ast.Expr, error)
}

// Mode controls parser behavior.
type Mode uint

const (
	// FoldConstants enables the constant-folding pass during AST conversion:
	// binary/unary expressions over two already-folded numeric literals are
	// collapsed into a single *ast.Constant rather than left as an
	// expression tree for the compiler to evaluate at codegen time.
	FoldConstants Mode = 1 << iota
)

// ParseFile is a convenience function that uses the default parser.
func ParseFile(filename string, src []byte, mode Mode) (*ast.File, error) {
	return NewParser(mode).ParseFile(filename, src)
}

// ParseExpr is a convenience function that parses a standalone expression.
func ParseExpr(expr string, mode Mode) (ast.Expr, error) {
	return NewParser(mode).ParseExpr(expr)
}

// NewParser creates a new parser instance with the given mode. This returns
// the participle-based implementation; swapping in another backend only
// requires changing this one factory.
func NewParser(mode Mode) Parser {
	return newParticipleParser(mode)
}
