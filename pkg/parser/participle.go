// Package parser turns unit-script source text into the pkg/ast tree the
// compiler consumes, using a participle-based grammar (see grammar.go and
// lexer.go) plus a conversion walk (see convert.go).
package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2"

	cobast "github.com/unit-scripts/cobc/pkg/ast"
	cerrors "github.com/unit-scripts/cobc/pkg/errors"
)

// ============================================================================
// Participle Parser Construction
// ============================================================================

// fastLookahead and slowLookahead back a two-phase parse strategy: most
// scripts parse cleanly under a shallow lookahead, which keeps the common
// case fast. A script that fails under the shallow parser is re-parsed with
// a deeper one; participle's error position and expected-token set improve
// with lookahead, so the second pass' error is what gets reported.
const (
	fastLookahead = 1
	slowLookahead = 5
)

type participleParser struct {
	fast *participle.Parser[scriptFile]
	slow *participle.Parser[scriptFile]
	mode Mode
}

func newParticipleParser(mode Mode) Parser {
	def := buildLexer()
	opts := []participle.Option{
		participle.Lexer(def),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "LineDirective"),
		participle.CaseInsensitive(caseInsensitiveTokens...),
	}

	fast := participle.MustBuild[scriptFile](append(opts, participle.UseLookahead(fastLookahead))...)
	slow := participle.MustBuild[scriptFile](append(opts, participle.UseLookahead(slowLookahead))...)

	return &participleParser{fast: fast, slow: slow, mode: mode}
}

func (p *participleParser) ParseFile(filename string, src []byte) (*cobast.File, error) {
	tree, err := p.fast.ParseBytes(filename, src)
	if err != nil {
		tree, err = p.slow.ParseBytes(filename, src)
		if err != nil {
			return nil, p.wrapError(filename, err)
		}
	}

	conv := newConverter(filename, p.mode&FoldConstants != 0)
	return conv.convertFile(tree), nil
}

func (p *participleParser) ParseExpr(expr string) (cobast.Expr, error) {
	src := []byte(fmt.Sprintf("piece __dummy_piece__;\n__dummy_expr_fn__() {\n  var __dummy_result__;\n  __dummy_result__ = %s;\n}\n", expr))

	tree, err := p.fast.ParseBytes("<expr>", src)
	if err != nil {
		tree, err = p.slow.ParseBytes("<expr>", src)
		if err != nil {
			return nil, p.wrapError("<expr>", err)
		}
	}

	conv := newConverter("<expr>", p.mode&FoldConstants != 0)
	file := conv.convertFile(tree)
	for _, d := range file.Decls {
		fn, ok := d.(*cobast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		for _, st := range fn.Body.Stmts {
			if as, ok := st.(*cobast.AssignStmt); ok && as.Var.Key() == "__dummy_result__" {
				return as.Expr, nil
			}
		}
	}

	return nil, fmt.Errorf("failed to extract expression")
}

// wrapError converts a participle parse error into a CodeError carrying a
// real source location, falling back to a located-at-nothing error when
// participle's error doesn't carry position information.
func (p *participleParser) wrapError(filename string, err error) error {
	if perr, ok := err.(participle.Error); ok {
		pos := perr.Position()
		loc := cobast.Location{SourceFile: filename, StartLine: pos.Line, StartColumn: pos.Column, EndLine: pos.Line, EndColumn: pos.Column}
		return cerrors.NewCodeError(cerrors.CategorySyntax, perr.Message(), loc)
	}
	return cerrors.NewCodeError(cerrors.CategorySyntax, err.Error(), cobast.Location{SourceFile: filename})
}
