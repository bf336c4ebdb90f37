package lsp

import (
	"go.lsp.dev/protocol"

	"github.com/unit-scripts/cobc/pkg/ast"
	"github.com/unit-scripts/cobc/pkg/compiler"
	cerrors "github.com/unit-scripts/cobc/pkg/errors"
	"github.com/unit-scripts/cobc/pkg/parser"
	"github.com/unit-scripts/cobc/pkg/preprocessor"
)

// checkSource runs the full preprocess -> parse -> compile pipeline over a
// unit script's text and returns every diagnostic produced along the way:
// a hard preprocessor/syntax/compile error short-circuits the remaining
// passes, but a successful compile can still carry non-fatal warnings
// (duplicate declarations, unhandled nodes lowered to placeholders).
func checkSource(filename, text string) []*cerrors.CodeError {
	pp := preprocessor.New()
	expanded, _, _, err := pp.ProcessFile(text, filename)
	if err != nil {
		return []*cerrors.CodeError{asCodeError(err, filename)}
	}

	file, err := parser.ParseFile(filename, []byte(expanded), parser.FoldConstants)
	if err != nil {
		return []*cerrors.CodeError{asCodeError(err, filename)}
	}

	var diags cerrors.Diagnostics
	comp := compiler.New(compiler.Options{RaiseOnUnhandledNode: false}, &diags)
	if _, err := comp.CompileFile(file); err != nil {
		return append(diags.Warnings(), asCodeError(err, filename))
	}

	return diags.Warnings()
}

// asCodeError normalizes any error returned by the pipeline into a
// *cerrors.CodeError so the caller has a single located type to render.
func asCodeError(err error, filename string) *cerrors.CodeError {
	if ce, ok := err.(*cerrors.CodeError); ok {
		return ce
	}
	loc := ast.Location{SourceFile: filename, StartLine: 1, StartColumn: 1, EndLine: 1, EndColumn: 1}
	return cerrors.NewCodeError(cerrors.CategoryPreprocessor, err.Error(), loc)
}

// toProtocolDiagnostics converts located compiler diagnostics into LSP
// diagnostics, translating the compiler's 1-based line/column convention
// to LSP's 0-based one.
func toProtocolDiagnostics(errs []*cerrors.CodeError) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(errs))
	for _, e := range errs {
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      zeroBased(e.Location.StartLine),
					Character: zeroBased(e.Location.StartColumn),
				},
				End: protocol.Position{
					Line:      zeroBased(e.Location.EndLine),
					Character: zeroBased(e.Location.EndColumn),
				},
			},
			Severity: severityFor(e.Category),
			Source:   "cobc",
			Message:  e.Message,
		})
	}
	return out
}

func severityFor(cat cerrors.Category) protocol.DiagnosticSeverity {
	if cat == cerrors.CategoryPreprocessor {
		return protocol.DiagnosticSeverityWarning
	}
	return protocol.DiagnosticSeverityError
}

func zeroBased(n int) uint32 {
	if n <= 0 {
		return 0
	}
	return uint32(n - 1)
}
