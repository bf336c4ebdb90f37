package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/unit-scripts/cobc/pkg/ast"
	cerrors "github.com/unit-scripts/cobc/pkg/errors"
)

func TestCheckSourceCleanScriptHasNoDiagnostics(t *testing.T) {
	errs := checkSource("test.cob", `
		piece base, turret;

		Create() {
		}
	`)

	assert.Empty(t, errs)
}

func TestCheckSourceSyntaxErrorIsReported(t *testing.T) {
	errs := checkSource("test.cob", `
		piece base

		Create() {
		}
	`)

	require.Len(t, errs, 1)
	assert.Equal(t, cerrors.CategorySyntax, errs[0].Category)
	assert.Equal(t, "test.cob", errs[0].Location.SourceFile)
}

func TestCheckSourceDuplicatePieceNameWarns(t *testing.T) {
	errs := checkSource("test.cob", `
		piece base;
		piece base;

		Create() {
		}
	`)

	require.Len(t, errs, 1)
	assert.Equal(t, cerrors.CategoryNameResolution, errs[0].Category)
}

func TestToProtocolDiagnosticsConvertsOneBasedToZeroBased(t *testing.T) {
	loc := ast.Location{SourceFile: "test.cob", StartLine: 3, StartColumn: 5, EndLine: 3, EndColumn: 9}
	errs := []*cerrors.CodeError{cerrors.NewCodeError(cerrors.CategorySyntax, "boom", loc)}

	diags := toProtocolDiagnostics(errs)
	require.Len(t, diags, 1)
	assert.Equal(t, uint32(2), diags[0].Range.Start.Line)
	assert.Equal(t, uint32(4), diags[0].Range.Start.Character)
	assert.Equal(t, protocol.DiagnosticSeverityError, diags[0].Severity)
	assert.Equal(t, "cobc", diags[0].Source)
	assert.Equal(t, "boom", diags[0].Message)
}

func TestToProtocolDiagnosticsPreprocessorCategoryIsWarning(t *testing.T) {
	loc := ast.Location{SourceFile: "test.cob", StartLine: 1, StartColumn: 1, EndLine: 1, EndColumn: 1}
	errs := []*cerrors.CodeError{cerrors.NewCodeError(cerrors.CategoryPreprocessor, "missing include", loc)}

	diags := toProtocolDiagnostics(errs)
	require.Len(t, diags, 1)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, diags[0].Severity)
}

func TestToProtocolDiagnosticsEmptyInputYieldsEmptySlice(t *testing.T) {
	diags := toProtocolDiagnostics(nil)
	assert.Empty(t, diags)
}
