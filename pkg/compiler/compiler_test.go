package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unit-scripts/cobc/pkg/ast"
	cerrors "github.com/unit-scripts/cobc/pkg/errors"
	"github.com/unit-scripts/cobc/pkg/objectfile"
)

func compile(t *testing.T, file *ast.File) (*objectfile.File, *cerrors.Diagnostics) {
	t.Helper()
	var diags cerrors.Diagnostics
	c := New(Options{RaiseOnUnhandledNode: true}, &diags)
	of, err := c.CompileFile(file)
	require.NoError(t, err)
	return of, &diags
}

func name(text string) ast.Name { return ast.Name{Text: text} }

func constStmt(v int64) *ast.ReturnStmt {
	return &ast.ReturnStmt{Expr: ast.NewConstant(v, ast.Location{})}
}

func TestCompileEmptyFunctionGetsDefaultReturn(t *testing.T) {
	file := &ast.File{Decls: []ast.Decl{
		&ast.FuncDecl{Name: name("Create"), Body: &ast.Block{}},
	}}

	res, _ := compile(t, file)
	code, err := res.FunctionCode("Create")
	require.NoError(t, err)
	assert.Equal(t, []uint32{uint32(OpPushConstant), 0, uint32(OpReturn)}, code)
}

func TestCompileExplicitReturnSkipsDefaultReturn(t *testing.T) {
	file := &ast.File{Decls: []ast.Decl{
		&ast.FuncDecl{Name: name("Create"), Body: &ast.Block{Stmts: []ast.Stmt{constStmt(7)}}},
	}}

	res, _ := compile(t, file)
	code, err := res.FunctionCode("Create")
	require.NoError(t, err)
	assert.Equal(t, []uint32{uint32(OpPushConstant), 7, uint32(OpReturn)}, code)
}

func TestCompileIfStatementBackpatchesJumpTarget(t *testing.T) {
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.IfStmt{
			Cond: ast.NewConstant(1, ast.Location{}),
			Then: &ast.Block{Stmts: []ast.Stmt{constStmt(1)}},
		},
	}}
	file := &ast.File{Decls: []ast.Decl{
		&ast.FuncDecl{Name: name("Create"), Body: body},
	}}

	res, _ := compile(t, file)
	code, err := res.FunctionCode("Create")
	require.NoError(t, err)

	// PUSH_CONSTANT 1, JUMP_NOT_EQUAL <patched>, PUSH_CONSTANT 1, RETURN, [default return]
	// (the if is not itself a return statement, so the function still gets
	// an appended default return even though every branch inside it returns)
	require.Len(t, code, 10)
	assert.Equal(t, uint32(OpJumpNotEqual), code[2])
	assert.Equal(t, uint32(7), code[3], "jump target should point past the then-block")
}

func TestCompileAssignToStaticVar(t *testing.T) {
	file := &ast.File{Decls: []ast.Decl{
		&ast.StaticVarDecl{Names: []ast.Name{name("counter")}},
		&ast.FuncDecl{Name: name("Create"), Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.AssignStmt{Var: name("counter"), Expr: ast.NewConstant(5, ast.Location{})},
		}}},
	}}

	res, _ := compile(t, file)
	code, err := res.FunctionCode("Create")
	require.NoError(t, err)
	assert.Equal(t, []uint32{
		uint32(OpPushConstant), 5,
		uint32(OpPopStatic), 0,
		uint32(OpPushConstant), 0, uint32(OpReturn),
	}, code)
}

func TestCompileKeywordStatementMoveNowWhenSpeedOmitted(t *testing.T) {
	file := &ast.File{Decls: []ast.Decl{
		&ast.PieceDecl{Names: []ast.Name{name("base")}},
		&ast.FuncDecl{Name: name("Create"), Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.KeywordStmt{
				Keyword: ast.KwMove,
				Args: []ast.Node{
					&ast.NameRef{Name: name("base")},
					&ast.AxisRef{Axis: ast.AxisY},
					ast.NewConstant(100, ast.Location{}),
					nil,
				},
			},
		}}},
	}}

	res, _ := compile(t, file)
	code, err := res.FunctionCode("Create")
	require.NoError(t, err)

	// expr arg (100) pushed first, then MOVE_NOW, then the two immediates.
	assert.Equal(t, []uint32{
		uint32(OpPushConstant), 100,
		uint32(OpMoveNow), 0, 1, // piece idx 0, axis Y (=1)
		uint32(OpPushConstant), 0, uint32(OpReturn),
	}, code)
}

func TestCompileGetAsStatementPopsResult(t *testing.T) {
	file := &ast.File{Decls: []ast.Decl{
		&ast.FuncDecl{Name: name("Create"), Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.KeywordStmt{
				Keyword: ast.KwGet,
				Args:    []ast.Node{&ast.GetExpr{ValueIdx: ast.NewConstant(1, ast.Location{})}},
			},
		}}},
	}}

	res, _ := compile(t, file)
	code, err := res.FunctionCode("Create")
	require.NoError(t, err)
	assert.Equal(t, []uint32{
		uint32(OpPushConstant), 1,
		uint32(OpGetUnitValue),
		uint32(OpPopStack),
		uint32(OpPushConstant), 0, uint32(OpReturn),
	}, code)
}

func TestCompileGetWithPartialAuxArgsFillsMissingWithZero(t *testing.T) {
	file := &ast.File{Decls: []ast.Decl{
		&ast.FuncDecl{Name: name("Create"), Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.KeywordStmt{
				Keyword: ast.KwGet,
				Args: []ast.Node{&ast.GetExpr{
					ValueIdx: ast.NewConstant(1, ast.Location{}),
					Args:     [4]ast.Expr{ast.NewConstant(5, ast.Location{}), nil, nil, nil},
				}},
			},
		}}},
	}}

	res, _ := compile(t, file)
	code, err := res.FunctionCode("Create")
	require.NoError(t, err)

	// ValueIdx, then all four aux args (only the first supplied; the
	// other three lower as the constant 0), then GET keeps a fixed
	// five-value arity regardless of which args the script wrote.
	assert.Equal(t, []uint32{
		uint32(OpPushConstant), 1,
		uint32(OpPushConstant), 5,
		uint32(OpPushConstant), 0,
		uint32(OpPushConstant), 0,
		uint32(OpPushConstant), 0,
		uint32(OpGet),
		uint32(OpPopStack),
		uint32(OpPushConstant), 0, uint32(OpReturn),
	}, code)
}

func TestCompilePlaySoundIsUnsupported(t *testing.T) {
	file := &ast.File{Decls: []ast.Decl{
		&ast.FuncDecl{Name: name("Create"), Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.KeywordStmt{Keyword: ast.KwPlaySound},
		}}},
	}}

	var diags cerrors.Diagnostics
	c := New(Options{RaiseOnUnhandledNode: true}, &diags)
	_, err := c.CompileFile(file)
	require.Error(t, err)
}

func TestCompileDuplicatePieceNameWarns(t *testing.T) {
	file := &ast.File{Decls: []ast.Decl{
		&ast.PieceDecl{Names: []ast.Name{name("Leg"), name("LEG")}},
		&ast.FuncDecl{Name: name("Create"), Body: &ast.Block{}},
	}}

	_, diags := compile(t, file)
	assert.True(t, diags.HasWarnings())
}

func TestCompileCrossTypeCollisionFails(t *testing.T) {
	file := &ast.File{Decls: []ast.Decl{
		&ast.PieceDecl{Names: []ast.Name{name("turret")}},
		&ast.StaticVarDecl{Names: []ast.Name{name("turret")}},
		&ast.FuncDecl{Name: name("Create"), Body: &ast.Block{}},
	}}

	var diags cerrors.Diagnostics
	c := New(Options{RaiseOnUnhandledNode: true}, &diags)
	_, err := c.CompileFile(file)
	require.Error(t, err)
}
