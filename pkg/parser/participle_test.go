package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unit-scripts/cobc/pkg/ast"
	cerrors "github.com/unit-scripts/cobc/pkg/errors"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	file, err := ParseFile("test.cob", []byte(src), 0)
	require.NoError(t, err)
	return file
}

func firstFuncBody(t *testing.T, file *ast.File) []ast.Stmt {
	t.Helper()
	for _, d := range file.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			return fn.Body.Stmts
		}
	}
	t.Fatal("no function declaration found")
	return nil
}

func TestParsePieceAndStaticDecls(t *testing.T) {
	file := parse(t, `
		piece base, turret, barrel;
		static-var counter;

		Create() {
		}
	`)

	require.Len(t, file.Decls, 3)
	piece, ok := file.Decls[0].(*ast.PieceDecl)
	require.True(t, ok)
	assert.Equal(t, []ast.Name{{Text: "base"}, {Text: "turret"}, {Text: "barrel"}}, piece.Names)

	static, ok := file.Decls[1].(*ast.StaticVarDecl)
	require.True(t, ok)
	assert.Equal(t, "counter", static.Names[0].Text)

	fn, ok := file.Decls[2].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "Create", fn.Name.Text)
}

func TestParseFuncWithArgsAndVar(t *testing.T) {
	file := parse(t, `
		AimPrimary(heading, pitch) {
			var result;
			return 1;
		}
	`)

	fn := file.Decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Args, 2)
	assert.Equal(t, "heading", fn.Args[0].Text)
	assert.Equal(t, "pitch", fn.Args[1].Text)

	require.Len(t, fn.Body.Stmts, 2)
	_, ok := fn.Body.Stmts[0].(*ast.VarDeclStmt)
	assert.True(t, ok)
	ret, ok := fn.Body.Stmts[1].(*ast.ReturnStmt)
	require.True(t, ok)
	k, ok := ret.Expr.(*ast.Constant)
	require.True(t, ok)
	assert.Equal(t, float64(1), k.Raw)
}

func TestParseTurnWithSpeedAndNow(t *testing.T) {
	file := parse(t, `
		Create() {
			turn turret around y-axis to <90> speed 400;
			turn turret around y-axis to <0> now;
			turn turret around y-axis to <0>;
		}
	`)

	stmts := firstFuncBody(t, file)
	require.Len(t, stmts, 3)

	withSpeed := stmts[0].(*ast.KeywordStmt)
	assert.Equal(t, ast.KwTurn, withSpeed.Keyword)
	require.Len(t, withSpeed.Args, 4)
	axis := withSpeed.Args[1].(*ast.AxisRef)
	assert.Equal(t, ast.AxisY, axis.Axis)
	assert.NotNil(t, withSpeed.Args[3])

	withNow := stmts[1].(*ast.KeywordStmt)
	assert.Nil(t, withNow.Args[3])

	bare := stmts[2].(*ast.KeywordStmt)
	assert.Nil(t, bare.Args[3])
}

func TestParseMoveSpinStopSpin(t *testing.T) {
	file := parse(t, `
		Create() {
			move base along x-axis to [100] speed 50;
			spin turret around y-axis speed 100 accelerate 5;
			stop-spin turret around y-axis decelerate 5;
			stop-spin turret around y-axis;
		}
	`)

	stmts := firstFuncBody(t, file)
	require.Len(t, stmts, 4)

	move := stmts[0].(*ast.KeywordStmt)
	assert.Equal(t, ast.KwMove, move.Keyword)

	spin := stmts[1].(*ast.KeywordStmt)
	assert.Equal(t, ast.KwSpin, spin.Keyword)
	require.Len(t, spin.Args, 4)
	assert.NotNil(t, spin.Args[3])

	stop := stmts[2].(*ast.KeywordStmt)
	assert.Equal(t, ast.KwStopSpin, stop.Keyword)
	assert.NotNil(t, stop.Args[2])

	stopBare := stmts[3].(*ast.KeywordStmt)
	assert.Nil(t, stopBare.Args[2])
}

func TestParseWaitForTurnAndMove(t *testing.T) {
	file := parse(t, `
		Create() {
			wait-for-turn turret around y-axis;
			wait-for-move base along x-axis;
		}
	`)

	stmts := firstFuncBody(t, file)
	wt := stmts[0].(*ast.KeywordStmt)
	assert.Equal(t, ast.KwWaitForTurn, wt.Keyword)
	wm := stmts[1].(*ast.KeywordStmt)
	assert.Equal(t, ast.KwWaitForMove, wm.Keyword)
}

func TestParseSetAndGetStatements(t *testing.T) {
	file := parse(t, `
		Create() {
			set ACTIVATION, 1;
			get(ACTIVATION, 0, 0, 0, 0);
		}
	`)

	stmts := firstFuncBody(t, file)
	set := stmts[0].(*ast.KeywordStmt)
	assert.Equal(t, ast.KwSet, set.Keyword)
	require.Len(t, set.Args, 2)

	get := stmts[1].(*ast.KeywordStmt)
	assert.Equal(t, ast.KwGet, get.Keyword)
	_, ok := get.Args[0].(*ast.GetExpr)
	assert.True(t, ok)
}

func TestParseCallAndStartScript(t *testing.T) {
	file := parse(t, `
		Create() {
			call-script SmokeUnit(1, 2);
			start-script AimPrimary();
		}
	`)

	stmts := firstFuncBody(t, file)
	call, ok := stmts[0].(*ast.CallStmt)
	require.True(t, ok)
	require.Len(t, call.Args, 3)
	fnRef := call.Args[0].(*ast.NameRef)
	assert.Equal(t, "SmokeUnit", fnRef.Name.Text)

	start, ok := stmts[1].(*ast.StartStmt)
	require.True(t, ok)
	require.Len(t, start.Args, 1)
}

func TestParseMiscKeywordStatements(t *testing.T) {
	file := parse(t, `
		Create() {
			emit-sfx 4 from barrel;
			sleep 100;
			signal 1;
			set-signal-mask 1;
			hide base;
			show base;
			drop-unit base;
			explode base type 17;
			attach-unit 0, 1;
			cache;
			dont-cache;
			dont-shadow;
			dont-shade;
		}
	`)

	stmts := firstFuncBody(t, file)
	kinds := []ast.Keyword{
		ast.KwEmitSFX, ast.KwSleep, ast.KwSignal, ast.KwSetSignalMask,
		ast.KwHide, ast.KwShow, ast.KwDropUnit, ast.KwExplode, ast.KwAttachUnit,
		ast.KwCache, ast.KwDontCache, ast.KwDontShadow, ast.KwDontShade,
	}
	require.Len(t, stmts, len(kinds))
	for i, want := range kinds {
		ks, ok := stmts[i].(*ast.KeywordStmt)
		require.True(t, ok, "stmt %d", i)
		assert.Equal(t, want, ks.Keyword, "stmt %d", i)
	}

	cacheStmt := stmts[9].(*ast.KeywordStmt)
	assert.Empty(t, cacheStmt.Args)
}

func TestParseIfElseAndWhile(t *testing.T) {
	file := parse(t, `
		Create() {
			if (1 == 1) {
				return 1;
			} else {
				return 0;
			}
			while (1) {
				sleep 1;
			}
		}
	`)

	stmts := firstFuncBody(t, file)
	ifs := stmts[0].(*ast.IfStmt)
	require.NotNil(t, ifs.Else)
	require.Len(t, ifs.Then.Stmts, 1)
	require.Len(t, ifs.Else.Stmts, 1)

	ws := stmts[1].(*ast.WhileStmt)
	require.Len(t, ws.Body.Stmts, 1)
}

func TestParseIncrementDecrementDesugar(t *testing.T) {
	file := parse(t, `
		Create() {
			var x;
			x++;
			x--;
		}
	`)

	stmts := firstFuncBody(t, file)
	inc := stmts[1].(*ast.AssignStmt)
	bin := inc.Expr.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, bin.Op)
	lhs := bin.LHS.(*ast.VarRef)
	assert.Equal(t, "x", lhs.Name.Text)
	rhs := bin.RHS.(*ast.Constant)
	assert.Equal(t, float64(1), rhs.Raw)

	dec := stmts[2].(*ast.AssignStmt)
	bin2 := dec.Expr.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpMinus, bin2.Op)
}

func TestParseExpressionPrecedence(t *testing.T) {
	file := parse(t, `
		Create() {
			var x;
			x = 1 + 2 * 3;
		}
	`)

	stmts := firstFuncBody(t, file)
	assign := stmts[1].(*ast.AssignStmt)
	bin := assign.Expr.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, bin.Op)
	_, isConst := bin.LHS.(*ast.Constant)
	assert.True(t, isConst, "1 should be the left operand of +")
	mul, ok := bin.RHS.(*ast.BinaryExpr)
	require.True(t, ok, "2 * 3 should be the right operand of +")
	assert.Equal(t, ast.OpMult, mul.Op)
}

func TestParseConstantFoldingToggle(t *testing.T) {
	src := []byte(`
		Create() {
			var x;
			x = 1 + 2;
		}
	`)

	unfolded, err := ParseFile("test.cob", src, 0)
	require.NoError(t, err)
	assign := firstFuncBody(t, unfolded)[1].(*ast.AssignStmt)
	_, isBinary := assign.Expr.(*ast.BinaryExpr)
	assert.True(t, isBinary)

	folded, err := ParseFile("test.cob", src, FoldConstants)
	require.NoError(t, err)
	assignFolded := firstFuncBody(t, folded)[1].(*ast.AssignStmt)
	k, isConst := assignFolded.Expr.(*ast.Constant)
	require.True(t, isConst)
	assert.Equal(t, float64(3), k.Raw)
}

func TestParseNumericLiteralScales(t *testing.T) {
	file := parse(t, `
		Create() {
			var x;
			x = <182>;
			x = [65536];
			x = 0xFF;
			x = 3.5;
		}
	`)

	stmts := firstFuncBody(t, file)
	angular := stmts[1].(*ast.AssignStmt).Expr.(*ast.Constant)
	assert.Equal(t, ast.ScaleAngular, angular.Scale)
	assert.Equal(t, float64(182*182), angular.NumberValue())

	linear := stmts[2].(*ast.AssignStmt).Expr.(*ast.Constant)
	assert.Equal(t, ast.ScaleLinear, linear.Scale)

	hex := stmts[3].(*ast.AssignStmt).Expr.(*ast.Constant)
	assert.Equal(t, float64(255), hex.Raw)

	flt := stmts[4].(*ast.AssignStmt).Expr.(*ast.Constant)
	assert.True(t, flt.IsFloat)
	assert.Equal(t, float64(3.5), flt.Raw)
}

func TestParseRandAndGetExpressions(t *testing.T) {
	file := parse(t, `
		Create() {
			var x;
			x = rand(1, 10);
			x = get(ACTIVATION, 0, 0, 0, 0);
		}
	`)

	stmts := firstFuncBody(t, file)
	rnd := stmts[1].(*ast.AssignStmt).Expr.(*ast.RandExpr)
	require.NotNil(t, rnd.Min)
	require.NotNil(t, rnd.Max)

	get := stmts[2].(*ast.AssignStmt).Expr.(*ast.GetExpr)
	assert.True(t, get.HasAnyAuxArg(), "all four auxiliary slots were supplied, even though they're zero")
}

func TestParseExprConvenienceFunction(t *testing.T) {
	e, err := ParseExpr("1 + 2 * 3", 0)
	require.NoError(t, err)
	bin, ok := e.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Op)
}

func TestParseSyntaxErrorReportsLocation(t *testing.T) {
	_, err := ParseFile("bad.cob", []byte(`
		Create() {
			turn turret around;
		}
	`), 0)
	require.Error(t, err)
	var ce *cerrors.CodeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "bad.cob", ce.Location.SourceFile)
	assert.Positive(t, ce.Location.StartLine)
}

func TestParseElidesLineDirectives(t *testing.T) {
	file := parse(t, `#line 1 "unit.bos"
		piece base;
#line 1 "weapons.h"
static-var ammo;
#line 3 "unit.bos"

		Create() {
		}
	`)

	require.Len(t, file.Decls, 3)
	_, ok := file.Decls[0].(*ast.PieceDecl)
	assert.True(t, ok)
	_, ok = file.Decls[1].(*ast.StaticVarDecl)
	assert.True(t, ok)
	_, ok = file.Decls[2].(*ast.FuncDecl)
	assert.True(t, ok)
}

func TestParseElidesUnknownPassthroughDirective(t *testing.T) {
	file := parse(t, `#pragma once
		piece base;

		Create() {
		}
	`)

	require.Len(t, file.Decls, 2)
}
