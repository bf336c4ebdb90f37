package parser

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/unit-scripts/cobc/pkg/ast"
)

// converter walks a parsed scriptFile and builds the pkg/ast tree the
// compiler consumes. foldConstants mirrors the optional constant-folding
// pass (pkg/config's constant-folding toggle).
type converter struct {
	file          string
	foldConstants bool
}

func newConverter(file string, foldConstants bool) *converter {
	return &converter{file: file, foldConstants: foldConstants}
}

func (c *converter) loc(pos lexer.Position) ast.Location {
	return ast.Location{
		SourceFile:  c.file,
		StartLine:   pos.Line,
		StartColumn: pos.Column,
		EndLine:     pos.Line,
		EndColumn:   pos.Column,
	}
}

func (c *converter) convertFile(sf *scriptFile) *ast.File {
	out := &ast.File{Decls: make([]ast.Decl, 0, len(sf.Decls))}
	for _, d := range sf.Decls {
		out.Decls = append(out.Decls, c.convertDecl(d))
	}
	return out
}

func (c *converter) convertDecl(d *topDecl) ast.Decl {
	switch {
	case d.Piece != nil:
		n := &ast.PieceDecl{Names: namesOf(d.Piece.Names)}
		n.Loc = c.loc(d.Piece.Pos)
		return n
	case d.Static != nil:
		n := &ast.StaticVarDecl{Names: namesOf(d.Static.Names)}
		n.Loc = c.loc(d.Static.Pos)
		return n
	default:
		fn := d.Func
		n := &ast.FuncDecl{
			Name: ast.Name{Text: fn.Name},
			Args: namesOf(fn.Args),
			Body: c.convertBlock(fn.Body),
		}
		n.Loc = c.loc(fn.Pos)
		return n
	}
}

func namesOf(ss []string) []ast.Name {
	out := make([]ast.Name, len(ss))
	for i, s := range ss {
		out[i] = ast.Name{Text: s}
	}
	return out
}

func (c *converter) convertBlock(b *blockG) *ast.Block {
	blk := &ast.Block{Stmts: make([]ast.Stmt, 0, len(b.Stmts))}
	blk.Loc = c.loc(b.Pos)
	for _, s := range b.Stmts {
		blk.Stmts = append(blk.Stmts, c.convertStmt(s))
	}
	return blk
}

func (c *converter) convertStmt(s *stmtG) ast.Stmt {
	loc := c.loc(s.Pos)

	switch {
	case s.Var != nil:
		n := &ast.VarDeclStmt{Names: namesOf(s.Var.Names)}
		n.Loc = loc
		return n
	case s.If != nil:
		n := &ast.IfStmt{Cond: c.convertExpr(s.If.Cond), Then: c.convertBlock(s.If.Then)}
		if s.If.Else != nil {
			n.Else = c.convertBlock(s.If.Else)
		}
		n.Loc = loc
		return n
	case s.While != nil:
		n := &ast.WhileStmt{Cond: c.convertExpr(s.While.Cond), Body: c.convertBlock(s.While.Body)}
		n.Loc = loc
		return n
	case s.Return != nil:
		var e ast.Expr
		if s.Return.Expr != nil {
			e = c.convertExpr(s.Return.Expr)
		}
		n := &ast.ReturnStmt{Expr: e}
		n.Loc = loc
		return n
	case s.Empty != nil:
		n := &ast.EmptyStmt{}
		n.Loc = loc
		return n
	case s.Turn != nil:
		return c.convertTurnOrMove(ast.KwTurn, s.Turn.Piece, s.Turn.Axis, s.Turn.Position, s.Turn.Speed, loc)
	case s.Move != nil:
		return c.convertTurnOrMove(ast.KwMove, s.Move.Piece, s.Move.Axis, s.Move.Position, s.Move.Speed, loc)
	case s.Spin != nil:
		sp := s.Spin
		var accel ast.Node
		if sp.Accelerate != nil {
			accel = c.convertExpr(sp.Accelerate)
		}
		n := &ast.KeywordStmt{Keyword: ast.KwSpin, Args: []ast.Node{
			c.pieceRef(sp.Piece, loc), c.axisRef(sp.Axis, loc), c.convertExpr(sp.Speed), accel,
		}}
		n.Loc = loc
		return n
	case s.StopSpin != nil:
		ss := s.StopSpin
		var decel ast.Node
		if ss.Decelerate != nil {
			decel = c.convertExpr(ss.Decelerate)
		}
		n := &ast.KeywordStmt{Keyword: ast.KwStopSpin, Args: []ast.Node{
			c.pieceRef(ss.Piece, loc), c.axisRef(ss.Axis, loc), decel,
		}}
		n.Loc = loc
		return n
	case s.Wait != nil:
		kw := ast.KwWaitForTurn
		if strings.EqualFold(s.Wait.Kind, "wait-for-move") {
			kw = ast.KwWaitForMove
		}
		n := &ast.KeywordStmt{Keyword: kw, Args: []ast.Node{
			c.pieceRef(s.Wait.Piece, loc), c.axisRef(s.Wait.Axis, loc),
		}}
		n.Loc = loc
		return n
	case s.Set != nil:
		n := &ast.KeywordStmt{Keyword: ast.KwSet, Args: []ast.Node{
			c.convertExpr(s.Set.Idx), c.convertExpr(s.Set.Value),
		}}
		n.Loc = loc
		return n
	case s.Get != nil:
		n := &ast.KeywordStmt{Keyword: ast.KwGet, Args: []ast.Node{c.convertGetTerm(s.Get.Call, loc)}}
		n.Loc = loc
		return n
	case s.Call != nil:
		args := c.callArgs(s.Call.Func, s.Call.Args)
		if strings.EqualFold(s.Call.Kind, "start-script") {
			n := &ast.StartStmt{Args: args}
			n.Loc = loc
			return n
		}
		n := &ast.CallStmt{Args: args}
		n.Loc = loc
		return n
	case s.EmitSFX != nil:
		n := &ast.KeywordStmt{Keyword: ast.KwEmitSFX, Args: []ast.Node{
			c.convertExpr(s.EmitSFX.Value), c.pieceRef(s.EmitSFX.Piece, loc),
		}}
		n.Loc = loc
		return n
	case s.OneArg != nil:
		n := &ast.KeywordStmt{Keyword: oneArgKeyword(s.OneArg.Kind), Args: []ast.Node{c.convertExpr(s.OneArg.Expr)}}
		n.Loc = loc
		return n
	case s.PieceOnly != nil:
		n := &ast.KeywordStmt{Keyword: pieceOnlyKeyword(s.PieceOnly.Kind), Args: []ast.Node{c.pieceRef(s.PieceOnly.Piece, loc)}}
		n.Loc = loc
		return n
	case s.Explode != nil:
		n := &ast.KeywordStmt{Keyword: ast.KwExplode, Args: []ast.Node{
			c.pieceRef(s.Explode.Piece, loc), c.convertExpr(s.Explode.Flags),
		}}
		n.Loc = loc
		return n
	case s.AttachUnit != nil:
		n := &ast.KeywordStmt{Keyword: ast.KwAttachUnit, Args: []ast.Node{
			c.convertExpr(s.AttachUnit.A), c.convertExpr(s.AttachUnit.B),
		}}
		n.Loc = loc
		return n
	case s.Cache != nil:
		n := &ast.KeywordStmt{Keyword: bareKeyword(s.Cache.Kind), Args: nil}
		n.Loc = loc
		return n
	case s.PlaySound != nil:
		n := &ast.KeywordStmt{Keyword: ast.KwPlaySound, Args: []ast.Node{c.convertExpr(s.PlaySound.Expr)}}
		n.Loc = loc
		return n
	default: // s.Assign != nil; the grammar's closed alternation guarantees one case always matches.
		return c.convertAssign(s.Assign, loc)
	}
}

// convertTurnOrMove builds the shared MOVE/TURN lowering. A trailing "speed
// expr" clause supplies the fourth KeywordStmt argument; an explicit "now"
// or an entirely omitted clause are semantically identical to the compiler
// (both select the *_NOW opcode), so both produce a nil fourth argument.
func (c *converter) convertTurnOrMove(kw ast.Keyword, piece string, axis *axisRefG, pos, speed *exprG, loc ast.Location) ast.Stmt {
	var trailing ast.Node
	if speed != nil {
		trailing = c.convertExpr(speed)
	}
	n := &ast.KeywordStmt{Keyword: kw, Args: []ast.Node{
		c.pieceRef(piece, loc), c.axisRef(axis, loc), c.convertExpr(pos), trailing,
	}}
	n.Loc = loc
	return n
}

func (c *converter) convertAssign(a *assignStmtG, loc ast.Location) ast.Stmt {
	name := ast.Name{Text: a.Name}
	var n *ast.AssignStmt
	switch {
	case a.Inc:
		n = &ast.AssignStmt{Var: name, Expr: c.binary(ast.OpAdd, c.varRef(name, loc), ast.NewConstant(1, loc), loc)}
	case a.Dec:
		n = &ast.AssignStmt{Var: name, Expr: c.binary(ast.OpMinus, c.varRef(name, loc), ast.NewConstant(1, loc), loc)}
	default:
		n = &ast.AssignStmt{Var: name, Expr: c.convertExpr(a.Expr)}
	}
	n.Loc = loc
	return n
}

func (c *converter) varRef(name ast.Name, loc ast.Location) *ast.VarRef {
	n := &ast.VarRef{Name: name}
	n.Loc = loc
	return n
}

func (c *converter) callArgs(funcName string, argExprs []*exprG) []ast.Node {
	args := make([]ast.Node, 0, len(argExprs)+1)
	args = append(args, &ast.NameRef{Name: ast.Name{Text: funcName}})
	for _, e := range argExprs {
		args = append(args, c.convertExpr(e))
	}
	return args
}

func (c *converter) pieceRef(name string, loc ast.Location) *ast.NameRef {
	n := &ast.NameRef{Name: ast.Name{Text: name}}
	n.Loc = loc
	return n
}

func (c *converter) axisRef(a *axisRefG, loc ast.Location) *ast.AxisRef {
	axis, _ := ast.ParseAxis(a.Text)
	n := &ast.AxisRef{Axis: axis}
	n.Loc = loc
	return n
}

func oneArgKeyword(kind string) ast.Keyword {
	switch strings.ToLower(kind) {
	case "sleep":
		return ast.KwSleep
	case "signal":
		return ast.KwSignal
	default:
		return ast.KwSetSignalMask
	}
}

func pieceOnlyKeyword(kind string) ast.Keyword {
	switch strings.ToLower(kind) {
	case "hide":
		return ast.KwHide
	case "show":
		return ast.KwShow
	default:
		return ast.KwDropUnit
	}
}

func bareKeyword(kind string) ast.Keyword {
	switch strings.ToLower(kind) {
	case "cache":
		return ast.KwCache
	case "dont-cache":
		return ast.KwDontCache
	case "dont-shadow":
		return ast.KwDontShadow
	default:
		return ast.KwDontShade
	}
}

// ============================================================================
// Expressions
// ============================================================================

func (c *converter) convertExpr(e *exprG) ast.Expr {
	if e == nil {
		return nil
	}
	loc := c.loc(e.Pos)
	return c.convertOr(e.Or, loc)
}

func (c *converter) convertOr(e *orExprG, loc ast.Location) ast.Expr {
	left := c.convertXor(e.Left, loc)
	for _, op := range e.Rest {
		left = c.binary(ast.OpLogicalOr, left, c.convertXor(op.Right, loc), loc)
	}
	return left
}

func (c *converter) convertXor(e *xorExprG, loc ast.Location) ast.Expr {
	left := c.convertAnd(e.Left, loc)
	for _, op := range e.Rest {
		left = c.binary(ast.OpLogicalXor, left, c.convertAnd(op.Right, loc), loc)
	}
	return left
}

func (c *converter) convertAnd(e *andExprG, loc ast.Location) ast.Expr {
	left := c.convertBitOr(e.Left, loc)
	for _, op := range e.Rest {
		left = c.binary(ast.OpLogicalAnd, left, c.convertBitOr(op.Right, loc), loc)
	}
	return left
}

func (c *converter) convertBitOr(e *bitOrExprG, loc ast.Location) ast.Expr {
	left := c.convertBitXor(e.Left, loc)
	for _, op := range e.Rest {
		left = c.binary(ast.OpBitwiseOr, left, c.convertBitXor(op.Right, loc), loc)
	}
	return left
}

func (c *converter) convertBitXor(e *bitXorExprG, loc ast.Location) ast.Expr {
	left := c.convertBitAnd(e.Left, loc)
	for _, op := range e.Rest {
		left = c.binary(ast.OpBitwiseXor, left, c.convertBitAnd(op.Right, loc), loc)
	}
	return left
}

func (c *converter) convertBitAnd(e *bitAndExprG, loc ast.Location) ast.Expr {
	left := c.convertEquality(e.Left, loc)
	for _, op := range e.Rest {
		left = c.binary(ast.OpBitwiseAnd, left, c.convertEquality(op.Right, loc), loc)
	}
	return left
}

func (c *converter) convertEquality(e *equalityExprG, loc ast.Location) ast.Expr {
	left := c.convertRel(e.Left, loc)
	if e.Right == nil {
		return left
	}
	op := ast.OpCompEqual
	if e.Op == "!=" {
		op = ast.OpCompNotEqual
	}
	return c.binary(op, left, c.convertRel(e.Right, loc), loc)
}

func (c *converter) convertRel(e *relExprG, loc ast.Location) ast.Expr {
	left := c.convertAdd(e.Left, loc)
	if e.Right == nil {
		return left
	}
	var op ast.ExpressionOp
	switch e.Op {
	case "<":
		op = ast.OpCompLess
	case ">":
		op = ast.OpCompGreater
	case "<=":
		op = ast.OpCompLessEqual
	default:
		op = ast.OpCompGreaterEqual
	}
	return c.binary(op, left, c.convertAdd(e.Right, loc), loc)
}

func (c *converter) convertAdd(e *addExprG, loc ast.Location) ast.Expr {
	left := c.convertMul(e.Left, loc)
	for _, op := range e.Rest {
		o := ast.OpAdd
		if op.Op == "-" {
			o = ast.OpMinus
		}
		left = c.binary(o, left, c.convertMul(op.Right, loc), loc)
	}
	return left
}

func (c *converter) convertMul(e *mulExprG, loc ast.Location) ast.Expr {
	left := c.convertUnary(e.Left, loc)
	for _, op := range e.Rest {
		var o ast.ExpressionOp
		switch op.Op {
		case "*":
			o = ast.OpMult
		case "/":
			o = ast.OpDiv
		default:
			o = ast.OpMod
		}
		left = c.binary(o, left, c.convertUnary(op.Right, loc), loc)
	}
	return left
}

func (c *converter) convertUnary(e *unaryExprG, loc ast.Location) ast.Expr {
	if e.Primary != nil {
		return c.convertPrimary(e.Primary, loc)
	}
	operand := c.convertUnary(e.Operand, loc)
	op := ast.OpMinus
	if e.Op == "!" {
		op = ast.OpLogicalNot
	}
	if c.foldConstants {
		if k, ok := operand.(*ast.Constant); ok {
			if folded, ok := ast.FoldUnary(op, k, loc); ok {
				return folded
			}
		}
	}
	n := &ast.UnaryExpr{Op: op, Operand: operand}
	n.Loc = loc
	return n
}

func (c *converter) binary(op ast.ExpressionOp, lhs, rhs ast.Expr, loc ast.Location) ast.Expr {
	if c.foldConstants {
		lk, lok := lhs.(*ast.Constant)
		rk, rok := rhs.(*ast.Constant)
		if lok && rok {
			if folded, ok := ast.FoldBinary(op, lk, rk, loc); ok {
				return folded
			}
		}
	}
	n := &ast.BinaryExpr{Op: op, LHS: lhs, RHS: rhs}
	n.Loc = loc
	return n
}

func (c *converter) convertPrimary(p *primaryExprG, loc ast.Location) ast.Expr {
	switch {
	case p.Get != nil:
		return c.convertGetTerm(p.Get, loc)
	case p.Rand != nil:
		n := &ast.RandExpr{Min: c.convertExpr(p.Rand.Min), Max: c.convertExpr(p.Rand.Max)}
		n.Loc = loc
		return n
	case p.Number != nil:
		return c.convertNumber(p.Number, loc)
	case p.Ident != nil:
		n := &ast.VarRef{Name: ast.Name{Text: *p.Ident}}
		n.Loc = loc
		return n
	case p.Paren != nil:
		return c.convertExpr(p.Paren)
	default:
		n := &ast.UndefExpr{ClassName: "primaryExprG", Raw: p}
		n.Loc = loc
		return n
	}
}

func (c *converter) convertGetTerm(g *getTermG, loc ast.Location) *ast.GetExpr {
	n := &ast.GetExpr{ValueIdx: c.convertExpr(g.ValueIdx)}
	for i, a := range g.Args {
		if i >= len(n.Args) {
			break
		}
		n.Args[i] = c.convertExpr(a)
	}
	n.Loc = loc
	return n
}

func (c *converter) convertNumber(n *numberLit, loc ast.Location) *ast.Constant {
	var k *ast.Constant
	switch {
	case n.Angular != nil:
		k = parseBracketed(*n.Angular, ast.ScaleAngular)
	case n.Linear != nil:
		k = parseBracketed(*n.Linear, ast.ScaleLinear)
	case n.Hex != nil:
		v, _ := strconv.ParseInt(strings.TrimPrefix(strings.TrimPrefix(*n.Hex, "0x"), "0X"), 16, 64)
		k = &ast.Constant{Raw: float64(v), Scale: ast.ScaleNormal}
	case n.Float != nil:
		v, _ := strconv.ParseFloat(*n.Float, 64)
		k = &ast.Constant{Raw: v, IsFloat: true, Scale: ast.ScaleNormal}
	default:
		v, _ := strconv.ParseInt(*n.Int, 10, 64)
		k = &ast.Constant{Raw: float64(v), Scale: ast.ScaleNormal}
	}
	k.Loc = loc
	return k
}

// parseBracketed strips the surrounding [...] or <...> delimiters (and any
// interior whitespace the lexer allowed) before parsing the numeric body.
func parseBracketed(raw string, scale ast.ConstScale) *ast.Constant {
	inner := strings.TrimSpace(raw[1 : len(raw)-1])
	if strings.HasPrefix(inner, "0x") || strings.HasPrefix(inner, "0X") {
		v, _ := strconv.ParseInt(inner[2:], 16, 64)
		return &ast.Constant{Raw: float64(v), Scale: scale}
	}
	isFloat := strings.Contains(inner, ".")
	v, _ := strconv.ParseFloat(inner, 64)
	return &ast.Constant{Raw: v, IsFloat: isFloat, Scale: scale}
}
