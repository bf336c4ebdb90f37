package parser

// ============================================================================
// Participle grammar for unit scripts.
//
// No ANTLR grammar file survived into the retrieved original sources (only
// generated visitor/listener stubs did), so the concrete textual shapes
// below are reconstructed from two sources of truth: the lowering contract
// pkg/compiler.handleKeywordStmt already implements (argument order/arity
// per keyword), and the documented surface syntax of the Total Annihilation
// "BOS" scripting language this tool's original targets (hyphenated
// multi-word keywords and axis literals, "around"/"along"/"to"/"speed"/
// "now"/"accelerate"/"decelerate"/"type" as grammatical glue words rather
// than statement verbs in their own right).
// ============================================================================

import "github.com/alecthomas/participle/v2/lexer"

type scriptFile struct {
	Decls []*topDecl `parser:"@@*"`
}

type topDecl struct {
	Piece  *pieceDeclG  `parser:"( @@"`
	Static *staticDeclG `parser:"| @@"`
	Func   *funcDeclG   `parser:"| @@ )"`
}

type pieceDeclG struct {
	Pos   lexer.Position
	Names []string `parser:"'piece' @Ident ( ',' @Ident )* ';'"`
}

type staticDeclG struct {
	Pos   lexer.Position
	Names []string `parser:"'static-var' @Ident ( ',' @Ident )* ';'"`
}

type funcDeclG struct {
	Pos  lexer.Position
	Name string     `parser:"@Ident '('"`
	Args []string   `parser:"( @Ident ( ',' @Ident )* )? ')'"`
	Body *blockG    `parser:"@@"`
}

type blockG struct {
	Pos   lexer.Position
	Stmts []*stmtG `parser:"'{' @@* '}'"`
}

// stmtG is a sum type over every statement kind, expressed as alternating
// pointer fields the way the teacher's own Declaration/Type/PrimaryExpression
// grammar nodes do.
type stmtG struct {
	Pos lexer.Position

	Var        *varStmtG        `parser:"(  @@"`
	If         *ifStmtG         `parser:"|  @@"`
	While      *whileStmtG      `parser:"|  @@"`
	Return     *returnStmtG     `parser:"|  @@"`
	Empty      *emptyStmtG      `parser:"|  @@"`
	Turn       *turnStmtG       `parser:"|  @@"`
	Move       *moveStmtG       `parser:"|  @@"`
	Spin       *spinStmtG       `parser:"|  @@"`
	StopSpin   *stopSpinStmtG   `parser:"|  @@"`
	Wait       *waitStmtG       `parser:"|  @@"`
	Set        *setStmtG        `parser:"|  @@"`
	Get        *getStmtG        `parser:"|  @@"`
	Call       *callStmtG       `parser:"|  @@"`
	EmitSFX    *emitSFXStmtG    `parser:"|  @@"`
	OneArg     *oneArgStmtG     `parser:"|  @@"`
	PieceOnly  *pieceOnlyStmtG  `parser:"|  @@"`
	Explode    *explodeStmtG    `parser:"|  @@"`
	AttachUnit *attachUnitStmtG `parser:"|  @@"`
	Cache      *bareStmtG       `parser:"|  @@"`
	PlaySound  *playSoundStmtG  `parser:"|  @@"`
	Assign     *assignStmtG     `parser:"|  @@ )"`
}

type varStmtG struct {
	Pos   lexer.Position
	Names []string `parser:"'var' @Ident ( ',' @Ident )* ';'"`
}

type ifStmtG struct {
	Pos  lexer.Position
	Cond *exprG  `parser:"'if' '(' @@ ')'"`
	Then *blockG `parser:"@@"`
	Else *blockG `parser:"( 'else' @@ )?"`
}

type whileStmtG struct {
	Pos  lexer.Position
	Cond *exprG  `parser:"'while' '(' @@ ')'"`
	Body *blockG `parser:"@@"`
}

type returnStmtG struct {
	Pos  lexer.Position
	Expr *exprG `parser:"'return' @@? ';'"`
}

type emptyStmtG struct {
	Pos  lexer.Position
	Semi bool `parser:"@';'"`
}

// assignStmtG covers `name = expr;`, `name++;`, and `name--;`.
type assignStmtG struct {
	Pos  lexer.Position
	Name string `parser:"@Ident"`
	Inc  bool   `parser:"( @IncOp"`
	Dec  bool   `parser:"| @DecOp"`
	Expr *exprG `parser:"| '=' @@ )"`
	Semi bool   `parser:"@';'"`
}

type axisRefG struct {
	Pos  lexer.Position
	Text string `parser:"@Hyphenated"`
}

// turnStmtG: turn piece around axis to expr (speed expr | now)? ;
type turnStmtG struct {
	Pos      lexer.Position
	Piece    string      `parser:"'turn' @Ident"`
	Axis     *axisRefG   `parser:"'around' @@"`
	Position *exprG      `parser:"'to' @@"`
	Speed    *exprG      `parser:"( 'speed' @@"`
	Now      bool        `parser:"| @'now' )? ';'"`
}

// moveStmtG: move piece along axis to expr (speed expr | now)? ;
type moveStmtG struct {
	Pos      lexer.Position
	Piece    string    `parser:"'move' @Ident"`
	Axis     *axisRefG `parser:"'along' @@"`
	Position *exprG    `parser:"'to' @@"`
	Speed    *exprG    `parser:"( 'speed' @@"`
	Now      bool      `parser:"| @'now' )? ';'"`
}

// spinStmtG: spin piece around axis speed expr (accelerate expr)? ;
type spinStmtG struct {
	Pos        lexer.Position
	Piece      string    `parser:"'spin' @Ident"`
	Axis       *axisRefG `parser:"'around' @@"`
	Speed      *exprG    `parser:"'speed' @@"`
	Accelerate *exprG    `parser:"( 'accelerate' @@ )? ';'"`
}

// stopSpinStmtG: stop-spin piece around axis (decelerate expr)? ;
type stopSpinStmtG struct {
	Pos        lexer.Position
	Piece      string    `parser:"'stop-spin' @Ident"`
	Axis       *axisRefG `parser:"'around' @@"`
	Decelerate *exprG    `parser:"( 'decelerate' @@ )? ';'"`
}

// waitStmtG covers both wait-for-turn (around) and wait-for-move (along).
type waitStmtG struct {
	Pos   lexer.Position
	Kind  string    `parser:"@( 'wait-for-turn' | 'wait-for-move' )"`
	Piece string    `parser:"@Ident"`
	Axis  *axisRefG `parser:"( 'around' | 'along' ) @@ ';'"`
}

// setStmtG: set valueIdxExpr, assignedValueExpr ;
type setStmtG struct {
	Pos   lexer.Position
	Idx   *exprG `parser:"'set' @@"`
	Value *exprG `parser:"',' @@ ';'"`
}

// getStmtG is GET used as a bare statement: get(valueIdx, arg0, ...);
type getStmtG struct {
	Pos  lexer.Position
	Call *getTermG `parser:"@@ ';'"`
}

// callStmtG covers both call-script and start-script.
type callStmtG struct {
	Pos  lexer.Position
	Kind string   `parser:"@( 'call-script' | 'start-script' )"`
	Func string   `parser:"@Ident"`
	Args []*exprG `parser:"'(' ( @@ ( ',' @@ )* )? ')' ';'"`
}

// emitSFXStmtG: emit-sfx expr from piece;
type emitSFXStmtG struct {
	Pos   lexer.Position
	Value *exprG `parser:"'emit-sfx' @@"`
	Piece string `parser:"'from' @Ident ';'"`
}

// oneArgStmtG covers sleep/signal/set-signal-mask: kw expr;
type oneArgStmtG struct {
	Pos  lexer.Position
	Kind string `parser:"@( 'sleep' | 'signal' | 'set-signal-mask' )"`
	Expr *exprG `parser:"@@ ';'"`
}

// pieceOnlyStmtG covers hide/show/drop-unit: kw piece;
type pieceOnlyStmtG struct {
	Pos   lexer.Position
	Kind  string `parser:"@( 'hide' | 'show' | 'drop-unit' )"`
	Piece string `parser:"@Ident ';'"`
}

// explodeStmtG: explode piece type expr;
type explodeStmtG struct {
	Pos   lexer.Position
	Piece string `parser:"'explode' @Ident"`
	Flags *exprG `parser:"'type' @@ ';'"`
}

// attachUnitStmtG: attach-unit expr, expr;
type attachUnitStmtG struct {
	Pos lexer.Position
	A   *exprG `parser:"'attach-unit' @@"`
	B   *exprG `parser:"',' @@ ';'"`
}

// bareStmtG covers cache/dont-cache/dont-shadow/dont-shade: no arguments.
type bareStmtG struct {
	Pos  lexer.Position
	Kind string `parser:"@( 'cache' | 'dont-cache' | 'dont-shadow' | 'dont-shade' ) ';'"`
}

// playSoundStmtG: play-sound expr; — always rejected by the compiler, but
// accepted syntactically so scripts using it produce a code-generation
// error rather than a parse error.
type playSoundStmtG struct {
	Pos  lexer.Position
	Expr *exprG `parser:"'play-sound' @@ ';'"`
}

// ============================================================================
// Expressions, lowest to highest precedence. No grammar file survived to
// pin down the original's exact precedence ladder, so this follows the
// conventional C-family ordering (||, ^^, &&, |, ^, &, ==/!=, relational,
// +/-, * / %, unary).
// ============================================================================

type exprG struct {
	Pos lexer.Position
	Or  *orExprG `parser:"@@"`
}

type orExprG struct {
	Left *xorExprG  `parser:"@@"`
	Rest []*orOpG   `parser:"@@*"`
}

type orOpG struct {
	Right *xorExprG `parser:"'||' @@"`
}

type xorExprG struct {
	Left *andExprG `parser:"@@"`
	Rest []*xorOpG `parser:"@@*"`
}

type xorOpG struct {
	Right *andExprG `parser:"XorXor @@"`
}

type andExprG struct {
	Left *bitOrExprG `parser:"@@"`
	Rest []*andOpG   `parser:"@@*"`
}

type andOpG struct {
	Right *bitOrExprG `parser:"'&&' @@"`
}

type bitOrExprG struct {
	Left *bitXorExprG `parser:"@@"`
	Rest []*bitOrOpG  `parser:"@@*"`
}

type bitOrOpG struct {
	Right *bitXorExprG `parser:"'|' @@"`
}

type bitXorExprG struct {
	Left *bitAndExprG `parser:"@@"`
	Rest []*bitXorOpG `parser:"@@*"`
}

type bitXorOpG struct {
	Right *bitAndExprG `parser:"'^' @@"`
}

type bitAndExprG struct {
	Left *equalityExprG `parser:"@@"`
	Rest []*bitAndOpG   `parser:"@@*"`
}

type bitAndOpG struct {
	Right *equalityExprG `parser:"'&' @@"`
}

type equalityExprG struct {
	Left  *relExprG `parser:"@@"`
	Op    string    `parser:"( @( EqEq | NotEq )"`
	Right *relExprG `parser:"  @@ )?"`
}

type relExprG struct {
	Left  *addExprG `parser:"@@"`
	Op    string    `parser:"( @( LessEq | GreaterEq | '<' | '>' )"`
	Right *addExprG `parser:"  @@ )?"`
}

type addExprG struct {
	Left *mulExprG `parser:"@@"`
	Rest []*addOpG `parser:"@@*"`
}

type addOpG struct {
	Op    string    `parser:"@( '+' | '-' )"`
	Right *mulExprG `parser:"@@"`
}

type mulExprG struct {
	Left *unaryExprG `parser:"@@"`
	Rest []*mulOpG   `parser:"@@*"`
}

type mulOpG struct {
	Op    string      `parser:"@( '*' | '/' | '%' )"`
	Right *unaryExprG `parser:"@@"`
}

type unaryExprG struct {
	Op      string       `parser:"( @( '!' | '-' )"`
	Operand *unaryExprG  `parser:"  @@ )"`
	Primary *primaryExprG `parser:"| @@"`
}

type primaryExprG struct {
	Get    *getTermG  `parser:"  @@"`
	Rand   *randTermG `parser:"| @@"`
	Number *numberLit `parser:"| @@"`
	Ident  *string    `parser:"| @Ident"`
	Paren  *exprG     `parser:"| '(' @@ ')'"`
}

// numberLit captures every numeric-literal spelling the language supports:
// plain integers/floats, 0x hex, and the [linear]/<angular> fixed-point
// scale brackets.
type numberLit struct {
	Angular *string `parser:"(  @AngularConst"`
	Linear  *string `parser:"|  @LinearConst"`
	Hex     *string `parser:"|  @HexInt"`
	Float   *string `parser:"|  @Float"`
	Int     *string `parser:"|  @Int )"`
}

// getTermG: get(valueIdx, arg0, arg1, arg2, arg3) — usable as an expression
// term or, wrapped in getStmtG, as a bare statement.
type getTermG struct {
	ValueIdx *exprG   `parser:"'get' '(' @@"`
	Args     []*exprG `parser:"( ',' @@ )* ')'"`
}

// randTermG: rand(min, max)
type randTermG struct {
	Min *exprG `parser:"'rand' '(' @@"`
	Max *exprG `parser:"',' @@ ')'"`
}
