// Package compiler lowers a unit-script AST into the bytecode understood
// by the object-file runtime.
package compiler

import (
	"fmt"

	"github.com/unit-scripts/cobc/pkg/ast"
	cerrors "github.com/unit-scripts/cobc/pkg/errors"
	"github.com/unit-scripts/cobc/pkg/names"
	"github.com/unit-scripts/cobc/pkg/objectfile"
)

// Options tunes lowering behavior.
type Options struct {
	// RaiseOnUnhandledNode, when true, turns an AST node without a lowering
	// rule into a fatal error. When false, a BAD_OP_PLACEHOLDER word is
	// emitted and a warning is recorded instead, matching the original
	// tool's permissive mode.
	RaiseOnUnhandledNode bool
}

// Compiler lowers one *ast.File at a time. A Compiler is not safe for
// concurrent or repeated use; construct a fresh one per file.
type Compiler struct {
	opts        Options
	diagnostics *cerrors.Diagnostics

	registry *names.Registry
	code     []uint32

	pieceOrder    []ast.Name
	functionOrder []ast.Name
	functionPtrs  map[string]uint32 // lowercased name -> code offset
}

// New returns a Compiler ready to compile a single file.
func New(opts Options, diagnostics *cerrors.Diagnostics) *Compiler {
	return &Compiler{
		opts:         opts,
		diagnostics:  diagnostics,
		registry:     names.New(),
		functionPtrs: make(map[string]uint32),
	}
}

// CompileFile lowers file into a finished object file.
func (c *Compiler) CompileFile(file *ast.File) (*objectfile.File, error) {
	c.registry.OnDuplicateGlobal = func(name ast.Name, typ names.Type) {
		c.diagnostics.Warn(cerrors.NewCodeError(
			cerrors.CategoryNameResolution,
			fmt.Sprintf("skipping duplicate declaration of global name %s %q", typ.Description(), name),
			ast.Location{},
		))
	}

	if err := c.loadGlobalNames(file); err != nil {
		return nil, err
	}

	for _, decl := range file.Decls {
		if err := c.handleDecl(decl); err != nil {
			return nil, err
		}
	}

	functionNames := make([]string, len(c.functionOrder))
	functionPtrs := make([]uint32, len(c.functionOrder))
	for i, fname := range c.functionOrder {
		functionNames[i] = fname.Text
		functionPtrs[i] = c.functionPtrs[fname.Key()]
	}

	pieceNames := make([]string, len(c.pieceOrder))
	for i, pname := range c.pieceOrder {
		pieceNames[i] = pname.Text
	}

	return &objectfile.File{
		StaticVarCount: uint32(c.registry.Count(names.Static)),
		Code:           c.code,
		FunctionNames:  functionNames,
		FunctionPtrs:   functionPtrs,
		PieceNames:     pieceNames,
	}, nil
}

func (c *Compiler) loadGlobalNames(file *ast.File) error {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.PieceDecl:
			for _, name := range d.Names {
				before := c.registry.Count(names.Piece)
				if err := c.registry.Register(name, names.Piece); err != nil {
					return c.nameError(err, d.Loc)
				}
				if c.registry.Count(names.Piece) > before {
					c.pieceOrder = append(c.pieceOrder, name)
				}
			}
		case *ast.StaticVarDecl:
			for _, name := range d.Names {
				if err := c.registry.Register(name, names.Static); err != nil {
					return c.nameError(err, d.Loc)
				}
			}
		case *ast.FuncDecl:
			if err := c.registry.Register(d.Name, names.Function); err != nil {
				return c.nameError(err, d.Loc)
			}
			c.functionOrder = append(c.functionOrder, d.Name)
		default:
			return fmt.Errorf("unable to register names for declaration %T", decl)
		}
	}
	return nil
}

func (c *Compiler) nameError(err error, loc ast.Location) error {
	return cerrors.NewCodeError(cerrors.CategoryNameResolution, err.Error(), loc)
}

// ---- emission helpers ----

func (c *Compiler) emit(op OpCode)        { c.code = append(c.code, uint32(op)) }
func (c *Compiler) emitWord(w uint32)     { c.code = append(c.code, w) }
func (c *Compiler) emitInt32(v int32)     { c.code = append(c.code, uint32(v)) }
func (c *Compiler) here() int             { return len(c.code) }
func (c *Compiler) patch(at int, v int)   { c.code[at] = uint32(v) }

func (c *Compiler) unhandled(loc ast.Location, kind string) error {
	if c.opts.RaiseOnUnhandledNode {
		return cerrors.NewCodeError(cerrors.CategoryCodeGeneration,
			fmt.Sprintf("INTERNAL COMPILER ERROR: node of type %s does not have a handler", kind), loc)
	}
	c.diagnostics.Warn(cerrors.NewCodeError(cerrors.CategoryCodeGeneration,
		fmt.Sprintf("TODO: handle %s AST node", kind), loc))
	c.emit(OpBadPlaceholder)
	return nil
}

// ---- declarations ----

func (c *Compiler) handleDecl(decl ast.Decl) error {
	switch d := decl.(type) {
	case *ast.PieceDecl, *ast.StaticVarDecl:
		return nil
	case *ast.FuncDecl:
		return c.handleFuncDecl(d)
	default:
		return c.unhandled(decl.Location(), fmt.Sprintf("%T", decl))
	}
}

func (c *Compiler) handleFuncDecl(decl *ast.FuncDecl) error {
	c.registry.ClearLocalNames()
	c.functionPtrs[decl.Name.Key()] = uint32(c.here())

	for _, arg := range decl.Args {
		if err := c.registry.Register(arg, names.Arg); err != nil {
			return c.nameError(err, decl.Loc)
		}
		c.emit(OpCreateLocalVar)
	}

	if err := c.handleBlock(decl.Body); err != nil {
		return err
	}

	needsDefaultReturn := len(decl.Body.Stmts) == 0
	if !needsDefaultReturn {
		_, lastIsReturn := decl.Body.Stmts[len(decl.Body.Stmts)-1].(*ast.ReturnStmt)
		needsDefaultReturn = !lastIsReturn
	}
	if needsDefaultReturn {
		c.emit(OpPushConstant)
		c.emitInt32(0)
		c.emit(OpReturn)
	}
	return nil
}

func (c *Compiler) handleBlock(block *ast.Block) error {
	for _, stmt := range block.Stmts {
		if err := c.handleStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ---- statements ----

func (c *Compiler) handleStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.EmptyStmt:
		return nil
	case *ast.KeywordStmt:
		return c.handleKeywordStmt(s)
	case *ast.CallStmt:
		return c.handleFunctionCall(OpCallScript, s.Args, s.Loc)
	case *ast.StartStmt:
		return c.handleFunctionCall(OpStartScript, s.Args, s.Loc)
	case *ast.VarDeclStmt:
		for _, name := range s.Names {
			if err := c.registry.Register(name, names.Local); err != nil {
				return c.nameError(err, s.Loc)
			}
			c.emit(OpCreateLocalVar)
		}
		return nil
	case *ast.IfStmt:
		return c.handleIfStmt(s)
	case *ast.WhileStmt:
		return c.handleWhileStmt(s)
	case *ast.AssignStmt:
		return c.handleAssignStmt(s)
	case *ast.ReturnStmt:
		return c.handleReturnStmt(s)
	case *ast.UndefStmt:
		return c.unhandled(s.Loc, s.ClassName)
	default:
		return c.unhandled(stmt.Location(), fmt.Sprintf("%T", stmt))
	}
}

func (c *Compiler) handleKeywordStmt(stmt *ast.KeywordStmt) error {
	kw := stmt.Keyword

	if kw == ast.KwPlaySound {
		return cerrors.NewCodeError(cerrors.CategoryCodeGeneration, "PLAY_SOUND statement is not supported", stmt.Loc)
	}

	if kw == ast.KwGet {
		if err := c.handleNode(stmt.Args[0]); err != nil {
			return err
		}
		c.emit(OpPopStack)
		return nil
	}

	op, ok := OpFromKeyword(kw)
	if !ok {
		return c.unhandled(stmt.Loc, kw.String())
	}

	args := stmt.Args
	if (kw == ast.KwMove || kw == ast.KwTurn) && args[len(args)-1] == nil {
		if kw == ast.KwMove {
			op = OpMoveNow
		} else {
			op = OpTurnNow
		}
		args = args[:len(args)-1]
	}

	// The COB emulator expects SET/ATTACH_UNIT operands in the opposite
	// order from every other keyword; reversing here before the reverse
	// iteration below flips both the immediate-operand order and the
	// expression push order relative to the normal case.
	if kw == ast.KwSet || kw == ast.KwAttachUnit {
		reversed := make([]ast.Node, len(args))
		for i, a := range args {
			reversed[len(args)-1-i] = a
		}
		args = reversed
	}

	var postOpcodeVals []uint32
	for i := len(args) - 1; i >= 0; i-- {
		arg := args[i]
		switch a := arg.(type) {
		case *ast.NameRef:
			idx, _, err := c.registry.Lookup(a.Name)
			if err != nil {
				return c.nameError(err, a.Loc)
			}
			postOpcodeVals = append([]uint32{uint32(idx)}, postOpcodeVals...)
		case *ast.AxisRef:
			postOpcodeVals = append([]uint32{uint32(a.Axis)}, postOpcodeVals...)
		case nil:
			if err := c.handleExpr(&ast.Constant{Raw: 0, Scale: ast.ScaleNormal}); err != nil {
				return err
			}
		default:
			if err := c.handleNode(arg); err != nil {
				return err
			}
		}
	}

	if kw == ast.KwAttachUnit {
		c.emit(OpPushConstant)
		c.emitInt32(0)
	}

	c.emit(op)
	for _, w := range postOpcodeVals {
		c.emitWord(w)
	}
	return nil
}

func (c *Compiler) handleFunctionCall(op OpCode, args []ast.Node, loc ast.Location) error {
	for _, arg := range args[1:] {
		if err := c.handleNode(arg); err != nil {
			return err
		}
	}

	funcName, ok := args[0].(*ast.NameRef)
	if !ok {
		return cerrors.NewCodeError(cerrors.CategoryCodeGeneration,
			fmt.Sprintf("expected a function name, got %T", args[0]), loc)
	}

	c.emit(op)
	idx, _, err := c.registry.Lookup(funcName.Name)
	if err != nil {
		return c.nameError(err, funcName.Loc)
	}
	c.emitWord(uint32(idx))
	c.emitWord(uint32(len(args) - 1))
	return nil
}

func (c *Compiler) handleIfStmt(stmt *ast.IfStmt) error {
	if err := c.handleExpr(stmt.Cond); err != nil {
		return err
	}
	c.emit(OpJumpNotEqual)
	jumpIfFalse := c.here()
	c.emit(OpBadPlaceholder)

	if err := c.handleBlock(stmt.Then); err != nil {
		return err
	}

	jumpSkipElse := 0
	if stmt.Else != nil {
		c.emit(OpJump)
		jumpSkipElse = c.here()
		c.emit(OpBadPlaceholder)
	}

	c.patch(jumpIfFalse, c.here())

	if stmt.Else != nil {
		if err := c.handleBlock(stmt.Else); err != nil {
			return err
		}
		c.patch(jumpSkipElse, c.here())
	}
	return nil
}

func (c *Compiler) handleWhileStmt(stmt *ast.WhileStmt) error {
	startPos := c.here()
	if err := c.handleExpr(stmt.Cond); err != nil {
		return err
	}

	c.emit(OpJumpNotEqual)
	exitJump := c.here()
	c.emit(OpBadPlaceholder)

	if err := c.handleBlock(stmt.Body); err != nil {
		return err
	}
	c.emit(OpJump)
	c.emitWord(uint32(startPos))

	c.patch(exitJump, c.here())
	return nil
}

func (c *Compiler) handleAssignStmt(stmt *ast.AssignStmt) error {
	if err := c.handleExpr(stmt.Expr); err != nil {
		return err
	}

	idx, typ, err := c.registry.Lookup(stmt.Var)
	if err != nil {
		return c.nameError(err, stmt.Loc)
	}

	switch typ {
	case names.Static:
		c.emit(OpPopStatic)
	case names.Local, names.Arg:
		c.emit(OpPopLocalVar)
	default:
		return cerrors.NewCodeError(cerrors.CategoryCodeGeneration,
			fmt.Sprintf("illegal assignment to %s %q", typ.Description(), stmt.Var), stmt.Loc)
	}
	c.emitWord(uint32(idx))
	return nil
}

func (c *Compiler) handleReturnStmt(stmt *ast.ReturnStmt) error {
	if stmt.Expr != nil {
		if err := c.handleExpr(stmt.Expr); err != nil {
			return err
		}
	} else {
		c.emit(OpPushConstant)
		c.emitInt32(0)
	}
	c.emit(OpReturn)
	return nil
}

// ---- expressions / value terms ----

// handleNode dispatches a KeywordStmt/CallStmt argument slot, which may
// hold an Expr, a *ast.NameRef, a *ast.AxisRef (both pushed as literal
// constants in this position), or be absent (the nil case is handled by
// the caller before reaching here).
func (c *Compiler) handleNode(node ast.Node) error {
	switch n := node.(type) {
	case ast.Expr:
		return c.handleExpr(n)
	case *ast.NameRef:
		idx, _, err := c.registry.Lookup(n.Name)
		if err != nil {
			return c.nameError(err, n.Loc)
		}
		c.emit(OpPushConstant)
		c.emitWord(uint32(idx))
		return nil
	case *ast.AxisRef:
		c.emit(OpPushConstant)
		c.emitWord(uint32(n.Axis))
		return nil
	default:
		return c.unhandled(node.Location(), fmt.Sprintf("%T", node))
	}
}

func (c *Compiler) handleExpr(expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.UnaryExpr:
		if err := c.handleExpr(e.Operand); err != nil {
			return err
		}
		op, err := OpFromUnaryOp(e.Op)
		if err != nil {
			return cerrors.NewCodeError(cerrors.CategoryCodeGeneration, err.Error(), e.Loc)
		}
		c.emit(op)
		return nil

	case *ast.BinaryExpr:
		if err := c.handleExpr(e.LHS); err != nil {
			return err
		}
		if err := c.handleExpr(e.RHS); err != nil {
			return err
		}
		op, err := OpFromBinaryOp(e.Op)
		if err != nil {
			return cerrors.NewCodeError(cerrors.CategoryCodeGeneration, err.Error(), e.Loc)
		}
		c.emit(op)
		return nil

	case *ast.Constant:
		value, rebased, err := e.Int32Value()
		if err != nil {
			return cerrors.NewCodeError(cerrors.CategoryCodeGeneration, err.Error(), e.Loc)
		}
		if rebased && e.IsFloat {
			c.diagnostics.Warn(cerrors.NewCodeError(cerrors.CategoryCodeGeneration,
				fmt.Sprintf("constant %v exceeds the signed 32-bit range and was rebased to %d", e.NumberValue(), value), e.Loc))
		}
		c.emit(OpPushConstant)
		c.emitInt32(value)
		return nil

	case *ast.VarRef:
		idx, typ, err := c.registry.Lookup(e.Name)
		if err != nil {
			return c.nameError(err, e.Loc)
		}
		switch typ {
		case names.Static:
			c.emit(OpPushStatic)
		case names.Local, names.Arg:
			c.emit(OpPushLocalVar)
		case names.Piece, names.Function:
			c.emit(OpPushConstant)
		}
		c.emitWord(uint32(idx))
		return nil

	case *ast.RandExpr:
		if err := c.handleExpr(e.Min); err != nil {
			return err
		}
		if err := c.handleExpr(e.Max); err != nil {
			return err
		}
		c.emit(OpRand)
		return nil

	case *ast.GetExpr:
		if err := c.handleExpr(e.ValueIdx); err != nil {
			return err
		}
		if e.HasAnyAuxArg() {
			// If any of the up-to-four auxiliary arguments is supplied,
			// all four must be lowered so GET always sees a fixed arity
			// of five stack values; a missing argument lowers as the
			// constant 0.
			for _, arg := range e.Args {
				if arg == nil {
					arg = ast.NewConstant(0, e.Loc)
				}
				if err := c.handleExpr(arg); err != nil {
					return err
				}
			}
			c.emit(OpGet)
		} else {
			c.emit(OpGetUnitValue)
		}
		return nil

	case *ast.UndefExpr:
		return c.unhandled(e.Loc, e.ClassName)

	default:
		return c.unhandled(expr.Location(), fmt.Sprintf("%T", expr))
	}
}
