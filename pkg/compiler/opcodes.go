package compiler

import (
	"fmt"

	"github.com/unit-scripts/cobc/pkg/ast"
)

// OpCode is one of the closed set of 32-bit bytecode instructions the
// object file's code segment is made of.
type OpCode uint32

const (
	OpMove      OpCode = 0x10001000
	OpTurn      OpCode = 0x10002000
	OpSpin      OpCode = 0x10003000
	OpStopSpin  OpCode = 0x10004000
	OpShow      OpCode = 0x10005000
	OpHide      OpCode = 0x10006000
	OpCache     OpCode = 0x10007000
	OpDontCache OpCode = 0x10008000
	OpMoveNow   OpCode = 0x1000B000
	OpTurnNow   OpCode = 0x1000C000
	OpShade     OpCode = 0x1000D000
	OpDontShade OpCode = 0x1000E000
	OpEmitSFX   OpCode = 0x1000F000

	OpWaitForTurn OpCode = 0x10011000
	OpWaitForMove OpCode = 0x10012000
	OpSleep       OpCode = 0x10013000

	OpPushConstant   OpCode = 0x10021001
	OpPushLocalVar   OpCode = 0x10021002
	OpPushStatic     OpCode = 0x10021004
	OpCreateLocalVar OpCode = 0x10022000
	OpPopLocalVar    OpCode = 0x10023002
	OpPopStatic      OpCode = 0x10023004
	OpPopStack       OpCode = 0x10024000

	OpAdd        OpCode = 0x10031000
	OpSub        OpCode = 0x10032000
	OpMul        OpCode = 0x10033000
	OpDiv        OpCode = 0x10034000
	OpMod        OpCode = 0x10034001
	OpBitwiseAnd OpCode = 0x10035000
	OpBitwiseOr  OpCode = 0x10036000
	OpBitwiseXor OpCode = 0x10037000
	OpBitwiseNot OpCode = 0x10038000

	OpRand          OpCode = 0x10041000
	OpGetUnitValue  OpCode = 0x10042000
	OpGet           OpCode = 0x10043000

	OpSetLess           OpCode = 0x10051000
	OpSetLessOrEqual    OpCode = 0x10052000
	OpSetGreater        OpCode = 0x10053000
	OpSetGreaterOrEqual OpCode = 0x10054000
	OpSetEqual          OpCode = 0x10055000
	OpSetNotEqual       OpCode = 0x10056000
	OpLogicalAnd        OpCode = 0x10057000
	OpLogicalOr         OpCode = 0x10058000
	OpLogicalXor        OpCode = 0x10059000
	OpLogicalNot        OpCode = 0x1005A000

	OpStartScript    OpCode = 0x10061000
	OpCallScript     OpCode = 0x10062000
	OpRealCall       OpCode = 0x10062001
	OpLuaCall        OpCode = 0x10062002
	OpJump           OpCode = 0x10064000
	OpReturn         OpCode = 0x10065000
	OpJumpNotEqual   OpCode = 0x10066000
	OpSignal         OpCode = 0x10067000
	OpSetSignalMask  OpCode = 0x10068000

	OpExplode   OpCode = 0x10071000
	OpPlaySound OpCode = 0x10072000

	OpSet        OpCode = 0x10082000
	OpAttachUnit OpCode = 0x10083000
	OpDropUnit   OpCode = 0x10084000

	// OpBadPlaceholder fills a jump's target slot until it is back-patched,
	// and is emitted in place of an AST node that has no lowering rule when
	// RaiseOnUnhandledNode is false.
	OpBadPlaceholder OpCode = 0x80000000
)

// OpFromKeyword maps a statement keyword to its opcode. Glue words that never
// start a statement (AROUND, ALONG, TO, NOW, ...) have no entry. The compiler
// handles GET itself before consulting this table, replaces MOVE/TURN with
// their *_NOW forms when no speed is given, and lowers CALL_SCRIPT and
// START_SCRIPT statements through handleFunctionCall instead.
func OpFromKeyword(kw ast.Keyword) (OpCode, bool) {
	switch kw {
	case ast.KwTurn:
		return OpTurn, true
	case ast.KwMove:
		return OpMove, true
	case ast.KwSpin:
		return OpSpin, true
	case ast.KwStopSpin:
		return OpStopSpin, true
	case ast.KwWaitForTurn:
		return OpWaitForTurn, true
	case ast.KwWaitForMove:
		return OpWaitForMove, true
	case ast.KwSet:
		return OpSet, true
	case ast.KwGet:
		return OpGet, true
	case ast.KwCallScript:
		return OpCallScript, true
	case ast.KwStartScript:
		return OpStartScript, true
	case ast.KwEmitSFX:
		return OpEmitSFX, true
	case ast.KwSleep:
		return OpSleep, true
	case ast.KwHide:
		return OpHide, true
	case ast.KwShow:
		return OpShow, true
	case ast.KwExplode:
		return OpExplode, true
	case ast.KwSignal:
		return OpSignal, true
	case ast.KwSetSignalMask:
		return OpSetSignalMask, true
	case ast.KwAttachUnit:
		return OpAttachUnit, true
	case ast.KwDropUnit:
		return OpDropUnit, true
	case ast.KwReturn:
		return OpReturn, true
	case ast.KwCache:
		return OpCache, true
	case ast.KwDontCache:
		return OpDontCache, true
	case ast.KwDontShadow, ast.KwDontShade:
		return OpDontShade, true
	case ast.KwPlaySound:
		return OpPlaySound, true
	default:
		return 0, false
	}
}

// OpFromBinaryOp maps a binary expression operator to its opcode.
func OpFromBinaryOp(op ast.ExpressionOp) (OpCode, error) {
	switch op {
	case ast.OpMult:
		return OpMul, nil
	case ast.OpDiv:
		return OpDiv, nil
	case ast.OpMod:
		return OpMod, nil
	case ast.OpAdd:
		return OpAdd, nil
	case ast.OpMinus:
		return OpSub, nil
	case ast.OpCompLess:
		return OpSetLess, nil
	case ast.OpCompLessEqual:
		return OpSetLessOrEqual, nil
	case ast.OpCompGreater:
		return OpSetGreater, nil
	case ast.OpCompGreaterEqual:
		return OpSetGreaterOrEqual, nil
	case ast.OpCompEqual:
		return OpSetEqual, nil
	case ast.OpCompNotEqual:
		return OpSetNotEqual, nil
	case ast.OpBitwiseAnd:
		return OpBitwiseAnd, nil
	case ast.OpBitwiseOr:
		return OpBitwiseOr, nil
	case ast.OpBitwiseXor:
		return OpBitwiseXor, nil
	case ast.OpLogicalAnd:
		return OpLogicalAnd, nil
	case ast.OpLogicalOr:
		return OpLogicalOr, nil
	case ast.OpLogicalXor:
		return OpLogicalXor, nil
	case ast.OpLogicalNot:
		return OpLogicalNot, nil
	default:
		return 0, fmt.Errorf("invalid or unsupported binary expression operator: %v", op)
	}
}

// OpFromUnaryOp maps a unary expression operator to its opcode. Only
// logical-not has a unary form in this instruction set.
func OpFromUnaryOp(op ast.ExpressionOp) (OpCode, error) {
	if op == ast.OpLogicalNot {
		return OpLogicalNot, nil
	}
	return 0, fmt.Errorf("invalid or unsupported unary expression operator: %v", op)
}

var opCodeNames = map[OpCode]string{
	OpMove: "MOVE", OpTurn: "TURN", OpSpin: "SPIN", OpStopSpin: "STOP_SPIN",
	OpShow: "SHOW", OpHide: "HIDE", OpCache: "CACHE", OpDontCache: "DONT_CACHE",
	OpMoveNow: "MOVE_NOW", OpTurnNow: "TURN_NOW", OpShade: "SHADE",
	OpDontShade: "DONT_SHADE", OpEmitSFX: "EMIT_SFX",
	OpWaitForTurn: "WAIT_FOR_TURN", OpWaitForMove: "WAIT_FOR_MOVE", OpSleep: "SLEEP",
	OpPushConstant: "PUSH_CONSTANT", OpPushLocalVar: "PUSH_LOCAL_VAR",
	OpPushStatic: "PUSH_STATIC", OpCreateLocalVar: "CREATE_LOCAL_VAR",
	OpPopLocalVar: "POP_LOCAL_VAR", OpPopStatic: "POP_STATIC", OpPopStack: "POP_STACK",
	OpAdd: "ADD", OpSub: "SUB", OpMul: "MUL", OpDiv: "DIV", OpMod: "MOD",
	OpBitwiseAnd: "BITWISE_AND", OpBitwiseOr: "BITWISE_OR", OpBitwiseXor: "BITWISE_XOR",
	OpBitwiseNot: "BITWISE_NOT",
	OpRand: "RAND", OpGetUnitValue: "GET_UNIT_VALUE", OpGet: "GET",
	OpSetLess: "SET_LESS", OpSetLessOrEqual: "SET_LESS_OR_EQUAL",
	OpSetGreater: "SET_GREATER", OpSetGreaterOrEqual: "SET_GREATER_OR_EQUAL",
	OpSetEqual: "SET_EQUAL", OpSetNotEqual: "SET_NOT_EQUAL",
	OpLogicalAnd: "LOGICAL_AND", OpLogicalOr: "LOGICAL_OR", OpLogicalXor: "LOGICAL_XOR",
	OpLogicalNot: "LOGICAL_NOT",
	OpStartScript: "START_SCRIPT", OpCallScript: "CALL_SCRIPT", OpRealCall: "REAL_CALL",
	OpLuaCall: "LUA_CALL", OpJump: "JUMP", OpReturn: "RETURN",
	OpJumpNotEqual: "JUMP_NOT_EQUAL", OpSignal: "SIGNAL", OpSetSignalMask: "SET_SIGNAL_MASK",
	OpExplode: "EXPLODE", OpPlaySound: "PLAY_SOUND",
	OpSet: "SET", OpAttachUnit: "ATTACH_UNIT", OpDropUnit: "DROP_UNIT",
	OpBadPlaceholder: "BAD_OP_PLACEHOLDER",
}

func (op OpCode) String() string {
	if s, ok := opCodeNames[op]; ok {
		return s
	}
	return fmt.Sprintf("OpCode(0x%08X)", uint32(op))
}
