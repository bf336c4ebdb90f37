package compiler

import (
	"fmt"
	"strings"

	"github.com/unit-scripts/cobc/pkg/objectfile"
)

// Disassemble renders a human-readable listing of f's code segment, grouped
// by function, with each opcode's operand words inlined on the same line.
// This is not part of the runtime the original tool targets; it exists so
// `cobc decode` can show what a compiled object file actually contains.
func Disassemble(f *objectfile.File) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "; static_var_count=%d piece_count=%d code_words=%d\n", f.StaticVarCount, len(f.PieceNames), len(f.Code))
	for i, name := range f.PieceNames {
		fmt.Fprintf(&buf, "; piece[%d] = %q\n", i, name)
	}

	for i, name := range f.FunctionNames {
		start := int(f.FunctionPtrs[i])
		length := f.FunctionLength(i)
		fmt.Fprintf(&buf, "\nfunction %s: ; words [%d, %d)\n", name, start, start+length)
		disassembleRange(&buf, f.Code[start:start+length], start)
	}

	return buf.String()
}

// operandCounts gives the number of trailing operand words each opcode
// consumes from the code stream, for opcodes with a fixed arity. Variable
// arity opcodes (CALL_SCRIPT/START_SCRIPT push their own trailing argument
// count and so need no entry) are walked specially below.
var operandCounts = map[OpCode]int{
	OpPushConstant: 1,
	OpPushLocalVar: 1,
	OpPushStatic:   1,
	OpPopLocalVar:  1,
	OpPopStatic:    1,
	OpJump:         1,
	OpJumpNotEqual: 1,
	OpMove:         2,
	OpMoveNow:      2,
	OpTurn:         2,
	OpTurnNow:      2,
	OpSpin:         2,
	OpStopSpin:     2,
	OpWaitForTurn:  2,
	OpWaitForMove:  2,
	OpShow:         1,
	OpHide:         1,
	OpDropUnit:     1,
	OpEmitSFX:      1,
	OpExplode:      1,
}

func disassembleRange(buf *strings.Builder, code []uint32, base int) {
	i := 0
	for i < len(code) {
		op := OpCode(code[i])
		pos := base + i

		if op == OpCallScript || op == OpStartScript {
			if i+2 < len(code) {
				argCount := int(code[i+2])
				fmt.Fprintf(buf, "  %6d: %s %d %d\n", pos, op, code[i+1], argCount)
				i += 3
				continue
			}
		}

		operands := operandCounts[op]
		if i+1+operands > len(code) {
			operands = len(code) - i - 1
		}
		fmt.Fprintf(buf, "  %6d: %s", pos, op)
		for j := 0; j < operands; j++ {
			fmt.Fprintf(buf, " %d", int32(code[i+1+j]))
		}
		buf.WriteByte('\n')
		i += 1 + operands
	}
}
