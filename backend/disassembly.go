package backend

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Disassemble renders a compiled FuncPrototype and every prototype nested
// inside it (by CloseFn) as a single tree, each branch showing that
// function's instructions, constants, upvalue table, and local table
func Disassemble(fn *FuncPrototype) string {
	tree := treeprint.New()
	disassembleInto(tree, fn, "main")
	return tree.String()
}

func disassembleInto(tree treeprint.Tree, fn *FuncPrototype, label string) {
	tree.SetValue(fmt.Sprintf("%s (%d params, %d registers)", label, fn.ParamCount, fn.RegisterCount))

	instrBranch := tree.AddBranch("instructions")
	for _, line := range disassembleBytecode(fn.Bytecode) {
		instrBranch.AddNode(line)
	}

	if len(fn.Constants) > 0 {
		constBranch := tree.AddBranch("constants")
		for i, c := range fn.Constants {
			constBranch.AddNode(fmt.Sprintf("#%d %s", i, Format(c)))
		}
	}

	if len(fn.Upvalues) > 0 {
		upBranch := tree.AddBranch("upvalues")
		for i, record := range fn.Upvalues {
			upBranch.AddNode(fmt.Sprintf("#%d %q localToParent=%t lookupIndex=%d", i, record.Name, record.LocalToParent, record.LookupIndex))
		}
	}

	if len(fn.Locals) > 0 {
		localBranch := tree.AddBranch("locals")
		for _, record := range fn.Locals {
			localBranch.AddNode(fmt.Sprintf("r%d %q isParam=%t", 1+record.LookupIndex, record.Name, record.IsParameter))
		}
	}

	for i, child := range fn.Prototypes {
		childTree := tree.AddBranch("")
		disassembleInto(childTree, child, fmt.Sprintf("proto#%d", i))
	}
}

// disassembleBytecode converts a single function's raw bytecode into a
// slice of formatted instruction lines, one per instruction, prefixed with
// each instruction's starting byte offset
func disassembleBytecode(b *Bytecode) (lines []string) {
	for i, l := 0, b.Size; i < l; {
		start := i
		op := uint8(b.Bytes[i])
		i++

		read32 := func() uint32 {
			v := bytesToUint32(b.Bytes[i], b.Bytes[i+1], b.Bytes[i+2], b.Bytes[i+3])
			i += 4
			return v
		}
		readS32 := func() int32 {
			v := bytesToInt32(b.Bytes[i], b.Bytes[i+1], b.Bytes[i+2], b.Bytes[i+3])
			i += 4
			return v
		}
		readByte := func() byte {
			v := b.Bytes[i]
			i++
			return v
		}

		var line string
		switch op {
		case OpcodeHalt:
			line = "Halt"
		case OpcodeLoadNull:
			line = fmt.Sprintf("LoadNull   r%d", read32())
		case OpcodeLoadBool:
			v := readByte()
			dest := read32()
			line = fmt.Sprintf("LoadBool   %t, r%d", v == 1, dest)
		case OpcodeLoadConst:
			idx := read32()
			dest := read32()
			line = fmt.Sprintf("LoadConst  #%d, r%d", idx, dest)
		case OpcodeLoadProto:
			idx := read32()
			dest := read32()
			line = fmt.Sprintf("LoadProto  proto#%d, r%d", idx, dest)
		case OpcodeMove:
			src := read32()
			dest := read32()
			line = fmt.Sprintf("Move       r%d, r%d", src, dest)
		case OpcodeLoadUpVal:
			idx := readS32()
			dest := read32()
			line = fmt.Sprintf("LoadUpVal  #%d, r%d", idx, dest)
		case OpcodeSetUpVal:
			src := read32()
			idx := readS32()
			line = fmt.Sprintf("SetUpVal   r%d, #%d", src, idx)
		case OpcodeCloseUp:
			reg := read32()
			line = fmt.Sprintf("CloseUp    r%d", reg)
		case OpcodeBrAlways:
			addr := read32()
			line = fmt.Sprintf("BrAlways   %d", addr)
		case OpcodeBrTrue:
			test := read32()
			addr := read32()
			line = fmt.Sprintf("BrTrue     r%d, %d", test, addr)
		case OpcodeBrFalse:
			test := read32()
			addr := read32()
			line = fmt.Sprintf("BrFalse    r%d, %d", test, addr)
		case OpcodeCall:
			callee := read32()
			first := read32()
			count := readS32()
			dest := read32()
			line = fmt.Sprintf("Call       r%d, (r%d...%d), r%d", callee, first, count, dest)
		case OpcodeReturn:
			src := read32()
			line = fmt.Sprintf("Return     r%d", src)
		case OpcodeReturnVoid:
			line = "ReturnVoid"
		case OpcodeTrace:
			first := read32()
			count := readS32()
			line = fmt.Sprintf("Trace      (r%d...%d)", first, count)
		case OpcodeRequire:
			path := read32()
			first := read32()
			count := readS32()
			dest := read32()
			line = fmt.Sprintf("Require    r%d, (r%d...%d), r%d", path, first, count, dest)
		case OpcodeNot:
			operand := read32()
			dest := read32()
			line = fmt.Sprintf("Not        r%d, r%d", operand, dest)
		case OpcodeBNot:
			operand := read32()
			dest := read32()
			line = fmt.Sprintf("BNot       r%d, r%d", operand, dest)
		case OpcodeToBool:
			operand := read32()
			dest := read32()
			line = fmt.Sprintf("ToBool     r%d, r%d", operand, dest)
		case OpcodeCastInt:
			operand := read32()
			dest := read32()
			line = fmt.Sprintf("CastInt    r%d, r%d", operand, dest)
		case OpcodeCastFloat:
			operand := read32()
			dest := read32()
			line = fmt.Sprintf("CastFloat  r%d, r%d", operand, dest)
		case OpcodeCastStr:
			operand := read32()
			dest := read32()
			line = fmt.Sprintf("CastStr    r%d, r%d", operand, dest)
		case OpcodeCastBool:
			operand := read32()
			dest := read32()
			line = fmt.Sprintf("CastBool   r%d, r%d", operand, dest)
		case OpcodeAdd, OpcodeSub, OpcodeMul, OpcodeDiv, OpcodeMod,
			OpcodeLT, OpcodeLTEq, OpcodeGT, OpcodeGTEq, OpcodeEq, OpcodeNEq,
			OpcodeBAnd, OpcodeBOr, OpcodeBXor, OpcodeShiftL, OpcodeShiftR:
			left := read32()
			right := read32()
			dest := read32()
			line = fmt.Sprintf("%-10s r%d, r%d, r%d", binaryOpName(op), left, right, dest)
		case OpcodeNeg:
			operand := read32()
			dest := read32()
			line = fmt.Sprintf("Neg        r%d, r%d", operand, dest)
		case OpcodeNewArray:
			dest := read32()
			line = fmt.Sprintf("NewArray   r%d", dest)
		case OpcodeNewStruct:
			dest := read32()
			line = fmt.Sprintf("NewStruct  r%d", dest)
		case OpcodeIdxGet:
			dest := read32()
			container := read32()
			key := read32()
			line = fmt.Sprintf("IdxGet     r%d, r%d, r%d", dest, container, key)
		case OpcodeIdxSet:
			container := read32()
			key := read32()
			value := read32()
			line = fmt.Sprintf("IdxSet     r%d, r%d, r%d", container, key, value)
		case OpcodeFieldGet:
			dest := read32()
			container := read32()
			keyConst := read32()
			line = fmt.Sprintf("FieldGet   r%d, r%d, #%d", dest, container, keyConst)
		case OpcodeFieldSet:
			container := read32()
			keyConst := read32()
			value := read32()
			line = fmt.Sprintf("FieldSet   r%d, #%d, r%d", container, keyConst, value)
		case OpcodeLen:
			dest := read32()
			container := read32()
			line = fmt.Sprintf("Len        r%d, r%d", dest, container)
		case OpcodeDelIdx:
			container := read32()
			index := read32()
			line = fmt.Sprintf("DelIdx     r%d, r%d", container, index)
		case OpcodeDelField:
			container := read32()
			keyConst := read32()
			line = fmt.Sprintf("DelField   r%d, #%d", container, keyConst)
		case OpcodeTypeof:
			dest := read32()
			operand := read32()
			line = fmt.Sprintf("Typeof     r%d, r%d", dest, operand)
		case OpcodeCloseFn:
			protoIdx := read32()
			dest := read32()
			line = fmt.Sprintf("CloseFn    proto#%d, r%d", protoIdx, dest)
		case OpcodeIterInit:
			iterState := read32()
			container := read32()
			line = fmt.Sprintf("IterInit   r%d, r%d", iterState, container)
		case OpcodeIterNext:
			iterState := read32()
			key := read32()
			value := read32()
			endAddr := read32()
			line = fmt.Sprintf("IterNext   r%d, r%d, r%d, %d", iterState, key, value, endAddr)
		default:
			panic(fmt.Sprintf("unknown opcode 0x%x", op))
		}

		lines = append(lines, fmt.Sprintf("%4d %s", start, line))
	}
	return lines
}

func binaryOpName(op uint8) string {
	switch op {
	case OpcodeAdd:
		return "Add"
	case OpcodeSub:
		return "Sub"
	case OpcodeMul:
		return "Mul"
	case OpcodeDiv:
		return "Div"
	case OpcodeMod:
		return "Mod"
	case OpcodeLT:
		return "LT"
	case OpcodeLTEq:
		return "LTEq"
	case OpcodeGT:
		return "GT"
	case OpcodeGTEq:
		return "GTEq"
	case OpcodeEq:
		return "Eq"
	case OpcodeNEq:
		return "NEq"
	case OpcodeBAnd:
		return "BAnd"
	case OpcodeBOr:
		return "BOr"
	case OpcodeBXor:
		return "BXor"
	case OpcodeShiftL:
		return "ShiftL"
	case OpcodeShiftR:
		return "ShiftR"
	}
	return "?"
}
