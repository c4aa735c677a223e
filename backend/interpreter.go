package backend

import (
	"fmt"
	"strconv"
)

// Host is the collaborator an embedding program supplies so the VM can read
// required scripts and write trace output without importing an I/O package
// itself. It covers loading and writing output only; diagnostics are
// returned to the caller as errors rather than passed through the Host
type Host interface {
	Load(path string) (string, error)
	WriteLine(line string)
}

// Execute is a convenience wrapper around Interpreter creation and running
// a compiled top-level prototype to completion
func Execute(mainFunc *FuncPrototype, argv []Value, host Host, scriptDir string) (Value, error) {
	inter := NewInterpreter(host, scriptDir)
	return inter.Run(mainFunc, argv)
}

// Interpreter holds the state of a single VM run: the call stack (frame at
// the top is the one executing), and a directory stack so `require` can
// resolve paths relative to whichever script is currently running
type Interpreter struct {
	ip        BytecodeAddress
	fp        *StackFrame
	callStack []*StackFrame
	scriptDir []string
	host      Host
}

// NewInterpreter prepares an Interpreter with no active frame; Run pushes
// the first frame
func NewInterpreter(host Host, scriptDir string) *Interpreter {
	return &Interpreter{host: host, scriptDir: []string{scriptDir}}
}

// runtimeError is a panic payload caught by Run, carrying a plain message.
// The VM has no source spans at this point (those live in feedback.Message
// at compile time) so runtime errors are reported as plain Go errors
type runtimeError struct{ msg string }

func (e runtimeError) Error() string { return e.msg }

func throwf(format string, args ...interface{}) {
	panic(runtimeError{msg: fmt.Sprintf(format, args...)})
}

// Run executes `proto` as a top-level script with the given argv, returning
// either its result value or a runtime error
func (inter *Interpreter) Run(proto *FuncPrototype, argv []Value) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(runtimeError); ok {
				err = re
				return
			}
			panic(r)
		}
	}()

	frame := inter.pushFrame(&Closure{Prototype: proto})
	frame.Registers[1] = &Register{Value: &Array{Elements: argv}}

	inter.execute()

	return inter.fp.Registers[0].Value.(Value), nil
}

func (inter *Interpreter) pushFrame(closure *Closure) *StackFrame {
	frame := &StackFrame{
		Closure:   closure,
		Registers: make([]*Register, 256),
	}
	for i := range frame.Registers {
		frame.Registers[i] = &Register{Value: Null{}}
	}
	inter.callStack = append(inter.callStack, frame)
	inter.fp = frame
	return frame
}

// iterState is the hidden cursor foreach maintains across ITER_NEXT calls.
// Arrays iterate by numeric index directly; structs snapshot their key list
// at ITER_INIT time since deletes during iteration shouldn't reorder it
type iterState struct {
	cursor    int64
	container Value
	keys      []Value
}

func (inter *Interpreter) execute() {
	for {
		switch opcode := inter.readOpcode(); opcode {
		case OpcodeHalt:
			return
		case OpcodeLoadNull:
			dest := inter.readRegister()
			inter.setReg(dest, Null{})
		case OpcodeLoadBool:
			v := inter.readByte() == 1
			dest := inter.readRegister()
			inter.setReg(dest, Bool(v))
		case OpcodeLoadConst:
			idx := inter.readUint32()
			dest := inter.readRegister()
			inter.setReg(dest, inter.fp.Closure.Prototype.Constants[idx])
		case OpcodeLoadProto:
			idx := inter.readUint32()
			dest := inter.readRegister()
			_ = idx
			_ = dest
		case OpcodeMove:
			source := inter.readRegister()
			dest := inter.readRegister()
			inter.setReg(dest, inter.getReg(source))
		case OpcodeLoadUpVal:
			index := inter.readInt32()
			dest := inter.readRegister()
			inter.setReg(dest, inter.fp.Closure.Upvalues[index].Cell.Value.(Value))
		case OpcodeSetUpVal:
			source := inter.readRegister()
			index := inter.readInt32()
			inter.fp.Closure.Upvalues[index].Cell.Value = inter.getReg(source)
		case OpcodeCloseUp:
			inter.readRegister()
		case OpcodeBrAlways:
			inter.ip = inter.readBytecodeAddress()
		case OpcodeBrTrue:
			testReg := inter.readRegister()
			addr := inter.readBytecodeAddress()
			if Truthy(inter.getReg(testReg)) {
				inter.ip = addr
			}
		case OpcodeBrFalse:
			testReg := inter.readRegister()
			addr := inter.readBytecodeAddress()
			if !Truthy(inter.getReg(testReg)) {
				inter.ip = addr
			}
		case OpcodeCall:
			inter.execCall()
		case OpcodeReturn:
			source := inter.readRegister()
			inter.execReturn(inter.getReg(source))
			if len(inter.callStack) == 0 {
				return
			}
		case OpcodeReturnVoid:
			inter.execReturn(Null{})
			if len(inter.callStack) == 0 {
				return
			}
		case OpcodeTrace:
			inter.execTrace()
		case OpcodeRequire:
			inter.execRequire()
		case OpcodeNot:
			operand := inter.readRegister()
			dest := inter.readRegister()
			inter.setReg(dest, Bool(!Truthy(inter.getReg(operand))))
		case OpcodeBNot:
			operand := inter.readRegister()
			dest := inter.readRegister()
			i, ok := inter.getReg(operand).(Int)
			if !ok {
				throwf("operator '~' expects int, found %s", Typeof(inter.getReg(operand)))
			}
			inter.setReg(dest, ^i)
		case OpcodeToBool:
			operand := inter.readRegister()
			dest := inter.readRegister()
			inter.setReg(dest, Bool(Truthy(inter.getReg(operand))))
		case OpcodeCastInt:
			inter.execCastInt()
		case OpcodeCastFloat:
			inter.execCastFloat()
		case OpcodeCastStr:
			operand := inter.readRegister()
			dest := inter.readRegister()
			inter.setReg(dest, Str(Format(inter.getReg(operand))))
		case OpcodeCastBool:
			operand := inter.readRegister()
			dest := inter.readRegister()
			inter.setReg(dest, Bool(Truthy(inter.getReg(operand))))
		case OpcodeAdd, OpcodeSub, OpcodeMul, OpcodeDiv, OpcodeMod,
			OpcodeLT, OpcodeLTEq, OpcodeGT, OpcodeGTEq, OpcodeEq, OpcodeNEq,
			OpcodeBAnd, OpcodeBOr, OpcodeBXor, OpcodeShiftL, OpcodeShiftR:
			inter.execBinary(opcode)
		case OpcodeNeg:
			inter.execNeg()
		case OpcodeNewArray:
			dest := inter.readRegister()
			inter.setReg(dest, NewArray())
		case OpcodeNewStruct:
			dest := inter.readRegister()
			inter.setReg(dest, NewStruct())
		case OpcodeIdxGet:
			inter.execIdxGet()
		case OpcodeIdxSet:
			inter.execIdxSet()
		case OpcodeFieldGet:
			inter.execFieldGet()
		case OpcodeFieldSet:
			inter.execFieldSet()
		case OpcodeLen:
			dest := inter.readRegister()
			container := inter.readRegister()
			switch v := inter.getReg(container).(type) {
			case Str, *Array, *Struct:
				inter.setReg(dest, Int(Sizeof(v)))
			default:
				throwf("sizeof expects str, array, or struct, found %s", Typeof(v))
			}
		case OpcodeDelIdx:
			container := inter.readRegister()
			index := inter.readRegister()
			if st, ok := inter.getReg(container).(*Struct); ok {
				st.Delete(inter.getReg(index))
				break
			}
			arr, ok := inter.getReg(container).(*Array)
			if !ok {
				throwf("delete expects array or struct, found %s", Typeof(inter.getReg(container)))
			}
			idx, ok := inter.getReg(index).(Int)
			if !ok {
				throwf("array index must be int")
			}
			arr.Truncate(int64(idx))
		case OpcodeDelField:
			container := inter.readRegister()
			keyIdx := inter.readUint32()
			st, ok := inter.getReg(container).(*Struct)
			if !ok {
				throwf("delete expects struct, found %s", Typeof(inter.getReg(container)))
			}
			key := inter.fp.Closure.Prototype.Constants[keyIdx]
			st.Delete(key)
		case OpcodeTypeof:
			dest := inter.readRegister()
			operand := inter.readRegister()
			inter.setReg(dest, Str(Typeof(inter.getReg(operand))))
		case OpcodeCloseFn:
			protoIdx := inter.readUint32()
			dest := inter.readRegister()
			childProto := inter.fp.Closure.Prototype.Prototypes[protoIdx]
			closure := NewClosure(inter.callStack, childProto)
			inter.setReg(dest, closure)
		case OpcodeIterInit:
			inter.execIterInit()
		case OpcodeIterNext:
			inter.execIterNext()
		default:
			throwf("unknown opcode 0x%x", opcode)
		}
	}
}

func (inter *Interpreter) setReg(addr RegisterAddress, v Value) {
	inter.fp.Registers[addr].Value = v
}

func (inter *Interpreter) getReg(addr RegisterAddress) Value {
	return inter.fp.Registers[addr].Value.(Value)
}

func (inter *Interpreter) execCall() {
	calleeReg := inter.readRegister()
	firstArg := inter.readRegister()
	argCount := inter.readInt32()
	destReg := inter.readRegister()

	callee, ok := inter.getReg(calleeReg).(*Closure)
	if !ok {
		throwf("attempted to call non-closure value of type %s", Typeof(inter.getReg(calleeReg)))
	}

	callerFrame := inter.fp
	callerFrame.ReturnToAddress = inter.ip
	callerFrame.ReturnDest = destReg

	frame := inter.pushFrame(callee)
	for i := 0; i < len(callee.Prototype.Locals) && i < int(argCount); i++ {
		if i >= callee.Prototype.ParamCount {
			break
		}
		frame.Registers[1+i].Value = callerFrame.Registers[int(firstArg)+i].Value
	}

	inter.ip = 0
}

func (inter *Interpreter) execReturn(v Value) {
	topFrame := inter.fp
	inter.callStack = inter.callStack[:len(inter.callStack)-1]

	if len(inter.callStack) == 0 {
		topFrame.Registers[0].Value = v
		inter.fp = topFrame
		return
	}

	lowerFrame := inter.callStack[len(inter.callStack)-1]
	lowerFrame.Registers[lowerFrame.ReturnDest].Value = v
	inter.fp = lowerFrame
	inter.ip = lowerFrame.ReturnToAddress
}

func (inter *Interpreter) execTrace() {
	firstArg := inter.readRegister()
	argCount := inter.readInt32()

	parts := make([]string, argCount)
	for i := int32(0); i < argCount; i++ {
		parts[i] = Format(inter.getReg(firstArg + RegisterAddress(i)))
	}
	line := ""
	for i, p := range parts {
		if i > 0 {
			line += " "
		}
		line += p
	}
	inter.host.WriteLine(line)
}

func (inter *Interpreter) execRequire() {
	pathReg := inter.readRegister()
	firstArg := inter.readRegister()
	argCount := inter.readInt32()
	destReg := inter.readRegister()

	path, ok := inter.getReg(pathReg).(Str)
	if !ok {
		throwf("require path must be a string")
	}

	args := make([]Value, argCount)
	for i := int32(0); i < argCount; i++ {
		args[i] = inter.getReg(firstArg + RegisterAddress(i))
	}

	result, err := inter.requireScript(string(path), args)
	if err != nil {
		throwf("%s", err.Error())
	}
	inter.setReg(destReg, result)
}

func (inter *Interpreter) execCastInt() {
	operand := inter.readRegister()
	dest := inter.readRegister()
	switch v := inter.getReg(operand).(type) {
	case Int:
		inter.setReg(dest, v)
	case Float:
		inter.setReg(dest, Int(v))
	case Str:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			throwf("cannot parse %q as int", string(v))
		}
		inter.setReg(dest, Int(n))
	case Bool:
		if v {
			inter.setReg(dest, Int(1))
		} else {
			inter.setReg(dest, Int(0))
		}
	default:
		throwf("cannot cast %s to int", Typeof(v))
	}
}

func (inter *Interpreter) execCastFloat() {
	operand := inter.readRegister()
	dest := inter.readRegister()
	switch v := inter.getReg(operand).(type) {
	case Float:
		inter.setReg(dest, v)
	case Int:
		inter.setReg(dest, Float(v))
	case Str:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			throwf("cannot parse %q as float", string(v))
		}
		inter.setReg(dest, Float(f))
	default:
		throwf("cannot cast %s to float", Typeof(v))
	}
}

func (inter *Interpreter) execNeg() {
	operand := inter.readRegister()
	dest := inter.readRegister()
	switch v := inter.getReg(operand).(type) {
	case Int:
		inter.setReg(dest, -v)
	case Float:
		inter.setReg(dest, -v)
	default:
		throwf("unary '-' expects int or float, found %s", Typeof(v))
	}
}

func (inter *Interpreter) execIdxGet() {
	dest := inter.readRegister()
	containerReg := inter.readRegister()
	keyReg := inter.readRegister()
	switch c := inter.getReg(containerReg).(type) {
	case *Array:
		idx, ok := inter.getReg(keyReg).(Int)
		if !ok {
			throwf("array index must be int")
		}
		inter.setReg(dest, c.Get(int64(idx)))
	case *Struct:
		inter.setReg(dest, c.Get(inter.getReg(keyReg)))
	default:
		throwf("cannot index into %s", Typeof(c))
	}
}

func (inter *Interpreter) execIdxSet() {
	containerReg := inter.readRegister()
	keyReg := inter.readRegister()
	valueReg := inter.readRegister()
	switch c := inter.getReg(containerReg).(type) {
	case *Array:
		idx, ok := inter.getReg(keyReg).(Int)
		if !ok || idx < 0 {
			throwf("array index must be a non-negative int")
		}
		c.Set(int64(idx), inter.getReg(valueReg))
	case *Struct:
		c.Set(inter.getReg(keyReg), inter.getReg(valueReg))
	default:
		throwf("cannot index into %s", Typeof(c))
	}
}

func (inter *Interpreter) execFieldGet() {
	dest := inter.readRegister()
	containerReg := inter.readRegister()
	keyIdx := inter.readUint32()
	st, ok := inter.getReg(containerReg).(*Struct)
	if !ok {
		throwf("field access expects struct, found %s", Typeof(inter.getReg(containerReg)))
	}
	key := inter.fp.Closure.Prototype.Constants[keyIdx]
	inter.setReg(dest, st.Get(key))
}

func (inter *Interpreter) execFieldSet() {
	containerReg := inter.readRegister()
	keyIdx := inter.readUint32()
	valueReg := inter.readRegister()
	st, ok := inter.getReg(containerReg).(*Struct)
	if !ok {
		throwf("field assignment expects struct, found %s", Typeof(inter.getReg(containerReg)))
	}
	key := inter.fp.Closure.Prototype.Constants[keyIdx]
	st.Set(key, inter.getReg(valueReg))
}

func (inter *Interpreter) execIterInit() {
	iterReg := inter.readRegister()
	containerReg := inter.readRegister()
	container := inter.getReg(containerReg)

	st := &iterState{container: container}
	if s, ok := container.(*Struct); ok {
		st.keys = append([]Value{}, s.Keys()...)
	}
	inter.fp.Registers[iterReg].Value = st
}

func (inter *Interpreter) execIterNext() {
	iterReg := inter.readRegister()
	keyReg := inter.readRegister()
	valReg := inter.readRegister()
	endAddr := inter.readBytecodeAddress()

	st := inter.fp.Registers[iterReg].Value.(*iterState)

	switch c := st.container.(type) {
	case *Array:
		if st.cursor >= c.Len() {
			inter.ip = endAddr
			return
		}
		inter.setReg(keyReg, Int(st.cursor))
		inter.setReg(valReg, c.Get(st.cursor))
	case *Struct:
		if st.cursor >= int64(len(st.keys)) {
			inter.ip = endAddr
			return
		}
		k := st.keys[st.cursor]
		inter.setReg(keyReg, k)
		inter.setReg(valReg, c.Get(k))
	default:
		inter.ip = endAddr
		return
	}
	st.cursor++
}

func (inter *Interpreter) execBinary(opcode uint8) {
	leftReg := inter.readRegister()
	rightReg := inter.readRegister()
	dest := inter.readRegister()
	left := inter.getReg(leftReg)
	right := inter.getReg(rightReg)

	inter.setReg(dest, evalBinary(opcode, left, right))
}

// evalBinary dispatches an arithmetic/bitwise/compare operator by the
// runtime type of its operands, since the language has no static types:
// int op int -> int, any float operand promotes both to float, `+` on two
// strings concatenates, `==`/`!=` compare any other operand mix by value
// (so null==null holds and values of different types are unequal), and any
// other operand mix is a runtime type error
func evalBinary(opcode uint8, left, right Value) Value {
	if opcode == OpcodeAdd {
		if ls, ok := left.(Str); ok {
			if rs, ok := right.(Str); ok {
				return ls + rs
			}
			throwf("operator '+' cannot mix str with %s", Typeof(right))
		}
	}

	if isCompareOpcode(opcode) {
		if ls, ok := left.(Str); ok {
			if rs, ok := right.(Str); ok {
				return compareStrs(opcode, ls, rs)
			}
		}
	}

	if opcode == OpcodeEq || opcode == OpcodeNEq {
		_, lf := left.(Float)
		_, li := left.(Int)
		_, rf := right.(Float)
		_, ri := right.(Int)
		if !(lf || li) || !(rf || ri) {
			return Bool((left == right) == (opcode == OpcodeEq))
		}
	}

	if isBitwiseOpcode(opcode) {
		li, lok := left.(Int)
		ri, rok := right.(Int)
		if !lok || !rok {
			throwf("bitwise operator expects int operands, found %s and %s", Typeof(left), Typeof(right))
		}
		return evalIntBitwise(opcode, li, ri)
	}

	lf, lIsFloat := left.(Float)
	rf, rIsFloat := right.(Float)
	li, lIsInt := left.(Int)
	ri, rIsInt := right.(Int)

	if !((lIsFloat || lIsInt) && (rIsFloat || rIsInt)) {
		throwf("operator cannot be applied to %s and %s", Typeof(left), Typeof(right))
	}

	if lIsFloat || rIsFloat {
		var lv, rv float64
		if lIsFloat {
			lv = float64(lf)
		} else {
			lv = float64(li)
		}
		if rIsFloat {
			rv = float64(rf)
		} else {
			rv = float64(ri)
		}
		return evalFloatArith(opcode, lv, rv)
	}

	return evalIntArith(opcode, int64(li), int64(ri))
}

func isCompareOpcode(opcode uint8) bool {
	switch opcode {
	case OpcodeLT, OpcodeLTEq, OpcodeGT, OpcodeGTEq, OpcodeEq, OpcodeNEq:
		return true
	}
	return false
}

func isBitwiseOpcode(opcode uint8) bool {
	switch opcode {
	case OpcodeBAnd, OpcodeBOr, OpcodeBXor, OpcodeShiftL, OpcodeShiftR:
		return true
	}
	return false
}

func compareStrs(opcode uint8, l, r Str) Value {
	switch opcode {
	case OpcodeLT:
		return Bool(l < r)
	case OpcodeLTEq:
		return Bool(l <= r)
	case OpcodeGT:
		return Bool(l > r)
	case OpcodeGTEq:
		return Bool(l >= r)
	case OpcodeEq:
		return Bool(l == r)
	case OpcodeNEq:
		return Bool(l != r)
	}
	throwf("unknown string comparison opcode 0x%x", opcode)
	return Null{}
}

func evalIntBitwise(opcode uint8, l, r Int) Value {
	switch opcode {
	case OpcodeBAnd:
		return l & r
	case OpcodeBOr:
		return l | r
	case OpcodeBXor:
		return l ^ r
	case OpcodeShiftL:
		return l << uint(r)
	case OpcodeShiftR:
		return l >> uint(r)
	}
	throwf("unknown bitwise opcode 0x%x", opcode)
	return Null{}
}

func evalIntArith(opcode uint8, l, r int64) Value {
	switch opcode {
	case OpcodeAdd:
		return Int(l + r)
	case OpcodeSub:
		return Int(l - r)
	case OpcodeMul:
		return Int(l * r)
	case OpcodeDiv:
		if r == 0 {
			throwf("integer division by zero")
		}
		return Int(l / r)
	case OpcodeMod:
		if r == 0 {
			throwf("integer modulo by zero")
		}
		return Int(l % r)
	case OpcodeLT:
		return Bool(l < r)
	case OpcodeLTEq:
		return Bool(l <= r)
	case OpcodeGT:
		return Bool(l > r)
	case OpcodeGTEq:
		return Bool(l >= r)
	case OpcodeEq:
		return Bool(l == r)
	case OpcodeNEq:
		return Bool(l != r)
	}
	throwf("unknown int arithmetic opcode 0x%x", opcode)
	return Null{}
}

func evalFloatArith(opcode uint8, l, r float64) Value {
	switch opcode {
	case OpcodeAdd:
		return Float(l + r)
	case OpcodeSub:
		return Float(l - r)
	case OpcodeMul:
		return Float(l * r)
	case OpcodeDiv:
		return Float(l / r)
	case OpcodeMod:
		return Float(float64(int64(l) % int64(r)))
	case OpcodeLT:
		return Bool(l < r)
	case OpcodeLTEq:
		return Bool(l <= r)
	case OpcodeGT:
		return Bool(l > r)
	case OpcodeGTEq:
		return Bool(l >= r)
	case OpcodeEq:
		return Bool(l == r)
	case OpcodeNEq:
		return Bool(l != r)
	}
	throwf("unknown float arithmetic opcode 0x%x", opcode)
	return Null{}
}

func (inter *Interpreter) readOpcode() uint8 {
	b := inter.fp.Closure.Prototype.Bytecode.Bytes[inter.ip]
	inter.ip++
	return b
}

func (inter *Interpreter) readByte() byte {
	b := inter.fp.Closure.Prototype.Bytecode.Bytes[inter.ip]
	inter.ip++
	return b
}

func (inter *Interpreter) readUint32() uint32 {
	b := inter.next(4)
	return bytesToUint32(b[0], b[1], b[2], b[3])
}

func (inter *Interpreter) readInt32() int32 {
	b := inter.next(4)
	return bytesToInt32(b[0], b[1], b[2], b[3])
}

func (inter *Interpreter) readRegister() RegisterAddress {
	return RegisterAddress(inter.readUint32())
}

func (inter *Interpreter) readBytecodeAddress() BytecodeAddress {
	return BytecodeAddress(inter.readUint32())
}

func (inter *Interpreter) next(n int) []byte {
	b := inter.fp.Closure.Prototype.Bytecode.Bytes[inter.ip : inter.ip+BytecodeAddress(n)]
	inter.ip += BytecodeAddress(n)
	return b
}
