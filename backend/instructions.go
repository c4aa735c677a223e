package backend

// Instruction is implemented by every opcode's parameter struct. Generate
// serializes the instruction to its fixed-width (but variable-length,
// depending on 32 vs 64-bit operands) binary encoding
type Instruction interface {
	Generate() []byte
}

// Halt
//  - takes no arguments, unconditionally stops program execution
//  - not emitted by the compiler, which ends every function with ReturnVoid
type Halt struct{}

func (inst Halt) Generate() (blob []byte) {
	return []byte{OpcodeHalt}
}

// LoadNull <destination register>
type LoadNull struct {
	Dest RegisterAddress
}

func (inst LoadNull) Generate() (blob []byte) {
	blob = append(blob, OpcodeLoadNull)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// LoadBool <bool value> <destination register>
type LoadBool struct {
	Value bool
	Dest  RegisterAddress
}

func (inst LoadBool) Generate() (blob []byte) {
	blob = append(blob, OpcodeLoadBool)
	if inst.Value {
		blob = append(blob, 1)
	} else {
		blob = append(blob, 0)
	}
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// LoadConst <constant pool index> <destination register>
//  - the constant pool entry may be an int, float, or str value; the VM
//    reads the tagged value at that index directly
type LoadConst struct {
	ConstantIndex int
	Dest          RegisterAddress
}

func (inst LoadConst) Generate() (blob []byte) {
	blob = append(blob, OpcodeLoadConst)
	blob = append(blob, constIndexToBytes(inst.ConstantIndex)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// LoadProto <child prototype index> <destination register>
//  - loads a reference to a not-yet-closed-over function prototype. Not
//    emitted by the compiler: CloseFn builds the runtime closure directly
//    from a prototype index
type LoadProto struct {
	ProtoIndex int
	Dest       RegisterAddress
}

func (inst LoadProto) Generate() (blob []byte) {
	blob = append(blob, OpcodeLoadProto)
	blob = append(blob, constIndexToBytes(inst.ProtoIndex)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// Move <source register> <destination register>
//  - copies the value in the source register into the destination register
type Move struct {
	Source RegisterAddress
	Dest   RegisterAddress
}

func (inst Move) Generate() (blob []byte) {
	blob = append(blob, OpcodeMove)
	blob = append(blob, registerToBytes(inst.Source)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// LoadUpVal <enclosing closure lookup index> <destination register>
//  - value is copied from the enclosing closure's upvalue into destination
type LoadUpVal struct {
	Index int32
	Dest  RegisterAddress
}

func (inst LoadUpVal) Generate() (blob []byte) {
	blob = append(blob, OpcodeLoadUpVal)
	blob = append(blob, int32ToBytes(inst.Index)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// SetUpVal <source register> <enclosing closure lookup index>
//  - value is copied from the source register and used to update the
//    upvalue cell in the enclosing closure
type SetUpVal struct {
	Source RegisterAddress
	Index  int32
}

func (inst SetUpVal) Generate() (blob []byte) {
	blob = append(blob, OpcodeSetUpVal)
	blob = append(blob, registerToBytes(inst.Source)...)
	blob = append(blob, int32ToBytes(inst.Index)...)
	return blob
}

// CloseUp <register>
//  - marker for where a captured local goes out of scope. The compiler does
//    not emit it; registers are heap cells for the lifetime of the frame, so
//    the interpreter treats it as a no-op and the disassembler can print it
type CloseUp struct {
	Register RegisterAddress
}

func (inst CloseUp) Generate() (blob []byte) {
	blob = append(blob, OpcodeCloseUp)
	blob = append(blob, registerToBytes(inst.Register)...)
	return blob
}

// BrAlways <bytecode address to jump to>
//  - will unconditionally jump to a given address
type BrAlways struct {
	Addr BytecodeAddress
}

// Generate converts this instruction to raw bytes
//  - Addr field MUST BE LAST 4 BYTES OF INSTRUCTION (compiler.go's patch
//    rewrites those bytes once the jump target is known)
func (inst BrAlways) Generate() (blob []byte) {
	blob = append(blob, OpcodeBrAlways)
	blob = append(blob, addressToBytes(inst.Addr)...)
	return blob
}

// BrTrue <decision register> <bytecode address>
//  - will jump to the given address if the value in the decision register
//    is truthy
type BrTrue struct {
	Test RegisterAddress
	Addr BytecodeAddress
}

func (inst BrTrue) Generate() (blob []byte) {
	blob = append(blob, OpcodeBrTrue)
	blob = append(blob, registerToBytes(inst.Test)...)
	blob = append(blob, addressToBytes(inst.Addr)...)
	return blob
}

// BrFalse <decision register> <bytecode address>
//  - will jump to the given address if the value in the decision register
//    is falsy
type BrFalse struct {
	Test RegisterAddress
	Addr BytecodeAddress
}

func (inst BrFalse) Generate() (blob []byte) {
	blob = append(blob, OpcodeBrFalse)
	blob = append(blob, registerToBytes(inst.Test)...)
	blob = append(blob, addressToBytes(inst.Addr)...)
	return blob
}

// Call <callee register> <first argument register> <argument count> <destination register>
//  - arguments are read from contiguous registers starting at FirstArg;
//    missing arguments become null, extra arguments are discarded; a
//    non-closure callee raises a runtime type error
type Call struct {
	Callee    RegisterAddress
	FirstArg  RegisterAddress
	ArgCount  int32
	Dest      RegisterAddress
}

func (inst Call) Generate() (blob []byte) {
	blob = append(blob, OpcodeCall)
	blob = append(blob, registerToBytes(inst.Callee)...)
	blob = append(blob, registerToBytes(inst.FirstArg)...)
	blob = append(blob, int32ToBytes(inst.ArgCount)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// Return <source register holding value to return>
type Return struct {
	Source RegisterAddress
}

func (inst Return) Generate() (blob []byte) {
	blob = append(blob, OpcodeReturn)
	blob = append(blob, registerToBytes(inst.Source)...)
	return blob
}

// ReturnVoid
//  - ends the current frame with a null result, used for the implicit
//    return the compiler emits when control falls off the end of a function
type ReturnVoid struct{}

func (inst ReturnVoid) Generate() (blob []byte) {
	return []byte{OpcodeReturnVoid}
}

// Trace <first argument register> <argument count>
//  - formats and writes each argument to the host sink, space separated,
//    followed by a line terminator
type Trace struct {
	FirstArg RegisterAddress
	ArgCount int32
}

func (inst Trace) Generate() (blob []byte) {
	blob = append(blob, OpcodeTrace)
	blob = append(blob, registerToBytes(inst.FirstArg)...)
	blob = append(blob, int32ToBytes(inst.ArgCount)...)
	return blob
}

// Require <path register> <first argument register> <argument count> <destination register>
type Require struct {
	Path     RegisterAddress
	FirstArg RegisterAddress
	ArgCount int32
	Dest     RegisterAddress
}

func (inst Require) Generate() (blob []byte) {
	blob = append(blob, OpcodeRequire)
	blob = append(blob, registerToBytes(inst.Path)...)
	blob = append(blob, registerToBytes(inst.FirstArg)...)
	blob = append(blob, int32ToBytes(inst.ArgCount)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// Not <operand> <destination register>
//  - boolean negation; operand is coerced to bool first
type Not struct {
	Operand RegisterAddress
	Dest    RegisterAddress
}

func (inst Not) Generate() (blob []byte) {
	blob = append(blob, OpcodeNot)
	blob = append(blob, registerToBytes(inst.Operand)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// BNot <operand> <destination register>
//  - bitwise complement, int operand only
type BNot struct {
	Operand RegisterAddress
	Dest    RegisterAddress
}

func (inst BNot) Generate() (blob []byte) {
	blob = append(blob, OpcodeBNot)
	blob = append(blob, registerToBytes(inst.Operand)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// ToBool <operand> <destination register>
//  - coerces to bool using the truthiness rules from builtins bool()
type ToBool struct {
	Operand RegisterAddress
	Dest    RegisterAddress
}

func (inst ToBool) Generate() (blob []byte) {
	blob = append(blob, OpcodeToBool)
	blob = append(blob, registerToBytes(inst.Operand)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// CastInt <operand> <destination register>
type CastInt struct {
	Operand RegisterAddress
	Dest    RegisterAddress
}

func (inst CastInt) Generate() (blob []byte) {
	blob = append(blob, OpcodeCastInt)
	blob = append(blob, registerToBytes(inst.Operand)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// CastFloat <operand> <destination register>
type CastFloat struct {
	Operand RegisterAddress
	Dest    RegisterAddress
}

func (inst CastFloat) Generate() (blob []byte) {
	blob = append(blob, OpcodeCastFloat)
	blob = append(blob, registerToBytes(inst.Operand)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// CastStr <operand> <destination register>
type CastStr struct {
	Operand RegisterAddress
	Dest    RegisterAddress
}

func (inst CastStr) Generate() (blob []byte) {
	blob = append(blob, OpcodeCastStr)
	blob = append(blob, registerToBytes(inst.Operand)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// CastBool <operand> <destination register>
type CastBool struct {
	Operand RegisterAddress
	Dest    RegisterAddress
}

func (inst CastBool) Generate() (blob []byte) {
	blob = append(blob, OpcodeCastBool)
	blob = append(blob, registerToBytes(inst.Operand)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// binaryOp factors the common <left><right><dest> operand layout shared by
// every arithmetic/bitwise/compare instruction
type binaryOp struct {
	opcode uint8
	Left   RegisterAddress
	Right  RegisterAddress
	Dest   RegisterAddress
}

func (inst binaryOp) Generate() (blob []byte) {
	blob = append(blob, inst.opcode)
	blob = append(blob, registerToBytes(inst.Left)...)
	blob = append(blob, registerToBytes(inst.Right)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// Add <left> <right> <destination register>
//  - int+int -> int, any float operand -> float, str+str -> concatenation,
//    any other operand mix is a runtime type error. Resolved at runtime
//    since the language has no static types
type Add struct{ binaryOp }

func NewAdd(left, right, dest RegisterAddress) Add {
	return Add{binaryOp{OpcodeAdd, left, right, dest}}
}

// Sub <left> <right> <destination register>
type Sub struct{ binaryOp }

func NewSub(left, right, dest RegisterAddress) Sub {
	return Sub{binaryOp{OpcodeSub, left, right, dest}}
}

// Mul <left> <right> <destination register>
type Mul struct{ binaryOp }

func NewMul(left, right, dest RegisterAddress) Mul {
	return Mul{binaryOp{OpcodeMul, left, right, dest}}
}

// Div <left> <right> <destination register>
//  - int/0 is a runtime Value error; float/0.0 follows IEEE 754
type Div struct{ binaryOp }

func NewDiv(left, right, dest RegisterAddress) Div {
	return Div{binaryOp{OpcodeDiv, left, right, dest}}
}

// Mod <left> <right> <destination register>
type Mod struct{ binaryOp }

func NewMod(left, right, dest RegisterAddress) Mod {
	return Mod{binaryOp{OpcodeMod, left, right, dest}}
}

// LT <left> <right> <destination register>
type LT struct{ binaryOp }

func NewLT(left, right, dest RegisterAddress) LT {
	return LT{binaryOp{OpcodeLT, left, right, dest}}
}

// LTEq <left> <right> <destination register>
type LTEq struct{ binaryOp }

func NewLTEq(left, right, dest RegisterAddress) LTEq {
	return LTEq{binaryOp{OpcodeLTEq, left, right, dest}}
}

// GT <left> <right> <destination register>
type GT struct{ binaryOp }

func NewGT(left, right, dest RegisterAddress) GT {
	return GT{binaryOp{OpcodeGT, left, right, dest}}
}

// GTEq <left> <right> <destination register>
type GTEq struct{ binaryOp }

func NewGTEq(left, right, dest RegisterAddress) GTEq {
	return GTEq{binaryOp{OpcodeGTEq, left, right, dest}}
}

// Eq <left> <right> <destination register>
type Eq struct{ binaryOp }

func NewEq(left, right, dest RegisterAddress) Eq {
	return Eq{binaryOp{OpcodeEq, left, right, dest}}
}

// NEq <left> <right> <destination register>
type NEq struct{ binaryOp }

func NewNEq(left, right, dest RegisterAddress) NEq {
	return NEq{binaryOp{OpcodeNEq, left, right, dest}}
}

// BAnd <left> <right> <destination register>
type BAnd struct{ binaryOp }

func NewBAnd(left, right, dest RegisterAddress) BAnd {
	return BAnd{binaryOp{OpcodeBAnd, left, right, dest}}
}

// BOr <left> <right> <destination register>
type BOr struct{ binaryOp }

func NewBOr(left, right, dest RegisterAddress) BOr {
	return BOr{binaryOp{OpcodeBOr, left, right, dest}}
}

// BXor <left> <right> <destination register>
type BXor struct{ binaryOp }

func NewBXor(left, right, dest RegisterAddress) BXor {
	return BXor{binaryOp{OpcodeBXor, left, right, dest}}
}

// ShiftL <left> <right> <destination register>
type ShiftL struct{ binaryOp }

func NewShiftL(left, right, dest RegisterAddress) ShiftL {
	return ShiftL{binaryOp{OpcodeShiftL, left, right, dest}}
}

// ShiftR <left> <right> <destination register>
type ShiftR struct{ binaryOp }

func NewShiftR(left, right, dest RegisterAddress) ShiftR {
	return ShiftR{binaryOp{OpcodeShiftR, left, right, dest}}
}

// Neg <operand> <destination register>
//  - arithmetic negation, int or float operand
type Neg struct {
	Operand RegisterAddress
	Dest    RegisterAddress
}

func (inst Neg) Generate() (blob []byte) {
	blob = append(blob, OpcodeNeg)
	blob = append(blob, registerToBytes(inst.Operand)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// NewArrayOp <destination register>
type NewArrayOp struct {
	Dest RegisterAddress
}

func (inst NewArrayOp) Generate() (blob []byte) {
	blob = append(blob, OpcodeNewArray)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// NewStructOp <destination register>
type NewStructOp struct {
	Dest RegisterAddress
}

func (inst NewStructOp) Generate() (blob []byte) {
	blob = append(blob, OpcodeNewStruct)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// IdxGet <destination register> <container register> <key register>
//  - Dest = Container[Key]
type IdxGet struct {
	Dest      RegisterAddress
	Container RegisterAddress
	Key       RegisterAddress
}

func (inst IdxGet) Generate() (blob []byte) {
	blob = append(blob, OpcodeIdxGet)
	blob = append(blob, registerToBytes(inst.Dest)...)
	blob = append(blob, registerToBytes(inst.Container)...)
	blob = append(blob, registerToBytes(inst.Key)...)
	return blob
}

// IdxSet <container register> <key register> <value register>
//  - Container[Key] = Value
type IdxSet struct {
	Container RegisterAddress
	Key       RegisterAddress
	Value     RegisterAddress
}

func (inst IdxSet) Generate() (blob []byte) {
	blob = append(blob, OpcodeIdxSet)
	blob = append(blob, registerToBytes(inst.Container)...)
	blob = append(blob, registerToBytes(inst.Key)...)
	blob = append(blob, registerToBytes(inst.Value)...)
	return blob
}

// FieldGet <destination register> <struct register> <key constant index>
//  - specialized on a string-constant key: Dest = Struct[key]
type FieldGet struct {
	Dest      RegisterAddress
	Container RegisterAddress
	KeyConst  int
}

func (inst FieldGet) Generate() (blob []byte) {
	blob = append(blob, OpcodeFieldGet)
	blob = append(blob, registerToBytes(inst.Dest)...)
	blob = append(blob, registerToBytes(inst.Container)...)
	blob = append(blob, constIndexToBytes(inst.KeyConst)...)
	return blob
}

// FieldSet <struct register> <key constant index> <value register>
type FieldSet struct {
	Container RegisterAddress
	KeyConst  int
	Value     RegisterAddress
}

func (inst FieldSet) Generate() (blob []byte) {
	blob = append(blob, OpcodeFieldSet)
	blob = append(blob, registerToBytes(inst.Container)...)
	blob = append(blob, constIndexToBytes(inst.KeyConst)...)
	blob = append(blob, registerToBytes(inst.Value)...)
	return blob
}

// Len <destination register> <container register>
type Len struct {
	Dest      RegisterAddress
	Container RegisterAddress
}

func (inst Len) Generate() (blob []byte) {
	blob = append(blob, OpcodeLen)
	blob = append(blob, registerToBytes(inst.Dest)...)
	blob = append(blob, registerToBytes(inst.Container)...)
	return blob
}

// DelIdx <container register> <index register>
//  - on an array, truncates at Index (discards Index and every later
//    element); on a struct, removes the key held in Index
type DelIdx struct {
	Container RegisterAddress
	Index     RegisterAddress
}

func (inst DelIdx) Generate() (blob []byte) {
	blob = append(blob, OpcodeDelIdx)
	blob = append(blob, registerToBytes(inst.Container)...)
	blob = append(blob, registerToBytes(inst.Index)...)
	return blob
}

// DelField <struct register> <key constant index>
//  - removes the entry, shifting later keys' order closed
type DelField struct {
	Container RegisterAddress
	KeyConst  int
}

func (inst DelField) Generate() (blob []byte) {
	blob = append(blob, OpcodeDelField)
	blob = append(blob, registerToBytes(inst.Container)...)
	blob = append(blob, constIndexToBytes(inst.KeyConst)...)
	return blob
}

// TypeofOp <destination register> <operand register>
type TypeofOp struct {
	Dest    RegisterAddress
	Operand RegisterAddress
}

func (inst TypeofOp) Generate() (blob []byte) {
	blob = append(blob, OpcodeTypeof)
	blob = append(blob, registerToBytes(inst.Dest)...)
	blob = append(blob, registerToBytes(inst.Operand)...)
	return blob
}

// CloseFn <child prototype index> <destination register>
//  - builds a runtime Closure from a child FuncPrototype; NewClosure binds
//    each of the prototype's UpvalueRecords to either a parent local
//    register or a parent upvalue, per record.LocalToParent
type CloseFn struct {
	ProtoIndex int
	Dest       RegisterAddress
}

func (inst CloseFn) Generate() (blob []byte) {
	blob = append(blob, OpcodeCloseFn)
	blob = append(blob, constIndexToBytes(inst.ProtoIndex)...)
	blob = append(blob, registerToBytes(inst.Dest)...)
	return blob
}

// IterInit <iterator state register> <container register>
//  - snapshots a key list for structs; arrays iterate by index directly
type IterInit struct {
	IterState RegisterAddress
	Container RegisterAddress
}

func (inst IterInit) Generate() (blob []byte) {
	blob = append(blob, OpcodeIterInit)
	blob = append(blob, registerToBytes(inst.IterState)...)
	blob = append(blob, registerToBytes(inst.Container)...)
	return blob
}

// IterNext <iterator state register> <key register> <value register> <end address>
//  - advances the iterator, binding Key/Value, or jumps to EndAddr when
//    exhausted
type IterNext struct {
	IterState RegisterAddress
	Key       RegisterAddress
	Value     RegisterAddress
	EndAddr   BytecodeAddress
}

func (inst IterNext) Generate() (blob []byte) {
	blob = append(blob, OpcodeIterNext)
	blob = append(blob, registerToBytes(inst.IterState)...)
	blob = append(blob, registerToBytes(inst.Key)...)
	blob = append(blob, registerToBytes(inst.Value)...)
	blob = append(blob, addressToBytes(inst.EndAddr)...)
	return blob
}
