package backend

// Opcode families are grouped into ranges, following the teacher's layout
// (basic ops low, arithmetic families in their own blocks). Exact numbering
// is an implementation detail; what matters is each opcode other than
// OpcodeNop has exactly one Instruction struct implementing it in
// instructions.go
const (
	// Basic opcodes
	OpcodeNop        uint8 = 0x01
	OpcodeHalt       uint8 = 0x02
	OpcodeLoadNull   uint8 = 0x03
	OpcodeLoadBool   uint8 = 0x04
	OpcodeLoadConst  uint8 = 0x05
	OpcodeLoadProto  uint8 = 0x06
	OpcodeMove       uint8 = 0x07
	OpcodeLoadUpVal  uint8 = 0x08
	OpcodeSetUpVal   uint8 = 0x09
	OpcodeCloseUp    uint8 = 0x0A
	OpcodeBrAlways   uint8 = 0x0B
	OpcodeBrTrue     uint8 = 0x0C
	OpcodeBrFalse    uint8 = 0x0D
	OpcodeCall       uint8 = 0x0E
	OpcodeReturn     uint8 = 0x0F
	OpcodeReturnVoid uint8 = 0x10
	OpcodeTrace      uint8 = 0x11
	OpcodeRequire    uint8 = 0x12

	// Logical / unary (0x20...)
	OpcodeNot   uint8 = 0x20
	OpcodeBNot  uint8 = 0x21
	OpcodeToBool uint8 = 0x22

	// Casts (0x30...)
	OpcodeCastInt   uint8 = 0x30
	OpcodeCastFloat uint8 = 0x31
	OpcodeCastStr   uint8 = 0x32
	OpcodeCastBool  uint8 = 0x33

	// Generic arithmetic/bitwise/compare, operand-type dispatched at runtime
	// (0x40...): int x int -> int, any float operand -> float, `+` on two
	// strings concatenates, any other mix is a runtime type error
	OpcodeAdd  uint8 = 0x40
	OpcodeSub  uint8 = 0x41
	OpcodeMul  uint8 = 0x42
	OpcodeDiv  uint8 = 0x43
	OpcodeMod  uint8 = 0x44
	OpcodeNeg  uint8 = 0x45
	OpcodeLT   uint8 = 0x46
	OpcodeLTEq uint8 = 0x47
	OpcodeGT   uint8 = 0x48
	OpcodeGTEq uint8 = 0x49
	OpcodeEq   uint8 = 0x4A
	OpcodeNEq  uint8 = 0x4B

	// Bitwise, int-only (0x50...)
	OpcodeBAnd    uint8 = 0x50
	OpcodeBOr     uint8 = 0x51
	OpcodeBXor    uint8 = 0x52
	OpcodeShiftL  uint8 = 0x53
	OpcodeShiftR  uint8 = 0x54

	// Containers (0x60...)
	OpcodeNewArray  uint8 = 0x60
	OpcodeNewStruct uint8 = 0x61
	OpcodeIdxGet    uint8 = 0x62
	OpcodeIdxSet    uint8 = 0x63
	OpcodeFieldGet  uint8 = 0x64
	OpcodeFieldSet  uint8 = 0x65
	OpcodeLen       uint8 = 0x66
	OpcodeDelIdx    uint8 = 0x67
	OpcodeDelField  uint8 = 0x68
	OpcodeTypeof    uint8 = 0x69

	// Closures (0x70...)
	OpcodeCloseFn uint8 = 0x70

	// Foreach (0x78...)
	OpcodeIterInit uint8 = 0x78
	OpcodeIterNext uint8 = 0x79
)
