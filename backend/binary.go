package backend

import (
	"math"
)

// The 64-bit helpers encode int/float payloads as big-endian blobs. Int,
// float and string literals live in the constant pool, so instructions carry
// only 32-bit operands: registers, bytecode addresses, and constant-pool
// indices.

func int64ToBytes(val int64) (blob []byte) {
	return uint64ToBytes(uint64(val))
}

func uint64ToBytes(val uint64) (blob []byte) {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[7-i] = byte((val >> uint(i*8)) & 0xff)
	}
	return b[:]
}

func float64ToBytes(val float64) (blob []byte) {
	bits := math.Float64bits(val)
	return uint64ToBytes(bits)
}

func int32ToBytes(val int32) (blob []byte) {
	var b0, b1, b2, b3 byte
	b0 = byte((val >> 0x00) & 0xff)
	b1 = byte((val >> 0x08) & 0xff)
	b2 = byte((val >> 0x10) & 0xff)
	b3 = byte((val >> 0x18) & 0xff)

	// Arrange bytes in Big-Endian order
	return []byte{b3, b2, b1, b0}
}

func uint32ToBytes(val uint32) (blob []byte) {
	var b0, b1, b2, b3 byte
	b0 = byte((val >> 0x00) & 0xff)
	b1 = byte((val >> 0x08) & 0xff)
	b2 = byte((val >> 0x10) & 0xff)
	b3 = byte((val >> 0x18) & 0xff)

	// Arrange bytes in Big-Endian order
	return []byte{b3, b2, b1, b0}
}

func registerToBytes(reg RegisterAddress) (blob []byte) {
	return uint32ToBytes(uint32(reg))
}

func addressToBytes(addr BytecodeAddress) (blob []byte) {
	return uint32ToBytes(uint32(addr))
}

// constIndexToBytes encodes an index into a FuncPrototype's constant pool.
// Constants (strings, nested function prototypes) are too large to inline
// directly in the instruction stream so instructions reference them by index
func constIndexToBytes(index int) (blob []byte) {
	return uint32ToBytes(uint32(index))
}

func bytesToInt64(b0, b1, b2, b3, b4, b5, b6, b7 byte) int64 {
	return int64(bytesToUint64(b0, b1, b2, b3, b4, b5, b6, b7))
}

func bytesToUint64(b0, b1, b2, b3, b4, b5, b6, b7 byte) uint64 {
	return uint64(b7) | (uint64(b6) << 8) | (uint64(b5) << 16) | (uint64(b4) << 24) |
		(uint64(b3) << 32) | (uint64(b2) << 40) | (uint64(b1) << 48) | (uint64(b0) << 56)
}

func bytesToFloat64(b0, b1, b2, b3, b4, b5, b6, b7 byte) float64 {
	bits := bytesToUint64(b0, b1, b2, b3, b4, b5, b6, b7)
	return math.Float64frombits(bits)
}

func bytesToInt32(b0, b1, b2, b3 byte) int32 {
	return int32(b3) | (int32(b2) << 8) | (int32(b1) << 16) | (int32(b0) << 24)
}

func bytesToUint32(b0, b1, b2, b3 byte) uint32 {
	return uint32(b3) | (uint32(b2) << 8) | (uint32(b1) << 16) | (uint32(b0) << 24)
}
