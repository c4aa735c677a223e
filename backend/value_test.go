package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArraySetExtendsWithNullPadding(t *testing.T) {
	tests := []struct {
		name     string
		writes   []int64
		wantLen  int64
		wantLast Value
	}{
		{name: "append at len", writes: []int64{0, 1, 2}, wantLen: 3, wantLast: Int(2)},
		{name: "extend with gap", writes: []int64{0, 4}, wantLen: 5, wantLast: Int(1)},
		{name: "overwrite in range", writes: []int64{0, 1, 0}, wantLen: 2, wantLast: Int(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArray()
			for i, idx := range tt.writes {
				a.Set(idx, Int(i))
			}
			assert.Equal(t, tt.wantLen, a.Len())
			assert.Equal(t, tt.wantLast, a.Get(a.Len()-1))
		})
	}
}

func TestArraySetPadsIntermediateSlotsWithNull(t *testing.T) {
	a := NewArray()
	a.Set(4, Int(99))

	assert.Equal(t, int64(5), a.Len())
	for i := int64(0); i < 4; i++ {
		assert.Equal(t, Null{}, a.Get(i))
	}
	assert.Equal(t, Int(99), a.Get(4))
}

func TestArrayGetOutOfRangeYieldsVoid(t *testing.T) {
	a := NewArray()
	a.Set(0, Int(1))

	assert.Equal(t, Void{}, a.Get(-1))
	assert.Equal(t, Void{}, a.Get(5))
}

func TestArrayTruncateDiscardsFromIndexOnward(t *testing.T) {
	a := NewArray()
	for i := int64(0); i < 5; i++ {
		a.Set(i, Int(i))
	}

	a.Truncate(2)

	assert.Equal(t, int64(2), a.Len())
	assert.Equal(t, Int(0), a.Get(0))
	assert.Equal(t, Int(1), a.Get(1))
	assert.Equal(t, Void{}, a.Get(2))
}

func TestStructPreservesInsertionOrderAcrossOverwrites(t *testing.T) {
	s := NewStruct()
	s.Set(Str("a"), Int(1))
	s.Set(Str("b"), Int(2))
	s.Set(Str("c"), Int(3))
	s.Set(Str("b"), Int(20)) // overwrite, must not move "b"

	assert.Equal(t, []Value{Str("a"), Str("b"), Str("c")}, s.Keys())
	assert.Equal(t, Int(20), s.Get(Str("b")))
}

func TestStructDeleteShiftsOrderClosed(t *testing.T) {
	s := NewStruct()
	s.Set(Str("a"), Int(1))
	s.Set(Str("b"), Int(2))
	s.Set(Str("c"), Int(3))

	s.Delete(Str("b"))

	assert.Equal(t, []Value{Str("a"), Str("c")}, s.Keys())
	assert.Equal(t, Void{}, s.Get(Str("b")))
}

func TestStructGetAbsentKeyYieldsVoidNotNull(t *testing.T) {
	s := NewStruct()
	assert.Equal(t, Void{}, s.Get(Str("missing")))
	assert.Equal(t, "void", Typeof(s.Get(Str("missing"))))
}

func TestStructMixedKeyTypesCoexist(t *testing.T) {
	s := NewStruct()
	s.Set(Str("k"), Int(1))
	s.Set(Int(0), Int(2))

	assert.Equal(t, Int(1), s.Get(Str("k")))
	assert.Equal(t, Int(2), s.Get(Int(0)))
	assert.Equal(t, int64(2), s.Len())
}

func TestTypeofCoversAllNineVariants(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Null{}, "null"},
		{Void{}, "void"},
		{Bool(true), "bool"},
		{Int(1), "int"},
		{Float(1.5), "float"},
		{Str("s"), "str"},
		{NewArray(), "array"},
		{NewStruct(), "struct"},
		{&Closure{}, "closure"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Typeof(tt.v))
		})
	}
}

func TestTruthyMatchesDocumentedFalsyValues(t *testing.T) {
	falsy := []Value{Null{}, Bool(false), Int(0), Float(0), Str("")}
	for _, v := range falsy {
		assert.False(t, Truthy(v), "%#v should be falsy", v)
	}

	truthy := []Value{Void{}, Bool(true), Int(1), Float(0.1), Str("x"), NewArray(), NewStruct()}
	for _, v := range truthy {
		assert.True(t, Truthy(v), "%#v should be truthy", v)
	}
}

func TestFormatRendersArraysAndStructsInLiteralShape(t *testing.T) {
	arr := NewArray()
	arr.Set(0, Int(1))
	arr.Set(1, Str("x"))
	assert.Equal(t, `[] {1, "x"}`, Format(arr))

	st := NewStruct()
	st.Set(Str("a"), Int(1))
	assert.Equal(t, `struct {["a"] = 1}`, Format(st))

	assert.Equal(t, "closure", Format(&Closure{}))
	assert.Equal(t, "null", Format(Null{}))
	assert.Equal(t, "true", Format(Bool(true)))
}
