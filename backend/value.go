package backend

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the tagged union every register, constant, and container slot
// holds. null is represented as a typed nil (*NullValue)(nil) is avoided in
// favor of a singleton so equality and type switches stay simple
type Value interface {
	valueTag() string
}

// Null is the sole null value; null==null always holds
type Null struct{}

func (Null) valueTag() string { return "null" }

// Void is the sentinel returned by reading a missing struct key; distinct
// from Null so `typeof(void) == "void"` can be used as an existence test
type Void struct{}

func (Void) valueTag() string { return "void" }

// Bool wraps a boolean payload
type Bool bool

func (Bool) valueTag() string { return "bool" }

// Int wraps a 64-bit signed integer payload
type Int int64

func (Int) valueTag() string { return "int" }

// Float wraps a 64-bit IEEE-754 payload
type Float float64

func (Float) valueTag() string { return "float" }

// Str wraps an immutable string payload; `+` on two Strs allocates a new Str
type Str string

func (Str) valueTag() string { return "str" }

// Array is a heap object: a dense, index-ordered sequence. Reference type:
// assigning an Array aliases the same underlying slice header's backing
// object (the *Array pointer, not the struct)
type Array struct {
	Elements []Value
}

func (*Array) valueTag() string { return "array" }

// NewArray returns an empty array
func NewArray() *Array {
	return &Array{}
}

// Get returns the element at index i, or Void if i is out of range
func (a *Array) Get(i int64) Value {
	if i < 0 || i >= int64(len(a.Elements)) {
		return Void{}
	}
	return a.Elements[i]
}

// Set writes val at index i, extending the array (padding with Null) if i
// is beyond the current length. Negative indices are a caller error,
// reported as a runtime Value error by the interpreter before Set is called
func (a *Array) Set(i int64, val Value) {
	for int64(len(a.Elements)) <= i {
		a.Elements = append(a.Elements, Null{})
	}
	a.Elements[i] = val
}

// Truncate implements `delete arr[i]`: discards the element at i and every
// element after it
func (a *Array) Truncate(i int64) {
	if i < 0 {
		i = 0
	}
	if i < int64(len(a.Elements)) {
		a.Elements = a.Elements[:i]
	}
}

func (a *Array) Len() int64 {
	return int64(len(a.Elements))
}

// Struct is a heap object: an ordered string/int-keyed mapping. Keys are
// normalized to Value so int and string keys can coexist; insertion order
// is preserved across overwrites and restored after deletes
type Struct struct {
	keys   []Value
	values map[Value]Value
}

func (*Struct) valueTag() string { return "struct" }

// NewStruct returns an empty, ordered struct
func NewStruct() *Struct {
	return &Struct{values: make(map[Value]Value)}
}

// Get returns the value stored at key, or Void if the key is absent
func (s *Struct) Get(key Value) Value {
	if val, ok := s.values[key]; ok {
		return val
	}
	return Void{}
}

// Set stores val at key, appending key to the insertion order only the
// first time it's written
func (s *Struct) Set(key Value, val Value) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = val
}

// Delete removes key, shifting later keys' iteration order closed
func (s *Struct) Delete(key Value) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order
func (s *Struct) Keys() []Value {
	return s.keys
}

func (s *Struct) Len() int64 {
	return int64(len(s.keys))
}

// FieldKey normalizes a dotted field access (`.foo`) to its struct key form
func FieldKey(name string) Value {
	return Str(name)
}

// Truthy implements bool(x): false for null, false, 0, 0.0, and the empty
// string; true otherwise
func Truthy(v Value) bool {
	switch val := v.(type) {
	case Null:
		return false
	case Bool:
		return bool(val)
	case Int:
		return val != 0
	case Float:
		return val != 0
	case Str:
		return val != ""
	default:
		return true
	}
}

// Typeof returns the type name string for a value, per the builtins table
func Typeof(v Value) string {
	return v.valueTag()
}

// Sizeof returns the int length of a str, array, or struct value. The
// interpreter raises a runtime type error before calling this for any other
// variant
func Sizeof(v Value) int64 {
	switch val := v.(type) {
	case Str:
		return int64(len(val))
	case *Array:
		return val.Len()
	case *Struct:
		return val.Len()
	default:
		return 0
	}
}

// Format renders v the way `trace` does: by type, with arrays/structs shown
// recursively in source-literal shape
func Format(v Value) string {
	switch val := v.(type) {
	case Null:
		return "null"
	case Void:
		return "void"
	case Bool:
		if val {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Str:
		return strconv.Quote(string(val))
	case *Array:
		parts := make([]string, len(val.Elements))
		for i, el := range val.Elements {
			parts[i] = Format(el)
		}
		return fmt.Sprintf("[] {%s}", strings.Join(parts, ", "))
	case *Struct:
		parts := make([]string, 0, len(val.keys))
		for _, k := range val.keys {
			parts = append(parts, fmt.Sprintf("[%s] = %s", Format(k), Format(val.values[k])))
		}
		return fmt.Sprintf("struct {%s}", strings.Join(parts, ", "))
	case *Closure:
		return "closure"
	default:
		return fmt.Sprintf("%v", val)
	}
}
