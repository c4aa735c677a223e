package backend

import (
	"github.com/oyc-lang/oyc/frontend"
)

// Closure is the combination of a static `FuncPrototype` and the live
// upvalues the prototype needs to be executable. A `FuncPrototype` must
// first be converted into a Closure before it can be used by the
// Interpreter. A function prototype may be used and reused but a Closure is
// only valid so long as it is being interpreted
type Closure struct {
	Prototype *FuncPrototype
	Upvalues  []*Upvalue
}

func (*Closure) valueTag() string { return "closure" }

// NewClosure returns a newly created `Closure` given a `FuncPrototype` to
// use and a stack of live `StackFrame`s on which to look up upvalues. This
// function is responsible for converting static `UpvalueRecord`s into live
// `Upvalue`s which will point to a live register value higher up the
// `callstack`
func NewClosure(callstack []*StackFrame, fn *FuncPrototype) *Closure {
	closure := &Closure{Prototype: fn}

	if len(fn.Upvalues) > 0 {
		enclosingStackFrame := callstack[len(callstack)-1]

		for _, record := range fn.Upvalues {
			var upvalue *Upvalue

			if record.LocalToParent {
				// `upvalue` is a local variable of the enclosing function so
				// the "LookupIndex" field is the register address of the
				// local variable in the enclosing function's register array
				upvalue = &Upvalue{Cell: enclosingStackFrame.Registers[1+record.LookupIndex]}
			} else {
				// `upvalue` is also an upvalue to the enclosing function so
				// the "LookupIndex" field is the index of the upvalue in the
				// enclosing function's own upvalue list
				upvalue = enclosingStackFrame.Closure.Upvalues[record.LookupIndex]
			}

			closure.Upvalues = append(closure.Upvalues, upvalue)
		}
	}

	return closure
}

// Upvalue is a shared, heap-allocated reference to a register. Because
// registers are themselves heap cells (`*Register`) for the lifetime of the
// frame that owns them, Go's garbage collector keeps the cell alive for as
// long as any closure's Upvalue points at it; there's no separate "closed"
// representation to switch to once the enclosing frame returns
type Upvalue struct {
	Cell *Register
}

// FuncPrototype stores static information about a first-class function
// value. This includes information about what upvalues the closure
// requires, what local variables need reserved registers, any constants to
// supply, the raw bytecode instructions to execute, and any nested function
// prototypes referenced by CloseFn instructions
type FuncPrototype struct {
	Name          string
	ParamCount    int
	RegisterCount int
	Upvalues      []frontend.UpvalueRecord
	Locals        []frontend.LocalRecord
	Constants     []Value
	Prototypes    []*FuncPrototype
	Bytecode      *Bytecode
}

// Bytecode is a byte-slice of raw compiled instructions. Bytecode can't be
// executed without the context of a `FuncPrototype`, which together can be
// converted into an executable `Closure`
type Bytecode struct {
	Size  int
	Bytes []byte
}

// Write implements io.Writer for the Bytecode struct so that in the
// compilation stage instructions can more easily write their bytes to the
// byte buffer
func (b *Bytecode) Write(p []byte) (n int, err error) {
	b.Size += len(p)
	b.Bytes = append(b.Bytes, p...)
	return len(p), nil
}
