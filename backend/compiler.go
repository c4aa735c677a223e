package backend

import (
	"fmt"

	"github.com/oyc-lang/oyc/frontend"
)

// Compile lowers a resolved program into a top-level `FuncPrototype`. The
// script itself is compiled as an anonymous function whose sole parameter
// is `argv`, matching the convention used for every `require`d script
func Compile(prog *frontend.ProgramNode) *FuncPrototype {
	state := newAssembly(nil)
	state.bindLocals(prog.Locals)

	for _, stmt := range prog.Statements {
		state.compileStmt(stmt)
	}

	state.currFunc.Bytecode.Write(ReturnVoid{}.Generate())
	return state.currFunc
}

// assembly tracks the compiler's state while lowering a single function
// prototype (the top-level script or a closure literal). `stackPtr` is the
// next free temporary register; registers below `reservedRegs` are
// permanently assigned to the return-value slot (r0) and local variables
type assembly struct {
	parent       *assembly
	currFunc     *FuncPrototype
	stackPtr     RegisterAddress
	reservedRegs int
	breakStack   []*breakable
}

// breakable tracks the forward-jump patch list owned by the nearest
// enclosing loop or switch. `continuePatches` only applies to loops;
// `continue` inside a switch walks past it to the nearest enclosing loop
type breakable struct {
	isLoop          bool
	breakPatches    []int
	continuePatches []int
}

func newAssembly(parent *assembly) *assembly {
	return &assembly{
		parent:       parent,
		currFunc:     &FuncPrototype{Bytecode: &Bytecode{}},
		reservedRegs: 1, // r0 is always reserved for return values
		stackPtr:     1,
	}
}

func (state *assembly) bindLocals(records []*frontend.LocalRecord) {
	for _, rec := range records {
		state.currFunc.Locals = append(state.currFunc.Locals, *rec)
	}
	state.reservedRegs += len(records)
	state.stackPtr = RegisterAddress(state.reservedRegs)
	state.currFunc.RegisterCount = state.reservedRegs
	state.currFunc.ParamCount = countParams(records)
}

func countParams(records []*frontend.LocalRecord) (n int) {
	for _, r := range records {
		if r.IsParameter {
			n++
		}
	}
	return n
}

// localRegister returns the register permanently assigned to a local
// variable. Register 0 is reserved for return values so local registers
// start at 1
func (state *assembly) localRegister(name string) (reg RegisterAddress, ok bool) {
	for _, rec := range state.currFunc.Locals {
		if rec.Name == name {
			return RegisterAddress(1 + rec.LookupIndex), true
		}
	}
	return 0, false
}

// upvalueIndex returns the position of `name` in the current function's
// upvalue list, which is also its position in the runtime Closure's Upvalues
// (NewClosure builds them in the same order) and so the index that LoadUpVal
// and SetUpVal address
func (state *assembly) upvalueIndex(name string) (index int32, ok bool) {
	for i, u := range state.currFunc.Upvalues {
		if u.Name == name {
			return int32(i), true
		}
	}
	return 0, false
}

// alloc reserves the next free temporary register
func (state *assembly) alloc() RegisterAddress {
	reg := state.stackPtr
	state.stackPtr++
	if int(state.stackPtr) > state.currFunc.RegisterCount {
		state.currFunc.RegisterCount = int(state.stackPtr)
	}
	return reg
}

// free releases a temporary register, if it was one (locals/r0 are never
// freed since they're permanently reserved)
func (state *assembly) free(reg RegisterAddress) {
	if int(reg) >= state.reservedRegs && reg == state.stackPtr-1 {
		state.stackPtr--
	}
}

func (state *assembly) addr() BytecodeAddress {
	return BytecodeAddress(state.currFunc.Bytecode.Size)
}

func (state *assembly) patch(offset int, addr BytecodeAddress) {
	copy(state.currFunc.Bytecode.Bytes[offset:offset+4], addressToBytes(addr))
}

func (state *assembly) emitBrAlways() (patchAt int) {
	pos := state.currFunc.Bytecode.Size
	state.currFunc.Bytecode.Write(BrAlways{Addr: 0}.Generate())
	return pos + 1
}

func (state *assembly) emitBrTrue(test RegisterAddress) (patchAt int) {
	pos := state.currFunc.Bytecode.Size
	state.currFunc.Bytecode.Write(BrTrue{Test: test, Addr: 0}.Generate())
	return pos + 1 + 4
}

func (state *assembly) emitBrFalse(test RegisterAddress) (patchAt int) {
	pos := state.currFunc.Bytecode.Size
	state.currFunc.Bytecode.Write(BrFalse{Test: test, Addr: 0}.Generate())
	return pos + 1 + 4
}

func (state *assembly) emitIterNext(iterState, key, val RegisterAddress) (patchAt int) {
	pos := state.currFunc.Bytecode.Size
	state.currFunc.Bytecode.Write(IterNext{IterState: iterState, Key: key, Value: val, EndAddr: 0}.Generate())
	return pos + 1 + 4 + 4 + 4
}

// constIndex appends a literal value to the current prototype's constant
// pool and returns its index. No deduplication, matching the teacher's
// straightforward append-only constant pool
func (state *assembly) constIndex(v Value) int {
	idx := len(state.currFunc.Constants)
	state.currFunc.Constants = append(state.currFunc.Constants, v)
	return idx
}

func (state *assembly) pushLoop() *breakable {
	b := &breakable{isLoop: true}
	state.breakStack = append(state.breakStack, b)
	return b
}

func (state *assembly) pushSwitch() *breakable {
	b := &breakable{isLoop: false}
	state.breakStack = append(state.breakStack, b)
	return b
}

func (state *assembly) popBreakable() {
	state.breakStack = state.breakStack[:len(state.breakStack)-1]
}

func (state *assembly) nearestLoop() *breakable {
	for i := len(state.breakStack) - 1; i >= 0; i-- {
		if state.breakStack[i].isLoop {
			return state.breakStack[i]
		}
	}
	return nil
}

// compileClosure lowers a closure literal to a child FuncPrototype appended
// to the enclosing prototype's Prototypes list, returning its index there
func (state *assembly) compileClosure(n *frontend.ClosureLiteral) (protoIndex int) {
	sub := newAssembly(state)
	for _, u := range n.Upvalues {
		sub.currFunc.Upvalues = append(sub.currFunc.Upvalues, *u)
	}
	sub.bindLocals(n.Locals)

	protoIndex = len(state.currFunc.Prototypes)
	state.currFunc.Prototypes = append(state.currFunc.Prototypes, sub.currFunc)

	for _, stmt := range n.Body.Statements {
		sub.compileStmt(stmt)
	}
	sub.currFunc.Bytecode.Write(ReturnVoid{}.Generate())

	return protoIndex
}

func (state *assembly) compileStmt(stmt frontend.Stmt) {
	switch n := stmt.(type) {
	case *frontend.BlockStmt:
		for _, s := range n.Statements {
			state.compileStmt(s)
		}
	case *frontend.DeclarationStmt:
		destReg, _ := state.localRegister(n.Assignee.Name)
		valReg := state.compileExpr(n.Assignment, destReg)
		if valReg != destReg {
			state.currFunc.Bytecode.Write(Move{Source: valReg, Dest: destReg}.Generate())
			state.free(valReg)
		}
	case *frontend.AssignmentStmt:
		state.compileAssignment(n.Target, n.Operator, n.Value)
	case *frontend.ExprStmt:
		reg := state.alloc()
		result := state.compileExpr(n.Argument, reg)
		state.free(result)
		if result != reg {
			state.free(reg)
		}
	case *frontend.IfStmt:
		condReg := state.alloc()
		state.compileExpr(n.Condition, condReg)
		state.free(condReg)
		elsePatch := state.emitBrFalse(condReg)
		state.compileStmt(n.Then)
		if n.Else != nil {
			endPatch := state.emitBrAlways()
			state.patch(elsePatch, state.addr())
			state.compileStmt(n.Else)
			state.patch(endPatch, state.addr())
		} else {
			state.patch(elsePatch, state.addr())
		}
	case *frontend.WhileStmt:
		loopStart := state.addr()
		b := state.pushLoop()
		condReg := state.alloc()
		state.compileExpr(n.Condition, condReg)
		state.free(condReg)
		endPatch := state.emitBrFalse(condReg)
		state.compileStmt(n.Body)
		state.patch(state.emitBrAlways(), loopStart)
		end := state.addr()
		state.patch(endPatch, end)
		for _, p := range b.breakPatches {
			state.patch(p, end)
		}
		for _, p := range b.continuePatches {
			state.patch(p, loopStart)
		}
		state.popBreakable()
	case *frontend.DoWhileStmt:
		loopStart := state.addr()
		b := state.pushLoop()
		state.compileStmt(n.Body)
		continueTarget := state.addr()
		condReg := state.alloc()
		state.compileExpr(n.Condition, condReg)
		state.free(condReg)
		state.patch(state.emitBrTrue(condReg), loopStart)
		end := state.addr()
		for _, p := range b.breakPatches {
			state.patch(p, end)
		}
		for _, p := range b.continuePatches {
			state.patch(p, continueTarget)
		}
		state.popBreakable()
	case *frontend.ForStmt:
		if n.Init != nil {
			state.compileStmt(n.Init)
		}
		loopStart := state.addr()
		b := state.pushLoop()
		var endPatch int
		hasCond := n.Condition != nil
		if hasCond {
			condReg := state.alloc()
			state.compileExpr(n.Condition, condReg)
			state.free(condReg)
			endPatch = state.emitBrFalse(condReg)
		}
		state.compileStmt(n.Body)
		continueTarget := state.addr()
		if n.Post != nil {
			state.compileStmt(n.Post)
		}
		state.patch(state.emitBrAlways(), loopStart)
		end := state.addr()
		if hasCond {
			state.patch(endPatch, end)
		}
		for _, p := range b.breakPatches {
			state.patch(p, end)
		}
		for _, p := range b.continuePatches {
			state.patch(p, continueTarget)
		}
		state.popBreakable()
	case *frontend.ForeachStmt:
		state.compileForeach(n)
	case *frontend.SwitchStmt:
		state.compileSwitch(n)
	case *frontend.BreakStmt:
		patch := state.emitBrAlways()
		target := state.breakStack[len(state.breakStack)-1]
		target.breakPatches = append(target.breakPatches, patch)
	case *frontend.ContinueStmt:
		patch := state.emitBrAlways()
		loop := state.nearestLoop()
		loop.continuePatches = append(loop.continuePatches, patch)
	case *frontend.ReturnStmt:
		if n.Argument != nil {
			reg := state.alloc()
			state.compileExpr(n.Argument, reg)
			state.free(reg)
			if reg != 0 {
				state.currFunc.Bytecode.Write(Move{Source: reg, Dest: 0}.Generate())
			}
			state.currFunc.Bytecode.Write(Return{Source: 0}.Generate())
		} else {
			state.currFunc.Bytecode.Write(ReturnVoid{}.Generate())
		}
	case *frontend.DeleteStmt:
		state.compileDelete(n.Target)
	default:
		panic(fmt.Sprintf("unknown statement node %T", n))
	}
}

func (state *assembly) compileDelete(target frontend.Expr) {
	switch t := target.(type) {
	case *frontend.IndexAccessExpr:
		rootReg := state.alloc()
		state.compileExpr(t.Root, rootReg)
		idxReg := state.alloc()
		state.compileExpr(t.Index, idxReg)
		state.currFunc.Bytecode.Write(DelIdx{Container: rootReg, Index: idxReg}.Generate())
		state.free(idxReg)
		state.free(rootReg)
	case *frontend.FieldAccessExpr:
		rootReg := state.alloc()
		state.compileExpr(t.Root, rootReg)
		keyIdx := state.constIndex(Str(t.Field.Name))
		state.currFunc.Bytecode.Write(DelField{Container: rootReg, KeyConst: keyIdx}.Generate())
		state.free(rootReg)
	default:
		panic(fmt.Sprintf("invalid delete target %T", t))
	}
}

// compileAssignment handles `=` and the compound assignment operators for
// every lvalue form: identifier, array index, and struct field
func (state *assembly) compileAssignment(target frontend.Expr, op frontend.TokenSymbol, value frontend.Expr) {
	switch t := target.(type) {
	case *frontend.IdentExpr:
		if idx, ok := state.upvalueIndex(t.Name); ok {
			valReg := state.alloc()
			if op != "=" {
				cur := state.alloc()
				state.currFunc.Bytecode.Write(LoadUpVal{Index: idx, Dest: cur}.Generate())
				rhs := state.alloc()
				state.compileExpr(value, rhs)
				state.emitCompoundOp(op, cur, rhs, valReg)
				state.free(rhs)
				state.free(cur)
			} else {
				state.compileExpr(value, valReg)
			}
			state.currFunc.Bytecode.Write(SetUpVal{Source: valReg, Index: idx}.Generate())
			state.free(valReg)
			return
		}

		destReg, _ := state.localRegister(t.Name)
		if op == "=" {
			result := state.compileExpr(value, destReg)
			if result != destReg {
				state.currFunc.Bytecode.Write(Move{Source: result, Dest: destReg}.Generate())
				state.free(result)
			}
			return
		}
		rhs := state.alloc()
		state.compileExpr(value, rhs)
		state.emitCompoundOp(op, destReg, rhs, destReg)
		state.free(rhs)
	case *frontend.IndexAccessExpr:
		rootReg := state.alloc()
		state.compileExpr(t.Root, rootReg)
		idxReg := state.alloc()
		state.compileExpr(t.Index, idxReg)
		valReg := state.alloc()
		if op != "=" {
			cur := state.alloc()
			state.currFunc.Bytecode.Write(IdxGet{Dest: cur, Container: rootReg, Key: idxReg}.Generate())
			rhs := state.alloc()
			state.compileExpr(value, rhs)
			state.emitCompoundOp(op, cur, rhs, valReg)
			state.free(rhs)
			state.free(cur)
		} else {
			state.compileExpr(value, valReg)
		}
		state.currFunc.Bytecode.Write(IdxSet{Container: rootReg, Key: idxReg, Value: valReg}.Generate())
		state.free(valReg)
		state.free(idxReg)
		state.free(rootReg)
	case *frontend.FieldAccessExpr:
		rootReg := state.alloc()
		state.compileExpr(t.Root, rootReg)
		keyIdx := state.constIndex(Str(t.Field.Name))
		valReg := state.alloc()
		if op != "=" {
			cur := state.alloc()
			state.currFunc.Bytecode.Write(FieldGet{Dest: cur, Container: rootReg, KeyConst: keyIdx}.Generate())
			rhs := state.alloc()
			state.compileExpr(value, rhs)
			state.emitCompoundOp(op, cur, rhs, valReg)
			state.free(rhs)
			state.free(cur)
		} else {
			state.compileExpr(value, valReg)
		}
		state.currFunc.Bytecode.Write(FieldSet{Container: rootReg, KeyConst: keyIdx, Value: valReg}.Generate())
		state.free(valReg)
		state.free(rootReg)
	default:
		panic(fmt.Sprintf("invalid assignment target %T", t))
	}
}

// emitCompoundOp writes the binary instruction corresponding to a compound
// assignment operator (`+=` -> Add, etc)
func (state *assembly) emitCompoundOp(op frontend.TokenSymbol, left, right, dest RegisterAddress) {
	switch op {
	case "+=":
		state.currFunc.Bytecode.Write(NewAdd(left, right, dest).Generate())
	case "-=":
		state.currFunc.Bytecode.Write(NewSub(left, right, dest).Generate())
	case "*=":
		state.currFunc.Bytecode.Write(NewMul(left, right, dest).Generate())
	case "/=":
		state.currFunc.Bytecode.Write(NewDiv(left, right, dest).Generate())
	case "%=":
		state.currFunc.Bytecode.Write(NewMod(left, right, dest).Generate())
	case "&=":
		state.currFunc.Bytecode.Write(NewBAnd(left, right, dest).Generate())
	case "|=":
		state.currFunc.Bytecode.Write(NewBOr(left, right, dest).Generate())
	case "^=":
		state.currFunc.Bytecode.Write(NewBXor(left, right, dest).Generate())
	case "<<=":
		state.currFunc.Bytecode.Write(NewShiftL(left, right, dest).Generate())
	case ">>=":
		state.currFunc.Bytecode.Write(NewShiftR(left, right, dest).Generate())
	default:
		panic(fmt.Sprintf("unknown compound operator %s", op))
	}
}

func (state *assembly) compileForeach(n *frontend.ForeachStmt) {
	containerReg := state.alloc()
	state.compileExpr(n.Subject, containerReg)

	iterReg := state.alloc()
	state.currFunc.Bytecode.Write(IterInit{IterState: iterReg, Container: containerReg}.Generate())

	var keyReg RegisterAddress
	if n.KeyName != nil {
		keyReg, _ = state.localRegister(n.KeyName.Name)
	} else {
		keyReg = state.alloc()
	}
	valReg, _ := state.localRegister(n.ValueName.Name)

	loopStart := state.addr()
	b := state.pushLoop()
	endPatch := state.emitIterNext(iterReg, keyReg, valReg)
	state.compileStmt(n.Body)
	state.patch(state.emitBrAlways(), loopStart)
	end := state.addr()
	state.patch(endPatch, end)
	for _, p := range b.breakPatches {
		state.patch(p, end)
	}
	for _, p := range b.continuePatches {
		state.patch(p, loopStart)
	}
	state.popBreakable()

	if n.KeyName == nil {
		state.free(keyReg)
	}
	state.free(iterReg)
	state.free(containerReg)
}

// compileSwitch lowers to: a chain of equality comparisons with forward
// jumps to each case body, an unconditional jump to default/end if none
// match, then the case bodies themselves in source order (so a case
// lacking `break` falls through into the next case's statements, matching
// the documented "no implicit break" semantics)
func (state *assembly) compileSwitch(n *frontend.SwitchStmt) {
	subjectReg := state.alloc()
	state.compileExpr(n.Subject, subjectReg)

	type pendingJump struct {
		patchAt  int
		caseIdx  int
	}
	var jumps []pendingJump
	defaultIdx := -1

	for i, c := range n.Cases {
		if c.Value == nil {
			defaultIdx = i
			continue
		}
		valReg := state.alloc()
		state.compileExpr(c.Value, valReg)
		eqReg := state.alloc()
		state.currFunc.Bytecode.Write(NewEq(subjectReg, valReg, eqReg).Generate())
		state.free(eqReg)
		state.free(valReg)
		jumps = append(jumps, pendingJump{patchAt: state.emitBrTrue(eqReg), caseIdx: i})
	}

	fallthroughPatch := state.emitBrAlways()

	b := state.pushSwitch()
	caseAddrs := make([]BytecodeAddress, len(n.Cases))
	for i, c := range n.Cases {
		caseAddrs[i] = state.addr()
		for _, s := range c.Statements {
			state.compileStmt(s)
		}
	}
	end := state.addr()
	state.popBreakable()

	for _, j := range jumps {
		state.patch(j.patchAt, caseAddrs[j.caseIdx])
	}
	if defaultIdx >= 0 {
		state.patch(fallthroughPatch, caseAddrs[defaultIdx])
	} else {
		state.patch(fallthroughPatch, end)
	}
	for _, p := range b.breakPatches {
		state.patch(p, end)
	}

	state.free(subjectReg)
}

// compileExpr lowers an expression, writing its result into `dest` and
// returning `dest`. A bare local identifier is copied into `dest` with a Move
// unless it already lives there
func (state *assembly) compileExpr(expr frontend.Expr, dest RegisterAddress) RegisterAddress {
	switch n := expr.(type) {
	case *frontend.IdentExpr:
		if idx, ok := state.upvalueIndex(n.Name); ok {
			state.currFunc.Bytecode.Write(LoadUpVal{Index: idx, Dest: dest}.Generate())
			return dest
		}
		if reg, ok := state.localRegister(n.Name); ok {
			if reg != dest {
				state.currFunc.Bytecode.Write(Move{Source: reg, Dest: dest}.Generate())
			}
			return dest
		}
		panic(fmt.Sprintf("unresolved identifier %s", n.Name))
	case *frontend.NullLiteral:
		state.currFunc.Bytecode.Write(LoadNull{Dest: dest}.Generate())
		return dest
	case *frontend.BoolLiteral:
		state.currFunc.Bytecode.Write(LoadBool{Value: n.Value, Dest: dest}.Generate())
		return dest
	case *frontend.IntLiteral:
		idx := state.constIndex(Int(n.Value))
		state.currFunc.Bytecode.Write(LoadConst{ConstantIndex: idx, Dest: dest}.Generate())
		return dest
	case *frontend.FloatLiteral:
		idx := state.constIndex(Float(n.Value))
		state.currFunc.Bytecode.Write(LoadConst{ConstantIndex: idx, Dest: dest}.Generate())
		return dest
	case *frontend.StrLiteral:
		idx := state.constIndex(Str(n.Value))
		state.currFunc.Bytecode.Write(LoadConst{ConstantIndex: idx, Dest: dest}.Generate())
		return dest
	case *frontend.ArrayLiteral:
		state.currFunc.Bytecode.Write(NewArrayOp{Dest: dest}.Generate())

		// nextIdx tracks the index a bare (non-explicit) item lands at; an
		// explicit `[index] = expr` item only advances it when its index
		// reaches past the current high-water mark, matching the documented
		// `[] {0, 1, null, 3, [2] = 2, [4] = 4}` -> `{0,1,2,3,4}` example
		nextIdxReg := state.alloc()
		zeroConst := state.constIndex(Int(0))
		state.currFunc.Bytecode.Write(LoadConst{ConstantIndex: zeroConst, Dest: nextIdxReg}.Generate())
		oneConst := state.constIndex(Int(1))

		for _, item := range n.Items {
			valReg := state.alloc()
			state.compileExpr(item.Value, valReg)

			if item.Index == nil {
				state.currFunc.Bytecode.Write(IdxSet{Container: dest, Key: nextIdxReg, Value: valReg}.Generate())
				oneReg := state.alloc()
				state.currFunc.Bytecode.Write(LoadConst{ConstantIndex: oneConst, Dest: oneReg}.Generate())
				state.currFunc.Bytecode.Write(NewAdd(nextIdxReg, oneReg, nextIdxReg).Generate())
				state.free(oneReg)
				state.free(valReg)
				continue
			}

			idxReg := state.alloc()
			state.compileExpr(item.Index, idxReg)
			state.currFunc.Bytecode.Write(IdxSet{Container: dest, Key: idxReg, Value: valReg}.Generate())

			oneReg := state.alloc()
			state.currFunc.Bytecode.Write(LoadConst{ConstantIndex: oneConst, Dest: oneReg}.Generate())
			candReg := state.alloc()
			state.currFunc.Bytecode.Write(NewAdd(idxReg, oneReg, candReg).Generate())
			cmpReg := state.alloc()
			state.currFunc.Bytecode.Write(NewGT(candReg, nextIdxReg, cmpReg).Generate())
			skipPatch := state.emitBrFalse(cmpReg)
			state.currFunc.Bytecode.Write(Move{Source: candReg, Dest: nextIdxReg}.Generate())
			state.patch(skipPatch, state.addr())

			state.free(cmpReg)
			state.free(candReg)
			state.free(oneReg)
			state.free(idxReg)
			state.free(valReg)
		}
		state.free(nextIdxReg)
		return dest
	case *frontend.StructLiteral:
		state.currFunc.Bytecode.Write(NewStructOp{Dest: dest}.Generate())
		for _, item := range n.Items {
			keyReg := state.alloc()
			state.compileExpr(item.Key, keyReg)
			valReg := state.alloc()
			state.compileExpr(item.Value, valReg)
			state.currFunc.Bytecode.Write(IdxSet{Container: dest, Key: keyReg, Value: valReg}.Generate())
			state.free(valReg)
			state.free(keyReg)
		}
		return dest
	case *frontend.ClosureLiteral:
		protoIndex := state.compileClosure(n)
		state.currFunc.Bytecode.Write(CloseFn{ProtoIndex: protoIndex, Dest: dest}.Generate())
		return dest
	case *frontend.UnaryExpr:
		operandReg := state.alloc()
		state.compileExpr(n.Operand, operandReg)
		state.free(operandReg)
		switch n.Operator.Symbol {
		case "-":
			state.currFunc.Bytecode.Write(Neg{Operand: operandReg, Dest: dest}.Generate())
		case "!":
			state.currFunc.Bytecode.Write(Not{Operand: operandReg, Dest: dest}.Generate())
		case "~":
			state.currFunc.Bytecode.Write(BNot{Operand: operandReg, Dest: dest}.Generate())
		case "++", "--":
			// Prefix increment/decrement: desugars to a compound assignment
			// against the operand, then yields the new value
			op := frontend.TokenSymbol("+=")
			if n.Operator.Symbol == "--" {
				op = "-="
			}
			one := &frontend.IntLiteral{Value: 1}
			state.compileAssignment(n.Operand, op, one)
			return state.compileExpr(n.Operand, dest)
		default:
			panic(fmt.Sprintf("unknown unary operator %s", n.Operator.Symbol))
		}
		return dest
	case *frontend.PostfixExpr:
		// Evaluate the old value first, then apply the compound update
		oldReg := state.compileExpr(n.Operand, dest)
		if oldReg != dest {
			state.currFunc.Bytecode.Write(Move{Source: oldReg, Dest: dest}.Generate())
		}
		op := frontend.TokenSymbol("+=")
		if n.Operator.Symbol == "--" {
			op = "-="
		}
		one := &frontend.IntLiteral{Value: 1}
		state.compileAssignment(n.Operand, op, one)
		return dest
	case *frontend.BinaryExpr:
		return state.compileBinary(n, dest)
	case *frontend.TernaryExpr:
		condReg := state.alloc()
		state.compileExpr(n.Condition, condReg)
		state.free(condReg)
		elsePatch := state.emitBrFalse(condReg)
		state.compileExpr(n.Then, dest)
		endPatch := state.emitBrAlways()
		state.patch(elsePatch, state.addr())
		state.compileExpr(n.Else, dest)
		state.patch(endPatch, state.addr())
		return dest
	case *frontend.AssignExpr:
		state.compileAssignment(n.Target, n.Operator, n.Value)
		return state.compileExpr(n.Target, dest)
	case *frontend.CallExpr:
		return state.compileCall(n, dest)
	case *frontend.IndexAccessExpr:
		rootReg := state.alloc()
		state.compileExpr(n.Root, rootReg)
		idxReg := state.alloc()
		state.compileExpr(n.Index, idxReg)
		state.currFunc.Bytecode.Write(IdxGet{Dest: dest, Container: rootReg, Key: idxReg}.Generate())
		state.free(idxReg)
		state.free(rootReg)
		return dest
	case *frontend.FieldAccessExpr:
		rootReg := state.alloc()
		state.compileExpr(n.Root, rootReg)
		keyIdx := state.constIndex(Str(n.Field.Name))
		state.currFunc.Bytecode.Write(FieldGet{Dest: dest, Container: rootReg, KeyConst: keyIdx}.Generate())
		state.free(rootReg)
		return dest
	case *frontend.CastExpr:
		operandReg := state.alloc()
		state.compileExpr(n.Operand, operandReg)
		state.free(operandReg)
		switch n.TypeName.Lexeme {
		case "int":
			state.currFunc.Bytecode.Write(CastInt{Operand: operandReg, Dest: dest}.Generate())
		case "float":
			state.currFunc.Bytecode.Write(CastFloat{Operand: operandReg, Dest: dest}.Generate())
		case "str":
			state.currFunc.Bytecode.Write(CastStr{Operand: operandReg, Dest: dest}.Generate())
		case "bool":
			state.currFunc.Bytecode.Write(CastBool{Operand: operandReg, Dest: dest}.Generate())
		default:
			panic(fmt.Sprintf("unknown cast type %s", n.TypeName.Lexeme))
		}
		return dest
	case *frontend.TypeofExpr:
		operandReg := state.alloc()
		state.compileExpr(n.Operand, operandReg)
		state.free(operandReg)
		state.currFunc.Bytecode.Write(TypeofOp{Dest: dest, Operand: operandReg}.Generate())
		return dest
	case *frontend.SizeofExpr:
		operandReg := state.alloc()
		state.compileExpr(n.Operand, operandReg)
		state.free(operandReg)
		state.currFunc.Bytecode.Write(Len{Dest: dest, Container: operandReg}.Generate())
		return dest
	case *frontend.RequireExpr:
		pathReg := state.alloc()
		idx := state.constIndex(Str(n.Path.Value))
		state.currFunc.Bytecode.Write(LoadConst{ConstantIndex: idx, Dest: pathReg}.Generate())

		firstArg := state.stackPtr
		for _, arg := range n.Arguments {
			argReg := state.alloc()
			state.compileExpr(arg, argReg)
		}

		state.currFunc.Bytecode.Write(Require{Path: pathReg, FirstArg: firstArg, ArgCount: int32(len(n.Arguments)), Dest: dest}.Generate())

		for range n.Arguments {
			state.stackPtr--
		}
		state.free(pathReg)
		return dest
	case *frontend.GroupExpr:
		return state.compileExpr(n.Inner, dest)
	default:
		panic(fmt.Sprintf("unknown expression node %T", n))
	}
}

func (state *assembly) compileBinary(n *frontend.BinaryExpr, dest RegisterAddress) RegisterAddress {
	// Short-circuit operators must not evaluate their right operand
	// unconditionally
	if n.Operator == "&&" || n.Operator == "||" {
		leftReg := state.alloc()
		state.compileExpr(n.Left, leftReg)
		state.free(leftReg)

		var skipPatch int
		if n.Operator == "&&" {
			skipPatch = state.emitBrFalse(leftReg)
		} else {
			skipPatch = state.emitBrTrue(leftReg)
		}
		rightReg := state.alloc()
		state.compileExpr(n.Right, rightReg)
		state.free(rightReg)
		state.currFunc.Bytecode.Write(ToBool{Operand: rightReg, Dest: dest}.Generate())
		endPatch := state.emitBrAlways()
		state.patch(skipPatch, state.addr())
		state.currFunc.Bytecode.Write(LoadBool{Value: n.Operator == "||", Dest: dest}.Generate())
		state.patch(endPatch, state.addr())
		return dest
	}

	leftReg := state.alloc()
	state.compileExpr(n.Left, leftReg)
	rightReg := state.alloc()
	state.compileExpr(n.Right, rightReg)
	state.free(rightReg)
	state.free(leftReg)

	switch n.Operator {
	case "+":
		state.currFunc.Bytecode.Write(NewAdd(leftReg, rightReg, dest).Generate())
	case "-":
		state.currFunc.Bytecode.Write(NewSub(leftReg, rightReg, dest).Generate())
	case "*":
		state.currFunc.Bytecode.Write(NewMul(leftReg, rightReg, dest).Generate())
	case "/":
		state.currFunc.Bytecode.Write(NewDiv(leftReg, rightReg, dest).Generate())
	case "%":
		state.currFunc.Bytecode.Write(NewMod(leftReg, rightReg, dest).Generate())
	case "<":
		state.currFunc.Bytecode.Write(NewLT(leftReg, rightReg, dest).Generate())
	case "<=":
		state.currFunc.Bytecode.Write(NewLTEq(leftReg, rightReg, dest).Generate())
	case ">":
		state.currFunc.Bytecode.Write(NewGT(leftReg, rightReg, dest).Generate())
	case ">=":
		state.currFunc.Bytecode.Write(NewGTEq(leftReg, rightReg, dest).Generate())
	case "==":
		state.currFunc.Bytecode.Write(NewEq(leftReg, rightReg, dest).Generate())
	case "!=":
		state.currFunc.Bytecode.Write(NewNEq(leftReg, rightReg, dest).Generate())
	case "&":
		state.currFunc.Bytecode.Write(NewBAnd(leftReg, rightReg, dest).Generate())
	case "|":
		state.currFunc.Bytecode.Write(NewBOr(leftReg, rightReg, dest).Generate())
	case "^":
		state.currFunc.Bytecode.Write(NewBXor(leftReg, rightReg, dest).Generate())
	case "<<":
		state.currFunc.Bytecode.Write(NewShiftL(leftReg, rightReg, dest).Generate())
	case ">>":
		state.currFunc.Bytecode.Write(NewShiftR(leftReg, rightReg, dest).Generate())
	default:
		panic(fmt.Sprintf("unknown binary operator %s", n.Operator))
	}
	return dest
}

// builtinCallees are identifiers that compile to a dedicated opcode rather
// than an ordinary `Call`, since they have no runtime closure value
var builtinCallees = map[string]bool{
	"trace": true,
}

// compileCall lowers a call expression: arguments are compiled into
// contiguous registers starting at the stack pointer, then a Call
// instruction transfers control
func (state *assembly) compileCall(n *frontend.CallExpr, dest RegisterAddress) RegisterAddress {
	if id, ok := n.Callee.(*frontend.IdentExpr); ok && builtinCallees[id.Name] {
		return state.compileBuiltinCall(id.Name, n.Arguments, dest)
	}

	calleeReg := state.alloc()
	state.compileExpr(n.Callee, calleeReg)

	firstArg := state.stackPtr
	for _, arg := range n.Arguments {
		argReg := state.alloc()
		state.compileExpr(arg, argReg)
	}

	state.currFunc.Bytecode.Write(Call{
		Callee:   calleeReg,
		FirstArg: firstArg,
		ArgCount: int32(len(n.Arguments)),
		Dest:     dest,
	}.Generate())

	for range n.Arguments {
		state.stackPtr--
	}
	state.free(calleeReg)

	return dest
}

// compileBuiltinCall lowers a call to a name in builtinCallees: arguments
// are compiled into contiguous registers exactly like an ordinary call, but
// the dedicated opcode is emitted directly instead of `Call`, since there's
// no closure value to resolve or invoke
func (state *assembly) compileBuiltinCall(name string, arguments []frontend.Expr, dest RegisterAddress) RegisterAddress {
	firstArg := state.stackPtr
	for _, arg := range arguments {
		argReg := state.alloc()
		state.compileExpr(arg, argReg)
	}

	switch name {
	case "trace":
		state.currFunc.Bytecode.Write(Trace{FirstArg: firstArg, ArgCount: int32(len(arguments))}.Generate())
	default:
		panic(fmt.Sprintf("unknown builtin callee %s", name))
	}

	for range arguments {
		state.stackPtr--
	}

	// trace has no return value; calls in expression position see null
	state.currFunc.Bytecode.Write(LoadNull{Dest: dest}.Generate())
	return dest
}
