package frontend

import (
	"github.com/oyc-lang/oyc/source"
)

// Scope represents the variable environment available at a point in a
// program's AST. All scopes (except the global/script scope) have a parent
// scope for non-local symbol lookup. Unlike the teacher's Scope, there is no
// typeTable: this language resolves names only, with no static type
// checking
type Scope struct {
	File                *source.File
	Parent              *Scope
	variables           map[string]bool
	upvalues            map[string]*UpvalueRecord
	registeredVariables []string
	registeredUpvalues  []string
}

// UpvalueRecord describes one free variable captured by a closure: either a
// local slot in the immediately enclosing function's register window, or
// (transitively) an upvalue of that enclosing function
type UpvalueRecord struct {
	Name          string
	LocalToParent bool
	LookupIndex   int
}

// LocalRecord describes one name bound to a register slot within a
// function's own window
type LocalRecord struct {
	Name        string
	IsParameter bool
	LookupIndex int
}

func (s *Scope) registerLocalVariable(name string) {
	s.registeredVariables = append(s.registeredVariables, name)
	s.variables[name] = true
}

// registerUpvalue records that the current scope's function needs to close
// over `name`, chaining the lookup up through enclosing scopes until it
// finds either a local slot or another upvalue to attach to
func (s *Scope) registerUpvalue(name string) (upvalueOffset int) {
	s.upvalues[name] = &UpvalueRecord{Name: name}
	upvalueOffset = len(s.registeredUpvalues)
	s.registeredUpvalues = append(s.registeredUpvalues, name)

	if s.Parent == nil {
		panic("cannot use upvalue in script scope")
	}

	if s.Parent.lookupLocalVariable(name) {
		s.upvalues[name].LocalToParent = true

		for i, varName := range s.Parent.registeredVariables {
			if varName == name {
				s.upvalues[name].LookupIndex = i
				break
			}
		}
	} else {
		s.upvalues[name].LocalToParent = false
		s.upvalues[name].LookupIndex = s.Parent.registerUpvalue(name)
	}

	return upvalueOffset
}

func (s *Scope) lookupLocalVariable(name string) bool {
	return s.variables[name]
}

// lookupVariable searches this scope and its ancestors for `name`, reporting
// whether it was found and whether the found binding is local to this exact
// scope
func (s *Scope) lookupVariable(name string) (found bool, isLocal bool) {
	if s.variables[name] {
		return true, true
	}

	if s.Parent != nil {
		found, _ = s.Parent.lookupVariable(name)
		return found, false
	}

	return false, false
}

// newScriptScope builds the scope for a script's top level. A script is
// treated as an anonymous function taking one parameter, `argv`, so that
// name is registered as local #0 before any user declaration runs
func newScriptScope(file *source.File) *Scope {
	s := &Scope{
		File:      file,
		variables: make(map[string]bool),
		upvalues:  make(map[string]*UpvalueRecord),
	}
	s.registerLocalVariable("argv")
	return s
}

func (s *Scope) subScope() *Scope {
	return &Scope{
		Parent:    s,
		File:      s.File,
		variables: make(map[string]bool),
		upvalues:  make(map[string]*UpvalueRecord),
	}
}
