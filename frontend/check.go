package frontend

import (
	"fmt"

	"github.com/oyc-lang/oyc/feedback"
	"github.com/oyc-lang/oyc/source"
)

// resolveContext tracks the loop/switch nesting needed to validate `break`
// and `continue`. Each ClosureLiteral starts a fresh context since control
// flow never crosses a function boundary
type resolveContext struct {
	loopDepth   int
	switchDepth int
}

// builtins names resolve as call targets without a declaration, the way
// `typeof`/`sizeof`/`require` would if they weren't already keywords.
// `trace` is the one builtin that's an ordinary identifier in the grammar
var builtins = map[string]bool{
	"trace": true,
}

// Resolve walks a ProgramNode, binding every identifier to either a script
// local or an undeclared-name error, and validates `break`/`continue`
// placement. It replaces the teacher's Hindley-Milner type checker: this
// language has no static types, so the only thing left to resolve is scope
func Resolve(file *source.File, prog *ProgramNode) (msgs []feedback.Message) {
	scope := newScriptScope(file)
	ctx := &resolveContext{}

	for _, stmt := range prog.Statements {
		msgs = append(msgs, resolveStmt(scope, ctx, stmt)...)
	}

	for i, name := range scope.registeredVariables {
		prog.Locals = append(prog.Locals, &LocalRecord{Name: name, IsParameter: name == "argv" && i == 0, LookupIndex: i})
	}

	for _, record := range scope.upvalues {
		prog.Upvalues = append(prog.Upvalues, record)
	}

	return msgs
}

func resolveStmt(scope *Scope, ctx *resolveContext, stmt Stmt) (msgs []feedback.Message) {
	switch s := stmt.(type) {
	case *DeclarationStmt:
		msgs = append(msgs, resolveExpr(scope, ctx, s.Assignment)...)

		if scope.lookupLocalVariable(s.Assignee.Name) {
			msgs = append(msgs, feedback.Error{
				Classification: feedback.SemanticError,
				File:           scope.File,
				What: feedback.Selection{
					Description: fmt.Sprintf("variable `%s` has already been declared in this scope", s.Assignee.Name),
					Span:        source.Span{Start: s.Assignee.Pos(), End: s.Assignee.End()},
				},
			})
		} else {
			scope.registerLocalVariable(s.Assignee.Name)
		}
	case *AssignmentStmt:
		msgs = append(msgs, resolveLvalue(scope, ctx, s.Target)...)
		msgs = append(msgs, resolveExpr(scope, ctx, s.Value)...)
	case *ExprStmt:
		msgs = append(msgs, resolveExpr(scope, ctx, s.Argument)...)
	case *BlockStmt:
		sub := scope.subScope()
		for _, inner := range s.Statements {
			msgs = append(msgs, resolveStmt(sub, ctx, inner)...)
		}
		bubbleUpUpvalues(scope, sub)
	case *IfStmt:
		msgs = append(msgs, resolveExpr(scope, ctx, s.Condition)...)
		msgs = append(msgs, resolveStmt(scope, ctx, s.Then)...)
		if s.Else != nil {
			msgs = append(msgs, resolveStmt(scope, ctx, s.Else)...)
		}
	case *WhileStmt:
		msgs = append(msgs, resolveExpr(scope, ctx, s.Condition)...)
		ctx.loopDepth++
		msgs = append(msgs, resolveStmt(scope, ctx, s.Body)...)
		ctx.loopDepth--
	case *DoWhileStmt:
		ctx.loopDepth++
		msgs = append(msgs, resolveStmt(scope, ctx, s.Body)...)
		ctx.loopDepth--
		msgs = append(msgs, resolveExpr(scope, ctx, s.Condition)...)
	case *ForStmt:
		sub := scope.subScope()

		if s.Init != nil {
			msgs = append(msgs, resolveStmt(sub, ctx, s.Init)...)
		}
		if s.Condition != nil {
			msgs = append(msgs, resolveExpr(sub, ctx, s.Condition)...)
		}
		if s.Post != nil {
			msgs = append(msgs, resolveStmt(sub, ctx, s.Post)...)
		}

		ctx.loopDepth++
		msgs = append(msgs, resolveStmt(sub, ctx, s.Body)...)
		ctx.loopDepth--
		bubbleUpUpvalues(scope, sub)
	case *ForeachStmt:
		msgs = append(msgs, resolveExpr(scope, ctx, s.Subject)...)

		sub := scope.subScope()
		if s.KeyName != nil {
			sub.registerLocalVariable(s.KeyName.Name)
		}
		sub.registerLocalVariable(s.ValueName.Name)

		ctx.loopDepth++
		msgs = append(msgs, resolveStmt(sub, ctx, s.Body)...)
		ctx.loopDepth--
		bubbleUpUpvalues(scope, sub)
	case *SwitchStmt:
		msgs = append(msgs, resolveExpr(scope, ctx, s.Subject)...)

		sub := scope.subScope()
		ctx.switchDepth++
		for _, c := range s.Cases {
			if c.Value != nil {
				msgs = append(msgs, resolveExpr(sub, ctx, c.Value)...)
			}
			for _, inner := range c.Statements {
				msgs = append(msgs, resolveStmt(sub, ctx, inner)...)
			}
		}
		ctx.switchDepth--
		bubbleUpUpvalues(scope, sub)
	case *BreakStmt:
		if ctx.loopDepth == 0 && ctx.switchDepth == 0 {
			msgs = append(msgs, feedback.Error{
				Classification: feedback.SemanticError,
				File:           scope.File,
				What: feedback.Selection{
					Description: "`break` outside of a loop or switch",
					Span:        source.Span{Start: s.Pos(), End: s.End()},
				},
			})
		}
	case *ContinueStmt:
		if ctx.loopDepth == 0 {
			msgs = append(msgs, feedback.Error{
				Classification: feedback.SemanticError,
				File:           scope.File,
				What: feedback.Selection{
					Description: "`continue` outside of a loop",
					Span:        source.Span{Start: s.Pos(), End: s.End()},
				},
			})
		}
	case *ReturnStmt:
		if s.Argument != nil {
			msgs = append(msgs, resolveExpr(scope, ctx, s.Argument)...)
		}
	case *DeleteStmt:
		msgs = append(msgs, resolveLvalue(scope, ctx, s.Target)...)
	default:
		msgs = append(msgs, resolveExpr(scope, ctx, stmt.(Expr))...)
	}

	return msgs
}

// resolveLvalue resolves the sub-expressions of an assignment/delete target.
// A bare IdentExpr target that hasn't been declared yet is reported as an
// error rather than implicitly declared, matching this language's explicit
// `auto` declaration requirement
func resolveLvalue(scope *Scope, ctx *resolveContext, target Expr) (msgs []feedback.Message) {
	switch t := target.(type) {
	case *IdentExpr:
		found, isLocal := scope.lookupVariable(t.Name)

		if !found {
			msgs = append(msgs, feedback.Error{
				Classification: feedback.SemanticError,
				File:           scope.File,
				What: feedback.Selection{
					Description: fmt.Sprintf("variable `%s` cannot be assigned before it has been declared", t.Name),
					Span:        source.Span{Start: t.Pos(), End: t.End()},
				},
			})
		} else if !isLocal {
			scope.registerUpvalue(t.Name)
		}
	case *IndexAccessExpr:
		msgs = append(msgs, resolveExpr(scope, ctx, t.Root)...)
		msgs = append(msgs, resolveExpr(scope, ctx, t.Index)...)
	case *FieldAccessExpr:
		msgs = append(msgs, resolveExpr(scope, ctx, t.Root)...)
	default:
		msgs = append(msgs, feedback.Error{
			Classification: feedback.SemanticError,
			File:           scope.File,
			What: feedback.Selection{
				Description: "invalid assignment target",
				Span:        source.Span{Start: target.Pos(), End: target.End()},
			},
		})
	}

	return msgs
}

func resolveExpr(scope *Scope, ctx *resolveContext, expr Expr) (msgs []feedback.Message) {
	switch e := expr.(type) {
	case *IdentExpr:
		found, isLocal := scope.lookupVariable(e.Name)

		if !found {
			msgs = append(msgs, feedback.Error{
				Classification: feedback.SemanticError,
				File:           scope.File,
				What: feedback.Selection{
					Description: fmt.Sprintf("variable `%s` is undeclared", e.Name),
					Span:        source.Span{Start: e.Pos(), End: e.End()},
				},
			})
		} else if !isLocal {
			scope.registerUpvalue(e.Name)
		}
	case *NullLiteral, *BoolLiteral, *IntLiteral, *FloatLiteral, *StrLiteral:
		// literals reference nothing
	case *ArrayLiteral:
		for _, item := range e.Items {
			if item.Index != nil {
				msgs = append(msgs, resolveExpr(scope, ctx, item.Index)...)
			}
			msgs = append(msgs, resolveExpr(scope, ctx, item.Value)...)
		}
	case *StructLiteral:
		for _, item := range e.Items {
			msgs = append(msgs, resolveExpr(scope, ctx, item.Key)...)
			msgs = append(msgs, resolveExpr(scope, ctx, item.Value)...)
		}
	case *ClosureLiteral:
		sub := scope.subScope()
		subCtx := &resolveContext{}
		paramNames := make(map[string]bool)

		for _, param := range e.Parameters {
			paramNames[param.Name.Name] = true
			sub.registerLocalVariable(param.Name.Name)
		}

		for _, inner := range e.Body.Statements {
			msgs = append(msgs, resolveStmt(sub, subCtx, inner)...)
		}

		for i, name := range sub.registeredVariables {
			e.Locals = append(e.Locals, &LocalRecord{
				Name:        name,
				IsParameter: paramNames[name],
				LookupIndex: i,
			})
		}

		for _, record := range sub.upvalues {
			e.Upvalues = append(e.Upvalues, record)
		}
	case *UnaryExpr:
		msgs = append(msgs, resolveExpr(scope, ctx, e.Operand)...)
		if e.Operator.Symbol == "++" || e.Operator.Symbol == "--" {
			msgs = append(msgs, resolveLvalue(scope, ctx, e.Operand)...)
		}
	case *PostfixExpr:
		msgs = append(msgs, resolveLvalue(scope, ctx, e.Operand)...)
	case *BinaryExpr:
		msgs = append(msgs, resolveExpr(scope, ctx, e.Left)...)
		msgs = append(msgs, resolveExpr(scope, ctx, e.Right)...)
	case *TernaryExpr:
		msgs = append(msgs, resolveExpr(scope, ctx, e.Condition)...)
		msgs = append(msgs, resolveExpr(scope, ctx, e.Then)...)
		msgs = append(msgs, resolveExpr(scope, ctx, e.Else)...)
	case *AssignExpr:
		msgs = append(msgs, resolveLvalue(scope, ctx, e.Target)...)
		msgs = append(msgs, resolveExpr(scope, ctx, e.Value)...)
	case *CallExpr:
		if id, ok := e.Callee.(*IdentExpr); !ok || !builtins[id.Name] {
			msgs = append(msgs, resolveExpr(scope, ctx, e.Callee)...)
		}
		for _, arg := range e.Arguments {
			msgs = append(msgs, resolveExpr(scope, ctx, arg)...)
		}
	case *IndexAccessExpr:
		msgs = append(msgs, resolveExpr(scope, ctx, e.Root)...)
		msgs = append(msgs, resolveExpr(scope, ctx, e.Index)...)
	case *FieldAccessExpr:
		msgs = append(msgs, resolveExpr(scope, ctx, e.Root)...)
	case *CastExpr:
		msgs = append(msgs, resolveExpr(scope, ctx, e.Operand)...)
	case *TypeofExpr:
		msgs = append(msgs, resolveExpr(scope, ctx, e.Operand)...)
	case *SizeofExpr:
		msgs = append(msgs, resolveExpr(scope, ctx, e.Operand)...)
	case *RequireExpr:
		for _, arg := range e.Arguments {
			msgs = append(msgs, resolveExpr(scope, ctx, arg)...)
		}
	case *GroupExpr:
		msgs = append(msgs, resolveExpr(scope, ctx, e.Inner)...)
	default:
		msgs = append(msgs, feedback.Error{
			Classification: feedback.SemanticError,
			File:           scope.File,
			What: feedback.Selection{
				Description: fmt.Sprintf("unrecognized expression node %T", e),
				Span:        source.Span{Start: expr.Pos(), End: expr.End()},
			},
		})
	}

	return msgs
}

// bubbleUpUpvalues propagates any upvalue captured by a block-local sub
// scope up to the enclosing function scope. Block scopes (if/while/for
// bodies etc.) don't carry their own register windows, so any name a nested
// closure captured from one must also be visible as an upvalue candidate one
// level further out
func bubbleUpUpvalues(parent, sub *Scope) {
	for name := range sub.upvalues {
		if parent.lookupLocalVariable(name) {
			continue
		}
		if _, ok := parent.upvalues[name]; ok {
			continue
		}
		if parent.Parent != nil {
			found, isLocal := parent.lookupVariable(name)
			if found && !isLocal {
				parent.registerUpvalue(name)
			}
		}
	}
}
