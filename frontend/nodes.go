package frontend

import (
	"github.com/oyc-lang/oyc/source"
)

// Node is a generic node in the abstract syntax tree (AST)
type Node interface {
	Pos() source.Pos
	End() source.Pos
}

/**
 * ROOT PROGRAM NODE
 */

// ProgramNode is the root node for an AST, representing the top level of a
// script. It is compiled as if it were the body of an implicit closure whose
// sole parameter is `argv`, so it carries the same Locals/Upvalues
// bookkeeping that a ClosureLiteral's body does
type ProgramNode struct {
	Statements []Stmt

	// populated during semantic resolution
	Locals   []*LocalRecord
	Upvalues []*UpvalueRecord
}

// Pos returns the starting source code position of this node
func (p ProgramNode) Pos() source.Pos {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}

	return source.Pos{Line: 1, Col: 1}
}

// End returns the terminal source code position of this node
func (p ProgramNode) End() source.Pos {
	if len(p.Statements) > 0 {
		return p.Statements[len(p.Statements)-1].End()
	}

	return source.Pos{Line: 1, Col: 1}
}

/**
 * STATEMENT NODES
 */

// Stmt represents a Node that produces no value of its own
type Stmt interface {
	Node
	stmtNode()
}

// DeclarationStmt represents `auto name = expr;`
type DeclarationStmt struct {
	AutoKeyword Token
	Assignee    *IdentExpr
	Assignment  Expr
	Semi        Token
}

func (d *DeclarationStmt) Pos() source.Pos { return d.AutoKeyword.Span.Start }
func (d *DeclarationStmt) End() source.Pos { return d.Semi.Span.End }
func (*DeclarationStmt) stmtNode()         {}

// AssignmentStmt represents `lvalue op= expr;` for `=`, `+=`, `-=`, `*=`,
// `/=`, `%=`, `&=`, `|=`, `^=`, `<<=`, `>>=`
type AssignmentStmt struct {
	Target   Expr
	Operator TokenSymbol
	Value    Expr
	Semi     Token
}

func (a *AssignmentStmt) Pos() source.Pos { return a.Target.Pos() }
func (a *AssignmentStmt) End() source.Pos { return a.Semi.Span.End }
func (*AssignmentStmt) stmtNode()         {}

// ExprStmt wraps a bare expression used as a statement (calls, ++/--)
type ExprStmt struct {
	Argument Expr
	Semi     Token
}

func (e *ExprStmt) Pos() source.Pos { return e.Argument.Pos() }
func (e *ExprStmt) End() source.Pos { return e.Semi.Span.End }
func (*ExprStmt) stmtNode()         {}

// BlockStmt represents a brace-delimited sequence of statements introducing
// its own lexical scope
type BlockStmt struct {
	LeftBrace  Token
	Statements []Stmt
	RightBrace Token
}

func (b *BlockStmt) Pos() source.Pos { return b.LeftBrace.Span.Start }
func (b *BlockStmt) End() source.Pos { return b.RightBrace.Span.End }
func (*BlockStmt) stmtNode()         {}

// IfStmt represents `if (cond) then [else else]`
type IfStmt struct {
	IfKeyword Token
	Condition Expr
	Then      Stmt
	Else      Stmt // nil, *IfStmt (else if), or *BlockStmt
}

func (i *IfStmt) Pos() source.Pos { return i.IfKeyword.Span.Start }
func (i *IfStmt) End() source.Pos {
	if i.Else != nil {
		return i.Else.End()
	}
	return i.Then.End()
}
func (*IfStmt) stmtNode() {}

// WhileStmt represents `while (cond) body`
type WhileStmt struct {
	WhileKeyword Token
	Condition    Expr
	Body         Stmt
}

func (w *WhileStmt) Pos() source.Pos { return w.WhileKeyword.Span.Start }
func (w *WhileStmt) End() source.Pos { return w.Body.End() }
func (*WhileStmt) stmtNode()         {}

// DoWhileStmt represents `do body while (cond);`
type DoWhileStmt struct {
	DoKeyword Token
	Body      Stmt
	Condition Expr
	Semi      Token
}

func (d *DoWhileStmt) Pos() source.Pos { return d.DoKeyword.Span.Start }
func (d *DoWhileStmt) End() source.Pos { return d.Semi.Span.End }
func (*DoWhileStmt) stmtNode()         {}

// ForStmt represents `for (init; cond; post) body`. Any of Init, Condition,
// Post may be nil
type ForStmt struct {
	ForKeyword Token
	Init       Stmt // *DeclarationStmt, *AssignmentStmt, or *ExprStmt
	Condition  Expr
	Post       Stmt // *AssignmentStmt or *ExprStmt, without trailing semicolon
	Body       Stmt
}

func (f *ForStmt) Pos() source.Pos { return f.ForKeyword.Span.Start }
func (f *ForStmt) End() source.Pos { return f.Body.End() }
func (*ForStmt) stmtNode()         {}

// ForeachStmt represents `foreach (auto k, v : subject) body` or the
// single-binding form `foreach (auto v : subject) body`
type ForeachStmt struct {
	ForeachKeyword Token
	KeyName        *IdentExpr // nil when only one binding is given
	ValueName      *IdentExpr
	Subject        Expr
	Body           Stmt
}

func (f *ForeachStmt) Pos() source.Pos { return f.ForeachKeyword.Span.Start }
func (f *ForeachStmt) End() source.Pos { return f.Body.End() }
func (*ForeachStmt) stmtNode()         {}

// SwitchStmt represents a `switch` with fallthrough semantics: execution
// continues into the next case unless a `break` statement appears
type SwitchStmt struct {
	SwitchKeyword Token
	Subject       Expr
	Cases         []*SwitchCase
	RightBrace    Token
}

func (s *SwitchStmt) Pos() source.Pos { return s.SwitchKeyword.Span.Start }
func (s *SwitchStmt) End() source.Pos { return s.RightBrace.Span.End }
func (*SwitchStmt) stmtNode()         {}

// SwitchCase represents one `case expr:` or `default:` arm and the
// statements that follow it up to the next case/default/closing brace
type SwitchCase struct {
	CaseKeyword Token
	Value       Expr // nil for `default`
	Statements  []Stmt
}

func (c *SwitchCase) Pos() source.Pos { return c.CaseKeyword.Span.Start }
func (c *SwitchCase) End() source.Pos {
	if len(c.Statements) > 0 {
		return c.Statements[len(c.Statements)-1].End()
	}
	return c.CaseKeyword.Span.End
}

// BreakStmt represents `break;`
type BreakStmt struct {
	BreakKeyword Token
	Semi         Token
}

func (b *BreakStmt) Pos() source.Pos { return b.BreakKeyword.Span.Start }
func (b *BreakStmt) End() source.Pos { return b.Semi.Span.End }
func (*BreakStmt) stmtNode()         {}

// ContinueStmt represents `continue;`
type ContinueStmt struct {
	ContinueKeyword Token
	Semi            Token
}

func (c *ContinueStmt) Pos() source.Pos { return c.ContinueKeyword.Span.Start }
func (c *ContinueStmt) End() source.Pos { return c.Semi.Span.End }
func (*ContinueStmt) stmtNode()         {}

// ReturnStmt represents `return [expr];`
type ReturnStmt struct {
	ReturnKeyword Token
	Argument      Expr // nil for a bare `return;`
	Semi          Token
}

func (r *ReturnStmt) Pos() source.Pos { return r.ReturnKeyword.Span.Start }
func (r *ReturnStmt) End() source.Pos { return r.Semi.Span.End }
func (*ReturnStmt) stmtNode()         {}

// DeleteStmt represents `delete subject;`, where subject is either an
// IndexAccessExpr (array truncation or struct key removal) or a FieldAccessExpr
type DeleteStmt struct {
	DeleteKeyword Token
	Target        Expr
	Semi          Token
}

func (d *DeleteStmt) Pos() source.Pos { return d.DeleteKeyword.Span.Start }
func (d *DeleteStmt) End() source.Pos { return d.Semi.Span.End }
func (*DeleteStmt) stmtNode()         {}

/**
 * EXPRESSION NODES
 */

// Expr represents a Node that evaluates to a value
type Expr interface {
	Node
	exprNode()
}

// IdentExpr represents a bare identifier reference
type IdentExpr struct {
	NamePos source.Pos
	Name    string
}

func (i *IdentExpr) Pos() source.Pos { return i.NamePos }
func (i *IdentExpr) End() source.Pos {
	return source.Pos{Line: i.NamePos.Line, Col: i.NamePos.Col + len(i.Name) - 1}
}
func (*IdentExpr) exprNode() {}

// NullLiteral represents the `null` keyword
type NullLiteral struct {
	Token Token
}

func (n *NullLiteral) Pos() source.Pos { return n.Token.Span.Start }
func (n *NullLiteral) End() source.Pos { return n.Token.Span.End }
func (*NullLiteral) exprNode()         {}

// BoolLiteral represents `true` or `false`
type BoolLiteral struct {
	Value bool
	Token Token
}

func (b *BoolLiteral) Pos() source.Pos { return b.Token.Span.Start }
func (b *BoolLiteral) End() source.Pos { return b.Token.Span.End }
func (*BoolLiteral) exprNode()         {}

// IntLiteral represents a 64-bit signed integer literal
type IntLiteral struct {
	Value int64
	Token Token
}

func (i *IntLiteral) Pos() source.Pos { return i.Token.Span.Start }
func (i *IntLiteral) End() source.Pos { return i.Token.Span.End }
func (*IntLiteral) exprNode()         {}

// FloatLiteral represents a 64-bit IEEE-754 floating point literal
type FloatLiteral struct {
	Value float64
	Token Token
}

func (f *FloatLiteral) Pos() source.Pos { return f.Token.Span.Start }
func (f *FloatLiteral) End() source.Pos { return f.Token.Span.End }
func (*FloatLiteral) exprNode()         {}

// StrLiteral represents a double-quoted string literal with escapes already
// resolved by the lexer
type StrLiteral struct {
	Value string
	Token Token
}

func (s *StrLiteral) Pos() source.Pos { return s.Token.Span.Start }
func (s *StrLiteral) End() source.Pos { return s.Token.Span.End }
func (*StrLiteral) exprNode()         {}

// ArrayItem is one item inside an array literal's `{ }` body: a bare
// expression appended at the next free index (Index == nil), or an
// explicit `[index] = expr` that can overwrite an in-range slot or extend
// the array, filling any gap with null
type ArrayItem struct {
	Index Expr
	Value Expr
}

// ArrayLiteral represents `[] {item, item, ...}`
type ArrayLiteral struct {
	LeftBracket  Token
	RightBracket Token
	LeftBrace    Token
	Items        []*ArrayItem
	RightBrace   Token
}

func (a *ArrayLiteral) Pos() source.Pos { return a.LeftBracket.Span.Start }
func (a *ArrayLiteral) End() source.Pos { return a.RightBrace.Span.End }
func (*ArrayLiteral) exprNode()         {}

// StructItem is one item inside a struct literal's `{ }` body, in any of
// the three documented forms: `.name = expr`, `[key_expr] = expr`, or
// `name = expr`. Key is always an expression — the dotted and bare forms
// both synthesize a compile-time string-literal key, the bracket form
// carries whatever expression the source wrote
type StructItem struct {
	Key   Expr
	Value Expr
}

// StructLiteral represents `struct {item, item, ...}`
type StructLiteral struct {
	StructKeyword Token
	LeftBrace     Token
	Items         []*StructItem
	RightBrace    Token
}

func (s *StructLiteral) Pos() source.Pos { return s.StructKeyword.Span.Start }
func (s *StructLiteral) End() source.Pos { return s.RightBrace.Span.End }
func (*StructLiteral) exprNode()         {}

// ClosureParam represents one parameter in a closure literal's parameter list
type ClosureParam struct {
	Name *IdentExpr
}

// ClosureLiteral represents `(auto p1, auto p2) { ...body... }`
type ClosureLiteral struct {
	LeftParen  Token
	Parameters []*ClosureParam
	RightParen Token
	Body       *BlockStmt

	// populated during semantic resolution
	Locals   []*LocalRecord
	Upvalues []*UpvalueRecord
}

func (c *ClosureLiteral) Pos() source.Pos { return c.LeftParen.Span.Start }
func (c *ClosureLiteral) End() source.Pos { return c.Body.End() }
func (*ClosureLiteral) exprNode()         {}

// UnaryExpr represents `<op> operand` for prefix `-`, `!`, `~`, `++`, `--`
type UnaryExpr struct {
	Operator Token
	Operand  Expr
}

func (u *UnaryExpr) Pos() source.Pos { return u.Operator.Span.Start }
func (u *UnaryExpr) End() source.Pos { return u.Operand.End() }
func (*UnaryExpr) exprNode()         {}

// PostfixExpr represents `operand++` or `operand--`
type PostfixExpr struct {
	Operand  Expr
	Operator Token
}

func (p *PostfixExpr) Pos() source.Pos { return p.Operand.Pos() }
func (p *PostfixExpr) End() source.Pos { return p.Operator.Span.End }
func (*PostfixExpr) exprNode()         {}

// BinaryExpr represents `left <op> right` for every arithmetic, bitwise,
// comparison, and logical infix operator, as well as the `..` range operator
type BinaryExpr struct {
	Operator TokenSymbol
	OpToken  Token
	Left     Expr
	Right    Expr
}

func (b *BinaryExpr) Pos() source.Pos { return b.Left.Pos() }
func (b *BinaryExpr) End() source.Pos { return b.Right.End() }
func (*BinaryExpr) exprNode()         {}

// TernaryExpr represents `cond ? then : otherwise`
type TernaryExpr struct {
	Condition Expr
	Then      Expr
	Else      Expr
}

func (t *TernaryExpr) Pos() source.Pos { return t.Condition.Pos() }
func (t *TernaryExpr) End() source.Pos { return t.Else.End() }
func (*TernaryExpr) exprNode()         {}

// AssignExpr represents an assignment used in expression position, e.g. as
// the post-clause of a `for` loop or chained as `a = b = c`
type AssignExpr struct {
	Target   Expr
	Operator TokenSymbol
	Value    Expr
}

func (a *AssignExpr) Pos() source.Pos { return a.Target.Pos() }
func (a *AssignExpr) End() source.Pos { return a.Value.End() }
func (*AssignExpr) exprNode()         {}

// CallExpr represents `callee(arg1, arg2, ...)`
type CallExpr struct {
	Callee     Expr
	LeftParen  Token
	Arguments  []Expr
	RightParen Token
}

func (c *CallExpr) Pos() source.Pos { return c.Callee.Pos() }
func (c *CallExpr) End() source.Pos { return c.RightParen.Span.End }
func (*CallExpr) exprNode()         {}

// IndexAccessExpr represents `root[index]`
type IndexAccessExpr struct {
	Root         Expr
	LeftBracket  Token
	Index        Expr
	RightBracket Token
}

func (i *IndexAccessExpr) Pos() source.Pos { return i.Root.Pos() }
func (i *IndexAccessExpr) End() source.Pos { return i.RightBracket.Span.End }
func (*IndexAccessExpr) exprNode()         {}

// FieldAccessExpr represents `root.field`
type FieldAccessExpr struct {
	Root  Expr
	Dot   Token
	Field *IdentExpr
}

func (f *FieldAccessExpr) Pos() source.Pos { return f.Root.Pos() }
func (f *FieldAccessExpr) End() source.Pos { return f.Field.End() }
func (*FieldAccessExpr) exprNode()         {}

// CastExpr represents `(type) operand` or `type(operand)` for the built in
// scalar types
// `int`, `float`, `str`, `bool`
type CastExpr struct {
	LeftParen  Token
	TypeName   Token
	RightParen Token
	Operand    Expr
}

func (c *CastExpr) Pos() source.Pos { return c.LeftParen.Span.Start }
func (c *CastExpr) End() source.Pos { return c.Operand.End() }
func (*CastExpr) exprNode()         {}

// TypeofExpr represents `typeof(operand)`
type TypeofExpr struct {
	TypeofKeyword Token
	LeftParen     Token
	Operand       Expr
	RightParen    Token
}

func (t *TypeofExpr) Pos() source.Pos { return t.TypeofKeyword.Span.Start }
func (t *TypeofExpr) End() source.Pos { return t.RightParen.Span.End }
func (*TypeofExpr) exprNode()         {}

// SizeofExpr represents `sizeof(operand)`
type SizeofExpr struct {
	SizeofKeyword Token
	LeftParen     Token
	Operand       Expr
	RightParen    Token
}

func (s *SizeofExpr) Pos() source.Pos { return s.SizeofKeyword.Span.Start }
func (s *SizeofExpr) End() source.Pos { return s.RightParen.Span.End }
func (*SizeofExpr) exprNode()         {}

// RequireExpr represents `require(path, args…)`: a literal path to another
// script plus the argument values forwarded to it as its `argv`
type RequireExpr struct {
	RequireKeyword Token
	LeftParen      Token
	Path           *StrLiteral
	Arguments      []Expr
	RightParen     Token
}

func (r *RequireExpr) Pos() source.Pos { return r.RequireKeyword.Span.Start }
func (r *RequireExpr) End() source.Pos { return r.RightParen.Span.End }
func (*RequireExpr) exprNode()         {}

// GroupExpr represents a parenthesized expression kept distinct from
// CastExpr so the parser's one-token-lookahead disambiguation stays in one
// place: `(` followed by `)` or `auto` starts a ClosureLiteral, `(` followed
// by one of the four type keywords and then `)` starts a CastExpr, anything
// else is a GroupExpr
type GroupExpr struct {
	LeftParen  Token
	Inner      Expr
	RightParen Token
}

func (g *GroupExpr) Pos() source.Pos { return g.LeftParen.Span.Start }
func (g *GroupExpr) End() source.Pos { return g.RightParen.Span.End }
func (*GroupExpr) exprNode()         {}
