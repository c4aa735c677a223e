package frontend

import (
	"strconv"

	"github.com/oyc-lang/oyc/feedback"
)

/**
 * EXPRESSION PARSELETS
 */

func literalParselet(p *Parser, tok Token) (Expr, feedback.Message) {
	switch tok.Symbol {
	case IntegerSymbol:
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, p.unexpected(tok, "malformed integer literal")
		}
		return &IntLiteral{Value: v, Token: tok}, nil
	case DecimalSymbol:
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.unexpected(tok, "malformed float literal")
		}
		return &FloatLiteral{Value: v, Token: tok}, nil
	case StringSymbol:
		return &StrLiteral{Value: tok.Lexeme, Token: tok}, nil
	case BooleanSymbol:
		return &BoolLiteral{Value: tok.Lexeme == "true", Token: tok}, nil
	default: // "null"
		return &NullLiteral{Token: tok}, nil
	}
}

func identParselet(p *Parser, tok Token) (Expr, feedback.Message) {
	return &IdentExpr{NamePos: tok.Span.Start, Name: tok.Lexeme}, nil
}

func isCastTypeKeyword(sym TokenSymbol) bool {
	switch sym {
	case "int", "float", "str", "bool":
		return true
	}
	return false
}

// groupOrClosureParselet disambiguates the three constructs that can start
// with `(`: a closure literal `(auto a, auto b) { ... }`, a cast
// `(int) expr`, and a parenthesized expression. One token of lookahead
// (whether `)` or `auto` follows immediately) identifies a closure; two
// tokens of lookahead (a type keyword followed by `)`) identify a cast
func groupOrClosureParselet(p *Parser, leftParen Token) (Expr, feedback.Message) {
	if p.Lexer.PeekMatches(TokenSymbol(")")) || p.Lexer.PeekMatches(TokenSymbol("auto")) {
		return parseClosureLiteral(p, leftParen)
	}

	if tok0, msg := p.Lexer.Peek(); msg == nil && isCastTypeKeyword(tok0.Symbol) {
		if tok1, msg1 := p.Lexer.PeekAhead(1); msg1 == nil && tok1.Symbol == TokenSymbol(")") {
			return parseCastExpr(p, leftParen)
		}
	}

	inner, msg := p.parseExpression(0)
	if msg != nil {
		return nil, msg
	}

	rparen, msg := p.Lexer.ExpectNext(TokenSymbol(")"))
	if msg != nil {
		return nil, msg
	}

	return &GroupExpr{LeftParen: leftParen, Inner: inner, RightParen: rparen}, nil
}

func parseClosureLiteral(p *Parser, leftParen Token) (Expr, feedback.Message) {
	var params []*ClosureParam

	for !p.Lexer.PeekMatches(TokenSymbol(")")) {
		if _, msg := p.Lexer.ExpectNext(TokenSymbol("auto")); msg != nil {
			return nil, msg
		}

		nameTok, msg := p.Lexer.ExpectNext(IdentSymbol)
		if msg != nil {
			return nil, msg
		}

		params = append(params, &ClosureParam{
			Name: &IdentExpr{NamePos: nameTok.Span.Start, Name: nameTok.Lexeme},
		})

		if p.Lexer.PeekMatches(TokenSymbol(",")) {
			p.Lexer.Next()
			continue
		}

		break
	}

	rparen, msg := p.Lexer.ExpectNext(TokenSymbol(")"))
	if msg != nil {
		return nil, msg
	}

	body, msg := parseBlockBody(p)
	if msg != nil {
		return nil, msg
	}

	return &ClosureLiteral{LeftParen: leftParen, Parameters: params, RightParen: rparen, Body: body}, nil
}

func parseCastExpr(p *Parser, leftParen Token) (Expr, feedback.Message) {
	typeTok, msg := p.Lexer.Next()
	if msg != nil {
		return nil, msg
	}

	rparen, msg := p.Lexer.ExpectNext(TokenSymbol(")"))
	if msg != nil {
		return nil, msg
	}

	operand, msg := p.parseExpression(precUnary)
	if msg != nil {
		return nil, msg
	}

	return &CastExpr{LeftParen: leftParen, TypeName: typeTok, RightParen: rparen, Operand: operand}, nil
}

// arrayLiteralParselet parses `[] {item, item, ...}`. The bare `[]` pair is
// always immediate (it's the array-literal marker, not an index), so the
// grammar is unambiguous from the leading `[` that triggered this parselet
func arrayLiteralParselet(p *Parser, leftBracket Token) (Expr, feedback.Message) {
	rbracket, msg := p.Lexer.ExpectNext(TokenSymbol("]"))
	if msg != nil {
		return nil, msg
	}

	lbrace, msg := p.Lexer.ExpectNext(TokenSymbol("{"))
	if msg != nil {
		return nil, msg
	}

	var items []*ArrayItem

	for !p.Lexer.PeekMatches(TokenSymbol("}")) {
		item, msg := parseArrayItem(p)
		if msg != nil {
			return nil, msg
		}
		items = append(items, item)

		if p.Lexer.PeekMatches(TokenSymbol(",")) {
			p.Lexer.Next()
			continue
		}

		break
	}

	rbrace, msg := p.Lexer.ExpectNext(TokenSymbol("}"))
	if msg != nil {
		return nil, msg
	}

	return &ArrayLiteral{LeftBracket: leftBracket, RightBracket: rbracket, LeftBrace: lbrace, Items: items, RightBrace: rbrace}, nil
}

// parseArrayItem parses one item inside an array literal's body: either a
// bare expression appended at the next free index, or an explicit
// `[index_expr] = expr`. A leading `[` immediately followed by `]` is a
// nested array literal (a bare expression), not an explicit index — one
// token of lookahead past the `[` tells them apart
func parseArrayItem(p *Parser) (*ArrayItem, feedback.Message) {
	if p.Lexer.PeekMatches(TokenSymbol("[")) {
		if tok1, msg := p.Lexer.PeekAhead(1); msg == nil && tok1.Symbol != TokenSymbol("]") {
			p.Lexer.Next()

			index, msg := p.parseExpression(0)
			if msg != nil {
				return nil, msg
			}
			if _, msg := p.Lexer.ExpectNext(TokenSymbol("]")); msg != nil {
				return nil, msg
			}
			if _, msg := p.Lexer.ExpectNext(TokenSymbol("=")); msg != nil {
				return nil, msg
			}

			value, msg := p.parseExpression(precAssignment)
			if msg != nil {
				return nil, msg
			}

			return &ArrayItem{Index: index, Value: value}, nil
		}
	}

	value, msg := p.parseExpression(precAssignment)
	if msg != nil {
		return nil, msg
	}

	return &ArrayItem{Value: value}, nil
}

// structLiteralParselet parses `struct {item, item, ...}`
func structLiteralParselet(p *Parser, structTok Token) (Expr, feedback.Message) {
	lbrace, msg := p.Lexer.ExpectNext(TokenSymbol("{"))
	if msg != nil {
		return nil, msg
	}

	var items []*StructItem

	for !p.Lexer.PeekMatches(TokenSymbol("}")) {
		item, msg := parseStructItem(p)
		if msg != nil {
			return nil, msg
		}
		items = append(items, item)

		if p.Lexer.PeekMatches(TokenSymbol(",")) {
			p.Lexer.Next()
			continue
		}

		break
	}

	rbrace, msg := p.Lexer.ExpectNext(TokenSymbol("}"))
	if msg != nil {
		return nil, msg
	}

	return &StructLiteral{StructKeyword: structTok, LeftBrace: lbrace, Items: items, RightBrace: rbrace}, nil
}

// parseStructItem parses one `.name = expr`, `[key_expr] = expr`, or
// `name = expr` item. The leading token picks the form: `.` and `[` are
// unambiguous; otherwise a bare identifier key is expected and synthesized
// into the same string-literal key the dotted form would produce
func parseStructItem(p *Parser) (*StructItem, feedback.Message) {
	if p.Lexer.PeekMatches(TokenSymbol(".")) {
		p.Lexer.Next()

		nameTok, msg := p.Lexer.ExpectNext(IdentSymbol)
		if msg != nil {
			return nil, msg
		}
		if _, msg := p.Lexer.ExpectNext(TokenSymbol("=")); msg != nil {
			return nil, msg
		}

		value, msg := p.parseExpression(precAssignment)
		if msg != nil {
			return nil, msg
		}

		key := &StrLiteral{Value: nameTok.Lexeme, Token: nameTok}
		return &StructItem{Key: key, Value: value}, nil
	}

	if p.Lexer.PeekMatches(TokenSymbol("[")) {
		p.Lexer.Next()

		key, msg := p.parseExpression(0)
		if msg != nil {
			return nil, msg
		}
		if _, msg := p.Lexer.ExpectNext(TokenSymbol("]")); msg != nil {
			return nil, msg
		}
		if _, msg := p.Lexer.ExpectNext(TokenSymbol("=")); msg != nil {
			return nil, msg
		}

		value, msg := p.parseExpression(precAssignment)
		if msg != nil {
			return nil, msg
		}

		return &StructItem{Key: key, Value: value}, nil
	}

	nameTok, msg := p.Lexer.ExpectNext(IdentSymbol)
	if msg != nil {
		return nil, msg
	}
	if _, msg := p.Lexer.ExpectNext(TokenSymbol("=")); msg != nil {
		return nil, msg
	}

	value, msg := p.parseExpression(precAssignment)
	if msg != nil {
		return nil, msg
	}

	key := &StrLiteral{Value: nameTok.Lexeme, Token: nameTok}
	return &StructItem{Key: key, Value: value}, nil
}

func typeofParselet(p *Parser, kw Token) (Expr, feedback.Message) {
	lparen, msg := p.Lexer.ExpectNext(TokenSymbol("("))
	if msg != nil {
		return nil, msg
	}

	operand, msg := p.parseExpression(0)
	if msg != nil {
		return nil, msg
	}

	rparen, msg := p.Lexer.ExpectNext(TokenSymbol(")"))
	if msg != nil {
		return nil, msg
	}

	return &TypeofExpr{TypeofKeyword: kw, LeftParen: lparen, Operand: operand, RightParen: rparen}, nil
}

func sizeofParselet(p *Parser, kw Token) (Expr, feedback.Message) {
	lparen, msg := p.Lexer.ExpectNext(TokenSymbol("("))
	if msg != nil {
		return nil, msg
	}

	operand, msg := p.parseExpression(0)
	if msg != nil {
		return nil, msg
	}

	rparen, msg := p.Lexer.ExpectNext(TokenSymbol(")"))
	if msg != nil {
		return nil, msg
	}

	return &SizeofExpr{SizeofKeyword: kw, LeftParen: lparen, Operand: operand, RightParen: rparen}, nil
}

func requireParselet(p *Parser, kw Token) (Expr, feedback.Message) {
	lparen, msg := p.Lexer.ExpectNext(TokenSymbol("("))
	if msg != nil {
		return nil, msg
	}

	pathTok, msg := p.Lexer.ExpectNext(StringSymbol)
	if msg != nil {
		return nil, msg
	}
	path := &StrLiteral{Value: pathTok.Lexeme, Token: pathTok}

	var args []Expr
	for p.Lexer.PeekMatches(TokenSymbol(",")) {
		p.Lexer.Next()
		arg, msg := p.parseExpression(precAssignment)
		if msg != nil {
			return nil, msg
		}
		args = append(args, arg)
	}

	rparen, msg := p.Lexer.ExpectNext(TokenSymbol(")"))
	if msg != nil {
		return nil, msg
	}

	return &RequireExpr{RequireKeyword: kw, LeftParen: lparen, Path: path, Arguments: args, RightParen: rparen}, nil
}

func prefixParselet(p *Parser, opTok Token) (Expr, feedback.Message) {
	operand, msg := p.parseExpression(precUnary)
	if msg != nil {
		return nil, msg
	}

	return &UnaryExpr{Operator: opTok, Operand: operand}, nil
}

func postfixParselet(p *Parser, opTok Token, left Expr) (Expr, feedback.Message) {
	return &PostfixExpr{Operand: left, Operator: opTok}, nil
}

func binaryInfixParselet(p *Parser, opTok Token, left Expr) (Expr, feedback.Message) {
	prec := p.binaryPrecedence[opTok.Symbol]

	right, msg := p.parseExpression(prec)
	if msg != nil {
		return nil, msg
	}

	return &BinaryExpr{Operator: opTok.Symbol, OpToken: opTok, Left: left, Right: right}, nil
}

func ternaryParselet(p *Parser, qTok Token, cond Expr) (Expr, feedback.Message) {
	thenExpr, msg := p.parseExpression(precTernary - 1)
	if msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol(":")); msg != nil {
		return nil, msg
	}

	elseExpr, msg := p.parseExpression(precTernary - 1)
	if msg != nil {
		return nil, msg
	}

	return &TernaryExpr{Condition: cond, Then: thenExpr, Else: elseExpr}, nil
}

func assignExprParselet(p *Parser, opTok Token, left Expr) (Expr, feedback.Message) {
	prec := p.binaryPrecedence[opTok.Symbol]

	right, msg := p.parseExpression(prec - 1)
	if msg != nil {
		return nil, msg
	}

	return &AssignExpr{Target: left, Operator: opTok.Symbol, Value: right}, nil
}

func callParselet(p *Parser, leftParen Token, callee Expr) (Expr, feedback.Message) {
	var args []Expr

	for !p.Lexer.PeekMatches(TokenSymbol(")")) {
		arg, msg := p.parseExpression(precAssignment)
		if msg != nil {
			return nil, msg
		}
		args = append(args, arg)

		if p.Lexer.PeekMatches(TokenSymbol(",")) {
			p.Lexer.Next()
			continue
		}

		break
	}

	rparen, msg := p.Lexer.ExpectNext(TokenSymbol(")"))
	if msg != nil {
		return nil, msg
	}

	return &CallExpr{Callee: callee, LeftParen: leftParen, Arguments: args, RightParen: rparen}, nil
}

func indexParselet(p *Parser, leftBracket Token, root Expr) (Expr, feedback.Message) {
	index, msg := p.parseExpression(0)
	if msg != nil {
		return nil, msg
	}

	rbracket, msg := p.Lexer.ExpectNext(TokenSymbol("]"))
	if msg != nil {
		return nil, msg
	}

	return &IndexAccessExpr{Root: root, LeftBracket: leftBracket, Index: index, RightBracket: rbracket}, nil
}

func fieldParselet(p *Parser, dot Token, root Expr) (Expr, feedback.Message) {
	nameTok, msg := p.Lexer.ExpectNext(IdentSymbol)
	if msg != nil {
		return nil, msg
	}

	field := &IdentExpr{NamePos: nameTok.Span.Start, Name: nameTok.Lexeme}
	return &FieldAccessExpr{Root: root, Dot: dot, Field: field}, nil
}

/**
 * STATEMENT PARSERS
 *  - unlike expressions, statements are driven by a leading keyword (or, for
 *    plain expression/assignment statements, the absence of one) so they are
 *    parsed with ordinary recursive descent rather than the Pratt tables
 *    above
 */

func (p *Parser) parseStatement() (Stmt, feedback.Message) {
	tok, msg := p.Lexer.Peek()
	if msg != nil {
		return nil, msg
	}

	switch tok.Symbol {
	case TokenSymbol("auto"):
		return p.parseDeclarationStmt()
	case TokenSymbol("if"):
		return p.parseIfStmt()
	case TokenSymbol("while"):
		return p.parseWhileStmt()
	case TokenSymbol("do"):
		return p.parseDoWhileStmt()
	case TokenSymbol("for"):
		return p.parseForStmt()
	case TokenSymbol("foreach"):
		return p.parseForeachStmt()
	case TokenSymbol("switch"):
		return p.parseSwitchStmt()
	case TokenSymbol("break"):
		return p.parseBreakStmt()
	case TokenSymbol("continue"):
		return p.parseContinueStmt()
	case TokenSymbol("return"):
		return p.parseReturnStmt()
	case TokenSymbol("delete"):
		return p.parseDeleteStmt()
	case TokenSymbol("{"):
		return p.parseBlockStmt()
	default:
		return p.parseSimpleStmt()
	}
}

func parseBlockBody(p *Parser) (*BlockStmt, feedback.Message) {
	stmt, msg := p.parseBlockStmt()
	if msg != nil {
		return nil, msg
	}
	return stmt.(*BlockStmt), nil
}

func (p *Parser) parseBlockStmt() (Stmt, feedback.Message) {
	lbrace, msg := p.Lexer.ExpectNext(TokenSymbol("{"))
	if msg != nil {
		return nil, msg
	}

	var stmts []Stmt
	for !p.Lexer.PeekMatches(TokenSymbol("}")) {
		stmt, msg := p.parseStatement()
		if msg != nil {
			return nil, msg
		}
		stmts = append(stmts, stmt)
	}

	rbrace, msg := p.Lexer.ExpectNext(TokenSymbol("}"))
	if msg != nil {
		return nil, msg
	}

	return &BlockStmt{LeftBrace: lbrace, Statements: stmts, RightBrace: rbrace}, nil
}

func (p *Parser) parseDeclarationStmt() (Stmt, feedback.Message) {
	autoTok, msg := p.Lexer.ExpectNext(TokenSymbol("auto"))
	if msg != nil {
		return nil, msg
	}

	nameTok, msg := p.Lexer.ExpectNext(IdentSymbol)
	if msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol("=")); msg != nil {
		return nil, msg
	}

	value, msg := p.parseExpression(0)
	if msg != nil {
		return nil, msg
	}

	semi, msg := p.Lexer.ExpectNext(TokenSymbol(";"))
	if msg != nil {
		return nil, msg
	}

	assignee := &IdentExpr{NamePos: nameTok.Span.Start, Name: nameTok.Lexeme}
	return &DeclarationStmt{AutoKeyword: autoTok, Assignee: assignee, Assignment: value, Semi: semi}, nil
}

func (p *Parser) parseSimpleStmt() (Stmt, feedback.Message) {
	expr, msg := p.parseExpression(0)
	if msg != nil {
		return nil, msg
	}

	semi, msg := p.Lexer.ExpectNext(TokenSymbol(";"))
	if msg != nil {
		return nil, msg
	}

	if assign, ok := expr.(*AssignExpr); ok {
		return &AssignmentStmt{Target: assign.Target, Operator: assign.Operator, Value: assign.Value, Semi: semi}, nil
	}

	return &ExprStmt{Argument: expr, Semi: semi}, nil
}

func (p *Parser) parseIfStmt() (Stmt, feedback.Message) {
	ifTok, msg := p.Lexer.ExpectNext(TokenSymbol("if"))
	if msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol("(")); msg != nil {
		return nil, msg
	}

	cond, msg := p.parseExpression(0)
	if msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol(")")); msg != nil {
		return nil, msg
	}

	then, msg := p.parseStatement()
	if msg != nil {
		return nil, msg
	}

	stmt := &IfStmt{IfKeyword: ifTok, Condition: cond, Then: then}

	if p.Lexer.PeekMatches(TokenSymbol("else")) {
		p.Lexer.Next()

		if p.Lexer.PeekMatches(TokenSymbol("if")) {
			stmt.Else, msg = p.parseIfStmt()
		} else {
			stmt.Else, msg = p.parseStatement()
		}

		if msg != nil {
			return nil, msg
		}
	}

	return stmt, nil
}

func (p *Parser) parseWhileStmt() (Stmt, feedback.Message) {
	whileTok, msg := p.Lexer.ExpectNext(TokenSymbol("while"))
	if msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol("(")); msg != nil {
		return nil, msg
	}

	cond, msg := p.parseExpression(0)
	if msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol(")")); msg != nil {
		return nil, msg
	}

	body, msg := p.parseStatement()
	if msg != nil {
		return nil, msg
	}

	return &WhileStmt{WhileKeyword: whileTok, Condition: cond, Body: body}, nil
}

func (p *Parser) parseDoWhileStmt() (Stmt, feedback.Message) {
	doTok, msg := p.Lexer.ExpectNext(TokenSymbol("do"))
	if msg != nil {
		return nil, msg
	}

	body, msg := p.parseStatement()
	if msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol("while")); msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol("(")); msg != nil {
		return nil, msg
	}

	cond, msg := p.parseExpression(0)
	if msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol(")")); msg != nil {
		return nil, msg
	}

	semi, msg := p.Lexer.ExpectNext(TokenSymbol(";"))
	if msg != nil {
		return nil, msg
	}

	return &DoWhileStmt{DoKeyword: doTok, Body: body, Condition: cond, Semi: semi}, nil
}

func (p *Parser) parseForStmt() (Stmt, feedback.Message) {
	forTok, msg := p.Lexer.ExpectNext(TokenSymbol("for"))
	if msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol("(")); msg != nil {
		return nil, msg
	}

	var init Stmt

	if p.Lexer.PeekMatches(TokenSymbol(";")) {
		p.Lexer.Next()
	} else if p.Lexer.PeekMatches(TokenSymbol("auto")) {
		if init, msg = p.parseDeclarationStmt(); msg != nil {
			return nil, msg
		}
	} else {
		expr, msg := p.parseExpression(0)
		if msg != nil {
			return nil, msg
		}
		semi, msg := p.Lexer.ExpectNext(TokenSymbol(";"))
		if msg != nil {
			return nil, msg
		}

		if assign, ok := expr.(*AssignExpr); ok {
			init = &AssignmentStmt{Target: assign.Target, Operator: assign.Operator, Value: assign.Value, Semi: semi}
		} else {
			init = &ExprStmt{Argument: expr, Semi: semi}
		}
	}

	var cond Expr
	if !p.Lexer.PeekMatches(TokenSymbol(";")) {
		if cond, msg = p.parseExpression(0); msg != nil {
			return nil, msg
		}
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol(";")); msg != nil {
		return nil, msg
	}

	var post Stmt
	if !p.Lexer.PeekMatches(TokenSymbol(")")) {
		expr, msg := p.parseExpression(0)
		if msg != nil {
			return nil, msg
		}

		if assign, ok := expr.(*AssignExpr); ok {
			post = &AssignmentStmt{Target: assign.Target, Operator: assign.Operator, Value: assign.Value}
		} else {
			post = &ExprStmt{Argument: expr}
		}
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol(")")); msg != nil {
		return nil, msg
	}

	body, msg := p.parseStatement()
	if msg != nil {
		return nil, msg
	}

	return &ForStmt{ForKeyword: forTok, Init: init, Condition: cond, Post: post, Body: body}, nil
}

func (p *Parser) parseForeachStmt() (Stmt, feedback.Message) {
	kwTok, msg := p.Lexer.ExpectNext(TokenSymbol("foreach"))
	if msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol("(")); msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol("auto")); msg != nil {
		return nil, msg
	}

	firstTok, msg := p.Lexer.ExpectNext(IdentSymbol)
	if msg != nil {
		return nil, msg
	}
	first := &IdentExpr{NamePos: firstTok.Span.Start, Name: firstTok.Lexeme}

	var keyName, valueName *IdentExpr

	if p.Lexer.PeekMatches(TokenSymbol(",")) {
		p.Lexer.Next()

		secondTok, msg := p.Lexer.ExpectNext(IdentSymbol)
		if msg != nil {
			return nil, msg
		}

		keyName = first
		valueName = &IdentExpr{NamePos: secondTok.Span.Start, Name: secondTok.Lexeme}
	} else {
		valueName = first
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol(":")); msg != nil {
		return nil, msg
	}

	subject, msg := p.parseExpression(0)
	if msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol(")")); msg != nil {
		return nil, msg
	}

	body, msg := p.parseStatement()
	if msg != nil {
		return nil, msg
	}

	return &ForeachStmt{
		ForeachKeyword: kwTok,
		KeyName:        keyName,
		ValueName:      valueName,
		Subject:        subject,
		Body:           body,
	}, nil
}

func (p *Parser) parseSwitchStmt() (Stmt, feedback.Message) {
	switchTok, msg := p.Lexer.ExpectNext(TokenSymbol("switch"))
	if msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol("(")); msg != nil {
		return nil, msg
	}

	subject, msg := p.parseExpression(0)
	if msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol(")")); msg != nil {
		return nil, msg
	}

	if _, msg := p.Lexer.ExpectNext(TokenSymbol("{")); msg != nil {
		return nil, msg
	}

	var cases []*SwitchCase

	for !p.Lexer.PeekMatches(TokenSymbol("}")) {
		tok, msg := p.Lexer.Peek()
		if msg != nil {
			return nil, msg
		}

		var c *SwitchCase

		switch tok.Symbol {
		case TokenSymbol("case"):
			caseTok, _ := p.Lexer.Next()
			value, msg := p.parseExpression(0)
			if msg != nil {
				return nil, msg
			}
			if _, msg := p.Lexer.ExpectNext(TokenSymbol(":")); msg != nil {
				return nil, msg
			}
			c = &SwitchCase{CaseKeyword: caseTok, Value: value}
		case TokenSymbol("default"):
			defTok, _ := p.Lexer.Next()
			if _, msg := p.Lexer.ExpectNext(TokenSymbol(":")); msg != nil {
				return nil, msg
			}
			c = &SwitchCase{CaseKeyword: defTok}
		default:
			return nil, p.unexpected(tok, "expected 'case' or 'default'")
		}

		for !p.Lexer.PeekMatches(TokenSymbol("case")) &&
			!p.Lexer.PeekMatches(TokenSymbol("default")) &&
			!p.Lexer.PeekMatches(TokenSymbol("}")) {
			stmt, msg := p.parseStatement()
			if msg != nil {
				return nil, msg
			}
			c.Statements = append(c.Statements, stmt)
		}

		cases = append(cases, c)
	}

	rbrace, msg := p.Lexer.ExpectNext(TokenSymbol("}"))
	if msg != nil {
		return nil, msg
	}

	return &SwitchStmt{SwitchKeyword: switchTok, Subject: subject, Cases: cases, RightBrace: rbrace}, nil
}

func (p *Parser) parseBreakStmt() (Stmt, feedback.Message) {
	tok, msg := p.Lexer.ExpectNext(TokenSymbol("break"))
	if msg != nil {
		return nil, msg
	}
	semi, msg := p.Lexer.ExpectNext(TokenSymbol(";"))
	if msg != nil {
		return nil, msg
	}
	return &BreakStmt{BreakKeyword: tok, Semi: semi}, nil
}

func (p *Parser) parseContinueStmt() (Stmt, feedback.Message) {
	tok, msg := p.Lexer.ExpectNext(TokenSymbol("continue"))
	if msg != nil {
		return nil, msg
	}
	semi, msg := p.Lexer.ExpectNext(TokenSymbol(";"))
	if msg != nil {
		return nil, msg
	}
	return &ContinueStmt{ContinueKeyword: tok, Semi: semi}, nil
}

func (p *Parser) parseReturnStmt() (Stmt, feedback.Message) {
	tok, msg := p.Lexer.ExpectNext(TokenSymbol("return"))
	if msg != nil {
		return nil, msg
	}

	var arg Expr
	if !p.Lexer.PeekMatches(TokenSymbol(";")) {
		if arg, msg = p.parseExpression(0); msg != nil {
			return nil, msg
		}
	}

	semi, msg := p.Lexer.ExpectNext(TokenSymbol(";"))
	if msg != nil {
		return nil, msg
	}

	return &ReturnStmt{ReturnKeyword: tok, Argument: arg, Semi: semi}, nil
}

func (p *Parser) parseDeleteStmt() (Stmt, feedback.Message) {
	tok, msg := p.Lexer.ExpectNext(TokenSymbol("delete"))
	if msg != nil {
		return nil, msg
	}

	target, msg := p.parseExpression(precUnary)
	if msg != nil {
		return nil, msg
	}

	semi, msg := p.Lexer.ExpectNext(TokenSymbol(";"))
	if msg != nil {
		return nil, msg
	}

	return &DeleteStmt{DeleteKeyword: tok, Target: target, Semi: semi}, nil
}
