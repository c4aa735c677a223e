package frontend

import (
	"fmt"

	"github.com/oyc-lang/oyc/feedback"
	"github.com/oyc-lang/oyc/source"
)

// Parse takes a file and returns an abstract syntax tree along with any
// errors encountered while producing it
func Parse(file *source.File) (prog *ProgramNode, msgs []feedback.Message) {
	parser := NewParser(file)
	prog, msg := parser.Parse()

	if msg != nil {
		msgs = append(msgs, msg)
	}

	return prog, msgs
}

type binaryParselet func(p *Parser, opToken Token, left Expr) (Expr, feedback.Message)
type unaryParselet func(p *Parser, tok Token) (Expr, feedback.Message)

// Parser wraps a Lexer with a table-driven Pratt expression parser. The
// table/parselet structure is the same approach the teacher uses, adapted
// here to a fixed C-like grammar with explicit statement keywords, so
// statement parsing (below) is straight recursive descent while expression
// parsing stays table-driven
type Parser struct {
	Lexer *Lexer

	binaryPrecedence map[TokenSymbol]int
	rightAssociative map[TokenSymbol]bool
	binaryParselets  map[TokenSymbol]binaryParselet
	unaryParselets   map[TokenSymbol]unaryParselet
}

// Precedence levels, lowest to highest binding strength
const (
	precAssignment = 10
	precTernary    = 20
	precLogicalOr  = 30
	precLogicalAnd = 40
	precBitOr      = 50
	precBitXor     = 60
	precBitAnd     = 70
	precEquality   = 80
	precRelational = 90
	precShift      = 100
	precAdditive   = 110
	precMultiplic  = 120
	precUnary      = 130
	precPostfix    = 140
)

var assignmentOperators = []TokenSymbol{
	"=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=",
}

// NewParser constructs a Parser and populates its precedence/parselet tables
func NewParser(file *source.File) *Parser {
	p := &Parser{
		Lexer:            NewLexer(file),
		binaryPrecedence: make(map[TokenSymbol]int),
		rightAssociative: make(map[TokenSymbol]bool),
		binaryParselets:  make(map[TokenSymbol]binaryParselet),
		unaryParselets:   make(map[TokenSymbol]unaryParselet),
	}

	p.addUnary(IntegerSymbol, literalParselet)
	p.addUnary(DecimalSymbol, literalParselet)
	p.addUnary(StringSymbol, literalParselet)
	p.addUnary(BooleanSymbol, literalParselet)
	p.addUnary(TokenSymbol("null"), literalParselet)
	p.addUnary(IdentSymbol, identParselet)
	p.addUnary(TokenSymbol("("), groupOrClosureParselet)
	p.addUnary(TokenSymbol("["), arrayLiteralParselet)
	p.addUnary(TokenSymbol("struct"), structLiteralParselet)
	p.addUnary(TokenSymbol("typeof"), typeofParselet)
	p.addUnary(TokenSymbol("sizeof"), sizeofParselet)
	p.addUnary(TokenSymbol("require"), requireParselet)
	p.addUnary(TokenSymbol("-"), prefixParselet)
	p.addUnary(TokenSymbol("!"), prefixParselet)
	p.addUnary(TokenSymbol("~"), prefixParselet)
	p.addUnary(TokenSymbol("++"), prefixParselet)
	p.addUnary(TokenSymbol("--"), prefixParselet)

	// Call-style casts `int(e)`, `float(e)`, `str(e)`, `bool(e)`
	for _, sym := range []TokenSymbol{"int", "float", "str", "bool"} {
		p.addUnary(sym, func(p *Parser, typeTok Token) (Expr, feedback.Message) {
			expr, msg := typeofParselet(p, typeTok)
			if msg != nil {
				return nil, msg
			}
			t := expr.(*TypeofExpr)
			return &CastExpr{LeftParen: t.LeftParen, TypeName: typeTok, RightParen: t.RightParen, Operand: t.Operand}, nil
		})
	}

	p.addBinaryLeft(TokenSymbol("("), precPostfix, callParselet)
	p.addBinaryLeft(TokenSymbol("["), precPostfix, indexParselet)
	p.addBinaryLeft(TokenSymbol("."), precPostfix, fieldParselet)
	p.addBinaryLeft(TokenSymbol("++"), precPostfix, postfixParselet)
	p.addBinaryLeft(TokenSymbol("--"), precPostfix, postfixParselet)

	for _, sym := range []TokenSymbol{"*", "/", "%"} {
		p.addBinaryLeft(sym, precMultiplic, binaryInfixParselet)
	}
	for _, sym := range []TokenSymbol{"+", "-"} {
		p.addBinaryLeft(sym, precAdditive, binaryInfixParselet)
	}
	for _, sym := range []TokenSymbol{"<<", ">>"} {
		p.addBinaryLeft(sym, precShift, binaryInfixParselet)
	}
	for _, sym := range []TokenSymbol{"<", "<=", ">", ">="} {
		p.addBinaryLeft(sym, precRelational, binaryInfixParselet)
	}
	for _, sym := range []TokenSymbol{"==", "!="} {
		p.addBinaryLeft(sym, precEquality, binaryInfixParselet)
	}
	p.addBinaryLeft(TokenSymbol("&"), precBitAnd, binaryInfixParselet)
	p.addBinaryLeft(TokenSymbol("^"), precBitXor, binaryInfixParselet)
	p.addBinaryLeft(TokenSymbol("|"), precBitOr, binaryInfixParselet)
	p.addBinaryLeft(TokenSymbol("&&"), precLogicalAnd, binaryInfixParselet)
	p.addBinaryLeft(TokenSymbol("||"), precLogicalOr, binaryInfixParselet)
	p.addBinaryLeft(TokenSymbol(".."), precAdditive, binaryInfixParselet)

	p.addBinaryRight(TokenSymbol("?"), precTernary, ternaryParselet)

	for _, sym := range assignmentOperators {
		p.addBinaryRight(sym, precAssignment, assignExprParselet)
	}

	return p
}

func (p *Parser) addBinaryLeft(sym TokenSymbol, prec int, parselet binaryParselet) {
	p.binaryPrecedence[sym] = prec
	p.binaryParselets[sym] = parselet
}

func (p *Parser) addBinaryRight(sym TokenSymbol, prec int, parselet binaryParselet) {
	p.binaryPrecedence[sym] = prec
	p.rightAssociative[sym] = true
	p.binaryParselets[sym] = parselet
}

func (p *Parser) addUnary(sym TokenSymbol, parselet unaryParselet) {
	p.unaryParselets[sym] = parselet
}

func (p *Parser) nextPrecedence() (prec int, msg feedback.Message) {
	tok, msg := p.Lexer.Peek()

	if msg != nil {
		return 0, msg
	}

	if prec, ok := p.binaryPrecedence[tok.Symbol]; ok {
		return prec, nil
	}

	return 0, nil
}

// parseExpression implements precedence-climbing: it parses a prefix
// expression, then repeatedly folds in infix/postfix operators whose
// precedence exceeds `minPrec`. Left-associative operators recurse at their
// own precedence, so an equal-precedence operator is left to this loop;
// right-associative ones (assignment, ternary) recurse at precedence-1
func (p *Parser) parseExpression(minPrec int) (expr Expr, msg feedback.Message) {
	var tok Token

	if tok, msg = p.Lexer.Next(); msg != nil {
		return nil, msg
	}

	unary, ok := p.unaryParselets[tok.Symbol]
	if !ok {
		return nil, p.unexpected(tok, "expected an expression")
	}

	if expr, msg = unary(p, tok); msg != nil {
		return nil, msg
	}

	for {
		nextPrec, err := p.nextPrecedence()
		if err != nil {
			return nil, err
		}

		if nextPrec <= minPrec {
			break
		}

		if tok, msg = p.Lexer.Next(); msg != nil {
			return nil, msg
		}

		binary := p.binaryParselets[tok.Symbol]

		if expr, msg = binary(p, tok, expr); msg != nil {
			return nil, msg
		}
	}

	return expr, nil
}

func (p *Parser) unexpected(tok Token, desc string) feedback.Message {
	return feedback.Error{
		Classification: feedback.SyntaxError,
		File:           p.Lexer.Scanner.File,
		What: feedback.Selection{
			Description: fmt.Sprintf("%s, found '%s'", desc, tok.Lexeme),
			Span:        tok.Span,
		},
	}
}

// Parse produces a ProgramNode from the full token stream
func (p *Parser) Parse() (prog *ProgramNode, msg feedback.Message) {
	var stmts []Stmt

	for {
		if p.Lexer.PeekMatches(EOFSymbol) {
			break
		}

		var stmt Stmt
		if stmt, msg = p.parseStatement(); msg != nil {
			return &ProgramNode{Statements: stmts}, msg
		}

		stmts = append(stmts, stmt)
	}

	return &ProgramNode{Statements: stmts}, nil
}
