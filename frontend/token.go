package frontend

import (
	"github.com/oyc-lang/oyc/source"
)

// TokenSymbol is the classification system for tokens. Identifier and literal
// tokens are represented by general token symbols (like "Ident") while operator
// and punctuator tokens are represented by their own lexeme
type TokenSymbol string

// Token structs represent a lexical atom and are tagged with a token symbol
// classification, the exact lexeme that was matched, and source code
// line/column data
type Token struct {
	Symbol TokenSymbol
	Lexeme string
	Span   source.Span
}

// General token symbols. Operator and punctuator tokens use their own lexeme
// as their symbol (e.g. the token for "+=" has Symbol TokenSymbol("+=")) so
// they aren't enumerated here
const (
	EOFSymbol     TokenSymbol = "EOF"
	UnknownSymbol TokenSymbol = "Unknown Token"
	IdentSymbol   TokenSymbol = "Identifier"
	IntegerSymbol TokenSymbol = "Integer"
	DecimalSymbol TokenSymbol = "Decimal"
	StringSymbol  TokenSymbol = "String"
	BooleanSymbol TokenSymbol = "Boolean"
)

// keywords recognized by the lexer. Each keyword lexeme doubles as its own
// TokenSymbol, matching the convention used for operators and punctuators
var keywords = []string{
	"null", "true", "false", "auto",
	"if", "else", "while", "do", "for", "foreach",
	"switch", "case", "default", "break", "continue", "return",
	"struct", "typeof", "sizeof", "delete", "require",
	"int", "float", "str", "bool",
}

// isBoolKeyword reports whether the lexeme is one of the two boolean literals
func isBoolKeyword(lexeme string) bool {
	return lexeme == "true" || lexeme == "false"
}
