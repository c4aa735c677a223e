package frontend

import (
	"fmt"
	"strings"

	"github.com/oyc-lang/oyc/feedback"
	"github.com/oyc-lang/oyc/source"
)

// Lexer structs maintain state during the lexical analysis of a chunk of
// source code, generating a sequence of Tokens. Unlike the teacher's Lexer,
// this grammar requires explicit `;` terminators, so no semicolon insertion
// bookkeeping is needed
type Lexer struct {
	Scanner    *Scanner
	peekBuffer []Token
	peekMsg    []feedback.Message
}

// NewLexer is a constructor function that takes a source file and returns a
// reference to a newly minted Lexer struct
func NewLexer(file *source.File) *Lexer {
	return &Lexer{Scanner: NewScanner(file)}
}

// threeCharOps and twoCharOps are tried (longest-match-first) before falling
// back to a single operator/punctuator rune
var threeCharOps = []string{"<<=", ">>="}

var twoCharOps = []string{
	"&&", "||", "==", "!=", "<=", ">=",
	"+=", "-=", "*=", "/=", "%=",
	"<<", ">>", "&=", "|=", "^=",
	"++", "--", "..",
}

const singleCharOps = "+-*/%<>&|^~!=?:,;()[]{}."

// Next returns the upcoming token and advances the Lexer
func (l *Lexer) Next() (tok Token, msg feedback.Message) {
	if len(l.peekBuffer) > 0 {
		tok, msg = l.peekBuffer[0], l.peekMsg[0]
		l.peekBuffer = l.peekBuffer[1:]
		l.peekMsg = l.peekMsg[1:]
		return tok, msg
	}

	return l.readNextToken()
}

// Peek returns the upcoming token without advancing the Lexer. Repeated
// calls to Peek return the same token until Next is called
func (l *Lexer) Peek() (tok Token, msg feedback.Message) {
	if len(l.peekBuffer) == 0 {
		tok, msg = l.readNextToken()
		l.peekBuffer = append(l.peekBuffer, tok)
		l.peekMsg = append(l.peekMsg, msg)
		return tok, msg
	}

	return l.peekBuffer[0], l.peekMsg[0]
}

// PeekMatches returns true if the upcoming token matches a given TokenSymbol
func (l *Lexer) PeekMatches(sym TokenSymbol) bool {
	tok, msg := l.Peek()
	return msg == nil && tok.Symbol == sym
}

// PeekAhead returns the token `n` positions ahead without advancing the
// Lexer (n=0 behaves like Peek). Used by the parser's one-token-lookahead
// disambiguation between closure literals, casts, and parenthesized
// expressions, all of which start with `(`
func (l *Lexer) PeekAhead(n int) (tok Token, msg feedback.Message) {
	for len(l.peekBuffer) <= n {
		t, m := l.readNextToken()
		l.peekBuffer = append(l.peekBuffer, t)
		l.peekMsg = append(l.peekMsg, m)
	}

	return l.peekBuffer[n], l.peekMsg[n]
}

// ExpectNext consumes and returns the next token if it matches the given
// TokenSymbol, otherwise it returns a syntax error
func (l *Lexer) ExpectNext(sym TokenSymbol) (tok Token, msg feedback.Message) {
	if tok, msg = l.Next(); msg != nil {
		return tok, msg
	}

	if tok.Symbol == sym {
		return tok, nil
	}

	return tok, l.unexpected(tok, fmt.Sprintf("expected '%s'", sym))
}

func (l *Lexer) unexpected(tok Token, desc string) feedback.Message {
	return feedback.Error{
		Classification: feedback.SyntaxError,
		File:           l.Scanner.File,
		What: feedback.Selection{
			Description: fmt.Sprintf("%s, found '%s'", desc, tok.Lexeme),
			Span:        tok.Span,
		},
	}
}

// readNextToken digests characters from the scanner and produces the next
// Token
func (l *Lexer) readNextToken() (tok Token, msg feedback.Message) {
	if msg := l.skipWhitespaceAndComments(); msg != nil {
		_, pos, _ := l.Scanner.Peek()
		return Token{EOFSymbol, "<EOF>", source.Span{Start: pos, End: pos}}, msg
	}

	r, pos, eof := l.Scanner.Peek()

	if eof {
		span := source.Span{Start: pos, End: pos}
		return Token{EOFSymbol, "<EOF>", span}, nil
	}

	switch {
	case isAlphabetical(r):
		return l.lexWord()
	case isNumeric(r):
		return l.lexNumber()
	case r == '"':
		return l.lexString()
	default:
		return l.lexOperatorOrPunct()
	}
}

// skipWhitespaceAndComments consumes whitespace, `//` line comments, and
// `/*...*/` block comments. An unterminated block comment consumes the rest
// of the file and is returned as a lexical error
func (l *Lexer) skipWhitespaceAndComments() feedback.Message {
	for {
		r, _, eof := l.Scanner.Peek()

		if eof {
			return nil
		}

		if isWhitespace(r) {
			l.Scanner.Next()
			continue
		}

		if r == '/' {
			peek := l.Scanner.PeekRunes(2)

			if len(peek) == 2 && peek[1] == '/' {
				for {
					r, _, eof := l.Scanner.Peek()
					if eof || r == '\n' {
						break
					}
					l.Scanner.Next()
				}
				continue
			}

			if len(peek) == 2 && peek[1] == '*' {
				_, start, _ := l.Scanner.Next()
				l.Scanner.Next()

				for {
					r, pos, eof := l.Scanner.Peek()

					if eof {
						return feedback.Error{
							Classification: feedback.LexicalError,
							File:           l.Scanner.File,
							What:           feedback.Selection{Description: "unterminated block comment", Span: source.Span{Start: start, End: pos}},
						}
					}

					if r == '*' {
						rest := l.Scanner.PeekRunes(2)
						if len(rest) == 2 && rest[1] == '/' {
							l.Scanner.Next()
							l.Scanner.Next()
							break
						}
					}

					l.Scanner.Next()
				}
				continue
			}
		}

		return nil
	}
}

// lexWord matches [A-Za-z_][A-Za-z0-9_]* and classifies the result as a
// keyword, boolean literal, or identifier
func (l *Lexer) lexWord() (tok Token, msg feedback.Message) {
	var span source.Span
	var lexeme strings.Builder

	r, pos, _ := l.Scanner.Next()
	span.Start, span.End = pos, pos
	lexeme.WriteRune(r)

	for {
		peek, peekPos, eof := l.Scanner.Peek()

		if eof || !isAlphaNumeric(peek) {
			break
		}

		l.Scanner.Next()
		lexeme.WriteRune(peek)
		span.End = peekPos
	}

	word := lexeme.String()

	var sym TokenSymbol
	switch {
	case isBoolKeyword(word):
		sym = BooleanSymbol
	case isKeyword(word):
		sym = TokenSymbol(word)
	default:
		sym = IdentSymbol
	}

	return Token{sym, word, span}, nil
}

// lexNumber matches an integer or floating-point literal. A literal
// containing `.` or an exponent is classified as a Decimal
func (l *Lexer) lexNumber() (tok Token, msg feedback.Message) {
	var span source.Span
	var lexeme strings.Builder
	sym := IntegerSymbol

	r, pos, _ := l.Scanner.Next()
	span.Start, span.End = pos, pos
	lexeme.WriteRune(r)

	consumeDigits := func() {
		for {
			peek, peekPos, eof := l.Scanner.Peek()
			if eof || !isNumeric(peek) {
				return
			}
			l.Scanner.Next()
			lexeme.WriteRune(peek)
			span.End = peekPos
		}
	}

	consumeDigits()

	if peek, _, eof := l.Scanner.Peek(); !eof && peek == '.' {
		// Don't consume a standalone `.` that isn't followed by a digit (the
		// range-ish `..` / member-access operators both start with `.`)
		if rest := l.Scanner.PeekRunes(2); len(rest) == 2 && isNumeric(rest[1]) {
			sym = DecimalSymbol
			_, dotPos, _ := l.Scanner.Next()
			lexeme.WriteRune('.')
			span.End = dotPos
			consumeDigits()
		}
	}

	if peek, _, eof := l.Scanner.Peek(); !eof && (peek == 'e' || peek == 'E') {
		rest := l.Scanner.PeekRunes(3)
		validExp := len(rest) >= 2 && (isNumeric(rest[1]) ||
			((rest[1] == '+' || rest[1] == '-') && len(rest) == 3 && isNumeric(rest[2])))

		if validExp {
			sym = DecimalSymbol
			_, ePos, _ := l.Scanner.Next()
			lexeme.WriteRune('e')
			span.End = ePos

			if peek, signPos, _ := l.Scanner.Peek(); peek == '+' || peek == '-' {
				l.Scanner.Next()
				lexeme.WriteRune(peek)
				span.End = signPos
			}

			consumeDigits()
		}
	}

	return Token{sym, lexeme.String(), span}, nil
}

// lexString matches a double-quoted string literal, processing the
// recognized escape sequences: \n \t \r \" \\ \0 and \xHH
func (l *Lexer) lexString() (tok Token, msg feedback.Message) {
	var span source.Span
	var value strings.Builder

	_, startPos, _ := l.Scanner.Next() // opening quote
	span.Start, span.End = startPos, startPos

	for {
		r, pos, eof := l.Scanner.Next()

		if eof {
			return Token{StringSymbol, value.String(), span}, feedback.Error{
				Classification: feedback.LexicalError,
				File:           l.Scanner.File,
				What: feedback.Selection{
					Description: "unterminated string literal",
					Span:        span,
				},
			}
		}

		span.End = pos

		if r == '"' {
			break
		}

		if r != '\\' {
			value.WriteRune(r)
			continue
		}

		esc, escPos, eof := l.Scanner.Next()

		if eof {
			return Token{StringSymbol, value.String(), span}, feedback.Error{
				Classification: feedback.LexicalError,
				File:           l.Scanner.File,
				What: feedback.Selection{
					Description: "unterminated string literal",
					Span:        span,
				},
			}
		}

		span.End = escPos

		switch esc {
		case 'n':
			value.WriteByte('\n')
		case 't':
			value.WriteByte('\t')
		case 'r':
			value.WriteByte('\r')
		case '"':
			value.WriteByte('"')
		case '\\':
			value.WriteByte('\\')
		case '0':
			value.WriteByte(0)
		case 'x':
			hi, hiPos, hiEOF := l.Scanner.Next()
			lo, loPos, loEOF := l.Scanner.Next()

			if hiEOF || loEOF || !isHexDigit(hi) || !isHexDigit(lo) {
				return Token{StringSymbol, value.String(), span}, feedback.Error{
					Classification: feedback.LexicalError,
					File:           l.Scanner.File,
					What: feedback.Selection{
						Description: "invalid \\x escape, expected two hex digits",
						Span:        source.Span{Start: escPos, End: loPos},
					},
				}
			}

			span.End = loPos
			value.WriteByte(byte(hexVal(hi)<<4 | hexVal(lo)))
			_ = hiPos
		default:
			return Token{StringSymbol, value.String(), span}, feedback.Error{
				Classification: feedback.LexicalError,
				File:           l.Scanner.File,
				What: feedback.Selection{
					Description: fmt.Sprintf("unknown escape sequence '\\%c'", esc),
					Span:        source.Span{Start: escPos, End: escPos},
				},
			}
		}
	}

	return Token{StringSymbol, value.String(), span}, nil
}

func hexVal(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	default:
		return int(r-'A') + 10
	}
}

// lexOperatorOrPunct greedily matches the longest known operator/punctuator
// lexeme starting at the scanner's current position
func (l *Lexer) lexOperatorOrPunct() (tok Token, msg feedback.Message) {
	peek3 := l.Scanner.PeekRunes(3)

	if len(peek3) == 3 {
		candidate := string(peek3)
		for _, op := range threeCharOps {
			if op == candidate {
				return l.takeLexeme(op)
			}
		}
	}

	if len(peek3) >= 2 {
		candidate := string(peek3[:2])
		for _, op := range twoCharOps {
			if op == candidate {
				return l.takeLexeme(op)
			}
		}
	}

	r, pos, eof := l.Scanner.Next()

	if eof || strings.IndexRune(singleCharOps, r) < 0 {
		span := source.Span{Start: pos, End: pos}
		return Token{UnknownSymbol, string(r), span}, feedback.Error{
			Classification: feedback.LexicalError,
			File:           l.Scanner.File,
			What: feedback.Selection{
				Description: fmt.Sprintf("unexpected character '%c'", r),
				Span:        span,
			},
		}
	}

	span := source.Span{Start: pos, End: pos}
	return Token{TokenSymbol(string(r)), string(r), span}, nil
}

// takeLexeme consumes exactly len(lexeme) runes (all already confirmed to
// match via PeekRunes) and returns them as a single token
func (l *Lexer) takeLexeme(lexeme string) (tok Token, msg feedback.Message) {
	var span source.Span

	for i, r := range []rune(lexeme) {
		_, pos, _ := l.Scanner.Next()
		if i == 0 {
			span.Start = pos
		}
		span.End = pos
		_ = r
	}

	return Token{TokenSymbol(lexeme), lexeme, span}, nil
}
