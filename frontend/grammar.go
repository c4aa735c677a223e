package frontend

// grammar holds a collection of rune/lexeme classification helpers shared by
// the lexer. Unlike the teacher's Grammar (which carried per-parser operator
// rune lists to support multiple embedded languages), this language has a
// single fixed C-flavored grammar, so the classifiers are plain functions.

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isAlphabetical(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isNumeric(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlphaNumeric(r rune) bool {
	return isAlphabetical(r) || isNumeric(r)
}

func isHexDigit(r rune) bool {
	return isNumeric(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// isKeyword returns true if the given lexeme is one of the language's
// reserved words
func isKeyword(s string) bool {
	for _, kw := range keywords {
		if kw == s {
			return true
		}
	}

	return false
}
