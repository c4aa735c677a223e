package frontend

import (
	"unicode/utf8"

	"github.com/oyc-lang/oyc/source"
)

// Scanner structs hold the state of a scanner instance which consumes source
// code runes one at a time. Since source code documents can be Unicode, the
// scanner must keep track of each rune's byte offset. The scanner also records
// line and column data which it emits along with each rune.
//
// The first character in each line is considered to be in column 1. A newline
// at the end of a line with N characters is considered to be in column N+1.
type Scanner struct {
	File     *source.File
	nextByte int // initialized to 0
	nextLine int // ...  ...  ...  1
	nextCol  int // ...  ...  ...  1
}

// NewScanner is a basic constructor function for Scanners which populates
// private fields with the appropriate starting values
func NewScanner(file *source.File) *Scanner {
	return &Scanner{
		File:     file,
		nextByte: 0,
		nextLine: 1,
		nextCol:  1,
	}
}

// AtEOF reports whether the scanner has consumed the entire file
func (s *Scanner) AtEOF() bool {
	return s.nextByte >= len(s.File.Contents)
}

// PeekRunes returns up to n runes starting at the scanner's current position
// without advancing it. Fewer than n runes are returned near EOF
func (s *Scanner) PeekRunes(n int) []rune {
	out := make([]rune, 0, n)
	offset := s.nextByte

	for i := 0; i < n && offset < len(s.File.Contents); i++ {
		r, width := utf8.DecodeRuneInString(s.File.Contents[offset:])
		out = append(out, r)
		offset += width
	}

	return out
}

// Peek returns the upcoming rune and its position without advancing the
// scanner. Peeking at EOF returns the zero rune with eof set to true
func (s *Scanner) Peek() (r rune, pos source.Pos, eof bool) {
	pos = source.Pos{Line: s.nextLine, Col: s.nextCol}

	if s.AtEOF() {
		return 0, pos, true
	}

	runeValue, _ := utf8.DecodeRuneInString(s.File.Contents[s.nextByte:])
	return runeValue, pos, false
}

// Next returns the upcoming rune and its position, then permanently advances
// the scanner past that rune. Calling Next at EOF returns the zero rune with
// eof set to true and does not advance further
func (s *Scanner) Next() (r rune, pos source.Pos, eof bool) {
	pos = source.Pos{Line: s.nextLine, Col: s.nextCol}

	if s.AtEOF() {
		return 0, pos, true
	}

	runeValue, runeWidth := utf8.DecodeRuneInString(s.File.Contents[s.nextByte:])

	if runeValue == '\n' {
		s.nextLine++
		s.nextCol = 1
	} else {
		s.nextCol++
	}

	s.nextByte += runeWidth

	return runeValue, pos, false
}
