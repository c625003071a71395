// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package parser

import "strings"

// tokenType is the type of a lexical token.
type tokenType int

const (
	tokEOF tokenType = iota
	tokIdentifier
	tokNumber
	tokString
	tokBool
	tokLParen
	tokRParen
	tokComma
	tokDot
	tokLBrace
	tokRBrace
	tokTemplateStart
	tokTemplateEnd
	tokInvalid
)

var tokenNames = map[tokenType]string{
	tokEOF:           "end of string",
	tokIdentifier:    "identifier",
	tokNumber:        "number",
	tokString:        "string",
	tokBool:          "bool",
	tokLParen:        "(",
	tokRParen:        ")",
	tokComma:         ",",
	tokDot:           ".",
	tokLBrace:        "{",
	tokRBrace:        "}",
	tokTemplateStart: "templateStart",
	tokTemplateEnd:   "templateEnd",
	tokInvalid:       "invalid character",
}

func (t tokenType) String() string { return tokenNames[t] }

// token is a lexical token.
type token struct {
	Type     tokenType
	Value    string
	Pos      int
	Unclosed bool // Unterminated string literal.
}

var punctuation = map[byte]tokenType{
	'(': tokLParen,
	')': tokRParen,
	',': tokComma,
	'.': tokDot,
	'{': tokLBrace,
	'}': tokRBrace,
}

// lexer splits a target expression into tokens.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer { return &lexer{input: input} }

// tokenize returns all tokens, not including a final EOF token.
func (l *lexer) tokenize() []token {
	var tokens []token
	for {
		t := l.next()
		if t.Type == tokEOF {
			return tokens
		}
		tokens = append(tokens, t)
	}
}

func (l *lexer) next() token {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{Type: tokEOF, Pos: l.pos}
	}
	start := l.pos
	ch := l.input[l.pos]
	switch {
	case strings.HasPrefix(l.input[l.pos:], "[["):
		l.pos += 2
		return token{Type: tokTemplateStart, Value: "[[", Pos: start}
	case strings.HasPrefix(l.input[l.pos:], "]]"):
		l.pos += 2
		return token{Type: tokTemplateEnd, Value: "]]", Pos: start}
	case ch == '\'' || ch == '"':
		return l.readString(ch)
	case isDigit(ch) || ((ch == '-' || ch == '+') && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])):
		return l.readNumber()
	case isIdentChar(ch):
		return l.readIdentifier(start)
	}
	if t, ok := punctuation[ch]; ok {
		l.pos++
		return token{Type: t, Value: string(ch), Pos: start}
	}
	l.pos++
	return token{Type: tokInvalid, Value: string(ch), Pos: start}
}

func (l *lexer) readString(quote byte) token {
	start := l.pos
	l.pos++ // Opening quote
	b := &strings.Builder{}
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\\' && l.pos+1 < len(l.input):
			b.WriteByte(l.input[l.pos+1])
			l.pos += 2
		case ch == quote:
			l.pos++
			return token{Type: tokString, Value: b.String(), Pos: start}
		default:
			b.WriteByte(ch)
			l.pos++
		}
	}
	return token{Type: tokString, Value: b.String(), Pos: start, Unclosed: true}
}

// readNumber reads a decimal number.
// A number immediately followed by identifier characters is an identifier, e.g. "25m" or "1h".
func (l *lexer) readNumber() token {
	start := l.pos
	l.pos++ // Sign or first digit
	l.skipDigits()
	if l.identContinues() {
		return l.readIdentifier(start)
	}
	intEnd := l.pos
	if l.pos+1 < len(l.input) && l.input[l.pos] == '.' && isDigit(l.input[l.pos+1]) {
		l.pos++
		l.skipDigits()
		if l.identContinues() { // "10.20abc" is number "10" then ".20abc"
			l.pos = intEnd
		}
	}
	return token{Type: tokNumber, Value: l.input[start:l.pos], Pos: start}
}

func (l *lexer) readIdentifier(start int) token {
	for l.identContinues() {
		l.pos++
	}
	value := l.input[start:l.pos]
	if value == "true" || value == "false" {
		return token{Type: tokBool, Value: value, Pos: start}
	}
	return token{Type: tokIdentifier, Value: value, Pos: start}
}

func (l *lexer) skipDigits() {
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
}

// identContinues is true if the next character can continue an identifier.
func (l *lexer) identContinues() bool {
	if l.pos >= len(l.input) || !isIdentChar(l.input[l.pos]) {
		return false
	}
	rest := l.input[l.pos:]
	return !strings.HasPrefix(rest, "[[") && !strings.HasPrefix(rest, "]]")
}

func isSpace(ch byte) bool { return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' }
func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// isIdentChar is true for characters allowed in metric names and function names.
func isIdentChar(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', isDigit(ch), ch >= 0x80:
		return true
	}
	return strings.IndexByte("_-*?[]$:@%^&/=<>!~|#", ch) >= 0
}
