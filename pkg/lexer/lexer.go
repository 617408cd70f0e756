// Package lexer turns tiny source text into tokens.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// LexError reports a character the lexer does not recognise.
type LexError struct {
	Pos  Pos
	Char rune
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Lexer scans source text left to right with one character of lookahead.
type Lexer struct {
	src    string
	offset int
	line   int
	column int
}

// New returns a lexer positioned at the start of src.
func New(src string) *Lexer {
	return &Lexer{src: src, line: 1, column: 1}
}

// Tokenize is shorthand for New(src).Tokenize().
func Tokenize(src string) ([]Token, error) {
	return New(src).Tokenize()
}

// Tokenize scans the whole input. The result always ends with exactly one
// EOF token. Scanning stops at the first unrecognised character.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for l.offset < len(l.src) {
		pos := l.pos()
		ch := l.peek()
		switch {
		case unicode.IsSpace(ch):
			l.advance()
		case isDigit(ch):
			start := l.offset
			for isDigit(l.peek()) {
				l.advance()
			}
			tokens = append(tokens, Token{Kind: Number, Text: l.src[start:l.offset], Pos: pos})
		case unicode.IsLetter(ch):
			start := l.offset
			for r := l.peek(); unicode.IsLetter(r) || unicode.IsDigit(r); r = l.peek() {
				l.advance()
			}
			tokens = append(tokens, classifyWord(l.src[start:l.offset], pos))
		default:
			tok, err := l.operator(pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		}
	}
	tokens = append(tokens, Token{Kind: EOF, Pos: l.pos()})
	return tokens, nil
}

func classifyWord(word string, pos Pos) Token {
	if _, ok := keywords[word]; ok {
		return Token{Kind: Keyword, Text: word, Pos: pos}
	}
	if word == "break" {
		return Token{Kind: Break, Text: word, Pos: pos}
	}
	return Token{Kind: Identifier, Text: word, Pos: pos}
}

var singleChar = map[rune]Kind{
	'+': Plus,
	'-': Minus,
	'*': Star,
	'/': Slash,
	'%': Percent,
	'(': LParen,
	')': RParen,
	'{': LBrace,
	'}': RBrace,
}

func (l *Lexer) operator(pos Pos) (Token, error) {
	ch := l.advance()
	if kind, ok := singleChar[ch]; ok {
		return Token{Kind: kind, Text: string(ch), Pos: pos}, nil
	}
	withEq := func(bare, eq Kind) Token {
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: eq, Text: string(ch) + "=", Pos: pos}
		}
		return Token{Kind: bare, Text: string(ch), Pos: pos}
	}
	switch ch {
	case '=':
		return withEq(Eq, EqualEqual), nil
	case '<':
		return withEq(LessThan, LessEqual), nil
	case '>':
		return withEq(GreaterThan, GreaterEqual), nil
	case '!':
		if l.peek() == '=' {
			l.advance()
			return Token{Kind: BangEqual, Text: "!=", Pos: pos}, nil
		}
		return Token{}, &LexError{Pos: pos, Char: ch, Msg: "unexpected character '!' (expected '!=')"}
	}
	return Token{}, &LexError{Pos: pos, Char: ch, Msg: fmt.Sprintf("unexpected character %q", ch)}
}

func (l *Lexer) pos() Pos {
	return Pos{Offset: l.offset, Line: l.line, Column: l.column}
}

func (l *Lexer) peek() rune {
	if l.offset >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
	return r
}

func (l *Lexer) advance() rune {
	if l.offset >= len(l.src) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(l.src[l.offset:])
	l.offset += size
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
