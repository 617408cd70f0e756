package parser

import (
	"fmt"

	"tiny/interpreter-go/pkg/lexer"
)

func (p *Parser) at(index int) lexer.Token {
	if index < len(p.tokens) {
		return p.tokens[index]
	}
	eof := lexer.Token{Kind: lexer.EOF}
	if n := len(p.tokens); n > 0 {
		eof.Pos = p.tokens[n-1].Pos
	}
	return eof
}

// peek returns the token after the current one.
func (p *Parser) peek() lexer.Token {
	return p.at(p.pos + 1)
}

func (p *Parser) advance() lexer.Token {
	tok := p.CurrentToken()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes a token of the given kind or fails with what it wanted.
func (p *Parser) expect(kind lexer.Kind, what string) (lexer.Token, error) {
	tok := p.CurrentToken()
	if tok.Kind != kind {
		return tok, p.errorf("expected %s", what)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...interface{}) *ParseError {
	tok := p.CurrentToken()
	return &ParseError{
		Pos:   tok.Pos,
		Token: tok,
		Index: p.pos,
		Msg:   fmt.Sprintf(format, args...),
	}
}
