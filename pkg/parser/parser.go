// Package parser builds tiny syntax trees from lexer tokens by recursive
// descent.
package parser

import (
	"fmt"

	"tiny/interpreter-go/pkg/ast"
	"tiny/interpreter-go/pkg/lexer"
)

// ParseError reports a token that does not fit the grammar at its position.
type ParseError struct {
	Pos   lexer.Pos
	Token lexer.Token
	Index int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s (found %s at token %d)", e.Pos, e.Msg, e.Token, e.Index)
}

// Parser consumes a token sequence one statement at a time.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New returns a parser over tokens. The sequence is expected to end with an
// EOF token; reads past the end behave as EOF regardless.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// CurrentToken returns the token under the cursor, or EOF once exhausted.
func (p *Parser) CurrentToken() lexer.Token {
	return p.at(p.pos)
}

// AtEOF reports whether every statement has been consumed.
func (p *Parser) AtEOF() bool {
	return p.CurrentToken().Kind == lexer.EOF
}

// ParseProgram parses statements until EOF.
func ParseProgram(tokens []lexer.Token) ([]ast.Statement, error) {
	p := New(tokens)
	var stmts []ast.Statement
	for !p.AtEOF() {
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// ParseSource tokenizes and parses src. Lexer failures are returned as
// *lexer.LexError, grammar failures as *ParseError.
func ParseSource(src string) ([]ast.Statement, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return ParseProgram(tokens)
}
