package parser

import (
	"tiny/interpreter-go/pkg/ast"
	"tiny/interpreter-go/pkg/lexer"
)

// ParseStatement parses exactly one statement starting at the current token.
func (p *Parser) ParseStatement() (ast.Statement, error) {
	tok := p.CurrentToken()
	switch {
	case tok.Is(lexer.Keyword, "var"):
		return p.parseVarDeclaration()
	case tok.Is(lexer.Keyword, "while"):
		return p.parseWhile()
	case tok.Is(lexer.Keyword, "if"):
		return p.parseIf()
	case tok.Is(lexer.Identifier, "print"):
		return p.parsePrint()
	case tok.Kind == lexer.Identifier && p.peek().Kind == lexer.Eq:
		return p.parseAssignment()
	case tok.Kind == lexer.Break:
		p.advance()
		return ast.NewBreak(), nil
	case tok.Kind == lexer.EOF:
		return nil, p.errorf("expected statement")
	default:
		return nil, p.errorf("unexpected token at start of statement")
	}
}

func (p *Parser) parseVarDeclaration() (ast.Statement, error) {
	p.advance()
	name, err := p.expect(lexer.Identifier, "variable name after 'var'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Eq, "'=' after variable name"); err != nil {
		return nil, err
	}
	init, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewVarDeclaration(name.Text, init), nil
}

func (p *Parser) parseAssignment() (ast.Statement, error) {
	name := p.advance()
	p.advance()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewAssignment(name.Text, value), nil
}

func (p *Parser) parsePrint() (ast.Statement, error) {
	p.advance()
	if _, err := p.expect(lexer.LParen, "'(' after print"); err != nil {
		return nil, err
	}
	expr, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "')' to close print"); err != nil {
		return nil, err
	}
	return ast.NewPrint(expr), nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	p.advance()
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewIf(cond, body), nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	p.advance()
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(cond, body), nil
}

// parseBlock reads '{' statement* '}'. An empty block yields a nil slice.
func (p *Parser) parseBlock() ([]ast.Statement, error) {
	if _, err := p.expect(lexer.LBrace, "'{' to open block"); err != nil {
		return nil, err
	}
	var body []ast.Statement
	for {
		switch p.CurrentToken().Kind {
		case lexer.RBrace:
			p.advance()
			return body, nil
		case lexer.EOF:
			return nil, p.errorf("unterminated block")
		}
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
}
