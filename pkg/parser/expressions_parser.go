package parser

import (
	"strconv"

	"tiny/interpreter-go/pkg/ast"
	"tiny/interpreter-go/pkg/lexer"
)

var infixOperators = map[lexer.Kind]ast.Operator{
	lexer.Plus:         ast.OpAdd,
	lexer.Minus:        ast.OpSub,
	lexer.Star:         ast.OpMul,
	lexer.Slash:        ast.OpDiv,
	lexer.Percent:      ast.OpMod,
	lexer.EqualEqual:   ast.OpEqual,
	lexer.BangEqual:    ast.OpNotEqual,
	lexer.LessThan:     ast.OpLess,
	lexer.LessEqual:    ast.OpLessEqual,
	lexer.GreaterThan:  ast.OpGreater,
	lexer.GreaterEqual: ast.OpGreaterEqual,
}

// parseCondition allows at most one comparison; a bare expression is kept
// as-is and judged by the evaluator.
func (p *Parser) parseCondition() (ast.Expression, error) {
	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.CurrentToken().Kind.IsComparison() {
		return left, nil
	}
	op := infixOperators[p.advance().Kind]
	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewBinaryOp(left, op, right), nil
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseLeftAssoc(p.parseTerm, lexer.Plus, lexer.Minus)
}

func (p *Parser) parseTerm() (ast.Expression, error) {
	return p.parseLeftAssoc(p.parseFactor, lexer.Star, lexer.Slash, lexer.Percent)
}

// parseLeftAssoc folds operand (op operand)* into a left-leaning tree.
func (p *Parser) parseLeftAssoc(operand func() (ast.Expression, error), kinds ...lexer.Kind) (ast.Expression, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for matchesKind(p.CurrentToken().Kind, kinds) {
		op := infixOperators[p.advance().Kind]
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(left, op, right)
	}
	return left, nil
}

func (p *Parser) parseFactor() (ast.Expression, error) {
	tok := p.CurrentToken()
	switch tok.Kind {
	case lexer.Number:
		value, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, p.errorf("integer literal out of range")
		}
		p.advance()
		return ast.NewNumberLiteral(value), nil
	case lexer.Identifier:
		p.advance()
		return ast.NewVariableRef(tok.Text), nil
	case lexer.LParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')' to close parenthesized expression"); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, p.errorf("expected number, identifier or '('")
	}
}

func matchesKind(kind lexer.Kind, kinds []lexer.Kind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
