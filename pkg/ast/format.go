package ast

import (
	"strconv"
	"strings"
)

const indentUnit = "    "

// Format renders statements as canonical tiny source: one statement per
// line, block bodies indented, and only the parentheses that precedence and
// left associativity require. Parsing the result yields an identical tree.
func Format(stmts []Statement) string {
	var b strings.Builder
	for _, stmt := range stmts {
		formatStatement(&b, stmt, 0)
	}
	return b.String()
}

// FormatExpression renders a single expression.
func FormatExpression(expr Expression) string {
	var b strings.Builder
	formatExpression(&b, expr, 0)
	return b.String()
}

func formatStatement(b *strings.Builder, stmt Statement, depth int) {
	b.WriteString(strings.Repeat(indentUnit, depth))
	switch s := stmt.(type) {
	case *VarDeclaration:
		b.WriteString("var ")
		b.WriteString(s.Name)
		b.WriteString(" = ")
		formatExpression(b, s.Initializer, 0)
	case *Assignment:
		b.WriteString(s.Name)
		b.WriteString(" = ")
		formatExpression(b, s.Value, 0)
	case *Print:
		b.WriteString("print(")
		formatExpression(b, s.Expression, 0)
		b.WriteString(")")
	case *If:
		b.WriteString("if ")
		formatExpression(b, s.Condition, 0)
		formatBlock(b, s.ThenBranch, depth)
	case *While:
		b.WriteString("while ")
		formatExpression(b, s.Condition, 0)
		formatBlock(b, s.Body, depth)
	case *Break:
		b.WriteString("break")
	}
	b.WriteString("\n")
}

func formatBlock(b *strings.Builder, body []Statement, depth int) {
	if len(body) == 0 {
		b.WriteString(" {}")
		return
	}
	b.WriteString(" {\n")
	for _, stmt := range body {
		formatStatement(b, stmt, depth+1)
	}
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteString("}")
}

// formatExpression parenthesizes a binary operation whose precedence is
// below minPrec. Right operands demand one level more than their parent so
// that a - (b - c) keeps its grouping.
func formatExpression(b *strings.Builder, expr Expression, minPrec int) {
	switch e := expr.(type) {
	case *NumberLiteral:
		b.WriteString(strconv.FormatInt(e.Value, 10))
	case *VariableRef:
		b.WriteString(e.Name)
	case *BinaryOp:
		prec := e.Operator.Precedence()
		wrap := prec < minPrec || prec == 0
		if wrap {
			b.WriteString("(")
		}
		formatExpression(b, e.Left, prec)
		b.WriteString(" ")
		b.WriteString(string(e.Operator))
		b.WriteString(" ")
		formatExpression(b, e.Right, prec+1)
		if wrap {
			b.WriteString(")")
		}
	}
}
