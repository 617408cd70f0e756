package checker

import "tiny/interpreter-go/pkg/ast"

func (c *Checker) checkBinaryOp(expr *ast.BinaryOp) ([]Diagnostic, Type) {
	leftDiags, leftType := c.checkExpression(expr.Left)
	rightDiags, rightType := c.checkExpression(expr.Right)
	diags := append(leftDiags, rightDiags...)

	switch expr.Operator {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		diags = append(diags, c.checkOperands(expr, leftType, rightType)...)
		if lit, ok := expr.Right.(*ast.NumberLiteral); ok && lit.Value == 0 {
			switch expr.Operator {
			case ast.OpDiv:
				diags = append(diags, errorf(expr, "division by zero"))
			case ast.OpMod:
				diags = append(diags, errorf(expr, "modulo by zero"))
			}
		}
		return diags, IntType
	case ast.OpEqual, ast.OpNotEqual:
		return diags, BoolType
	case ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual:
		diags = append(diags, c.checkOperands(expr, leftType, rightType)...)
		return diags, BoolType
	default:
		diags = append(diags, errorf(expr, "unknown operator %q", string(expr.Operator)))
		return diags, UnknownType
	}
}

// checkOperands warns when a comparison result feeds arithmetic or an
// ordering. Equality between truth values is left alone.
func (c *Checker) checkOperands(expr *ast.BinaryOp, left, right Type) []Diagnostic {
	var diags []Diagnostic
	if left == BoolType {
		diags = append(diags, warningf(expr, "left operand of '%s' is a comparison (%s)", expr.Operator, ast.FormatExpression(expr.Left)))
	}
	if right == BoolType {
		diags = append(diags, warningf(expr, "right operand of '%s' is a comparison (%s)", expr.Operator, ast.FormatExpression(expr.Right)))
	}
	return diags
}
