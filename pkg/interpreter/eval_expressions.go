package interpreter

import (
	"errors"

	"tiny/interpreter-go/pkg/ast"
	"tiny/interpreter-go/pkg/runtime"
)

// Evaluate reduces expr to an integer. Comparisons yield 1 or 0.
func (i *Interpreter) Evaluate(expr ast.Expression) (int64, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return e.Value, nil
	case *ast.VariableRef:
		value, err := i.env.Get(e.Name)
		if err != nil {
			var undeclared *runtime.UndeclaredError
			if errors.As(err, &undeclared) {
				return 0, &RuntimeError{Msg: undeclared.Error(), Err: err}
			}
			return 0, err
		}
		return value, nil
	case *ast.BinaryOp:
		return i.evaluateBinary(e)
	case nil:
		return 0, runtimeErrorf("missing expression")
	default:
		return 0, runtimeErrorf("unknown expression type %T", expr)
	}
}

// EvaluateCondition judges expr as a boolean. In strict mode only a
// comparison is accepted.
func (i *Interpreter) EvaluateCondition(expr ast.Expression) (bool, error) {
	if bin, ok := expr.(*ast.BinaryOp); ok && bin.Operator.IsComparison() {
		value, err := i.evaluateBinary(bin)
		if err != nil {
			return false, err
		}
		return runtime.Truthy(value), nil
	}
	if i.conditions != ConditionsTruthy {
		return false, runtimeErrorf("cannot evaluate condition %s", describeCondition(expr))
	}
	value, err := i.Evaluate(expr)
	if err != nil {
		return false, err
	}
	return runtime.Truthy(value), nil
}

func (i *Interpreter) evaluateBinary(bin *ast.BinaryOp) (int64, error) {
	left, err := i.Evaluate(bin.Left)
	if err != nil {
		return 0, err
	}
	right, err := i.Evaluate(bin.Right)
	if err != nil {
		return 0, err
	}
	switch bin.Operator {
	case ast.OpAdd:
		return left + right, nil
	case ast.OpSub:
		return left - right, nil
	case ast.OpMul:
		return left * right, nil
	case ast.OpDiv:
		if right == 0 {
			return 0, runtimeErrorf("division by zero")
		}
		return left / right, nil
	case ast.OpMod:
		if right == 0 {
			return 0, runtimeErrorf("modulo by zero")
		}
		return left % right, nil
	case ast.OpEqual:
		return runtime.BoolValue(left == right), nil
	case ast.OpNotEqual:
		return runtime.BoolValue(left != right), nil
	case ast.OpLess:
		return runtime.BoolValue(left < right), nil
	case ast.OpLessEqual:
		return runtime.BoolValue(left <= right), nil
	case ast.OpGreater:
		return runtime.BoolValue(left > right), nil
	case ast.OpGreaterEqual:
		return runtime.BoolValue(left >= right), nil
	default:
		return 0, runtimeErrorf("unknown operator %q", string(bin.Operator))
	}
}

func describeCondition(expr ast.Expression) string {
	if expr == nil {
		return "<nil>"
	}
	return "'" + ast.FormatExpression(expr) + "' (expected a comparison)"
}
