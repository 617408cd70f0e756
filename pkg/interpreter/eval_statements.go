package interpreter

import (
	"context"
	"fmt"

	"tiny/interpreter-go/pkg/ast"
	"tiny/interpreter-go/pkg/runtime"
)

// Outcome tells the caller of Execute how control leaves a statement.
type Outcome int

const (
	// Normal means control falls through to the next statement.
	Normal Outcome = iota
	// BreakLoop means a break is unwinding to the nearest enclosing loop.
	BreakLoop
)

func (o Outcome) String() string {
	if o == BreakLoop {
		return "break"
	}
	return "normal"
}

// Execute applies one statement. A break that is not consumed by a loop
// inside stmt is reported as BreakLoop rather than an error.
func (i *Interpreter) Execute(stmt ast.Statement) (Outcome, error) {
	return i.execute(context.Background(), stmt)
}

func (i *Interpreter) execute(ctx context.Context, stmt ast.Statement) (Outcome, error) {
	i.traceStatement(stmt)
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		value, err := i.Evaluate(s.Initializer)
		if err != nil {
			return Normal, err
		}
		i.env.Define(s.Name, value)
		return Normal, nil
	case *ast.Assignment:
		value, err := i.Evaluate(s.Value)
		if err != nil {
			return Normal, err
		}
		i.env.Assign(s.Name, value)
		return Normal, nil
	case *ast.Print:
		value, err := i.Evaluate(s.Expression)
		if err != nil {
			return Normal, err
		}
		if _, err := fmt.Fprintln(i.out, runtime.FormatValue(value)); err != nil {
			return Normal, fmt.Errorf("print: %w", err)
		}
		return Normal, nil
	case *ast.If:
		ok, err := i.EvaluateCondition(s.Condition)
		if err != nil || !ok {
			return Normal, err
		}
		return i.executeBlock(ctx, s.ThenBranch)
	case *ast.While:
		return i.executeWhile(ctx, s)
	case *ast.Break:
		return BreakLoop, nil
	case nil:
		return Normal, runtimeErrorf("missing statement")
	default:
		return Normal, runtimeErrorf("unknown statement type %T", stmt)
	}
}

// executeBlock runs body in order and stops at the first break.
func (i *Interpreter) executeBlock(ctx context.Context, body []ast.Statement) (Outcome, error) {
	for _, stmt := range body {
		outcome, err := i.execute(ctx, stmt)
		if err != nil || outcome == BreakLoop {
			return outcome, err
		}
	}
	return Normal, nil
}

func (i *Interpreter) executeWhile(ctx context.Context, loop *ast.While) (Outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Normal, fmt.Errorf("interrupted: %w", err)
		}
		ok, err := i.EvaluateCondition(loop.Condition)
		if err != nil {
			return Normal, err
		}
		if !ok {
			return Normal, nil
		}
		outcome, err := i.executeBlock(ctx, loop.Body)
		if err != nil {
			return Normal, err
		}
		if outcome == BreakLoop {
			return Normal, nil
		}
	}
}

func (i *Interpreter) traceStatement(stmt ast.Statement) {
	if i.trace == nil {
		return
	}
	var line string
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		line = "var " + s.Name + " = " + ast.FormatExpression(s.Initializer)
	case *ast.Assignment:
		line = s.Name + " = " + ast.FormatExpression(s.Value)
	case *ast.Print:
		line = "print(" + ast.FormatExpression(s.Expression) + ")"
	case *ast.If:
		line = "if " + ast.FormatExpression(s.Condition)
	case *ast.While:
		line = "while " + ast.FormatExpression(s.Condition)
	case *ast.Break:
		line = "break"
	default:
		line = fmt.Sprintf("%T", stmt)
	}
	fmt.Fprintf(i.trace, "trace: %s\n", line)
}
