package interpreter

import (
	"context"
	"fmt"

	"tiny/interpreter-go/pkg/ast"
	"tiny/interpreter-go/pkg/driver"
	"tiny/interpreter-go/pkg/parser"
)

// Run executes stmts in order against the interpreter's environment. The
// context is checked before every statement and every loop iteration.
func (i *Interpreter) Run(ctx context.Context, stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("interrupted: %w", err)
		}
		outcome, err := i.execute(ctx, stmt)
		if err != nil {
			return err
		}
		if outcome == BreakLoop {
			return BreakOutsideLoopError{}
		}
	}
	return nil
}

// RunSource lexes, parses and runs src, keeping any variables it defines.
// Nothing runs when src fails to lex or parse.
func (i *Interpreter) RunSource(ctx context.Context, src string) error {
	stmts, err := parser.ParseSource(src)
	if err != nil {
		return err
	}
	return i.Run(ctx, stmts)
}

// RunSource runs src in a fresh interpreter configured by opts.
func RunSource(ctx context.Context, src string, opts Options) error {
	return NewWithOptions(opts).RunSource(ctx, src)
}

// EvaluateProgram runs every module of program in order in this
// interpreter. Errors are prefixed with the failing module's file.
func (i *Interpreter) EvaluateProgram(ctx context.Context, program *driver.Program) error {
	if program == nil {
		return fmt.Errorf("interpreter: program is nil")
	}
	for _, mod := range program.Modules {
		if mod == nil {
			continue
		}
		if err := i.Run(ctx, mod.AST); err != nil {
			if mod.Path == "" {
				return err
			}
			return fmt.Errorf("%s: %w", mod.Path, err)
		}
	}
	return nil
}
