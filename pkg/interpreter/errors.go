package interpreter

import (
	"errors"
	"fmt"

	"tiny/interpreter-go/pkg/lexer"
	"tiny/interpreter-go/pkg/parser"
)

// RuntimeError aborts evaluation of the remaining program.
type RuntimeError struct {
	Msg string
	Err error
}

func (e *RuntimeError) Error() string {
	return e.Msg
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func runtimeErrorf(format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// BreakOutsideLoopError reports a break that was executed with no enclosing
// while loop.
type BreakOutsideLoopError struct{}

func (BreakOutsideLoopError) Error() string {
	return "break outside loop"
}

// Error stages reported by Stage.
const (
	StageLex     = "lex"
	StageParse   = "parse"
	StageRuntime = "runtime"
	StageBreak   = "break"
)

// Stage classifies err by the pipeline stage that produced it. It returns
// the empty string for errors that belong to no stage, such as I/O failures
// or cancellation.
func Stage(err error) string {
	var lexErr *lexer.LexError
	var parseErr *parser.ParseError
	var runtimeErr *RuntimeError
	var breakErr BreakOutsideLoopError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &lexErr):
		return StageLex
	case errors.As(err, &parseErr):
		return StageParse
	case errors.As(err, &breakErr):
		return StageBreak
	case errors.As(err, &runtimeErr):
		return StageRuntime
	default:
		return ""
	}
}

// DescribeError renders err with its stage prefix, e.g. "parse error: ...".
func DescribeError(err error) string {
	switch stage := Stage(err); stage {
	case "":
		return err.Error()
	case StageBreak:
		return "runtime error: " + err.Error()
	default:
		return stage + " error: " + err.Error()
	}
}
