// Package interpreter executes tiny syntax trees against a flat variable
// environment.
package interpreter

import (
	"fmt"
	"io"
	"strings"

	"tiny/interpreter-go/pkg/runtime"
)

// ConditionMode selects how if/while conditions are judged.
type ConditionMode int

const (
	// ConditionsStrict accepts only a comparison as a condition.
	ConditionsStrict ConditionMode = iota
	// ConditionsTruthy also accepts a bare expression; nonzero is true.
	ConditionsTruthy
)

func (m ConditionMode) String() string {
	switch m {
	case ConditionsStrict:
		return "strict"
	case ConditionsTruthy:
		return "truthy"
	default:
		return fmt.Sprintf("ConditionMode(%d)", int(m))
	}
}

// ParseConditionMode maps a configuration string to a mode. The empty string
// selects the strict default.
func ParseConditionMode(value string) (ConditionMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "strict":
		return ConditionsStrict, nil
	case "truthy":
		return ConditionsTruthy, nil
	default:
		return ConditionsStrict, fmt.Errorf("unknown condition mode %q (expected strict or truthy)", value)
	}
}

// Options configures a new interpreter.
type Options struct {
	Stdout     io.Writer
	Conditions ConditionMode
	Trace      io.Writer
}

// Interpreter drives evaluation of tiny statements. A single instance keeps
// its environment across runs; use a fresh one for an independent program.
type Interpreter struct {
	env        *runtime.Environment
	out        io.Writer
	conditions ConditionMode
	trace      io.Writer
}

// New returns an interpreter printing to out with strict conditions.
func New(out io.Writer) *Interpreter {
	return NewWithOptions(Options{Stdout: out})
}

// NewWithOptions returns an interpreter configured by opts. A nil Stdout
// discards program output.
func NewWithOptions(opts Options) *Interpreter {
	out := opts.Stdout
	if out == nil {
		out = io.Discard
	}
	return &Interpreter{
		env:        runtime.NewEnvironment(),
		out:        out,
		conditions: opts.Conditions,
		trace:      opts.Trace,
	}
}

// Environment exposes the variable store.
func (i *Interpreter) Environment() *runtime.Environment {
	return i.env
}

// ConditionMode reports the active condition mode.
func (i *Interpreter) ConditionMode() ConditionMode {
	return i.conditions
}

// SetConditionMode switches condition handling for subsequent statements.
func (i *Interpreter) SetConditionMode(mode ConditionMode) {
	i.conditions = mode
}

// SetTrace installs a writer that receives one line per executed statement.
// A nil writer disables tracing.
func (i *Interpreter) SetTrace(w io.Writer) {
	i.trace = w
}
