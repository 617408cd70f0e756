// Package checker is a static flow and lint pass over tiny programs. It finds
// statements that are certain to fail, or are likely mistakes, before a
// program runs. tiny has a single value type, so there is no type checking
// beyond telling comparisons from integers.
package checker

import (
	"fmt"
	"strings"

	"tiny/interpreter-go/pkg/ast"
)

// Severity ranks a diagnostic.
type Severity int

const (
	// SeverityError marks code that fails whenever it executes.
	SeverityError Severity = iota
	// SeverityWarning marks code that runs but is probably not what was meant.
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic represents a checking error or warning.
type Diagnostic struct {
	Severity Severity
	Message  string
	Node     ast.Node
}

// Options tunes the checker to the interpreter settings the program will
// run with.
type Options struct {
	// TruthyConditions accepts bare expressions as if/while conditions.
	TruthyConditions bool
}

// Checker traverses tiny statements and records diagnostics. Definitions
// persist across calls so modules checked in run order share globals.
type Checker struct {
	opts      Options
	global    *Environment
	pkg       string
	loopDepth int
}

// New returns a checker instance.
func New(opts Options) *Checker {
	return &Checker{opts: opts, global: NewEnvironment()}
}

// Environment exposes the names defined so far.
func (c *Checker) Environment() *Environment {
	return c.global
}

// SetPackage attributes subsequent definitions to pkg.
func (c *Checker) SetPackage(pkg string) {
	c.pkg = pkg
}

// CheckStatements checks stmts in order. A name counts as defined once any
// earlier statement, including one inside an if or while body, assigns it.
func (c *Checker) CheckStatements(stmts []ast.Statement) []Diagnostic {
	c.loopDepth = 0
	var diags []Diagnostic
	for _, stmt := range stmts {
		diags = append(diags, c.checkStatement(stmt)...)
	}
	return diags
}

func (c *Checker) checkStatement(stmt ast.Statement) []Diagnostic {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		diags, _ := c.checkExpression(s.Initializer)
		c.global.Define(s.Name, c.pkg)
		return diags
	case *ast.Assignment:
		diags, _ := c.checkExpression(s.Value)
		c.global.Define(s.Name, c.pkg)
		return diags
	case *ast.Print:
		diags, _ := c.checkExpression(s.Expression)
		return diags
	case *ast.If:
		diags := c.checkCondition(s.Condition)
		return append(diags, c.checkBlock(s.ThenBranch)...)
	case *ast.While:
		diags := c.checkCondition(s.Condition)
		c.loopDepth++
		diags = append(diags, c.checkBlock(s.Body)...)
		c.loopDepth--
		return diags
	case *ast.Break:
		if c.loopDepth == 0 {
			return []Diagnostic{errorf(s, "break outside loop")}
		}
		return nil
	default:
		return []Diagnostic{errorf(stmt, "unsupported statement %T", stmt)}
	}
}

func (c *Checker) checkBlock(body []ast.Statement) []Diagnostic {
	var diags []Diagnostic
	for _, stmt := range body {
		diags = append(diags, c.checkStatement(stmt)...)
	}
	return diags
}

func (c *Checker) checkCondition(cond ast.Expression) []Diagnostic {
	diags, typ := c.checkExpression(cond)
	if typ == IntType && !c.opts.TruthyConditions {
		diags = append(diags, errorf(cond, "cannot evaluate condition '%s' (expected a comparison)", ast.FormatExpression(cond)))
	}
	return diags
}

func (c *Checker) checkExpression(expr ast.Expression) ([]Diagnostic, Type) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return nil, IntType
	case *ast.VariableRef:
		if _, ok := c.global.Lookup(e.Name); !ok {
			return []Diagnostic{errorf(e, "undeclared variable '%s'", e.Name)}, IntType
		}
		return nil, IntType
	case *ast.BinaryOp:
		return c.checkBinaryOp(e)
	case nil:
		return []Diagnostic{errorf(nil, "missing expression")}, UnknownType
	default:
		return []Diagnostic{errorf(expr, "unsupported expression %T", expr)}, UnknownType
	}
}

func errorf(node ast.Node, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...), Node: node}
}

func warningf(node ast.Node, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...), Node: node}
}

// DescribeNode renders the first line of node's source form.
func DescribeNode(node ast.Node) string {
	switch n := node.(type) {
	case ast.Expression:
		return ast.FormatExpression(n)
	case ast.Statement:
		text := ast.Format([]ast.Statement{n})
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSuffix(text, " {}")
		return strings.TrimSuffix(text, " {")
	default:
		return ""
	}
}
