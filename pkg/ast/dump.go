package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented, human-readable tree of stmts to w.
func Dump(w io.Writer, stmts []Statement) error {
	d := &dumper{w: w}
	for _, stmt := range stmts {
		d.node(stmt)
	}
	return d.err
}

type dumper struct {
	w      io.Writer
	indent int
	err    error
}

func (d *dumper) printf(format string, args ...interface{}) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", d.indent), fmt.Sprintf(format, args...))
}

func (d *dumper) node(node Node) {
	switch n := node.(type) {
	case *NumberLiteral:
		d.printf("NumberLiteral %d", n.Value)
	case *VariableRef:
		d.printf("VariableRef %s", n.Name)
	case *BinaryOp:
		d.printf("BinaryOp %s", n.Operator)
		d.indent++
		d.node(n.Left)
		d.node(n.Right)
		d.indent--
	case *VarDeclaration:
		d.printf("VarDeclaration %s", n.Name)
		d.indent++
		d.node(n.Initializer)
		d.indent--
	case *Assignment:
		d.printf("Assignment %s", n.Name)
		d.indent++
		d.node(n.Value)
		d.indent--
	case *Print:
		d.printf("Print")
		d.indent++
		d.node(n.Expression)
		d.indent--
	case *If:
		d.printf("If")
		d.indent++
		d.section("Condition", n.Condition)
		d.block("Then", n.ThenBranch)
		d.indent--
	case *While:
		d.printf("While")
		d.indent++
		d.section("Condition", n.Condition)
		d.block("Body", n.Body)
		d.indent--
	case *Break:
		d.printf("Break")
	case nil:
		d.printf("<nil>")
	default:
		d.printf("<unknown %T>", node)
	}
}

func (d *dumper) section(label string, node Node) {
	d.printf("%s:", label)
	d.indent++
	d.node(node)
	d.indent--
}

func (d *dumper) block(label string, body []Statement) {
	d.printf("%s:", label)
	d.indent++
	for _, stmt := range body {
		d.node(stmt)
	}
	d.indent--
}
