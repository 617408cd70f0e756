package parser_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"tiny/interpreter-go/pkg/ast"
	"tiny/interpreter-go/pkg/lexer"
	"tiny/interpreter-go/pkg/parser"
)

func parseSource(t testing.TB, src string) []ast.Statement {
	t.Helper()
	stmts, err := parser.ParseSource(src)
	if err != nil {
		t.Fatalf("ParseSource(%q): %v", src, err)
	}
	return stmts
}

func assertProgramsEqual(t testing.TB, expected, actual []ast.Statement) {
	t.Helper()
	if reflect.DeepEqual(expected, actual) {
		return
	}
	wantJSON, _ := json.MarshalIndent(expected, "", "  ")
	gotJSON, _ := json.MarshalIndent(actual, "", "  ")
	if bytes.Equal(wantJSON, gotJSON) {
		return
	}
	t.Fatalf("program mismatch\nexpected: %s\n   actual: %s", wantJSON, gotJSON)
}

func TestParseStatements(t *testing.T) {
	src := `
var n = 10
var sum = 0
while n > 0 {
    sum = sum + n
    n = n - 1
    if n == 3 { break }
}
print(sum)
`
	expected := []ast.Statement{
		ast.Decl("n", ast.Num(10)),
		ast.Decl("sum", ast.Num(0)),
		ast.Loop(ast.Bin(ast.Ref("n"), ast.OpGreater, ast.Num(0)),
			ast.Assign("sum", ast.Bin(ast.Ref("sum"), ast.OpAdd, ast.Ref("n"))),
			ast.Assign("n", ast.Bin(ast.Ref("n"), ast.OpSub, ast.Num(1))),
			ast.IfThen(ast.Bin(ast.Ref("n"), ast.OpEqual, ast.Num(3)), ast.Brk()),
		),
		ast.Out(ast.Ref("sum")),
	}
	assertProgramsEqual(t, expected, parseSource(t, src))
}

func TestParseStatementsWithoutSeparators(t *testing.T) {
	expected := []ast.Statement{
		ast.Decl("a", ast.Num(1)),
		ast.Assign("a", ast.Bin(ast.Ref("a"), ast.OpAdd, ast.Num(2))),
		ast.Out(ast.Ref("a")),
	}
	assertProgramsEqual(t, expected, parseSource(t, "var a = 1 a = a + 2 print(a)"))
}

func TestParsePrecedenceAndAssociativity(t *testing.T) {
	cases := []struct {
		src  string
		want ast.Expression
	}{
		{"1 + 2 * 3", ast.Bin(ast.Num(1), ast.OpAdd, ast.Bin(ast.Num(2), ast.OpMul, ast.Num(3)))},
		{"(1 + 2) * 3", ast.Bin(ast.Bin(ast.Num(1), ast.OpAdd, ast.Num(2)), ast.OpMul, ast.Num(3))},
		{"10 - 4 - 3", ast.Bin(ast.Bin(ast.Num(10), ast.OpSub, ast.Num(4)), ast.OpSub, ast.Num(3))},
		{"8 / 2 % 3", ast.Bin(ast.Bin(ast.Num(8), ast.OpDiv, ast.Num(2)), ast.OpMod, ast.Num(3))},
		{"a * (b - c) / d", ast.Bin(ast.Bin(ast.Ref("a"), ast.OpMul, ast.Bin(ast.Ref("b"), ast.OpSub, ast.Ref("c"))), ast.OpDiv, ast.Ref("d"))},
	}
	for _, tc := range cases {
		stmts := parseSource(t, "var x = "+tc.src)
		decl, ok := stmts[0].(*ast.VarDeclaration)
		if !ok {
			t.Fatalf("%q: expected VarDeclaration, got %T", tc.src, stmts[0])
		}
		if !reflect.DeepEqual(decl.Initializer, tc.want) {
			t.Fatalf("%q parsed as %s, want %s", tc.src, ast.FormatExpression(decl.Initializer), ast.FormatExpression(tc.want))
		}
	}
}

func TestParseConditionForms(t *testing.T) {
	stmts := parseSource(t, "if x {} while a + 1 <= b * 2 {} print(1 == 1)")
	expected := []ast.Statement{
		ast.IfThen(ast.Ref("x")),
		ast.Loop(ast.Bin(ast.Bin(ast.Ref("a"), ast.OpAdd, ast.Num(1)), ast.OpLessEqual, ast.Bin(ast.Ref("b"), ast.OpMul, ast.Num(2)))),
		ast.Out(ast.Bin(ast.Num(1), ast.OpEqual, ast.Num(1))),
	}
	assertProgramsEqual(t, expected, stmts)
}

func TestParseEmptyBlockIsNil(t *testing.T) {
	stmts := parseSource(t, "while 1 == 1 { }")
	loop := stmts[0].(*ast.While)
	if loop.Body != nil {
		t.Fatalf("expected nil body, got %#v", loop.Body)
	}
}

func TestParseEmptyProgram(t *testing.T) {
	stmts, err := parser.ParseSource("  \n\t ")
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}
	if len(stmts) != 0 {
		t.Fatalf("expected no statements, got %d", len(stmts))
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		msg  string
	}{
		{"missing close paren", "print(1", "expected ')' to close print"},
		{"missing nested paren", "var x = (1 + 2", "')' to close parenthesized expression"},
		{"unterminated block", "while x < 3 { x = x + 1", "unterminated block"},
		{"missing equals", "var x 3", "expected '=' after variable name"},
		{"missing name", "var = 3", "variable name after 'var'"},
		{"bare identifier", "x", "unexpected token at start of statement"},
		{"leading number", "3 + 4", "unexpected token at start of statement"},
		{"stray brace", "}", "unexpected token at start of statement"},
		{"dangling operator", "var x = 1 +", "expected number, identifier or '('"},
		{"chained comparison", "if a < b < c {}", "expected '{' to open block"},
		{"comparison in expression", "var x = 1 == 1", "unexpected token at start of statement"},
		{"overflowing literal", "var x = 9223372036854775808", "integer literal out of range"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parser.ParseSource(tc.src)
			var perr *parser.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T (%v)", err, err)
			}
			if !strings.Contains(perr.Msg, tc.msg) {
				t.Fatalf("error %q does not mention %q", perr.Msg, tc.msg)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := parser.ParseSource("var a = 1\nprint(a")
	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Token.Kind != lexer.EOF {
		t.Fatalf("expected EOF token, got %s", perr.Token)
	}
	if perr.Pos.Line != 2 {
		t.Fatalf("expected error on line 2, got %s", perr.Pos)
	}
}

func TestParseSourceSurfacesLexErrors(t *testing.T) {
	_, err := parser.ParseSource("var x = 1 @ 2")
	var lerr *lexer.LexError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *lexer.LexError, got %T (%v)", err, err)
	}
}

func TestParserCurrentTokenAtEOF(t *testing.T) {
	p := parser.New(nil)
	if tok := p.CurrentToken(); tok.Kind != lexer.EOF {
		t.Fatalf("expected EOF from empty parser, got %s", tok)
	}
	if !p.AtEOF() {
		t.Fatalf("expected AtEOF on empty parser")
	}
}

func TestParseStatementIncrementally(t *testing.T) {
	tokens, err := lexer.Tokenize("var x = 1 print(x)")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	p := parser.New(tokens)
	first, err := p.ParseStatement()
	if err != nil {
		t.Fatalf("first statement: %v", err)
	}
	if _, ok := first.(*ast.VarDeclaration); !ok {
		t.Fatalf("expected VarDeclaration, got %T", first)
	}
	if tok := p.CurrentToken(); !tok.Is(lexer.Identifier, "print") {
		t.Fatalf("expected cursor on print, got %s", tok)
	}
	if _, err := p.ParseStatement(); err != nil {
		t.Fatalf("second statement: %v", err)
	}
	if !p.AtEOF() {
		t.Fatalf("expected EOF after two statements, at %s", p.CurrentToken())
	}
}

var roundTripSources = []string{
	"var a = 1 + 2 * 3 - 4 / 2 % 3",
	"var b = (1 + 2) * (3 - (4 - 5))",
	"while i < 10 { if i % 2 == 0 { print(i) } i = i + 1 if i >= 7 { break } }",
	"if x {} while y != 0 {}",
	"print(a - (b - c))",
	"print(n * (n - 1) / 2 <= limit)",
}

func TestFormatRoundTrip(t *testing.T) {
	for _, src := range roundTripSources {
		assertRoundTrip(t, src)
	}
}

func TestFormatRoundTripFixtures(t *testing.T) {
	for _, path := range collectFixtureSources(t) {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if _, err := parser.ParseSource(string(data)); err != nil {
			continue
		}
		t.Run(filepath.Base(filepath.Dir(path)), func(t *testing.T) {
			assertRoundTrip(t, string(data))
		})
	}
}

func assertRoundTrip(t *testing.T, src string) {
	t.Helper()
	first := parseSource(t, src)
	formatted := ast.Format(first)
	second := parseSource(t, formatted)
	assertProgramsEqual(t, first, second)
	if again := ast.Format(second); again != formatted {
		t.Fatalf("format is not stable\nfirst:  %q\nsecond: %q", formatted, again)
	}
}

func collectFixtureSources(t testing.TB) []string {
	t.Helper()
	root := filepath.Join("..", "..", "fixtures")
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read fixtures %s: %v", root, err)
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name(), "main.tiny")
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			t.Fatalf("stat %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
