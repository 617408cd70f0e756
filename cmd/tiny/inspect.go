package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"tiny/interpreter-go/pkg/ast"
	"tiny/interpreter-go/pkg/driver"
	"tiny/interpreter-go/pkg/interpreter"
	"tiny/interpreter-go/pkg/lexer"
)

func runTokens(args []string) int {
	path, _, ok := singleFileArg("tokens", args)
	if !ok {
		return 1
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tiny tokens: %v\n", err)
		return 1
	}
	tokens, err := lexer.Tokenize(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", path, interpreter.DescribeError(err))
		return 1
	}
	for _, tok := range tokens {
		fmt.Fprintf(os.Stdout, "%s %s %q\n", tok.Pos, tok.Kind, tok.Text)
	}
	return 0
}

func runAST(args []string) int {
	path, flags, ok := singleFileArg("ast", args, "--json")
	if !ok {
		return 1
	}
	mod, err := driver.LoadModule(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, interpreter.DescribeError(err))
		return 1
	}
	if flags["--json"] {
		stmts := mod.AST
		if stmts == nil {
			stmts = []ast.Statement{}
		}
		payload, err := json.MarshalIndent(stmts, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "tiny ast: %v\n", err)
			return 1
		}
		fmt.Fprintln(os.Stdout, string(payload))
		return 0
	}
	if err := ast.Dump(os.Stdout, mod.AST); err != nil {
		fmt.Fprintf(os.Stderr, "tiny ast: %v\n", err)
		return 1
	}
	return 0
}

func runFmt(args []string) int {
	path, flags, ok := singleFileArg("fmt", args, "--write")
	if !ok {
		return 1
	}
	mod, err := driver.LoadModule(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, interpreter.DescribeError(err))
		return 1
	}
	formatted := ast.Format(mod.AST)
	if !flags["--write"] {
		fmt.Fprint(os.Stdout, formatted)
		return 0
	}
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tiny fmt: %v\n", err)
		return 1
	}
	if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
		fmt.Fprintf(os.Stderr, "tiny fmt: %v\n", err)
		return 1
	}
	return 0
}

// singleFileArg splits args into one file path and the allowed boolean
// flags, reporting misuse on stderr.
func singleFileArg(command string, args []string, allowed ...string) (string, map[string]bool, bool) {
	flags := make(map[string]bool, len(allowed))
	var files []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "--") {
			known := false
			for _, name := range allowed {
				if arg == name {
					flags[name] = true
					known = true
				}
			}
			if !known {
				fmt.Fprintf(os.Stderr, "tiny %s: unknown flag %s\n", command, arg)
				return "", nil, false
			}
			continue
		}
		files = append(files, arg)
	}
	if len(files) != 1 {
		fmt.Fprintf(os.Stderr, "tiny %s expects exactly one source file\n", command)
		return "", nil, false
	}
	return files[0], flags, true
}
