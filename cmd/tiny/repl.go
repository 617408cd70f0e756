package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"tiny/interpreter-go/pkg/interpreter"
	"tiny/interpreter-go/pkg/lexer"
)

func runRepl(args []string, opts cliOptions) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "tiny repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	manifest, err := loadManifestFrom(".")
	if err != nil {
		if !errors.Is(err, errManifestNotFound) {
			fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
			return 1
		}
		manifest = nil
	}
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	mode, err := opts.conditionMode(manifest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interp := interpreter.NewWithOptions(interpreter.Options{
		Stdout:     os.Stdout,
		Conditions: mode,
		Trace:      opts.traceWriter(),
	})

	// Project libraries run once so their variables are in scope.
	loader, err := newLoader(manifest, lock)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	preludes, err := loader.Preludes()
	if err != nil {
		fmt.Fprintln(os.Stderr, interpreter.DescribeError(err))
		return 1
	}
	for _, mod := range preludes {
		if err := interp.Run(ctx, mod.AST); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", mod.Path, interpreter.DescribeError(err))
			return 1
		}
	}

	return replLoop(ctx, interp, os.Stdin, os.Stdout, os.Stderr, isTerminal(os.Stdin))
}

// replLoop reads statements from in until EOF or :quit. Input is collected
// until its braces balance, then run against interp. Errors are reported
// and the session continues with whatever state the failed chunk left.
func replLoop(ctx context.Context, interp *interpreter.Interpreter, in io.Reader, out, errOut io.Writer, interactive bool) int {
	scanner := bufio.NewScanner(in)
	var pending strings.Builder
	prompt := func() {
		if !interactive {
			return
		}
		if pending.Len() == 0 {
			fmt.Fprint(out, "tiny> ")
		} else {
			fmt.Fprint(out, "....> ")
		}
	}

	prompt()
	for scanner.Scan() {
		line := scanner.Text()
		if pending.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			switch {
			case trimmed == "":
				prompt()
				continue
			case trimmed == ":quit", trimmed == ":q":
				return 0
			case strings.HasPrefix(trimmed, ":"):
				replCommand(trimmed, interp, out, errOut)
				prompt()
				continue
			}
		}
		pending.WriteString(line)
		pending.WriteByte('\n')
		if openBraces(pending.String()) > 0 {
			prompt()
			continue
		}
		src := pending.String()
		pending.Reset()
		if err := interp.RunSource(ctx, src); err != nil {
			fmt.Fprintln(errOut, interpreter.DescribeError(err))
			if ctx.Err() != nil {
				return 1
			}
		}
		prompt()
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "repl: %v\n", err)
		return 1
	}
	if pending.Len() > 0 {
		if err := interp.RunSource(ctx, pending.String()); err != nil {
			fmt.Fprintln(errOut, interpreter.DescribeError(err))
		}
	}
	if interactive {
		fmt.Fprintln(out)
	}
	return 0
}

// openBraces counts unclosed '{' in src. Input that fails to lex counts as
// complete so the error is reported right away.
func openBraces(src string) int {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return 0
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case lexer.LBrace:
			depth++
		case lexer.RBrace:
			depth--
		}
	}
	return depth
}

// replCommand handles a colon command other than :quit.
//
//	:vars                       list variables
//	:conditions [strict|truthy] show or switch the condition mode
//	:trace on|off               echo executed statements to errOut
func replCommand(line string, interp *interpreter.Interpreter, out, errOut io.Writer) {
	fields := strings.Fields(line)
	switch {
	case fields[0] == ":vars" && len(fields) == 1:
		printVariables(out, interp)
	case fields[0] == ":conditions" && len(fields) == 1:
		fmt.Fprintf(out, "conditions: %s\n", interp.ConditionMode())
	case fields[0] == ":conditions" && len(fields) == 2:
		mode, err := interpreter.ParseConditionMode(fields[1])
		if err != nil {
			fmt.Fprintln(errOut, err)
			return
		}
		interp.SetConditionMode(mode)
		fmt.Fprintf(out, "conditions: %s\n", mode)
	case fields[0] == ":trace" && len(fields) == 2 && (fields[1] == "on" || fields[1] == "off"):
		if fields[1] == "on" {
			interp.SetTrace(errOut)
		} else {
			interp.SetTrace(nil)
		}
	default:
		fmt.Fprintf(errOut, "unknown command %s (try :vars, :conditions, :trace, :quit)\n", line)
	}
}

func printVariables(out io.Writer, interp *interpreter.Interpreter) {
	env := interp.Environment()
	for _, name := range env.Keys() {
		value, _ := env.Get(name)
		fmt.Fprintf(out, "%s = %d\n", name, value)
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
