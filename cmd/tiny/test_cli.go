package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"tiny/interpreter-go/pkg/interpreter"
)

const defaultFixtureRoot = "fixtures"

func runTest(args []string, opts cliOptions) int {
	if opts.watch {
		fmt.Fprintln(os.Stderr, "tiny test: --watch applies only to run")
		return 1
	}
	roots := args
	if len(roots) == 0 {
		roots = []string{defaultFixtureRoot}
	}

	var dirs []string
	for _, root := range roots {
		found, err := interpreter.CollectFixtures(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tiny test: %v\n", err)
			return 1
		}
		dirs = append(dirs, found...)
	}
	if len(dirs) == 0 {
		fmt.Fprintln(os.Stdout, "tiny test: no fixtures found")
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := time.Now()
	passed, failed := 0, 0
	for _, dir := range dirs {
		fixture, err := interpreter.LoadFixture(dir)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stdout, "FAIL %s\n    %v\n", displayFixture(dir), err)
			continue
		}
		if opts.conditionsSet && fixture.Conditions == "" {
			fixture.Conditions = opts.conditions.String()
		}
		result, err := fixture.Run(ctx)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stdout, "FAIL %s\n    %v\n", displayFixture(dir), err)
			continue
		}
		if result.Passed() {
			passed++
			fmt.Fprintf(os.Stdout, "ok   %s\n", displayFixture(dir))
			continue
		}
		failed++
		fmt.Fprintf(os.Stdout, "FAIL %s\n", displayFixture(dir))
		for _, failure := range result.Failures {
			fmt.Fprintf(os.Stdout, "    %s\n", failure)
		}
		if ctx.Err() != nil {
			break
		}
	}

	fmt.Fprintf(os.Stdout, "%d passed, %d failed (%s)\n", passed, failed, time.Since(started).Round(time.Millisecond))
	if failed > 0 {
		return 1
	}
	return 0
}

func displayFixture(dir string) string {
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, dir); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return dir
}
