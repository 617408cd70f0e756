package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"tiny/interpreter-go/pkg/checker"
	"tiny/interpreter-go/pkg/interpreter"
)

// runCheck loads a program the way `tiny run` would and reports static
// diagnostics without executing it.
func runCheck(args []string, opts cliOptions) int {
	plan, err := resolveRunPlan(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := plan.manifest.CheckInterpreterVersion(interpreterVersion); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	mode, err := opts.conditionMode(plan.manifest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	program, err := loadProgram(plan)
	if err != nil {
		fmt.Fprintln(os.Stderr, interpreter.DescribeError(err))
		return 1
	}

	result, err := checker.NewProgramChecker(checker.Options{
		TruthyConditions: mode == interpreter.ConditionsTruthy,
	}).Check(program)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, diag := range result.Diagnostics {
		fmt.Fprintln(os.Stderr, diag.String())
	}
	if opts.trace {
		printPackageSummaries(os.Stderr, result.Packages)
	}
	errs, warnings := result.Counts()
	fmt.Fprintf(os.Stdout, "checked %d module(s): %d error(s), %d warning(s)\n", len(program.Modules), errs, warnings)
	if result.HasErrors() {
		return 1
	}
	return 0
}

func printPackageSummaries(w io.Writer, summaries map[string]checker.PackageSummary) {
	if len(summaries) == 0 {
		return
	}
	keys := make([]string, 0, len(summaries))
	for key := range summaries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		summary := summaries[key]
		name := summary.Name
		if name == "" {
			name = "<file>"
		}
		vars := "none"
		if len(summary.Variables) > 0 {
			vars = strings.Join(summary.Variables, ", ")
		}
		fmt.Fprintf(w, "package %s defines: %s\n", name, vars)
	}
}
