package checker

import (
	"fmt"

	"tiny/interpreter-go/pkg/driver"
)

// ModuleDiagnostic ties a diagnostic to the module that produced it.
type ModuleDiagnostic struct {
	Package    string
	Path       string
	Diagnostic Diagnostic
}

func (d ModuleDiagnostic) String() string {
	location := d.Path
	if location == "" {
		location = "<input>"
	}
	text := fmt.Sprintf("%s: %s: %s", location, d.Diagnostic.Severity, d.Diagnostic.Message)
	if node := DescribeNode(d.Diagnostic.Node); node != "" {
		text += fmt.Sprintf(" (in `%s`)", node)
	}
	return text
}

// PackageSummary lists the globals a package defines first.
type PackageSummary struct {
	Name      string
	Variables []string
}

// CheckResult aggregates diagnostics and package summaries for a program.
type CheckResult struct {
	Diagnostics []ModuleDiagnostic
	Packages    map[string]PackageSummary
}

// HasErrors reports whether any diagnostic is an error.
func (r CheckResult) HasErrors() bool {
	for _, diag := range r.Diagnostics {
		if diag.Diagnostic.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Counts returns the number of errors and warnings.
func (r CheckResult) Counts() (errs, warnings int) {
	for _, diag := range r.Diagnostics {
		if diag.Diagnostic.Severity == SeverityError {
			errs++
		} else {
			warnings++
		}
	}
	return errs, warnings
}

// ProgramChecker checks every module of a program in run order against one
// shared global environment, mirroring how the interpreter evaluates them.
type ProgramChecker struct {
	opts Options
}

// NewProgramChecker constructs a checker for whole programs.
func NewProgramChecker(opts Options) *ProgramChecker {
	return &ProgramChecker{opts: opts}
}

// Check walks program.Modules in order.
func (pc *ProgramChecker) Check(program *driver.Program) (CheckResult, error) {
	if program == nil {
		return CheckResult{}, fmt.Errorf("checker: program is nil")
	}
	checker := New(pc.opts)
	result := CheckResult{Packages: make(map[string]PackageSummary)}
	for _, mod := range program.Modules {
		if mod == nil {
			continue
		}
		checker.SetPackage(mod.Package)
		for _, diag := range checker.CheckStatements(mod.AST) {
			result.Diagnostics = append(result.Diagnostics, ModuleDiagnostic{
				Package:    mod.Package,
				Path:       mod.Path,
				Diagnostic: diag,
			})
		}
	}
	seen := make(map[string]bool)
	for _, mod := range program.Modules {
		if mod == nil || seen[mod.Package] {
			continue
		}
		seen[mod.Package] = true
		result.Packages[mod.Package] = PackageSummary{
			Name:      mod.Package,
			Variables: checker.Environment().NamesFrom(mod.Package),
		}
	}
	return result, nil
}
