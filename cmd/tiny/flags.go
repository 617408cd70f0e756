package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"tiny/interpreter-go/pkg/driver"
	"tiny/interpreter-go/pkg/interpreter"
)

// cliOptions holds the flags accepted anywhere on the command line.
type cliOptions struct {
	conditions    interpreter.ConditionMode
	conditionsSet bool
	trace         bool
	watch         bool
}

func parseGlobalFlags(args []string) (cliOptions, []string, error) {
	var opts cliOptions
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i+1:]...)
			break
		}
		switch {
		case arg == "--conditions":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("--conditions expects a value")
			}
			if err := opts.setConditions(args[i+1]); err != nil {
				return opts, nil, err
			}
			i++
		case strings.HasPrefix(arg, "--conditions="):
			if err := opts.setConditions(strings.TrimPrefix(arg, "--conditions=")); err != nil {
				return opts, nil, err
			}
		case arg == "--trace":
			opts.trace = true
		case arg == "--watch":
			opts.watch = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return opts, remaining, nil
}

func (o *cliOptions) setConditions(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("--conditions expects a value")
	}
	mode, err := interpreter.ParseConditionMode(value)
	if err != nil {
		return fmt.Errorf("--conditions: %w", err)
	}
	o.conditions = mode
	o.conditionsSet = true
	return nil
}

// conditionMode picks the flag value over the manifest setting.
func (o cliOptions) conditionMode(manifest *driver.Manifest) (interpreter.ConditionMode, error) {
	if o.conditionsSet {
		return o.conditions, nil
	}
	if manifest == nil {
		return interpreter.ConditionsStrict, nil
	}
	mode, err := interpreter.ParseConditionMode(manifest.Settings.Conditions)
	if err != nil {
		return mode, fmt.Errorf("manifest %s: %w", manifest.Path, err)
	}
	return mode, nil
}

func (o cliOptions) traceWriter() io.Writer {
	if !o.trace {
		return nil
	}
	return os.Stderr
}
