package main

import (
	"errors"
	"fmt"
	"os"
)

const interpreterVersion = "0.1.0"

const cliToolVersion = "tiny-cli " + interpreterVersion

var errManifestNotFound = errors.New("package.yml not found")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(remaining) == 0 {
		printUsage()
		return 1
	}

	switch remaining[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(remaining[1:], opts)
	case "check":
		return runCheck(remaining[1:], opts)
	case "tokens":
		return runTokens(remaining[1:])
	case "ast":
		return runAST(remaining[1:])
	case "fmt":
		return runFmt(remaining[1:])
	case "repl":
		return runRepl(remaining[1:], opts)
	case "test":
		return runTest(remaining[1:], opts)
	case "deps":
		return runDeps(remaining[1:])
	default:
		return runEntry(remaining, opts)
	}
}
