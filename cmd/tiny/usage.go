package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  tiny [--conditions=strict|truthy] [--trace] run [--watch] [target]")
	fmt.Fprintln(os.Stderr, "  tiny [--conditions=strict|truthy] [--trace] run [--watch] <file.tiny>")
	fmt.Fprintln(os.Stderr, "  tiny [--conditions=strict|truthy] [--trace] <file.tiny>")
	fmt.Fprintln(os.Stderr, "  tiny [--conditions=strict|truthy] repl")
	fmt.Fprintln(os.Stderr, "  tiny [--conditions=strict|truthy] [--trace] check [target|file.tiny]")
	fmt.Fprintln(os.Stderr, "  tiny test [fixture dirs]")
	fmt.Fprintln(os.Stderr, "  tiny tokens <file.tiny>")
	fmt.Fprintln(os.Stderr, "  tiny ast [--json] <file.tiny>")
	fmt.Fprintln(os.Stderr, "  tiny fmt [--write] <file.tiny>")
	fmt.Fprintln(os.Stderr, "  tiny deps install")
	fmt.Fprintln(os.Stderr, "  tiny deps update [dependency ...]")
	fmt.Fprintln(os.Stderr, "  tiny version")
}
