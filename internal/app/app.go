package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "validate":
		return runValidate(args[1:])
	case "lookup":
		return runLookup(args[1:])
	case "fmt":
		return runFmt(args[1:])
	case "export":
		return runExport(args[1:])
	case "publish":
		return runPublish(args[1:])
	case "history":
		return runHistory(args[1:])
	case "serve":
		return runServe(args[1:])
	case "health":
		return runHealth(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "tscat CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  tscat <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  validate  Parse and validate TS catalogs (--lint for advisory checks)")
	fmt.Fprintln(os.Stderr, "  lookup    Resolve one message from a catalog")
	fmt.Fprintln(os.Stderr, "  fmt       Re-serialize a catalog in canonical layout")
	fmt.Fprintln(os.Stderr, "  export    Write a go-i18n message file (toml or json)")
	fmt.Fprintln(os.Stderr, "  publish   Store a catalog snapshot in Postgres")
	fmt.Fprintln(os.Stderr, "  history   List published catalog snapshots")
	fmt.Fprintln(os.Stderr, "  serve     Start the Echo lookup API")
	fmt.Fprintln(os.Stderr, "  health    Verify database connectivity")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"tscat <command> -h\" for command-specific flags.")
}
