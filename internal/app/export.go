package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/tscat/internal/catalog"
	"horse.fit/tscat/internal/export"
)

func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	file := fs.String("file", "", "Path to the .ts catalog")
	out := fs.String("out", ".", "Output directory")
	formatFlag := fs.String("format", "toml", "Message file format: toml or json")
	includeUnfinished := fs.Bool("include-unfinished", false, "Export unfinished translations too")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	input := strings.TrimSpace(*file)
	if input == "" {
		fmt.Fprintln(os.Stderr, "--file is required")
		return 2
	}
	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cat, err := catalog.LoadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		return 1
	}

	path, result, err := export.Write(strings.TrimSpace(*out), cat, format, export.Options{
		IncludeUnfinished: *includeUnfinished,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		return 1
	}
	if result.LocaleWarning != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", result.LocaleWarning)
	}
	for _, skip := range result.Skipped {
		fmt.Fprintf(os.Stderr, "SKIP %s %q: %s\n", skip.Context, skip.Source, skip.Reason)
	}
	fmt.Printf("export wrote %s messages=%d skipped=%d\n", path, len(result.Messages), len(result.Skipped))
	return 0
}
