package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/tscat/internal/catalog"
)

func runFmt(args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	file := fs.String("file", "", "Path to the .ts catalog")
	out := fs.String("out", "", "Output path (default stdout)")
	write := fs.Bool("w", false, "Rewrite the input file in place")

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

	cat, err := catalog.LoadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		return 1
	}
	encoded, err := catalog.EncodeString(cat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode catalog: %v\n", err)
		return 1
	}

	target := strings.TrimSpace(*out)
	if *write {
		target = input
	}
	if target == "" {
		fmt.Print(encoded)
		return 0
	}
	if err := os.WriteFile(target, []byte(encoded), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", target, err)
		return 1
	}
	fmt.Printf("fmt wrote %s contexts=%d\n", target, len(cat.Contexts))
	return 0
}
