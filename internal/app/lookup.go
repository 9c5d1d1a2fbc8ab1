package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/tscat/internal/lookup"
)

// argList collects repeated --arg flags.
type argList []string

func (a *argList) String() string {
	if a == nil {
		return ""
	}
	return strings.Join(*a, ",")
}

func (a *argList) Set(value string) error {
	*a = append(*a, value)
	return nil
}

func (a argList) values() []any {
	if len(a) == 0 {
		return nil
	}
	out := make([]any, len(a))
	for i, v := range a {
		out[i] = v
	}
	return out
}

func runLookup(args []string) int {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	file := fs.String("file", "", "Path to the .ts catalog")
	contextName := fs.String("context", "", "Message context")
	source := fs.String("source", "", "Source text")
	comment := fs.String("comment", "", "Disambiguation comment")
	count := fs.String("count", "", "Count for plural messages")
	orSource := fs.Bool("or-source", false, "Print the source text instead of failing")
	var values argList
	fs.Var(&values, "arg", "Substitution value (repeatable)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if strings.TrimSpace(*file) == "" || *source == "" {
		fmt.Fprintln(os.Stderr, "--file and --source are required")
		return 2
	}

	req, err := buildLookupRequest(*contextName, *source, *comment, *count, values)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid lookup: %v\n", err)
		return 2
	}

	service := lookup.NewService(nil, zerolog.Nop())
	if _, err := service.Reload(strings.TrimSpace(*file)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		return 1
	}

	if *orSource {
		fmt.Println(service.TranslateOrSource(req))
		return 0
	}

	result, err := service.Resolve(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
		return 1
	}
	if result.Unfinished {
		fmt.Fprintln(os.Stderr, "Warning: translation is unfinished")
	}
	fmt.Println(result.Text)
	return 0
}

func buildLookupRequest(contextName, source, comment, count string, values argList) (lookup.Request, error) {
	req := lookup.Request{
		Context: contextName,
		Source:  source,
		Comment: comment,
		Args:    values.values(),
	}
	if trimmed := strings.TrimSpace(count); trimmed != "" {
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return lookup.Request{}, fmt.Errorf("--count must be an integer")
		}
		req.Count = lookup.Count(n)
	}
	return req, nil
}
