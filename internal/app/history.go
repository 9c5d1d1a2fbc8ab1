package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"horse.fit/tscat/internal/cli"
)

func runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	language := fs.String("language", "", "Only list snapshots for this language")
	limit := fs.Int("limit", 20, "Maximum snapshots to list")
	jsonOut := fs.Bool("json", false, "Print JSON instead of a table")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *limit <= 0 {
		fmt.Fprintln(os.Stderr, "--limit must be > 0")
		return 2
	}

	cfg, _, err := loadEnvConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel, pool, err := connectPool(*timeout, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	items, err := pool.ListSnapshots(ctx, *language, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list snapshots: %v\n", err)
		return 1
	}

	if *jsonOut {
		if err := printJSON(items); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.PublishedAt.UTC().Format(time.RFC3339),
			item.SnapshotUUID,
			item.Language,
			strconv.Itoa(item.MessageCount),
			strconv.Itoa(item.UnfinishedCount),
			strconv.Itoa(item.ValidationErrors),
			item.Origin,
		})
	}
	if err := writeTable([]string{"PUBLISHED", "SNAPSHOT", "LANG", "MESSAGES", "UNFINISHED", "ERRORS", "ORIGIN"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
		return 1
	}
	return 0
}
