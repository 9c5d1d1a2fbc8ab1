package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/tscat/internal/catalog"
	"horse.fit/tscat/internal/cli"
	"horse.fit/tscat/internal/db"
)

func runPublish(args []string) int {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	file := fs.String("file", "", "Path to the .ts catalog (default CATALOG_PATH)")
	allowInvalid := fs.Bool("allow-invalid", false, "Publish even when validation fails")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "publish does not accept positional arguments")
		return 2
	}

	cfg, logger, err := loadEnvConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	path := strings.TrimSpace(*file)
	if path == "" {
		path = strings.TrimSpace(cfg.CatalogPath)
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "--file or CATALOG_PATH is required")
		return 2
	}

	cat, err := catalog.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		return 1
	}
	problems := catalog.Validate(cat, nil)
	if len(problems) > 0 && !*allowInvalid {
		for _, problem := range problems {
			fmt.Fprintf(os.Stderr, "INVALID %s\n", problem.Error())
		}
		fmt.Fprintf(os.Stderr, "Refusing to publish %s with %d validation errors (use --allow-invalid)\n", path, len(problems))
		return 1
	}

	rows, err := db.BuildSnapshotRows(cat, path, problems)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build snapshot: %v\n", err)
		return 1
	}

	ctx, cancel, pool, err := connectPool(*timeout, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	result, err := pool.Publish(ctx, rows)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("publish failed")
		fmt.Fprintf(os.Stderr, "Publish failed: %v\n", err)
		return 1
	}

	logger.Info().
		Str("path", path).
		Str("language", cat.Language).
		Str("snapshot_uuid", result.SnapshotUUID).
		Int("messages", result.Messages).
		Bool("duplicate", result.Duplicate).
		Msg("catalog snapshot published")

	if result.Duplicate {
		fmt.Printf("publish unchanged snapshot=%s hash=%s\n", result.SnapshotUUID, result.ContentHashHex)
		return 0
	}
	fmt.Printf("publish ok snapshot=%s messages=%d validation_errors=%d hash=%s\n",
		result.SnapshotUUID, result.Messages, len(problems), result.ContentHashHex)
	return 0
}
