package app

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"horse.fit/tscat/internal/catalog"
	"horse.fit/tscat/internal/langdetect"
	"horse.fit/tscat/internal/plural"
)

type validateResult struct {
	Scanned  int
	Valid    int
	Invalid  int
	Findings int
}

type validateOptions struct {
	lint           bool
	detectLanguage bool
	detector       catalog.LanguageDetector
	rules          *plural.Registry
}

// fileReport is the outcome for one catalog file.
type fileReport struct {
	Path          string
	Catalog       *catalog.Catalog
	ParseErr      error
	Problems      catalog.ValidationErrors
	LocaleWarning error
	Findings      []catalog.Finding
}

func (r fileReport) valid() bool {
	return r.ParseErr == nil && len(r.Problems) == 0
}

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	file := fs.String("file", "", "Path to one .ts catalog")
	dir := fs.String("dir", "", "Directory containing .ts catalogs")
	recursive := fs.Bool("recursive", true, "Recursively scan subdirectories")
	lint := fs.Bool("lint", false, "Report advisory findings (whitespace, placeholders, mojibake)")
	detectLanguage := fs.Bool("detect-language", false, "With --lint, flag translations not in the catalog language")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	var files []string
	switch {
	case strings.TrimSpace(*file) != "":
		files = []string{strings.TrimSpace(*file)}
	case strings.TrimSpace(*dir) != "":
		collected, err := collectTSFiles(strings.TrimSpace(*dir), *recursive)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Validation setup failed: %v\n", err)
			return 1
		}
		files = collected
	default:
		fmt.Fprintln(os.Stderr, "one of --file or --dir is required")
		return 2
	}

	opts := validateOptions{
		lint:           *lint,
		detectLanguage: *detectLanguage,
		rules:          plural.NewDefaultRegistry(),
	}

	result := validateResult{}
	for _, path := range files {
		result.Scanned++
		report := validateFile(path, opts)
		printReport(report)

		result.Findings += len(report.Findings)
		if report.valid() {
			result.Valid++
		} else {
			result.Invalid++
		}
	}

	fmt.Printf(
		"validate scanned=%d valid=%d invalid=%d findings=%d\n",
		result.Scanned,
		result.Valid,
		result.Invalid,
		result.Findings,
	)

	if result.Scanned == 0 {
		fmt.Fprintf(os.Stderr, "Validation failed: no .ts files found under %s\n", strings.TrimSpace(*dir))
		return 1
	}
	if result.Invalid > 0 {
		return 1
	}
	return 0
}

func validateFile(path string, opts validateOptions) fileReport {
	report := fileReport{Path: path}

	cat, err := catalog.LoadFile(path)
	if err != nil {
		report.ParseErr = err
		return report
	}
	report.Catalog = cat

	rules := opts.rules
	if rules == nil {
		rules = plural.NewDefaultRegistry()
	}
	_, report.LocaleWarning = rules.Rule(cat.Language)
	report.Problems = catalog.Validate(cat, rules)

	if opts.lint {
		lintOpts := catalog.LintOptions{Detector: opts.detector}
		if lintOpts.Detector == nil && opts.detectLanguage {
			lintOpts.Detector = langdetect.New(cat.Language, cat.SourceLanguage, "en")
		}
		report.Findings = catalog.Lint(cat, lintOpts)
	}
	return report
}

func printReport(report fileReport) {
	if report.ParseErr != nil {
		fmt.Fprintf(os.Stderr, "INVALID %s: %v\n", report.Path, report.ParseErr)
		return
	}
	if report.LocaleWarning != nil {
		fmt.Fprintf(os.Stderr, "WARN %s: %v\n", report.Path, report.LocaleWarning)
	}
	for _, problem := range report.Problems {
		fmt.Fprintf(os.Stderr, "INVALID %s: %s\n", report.Path, problem.Error())
	}
	for _, finding := range report.Findings {
		fmt.Fprintf(os.Stderr, "LINT %s: %s\n", report.Path, finding.String())
	}
	if report.valid() {
		stats := report.Catalog.Stats()
		fmt.Printf("OK %s language=%s messages=%d unfinished=%d\n",
			report.Path, report.Catalog.Language, stats.Messages, stats.Unfinished)
	}
}

func collectTSFiles(root string, recursive bool) ([]string, error) {
	cleanRoot := strings.TrimSpace(root)
	if cleanRoot == "" {
		return nil, fmt.Errorf("directory path is empty")
	}

	info, err := os.Stat(cleanRoot)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", cleanRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", cleanRoot)
	}

	var files []string
	if !recursive {
		entries, err := os.ReadDir(cleanRoot)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", cleanRoot, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			if strings.EqualFold(filepath.Ext(name), ".ts") {
				files = append(files, filepath.Join(cleanRoot, name))
			}
		}
		sort.Strings(files)
		return files, nil
	}

	err = filepath.WalkDir(cleanRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != cleanRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".ts") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", cleanRoot, err)
	}

	sort.Strings(files)
	return files, nil
}
