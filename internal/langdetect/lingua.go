// Package langdetect guesses the language of translated strings so the
// linter can flag text left in the wrong language.
package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	langtag "horse.fit/tscat/internal/language"
)

// MinLetters is the letter count below which Detect gives up.
const MinLetters = 6

// Detector is a lazily built lingua detector restricted to a set of
// languages. The zero value detects among all languages.
type Detector struct {
	codes []string

	once     sync.Once
	detector lingua.LanguageDetector
}

// New returns a detector limited to the given ISO 639-1 codes. Unknown
// codes are ignored; fewer than two known codes means all languages.
func New(codes ...string) *Detector {
	normalized := make([]string, 0, len(codes))
	for _, code := range codes {
		if c := langtag.NormalizeCode(code); c != "" {
			normalized = append(normalized, c)
		}
	}
	return &Detector{codes: normalized}
}

// Detect returns the ISO 639-1 code of text, or "" when the text is too
// short or the detector is unsure.
func (d *Detector) Detect(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < MinLetters {
		return ""
	}

	language, exists := d.get().DetectLanguageOf(sample)
	if !exists {
		return ""
	}
	return isoCode(language)
}

func (d *Detector) get() lingua.LanguageDetector {
	d.once.Do(func() {
		unconfigured := lingua.NewLanguageDetectorBuilder()
		var builder lingua.LanguageDetectorBuilder
		if languages := resolveLanguages(d.codes); len(languages) >= 2 {
			builder = unconfigured.FromLanguages(languages...)
		} else {
			builder = unconfigured.FromAllLanguages()
		}
		d.detector = builder.
			WithMinimumRelativeDistance(0.1).
			WithPreloadedLanguageModels().
			Build()
	})
	return d.detector
}

func resolveLanguages(codes []string) []lingua.Language {
	if len(codes) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		wanted[code] = struct{}{}
	}
	var languages []lingua.Language
	for _, language := range lingua.AllLanguages() {
		if _, ok := wanted[isoCode(language)]; ok {
			languages = append(languages, language)
		}
	}
	return languages
}

func isoCode(language lingua.Language) string {
	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}
