package catalog

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	langtag "horse.fit/tscat/internal/language"
	"horse.fit/tscat/internal/placeholder"
)

// FindingKind names one advisory check.
type FindingKind string

const (
	EmptyTranslation    FindingKind = "empty_translation"
	SpaceHeadMismatch   FindingKind = "space_head_mismatch"
	SpaceTailMismatch   FindingKind = "space_tail_mismatch"
	MultilineMismatch   FindingKind = "multiline_mismatch"
	Mojibake            FindingKind = "mojibake"
	InvisibleOnly       FindingKind = "invisible_only"
	PlaceholderMismatch FindingKind = "placeholder_mismatch"
	LanguageMismatch    FindingKind = "language_mismatch"
)

// Finding is an advisory note about one message. Findings never block a
// catalog from loading or being served.
type Finding struct {
	Context string      `json:"context"`
	Source  string      `json:"source"`
	Index   int         `json:"index"`
	Form    int         `json:"form"`
	Kind    FindingKind `json:"kind"`
	Detail  string      `json:"detail,omitempty"`
}

func (f Finding) String() string {
	if f.Detail == "" {
		return fmt.Sprintf("%s: %q: %s", f.Context, f.Source, f.Kind)
	}
	return fmt.Sprintf("%s: %q: %s (%s)", f.Context, f.Source, f.Kind, f.Detail)
}

// LanguageDetector guesses the ISO 639-1 code of a text; "" means unsure.
type LanguageDetector interface {
	Detect(text string) string
}

// LintOptions configures Lint.
type LintOptions struct {
	// Detector enables LanguageMismatch findings when set.
	Detector LanguageDetector
	// MinDetectLetters is the letter count below which detection is skipped.
	MinDetectLetters int
}

const defaultMinDetectLetters = 24

// Lint reports suspicious translations. Obsolete messages are ignored and
// unfinished messages are only checked for emptiness.
func Lint(cat *Catalog, opts LintOptions) []Finding {
	if cat == nil {
		return nil
	}
	minLetters := opts.MinDetectLetters
	if minLetters <= 0 {
		minLetters = defaultMinDetectLetters
	}
	wantLang := langtag.NormalizeCode(cat.Language)

	var findings []Finding
	for _, ctx := range cat.Contexts {
		for idx, msg := range ctx.Messages {
			if msg.Status == StatusObsolete {
				continue
			}
			add := func(form int, kind FindingKind, detail string) {
				findings = append(findings, Finding{
					Context: ctx.Name,
					Source:  msg.Source,
					Index:   idx,
					Form:    form,
					Kind:    kind,
					Detail:  detail,
				})
			}

			texts := translationTexts(msg)
			if len(texts) == 0 {
				add(-1, EmptyTranslation, "")
				continue
			}
			if strings.ContainsRune(msg.Source, unicode.ReplacementChar) {
				add(-1, Mojibake, "source")
			}

			for form, text := range texts {
				if text == "" {
					add(form, EmptyTranslation, "")
					continue
				}
				if msg.Status == StatusUnfinished {
					continue
				}
				for _, f := range compareTexts(msg.Source, text, msg.Numerus) {
					add(form, f.kind, f.detail)
				}
				if opts.Detector != nil && wantLang != "" && letterCount(text) >= minLetters {
					if got := opts.Detector.Detect(text); got != "" && got != wantLang {
						add(form, LanguageMismatch, fmt.Sprintf("detected %s, catalog is %s", got, wantLang))
					}
				}
			}
		}
	}
	return findings
}

func translationTexts(msg Message) []string {
	if len(msg.Translation.Forms) > 0 {
		return msg.Translation.Forms
	}
	if msg.Translation.Text == "" {
		return nil
	}
	return []string{msg.Translation.Text}
}

type textIssue struct {
	kind   FindingKind
	detail string
}

func compareTexts(source, translation string, numerus bool) []textIssue {
	var issues []textIssue

	if strings.ContainsRune(translation, unicode.ReplacementChar) {
		issues = append(issues, textIssue{kind: Mojibake})
	}
	if isInvisible(translation) && !isInvisible(source) {
		issues = append(issues, textIssue{kind: InvisibleOnly})
	}
	if startsWithSpace(source) != startsWithSpace(translation) {
		issues = append(issues, textIssue{kind: SpaceHeadMismatch})
	}
	if endsWithSpace(source) != endsWithSpace(translation) {
		issues = append(issues, textIssue{kind: SpaceTailMismatch})
	}
	if !strings.Contains(source, "\n") && strings.Contains(translation, "\n") {
		issues = append(issues, textIssue{kind: MultilineMismatch, detail: "translation is multiline while source is not"})
	}
	// Numerus forms legitimately drop the count in the singular form.
	if !numerus {
		want := placeholder.Signature(source)
		got := placeholder.Signature(translation)
		if strings.Join(want, " ") != strings.Join(got, " ") {
			issues = append(issues, textIssue{
				kind:   PlaceholderMismatch,
				detail: fmt.Sprintf("source has [%s], translation has [%s]", strings.Join(want, " "), strings.Join(got, " ")),
			})
		}
	}
	return issues
}

func startsWithSpace(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}

func endsWithSpace(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}

func isInvisible(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsGraphic(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
