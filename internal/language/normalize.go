package language

import (
	"strings"

	"golang.org/x/text/language"
)

// NormalizeTag normalizes a language tag to lowercase and "-" separators.
// Returns an empty string when the value is blank or contains invalid characters.
// Digits are accepted in non-primary subtags so region codes such as "419" survive.
func NormalizeTag(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	trimmed = strings.ReplaceAll(trimmed, "_", "-")
	parts := strings.Split(trimmed, "-")
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if len(normalized) == 0 && !isAlphaLower(part) {
			return ""
		}
		if !isAlnumLower(part) {
			return ""
		}
		normalized = append(normalized, part)
	}

	if len(normalized) == 0 {
		return ""
	}
	return strings.Join(normalized, "-")
}

// NormalizeCode returns the primary language subtag (for example, "en" from "en-US").
func NormalizeCode(raw string) string {
	tag := NormalizeTag(raw)
	if tag == "" {
		return ""
	}
	if dash := strings.IndexByte(tag, '-'); dash >= 0 {
		return tag[:dash]
	}
	return tag
}

// Canonical parses a catalog language attribute ("fr", "pt_BR", "zh-Hans")
// into a BCP 47 tag. Qt writes underscores, which x/text does not accept.
func Canonical(raw string) (language.Tag, error) {
	normalized := NormalizeTag(raw)
	if normalized == "" {
		return language.Und, &InvalidTagError{Raw: raw}
	}
	tag, err := language.Parse(normalized)
	if err != nil {
		return language.Und, &InvalidTagError{Raw: raw, Err: err}
	}
	return tag, nil
}

// Base returns the lowercase primary language of tag ("pt" for "pt-BR").
func Base(tag language.Tag) string {
	base, _ := tag.Base()
	return strings.ToLower(base.String())
}

// InvalidTagError reports a language attribute that is not a usable tag.
type InvalidTagError struct {
	Raw string
	Err error
}

func (e *InvalidTagError) Error() string {
	if e.Err != nil {
		return "invalid language tag " + quote(e.Raw) + ": " + e.Err.Error()
	}
	return "invalid language tag " + quote(e.Raw)
}

func (e *InvalidTagError) Unwrap() error {
	return e.Err
}

func quote(s string) string {
	return "\"" + s + "\""
}

func isAlphaLower(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func isAlnumLower(value string) bool {
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
