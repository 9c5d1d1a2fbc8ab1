// Package export converts TS catalogs into go-i18n message files so Go
// services can consume translations maintained with Qt tooling.
package export

import (
	"fmt"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	xplural "golang.org/x/text/feature/plural"

	"horse.fit/tscat/internal/catalog"
	"horse.fit/tscat/internal/placeholder"
	"horse.fit/tscat/internal/plural"
)

// Options controls which messages are exported.
type Options struct {
	// IncludeUnfinished exports unfinished translations too. They are
	// skipped by default, matching what lrelease does.
	IncludeUnfinished bool
	Rules             *plural.Registry
}

// Skip records a message that was left out of the export.
type Skip struct {
	Context string `json:"context"`
	Source  string `json:"source"`
	Reason  string `json:"reason"`
}

// Result is the outcome of converting one catalog.
type Result struct {
	Messages []*i18n.Message
	Skipped  []Skip
	// LocaleWarning is set when the catalog language has no registered
	// plural rule and the two-form categories were used.
	LocaleWarning error
}

// Messages converts every visible, translated message of cat into a
// go-i18n message. Placeholders become template fields: %1..%99 and the
// sequential tokens map to .Arg1, .Arg2...; %n maps to .PluralCount.
func Messages(cat *catalog.Catalog, opts Options) (Result, error) {
	if cat == nil {
		return Result{}, fmt.Errorf("catalog is nil")
	}
	rules := opts.Rules
	if rules == nil {
		rules = plural.NewDefaultRegistry()
	}
	categories, warning := rules.Categories(cat.Language)
	if categories == nil {
		return Result{}, warning
	}

	result := Result{LocaleWarning: warning}
	seen := make(map[string]struct{})
	for _, ctx := range cat.Contexts {
		for _, msg := range ctx.Messages {
			skip := func(reason string) {
				result.Skipped = append(result.Skipped, Skip{Context: ctx.Name, Source: msg.Source, Reason: reason})
			}

			switch {
			case msg.Status == catalog.StatusObsolete:
				continue
			case msg.Status == catalog.StatusUnfinished && !opts.IncludeUnfinished:
				skip("unfinished")
				continue
			}

			id := MessageID(ctx.Name, msg)
			if _, dup := seen[id]; dup {
				skip("duplicate message id " + id)
				continue
			}

			out := &i18n.Message{ID: id, Description: description(msg)}
			if msg.Numerus {
				forms := msg.Translation.Forms
				if len(forms) == 0 {
					skip("no numerus forms")
					continue
				}
				if len(forms) != len(categories) {
					skip(fmt.Sprintf("expected %d numerus forms, got %d", len(categories), len(forms)))
					continue
				}
				for idx, form := range forms {
					setForm(out, categories[idx], Template(form, true))
				}
			} else {
				if msg.Translation.Text == "" {
					skip("empty translation")
					continue
				}
				out.Other = Template(msg.Translation.Text, false)
			}

			seen[id] = struct{}{}
			result.Messages = append(result.Messages, out)
		}
	}
	return result, nil
}

// MessageID names a message in the exported file. An explicit TS id wins;
// otherwise the context and source are joined with a dot and the
// disambiguation comment, if any, is appended after a '#'.
func MessageID(context string, msg catalog.Message) string {
	if msg.ID != "" {
		return msg.ID
	}
	id := context + "." + msg.Source
	if msg.Comment != "" {
		id += "#" + msg.Comment
	}
	return id
}

// Template rewrites a TS translation into a go-i18n template. In numerus
// messages the first %d (or %i) is the count, as it is at lookup time.
func Template(text string, numerus bool) string {
	tokens := placeholder.Scan(text)
	if len(tokens) == 0 {
		return escapeDelims(text)
	}

	var b strings.Builder
	last, seq := 0, 0
	for _, tok := range tokens {
		b.WriteString(escapeDelims(text[last:tok.Start]))
		last = tok.End

		switch tok.Kind {
		case placeholder.Escape:
			b.WriteByte('%')
		case placeholder.Count:
			b.WriteString("{{.PluralCount}}")
		case placeholder.Numbered:
			fmt.Fprintf(&b, "{{.Arg%d}}", tok.Number)
		case placeholder.Sequential:
			seq++
			if numerus && seq == 1 && (tok.Verb == 'd' || tok.Verb == 'i') {
				b.WriteString("{{.PluralCount}}")
				continue
			}
			fmt.Fprintf(&b, "{{.Arg%d}}", seq)
		}
	}
	b.WriteString(escapeDelims(text[last:]))
	return b.String()
}

// TemplateData builds the data a Localize call needs to render a
// template produced by Template.
func TemplateData(count *int, args []any) map[string]any {
	data := make(map[string]any, len(args)+1)
	if count != nil {
		data["PluralCount"] = *count
	}
	for idx, arg := range args {
		data[fmt.Sprintf("Arg%d", idx+1)] = arg
	}
	return data
}

func escapeDelims(s string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return strings.ReplaceAll(s, "{{", `{{"{{"}}`)
}

func description(msg catalog.Message) string {
	parts := make([]string, 0, 2)
	if msg.Comment != "" {
		parts = append(parts, msg.Comment)
	}
	if msg.ExtraComment != "" {
		parts = append(parts, msg.ExtraComment)
	}
	return strings.Join(parts, "\n")
}

func setForm(msg *i18n.Message, form xplural.Form, text string) {
	switch form {
	case xplural.Zero:
		msg.Zero = text
	case xplural.One:
		msg.One = text
	case xplural.Two:
		msg.Two = text
	case xplural.Few:
		msg.Few = text
	case xplural.Many:
		msg.Many = text
	default:
		msg.Other = text
	}
}
