package catalog

import (
	"fmt"
	"strings"

	"horse.fit/tscat/internal/plural"
)

// Validate runs every structural check over cat and returns all violations.
// It never stops at the first problem. rules may be nil, in which case the
// built-in plural registry is used. Obsolete messages only need a source
// text: they are invisible to lookups, so duplicates and form counts
// among them are not reported.
//
// Source text is unique within a context regardless of <comment>; the
// comment only steers lookups between entries that are already reported.
func Validate(cat *Catalog, rules *plural.Registry) ValidationErrors {
	if cat == nil {
		return nil
	}
	if rules == nil {
		rules = plural.NewDefaultRegistry()
	}
	// An unknown locale is a warning; the fallback cardinality still applies.
	cardinality, _ := rules.Cardinality(cat.Language)

	var errs ValidationErrors
	for _, ctx := range cat.Contexts {
		if strings.TrimSpace(ctx.Name) == "" {
			errs = append(errs, ValidationError{
				Context: ctx.Name,
				Index:   -1,
				Kind:    EmptyContextName,
			})
		}

		seen := make(map[string]int, len(ctx.Messages))
		for idx, msg := range ctx.Messages {
			if strings.TrimSpace(msg.Source) == "" {
				errs = append(errs, ValidationError{
					Context: ctx.Name,
					Source:  msg.Source,
					Index:   idx,
					Kind:    EmptySource,
				})
			}
			if msg.Status == StatusObsolete {
				continue
			}

			if first, dup := seen[msg.Source]; dup {
				errs = append(errs, ValidationError{
					Context: ctx.Name,
					Source:  msg.Source,
					Index:   idx,
					Kind:    DuplicateSource,
					Detail:  fmt.Sprintf("first defined at index %d", first),
				})
			} else {
				seen[msg.Source] = idx
			}

			if !msg.Numerus {
				if len(msg.Translation.Forms) > 0 {
					errs = append(errs, ValidationError{
						Context: ctx.Name,
						Source:  msg.Source,
						Index:   idx,
						Kind:    PayloadShape,
						Detail:  "numerus forms on a message without numerus=\"yes\"",
					})
				}
				continue
			}

			if cardErr, bad := checkCardinality(cat.Language, cardinality, ctx.Name, idx, msg); bad {
				errs = append(errs, cardErr)
			}
		}
	}
	return errs
}

// checkCardinality compares the numerus forms of msg with the language's
// form count. A plain translation counts as zero forms.
func checkCardinality(lang string, cardinality int, context string, idx int, msg Message) (ValidationError, bool) {
	forms := len(msg.Translation.Forms)
	plain := forms == 0 && strings.TrimSpace(msg.Translation.Text) != ""
	if forms == 0 && !plain && msg.Status == StatusUnfinished {
		return ValidationError{}, false
	}
	if forms == cardinality {
		return ValidationError{}, false
	}

	detail := fmt.Sprintf("language %s expects %d forms, got %d", lang, cardinality, forms)
	if plain {
		detail += " (plain translation instead of numerus forms)"
	}
	return ValidationError{
		Context: context,
		Source:  msg.Source,
		Index:   idx,
		Kind:    PluralFormCardinality,
		Detail:  detail,
	}, true
}
