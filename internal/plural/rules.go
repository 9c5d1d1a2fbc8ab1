// Package plural selects numerus forms for a language and a count.
//
// Forms are indexed the way Qt TS files order <numerusform> entries, so a
// catalog written by lupdate/linguist resolves without reordering.
package plural

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// RuleSet maps a cardinal count to the index of the plural form to use.
type RuleSet interface {
	// Cardinality is the number of forms a catalog must provide.
	Cardinality() int
	// FormIndex returns a 0-based index below Cardinality.
	FormIndex(count int) int
}

// Categorized is implemented by rule sets whose forms line up with CLDR
// plural categories. Categories()[i] labels form i.
type Categorized interface {
	Categories() []plural.Form
}

// TwoForm is the English/French-style rule: count == 1 selects form 0,
// everything else form 1.
type TwoForm struct{}

func (TwoForm) Cardinality() int { return 2 }

func (TwoForm) FormIndex(count int) int {
	if count == 1 {
		return 0
	}
	return 1
}

func (TwoForm) Categories() []plural.Form { return []plural.Form{plural.One, plural.Other} }

// OneForm is for languages without grammatical number (Japanese, Chinese...).
type OneForm struct{}

func (OneForm) Cardinality() int { return 1 }

func (OneForm) FormIndex(int) int { return 0 }

func (OneForm) Categories() []plural.Form { return []plural.Form{plural.Other} }

// LatvianRule is Qt's Latvian order: n%10==1 && n%100!=11 selects form 0,
// any other non-zero count form 1, and only 0 itself form 2. CLDR's "zero"
// category also covers 10, 11..19, 20..., so it cannot be used here.
type LatvianRule struct{}

func (LatvianRule) Cardinality() int { return 3 }

func (LatvianRule) FormIndex(count int) int {
	n := count
	if n < 0 {
		n = -n
	}
	if n%10 == 1 && n%100 != 11 {
		return 0
	}
	if n != 0 {
		return 1
	}
	return 2
}

func (LatvianRule) Categories() []plural.Form {
	return []plural.Form{plural.One, plural.Other, plural.Zero}
}

// CLDRRule selects forms with the CLDR cardinal rules shipped in
// golang.org/x/text and maps the CLDR category onto an ordered form list.
type CLDRRule struct {
	tag   language.Tag
	order []plural.Form
}

// NewCLDRRule builds a rule for tag whose catalog forms appear in order.
func NewCLDRRule(tag language.Tag, order ...plural.Form) *CLDRRule {
	copied := make([]plural.Form, len(order))
	copy(copied, order)
	return &CLDRRule{tag: tag, order: copied}
}

func (r *CLDRRule) Cardinality() int { return len(r.order) }

func (r *CLDRRule) Categories() []plural.Form {
	out := make([]plural.Form, len(r.order))
	copy(out, r.order)
	return out
}

func (r *CLDRRule) FormIndex(count int) int {
	if len(r.order) == 0 {
		return 0
	}
	n := count
	if n < 0 {
		n = -n
	}
	form := plural.Cardinal.MatchPlural(r.tag, n, 0, 0, 0, 0)
	for idx, candidate := range r.order {
		if candidate == form {
			return idx
		}
	}
	return len(r.order) - 1
}

// FormName returns the CLDR keyword of f ("zero", "one", ... "other").
func FormName(f plural.Form) string {
	switch f {
	case plural.Zero:
		return "zero"
	case plural.One:
		return "one"
	case plural.Two:
		return "two"
	case plural.Few:
		return "few"
	case plural.Many:
		return "many"
	default:
		return "other"
	}
}

var (
	twoFormLanguages = []string{
		"bg", "ca", "da", "de", "el", "en", "eo", "es", "et", "eu", "fi", "fo",
		"fr", "fy", "gl", "he", "hu", "it", "nb", "nl", "nn", "no", "pt", "sq",
		"sv", "tr",
	}
	oneFormLanguages = []string{
		"id", "ja", "ko", "lo", "ms", "th", "vi", "zh",
	}
)

type cldrSpec struct {
	code  string
	order []plural.Form
}

var cldrLanguages = []cldrSpec{
	{code: "ru", order: []plural.Form{plural.One, plural.Few, plural.Many}},
	{code: "uk", order: []plural.Form{plural.One, plural.Few, plural.Many}},
	{code: "be", order: []plural.Form{plural.One, plural.Few, plural.Many}},
	{code: "sr", order: []plural.Form{plural.One, plural.Few, plural.Other}},
	{code: "hr", order: []plural.Form{plural.One, plural.Few, plural.Other}},
	{code: "bs", order: []plural.Form{plural.One, plural.Few, plural.Other}},
	{code: "cs", order: []plural.Form{plural.One, plural.Few, plural.Other}},
	{code: "sk", order: []plural.Form{plural.One, plural.Few, plural.Other}},
	{code: "pl", order: []plural.Form{plural.One, plural.Few, plural.Many}},
	{code: "lt", order: []plural.Form{plural.One, plural.Few, plural.Other}},
	{code: "ro", order: []plural.Form{plural.One, plural.Few, plural.Other}},
	{code: "sl", order: []plural.Form{plural.One, plural.Two, plural.Few, plural.Other}},
	{code: "ar", order: []plural.Form{plural.Zero, plural.One, plural.Two, plural.Few, plural.Many, plural.Other}},
}
