package plural

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"

	langtag "horse.fit/tscat/internal/language"
)

// ErrUnknownLocale is matched by UnknownLocaleError through errors.Is.
var ErrUnknownLocale = errors.New("unknown locale")

// UnknownLocaleError is a warning: the default rule was applied.
type UnknownLocaleError struct {
	Tag string
}

func (e *UnknownLocaleError) Error() string {
	return fmt.Sprintf("no plural rule registered for %q, using two-form default", e.Tag)
}

func (e *UnknownLocaleError) Is(target error) bool {
	return target == ErrUnknownLocale
}

// Registry stores plural rule sets keyed by normalized language tag.
type Registry struct {
	mu       sync.RWMutex
	rules    map[string]RuleSet
	fallback RuleSet
}

// NewRegistry returns an empty registry whose fallback is TwoForm.
func NewRegistry() *Registry {
	return &Registry{
		rules:    make(map[string]RuleSet),
		fallback: TwoForm{},
	}
}

// NewDefaultRegistry returns a registry preloaded with the built-in rules.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	for _, code := range twoFormLanguages {
		_ = registry.Register(code, TwoForm{})
	}
	for _, code := range oneFormLanguages {
		_ = registry.Register(code, OneForm{})
	}
	_ = registry.Register("lv", LatvianRule{})
	for _, entry := range cldrLanguages {
		_ = registry.Register(entry.code, NewCLDRRule(language.MustParse(entry.code), entry.order...))
	}
	return registry
}

// Register binds a rule set to a language tag ("ru", "pt-BR", "pt_BR").
// A region-specific rule wins over the rule of its base language.
func (r *Registry) Register(tag string, rule RuleSet) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if rule == nil {
		return fmt.Errorf("rule is nil")
	}
	if rule.Cardinality() < 1 {
		return fmt.Errorf("rule for %q must have at least one form", tag)
	}
	key := langtag.NormalizeTag(tag)
	if key == "" {
		return fmt.Errorf("invalid language tag %q", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[key] = rule
	return nil
}

// Rule resolves the rule set for tag. Unknown tags return the fallback rule
// together with an *UnknownLocaleError; the rule is usable either way.
func (r *Registry) Rule(tag string) (RuleSet, error) {
	if r == nil {
		return TwoForm{}, &UnknownLocaleError{Tag: tag}
	}

	key := langtag.NormalizeTag(tag)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if key != "" {
		if rule, ok := r.rules[key]; ok {
			return rule, nil
		}
		if code := langtag.NormalizeCode(key); code != key {
			if rule, ok := r.rules[code]; ok {
				return rule, nil
			}
		}
	}
	return r.fallback, &UnknownLocaleError{Tag: tag}
}

// Resolve returns the form index for count under tag's rule.
func (r *Registry) Resolve(tag string, count int) (int, error) {
	rule, err := r.Rule(tag)
	return rule.FormIndex(count), err
}

// Cardinality returns the number of forms tag's rule expects.
func (r *Registry) Cardinality(tag string) (int, error) {
	rule, err := r.Rule(tag)
	return rule.Cardinality(), err
}

// Categories returns the CLDR category of each form tag's rule expects.
// Like Rule, an unknown tag yields the fallback categories together with
// an *UnknownLocaleError.
func (r *Registry) Categories(tag string) ([]plural.Form, error) {
	rule, err := r.Rule(tag)
	categorized, ok := rule.(Categorized)
	if !ok {
		return nil, fmt.Errorf("plural rule for %q does not declare CLDR categories", tag)
	}
	return categorized.Categories(), err
}

// Tags lists registered tags in sorted order.
func (r *Registry) Tags() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.rules))
	for tag := range r.rules {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
