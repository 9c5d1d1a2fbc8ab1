package plural

import (
	"errors"
	"strings"
	"testing"
)

func TestTwoFormRule(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry()
	cases := []struct {
		tag   string
		count int
		want  int
	}{
		{tag: "fr", count: 1, want: 0},
		{tag: "fr", count: 0, want: 1},
		{tag: "fr", count: 5, want: 1},
		{tag: "en_US", count: 1, want: 0},
		{tag: "en-GB", count: 2, want: 1},
	}
	for _, tc := range cases {
		got, err := registry.Resolve(tc.tag, tc.count)
		if err != nil {
			t.Fatalf("resolve %s/%d: unexpected error: %v", tc.tag, tc.count, err)
		}
		if got != tc.want {
			t.Fatalf("resolve %s/%d: got %d want %d", tc.tag, tc.count, got, tc.want)
		}
	}
}

func TestCLDRBackedRules(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry()
	cases := []struct {
		tag   string
		count int
		want  int
	}{
		{tag: "ru", count: 1, want: 0},
		{tag: "ru", count: 21, want: 0},
		{tag: "ru", count: 3, want: 1},
		{tag: "ru", count: 11, want: 2},
		{tag: "ru", count: 25, want: 2},
		{tag: "pl", count: 1, want: 0},
		{tag: "pl", count: 22, want: 1},
		{tag: "pl", count: 12, want: 2},
		{tag: "ar", count: 0, want: 0},
		{tag: "ar", count: 1, want: 1},
		{tag: "ar", count: 2, want: 2},
		{tag: "ar", count: 7, want: 3},
		{tag: "ar", count: 42, want: 4},
		{tag: "ar", count: 100, want: 5},
		{tag: "sl", count: 102, want: 1},
		{tag: "lv", count: 1, want: 0},
		{tag: "lv", count: 21, want: 0},
		{tag: "lv", count: 11, want: 1},
		{tag: "lv", count: 10, want: 1},
		{tag: "lv", count: 15, want: 1},
		{tag: "lv", count: 20, want: 1},
		{tag: "lv", count: 0, want: 2},
	}
	for _, tc := range cases {
		got, err := registry.Resolve(tc.tag, tc.count)
		if err != nil {
			t.Fatalf("resolve %s/%d: unexpected error: %v", tc.tag, tc.count, err)
		}
		if got != tc.want {
			t.Fatalf("resolve %s/%d: got %d want %d", tc.tag, tc.count, got, tc.want)
		}
	}

	if got, _ := registry.Cardinality("ar"); got != 6 {
		t.Fatalf("unexpected arabic cardinality: %d", got)
	}
	if got, _ := registry.Cardinality("ja"); got != 1 {
		t.Fatalf("unexpected japanese cardinality: %d", got)
	}
}

func TestUnknownLocaleFallsBackToTwoForm(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry()
	idx, err := registry.Resolve("tlh", 1)
	if !errors.Is(err, ErrUnknownLocale) {
		t.Fatalf("expected unknown locale warning, got %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected fallback index 0, got %d", idx)
	}

	var unknown *UnknownLocaleError
	if !errors.As(err, &unknown) || unknown.Tag != "tlh" {
		t.Fatalf("expected UnknownLocaleError for tlh, got %v", err)
	}
}

type everyThirdRule struct{}

func (everyThirdRule) Cardinality() int        { return 3 }
func (everyThirdRule) FormIndex(count int) int { return count % 3 }

func TestRegisterRegionalOverride(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry()
	if err := registry.Register("fr_CA", everyThirdRule{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := registry.Resolve("fr-CA", 5)
	if err != nil {
		t.Fatalf("resolve fr-CA: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected regional rule to win, got %d", got)
	}

	got, err = registry.Resolve("fr-BE", 5)
	if err != nil {
		t.Fatalf("resolve fr-BE: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected base french rule, got %d", got)
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	if err := registry.Register("", TwoForm{}); err == nil {
		t.Fatalf("expected error for empty tag")
	}
	if err := registry.Register("fr", nil); err == nil {
		t.Fatalf("expected error for nil rule")
	}
}

func TestCategories(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry()
	cases := []struct {
		tag  string
		want []string
	}{
		{tag: "fr", want: []string{"one", "other"}},
		{tag: "ja", want: []string{"other"}},
		{tag: "ru", want: []string{"one", "few", "many"}},
		{tag: "lv", want: []string{"one", "other", "zero"}},
		{tag: "ar", want: []string{"zero", "one", "two", "few", "many", "other"}},
	}
	for _, tc := range cases {
		forms, err := registry.Categories(tc.tag)
		if err != nil {
			t.Fatalf("categories %s: %v", tc.tag, err)
		}
		got := make([]string, 0, len(forms))
		for _, form := range forms {
			got = append(got, FormName(form))
		}
		if strings.Join(got, ",") != strings.Join(tc.want, ",") {
			t.Fatalf("categories %s: got %v want %v", tc.tag, got, tc.want)
		}
	}

	forms, err := registry.Categories("tlh")
	if !errors.Is(err, ErrUnknownLocale) || len(forms) != 2 {
		t.Fatalf("expected fallback categories with warning, got %v (%v)", forms, err)
	}

	if err := registry.Register("xx", everyThirdRule{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := registry.Categories("xx"); err == nil || errors.Is(err, ErrUnknownLocale) {
		t.Fatalf("expected uncategorized rule error, got %v", err)
	}
}
