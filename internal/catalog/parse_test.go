package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/unicode"
)

func loadFixture(t *testing.T) *Catalog {
	t.Helper()
	cat, err := LoadFile("testdata/fr.ts")
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return cat
}

func TestLoadFixturePreservesDocumentOrder(t *testing.T) {
	t.Parallel()

	cat := loadFixture(t)
	if cat.Language != "fr" || cat.Tag.String() != "fr" {
		t.Fatalf("unexpected language: %q (%s)", cat.Language, cat.Tag)
	}
	if cat.Version != "2.1" {
		t.Fatalf("unexpected version: %q", cat.Version)
	}

	var names []string
	for _, ctx := range cat.Contexts {
		names = append(names, ctx.Name)
	}
	if diff := cmp.Diff([]string{"MainScreen", "Register", "Login"}, names); diff != "" {
		t.Fatalf("context order mismatch (-want +got):\n%s", diff)
	}

	stats := cat.Stats()
	want := Stats{Contexts: 3, Messages: 12, Translated: 10, Unfinished: 2, Plural: 1}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}

	register, ok := cat.Context("Register")
	if !ok {
		t.Fatalf("expected Register context")
	}
	lines := make([]int, 0, len(register.Messages))
	for _, msg := range register.Messages {
		lines = append(lines, msg.Locations[0].Line)
	}
	if diff := cmp.Diff([]int{2, 7, 8, 9, 10}, lines); diff != "" {
		t.Fatalf("location order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFixtureMessageFields(t *testing.T) {
	t.Parallel()

	cat := loadFixture(t)
	main, _ := cat.Context("MainScreen")

	title := main.Messages[0]
	if title.Source != "TODO List" || title.Comment != "The name of the App" {
		t.Fatalf("unexpected first message: %+v", title)
	}
	if title.Status != StatusTranslated || title.Translation.Text != "TODO List" {
		t.Fatalf("unexpected first translation: %+v", title.Translation)
	}

	users := main.Messages[1]
	if !users.Numerus || users.Status != StatusUnfinished {
		t.Fatalf("expected unfinished numerus message, got %+v", users)
	}
	if users.TranslatorComment != "Check this translation" {
		t.Fatalf("unexpected translator comment: %q", users.TranslatorComment)
	}
	wantForms := []string{"Un seul utilisateur en ligne", "Il y a %d utilisateurs en ligne"}
	if diff := cmp.Diff(wantForms, users.Translation.Forms); diff != "" {
		t.Fatalf("forms mismatch (-want +got):\n%s", diff)
	}
	if users.Translation.Text != "" {
		t.Fatalf("expected indentation around forms to be dropped, got %q", users.Translation.Text)
	}
	if diff := cmp.Diff([]Location{{File: "/app/modules/views", Line: 11}}, users.Locations); diff != "" {
		t.Fatalf("locations mismatch (-want +got):\n%s", diff)
	}

	login, _ := cat.Context("Login")
	if login.Messages[0].Source != "Login successful !\nWelcome back %s !" {
		t.Fatalf("multi-line source not preserved: %q", login.Messages[0].Source)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		markup string
		want   error
	}{
		{name: "not xml", markup: "just text", want: ErrMalformedMarkup},
		{name: "empty", markup: "", want: ErrMalformedMarkup},
		{name: "wrong root", markup: `<catalog version="2.1" language="fr"/>`, want: ErrMalformedMarkup},
		{name: "truncated", markup: `<TS version="2.1" language="fr"><context><name>A</name>`, want: ErrMalformedMarkup},
		{name: "mismatched tags", markup: `<TS version="2.1" language="fr"><context></TS>`, want: ErrMalformedMarkup},
		{name: "trailing element", markup: `<TS version="2.1" language="fr"></TS><TS/>`, want: ErrMalformedMarkup},
		{name: "bad language", markup: `<TS version="2.1" language="f$r"></TS>`, want: ErrMalformedMarkup},
		{name: "unsupported version", markup: `<TS version="3.0" language="fr"></TS>`, want: ErrUnsupportedVersion},
		{name: "missing version", markup: `<TS language="fr"></TS>`, want: ErrMissingRequiredField},
		{name: "missing language", markup: `<TS version="2.1"></TS>`, want: ErrMissingRequiredField},
		{name: "missing context name", markup: `<TS version="2.1" language="fr"><context><message><source>a</source></message></context></TS>`, want: ErrMissingRequiredField},
		{name: "missing source", markup: `<TS version="2.1" language="fr"><context><name>A</name><message><translation>b</translation></message></context></TS>`, want: ErrMissingRequiredField},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cat, err := LoadString(tc.markup)
			if cat != nil {
				t.Fatalf("expected no catalog on failure, got %+v", cat)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
		})
	}
}

func TestLoadMissingSourceReportsLine(t *testing.T) {
	t.Parallel()

	markup := "<TS version=\"2.1\" language=\"fr\">\n<context>\n<name>A</name>\n<message>\n<translation>b</translation>\n</message>\n</context>\n</TS>"
	_, err := LoadString(markup)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Kind != MissingRequiredField || parseErr.Line < 6 {
		t.Fatalf("unexpected parse error: %+v", parseErr)
	}
}

func TestLoadMissingTranslationIsUnfinished(t *testing.T) {
	t.Parallel()

	cat, err := LoadString(`<TS version="2.0" language="de"><context><name>A</name><message><source>Hello</source></message></context></TS>`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	msg := cat.Contexts[0].Messages[0]
	if msg.Status != StatusUnfinished || msg.Translation.Text != "" {
		t.Fatalf("expected empty unfinished translation, got %+v", msg)
	}
}

func TestLoadObsoleteAndVanished(t *testing.T) {
	t.Parallel()

	cat, err := LoadString(`<TS version="2.1" language="fr"><context><name>A</name>
<message><source>Old</source><translation type="obsolete">Vieux</translation></message>
<message><source>Gone</source><translation type="vanished">Parti</translation></message>
</context></TS>`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, msg := range cat.Contexts[0].Messages {
		if msg.Status != StatusObsolete {
			t.Fatalf("expected obsolete status for %q, got %q", msg.Source, msg.Status)
		}
	}
}

func TestLoadMergesRepeatedContexts(t *testing.T) {
	t.Parallel()

	cat, err := LoadString(`<TS version="2.1" language="fr">
<context><name>A</name><message><source>one</source><translation>un</translation></message></context>
<context><name>B</name><message><source>x</source><translation>x</translation></message></context>
<context><name>A</name><message><source>two</source><translation>deux</translation></message></context>
</TS>`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cat.Contexts) != 2 {
		t.Fatalf("expected 2 contexts, got %d", len(cat.Contexts))
	}
	a, _ := cat.Context("A")
	if len(a.Messages) != 2 || a.Messages[1].Source != "two" {
		t.Fatalf("unexpected merged messages: %+v", a.Messages)
	}
}

func TestLoadDecodesByteElementsAndSkipsUnknown(t *testing.T) {
	t.Parallel()

	cat, err := LoadString(`<TS version="2.1" language="fr"><dependencies><dependency catalog="qtbase"/></dependencies>
<context><name>A</name><message><source>Bell<byte value="x7"/></source><oldsource>ignored</oldsource>
<translation>Cloche<byte value="7"/></translation><userdata>x</userdata></message></context></TS>`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	msg := cat.Contexts[0].Messages[0]
	if msg.Source != "Bell\a" || msg.Translation.Text != "Cloche\a" {
		t.Fatalf("unexpected byte decoding: %q / %q", msg.Source, msg.Translation.Text)
	}
}

func TestLoadLengthVariants(t *testing.T) {
	t.Parallel()

	cat, err := LoadString(`<TS version="2.1" language="fr"><context><name>A</name><message><source>Save</source>
<translation variants="yes"><lengthvariant>Enregistrer</lengthvariant><lengthvariant>Enr.</lengthvariant></translation>
</message></context></TS>`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cat.Contexts[0].Messages[0].Translation.Text; got != "Enregistrer" {
		t.Fatalf("expected first length variant, got %q", got)
	}
}

func TestLoadHonoursByteOrderMarks(t *testing.T) {
	t.Parallel()

	markup := `<?xml version="1.0" encoding="UTF-16"?>
<TS version="2.1" language="fr"><context><name>Login</name><message><source>Password</source><translation>Mot de passe</translation></message></context></TS>`

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(markup)
	if err != nil {
		t.Fatalf("encode utf-16: %v", err)
	}
	inputs := map[string]string{
		"utf-8 bom":    "\xEF\xBB\xBF" + strings.Replace(markup, "UTF-16", "UTF-8", 1),
		"utf-16le bom": utf16,
	}
	for name, input := range inputs {
		cat, err := LoadString(input)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if got := cat.Contexts[0].Messages[0].Translation.Text; got != "Mot de passe" {
			t.Fatalf("%s: unexpected translation %q", name, got)
		}
	}
}

func TestLoadDeclaredLegacyCharset(t *testing.T) {
	t.Parallel()

	markup := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<TS version=\"2.1\" language=\"fr\"><context><name>A</name><message><source>Coffee</source>" +
		"<translation>Caf\xe9</translation></message></context></TS>"
	cat, err := LoadString(markup)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cat.Contexts[0].Messages[0].Translation.Text; got != "Café" {
		t.Fatalf("unexpected latin-1 decoding: %q", got)
	}
}
