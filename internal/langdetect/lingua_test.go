package langdetect

import "testing"

func TestDetectSkipsShortText(t *testing.T) {
	t.Parallel()

	detector := New("en", "fr")
	for _, text := range []string{"", "   ", "OK", "%1 / %2", "Oui !"} {
		if got := detector.Detect(text); got != "" {
			t.Fatalf("detect %q: expected no guess, got %q", text, got)
		}
	}
}

func TestResolveLanguages(t *testing.T) {
	t.Parallel()

	languages := resolveLanguages([]string{"fr", "de", "zz"})
	if len(languages) != 2 {
		t.Fatalf("expected two known languages, got %d", len(languages))
	}
	got := map[string]bool{}
	for _, language := range languages {
		got[isoCode(language)] = true
	}
	if !got["fr"] || !got["de"] {
		t.Fatalf("unexpected languages: %v", got)
	}
	if resolveLanguages(nil) != nil {
		t.Fatalf("expected nil for no codes")
	}
}

func TestDetectRestrictedLanguages(t *testing.T) {
	t.Parallel()

	detector := New("en", "fr_FR", "de")
	cases := []struct {
		text string
		want string
	}{
		{text: "Entrez votre adresse dans le champ ci-dessous pour recevoir un nouveau mot de passe.", want: "fr"},
		{text: "Enter your address in the field below to receive a new password by email.", want: "en"},
		{text: "Geben Sie unten Ihre Adresse ein, um ein neues Passwort zu erhalten.", want: "de"},
	}
	for _, tc := range cases {
		if got := detector.Detect(tc.text); got != tc.want {
			t.Fatalf("detect %q: got %q want %q", tc.text, got, tc.want)
		}
	}
}
