package catalog

import (
	"testing"
)

type stubDetector struct {
	answer string
	calls  int
}

func (d *stubDetector) Detect(string) string {
	d.calls++
	return d.answer
}

func TestLintFixtureHasNoFindings(t *testing.T) {
	t.Parallel()

	cat := loadFixture(t)
	if findings := Lint(cat, LintOptions{}); len(findings) != 0 {
		t.Fatalf("expected no findings, got %v", findings)
	}
}

func TestLintReportsTextIssues(t *testing.T) {
	t.Parallel()

	cat, err := LoadString(`<TS version="2.1" language="fr"><context><name>A</name>
<message><source>Welcome %s</source><translation>Bienvenue</translation></message>
<message><source> Name:</source><translation>Nom : </translation></message>
<message><source>One line</source><translation>Une
ligne</translation></message>
<message><source>Broken</source><translation>Cass` + "�" + `</translation></message>
<message><source>Empty</source><translation></translation></message>
<message><source>Draft</source><translation type="unfinished">Brouillon </translation></message>
<message><source>Gone</source><translation type="obsolete"></translation></message>
</context></TS>`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	findings := Lint(cat, LintOptions{})
	got := map[FindingKind]int{}
	for _, f := range findings {
		got[f.Kind]++
	}
	want := map[FindingKind]int{
		PlaceholderMismatch: 1,
		SpaceHeadMismatch:   1,
		SpaceTailMismatch:   1,
		MultilineMismatch:   1,
		Mojibake:            1,
		EmptyTranslation:    1,
	}
	for kind, n := range want {
		if got[kind] != n {
			t.Fatalf("expected %d %s findings, got %d (%v)", n, kind, got[kind], findings)
		}
	}
	if len(findings) != 6 {
		t.Fatalf("expected 6 findings, got %d: %v", len(findings), findings)
	}
}

func TestLintLanguageMismatchUsesDetector(t *testing.T) {
	t.Parallel()

	cat, err := LoadString(`<TS version="2.1" language="fr"><context><name>A</name>
<message><source>Enter your address in the field below</source><translation>Enter your address in the field below</translation></message>
<message><source>Short</source><translation>Court</translation></message>
</context></TS>`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	detector := &stubDetector{answer: "en"}
	findings := Lint(cat, LintOptions{Detector: detector})
	if len(findings) != 1 || findings[0].Kind != LanguageMismatch {
		t.Fatalf("expected one language mismatch, got %v", findings)
	}
	if detector.calls != 1 {
		t.Fatalf("expected detector to skip short texts, got %d calls", detector.calls)
	}
}
