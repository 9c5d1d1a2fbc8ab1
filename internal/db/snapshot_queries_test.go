package db

import (
	"encoding/json"
	"testing"

	"gorm.io/gorm/logger"

	"horse.fit/tscat/internal/catalog"
)

const publishCatalog = `<TS version="2.1" language="fr" sourcelanguage="en"><context><name>Login</name>
<message id="login.password"><location filename="login.ui" line="12"/><source>Password</source><translation>Mot de passe</translation></message>
<message numerus="yes"><source>%n attempts left</source><translation type="unfinished"><numerusform>%n essai restant</numerusform><numerusform>%n essais restants</numerusform></translation></message>
<message><source>Old</source><comment>legacy</comment><translation type="obsolete">Ancien</translation></message>
</context></TS>`

func TestBuildSnapshotRows(t *testing.T) {
	t.Parallel()

	cat, err := catalog.LoadString(publishCatalog)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	problems := catalog.ValidationErrors{{Context: "Login", Source: "x", Index: 0, Kind: catalog.EmptySource}}

	rows, err := BuildSnapshotRows(cat, "i18n/app_fr.ts", problems)
	if err != nil {
		t.Fatalf("build rows: %v", err)
	}

	snap := rows.Snapshot
	if snap.Language != "fr" || snap.TSVersion != "2.1" || snap.Origin != "i18n/app_fr.ts" {
		t.Fatalf("unexpected snapshot header: %+v", snap)
	}
	if snap.SourceLanguage == nil || *snap.SourceLanguage != "en" {
		t.Fatalf("expected source language en, got %v", snap.SourceLanguage)
	}
	if snap.MessageCount != 3 || snap.UnfinishedCount != 1 || snap.ObsoleteCount != 1 || snap.ContextCount != 1 {
		t.Fatalf("unexpected counts: %+v", snap)
	}
	if len(snap.ContentHash) != 32 {
		t.Fatalf("expected sha256 content hash, got %d bytes", len(snap.ContentHash))
	}
	var decoded []catalog.ValidationError
	if err := json.Unmarshal(snap.ValidationErrors, &decoded); err != nil || len(decoded) != 1 {
		t.Fatalf("unexpected validation errors json %s (%v)", snap.ValidationErrors, err)
	}

	if len(rows.Messages) != 3 {
		t.Fatalf("expected 3 message rows, got %d", len(rows.Messages))
	}
	first := rows.Messages[0]
	if first.ExternalID == nil || *first.ExternalID != "login.password" || first.Translation != "Mot de passe" || first.Locations == nil {
		t.Fatalf("unexpected first row: %+v", first)
	}
	plural := rows.Messages[1]
	var forms []string
	if err := json.Unmarshal(plural.NumerusForms, &forms); err != nil || len(forms) != 2 || !plural.Numerus {
		t.Fatalf("unexpected plural row: %+v (%v)", plural, err)
	}
	if plural.Status != "unfinished" || plural.Position != 1 {
		t.Fatalf("unexpected plural status/position: %+v", plural)
	}
	obsolete := rows.Messages[2]
	if obsolete.Comment == nil || *obsolete.Comment != "legacy" || obsolete.Status != "obsolete" {
		t.Fatalf("unexpected obsolete row: %+v", obsolete)
	}
}

func TestBuildSnapshotRowsHashIgnoresFormatting(t *testing.T) {
	t.Parallel()

	compact, err := catalog.LoadString(`<TS version="2.1" language="fr"><context><name>A</name><message><source>x</source><translation>y</translation></message></context></TS>`)
	if err != nil {
		t.Fatalf("load compact: %v", err)
	}
	spaced, err := catalog.LoadString(`<?xml version="1.0" encoding="utf-8"?>
<TS version="2.1" language="fr">
  <context>
    <name>A</name>
    <message>
      <source>x</source>
      <translation>y</translation>
    </message>
  </context>
</TS>`)
	if err != nil {
		t.Fatalf("load spaced: %v", err)
	}

	a, err := BuildSnapshotRows(compact, "a.ts", nil)
	if err != nil {
		t.Fatalf("build compact: %v", err)
	}
	b, err := BuildSnapshotRows(spaced, "b.ts", nil)
	if err != nil {
		t.Fatalf("build spaced: %v", err)
	}
	if string(a.Snapshot.ContentHash) != string(b.Snapshot.ContentHash) {
		t.Fatalf("expected formatting-only changes to keep the content hash")
	}
	if string(a.Snapshot.ValidationErrors) != "[]" {
		t.Fatalf("expected empty validation errors array, got %s", a.Snapshot.ValidationErrors)
	}
}

func TestBuildSnapshotRowsNilCatalog(t *testing.T) {
	t.Parallel()

	if _, err := BuildSnapshotRows(nil, "x", nil); err == nil {
		t.Fatalf("expected nil catalog error")
	}
}

func TestResolveGormLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level string
		env   string
		want  logger.LogLevel
	}{
		{level: "debug", want: logger.Info},
		{level: "info", want: logger.Warn},
		{level: "error", want: logger.Error},
		{level: "silent", want: logger.Silent},
		{level: "bogus", env: "local", want: logger.Warn},
		{level: "bogus", env: "production", want: logger.Error},
	}
	for _, tc := range cases {
		if got := resolveGormLogLevel(tc.level, tc.env); got != tc.want {
			t.Fatalf("level %q env %q: got %v want %v", tc.level, tc.env, got, tc.want)
		}
	}
}
