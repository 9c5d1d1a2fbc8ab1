package lookup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWatcherPollReloadsOnChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app_fr.ts")
	write := func(translation string, mod time.Time) {
		t.Helper()
		body := `<TS version="2.1" language="fr"><context><name>Login</name><message><source>Password</source><translation>` +
			translation + `</translation></message></context></TS>`
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	base := time.Now().Add(-time.Hour)
	write("Mot de passe", base)

	service := NewService(nil, zerolog.Nop())
	watcher := NewWatcher(service, path, time.Second, zerolog.Nop())

	changed, err := watcher.Poll()
	if err != nil || !changed {
		t.Fatalf("expected initial poll to load, got changed=%v err=%v", changed, err)
	}
	changed, err = watcher.Poll()
	if err != nil || changed {
		t.Fatalf("expected unchanged file to be skipped, got changed=%v err=%v", changed, err)
	}

	write("Code secret", base.Add(time.Minute))
	changed, err = watcher.Poll()
	if err != nil || !changed {
		t.Fatalf("expected modified file to reload, got changed=%v err=%v", changed, err)
	}
	result, err := service.Resolve(Request{Context: "Login", Source: "Password"})
	if err != nil || result.Text != "Code secret" {
		t.Fatalf("unexpected result after reload: %+v (%v)", result, err)
	}

	write("<broken", base.Add(2*time.Minute))
	if _, err := watcher.Poll(); err == nil {
		t.Fatalf("expected parse failure to surface")
	}
	result, err = service.Resolve(Request{Context: "Login", Source: "Password"})
	if err != nil || result.Text != "Code secret" {
		t.Fatalf("expected previous snapshot after failed reload, got %+v (%v)", result, err)
	}
}

func TestWatcherSeedsFromLoadedSnapshot(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app_fr.ts")
	write := func(translation string, mod time.Time) {
		t.Helper()
		body := `<TS version="2.1" language="fr"><context><name>Login</name><message><source>Password</source><translation>` +
			translation + `</translation></message></context></TS>`
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	base := time.Now().Add(-time.Hour)
	write("Mot de passe", base)

	service := NewService(nil, zerolog.Nop())
	if _, err := service.Reload(path); err != nil {
		t.Fatalf("reload: %v", err)
	}

	unchanged := NewWatcher(service, path, time.Second, zerolog.Nop())
	unchanged.seed()
	if changed, err := unchanged.Poll(); err != nil || changed {
		t.Fatalf("expected loaded file to be the baseline, got changed=%v err=%v", changed, err)
	}

	// Edited after the initial load but before the watcher started.
	write("Code secret", base.Add(time.Minute))
	watcher := NewWatcher(service, path, time.Second, zerolog.Nop())
	watcher.seed()
	changed, err := watcher.Poll()
	if err != nil || !changed {
		t.Fatalf("expected edit before watcher start to reload, got changed=%v err=%v", changed, err)
	}
	result, err := service.Resolve(Request{Context: "Login", Source: "Password"})
	if err != nil || result.Text != "Code secret" {
		t.Fatalf("unexpected result after reload: %+v (%v)", result, err)
	}
}
