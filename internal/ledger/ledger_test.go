package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load on missing file returned error: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("fresh ledger Len() = %d, want 0", l.Len())
	}
}

func TestRecordAndHas(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "history.txt"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	const url = "https://www.olx.pl/d/oferta/iphone-13-ID1.html"
	if l.Has(url) {
		t.Error("Has on empty ledger should be false")
	}
	if !l.Record(url) {
		t.Error("first Record should report newly added")
	}
	if l.Record(url) {
		t.Error("second Record of same URL should report already present")
	}
	if !l.Has(url) {
		t.Error("Has after Record should be true")
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestPersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	urls := []string{
		"https://www.olx.pl/d/oferta/iphone-13-ID1.html",
		"https://www.olx.pl/d/oferta/iphone-14-pro-ID2.html",
	}
	for _, u := range urls {
		l.Record(u)
	}
	if err := l.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Persist failed: %v", err)
	}
	if reloaded.Len() != len(urls) {
		t.Fatalf("reloaded Len() = %d, want %d", reloaded.Len(), len(urls))
	}
	for _, u := range urls {
		if !reloaded.Has(u) {
			t.Errorf("reloaded ledger missing %s", u)
		}
	}
}

func TestPersistReplacesPreviousContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")
	if err := os.WriteFile(path, []byte("https://www.olx.pl/stale\n"), 0o644); err != nil {
		t.Fatalf("seed write failed: %v", err)
	}

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	l.Record("https://www.olx.pl/fresh")
	if err := l.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "https://www.olx.pl/stale") || !strings.Contains(content, "https://www.olx.pl/fresh") {
		t.Errorf("persisted file missing expected entries:\n%s", content)
	}
	if got := len(strings.Fields(content)); got != 2 {
		t.Errorf("persisted file has %d entries, want 2", got)
	}
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")
	seed := "https://www.olx.pl/a\n\n  \nhttps://www.olx.pl/b\n"
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("seed write failed: %v", err)
	}

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}
