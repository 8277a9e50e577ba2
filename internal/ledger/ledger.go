// Package ledger tracks which listing URLs have already been notified,
// persisted as a plain line-per-URL text file so the set survives
// restarts.
package ledger

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ledger is a durable set of notified listing URLs. It is not safe for
// concurrent use; the pipeline runs one cycle at a time.
type Ledger struct {
	path string
	urls map[string]struct{}
}

// Load reads the persisted set from path. A missing file yields an empty
// ledger, not an error; any other read failure is surfaced.
func Load(path string) (*Ledger, error) {
	l := &Ledger{path: path, urls: make(map[string]struct{})}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("No notification history found, starting fresh", "path", path)
			return l, nil
		}
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			l.urls[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", path, err)
	}

	slog.Info("Loaded notification history", "path", path, "count", len(l.urls))
	return l, nil
}

// Has reports whether url has already been notified.
func (l *Ledger) Has(url string) bool {
	_, ok := l.urls[url]
	return ok
}

// Record adds url to the set. Recording an already-present URL is a
// no-op; the return value reports whether the URL was newly added.
func (l *Ledger) Record(url string) bool {
	if _, ok := l.urls[url]; ok {
		return false
	}
	l.urls[url] = struct{}{}
	return true
}

// Len returns the number of recorded URLs.
func (l *Ledger) Len() int {
	return len(l.urls)
}

// Persist writes the full set to disk, replacing any previous contents.
// The write goes through a temp file and rename so a crash mid-write
// never truncates the existing history.
func (l *Ledger) Persist() error {
	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	tmpName := tmp.Name()

	urls := make([]string, 0, len(l.urls))
	for u := range l.urls {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	w := bufio.NewWriter(tmp)
	for _, u := range urls {
		if _, err := fmt.Fprintln(w, u); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("failed to write ledger entry: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp ledger file: %w", err)
	}

	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace ledger %s: %w", l.path, err)
	}
	return nil
}
