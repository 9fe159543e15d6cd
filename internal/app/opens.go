package app

import (
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/text/unicode/norm"
)

// RecordOpen records a file the OS asked us to open. macOS may hand over
// decomposed (NFD) paths; they are normalized to NFC so the frontend sees
// the same string it gets from its own file listings.
func (s *Service) RecordOpen(path string) {
	if path == "" {
		return
	}
	path = norm.NFC.String(path)
	slog.Info("record open", "path", path)
	s.d.Opens().RecordOpen(path)
}

// RecordOpenFiles records the first of several files opened at once.
func (s *Service) RecordOpenFiles(paths []string) {
	normalized := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			normalized = append(normalized, norm.NFC.String(p))
		}
	}
	if len(normalized) > 0 {
		slog.Info("record open", "path", normalized[0], "count", len(normalized))
	}
	s.d.Opens().RecordOpenFiles(normalized)
}

// RecordOpenURLs records the first of several file URLs opened at once.
func (s *Service) RecordOpenURLs(urls []*url.URL) {
	normalized := make([]*url.URL, 0, len(urls))
	for _, u := range urls {
		if u == nil || u.Path == "" {
			continue
		}
		c := *u
		c.Path = norm.NFC.String(u.Path)
		normalized = append(normalized, &c)
	}
	if len(normalized) > 0 {
		slog.Info("record open", "url", normalized[0].String(), "count", len(normalized))
	}
	s.d.Opens().RecordOpenURLs(normalized)
}

// openBurst is the longest gap between OS open callbacks that still counts
// as one multi-file open. AppKit reports such an open one file at a time.
const openBurst = 250 * time.Millisecond

// openedWithFile handles one OS open-file callback. Only the first file of
// a burst is recorded.
func (s *Service) openedWithFile(path string) {
	if path == "" {
		return
	}
	if !s.firstOfBurst() {
		slog.Debug("skip open in burst", "path", path)
		return
	}
	s.RecordOpen(path)
}

// launchedWithURL handles one OS open-URL callback. Only file URLs are
// recorded, and only the first of a burst.
func (s *Service) launchedWithURL(raw string) {
	u, err := url.Parse(raw)
	if err != nil {
		slog.Warn("parse opened url", "url", raw, "error", err)
		return
	}
	if u.Scheme != "file" || u.Path == "" {
		slog.Debug("ignore opened url", "url", raw)
		return
	}
	if !s.firstOfBurst() {
		slog.Debug("skip open in burst", "url", raw)
		return
	}
	s.RecordOpenURLs([]*url.URL{u})
}

// firstOfBurst reports whether an open arriving now starts a new burst.
// Every call extends the current burst.
func (s *Service) firstOfBurst() bool {
	s.openMu.Lock()
	defer s.openMu.Unlock()

	now := s.now()
	first := s.lastOpen.IsZero() || now.Sub(s.lastOpen) >= openBurst
	s.lastOpen = now
	return first
}
