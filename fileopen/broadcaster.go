// Package fileopen records file-open requests delivered by the OS and streams
// them to at most one listener.
//
// Two views of the same events are kept: the first path ever opened (what the
// process was launched with) and a live stream of later opens. The stream does
// not buffer; a listener only sees opens recorded after it was attached.
package fileopen

import (
	"net/url"
	"sync"
	"sync/atomic"
)

// Listener receives opened paths in arrival order.
// It must not call back into the Broadcaster.
type Listener func(path string)

// Broadcaster holds the initial and latest opened paths and the current
// listener. The zero value is ready to use.
type Broadcaster struct {
	initial atomic.Pointer[string]

	// deliver serializes recording with listener changes, so deliveries
	// reach a listener in arrival order and never after it was replaced.
	deliver sync.Mutex

	mu       sync.Mutex
	latest   *string
	listener Listener
}

// New creates an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{}
}

// RecordOpen records path as the latest opened file, as the initial file if
// none was recorded yet, and hands it to the current listener, if any.
func (b *Broadcaster) RecordOpen(path string) {
	b.deliver.Lock()
	defer b.deliver.Unlock()

	b.initial.CompareAndSwap(nil, &path)

	b.mu.Lock()
	b.latest = &path
	l := b.listener
	b.mu.Unlock()

	if l != nil {
		l(path)
	}
}

// RecordOpenFiles records the first of paths. Empty input is ignored.
func (b *Broadcaster) RecordOpenFiles(paths []string) {
	if len(paths) == 0 {
		return
	}
	b.RecordOpen(paths[0])
}

// RecordOpenURLs records the path of the first of urls. Empty input is ignored.
func (b *Broadcaster) RecordOpenURLs(urls []*url.URL) {
	if len(urls) == 0 || urls[0] == nil {
		return
	}
	b.RecordOpen(urls[0].Path)
}

// Attach makes l the only listener, replacing any previous one.
// Earlier opens are not replayed. Once Attach returns the previous
// listener receives nothing more.
func (b *Broadcaster) Attach(l Listener) {
	b.deliver.Lock()
	defer b.deliver.Unlock()

	b.mu.Lock()
	b.listener = l
	b.mu.Unlock()
}

// Detach removes the current listener. Later opens still update the
// initial and latest paths.
func (b *Broadcaster) Detach() {
	b.Attach(nil)
}

// Attached reports whether a listener is attached.
func (b *Broadcaster) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listener != nil
}

// InitialFile returns the first path recorded since the process started.
func (b *Broadcaster) InitialFile() (string, bool) {
	p := b.initial.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}

// LatestFile returns the most recently recorded path.
func (b *Broadcaster) LatestFile() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.latest == nil {
		return "", false
	}
	return *b.latest, true
}
