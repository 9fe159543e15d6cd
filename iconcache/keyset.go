package iconcache

import "sync"

// KeySet is the membership store behind a Cache.
// Implementations must be safe for concurrent use.
type KeySet interface {
	Has(key string) (bool, error)
	Add(key string) error
	Len() int
	Close() error
}

// MemoryKeySet is a map-backed KeySet.
type MemoryKeySet struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewMemoryKeySet creates an empty MemoryKeySet.
func NewMemoryKeySet() *MemoryKeySet {
	return &MemoryKeySet{keys: make(map[string]struct{})}
}

func (s *MemoryKeySet) Has(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok, nil
}

func (s *MemoryKeySet) Add(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = struct{}{}
	return nil
}

func (s *MemoryKeySet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

func (s *MemoryKeySet) Close() error {
	return nil
}
