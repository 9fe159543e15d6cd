package iconcache

import (
	"errors"
	"fmt"
	"sync"
)

// ErrEncodingFailure is returned when an icon bitmap could not be encoded
// on first sighting.
var ErrEncodingFailure = errors.New("icon encoding failed")

// Result is the outcome of a lookup. PNG is nil when the key was already
// delivered and the caller should reuse its copy.
type Result struct {
	Key string
	PNG []byte
}

// Hit reports whether the key was already known.
func (r Result) Hit() bool {
	return r.PNG == nil
}

// Cache tracks icon keys already delivered to the frontend.
// Keys are never removed; the set lives as long as the process.
type Cache struct {
	keys KeySet

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// New creates a Cache backed by keys.
func New(keys KeySet) *Cache {
	return &Cache{
		keys:  keys,
		locks: make(map[string]*keyLock),
	}
}

// LookupOrInsert returns {key} if key was delivered before. Otherwise it
// calls render, records key and returns {key, png}.
//
// Calls for the same key are serialized so that exactly one of them renders.
// Calls for different keys run in parallel. A failed render leaves the set
// untouched, so a retry is treated as a first sighting again.
func (c *Cache) LookupOrInsert(key string, render func() ([]byte, error)) (Result, error) {
	l := c.acquire(key)
	defer c.release(key, l)

	l.mu.Lock()
	defer l.mu.Unlock()

	known, err := c.keys.Has(key)
	if err != nil {
		return Result{}, fmt.Errorf("lookup icon key: %w", err)
	}
	if known {
		return Result{Key: key}, nil
	}

	png, err := render()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrEncodingFailure, err)
	}
	if len(png) == 0 {
		return Result{}, fmt.Errorf("%w: empty bitmap", ErrEncodingFailure)
	}

	if err := c.keys.Add(key); err != nil {
		return Result{}, fmt.Errorf("insert icon key: %w", err)
	}
	return Result{Key: key, PNG: png}, nil
}

// Contains reports whether key has been delivered.
func (c *Cache) Contains(key string) bool {
	ok, err := c.keys.Has(key)
	return err == nil && ok
}

// Len returns the number of delivered keys.
func (c *Cache) Len() int {
	return c.keys.Len()
}

// Close releases the underlying key set.
func (c *Cache) Close() error {
	return c.keys.Close()
}

func (c *Cache) acquire(key string) *keyLock {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.locks[key]
	if !ok {
		l = &keyLock{}
		c.locks[key] = l
	}
	l.refs++
	return l
}

func (c *Cache) release(key string, l *keyLock) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(c.locks, key)
	}
}
