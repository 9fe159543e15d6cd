package iconcache

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
)

// BadgerKeySet is a KeySet on an in-memory badger instance.
// Nothing is written to disk; the set is gone when the process exits.
type BadgerKeySet struct {
	db    *badger.DB
	count atomic.Int64
}

// NewBadgerKeySet opens an in-memory badger database.
func NewBadgerKeySet() (*BadgerKeySet, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(badgerLogger{slog.Default().With("component", "badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerKeySet{db: db}, nil
}

func (s *BadgerKeySet) Has(key string) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("badger get: %w", err)
	}
	return found, nil
}

func (s *BadgerKeySet) Add(key string) error {
	added := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		added = true
		return txn.Set([]byte(key), []byte{1})
	})
	if err != nil {
		return fmt.Errorf("badger set: %w", err)
	}
	if added {
		s.count.Add(1)
	}
	return nil
}

func (s *BadgerKeySet) Len() int {
	return int(s.count.Load())
}

func (s *BadgerKeySet) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct {
	l *slog.Logger
}

func (b badgerLogger) Errorf(format string, args ...any) {
	b.l.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Warningf(format string, args ...any) {
	b.l.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Infof(format string, args ...any) {
	b.l.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Debugf(format string, args ...any) {
	b.l.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
