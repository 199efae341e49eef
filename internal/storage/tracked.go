package storage

import (
	"bytes"
	"sync"
)

// Tracked wraps a Backend and remembers the raw value it last read or wrote
// for each key. Several processes may share one database; Changed lets a
// long-lived caller notice values written by someone else.
type Tracked struct {
	Backend

	mu   sync.Mutex
	seen map[string][]byte
}

func Track(b Backend) *Tracked {
	return &Tracked{Backend: b, seen: map[string][]byte{}}
}

func (t *Tracked) Get(key string) ([]byte, bool, error) {
	raw, ok, err := t.Backend.Get(key)
	if err == nil {
		t.remember(key, raw, ok)
	}
	return raw, ok, err
}

func (t *Tracked) Set(key string, value []byte) error {
	if err := t.Backend.Set(key, value); err != nil {
		return err
	}
	t.remember(key, value, true)
	return nil
}

// Changed reports whether key now holds something other than what t last
// read or wrote. A key t has never seen counts as changed once it exists.
func (t *Tracked) Changed(key string) (bool, error) {
	raw, ok, err := t.Backend.Get(key)
	if err != nil {
		return false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	last, had := t.seen[key]
	if !ok {
		return had, nil
	}
	return !had || !bytes.Equal(raw, last), nil
}

func (t *Tracked) remember(key string, raw []byte, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !ok {
		delete(t.seen, key)
		return
	}
	t.seen[key] = bytes.Clone(raw)
}
