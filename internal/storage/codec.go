package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrPersistence marks a failed read or write against a Backend.
	ErrPersistence = errors.New("persistence failure")
	// ErrCorrupt marks a stored value that could not be decoded.
	ErrCorrupt = errors.New("stored value is corrupt")
)

// Load decodes the JSON value under key. A missing key yields def with a nil
// error. A corrupt or unreadable value also yields def, together with an error
// the caller may log; Load never fails in a way that leaves the caller
// without a usable value.
func Load[T any](b Backend, key string, def T) (T, error) {
	raw, ok, err := b.Get(key)
	if err != nil {
		return def, fmt.Errorf("%w: get %q: %v", ErrPersistence, key, err)
	}
	if !ok {
		return def, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return def, fmt.Errorf("%w: key %q: %v", ErrCorrupt, key, err)
	}
	return v, nil
}

// Save encodes v as JSON and writes it under key.
func Save[T any](b Backend, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %v", ErrPersistence, key, err)
	}
	if err := b.Set(key, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
