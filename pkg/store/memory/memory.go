// Package memory provides a minimal in-memory ValueStore implementation
// intended for tests and examples. Each key holds one typed scalar; setters
// fully overwrite the prior value.
package memory

import (
	"context"
	"sync"
)

// Store keeps typed scalars in a mutex-guarded map. The zero value is not
// usable; construct with New.
type Store struct {
	mu      sync.RWMutex
	records map[string]any
}

// New constructs an empty store.
func New() *Store {
	return &Store{records: map[string]any{}}
}

// Get fetches whatever typed scalar (if any) is stored under key.
func (s *Store) Get(_ context.Context, key string) (any, bool, error) {
	s.mu.RLock()
	value, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if list, isList := value.([]string); isList {
		return cloneList(list), true, nil
	}
	return value, true, nil
}

// GetString fetches the string stored under key, reporting false when the
// slot is empty or holds a non-string value.
func (s *Store) GetString(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	value, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	str, isString := value.(string)
	if !isString {
		return "", false, nil
	}
	return str, true, nil
}

func (s *Store) SetBool(_ context.Context, key string, value bool) error {
	s.set(key, value)
	return nil
}

func (s *Store) SetInt(_ context.Context, key string, value int64) error {
	s.set(key, value)
	return nil
}

func (s *Store) SetFloat(_ context.Context, key string, value float64) error {
	s.set(key, value)
	return nil
}

func (s *Store) SetString(_ context.Context, key string, value string) error {
	s.set(key, value)
	return nil
}

func (s *Store) SetStringList(_ context.Context, key string, value []string) error {
	s.set(key, cloneList(value))
	return nil
}

func (s *Store) set(key string, value any) {
	s.mu.Lock()
	if s.records == nil {
		s.records = map[string]any{}
	}
	s.records[key] = value
	s.mu.Unlock()
}

// Len reports how many keys hold a value.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneList(src []string) []string {
	if src == nil {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
