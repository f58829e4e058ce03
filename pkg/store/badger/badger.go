// Package badger provides a ValueStore backed by BadgerDB, an embedded
// key-value store with durable synchronous writes. Each slot holds a
// kind-tagged JSON payload so reads can hand back the typed scalar a cell
// expects.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
)

const (
	kindBool       = "bool"
	kindInt        = "int"
	kindFloat      = "float"
	kindString     = "string"
	kindStringList = "string_list"
)

// record is the on-disk representation of one slot.
type record struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// Store implements the prefs ValueStore contract over a BadgerDB instance.
type Store struct {
	db *badgerdb.DB
}

// Open opens (or creates) the database described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("badger: path is required for persistent databases")
	}
	db, err := badgerdb.Open(cfg.badgerOptions())
	if err != nil {
		return nil, fmt.Errorf("badger: open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get fetches whatever typed scalar (if any) is stored under key.
func (s *Store) Get(ctx context.Context, key string) (any, bool, error) {
	rec, ok, err := s.load(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	value, err := decodeRecord(rec)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// GetString fetches the string stored under key, reporting false when the
// slot is empty or holds a non-string value.
func (s *Store) GetString(ctx context.Context, key string) (string, bool, error) {
	rec, ok, err := s.load(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	if rec.Kind != kindString {
		return "", false, nil
	}
	var out string
	if err := json.Unmarshal(rec.Value, &out); err != nil {
		return "", false, fmt.Errorf("badger: decode %q: %w", key, err)
	}
	return out, true, nil
}

func (s *Store) SetBool(ctx context.Context, key string, value bool) error {
	return s.save(ctx, key, kindBool, value)
}

func (s *Store) SetInt(ctx context.Context, key string, value int64) error {
	return s.save(ctx, key, kindInt, value)
}

func (s *Store) SetFloat(ctx context.Context, key string, value float64) error {
	return s.save(ctx, key, kindFloat, value)
}

func (s *Store) SetString(ctx context.Context, key string, value string) error {
	return s.save(ctx, key, kindString, value)
}

func (s *Store) SetStringList(ctx context.Context, key string, value []string) error {
	if value == nil {
		value = []string{}
	}
	return s.save(ctx, key, kindStringList, value)
}

func (s *Store) load(ctx context.Context, key string) (record, bool, error) {
	var rec record
	if err := ctx.Err(); err != nil {
		return rec, false, err
	}
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(payload []byte) error {
			return json.Unmarshal(payload, &rec)
		})
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("badger: get %q: %w", key, err)
	}
	return rec, true, nil
}

func (s *Store) save(ctx context.Context, key, kind string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("badger: encode %q: %w", key, err)
	}
	payload, err := json.Marshal(record{Kind: kind, Value: raw})
	if err != nil {
		return fmt.Errorf("badger: encode %q: %w", key, err)
	}
	err = s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), payload)
	})
	if err != nil {
		return fmt.Errorf("badger: set %q: %w", key, err)
	}
	return nil
}

func decodeRecord(rec record) (any, error) {
	switch rec.Kind {
	case kindBool:
		return unmarshalValue[bool](rec.Value)
	case kindInt:
		return unmarshalValue[int64](rec.Value)
	case kindFloat:
		return unmarshalValue[float64](rec.Value)
	case kindString:
		return unmarshalValue[string](rec.Value)
	case kindStringList:
		return unmarshalValue[[]string](rec.Value)
	default:
		return nil, fmt.Errorf("badger: unknown kind %q", rec.Kind)
	}
}

func unmarshalValue[T any](raw json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("badger: decode value: %w", err)
	}
	return out, nil
}
