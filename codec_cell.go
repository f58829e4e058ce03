package prefs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// codecKindLabel tags codec-cell log and change events; the durable
// representation is always a string.
const codecKindLabel = "codec"

// CodecCell holds one value of an arbitrary type whose only durable
// representation is a string produced by a caller-supplied Codec.
type CodecCell[T any] struct {
	store  ValueStore
	key    string
	codec  Codec[T]
	cfg    cellConfig[T]
	rule   CompiledRule
	engine string

	mu       sync.RWMutex
	value    T
	revision string
}

// NewCodec constructs a codec cell over store/key. The initial value is
// codec.Decode(stored, ok), which covers both the present and the
// nothing-stored case; a decode failure fails construction.
func NewCodec[T any](ctx context.Context, store ValueStore, key string, codec Codec[T], options ...CellOption[T]) (*CodecCell[T], error) {
	if err := validateCell(store, key); err != nil {
		return nil, err
	}
	if codec == nil {
		return nil, ErrNilCodec
	}

	cfg := applyCellOptions(options)
	rule, engine, err := compileRuleConfig(cfg)
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	raw, ok, err := store.GetString(ctx, key)
	if err != nil {
		return nil, wrapStoreError(key, "read", err)
	}
	initial, err := codec.Decode(raw, ok)
	if err != nil {
		return nil, wrapCodecError(key, "decode", err)
	}

	return &CodecCell[T]{
		store:  store,
		key:    key,
		codec:  codec,
		cfg:    cfg,
		rule:   rule,
		engine: engine,
		value:  initial,
	}, nil
}

// Key returns the store slot this cell owns.
func (c *CodecCell[T]) Key() string {
	return c.key
}

// Value returns the current in-memory value.
func (c *CodecCell[T]) Value() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Revision returns the identifier minted by the last successful update, or
// the empty string before any update.
func (c *CodecCell[T]) Revision() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

// Update computes next = updater(current), runs the guard rule, encodes next,
// persists the encoded string, and advances the in-memory value only once the
// write has completed. Encode failures surface before any store write; store
// failures surface with the in-memory value unchanged.
func (c *CodecCell[T]) Update(ctx context.Context, updater func(T) T) (T, error) {
	var zero T
	if updater == nil {
		return zero, ErrNilUpdater
	}
	if ctx == nil {
		ctx = context.Background()
	}

	current := c.Value()
	start := time.Now()
	next := updater(current)

	err := checkRule(c.rule, c.engine, c.key, c.cfg.rule, current, next)
	if err == nil {
		var encoded string
		encoded, err = c.codec.Encode(next)
		if err != nil {
			err = wrapCodecError(c.key, "encode", err)
		} else {
			err = wrapStoreError(c.key, "write", c.store.SetString(ctx, c.key, encoded))
		}
	}

	revision := ""
	if err == nil {
		revision = c.advance(next)
	}
	updateLoggerOf(c.cfg).LogUpdate(UpdateLogEvent{
		Key:      c.key,
		Kind:     codecKindLabel,
		Revision: revision,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return zero, err
	}

	notifyObservers(c.cfg, c.key, next)
	emitChange(ctx, c.cfg, c.key, codecKindLabel, revision, current, next)
	return next, nil
}

func (c *CodecCell[T]) advance(next T) string {
	revision := uuid.NewString()
	c.mu.Lock()
	c.value = next
	c.revision = revision
	c.mu.Unlock()
	return revision
}
