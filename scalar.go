package prefs

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ScalarCell holds one value of a built-in scalar kind and persists it through
// the matching ValueStore setter. The kind is fixed at construction.
//
// Overlapping Update calls are not serialized: each snapshots the value at
// entry, writes independently, and advances the in-memory value on its own
// completion. The last write to complete determines both the stored and the
// in-memory value.
type ScalarCell[T any] struct {
	store  ValueStore
	key    string
	kind   Kind
	// dynamic marks cells built over an interface type, where the updater can
	// return any runtime kind and each update must revalidate it.
	dynamic bool
	cfg     cellConfig[T]
	rule    CompiledRule
	engine  string

	mu       sync.RWMutex
	value    T
	revision string
}

// NewScalar constructs a scalar cell over store/key. The stored entry seeds
// the value when present and kind-compatible, otherwise def does. No store
// write happens at construction.
func NewScalar[T Scalar](ctx context.Context, store ValueStore, key string, def T, options ...CellOption[T]) (*ScalarCell[T], error) {
	return newScalarCell(ctx, store, key, def, options...)
}

// newScalarCell is the unconstrained construction path shared with Config.
// The type-set constraint on NewScalar makes the kind check a formality there;
// the Config path reaches this with arbitrary T and fails here instead.
func newScalarCell[T any](ctx context.Context, store ValueStore, key string, def T, options ...CellOption[T]) (*ScalarCell[T], error) {
	if err := validateCell(store, key); err != nil {
		return nil, err
	}
	rt := typeOf[T]()
	dynamic := rt.Kind() == reflect.Interface
	if dynamic {
		rt = reflect.TypeOf(def)
	}
	kind := kindOf(rt)
	if kind == KindInvalid {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKind, rt)
	}

	cfg := applyCellOptions(options)
	rule, engine, err := compileRuleConfig(cfg)
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	stored, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, wrapStoreError(key, "read", err)
	}
	initial := cloneScalar(kind, def)
	if ok {
		if seeded, compatible := coerceStored[T](stored, kind); compatible {
			initial = cloneScalar(kind, seeded)
		}
	}

	return &ScalarCell[T]{
		store:   store,
		key:     key,
		kind:    kind,
		dynamic: dynamic,
		cfg:     cfg,
		rule:    rule,
		engine:  engine,
		value:   initial,
	}, nil
}

// Key returns the store slot this cell owns.
func (c *ScalarCell[T]) Key() string {
	return c.key
}

// Kind returns the storage kind resolved at construction.
func (c *ScalarCell[T]) Kind() Kind {
	return c.kind
}

// Value returns the current in-memory value.
func (c *ScalarCell[T]) Value() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneScalar(c.kind, c.value)
}

// Revision returns the identifier minted by the last successful update, or
// the empty string before any update.
func (c *ScalarCell[T]) Revision() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

// Update computes next = updater(current), runs the guard rule, persists next
// through the kind's store setter, and advances the in-memory value only once
// the write has completed. Any failure surfaces to the caller with the
// in-memory value unchanged. On interface-typed cells an updater returning a
// value outside the construction-time kind fails with ErrUnsupportedKind.
func (c *ScalarCell[T]) Update(ctx context.Context, updater func(T) T) (T, error) {
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

	var err error
	if c.dynamic {
		if kindOf(reflect.TypeOf(next)) != c.kind {
			err = fmt.Errorf("%w: update produced %T, cell holds %s", ErrUnsupportedKind, next, c.kind)
		}
	}
	if err == nil {
		next = cloneScalar(c.kind, next)
		err = checkRule(c.rule, c.engine, c.key, c.cfg.rule, current, next)
	}
	if err == nil {
		err = wrapStoreError(c.key, "write", writeScalar(ctx, c.store, c.key, c.kind, next))
	}

	revision := ""
	if err == nil {
		revision = c.advance(cloneScalar(c.kind, next))
	}
	updateLoggerOf(c.cfg).LogUpdate(UpdateLogEvent{
		Key:      c.key,
		Kind:     c.kind.String(),
		Revision: revision,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return zero, err
	}

	notifyObservers(c.cfg, c.key, next)
	emitChange(ctx, c.cfg, c.key, c.kind.String(), revision, current, next)
	return next, nil
}

func (c *ScalarCell[T]) advance(next T) string {
	revision := uuid.NewString()
	c.mu.Lock()
	c.value = next
	c.revision = revision
	c.mu.Unlock()
	return revision
}
