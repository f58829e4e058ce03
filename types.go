package prefs

import (
	"context"

	"github.com/goliatone/go-prefs/pkg/event"
)

// ValueStore is the durable key-value service cells persist through. Setters
// fully overwrite the slot for their key and are durable on return; the store
// is responsible for per-key atomicity. Implementations are shared across
// cells and never owned by any single cell.
type ValueStore interface {
	// Get fetches whatever typed scalar (if any) is stored under key.
	Get(ctx context.Context, key string) (any, bool, error)
	// GetString fetches the string stored under key, reporting false when the
	// slot is empty or holds a non-string value.
	GetString(ctx context.Context, key string) (string, bool, error)

	SetBool(ctx context.Context, key string, value bool) error
	SetInt(ctx context.Context, key string, value int64) error
	SetFloat(ctx context.Context, key string, value float64) error
	SetString(ctx context.Context, key string, value string) error
	SetStringList(ctx context.Context, key string, value []string) error
}

// Codec converts values of T to and from the string representation a
// ValueStore can hold. Decode receives ok=false when nothing is stored yet and
// must produce a deterministic fallback for that case. Both directions must be
// pure; failures surface to the caller of construction or Update.
type Codec[T any] interface {
	Decode(raw string, ok bool) (T, error)
	Encode(value T) (string, error)
}

// CodecFuncs adapts a decode/encode function pair to Codec.
type CodecFuncs[T any] struct {
	DecodeFunc func(raw string, ok bool) (T, error)
	EncodeFunc func(value T) (string, error)
}

// Decode implements Codec.
func (c CodecFuncs[T]) Decode(raw string, ok bool) (T, error) {
	var zero T
	if c.DecodeFunc == nil {
		return zero, ErrNilCodec
	}
	return c.DecodeFunc(raw, ok)
}

// Encode implements Codec.
func (c CodecFuncs[T]) Encode(value T) (string, error) {
	if c.EncodeFunc == nil {
		return "", ErrNilCodec
	}
	return c.EncodeFunc(value)
}

// Cell is an observable value backed by one persistent slot. Value is the
// synchronous read; Update is the only mutation surface.
type Cell[T any] interface {
	Key() string
	Value() T
	Revision() string
	Update(ctx context.Context, updater func(T) T) (T, error)
}

// CellOption configures optional cell behaviour.
type CellOption[T any] func(*cellConfig[T])

type cellConfig[T any] struct {
	logger    UpdateLogger
	observers []Observer[T]
	rule      string
	evaluator Evaluator
	cache     ProgramCache
	functions *FunctionRegistry
	emitter   *event.Emitter
	identity  event.Identity
}

func applyCellOptions[T any](options []CellOption[T]) cellConfig[T] {
	cfg := cellConfig[T]{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithRule attaches a guard expression evaluated against the pending update.
// The rule sees key, current, and next bindings and must produce a boolean; a
// false or erroring rule fails the update before any store write.
func WithRule[T any](expr string) CellOption[T] {
	return func(cfg *cellConfig[T]) {
		cfg.rule = expr
	}
}

// WithRuleEvaluator selects the engine guard rules run on. Defaults to the
// expr evaluator when a rule is configured without one.
func WithRuleEvaluator[T any](evaluator Evaluator) CellOption[T] {
	return func(cfg *cellConfig[T]) {
		cfg.evaluator = evaluator
	}
}

// WithProgramCache registers a compiled-rule cache on the cell's default
// evaluator.
func WithProgramCache[T any](cache ProgramCache) CellOption[T] {
	return func(cfg *cellConfig[T]) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry exposes registry functions to the cell's default
// evaluator.
func WithFunctionRegistry[T any](registry *FunctionRegistry) CellOption[T] {
	return func(cfg *cellConfig[T]) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the cell's guard rules.
func WithCustomFunction[T any](name string, fn Function) CellOption[T] {
	return func(cfg *cellConfig[T]) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithChangeEmitter wires an event emitter that receives a change event after
// each successful update.
func WithChangeEmitter[T any](emitter *event.Emitter) CellOption[T] {
	return func(cfg *cellConfig[T]) {
		cfg.emitter = emitter
	}
}

// WithEventIdentity stamps actor/user/tenant identifiers onto emitted change
// events.
func WithEventIdentity[T any](identity event.Identity) CellOption[T] {
	return func(cfg *cellConfig[T]) {
		cfg.identity = identity
	}
}
