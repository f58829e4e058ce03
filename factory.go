package prefs

import "context"

// Config is the declarative cell description recognised at creation time:
// a key plus exactly one of Default (scalar cells) or Codec (codec cells).
// Supplying both or neither is a construction-time error.
type Config[T any] struct {
	Key     string
	Default *T
	Codec   Codec[T]
}

// Build wires the config and a store into a cell. Scalar kinds are validated
// here: a Default whose type falls outside the supported kinds fails
// construction rather than skipping persistence later.
func (cfg Config[T]) Build(ctx context.Context, store ValueStore, options ...CellOption[T]) (Cell[T], error) {
	if (cfg.Default != nil) == (cfg.Codec != nil) {
		return nil, ErrConfigConflict
	}
	if cfg.Codec != nil {
		return NewCodec(ctx, store, cfg.Key, cfg.Codec, options...)
	}
	return newScalarCell(ctx, store, cfg.Key, *cfg.Default, options...)
}
