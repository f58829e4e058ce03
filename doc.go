// Package prefs binds small observable values to durable key-value slots.
//
// A cell owns one in-memory value and one store key. Construction reads the
// store (or falls back to a default/decoded sentinel); Update is the only
// mutation surface: it computes the next value, persists it, and advances the
// in-memory value only after the write succeeds.
//
// Responsibilities:
//   - ScalarCell[T] persists the built-in scalar kinds (bool, int, float,
//     string, string list) through the matching ValueStore setter. The kind is
//     resolved once at construction; unsupported kinds fail there.
//   - CodecCell[T] persists arbitrary types through a caller-supplied string
//     Codec.
//   - The ValueStore contract stays behind implementations supplied by
//     consumers; see pkg/store/memory and pkg/store/badger.
//
// Data flow:
//
//	Update(fn) -> next = fn(current) -> guard rule -> store write -> advance
//
// Observers and change-event hooks (pkg/event) fire after the value advances,
// never on failed updates. Overlapping updates are not serialized: each call
// snapshots the value at entry and the last write to complete wins.
package prefs
