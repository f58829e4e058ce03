package prefs

import (
	"errors"
	"fmt"
)

var (
	// ErrNilStore indicates a cell was constructed without a ValueStore.
	ErrNilStore = errors.New("prefs: store is required")
	// ErrKeyRequired indicates a cell was constructed with an empty key.
	ErrKeyRequired = errors.New("prefs: key is required")
	// ErrNilUpdater indicates Update was called without a transform.
	ErrNilUpdater = errors.New("prefs: updater is required")
	// ErrNilCodec indicates a codec cell was constructed without both codec
	// directions.
	ErrNilCodec = errors.New("prefs: codec is required")
	// ErrUnsupportedKind indicates a scalar cell was constructed over a type
	// outside the supported scalar kinds.
	ErrUnsupportedKind = errors.New("prefs: unsupported scalar kind")
	// ErrConfigConflict indicates a Config supplied both or neither of
	// Default and Codec.
	ErrConfigConflict = errors.New("prefs: config must set exactly one of Default or Codec")
)

// StoreError wraps a ValueStore failure with the cell key and operation.
type StoreError struct {
	Key string
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("prefs: store %s key=%q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CodecError wraps a codec failure with the cell key and direction.
type CodecError struct {
	Key string
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("prefs: codec %s key=%q: %v", e.Op, e.Key, e.Err)
}

func (e *CodecError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RuleViolationError reports a guard rule that evaluated to false; the update
// was rejected before any store write.
type RuleViolationError struct {
	Key  string
	Expr string
}

func (e *RuleViolationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("prefs: rule rejected update key=%q expr=%q", e.Key, e.Expr)
}

func wrapStoreError(key, op string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return &StoreError{Key: key, Op: op, Err: err}
}

func wrapCodecError(key, op string, err error) error {
	if err == nil {
		return nil
	}
	var codecErr *CodecError
	if errors.As(err, &codecErr) {
		return err
	}
	return &CodecError{Key: key, Op: op, Err: err}
}
