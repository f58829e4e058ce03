package prefs

import (
	"context"
	"reflect"
)

// Kind is the closed set of value shapes a ValueStore persists natively. A
// cell resolves its kind once at construction; there is no per-update kind
// branching.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindStringList
)

// String returns the storage tag for the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindStringList:
		return "string_list"
	default:
		return "invalid"
	}
}

// Scalar constrains scalar cells to types the store can persist natively.
// Named types over these underlying shapes are supported.
type Scalar interface {
	~bool | ~int | ~int32 | ~int64 | ~float32 | ~float64 | ~string | ~[]string
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func kindOf(rt reflect.Type) Kind {
	if rt == nil {
		return KindInvalid
	}
	switch rt.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int32, reflect.Int64:
		return KindInt
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.String:
		return KindString
	case reflect.Slice:
		if rt.Elem().Kind() == reflect.String {
			return KindStringList
		}
	}
	return KindInvalid
}

// writeScalar issues the store setter matching the resolved kind.
func writeScalar[T any](ctx context.Context, store ValueStore, key string, kind Kind, value T) error {
	rv := reflect.ValueOf(value)
	switch kind {
	case KindBool:
		return store.SetBool(ctx, key, rv.Bool())
	case KindInt:
		return store.SetInt(ctx, key, rv.Int())
	case KindFloat:
		return store.SetFloat(ctx, key, rv.Float())
	case KindString:
		return store.SetString(ctx, key, rv.String())
	case KindStringList:
		out := make([]string, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).String()
		}
		return store.SetStringList(ctx, key, out)
	default:
		return ErrUnsupportedKind
	}
}

// coerceStored converts a stored value to T when its shape matches the cell's
// kind. Incompatible or absent values report false so construction falls back
// to the default.
func coerceStored[T any](stored any, kind Kind) (T, bool) {
	var zero T
	sv := reflect.ValueOf(stored)
	if !sv.IsValid() {
		return zero, false
	}
	if kindOf(sv.Type()) != kind {
		return zero, false
	}
	rt := typeOf[T]()
	if !sv.Type().ConvertibleTo(rt) {
		return zero, false
	}
	out, ok := sv.Convert(rt).Interface().(T)
	if !ok {
		return zero, false
	}
	return out, true
}

// cloneScalar detaches slice-kinded values so cell state never aliases caller
// or store memory.
func cloneScalar[T any](kind Kind, value T) T {
	if kind != KindStringList {
		return value
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.IsNil() {
		return value
	}
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	return out.Interface().(T)
}
