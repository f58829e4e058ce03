package prefs

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// JSONCodec persists T as its JSON encoding. Decode returns fallback when
// nothing is stored yet.
func JSONCodec[T any](fallback T) Codec[T] {
	return CodecFuncs[T]{
		DecodeFunc: func(raw string, ok bool) (T, error) {
			if !ok {
				return fallback, nil
			}
			var out T
			if err := json.Unmarshal([]byte(raw), &out); err != nil {
				var zero T
				return zero, err
			}
			return out, nil
		},
		EncodeFunc: func(value T) (string, error) {
			payload, err := json.Marshal(value)
			if err != nil {
				return "", err
			}
			return string(payload), nil
		},
	}
}

// YAMLCodec persists T as its YAML encoding. Decode returns fallback when
// nothing is stored yet.
func YAMLCodec[T any](fallback T) Codec[T] {
	return CodecFuncs[T]{
		DecodeFunc: func(raw string, ok bool) (T, error) {
			if !ok {
				return fallback, nil
			}
			var out T
			if err := yaml.Unmarshal([]byte(raw), &out); err != nil {
				var zero T
				return zero, err
			}
			return out, nil
		},
		EncodeFunc: func(value T) (string, error) {
			payload, err := yaml.Marshal(value)
			if err != nil {
				return "", err
			}
			return string(payload), nil
		},
	}
}

// StringCodec persists a string as-is, returning fallback when nothing is
// stored yet.
func StringCodec(fallback string) Codec[string] {
	return CodecFuncs[string]{
		DecodeFunc: func(raw string, ok bool) (string, error) {
			if !ok {
				return fallback, nil
			}
			return raw, nil
		},
		EncodeFunc: func(value string) (string, error) {
			return value, nil
		},
	}
}

// EnumCodec persists a closed set of string-kinded cases by name. Decode maps
// unknown or missing input to the first case; Encode rejects values outside
// the set so nothing unrepresentable ever reaches the store.
func EnumCodec[T ~string](cases ...T) Codec[T] {
	return CodecFuncs[T]{
		DecodeFunc: func(raw string, ok bool) (T, error) {
			var zero T
			if len(cases) == 0 {
				return zero, fmt.Errorf("enum codec requires at least one case")
			}
			if ok {
				for _, c := range cases {
					if string(c) == raw {
						return c, nil
					}
				}
			}
			return cases[0], nil
		},
		EncodeFunc: func(value T) (string, error) {
			if len(cases) == 0 {
				return "", fmt.Errorf("enum codec requires at least one case")
			}
			for _, c := range cases {
				if c == value {
					return string(value), nil
				}
			}
			return "", fmt.Errorf("enum codec: unknown case %q", string(value))
		},
	}
}
