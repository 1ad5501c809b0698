// Package normalization folds free-form configuration strings onto typed
// enumeration values.
package normalization

import "strings"

// Normalizer maps raw strings onto values of T. Lookups fold case and
// surrounding whitespace; unrecognized input yields the fallback, so every
// call site gets a usable value without its own error path.
type Normalizer[T comparable] struct {
	values   map[string]T
	fallback T
}

// NewNormalizer builds a normalizer from alias->value pairs. Aliases fold
// the same way lookups do, so callers can spell them naturally.
func NewNormalizer[T comparable](aliases map[string]T, fallback T) *Normalizer[T] {
	values := make(map[string]T, len(aliases))
	for alias, value := range aliases {
		values[fold(alias)] = value
	}
	return &Normalizer[T]{values: values, fallback: fallback}
}

// Normalize maps raw onto its value, or the fallback when unrecognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, ok := n.values[fold(raw)]; ok {
		return value
	}
	return n.fallback
}

// Recognized reports whether raw names a known value rather than falling
// back. Callers use it to warn about misspelled configuration without
// changing the normalized result.
func (n *Normalizer[T]) Recognized(raw string) bool {
	_, ok := n.values[fold(raw)]
	return ok
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
