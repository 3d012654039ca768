package utils

import (
	"cmp"
	"slices"
)

// Set tracks unique values. It is not safe for concurrent use.
type Set[T cmp.Ordered] struct {
	seen map[T]struct{}
}

// NewSet creates a Set holding the given values.
func NewSet[T cmp.Ordered](values ...T) *Set[T] {
	s := &Set[T]{seen: make(map[T]struct{}, len(values))}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add returns true if v was newly added, false if already present.
func (s *Set[T]) Add(v T) bool {
	if _, exists := s.seen[v]; exists {
		return false
	}
	s.seen[v] = struct{}{}
	return true
}

// Contains reports whether v is in the set.
func (s *Set[T]) Contains(v T) bool {
	_, exists := s.seen[v]
	return exists
}

// Size returns the number of unique values tracked.
func (s *Set[T]) Size() int {
	return len(s.seen)
}

// Sorted returns the members in ascending order.
func (s *Set[T]) Sorted() []T {
	out := make([]T, 0, len(s.seen))
	for v := range s.seen {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
