// Package orderedset implements an insertion-ordered, duplicate-free collection.
//
// Elements are identified by a comparable key. For comparable element types
// the element is its own key (New); for richer types a key function derives
// the identity (NewFunc), which lets two values that differ in payload but
// share a key be treated as the same member.
//
// Merging follows an "existing element wins" policy: Insert and FormUnion
// never replace a member that is already present. Use Update to overwrite.
package orderedset

import (
	"iter"
	"slices"
)

// Set is an ordered set of T identified by keys of type K.
// The zero value is not usable; construct with New or NewFunc.
type Set[T any, K comparable] struct {
	items []T
	index map[K]int
	key   func(T) K
}

// New returns an empty set whose elements are their own keys.
func New[T comparable](elems ...T) *Set[T, T] {
	s := NewFunc(func(v T) T { return v })
	for _, e := range elems {
		s.Insert(e)
	}
	return s
}

// NewFunc returns an empty set identifying elements by key(elem).
func NewFunc[T any, K comparable](key func(T) K) *Set[T, K] {
	return &Set[T, K]{
		index: make(map[K]int),
		key:   key,
	}
}

// empty returns a new set sharing the key function of s.
func (s *Set[T, K]) empty() *Set[T, K] {
	return NewFunc(s.key)
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Len returns the number of elements.
func (s *Set[T, K]) Len() int { return len(s.items) }

// IsEmpty reports whether the set has no elements.
func (s *Set[T, K]) IsEmpty() bool { return len(s.items) == 0 }

// Contains reports whether an element with the same key as v is present.
func (s *Set[T, K]) Contains(v T) bool {
	_, ok := s.index[s.key(v)]
	return ok
}

// ContainsKey reports whether an element with key k is present.
func (s *Set[T, K]) ContainsKey(k K) bool {
	_, ok := s.index[k]
	return ok
}

// Get returns the element stored under key k.
func (s *Set[T, K]) Get(k K) (T, bool) {
	i, ok := s.index[k]
	if !ok {
		var zero T
		return zero, false
	}
	return s.items[i], true
}

// IndexOf returns the position of the element with the same key as v, or -1.
func (s *Set[T, K]) IndexOf(v T) int {
	if i, ok := s.index[s.key(v)]; ok {
		return i
	}
	return -1
}

// At returns the element at position i. It panics if i is out of range.
func (s *Set[T, K]) At(i int) T { return s.items[i] }

// Values returns a copy of the elements in order.
func (s *Set[T, K]) Values() []T { return slices.Clone(s.items) }

// All iterates over the elements in order.
func (s *Set[T, K]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range s.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Clone returns a shallow copy of the set.
func (s *Set[T, K]) Clone() *Set[T, K] {
	c := &Set[T, K]{
		items: slices.Clone(s.items),
		index: make(map[K]int, len(s.index)),
		key:   s.key,
	}
	for k, i := range s.index {
		c.index[k] = i
	}
	return c
}

// ---------------------------------------------------------------------------
// Mutation
// ---------------------------------------------------------------------------

// Insert appends v unless an element with the same key is already present,
// in which case the existing element is kept. It reports whether v was added.
func (s *Set[T, K]) Insert(v T) bool {
	k := s.key(v)
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, v)
	return true
}

// InsertAt inserts v at position i unless its key is already present.
// i == Len() appends.
func (s *Set[T, K]) InsertAt(i int, v T) bool {
	k := s.key(v)
	if _, ok := s.index[k]; ok {
		return false
	}
	s.items = slices.Insert(s.items, i, v)
	s.reindex(i)
	return true
}

// Update replaces the element with the same key as v in place, or appends v
// when absent. It returns the replaced element and whether one existed.
func (s *Set[T, K]) Update(v T) (T, bool) {
	k := s.key(v)
	if i, ok := s.index[k]; ok {
		old := s.items[i]
		s.items[i] = v
		return old, true
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, v)
	var zero T
	return zero, false
}

// Replace stores v at position i. When v's key differs from the occupant's
// key but already belongs to another element, nothing changes and Replace
// returns false; callers needing an error should check Contains first.
func (s *Set[T, K]) Replace(i int, v T) bool {
	oldKey := s.key(s.items[i])
	newKey := s.key(v)
	if oldKey != newKey {
		if _, ok := s.index[newKey]; ok {
			return false
		}
		delete(s.index, oldKey)
		s.index[newKey] = i
	}
	s.items[i] = v
	return true
}

// Remove deletes the element with the same key as v and returns it.
func (s *Set[T, K]) Remove(v T) (T, bool) {
	return s.RemoveKey(s.key(v))
}

// RemoveKey deletes the element stored under key k and returns it.
func (s *Set[T, K]) RemoveKey(k K) (T, bool) {
	i, ok := s.index[k]
	if !ok {
		var zero T
		return zero, false
	}
	old := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	delete(s.index, k)
	s.reindex(i)
	return old, true
}

// RemoveFunc deletes every element for which drop returns true.
func (s *Set[T, K]) RemoveFunc(drop func(T) bool) int {
	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, drop)
	if len(s.items) != before {
		s.rebuild()
	}
	return before - len(s.items)
}

// Sort reorders the elements with a stable sort. Membership is unchanged.
func (s *Set[T, K]) Sort(less func(a, b T) int) {
	slices.SortStableFunc(s.items, less)
	s.reindex(0)
}

// reindex refreshes positions from index from onwards.
func (s *Set[T, K]) reindex(from int) {
	for i := from; i < len(s.items); i++ {
		s.index[s.key(s.items[i])] = i
	}
}

func (s *Set[T, K]) rebuild() {
	clear(s.index)
	s.reindex(0)
}

// ---------------------------------------------------------------------------
// Set algebra
// ---------------------------------------------------------------------------

// FormUnion appends every element of other that is not already present.
// Existing elements win over incoming ones with the same key.
func (s *Set[T, K]) FormUnion(other *Set[T, K]) {
	for _, v := range other.items {
		s.Insert(v)
	}
}

// Union returns s ∪ other with s's elements first.
func (s *Set[T, K]) Union(other *Set[T, K]) *Set[T, K] {
	c := s.Clone()
	c.FormUnion(other)
	return c
}

// FormIntersection keeps only the elements whose keys are in other.
func (s *Set[T, K]) FormIntersection(other *Set[T, K]) {
	s.RemoveFunc(func(v T) bool { return !other.Contains(v) })
}

// Intersection returns the elements of s whose keys are in other, in s's order.
func (s *Set[T, K]) Intersection(other *Set[T, K]) *Set[T, K] {
	c := s.Clone()
	c.FormIntersection(other)
	return c
}

// FormSymmetricDifference removes elements shared with other and appends the
// elements only other has.
func (s *Set[T, K]) FormSymmetricDifference(other *Set[T, K]) {
	for _, v := range other.items {
		if s.Contains(v) {
			s.Remove(v)
		} else {
			s.Insert(v)
		}
	}
}

// SymmetricDifference returns the elements present in exactly one of s and other.
func (s *Set[T, K]) SymmetricDifference(other *Set[T, K]) *Set[T, K] {
	c := s.Clone()
	c.FormSymmetricDifference(other)
	return c
}

// Subtract removes every element whose key is in other.
func (s *Set[T, K]) Subtract(other *Set[T, K]) {
	s.RemoveFunc(other.Contains)
}

// Difference returns the elements of s whose keys are not in other.
func (s *Set[T, K]) Difference(other *Set[T, K]) *Set[T, K] {
	c := s.Clone()
	c.Subtract(other)
	return c
}

// Filter returns a new set holding the elements for which keep returns true.
func (s *Set[T, K]) Filter(keep func(T) bool) *Set[T, K] {
	out := s.empty()
	for _, v := range s.items {
		if keep(v) {
			out.Insert(v)
		}
	}
	return out
}
