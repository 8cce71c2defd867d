package mem

import (
	"sync"
)

// Store is a concurrency-safe keyed collection. Values are cloned on the way in
// and out so callers never share memory with the store.
type Store[K comparable, V any] struct {
	mu    sync.RWMutex
	data  map[K]V
	order []K
	clone func(V) V
}

func NewStore[K comparable, V any](clone func(V) V) *Store[K, V] {
	if clone == nil {
		clone = func(v V) V { return v }
	}
	return &Store[K, V]{
		data:  make(map[K]V),
		clone: clone,
	}
}

// Put inserts or replaces the value for key. Insertion order is kept for new keys.
func (s *Store[K, V]) Put(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		s.order = append(s.order, key)
	}
	s.data[key] = s.clone(value)
}

func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		var zero V
		return zero, false
	}
	return s.clone(v), true
}

// Update applies fn to the stored value under the write lock. fn returns false to abort.
func (s *Store[K, V]) Update(key K, fn func(V) (V, bool)) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		var zero V
		return zero, false
	}
	next, ok := fn(s.clone(v))
	if !ok {
		var zero V
		return zero, false
	}
	s.data[key] = s.clone(next)
	return s.clone(next), true
}

func (s *Store[K, V]) Delete(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return false
	}
	delete(s.data, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Find returns clones of all values matching pred, in insertion order.
func (s *Store[K, V]) Find(pred func(V) bool) []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]V, 0)
	for _, k := range s.order {
		v := s.data[k]
		if pred == nil || pred(v) {
			out = append(out, s.clone(v))
		}
	}
	return out
}

func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
