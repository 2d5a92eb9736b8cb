package cache

import "sync"

// KeySet tracks which logical keys have a mutation in flight
type KeySet[K comparable] struct {
	mu   sync.Mutex
	keys map[K]struct{}
}

// Acquire marks key busy. It returns false if key is already busy.
func (s *KeySet[K]) Acquire(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys == nil {
		s.keys = make(map[K]struct{})
	}
	if _, busy := s.keys[key]; busy {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Release marks key idle
func (s *KeySet[K]) Release(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}

// Has reports whether key is busy
func (s *KeySet[K]) Has(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.keys[key]
	return busy
}
