// internal/seen/set.go
package seen

import "sync"

// Set is a process-lifetime set of string keys. Entries are never evicted.
type Set struct {
	mu    sync.RWMutex
	items map[string]struct{}
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{items: make(map[string]struct{})}
}

// Has reports whether key was recorded.
func (s *Set) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[key]
	return ok
}

// Add records key.
func (s *Set) Add(key string) {
	s.mu.Lock()
	s.items[key] = struct{}{}
	s.mu.Unlock()
}

// CheckAndAdd records key and returns true only for the first caller that inserted it.
func (s *Set) CheckAndAdd(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = struct{}{}
	return true
}

// Len returns the number of recorded keys.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
