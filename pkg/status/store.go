package status

import (
	"maps"
	"slices"
	"sync"
)

// Store is a versioned in-memory status map for one student session.
//
// Writes happen only after a transition has been accepted; the store itself
// does not check prerequisites. Every effective change bumps [Store.Version],
// so callers can detect stale snapshots cheaply. Store is safe for concurrent
// use.
type Store struct {
	mu      sync.RWMutex
	entries Map
	version uint64
}

// NewStore creates a store seeded with initial. Unset and invalid entries are
// ignored and the map is copied.
func NewStore(initial Map) *Store {
	entries := make(Map, len(initial))
	for id, s := range initial {
		if s != Unset && s.Valid() {
			entries[id] = s
		}
	}
	return &Store{entries: entries}
}

// Get returns the status of a course, or Unset when absent.
func (s *Store) Get(courseID int) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[courseID]
}

// Set overwrites the status of a course. Setting Unset removes the entry.
// It reports whether the stored value changed. Invalid statuses are ignored.
func (s *Store) Set(courseID int, st Status) bool {
	if !st.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[courseID] == st {
		return false
	}
	if st == Unset {
		delete(s.entries, courseID)
	} else {
		s.entries[courseID] = st
	}
	s.version++
	return true
}

// Snapshot returns a copy of the current entries.
func (s *Store) Snapshot() Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.entries)
}

// Version returns the number of effective changes since creation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of courses with a non-Unset status.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Passed returns the ids of passed courses in ascending order.
func (s *Store) Passed() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int
	for id, st := range s.entries {
		if st == Passed {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

var (
	_ Reader = (*Store)(nil)
	_ Reader = Map(nil)
)
