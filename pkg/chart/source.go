package chart

import "sync"

// ChildSource supplies the children of lazy rows.
//
// Children returns the row's children and whether they have been loaded.
// A loaded row with no children is known to be empty and is laid out as a
// leaf; a row that is not loaded yet keeps its expander.
type ChildSource interface {
	Children(rowID string) (rows []Row, loaded bool)
}

// LazySource is an in-memory ChildSource. Children registered with Defer
// stay hidden until Load releases them, which models a provider that fetches
// subtrees on first expand.
type LazySource struct {
	mu      sync.RWMutex
	pending map[string][]Row
	loaded  map[string][]Row
}

// NewLazySource creates an empty source.
func NewLazySource() *LazySource {
	return &LazySource{
		pending: make(map[string][]Row),
		loaded:  make(map[string][]Row),
	}
}

// Defer registers children for rowID without releasing them.
func (s *LazySource) Defer(rowID string, rows []Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[rowID] = rows
}

// Load releases the children of rowID. Loading a row with nothing deferred
// marks it known-empty. Load reports whether children were released.
func (s *LazySource) Load(rowID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.pending[rowID]
	delete(s.pending, rowID)
	s.loaded[rowID] = rows
	return len(rows) > 0
}

// Loaded reports whether rowID has been loaded.
func (s *LazySource) Loaded(rowID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.loaded[rowID]
	return ok
}

// Children implements ChildSource.
func (s *LazySource) Children(rowID string) ([]Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.loaded[rowID]
	return rows, ok
}

var _ ChildSource = (*LazySource)(nil)
