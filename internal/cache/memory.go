package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process LRU store with per-entry expiry.
type MemoryStore struct {
	capacity int
	now      func() time.Time

	mu    sync.Mutex
	items map[string]*list.Element
	lru   *list.List
}

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates a store holding at most capacity entries. A capacity
// of 0 or less means unbounded.
func NewMemoryStore(capacity int, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		capacity: capacity,
		now:      time.Now,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the value for key if present. Expiry is left to the caller.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		s.lru.MoveToFront(elem)
		return elem.Value.(*memoryEntry).value, true, nil
	}
	return nil, false, nil
}

// Set stores value for key, evicting the least recently used entry if at capacity.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(ttl)
	if elem, ok := s.items[key]; ok {
		s.lru.MoveToFront(elem)
		e := elem.Value.(*memoryEntry)
		e.value = value
		e.expiresAt = expiresAt
		return nil
	}

	elem := s.lru.PushFront(&memoryEntry{key: key, value: value, expiresAt: expiresAt})
	s.items[key] = elem

	if s.capacity > 0 && s.lru.Len() > s.capacity {
		if oldest := s.lru.Back(); oldest != nil {
			s.removeElement(oldest)
		}
	}
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.items[key]; ok {
		s.removeElement(elem)
	}
	return nil
}

// Sweep removes every expired entry and reports how many were dropped.
func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for elem := s.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*memoryEntry).expiresAt) {
			s.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed, nil
}

// Clear drops everything.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*list.Element)
	s.lru.Init()
	return nil
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

func (s *MemoryStore) removeElement(elem *list.Element) {
	s.lru.Remove(elem)
	delete(s.items, elem.Value.(*memoryEntry).key)
}
