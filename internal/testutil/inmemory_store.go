package testutil

import (
	"context"
	"sync"

	ierr "github.com/tutorpilot/tutorpilot/internal/errors"
)

// InMemoryStore provides a generic thread-safe store for testing
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]T),
	}
}

func (s *InMemoryStore[T]) Create(_ context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewErrorf("item already exists with id %s", id).
			Mark(ierr.ErrAlreadyExists)
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		var zero T
		return zero, ierr.NewErrorf("item not found with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return item, nil
}

func (s *InMemoryStore[T]) Update(_ context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewErrorf("item not found with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewErrorf("item not found with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	delete(s.items, id)
	return nil
}

// List returns all items matching the predicate; a nil predicate matches
// everything. Ordering is up to the caller.
func (s *InMemoryStore[T]) List(_ context.Context, match func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if match == nil || match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Clear removes all items from the store
func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}
