package loadorder

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore is an in-memory load-order store for tests and embedding.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]LoadOrder
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]LoadOrder)}
}

// Get retrieves a profile's load order, or nil, nil when absent.
func (s *MemoryStore) Get(ctx context.Context, profileID string) (LoadOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[profileID]
	if !ok {
		return nil, nil
	}
	return maps.Clone(order), nil
}

// Set stores a profile's load order.
func (s *MemoryStore) Set(ctx context.Context, profileID string, order LoadOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[profileID] = maps.Clone(order)
	return nil
}

// Delete removes a profile's load order.
func (s *MemoryStore) Delete(ctx context.Context, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, profileID)
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
