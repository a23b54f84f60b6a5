package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"comerciotech/internal/models"
)

// ErrSuperseded reports that a refresh completed after a newer refresh
// had already started; its result was discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer refresh")

// ListStore caches the last-fetched set of orders. The set is replaced
// wholesale on every successful refresh; a failed refresh leaves the
// previous snapshot in place and returns the error.
type ListStore struct {
	api OrderAPI

	mu         sync.Mutex
	orders     []models.Order
	generation uint64
}

// NewListStore creates an empty store backed by api.
func NewListStore(api OrderAPI) *ListStore {
	return &ListStore{api: api}
}

// Refresh fetches the full order collection and replaces the cached
// set. Each call claims a generation number; a response arriving after
// a newer call has started is discarded and ErrSuperseded is returned,
// so a stale in-flight fetch can never clobber fresher data.
func (s *ListStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh order list: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrSuperseded
	}
	s.orders = orders
	return nil
}

// Orders returns a deep-copied snapshot of the cached set. Callers may
// mutate the result freely without touching the cache.
func (s *ListStore) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]models.Order, len(s.orders))
	for i, order := range s.orders {
		snapshot[i] = order.Clone()
	}
	return snapshot
}

// Len returns the number of cached orders.
func (s *ListStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}
