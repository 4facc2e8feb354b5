package receipt

import (
	"context"
	"sync"
)

// MemoryStore keeps receipts in a mutex-guarded map. It backs tests and
// single-process deployments that do not need durability.
type MemoryStore struct {
	mu       sync.Mutex
	receipts map[string]Receipt
}

// NewMemoryStore creates an empty in-memory receipt store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{receipts: make(map[string]Receipt)}
}

// Put stores a receipt unconditionally.
func (s *MemoryStore) Put(ctx context.Context, r Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts[r.Hash] = r
	return nil
}

// PutIfAbsent stores a receipt only when its hash is unclaimed.
func (s *MemoryStore) PutIfAbsent(ctx context.Context, r Receipt) (Receipt, bool, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.receipts[r.Hash]; ok {
		return existing, false, nil
	}
	s.receipts[r.Hash] = r
	return r, true, nil
}

// Get returns the stored receipt for hash.
func (s *MemoryStore) Get(ctx context.Context, hash string) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.receipts[hash]
	if !ok {
		return Receipt{}, ErrNotFound
	}
	return r, nil
}
