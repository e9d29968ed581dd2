package payloadrepo

import (
	"context"
	"sync"

	"github.com/yanqian/cyclecare/internal/domain/analytics"
)

// MemoryRepository keeps chart payload documents in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string][]byte)}
}

// Get implements analytics.PayloadRepository.
func (r *MemoryRepository) Get(_ context.Context, profileID string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	raw, ok := r.items[profileID]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), raw...), true, nil
}

// Save replaces the stored document.
func (r *MemoryRepository) Save(_ context.Context, profileID string, raw []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[profileID] = append([]byte(nil), raw...)
	return nil
}

var _ analytics.PayloadRepository = (*MemoryRepository)(nil)
