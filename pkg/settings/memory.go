package settings

import (
	"context"
	"sync"

	"github.com/orgvault/orgvault/pkg/model"
)

// MemoryStore keeps the canonical records in memory. Useful for tests
// and for one-shot CLI runs that do not need persistence.
type MemoryStore struct {
	mu      sync.RWMutex
	records []model.TeamRecord
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LoadRecords(ctx context.Context) ([]model.TeamRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.TeamRecord(nil), m.records...), nil
}

func (m *MemoryStore) SaveRecords(ctx context.Context, records []model.TeamRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]model.TeamRecord(nil), records...)
	return nil
}
