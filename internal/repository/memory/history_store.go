package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

// HistoryStore keeps reconciliation history in process memory.
type HistoryStore struct {
	mu      sync.RWMutex
	records []models.HistoryRecord
}

// NewHistoryStore returns an empty store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Load returns a copy of the stored records.
func (s *HistoryStore) Load(_ context.Context) ([]models.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records), nil
}

// Save replaces the stored records.
func (s *HistoryStore) Save(_ context.Context, records []models.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = slices.Clone(records)
	return nil
}
