package storage

import (
	"context"
	"sync"

	"github.com/xaenox/aura/internal/models"
)

// MemoryStorage keeps records in process. Records are copied on the way in
// and out so callers never share state with the map.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*models.Memory
}

var _ Documents = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]*models.Memory)}
}

func (s *MemoryStorage) Load(_ context.Context, userID string) (*models.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return m.Clone(), nil
}

func (s *MemoryStorage) Save(_ context.Context, m *models.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[m.UserID] = m.Clone()
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, userID)
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
