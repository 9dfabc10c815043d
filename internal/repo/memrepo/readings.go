package memrepo

import (
	"context"
	"slices"
	"sync"

	"github.com/milad/joienergy/internal/domain"
	"github.com/milad/joienergy/internal/repo"
)

var _ repo.ReadingStore = (*ReadingStore)(nil)

// ReadingStore is an in-memory reading store. Reads return copies so callers
// always see a consistent snapshot while appends continue.
type ReadingStore struct {
	mu       sync.RWMutex
	readings map[string][]domain.Reading
}

func NewReadingStore() *ReadingStore {
	return &ReadingStore{readings: make(map[string][]domain.Reading)}
}

func (s *ReadingStore) Append(ctx context.Context, meterID string, readings []domain.Reading) error {
	_ = ctx // in-memory appends never block

	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[meterID] = append(s.readings[meterID], readings...)
	return nil
}

func (s *ReadingStore) Readings(ctx context.Context, meterID string) ([]domain.Reading, bool, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.readings[meterID]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(rs), true, nil
}
