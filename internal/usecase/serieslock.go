package usecase

import (
	"sync"

	"github.com/iho/facturier/internal/domain"
)

// SeriesLocks serializes allocation and write operations per series.
// Operations on different series proceed independently; reads never take
// these locks.
type SeriesLocks struct {
	mu    sync.Mutex
	locks map[domain.Series]*sync.Mutex
}

// NewSeriesLocks creates an empty lock table.
func NewSeriesLocks() *SeriesLocks {
	return &SeriesLocks{locks: make(map[domain.Series]*sync.Mutex)}
}

// For returns the mutex guarding writes to series.
func (s *SeriesLocks) For(series domain.Series) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lk, ok := s.locks[series]
	if !ok {
		lk = &sync.Mutex{}
		s.locks[series] = lk
	}
	return lk
}
