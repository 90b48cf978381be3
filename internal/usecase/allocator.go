package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/facturier/internal/domain"
)

// NumberAllocator issues strictly increasing, never-reused document numbers
// per series. The in-memory counters are only a cache: the source of truth
// for the highest issued number is max(number) in the store, tombstones
// included, so the allocator survives counter loss and process restarts.
type NumberAllocator struct {
	repo  LedgerRepository
	locks *SeriesLocks

	mu       sync.Mutex
	counters map[domain.Series]*seriesCounter
}

type seriesCounter struct {
	last   int64
	seeded bool
}

// NewNumberAllocator creates a NumberAllocator sharing the given per-series
// lock table with the ledger use case.
func NewNumberAllocator(repo LedgerRepository, locks *SeriesLocks) *NumberAllocator {
	return &NumberAllocator{
		repo:     repo,
		locks:    locks,
		counters: make(map[domain.Series]*seriesCounter),
	}
}

// Seed reconciles every known series counter against the store. Called at
// startup; unseen series are also seeded lazily on first allocation.
func (a *NumberAllocator) Seed(ctx context.Context, logger zerolog.Logger) error {
	for _, series := range domain.KnownSeries {
		lk := a.locks.For(series)
		lk.Lock()
		err := a.seedLocked(ctx, series)
		lk.Unlock()
		if err != nil {
			return err
		}

		a.mu.Lock()
		last := a.counters[series].last
		a.mu.Unlock()
		logger.Info().
			Str("series", string(series)).
			Int64("last_number", last).
			Msg("series counter seeded")
	}
	return nil
}

// Allocate reserves and returns the next number for series. The reservation
// is a placeholder ledger entry written create-if-absent under the series
// lock; if the slot is already taken the counter drifted behind the store
// and the allocation self-heals by retrying with the next number. On
// storage failure no partial reservation is left behind.
func (a *NumberAllocator) Allocate(ctx context.Context, series domain.Series) (int64, error) {
	if err := domain.ValidateSeries(series); err != nil {
		return 0, err
	}

	lk := a.locks.For(series)
	lk.Lock()
	defer lk.Unlock()

	return a.allocateLocked(ctx, series)
}

// AllocateLocked issues a number for callers that already hold the series
// lock (the save path, which reserves and immediately overwrites).
func (a *NumberAllocator) AllocateLocked(ctx context.Context, series domain.Series) (int64, error) {
	if err := domain.ValidateSeries(series); err != nil {
		return 0, err
	}
	return a.allocateLocked(ctx, series)
}

func (a *NumberAllocator) allocateLocked(ctx context.Context, series domain.Series) (int64, error) {
	if err := a.seedLocked(ctx, series); err != nil {
		return 0, err
	}

	a.mu.Lock()
	counter := a.counters[series]
	a.mu.Unlock()

	number := counter.last + 1
	for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
		key := domain.LedgerKey{Series: series, Number: number}
		reservation := domain.NewReservation(key, time.Now().UTC())

		err := a.repo.Create(ctx, reservation)
		if err == nil {
			counter.last = number
			return number, nil
		}
		if errors.Is(err, domain.ErrConflict) {
			number++
			continue
		}
		return 0, err
	}

	return 0, fmt.Errorf("%w: gave up reserving a number for series %s after %d attempts",
		domain.ErrConflict, series, maxAllocateAttempts)
}

// seedLocked initializes the counter from the store on first use.
// Caller must hold the series lock.
func (a *NumberAllocator) seedLocked(ctx context.Context, series domain.Series) error {
	a.mu.Lock()
	counter, ok := a.counters[series]
	if !ok {
		counter = &seriesCounter{}
		a.counters[series] = counter
	}
	a.mu.Unlock()

	if counter.seeded {
		return nil
	}

	max, err := a.repo.MaxNumber(ctx, series)
	if err != nil {
		return err
	}
	counter.last = max
	counter.seeded = true
	return nil
}
