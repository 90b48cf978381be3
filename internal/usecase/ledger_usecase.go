package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/facturier/internal/domain"
)

// LedgerUseCase orchestrates document persistence: totals recomputation,
// number allocation on first save, optimistic-concurrency overwrites,
// listings and tombstone deletes.
type LedgerUseCase struct {
	repo      LedgerRepository
	allocator *NumberAllocator
	locks     *SeriesLocks
	cache     Cache
	notifier  Notifier
	logger    zerolog.Logger

	cacheTTL time.Duration
}

// LedgerConfig holds dependencies for LedgerUseCase. Cache and Notifier
// are optional.
type LedgerConfig struct {
	Repo      LedgerRepository
	Allocator *NumberAllocator
	Locks     *SeriesLocks
	Cache     Cache
	Notifier  Notifier
	Logger    zerolog.Logger
	CacheTTL  time.Duration
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(cfg LedgerConfig) *LedgerUseCase {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	return &LedgerUseCase{
		repo:      cfg.Repo,
		allocator: cfg.Allocator,
		locks:     cfg.Locks,
		cache:     cfg.Cache,
		notifier:  cfg.Notifier,
		logger:    cfg.Logger,
		cacheTTL:  cfg.CacheTTL,
	}
}

// SaveDocumentInput represents input for saving a document.
// ExpectedVersion 0 means create: a number is allocated when the document
// carries none, otherwise the given key is claimed create-if-absent.
// A positive ExpectedVersion overwrites in place only when it matches the
// stored version.
type SaveDocumentInput struct {
	Document        domain.Document
	ExpectedVersion int64
}

// SaveDocument validates and persists a document. Totals are always
// recomputed from the current line items and policy before the write.
func (uc *LedgerUseCase) SaveDocument(ctx context.Context, input SaveDocumentInput) (*domain.LedgerEntry, error) {
	doc := input.Document

	if err := domain.ValidateDocument(&doc); err != nil {
		return nil, err
	}
	if err := domain.ValidateSeries(doc.Key.Series); err != nil {
		return nil, err
	}

	totals, err := domain.ComputeTotals(doc.Items, doc.Extras)
	if err != nil {
		return nil, err
	}
	doc.Totals = totals

	series := doc.Key.Series
	lk := uc.locks.For(series)
	lk.Lock()
	defer lk.Unlock()

	now := time.Now().UTC()

	var entry *domain.LedgerEntry
	switch {
	case input.ExpectedVersion > 0:
		entry, err = uc.overwrite(ctx, doc, input.ExpectedVersion, now)
	case doc.Key.Number == 0:
		entry, err = uc.createWithAllocatedNumber(ctx, doc, now)
	default:
		entry, err = uc.createAtKey(ctx, doc, now)
	}
	if err != nil {
		return nil, err
	}

	uc.invalidateListing(ctx, series)
	uc.notify(EventDocumentSaved, entry.Key)

	uc.logger.Info().
		Str("key", entry.Key.String()).
		Int64("version", entry.Version).
		Str("status", string(entry.Document.Status)).
		Msg("document saved")

	return entry, nil
}

// createWithAllocatedNumber reserves the next number for the series and
// immediately replaces the reservation with the real document. Runs with
// the series lock held, so no other in-process writer can slip in between.
func (uc *LedgerUseCase) createWithAllocatedNumber(ctx context.Context, doc domain.Document, now time.Time) (*domain.LedgerEntry, error) {
	number, err := uc.allocator.AllocateLocked(ctx, doc.Key.Series)
	if err != nil {
		return nil, err
	}

	doc.Key.Number = number
	entry := &domain.LedgerEntry{
		Key:       doc.Key,
		Document:  doc,
		UpdatedAt: now,
	}

	// The reservation entry sits at version 1.
	if err := uc.repo.Update(ctx, entry, 1); err != nil {
		return nil, err
	}
	return entry, nil
}

// createAtKey claims a manually numbered slot, create-if-absent.
func (uc *LedgerUseCase) createAtKey(ctx context.Context, doc domain.Document, now time.Time) (*domain.LedgerEntry, error) {
	if err := domain.ValidateKey(doc.Key); err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		Key:       doc.Key,
		Document:  doc,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// overwrite replaces an existing entry under optimistic concurrency.
func (uc *LedgerUseCase) overwrite(ctx context.Context, doc domain.Document, expectedVersion int64, now time.Time) (*domain.LedgerEntry, error) {
	if err := domain.ValidateKey(doc.Key); err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		Key:       doc.Key,
		Document:  doc,
		UpdatedAt: now,
	}
	if err := uc.repo.Update(ctx, entry, expectedVersion); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetDocument retrieves the entry at key. Tombstoned entries read as
// not found.
func (uc *LedgerUseCase) GetDocument(ctx context.Context, key domain.LedgerKey) (*domain.LedgerEntry, error) {
	if err := domain.ValidateKey(key); err != nil {
		return nil, err
	}

	entry, err := uc.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry.Deleted {
		return nil, fmt.Errorf("%w: %s is deleted", domain.ErrNotFound, key)
	}
	return entry, nil
}

// ListRecentInput represents input for listing documents.
type ListRecentInput struct {
	Series *domain.Series
	Limit  int
	Offset int
}

// ListRecent lists non-deleted entries ordered by (series, number)
// descending. The default first page per series is served from the cache
// when one is configured.
func (uc *LedgerUseCase) ListRecent(ctx context.Context, input ListRecentInput) ([]*domain.LedgerEntry, error) {
	if input.Series != nil {
		if err := domain.ValidateSeries(*input.Series); err != nil {
			return nil, err
		}
	}
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	cacheKey, cacheable := uc.listingCacheKey(input.Series, limit, offset)
	if cacheable {
		if entries, ok := uc.cachedListing(ctx, cacheKey); ok {
			return entries, nil
		}
	}

	entries, err := uc.repo.ListRecent(ctx, input.Series, limit, offset)
	if err != nil {
		return nil, err
	}

	if cacheable {
		uc.storeListing(ctx, cacheKey, entries)
	}
	return entries, nil
}

// DeleteDocument tombstones the entry at key. Idempotent: deleting an
// already-deleted or unknown key succeeds. The slot remains reserved so
// its number is never reissued.
func (uc *LedgerUseCase) DeleteDocument(ctx context.Context, key domain.LedgerKey) error {
	if err := domain.ValidateKey(key); err != nil {
		return err
	}

	lk := uc.locks.For(key.Series)
	lk.Lock()
	defer lk.Unlock()

	if err := uc.repo.Delete(ctx, key); err != nil {
		return err
	}

	uc.invalidateListing(ctx, key.Series)
	uc.notify(EventDocumentDeleted, key)

	uc.logger.Info().Str("key", key.String()).Msg("document deleted")
	return nil
}

// listingCacheKey returns the cache key for a listing request; only the
// default first page is cached.
func (uc *LedgerUseCase) listingCacheKey(series *domain.Series, limit, offset int) (string, bool) {
	if uc.cache == nil || offset != 0 || limit != domain.DefaultPageSize {
		return "", false
	}
	name := "all"
	if series != nil {
		name = string(*series)
	}
	return "listing:" + name, true
}

func (uc *LedgerUseCase) cachedListing(ctx context.Context, key string) ([]*domain.LedgerEntry, bool) {
	raw, err := uc.cache.Get(ctx, key)
	if err != nil || raw == nil {
		return nil, false
	}
	var entries []*domain.LedgerEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (uc *LedgerUseCase) storeListing(ctx context.Context, key string, entries []*domain.LedgerEntry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, raw, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("cache_key", key).Msg("listing cache set failed")
	}
}

// invalidateListing drops the cached first pages touched by a write.
// Cache errors are logged, never surfaced: the store stays authoritative.
func (uc *LedgerUseCase) invalidateListing(ctx context.Context, series domain.Series) {
	if uc.cache == nil {
		return
	}
	for _, key := range []string{"listing:all", "listing:" + string(series)} {
		if err := uc.cache.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn().Err(err).Str("cache_key", key).Msg("listing cache invalidation failed")
		}
	}
}

func (uc *LedgerUseCase) notify(event string, payload any) {
	if uc.notifier != nil {
		uc.notifier.Notify(event, payload)
	}
}
