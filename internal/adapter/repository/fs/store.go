// Package fs implements the ledger store on the local filesystem: one JSON
// record per (series, number), written to a temporary file and moved into
// place with a single atomic rename. A reader observes either the prior
// state or the full new entry, never a partial write.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/iho/facturier/internal/domain"
	"github.com/iho/facturier/internal/usecase"
)

const entryExt = ".json"

// Store implements usecase.LedgerRepository on a directory tree:
// <root>/<series>/<number>.json. Tombstoned entries keep their file with a
// deleted flag, so a slot is never reallocated.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[domain.LedgerKey]*sync.Mutex
}

var _ usecase.LedgerRepository = (*Store)(nil)

// NewStore opens (creating if needed) a ledger rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create ledger root: %v", domain.ErrStorageUnavailable, err)
	}
	return &Store{
		root:  dir,
		locks: make(map[domain.LedgerKey]*sync.Mutex),
	}, nil
}

// Create persists entry if and only if its key is absent. The existence
// check and the write run under the key lock, so two near-simultaneous
// reservations of the same number cannot both succeed.
func (s *Store) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lk := s.keyLock(entry.Key)
	lk.Lock()
	defer lk.Unlock()

	path := s.entryPath(entry.Key)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s already exists", domain.ErrConflict, entry.Key)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %v", domain.ErrStorageUnavailable, entry.Key, err)
	}

	if entry.Version == 0 {
		entry.Version = 1
	}
	return s.writeAtomic(path, entry)
}

// Update overwrites the entry only when the stored version matches
// expectedVersion. The stored creation timestamp is preserved.
func (s *Store) Update(ctx context.Context, entry *domain.LedgerEntry, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lk := s.keyLock(entry.Key)
	lk.Lock()
	defer lk.Unlock()

	existing, err := s.readEntry(entry.Key)
	if err != nil {
		return err
	}
	if existing.Version != expectedVersion {
		return fmt.Errorf("%w: %s at version %d, expected %d",
			domain.ErrConflict, entry.Key, existing.Version, expectedVersion)
	}

	entry.Version = expectedVersion + 1
	entry.CreatedAt = existing.CreatedAt
	return s.writeAtomic(s.entryPath(entry.Key), entry)
}

// Get returns the entry at key, tombstoned or not.
func (s *Store) Get(ctx context.Context, key domain.LedgerKey) (*domain.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.readEntry(key)
}

// ListRecent walks the series directories and returns non-tombstoned
// entries ordered by series, then number descending.
func (s *Store) ListRecent(ctx context.Context, series *domain.Series, limit, offset int) ([]*domain.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []domain.LedgerKey
	for _, sr := range s.seriesToScan(series) {
		numbers, err := s.seriesNumbers(sr)
		if err != nil {
			return nil, err
		}
		// Number descending within the series.
		sort.Slice(numbers, func(i, j int) bool { return numbers[i] > numbers[j] })
		for _, n := range numbers {
			keys = append(keys, domain.LedgerKey{Series: sr, Number: n})
		}
	}

	entries := make([]*domain.LedgerEntry, 0, limit)
	skipped := 0
	for _, key := range keys {
		entry, err := s.readEntry(key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Entry vanished between the scan and the read.
				continue
			}
			return nil, err
		}
		if entry.Deleted {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		entries = append(entries, entry)
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

// Delete tombstones the entry at key. Idempotent; unknown keys and
// already-deleted entries are not errors.
func (s *Store) Delete(ctx context.Context, key domain.LedgerKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lk := s.keyLock(key)
	lk.Lock()
	defer lk.Unlock()

	entry, err := s.readEntry(key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if entry.Deleted {
		return nil
	}

	entry.Deleted = true
	entry.Version++
	return s.writeAtomic(s.entryPath(key), entry)
}

// MaxNumber scans the series directory for the highest number ever
// written, tombstones included.
func (s *Store) MaxNumber(ctx context.Context, series domain.Series) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	numbers, err := s.seriesNumbers(series)
	if err != nil {
		return 0, err
	}
	var max int64
	for _, n := range numbers {
		if n > max {
			max = n
		}
	}
	return max, nil
}

func (s *Store) seriesToScan(series *domain.Series) []domain.Series {
	if series != nil {
		return []domain.Series{*series}
	}
	return domain.KnownSeries
}

func (s *Store) seriesNumbers(series domain.Series) ([]int64, error) {
	dir := filepath.Join(s.root, string(series))
	dirents, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read series %s: %v", domain.ErrStorageUnavailable, series, err)
	}

	numbers := make([]int64, 0, len(dirents))
	for _, de := range dirents {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, entryExt) {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSuffix(name, entryExt), 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}

func (s *Store) readEntry(key domain.LedgerKey) (*domain.LedgerEntry, error) {
	raw, err := os.ReadFile(s.entryPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStorageUnavailable, key, err)
	}

	var entry domain.LedgerEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrStorageUnavailable, key, err)
	}
	return &entry, nil
}

// writeAtomic lands the entry durably or not at all: encode to a temp file
// in the target directory, fsync, then rename over the addressed slot.
// Once the rename starts the operation is no longer cancellable.
func (s *Store) writeAtomic(path string, entry *domain.LedgerEntry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create series dir: %v", domain.ErrStorageUnavailable, err)
	}

	raw, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorageUnavailable, entry.Key, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-entry-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", domain.ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorageUnavailable, entry.Key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: sync %s: %v", domain.ErrStorageUnavailable, entry.Key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", domain.ErrStorageUnavailable, entry.Key, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: commit %s: %v", domain.ErrStorageUnavailable, entry.Key, err)
	}
	return nil
}

func (s *Store) entryPath(key domain.LedgerKey) string {
	return filepath.Join(s.root, string(key.Series), fmt.Sprintf("%06d%s", key.Number, entryExt))
}

func (s *Store) keyLock(key domain.LedgerKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lk, ok := s.locks[key]
	if !ok {
		lk = &sync.Mutex{}
		s.locks[key] = lk
	}
	return lk
}
