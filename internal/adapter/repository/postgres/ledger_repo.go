// Package postgres implements the ledger store on PostgreSQL for
// deployments that keep the ledger in a database instead of a directory.
// Create-if-absent maps to INSERT .. ON CONFLICT DO NOTHING and optimistic
// concurrency to a versioned UPDATE, so the same contract holds as for the
// filesystem store.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/facturier/internal/domain"
	"github.com/iho/facturier/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository on pgx.
type LedgerRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

var _ usecase.LedgerRepository = (*LedgerRepository)(nil)

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{
		pool:    pool,
		retrier: NewRetrier(),
	}
}

// Create inserts the entry if and only if the (series, number) slot is
// absent, tombstoned entries included.
func (r *LedgerRepository) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	doc, err := json.Marshal(entry.Document)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorageUnavailable, entry.Key, err)
	}
	if entry.Version == 0 {
		entry.Version = 1
	}

	return r.retrier.Retry(ctx, func() error {
		tag, err := r.pool.Exec(ctx, `
			INSERT INTO ledger_entries (series, number, version, deleted, document, created_at, updated_at)
			VALUES ($1, $2, $3, FALSE, $4, $5, $6)
			ON CONFLICT (series, number) DO NOTHING`,
			entry.Key.Series, entry.Key.Number, entry.Version, doc, entry.CreatedAt, entry.UpdatedAt,
		)
		if err != nil {
			return storageErr("insert", entry.Key, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s already exists", domain.ErrConflict, entry.Key)
		}
		return nil
	})
}

// Update overwrites the entry only when the stored version matches
// expectedVersion.
func (r *LedgerRepository) Update(ctx context.Context, entry *domain.LedgerEntry, expectedVersion int64) error {
	doc, err := json.Marshal(entry.Document)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorageUnavailable, entry.Key, err)
	}

	return r.retrier.Retry(ctx, func() error {
		var createdAt time.Time
		err := r.pool.QueryRow(ctx, `
			UPDATE ledger_entries
			SET version = $4, deleted = $5, document = $6, updated_at = $7
			WHERE series = $1 AND number = $2 AND version = $3
			RETURNING created_at`,
			entry.Key.Series, entry.Key.Number, expectedVersion,
			expectedVersion+1, entry.Deleted, doc, entry.UpdatedAt,
		).Scan(&createdAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return r.updateMiss(ctx, entry.Key, expectedVersion)
		}
		if err != nil {
			return storageErr("update", entry.Key, err)
		}

		entry.Version = expectedVersion + 1
		entry.CreatedAt = createdAt
		return nil
	})
}

// updateMiss distinguishes a missing key from a version mismatch.
func (r *LedgerRepository) updateMiss(ctx context.Context, key domain.LedgerKey, expectedVersion int64) error {
	var stored int64
	err := r.pool.QueryRow(ctx,
		`SELECT version FROM ledger_entries WHERE series = $1 AND number = $2`,
		key.Series, key.Number,
	).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err != nil {
		return storageErr("select version", key, err)
	}
	return fmt.Errorf("%w: %s at version %d, expected %d", domain.ErrConflict, key, stored, expectedVersion)
}

// Get returns the entry at key, tombstoned or not.
func (r *LedgerRepository) Get(ctx context.Context, key domain.LedgerKey) (*domain.LedgerEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT series, number, version, deleted, document, created_at, updated_at
		FROM ledger_entries
		WHERE series = $1 AND number = $2`,
		key.Series, key.Number,
	)

	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err != nil {
		return nil, storageErr("select", key, err)
	}
	return entry, nil
}

// ListRecent returns non-tombstoned entries ordered by series, then number
// descending.
func (r *LedgerRepository) ListRecent(ctx context.Context, series *domain.Series, limit, offset int) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT series, number, version, deleted, document, created_at, updated_at
		FROM ledger_entries
		WHERE NOT deleted`
	args := []any{}
	if series != nil {
		query += ` AND series = $1`
		args = append(args, *series)
	}
	query += fmt.Sprintf(` ORDER BY series ASC, number DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list entries: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	entries := make([]*domain.LedgerEntry, 0, limit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", domain.ErrStorageUnavailable, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list entries: %v", domain.ErrStorageUnavailable, err)
	}
	return entries, nil
}

// Delete tombstones the entry at key; idempotent.
func (r *LedgerRepository) Delete(ctx context.Context, key domain.LedgerKey) error {
	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, `
			UPDATE ledger_entries
			SET deleted = TRUE, version = version + 1, updated_at = $3
			WHERE series = $1 AND number = $2 AND NOT deleted`,
			key.Series, key.Number, time.Now().UTC(),
		)
		if err != nil {
			return storageErr("delete", key, err)
		}
		return nil
	})
}

// MaxNumber returns the highest number ever written for series,
// tombstones included.
func (r *LedgerRepository) MaxNumber(ctx context.Context, series domain.Series) (int64, error) {
	var max int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(number), 0) FROM ledger_entries WHERE series = $1`,
		series,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("%w: max number for %s: %v", domain.ErrStorageUnavailable, series, err)
	}
	return max, nil
}

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var (
		entry domain.LedgerEntry
		doc   []byte
	)
	if err := row.Scan(&entry.Key.Series, &entry.Key.Number, &entry.Version,
		&entry.Deleted, &doc, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(doc, &entry.Document); err != nil {
		return nil, err
	}
	return &entry, nil
}

// storageErr keeps the driver error in the chain so the retrier can still
// spot retryable PostgreSQL error codes.
func storageErr(op string, key domain.LedgerKey, err error) error {
	return fmt.Errorf("%w: %s %s: %w", domain.ErrStorageUnavailable, op, key, err)
}
