package usecase

import (
	"context"
	"time"

	"github.com/iho/facturier/internal/domain"
)

// LedgerRepository defines durable, key-addressed storage for ledger
// entries. Implementations must guarantee that each write is atomic from
// the caller's perspective: either the full entry lands durably or the
// prior state is unchanged.
type LedgerRepository interface {
	// Create persists a new entry if and only if the key is absent.
	// Returns domain.ErrConflict when the slot already exists, tombstoned
	// or not. The existence check and the write are one atomic operation.
	Create(ctx context.Context, entry *domain.LedgerEntry) error

	// Update overwrites an existing entry only if the stored version
	// matches expectedVersion, bumping the version by one. Returns
	// domain.ErrConflict on a version mismatch and domain.ErrNotFound
	// when the key does not exist.
	Update(ctx context.Context, entry *domain.LedgerEntry, expectedVersion int64) error

	// Get returns the entry at key, tombstoned entries included.
	Get(ctx context.Context, key domain.LedgerKey) (*domain.LedgerEntry, error)

	// ListRecent returns non-tombstoned entries ordered by
	// (series, number) descending. When series is nil all series are
	// listed. Offset-based, finite, restartable.
	ListRecent(ctx context.Context, series *domain.Series, limit, offset int) ([]*domain.LedgerEntry, error)

	// Delete tombstones the entry at key. The slot stays addressable so
	// its number is never reallocated. Idempotent; deleting an unknown
	// key is not an error.
	Delete(ctx context.Context, key domain.LedgerKey) error

	// MaxNumber returns the highest number ever written for series,
	// tombstoned entries included, or 0 when the series is empty.
	MaxNumber(ctx context.Context, series domain.Series) (int64, error)
}

// RenderMetadata accompanies a render request.
type RenderMetadata struct {
	Series   domain.Series `json:"series"`
	Number   int64         `json:"number"`
	Kind     string        `json:"kind"` // "document" or "certificate"
	Filename string        `json:"filename"`
	Title    string        `json:"title"`
}

// RenderContent is the deterministic view handed to the renderer.
type RenderContent struct {
	Reference string              `json:"reference"`
	Client    domain.Client       `json:"client"`
	Items     []domain.LineItem   `json:"items"`
	Extras    domain.ExtrasPolicy `json:"extras"`
	Totals    domain.Totals       `json:"totals"`
	Notes     string              `json:"notes,omitempty"`
}

// RenderRequest asks the external renderer for one file.
type RenderRequest struct {
	ID         string         `json:"id"`
	Content    RenderContent  `json:"content"`
	Stylesheet string         `json:"stylesheet"`
	Metadata   RenderMetadata `json:"metadata"`
}

// RenderResult is the renderer's answer: where the file landed and the
// name to display for it.
type RenderResult struct {
	FilePath    string `json:"file_path"`
	DisplayName string `json:"display_name"`
}

// Renderer is the external rendering collaborator. Long-running; callers
// must not hold ledger locks across Render.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (*RenderResult, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations for listing summaries.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Notifier publishes in-process notifications (document saved, deleted,
// export completed). At most one subscriber per event name listens.
type Notifier interface {
	Notify(event string, payload any)
}
