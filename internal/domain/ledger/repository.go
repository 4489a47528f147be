package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/shared"
)

// EntryRepository persists the append-only stock journal.
// Implementations must serialize LastEntry-then-Append for the same item key
// when called inside a unit of work, so concurrent movements cannot fork the
// chain.
type EntryRepository interface {
	// Append writes one new entry. A duplicate (store, item, seq) or a
	// duplicate client operation id surfaces as shared.ErrAlreadyExists.
	Append(ctx context.Context, entry *Entry) error

	// LastEntry returns the newest entry for the item key, or nil if the item
	// has no history. Inside a transaction the returned row is locked against
	// concurrent appenders where the storage engine supports it.
	LastEntry(ctx context.Context, tenantID, storeID uuid.UUID, itemType catalog.ItemType, itemID uuid.UUID) (*Entry, error)

	// ListForItem returns the item's history, newest first
	ListForItem(ctx context.Context, tenantID, storeID uuid.UUID, itemType catalog.ItemType, itemID uuid.UUID, filter shared.Filter) ([]Entry, int64, error)

	// FindByReference returns every entry linked to a source document
	FindByReference(ctx context.Context, tenantID, referenceID uuid.UUID) ([]Entry, error)

	// FindByClientOperationID returns the entry tagged with the idempotency
	// key, or nil if none exists
	FindByClientOperationID(ctx context.Context, tenantID uuid.UUID, clientOperationID string) (*Entry, error)
}
