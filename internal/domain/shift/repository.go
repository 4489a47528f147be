package shift

import (
	"context"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
)

// Repository persists shifts. Save surfaces a duplicate open operation id or a
// second Open shift for the same (cashier, store) as shared.ErrAlreadyExists;
// open/close transitions for the same pair serialize inside the unit of work.
type Repository interface {
	Save(ctx context.Context, shift *Shift) error
	Update(ctx context.Context, shift *Shift) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Shift, error)

	// FindOpenByCashier returns the cashier's Open shift at the store, or nil.
	// Inside a transaction the row is locked where the engine supports it.
	FindOpenByCashier(ctx context.Context, tenantID, storeID, cashierID uuid.UUID) (*Shift, error)

	FindByOpenOperationID(ctx context.Context, tenantID uuid.UUID, clientOperationID string) (*Shift, error)
	FindByCloseOperationID(ctx context.Context, tenantID uuid.UUID, clientOperationID string) (*Shift, error)

	FindAllForStore(ctx context.Context, tenantID, storeID uuid.UUID, filter shared.Filter) ([]Shift, int64, error)
}
