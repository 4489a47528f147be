package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ShiftCashTotals aggregates the cash-method payment flow for one shift.
// Sales are bucketed by their current status, so a voided sale's cash sits
// entirely in Reversed; Collected is what the drawer still holds.
type ShiftCashTotals struct {
	// Collected is the cash on sales still completed
	Collected decimal.Decimal
	// Reversed is the cash refunded on voided sales
	Reversed decimal.Decimal
}

// Repository persists sales with their lines and payments.
// Save must write the whole aggregate in the ambient unit of work; a duplicate
// client sale id surfaces as shared.ErrAlreadyExists so callers can re-read
// the winning row.
type Repository interface {
	Save(ctx context.Context, sale *Sale) error
	Update(ctx context.Context, sale *Sale) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	// FindByClientSaleID looks up the idempotency key within its uniqueness
	// scope: the same client sale id may legally recur at another store.
	FindByClientSaleID(ctx context.Context, tenantID, storeID uuid.UUID, clientSaleID string) (*Sale, error)
	FindByClientVoidID(ctx context.Context, tenantID uuid.UUID, clientVoidID string) (*Sale, error)
	FindAllForStore(ctx context.Context, tenantID, storeID uuid.UUID, filter shared.Filter) ([]Sale, int64, error)

	// CashTotalsForShift sums cash payments over the shift's sales, split by
	// completed versus voided status
	CashTotalsForShift(ctx context.Context, tenantID, shiftID uuid.UUID) (ShiftCashTotals, error)

	// NextFolio reserves the next sequential folio for the store and business
	// day. Must be called inside the unit of work that persists the sale.
	NextFolio(ctx context.Context, tenantID, storeID uuid.UUID, businessDay string) (int64, error)
}
