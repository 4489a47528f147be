package shift

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ShiftStatus represents the cash-custody state
type ShiftStatus string

const (
	// ShiftStatusOpen means the cashier currently holds the drawer
	ShiftStatusOpen ShiftStatus = "OPEN"
	// ShiftStatusClosed is terminal; a closed shift is never reopened
	ShiftStatusClosed ShiftStatus = "CLOSED"
)

// String returns the string representation of ShiftStatus
func (s ShiftStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is valid
func (s ShiftStatus) IsValid() bool {
	return s == ShiftStatusOpen || s == ShiftStatusClosed
}

// CanTransitionTo returns true if the transition is allowed.
// The only legal transition is Open to Closed.
func (s ShiftStatus) CanTransitionTo(target ShiftStatus) bool {
	return s == ShiftStatusOpen && target == ShiftStatusClosed
}

// Denomination is one counted bill or coin line at close time
type Denomination struct {
	Value decimal.Decimal `json:"value"`
	Count int64           `json:"count"`
}

// SumDenominations totals the counted drawer. Every line must carry a
// positive value and a non-negative count.
func SumDenominations(denominations []Denomination) (decimal.Decimal, error) {
	if len(denominations) == 0 {
		return decimal.Zero, shared.NewDomainError("INVALID_DENOMINATIONS", "At least one counted denomination is required")
	}
	total := decimal.Zero
	for _, d := range denominations {
		if !d.Value.IsPositive() {
			return decimal.Zero, shared.NewDomainError("INVALID_DENOMINATION_VALUE", "Denomination value must be positive")
		}
		if d.Count < 0 {
			return decimal.Zero, shared.NewDomainError("INVALID_DENOMINATION_COUNT", "Denomination count cannot be negative")
		}
		total = total.Add(d.Value.Mul(decimal.NewFromInt(d.Count)))
	}
	return total, nil
}

// Shift is one bounded period of cash custody by one cashier at one store.
// At most one Open shift may exist per (cashier, store) at any time.
// The open/close operation ids are unique per tenant; those composites and
// the single-open rule are enforced by indexes in the SQL migrations.
type Shift struct {
	shared.TenantAggregateRoot
	StoreID              uuid.UUID       `gorm:"type:uuid;not null;index:idx_shift_store_cashier,priority:1"`
	CashierID            uuid.UUID       `gorm:"type:uuid;not null;index:idx_shift_store_cashier,priority:2"`
	Status               ShiftStatus     `gorm:"type:varchar(20);not null;default:'OPEN'"`
	OpeningCashAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OpeningNotes         string          `gorm:"type:varchar(255)"`
	OpenedAt             time.Time       `gorm:"not null"`
	OpenOperationID      string          `gorm:"type:varchar(80);not null;index"`
	ClosedAt             *time.Time
	ExpectedCash         *decimal.Decimal    `gorm:"type:decimal(18,4)"`
	CountedCash          *decimal.Decimal    `gorm:"type:decimal(18,4)"`
	CashDifference       *decimal.Decimal    `gorm:"type:decimal(18,4)"`
	ClosingNotes         string              `gorm:"type:varchar(255)"`
	CloseOperationID     *string             `gorm:"type:varchar(80);index"`
	CountedDenominations []ShiftDenomination `gorm:"foreignKey:ShiftID"`
}

// TableName returns the table name for GORM
func (Shift) TableName() string {
	return "shifts"
}

// ShiftDenomination is one persisted counted denomination line
type ShiftDenomination struct {
	shared.BaseEntity
	ShiftID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Value   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Count   int64           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShiftDenomination) TableName() string {
	return "shift_denominations"
}

// NewShift opens a shift with the cashier's declared opening float
func NewShift(tenantID, storeID, cashierID uuid.UUID, openingCash decimal.Decimal, notes, clientOperationID string) (*Shift, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if cashierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CASHIER", "Cashier ID cannot be empty")
	}
	if openingCash.IsNegative() {
		return nil, shared.NewDomainError("INVALID_OPENING_CASH", "Opening cash amount cannot be negative")
	}
	if clientOperationID == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_OPERATION_ID", "Client operation ID cannot be empty")
	}

	return &Shift{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StoreID:             storeID,
		CashierID:           cashierID,
		Status:              ShiftStatusOpen,
		OpeningCashAmount:   openingCash,
		OpeningNotes:        notes,
		OpenedAt:            time.Now(),
		OpenOperationID:     clientOperationID,
	}, nil
}

// IsOpen returns true while the cashier holds the drawer
func (s *Shift) IsOpen() bool {
	return s.Status == ShiftStatusOpen
}

// ExpectedCashFor computes the drawer the cashier should hold:
// opening float plus the cash still collected on the shift's sales.
func (s *Shift) ExpectedCashFor(cashCollected decimal.Decimal) decimal.Decimal {
	return s.OpeningCashAmount.Add(cashCollected)
}

// Close performs the terminal Open to Closed transition. The expected cash is
// computed by the caller from the shift's sales; the counted cash comes from
// the denominations.
func (s *Shift) Close(expectedCash decimal.Decimal, denominations []Denomination, closingNotes, clientOperationID string) error {
	if clientOperationID == "" {
		return shared.NewDomainError("INVALID_CLIENT_OPERATION_ID", "Client operation ID cannot be empty")
	}
	if !s.Status.CanTransitionTo(ShiftStatusClosed) {
		return shared.NewDomainError("INVALID_STATE", "Only open shifts can be closed")
	}

	counted, err := SumDenominations(denominations)
	if err != nil {
		return err
	}
	difference := counted.Sub(expectedCash)
	now := time.Now()

	s.Status = ShiftStatusClosed
	s.ClosedAt = &now
	s.ExpectedCash = &expectedCash
	s.CountedCash = &counted
	s.CashDifference = &difference
	s.ClosingNotes = closingNotes
	s.CloseOperationID = &clientOperationID
	s.CountedDenominations = make([]ShiftDenomination, 0, len(denominations))
	for _, d := range denominations {
		s.CountedDenominations = append(s.CountedDenominations, ShiftDenomination{
			BaseEntity: shared.NewBaseEntity(),
			ShiftID:    s.ID,
			Value:      d.Value,
			Count:      d.Count,
		})
	}
	s.Touch()
	s.IncrementVersion()
	return nil
}
