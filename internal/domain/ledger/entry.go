package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementKind classifies why stock moved
type MovementKind string

const (
	// MovementKindSaleConsumption is stock consumed by a completed sale
	MovementKindSaleConsumption MovementKind = "SALE_CONSUMPTION"
	// MovementKindVoidReversal restores stock consumed by a voided sale
	MovementKindVoidReversal MovementKind = "VOID_REVERSAL"
	// MovementKindManualAdjustment is an operator-initiated correction
	MovementKindManualAdjustment MovementKind = "MANUAL_ADJUSTMENT"
	// MovementKindInitialStock seeds the opening quantity for an item
	MovementKindInitialStock MovementKind = "INITIAL_STOCK"
)

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// IsValid returns true if the movement kind is valid
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementKindSaleConsumption,
		MovementKindVoidReversal,
		MovementKindManualAdjustment,
		MovementKindInitialStock:
		return true
	}
	return false
}

// Entry is one immutable stock-movement record. Once written it is never
// updated or deleted; corrections append new entries. Consecutive entries for
// the same (store, item-type, item-id) chain: each QtyBefore equals the
// previous entry's QtyAfter, and the first entry starts from zero.
type Entry struct {
	shared.BaseEntity
	TenantID          uuid.UUID        `gorm:"type:uuid;not null;index:idx_ledger_tenant_time,priority:1"`
	StoreID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_key_seq,priority:1"`
	ItemType          catalog.ItemType `gorm:"type:varchar(20);not null;uniqueIndex:idx_ledger_key_seq,priority:2"`
	ItemID            uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_key_seq,priority:3"`
	Seq               int64            `gorm:"not null;uniqueIndex:idx_ledger_key_seq,priority:4"`
	QtyBefore         decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Delta             decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	QtyAfter          decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	MovementKind      MovementKind     `gorm:"type:varchar(30);not null;index"`
	Reason            string           `gorm:"type:varchar(255);not null"`
	ReferenceID       *uuid.UUID       `gorm:"type:uuid;index"`
	ReferenceLineID   *uuid.UUID       `gorm:"type:uuid"`
	OperatorID        *uuid.UUID       `gorm:"type:uuid"`
	ClientOperationID *string          `gorm:"type:varchar(80);uniqueIndex:idx_ledger_client_op"`
	OccurredAt        time.Time        `gorm:"not null;index:idx_ledger_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "inventory_ledger_entries"
}

// NewEntry creates a new ledger entry chained onto the previous quantity.
// Option items are configuration, not stock, and are rejected.
func NewEntry(
	tenantID uuid.UUID,
	storeID uuid.UUID,
	itemType catalog.ItemType,
	itemID uuid.UUID,
	seq int64,
	qtyBefore decimal.Decimal,
	delta decimal.Decimal,
	kind MovementKind,
	reason string,
) (*Entry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if !itemType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", "Invalid item type")
	}
	if !itemType.IsTrackable() {
		return nil, shared.NewDomainError("ITEM_NOT_TRACKABLE", "Option items do not carry inventory")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if seq < 1 {
		return nil, shared.NewDomainError("INVALID_SEQUENCE", "Sequence must start at 1")
	}
	if seq == 1 && !qtyBefore.IsZero() {
		return nil, shared.NewDomainError("INVALID_CHAIN", "First entry must start from zero quantity")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_KIND", "Invalid movement kind")
	}
	if delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_DELTA", "Delta cannot be zero")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Reason cannot be empty")
	}

	return &Entry{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     tenantID,
		StoreID:      storeID,
		ItemType:     itemType,
		ItemID:       itemID,
		Seq:          seq,
		QtyBefore:    qtyBefore,
		Delta:        delta,
		QtyAfter:     qtyBefore.Add(delta),
		MovementKind: kind,
		Reason:       reason,
		OccurredAt:   time.Now(),
	}, nil
}

// WithReference links the entry to its source document (e.g. a sale)
func (e *Entry) WithReference(referenceID uuid.UUID) *Entry {
	e.ReferenceID = &referenceID
	return e
}

// WithReferenceLine links the entry to a specific line of the source document
func (e *Entry) WithReferenceLine(lineID uuid.UUID) *Entry {
	e.ReferenceLineID = &lineID
	return e
}

// WithOperator records the user who caused the movement
func (e *Entry) WithOperator(operatorID uuid.UUID) *Entry {
	e.OperatorID = &operatorID
	return e
}

// WithClientOperationID tags the entry with the client's idempotency key
func (e *Entry) WithClientOperationID(id string) *Entry {
	e.ClientOperationID = &id
	return e
}

// WithOccurredAt overrides the movement timestamp
func (e *Entry) WithOccurredAt(at time.Time) *Entry {
	e.OccurredAt = at
	return e
}

// IsIncrease returns true if the entry adds stock
func (e *Entry) IsIncrease() bool {
	return e.Delta.IsPositive()
}

// IsDecrease returns true if the entry removes stock
func (e *Entry) IsDecrease() bool {
	return e.Delta.IsNegative()
}

// ChainsAfter reports whether this entry is a valid successor of prev for the
// same item key
func (e *Entry) ChainsAfter(prev *Entry) bool {
	if prev == nil {
		return e.Seq == 1 && e.QtyBefore.IsZero()
	}
	return e.Seq == prev.Seq+1 && e.QtyBefore.Equal(prev.QtyAfter)
}
