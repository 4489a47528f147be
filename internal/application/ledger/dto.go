package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// AdjustmentRequest asks for one manual stock movement
type AdjustmentRequest struct {
	StoreID           uuid.UUID        `json:"store_id" binding:"required"`
	ItemType          catalog.ItemType `json:"item_type" binding:"required,itemtype"`
	ItemID            uuid.UUID        `json:"item_id" binding:"required"`
	QuantityDelta     decimal.Decimal  `json:"quantity_delta" binding:"required"`
	Reason            string           `json:"reason" binding:"required,min=1,max=255"`
	Reference         *uuid.UUID       `json:"reference"`
	Note              string           `json:"note"`
	ClientOperationID string           `json:"client_operation_id"`
	Initial           bool             `json:"initial"`
}

// EntryResponse is one journal row
type EntryResponse struct {
	ID           uuid.UUID        `json:"id"`
	StoreID      uuid.UUID        `json:"store_id"`
	ItemType     catalog.ItemType `json:"item_type"`
	ItemID       uuid.UUID        `json:"item_id"`
	Seq          int64            `json:"seq"`
	QtyBefore    decimal.Decimal  `json:"qty_before"`
	Delta        decimal.Decimal  `json:"delta"`
	QtyAfter     decimal.Decimal  `json:"qty_after"`
	MovementKind string           `json:"movement_kind"`
	Reason       string           `json:"reason"`
	ReferenceID  *uuid.UUID       `json:"reference_id,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

// QuantityResponse is the current on-hand projection for one item
type QuantityResponse struct {
	StoreID  uuid.UUID        `json:"store_id"`
	ItemType catalog.ItemType `json:"item_type"`
	ItemID   uuid.UUID        `json:"item_id"`
	Quantity decimal.Decimal  `json:"quantity"`
	AsOf     time.Time        `json:"as_of"`
}

// ToEntryResponse converts a domain entry to its response form
func ToEntryResponse(e *ledger.Entry) EntryResponse {
	return EntryResponse{
		ID:           e.ID,
		StoreID:      e.StoreID,
		ItemType:     e.ItemType,
		ItemID:       e.ItemID,
		Seq:          e.Seq,
		QtyBefore:    e.QtyBefore,
		Delta:        e.Delta,
		QtyAfter:     e.QtyAfter,
		MovementKind: e.MovementKind.String(),
		Reason:       e.Reason,
		ReferenceID:  e.ReferenceID,
		OccurredAt:   e.OccurredAt,
	}
}
