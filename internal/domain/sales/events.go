package sales

import (
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeSaleCompleted = "sale.completed"
	EventTypeSaleVoided    = "sale.voided"
)

// SaleCompletedEvent is emitted when a sale is persisted
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	Folio int64           `json:"folio"`
	Total decimal.Decimal `json:"total"`
}

// NewSaleCompletedEvent creates a sale completed event
func NewSaleCompletedEvent(sale *Sale) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, "Sale", sale.ID, sale.TenantID),
		Folio:           sale.Folio,
		Total:           sale.Total,
	}
}

// SaleVoidedEvent is emitted when a sale transitions to Void
type SaleVoidedEvent struct {
	shared.BaseDomainEvent
	ReasonCode string `json:"reason_code"`
}

// NewSaleVoidedEvent creates a sale voided event
func NewSaleVoidedEvent(sale *Sale) *SaleVoidedEvent {
	reason := ""
	if sale.VoidReasonCode != nil {
		reason = *sale.VoidReasonCode
	}
	return &SaleVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleVoided, "Sale", sale.ID, sale.TenantID),
		ReasonCode:      reason,
	}
}
