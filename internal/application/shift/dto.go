package shift

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shift"
	"github.com/shopspring/decimal"
)

// OpenShiftRequest opens a cash shift for the acting cashier
type OpenShiftRequest struct {
	StoreID           uuid.UUID       `json:"store_id" binding:"required"`
	OpeningCashAmount decimal.Decimal `json:"opening_cash_amount" binding:"required"`
	Notes             string          `json:"notes" binding:"max=255"`
	ClientOperationID string          `json:"client_operation_id" binding:"required,min=1,max=80"`
}

// DenominationInput is one counted bill or coin line
type DenominationInput struct {
	DenominationValue decimal.Decimal `json:"denomination_value" binding:"required"`
	Count             int64           `json:"count"`
}

// CloseShiftRequest closes a shift with the counted drawer
type CloseShiftRequest struct {
	CountedDenominations []DenominationInput `json:"counted_denominations" binding:"required,min=1,dive"`
	ClosingNotes         string              `json:"closing_notes" binding:"max=255"`
	ClientOperationID    string              `json:"client_operation_id" binding:"required,min=1,max=80"`
}

// ShiftResponse is one shift record
type ShiftResponse struct {
	ID                uuid.UUID        `json:"id"`
	StoreID           uuid.UUID        `json:"store_id"`
	CashierID         uuid.UUID        `json:"cashier_id"`
	Status            string           `json:"status"`
	OpeningCashAmount decimal.Decimal  `json:"opening_cash_amount"`
	OpeningNotes      string           `json:"opening_notes,omitempty"`
	OpenedAt          time.Time        `json:"opened_at"`
	ClosedAt          *time.Time       `json:"closed_at,omitempty"`
	ExpectedCash      *decimal.Decimal `json:"expected_cash,omitempty"`
	CountedCash       *decimal.Decimal `json:"counted_cash,omitempty"`
	Difference        *decimal.Decimal `json:"difference,omitempty"`
	ClosingNotes      string           `json:"closing_notes,omitempty"`
}

// ClosePreviewResponse is the reconciliation preview for an open shift
type ClosePreviewResponse struct {
	ShiftID           uuid.UUID       `json:"shift_id"`
	Status            string          `json:"status"`
	OpeningCashAmount decimal.Decimal `json:"opening_cash_amount"`
	CashCollected     decimal.Decimal `json:"cash_collected"`
	CashReversed      decimal.Decimal `json:"cash_reversed"`
	ExpectedCash      decimal.Decimal `json:"expected_cash"`
}

// ToShiftResponse converts a domain shift to its response form
func ToShiftResponse(s *shift.Shift) ShiftResponse {
	return ShiftResponse{
		ID:                s.ID,
		StoreID:           s.StoreID,
		CashierID:         s.CashierID,
		Status:            s.Status.String(),
		OpeningCashAmount: s.OpeningCashAmount,
		OpeningNotes:      s.OpeningNotes,
		OpenedAt:          s.OpenedAt,
		ClosedAt:          s.ClosedAt,
		ExpectedCash:      s.ExpectedCash,
		CountedCash:       s.CountedCash,
		Difference:        s.CashDifference,
		ClosingNotes:      s.ClosingNotes,
	}
}
