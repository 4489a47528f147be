package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// CreateSaleRequest submits a cart for exactly-once recording
type CreateSaleRequest struct {
	ClientSaleID string             `json:"client_sale_id" binding:"required,min=1,max=80"`
	StoreID      uuid.UUID          `json:"store_id" binding:"required"`
	OccurredAt   *time.Time         `json:"occurred_at"`
	Items        []SaleItemInput    `json:"items" binding:"required,min=1,dive"`
	Payments     []SalePaymentInput `json:"payments" binding:"required,min=1,dive"`
}

// SaleItemInput is one cart line
type SaleItemInput struct {
	ProductID  uuid.UUID        `json:"product_id" binding:"required"`
	Quantity   int64            `json:"quantity" binding:"required,min=1"`
	Selections []SelectionInput `json:"selections" binding:"dive"`
	Extras     []ExtraInput     `json:"extras" binding:"dive"`
}

// SelectionInput is one chosen option for a selection group
type SelectionInput struct {
	GroupKey     string    `json:"group_key" binding:"required,min=1,max=60"`
	OptionItemID uuid.UUID `json:"option_item_id" binding:"required"`
}

// ExtraInput is one add-on on a cart line
type ExtraInput struct {
	ExtraID  uuid.UUID `json:"extra_id" binding:"required"`
	Quantity int64     `json:"quantity" binding:"required,min=1"`
}

// SalePaymentInput is one tender
type SalePaymentInput struct {
	Method    string          `json:"method" binding:"required,paymentmethod"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reference string          `json:"reference" binding:"max=120"`
}

// VoidSaleRequest asks for the one-way Completed to Void transition
type VoidSaleRequest struct {
	ReasonCode   string  `json:"reason_code" binding:"required,min=1,max=60"`
	ReasonText   *string `json:"reason_text" binding:"omitempty,max=255"`
	Note         *string `json:"note" binding:"omitempty,max=255"`
	ClientVoidID string  `json:"client_void_id" binding:"required,min=1,max=80"`
}

// SaleResponse is the result of creating or fetching a sale
type SaleResponse struct {
	SaleID      uuid.UUID       `json:"sale_id"`
	Folio       int64           `json:"folio"`
	BusinessDay string          `json:"business_day"`
	Status      string          `json:"status"`
	Total       decimal.Decimal `json:"total"`
	OccurredAt  time.Time       `json:"occurred_at"`
	VoidedAt    *time.Time      `json:"voided_at,omitempty"`
}

// SaleDetailResponse is a sale with its frozen lines and payments
type SaleDetailResponse struct {
	SaleResponse
	StoreID   uuid.UUID             `json:"store_id"`
	CashierID uuid.UUID             `json:"cashier_id"`
	ShiftID   *uuid.UUID            `json:"shift_id,omitempty"`
	Items     []SaleItemResponse    `json:"items"`
	Payments  []SalePaymentResponse `json:"payments"`
}

// SaleItemResponse is one frozen line
type SaleItemResponse struct {
	ProductID     uuid.UUID               `json:"product_id"`
	ProductName   string                  `json:"product_name"`
	UnitBasePrice decimal.Decimal         `json:"unit_base_price"`
	Quantity      int64                   `json:"quantity"`
	LineTotal     decimal.Decimal         `json:"line_total"`
	Selections    []SaleSelectionResponse `json:"selections,omitempty"`
	Extras        []SaleExtraResponse     `json:"extras,omitempty"`
}

// SaleSelectionResponse is one frozen option choice
type SaleSelectionResponse struct {
	GroupKey       string    `json:"group_key"`
	OptionItemID   uuid.UUID `json:"option_item_id"`
	OptionItemName string    `json:"option_item_name"`
}

// SaleExtraResponse is one frozen add-on
type SaleExtraResponse struct {
	ExtraID   uuid.UUID       `json:"extra_id"`
	ExtraName string          `json:"extra_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

// ToSaleResponse converts a domain sale to its compact response form
func ToSaleResponse(sale *sales.Sale) SaleResponse {
	return SaleResponse{
		SaleID:      sale.ID,
		Folio:       sale.Folio,
		BusinessDay: sale.BusinessDay,
		Status:      sale.Status.String(),
		Total:       sale.Total,
		OccurredAt:  sale.OccurredAt,
		VoidedAt:    sale.VoidedAt,
	}
}

// ToSaleDetailResponse converts a domain sale with its lines and payments
func ToSaleDetailResponse(sale *sales.Sale) SaleDetailResponse {
	detail := SaleDetailResponse{
		SaleResponse: ToSaleResponse(sale),
		StoreID:      sale.StoreID,
		CashierID:    sale.CashierID,
		ShiftID:      sale.ShiftID,
	}
	for _, item := range sale.Items {
		itemResp := SaleItemResponse{
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			UnitBasePrice: item.UnitBasePrice,
			Quantity:      item.Quantity,
			LineTotal:     item.LineTotal,
		}
		for _, sel := range item.Selections {
			itemResp.Selections = append(itemResp.Selections, SaleSelectionResponse{
				GroupKey:       sel.GroupKey,
				OptionItemID:   sel.OptionItemID,
				OptionItemName: sel.OptionItemName,
			})
		}
		for _, extra := range item.Extras {
			itemResp.Extras = append(itemResp.Extras, SaleExtraResponse{
				ExtraID:   extra.ExtraID,
				ExtraName: extra.ExtraName,
				UnitPrice: extra.UnitPrice,
				Quantity:  extra.Quantity,
			})
		}
		detail.Items = append(detail.Items, itemResp)
	}
	for _, p := range sale.Payments {
		detail.Payments = append(detail.Payments, SalePaymentResponse{
			Method:    p.Method.String(),
			Amount:    p.Amount,
			Reference: p.Reference,
		})
	}
	return detail
}

// SalePaymentResponse is one tender on a sale
type SalePaymentResponse struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}
