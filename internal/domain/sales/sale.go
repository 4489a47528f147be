package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the lifecycle state of a sale
type SaleStatus string

const (
	// SaleStatusCompleted is the state every sale is created in
	SaleStatusCompleted SaleStatus = "COMPLETED"
	// SaleStatusVoid is the terminal state after a void
	SaleStatusVoid SaleStatus = "VOID"
)

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is valid
func (s SaleStatus) IsValid() bool {
	return s == SaleStatusCompleted || s == SaleStatusVoid
}

// CanTransitionTo returns true if the transition is allowed.
// The only legal transition is Completed to Void.
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	return s == SaleStatusCompleted && target == SaleStatusVoid
}

// PaymentMethod represents how a payment was tendered
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodOther    PaymentMethod = "OTHER"
)

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid returns true if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// IsCash returns true for cash-method payments, which participate in shift
// reconciliation
func (m PaymentMethod) IsCash() bool {
	return m == PaymentMethodCash
}

// Sale is an immutable record of a completed transaction. Its only mutation
// after creation is the one-way Completed to Void transition; item and payment
// rows are never edited.
//
// ClientSaleID is unique per (tenant, store) and ClientVoidID per tenant;
// both composites live in the SQL migrations since the tenant column sits in
// the embedded aggregate root.
type Sale struct {
	shared.TenantAggregateRoot
	StoreID            uuid.UUID            `gorm:"type:uuid;not null;index"`
	ShiftID            *uuid.UUID           `gorm:"type:uuid;index"`
	CashierID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	ClientSaleID       string               `gorm:"type:varchar(80);not null;index"`
	RequestFingerprint string               `gorm:"type:varchar(64);not null"`
	Folio              int64                `gorm:"not null;default:0"`
	BusinessDay        string               `gorm:"type:varchar(10);not null;index"`
	Status             SaleStatus           `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	Total              decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency           valueobject.Currency `gorm:"type:varchar(3);not null;default:'MXN'"`
	OccurredAt         time.Time            `gorm:"not null;index"`
	VoidedAt           *time.Time
	VoidReasonCode     *string    `gorm:"type:varchar(60)"`
	VoidReasonText     *string    `gorm:"type:varchar(255)"`
	VoidNote           *string    `gorm:"type:varchar(255)"`
	ClientVoidID       *string    `gorm:"type:varchar(80);index"`
	Items              []SaleItem `gorm:"foreignKey:SaleID"`
	Payments           []Payment  `gorm:"foreignKey:SaleID"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one cart line with the catalog names and prices frozen at sale
// time, so later catalog edits never change historical sales.
type SaleItem struct {
	shared.BaseEntity
	SaleID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	ProductName      string              `gorm:"type:varchar(200);not null"`
	UnitBasePrice    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Quantity         int64               `gorm:"not null"`
	LineTotal        decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	InventoryTracked bool                `gorm:"not null;default:false"`
	Selections       []SaleItemSelection `gorm:"foreignKey:SaleItemID"`
	Extras           []SaleItemExtra     `gorm:"foreignKey:SaleItemID"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// SaleItemSelection is one chosen option, frozen by name
type SaleItemSelection struct {
	shared.BaseEntity
	SaleItemID     uuid.UUID `gorm:"type:uuid;not null;index"`
	GroupKey       string    `gorm:"type:varchar(60);not null"`
	OptionItemID   uuid.UUID `gorm:"type:uuid;not null"`
	OptionItemName string    `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (SaleItemSelection) TableName() string {
	return "sale_item_selections"
}

// SaleItemExtra is one paid add-on on a line, frozen by name and unit price
type SaleItemExtra struct {
	shared.BaseEntity
	SaleItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExtraID          uuid.UUID       `gorm:"type:uuid;not null"`
	ExtraName        string          `gorm:"type:varchar(200);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity         int64           `gorm:"not null"`
	InventoryTracked bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (SaleItemExtra) TableName() string {
	return "sale_item_extras"
}

// Payment is one tender applied to a sale
type Payment struct {
	shared.BaseEntity
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method    PaymentMethod   `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reference string          `gorm:"type:varchar(120)"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "sale_payments"
}

// NewSale creates a sale in the Completed state with no lines yet
func NewSale(tenantID, storeID, cashierID uuid.UUID, clientSaleID string, occurredAt time.Time) (*Sale, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if cashierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CASHIER", "Cashier ID cannot be empty")
	}
	if clientSaleID == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_SALE_ID", "Client sale ID cannot be empty")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	return &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StoreID:             storeID,
		CashierID:           cashierID,
		ClientSaleID:        clientSaleID,
		Status:              SaleStatusCompleted,
		Total:               decimal.Zero,
		Currency:            valueobject.DefaultCurrency,
		OccurredAt:          occurredAt,
		BusinessDay:         occurredAt.Format("2006-01-02"),
	}, nil
}

// NewSaleItem builds one frozen line. The line total is
// (basePrice + sum of extra unit price times extra quantity) times quantity.
func NewSaleItem(productID uuid.UUID, productName string, unitBasePrice decimal.Decimal, quantity int64, tracked bool) (*SaleItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitBasePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	item := &SaleItem{
		BaseEntity:       shared.NewBaseEntity(),
		ProductID:        productID,
		ProductName:      productName,
		UnitBasePrice:    unitBasePrice,
		Quantity:         quantity,
		InventoryTracked: tracked,
	}
	item.recalculate()
	return item, nil
}

// AddSelection freezes one chosen option onto the line
func (i *SaleItem) AddSelection(groupKey string, optionItemID uuid.UUID, optionItemName string) {
	i.Selections = append(i.Selections, SaleItemSelection{
		BaseEntity:     shared.NewBaseEntity(),
		SaleItemID:     i.ID,
		GroupKey:       groupKey,
		OptionItemID:   optionItemID,
		OptionItemName: optionItemName,
	})
}

// AddExtra freezes one add-on onto the line and recomputes the line total
func (i *SaleItem) AddExtra(extraID uuid.UUID, extraName string, unitPrice decimal.Decimal, quantity int64, tracked bool) error {
	if extraID == uuid.Nil {
		return shared.NewDomainError("INVALID_EXTRA", "Extra ID cannot be empty")
	}
	if quantity < 1 {
		return shared.NewDomainError("INVALID_EXTRA_QUANTITY", "Extra quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Extra unit price cannot be negative")
	}
	i.Extras = append(i.Extras, SaleItemExtra{
		BaseEntity:       shared.NewBaseEntity(),
		SaleItemID:       i.ID,
		ExtraID:          extraID,
		ExtraName:        extraName,
		UnitPrice:        unitPrice,
		Quantity:         quantity,
		InventoryTracked: tracked,
	})
	i.recalculate()
	return nil
}

func (i *SaleItem) recalculate() {
	unit := i.UnitBasePrice
	for _, e := range i.Extras {
		unit = unit.Add(e.UnitPrice.Mul(decimal.NewFromInt(e.Quantity)))
	}
	i.LineTotal = unit.Mul(decimal.NewFromInt(i.Quantity))
}

// AddItem appends a frozen line and recomputes the sale total
func (s *Sale) AddItem(item *SaleItem) {
	item.SaleID = s.ID
	s.Items = append(s.Items, *item)
	s.recalculateTotal()
}

func (s *Sale) recalculateTotal() {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.LineTotal)
	}
	s.Total = total
}

// AttachPayments records the tenders. The amounts must conserve the sale
// total exactly.
func (s *Sale) AttachPayments(payments []Payment) error {
	if len(payments) == 0 {
		return shared.NewDomainError("INVALID_PAYMENTS", "At least one payment is required")
	}
	sum := decimal.Zero
	for i := range payments {
		if !payments[i].Method.IsValid() {
			return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method: "+payments[i].Method.String())
		}
		if payments[i].Amount.IsNegative() {
			return shared.NewDomainError("INVALID_PAYMENT_AMOUNT", "Payment amount cannot be negative")
		}
		payments[i].SaleID = s.ID
		if payments[i].ID == uuid.Nil {
			payments[i].BaseEntity = shared.NewBaseEntity()
		}
		sum = sum.Add(payments[i].Amount)
	}
	if !sum.Equal(s.Total) {
		return shared.ErrPaymentMismatch
	}
	s.Payments = payments
	return nil
}

// AssignFolio sets the per store and business day sequential number
func (s *Sale) AssignFolio(folio int64) {
	s.Folio = folio
}

// Complete marks construction finished and emits the completion event
func (s *Sale) Complete() {
	s.AddDomainEvent(NewSaleCompletedEvent(s))
}

// Void performs the one-way Completed to Void transition
func (s *Sale) Void(reasonCode string, reasonText, note *string, clientVoidID string) error {
	if reasonCode == "" {
		return shared.NewDomainError("INVALID_REASON_CODE", "Void reason code cannot be empty")
	}
	if clientVoidID == "" {
		return shared.NewDomainError("INVALID_CLIENT_VOID_ID", "Client void ID cannot be empty")
	}
	if !s.Status.CanTransitionTo(SaleStatusVoid) {
		return shared.NewDomainError("INVALID_STATE", "Only completed sales can be voided")
	}

	now := time.Now()
	s.Status = SaleStatusVoid
	s.VoidedAt = &now
	s.VoidReasonCode = &reasonCode
	s.VoidReasonText = reasonText
	s.VoidNote = note
	s.ClientVoidID = &clientVoidID
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewSaleVoidedEvent(s))
	return nil
}

// IsVoided returns true once the sale has been voided
func (s *Sale) IsVoided() bool {
	return s.Status == SaleStatusVoid
}

// CashTotal returns the sum of cash-method payment amounts
func (s *Sale) CashTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments {
		if p.Method.IsCash() {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// TrackedConsumption lists the inventory movements a completed sale implies:
// tracked products consume quantity, tracked extras consume
// extra quantity times line quantity.
func (s *Sale) TrackedConsumption() []Consumption {
	var out []Consumption
	for _, item := range s.Items {
		if item.InventoryTracked {
			out = append(out, Consumption{
				ItemID:     item.ProductID,
				IsExtra:    false,
				Quantity:   decimal.NewFromInt(item.Quantity),
				SaleItemID: item.ID,
			})
		}
		for _, extra := range item.Extras {
			if extra.InventoryTracked {
				out = append(out, Consumption{
					ItemID:     extra.ExtraID,
					IsExtra:    true,
					Quantity:   decimal.NewFromInt(extra.Quantity * item.Quantity),
					SaleItemID: item.ID,
				})
			}
		}
	}
	return out
}

// Consumption is one tracked-stock decrement implied by a sale line
type Consumption struct {
	ItemID     uuid.UUID
	IsExtra    bool
	Quantity   decimal.Decimal
	SaleItemID uuid.UUID
}
