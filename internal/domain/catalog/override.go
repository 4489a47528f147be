package catalog

import (
	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
)

// OverrideState is the tri-state judgment a store may apply to one item
type OverrideState string

const (
	// OverrideStateNone defers to the tenant-level judgment
	OverrideStateNone OverrideState = "NONE"
	// OverrideStateEnabled forces the item to be offered at this store
	OverrideStateEnabled OverrideState = "ENABLED"
	// OverrideStateDisabled forces the item off at this store
	OverrideStateDisabled OverrideState = "DISABLED"
)

// String returns the string representation of OverrideState
func (s OverrideState) String() string {
	return string(s)
}

// IsValid returns true if the override state is valid
func (s OverrideState) IsValid() bool {
	switch s {
	case OverrideStateNone, OverrideStateEnabled, OverrideStateDisabled:
		return true
	}
	return false
}

// IsJudgment returns true when the state replaces the tenant-level judgment.
// None is not itself a judgment.
func (s OverrideState) IsJudgment() bool {
	return s == OverrideStateEnabled || s == OverrideStateDisabled
}

// TenantItemOverride is a tenant-scoped exception to the template default
type TenantItemOverride struct {
	shared.BaseEntity
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tenant_item_override,priority:1"`
	ItemType ItemType  `gorm:"type:varchar(20);not null;uniqueIndex:idx_tenant_item_override,priority:2"`
	ItemID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tenant_item_override,priority:3"`
	Enabled  bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TenantItemOverride) TableName() string {
	return "tenant_item_overrides"
}

// StoreItemOverride is a store-scoped tri-state exception to the tenant judgment
type StoreItemOverride struct {
	shared.BaseEntity
	TenantID uuid.UUID     `gorm:"type:uuid;not null;index"`
	StoreID  uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_store_item_override,priority:1"`
	ItemType ItemType      `gorm:"type:varchar(20);not null;uniqueIndex:idx_store_item_override,priority:2"`
	ItemID   uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_store_item_override,priority:3"`
	State    OverrideState `gorm:"type:varchar(20);not null;default:'NONE'"`
}

// TableName returns the table name for GORM
func (StoreItemOverride) TableName() string {
	return "store_item_overrides"
}

// StoreItemAvailability records whether an offered item is currently sellable
// at a store. This is a separate axis from whether the item is offered at all.
type StoreItemAvailability struct {
	shared.BaseEntity
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	StoreID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_store_item_availability,priority:1"`
	ItemType    ItemType  `gorm:"type:varchar(20);not null;uniqueIndex:idx_store_item_availability,priority:2"`
	ItemID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_store_item_availability,priority:3"`
	IsAvailable bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (StoreItemAvailability) TableName() string {
	return "store_item_availabilities"
}

// ItemKey identifies one catalog item within a store's scope
type ItemKey struct {
	ItemType ItemType
	ItemID   uuid.UUID
}
