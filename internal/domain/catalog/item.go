package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemType discriminates the sellable item variants in the catalog
type ItemType string

const (
	// ItemTypeProduct is a standalone sellable product
	ItemTypeProduct ItemType = "PRODUCT"
	// ItemTypeExtra is a paid add-on attached to a product line
	ItemTypeExtra ItemType = "EXTRA"
	// ItemTypeOptionItem is a choice within a selection group; never inventory-tracked
	ItemTypeOptionItem ItemType = "OPTION_ITEM"
)

// String returns the string representation of ItemType
func (t ItemType) String() string {
	return string(t)
}

// IsValid returns true if the item type is valid
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeProduct, ItemTypeExtra, ItemTypeOptionItem:
		return true
	}
	return false
}

// IsTrackable returns true if items of this type may carry inventory.
// Option items are configuration choices, not stock.
func (t ItemType) IsTrackable() bool {
	return t == ItemTypeProduct || t == ItemTypeExtra
}

// Template is the administrator-defined baseline catalog for a vertical.
// Administration of templates is external; this core only reads them.
type Template struct {
	shared.BaseAggregateRoot
	Name     string `gorm:"type:varchar(120);not null"`
	Vertical string `gorm:"type:varchar(60);not null;index"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Template) TableName() string {
	return "catalog_templates"
}

// Category groups products for presentation
type Category struct {
	shared.BaseEntity
	TemplateID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(120);not null"`
	SortOrder  int       `gorm:"not null;default:0"`
	IsActive   bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "catalog_categories"
}

// Product is a sellable item defined on a template.
// Prices here are the catalog-resolved unit prices; sales freeze them per line.
type Product struct {
	shared.BaseEntity
	TemplateID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoryID         *uuid.UUID      `gorm:"type:uuid;index"`
	Name               string          `gorm:"type:varchar(200);not null"`
	BasePrice          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive           bool            `gorm:"not null;default:true"`
	IsInventoryTracked bool            `gorm:"not null;default:false"`
	SchemaID           *uuid.UUID      `gorm:"type:uuid;index"`
	SortOrder          int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "catalog_products"
}

// Extra is a paid add-on that can accompany a product line
type Extra struct {
	shared.BaseEntity
	TemplateID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name               string          `gorm:"type:varchar(200);not null"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive           bool            `gorm:"not null;default:true"`
	IsInventoryTracked bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Extra) TableName() string {
	return "catalog_extras"
}

// OptionSet is a named pool of option items referenced by selection groups
type OptionSet struct {
	shared.BaseEntity
	TemplateID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(120);not null"`
}

// TableName returns the table name for GORM
func (OptionSet) TableName() string {
	return "catalog_option_sets"
}

// OptionItem is one selectable choice within an option set
type OptionItem struct {
	shared.BaseEntity
	OptionSetID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(200);not null"`
	IsActive    bool      `gorm:"not null;default:true"`
	SortOrder   int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OptionItem) TableName() string {
	return "catalog_option_items"
}

// SelectionSchema declares the selection groups a product exposes
type SelectionSchema struct {
	shared.BaseEntity
	TemplateID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name       string           `gorm:"type:varchar(120);not null"`
	Groups     []SelectionGroup `gorm:"foreignKey:SchemaID"`
}

// TableName returns the table name for GORM
func (SelectionSchema) TableName() string {
	return "catalog_selection_schemas"
}

// SelectionGroup binds a group key on a schema to an option set with count bounds
type SelectionGroup struct {
	shared.BaseEntity
	SchemaID      uuid.UUID `gorm:"type:uuid;not null;index"`
	GroupKey      string    `gorm:"type:varchar(60);not null"`
	OptionSetID   uuid.UUID `gorm:"type:uuid;not null"`
	MinSelections int       `gorm:"not null;default:0"`
	MaxSelections int       `gorm:"not null;default:1"`
	SortOrder     int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SelectionGroup) TableName() string {
	return "catalog_selection_groups"
}

// GroupByKey returns the selection group with the given key, or nil
func (s *SelectionSchema) GroupByKey(key string) *SelectionGroup {
	for i := range s.Groups {
		if strings.EqualFold(s.Groups[i].GroupKey, key) {
			return &s.Groups[i]
		}
	}
	return nil
}

// ProductGroupOption narrows the option items a product accepts for one group.
// When any rows exist for a (product, group key) pair, only the listed option
// items are valid for that group on that product.
type ProductGroupOption struct {
	shared.BaseEntity
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index:idx_product_group_option,priority:1"`
	GroupKey     string    `gorm:"type:varchar(60);not null;index:idx_product_group_option,priority:2"`
	OptionItemID uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (ProductGroupOption) TableName() string {
	return "catalog_product_group_options"
}
