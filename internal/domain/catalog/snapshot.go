package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ResolvedProduct pairs a product with its resolved availability.
// AllowedOptions narrows the option items accepted per group key; a group key
// absent from the map accepts the full option set.
type ResolvedProduct struct {
	Product        Product                `json:"product"`
	Availability   Availability           `json:"availability"`
	AllowedOptions map[string][]uuid.UUID `json:"allowed_options,omitempty"`
}

// AllowsOption reports whether the product accepts the option item for the
// given group key, honoring any allow-list override scoped to that group.
func (p *ResolvedProduct) AllowsOption(groupKey string, optionItemID uuid.UUID) bool {
	allowed, restricted := p.AllowedOptions[groupKey]
	if !restricted {
		return true
	}
	for _, id := range allowed {
		if id == optionItemID {
			return true
		}
	}
	return false
}

// ResolvedExtra pairs an extra with its resolved availability
type ResolvedExtra struct {
	Extra        Extra        `json:"extra"`
	Availability Availability `json:"availability"`
}

// ResolvedOptionItem pairs an option item with its resolved availability
type ResolvedOptionItem struct {
	OptionItem   OptionItem   `json:"option_item"`
	Availability Availability `json:"availability"`
}

// EffectiveCatalog is the availability-resolved catalog for one tenant+store
// pair. It is a point-in-time read model; sales validate against it and freeze
// the prices it carries.
type EffectiveCatalog struct {
	TenantID     uuid.UUID            `json:"tenant_id"`
	StoreID      uuid.UUID            `json:"store_id"`
	Categories   []Category           `json:"categories"`
	Products     []ResolvedProduct    `json:"products"`
	Extras       []ResolvedExtra      `json:"extras"`
	OptionSets   []OptionSet          `json:"option_sets"`
	OptionItems  []ResolvedOptionItem `json:"option_items"`
	Schemas      []SelectionSchema    `json:"schemas"`
	VersionStamp string               `json:"version_stamp"`
	GeneratedAt  time.Time            `json:"generated_at"`

	productIndex map[uuid.UUID]*ResolvedProduct
	extraIndex   map[uuid.UUID]*ResolvedExtra
	optionIndex  map[uuid.UUID]*ResolvedOptionItem
	schemaIndex  map[uuid.UUID]*SelectionSchema
}

// BuildIndexes prepares the lookup maps used during cart validation.
// Must be called after the slices are populated.
func (c *EffectiveCatalog) BuildIndexes() {
	c.productIndex = make(map[uuid.UUID]*ResolvedProduct, len(c.Products))
	for i := range c.Products {
		c.productIndex[c.Products[i].Product.ID] = &c.Products[i]
	}
	c.extraIndex = make(map[uuid.UUID]*ResolvedExtra, len(c.Extras))
	for i := range c.Extras {
		c.extraIndex[c.Extras[i].Extra.ID] = &c.Extras[i]
	}
	c.optionIndex = make(map[uuid.UUID]*ResolvedOptionItem, len(c.OptionItems))
	for i := range c.OptionItems {
		c.optionIndex[c.OptionItems[i].OptionItem.ID] = &c.OptionItems[i]
	}
	c.schemaIndex = make(map[uuid.UUID]*SelectionSchema, len(c.Schemas))
	for i := range c.Schemas {
		c.schemaIndex[c.Schemas[i].ID] = &c.Schemas[i]
	}
}

// ProductByID returns the resolved product, or nil if not in the snapshot
func (c *EffectiveCatalog) ProductByID(id uuid.UUID) *ResolvedProduct {
	return c.productIndex[id]
}

// ExtraByID returns the resolved extra, or nil if not in the snapshot
func (c *EffectiveCatalog) ExtraByID(id uuid.UUID) *ResolvedExtra {
	return c.extraIndex[id]
}

// OptionItemByID returns the resolved option item, or nil if not in the snapshot
func (c *EffectiveCatalog) OptionItemByID(id uuid.UUID) *ResolvedOptionItem {
	return c.optionIndex[id]
}

// SchemaByID returns the selection schema, or nil if not in the snapshot
func (c *EffectiveCatalog) SchemaByID(id uuid.UUID) *SelectionSchema {
	return c.schemaIndex[id]
}

// ComputeVersionStamp derives the cache-validation token for a snapshot.
// It is deterministic over the scope and the newest contributing row, so an
// unchanged catalog yields the same stamp and callers can short-circuit with
// a not-modified response.
func ComputeVersionStamp(tenantID, storeID uuid.UUID, maxUpdatedAt time.Time) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%d", tenantID, storeID, maxUpdatedAt.UTC().UnixNano()))
	return hex.EncodeToString(h[:])
}
