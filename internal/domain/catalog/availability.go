package catalog

// Availability is the resolved per-item verdict for one tenant+store scope
type Availability struct {
	// Offered means the item appears in the effective catalog at all
	Offered bool `json:"offered"`
	// Sellable means the offered item can be sold right now
	Sellable bool `json:"sellable"`
}

// ResolveAvailability applies the override chain for one item.
// Precedence, high to low:
//  1. template and item active flags — if either is off the item is never offered
//  2. tenant override replaces the default enabled judgment
//  3. store override replaces the judgment again unless its state is None
//  4. the store availability flag gates current sellability of an offered item
func ResolveAvailability(
	templateActive bool,
	itemActive bool,
	tenantOverride *TenantItemOverride,
	storeOverride *StoreItemOverride,
	storeAvailability *StoreItemAvailability,
) Availability {
	if !templateActive || !itemActive {
		return Availability{}
	}

	enabled := true
	if tenantOverride != nil {
		enabled = tenantOverride.Enabled
	}
	if storeOverride != nil && storeOverride.State.IsJudgment() {
		enabled = storeOverride.State == OverrideStateEnabled
	}
	if !enabled {
		return Availability{}
	}

	sellable := true
	if storeAvailability != nil {
		sellable = storeAvailability.IsAvailable
	}
	return Availability{Offered: true, Sellable: sellable}
}

// OverrideIndex holds the override rows for one tenant+store scope,
// keyed for O(1) lookup during resolution.
type OverrideIndex struct {
	tenant       map[ItemKey]*TenantItemOverride
	store        map[ItemKey]*StoreItemOverride
	availability map[ItemKey]*StoreItemAvailability
}

// NewOverrideIndex builds an index over the scope's override rows
func NewOverrideIndex(
	tenantOverrides []TenantItemOverride,
	storeOverrides []StoreItemOverride,
	availabilities []StoreItemAvailability,
) *OverrideIndex {
	idx := &OverrideIndex{
		tenant:       make(map[ItemKey]*TenantItemOverride, len(tenantOverrides)),
		store:        make(map[ItemKey]*StoreItemOverride, len(storeOverrides)),
		availability: make(map[ItemKey]*StoreItemAvailability, len(availabilities)),
	}
	for i := range tenantOverrides {
		o := &tenantOverrides[i]
		idx.tenant[ItemKey{o.ItemType, o.ItemID}] = o
	}
	for i := range storeOverrides {
		o := &storeOverrides[i]
		idx.store[ItemKey{o.ItemType, o.ItemID}] = o
	}
	for i := range availabilities {
		a := &availabilities[i]
		idx.availability[ItemKey{a.ItemType, a.ItemID}] = a
	}
	return idx
}

// Resolve applies the override chain for the given item using the indexed rows
func (idx *OverrideIndex) Resolve(templateActive, itemActive bool, key ItemKey) Availability {
	return ResolveAvailability(
		templateActive,
		itemActive,
		idx.tenant[key],
		idx.store[key],
		idx.availability[key],
	)
}
