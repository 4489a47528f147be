package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReadRepository loads the template rows and override rows the resolver needs.
// The catalog is administered by an external collaborator; this core only reads.
type ReadRepository interface {
	// StoreBelongsToTenant verifies the store is scoped under the tenant
	StoreBelongsToTenant(ctx context.Context, tenantID, storeID uuid.UUID) (bool, error)
	// TemplateForTenant returns the catalog template the tenant subscribes to
	TemplateForTenant(ctx context.Context, tenantID uuid.UUID) (*Template, error)

	CategoriesForTemplate(ctx context.Context, templateID uuid.UUID) ([]Category, error)
	ProductsForTemplate(ctx context.Context, templateID uuid.UUID) ([]Product, error)
	ExtrasForTemplate(ctx context.Context, templateID uuid.UUID) ([]Extra, error)
	OptionSetsForTemplate(ctx context.Context, templateID uuid.UUID) ([]OptionSet, error)
	OptionItemsForTemplate(ctx context.Context, templateID uuid.UUID) ([]OptionItem, error)
	SchemasForTemplate(ctx context.Context, templateID uuid.UUID) ([]SelectionSchema, error)
	GroupOptionsForTemplate(ctx context.Context, templateID uuid.UUID) ([]ProductGroupOption, error)

	TenantOverrides(ctx context.Context, tenantID uuid.UUID) ([]TenantItemOverride, error)
	StoreOverrides(ctx context.Context, tenantID, storeID uuid.UUID) ([]StoreItemOverride, error)
	StoreAvailabilities(ctx context.Context, tenantID, storeID uuid.UUID) ([]StoreItemAvailability, error)

	// MaxUpdatedAt returns the newest updated_at across every row that
	// contributes to the tenant+store snapshot
	MaxUpdatedAt(ctx context.Context, tenantID, storeID uuid.UUID) (time.Time, error)
}
