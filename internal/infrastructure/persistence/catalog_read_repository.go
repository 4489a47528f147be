package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCatalogReadRepository implements catalog.ReadRepository using GORM
type GormCatalogReadRepository struct {
	db *gorm.DB
}

// NewGormCatalogReadRepository creates a new GormCatalogReadRepository
func NewGormCatalogReadRepository(db *gorm.DB) *GormCatalogReadRepository {
	return &GormCatalogReadRepository{db: db}
}

// StoreBelongsToTenant verifies the store is scoped under the tenant
func (r *GormCatalogReadRepository) StoreBelongsToTenant(ctx context.Context, tenantID, storeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&identity.Store{}).
		Where("id = ? AND tenant_id = ?", storeID, tenantID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// TemplateForTenant returns the catalog template the tenant subscribes to
func (r *GormCatalogReadRepository) TemplateForTenant(ctx context.Context, tenantID uuid.UUID) (*catalog.Template, error) {
	var tenant identity.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	var template catalog.Template
	if err := r.db.WithContext(ctx).First(&template, "id = ?", tenant.TemplateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// CategoriesForTemplate lists the template's categories
func (r *GormCatalogReadRepository) CategoriesForTemplate(ctx context.Context, templateID uuid.UUID) ([]catalog.Category, error) {
	var rows []catalog.Category
	err := r.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("sort_order ASC, name ASC").
		Find(&rows).Error
	return rows, err
}

// ProductsForTemplate lists the template's products
func (r *GormCatalogReadRepository) ProductsForTemplate(ctx context.Context, templateID uuid.UUID) ([]catalog.Product, error) {
	var rows []catalog.Product
	err := r.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("sort_order ASC, name ASC").
		Find(&rows).Error
	return rows, err
}

// ExtrasForTemplate lists the template's extras
func (r *GormCatalogReadRepository) ExtrasForTemplate(ctx context.Context, templateID uuid.UUID) ([]catalog.Extra, error) {
	var rows []catalog.Extra
	err := r.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

// OptionSetsForTemplate lists the template's option sets
func (r *GormCatalogReadRepository) OptionSetsForTemplate(ctx context.Context, templateID uuid.UUID) ([]catalog.OptionSet, error) {
	var rows []catalog.OptionSet
	err := r.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

// OptionItemsForTemplate lists the option items of every set on the template
func (r *GormCatalogReadRepository) OptionItemsForTemplate(ctx context.Context, templateID uuid.UUID) ([]catalog.OptionItem, error) {
	var rows []catalog.OptionItem
	err := r.db.WithContext(ctx).
		Where("option_set_id IN (?)",
			r.db.Model(&catalog.OptionSet{}).Select("id").Where("template_id = ?", templateID)).
		Order("sort_order ASC, name ASC").
		Find(&rows).Error
	return rows, err
}

// SchemasForTemplate lists the template's selection schemas with their groups
func (r *GormCatalogReadRepository) SchemasForTemplate(ctx context.Context, templateID uuid.UUID) ([]catalog.SelectionSchema, error) {
	var rows []catalog.SelectionSchema
	err := r.db.WithContext(ctx).
		Preload("Groups", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("template_id = ?", templateID).
		Find(&rows).Error
	return rows, err
}

// GroupOptionsForTemplate lists the per-product allow-list rows for the template
func (r *GormCatalogReadRepository) GroupOptionsForTemplate(ctx context.Context, templateID uuid.UUID) ([]catalog.ProductGroupOption, error) {
	var rows []catalog.ProductGroupOption
	err := r.db.WithContext(ctx).
		Where("product_id IN (?)",
			r.db.Model(&catalog.Product{}).Select("id").Where("template_id = ?", templateID)).
		Find(&rows).Error
	return rows, err
}

// TenantOverrides lists the tenant's item overrides
func (r *GormCatalogReadRepository) TenantOverrides(ctx context.Context, tenantID uuid.UUID) ([]catalog.TenantItemOverride, error) {
	var rows []catalog.TenantItemOverride
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Find(&rows).Error
	return rows, err
}

// StoreOverrides lists the store's item overrides
func (r *GormCatalogReadRepository) StoreOverrides(ctx context.Context, tenantID, storeID uuid.UUID) ([]catalog.StoreItemOverride, error) {
	var rows []catalog.StoreItemOverride
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ?", tenantID, storeID).
		Find(&rows).Error
	return rows, err
}

// StoreAvailabilities lists the store's sellable-now flags
func (r *GormCatalogReadRepository) StoreAvailabilities(ctx context.Context, tenantID, storeID uuid.UUID) ([]catalog.StoreItemAvailability, error) {
	var rows []catalog.StoreItemAvailability
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ?", tenantID, storeID).
		Find(&rows).Error
	return rows, err
}

// MaxUpdatedAt returns the newest updated_at across every row contributing to
// the tenant+store snapshot. Any edit to a contributing row moves the version
// stamp forward.
func (r *GormCatalogReadRepository) MaxUpdatedAt(ctx context.Context, tenantID, storeID uuid.UUID) (time.Time, error) {
	template, err := r.TemplateForTenant(ctx, tenantID)
	if err != nil {
		return time.Time{}, err
	}

	newest := template.UpdatedAt

	templateScoped := []string{
		"catalog_categories",
		"catalog_products",
		"catalog_extras",
		"catalog_option_sets",
		"catalog_selection_schemas",
	}
	for _, table := range templateScoped {
		ts, err := r.maxUpdatedAt(ctx, table, "template_id = ?", template.ID)
		if err != nil {
			return time.Time{}, err
		}
		if ts.After(newest) {
			newest = ts
		}
	}

	indirect := []struct {
		table string
		where string
		arg   any
	}{
		{"catalog_option_items", "option_set_id IN (SELECT id FROM catalog_option_sets WHERE template_id = ?)", template.ID},
		{"catalog_selection_groups", "schema_id IN (SELECT id FROM catalog_selection_schemas WHERE template_id = ?)", template.ID},
		{"catalog_product_group_options", "product_id IN (SELECT id FROM catalog_products WHERE template_id = ?)", template.ID},
		{"tenant_item_overrides", "tenant_id = ?", tenantID},
	}
	for _, q := range indirect {
		ts, err := r.maxUpdatedAt(ctx, q.table, q.where, q.arg)
		if err != nil {
			return time.Time{}, err
		}
		if ts.After(newest) {
			newest = ts
		}
	}

	storeScoped := []string{
		"store_item_overrides",
		"store_item_availabilities",
	}
	for _, table := range storeScoped {
		ts, err := r.maxUpdatedAt(ctx, table, "tenant_id = ? AND store_id = ?", tenantID, storeID)
		if err != nil {
			return time.Time{}, err
		}
		if ts.After(newest) {
			newest = ts
		}
	}

	return newest, nil
}

func (r *GormCatalogReadRepository) maxUpdatedAt(ctx context.Context, table, where string, args ...any) (time.Time, error) {
	var ts *time.Time
	err := r.db.WithContext(ctx).
		Table(table).
		Select("MAX(updated_at)").
		Where(where, args...).
		Scan(&ts).Error
	if err != nil {
		return time.Time{}, err
	}
	if ts == nil {
		return time.Time{}, nil
	}
	return *ts, nil
}

var _ catalog.ReadRepository = (*GormCatalogReadRepository)(nil)
