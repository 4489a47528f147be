package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FolioCounter backs the per store/business-day receipt sequence.
// The row is locked inside the sale transaction so folios are gapless under
// concurrency on postgres; the primary key converts first-row races into a
// unique violation the caller retries.
type FolioCounter struct {
	TenantID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	StoreID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessDay string    `gorm:"type:varchar(10);primaryKey"`
	LastFolio   int64     `gorm:"not null;default:0"`
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (FolioCounter) TableName() string {
	return "folio_counters"
}

// GormSaleRepository implements sales.Repository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Save writes the whole sale aggregate. A duplicate client sale id surfaces
// as shared.ErrAlreadyExists so the caller can re-read the winning row.
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists sale changes (void transition). A duplicate client void id
// surfaces as shared.ErrAlreadyExists.
func (r *GormSaleRepository) Update(ctx context.Context, sale *sales.Sale) error {
	if err := r.db.WithContext(ctx).Save(sale).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByIDForTenant finds a sale with its lines and payments
func (r *GormSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.preloaded(ctx).First(&sale, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindByClientSaleID returns the sale recorded under the idempotency key, or
// nil. The key is unique per (tenant, store), so the lookup carries the store.
func (r *GormSaleRepository) FindByClientSaleID(ctx context.Context, tenantID, storeID uuid.UUID, clientSaleID string) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.preloaded(ctx).
		Where("tenant_id = ? AND store_id = ? AND client_sale_id = ?", tenantID, storeID, clientSaleID).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// FindByClientVoidID returns the sale voided under the idempotency key, or nil
func (r *GormSaleRepository) FindByClientVoidID(ctx context.Context, tenantID uuid.UUID, clientVoidID string) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.preloaded(ctx).
		Where("tenant_id = ? AND client_void_id = ?", tenantID, clientVoidID).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// FindAllForStore returns the store's sales, newest first
func (r *GormSaleRepository) FindAllForStore(ctx context.Context, tenantID, storeID uuid.UUID, filter shared.Filter) ([]sales.Sale, int64, error) {
	base := r.db.WithContext(ctx).Model(&sales.Sale{}).
		Where("tenant_id = ? AND store_id = ?", tenantID, storeID)

	if status, ok := filter.Filters["status"]; ok {
		base = base.Where("status = ?", status)
	}
	if shiftID, ok := filter.Filters["shift_id"]; ok {
		base = base.Where("shift_id = ?", shiftID)
	}
	if day, ok := filter.Filters["business_day"]; ok {
		base = base.Where("business_day = ?", day)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []sales.Sale
	if err := r.applyFilter(base, filter).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// CashTotalsForShift sums cash payments over the shift's sales, split by
// completed versus voided status
func (r *GormSaleRepository) CashTotalsForShift(ctx context.Context, tenantID, shiftID uuid.UUID) (sales.ShiftCashTotals, error) {
	type row struct {
		Status string
		Total  decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("sale_payments").
		Select("sales.status AS status, COALESCE(SUM(sale_payments.amount), 0) AS total").
		Joins("JOIN sales ON sales.id = sale_payments.sale_id").
		Where("sales.tenant_id = ? AND sales.shift_id = ? AND sale_payments.method = ?",
			tenantID, shiftID, sales.PaymentMethodCash).
		Group("sales.status").
		Scan(&rows).Error
	if err != nil {
		return sales.ShiftCashTotals{}, err
	}

	totals := sales.ShiftCashTotals{Collected: decimal.Zero, Reversed: decimal.Zero}
	for _, r := range rows {
		switch sales.SaleStatus(r.Status) {
		case sales.SaleStatusCompleted:
			totals.Collected = r.Total
		case sales.SaleStatusVoid:
			totals.Reversed = r.Total
		}
	}
	return totals, nil
}

// NextFolio reserves the next sequential folio for the store and business day.
// Must run inside the unit of work that persists the sale so an aborted sale
// releases its folio with the rollback.
func (r *GormSaleRepository) NextFolio(ctx context.Context, tenantID, storeID uuid.UUID, businessDay string) (int64, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ? AND business_day = ?", tenantID, storeID, businessDay)
	if forUpdate(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var counter FolioCounter
	err := query.First(&counter).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		counter = FolioCounter{
			TenantID:    tenantID,
			StoreID:     storeID,
			BusinessDay: businessDay,
			LastFolio:   1,
		}
		if err := r.db.WithContext(ctx).Create(&counter).Error; err != nil {
			if isUniqueViolation(err) {
				return 0, shared.ErrConcurrencyConflict
			}
			return 0, err
		}
		return 1, nil
	case err != nil:
		return 0, err
	}

	counter.LastFolio++
	result := r.db.WithContext(ctx).Model(&FolioCounter{}).
		Where("tenant_id = ? AND store_id = ? AND business_day = ? AND last_folio = ?",
			tenantID, storeID, businessDay, counter.LastFolio-1).
		Update("last_folio", counter.LastFolio)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, shared.ErrConcurrencyConflict
	}
	return counter.LastFolio, nil
}

func (r *GormSaleRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Selections").
		Preload("Items.Extras").
		Preload("Payments")
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(ValidateSortField(filter.OrderBy, SaleSortFields, "occurred_at") + " " + orderDir)
	} else {
		query = query.Order("occurred_at DESC")
	}
	return query
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"occurred_at":  true,
	"created_at":   true,
	"folio":        true,
	"business_day": true,
	"status":       true,
}

var _ sales.Repository = (*GormSaleRepository)(nil)
