package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shift"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShiftRepository implements shift.Repository using GORM
type GormShiftRepository struct {
	db *gorm.DB
}

// NewGormShiftRepository creates a new GormShiftRepository
func NewGormShiftRepository(db *gorm.DB) *GormShiftRepository {
	return &GormShiftRepository{db: db}
}

// Save writes a new shift with its denomination rows. A duplicate open
// operation id or a second Open shift for the same (cashier, store) surfaces
// as shared.ErrAlreadyExists.
func (r *GormShiftRepository) Save(ctx context.Context, sh *shift.Shift) error {
	if err := r.db.WithContext(ctx).Create(sh).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists shift changes, including counted denominations added on close
func (r *GormShiftRepository) Update(ctx context.Context, sh *shift.Shift) error {
	if err := r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(sh).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByIDForTenant finds a shift by ID scoped to the tenant
func (r *GormShiftRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*shift.Shift, error) {
	var sh shift.Shift
	if err := r.db.WithContext(ctx).
		Preload("CountedDenominations").
		First(&sh, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sh, nil
}

// FindOpenByCashier returns the cashier's Open shift at the store, or nil.
// Inside a postgres transaction the row is locked so concurrent open/close
// attempts for the same pair serialize.
func (r *GormShiftRepository) FindOpenByCashier(ctx context.Context, tenantID, storeID, cashierID uuid.UUID) (*shift.Shift, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ? AND cashier_id = ? AND status = ?",
			tenantID, storeID, cashierID, shift.ShiftStatusOpen)
	if forUpdate(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var sh shift.Shift
	if err := query.First(&sh).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sh, nil
}

// FindByOpenOperationID returns the shift opened with the idempotency key, or nil
func (r *GormShiftRepository) FindByOpenOperationID(ctx context.Context, tenantID uuid.UUID, clientOperationID string) (*shift.Shift, error) {
	return r.findByOperationColumn(ctx, tenantID, "open_operation_id", clientOperationID)
}

// FindByCloseOperationID returns the shift closed with the idempotency key, or nil
func (r *GormShiftRepository) FindByCloseOperationID(ctx context.Context, tenantID uuid.UUID, clientOperationID string) (*shift.Shift, error) {
	return r.findByOperationColumn(ctx, tenantID, "close_operation_id", clientOperationID)
}

func (r *GormShiftRepository) findByOperationColumn(ctx context.Context, tenantID uuid.UUID, column, clientOperationID string) (*shift.Shift, error) {
	var sh shift.Shift
	if err := r.db.WithContext(ctx).
		Preload("CountedDenominations").
		Where("tenant_id = ? AND "+column+" = ?", tenantID, clientOperationID).
		First(&sh).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sh, nil
}

// FindAllForStore returns the store's shifts, newest first
func (r *GormShiftRepository) FindAllForStore(ctx context.Context, tenantID, storeID uuid.UUID, filter shared.Filter) ([]shift.Shift, int64, error) {
	base := r.db.WithContext(ctx).Model(&shift.Shift{}).
		Where("tenant_id = ? AND store_id = ?", tenantID, storeID)

	if status, ok := filter.Filters["status"]; ok {
		base = base.Where("status = ?", status)
	}
	if cashierID, ok := filter.Filters["cashier_id"]; ok {
		base = base.Where("cashier_id = ?", cashierID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shifts []shift.Shift
	if err := r.applyFilter(base, filter).Find(&shifts).Error; err != nil {
		return nil, 0, err
	}
	return shifts, total, nil
}

func (r *GormShiftRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(ValidateSortField(filter.OrderBy, ShiftSortFields, "opened_at") + " " + orderDir)
	} else {
		query = query.Order("opened_at DESC")
	}
	return query
}

// ShiftSortFields contains allowed sort fields for shifts
var ShiftSortFields = map[string]bool{
	"opened_at":  true,
	"closed_at":  true,
	"created_at": true,
	"status":     true,
}

var _ shift.Repository = (*GormShiftRepository)(nil)
