package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/ledger"
	"github.com/pos/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedgerRepository implements ledger.EntryRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append writes one new entry. A duplicate (store, item, seq) or client
// operation id surfaces as shared.ErrAlreadyExists.
func (r *GormLedgerRepository) Append(ctx context.Context, entry *ledger.Entry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// LastEntry returns the newest entry for the item key, or nil if the item has
// no history. Inside a postgres transaction the row is locked so concurrent
// appenders serialize on the chain head.
func (r *GormLedgerRepository) LastEntry(ctx context.Context, tenantID, storeID uuid.UUID, itemType catalog.ItemType, itemID uuid.UUID) (*ledger.Entry, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ? AND item_type = ? AND item_id = ?", tenantID, storeID, itemType, itemID).
		Order("seq DESC")
	if forUpdate(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var entry ledger.Entry
	if err := query.First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListForItem returns the item's history, newest first
func (r *GormLedgerRepository) ListForItem(ctx context.Context, tenantID, storeID uuid.UUID, itemType catalog.ItemType, itemID uuid.UUID, filter shared.Filter) ([]ledger.Entry, int64, error) {
	base := r.db.WithContext(ctx).Model(&ledger.Entry{}).
		Where("tenant_id = ? AND store_id = ? AND item_type = ? AND item_id = ?", tenantID, storeID, itemType, itemID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []ledger.Entry
	if err := r.applyFilter(base, filter).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// FindByReference returns every entry linked to a source document
func (r *GormLedgerRepository) FindByReference(ctx context.Context, tenantID, referenceID uuid.UUID) ([]ledger.Entry, error) {
	var entries []ledger.Entry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_id = ?", tenantID, referenceID).
		Order("occurred_at ASC, seq ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByClientOperationID returns the entry tagged with the idempotency key,
// or nil if none exists
func (r *GormLedgerRepository) FindByClientOperationID(ctx context.Context, tenantID uuid.UUID, clientOperationID string) (*ledger.Entry, error) {
	var entry ledger.Entry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_operation_id = ?", tenantID, clientOperationID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *GormLedgerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(ValidateSortField(filter.OrderBy, LedgerSortFields, "seq") + " " + orderDir)
	} else {
		query = query.Order("seq DESC")
	}
	return query
}

// LedgerSortFields contains allowed sort fields for ledger entries
var LedgerSortFields = map[string]bool{
	"seq":         true,
	"occurred_at": true,
	"created_at":  true,
}

var _ ledger.EntryRepository = (*GormLedgerRepository)(nil)
