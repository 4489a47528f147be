package identity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
)

// Store is a physical point of sale belonging to one tenant
type Store struct {
	shared.BaseEntity
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_store_tenant_code,priority:1"`
	Code     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_store_tenant_code,priority:2"`
	Name     string    `gorm:"type:varchar(200);not null"`
	IsActive bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Store) TableName() string {
	return "stores"
}

// NewStore creates a store for a tenant
func NewStore(tenantID uuid.UUID, code, name string) (*Store, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_STORE_CODE", "Store code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_STORE_NAME", "Store name cannot be empty")
	}
	return &Store{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Code:       code,
		Name:       strings.TrimSpace(name),
		IsActive:   true,
	}, nil
}

// BelongsTo returns true if the store is owned by the tenant
func (s *Store) BelongsTo(tenantID uuid.UUID) bool {
	return s.TenantID == tenantID
}
