package identity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant is a business operating one or more stores. Account provisioning is
// handled by an external platform; this core only reads the registry to scope
// catalog resolution and transactions.
type Tenant struct {
	shared.BaseAggregateRoot
	Code       string       `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name       string       `gorm:"type:varchar(200);not null"`
	Status     TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
	TemplateID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Currency   string       `gorm:"type:varchar(3);not null;default:'MXN'"`
	Timezone   string       `gorm:"type:varchar(60);not null;default:'America/Mexico_City'"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a tenant bound to a catalog template
func NewTenant(code, name string, templateID uuid.UUID) (*Tenant, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_CODE", "Tenant code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot be empty")
	}
	if templateID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", "Template ID cannot be empty")
	}
	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              strings.TrimSpace(name),
		Status:            TenantStatusActive,
		TemplateID:        templateID,
		Currency:          "MXN",
		Timezone:          "America/Mexico_City",
	}, nil
}

// IsOperational returns true if the tenant may transact
func (t *Tenant) IsOperational() bool {
	return t.Status == TenantStatusActive
}
