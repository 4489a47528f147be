package identity

import (
	"context"

	"github.com/google/uuid"
)

// Repository reads the tenant/store registry
type Repository interface {
	FindTenantByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindStoreByID(ctx context.Context, id uuid.UUID) (*Store, error)
}
