package shift

import (
	"context"

	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shift"
)

// TransactionScope runs shift transitions inside one database transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the current
// transaction. The sale repository is read here only for cash totals.
type TransactionalRepositories interface {
	ShiftRepo() shift.Repository
	SaleRepo() sales.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	shiftRepo shift.Repository
	saleRepo  sales.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(shiftRepo shift.Repository, saleRepo sales.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{shiftRepo: shiftRepo, saleRepo: saleRepo}
}

// Execute runs the function directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ShiftRepo returns the shift repository
func (s *NoOpTransactionScope) ShiftRepo() shift.Repository {
	return s.shiftRepo
}

// SaleRepo returns the sale repository
func (s *NoOpTransactionScope) SaleRepo() sales.Repository {
	return s.saleRepo
}
