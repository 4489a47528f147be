package sales

import (
	"context"

	"github.com/pos/backend/internal/domain/ledger"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shift"
)

// TransactionScope runs a sale operation's writes inside one database
// transaction: sale rows, ledger entries, and the folio reservation commit or
// roll back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the current
// transaction
type TransactionalRepositories interface {
	SaleRepo() sales.Repository
	EntryRepo() ledger.EntryRepository
	ShiftRepo() shift.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	saleRepo  sales.Repository
	entryRepo ledger.EntryRepository
	shiftRepo shift.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(saleRepo sales.Repository, entryRepo ledger.EntryRepository, shiftRepo shift.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		saleRepo:  saleRepo,
		entryRepo: entryRepo,
		shiftRepo: shiftRepo,
	}
}

// Execute runs the function directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// SaleRepo returns the sale repository
func (s *NoOpTransactionScope) SaleRepo() sales.Repository {
	return s.saleRepo
}

// EntryRepo returns the ledger entry repository
func (s *NoOpTransactionScope) EntryRepo() ledger.EntryRepository {
	return s.entryRepo
}

// ShiftRepo returns the shift repository
func (s *NoOpTransactionScope) ShiftRepo() shift.Repository {
	return s.shiftRepo
}
