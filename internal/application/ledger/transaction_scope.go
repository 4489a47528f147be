package ledger

import (
	"context"

	"github.com/pos/backend/internal/domain/ledger"
)

// TransactionScope runs ledger writes inside one database transaction.
// If the function returns an error the transaction is rolled back; otherwise
// it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the current
// transaction.
type TransactionalRepositories interface {
	EntryRepo() ledger.EntryRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	entryRepo ledger.EntryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repository
func NewNoOpTransactionScope(entryRepo ledger.EntryRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{entryRepo: entryRepo}
}

// Execute runs the function directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// EntryRepo returns the ledger entry repository
func (s *NoOpTransactionScope) EntryRepo() ledger.EntryRepository {
	return s.entryRepo
}
