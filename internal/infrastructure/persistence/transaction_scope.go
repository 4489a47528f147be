package persistence

import (
	"context"

	appledger "github.com/pos/backend/internal/application/ledger"
	appsales "github.com/pos/backend/internal/application/sales"
	appshift "github.com/pos/backend/internal/application/shift"
	"github.com/pos/backend/internal/domain/ledger"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shift"
	"gorm.io/gorm"
)

// gormTransactionalRepositories exposes every repository bound to one
// transaction. It satisfies the TransactionalRepositories interface of each
// application package.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// SaleRepo returns the sale repository scoped to the current transaction
func (r *gormTransactionalRepositories) SaleRepo() sales.Repository {
	return NewGormSaleRepository(r.tx)
}

// EntryRepo returns the ledger entry repository scoped to the current transaction
func (r *gormTransactionalRepositories) EntryRepo() ledger.EntryRepository {
	return NewGormLedgerRepository(r.tx)
}

// ShiftRepo returns the shift repository scoped to the current transaction
func (r *gormTransactionalRepositories) ShiftRepo() shift.Repository {
	return NewGormShiftRepository(r.tx)
}

// GormSaleTransactionScope implements the sale application's TransactionScope
// using GORM transactions
type GormSaleTransactionScope struct {
	db *gorm.DB
}

// NewGormSaleTransactionScope creates a new GormSaleTransactionScope
func NewGormSaleTransactionScope(db *gorm.DB) *GormSaleTransactionScope {
	return &GormSaleTransactionScope{db: db}
}

// Execute runs the function within a database transaction. An error rolls the
// transaction back; success commits it.
func (s *GormSaleTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormShiftTransactionScope implements the shift application's TransactionScope
// using GORM transactions
type GormShiftTransactionScope struct {
	db *gorm.DB
}

// NewGormShiftTransactionScope creates a new GormShiftTransactionScope
func NewGormShiftTransactionScope(db *gorm.DB) *GormShiftTransactionScope {
	return &GormShiftTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormShiftTransactionScope) Execute(ctx context.Context, fn func(repos appshift.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormLedgerTransactionScope implements the ledger application's
// TransactionScope using GORM transactions
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute runs the function within a database transaction
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

var (
	_ appsales.TransactionScope  = (*GormSaleTransactionScope)(nil)
	_ appshift.TransactionScope  = (*GormShiftTransactionScope)(nil)
	_ appledger.TransactionScope = (*GormLedgerTransactionScope)(nil)

	_ appsales.TransactionalRepositories  = (*gormTransactionalRepositories)(nil)
	_ appshift.TransactionalRepositories  = (*gormTransactionalRepositories)(nil)
	_ appledger.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
