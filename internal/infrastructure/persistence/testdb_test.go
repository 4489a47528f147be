package persistence

import (
	"testing"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/domain/ledger"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shift"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// The idempotency and exclusivity uniques are tenant-scoped composites the
// migrations create; gorm tags cannot express them because tenant_id sits in
// the embedded aggregate root, so the harness mirrors them here.
var testUniqueIndexes = []string{
	`CREATE UNIQUE INDEX idx_sale_client_id ON sales (tenant_id, store_id, client_sale_id)`,
	`CREATE UNIQUE INDEX idx_sale_client_void_id ON sales (tenant_id, client_void_id) WHERE client_void_id IS NOT NULL`,
	`CREATE UNIQUE INDEX idx_shift_open_op ON shifts (tenant_id, open_operation_id)`,
	`CREATE UNIQUE INDEX idx_shift_close_op ON shifts (tenant_id, close_operation_id) WHERE close_operation_id IS NOT NULL`,
	`CREATE UNIQUE INDEX idx_shift_single_open ON shifts (cashier_id, store_id) WHERE status = 'OPEN'`,
}

// setupTestDB creates an in-memory SQLite database with the full schema.
// Row locking degrades to a no-op on SQLite; uniqueness constraints still
// hold, which is what the idempotency tests exercise.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&identity.Tenant{},
		&identity.Store{},
		&catalog.Template{},
		&catalog.Category{},
		&catalog.Product{},
		&catalog.Extra{},
		&catalog.OptionSet{},
		&catalog.OptionItem{},
		&catalog.SelectionSchema{},
		&catalog.SelectionGroup{},
		&catalog.ProductGroupOption{},
		&catalog.TenantItemOverride{},
		&catalog.StoreItemOverride{},
		&catalog.StoreItemAvailability{},
		&ledger.Entry{},
		&sales.Sale{},
		&sales.SaleItem{},
		&sales.SaleItemSelection{},
		&sales.SaleItemExtra{},
		&sales.Payment{},
		&shift.Shift{},
		&shift.ShiftDenomination{},
		&FolioCounter{},
	)
	require.NoError(t, err)

	for _, stmt := range testUniqueIndexes {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}
