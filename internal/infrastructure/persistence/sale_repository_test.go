package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestSale(t *testing.T, tenantID, storeID uuid.UUID, clientSaleID string) *sales.Sale {
	t.Helper()
	sale, err := sales.NewSale(tenantID, storeID, uuid.New(), clientSaleID, time.Now())
	require.NoError(t, err)

	item, err := sales.NewSaleItem(uuid.New(), "Latte", decimal.RequireFromString("45.00"), 2, true)
	require.NoError(t, err)
	require.NoError(t, item.AddExtra(uuid.New(), "Espresso shot", decimal.RequireFromString("8.00"), 1, false))
	item.AddSelection("milk", uuid.New(), "Oat milk")
	sale.AddItem(item)

	require.NoError(t, sale.AttachPayments([]sales.Payment{
		{Method: sales.PaymentMethodCash, Amount: decimal.RequireFromString("106.00")},
	}))
	sale.AssignFolio(1)
	sale.Complete()
	return sale
}

func TestGormSaleRepository(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	storeID := uuid.New()

	t.Run("saves and reloads the whole aggregate", func(t *testing.T) {
		repo := NewGormSaleRepository(setupTestDB(t))
		sale := newTestSale(t, tenantID, storeID, "pos-7-000123")
		require.NoError(t, repo.Save(ctx, sale))

		loaded, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Items, 1)
		require.Len(t, loaded.Items[0].Selections, 1)
		require.Len(t, loaded.Items[0].Extras, 1)
		require.Len(t, loaded.Payments, 1)
		assert.True(t, loaded.Total.Equal(decimal.RequireFromString("106.00")))
		assert.Equal(t, "Oat milk", loaded.Items[0].Selections[0].OptionItemName)
	})

	t.Run("is scoped to the tenant", func(t *testing.T) {
		repo := NewGormSaleRepository(setupTestDB(t))
		sale := newTestSale(t, tenantID, storeID, "pos-7-000123")
		require.NoError(t, repo.Save(ctx, sale))

		_, err := repo.FindByIDForTenant(ctx, uuid.New(), sale.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate client sale id is rejected", func(t *testing.T) {
		repo := NewGormSaleRepository(setupTestDB(t))
		require.NoError(t, repo.Save(ctx, newTestSale(t, tenantID, storeID, "pos-7-000123")))

		err := repo.Save(ctx, newTestSale(t, tenantID, storeID, "pos-7-000123"))
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		winner, err := repo.FindByClientSaleID(ctx, tenantID, storeID, "pos-7-000123")
		require.NoError(t, err)
		require.NotNil(t, winner)
	})

	t.Run("client sale id may recur at another store", func(t *testing.T) {
		repo := NewGormSaleRepository(setupTestDB(t))
		otherStoreID := uuid.New()

		first := newTestSale(t, tenantID, storeID, "pos-7-000123")
		require.NoError(t, repo.Save(ctx, first))
		second := newTestSale(t, tenantID, otherStoreID, "pos-7-000123")
		require.NoError(t, repo.Save(ctx, second))

		found, err := repo.FindByClientSaleID(ctx, tenantID, otherStoreID, "pos-7-000123")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, second.ID, found.ID)
	})

	t.Run("missing client sale id yields nil", func(t *testing.T) {
		repo := NewGormSaleRepository(setupTestDB(t))
		found, err := repo.FindByClientSaleID(ctx, tenantID, storeID, "never-seen")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("folio increments per store and business day", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormSaleRepository(db)

		f1, err := repo.NextFolio(ctx, tenantID, storeID, "2026-08-30")
		require.NoError(t, err)
		f2, err := repo.NextFolio(ctx, tenantID, storeID, "2026-08-30")
		require.NoError(t, err)
		f3, err := repo.NextFolio(ctx, tenantID, storeID, "2026-08-31")
		require.NoError(t, err)
		otherStore, err := repo.NextFolio(ctx, tenantID, uuid.New(), "2026-08-30")
		require.NoError(t, err)

		assert.Equal(t, int64(1), f1)
		assert.Equal(t, int64(2), f2)
		assert.Equal(t, int64(1), f3, "new business day restarts the sequence")
		assert.Equal(t, int64(1), otherStore, "folio is scoped per store")
	})

	t.Run("folio released on rollback is reused", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormSaleRepository(db)

		_, err := repo.NextFolio(ctx, tenantID, storeID, "2026-08-30")
		require.NoError(t, err)

		err = db.Transaction(func(tx *gorm.DB) error {
			folio, err := NewGormSaleRepository(tx).NextFolio(ctx, tenantID, storeID, "2026-08-30")
			require.NoError(t, err)
			assert.Equal(t, int64(2), folio)
			return assert.AnError
		})
		require.Error(t, err)

		folio, err := repo.NextFolio(ctx, tenantID, storeID, "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, int64(2), folio)
	})

	t.Run("cash totals split completed and voided sales", func(t *testing.T) {
		repo := NewGormSaleRepository(setupTestDB(t))
		shiftID := uuid.New()

		completed := newTestSale(t, tenantID, storeID, "sale-1")
		completed.ShiftID = &shiftID
		require.NoError(t, repo.Save(ctx, completed))

		voided := newTestSale(t, tenantID, storeID, "sale-2")
		voided.ShiftID = &shiftID
		require.NoError(t, voided.Void("MISTAKE", nil, nil, "void-1"))
		require.NoError(t, repo.Save(ctx, voided))

		otherShift := newTestSale(t, tenantID, storeID, "sale-3")
		require.NoError(t, repo.Save(ctx, otherShift))

		totals, err := repo.CashTotalsForShift(ctx, tenantID, shiftID)
		require.NoError(t, err)
		assert.True(t, totals.Collected.Equal(decimal.RequireFromString("106.00")), "collected was %s", totals.Collected)
		assert.True(t, totals.Reversed.Equal(decimal.RequireFromString("106.00")), "reversed was %s", totals.Reversed)
	})

	t.Run("lists sales filtered by status", func(t *testing.T) {
		repo := NewGormSaleRepository(setupTestDB(t))

		require.NoError(t, repo.Save(ctx, newTestSale(t, tenantID, storeID, "sale-1")))
		voided := newTestSale(t, tenantID, storeID, "sale-2")
		require.NoError(t, voided.Void("MISTAKE", nil, nil, "void-1"))
		require.NoError(t, repo.Save(ctx, voided))

		list, total, err := repo.FindAllForStore(ctx, tenantID, storeID, shared.Filter{
			Page: 1, PageSize: 10,
			Filters: map[string]any{"status": string(sales.SaleStatusVoid)},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list, 1)
		assert.Equal(t, "sale-2", list[0].ClientSaleID)
	})
}
