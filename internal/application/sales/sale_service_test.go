package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/domain/ledger"
	domainsales "github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shift"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSaleRepository is a mock implementation of sales.Repository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *domainsales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) Update(ctx context.Context, sale *domainsales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*domainsales.Sale, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainsales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByClientSaleID(ctx context.Context, tenantID, storeID uuid.UUID, clientSaleID string) (*domainsales.Sale, error) {
	args := m.Called(ctx, tenantID, storeID, clientSaleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainsales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByClientVoidID(ctx context.Context, tenantID uuid.UUID, clientVoidID string) (*domainsales.Sale, error) {
	args := m.Called(ctx, tenantID, clientVoidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainsales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAllForStore(ctx context.Context, tenantID, storeID uuid.UUID, filter shared.Filter) ([]domainsales.Sale, int64, error) {
	args := m.Called(ctx, tenantID, storeID, filter)
	return args.Get(0).([]domainsales.Sale), args.Get(1).(int64), args.Error(2)
}

func (m *MockSaleRepository) CashTotalsForShift(ctx context.Context, tenantID, shiftID uuid.UUID) (domainsales.ShiftCashTotals, error) {
	args := m.Called(ctx, tenantID, shiftID)
	return args.Get(0).(domainsales.ShiftCashTotals), args.Error(1)
}

func (m *MockSaleRepository) NextFolio(ctx context.Context, tenantID, storeID uuid.UUID, businessDay string) (int64, error) {
	args := m.Called(ctx, tenantID, storeID, businessDay)
	return args.Get(0).(int64), args.Error(1)
}

// MockEntryRepository is a mock implementation of ledger.EntryRepository
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Append(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) LastEntry(ctx context.Context, tenantID, storeID uuid.UUID, itemType catalog.ItemType, itemID uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, tenantID, storeID, itemType, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockEntryRepository) ListForItem(ctx context.Context, tenantID, storeID uuid.UUID, itemType catalog.ItemType, itemID uuid.UUID, filter shared.Filter) ([]ledger.Entry, int64, error) {
	args := m.Called(ctx, tenantID, storeID, itemType, itemID, filter)
	return args.Get(0).([]ledger.Entry), args.Get(1).(int64), args.Error(2)
}

func (m *MockEntryRepository) FindByReference(ctx context.Context, tenantID, referenceID uuid.UUID) ([]ledger.Entry, error) {
	args := m.Called(ctx, tenantID, referenceID)
	return args.Get(0).([]ledger.Entry), args.Error(1)
}

func (m *MockEntryRepository) FindByClientOperationID(ctx context.Context, tenantID uuid.UUID, clientOperationID string) (*ledger.Entry, error) {
	args := m.Called(ctx, tenantID, clientOperationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

// MockShiftRepository is a mock implementation of shift.Repository
type MockShiftRepository struct {
	mock.Mock
}

func (m *MockShiftRepository) Save(ctx context.Context, sh *shift.Shift) error {
	args := m.Called(ctx, sh)
	return args.Error(0)
}

func (m *MockShiftRepository) Update(ctx context.Context, sh *shift.Shift) error {
	args := m.Called(ctx, sh)
	return args.Error(0)
}

func (m *MockShiftRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*shift.Shift, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shift.Shift), args.Error(1)
}

func (m *MockShiftRepository) FindOpenByCashier(ctx context.Context, tenantID, storeID, cashierID uuid.UUID) (*shift.Shift, error) {
	args := m.Called(ctx, tenantID, storeID, cashierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shift.Shift), args.Error(1)
}

func (m *MockShiftRepository) FindByOpenOperationID(ctx context.Context, tenantID uuid.UUID, clientOperationID string) (*shift.Shift, error) {
	args := m.Called(ctx, tenantID, clientOperationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shift.Shift), args.Error(1)
}

func (m *MockShiftRepository) FindByCloseOperationID(ctx context.Context, tenantID uuid.UUID, clientOperationID string) (*shift.Shift, error) {
	args := m.Called(ctx, tenantID, clientOperationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shift.Shift), args.Error(1)
}

func (m *MockShiftRepository) FindAllForStore(ctx context.Context, tenantID, storeID uuid.UUID, filter shared.Filter) ([]shift.Shift, int64, error) {
	args := m.Called(ctx, tenantID, storeID, filter)
	return args.Get(0).([]shift.Shift), args.Get(1).(int64), args.Error(2)
}

// MockCatalogResolver is a mock implementation of CatalogResolver
type MockCatalogResolver struct {
	mock.Mock
}

func (m *MockCatalogResolver) ComputeEffectiveCatalog(ctx context.Context, tenantID, storeID uuid.UUID) (*catalog.EffectiveCatalog, error) {
	args := m.Called(ctx, tenantID, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.EffectiveCatalog), args.Error(1)
}

// coffeeFixture holds the ids of a snapshot with one configurable latte,
// one milk selection group, and one extra espresso shot.
type coffeeFixture struct {
	tenantID  uuid.UUID
	storeID   uuid.UUID
	cashierID uuid.UUID
	latteID   uuid.UUID
	schemaID  uuid.UUID
	milkSetID uuid.UUID
	wholeID   uuid.UUID
	oatID     uuid.UUID
	shotID    uuid.UUID
	snapshot  *catalog.EffectiveCatalog
}

func sellable() catalog.Availability {
	return catalog.Availability{Offered: true, Sellable: true}
}

func newCoffeeFixture() *coffeeFixture {
	f := &coffeeFixture{
		tenantID:  uuid.New(),
		storeID:   uuid.New(),
		cashierID: uuid.New(),
		latteID:   uuid.New(),
		schemaID:  uuid.New(),
		milkSetID: uuid.New(),
		wholeID:   uuid.New(),
		oatID:     uuid.New(),
		shotID:    uuid.New(),
	}

	latte := catalog.Product{
		BaseEntity:         shared.NewBaseEntity(),
		Name:               "Latte",
		BasePrice:          decimal.RequireFromString("45.00"),
		IsActive:           true,
		IsInventoryTracked: true,
		SchemaID:           &f.schemaID,
	}
	latte.ID = f.latteID

	schema := catalog.SelectionSchema{
		BaseEntity: shared.NewBaseEntity(),
		Name:       "Coffee options",
	}
	schema.ID = f.schemaID
	milkGroup := catalog.SelectionGroup{
		BaseEntity:    shared.NewBaseEntity(),
		SchemaID:      f.schemaID,
		GroupKey:      "milk",
		OptionSetID:   f.milkSetID,
		MinSelections: 1,
		MaxSelections: 1,
	}
	schema.Groups = []catalog.SelectionGroup{milkGroup}

	whole := catalog.OptionItem{BaseEntity: shared.NewBaseEntity(), OptionSetID: f.milkSetID, Name: "Whole milk", IsActive: true}
	whole.ID = f.wholeID
	oat := catalog.OptionItem{BaseEntity: shared.NewBaseEntity(), OptionSetID: f.milkSetID, Name: "Oat milk", IsActive: true}
	oat.ID = f.oatID

	shot := catalog.Extra{
		BaseEntity:         shared.NewBaseEntity(),
		Name:               "Espresso shot",
		UnitPrice:          decimal.RequireFromString("8.00"),
		IsActive:           true,
		IsInventoryTracked: false,
	}
	shot.ID = f.shotID

	f.snapshot = &catalog.EffectiveCatalog{
		TenantID: f.tenantID,
		StoreID:  f.storeID,
		Products: []catalog.ResolvedProduct{
			{Product: latte, Availability: sellable()},
		},
		Extras: []catalog.ResolvedExtra{
			{Extra: shot, Availability: sellable()},
		},
		OptionItems: []catalog.ResolvedOptionItem{
			{OptionItem: whole, Availability: sellable()},
			{OptionItem: oat, Availability: sellable()},
		},
		Schemas:      []catalog.SelectionSchema{schema},
		VersionStamp: "test-stamp",
		GeneratedAt:  time.Now(),
	}
	f.snapshot.BuildIndexes()
	return f
}

// latteRequest is two lattes with oat milk and one extra shot each,
// paid 106.00 in cash: (45.00 + 8.00) * 2
func (f *coffeeFixture) latteRequest() CreateSaleRequest {
	return CreateSaleRequest{
		ClientSaleID: "pos-7-000123",
		StoreID:      f.storeID,
		Items: []SaleItemInput{
			{
				ProductID: f.latteID,
				Quantity:  2,
				Selections: []SelectionInput{
					{GroupKey: "milk", OptionItemID: f.oatID},
				},
				Extras: []ExtraInput{
					{ExtraID: f.shotID, Quantity: 1},
				},
			},
		},
		Payments: []SalePaymentInput{
			{Method: "CASH", Amount: decimal.RequireFromString("106.00")},
		},
	}
}

// MockIdentityRepository is a mock implementation of identity.Repository
type MockIdentityRepository struct {
	mock.Mock
}

func (m *MockIdentityRepository) FindTenantByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockIdentityRepository) FindStoreByID(ctx context.Context, id uuid.UUID) (*identity.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Store), args.Error(1)
}

type saleHarness struct {
	fixture      *coffeeFixture
	saleRepo     *MockSaleRepository
	entryRepo    *MockEntryRepository
	shiftRepo    *MockShiftRepository
	resolver     *MockCatalogResolver
	identityRepo *MockIdentityRepository
	service      *Service
}

func newSaleHarness(t *testing.T, cfg Config) *saleHarness {
	return newSaleHarnessInTimezone(t, cfg, "UTC")
}

func newSaleHarnessInTimezone(t *testing.T, cfg Config, timezone string) *saleHarness {
	t.Helper()
	h := &saleHarness{
		fixture:      newCoffeeFixture(),
		saleRepo:     new(MockSaleRepository),
		entryRepo:    new(MockEntryRepository),
		shiftRepo:    new(MockShiftRepository),
		resolver:     new(MockCatalogResolver),
		identityRepo: new(MockIdentityRepository),
	}
	h.identityRepo.On("FindTenantByID", mock.Anything, h.fixture.tenantID).Return(&identity.Tenant{
		Code:     "tenant-1",
		Name:     "Tenant One",
		Timezone: timezone,
	}, nil).Maybe()
	scope := NewNoOpTransactionScope(h.saleRepo, h.entryRepo, h.shiftRepo)
	h.service = NewService(scope, h.saleRepo, h.resolver, h.identityRepo, cfg, nil)
	return h
}

func openShiftFor(t *testing.T, f *coffeeFixture) *shift.Shift {
	t.Helper()
	sh, err := shift.NewShift(f.tenantID, f.storeID, f.cashierID, decimal.RequireFromString("100.00"), "", "open-op-1")
	require.NoError(t, err)
	return sh
}

func TestCreateSale(t *testing.T) {
	t.Run("records a configured sale with frozen prices", func(t *testing.T) {
		h := newSaleHarness(t, Config{RequireOpenShift: true, EnforceNonNegativeStock: false})
		f := h.fixture
		req := f.latteRequest()

		h.saleRepo.On("FindByClientSaleID", mock.Anything, f.tenantID, f.storeID, req.ClientSaleID).Return(nil, nil).Once()
		h.resolver.On("ComputeEffectiveCatalog", mock.Anything, f.tenantID, f.storeID).Return(f.snapshot, nil)
		h.shiftRepo.On("FindOpenByCashier", mock.Anything, f.tenantID, f.storeID, f.cashierID).Return(openShiftFor(t, f), nil)
		h.saleRepo.On("NextFolio", mock.Anything, f.tenantID, f.storeID, mock.AnythingOfType("string")).Return(int64(42), nil)

		var saved *domainsales.Sale
		h.saleRepo.On("Save", mock.Anything, mock.AnythingOfType("*sales.Sale")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*domainsales.Sale) }).
			Return(nil)

		// only the tracked latte consumes stock; the shot is untracked
		h.entryRepo.On("LastEntry", mock.Anything, f.tenantID, f.storeID, catalog.ItemTypeProduct, f.latteID).Return(nil, nil)
		h.entryRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *ledger.Entry) bool {
			return e.ItemID == f.latteID &&
				e.Seq == 1 &&
				e.Delta.Equal(decimal.NewFromInt(-2)) &&
				e.QtyAfter.Equal(decimal.NewFromInt(-2)) &&
				e.MovementKind == ledger.MovementKindSaleConsumption
		})).Return(nil)

		resp, err := h.service.Create(context.Background(), f.tenantID, f.cashierID, req)
		require.NoError(t, err)

		assert.Equal(t, int64(42), resp.Folio)
		assert.Equal(t, "COMPLETED", resp.Status)
		assert.True(t, resp.Total.Equal(decimal.RequireFromString("106.00")), "total was %s", resp.Total)

		require.NotNil(t, saved)
		require.Len(t, saved.Items, 1)
		assert.True(t, saved.Items[0].UnitBasePrice.Equal(decimal.RequireFromString("45.00")))
		assert.True(t, saved.Items[0].LineTotal.Equal(decimal.RequireFromString("106.00")))
		require.Len(t, saved.Items[0].Selections, 1)
		assert.Equal(t, "Oat milk", saved.Items[0].Selections[0].OptionItemName)
		require.NotNil(t, saved.ShiftID)

		h.saleRepo.AssertExpectations(t)
		h.entryRepo.AssertExpectations(t)
	})

	t.Run("business day follows the tenant timezone", func(t *testing.T) {
		h := newSaleHarnessInTimezone(t, Config{}, "America/Mexico_City")
		f := h.fixture
		req := f.latteRequest()
		// 03:00 UTC is still the previous evening in Mexico City.
		occurred := time.Date(2025, 6, 8, 3, 0, 0, 0, time.UTC)
		req.OccurredAt = &occurred

		h.saleRepo.On("FindByClientSaleID", mock.Anything, f.tenantID, f.storeID, req.ClientSaleID).Return(nil, nil).Once()
		h.resolver.On("ComputeEffectiveCatalog", mock.Anything, f.tenantID, f.storeID).Return(f.snapshot, nil)
		h.saleRepo.On("NextFolio", mock.Anything, f.tenantID, f.storeID, "2025-06-07").Return(int64(1), nil)
		h.saleRepo.On("Save", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)
		h.entryRepo.On("LastEntry", mock.Anything, f.tenantID, f.storeID, catalog.ItemTypeProduct, f.latteID).Return(nil, nil)
		h.entryRepo.On("Append", mock.Anything, mock.AnythingOfType("*ledger.Entry")).Return(nil)

		resp, err := h.service.Create(context.Background(), f.tenantID, f.cashierID, req)
		require.NoError(t, err)
		assert.Equal(t, "2025-06-07", resp.BusinessDay)
		h.saleRepo.AssertExpectations(t)
	})

	t.Run("resubmitting the same request returns the original sale", func(t *testing.T) {
		h := newSaleHarness(t, Config{})
		f := h.fixture
		req := f.latteRequest()

		original, err := domainsales.NewSale(f.tenantID, f.storeID, f.cashierID, req.ClientSaleID, time.Now())
		require.NoError(t, err)
		original.RequestFingerprint = RequestFingerprint(req)
		original.AssignFolio(42)
		original.Complete()

		h.saleRepo.On("FindByClientSaleID", mock.Anything, f.tenantID, f.storeID, req.ClientSaleID).Return(original, nil)

		resp, err := h.service.Create(context.Background(), f.tenantID, f.cashierID, req)
		require.NoError(t, err)
		assert.Equal(t, original.ID, resp.SaleID)
		assert.Equal(t, int64(42), resp.Folio)
		h.resolver.AssertNotCalled(t, "ComputeEffectiveCatalog", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("same client sale id with a different cart is a conflict", func(t *testing.T) {
		h := newSaleHarness(t, Config{})
		f := h.fixture
		req := f.latteRequest()

		other := req
		other.Payments = []SalePaymentInput{{Method: "CARD", Amount: decimal.RequireFromString("106.00")}}

		original, err := domainsales.NewSale(f.tenantID, f.storeID, f.cashierID, req.ClientSaleID, time.Now())
		require.NoError(t, err)
		original.RequestFingerprint = RequestFingerprint(req)

		h.saleRepo.On("FindByClientSaleID", mock.Anything, f.tenantID, f.storeID, req.ClientSaleID).Return(original, nil)

		_, err = h.service.Create(context.Background(), f.tenantID, f.cashierID, other)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONFLICT", domainErr.Code)
	})

	t.Run("payment order does not change the fingerprint", func(t *testing.T) {
		f := newCoffeeFixture()
		req := f.latteRequest()
		req.Payments = []SalePaymentInput{
			{Method: "CASH", Amount: decimal.RequireFromString("56.00")},
			{Method: "CARD", Amount: decimal.RequireFromString("50.00")},
		}
		flipped := req
		flipped.Payments = []SalePaymentInput{
			{Method: "CARD", Amount: decimal.RequireFromString("50.00")},
			{Method: "CASH", Amount: decimal.RequireFromString("56.00")},
		}
		assert.Equal(t, RequestFingerprint(req), RequestFingerprint(flipped))
	})

	t.Run("fails without an open shift when one is required", func(t *testing.T) {
		h := newSaleHarness(t, Config{RequireOpenShift: true})
		f := h.fixture
		req := f.latteRequest()

		h.saleRepo.On("FindByClientSaleID", mock.Anything, f.tenantID, f.storeID, req.ClientSaleID).Return(nil, nil)
		h.resolver.On("ComputeEffectiveCatalog", mock.Anything, f.tenantID, f.storeID).Return(f.snapshot, nil)
		h.shiftRepo.On("FindOpenByCashier", mock.Anything, f.tenantID, f.storeID, f.cashierID).Return(nil, nil)

		_, err := h.service.Create(context.Background(), f.tenantID, f.cashierID, req)
		assert.ErrorIs(t, err, shared.ErrNoOpenShift)
		h.saleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects a missing required selection", func(t *testing.T) {
		h := newSaleHarness(t, Config{})
		f := h.fixture
		req := f.latteRequest()
		req.Items[0].Selections = nil

		h.saleRepo.On("FindByClientSaleID", mock.Anything, f.tenantID, f.storeID, req.ClientSaleID).Return(nil, nil)
		h.resolver.On("ComputeEffectiveCatalog", mock.Anything, f.tenantID, f.storeID).Return(f.snapshot, nil)

		_, err := h.service.Create(context.Background(), f.tenantID, f.cashierID, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "SELECTION_COUNT_OUT_OF_BOUNDS", domainErr.Code)
	})

	t.Run("rejects an option outside the group's option set", func(t *testing.T) {
		h := newSaleHarness(t, Config{})
		f := h.fixture

		stray := catalog.OptionItem{BaseEntity: shared.NewBaseEntity(), OptionSetID: uuid.New(), Name: "Caramel", IsActive: true}
		f.snapshot.OptionItems = append(f.snapshot.OptionItems, catalog.ResolvedOptionItem{OptionItem: stray, Availability: sellable()})
		f.snapshot.BuildIndexes()

		req := f.latteRequest()
		req.Items[0].Selections = []SelectionInput{{GroupKey: "milk", OptionItemID: stray.ID}}

		h.saleRepo.On("FindByClientSaleID", mock.Anything, f.tenantID, f.storeID, req.ClientSaleID).Return(nil, nil)
		h.resolver.On("ComputeEffectiveCatalog", mock.Anything, f.tenantID, f.storeID).Return(f.snapshot, nil)

		_, err := h.service.Create(context.Background(), f.tenantID, f.cashierID, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTION_OUTSIDE_SET", domainErr.Code)
	})

	t.Run("rejects an option excluded by the product allow-list", func(t *testing.T) {
		h := newSaleHarness(t, Config{})
		f := h.fixture

		f.snapshot.Products[0].AllowedOptions = map[string][]uuid.UUID{
			"milk": {f.wholeID},
		}
		f.snapshot.BuildIndexes()

		req := f.latteRequest() // picks oat milk

		h.saleRepo.On("FindByClientSaleID", mock.Anything, f.tenantID, f.storeID, req.ClientSaleID).Return(nil, nil)
		h.resolver.On("ComputeEffectiveCatalog", mock.Anything, f.tenantID, f.storeID).Return(f.snapshot, nil)

		_, err := h.service.Create(context.Background(), f.tenantID, f.cashierID, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTION_NOT_ALLOWED", domainErr.Code)
	})

	t.Run("rejects a product the store has disabled", func(t *testing.T) {
		h := newSaleHarness(t, Config{})
		f := h.fixture

		f.snapshot.Products[0].Availability = catalog.Availability{Offered: true, Sellable: false}
		f.snapshot.BuildIndexes()

		req := f.latteRequest()

		h.saleRepo.On("FindByClientSaleID", mock.Anything, f.tenantID, f.storeID, req.ClientSaleID).Return(nil, nil)
		h.resolver.On("ComputeEffectiveCatalog", mock.Anything, f.tenantID, f.storeID).Return(f.snapshot, nil)

		_, err := h.service.Create(context.Background(), f.tenantID, f.cashierID, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_NOT_AVAILABLE", domainErr.Code)
	})

	t.Run("rejects payments that do not cover the total", func(t *testing.T) {
		h := newSaleHarness(t, Config{})
		f := h.fixture
		req := f.latteRequest()
		req.Payments[0].Amount = decimal.RequireFromString("100.00")

		h.saleRepo.On("FindByClientSaleID", mock.Anything, f.tenantID, f.storeID, req.ClientSaleID).Return(nil, nil)
		h.resolver.On("ComputeEffectiveCatalog", mock.Anything, f.tenantID, f.storeID).Return(f.snapshot, nil)

		_, err := h.service.Create(context.Background(), f.tenantID, f.cashierID, req)
		assert.ErrorIs(t, err, shared.ErrPaymentMismatch)
		h.saleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("blocks the sale when stock would go negative", func(t *testing.T) {
		h := newSaleHarness(t, Config{EnforceNonNegativeStock: true})
		f := h.fixture
		req := f.latteRequest()

		h.saleRepo.On("FindByClientSaleID", mock.Anything, f.tenantID, f.storeID, req.ClientSaleID).Return(nil, nil).Once()
		h.resolver.On("ComputeEffectiveCatalog", mock.Anything, f.tenantID, f.storeID).Return(f.snapshot, nil)
		h.saleRepo.On("NextFolio", mock.Anything, f.tenantID, f.storeID, mock.AnythingOfType("string")).Return(int64(1), nil)
		h.saleRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		prior, err := ledger.NewEntry(f.tenantID, f.storeID, catalog.ItemTypeProduct, f.latteID, 1, decimal.Zero, decimal.NewFromInt(1), ledger.MovementKindInitialStock, "seed")
		require.NoError(t, err)
		h.entryRepo.On("LastEntry", mock.Anything, f.tenantID, f.storeID, catalog.ItemTypeProduct, f.latteID).Return(prior, nil)

		_, err = h.service.Create(context.Background(), f.tenantID, f.cashierID, req)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("converges on the winner after losing the insert race", func(t *testing.T) {
		h := newSaleHarness(t, Config{})
		f := h.fixture
		req := f.latteRequest()

		winner, err := domainsales.NewSale(f.tenantID, f.storeID, f.cashierID, req.ClientSaleID, time.Now())
		require.NoError(t, err)
		winner.RequestFingerprint = RequestFingerprint(req)
		winner.AssignFolio(7)
		winner.Complete()

		h.saleRepo.On("FindByClientSaleID", mock.Anything, f.tenantID, f.storeID, req.ClientSaleID).Return(nil, nil).Once()
		h.resolver.On("ComputeEffectiveCatalog", mock.Anything, f.tenantID, f.storeID).Return(f.snapshot, nil)
		h.saleRepo.On("NextFolio", mock.Anything, f.tenantID, f.storeID, mock.AnythingOfType("string")).Return(int64(8), nil)
		h.saleRepo.On("Save", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)
		h.saleRepo.On("FindByClientSaleID", mock.Anything, f.tenantID, f.storeID, req.ClientSaleID).Return(winner, nil).Once()

		resp, err := h.service.Create(context.Background(), f.tenantID, f.cashierID, req)
		require.NoError(t, err)
		assert.Equal(t, winner.ID, resp.SaleID)
		assert.Equal(t, int64(7), resp.Folio)
	})
}

func completedSale(t *testing.T, f *coffeeFixture) *domainsales.Sale {
	t.Helper()
	sale, err := domainsales.NewSale(f.tenantID, f.storeID, f.cashierID, "pos-7-000123", time.Now())
	require.NoError(t, err)
	item, err := domainsales.NewSaleItem(f.latteID, "Latte", decimal.RequireFromString("45.00"), 2, true)
	require.NoError(t, err)
	sale.AddItem(item)
	require.NoError(t, sale.AttachPayments([]domainsales.Payment{
		{Method: domainsales.PaymentMethodCash, Amount: decimal.RequireFromString("90.00")},
	}))
	sale.AssignFolio(42)
	sale.Complete()
	return sale
}

func TestVoidSale(t *testing.T) {
	voidReq := VoidSaleRequest{ReasonCode: "CUSTOMER_CHANGED_MIND", ClientVoidID: "void-op-1"}

	t.Run("voids a completed sale and reverses consumption", func(t *testing.T) {
		h := newSaleHarness(t, Config{})
		f := h.fixture
		sale := completedSale(t, f)

		h.saleRepo.On("FindByClientVoidID", mock.Anything, f.tenantID, voidReq.ClientVoidID).Return(nil, nil)
		h.saleRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, sale.ID).Return(sale, nil)
		h.saleRepo.On("Update", mock.Anything, sale).Return(nil)

		prior, err := ledger.NewEntry(f.tenantID, f.storeID, catalog.ItemTypeProduct, f.latteID, 1, decimal.Zero, decimal.NewFromInt(-2), ledger.MovementKindSaleConsumption, "sale pos-7-000123")
		require.NoError(t, err)
		h.entryRepo.On("LastEntry", mock.Anything, f.tenantID, f.storeID, catalog.ItemTypeProduct, f.latteID).Return(prior, nil)
		h.entryRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *ledger.Entry) bool {
			return e.ItemID == f.latteID &&
				e.Seq == 2 &&
				e.Delta.Equal(decimal.NewFromInt(2)) &&
				e.QtyAfter.Equal(decimal.Zero) &&
				e.MovementKind == ledger.MovementKindVoidReversal
		})).Return(nil)

		resp, err := h.service.Void(context.Background(), f.tenantID, sale.ID, voidReq)
		require.NoError(t, err)
		assert.Equal(t, "VOID", resp.Status)
		require.NotNil(t, resp.VoidedAt)
		h.entryRepo.AssertExpectations(t)
	})

	t.Run("repeating a void with the same operation id is idempotent", func(t *testing.T) {
		h := newSaleHarness(t, Config{})
		f := h.fixture
		sale := completedSale(t, f)
		require.NoError(t, sale.Void(voidReq.ReasonCode, nil, nil, voidReq.ClientVoidID))

		h.saleRepo.On("FindByClientVoidID", mock.Anything, f.tenantID, voidReq.ClientVoidID).Return(sale, nil)

		resp, err := h.service.Void(context.Background(), f.tenantID, sale.ID, voidReq)
		require.NoError(t, err)
		assert.Equal(t, "VOID", resp.Status)
		h.saleRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("voiding an already voided sale with a new operation id conflicts", func(t *testing.T) {
		h := newSaleHarness(t, Config{})
		f := h.fixture
		sale := completedSale(t, f)
		require.NoError(t, sale.Void("OTHER_REASON", nil, nil, "void-op-0"))

		h.saleRepo.On("FindByClientVoidID", mock.Anything, f.tenantID, voidReq.ClientVoidID).Return(nil, nil)
		h.saleRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, sale.ID).Return(sale, nil)

		_, err := h.service.Void(context.Background(), f.tenantID, sale.ID, voidReq)
		assert.ErrorIs(t, err, shared.ErrConflict)
	})
}
