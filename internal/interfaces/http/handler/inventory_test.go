package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	ledgerapp "github.com/pos/backend/internal/application/ledger"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) Adjust(ctx context.Context, tenantID, operatorID uuid.UUID, req ledgerapp.AdjustmentRequest) (*ledgerapp.EntryResponse, error) {
	args := m.Called(ctx, tenantID, operatorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.EntryResponse), args.Error(1)
}

func (m *MockInventoryService) CurrentQuantity(ctx context.Context, tenantID, storeID uuid.UUID, itemType catalog.ItemType, itemID uuid.UUID) (*ledgerapp.QuantityResponse, error) {
	args := m.Called(ctx, tenantID, storeID, itemType, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.QuantityResponse), args.Error(1)
}

func (m *MockInventoryService) History(ctx context.Context, tenantID, storeID uuid.UUID, itemType catalog.ItemType, itemID uuid.UUID, filter shared.Filter) ([]ledgerapp.EntryResponse, int64, error) {
	args := m.Called(ctx, tenantID, storeID, itemType, itemID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]ledgerapp.EntryResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockInventoryService) EntriesForReference(ctx context.Context, tenantID, referenceID uuid.UUID) ([]ledgerapp.EntryResponse, error) {
	args := m.Called(ctx, tenantID, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledgerapp.EntryResponse), args.Error(1)
}

func TestInventoryHandler_Adjust(t *testing.T) {
	storeID := uuid.New()
	itemID := uuid.New()
	body := map[string]any{
		"store_id":            storeID.String(),
		"item_type":           "product",
		"item_id":             itemID.String(),
		"quantity_delta":      "-3",
		"reason":              "spoilage",
		"client_operation_id": "pos-7-adj-001",
	}

	t.Run("records an adjustment and uppercases the item type", func(t *testing.T) {
		service := new(MockInventoryService)
		service.On("Adjust", mock.Anything, testPrincipal.TenantID, testPrincipal.UserID,
			mock.MatchedBy(func(req ledgerapp.AdjustmentRequest) bool {
				return req.ItemType == catalog.ItemTypeProduct && req.Reason == "spoilage"
			})).
			Return(&ledgerapp.EntryResponse{
				ID:       uuid.New(),
				StoreID:  storeID,
				ItemType: catalog.ItemTypeProduct,
				ItemID:   itemID,
				Seq:      4,
				Delta:    decimal.RequireFromString("-3"),
			}, nil)

		engine := newTestRouter(testPrincipal, NewInventoryHandler(service))
		w := doJSON(t, engine, http.MethodPost, "/api/v1/inventory/adjustments", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, float64(4), data["seq"])
	})

	t.Run("option items are rejected", func(t *testing.T) {
		service := new(MockInventoryService)
		service.On("Adjust", mock.Anything, testPrincipal.TenantID, testPrincipal.UserID, mock.Anything).
			Return(nil, shared.NewDomainError("ITEM_NOT_TRACKABLE", "Option items do not carry inventory"))

		optionBody := map[string]any{}
		for k, v := range body {
			optionBody[k] = v
		}
		optionBody["item_type"] = "option_item"

		engine := newTestRouter(testPrincipal, NewInventoryHandler(service))
		w := doJSON(t, engine, http.MethodPost, "/api/v1/inventory/adjustments", optionBody)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "ITEM_NOT_TRACKABLE", resp.Error.Code)
	})

	t.Run("negative result under enforcement maps to 422", func(t *testing.T) {
		service := new(MockInventoryService)
		service.On("Adjust", mock.Anything, testPrincipal.TenantID, testPrincipal.UserID, mock.Anything).
			Return(nil, shared.ErrInsufficientStock)

		engine := newTestRouter(testPrincipal, NewInventoryHandler(service))
		w := doJSON(t, engine, http.MethodPost, "/api/v1/inventory/adjustments", body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "INSUFFICIENT_STOCK", resp.Error.Code)
	})
}

func TestInventoryHandler_GetQuantity(t *testing.T) {
	storeID := uuid.New()
	itemID := uuid.New()

	t.Run("returns the projection", func(t *testing.T) {
		service := new(MockInventoryService)
		service.On("CurrentQuantity", mock.Anything, testPrincipal.TenantID, storeID, catalog.ItemTypeProduct, itemID).
			Return(&ledgerapp.QuantityResponse{
				StoreID:  storeID,
				ItemType: catalog.ItemTypeProduct,
				ItemID:   itemID,
				Quantity: decimal.RequireFromString("12"),
			}, nil)

		engine := newTestRouter(storePrincipal(storeID), NewInventoryHandler(service))
		w := doJSON(t, engine, http.MethodGet, "/api/v1/inventory/items/product/"+itemID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "12", data["quantity"])
	})

	t.Run("malformed item id is a bad request", func(t *testing.T) {
		service := new(MockInventoryService)

		engine := newTestRouter(storePrincipal(storeID), NewInventoryHandler(service))
		w := doJSON(t, engine, http.MethodGet, "/api/v1/inventory/items/product/nope", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInventoryHandler_ListEntries(t *testing.T) {
	storeID := uuid.New()
	itemID := uuid.New()

	t.Run("pages through one item's journal", func(t *testing.T) {
		service := new(MockInventoryService)
		service.On("History", mock.Anything, testPrincipal.TenantID, storeID, catalog.ItemTypeExtra, itemID, mock.Anything).
			Return([]ledgerapp.EntryResponse{{Seq: 2}, {Seq: 1}}, int64(2), nil)

		engine := newTestRouter(storePrincipal(storeID), NewInventoryHandler(service))
		w := doJSON(t, engine, http.MethodGet,
			"/api/v1/inventory/entries?item_type=extra&item_id="+itemID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(2), resp.Meta.Total)
	})

	t.Run("reference lookup ignores item parameters", func(t *testing.T) {
		referenceID := uuid.New()
		service := new(MockInventoryService)
		service.On("EntriesForReference", mock.Anything, testPrincipal.TenantID, referenceID).
			Return([]ledgerapp.EntryResponse{{Seq: 3}, {Seq: 3}}, nil)

		engine := newTestRouter(testPrincipal, NewInventoryHandler(service))
		w := doJSON(t, engine, http.MethodGet,
			"/api/v1/inventory/entries?reference_id="+referenceID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		service.AssertNotCalled(t, "History", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing item_type is a bad request", func(t *testing.T) {
		service := new(MockInventoryService)

		engine := newTestRouter(storePrincipal(storeID), NewInventoryHandler(service))
		w := doJSON(t, engine, http.MethodGet, "/api/v1/inventory/entries", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
