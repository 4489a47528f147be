package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/pos/backend/internal/application/ledger"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/shared"
)

// InventoryService reads and adjusts the stock movement journal
type InventoryService interface {
	Adjust(ctx context.Context, tenantID, operatorID uuid.UUID, req ledgerapp.AdjustmentRequest) (*ledgerapp.EntryResponse, error)
	CurrentQuantity(ctx context.Context, tenantID, storeID uuid.UUID, itemType catalog.ItemType, itemID uuid.UUID) (*ledgerapp.QuantityResponse, error)
	History(ctx context.Context, tenantID, storeID uuid.UUID, itemType catalog.ItemType, itemID uuid.UUID, filter shared.Filter) ([]ledgerapp.EntryResponse, int64, error)
	EntriesForReference(ctx context.Context, tenantID, referenceID uuid.UUID) ([]ledgerapp.EntryResponse, error)
}

// InventoryHandler handles inventory journal API endpoints
type InventoryHandler struct {
	BaseHandler
	service InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/inventory")
	group.POST("/adjustments", h.Adjust)
	group.GET("/items/:itemType/:itemId", h.GetQuantity)
	group.GET("/entries", h.ListEntries)
}

// Adjust appends one manual stock movement. Repeating the same
// client_operation_id returns the already recorded entry.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	var req ledgerapp.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.ItemType = catalog.ItemType(strings.ToUpper(string(req.ItemType)))

	resp, err := h.service.Adjust(c.Request.Context(), principal.TenantID, principal.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetQuantity returns the current on-hand projection for one tracked item
func (h *InventoryHandler) GetQuantity(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}
	itemType := catalog.ItemType(strings.ToUpper(c.Param("itemType")))
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}
	storeID, ok := h.resolveStoreID(c, principal.StoreID)
	if !ok {
		return
	}

	resp, err := h.service.CurrentQuantity(c.Request.Context(), principal.TenantID, storeID, itemType, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListEntries returns movement journal rows. With reference_id it returns
// every movement of a source document; otherwise it pages through one item's
// journal, newest first.
func (h *InventoryHandler) ListEntries(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	if referenceRaw := c.Query("reference_id"); referenceRaw != "" {
		referenceID, err := uuid.Parse(referenceRaw)
		if err != nil {
			h.BadRequest(c, "Invalid query parameter reference_id")
			return
		}
		entries, err := h.service.EntriesForReference(c.Request.Context(), principal.TenantID, referenceID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, entries)
		return
	}

	storeID, ok := h.resolveStoreID(c, principal.StoreID)
	if !ok {
		return
	}
	itemType := catalog.ItemType(strings.ToUpper(c.Query("item_type")))
	if !itemType.IsValid() {
		h.BadRequest(c, "Missing or invalid query parameter item_type")
		return
	}
	itemID, ok := h.queryUUID(c, "item_id")
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	entries, total, err := h.service.History(c.Request.Context(), principal.TenantID, storeID, itemType, itemID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// resolveStoreID prefers the store bound into the token, falling back to the
// store_id query parameter
func (h *InventoryHandler) resolveStoreID(c *gin.Context, tokenStore *uuid.UUID) (uuid.UUID, bool) {
	if tokenStore != nil {
		return *tokenStore, true
	}
	return h.queryUUID(c, "store_id")
}
