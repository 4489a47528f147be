package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	shiftapp "github.com/pos/backend/internal/application/shift"
	"github.com/pos/backend/internal/domain/shared"
)

// ShiftService opens and closes cash shifts
type ShiftService interface {
	Open(ctx context.Context, tenantID, cashierID uuid.UUID, req shiftapp.OpenShiftRequest) (*shiftapp.ShiftResponse, error)
	Close(ctx context.Context, tenantID, shiftID uuid.UUID, req shiftapp.CloseShiftRequest) (*shiftapp.ShiftResponse, error)
	ClosePreview(ctx context.Context, tenantID, shiftID uuid.UUID) (*shiftapp.ClosePreviewResponse, error)
	GetByID(ctx context.Context, tenantID, shiftID uuid.UUID) (*shiftapp.ShiftResponse, error)
	CurrentForCashier(ctx context.Context, tenantID, storeID, cashierID uuid.UUID) (*shiftapp.ShiftResponse, error)
	ListForStore(ctx context.Context, tenantID, storeID uuid.UUID, filter shared.Filter) ([]shiftapp.ShiftResponse, int64, error)
}

// ShiftHandler handles cash shift API endpoints
type ShiftHandler struct {
	BaseHandler
	service ShiftService
}

// NewShiftHandler creates a new ShiftHandler
func NewShiftHandler(service ShiftService) *ShiftHandler {
	return &ShiftHandler{service: service}
}

// RegisterRoutes registers shift routes
func (h *ShiftHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/shifts")
	group.POST("", h.Open)
	group.GET("", h.List)
	group.GET("/current", h.Current)
	group.GET("/:id", h.GetByID)
	group.GET("/:id/close-preview", h.ClosePreview)
	group.POST("/:id/close", h.Close)
}

// Open opens a shift for the acting cashier. Repeating the same
// client_operation_id returns the already opened shift.
func (h *ShiftHandler) Open(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	var req shiftapp.OpenShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Open(c.Request.Context(), principal.TenantID, principal.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Close closes a shift with the counted drawer denominations
func (h *ShiftHandler) Close(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}
	shiftID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req shiftapp.CloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Close(c.Request.Context(), principal.TenantID, shiftID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ClosePreview returns the expected cash reconciliation for an open shift
func (h *ShiftHandler) ClosePreview(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}
	shiftID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.ClosePreview(c.Request.Context(), principal.TenantID, shiftID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Current returns the caller's open shift at a store
func (h *ShiftHandler) Current(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	var storeID uuid.UUID
	if principal.StoreID != nil {
		storeID = *principal.StoreID
	} else {
		var okStore bool
		storeID, okStore = h.queryUUID(c, "store_id")
		if !okStore {
			return
		}
	}

	resp, err := h.service.CurrentForCashier(c.Request.Context(), principal.TenantID, storeID, principal.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByID returns one shift
func (h *ShiftHandler) GetByID(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}
	shiftID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), principal.TenantID, shiftID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns the shifts of a store, optionally narrowed by status or cashier
func (h *ShiftHandler) List(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}
	storeID, ok := h.queryUUID(c, "store_id")
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if cashierID := c.Query("cashier_id"); cashierID != "" {
		id, err := uuid.Parse(cashierID)
		if err != nil {
			h.BadRequest(c, "Invalid query parameter cashier_id")
			return
		}
		filter.Filters["cashier_id"] = id
	}

	items, total, err := h.service.ListForStore(c.Request.Context(), principal.TenantID, storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}
