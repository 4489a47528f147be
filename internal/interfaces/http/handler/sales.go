package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	salesapp "github.com/pos/backend/internal/application/sales"
	"github.com/pos/backend/internal/domain/shared"
)

// SaleService records and voids sales
type SaleService interface {
	Create(ctx context.Context, tenantID, cashierID uuid.UUID, req salesapp.CreateSaleRequest) (*salesapp.SaleResponse, error)
	Void(ctx context.Context, tenantID, saleID uuid.UUID, req salesapp.VoidSaleRequest) (*salesapp.SaleResponse, error)
	GetByID(ctx context.Context, tenantID, saleID uuid.UUID) (*salesapp.SaleDetailResponse, error)
	ListForStore(ctx context.Context, tenantID, storeID uuid.UUID, filter shared.Filter) ([]salesapp.SaleResponse, int64, error)
}

// SaleHandler handles sale recording API endpoints
type SaleHandler struct {
	BaseHandler
	service SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(service SaleService) *SaleHandler {
	return &SaleHandler{service: service}
}

// RegisterRoutes registers sale routes
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/sales")
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.GetByID)
	group.POST("/:id/void", h.Void)
}

// Create records a sale. Resubmitting the same client_sale_id with the same
// cart returns the originally recorded sale.
func (h *SaleHandler) Create(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	var req salesapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), principal.TenantID, principal.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Void flips a completed sale to Void and posts the reversal movements
func (h *SaleHandler) Void(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}
	saleID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req salesapp.VoidSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Void(c.Request.Context(), principal.TenantID, saleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByID returns a sale with its frozen lines and payments
func (h *SaleHandler) GetByID(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}
	saleID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), principal.TenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns the sales of a store, optionally narrowed by status, shift,
// or business day
func (h *SaleHandler) List(c *gin.Context) {
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
	if shiftID := c.Query("shift_id"); shiftID != "" {
		id, err := uuid.Parse(shiftID)
		if err != nil {
			h.BadRequest(c, "Invalid query parameter shift_id")
			return
		}
		filter.Filters["shift_id"] = id
	}
	if day := c.Query("business_day"); day != "" {
		filter.Filters["business_day"] = day
	}

	items, total, err := h.service.ListForStore(c.Request.Context(), principal.TenantID, storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}
