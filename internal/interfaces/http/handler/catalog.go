package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
)

// CatalogService resolves effective catalogs for a tenant+store pair
type CatalogService interface {
	CurrentVersionStamp(ctx context.Context, tenantID, storeID uuid.UUID) (string, error)
	ComputeEffectiveCatalog(ctx context.Context, tenantID, storeID uuid.UUID) (*catalog.EffectiveCatalog, error)
}

// CatalogHandler serves the availability-resolved catalog snapshot
type CatalogHandler struct {
	BaseHandler
	service CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/catalog")
	group.GET("/snapshot", h.GetSnapshot)
}

// GetSnapshot returns the effective catalog for the caller's store. The
// version stamp doubles as an ETag: a matching If-None-Match answers 304
// without resolving the full snapshot.
func (h *CatalogHandler) GetSnapshot(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	storeID, ok := h.resolveStoreID(c, principal.StoreID)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	stamp, err := h.service.CurrentVersionStamp(ctx, principal.TenantID, storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	etag := `"` + stamp + `"`
	if ifNoneMatchSatisfied(c.GetHeader("If-None-Match"), etag) {
		c.Header("ETag", etag)
		c.Status(http.StatusNotModified)
		return
	}

	snapshot, err := h.service.ComputeEffectiveCatalog(ctx, principal.TenantID, storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Mutations between the stamp read and the resolve can advance the
	// snapshot; the ETag must describe what was actually sent.
	c.Header("ETag", `"`+snapshot.VersionStamp+`"`)
	h.Success(c, snapshot)
}

// resolveStoreID prefers the store bound into the token, falling back to the
// store_id query parameter for back-office principals not tied to one store
func (h *CatalogHandler) resolveStoreID(c *gin.Context, tokenStore *uuid.UUID) (uuid.UUID, bool) {
	if tokenStore != nil {
		return *tokenStore, true
	}
	return h.queryUUID(c, "store_id")
}

func ifNoneMatchSatisfied(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}
