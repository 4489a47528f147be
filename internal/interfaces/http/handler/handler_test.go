package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pos/backend/internal/infrastructure/auth"
	"github.com/pos/backend/internal/interfaces/http/dto"
	"github.com/pos/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testPrincipal is the cashier identity injected into handler tests
var testPrincipal = &auth.Principal{
	UserID:   uuid.MustParse("7c9e3d58-0000-4000-8000-000000000001"),
	TenantID: uuid.MustParse("7c9e3d58-0000-4000-8000-000000000002"),
	Username: "cashier-1",
	Roles:    []string{"cashier"},
}

// newTestRouter builds an engine with the principal pre-set, the way the JWT
// middleware would after verifying a token
func newTestRouter(principal *auth.Principal, registrars ...interface {
	RegisterRoutes(rg *gin.RouterGroup)
}) *gin.Engine {
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		if principal != nil {
			c.Set(middleware.PrincipalKey, principal)
		}
		c.Next()
	})
	api := engine.Group("/api/v1")
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func storePrincipal(storeID uuid.UUID) *auth.Principal {
	p := *testPrincipal
	p.StoreID = &storeID
	return &p
}
