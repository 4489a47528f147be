package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pos/backend/internal/infrastructure/auth"
	"github.com/pos/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-with-enough-length",
		AccessTokenExpiration: expiration,
		Issuer:                "pos-backend-test",
	})
}

func authEngine(jwtService *auth.JWTService) (*gin.Engine, *[]*auth.Principal) {
	seen := &[]*auth.Principal{}
	engine := gin.New()
	engine.Use(JWTAuthMiddleware(jwtService))
	engine.GET("/api/v1/shifts/current", func(c *gin.Context) {
		*seen = append(*seen, GetPrincipal(c))
		c.Status(http.StatusOK)
	})
	engine.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine, seen
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwtService := newTestJWTService(time.Hour)

	principal := auth.Principal{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Username: "cashier-1",
		Roles:    []string{"cashier"},
	}

	t.Run("valid token passes and exposes the principal", func(t *testing.T) {
		token, err := jwtService.GenerateToken(principal)
		require.NoError(t, err)

		engine, seen := authEngine(jwtService)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts/current", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, *seen, 1)
		got := (*seen)[0]
		require.NotNil(t, got)
		assert.Equal(t, principal.UserID, got.UserID)
		assert.Equal(t, principal.TenantID, got.TenantID)
		assert.Equal(t, "cashier-1", got.Username)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		engine, _ := authEngine(jwtService)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts/current", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		engine, _ := authEngine(jwtService)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts/current", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token is rejected with TOKEN_EXPIRED", func(t *testing.T) {
		expiredService := newTestJWTService(-time.Minute)
		token, err := expiredService.GenerateToken(principal)
		require.NoError(t, err)

		engine, _ := authEngine(expiredService)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts/current", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		otherService := auth.NewJWTService(config.JWTConfig{
			Secret:                "a-completely-different-secret-key",
			AccessTokenExpiration: time.Hour,
			Issuer:                "pos-backend-test",
		})
		token, err := otherService.GenerateToken(principal)
		require.NoError(t, err)

		engine, _ := authEngine(jwtService)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts/current", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("health path skips authentication", func(t *testing.T) {
		engine, _ := authEngine(jwtService)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetPrincipal_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetPrincipal(c))
}
