package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error {
	return p.err
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy database", func(t *testing.T) {
		h := NewSystemHandler(&stubPinger{}, "pos-backend", "1.0.0")
		engine := newTestRouter(nil, h)

		w := doJSON(t, engine, http.MethodGet, "/api/v1/health", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "ok", data["database"])
	})

	t.Run("unreachable database degrades to 503", func(t *testing.T) {
		h := NewSystemHandler(&stubPinger{err: errors.New("connection refused")}, "pos-backend", "1.0.0")
		engine := newTestRouter(nil, h)

		w := doJSON(t, engine, http.MethodGet, "/api/v1/health", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "degraded", data["status"])
		assert.Equal(t, "unreachable", data["database"])
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler(&stubPinger{}, "pos-backend", "1.0.0")
	engine := newTestRouter(nil, h)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/system/info", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "pos-backend", data["name"])
	assert.Equal(t, "1.0.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}
