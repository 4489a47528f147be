package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestRegisterDBTracing(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	t.Run("disabled is a no-op", func(t *testing.T) {
		cfg := DefaultDBTracingConfig()
		assert.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))
	})

	t.Run("enabled registers callbacks", func(t *testing.T) {
		cfg := DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: 50 * time.Millisecond,
		}
		require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))

		// Queries still work with the plugin installed
		var n int
		assert.NoError(t, db.Raw("SELECT 1").Scan(&n).Error)
		assert.Equal(t, 1, n)
	})
}
