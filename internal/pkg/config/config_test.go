//go:build unit

package config_test

import (
	"os"
	"testing"

	"stay-ledger/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("必須項目とデフォルト値", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("JWT_SECRET", "s3cret")

		cfg, err := config.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, int64(250), cfg.Ledger.FeeRateBasisPoints)
		assert.Equal(t, config.StoreMemory, cfg.Ledger.Store)
		assert.Equal(t, "platform", cfg.Ledger.PlatformAccount)
		assert.Equal(t, "0 */5 * * * *", cfg.Sweeper.Schedule)
	})

	t.Run("PORT未設定はエラー", func(t *testing.T) {
		t.Setenv("PORT", "")
		require.NoError(t, os.Unsetenv("PORT"))
		t.Setenv("JWT_SECRET", "s3cret")
		_, err := config.LoadConfig()
		assert.Error(t, err)
	})

	t.Run("手数料率の範囲外はエラー", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("LEDGER_FEE_RATE_BPS", "10001")
		_, err := config.LoadConfig()
		assert.ErrorContains(t, err, "LEDGER_FEE_RATE_BPS")
	})

	t.Run("未知のストアはエラー", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("LEDGER_STORE", "redis")
		_, err := config.LoadConfig()
		assert.ErrorContains(t, err, "LEDGER_STORE")
	})
}
