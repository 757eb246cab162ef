package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
duckdice:
  enabled: true
  currency: XRP
  strategy: lossRecovery
  fake_betting: true
  offline_balance: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 100, cfg.Bot.RollIntervalMs)
	require.Equal(t, 10, cfg.Bot.HistorySize)
	require.Equal(t, 1000, cfg.Bot.MaxNonce)
	require.Equal(t, "https://duckdice.io", cfg.DuckDice.BaseURL)
	require.Equal(t, float64(1), cfg.DuckDice.BalanceModifier)
	require.NotEmpty(t, cfg.Log.Level)
	require.Equal(t, 100, cfg.Log.MaxSize)
}

func TestLoadExplicitValuesSurviveDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
log:
  level: debug
bot:
  roll_interval_ms: 250
  history_size: 5
  max_nonce: 500
duckdice:
  enabled: true
  currency: BTC
  strategy: autoTuningMartingale
  fake_betting: true
  offline_balance: 0.001
  balance_modifier: 0.5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 250, cfg.Bot.RollIntervalMs)
	require.Equal(t, 5, cfg.Bot.HistorySize)
	require.Equal(t, 500, cfg.Bot.MaxNonce)
	require.Equal(t, 0.5, cfg.DuckDice.BalanceModifier)
	require.Equal(t, "autoTuningMartingale", cfg.DuckDice.Strategy)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "duckdice": {
    "enabled": true,
    "currency": "DOGE",
    "strategy": "noOp",
    "fake_betting": true,
    "offline_balance": 3
  }
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "DOGE", cfg.DuckDice.Currency)
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
duckdice:
  enabled: true
  currency: XRP
  strategy: martingaleTurbo
  fake_betting: true
  offline_balance: 1
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "martingaleTurbo")
}

func TestLoadRejectsMissingCurrency(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
duckdice:
  enabled: true
  strategy: noOp
  fake_betting: true
  offline_balance: 1
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRequiresAPIKeyForRealBetting(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
duckdice:
  enabled: true
  currency: XRP
  strategy: noOp
  fake_betting: false
  offline_balance: 1
`)
	_, err := Load(path)
	require.Error(t, err)

	// 环境变量注入 API Key 后应通过
	t.Setenv("DUCKDICE_API_KEY", "k-123")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "k-123", cfg.DuckDice.APIKey)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", "whatever")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsDisabledSite(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
duckdice:
  enabled: false
  currency: XRP
  strategy: noOp
  fake_betting: true
  offline_balance: 1
`)
	_, err := Load(path)
	require.Error(t, err)
}
