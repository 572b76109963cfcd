package doctor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/storefront/internal/core/config"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func itemByLabel(t *testing.T, result Result, label string) Item {
	t.Helper()
	for _, it := range result.Items {
		if it.Label == label {
			return it
		}
	}
	require.Failf(t, "item not found", "no item labelled %q in %+v", label, result.Items)
	return Item{}
}

func TestConfigCheck_Defaults(t *testing.T) {
	cfg := defaultConfig(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	result := NewConfigCheck(cfg, path).Run(context.Background())

	assert.Equal(t, "Configuration", result.Name)
	for _, it := range result.Items {
		assert.Equal(t, StatusPass, it.Status, it.Label)
	}
	assert.Contains(t, itemByLabel(t, result, "Config file").Detail, "not found, using defaults")
	assert.Equal(t, cfg.API.BaseURL, itemByLabel(t, result, "Backend").Detail)
	assert.Equal(t, "USD, totals look like $ 1234.50", itemByLabel(t, result, "Currency").Detail)
	assert.Equal(t, "/banned", itemByLabel(t, result, "Banned route").Detail)
}

func TestConfigCheck_CurrencyFormat(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Currency = "JPY"

	result := NewConfigCheck(cfg, "").Run(context.Background())

	assert.Equal(t, "JPY, totals look like ¥ 1235", itemByLabel(t, result, "Currency").Detail)
	assert.Equal(t, "none, using defaults", itemByLabel(t, result, "Config file").Detail)
}

func TestConfigCheck_InvalidSettings(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Currency = "XXQ"
	cfg.BannedRoute = "banned"
	cfg.API.BaseURL = "ftp://store.example.com"

	result := NewConfigCheck(cfg, "").Run(context.Background())

	assert.Equal(t, StatusFail, itemByLabel(t, result, "Currency").Status)
	assert.Equal(t, StatusFail, itemByLabel(t, result, "Banned route").Status)
	assert.Equal(t, StatusFail, itemByLabel(t, result, "Backend").Status)
	assert.Equal(t, StatusPass, itemByLabel(t, result, "Data directory").Status)

	report := Run(context.Background(), NewConfigCheck(cfg, ""))
	assert.Equal(t, 3, report.Summary.Failed)
}

func TestConfigCheck_Warnings(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.API.BaseURL = "http://store.example.com/api"

	result := NewConfigCheck(cfg, "").Run(context.Background())

	item := itemByLabel(t, result, "API (base_url)")
	assert.Equal(t, StatusWarn, item.Status)
	assert.Contains(t, item.Detail, "plain http")
}

func TestConfigCheck_NotLoaded(t *testing.T) {
	result := NewConfigCheck(nil, "").Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
}
