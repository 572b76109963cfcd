package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)

	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		names = append(names, fe.Field)
	}
	return names
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidate_InvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
		{"base url without scheme", func(c *Config) { c.API.BaseURL = "shop.example.com/api" }, "api.base_url"},
		{"base url ftp", func(c *Config) { c.API.BaseURL = "ftp://shop.example.com" }, "api.base_url"},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }, "api.timeout"},
		{"relative banned route", func(c *Config) { c.BannedRoute = "banned" }, "banned_route"},
		{"unknown currency", func(c *Config) { c.Currency = "XXQ" }, "currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			assert.Contains(t, fieldNames(t, err), tt.field)
		})
	}
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "notadir")
	require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

	cfg := validConfig(t)
	cfg.DataDir = tmpFile

	err := cfg.ValidateDeep("")
	assert.Contains(t, fieldNames(t, err), "data_dir")
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())
	assert.Contains(t, fieldNames(t, err), "config_file")
}

func TestValidateDeep_MissingConfigFileIsFine(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.ValidateDeep(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestWarnings(t *testing.T) {
	t.Run("plain http to remote host", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.API.BaseURL = "http://shop.example.com/api"

		warnings := cfg.Warnings()
		require.Len(t, warnings, 1)
		assert.Equal(t, "base_url", warnings[0].Item)
	})

	t.Run("plain http to localhost", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.API.BaseURL = "http://localhost:5000/api"
		assert.Empty(t, cfg.Warnings())
	})

	t.Run("long timeout", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.API.BaseURL = "https://shop.example.com/api"
		cfg.API.Timeout = 5 * time.Minute

		warnings := cfg.Warnings()
		require.Len(t, warnings, 1)
		assert.Equal(t, "timeout", warnings[0].Item)
	})
}
