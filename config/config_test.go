package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Equal(t, "warelay", cfg.System.Appid)
	assert.Equal(t, 1889, cfg.Web.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Empty(t, cfg.Provider.BaseURL)
	assert.Empty(t, cfg.Webhook.Secret)
}

func TestLoadConfigFileAndEnvOverrides(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "warelay.yml")
	require.NoError(t, os.WriteFile(cfile, []byte(`
web:
  port: 9000
provider:
  base_url: http://provider.local:3000
webhook:
  secret: file-secret
`), 0o644))

	t.Setenv("WARELAY_WEB_PORT", "9100")
	t.Setenv("WARELAY_WEBHOOK_SECRET", "env-secret")

	cfg := LoadConfig(cfile)
	assert.Equal(t, 9100, cfg.Web.Port, "env wins over file")
	assert.Equal(t, "http://provider.local:3000", cfg.Provider.BaseURL)
	assert.Equal(t, "env-secret", cfg.Webhook.Secret)
	// untouched sections keep their defaults
	assert.Equal(t, "0.0.0.0", cfg.Web.Host)
}
