package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowfi.yaml")
	content := `
server:
  port: 9090
  db: /var/lib/flowfi/ledger.db
  corsOrigins:
    - https://app.example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := Load(path)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/var/lib/flowfi/ledger.db", cfg.DBPath)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSOrigins)
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowfi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0o600))

	cfg := Load(path)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, Default().DBPath, cfg.DBPath)
	assert.Equal(t, Default().CORSOrigins, cfg.CORSOrigins)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowfi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0o600))

	t.Setenv("FLOWFI_PORT", "4000")
	t.Setenv("FLOWFI_DB", ":memory:")
	t.Setenv("FLOWFI_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load(path)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoad_MalformedFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowfi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o600))

	cfg := Load(path)
	assert.Equal(t, Default(), cfg)
}
