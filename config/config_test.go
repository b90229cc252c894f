package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty directory so a stray .env is not picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := chdir(t)

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, ":8090", cfg.Server.Addr)
	assert.Equal(t, 50, cfg.Storage.Capacity)
	assert.Equal(t, "aquagrade-history", cfg.Storage.SlotName)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "aquagrade.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
analysis:
  base_url: "http://analysis:5001/api"
  timeout: 5s
storage:
  backend: file
  capacity: 20
`), 0o644))

	t.Setenv("AQUAGRADE_HISTORY_CAPACITY", "10")
	t.Setenv("AQUAGRADE_API_DEBUG", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "http://analysis:5001/api", cfg.Analysis.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Analysis.Timeout)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, 10, cfg.Storage.Capacity)
	assert.True(t, cfg.Analysis.Debug)
	// untouched keys keep their defaults
	assert.Equal(t, "data/aquagrade.db", cfg.Storage.DBPath)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AQUAGRADE_STORAGE=memory\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("AQUAGRADE_STORAGE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
}

func TestLoad_Errors(t *testing.T) {
	dir := chdir(t)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [unclosed"), 0o644))
	_, err := Load(bad)
	assert.ErrorContains(t, err, "failed to parse config")

	t.Setenv("AQUAGRADE_API_TIMEOUT", "soon")
	_, err = Load("")
	assert.ErrorContains(t, err, "AQUAGRADE_API_TIMEOUT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"backend", func(c *Config) { c.Storage.Backend = "redis" }, "unknown storage backend"},
		{"capacity", func(c *Config) { c.Storage.Capacity = 0 }, "capacity must be positive"},
		{"base url", func(c *Config) { c.Analysis.BaseURL = "  " }, "base_url is required"},
		{"slot", func(c *Config) { c.Storage.SlotName = "" }, "slot_name is required"},
		{"upload", func(c *Config) { c.Server.MaxUploadMB = -1 }, "max_upload_mb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "out.yaml")

	cfg := DefaultConfig()
	cfg.Storage.Backend = BackendMemory
	cfg.Analysis.Timeout = 12 * time.Second
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
