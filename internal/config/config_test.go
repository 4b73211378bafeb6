package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/hbnb/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hbnb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "file.json", cfg.Storage.Path)
	assert.Equal(t, "(hbnb) ", cfg.Prompt)
	assert.Equal(t, 4096, cfg.MaxInputSize)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
storage:
  backend: sqlite
  path: data/hbnb.db
debug: true
max_input_size: "512"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "data/hbnb.db", cfg.Storage.Path)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 512, cfg.MaxInputSize)
	assert.Equal(t, "(hbnb) ", cfg.Prompt)
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFile), []byte("prompt: \"> \"\n"), 0o644))
	t.Chdir(dir)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "> ", cfg.Prompt)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "storage:\n  backend: sqlite\n  path: a.db\n")
	t.Setenv("HBNB_STORAGE_BACKEND", "redis")
	t.Setenv("HBNB_STORAGE_REDIS_ADDR", "cache:6379")
	t.Setenv("HBNB_STORAGE_REDIS_DB", "2")
	t.Setenv("HBNB_HTTP_ADDR", "127.0.0.1:9000")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, 2, cfg.Storage.RedisDB)
	assert.Equal(t, "a.db", cfg.Storage.Path)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "storage:\n  engine: file\n"))
		assert.ErrorIs(t, err, config.ErrInvalid)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "storage:\n  backend: mongo\n"))
		assert.ErrorIs(t, err, config.ErrInvalid)
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("HBNB_DEBUG", "maybe")
		_, err := config.Load("")
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "storage: [\n"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Path = ""
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)

	cfg.Storage.Backend = config.BackendMemory
	assert.NoError(t, cfg.Validate())

	cfg.MaxInputSize = 0
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
}
