package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/chiroplot-mcp/internal/annotation"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "single", cfg.Session.Variant)
	require.Equal(t, 320, cfg.Canvas.Width)
	require.Equal(t, 320, cfg.Canvas.Height)
	require.Equal(t, 95, cfg.Export.JPEGQuality)
	require.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chiroplot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  variant: comparison\n  region: Neck\nexport:\n  dir: /tmp/out\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "comparison", cfg.Session.Variant)
	require.Equal(t, "Neck", cfg.Session.Region)
	require.Equal(t, "/tmp/out", cfg.Export.Dir)
	require.Equal(t, 95, cfg.Export.JPEGQuality, "unset fields keep defaults")

	v, err := cfg.Variant()
	require.NoError(t, err)
	require.Equal(t, annotation.Comparison, v)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("canvas: [1, 2"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chiroplot.yaml")
	cfg := DefaultConfig()
	cfg.Session.Variant = "basic"
	cfg.Canvas.Width = 512

	require.NoError(t, SaveConfig(cfg, path))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvLogLevel:  "debug",
		EnvVariant:   "comparison",
		EnvRegistry:  "/etc/regions.yaml",
		EnvExportDir: "",
	}
	cfg := DefaultConfig()
	cfg.Export.Dir = "exports"
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "comparison", cfg.Session.Variant)
	require.Equal(t, "/etc/regions.yaml", cfg.Session.RegistryFile)
	require.Equal(t, "exports", cfg.Export.Dir, "empty values do not override")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(EnvVariant+"=basic\n"), 0o644))

	t.Setenv(EnvVariant, "")
	require.NoError(t, os.Unsetenv(EnvVariant))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	require.Equal(t, "basic", os.Getenv(EnvVariant))
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.Variant = "triple"
	cfg.Canvas.Height = 0
	cfg.Export.JPEGQuality = 120
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, want := range []string{"triple", "canvas size", "jpeg quality", "loud"} {
		require.Contains(t, err.Error(), want)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		cfg := DefaultConfig()
		cfg.Log.Level = in
		got, err := cfg.SlogLevel()
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
}
