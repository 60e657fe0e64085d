package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvWorkers, EnvReadTimeout, EnvExcludeDirs} {
		t.Setenv(key, "")
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"."}, cfg.Roots)
	assert.Equal(t, 10, cfg.Workers)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Len(t, cfg.Patterns, 6)
	assert.True(t, cfg.ShouldIgnoreFolder("node_modules"))
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_OverridesKeepDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `roots: [money-tracker-backend, money-tracker-vite]
read_timeout: 250ms
patterns:
  - id: legacy
    regex: legacyHelper(
    literal: true
ignores:
  folders: [node_modules, tmp]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"money-tracker-backend", "money-tracker-vite"}, cfg.Roots)
	assert.Equal(t, 250*time.Millisecond, cfg.ReadTimeout)
	assert.Equal(t, []Pattern{{ID: "legacy", Regex: "legacyHelper(", Literal: true}}, cfg.Patterns)
	assert.Equal(t, []string{"node_modules", "tmp"}, cfg.Ignores.Folders)

	// Keys absent from the file keep their defaults
	assert.Equal(t, Default().Categories, cfg.Categories)
	assert.Equal(t, Default().RouteKeywords, cfg.RouteKeywords)
	assert.Equal(t, 10, cfg.Workers)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roots: [unclosed\n"), 0644))
	_, err = LoadFile(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"missing pattern id", func(c *Config) { c.Patterns = append(c.Patterns, Pattern{Regex: "x"}) }},
		{"duplicate pattern id", func(c *Config) { c.Patterns = append(c.Patterns, Pattern{ID: "Avoir_keyword", Regex: "x"}) }},
		{"empty pattern", func(c *Config) { c.Patterns = append(c.Patterns, Pattern{ID: "empty"}) }},
		{"invalid regex", func(c *Config) { c.Patterns = append(c.Patterns, Pattern{ID: "broken", Regex: "("}) }},
		{"unnamed category", func(c *Config) { c.Categories[0].Name = "" }},
		{"unknown role", func(c *Config) { c.Roles[0].Role = "include" }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"negative timeout", func(c *Config) { c.ReadTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestValidate_LiteralPatternIsNotCompiled(t *testing.T) {
	cfg := Default()
	cfg.Patterns = []Pattern{{ID: "paren", Regex: "fn(", Literal: true}}
	assert.NoError(t, cfg.Validate())
}

func TestAddExcludeDirs(t *testing.T) {
	cfg := Default()
	before := len(cfg.Ignores.Folders)

	cfg.AddExcludeDirs([]string{"node_modules", " legacy ", "", "src/old"})

	assert.Len(t, cfg.Ignores.Folders, before+2)
	assert.True(t, cfg.ShouldIgnoreFolder("legacy"))
	assert.True(t, cfg.ShouldIgnoreFolder("src/old"))
}

func TestApplyEnv_DotEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := "REFSCAN_WORKERS=3\nREFSCAN_READ_TIMEOUT=2s\nREFSCAN_EXCLUDE_DIRS=tmp,logs\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644))

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(dir))

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)
	assert.True(t, cfg.ShouldIgnoreFolder("tmp"))
	assert.True(t, cfg.ShouldIgnoreFolder("logs"))
}

func TestApplyEnv_ProcessEnvWins(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REFSCAN_WORKERS=3\n"), 0644))
	t.Setenv(EnvWorkers, "7")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(dir))
	assert.Equal(t, 7, cfg.Workers)
}

func TestApplyEnv_NoFile(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(t.TempDir()))
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvWorkers, "many")
	assert.ErrorIs(t, Default().ApplyEnv(t.TempDir()), ErrInvalid)

	clearEnv(t)
	t.Setenv(EnvReadTimeout, "soon")
	assert.ErrorIs(t, Default().ApplyEnv(t.TempDir()), ErrInvalid)
}
