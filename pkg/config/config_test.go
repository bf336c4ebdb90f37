package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Compiler.FoldConstants)
	assert.False(t, cfg.Compiler.Strict)
	assert.Equal(t, SourceMapSeparate, cfg.SourceMap.Mode)
}

func TestSourceMapModeValidation(t *testing.T) {
	tests := []struct {
		mode  SourceMapMode
		valid bool
	}{
		{SourceMapInline, true},
		{SourceMapSeparate, true},
		{SourceMapNone, true},
		{SourceMapMode("bad"), false},
		{SourceMapMode(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.mode.isValid())
		})
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.SourceMap.Mode = SourceMapMode("nonsense")
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sourcemap mode")
}

func withTempProjectDir(t *testing.T) string {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "cob-config-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { os.Chdir(oldWd) })

	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })

	return tmpDir
}

func TestLoadConfigNoFiles(t *testing.T) {
	withTempProjectDir(t)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.True(t, cfg.Compiler.FoldConstants)
}

func TestLoadConfigProjectFile(t *testing.T) {
	tmpDir := withTempProjectDir(t)

	projectConfig := `[compiler]
strict = true
fold_constants = false

[sourcemap]
mode = "inline"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "cob.toml"), []byte(projectConfig), 0644))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.True(t, cfg.Compiler.Strict)
	assert.False(t, cfg.Compiler.FoldConstants)
	assert.Equal(t, SourceMapInline, cfg.SourceMap.Mode)
}

func TestLoadConfigCLIOverride(t *testing.T) {
	tmpDir := withTempProjectDir(t)

	projectConfig := `[sourcemap]
mode = "inline"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "cob.toml"), []byte(projectConfig), 0644))

	overrides := &Config{SourceMap: SourceMapConfig{Mode: SourceMapNone}}
	cfg, err := Load(overrides)
	require.NoError(t, err)
	assert.Equal(t, SourceMapNone, cfg.SourceMap.Mode, "CLI override should win over the project file")
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	tmpDir := withTempProjectDir(t)

	invalidConfig := "[compiler\nstrict = true\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "cob.toml"), []byte(invalidConfig), 0644))

	_, err := Load(nil)
	require.Error(t, err)
}

func TestLoadConfigInvalidValue(t *testing.T) {
	tmpDir := withTempProjectDir(t)

	invalidConfig := `[sourcemap]
mode = "bogus"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "cob.toml"), []byte(invalidConfig), 0644))

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfigPreprocessorSettings(t *testing.T) {
	tmpDir := withTempProjectDir(t)

	projectConfig := `[preprocessor]
include_paths = ["include", "../shared"]
defines = ["TA3601", "FAST_RELOAD=1"]
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "cob.toml"), []byte(projectConfig), 0644))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"include", "../shared"}, cfg.Preprocessor.IncludePaths)
	assert.Equal(t, []string{"TA3601", "FAST_RELOAD=1"}, cfg.Preprocessor.Defines)
}
