package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ".", cfg.FrappeBenchDir)
	assert.Equal(t, "analyzed_output.toml", cfg.AnalysisFile)
	assert.Equal(t, UnknownDrop, cfg.UnknownFields)
	assert.Equal(t, 2, cfg.SnippetContext)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frappe-mcp.toml")
	content := `frappe_bench_dir = "/srv/bench"
app_relative_path = "apps/crm"
app_name = "crm"
unknown_fields = "retain"
ignore_patterns = ["**/fixtures/**"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/bench", cfg.FrappeBenchDir)
	assert.Equal(t, filepath.Join("/srv/bench", "apps/crm"), cfg.AppRoot())
	assert.Equal(t, UnknownRetain, cfg.UnknownFields)
	assert.Equal(t, []string{"**/fixtures/**"}, cfg.IgnorePatterns)
	// unset fields fall back to defaults
	assert.Equal(t, "analyzed_output.toml", cfg.AnalysisFile)
	assert.Equal(t, 2, cfg.SnippetContext)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestUnknownPolicyNormalized(t *testing.T) {
	cfg := &Config{UnknownFields: "whatever"}
	cfg.applyDefaults()
	assert.Equal(t, UnknownDrop, cfg.UnknownFields)
}
