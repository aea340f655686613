package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Unknown-field policy values: what happens to field accesses whose owning
// DocType cannot be inferred.
const (
	UnknownDrop   = "drop"
	UnknownRetain = "retain"
)

// Config is the top-level configuration for frappe-mcp.
type Config struct {
	// FrappeBenchDir is the bench root containing the apps directory.
	FrappeBenchDir string `mapstructure:"frappe_bench_dir" toml:"frappe_bench_dir"`

	// AppRelativePath is the app directory relative to the bench root,
	// e.g. "apps/myapp".
	AppRelativePath string `mapstructure:"app_relative_path" toml:"app_relative_path"`

	// AppName is the installed app's package name.
	AppName string `mapstructure:"app_name" toml:"app_name"`

	// AnalysisFile is where the analysis snapshot is persisted.
	AnalysisFile string `mapstructure:"analysis_file" toml:"analysis_file"`

	// DocsDir points at a directory of markdown reference docs, if any.
	DocsDir string `mapstructure:"docs_dir" toml:"docs_dir,omitempty"`

	// IgnorePatterns are doublestar globs skipped by every tree walk,
	// in addition to the built-in cache/VCS directory names.
	IgnorePatterns []string `mapstructure:"ignore_patterns" toml:"ignore_patterns,omitempty"`

	// UnknownFields is UnknownDrop or UnknownRetain.
	UnknownFields string `mapstructure:"unknown_fields" toml:"unknown_fields"`

	// SnippetContext is the number of context lines around a search hit.
	SnippetContext int `mapstructure:"snippet_context" toml:"snippet_context"`

	// AppAbsolutePath is derived from FrappeBenchDir and AppRelativePath.
	AppAbsolutePath string `mapstructure:"-" toml:"-"`
}

// Default returns a sensible default configuration.
func Default() *Config {
	cfg := &Config{
		FrappeBenchDir: ".",
		AnalysisFile:   "analyzed_output.toml",
		UnknownFields:  UnknownDrop,
		SnippetContext: 2,
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration via viper. Search order:
//  1. the explicit path, when given
//  2. ./frappe-mcp.toml
//  3. ~/.config/frappe-mcp/frappe-mcp.toml
//
// FRAPPE_MCP_* environment variables override file values. A missing file in
// the search path is not an error; defaults are returned. An explicit path
// that cannot be read is.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("FRAPPE_MCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("frappe_bench_dir", ".")
	v.SetDefault("analysis_file", "analyzed_output.toml")
	v.SetDefault("unknown_fields", UnknownDrop)
	v.SetDefault("snippet_context", 2)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("frappe-mcp")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "frappe-mcp"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.FrappeBenchDir == "" {
		c.FrappeBenchDir = "."
	}
	if c.AnalysisFile == "" {
		c.AnalysisFile = "analyzed_output.toml"
	}
	if c.UnknownFields != UnknownRetain {
		c.UnknownFields = UnknownDrop
	}
	if c.SnippetContext <= 0 {
		c.SnippetContext = 2
	}
	if c.AppRelativePath != "" {
		c.AppAbsolutePath = filepath.Join(c.FrappeBenchDir, c.AppRelativePath)
	} else {
		c.AppAbsolutePath = c.FrappeBenchDir
	}
}

// AppRoot is the absolute path of the app under analysis.
func (c *Config) AppRoot() string {
	return c.AppAbsolutePath
}
