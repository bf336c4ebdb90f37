// Package config provides configuration management for the unit-script
// compiler.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SourceMapMode controls how (and whether) a source map is emitted
// alongside a compiled object file.
type SourceMapMode string

const (
	// SourceMapInline writes the source map as a base64 data-URL comment to
	// a sibling .cob.map.txt file; the object file itself is left unchanged.
	SourceMapInline SourceMapMode = "inline"

	// SourceMapSeparate writes the source map to a sibling .cob.map file.
	SourceMapSeparate SourceMapMode = "separate"

	// SourceMapNone disables source map emission entirely.
	SourceMapNone SourceMapMode = "none"
)

func (m SourceMapMode) isValid() bool {
	switch m {
	case SourceMapInline, SourceMapSeparate, SourceMapNone:
		return true
	default:
		return false
	}
}

// Config is the complete compiler configuration, loadable from a project or
// user TOML file and overridable from the command line.
type Config struct {
	Compiler  CompilerConfig  `toml:"compiler"`
	Preprocessor PreprocessorConfig `toml:"preprocessor"`
	SourceMap SourceMapConfig `toml:"sourcemap"`
}

// CompilerConfig controls AST-to-bytecode lowering behavior.
type CompilerConfig struct {
	// FoldConstants enables the parser's constant-folding pass.
	FoldConstants bool `toml:"fold_constants"`

	// Strict, when true, makes an unhandled/undefined AST node a hard
	// compile error instead of a warning plus a BAD_OP_PLACEHOLDER word in
	// the emitted code.
	Strict bool `toml:"strict"`

	// OutputPath is the default object-file path used when the CLI is
	// invoked without an explicit -o flag; "" means "derive it from the
	// input filename".
	OutputPath string `toml:"output_path"`
}

// PreprocessorConfig controls the external preprocessor pass run ahead of
// parsing.
type PreprocessorConfig struct {
	// IncludePaths are searched, in order, for #include directives.
	IncludePaths []string `toml:"include_paths"`

	// Defines are predefined macros injected before preprocessing, as
	// "NAME=VALUE" or bare "NAME" (defined with an empty value).
	Defines []string `toml:"defines"`
}

// SourceMapConfig controls source map generation.
type SourceMapConfig struct {
	// Mode selects inline/separate/none emission.
	Mode SourceMapMode `toml:"mode"`
}

// DefaultConfig returns the compiler's built-in default configuration.
func DefaultConfig() *Config {
	return &Config{
		Compiler: CompilerConfig{
			FoldConstants: true,
			Strict:        false,
		},
		Preprocessor: PreprocessorConfig{},
		SourceMap: SourceMapConfig{
			Mode: SourceMapSeparate,
		},
	}
}

// Load loads configuration from multiple sources with precedence:
//  1. CLI flags (highest priority) - passed as overrides
//  2. Project cob.toml (current directory)
//  3. User config (~/.cob/config.toml)
//  4. Built-in defaults (lowest priority)
func Load(overrides *Config) (*Config, error) {
	cfg := DefaultConfig()

	userConfigPath := filepath.Join(os.Getenv("HOME"), ".cob", "config.toml")
	if err := loadConfigFile(userConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	projectConfigPath := "cob.toml"
	if err := loadConfigFile(projectConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func applyOverrides(cfg, overrides *Config) {
	if overrides.Compiler.OutputPath != "" {
		cfg.Compiler.OutputPath = overrides.Compiler.OutputPath
	}
	if overrides.Compiler.Strict {
		cfg.Compiler.Strict = true
	}
	if overrides.SourceMap.Mode != "" {
		cfg.SourceMap.Mode = overrides.SourceMap.Mode
	}
	if len(overrides.Preprocessor.IncludePaths) > 0 {
		cfg.Preprocessor.IncludePaths = overrides.Preprocessor.IncludePaths
	}
	if len(overrides.Preprocessor.Defines) > 0 {
		cfg.Preprocessor.Defines = overrides.Preprocessor.Defines
	}
}

// loadConfigFile merges a TOML file's contents into cfg. A missing file is
// not an error: callers rely on defaults.
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}

// Validate checks that cfg's field values are within their documented
// ranges.
func (c *Config) Validate() error {
	if !c.SourceMap.Mode.isValid() {
		return fmt.Errorf("invalid sourcemap mode: %q (must be %q, %q, or %q)",
			c.SourceMap.Mode, SourceMapInline, SourceMapSeparate, SourceMapNone)
	}
	return nil
}
