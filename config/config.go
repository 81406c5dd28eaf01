// Package config provides configuration loading and management for semdoc.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semdoc/export"
	"github.com/c360studio/semdoc/rdfa"
)

// Config represents the complete semdoc configuration
type Config struct {
	Document DocumentConfig `yaml:"document"`
	Parser   ParserConfig   `yaml:"parser"`
	Export   ExportConfig   `yaml:"export"`
	Watch    WatchConfig    `yaml:"watch"`
	Log      LogConfig      `yaml:"log"`
}

// DocumentConfig configures how documents are read and written
type DocumentConfig struct {
	// BaseIRI resolves relative IRIs (empty = relative IRIs stay as written)
	BaseIRI string `yaml:"base_iri"`
	// DefaultLanguage is the document language when the root declares none
	DefaultLanguage string `yaml:"default_language"`
	// IDAttribute is the attribute carrying node identity (default: __rdfaid)
	IDAttribute string `yaml:"id_attribute"`
	// Prefixes are added to the default prefix table
	Prefixes map[string]string `yaml:"prefixes"`
}

// ParserConfig configures the HTML input parser
type ParserConfig struct {
	// Mode is "fragment" or "html5"
	Mode string `yaml:"mode"`
	// MaxDepth bounds element nesting in fragment mode
	MaxDepth int `yaml:"max_depth"`
}

// ExportConfig configures the export command
type ExportConfig struct {
	// Format is the default export format (nquads, jsonld, turtle, markdown)
	Format string `yaml:"format"`
}

// WatchConfig configures the document watcher
type WatchConfig struct {
	// Debounce is the quiet period before a changed file is re-parsed
	Debounce time.Duration `yaml:"debounce"`
	// Extensions are the file extensions watched
	Extensions []string `yaml:"extensions"`
	// ExcludeDirs are doublestar patterns of directories to skip
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Document: DocumentConfig{
			IDAttribute: rdfa.DefaultIDAttribute,
		},
		Parser: ParserConfig{
			Mode:     rdfa.ModeFragment,
			MaxDepth: rdfa.DefaultMaxDepth,
		},
		Export: ExportConfig{
			Format: string(export.FormatTurtle),
		},
		Watch: WatchConfig{
			Debounce:    500 * time.Millisecond,
			Extensions:  []string{".html", ".htm", ".xhtml"},
			ExcludeDirs: []string{"**/.git", "**/node_modules", "**/vendor"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Document.IDAttribute == "" {
		return fmt.Errorf("document.id_attribute is required")
	}
	if !slices.Contains([]string{rdfa.ModeFragment, rdfa.ModeHTML5}, c.Parser.Mode) {
		return fmt.Errorf("parser.mode must be %q or %q", rdfa.ModeFragment, rdfa.ModeHTML5)
	}
	if c.Parser.MaxDepth < 0 {
		return fmt.Errorf("parser.max_depth must not be negative")
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// RDFaOptions converts the document and parser settings to rdfa options.
func (c *Config) RDFaOptions() []rdfa.Option {
	return []rdfa.Option{
		rdfa.WithBaseIRI(c.Document.BaseIRI),
		rdfa.WithLanguage(c.Document.DefaultLanguage),
		rdfa.WithIDAttribute(c.Document.IDAttribute),
		rdfa.WithPrefixes(c.Document.Prefixes),
		rdfa.WithMode(c.Parser.Mode),
		rdfa.WithMaxDepth(c.Parser.MaxDepth),
	}
}

// WatchesFile reports whether path has one of the watched extensions.
func (c *Config) WatchesFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(c.Watch.Extensions, ext)
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Document
	if other.Document.BaseIRI != "" {
		c.Document.BaseIRI = other.Document.BaseIRI
	}
	if other.Document.DefaultLanguage != "" {
		c.Document.DefaultLanguage = other.Document.DefaultLanguage
	}
	if other.Document.IDAttribute != "" {
		c.Document.IDAttribute = other.Document.IDAttribute
	}
	if len(other.Document.Prefixes) > 0 {
		merged := make(map[string]string, len(c.Document.Prefixes)+len(other.Document.Prefixes))
		for k, v := range c.Document.Prefixes {
			merged[k] = v
		}
		for k, v := range other.Document.Prefixes {
			merged[k] = v
		}
		c.Document.Prefixes = merged
	}

	// Parser
	if other.Parser.Mode != "" {
		c.Parser.Mode = other.Parser.Mode
	}
	if other.Parser.MaxDepth != 0 {
		c.Parser.MaxDepth = other.Parser.MaxDepth
	}

	// Export
	if other.Export.Format != "" {
		c.Export.Format = other.Export.Format
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if len(other.Watch.Extensions) > 0 {
		c.Watch.Extensions = other.Watch.Extensions
	}
	if len(other.Watch.ExcludeDirs) > 0 {
		c.Watch.ExcludeDirs = other.Watch.ExcludeDirs
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
