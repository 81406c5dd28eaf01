package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/c360studio/semdoc/rdfa"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Document.IDAttribute != "__rdfaid" {
		t.Errorf("expected id attribute __rdfaid, got %s", cfg.Document.IDAttribute)
	}
	if cfg.Parser.Mode != "fragment" {
		t.Errorf("expected fragment mode, got %s", cfg.Parser.Mode)
	}
	if cfg.Export.Format != "turtle" {
		t.Errorf("expected turtle export, got %s", cfg.Export.Format)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected 500ms debounce, got %v", cfg.Watch.Debounce)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "html5 mode",
			modify:  func(c *Config) { c.Parser.Mode = "html5" },
			wantErr: false,
		},
		{
			name:    "missing id attribute",
			modify:  func(c *Config) { c.Document.IDAttribute = "" },
			wantErr: true,
		},
		{
			name:    "unknown parser mode",
			modify:  func(c *Config) { c.Parser.Mode = "xml" },
			wantErr: true,
		},
		{
			name:    "negative max depth",
			modify:  func(c *Config) { c.Parser.MaxDepth = -1 },
			wantErr: true,
		},
		{
			name:    "unknown export format",
			modify:  func(c *Config) { c.Export.Format = "rdfxml" },
			wantErr: true,
		},
		{
			name:    "negative debounce",
			modify:  func(c *Config) { c.Watch.Debounce = -time.Second },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
document:
  base_iri: "http://example.org/"
  default_language: "nl"
  prefixes:
    ex: "http://example.org/ns#"
parser:
  mode: html5
  max_depth: 64
export:
  format: jsonld
watch:
  debounce: 2s
  extensions: [".html"]
log:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Document.BaseIRI != "http://example.org/" {
		t.Errorf("expected base iri http://example.org/, got %s", cfg.Document.BaseIRI)
	}
	if cfg.Document.Prefixes["ex"] != "http://example.org/ns#" {
		t.Errorf("expected ex prefix, got %v", cfg.Document.Prefixes)
	}
	if cfg.Document.IDAttribute != "__rdfaid" {
		t.Errorf("expected default id attribute to survive, got %s", cfg.Document.IDAttribute)
	}
	if cfg.Parser.Mode != "html5" || cfg.Parser.MaxDepth != 64 {
		t.Errorf("unexpected parser config %+v", cfg.Parser)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("expected debounce 2s, got %v", cfg.Watch.Debounce)
	}
	if level, _ := cfg.LogLevel(); level != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", level)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	base.Document.Prefixes = map[string]string{"a": "http://a/", "b": "http://b/"}
	override := &Config{
		Document: DocumentConfig{
			DefaultLanguage: "en",
			Prefixes:        map[string]string{"b": "http://b2/"},
		},
		Export: ExportConfig{Format: "nquads"},
	}

	base.Merge(override)

	if base.Document.DefaultLanguage != "en" {
		t.Errorf("expected language en, got %s", base.Document.DefaultLanguage)
	}
	if base.Parser.Mode != "fragment" {
		t.Errorf("expected mode to remain default, got %s", base.Parser.Mode)
	}
	if base.Document.Prefixes["a"] != "http://a/" || base.Document.Prefixes["b"] != "http://b2/" {
		t.Errorf("unexpected merged prefixes %v", base.Document.Prefixes)
	}
	if base.Export.Format != "nquads" {
		t.Errorf("expected nquads, got %s", base.Export.Format)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Document.BaseIRI = "http://saved/"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Document.BaseIRI != "http://saved/" {
		t.Errorf("expected base iri http://saved/, got %s", loaded.Document.BaseIRI)
	}
	if loaded.Watch.Debounce != cfg.Watch.Debounce {
		t.Errorf("expected debounce %v, got %v", cfg.Watch.Debounce, loaded.Watch.Debounce)
	}
}

func TestLoaderLayers(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "docs", "drafts")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatal(err)
	}

	write := func(path, content string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write(filepath.Join(home, UserConfigDir, UserConfigFile), "document:\n  default_language: en\nparser:\n  max_depth: 32\n")
	write(filepath.Join(project, ProjectConfigFile), "document:\n  default_language: nl\n")
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	write(explicit, "export:\n  format: markdown\n")

	cfg, err := NewLoader(nil).WithDirs(home, work).Load(explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Document.DefaultLanguage != "nl" {
		t.Errorf("project config should override user config, got %s", cfg.Document.DefaultLanguage)
	}
	if cfg.Parser.MaxDepth != 32 {
		t.Errorf("user setting not overridden by project config should survive, got %d", cfg.Parser.MaxDepth)
	}
	if cfg.Export.Format != "markdown" {
		t.Errorf("explicit config should apply, got %s", cfg.Export.Format)
	}
	if cfg.Parser.Mode != "fragment" {
		t.Errorf("defaults should fill the rest, got %s", cfg.Parser.Mode)
	}
}

func TestLoaderMissingExplicitFile(t *testing.T) {
	_, err := NewLoader(nil).WithDirs(t.TempDir(), t.TempDir()).Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestRDFaOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Document.DefaultLanguage = "nl"
	cfg.Document.Prefixes = map[string]string{"ex": "http://example.org/"}

	p, err := rdfa.ParseString(`<div about="http://s"><span property="ex:name">N</span></div>`, cfg.RDFaOptions()...)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if got := p.Datastore.Match("http://s", "http://example.org/name", `"N"@nl`).Len(); got != 1 {
		t.Errorf("expected the configured prefix and language to apply, got %d matches", got)
	}
}

func TestWatchesFile(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.WatchesFile("docs/a.HTML") {
		t.Error("expected .HTML to be watched")
	}
	if cfg.WatchesFile("docs/a.md") {
		t.Error("expected .md to be ignored")
	}
}
