package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
search:
  engine_timeout: 500ms
  group_by_type: true
cache:
  timeout: 1m
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Storage.TermIndexPath != "" {
		t.Errorf("term_index_path should stay empty, got %s", cfg.Storage.TermIndexPath)
	}
	if cfg.Search.EngineTimeout != 500*time.Millisecond {
		t.Errorf("engine_timeout = %v", cfg.Search.EngineTimeout)
	}
	if !cfg.Search.GroupByType {
		t.Error("group_by_type should be true")
	}
	if cfg.Cache.Timeout != time.Minute {
		t.Errorf("cache timeout = %v", cfg.Cache.Timeout)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	path := writeConfig(t, `
debug: true
storage:
  database_path: "test.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "./data/db/documents.db"
  term_index_path: "./data/terms"
watch:
  directories: ["./dev/sample"]
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "db", "documents.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	if want := filepath.Join(dir, "data", "terms"); cfg.Storage.TermIndexPath != want {
		t.Errorf("term_index_path = %s, want %s", cfg.Storage.TermIndexPath, want)
	}
	if len(cfg.Watch.Directories) != 1 {
		t.Fatalf("watch directories: got %d", len(cfg.Watch.Directories))
	}
	if want := filepath.Join(dir, "dev", "sample"); cfg.Watch.Directories[0] != want {
		t.Errorf("watch directory = %s, want %s", cfg.Watch.Directories[0], want)
	}
}

func TestLoad_invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "server: [unclosed"},
		{"bad mode", "search:\n  default_mode: magic\n"},
		{"page size over max", "search:\n  default_page_size: 50\n  max_page_size: 10\n"},
		{"bad backend", "cache:\n  backend: memcached\n"},
		{"redis without addr", "cache:\n  backend: redis\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Search.DefaultMode != "hybrid" {
		t.Errorf("default mode: got %s", cfg.Search.DefaultMode)
	}
	if cfg.Search.DefaultPageSize != 20 || cfg.Search.MaxPageSize != 100 {
		t.Errorf("page sizes: got %d/%d", cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)
	}
	if cfg.Search.MinSimilarity != 0.05 {
		t.Errorf("min similarity: got %f", cfg.Search.MinSimilarity)
	}
	if cfg.Search.EngineTimeout != 2*time.Second {
		t.Errorf("engine timeout: got %v", cfg.Search.EngineTimeout)
	}
	if cfg.Weights.Exact != 1.0 || cfg.Weights.Fuzzy != 0.6 || cfg.Weights.Semantic != 0.7 {
		t.Errorf("source weights: got %+v", cfg.Weights)
	}
	if f := cfg.Weights.Fields(); f["keywords"] != 0.9 || f["tags"] != 0.7 {
		t.Errorf("field weights: got %v", f)
	}
	if !*cfg.Expansion.IncludeRelatedTerms || cfg.Expansion.ConfidenceThreshold != 0.6 {
		t.Errorf("expansion: got %+v", cfg.Expansion)
	}
	if !cfg.Cache.EnabledOrDefault() || cfg.Cache.Timeout != 5*time.Minute || cfg.Cache.Backend != "memory" {
		t.Errorf("cache: got %+v", cfg.Cache)
	}
	if cfg.Analytics.MaxEvents != 1000 {
		t.Errorf("analytics max events: got %d", cfg.Analytics.MaxEvents)
	}
	if len(cfg.Watch.Extensions) != 8 || cfg.Watch.Extensions[0] != ".txt" {
		t.Errorf("watch extensions: got %v", cfg.Watch.Extensions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestApplyDefaults_keepsExplicitValues(t *testing.T) {
	off := false
	cfg := &Config{
		Weights:   WeightsConfig{Exact: 2},
		Cache:     CacheConfig{Enabled: &off},
		Expansion: ExpansionConfig{IncludeRelatedTerms: &off},
	}
	ApplyDefaults(cfg)
	if cfg.Weights.Exact != 2 || cfg.Weights.Fuzzy != 0 {
		t.Errorf("partially set weights should be kept as is: %+v", cfg.Weights)
	}
	if cfg.Cache.EnabledOrDefault() {
		t.Error("explicitly disabled cache should stay disabled")
	}
	if *cfg.Expansion.IncludeRelatedTerms {
		t.Error("explicit include_related_terms=false should be kept")
	}
}

func TestApplyDefaults_WatchRecursiveWhenDirectoriesSet(t *testing.T) {
	cfg := &Config{Watch: WatchConfig{Directories: []string{"/tmp/docs"}}}
	ApplyDefaults(cfg)
	if cfg.Watch.Recursive == nil || !*cfg.Watch.Recursive {
		t.Error("recursive should default to true when directories are set")
	}
}

func TestWatchConfig_RecursiveOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		w := &WatchConfig{}
		if got := w.RecursiveOrDefault(); !got {
			t.Errorf("RecursiveOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		w := &WatchConfig{Recursive: &f}
		if got := w.RecursiveOrDefault(); got {
			t.Errorf("RecursiveOrDefault() = %v, want false", got)
		}
	})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Server.Port = 9090
	cfg.Storage.DatabasePath = "/tmp/db"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.Search.EngineTimeout != 2*time.Second {
		t.Errorf("loaded engine timeout: got %v", loaded.Search.EngineTimeout)
	}
}
