package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional; these tests fail otherwise.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default DBDir is the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir to be %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("default BatchSize is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 4 {
			t.Errorf("expected BatchSize to be 4, got %d", cfg.BatchSize)
		}
	})

	t.Run("default MaxTextBytes is 512KB", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxTextBytes != 512*1024 {
			t.Errorf("expected MaxTextBytes to be 524288, got %d", cfg.MaxTextBytes)
		}
	})

	t.Run("default SnippetLength is 160", func(t *testing.T) {
		t.Parallel()
		if cfg.SnippetLength != 160 {
			t.Errorf("expected SnippetLength to be 160, got %d", cfg.SnippetLength)
		}
	})

	t.Run("default Timeout is disabled", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 0 {
			t.Errorf("expected Timeout to be 0, got %v", cfg.Timeout)
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method. Each case breaks one rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "valid config returns nil", modify: func(*Config) {}},
		{name: "empty DBDir", modify: func(c *Config) { c.DBDir = "" }, want: ErrNoDBDir},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, want: ErrInvalidBatchSize},
		{name: "negative batch size", modify: func(c *Config) { c.BatchSize = -1 }, want: ErrInvalidBatchSize},
		{name: "zero max text bytes", modify: func(c *Config) { c.MaxTextBytes = 0 }, want: ErrInvalidMaxTextBytes},
		{name: "zero snippet length", modify: func(c *Config) { c.SnippetLength = 0 }, want: ErrInvalidSnippetLength},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, want: ErrInvalidTimeout},
		{name: "positive timeout", modify: func(c *Config) { c.Timeout = time.Minute }},
		{
			name: "json and markdown together",
			modify: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			want: ErrConflictingReportFormats,
		},
		{name: "json only", modify: func(c *Config) { c.JSONReport = true }},
		{name: "markdown only", modify: func(c *Config) { c.MarkdownReport = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &Config{
				DBDir:         t.TempDir(),
				BatchSize:     4,
				MaxTextBytes:  1024,
				SnippetLength: 80,
			}
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile("/nonexistent/path/.exposurescan")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cf != nil {
			t.Error("expected nil file when not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `dbDir: /var/lib/exposurescan
verbose: true
batchSize: 8
maxTextBytes: 2048
snippetLength: 64
timeout: 30s
catalogFile: catalog.yaml
format: markdown
reportFile: out.md
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.DBDir != "/var/lib/exposurescan" {
			t.Errorf("expected dbDir, got %q", cf.DBDir)
		}
		if cf.Verbose == nil || !*cf.Verbose {
			t.Error("expected verbose to be true")
		}
		if cf.BatchSize != 8 {
			t.Errorf("expected batch size 8, got %d", cf.BatchSize)
		}
		if cf.Format != "markdown" {
			t.Errorf("expected format markdown, got %q", cf.Format)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFileApply tests that file values override the defaults.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("empty file leaves config unchanged", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		want := *cfg
		if err := (&File{}).Apply(cfg, "/etc"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *cfg != want {
			t.Errorf("expected %+v, got %+v", want, *cfg)
		}
	})

	t.Run("set values override defaults", func(t *testing.T) {
		t.Parallel()

		verbose := true
		cf := &File{
			DBDir:         "data",
			Verbose:       &verbose,
			BatchSize:     2,
			MaxTextBytes:  100,
			SnippetLength: 20,
			Timeout:       "1m30s",
			CatalogFile:   "/abs/catalog.yaml",
			Format:        "json",
			ReportFile:    "report.json",
		}

		cfg := NewConfig()
		if err := cf.Apply(cfg, "/home/alice"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DBDir != filepath.Join("/home/alice", "data") {
			t.Errorf("expected relative dbDir resolved against file dir, got %q", cfg.DBDir)
		}
		if cfg.CatalogFile != "/abs/catalog.yaml" {
			t.Errorf("expected absolute catalog path kept, got %q", cfg.CatalogFile)
		}
		if !cfg.Verbose {
			t.Error("expected verbose")
		}
		if cfg.BatchSize != 2 || cfg.MaxTextBytes != 100 || cfg.SnippetLength != 20 {
			t.Errorf("unexpected limits: %+v", cfg)
		}
		if cfg.Timeout != 90*time.Second {
			t.Errorf("expected 90s timeout, got %v", cfg.Timeout)
		}
		if !cfg.JSONReport || cfg.MarkdownReport {
			t.Error("expected json format")
		}
		if cfg.ReportFile != "report.json" {
			t.Errorf("expected report file, got %q", cfg.ReportFile)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Parallel()

		err := (&File{Timeout: "soon"}).Apply(NewConfig(), "")
		if !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		if err := (&File{Format: "xml"}).Apply(NewConfig(), ""); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("verbose: false"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if XDGDataDir() == "" {
		t.Error("expected non-empty XDG data dir")
	}
	if XDGConfigDir() == "" {
		t.Error("expected non-empty XDG config dir")
	}
	if filepath.Base(XDGDataDir()) != AppName {
		t.Errorf("expected data dir to end with %q, got %q", AppName, XDGDataDir())
	}
}
