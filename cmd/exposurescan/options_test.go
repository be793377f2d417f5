package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/exposurescan/internal/config"
	"github.com/nao1215/exposurescan/internal/report"
)

func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	t.Run("returns false when flag not set", func(t *testing.T) {
		t.Parallel()
		if getVerboseFlag(NewIngestCmd()) {
			t.Error("expected false")
		}
	})

	t.Run("reads the root persistent flag", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		if err := root.PersistentFlags().Set("verbose", "true"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}
		child, _, err := root.Find([]string{"report"})
		if err != nil {
			t.Fatalf("failed to find report command: %v", err)
		}
		if !getVerboseFlag(child) {
			t.Error("expected true from parent verbose flag")
		}
		if getLogJSONFlag(child) {
			t.Error("expected log-json to default to false")
		}
	})
}

// TestBuildConfig tests configuration building from file and flags.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := buildConfig(NewIngestCmd())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BatchSize != config.DefaultBatchSize {
			t.Errorf("expected batch size %d, got %d", config.DefaultBatchSize, cfg.BatchSize)
		}
		if cfg.DBDir == "" {
			t.Error("expected default database directory")
		}
	})

	t.Run("flags", func(t *testing.T) {
		t.Parallel()

		cmd := NewIngestCmd()
		if err := cmd.ParseFlags([]string{
			"--db-dir", "/tmp/exposures",
			"--batch", "8",
			"--timeout", "30s",
			"--snippet-length", "80",
			"-m",
			"-o", "out.md",
		}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DBDir != "/tmp/exposures" || cfg.BatchSize != 8 || cfg.SnippetLength != 80 {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected timeout 30s, got %v", cfg.Timeout)
		}
		if !cfg.MarkdownReport || cfg.JSONReport || cfg.ReportFile != "out.md" {
			t.Errorf("unexpected report settings: %+v", cfg)
		}
	})

	t.Run("config file with flag override", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, ".exposurescan", "dbDir: data\nbatchSize: 2\nformat: markdown\n")

		cmd := NewIngestCmd()
		if err := cmd.ParseFlags([]string{"--config", path, "--json"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DBDir != filepath.Join(dir, "data") {
			t.Errorf("expected db dir relative to config file, got %q", cfg.DBDir)
		}
		if cfg.BatchSize != 2 {
			t.Errorf("expected batch size from file, got %d", cfg.BatchSize)
		}
		if !cfg.JSONReport || cfg.MarkdownReport {
			t.Errorf("expected --json to replace the file format, got json=%v markdown=%v", cfg.JSONReport, cfg.MarkdownReport)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		cmd := NewReportCmd()
		if err := cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		if _, err := buildConfig(cmd); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid config file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), ".exposurescan", "format: pdf\n")

		cmd := NewIngestCmd()
		if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		if _, err := buildConfig(cmd); !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}

func TestParseIngestArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		user    string
		want    []payloadFile
		wantErr bool
	}{
		{
			name: "user flag",
			args: []string{"a.json", "b.json"},
			user: " alice ",
			want: []payloadFile{{UserID: "alice", Path: "a.json"}, {UserID: "alice", Path: "b.json"}},
		},
		{
			name: "user pairs",
			args: []string{"alice=a.json", "bob=dir/b=c.json"},
			want: []payloadFile{{UserID: "alice", Path: "a.json"}, {UserID: "bob", Path: "dir/b=c.json"}},
		},
		{
			name: "stdin",
			args: []string{"-"},
			user: "alice",
			want: []payloadFile{{UserID: "alice", Path: "-"}},
		},
		{name: "missing user", args: []string{"a.json"}, wantErr: true},
		{name: "empty user", args: []string{" =a.json"}, wantErr: true},
		{name: "empty path", args: []string{"alice="}, wantErr: true},
		{name: "stdin twice", args: []string{"alice=-", "bob=-"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseIngestArgs(tt.args, tt.user)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseIngestArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d files, got %+v", len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("pf %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOpenOutput(t *testing.T) {
	t.Parallel()

	t.Run("stdout by default", func(t *testing.T) {
		t.Parallel()

		var stdout bytes.Buffer
		w, closeFn, err := openOutput(config.NewConfig(), &stdout)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w != &stdout {
			t.Error("expected stdout")
		}
		if err := closeFn(); err != nil {
			t.Errorf("unexpected close error: %v", err)
		}
	})

	t.Run("report file with directories", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.ReportFile = filepath.Join(t.TempDir(), "reports", "out.txt")

		w, closeFn, err := openOutput(cfg, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := w.Write([]byte("hello")); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if err := closeFn(); err != nil {
			t.Fatalf("close failed: %v", err)
		}

		info, err := os.Stat(cfg.ReportFile)
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
		}
	})
}

func TestNewReportWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		json     bool
		markdown bool
		check    func(report.Writer) bool
	}{
		{name: "text", check: func(w report.Writer) bool { _, ok := w.(*report.SimpleWriter); return ok }},
		{name: "json", json: true, check: func(w report.Writer) bool { _, ok := w.(*report.FullJSONWriter); return ok }},
		{name: "markdown", markdown: true, check: func(w report.Writer) bool { _, ok := w.(*report.MarkdownWriter); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.JSONReport = tt.json
			cfg.MarkdownReport = tt.markdown

			if w := newReportWriter(cfg, &bytes.Buffer{}, false); !tt.check(w) {
				t.Errorf("unexpected writer type %T", w)
			}
		})
	}
}

func TestLoadSeed(t *testing.T) {
	t.Parallel()

	seed, err := loadSeed("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seed.Categories) != 6 || len(seed.Ingredients) != 30 {
		t.Errorf("expected 6 categories and 30 ingredients, got %d and %d", len(seed.Categories), len(seed.Ingredients))
	}

	if _, err := loadSeed(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing seed file")
	}
}

