package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/exposurescan/internal/database"
	"github.com/nao1215/exposurescan/internal/model"
	"github.com/nao1215/exposurescan/internal/payload"
	"github.com/nao1215/exposurescan/internal/report"
)

// TestNewIngestCmd tests the ingest command creation.
func TestNewIngestCmd(t *testing.T) {
	t.Parallel()

	cmd := NewIngestCmd()

	if cmd.Args == nil {
		t.Error("expected Args validator")
	}

	flags := []struct {
		name      string
		shorthand string
	}{
		{name: "user", shorthand: "u"},
		{name: "batch", shorthand: "b"},
		{name: "timeout", shorthand: "t"},
		{name: "max-text-bytes"},
		{name: "snippet-length"},
		{name: "catalog"},
		{name: "config", shorthand: "c"},
		{name: "db-dir"},
		{name: "json", shorthand: "j"},
		{name: "markdown", shorthand: "m"},
		{name: "output", shorthand: "o"},
	}

	for _, tt := range flags {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
		})
	}
}

func TestLoadJobs(t *testing.T) {
	t.Parallel()

	t.Run("file and stdin", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "scan.json", testPayload)
		files := []payloadFile{
			{UserID: "alice", Path: path},
			{UserID: "bob", Path: stdinPath},
		}

		jobs, err := loadJobs(files, strings.NewReader(`{"passwordCheck": {"leaked": true, "count": 3}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(jobs) != 2 {
			t.Fatalf("expected 2 jobs, got %d", len(jobs))
		}
		if jobs[0].UserID != "alice" || jobs[0].Label != path || !jobs[0].Payload.Present(payload.BranchEmailBreach) {
			t.Errorf("unexpected first job: %+v", jobs[0])
		}
		if jobs[1].UserID != "bob" || jobs[1].Payload == nil {
			t.Errorf("unexpected second job: %+v", jobs[1])
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		files := []payloadFile{{UserID: "alice", Path: filepath.Join(t.TempDir(), "missing.json")}}
		if _, err := loadJobs(files, nil); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})

	t.Run("payload that is not an object", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "scan.json", `[1, 2]`)
		if _, err := loadJobs([]payloadFile{{UserID: "alice", Path: path}}, nil); !errors.Is(err, payload.ErrNotObject) {
			t.Errorf("expected ErrNotObject, got %v", err)
		}
	})
}

// TestRunIngest tests fusing payloads end to end against a real database.
func TestRunIngest(t *testing.T) {
	t.Parallel()

	t.Run("single payload as JSON", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.JSONReport = true
		path := writeFile(t, t.TempDir(), "scan.json", testPayload)

		var stdout bytes.Buffer
		err := runIngest(context.Background(), cfg, []payloadFile{{UserID: "alice", Path: path}}, nil, &stdout, discardLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var out report.JSONReport
		if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}
		if out.Report == nil || out.Report.UserID != "alice" {
			t.Fatalf("unexpected report: %+v", out.Report)
		}

		email, ok := findExposure(out.Report.Exposures, model.IngredientEmail)
		if !ok {
			t.Fatal("expected email_id exposure")
		}
		if email.ValueMasked == nil || *email.ValueMasked != "a****@b.com" {
			t.Errorf("expected masked email, got %v", email.ValueMasked)
		}
		if strings.Contains(stdout.String(), "a@b.com") {
			t.Error("raw email leaked into the report")
		}
		if out.Report.Aggregate.Score != 36.67 {
			t.Errorf("expected aggregate 36.67, got %v", out.Report.Aggregate.Score)
		}
	})

	t.Run("seeds empty catalog and stores the run", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		ingestFor(t, cfg, "alice")

		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		cat, err := db.LoadCatalog(context.Background())
		if err != nil {
			t.Fatalf("failed to load catalog: %v", err)
		}
		if cat.Size() != 30 {
			t.Errorf("expected seeded catalog of 30 ingredients, got %d", cat.Size())
		}

		runs, err := db.ListScanRuns(context.Background(), "alice")
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 stored run, got %d", len(runs))
		}
	})

	t.Run("several users as JSON lines", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.JSONReport = true
		dir := t.TempDir()
		files := []payloadFile{
			{UserID: "alice", Path: writeFile(t, dir, "a.json", testPayload)},
			{UserID: "bob", Path: writeFile(t, dir, "b.json", `{"webSearch": {"findings": []}}`)},
		}

		var stdout bytes.Buffer
		if err := runIngest(context.Background(), cfg, files, nil, &stdout, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		users := make(map[string]bool)
		scanner := bufio.NewScanner(&stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			var out report.JSONReport
			if err := json.Unmarshal(scanner.Bytes(), &out); err != nil {
				t.Fatalf("invalid JSON line: %v", err)
			}
			users[out.Report.UserID] = true
		}
		if !users["alice"] || !users["bob"] || len(users) != 2 {
			t.Errorf("expected one report per user, got %v", users)
		}
	})

	t.Run("markdown report file", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.MarkdownReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "reports", "alice.md")
		path := writeFile(t, t.TempDir(), "scan.json", testPayload)

		var stdout bytes.Buffer
		if err := runIngest(context.Background(), cfg, []payloadFile{{UserID: "alice", Path: path}}, nil, &stdout, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout.Len() != 0 {
			t.Error("expected nothing on stdout")
		}

		content, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(content), "# Exposure Report") {
			t.Error("expected markdown report")
		}
	})

	t.Run("no payloads", func(t *testing.T) {
		t.Parallel()

		if err := runIngest(context.Background(), testConfig(t), nil, nil, &bytes.Buffer{}, discardLogger()); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("decode failure runs nothing", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		dir := t.TempDir()
		files := []payloadFile{
			{UserID: "alice", Path: writeFile(t, dir, "a.json", testPayload)},
			{UserID: "bob", Path: writeFile(t, dir, "b.json", `"not a scan"`)},
		}

		if err := runIngest(context.Background(), cfg, files, nil, &bytes.Buffer{}, discardLogger()); err == nil {
			t.Fatal("expected error")
		}
		if _, err := os.Stat(filepath.Join(cfg.DBDir, database.DBFileName)); !os.IsNotExist(err) {
			t.Error("expected no database to be created")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		path := writeFile(t, t.TempDir(), "scan.json", testPayload)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := runIngest(ctx, cfg, []payloadFile{{UserID: "alice", Path: path}}, nil, &bytes.Buffer{}, discardLogger()); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

// TestIngestCmdStdin tests the ingest command reading a payload from stdin.
func TestIngestCmdStdin(t *testing.T) {
	t.Parallel()

	dbDir := t.TempDir()

	var stdout bytes.Buffer
	cmd := NewIngestCmd()
	cmd.SetIn(strings.NewReader(testPayload))
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--db-dir", dbDir, "-u", "carol", "-j", "-"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out report.JSONReport
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if out.Report == nil || out.Report.UserID != "carol" || out.Version == "" {
		t.Errorf("unexpected output: %+v", out)
	}
}
