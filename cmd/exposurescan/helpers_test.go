package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/exposurescan/internal/config"
	"github.com/nao1215/exposurescan/internal/model"
)

// testPayload is a scan with one breached email address.
const testPayload = `{
  "emailBreach": {
    "email": "a@b.com",
    "found": true,
    "breaches": [
      {"domain": "x.com", "description": "leak", "dataClasses": ["Email addresses", "Passwords"]}
    ]
  }
}`

// discardLogger returns a logger that drops everything.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns a default config with a temporary database directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.DBDir = t.TempDir()
	return cfg
}

// writeFile writes content to name in dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// ingestFor fuses testPayload for userID into the database of cfg.
func ingestFor(t *testing.T, cfg *config.Config, userID string) {
	t.Helper()

	path := writeFile(t, t.TempDir(), "scan.json", testPayload)
	quiet := *cfg
	quiet.JSONReport = true

	err := runIngest(context.Background(), &quiet,
		[]payloadFile{{UserID: userID, Path: path}}, nil, io.Discard, discardLogger())
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
}

// findExposure returns the first exposure with the given ingredient key.
func findExposure(exposures []model.Exposure, key string) (model.Exposure, bool) {
	for _, e := range exposures {
		if e.IngredientKey == key {
			return e, true
		}
	}
	return model.Exposure{}, false
}
