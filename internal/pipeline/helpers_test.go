package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/nao1215/exposurescan/internal/catalog"
	"github.com/nao1215/exposurescan/internal/database"
	"github.com/nao1215/exposurescan/internal/model"
	"github.com/nao1215/exposurescan/internal/payload"
)

// discardLogger returns a logger that drops all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestDB opens a temporary database seeded with the default catalog.
func setupTestDB(t *testing.T) *database.ExposureDB {
	t.Helper()

	db := openEmptyDB(t)

	seed, err := catalog.Default()
	if err != nil {
		t.Fatalf("failed to parse default catalog: %v", err)
	}
	if _, err := db.SeedCatalog(context.Background(), seed.Categories, seed.Ingredients); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	return db
}

// openEmptyDB opens a temporary database without a catalog.
func openEmptyDB(t *testing.T) *database.ExposureDB {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// newTestEngine creates an engine over a seeded temporary database.
func newTestEngine(t *testing.T, opts ...EngineOption) (*Engine, *database.ExposureDB) {
	t.Helper()

	db := setupTestDB(t)
	opts = append([]EngineOption{WithEngineLogger(discardLogger())}, opts...)
	return NewEngine(db, opts...), db
}

// failingStore wraps a Store and fails selected operations.
type failingStore struct {
	Store
	replaceErr error
	saveErr    error
}

func (s *failingStore) ReplaceSnapshot(ctx context.Context, snap *database.Snapshot) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	return s.Store.ReplaceSnapshot(ctx, snap)
}

func (s *failingStore) SaveScanRun(ctx context.Context, report *model.ScanReport) (int64, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	return s.Store.SaveScanRun(ctx, report)
}

// funcCollector is a Collector backed by a function.
type funcCollector struct {
	branch  payload.Branch
	collect func(ctx context.Context, p *payload.ScanPayload) ([]model.Candidate, error)
}

func (c *funcCollector) Branch() payload.Branch {
	return c.branch
}

func (c *funcCollector) Collect(ctx context.Context, p *payload.ScanPayload) ([]model.Candidate, error) {
	return c.collect(ctx, p)
}

// emailBreachPayload is a single breach of a@b.com that leaked passwords.
func emailBreachPayload() *payload.ScanPayload {
	return &payload.ScanPayload{
		EmailBreach: &payload.EmailBreach{
			Email: "a@b.com",
			Found: true,
			Breaches: []payload.Breach{
				{Domain: "x.com", Description: "leak", DataClasses: []string{"Email addresses", "Passwords"}},
			},
		},
	}
}

// exposureKeys returns the ingredient keys of exposures in order.
func exposureKeys(exposures []model.Exposure) []string {
	keys := make([]string, len(exposures))
	for i, e := range exposures {
		keys[i] = e.IngredientKey
	}
	return keys
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
