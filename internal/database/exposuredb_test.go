package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/exposurescan/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*ExposureDB, func()) {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return db, cleanup
}

// seedTestCatalog writes a two-category catalog and returns it as loaded
// from the database.
func seedTestCatalog(t *testing.T, db *ExposureDB) *model.Catalog {
	t.Helper()

	categories := []model.ThreatCategory{
		{Key: "ACCOUNT_TAKEOVER", Name: "Account Takeover", Description: "accounts"},
		{Key: "SOCIAL_ENGINEERING", Name: "Social Engineering"},
	}
	ingredients := []model.ThreatIngredient{
		{Key: model.IngredientEmail, Name: "Email", CategoryKey: "ACCOUNT_TAKEOVER",
			DetectionSources: []model.DetectionSource{model.SourceBreach, model.SourceAIPrompt}},
		{Key: model.IngredientPasswordLeak, Name: "Password", CategoryKey: "ACCOUNT_TAKEOVER",
			DetectionSources: []model.DetectionSource{model.SourceBreach}},
		{Key: model.IngredientInstagram, Name: "Instagram", CategoryKey: "SOCIAL_ENGINEERING",
			DetectionSources: []model.DetectionSource{model.SourceSocialSearch}, PossibleScam: "giveaways"},
	}

	if _, err := db.SeedCatalog(context.Background(), categories, ingredients); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	catalog, err := db.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	return catalog
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, DBFileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, DBFileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Errorf("expected ErrDatabaseNotFound, got %v", err)
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

func TestSeedAndLoadCatalog(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()

		catalog := seedTestCatalog(t, db)
		if catalog.Size() != 3 {
			t.Fatalf("expected 3 ingredients, got %d", catalog.Size())
		}

		ing, ok := catalog.Ingredient(model.IngredientInstagram)
		if !ok {
			t.Fatal("instagram_profile missing")
		}
		if ing.ID == 0 || ing.ThreatCategoryID == 0 || ing.CategoryKey != "SOCIAL_ENGINEERING" {
			t.Errorf("ids not loaded: %+v", ing)
		}
		if ing.PossibleScam != "giveaways" || !ing.HasSource(model.SourceSocialSearch) {
			t.Errorf("unexpected ingredient: %+v", ing)
		}
		if got := catalog.CategoryIngredients("ACCOUNT_TAKEOVER"); len(got) != 2 {
			t.Errorf("expected 2 account takeover ingredients, got %v", got)
		}
	})

	t.Run("reseeding keeps ids", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()

		first := seedTestCatalog(t, db)
		second := seedTestCatalog(t, db)

		a, _ := first.Ingredient(model.IngredientEmail)
		b, _ := second.Ingredient(model.IngredientEmail)
		if a.ID != b.ID {
			t.Errorf("ingredient id changed on reseed: %d -> %d", a.ID, b.ID)
		}
		if second.Size() != 3 {
			t.Errorf("reseed duplicated rows: %d", second.Size())
		}
	})

	t.Run("unknown category rolls back", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()

		_, err := db.SeedCatalog(context.Background(),
			[]model.ThreatCategory{{Key: "A", Name: "A"}},
			[]model.ThreatIngredient{{Key: "x", Name: "x", CategoryKey: "B", DetectionSources: []model.DetectionSource{model.SourceBreach}}},
		)
		if !errors.Is(err, model.ErrUnknownCategory) {
			t.Fatalf("expected ErrUnknownCategory, got %v", err)
		}

		catalog, err := db.LoadCatalog(context.Background())
		if err != nil {
			t.Fatalf("failed to load catalog: %v", err)
		}
		if len(catalog.Categories()) != 0 {
			t.Error("expected category insert to be rolled back")
		}
	})

	t.Run("empty database yields empty catalog", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()

		catalog, err := db.LoadCatalog(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if catalog.Size() != 0 {
			t.Errorf("expected empty catalog, got %d", catalog.Size())
		}
	})
}

func TestReplaceSnapshot(t *testing.T) {
	t.Parallel()

	newSnapshot := func(catalog *model.Catalog, userID string) *Snapshot {
		email, _ := catalog.Ingredient(model.IngredientEmail)
		pwd, _ := catalog.Ingredient(model.IngredientPasswordLeak)
		cat, _ := catalog.Category("ACCOUNT_TAKEOVER")
		masked := "a****@b.com"

		return &Snapshot{
			UserID: userID,
			Exposures: []model.Exposure{
				{
					IngredientID: email.ID, IngredientKey: email.Key, Source: model.SourceBreach,
					EvidenceSnippet: "x.com: leak", Confidence: 0.95,
					DetectedAt: time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC), ValueMasked: &masked,
				},
				{
					IngredientID: pwd.ID, IngredientKey: pwd.Key, Source: model.SourceBreach,
					Confidence: 0.95, DetectedAt: time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
				},
			},
			Assessments: []model.ThreatAssessment{
				{ThreatID: cat.ID, ThreatKey: cat.Key, ThreatName: cat.Name, Score: 100,
					MatchedIngredients: []string{model.IngredientEmail, model.IngredientPasswordLeak}},
			},
		}
	}

	t.Run("stores and lists snapshot", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()
		catalog := seedTestCatalog(t, db)
		ctx := context.Background()

		snap := newSnapshot(catalog, "u1")
		if err := db.ReplaceSnapshot(ctx, snap); err != nil {
			t.Fatalf("failed to replace snapshot: %v", err)
		}
		if snap.Exposures[0].ID == 0 || snap.Assessments[0].ID == 0 {
			t.Error("expected ids to be filled in")
		}

		exposures, err := db.ListExposures(ctx, "u1")
		if err != nil {
			t.Fatalf("failed to list exposures: %v", err)
		}
		if len(exposures) != 2 {
			t.Fatalf("expected 2 exposures, got %d", len(exposures))
		}
		e := exposures[0]
		if e.IngredientKey != model.IngredientEmail || e.Source != model.SourceBreach || e.UserID != "u1" {
			t.Errorf("unexpected exposure: %+v", e)
		}
		if e.ValueMasked == nil || *e.ValueMasked != "a****@b.com" {
			t.Errorf("unexpected masked value: %v", e.ValueMasked)
		}
		if !e.DetectedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)) {
			t.Errorf("unexpected detected_at: %v", e.DetectedAt)
		}
		if exposures[1].ValueMasked != nil || exposures[1].EvidenceSnippet != "" {
			t.Errorf("expected nulls to round-trip, got %+v", exposures[1])
		}

		assessments, err := db.ListAssessments(ctx, "u1")
		if err != nil {
			t.Fatalf("failed to list assessments: %v", err)
		}
		if len(assessments) != 1 || assessments[0].Score != 100 || assessments[0].ThreatName != "Account Takeover" {
			t.Fatalf("unexpected assessments: %+v", assessments)
		}
		if len(assessments[0].MatchedIngredients) != 2 {
			t.Errorf("unexpected matched ingredients: %v", assessments[0].MatchedIngredients)
		}

		keys, err := db.MatchedIngredientKeys(ctx, "u1")
		if err != nil {
			t.Fatalf("failed to list matched keys: %v", err)
		}
		if len(keys) != 2 || keys[0] != model.IngredientEmail || keys[1] != model.IngredientPasswordLeak {
			t.Errorf("unexpected matched keys: %v", keys)
		}
	})

	t.Run("replaces previous snapshot and leaves other users alone", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()
		catalog := seedTestCatalog(t, db)
		ctx := context.Background()

		if err := db.ReplaceSnapshot(ctx, newSnapshot(catalog, "u1")); err != nil {
			t.Fatal(err)
		}
		if err := db.ReplaceSnapshot(ctx, newSnapshot(catalog, "u2")); err != nil {
			t.Fatal(err)
		}
		if err := db.ReplaceSnapshot(ctx, &Snapshot{UserID: "u1"}); err != nil {
			t.Fatal(err)
		}

		exposures, _ := db.ListExposures(ctx, "u1")
		assessments, _ := db.ListAssessments(ctx, "u1")
		if len(exposures) != 0 || len(assessments) != 0 {
			t.Errorf("expected empty snapshot for u1, got %d exposures and %d assessments", len(exposures), len(assessments))
		}

		others, _ := db.ListExposures(ctx, "u2")
		if len(others) != 2 {
			t.Errorf("expected u2 untouched, got %d exposures", len(others))
		}
	})

	t.Run("failed insert rolls back the delete", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()
		catalog := seedTestCatalog(t, db)
		ctx := context.Background()

		if err := db.ReplaceSnapshot(ctx, newSnapshot(catalog, "u1")); err != nil {
			t.Fatal(err)
		}

		bad := newSnapshot(catalog, "u1")
		bad.Exposures[1].IngredientID = 9999 // violates the foreign key
		if err := db.ReplaceSnapshot(ctx, bad); err == nil {
			t.Fatal("expected foreign key failure")
		}

		exposures, _ := db.ListExposures(ctx, "u1")
		if len(exposures) != 2 {
			t.Errorf("expected previous snapshot to survive, got %d exposures", len(exposures))
		}
	})

	t.Run("empty user id", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()

		if err := db.ReplaceSnapshot(context.Background(), &Snapshot{}); !errors.Is(err, ErrEmptyUserID) {
			t.Errorf("expected ErrEmptyUserID, got %v", err)
		}
	})

	t.Run("concurrent replacements never mix", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()
		catalog := seedTestCatalog(t, db)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := db.ReplaceSnapshot(ctx, newSnapshot(catalog, "u1")); err != nil {
					t.Errorf("replace failed: %v", err)
				}
			}()
		}
		wg.Wait()

		exposures, _ := db.ListExposures(ctx, "u1")
		if len(exposures) != 2 {
			t.Errorf("expected exactly one snapshot, got %d exposures", len(exposures))
		}
	})
}

func TestScanRuns(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reports := []*model.ScanReport{
		{RunID: "run-1", UserID: "u1", GeneratedAt: base, Aggregate: model.AggregateScore{Score: 30}},
		{RunID: "run-2", UserID: "u1", GeneratedAt: base.Add(time.Minute), Aggregate: model.AggregateScore{Score: 63.33, Risk: model.RiskHigh},
			Exposures: []model.Exposure{{IngredientKey: model.IngredientEmail}}},
		{RunID: "run-3", UserID: "u2", GeneratedAt: base.Add(2 * time.Minute), Aggregate: model.AggregateScore{Score: 30}},
	}
	for _, r := range reports {
		if _, err := db.SaveScanRun(ctx, r); err != nil {
			t.Fatalf("failed to save run %s: %v", r.RunID, err)
		}
	}

	latest, err := db.GetLatestScanRun(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to get latest run: %v", err)
	}
	if latest == nil || latest.RunID != "run-2" || latest.Aggregate.Risk != model.RiskHigh {
		t.Errorf("unexpected latest run: %+v", latest)
	}

	missing, err := db.GetLatestScanRun(ctx, "nobody")
	if err != nil || missing != nil {
		t.Errorf("expected nil report for unknown user, got %+v, %v", missing, err)
	}

	byID, err := db.GetScanRunByID(ctx, "run-3")
	if err != nil || byID == nil || byID.UserID != "u2" {
		t.Errorf("unexpected run by id: %+v, %v", byID, err)
	}

	runs, err := db.ListScanRuns(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "run-2" || runs[0].ExposureCount != 1 || runs[0].AggregateScore != 63.33 {
		t.Errorf("unexpected runs: %+v", runs)
	}
	if !runs[1].Timestamp.Equal(base) {
		t.Errorf("unexpected timestamp: %v", runs[1].Timestamp)
	}

	all, _ := db.ListScanRuns(ctx, "")
	if len(all) != 3 || all[0].RunID != "run-3" {
		t.Errorf("unexpected run list: %+v", all)
	}

	users, err := db.ListUsers(ctx)
	if err != nil {
		t.Fatalf("failed to list users: %v", err)
	}
	if len(users) != 2 || users[0] != "u1" || users[1] != "u2" {
		t.Errorf("unexpected users: %v", users)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-01-02T03:04:05.000000006Z", time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)},
		{"2026-01-02 03:04:05", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2026-01-02T03:04:05", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"garbage", time.Time{}},
	}
	for _, tt := range tests {
		if got := parseTimestamp(tt.in); !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := formatTimestamp(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)); got != "2026-01-02T03:04:05.000000000Z" {
		t.Errorf("unexpected format %q", got)
	}
}
