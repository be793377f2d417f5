package pipeline

import (
	"context"

	"github.com/nao1215/exposurescan/internal/database"
	"github.com/nao1215/exposurescan/internal/model"
)

// Store is the storage the fusion pipeline needs.
// *database.ExposureDB implements it.
type Store interface {
	// LoadCatalog returns the threat catalog.
	LoadCatalog(ctx context.Context) (*model.Catalog, error)

	// ReplaceSnapshot atomically replaces a user's exposures and assessments.
	ReplaceSnapshot(ctx context.Context, snap *database.Snapshot) error

	// SaveScanRun appends a report to the run history.
	SaveScanRun(ctx context.Context, report *model.ScanReport) (int64, error)

	// MatchedIngredientKeys returns the distinct ingredient keys stored for
	// a user.
	MatchedIngredientKeys(ctx context.Context, userID string) ([]string, error)
}

var _ Store = (*database.ExposureDB)(nil)
