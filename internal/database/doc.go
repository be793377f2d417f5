// Package database provides SQLite-based storage for exposurescan.
//
// This package implements the ExposureDB, which stores:
//   - The threat catalog (categories and ingredients), written only by seeding
//   - Per-user exposure and assessment snapshots
//   - Scan run history with the full report as JSON
//
// Design decision: We use SQLite (via modernc.org/sqlite) because the engine
// runs as a single process and needs transactional snapshot replacement, not
// a database server. The CGO-free driver keeps cross-compilation simple.
//
// Exposures and assessments are never updated in place. Each fusion run
// replaces the user's whole snapshot inside one transaction, so readers see
// either the previous run or the new one, never a mix.
package database
