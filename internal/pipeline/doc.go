// Package pipeline fuses the branch results of one scan into a per-user
// exposure snapshot and scores it.
//
// A fusion run is executed as a sequence of steps over a ScanRun: the
// catalog is loaded, the branch collectors turn the decoded payload into
// candidates, candidates are deduplicated and resolved against the catalog,
// the user's snapshot is replaced in one transaction, and the report is
// scored and stored in the run history.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. Each stage can be tested on its own with a hand-built ScanRun
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between stages
//
// The Engine runs the pipeline under a per-user lock, and the
// BatchProcessor runs many fusion runs concurrently using errgroup.
package pipeline
