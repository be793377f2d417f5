package pipeline

import "errors"

var (
	// ErrCatalogEmpty is returned when the catalog has no ingredients.
	// Seed the catalog before running a scan.
	ErrCatalogEmpty = errors.New("threat catalog is empty")

	// ErrEmptyUserID is returned when a scan has no subject.
	ErrEmptyUserID = errors.New("user id is empty")

	// ErrNilPayload is returned when ProcessScan is called without a payload.
	ErrNilPayload = errors.New("scan payload is nil")

	// ErrBranchPanic is recorded when a branch collector panics.
	ErrBranchPanic = errors.New("branch collector panicked")
)
