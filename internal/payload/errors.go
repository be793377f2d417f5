package payload

import "errors"

var (
	// ErrNotObject is returned when the payload is not a JSON object.
	ErrNotObject = errors.New("scan payload is not a JSON object")

	// ErrBranchShape is recorded when a branch is present but none of the
	// known shapes could decode it.
	ErrBranchShape = errors.New("unrecognized branch shape")
)
