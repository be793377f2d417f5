package catalog

import "errors"

var (
	// ErrEmptyKey is returned when a category or ingredient has no key.
	ErrEmptyKey = errors.New("catalog entry has an empty key")

	// ErrUnknownSource is returned when an ingredient declares a detection
	// source that does not exist.
	ErrUnknownSource = errors.New("ingredient declares an unknown detection source")

	// ErrNoSources is returned when an ingredient declares no detection source.
	ErrNoSources = errors.New("ingredient declares no detection source")

	// ErrEmpty is returned when a seed has no ingredients.
	ErrEmpty = errors.New("catalog seed has no ingredients")
)
