// Package scoring turns a user's matched ingredient set into per-category
// threat scores, an aggregate vulnerability score and a per-source coverage
// breakdown.
//
// All functions are pure: they read an immutable model.Catalog and the set of
// distinct ingredient keys the user has triggered, and never touch storage.
package scoring
