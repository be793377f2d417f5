// Package platform maps platform names reported by scanners to catalog
// ingredient keys.
//
// Two independent lookups exist. MapPlatform handles full platform strings
// such as search result domains or display names ("Instagram",
// "twitter.com/jdoe") using ordered substring checks. MapAlias handles the
// short account-type labels produced by research tools ("ig", "fb", "wa")
// using an exact-match table. The tables are not merged: callers pick the one
// that matches the shape of their input.
package platform
