// Package model defines the core data structures used throughout exposurescan.
//
// This package contains the following main types:
//   - ThreatCategory / ThreatIngredient / Catalog: the static threat catalog
//   - Candidate: an unresolved exposure produced by a scan branch
//   - Exposure: a persisted, masked user ingredient exposure
//   - ThreatAssessment: a per-category score derived from exposures
//   - ScanReport: the consolidated result of one fusion run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The extractor, pipeline, scoring, database and report packages
// all need these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
