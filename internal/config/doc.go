// Package config provides configuration structures and utilities for
// exposurescan. It defines the engine limits, storage location, catalog
// source and report generation preferences, and loads overrides from a
// YAML configuration file.
package config
