// Package main provides the entry point for the exposurescan CLI.
//
// exposurescan fuses the results of a personal-data exposure scan (breach
// lookups, password checks, web search and research narratives) into a
// per-user exposure snapshot and scores it against a threat catalog.
//
// Usage:
//
//	exposurescan catalog seed
//	exposurescan ingest --user alice scan.json
//	exposurescan report alice
//
// See --help for all available options.
package main

// main is the entry point for exposurescan.
func main() {
	Execute()
}
