// Package payload decodes the multi-branch scan result produced by the
// scanning collaborators.
//
// The collaborators disagree on shape: the branches may sit at the top level
// or inside a "results", "data" or "scan" wrapper, each branch may use one of
// several names and may itself be wrapped in "result" or "data", and field
// spellings vary between camelCase, snake_case and capitalized keys. Decode
// tries the known shapes for every branch independently. A branch that is
// missing or malformed is reported as absent; it never fails the others.
package payload
