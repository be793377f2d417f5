// Package mask turns raw sensitive values into display-safe strings before
// they are persisted.
//
// Masking is lossy and one-way. It is meant for display only and is never a
// reversible or cryptographic transform.
//
// Rules, applied in order:
//   - empty value: nothing to store
//   - email_id with exactly one "@": first character of the local part, then
//     stars, then the full domain
//   - phone-shaped value (optional "+", at least six digits): first three and
//     last two characters kept
//   - longer than eight characters: first three and last three kept
//   - anything else is returned unchanged
package mask
