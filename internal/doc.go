// Package internal contains helper utilities that are intentionally private to abcookie.
//
// # Sub-packages
//
//   - lru — bounded least-recently-used cache backing override lookups
//
// # What this package must NOT do
//
//   - Export types that appear in the public abcookie API.
//   - Be imported by any package outside the abcookie module.
package internal
