// Package abcookie provides deterministic A/B variant assignment with
// signed, self-contained variant cookies, Redis-backed operator overrides,
// and signed assignment tokens for cross-service propagation.
//
// The package is designed for concurrent server workloads: Manager methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// abcookie is the public surface. It exposes [Manager], [Builder], [Config],
// and value types (Assignment, ValidationResult, MetricsSnapshot, etc.).
// The hashing, signing, bucketing, override, and token mechanics live in
// the bucket, checksum, sign, overrides, and token sub-packages.
//
// # What this package must NOT do
//
//   - Embed the subject identity or the signing secret inside cookie payloads.
//   - Trust any client-presented value before [Manager.ValidateVariant]
//     accepts it.
//   - Fail a request because the override store is unreachable; assignment
//     degrades to the deterministic bucketer.
//
// # Performance contract
//
// AssignVariant and ValidateVariant are the hot paths. With overrides
// disabled both are pure CPU work with no network round-trips. With
// overrides enabled, AssignVariant is allowed at most two Redis round-trips
// per call, short-circuited by the injected cache when one is configured.
package abcookie
