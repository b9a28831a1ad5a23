// Package middleware exposes HTTP middleware adapters that resolve variant
// assignments on top of abcookie.Manager.
//
// # Adapters
//
//   - [Assign] — validates the variant cookie, re-assigns and re-issues when
//     missing or invalid.
//   - [Observe] — same resolution, never writes a Set-Cookie.
//
// Each adapter resolves the subject through a caller-supplied
// [SubjectResolver], delegates the decision to the Manager, and injects the
// resulting [abcookie.Assignment] into the request context for handlers to
// read via [AssignmentFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Manager calls. It does NOT
// implement assignment or verification logic itself — all decisions are
// delegated to the Manager.
//
// # What this package must NOT do
//
//   - Decode or sign cookie payloads directly (delegates to the Manager).
//   - Access Redis (the Manager handles I/O).
//   - Fail a request because assignment failed; pages render without a
//     variant instead.
package middleware
