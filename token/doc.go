// Package token issues and verifies signed assignment tokens.
//
// An assignment token captures one (subject, experiment, variant) decision
// as an HS256 JWT so that a frontend or a downstream service can carry the
// assignment across origins where the variant cookie itself does not
// travel. Tokens expire with the same horizon as the cookie they mirror.
package token
