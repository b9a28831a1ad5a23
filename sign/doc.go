// Package sign computes keyed, truncated HMAC-SHA256 signatures over variant
// assignments, providing tamper evidence for variant cookies under a secret
// key that is never exposed after construction.
package sign
