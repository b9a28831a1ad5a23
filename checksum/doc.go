// Package checksum implements the fast, non-cryptographic integrity tag used
// for low-stakes "name=value|CHECKSUM" cookies and for deterministic bucket
// assignment input hashing.
package checksum
