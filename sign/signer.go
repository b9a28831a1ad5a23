package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
)

const (
	// DefaultTruncationLen is the default signature length in hex characters.
	// 16 hex chars (64 bits) resists brute-force forgery of a single cookie
	// while keeping the cookie small. This is a deliberate security/size
	// trade-off, not a full digest: against a well-resourced offline
	// attacker the margin is the truncation length, so callers wanting a
	// larger margin raise it via config.
	DefaultTruncationLen = 16

	// MinSecretLen is the minimum accepted secret length in bytes.
	MinSecretLen = 32

	maxTruncationLen = sha256.Size * 2
)

var (
	// ErrSecretMissing is an exported constant or variable used by the variant cookie engine.
	ErrSecretMissing = errors.New("signing secret required")
	// ErrSecretTooShort is an exported constant or variable used by the variant cookie engine.
	ErrSecretTooShort = errors.New("signing secret must be at least 32 bytes")
	// ErrTruncationLen is an exported constant or variable used by the variant cookie engine.
	ErrTruncationLen = errors.New("truncation length must be between 8 and 64 hex characters")
)

// Signer defines a public type used by abcookie APIs.
//
// Signer instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Signer struct {
	secret   []byte
	truncLen int
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation fails.
// New copies the secret; the Signer never exposes it afterwards, including
// through debug or introspection output.
func New(secret []byte, truncLen int) (*Signer, error) {
	if len(secret) == 0 {
		return nil, ErrSecretMissing
	}
	if len(secret) < MinSecretLen {
		return nil, ErrSecretTooShort
	}
	if truncLen == 0 {
		truncLen = DefaultTruncationLen
	}
	if truncLen < 8 || truncLen > maxTruncationLen {
		return nil, ErrTruncationLen
	}

	out := make([]byte, len(secret))
	copy(out, secret)
	return &Signer{secret: out, truncLen: truncLen}, nil
}

// Sign describes the sign operation and its observable behavior.
//
// Sign never fails for well-formed input and can be used concurrently.
//
// The signature is HMAC-SHA256 over the canonical message
// "subjectID:variant:timestampMs", hex encoded and truncated to the
// configured length.
func (s *Signer) Sign(subjectID, variant string, timestampMs int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(subjectID))
	mac.Write([]byte{':'})
	mac.Write([]byte(variant))
	mac.Write([]byte{':'})
	mac.Write([]byte(strconv.FormatInt(timestampMs, 10)))

	return hex.EncodeToString(mac.Sum(nil))[:s.truncLen]
}

// Verify describes the verify operation and its observable behavior.
//
// Verify does not mutate shared global state and can be used concurrently.
//
// Comparison uses hmac.Equal, never case-insensitive string equality, so a
// mismatch does not leak where the signatures diverge through timing.
func (s *Signer) Verify(subjectID, variant string, timestampMs int64, signature string) bool {
	expected := s.Sign(subjectID, variant, timestampMs)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// TruncationLen describes the truncationlen operation and its observable behavior.
//
// TruncationLen does not mutate shared global state and can be used concurrently.
func (s *Signer) TruncationLen() int {
	return s.truncLen
}

// String redacts the secret.
func (s *Signer) String() string {
	return fmt.Sprintf("sign.Signer{truncLen:%d, secret:REDACTED}", s.truncLen)
}

// GoString redacts the secret.
func (s *Signer) GoString() string {
	return s.String()
}
