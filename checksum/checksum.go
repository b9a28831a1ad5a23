package checksum

import (
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
)

// Delimiter separates the cookie payload from its checksum suffix.
// It cannot appear unescaped in names or values produced by this package.
const Delimiter = "|"

// NoChecksum is the sentinel reported as ExpectedHex when the input
// carries no delimiter at all.
const NoChecksum = "none"

var (
	// ErrNameInvalid is an exported constant or variable used by the variant cookie engine.
	ErrNameInvalid = errors.New("cookie name contains a reserved delimiter")
	// ErrValueInvalid is an exported constant or variable used by the variant cookie engine.
	ErrValueInvalid = errors.New("cookie value contains a reserved delimiter")
)

// Result defines a public type used by abcookie APIs.
//
// Result instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Result struct {
	Valid       bool
	Payload     string
	ExpectedHex string
	ActualHex   string
}

// Checksum computes the CRC-32 (IEEE) checksum of data.
//
// Checksum does not mutate shared global state and can be used concurrently.
// The algorithm is a well-known 32-bit checksum so that independent
// implementations agree bit-for-bit; it detects accidental corruption only
// and provides no protection against a motivated attacker.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Sign describes the sign operation and its observable behavior.
//
// Sign may return an error when input validation fails.
// Sign does not mutate shared global state and can be used concurrently.
//
// The output format is "name=value|XXXXXXXX" where XXXXXXXX is the CRC-32
// of "name=value" rendered as 8 uppercase hex digits.
func Sign(name, value string) (string, error) {
	if strings.ContainsAny(name, "="+Delimiter) {
		return "", ErrNameInvalid
	}
	if strings.Contains(value, Delimiter) {
		return "", ErrValueInvalid
	}

	payload := name + "=" + value
	return payload + Delimiter + checksumHex(payload), nil
}

// Verify describes the verify operation and its observable behavior.
//
// Verify never returns an error: malformed input is an expected outcome
// and is reported through the Valid field.
// Verify does not mutate shared global state and can be used concurrently.
//
// The input is split on the LAST delimiter occurrence so payloads that
// legitimately contain no "=" past the first one still verify. Hex
// comparison is case-insensitive.
func Verify(cookie string) Result {
	idx := strings.LastIndex(cookie, Delimiter)
	if idx < 0 {
		return Result{
			Valid:       false,
			Payload:     cookie,
			ExpectedHex: NoChecksum,
		}
	}

	payload := cookie[:idx]
	actual := cookie[idx+len(Delimiter):]
	expected := checksumHex(payload)

	return Result{
		Valid:       strings.EqualFold(expected, actual),
		Payload:     payload,
		ExpectedHex: expected,
		ActualHex:   actual,
	}
}

func checksumHex(payload string) string {
	return fmt.Sprintf("%08X", Checksum([]byte(payload)))
}
