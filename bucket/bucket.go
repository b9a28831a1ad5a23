package bucket

import (
	"errors"

	"github.com/brendadeeznuts1111/abcookie/checksum"
)

// ErrNoVariants is an exported constant or variable used by the variant cookie engine.
var ErrNoVariants = errors.New("at least one variant label required")

// ErrEmptyVariant is an exported constant or variable used by the variant cookie engine.
var ErrEmptyVariant = errors.New("variant labels must be non-empty")

// DefaultVariants is the label set used when callers configure none.
var DefaultVariants = []string{"A", "B"}

// Assigner defines a public type used by abcookie APIs.
//
// Assigner instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Assigner struct {
	variants []string
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation fails.
// New copies the label slice so later caller mutation cannot change
// assignment results.
func New(variants []string) (*Assigner, error) {
	if len(variants) == 0 {
		return nil, ErrNoVariants
	}
	for _, v := range variants {
		if v == "" {
			return nil, ErrEmptyVariant
		}
	}

	out := make([]string, len(variants))
	copy(out, variants)
	return &Assigner{variants: out}, nil
}

// Assign describes the assign operation and its observable behavior.
//
// Assign does not mutate shared global state and can be used concurrently.
//
// The label is a pure function of (subjectID, experimentID): the CRC-32 of
// their concatenation modulo the variant count. Calling it twice, or from a
// different process, always yields the same label — there is no stored
// assignment table. Empty inputs are well-defined, but an empty subjectID
// collapses all anonymous visitors into one bucket per experiment; treating
// that as a policy error is the caller's responsibility.
func (a *Assigner) Assign(subjectID, experimentID string) string {
	sum := checksum.Checksum([]byte(subjectID + experimentID))
	return a.variants[int(sum%uint32(len(a.variants)))]
}

// Variants describes the variants operation and its observable behavior.
//
// Variants does not mutate shared global state and can be used concurrently.
func (a *Assigner) Variants() []string {
	out := make([]string, len(a.variants))
	copy(out, a.variants)
	return out
}

// Contains describes the contains operation and its observable behavior.
//
// Contains does not mutate shared global state and can be used concurrently.
func (a *Assigner) Contains(variant string) bool {
	for _, v := range a.variants {
		if v == variant {
			return true
		}
	}
	return false
}

// Control returns the first configured label. Kill switches force an
// experiment into this label.
func (a *Assigner) Control() string {
	return a.variants[0]
}
