package abcookie

// DefaultExperiment is the experiment key used when callers supply no
// experiment identifier. The bare cookie name prefix maps to this key.
const DefaultExperiment = "default"

// VariantPayload is the structured data carried inside a signed variant
// cookie value. It is a tagged struct with explicit fields; decoders reject
// unknown-shape payloads instead of coercing them.
//
// The payload never carries the subject identity — supplying a consistent
// subjectID at validation time is the caller's responsibility.
type VariantPayload struct {
	// Variant is the assigned experiment arm label.
	Variant string `json:"v"`
	// Signature is the truncated hex HMAC over (subjectID, variant, issued-at).
	// Derived, never independently settable.
	Signature string `json:"s"`
	// IssuedAtMs is the assignment timestamp in epoch milliseconds.
	IssuedAtMs int64 `json:"t"`
	// ID is a unique, time-ordered identifier for the assignment event.
	// Audit and dedup only; never a trust input.
	ID string `json:"id"`
	// Experiment is the optional experiment identifier. Absence means the
	// default experiment namespace.
	Experiment string `json:"e,omitempty"`
}

// InvalidReason classifies why a validation failed. All failed states are
// terminal from the verifier's point of view; callers re-issue via
// [Manager.CreateVariantCookie]. The classification exists for metrics and
// internal logging — production responses to untrusted clients should
// surface only the Valid bit.
type InvalidReason uint8

const (
	// ReasonValid is an exported constant or variable used by the variant cookie engine.
	ReasonValid InvalidReason = iota
	// ReasonMalformed is an exported constant or variable used by the variant cookie engine.
	ReasonMalformed
	// ReasonForged is an exported constant or variable used by the variant cookie engine.
	ReasonForged
	// ReasonStale is an exported constant or variable used by the variant cookie engine.
	ReasonStale
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently.
func (r InvalidReason) String() string {
	switch r {
	case ReasonValid:
		return "valid"
	case ReasonMalformed:
		return "malformed"
	case ReasonForged:
		return "forged"
	case ReasonStale:
		return "stale"
	default:
		return "unknown"
	}
}

// ValidationResult is returned by [Manager.ValidateVariant]. Invalid input
// is an expected, first-class outcome: the zero Valid field means "treat as
// first-time visitor", never an error to propagate.
type ValidationResult struct {
	Valid   bool
	Variant string
	Reason  InvalidReason
}

// Assignment is the resolved variant for a subject within an experiment,
// as produced by [Manager.AssignVariant] and carried through middleware
// request contexts.
type Assignment struct {
	SubjectID  string
	Experiment string
	Variant    string
	// Overridden marks assignments forced by the override store rather
	// than derived from the deterministic bucketer.
	Overridden bool
}

// Cache is the bounded lookup cache the hosting layer may inject to absorb
// repeated override-store reads. Implementations must be safe for
// concurrent use and must evict: the Manager never stores unbounded keys
// itself and treats the cache as strictly best-effort.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}
