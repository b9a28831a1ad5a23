package internaldefs

import (
	abcookie "github.com/brendadeeznuts1111/abcookie"
)

// CounterDef defines a public type used by abcookie APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   abcookie.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by abcookie APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   abcookie.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the variant cookie engine.
var CounterDefs = []CounterDef{
	{ID: abcookie.MetricAssign, Name: "abcookie_assign_total", Help: "Variant assignments resolved."},
	{ID: abcookie.MetricOverrideApplied, Name: "abcookie_override_applied_total", Help: "Assignments forced by an operator override."},
	{ID: abcookie.MetricKillSwitchApplied, Name: "abcookie_kill_switch_applied_total", Help: "Assignments forced to control by a kill switch."},
	{ID: abcookie.MetricOverrideLookupFailed, Name: "abcookie_override_lookup_failed_total", Help: "Override store lookups that failed or returned unusable data."},
	{ID: abcookie.MetricCookieIssued, Name: "abcookie_cookie_issued_total", Help: "Variant cookies issued."},
	{ID: abcookie.MetricValidateValid, Name: "abcookie_validate_valid_total", Help: "Variant cookies accepted as valid."},
	{ID: abcookie.MetricValidateMalformed, Name: "abcookie_validate_malformed_total", Help: "Variant cookies rejected as malformed."},
	{ID: abcookie.MetricValidateForged, Name: "abcookie_validate_forged_total", Help: "Variant cookies rejected for signature mismatch."},
	{ID: abcookie.MetricValidateStale, Name: "abcookie_validate_stale_total", Help: "Variant cookies rejected as stale."},
	{ID: abcookie.MetricExtractEntry, Name: "abcookie_extract_entry_total", Help: "Variant cookies extracted from Cookie headers."},
	{ID: abcookie.MetricExtractSkipped, Name: "abcookie_extract_skipped_total", Help: "Malformed variant cookies skipped during extraction."},
	{ID: abcookie.MetricTokenIssued, Name: "abcookie_token_issued_total", Help: "Assignment tokens issued."},
	{ID: abcookie.MetricTokenRejected, Name: "abcookie_token_rejected_total", Help: "Assignment tokens rejected."},
}

// HistogramDefs is an exported constant or variable used by the variant cookie engine.
var HistogramDefs = []HistogramDef{
	{ID: abcookie.MetricValidateLatency, Name: "abcookie_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the variant cookie engine.
var HistogramBounds = []string{
	"0.000005",
	"0.00001",
	"0.000025",
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the variant cookie engine.
var HistogramBoundSuffix = []string{
	"5us",
	"10us",
	"25us",
	"50us",
	"100us",
	"250us",
	"500us",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
