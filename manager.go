package abcookie

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/brendadeeznuts1111/abcookie/bucket"
	"github.com/brendadeeznuts1111/abcookie/overrides"
	"github.com/brendadeeznuts1111/abcookie/sign"
	"github.com/brendadeeznuts1111/abcookie/token"
)

// Manager defines a public type used by abcookie APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config    Config
	signer    *sign.Signer
	buckets   *bucket.Assigner
	overrides *overrides.Store
	cache     Cache
	audit     *auditDispatcher
	metrics   *Metrics
	tokens    *token.Manager
	clock     func() time.Time
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	if m.audit != nil {
		m.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

// CookieName describes the cookiename operation and its observable behavior.
//
// CookieName may return an error when input validation, dependency calls, or security checks fail.
// CookieName does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) CookieName(experimentID string) string {
	return m.cookieName(normalizeExperiment(experimentID))
}

// Variants describes the variants operation and its observable behavior.
//
// Variants may return an error when input validation, dependency calls, or security checks fail.
// Variants does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Variants() []string {
	return m.buckets.Variants()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

// AssignVariant describes the assignvariant operation and its observable behavior.
//
// AssignVariant may return an error when input validation, dependency calls, or security checks fail.
// AssignVariant does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Resolution order is operator override, then kill switch, then the
// deterministic bucketer. Override-store failures degrade to deterministic
// assignment rather than failing the request.
func (m *Manager) AssignVariant(ctx context.Context, subjectID, experimentID string) (Assignment, error) {
	if m == nil {
		return Assignment{}, ErrManagerNotReady
	}
	if !validExperimentID(experimentID) {
		return Assignment{}, ErrExperimentIDInvalid
	}
	experiment := normalizeExperiment(experimentID)

	if m.overrides != nil {
		if variant, forced := m.lookupOverride(ctx, experiment, subjectID); forced {
			m.metricInc(MetricAssign)
			m.metricInc(MetricOverrideApplied)
			assignment := Assignment{
				SubjectID:  subjectID,
				Experiment: experiment,
				Variant:    variant,
				Overridden: true,
			}
			m.emitAudit(ctx, auditEventAssignOverridden, true, subjectID, experiment, variant, "", nil, nil)
			return assignment, nil
		}
		if m.lookupKillSwitch(ctx, experiment) {
			control := m.buckets.Control()
			m.metricInc(MetricAssign)
			m.metricInc(MetricKillSwitchApplied)
			assignment := Assignment{
				SubjectID:  subjectID,
				Experiment: experiment,
				Variant:    control,
				Overridden: true,
			}
			m.emitAudit(ctx, auditEventAssignKilled, true, subjectID, experiment, control, "", nil, nil)
			return assignment, nil
		}
	}

	variant := m.buckets.Assign(subjectID, experiment)
	m.metricInc(MetricAssign)
	m.emitAudit(ctx, auditEventAssign, true, subjectID, experiment, variant, "", nil, nil)

	return Assignment{
		SubjectID:  subjectID,
		Experiment: experiment,
		Variant:    variant,
	}, nil
}

func (m *Manager) lookupOverride(ctx context.Context, experiment, subjectID string) (string, bool) {
	cacheKey := "ov:" + experiment + ":" + subjectID
	if m.cache != nil {
		if variant, ok := m.cache.Get(cacheKey); ok {
			return variant, true
		}
	}

	variant, found, err := m.overrides.Override(ctx, experiment, subjectID)
	if err != nil {
		m.metricInc(MetricOverrideLookupFailed)
		log.Print("abcookie: override lookup failed, using deterministic assignment")
		return "", false
	}
	if !found {
		return "", false
	}
	if !m.buckets.Contains(variant) {
		// An operator forced a label outside the configured set. Honoring
		// it would break every consumer switching on the label.
		m.metricInc(MetricOverrideLookupFailed)
		log.Print("abcookie: override names an unknown variant, ignoring")
		return "", false
	}
	if m.cache != nil {
		m.cache.Set(cacheKey, variant)
	}
	return variant, true
}

func (m *Manager) lookupKillSwitch(ctx context.Context, experiment string) bool {
	cacheKey := "ks:" + experiment
	if m.cache != nil {
		if _, ok := m.cache.Get(cacheKey); ok {
			return true
		}
	}

	on, err := m.overrides.KillSwitch(ctx, experiment)
	if err != nil {
		m.metricInc(MetricOverrideLookupFailed)
		log.Print("abcookie: kill switch lookup failed, using deterministic assignment")
		return false
	}
	if on && m.cache != nil {
		m.cache.Set(cacheKey, "1")
	}
	return on
}

// CreateVariantCookie describes the createvariantcookie operation and its observable behavior.
//
// CreateVariantCookie may return an error when input validation, dependency calls, or security checks fail.
// CreateVariantCookie does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) CreateVariantCookie(ctx context.Context, subjectID, variant, experimentID string) (*http.Cookie, error) {
	if m == nil {
		return nil, ErrManagerNotReady
	}
	if !m.buckets.Contains(variant) {
		m.emitAudit(ctx, auditEventCookieIssueFailure, false, subjectID, experimentID, variant, "", ErrInvalidVariant, nil)
		return nil, ErrInvalidVariant
	}
	if !validExperimentID(experimentID) {
		m.emitAudit(ctx, auditEventCookieIssueFailure, false, subjectID, experimentID, variant, "", ErrExperimentIDInvalid, nil)
		return nil, ErrExperimentIDInvalid
	}
	experiment := normalizeExperiment(experimentID)

	issuedAt := m.clock().UnixMilli()
	assignmentID := newAssignmentID()

	payload := VariantPayload{
		Variant:    variant,
		Signature:  m.signer.Sign(signingSubject(subjectID), variant, issuedAt),
		IssuedAtMs: issuedAt,
		ID:         assignmentID,
	}
	if experiment != DefaultExperiment {
		payload.Experiment = experiment
	}

	value, err := encodePayload(payload)
	if err != nil {
		m.emitAudit(ctx, auditEventCookieIssueFailure, false, subjectID, experiment, variant, assignmentID, err, nil)
		return nil, err
	}

	cookie := &http.Cookie{
		Name:     m.cookieName(experiment),
		Value:    value,
		Path:     m.config.Cookie.Path,
		Domain:   m.config.Cookie.Domain,
		MaxAge:   m.config.Cookie.ExpiresDays * 86400,
		Secure:   m.config.Cookie.Secure,
		HttpOnly: m.config.Cookie.HTTPOnly,
		SameSite: m.config.Cookie.SameSite,
	}

	m.metricInc(MetricCookieIssued)
	m.emitAudit(ctx, auditEventCookieIssued, true, subjectID, experiment, variant, assignmentID, nil, nil)

	return cookie, nil
}

// ExtractAllVariants describes the extractallvariants operation and its observable behavior.
//
// ExtractAllVariants may return an error when input validation, dependency calls, or security checks fail.
// ExtractAllVariants does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The result maps experiment keys to the variant labels the client claims.
// No signature verification happens here; the labels are untrusted until
// [Manager.ValidateVariant] accepts them.
func (m *Manager) ExtractAllVariants(cookieHeader string) map[string]string {
	if m == nil || cookieHeader == "" {
		return map[string]string{}
	}

	cookies, err := http.ParseCookie(cookieHeader)
	if err != nil {
		log.Print("abcookie: unparseable Cookie header, no variants extracted")
		return map[string]string{}
	}

	out := make(map[string]string)
	for _, c := range cookies {
		experiment, ok := m.experimentKey(c.Name)
		if !ok {
			continue
		}
		payload, err := decodePayload(c.Value)
		if err != nil {
			m.metricInc(MetricExtractSkipped)
			log.Print("abcookie: skipping malformed variant cookie " + c.Name)
			continue
		}
		m.metricInc(MetricExtractEntry)
		out[experiment] = payload.Variant
	}
	return out
}

// ValidateVariant describes the validatevariant operation and its observable behavior.
//
// ValidateVariant may return an error when input validation, dependency calls, or security checks fail.
// ValidateVariant does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The subjectID must be the same identifier the cookie was issued for;
// a cookie replayed under a different subject fails as forged.
func (m *Manager) ValidateVariant(ctx context.Context, cookieValue, subjectID string) ValidationResult {
	if m == nil {
		return ValidationResult{Reason: ReasonMalformed}
	}
	if m.metrics != nil && m.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { m.metrics.Observe(MetricValidateLatency, time.Since(start)) }()
	}

	payload, err := decodePayload(cookieValue)
	if err != nil {
		m.metricInc(MetricValidateMalformed)
		m.emitAudit(ctx, auditEventValidateRejected, false, subjectID, "", "", "", errMalformedPayload, nil)
		return ValidationResult{Reason: ReasonMalformed}
	}
	experiment := normalizeExperiment(payload.Experiment)

	if !m.signer.Verify(signingSubject(subjectID), payload.Variant, payload.IssuedAtMs, payload.Signature) {
		m.metricInc(MetricValidateForged)
		m.emitAudit(ctx, auditEventValidateRejected, false, subjectID, experiment, payload.Variant, payload.ID, errForgedSignature, nil)
		return ValidationResult{Reason: ReasonForged}
	}

	// Age exactly at the window boundary is still fresh.
	age := m.clock().UnixMilli() - payload.IssuedAtMs
	if age > m.config.freshnessWindow().Milliseconds() {
		m.metricInc(MetricValidateStale)
		m.emitAudit(ctx, auditEventValidateRejected, false, subjectID, experiment, payload.Variant, payload.ID, errStaleAssignment, nil)
		return ValidationResult{Reason: ReasonStale}
	}

	m.metricInc(MetricValidateValid)
	m.emitAudit(ctx, auditEventValidateValid, true, subjectID, experiment, payload.Variant, payload.ID, nil, nil)

	return ValidationResult{
		Valid:   true,
		Variant: payload.Variant,
		Reason:  ReasonValid,
	}
}

// IssueAssignmentToken describes the issueassignmenttoken operation and its observable behavior.
//
// IssueAssignmentToken may return an error when input validation, dependency calls, or security checks fail.
// IssueAssignmentToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) IssueAssignmentToken(ctx context.Context, assignment Assignment) (string, error) {
	if m == nil || m.tokens == nil {
		return "", ErrManagerNotReady
	}
	if !m.buckets.Contains(assignment.Variant) {
		return "", ErrInvalidVariant
	}
	experiment := normalizeExperiment(assignment.Experiment)
	assignmentID := newAssignmentID()

	signed, err := m.tokens.CreateAssignment(signingSubject(assignment.SubjectID), experiment, assignment.Variant, assignmentID)
	if err != nil {
		return "", err
	}

	m.metricInc(MetricTokenIssued)
	m.emitAudit(ctx, auditEventTokenIssued, true, assignment.SubjectID, experiment, assignment.Variant, assignmentID, nil, nil)

	return signed, nil
}

// ParseAssignmentToken describes the parseassignmenttoken operation and its observable behavior.
//
// ParseAssignmentToken may return an error when input validation, dependency calls, or security checks fail.
// ParseAssignmentToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) ParseAssignmentToken(ctx context.Context, tokenStr string) (Assignment, error) {
	if m == nil || m.tokens == nil {
		return Assignment{}, ErrManagerNotReady
	}

	claims, err := m.tokens.ParseAssignment(tokenStr)
	if err != nil {
		m.metricInc(MetricTokenRejected)
		m.emitAudit(ctx, auditEventTokenRejected, false, "", "", "", "", ErrTokenInvalid, nil)
		return Assignment{}, ErrTokenInvalid
	}
	if !m.buckets.Contains(claims.Variant) {
		m.metricInc(MetricTokenRejected)
		m.emitAudit(ctx, auditEventTokenRejected, false, claims.Subject, claims.Experiment, claims.Variant, claims.AssignmentID, ErrTokenInvalid, nil)
		return Assignment{}, ErrTokenInvalid
	}

	return Assignment{
		SubjectID:  claims.Subject,
		Experiment: normalizeExperiment(claims.Experiment),
		Variant:    claims.Variant,
	}, nil
}

// signingSubject maps the anonymous caller onto a fixed key so signatures
// stay deterministic when no subject identity exists yet.
func signingSubject(subjectID string) string {
	if subjectID == "" {
		return "default"
	}
	return subjectID
}

func normalizeExperiment(experimentID string) string {
	if experimentID == "" {
		return DefaultExperiment
	}
	return experimentID
}

func newAssignmentID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// V7 needs randomness; fall back to V4 semantics via NewString.
		return uuid.NewString()
	}
	return id.String()
}
