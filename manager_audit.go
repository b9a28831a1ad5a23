package abcookie

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventAssign             = "variant_assign"
	auditEventAssignOverridden   = "variant_assign_overridden"
	auditEventAssignKilled       = "variant_assign_kill_switch"
	auditEventCookieIssued       = "variant_cookie_issued"
	auditEventCookieIssueFailure = "variant_cookie_issue_failure"
	auditEventValidateValid      = "variant_validate_valid"
	auditEventValidateRejected   = "variant_validate_rejected"
	auditEventTokenIssued        = "assignment_token_issued"
	auditEventTokenRejected      = "assignment_token_rejected"
)

// AuditErrorCode defines a public type used by abcookie APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidVariant    AuditErrorCode = "invalid_variant"
	auditErrInvalidExperiment AuditErrorCode = "invalid_experiment"
	auditErrMissingSubject    AuditErrorCode = "missing_subject"
	auditErrMalformed         AuditErrorCode = "malformed_payload"
	auditErrForged            AuditErrorCode = "signature_mismatch"
	auditErrStale             AuditErrorCode = "assignment_stale"
	auditErrTokenInvalid      AuditErrorCode = "invalid_token"
	auditErrUnavailable       AuditErrorCode = "backend_unavailable"
	auditErrInternal          AuditErrorCode = "internal_error"
)

// Unexported rejection markers so validation outcomes map onto stable
// audit error codes without leaking new sentinels into the public surface.
var (
	errMalformedPayload = errors.New("malformed payload")
	errForgedSignature  = errors.New("signature mismatch")
	errStaleAssignment  = errors.New("assignment stale")
)

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrInvalidVariant):
		return auditErrInvalidVariant
	case errors.Is(err, ErrExperimentIDInvalid):
		return auditErrInvalidExperiment
	case errors.Is(err, ErrSubjectIDMissing):
		return auditErrMissingSubject
	case errors.Is(err, ErrTokenInvalid):
		return auditErrTokenInvalid
	case errors.Is(err, errMalformedPayload):
		return auditErrMalformed
	case errors.Is(err, errForgedSignature):
		return auditErrForged
	case errors.Is(err, errStaleAssignment):
		return auditErrStale
	}
	return auditErrInternal
}

func (m *Manager) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subjectID string,
	experimentID string,
	variant string,
	assignmentID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if m == nil || m.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:    time.Now().UTC(),
		EventType:    eventType,
		SubjectID:    subjectID,
		Experiment:   experimentID,
		Variant:      variant,
		AssignmentID: assignmentID,
		IP:           clientIPFromContext(ctx),
		Success:      success,
		Metadata:     metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	m.audit.Emit(ctx, event)
}
