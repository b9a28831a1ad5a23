package abcookie

import "context"

// SetOverride describes the setoverride operation and its observable behavior.
//
// SetOverride may return an error when input validation, dependency calls, or security checks fail.
// SetOverride does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The forced variant takes effect on the next [Manager.AssignVariant] call
// for the subject, including in this process: the local lookup cache entry
// is invalidated so the write is not masked by a stale cached value.
func (m *Manager) SetOverride(ctx context.Context, experimentID, subjectID, variant string) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if m.overrides == nil {
		return ErrOverridesDisabled
	}
	if !validExperimentID(experimentID) {
		return ErrExperimentIDInvalid
	}
	if !m.buckets.Contains(variant) {
		return ErrInvalidVariant
	}
	experiment := normalizeExperiment(experimentID)

	if err := m.overrides.SetOverride(ctx, experiment, subjectID, variant); err != nil {
		return err
	}
	m.invalidateOverride(experiment, subjectID)
	return nil
}

// ClearOverride describes the clearoverride operation and its observable behavior.
//
// ClearOverride may return an error when input validation, dependency calls, or security checks fail.
// ClearOverride does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) ClearOverride(ctx context.Context, experimentID, subjectID string) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if m.overrides == nil {
		return ErrOverridesDisabled
	}
	if !validExperimentID(experimentID) {
		return ErrExperimentIDInvalid
	}
	experiment := normalizeExperiment(experimentID)

	if err := m.overrides.ClearOverride(ctx, experiment, subjectID); err != nil {
		return err
	}
	m.invalidateOverride(experiment, subjectID)
	return nil
}

// SetKillSwitch describes the setkillswitch operation and its observable behavior.
//
// SetKillSwitch may return an error when input validation, dependency calls, or security checks fail.
// SetKillSwitch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) SetKillSwitch(ctx context.Context, experimentID string) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if m.overrides == nil {
		return ErrOverridesDisabled
	}
	if !validExperimentID(experimentID) {
		return ErrExperimentIDInvalid
	}
	experiment := normalizeExperiment(experimentID)

	if err := m.overrides.SetKillSwitch(ctx, experiment); err != nil {
		return err
	}
	m.invalidateKillSwitch(experiment)
	return nil
}

// ClearKillSwitch describes the clearkillswitch operation and its observable behavior.
//
// ClearKillSwitch may return an error when input validation, dependency calls, or security checks fail.
// ClearKillSwitch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) ClearKillSwitch(ctx context.Context, experimentID string) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if m.overrides == nil {
		return ErrOverridesDisabled
	}
	if !validExperimentID(experimentID) {
		return ErrExperimentIDInvalid
	}
	experiment := normalizeExperiment(experimentID)

	if err := m.overrides.ClearKillSwitch(ctx, experiment); err != nil {
		return err
	}
	m.invalidateKillSwitch(experiment)
	return nil
}

// Cache entries are read-through only: writes through this Manager drop the
// key and let the next lookup repopulate it. Writes from another process
// stay invisible locally until eviction.
func (m *Manager) invalidateOverride(experiment, subjectID string) {
	if m.cache != nil {
		m.cache.Delete("ov:" + experiment + ":" + subjectID)
	}
}

func (m *Manager) invalidateKillSwitch(experiment string) {
	if m.cache != nil {
		m.cache.Delete("ks:" + experiment)
	}
}
