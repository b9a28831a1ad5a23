package abcookie

import "errors"

var (
	// ErrManagerNotReady is an exported constant or variable used by the variant cookie engine.
	ErrManagerNotReady = errors.New("manager not initialized")
	// ErrSecretMissing is an exported constant or variable used by the variant cookie engine.
	ErrSecretMissing = errors.New("signing secret required")
	// ErrSecretTooShort is an exported constant or variable used by the variant cookie engine.
	ErrSecretTooShort = errors.New("signing secret must be at least 32 bytes")
	// ErrInvalidVariant is an exported constant or variable used by the variant cookie engine.
	ErrInvalidVariant = errors.New("variant label not in configured set")
	// ErrExperimentIDInvalid is an exported constant or variable used by the variant cookie engine.
	ErrExperimentIDInvalid = errors.New("experiment id contains invalid characters")
	// ErrSubjectIDMissing is an exported constant or variable used by the variant cookie engine.
	ErrSubjectIDMissing = errors.New("subject id required")
	// ErrOverridesDisabled is an exported constant or variable used by the variant cookie engine.
	ErrOverridesDisabled = errors.New("override store not configured")
	// ErrOverridesRequireRedis is an exported constant or variable used by the variant cookie engine.
	ErrOverridesRequireRedis = errors.New("override store requires a redis client")
	// ErrTokenInvalid is an exported constant or variable used by the variant cookie engine.
	ErrTokenInvalid = errors.New("invalid assignment token")
)
