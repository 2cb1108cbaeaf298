package lock

import "errors"

var (
	// ErrInvalidUserID is returned when a user is added without an ID.
	ErrInvalidUserID = errors.New("lock: user ID must not be empty")

	// ErrInvalidLevel is returned for an unrecognised security level.
	ErrInvalidLevel = errors.New("lock: invalid security level")

	// ErrNoCredentials is returned when a user carries neither a code
	// nor a biometric identifier.
	ErrNoCredentials = errors.New("lock: user needs a code or biometric ID")
)
