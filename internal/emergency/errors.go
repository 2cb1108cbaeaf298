package emergency

import "errors"

var (
	// ErrUnknownType is returned for an emergency type with no protocol.
	ErrUnknownType = errors.New("emergency: unknown emergency type")

	// ErrInvalidOverride is returned when an override code does not match
	// any registered role.
	ErrInvalidOverride = errors.New("emergency: invalid override code")

	// ErrActionFailed is returned when the lock engine rejected the
	// protocol's primary action.
	ErrActionFailed = errors.New("emergency: protocol action rejected by engine")
)
