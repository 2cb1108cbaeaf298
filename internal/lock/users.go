package lock

import "time"

// SecurityLevel is an ordered authorization tier. Comparisons are numeric:
// a level authorizes an action when it is >= the required level.
type SecurityLevel int

// Authorization tiers, lowest to highest.
const (
	LevelGuest SecurityLevel = iota + 1
	LevelUser
	LevelAdmin
	LevelEmergency
)

func (l SecurityLevel) String() string {
	switch l {
	case LevelGuest:
		return "guest"
	case LevelUser:
		return "user"
	case LevelAdmin:
		return "admin"
	case LevelEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// IsValid reports whether l is a recognised security level.
func (l SecurityLevel) IsValid() bool {
	return l >= LevelGuest && l <= LevelEmergency
}

// AuthorizedUser is one entry in the lock's user registry.
type AuthorizedUser struct {
	// ID uniquely identifies the user. The "admin" ID is reserved and
	// cannot be removed.
	ID string `json:"id"`

	// Level gates which commands the user may issue.
	Level SecurityLevel `json:"level"`

	// Code is the shared-secret keypad code.
	Code string `json:"-"`

	// BiometricID is the stored biometric identifier, empty if the user
	// has not enrolled a biometric credential.
	BiometricID string `json:"-"`

	// ExpiresAt, when set, bounds the credential's validity: the user
	// authenticates only while now < ExpiresAt.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// expired reports whether the user's credentials have lapsed at now.
func (u AuthorizedUser) expired(now time.Time) bool {
	return u.ExpiresAt != nil && !now.Before(*u.ExpiresAt)
}
