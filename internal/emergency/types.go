package emergency

import "time"

// Type classifies an emergency condition. Values travel over MQTT and
// the API, so they stay stable snake_case strings.
type Type string

// All emergency types.
const (
	TypeFireAlarm           Type = "fire_alarm"
	TypeMedicalEmergency    Type = "medical_emergency"
	TypePowerFailure        Type = "power_failure"
	TypeSecurityBreach      Type = "security_breach"
	TypeSystemMalfunction   Type = "system_malfunction"
	TypeNaturalDisaster     Type = "natural_disaster"
	TypeLockoutEmergency    Type = "lockout_emergency"
	TypeBatteryCritical     Type = "battery_critical"
	TypeConnectivityFailure Type = "connectivity_failure"
)

// AllTypes lists every emergency type, in declaration order.
func AllTypes() []Type {
	return []Type{
		TypeFireAlarm, TypeMedicalEmergency, TypePowerFailure,
		TypeSecurityBreach, TypeSystemMalfunction, TypeNaturalDisaster,
		TypeLockoutEmergency, TypeBatteryCritical, TypeConnectivityFailure,
	}
}

// IsValid reports whether t is a recognised emergency type.
func (t Type) IsValid() bool {
	for _, known := range AllTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// FailsafeMode is the posture the lock falls back to while a protocol
// is active.
type FailsafeMode string

// Failsafe modes.
const (
	FailSecure   FailsafeMode = "fail_secure"   // stay or become locked
	FailSafe     FailsafeMode = "fail_safe"     // stay or become unlocked
	FailMaintain FailsafeMode = "fail_maintain" // hold the current state
)

// Action is the primary lock operation a protocol performs.
type Action string

// Protocol actions.
const (
	ActionImmediateUnlock Action = "immediate_unlock"
	ActionEmergencyUnlock Action = "emergency_unlock"
	ActionSecureLock      Action = "secure_lock"
	ActionMaintainState   Action = "maintain_state"
	ActionSafeMode        Action = "safe_mode"
	ActionLowPowerMode    Action = "low_power_mode"
	ActionOfflineMode     Action = "offline_mode"
	ActionTemporaryUnlock Action = "temporary_unlock"
)

// Priority orders concurrent emergencies; lower is more urgent.
type Priority int

// Priorities.
const (
	PriorityCritical Priority = 1
	PriorityHigh     Priority = 2
	PriorityMedium   Priority = 3
)

// Protocol is the prescribed response to one emergency type.
type Protocol struct {
	Action              Action
	Failsafe            FailsafeMode
	NotifyContacts      bool
	DisableAutoRelock   bool
	ActivateAlarm       bool
	DisableRemoteAccess bool
	ActivateBackupPower bool
	ReduceFunctionality bool
	RequireVerification bool
	Priority            Priority
	ResponseTime        time.Duration
}

// defaultProtocols maps each emergency type to its response. Response
// times are targets for the whole protocol, not per-step deadlines.
func defaultProtocols() map[Type]Protocol {
	return map[Type]Protocol{
		TypeFireAlarm: {
			Action:            ActionImmediateUnlock,
			Failsafe:          FailSafe,
			NotifyContacts:    true,
			DisableAutoRelock: true,
			ActivateAlarm:     true,
			Priority:          PriorityCritical,
			ResponseTime:      1 * time.Second,
		},
		TypeMedicalEmergency: {
			Action:            ActionEmergencyUnlock,
			Failsafe:          FailSafe,
			NotifyContacts:    true,
			DisableAutoRelock: true,
			Priority:          PriorityCritical,
			ResponseTime:      2 * time.Second,
		},
		TypePowerFailure: {
			Action:              ActionMaintainState,
			Failsafe:            FailSecure,
			NotifyContacts:      true,
			ActivateBackupPower: true,
			Priority:            PriorityHigh,
			ResponseTime:        5 * time.Second,
		},
		TypeSecurityBreach: {
			Action:              ActionSecureLock,
			Failsafe:            FailSecure,
			NotifyContacts:      true,
			ActivateAlarm:       true,
			DisableRemoteAccess: true,
			Priority:            PriorityCritical,
			ResponseTime:        1 * time.Second,
		},
		TypeSystemMalfunction: {
			Action:         ActionSafeMode,
			Failsafe:       FailMaintain,
			NotifyContacts: true,
			Priority:       PriorityHigh,
			ResponseTime:   3 * time.Second,
		},
		TypeNaturalDisaster: {
			Action:            ActionEmergencyUnlock,
			Failsafe:          FailSafe,
			NotifyContacts:    true,
			DisableAutoRelock: true,
			Priority:          PriorityCritical,
			ResponseTime:      1 * time.Second,
		},
		TypeLockoutEmergency: {
			Action:              ActionTemporaryUnlock,
			Failsafe:            FailSecure,
			NotifyContacts:      true,
			RequireVerification: true,
			Priority:            PriorityMedium,
			ResponseTime:        10 * time.Second,
		},
		TypeBatteryCritical: {
			Action:              ActionLowPowerMode,
			Failsafe:            FailSecure,
			NotifyContacts:      true,
			ReduceFunctionality: true,
			Priority:            PriorityHigh,
			ResponseTime:        5 * time.Second,
		},
		TypeConnectivityFailure: {
			Action:   ActionOfflineMode,
			Failsafe: FailMaintain,
			Priority: PriorityMedium,
			// Connectivity loss is tolerated for a while before the
			// protocol is considered late.
			ResponseTime: 30 * time.Second,
		},
	}
}

// Contact is someone to notify when a protocol fires.
type Contact struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Priority int    `json:"priority"`
}

// defaultContacts returns the built-in notification list, ordered by
// priority. Installations replace these through Manager options.
func defaultContacts() []Contact {
	return []Contact{
		{Name: "Fire Department", Role: "fire", Phone: "911", Priority: 1},
		{Name: "Police", Role: "police", Phone: "911", Priority: 1},
		{Name: "Medical Services", Role: "medical", Phone: "911", Priority: 1},
		{Name: "Property Manager", Role: "property", Phone: "+1-555-0100", Priority: 2},
		{Name: "Security Company", Role: "security", Phone: "+1-555-0101", Priority: 2},
		{Name: "Maintenance", Role: "maintenance", Phone: "+1-555-0102", Priority: 3},
	}
}

// defaultOverrideCodes maps override roles to their codes. Codes are
// never logged in full; see Manager.ProcessOverride.
func defaultOverrideCodes() map[string]string {
	return map[string]string{
		"fire_department": "FIRE911",
		"police":          "POLICE911",
		"medical":         "MED911",
		"maintenance":     "MAINT2024",
		"master_override": "MASTER999",
	}
}

// Record is one entry in the emergency activation log.
type Record struct {
	Timestamp  time.Time    `json:"timestamp"`
	Type       Type         `json:"emergency_type"`
	Source     string       `json:"source"`
	Action     Action       `json:"action"`
	Failsafe   FailsafeMode `json:"failsafe_mode"`
	Priority   Priority     `json:"priority"`
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	StateAfter string       `json:"state_after"`
}
