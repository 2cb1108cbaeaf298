package emergency

import "github.com/quietroom/lockcore/internal/lock"

// Detection thresholds. Crossing a critical threshold makes Detect
// report an emergency; the warning thresholds only degrade the health
// report.
const (
	batteryWarn           = 10.0
	detectBatteryCritical = 5.0

	tempWarnMin   = -10.0
	tempWarnMax   = 60.0
	detectTempMin = -20.0
	detectTempMax = 80.0

	attemptsWarn         = 3
	detectFailedAttempts = 10
)

// CheckStatus grades a single health check.
type CheckStatus string

// Check grades.
const (
	CheckGood     CheckStatus = "good"
	CheckWarning  CheckStatus = "warning"
	CheckCritical CheckStatus = "critical"
)

// Report summarises the lock's health from an engine snapshot.
type Report struct {
	Overall         CheckStatus            `json:"overall_status"`
	Checks          map[string]CheckStatus `json:"checks"`
	Warnings        []string               `json:"warnings,omitempty"`
	CriticalIssues  []string               `json:"critical_issues,omitempty"`
	Recommendations []string               `json:"recommendations,omitempty"`
}

// HealthReport grades battery, temperature, connectivity and security
// posture. Overall is the worst individual grade.
func (m *Manager) HealthReport() Report {
	st := m.lk.Status()
	rep := Report{
		Overall: CheckGood,
		Checks:  make(map[string]CheckStatus, 4),
	}

	switch {
	case st.BatteryLevel <= detectBatteryCritical:
		rep.Checks["battery"] = CheckCritical
		rep.CriticalIssues = append(rep.CriticalIssues, "Battery critically low")
		rep.Recommendations = append(rep.Recommendations, "Replace battery immediately")
	case st.BatteryLevel <= batteryWarn:
		rep.Checks["battery"] = CheckWarning
		rep.Warnings = append(rep.Warnings, "Battery low")
		rep.Recommendations = append(rep.Recommendations, "Schedule battery replacement")
	default:
		rep.Checks["battery"] = CheckGood
	}

	switch {
	case st.Temperature <= detectTempMin || st.Temperature >= detectTempMax:
		rep.Checks["temperature"] = CheckCritical
		rep.CriticalIssues = append(rep.CriticalIssues, "Temperature outside operating range")
		rep.Recommendations = append(rep.Recommendations, "Inspect installation environment")
	case st.Temperature <= tempWarnMin || st.Temperature >= tempWarnMax:
		rep.Checks["temperature"] = CheckWarning
		rep.Warnings = append(rep.Warnings, "Temperature approaching limits")
	default:
		rep.Checks["temperature"] = CheckGood
	}

	if st.Connectivity {
		rep.Checks["connectivity"] = CheckGood
	} else {
		rep.Checks["connectivity"] = CheckWarning
		rep.Warnings = append(rep.Warnings, "Operating offline")
		rep.Recommendations = append(rep.Recommendations, "Check network connection")
	}

	switch {
	case st.FailedAttempts >= detectFailedAttempts || st.CurrentState == lock.StateTampered:
		rep.Checks["security"] = CheckCritical
		rep.CriticalIssues = append(rep.CriticalIssues, "Possible security breach")
		rep.Recommendations = append(rep.Recommendations, "Review access logs and reset security")
	case st.FailedAttempts >= attemptsWarn || st.IntrusionDetected:
		rep.Checks["security"] = CheckWarning
		rep.Warnings = append(rep.Warnings, "Elevated failed access attempts")
	default:
		rep.Checks["security"] = CheckGood
	}

	for _, grade := range rep.Checks {
		if grade == CheckCritical {
			rep.Overall = CheckCritical
			break
		}
		if grade == CheckWarning && rep.Overall == CheckGood {
			rep.Overall = CheckWarning
		}
	}
	return rep
}
