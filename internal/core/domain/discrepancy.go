package domain

// Severity grades how serious a discrepancy or finding is.
type Severity int

const (
	// SeverityInfo marks a benign observation, such as a newly added framework.
	SeverityInfo Severity = iota
	// SeverityWarning marks a mismatch that should be reviewed.
	SeverityWarning
	// SeverityCritical marks a mismatch that breaks reproducibility.
	SeverityCritical
)

// String returns the severity label.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseSeverity maps a severity label back to its Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "info":
		return SeverityInfo, true
	case "warning":
		return SeverityWarning, true
	case "critical":
		return SeverityCritical, true
	default:
		return 0, false
	}
}

// Discrepancy records one field that differs between a stored fingerprint and
// live state. Produced only by the drift detector; read-only thereafter.
type Discrepancy struct {
	// FieldPath locates the field (e.g., "runtime_version", "frameworks.react").
	FieldPath string

	// Expected is the stored value; empty when the field is newly present live.
	Expected string

	// Actual is the live value; empty when the field is gone from the live state.
	Actual string

	// Severity grades the mismatch.
	Severity Severity
}
