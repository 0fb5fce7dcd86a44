package model

// Enumerated status values offered by the status selects.
const (
	StatusActive        = "Active"
	StatusOnLeave       = "On Leave"
	StatusTransitioning = "Transitioning"

	StatusOnTrack = "On Track"
	StatusAtRisk  = "At Risk"
	StatusDelayed = "Delayed"

	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusOverdue    = "Overdue"
	StatusComplete   = "Complete"
)

// Severity grades a risk list item.
type Severity string

const (
	SeverityNone   Severity = ""
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// Severities lists the selectable severities, most severe first.
func Severities() []Severity {
	return []Severity{SeverityHigh, SeverityMedium, SeverityLow}
}

// ParseSeverity normalises free-form input; unknown values yield SeverityNone.
func ParseSeverity(raw string) Severity {
	switch normalizeKey(raw) {
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityNone
	}
}

// Class returns the presentational suffix used for risk items ("risk-high").
func (s Severity) Class() string {
	if s == SeverityNone {
		return ""
	}
	return "risk-" + normalizeKey(string(s))
}
