package domain

// WorkStatus enumerates lifecycle states shared by controls and tasks.
type WorkStatus string

const (
	StatusNotStarted WorkStatus = "NOT_STARTED"
	StatusInProgress WorkStatus = "IN_PROGRESS"
	StatusInReview   WorkStatus = "IN_REVIEW"
	StatusComplete   WorkStatus = "COMPLETE"
)

// ValidStatus reports whether the value is a known work status.
func ValidStatus(s WorkStatus) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusInReview, StatusComplete:
		return true
	}
	return false
}

// PriorityLevel enumerates urgency for controls and tasks.
type PriorityLevel string

const (
	PriorityLow      PriorityLevel = "LOW"
	PriorityMedium   PriorityLevel = "MEDIUM"
	PriorityHigh     PriorityLevel = "HIGH"
	PriorityCritical PriorityLevel = "CRITICAL"
)

// ValidPriority reports whether the value is a known priority level.
func ValidPriority(p PriorityLevel) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}
