package assessment

// Status is the assessment lifecycle state, stored lowercase.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusDeployed  Status = "deployed"
	StatusCompleted Status = "completed"
)

// CanTransition reports whether moving to the target state is legal. The
// lifecycle is strictly forward: draft to deployed to completed, no skips and
// no way back.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusDraft:
		return to == StatusDeployed
	case StatusDeployed:
		return to == StatusCompleted
	}
	return false
}

// statusToUppercase converts database status format (lowercase) to API format (uppercase).
func statusToUppercase(s Status) string {
	switch s {
	case StatusDraft:
		return "DRAFT"
	case StatusDeployed:
		return "DEPLOYED"
	case StatusCompleted:
		return "COMPLETED"
	default:
		return string(s)
	}
}
