package workflows

// StateMachine enforces status transitions for an entity lifecycle
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewMilestoneStateMachine returns the milestone lifecycle.
// "releasing" is the settlement claim state: it is entered atomically so
// that fund release happens at most once, and reverts to "active" when
// the release collaborator fails.
func NewMilestoneStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"pending":   {"active", "releasing", "rejected"},
			"active":    {"releasing", "rejected"},
			"releasing": {"completed", "active"},
			"completed": {},
			"rejected":  {},
		},
	}
}

// NewTransactionStateMachine returns the donation transaction lifecycle.
// Terminal statuses are only ever set by payment event ingress or
// offline reconciliation, never by client-supplied values.
func NewTransactionStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"queued":     {"processing", "failed"},
			"pending":    {"processing", "completed", "failed"},
			"processing": {"completed", "failed"},
			"completed":  {},
			"failed":     {"processing"}, // retried payment attempt
		},
	}
}

// NewValidationStateMachine returns the community validation lifecycle.
func NewValidationStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"pending":  {"approved", "rejected"},
			"approved": {},
			"rejected": {},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}

// IsTerminal reports whether a status has no outgoing transitions.
func (sm *StateMachine) IsTerminal(status string) bool {
	return len(sm.allowedTransitions[status]) == 0
}
