package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMilestoneTransitions(t *testing.T) {
	sm := NewMilestoneStateMachine()

	assert.True(t, sm.CanTransition("pending", "active"))
	assert.True(t, sm.CanTransition("active", "releasing"))
	assert.True(t, sm.CanTransition("releasing", "completed"))
	// Failed fund release returns the claim
	assert.True(t, sm.CanTransition("releasing", "active"))

	assert.False(t, sm.CanTransition("completed", "active"))
	assert.False(t, sm.CanTransition("active", "completed"))
	assert.False(t, sm.CanTransition("rejected", "active"))
	assert.False(t, sm.CanTransition("unknown", "active"))

	assert.True(t, sm.IsTerminal("completed"))
	assert.True(t, sm.IsTerminal("rejected"))
	assert.False(t, sm.IsTerminal("releasing"))
}

func TestTransactionTransitions(t *testing.T) {
	sm := NewTransactionStateMachine()

	assert.True(t, sm.CanTransition("pending", "completed"))
	assert.True(t, sm.CanTransition("queued", "processing"))
	assert.True(t, sm.CanTransition("processing", "failed"))
	assert.True(t, sm.CanTransition("failed", "processing"))

	assert.False(t, sm.CanTransition("completed", "failed"))
	assert.False(t, sm.CanTransition("completed", "pending"))

	assert.True(t, sm.IsTerminal("completed"))
	assert.False(t, sm.IsTerminal("failed"))
}

func TestValidationTransitions(t *testing.T) {
	sm := NewValidationStateMachine()

	assert.True(t, sm.CanTransition("pending", "approved"))
	assert.True(t, sm.CanTransition("pending", "rejected"))
	assert.False(t, sm.CanTransition("approved", "rejected"))
	assert.False(t, sm.CanTransition("rejected", "pending"))
}

func TestGetAllowedTransitions(t *testing.T) {
	sm := NewMilestoneStateMachine()

	assert.ElementsMatch(t, []string{"completed", "active"}, sm.GetAllowedTransitions("releasing"))
	assert.Empty(t, sm.GetAllowedTransitions("completed"))
	assert.Empty(t, sm.GetAllowedTransitions("unknown"))
}
