package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ratings(status string, values ...int) []Validation {
	set := make([]Validation, 0, len(values))
	for _, r := range values {
		set = append(set, Validation{Rating: r, Status: status})
	}
	return set
}

func TestEvaluateApprovesOnQuorumAndThreshold(t *testing.T) {
	decision := Evaluate(DefaultPolicy(), ratings(StatusPending, 5, 4, 5))

	assert.Equal(t, OutcomeApprove, decision.Outcome)
	assert.True(t, decision.QuorumReached)
	assert.InDelta(t, 4.666, decision.AverageRating, 0.001)
}

func TestEvaluateNoDecisionBelowQuorum(t *testing.T) {
	decision := Evaluate(DefaultPolicy(), ratings(StatusPending, 5, 5))

	assert.Equal(t, OutcomeNone, decision.Outcome)
	assert.False(t, decision.QuorumReached)
}

func TestEvaluateQuorumWithoutThresholdLeavesNoDecision(t *testing.T) {
	decision := Evaluate(DefaultPolicy(), ratings(StatusPending, 3, 3, 3))

	assert.Equal(t, OutcomeNone, decision.Outcome)
	assert.True(t, decision.QuorumReached)
	assert.InDelta(t, 3.0, decision.AverageRating, 0.001)
}

func TestEvaluateAutoRejectBelowThreshold(t *testing.T) {
	policy := DefaultPolicy()
	policy.AutoRejectBelowThreshold = true

	decision := Evaluate(policy, ratings(StatusPending, 3, 3, 3))

	assert.Equal(t, OutcomeReject, decision.Outcome)
}

func TestEvaluateExcludesRejectedFromCountAndAverage(t *testing.T) {
	set := append(ratings(StatusPending, 5, 5), ratings(StatusRejected, 1, 1)...)

	decision := Evaluate(DefaultPolicy(), set)

	assert.Equal(t, OutcomeNone, decision.Outcome)
	assert.False(t, decision.QuorumReached)
	assert.Equal(t, 2, decision.RejectedCount)

	set = append(set, Validation{Rating: 4, Status: StatusPending})
	decision = Evaluate(DefaultPolicy(), set)

	assert.Equal(t, OutcomeApprove, decision.Outcome)
	assert.InDelta(t, 4.666, decision.AverageRating, 0.001)
}

func TestEvaluateCountsApprovedTowardQuorum(t *testing.T) {
	set := append(ratings(StatusApproved, 5, 5), ratings(StatusPending, 4)...)

	decision := Evaluate(DefaultPolicy(), set)

	assert.Equal(t, OutcomeApprove, decision.Outcome)
	assert.Equal(t, 2, decision.ApprovedCount)
	assert.Equal(t, 1, decision.PendingCount)
}

func TestEvaluateIsPure(t *testing.T) {
	set := ratings(StatusPending, 5, 4, 5)

	first := Evaluate(DefaultPolicy(), set)
	second := Evaluate(DefaultPolicy(), set)

	assert.Equal(t, first, second)
}

func TestEvaluateEmptySet(t *testing.T) {
	decision := Evaluate(DefaultPolicy(), nil)

	assert.Equal(t, OutcomeNone, decision.Outcome)
	assert.False(t, decision.QuorumReached)
	assert.Zero(t, decision.AverageRating)
}
