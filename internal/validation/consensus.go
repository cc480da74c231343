package validation

// Policy tunes the consensus decision for a milestone's validation set.
type Policy struct {
	// RequiredValidations is the quorum: approved + pending submissions
	// needed before a decision is attempted.
	RequiredValidations int
	// ApprovalThreshold is the minimum average rating for approval.
	ApprovalThreshold float64
	// AutoRejectBelowThreshold, when set, turns a quorum that misses the
	// rating threshold into an explicit rejection instead of leaving the
	// milestone pending indefinitely.
	AutoRejectBelowThreshold bool
}

// DefaultPolicy mirrors the platform defaults: three validators, 4.0
// average, no automatic rejection.
func DefaultPolicy() Policy {
	return Policy{
		RequiredValidations: 3,
		ApprovalThreshold:   4.0,
	}
}

// Outcome is the consensus decision for a milestone.
type Outcome int

const (
	// OutcomeNone: quorum not reached, or reached without meeting the
	// approval threshold while automatic rejection is disabled.
	OutcomeNone Outcome = iota
	// OutcomeApprove: quorum reached and average rating at or above the
	// threshold; settlement should run.
	OutcomeApprove
	// OutcomeReject: quorum reached, average below threshold, and the
	// policy rejects explicitly.
	OutcomeReject
)

// Decision is the full result of a consensus evaluation.
type Decision struct {
	Outcome       Outcome
	QuorumReached bool
	ApprovedCount int
	PendingCount  int
	RejectedCount int
	AverageRating float64
}

// Evaluate computes the consensus decision for the complete validation
// set of one (project, milestone) pair. It is a pure function: the same
// set always yields the same decision. The set is recomputed from
// scratch on every submission rather than maintained incrementally;
// with single-digit submissions per milestone the simplicity is worth
// the rescan.
func Evaluate(policy Policy, validations []Validation) Decision {
	d := Decision{}

	var ratingSum int
	var rated int
	for _, v := range validations {
		switch v.Status {
		case StatusApproved:
			d.ApprovedCount++
		case StatusPending:
			d.PendingCount++
		case StatusRejected:
			d.RejectedCount++
			continue
		}
		ratingSum += v.Rating
		rated++
	}

	if d.ApprovedCount+d.PendingCount < policy.RequiredValidations {
		return d
	}
	d.QuorumReached = true

	if rated > 0 {
		d.AverageRating = float64(ratingSum) / float64(rated)
	}

	if d.AverageRating >= policy.ApprovalThreshold {
		d.Outcome = OutcomeApprove
	} else if policy.AutoRejectBelowThreshold {
		d.Outcome = OutcomeReject
	}

	return d
}
