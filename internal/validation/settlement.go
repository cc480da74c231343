package validation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/internal/projects"
	"fundflow-africa/donations-backend/pkg/errs"
)

// FundReleaser is the external collaborator that moves milestone funds
// once consensus is reached. It may be slow or fail; it must be called
// at most once per milestone per settlement attempt.
type FundReleaser interface {
	Release(ctx context.Context, projectID, milestoneID uuid.UUID, validations []Validation) error
}

// Notifier receives fire-and-forget stakeholder notifications. Failures
// are the notifier's to log; none of these calls return errors.
type Notifier interface {
	ValidationSubmitted(ctx context.Context, projectID uuid.UUID, v *Validation)
	MilestoneCompleted(ctx context.Context, projectID, milestoneID uuid.UUID)
}

// Settlement performs the atomic transition that approves pending
// validations, releases funds, and marks a milestone complete.
type Settlement struct {
	validations    Repository
	projects       projects.Repository
	releaser       FundReleaser
	notifier       Notifier
	releaseTimeout time.Duration
	logger         *zap.Logger
}

// NewSettlement creates the settlement engine. notifier may be nil.
func NewSettlement(
	validations Repository,
	projectRepo projects.Repository,
	releaser FundReleaser,
	notifier Notifier,
	releaseTimeout time.Duration,
	logger *zap.Logger,
) *Settlement {
	if releaseTimeout <= 0 {
		releaseTimeout = 15 * time.Second
	}
	return &Settlement{
		validations:    validations,
		projects:       projectRepo,
		releaser:       releaser,
		notifier:       notifier,
		releaseTimeout: releaseTimeout,
		logger:         logger,
	}
}

// Settle runs the settlement for a milestone whose consensus has been
// decided positive. Ordering:
//
//  1. pending validations become approved
//  2. the milestone is claimed (pending/active -> releasing) with a
//     conditional update, so a concurrent settlement loses the race and
//     gets ErrConflict instead of a second fund release
//  3. the fund-release collaborator is invoked under a bounded timeout
//  4. on success the milestone completes (releasing -> completed); on
//     failure the claim reverts to active and the approved validations
//     stay approved, which makes a retried Settle the designed recovery
//     path rather than an error
//
// Calling Settle on an already-completed milestone is a no-op that
// reports ErrConflict.
func (s *Settlement) Settle(ctx context.Context, projectID, milestoneID uuid.UUID) error {
	milestone, err := s.projects.GetMilestone(ctx, projectID, milestoneID)
	if err != nil {
		return err
	}
	if milestone.Settled() {
		return errs.Conflictf("milestone %s already completed", milestoneID)
	}

	approved, err := s.validations.ApprovePending(ctx, projectID, milestoneID)
	if err != nil {
		return err
	}
	if approved > 0 {
		s.logger.Info("Approved pending validations",
			zap.String("milestone_id", milestoneID.String()),
			zap.Int64("count", approved))
	}

	set, err := s.validations.ListForMilestone(ctx, projectID, milestoneID)
	if err != nil {
		return err
	}

	// The authoritative approval count is derived from the stored set.
	approvedCount := 0
	for _, v := range set {
		if v.Status == StatusApproved {
			approvedCount++
		}
	}
	if err := s.projects.SetValidatorsApproved(ctx, milestoneID, approvedCount); err != nil {
		s.logger.Warn("Failed to store derived approval count",
			zap.String("milestone_id", milestoneID.String()), zap.Error(err))
	}

	if err := s.projects.ClaimMilestoneRelease(ctx, projectID, milestoneID); err != nil {
		return err
	}

	releaseCtx, cancel := context.WithTimeout(ctx, s.releaseTimeout)
	err = s.releaser.Release(releaseCtx, projectID, milestoneID, set)
	cancel()
	if err != nil {
		if revertErr := s.projects.RevertMilestoneRelease(ctx, milestoneID); revertErr != nil {
			s.logger.Error("Failed to revert release claim after upstream failure",
				zap.String("milestone_id", milestoneID.String()), zap.Error(revertErr))
		}
		return errs.Upstreamf(err, "fund release failed for milestone %s", milestoneID)
	}

	if err := s.projects.CompleteMilestone(ctx, milestoneID, time.Now().UTC()); err != nil {
		return err
	}

	s.logger.Info("Milestone settled",
		zap.String("project_id", projectID.String()),
		zap.String("milestone_id", milestoneID.String()),
		zap.Int("validations", len(set)))

	if s.notifier != nil {
		s.notifier.MilestoneCompleted(ctx, projectID, milestoneID)
	}

	return nil
}
