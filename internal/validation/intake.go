package validation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/internal/metrics"
	"fundflow-africa/donations-backend/internal/projects"
	"fundflow-africa/donations-backend/pkg/errs"
	"fundflow-africa/donations-backend/pkg/geospatial"
)

// SubmitValidationRequest is a single community validation submission.
type SubmitValidationRequest struct {
	ProjectID   string                  `json:"projectId"`
	MilestoneID string                  `json:"milestoneId"`
	ValidatorID string                  `json:"validatorId"`
	Photos      []string                `json:"photos"`
	GPSLocation *geospatial.Coordinate  `json:"gpsLocation,omitempty"`
	Rating      int                     `json:"rating"`
	Comment     string                  `json:"feedbackComment"`
	Language    string                  `json:"language"`
}

// SubmitValidationResult is the intake response. Settlement triggered in
// the same call is observable only through subsequent milestone state,
// never through this result.
type SubmitValidationResult struct {
	ValidationID uuid.UUID `json:"validationId"`
	Status       string    `json:"status"`
	Message      string    `json:"message"`
}

// IntakeConfig tunes intake behavior.
type IntakeConfig struct {
	Policy Policy
	// AllowDuplicateValidatorVotes keeps the historical behavior of
	// counting repeat submissions from one validator toward quorum.
	// Setting it false rejects repeats with a conflict.
	AllowDuplicateValidatorVotes bool
}

// Intake accepts community validation submissions, persists them, and
// drives consensus evaluation for the affected milestone.
type Intake struct {
	repo       Repository
	projects   projects.Repository
	settlement *Settlement
	photos     PhotoChecker
	notifier   Notifier
	config     IntakeConfig
	logger     *zap.Logger
}

// NewIntake creates the validation intake service. photos and notifier
// may be nil.
func NewIntake(
	repo Repository,
	projectRepo projects.Repository,
	settlement *Settlement,
	photos PhotoChecker,
	notifier Notifier,
	config IntakeConfig,
	logger *zap.Logger,
) *Intake {
	if config.Policy.RequiredValidations <= 0 {
		config.Policy = DefaultPolicy()
	}
	return &Intake{
		repo:       repo,
		projects:   projectRepo,
		settlement: settlement,
		photos:     photos,
		notifier:   notifier,
		config:     config,
		logger:     logger,
	}
}

// Submit processes one validation submission. Preconditions are checked
// in order with the first failure winning; a rejected submission leaves
// no side effects.
func (s *Intake) Submit(ctx context.Context, req SubmitValidationRequest) (*SubmitValidationResult, error) {
	if req.ProjectID == "" || req.MilestoneID == "" || req.ValidatorID == "" {
		return nil, errs.Invalidf("projectId, milestoneId and validatorId are required")
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, errs.Invalidf("projectId is not a valid id")
	}
	milestoneID, err := uuid.Parse(req.MilestoneID)
	if err != nil {
		return nil, errs.Invalidf("milestoneId is not a valid id")
	}
	validatorID, err := uuid.Parse(req.ValidatorID)
	if err != nil {
		return nil, errs.Invalidf("validatorId is not a valid id")
	}

	if req.GPSLocation != nil && !geospatial.InAfrica(*req.GPSLocation) {
		return nil, errs.ErrOutOfBounds
	}

	if req.Rating < 1 || req.Rating > 5 {
		return nil, errs.Invalidf("rating must be between 1 and 5")
	}

	validator, err := s.repo.GetValidator(ctx, validatorID)
	if err != nil {
		return nil, err
	}
	if !validator.Active() {
		return nil, errs.NotFoundf("validator %s is not active", validatorID)
	}

	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	if !s.config.AllowDuplicateValidatorVotes {
		submitted, err := s.repo.HasValidatorSubmitted(ctx, projectID, milestoneID, validatorID)
		if err != nil {
			return nil, err
		}
		if submitted {
			return nil, errs.Conflictf("validator %s already submitted for milestone %s", validatorID, milestoneID)
		}
	}

	s.checkPhotos(ctx, req.Photos)

	v := &Validation{
		ProjectID:   projectID,
		MilestoneID: milestoneID,
		ValidatorID: validatorID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		Photos:      req.Photos,
		Language:    req.Language,
		Status:      StatusPending,
	}
	if req.GPSLocation != nil {
		v.GPSLat = &req.GPSLocation.Lat
		v.GPSLng = &req.GPSLocation.Lng
		v.GPSAccuracy = req.GPSLocation.Accuracy
	}

	if err := s.repo.InsertValidation(ctx, v); err != nil {
		metrics.ValidationsSubmitted.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.repo.IncrementValidatorCount(ctx, validatorID); err != nil {
		// Stats drift here is tolerable; the validation row is committed.
		s.logger.Warn("Failed to update validator stats",
			zap.String("validator_id", validatorID.String()), zap.Error(err))
	}

	s.evaluateConsensus(ctx, projectID, milestoneID)

	if s.notifier != nil {
		s.notifier.ValidationSubmitted(ctx, projectID, v)
	}

	metrics.ValidationsSubmitted.WithLabelValues("accepted").Inc()

	return &SubmitValidationResult{
		ValidationID: v.ID,
		Status:       StatusPending,
		Message:      "Impact verification submitted successfully",
	}, nil
}

// GetValidation fetches one stored validation.
func (s *Intake) GetValidation(ctx context.Context, id uuid.UUID) (*Validation, error) {
	return s.repo.GetValidation(ctx, id)
}

// checkPhotos runs the best-effort liveness probe over each photo
// reference.
func (s *Intake) checkPhotos(ctx context.Context, refs []string) {
	if s.photos == nil {
		return
	}
	for _, ref := range refs {
		if err := s.photos.Check(ctx, ref); err != nil {
			s.logger.Warn("Error checking photo reference",
				zap.String("ref", ref), zap.Error(err))
		}
	}
}

// evaluateConsensus recomputes consensus over the milestone's full
// validation set and, on a positive decision, runs settlement. Two
// concurrent submissions can each miss the other's row and both decide
// "no consensus"; the next submission re-evaluates the full set, so the
// decision converges without coordination.
func (s *Intake) evaluateConsensus(ctx context.Context, projectID, milestoneID uuid.UUID) {
	set, err := s.repo.ListForMilestone(ctx, projectID, milestoneID)
	if err != nil {
		s.logger.Error("Failed to load validation set for consensus",
			zap.String("milestone_id", milestoneID.String()), zap.Error(err))
		return
	}

	decision := Evaluate(s.config.Policy, set)

	switch decision.Outcome {
	case OutcomeApprove:
		metrics.ConsensusDecisions.WithLabelValues("approve").Inc()
		if err := s.settlement.Settle(ctx, projectID, milestoneID); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				// Another submission settled first; nothing to do.
				s.logger.Debug("Settlement already handled",
					zap.String("milestone_id", milestoneID.String()))
				metrics.Settlements.WithLabelValues("noop").Inc()
				return
			}
			metrics.Settlements.WithLabelValues("error").Inc()
			s.logger.Error("Settlement failed",
				zap.String("project_id", projectID.String()),
				zap.String("milestone_id", milestoneID.String()),
				zap.Error(err))
			return
		}
		metrics.Settlements.WithLabelValues("completed").Inc()

	case OutcomeReject:
		metrics.ConsensusDecisions.WithLabelValues("reject").Inc()
		if _, err := s.repo.RejectPending(ctx, projectID, milestoneID); err != nil {
			s.logger.Error("Failed to reject validations",
				zap.String("milestone_id", milestoneID.String()), zap.Error(err))
			return
		}
		if err := s.projects.RejectMilestone(ctx, milestoneID); err != nil && !errors.Is(err, errs.ErrConflict) {
			s.logger.Error("Failed to reject milestone",
				zap.String("milestone_id", milestoneID.String()), zap.Error(err))
		}

	default:
		metrics.ConsensusDecisions.WithLabelValues("none").Inc()
	}
}
