package projects

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/pkg/errs"
	"fundflow-africa/donations-backend/pkg/workflows"
)

// CreateProjectRequest is the payload for registering a new project.
type CreateProjectRequest struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	TargetAmount float64            `json:"targetAmount"`
	Currency     string             `json:"currency"`
	Category     string             `json:"category"`
	RegionID     string             `json:"regionId"`
	NGOAddress   string             `json:"ngoAddress"`
	Images       []string           `json:"images"`
	Milestones   []MilestoneRequest `json:"milestones"`
}

// MilestoneRequest describes one milestone of a new project.
type MilestoneRequest struct {
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	TargetAmount       float64 `json:"targetAmount"`
	ValidatorsRequired int     `json:"validatorsRequired"`
}

// Indexer pushes projects into the search index. Indexing is
// best-effort; callers log and continue on failure.
type Indexer interface {
	IndexProject(ctx context.Context, project *Project) error
}

// Service provides project business logic.
type Service struct {
	repo       Repository
	indexer    Indexer
	milestones *workflows.StateMachine
	logger     *zap.Logger
}

// NewService creates a new project service. indexer may be nil when
// search is disabled.
func NewService(repo Repository, indexer Indexer, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		indexer:    indexer,
		milestones: workflows.NewMilestoneStateMachine(),
		logger:     logger,
	}
}

// CreateProject validates and persists a project with its milestones.
func (s *Service) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	if req.Title == "" {
		return nil, errs.Invalidf("title is required")
	}
	if req.TargetAmount <= 0 {
		return nil, errs.Invalidf("targetAmount must be positive")
	}
	if !ValidCategory(req.Category) {
		return nil, errs.Invalidf("unknown category %q", req.Category)
	}
	region, ok := RegionByID(req.RegionID)
	if !ok {
		return nil, errs.Invalidf("unknown region %q", req.RegionID)
	}

	currency := req.Currency
	if currency == "" {
		currency = region.LocalCurrency
	}

	project := &Project{
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		Currency:     currency,
		Category:     req.Category,
		RegionID:     req.RegionID,
		NGOAddress:   req.NGOAddress,
		Images:       req.Images,
	}

	for _, m := range req.Milestones {
		required := m.ValidatorsRequired
		if required <= 0 {
			required = 3
		}
		project.Milestones = append(project.Milestones, Milestone{
			Title:              m.Title,
			Description:        m.Description,
			TargetAmount:       m.TargetAmount,
			Status:             MilestonePending,
			ValidatorsRequired: required,
		})
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}

	if s.indexer != nil {
		if err := s.indexer.IndexProject(ctx, project); err != nil {
			s.logger.Warn("Failed to index project",
				zap.String("project_id", project.ID.String()),
				zap.Error(err))
		}
	}

	return project, nil
}

// GetProject fetches a project with its milestones.
func (s *Service) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

// ActivateMilestone opens a pending milestone for community validation.
// Settlement statuses are owned by the verification engine and cannot be
// reached from here.
func (s *Service) ActivateMilestone(ctx context.Context, projectID, milestoneID uuid.UUID) error {
	milestone, err := s.repo.GetMilestone(ctx, projectID, milestoneID)
	if err != nil {
		return err
	}
	// The state machine also admits releasing -> active, but that edge
	// belongs to settlement reverts. Client activation only opens
	// pending milestones.
	if milestone.Status != MilestonePending || !s.milestones.CanTransition(milestone.Status, MilestoneActive) {
		return errs.Conflictf("milestone %s cannot move from %s to %s",
			milestoneID, milestone.Status, MilestoneActive)
	}
	return s.repo.ActivateMilestone(ctx, projectID, milestoneID)
}

// ListProjects lists projects matching the filter.
func (s *Service) ListProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error) {
	return s.repo.List(ctx, filter)
}

// Regions returns the static region registry.
func (s *Service) Regions() []AfricanRegion {
	return AfricanRegions
}
