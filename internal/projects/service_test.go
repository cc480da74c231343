package projects

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/pkg/errs"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, project *Project) error {
	args := m.Called(ctx, project)
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Project), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter ProjectFilter) ([]*Project, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Project), args.Error(1)
}

func (m *MockRepository) GetMilestone(ctx context.Context, projectID, milestoneID uuid.UUID) (*Milestone, error) {
	args := m.Called(ctx, projectID, milestoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Milestone), args.Error(1)
}

func (m *MockRepository) ActivateMilestone(ctx context.Context, projectID, milestoneID uuid.UUID) error {
	args := m.Called(ctx, projectID, milestoneID)
	return args.Error(0)
}

func (m *MockRepository) IncrementFunding(ctx context.Context, projectID uuid.UUID, milestoneID *uuid.UUID, amount float64) error {
	args := m.Called(ctx, projectID, milestoneID, amount)
	return args.Error(0)
}

func (m *MockRepository) SetValidatorsApproved(ctx context.Context, milestoneID uuid.UUID, approved int) error {
	args := m.Called(ctx, milestoneID, approved)
	return args.Error(0)
}

func (m *MockRepository) ClaimMilestoneRelease(ctx context.Context, projectID, milestoneID uuid.UUID) error {
	args := m.Called(ctx, projectID, milestoneID)
	return args.Error(0)
}

func (m *MockRepository) CompleteMilestone(ctx context.Context, milestoneID uuid.UUID, verifiedAt time.Time) error {
	args := m.Called(ctx, milestoneID, verifiedAt)
	return args.Error(0)
}

func (m *MockRepository) RevertMilestoneRelease(ctx context.Context, milestoneID uuid.UUID) error {
	args := m.Called(ctx, milestoneID)
	return args.Error(0)
}

func (m *MockRepository) RejectMilestone(ctx context.Context, milestoneID uuid.UUID) error {
	args := m.Called(ctx, milestoneID)
	return args.Error(0)
}

// MockIndexer is a mock implementation of the Indexer interface
type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) IndexProject(ctx context.Context, project *Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func validCreateRequest() CreateProjectRequest {
	return CreateProjectRequest{
		Title:        "Borehole for Kisumu West",
		Description:  "Clean water access for 400 households",
		TargetAmount: 12000,
		Category:     CategoryWater,
		RegionID:     "ke",
		Milestones: []MilestoneRequest{
			{Title: "Site survey", TargetAmount: 2000},
			{Title: "Drilling", TargetAmount: 10000, ValidatorsRequired: 5},
		},
	}
}

func TestCreateProjectValidation(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, nil, zap.NewNop())

	tests := []struct {
		name   string
		mutate func(*CreateProjectRequest)
	}{
		{"missing title", func(r *CreateProjectRequest) { r.Title = "" }},
		{"zero target", func(r *CreateProjectRequest) { r.TargetAmount = 0 }},
		{"unknown category", func(r *CreateProjectRequest) { r.Category = "mining" }},
		{"unknown region", func(r *CreateProjectRequest) { r.RegionID = "xx" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)

			project, err := service.CreateProject(context.Background(), req)

			assert.Nil(t, project)
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
		})
	}

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProjectDefaultsCurrencyAndMilestones(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, nil, zap.NewNop())

	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	project, err := service.CreateProject(context.Background(), validCreateRequest())

	assert.NoError(t, err)
	assert.Equal(t, "KES", project.Currency)
	assert.Len(t, project.Milestones, 2)
	assert.Equal(t, MilestonePending, project.Milestones[0].Status)
	assert.Equal(t, 3, project.Milestones[0].ValidatorsRequired)
	assert.Equal(t, 5, project.Milestones[1].ValidatorsRequired)
}

func TestCreateProjectToleratesIndexerFailure(t *testing.T) {
	mockRepo := new(MockRepository)
	mockIndexer := new(MockIndexer)
	service := NewService(mockRepo, mockIndexer, zap.NewNop())

	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockIndexer.On("IndexProject", mock.Anything, mock.Anything).
		Return(errors.New("cluster unreachable"))

	project, err := service.CreateProject(context.Background(), validCreateRequest())

	assert.NoError(t, err)
	assert.NotNil(t, project)
	mockIndexer.AssertExpectations(t)
}

func TestActivateMilestone(t *testing.T) {
	projectID := uuid.New()
	milestoneID := uuid.New()

	t.Run("pending milestone activates", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, nil, zap.NewNop())

		mockRepo.On("GetMilestone", mock.Anything, projectID, milestoneID).
			Return(&Milestone{ID: milestoneID, ProjectID: projectID, Status: MilestonePending}, nil)
		mockRepo.On("ActivateMilestone", mock.Anything, projectID, milestoneID).Return(nil)

		err := service.ActivateMilestone(context.Background(), projectID, milestoneID)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("completed milestone is conflict", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, nil, zap.NewNop())

		mockRepo.On("GetMilestone", mock.Anything, projectID, milestoneID).
			Return(&Milestone{ID: milestoneID, ProjectID: projectID, Status: MilestoneCompleted}, nil)

		err := service.ActivateMilestone(context.Background(), projectID, milestoneID)

		assert.ErrorIs(t, err, errs.ErrConflict)
		mockRepo.AssertNotCalled(t, "ActivateMilestone", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("releasing milestone is conflict", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, nil, zap.NewNop())

		mockRepo.On("GetMilestone", mock.Anything, projectID, milestoneID).
			Return(&Milestone{ID: milestoneID, ProjectID: projectID, Status: MilestoneReleasing}, nil)

		err := service.ActivateMilestone(context.Background(), projectID, milestoneID)

		assert.ErrorIs(t, err, errs.ErrConflict)
		mockRepo.AssertNotCalled(t, "ActivateMilestone", mock.Anything, mock.Anything, mock.Anything)
	})
}
