package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/internal/projects"
	"fundflow-africa/donations-backend/pkg/errs"
)

func approvedSet(n int) []Validation {
	set := make([]Validation, 0, n)
	for i := 0; i < n; i++ {
		set = append(set, Validation{ID: uuid.New(), Rating: 5, Status: StatusApproved})
	}
	return set
}

func TestSettleReleasesOnceAndCompletes(t *testing.T) {
	mockRepo := new(MockRepository)
	mockProjects := new(MockProjectRepository)
	releaser := new(MockReleaser)
	settlement := NewSettlement(mockRepo, mockProjects, releaser, nil, time.Second, zap.NewNop())

	projectID := uuid.New()
	milestoneID := uuid.New()
	set := approvedSet(3)

	mockProjects.On("GetMilestone", mock.Anything, projectID, milestoneID).
		Return(&projects.Milestone{ID: milestoneID, ProjectID: projectID, Status: projects.MilestoneActive}, nil)
	mockRepo.On("ApprovePending", mock.Anything, projectID, milestoneID).Return(int64(3), nil)
	mockRepo.On("ListForMilestone", mock.Anything, projectID, milestoneID).Return(set, nil)
	mockProjects.On("SetValidatorsApproved", mock.Anything, milestoneID, 3).Return(nil)
	mockProjects.On("ClaimMilestoneRelease", mock.Anything, projectID, milestoneID).Return(nil)
	releaser.On("Release", mock.Anything, projectID, milestoneID, set).Return(nil)
	mockProjects.On("CompleteMilestone", mock.Anything, milestoneID, mock.AnythingOfType("time.Time")).Return(nil)

	err := settlement.Settle(context.Background(), projectID, milestoneID)

	assert.NoError(t, err)
	releaser.AssertNumberOfCalls(t, "Release", 1)
	mockProjects.AssertExpectations(t)
}

func TestSettleAlreadyCompletedIsConflictNoop(t *testing.T) {
	mockRepo := new(MockRepository)
	mockProjects := new(MockProjectRepository)
	releaser := new(MockReleaser)
	settlement := NewSettlement(mockRepo, mockProjects, releaser, nil, time.Second, zap.NewNop())

	projectID := uuid.New()
	milestoneID := uuid.New()

	mockProjects.On("GetMilestone", mock.Anything, projectID, milestoneID).
		Return(&projects.Milestone{ID: milestoneID, ProjectID: projectID, Status: projects.MilestoneCompleted}, nil)

	err := settlement.Settle(context.Background(), projectID, milestoneID)

	assert.ErrorIs(t, err, errs.ErrConflict)
	releaser.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "ApprovePending", mock.Anything, mock.Anything, mock.Anything)
}

func TestSettleLostClaimRaceSkipsRelease(t *testing.T) {
	mockRepo := new(MockRepository)
	mockProjects := new(MockProjectRepository)
	releaser := new(MockReleaser)
	settlement := NewSettlement(mockRepo, mockProjects, releaser, nil, time.Second, zap.NewNop())

	projectID := uuid.New()
	milestoneID := uuid.New()
	set := approvedSet(3)

	mockProjects.On("GetMilestone", mock.Anything, projectID, milestoneID).
		Return(&projects.Milestone{ID: milestoneID, ProjectID: projectID, Status: projects.MilestoneActive}, nil)
	mockRepo.On("ApprovePending", mock.Anything, projectID, milestoneID).Return(int64(0), nil)
	mockRepo.On("ListForMilestone", mock.Anything, projectID, milestoneID).Return(set, nil)
	mockProjects.On("SetValidatorsApproved", mock.Anything, milestoneID, 3).Return(nil)
	mockProjects.On("ClaimMilestoneRelease", mock.Anything, projectID, milestoneID).
		Return(errs.Conflictf("milestone is not claimable"))

	err := settlement.Settle(context.Background(), projectID, milestoneID)

	assert.ErrorIs(t, err, errs.ErrConflict)
	releaser.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockProjects.AssertNotCalled(t, "CompleteMilestone", mock.Anything, mock.Anything, mock.Anything)
}

func TestSettleRevertsClaimOnReleaseFailure(t *testing.T) {
	mockRepo := new(MockRepository)
	mockProjects := new(MockProjectRepository)
	releaser := new(MockReleaser)
	settlement := NewSettlement(mockRepo, mockProjects, releaser, nil, time.Second, zap.NewNop())

	projectID := uuid.New()
	milestoneID := uuid.New()
	set := approvedSet(3)

	mockProjects.On("GetMilestone", mock.Anything, projectID, milestoneID).
		Return(&projects.Milestone{ID: milestoneID, ProjectID: projectID, Status: projects.MilestoneActive}, nil)
	mockRepo.On("ApprovePending", mock.Anything, projectID, milestoneID).Return(int64(3), nil)
	mockRepo.On("ListForMilestone", mock.Anything, projectID, milestoneID).Return(set, nil)
	mockProjects.On("SetValidatorsApproved", mock.Anything, milestoneID, 3).Return(nil)
	mockProjects.On("ClaimMilestoneRelease", mock.Anything, projectID, milestoneID).Return(nil)
	releaser.On("Release", mock.Anything, projectID, milestoneID, set).
		Return(errors.New("gateway timeout"))
	mockProjects.On("RevertMilestoneRelease", mock.Anything, milestoneID).Return(nil)

	err := settlement.Settle(context.Background(), projectID, milestoneID)

	assert.ErrorIs(t, err, errs.ErrUpstream)
	mockProjects.AssertCalled(t, "RevertMilestoneRelease", mock.Anything, milestoneID)
	mockProjects.AssertNotCalled(t, "CompleteMilestone", mock.Anything, mock.Anything, mock.Anything)
}

func TestSettleRetryAfterFailureSucceeds(t *testing.T) {
	mockRepo := new(MockRepository)
	mockProjects := new(MockProjectRepository)
	releaser := new(MockReleaser)
	settlement := NewSettlement(mockRepo, mockProjects, releaser, nil, time.Second, zap.NewNop())

	projectID := uuid.New()
	milestoneID := uuid.New()
	set := approvedSet(3)

	mockProjects.On("GetMilestone", mock.Anything, projectID, milestoneID).
		Return(&projects.Milestone{ID: milestoneID, ProjectID: projectID, Status: projects.MilestoneActive}, nil)
	mockRepo.On("ApprovePending", mock.Anything, projectID, milestoneID).Return(int64(0), nil)
	mockRepo.On("ListForMilestone", mock.Anything, projectID, milestoneID).Return(set, nil)
	mockProjects.On("SetValidatorsApproved", mock.Anything, milestoneID, 3).Return(nil)
	mockProjects.On("ClaimMilestoneRelease", mock.Anything, projectID, milestoneID).Return(nil)
	releaser.On("Release", mock.Anything, projectID, milestoneID, set).
		Return(errors.New("gateway timeout")).Once()
	mockProjects.On("RevertMilestoneRelease", mock.Anything, milestoneID).Return(nil)
	releaser.On("Release", mock.Anything, projectID, milestoneID, set).Return(nil).Once()
	mockProjects.On("CompleteMilestone", mock.Anything, milestoneID, mock.AnythingOfType("time.Time")).Return(nil)

	err := settlement.Settle(context.Background(), projectID, milestoneID)
	assert.ErrorIs(t, err, errs.ErrUpstream)

	err = settlement.Settle(context.Background(), projectID, milestoneID)
	assert.NoError(t, err)
	releaser.AssertNumberOfCalls(t, "Release", 2)
}
