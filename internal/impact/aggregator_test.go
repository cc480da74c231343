package impact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/internal/projects"
	"fundflow-africa/donations-backend/pkg/errs"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Apply(ctx context.Context, inc Increment) error {
	args := m.Called(ctx, inc)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context) (*Metrics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Metrics), args.Error(1)
}

func TestComputeIncrementFormulas(t *testing.T) {
	tests := []struct {
		name     string
		category string
		amount   float64
		want     Increment
	}{
		{
			name:     "water doubles per unit",
			category: projects.CategoryWater,
			amount:   50,
			want:     Increment{WaterAccessImproved: 100},
		},
		{
			name:     "water floors fractional result",
			category: projects.CategoryWater,
			amount:   10.3,
			want:     Increment{WaterAccessImproved: 20},
		},
		{
			name:     "education below cutoff",
			category: projects.CategoryEducation,
			amount:   500,
			want:     Increment{SchoolsBuilt: 0},
		},
		{
			name:     "education at cutoff is exclusive",
			category: projects.CategoryEducation,
			amount:   1000,
			want:     Increment{SchoolsBuilt: 0},
		},
		{
			name:     "education above cutoff",
			category: projects.CategoryEducation,
			amount:   1500,
			want:     Increment{SchoolsBuilt: 1},
		},
		{
			name:     "health above cutoff",
			category: projects.CategoryHealth,
			amount:   5001,
			want:     Increment{HealthClinicsSupported: 1},
		},
		{
			name:     "health at cutoff is exclusive",
			category: projects.CategoryHealth,
			amount:   5000,
			want:     Increment{HealthClinicsSupported: 0},
		},
		{
			name:     "agriculture jobs per hundred",
			category: projects.CategoryAgriculture,
			amount:   950,
			want:     Increment{JobsCreated: 9},
		},
		{
			name:     "infrastructure communities per five hundred",
			category: projects.CategoryInfrastructure,
			amount:   1200,
			want:     Increment{CommunitiesReached: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeIncrement(tt.category, tt.amount, "kes")

			assert.Equal(t, tt.want.WaterAccessImproved, got.WaterAccessImproved)
			assert.Equal(t, tt.want.SchoolsBuilt, got.SchoolsBuilt)
			assert.Equal(t, tt.want.HealthClinicsSupported, got.HealthClinicsSupported)
			assert.Equal(t, tt.want.JobsCreated, got.JobsCreated)
			assert.Equal(t, tt.want.CommunitiesReached, got.CommunitiesReached)
			assert.Equal(t, "KES", got.Currency)
			assert.Equal(t, tt.amount, got.Amount)
			assert.Equal(t, tt.category, got.Category)
		})
	}
}

func TestApplyRejectsUnknownCategory(t *testing.T) {
	mockRepo := new(MockRepository)
	aggregator := NewAggregator(mockRepo, zap.NewNop())

	err := aggregator.Apply(context.Background(), "fintech", 100, "USD")

	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestApplyRejectsNonPositiveAmount(t *testing.T) {
	mockRepo := new(MockRepository)
	aggregator := NewAggregator(mockRepo, zap.NewNop())

	err := aggregator.Apply(context.Background(), projects.CategoryWater, 0, "USD")

	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestApplyPassesComputedIncrement(t *testing.T) {
	mockRepo := new(MockRepository)
	aggregator := NewAggregator(mockRepo, zap.NewNop())

	expected := Increment{
		WaterAccessImproved: 200,
		Currency:            "NGN",
		Amount:              100,
		Category:            projects.CategoryWater,
	}
	mockRepo.On("Apply", mock.Anything, expected).Return(nil)

	err := aggregator.Apply(context.Background(), projects.CategoryWater, 100, "ngn")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
