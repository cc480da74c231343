package impact

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"fundflow-africa/donations-backend/internal/metrics"
	"fundflow-africa/donations-backend/internal/projects"
	"fundflow-africa/donations-backend/pkg/errs"
)

// Aggregator applies confirmed donations to the impact aggregate.
// Callers must invoke Apply exactly once per confirmed payment event;
// de-duplication by payment session id happens upstream, at the point
// where the transaction wins its terminal status transition.
type Aggregator struct {
	repo   Repository
	logger *zap.Logger
}

// NewAggregator creates the impact aggregator.
func NewAggregator(repo Repository, logger *zap.Logger) *Aggregator {
	return &Aggregator{repo: repo, logger: logger}
}

// ComputeIncrement maps a confirmed donation to its category-specific
// counter update. Deterministic: same inputs, same increment.
//
//	water          -> people with improved access, 2 per currency unit
//	education      -> +1 school when the donation exceeds 1000
//	health         -> +1 clinic when the donation exceeds 5000
//	agriculture    -> 1 job per 100
//	infrastructure -> 1 community per 500
func ComputeIncrement(category string, amount float64, currency string) Increment {
	inc := Increment{
		Currency: strings.ToUpper(currency),
		Amount:   amount,
		Category: category,
	}

	switch category {
	case projects.CategoryWater:
		inc.WaterAccessImproved = int64(math.Floor(amount * 2))
	case projects.CategoryEducation:
		if amount > 1000 {
			inc.SchoolsBuilt = 1
		}
	case projects.CategoryHealth:
		if amount > 5000 {
			inc.HealthClinicsSupported = 1
		}
	case projects.CategoryAgriculture:
		inc.JobsCreated = int64(math.Floor(amount / 100))
	case projects.CategoryInfrastructure:
		inc.CommunitiesReached = int64(math.Floor(amount / 500))
	}

	return inc
}

// Apply records a confirmed donation in the aggregate row. The write is
// a single database-side additive update, so concurrent confirmed
// payments cannot lose increments to a read-modify-write race.
func (a *Aggregator) Apply(ctx context.Context, category string, amount float64, currency string) error {
	if !projects.ValidCategory(category) {
		return errs.Invalidf("unknown impact category %q", category)
	}
	if amount <= 0 {
		return errs.Invalidf("amount must be positive")
	}

	inc := ComputeIncrement(category, amount, currency)

	if err := a.repo.Apply(ctx, inc); err != nil {
		return err
	}

	metrics.ImpactUpdates.WithLabelValues(category).Inc()

	a.logger.Info("Impact metrics updated",
		zap.String("category", category),
		zap.Float64("amount", amount),
		zap.String("currency", inc.Currency))

	return nil
}

// Get returns the current aggregate, zero-valued when none exists.
func (a *Aggregator) Get(ctx context.Context) (*Metrics, error) {
	return a.repo.Get(ctx)
}
