package impact

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"fundflow-africa/donations-backend/pkg/errs"
)

// Repository defines the interface for the impact aggregate row
type Repository interface {
	Apply(ctx context.Context, inc Increment) error
	Get(ctx context.Context) (*Metrics, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Apply adds an increment to the singleton aggregate row. All counter
// and JSONB arithmetic happens inside one UPDATE, so the operation is
// atomic at the database and concurrent confirmed payments serialize on
// the row lock instead of overwriting each other.
func (r *PostgresRepository) Apply(ctx context.Context, inc Increment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO african_impact_metrics (id) VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, MetricsRowID)
	if err != nil {
		return errs.Persistencef(err, "failed to ensure impact metrics row")
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE african_impact_metrics SET
			water_access_improved = water_access_improved + $2,
			schools_built = schools_built + $3,
			health_clinics_supported = health_clinics_supported + $4,
			jobs_created = jobs_created + $5,
			communities_reached = communities_reached + $6,
			local_currency_impact = jsonb_set(
				COALESCE(local_currency_impact, '{}'::jsonb),
				ARRAY[$7],
				to_jsonb(COALESCE((local_currency_impact->>$7)::numeric, 0) + $8::numeric)
			),
			projects_by_category = jsonb_set(
				COALESCE(projects_by_category, '{}'::jsonb),
				ARRAY[$9],
				to_jsonb(COALESCE((projects_by_category->>$9)::numeric, 0) + 1)
			),
			updated_at = NOW()
		WHERE id = $1
	`, MetricsRowID,
		inc.WaterAccessImproved, inc.SchoolsBuilt, inc.HealthClinicsSupported,
		inc.JobsCreated, inc.CommunitiesReached,
		inc.Currency, inc.Amount, inc.Category)
	if err != nil {
		return errs.Persistencef(err, "failed to apply impact increment")
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context) (*Metrics, error) {
	var m Metrics
	err := r.db.GetContext(ctx, &m, `
		SELECT id, water_access_improved, schools_built, health_clinics_supported,
			jobs_created, communities_reached, local_currency_impact,
			projects_by_category, updated_at
		FROM african_impact_metrics WHERE id = $1
	`, MetricsRowID)
	if errors.Is(err, sql.ErrNoRows) {
		return ZeroMetrics(), nil
	}
	if err != nil {
		return nil, errs.Persistencef(err, "failed to load impact metrics")
	}
	if m.LocalCurrencyImpact == nil {
		m.LocalCurrencyImpact = CurrencyMap{}
	}
	if m.ProjectsByCategory == nil {
		m.ProjectsByCategory = CategoryMap{}
	}
	return &m, nil
}
