package validation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fundflow-africa/donations-backend/pkg/errs"
)

// Repository defines the interface for validation data access
type Repository interface {
	InsertValidation(ctx context.Context, v *Validation) error
	GetValidation(ctx context.Context, id uuid.UUID) (*Validation, error)
	ListForMilestone(ctx context.Context, projectID, milestoneID uuid.UUID) ([]Validation, error)
	ApprovePending(ctx context.Context, projectID, milestoneID uuid.UUID) (int64, error)
	RejectPending(ctx context.Context, projectID, milestoneID uuid.UUID) (int64, error)
	HasValidatorSubmitted(ctx context.Context, projectID, milestoneID, validatorID uuid.UUID) (bool, error)

	GetValidator(ctx context.Context, id uuid.UUID) (*CommunityValidator, error)
	IncrementValidatorCount(ctx context.Context, id uuid.UUID) error
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) InsertValidation(ctx context.Context, v *Validation) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = StatusPending
	}
	v.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO milestone_validations (id, project_id, milestone_id, validator_id,
			rating, feedback_comment, validation_photos, gps_lat, gps_lng, gps_accuracy,
			language, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, v.ID, v.ProjectID, v.MilestoneID, v.ValidatorID, v.Rating, v.Comment,
		pq.Array(v.Photos), v.GPSLat, v.GPSLng, v.GPSAccuracy, v.Language, v.Status, v.CreatedAt)
	if err != nil {
		return errs.Persistencef(err, "failed to insert validation")
	}
	return nil
}

func (r *PostgresRepository) GetValidation(ctx context.Context, id uuid.UUID) (*Validation, error) {
	var v Validation
	err := r.db.GetContext(ctx, &v, `
		SELECT id, project_id, milestone_id, validator_id, rating, feedback_comment,
			validation_photos, gps_lat, gps_lng, gps_accuracy, language, status, created_at
		FROM milestone_validations WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFoundf("validation %s", id)
	}
	if err != nil {
		return nil, errs.Persistencef(err, "failed to load validation %s", id)
	}
	return &v, nil
}

// ListForMilestone returns the complete validation set for a milestone,
// oldest first. Consensus is always recomputed over this full set.
func (r *PostgresRepository) ListForMilestone(ctx context.Context, projectID, milestoneID uuid.UUID) ([]Validation, error) {
	var result []Validation
	err := r.db.SelectContext(ctx, &result, `
		SELECT id, project_id, milestone_id, validator_id, rating, feedback_comment,
			validation_photos, gps_lat, gps_lng, gps_accuracy, language, status, created_at
		FROM milestone_validations
		WHERE project_id = $1 AND milestone_id = $2
		ORDER BY created_at ASC
	`, projectID, milestoneID)
	if err != nil {
		return nil, errs.Persistencef(err, "failed to list validations for milestone %s", milestoneID)
	}
	return result, nil
}

func (r *PostgresRepository) ApprovePending(ctx context.Context, projectID, milestoneID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE milestone_validations
		SET status = 'approved'
		WHERE project_id = $1 AND milestone_id = $2 AND status = 'pending'
	`, projectID, milestoneID)
	if err != nil {
		return 0, errs.Persistencef(err, "failed to approve validations for milestone %s", milestoneID)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (r *PostgresRepository) RejectPending(ctx context.Context, projectID, milestoneID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE milestone_validations
		SET status = 'rejected'
		WHERE project_id = $1 AND milestone_id = $2 AND status = 'pending'
	`, projectID, milestoneID)
	if err != nil {
		return 0, errs.Persistencef(err, "failed to reject validations for milestone %s", milestoneID)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (r *PostgresRepository) HasValidatorSubmitted(ctx context.Context, projectID, milestoneID, validatorID uuid.UUID) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM milestone_validations
		WHERE project_id = $1 AND milestone_id = $2 AND validator_id = $3
	`, projectID, milestoneID, validatorID)
	if err != nil {
		return false, errs.Persistencef(err, "failed to check prior submissions")
	}
	return count > 0, nil
}

func (r *PostgresRepository) GetValidator(ctx context.Context, id uuid.UUID) (*CommunityValidator, error) {
	var v CommunityValidator
	err := r.db.GetContext(ctx, &v, `
		SELECT id, region_id, reputation_score, validation_count, endorsement_count,
			status, created_at
		FROM community_validators WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFoundf("validator %s", id)
	}
	if err != nil {
		return nil, errs.Persistencef(err, "failed to load validator %s", id)
	}
	return &v, nil
}

// IncrementValidatorCount bumps the validator's submission counter with
// a database-side addition. Retried intake calls double-count; callers
// own at-most-once delivery.
func (r *PostgresRepository) IncrementValidatorCount(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE community_validators
		SET validation_count = validation_count + 1
		WHERE id = $1
	`, id)
	if err != nil {
		return errs.Persistencef(err, "failed to update validator %s stats", id)
	}
	return nil
}
