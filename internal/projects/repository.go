package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fundflow-africa/donations-backend/pkg/errs"
)

// Repository defines the interface for project and milestone data access
type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*Project, error)

	GetMilestone(ctx context.Context, projectID, milestoneID uuid.UUID) (*Milestone, error)
	ActivateMilestone(ctx context.Context, projectID, milestoneID uuid.UUID) error
	IncrementFunding(ctx context.Context, projectID uuid.UUID, milestoneID *uuid.UUID, amount float64) error
	SetValidatorsApproved(ctx context.Context, milestoneID uuid.UUID, approved int) error

	// Settlement transitions. All three are conditional updates keyed on
	// the expected prior status so concurrent settlement attempts cannot
	// double-release.
	ClaimMilestoneRelease(ctx context.Context, projectID, milestoneID uuid.UUID) error
	CompleteMilestone(ctx context.Context, milestoneID uuid.UUID, verifiedAt time.Time) error
	RevertMilestoneRelease(ctx context.Context, milestoneID uuid.UUID) error
	RejectMilestone(ctx context.Context, milestoneID uuid.UUID) error
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, project *Project) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errs.Persistencef(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (id, title, description, target_amount, current_amount,
			currency, category, region_id, ngo_address, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, project.ID, project.Title, project.Description, project.TargetAmount,
		project.CurrentAmount, project.Currency, project.Category, project.RegionID,
		project.NGOAddress, pq.Array(project.Images), project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return errs.Persistencef(err, "failed to insert project")
	}

	for i := range project.Milestones {
		m := &project.Milestones[i]
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		m.ProjectID = project.ID
		if m.Status == "" {
			m.Status = MilestonePending
		}
		m.Position = i
		m.CreatedAt = now

		_, err = tx.ExecContext(ctx, `
			INSERT INTO project_milestones (id, project_id, title, description,
				target_amount, current_amount, status, validators_required,
				validators_approved, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, m.ID, m.ProjectID, m.Title, m.Description, m.TargetAmount, m.CurrentAmount,
			m.Status, m.ValidatorsRequired, m.ValidatorsApproved, m.Position, m.CreatedAt)
		if err != nil {
			return errs.Persistencef(err, "failed to insert milestone %s", m.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Persistencef(err, "failed to commit project insert")
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var project Project
	err := r.db.GetContext(ctx, &project, `
		SELECT id, title, description, target_amount, current_amount, currency,
			category, region_id, ngo_address, images, created_at, updated_at
		FROM projects WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFoundf("project %s", id)
	}
	if err != nil {
		return nil, errs.Persistencef(err, "failed to load project %s", id)
	}

	milestones, err := r.milestonesForProject(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Milestones = milestones

	return &project, nil
}

func (r *PostgresRepository) milestonesForProject(ctx context.Context, projectID uuid.UUID) ([]Milestone, error) {
	var milestones []Milestone
	err := r.db.SelectContext(ctx, &milestones, `
		SELECT id, project_id, title, description, target_amount, current_amount,
			status, validators_required, validators_approved, position, verified_at, created_at
		FROM project_milestones
		WHERE project_id = $1
		ORDER BY position ASC
	`, projectID)
	if err != nil {
		return nil, errs.Persistencef(err, "failed to load milestones for project %s", projectID)
	}
	return milestones, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ProjectFilter) ([]*Project, error) {
	query := `
		SELECT id, title, description, target_amount, current_amount, currency,
			category, region_id, ngo_address, images, created_at, updated_at
		FROM projects
		WHERE 1=1
	`
	args := []interface{}{}
	argPos := 1

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argPos)
		args = append(args, filter.Category)
		argPos++
	}
	if filter.RegionID != "" {
		query += fmt.Sprintf(" AND region_id = $%d", argPos)
		args = append(args, filter.RegionID)
		argPos++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	var result []*Project
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, errs.Persistencef(err, "failed to list projects")
	}

	for _, p := range result {
		milestones, err := r.milestonesForProject(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Milestones = milestones
	}

	return result, nil
}

func (r *PostgresRepository) GetMilestone(ctx context.Context, projectID, milestoneID uuid.UUID) (*Milestone, error) {
	var m Milestone
	err := r.db.GetContext(ctx, &m, `
		SELECT id, project_id, title, description, target_amount, current_amount,
			status, validators_required, validators_approved, position, verified_at, created_at
		FROM project_milestones
		WHERE id = $1 AND project_id = $2
	`, milestoneID, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFoundf("milestone %s in project %s", milestoneID, projectID)
	}
	if err != nil {
		return nil, errs.Persistencef(err, "failed to load milestone %s", milestoneID)
	}
	return &m, nil
}

// ActivateMilestone opens a pending milestone for validation work.
func (r *PostgresRepository) ActivateMilestone(ctx context.Context, projectID, milestoneID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE project_milestones
		SET status = 'active'
		WHERE id = $1 AND project_id = $2 AND status = 'pending'
	`, milestoneID, projectID)
	if err != nil {
		return errs.Persistencef(err, "failed to activate milestone %s", milestoneID)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errs.Conflictf("milestone %s is not pending", milestoneID)
	}
	return nil
}

// IncrementFunding applies a confirmed donation to the project's, and
// optionally a milestone's, running total with database-side addition.
// Current amounts never pass through client-supplied absolute values.
func (r *PostgresRepository) IncrementFunding(ctx context.Context, projectID uuid.UUID, milestoneID *uuid.UUID, amount float64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET current_amount = current_amount + $2, updated_at = NOW()
		WHERE id = $1
	`, projectID, amount)
	if err != nil {
		return errs.Persistencef(err, "failed to increment funding for project %s", projectID)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errs.NotFoundf("project %s", projectID)
	}

	if milestoneID != nil {
		_, err = r.db.ExecContext(ctx, `
			UPDATE project_milestones
			SET current_amount = current_amount + $2
			WHERE id = $1
		`, *milestoneID, amount)
		if err != nil {
			return errs.Persistencef(err, "failed to increment funding for milestone %s", *milestoneID)
		}
	}

	return nil
}

// SetValidatorsApproved stores the derived approval count. The value is
// always recomputed from the validation set, never incremented ad hoc.
func (r *PostgresRepository) SetValidatorsApproved(ctx context.Context, milestoneID uuid.UUID, approved int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE project_milestones SET validators_approved = $2 WHERE id = $1
	`, milestoneID, approved)
	if err != nil {
		return errs.Persistencef(err, "failed to update approval count for milestone %s", milestoneID)
	}
	return nil
}

func (r *PostgresRepository) ClaimMilestoneRelease(ctx context.Context, projectID, milestoneID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE project_milestones
		SET status = 'releasing'
		WHERE id = $1 AND project_id = $2 AND status IN ('pending', 'active')
	`, milestoneID, projectID)
	if err != nil {
		return errs.Persistencef(err, "failed to claim milestone %s for release", milestoneID)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errs.Conflictf("milestone %s is already settled or settling", milestoneID)
	}
	return nil
}

func (r *PostgresRepository) CompleteMilestone(ctx context.Context, milestoneID uuid.UUID, verifiedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE project_milestones
		SET status = 'completed', verified_at = $2
		WHERE id = $1 AND status = 'releasing'
	`, milestoneID, verifiedAt)
	if err != nil {
		return errs.Persistencef(err, "failed to complete milestone %s", milestoneID)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errs.Conflictf("milestone %s was not claimed for release", milestoneID)
	}
	return nil
}

func (r *PostgresRepository) RevertMilestoneRelease(ctx context.Context, milestoneID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE project_milestones
		SET status = 'active'
		WHERE id = $1 AND status = 'releasing'
	`, milestoneID)
	if err != nil {
		return errs.Persistencef(err, "failed to revert release claim on milestone %s", milestoneID)
	}
	return nil
}

func (r *PostgresRepository) RejectMilestone(ctx context.Context, milestoneID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE project_milestones
		SET status = 'rejected'
		WHERE id = $1 AND status IN ('pending', 'active')
	`, milestoneID)
	if err != nil {
		return errs.Persistencef(err, "failed to reject milestone %s", milestoneID)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errs.Conflictf("milestone %s is not in a rejectable state", milestoneID)
	}
	return nil
}
