package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fundflow-africa/donations-backend/pkg/errs"
)

// Repository defines donation transaction storage operations.
type Repository interface {
	Insert(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Transaction, error)
	// CompleteBySession moves the transaction for sessionID into the
	// completed state if it is not already there. It returns the
	// transaction and whether this call won the transition.
	CompleteBySession(ctx context.Context, sessionID, txHash string, provider *string) (*Transaction, bool, error)
	FailBySession(ctx context.Context, sessionID, txHash string, provider *string) error
	// MarkProcessing reopens a failed transaction for a retried payment
	// attempt.
	MarkProcessing(ctx context.Context, id uuid.UUID) error
}

// PostgresRepository implements Repository with PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, tx *Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	query := `
		INSERT INTO donation_transactions (
			id, project_id, milestone_id, amount, currency, payment_method,
			status, tx_hash, donor_address, offline, provider_session_id,
			mobile_money_provider, created_at, updated_at
		) VALUES (
			:id, :project_id, :milestone_id, :amount, :currency, :payment_method,
			:status, :tx_hash, :donor_address, :offline, :provider_session_id,
			:mobile_money_provider, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		return errs.Persistencef(err, "failed to insert transaction")
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	var tx Transaction
	err := r.db.GetContext(ctx, &tx,
		`SELECT * FROM donation_transactions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFoundf("transaction %s not found", id)
	}
	if err != nil {
		return nil, errs.Persistencef(err, "failed to get transaction")
	}
	return &tx, nil
}

func (r *PostgresRepository) GetBySessionID(ctx context.Context, sessionID string) (*Transaction, error) {
	var tx Transaction
	err := r.db.GetContext(ctx, &tx,
		`SELECT * FROM donation_transactions WHERE provider_session_id = $1`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFoundf("transaction for session %s not found", sessionID)
	}
	if err != nil {
		return nil, errs.Persistencef(err, "failed to get transaction by session")
	}
	return &tx, nil
}

func (r *PostgresRepository) CompleteBySession(ctx context.Context, sessionID, txHash string, provider *string) (*Transaction, bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE donation_transactions
		SET status = $2,
		    tx_hash = $3,
		    mobile_money_provider = COALESCE($4, mobile_money_provider),
		    updated_at = NOW()
		WHERE provider_session_id = $1 AND status IN ($5, $6)`,
		sessionID, StatusCompleted, txHash, provider, StatusPending, StatusProcessing)
	if err != nil {
		return nil, false, errs.Persistencef(err, "failed to complete transaction")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	tx, err := r.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	return tx, rows > 0, nil
}

func (r *PostgresRepository) FailBySession(ctx context.Context, sessionID, txHash string, provider *string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE donation_transactions
		SET status = $2,
		    tx_hash = $3,
		    mobile_money_provider = COALESCE($4, mobile_money_provider),
		    updated_at = NOW()
		WHERE provider_session_id = $1 AND status <> $5`,
		sessionID, StatusFailed, txHash, provider, StatusCompleted)
	if err != nil {
		return errs.Persistencef(err, "failed to mark transaction failed")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return errs.NotFoundf("transaction for session %s not found or already completed", sessionID)
	}
	return nil
}

func (r *PostgresRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE donation_transactions
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`,
		id, StatusProcessing, StatusFailed)
	if err != nil {
		return errs.Persistencef(err, "failed to reopen transaction %s", id)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errs.Conflictf("transaction %s is not in a retryable state", id)
	}
	return nil
}
