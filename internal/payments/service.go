package payments

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/internal/projects"
	"fundflow-africa/donations-backend/pkg/errs"
	"fundflow-africa/donations-backend/pkg/pdf"
	"fundflow-africa/donations-backend/pkg/storage"
	"fundflow-africa/donations-backend/pkg/workflows"
)

// ImpactRecorder applies a completed donation to the platform impact
// aggregate.
type ImpactRecorder interface {
	Apply(ctx context.Context, category string, amount float64, currency string) error
}

// Notifier receives fire-and-forget donation notifications. Failures
// are the notifier's to log; none of these calls return errors.
type Notifier interface {
	DonationCompleted(ctx context.Context, tx *Transaction, projectTitle, receiptKey string)
}

// CheckoutRequest records a donation intent. The provider checkout
// itself happens outside this service; only the session reference is
// tracked here.
type CheckoutRequest struct {
	ProjectID           string  `json:"projectId" binding:"required"`
	MilestoneID         string  `json:"milestoneId"`
	Amount              float64 `json:"amount" binding:"required"`
	Currency            string  `json:"currency"`
	PaymentMethod       string  `json:"paymentMethod" binding:"required"`
	MobileMoneyProvider string  `json:"mobileMoneyProvider"`
	DonorEmail          string  `json:"donorEmail"`
}

// CheckoutResult is returned to the client starting a checkout.
type CheckoutResult struct {
	SessionID     string    `json:"sessionId"`
	TransactionID uuid.UUID `json:"transactionId"`
	Status        string    `json:"status"`
}

// Service owns donation transaction lifecycle: checkout intent,
// provider-confirmed completion, and the side effects of a first
// completion (funding increment, impact aggregation, receipt,
// notification).
type Service struct {
	repo          Repository
	projects      projects.Repository
	impact        ImpactRecorder
	receipts      *pdf.ReceiptGenerator
	store         storage.ObjectStore
	receiptBucket string
	notifier      Notifier
	lifecycle     *workflows.StateMachine
	logger        *zap.Logger
}

// NewService creates the payments service. impact, store and notifier
// may be nil; the corresponding side effects are skipped.
func NewService(
	repo Repository,
	projectRepo projects.Repository,
	impact ImpactRecorder,
	receipts *pdf.ReceiptGenerator,
	store storage.ObjectStore,
	receiptBucket string,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:          repo,
		projects:      projectRepo,
		impact:        impact,
		receipts:      receipts,
		store:         store,
		receiptBucket: receiptBucket,
		notifier:      notifier,
		lifecycle:     workflows.NewTransactionStateMachine(),
		logger:        logger,
	}
}

// CreateCheckout validates the donation intent, records a pending
// transaction bound to a fresh provider session id, and returns the
// session reference for the client to complete payment against.
func (s *Service) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if req.Amount <= 0 {
		return nil, errs.Invalidf("amount must be positive")
	}
	if !ValidMethod(req.PaymentMethod) {
		return nil, errs.Invalidf("unsupported payment method %q", req.PaymentMethod)
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, errs.Invalidf("invalid project id %q", req.ProjectID)
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		if region, ok := projects.RegionByID(project.RegionID); ok {
			currency = region.LocalCurrency
		} else {
			currency = "USD"
		}
	}

	tx := &Transaction{
		ProjectID:     projectID,
		Amount:        req.Amount,
		Currency:      currency,
		PaymentMethod: req.PaymentMethod,
		Status:        StatusPending,
		Offline:       false,
	}
	if req.MilestoneID != "" {
		milestoneID, err := uuid.Parse(req.MilestoneID)
		if err != nil {
			return nil, errs.Invalidf("invalid milestone id %q", req.MilestoneID)
		}
		tx.MilestoneID = &milestoneID
	}
	if req.MobileMoneyProvider != "" {
		tx.MobileMoneyProvider = &req.MobileMoneyProvider
	}
	donor := req.DonorEmail
	if donor == "" {
		donor = "anonymous"
	}
	tx.DonorAddress = &donor

	sessionID := fmt.Sprintf("cs_%s", strings.ReplaceAll(uuid.NewString(), "-", ""))
	tx.ProviderSessionID = &sessionID

	if err := s.repo.Insert(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("Checkout session created",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("payment_method", req.PaymentMethod))

	return &CheckoutResult{
		SessionID:     sessionID,
		TransactionID: tx.ID,
		Status:        StatusPending,
	}, nil
}

// CompleteBySession applies a provider confirmation. The conditional
// status transition makes duplicate deliveries no-ops: only the call
// that wins the transition runs the completion side effects.
func (s *Service) CompleteBySession(ctx context.Context, sessionID, txHash string, provider *string) (*Transaction, bool, error) {
	tx, won, err := s.repo.CompleteBySession(ctx, sessionID, txHash, provider)
	if err != nil {
		return nil, false, err
	}
	if !won {
		if tx.Status == StatusFailed {
			// A success signal for a transaction we already failed is a
			// provider disagreement, not a replay.
			return nil, false, errs.Conflictf("session %s already failed, refusing late completion", sessionID)
		}
		s.logger.Info("Duplicate payment confirmation ignored",
			zap.String("session_id", sessionID))
		return tx, false, nil
	}

	project, err := s.projects.GetByID(ctx, tx.ProjectID)
	if err != nil {
		// The transaction is committed; funding and impact are healed
		// by the reconciliation worker if this lookup fails.
		s.logger.Error("Failed to load project after payment completion",
			zap.String("transaction_id", tx.ID.String()), zap.Error(err))
		return tx, true, nil
	}

	if err := s.projects.IncrementFunding(ctx, tx.ProjectID, tx.MilestoneID, tx.Amount); err != nil {
		s.logger.Error("Failed to increment project funding",
			zap.String("transaction_id", tx.ID.String()), zap.Error(err))
	}

	if s.impact != nil {
		if err := s.impact.Apply(ctx, project.Category, tx.Amount, tx.Currency); err != nil {
			s.logger.Error("Failed to apply impact metrics",
				zap.String("transaction_id", tx.ID.String()), zap.Error(err))
		}
	}

	receiptKey := s.uploadReceipt(ctx, tx, project.Title, project.Category)

	if s.notifier != nil {
		s.notifier.DonationCompleted(ctx, tx, project.Title, receiptKey)
	}

	s.logger.Info("Donation completed",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("project_id", tx.ProjectID.String()),
		zap.Float64("amount", tx.Amount),
		zap.String("currency", tx.Currency))

	return tx, true, nil
}

// FailBySession records a provider-reported payment failure.
func (s *Service) FailBySession(ctx context.Context, sessionID, txHash string, provider *string) error {
	if err := s.repo.FailBySession(ctx, sessionID, txHash, provider); err != nil {
		return err
	}
	s.logger.Info("Payment marked failed", zap.String("session_id", sessionID))
	return nil
}

// RetryTransaction reopens a failed transaction for another payment
// attempt. Completed transactions are never reopened.
func (s *Service) RetryTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.lifecycle.CanTransition(tx.Status, StatusProcessing) {
		return nil, errs.Conflictf("transaction %s cannot move from %s to %s",
			id, tx.Status, StatusProcessing)
	}
	if err := s.repo.MarkProcessing(ctx, id); err != nil {
		return nil, err
	}
	tx.Status = StatusProcessing
	s.logger.Info("Transaction reopened for retry", zap.String("transaction_id", id.String()))
	return tx, nil
}

// GetTransaction returns a transaction by id.
func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

// uploadReceipt renders and stores the donation receipt. Best effort:
// a failure is logged and an empty key returned.
func (s *Service) uploadReceipt(ctx context.Context, tx *Transaction, projectTitle, category string) string {
	if s.receipts == nil || s.store == nil || s.receiptBucket == "" {
		return ""
	}

	donor := ""
	if tx.DonorAddress != nil {
		donor = *tx.DonorAddress
	}
	var buf bytes.Buffer
	err := s.receipts.Generate(pdf.ReceiptData{
		TransactionID: tx.ID.String(),
		ProjectTitle:  projectTitle,
		Category:      category,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		PaymentMethod: tx.PaymentMethod,
		DonorAddress:  donor,
		CompletedAt:   time.Now().UTC(),
	}, &buf)
	if err != nil {
		s.logger.Warn("Failed to render donation receipt",
			zap.String("transaction_id", tx.ID.String()), zap.Error(err))
		return ""
	}

	key := fmt.Sprintf("receipts/%s.pdf", tx.ID)
	if err := s.store.Upload(ctx, s.receiptBucket, key, &buf, "application/pdf"); err != nil {
		s.logger.Warn("Failed to upload donation receipt",
			zap.String("transaction_id", tx.ID.String()), zap.Error(err))
		return ""
	}
	return key
}
