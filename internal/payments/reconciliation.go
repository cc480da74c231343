package payments

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/internal/metrics"
	"fundflow-africa/donations-backend/pkg/errs"
)

// OfflineTransaction is a donation captured on a client while
// disconnected. ID is the client-side identifier; results are keyed
// to it so the client can clear its local queue.
type OfflineTransaction struct {
	ID                  string  `json:"id"`
	ProjectID           string  `json:"projectId"`
	MilestoneID         string  `json:"milestoneId"`
	Amount              float64 `json:"amount"`
	Currency            string  `json:"currency"`
	PaymentMethod       string  `json:"paymentMethod"`
	MobileMoneyProvider string  `json:"mobileMoneyProvider"`
}

// ProcessedItem maps a client-side id to the server-side transaction
// created for it.
type ProcessedItem struct {
	OriginalID string    `json:"originalId"`
	NewID      uuid.UUID `json:"newId"`
	Status     string    `json:"status"`
}

// FailedItem records a per-item replay failure.
type FailedItem struct {
	OriginalID string `json:"originalId"`
	Error      string `json:"error"`
}

// ReplayResult summarizes a batch replay.
type ReplayResult struct {
	Processed      int             `json:"processed"`
	Failed         int             `json:"failed"`
	ProcessedItems []ProcessedItem `json:"processedTransactions"`
	FailedItems    []FailedItem    `json:"failedTransactions"`
}

// Reconciler replays offline-captured donations into the transaction
// store. Items are independent: a failure is recorded against its
// client id and never aborts the rest of the batch. Payment completion
// is not performed here; replayed transactions enter processing and
// settle through the normal provider confirmation path.
type Reconciler struct {
	repo   Repository
	logger *zap.Logger
}

// NewReconciler creates the offline replay engine.
func NewReconciler(repo Repository, logger *zap.Logger) *Reconciler {
	return &Reconciler{repo: repo, logger: logger}
}

// Replay processes a batch of offline transactions.
func (r *Reconciler) Replay(ctx context.Context, items []OfflineTransaction) (*ReplayResult, error) {
	if len(items) == 0 {
		return nil, errs.Invalidf("no transactions to process")
	}

	result := &ReplayResult{
		ProcessedItems: make([]ProcessedItem, 0, len(items)),
		FailedItems:    make([]FailedItem, 0),
	}

	for _, item := range items {
		tx, err := r.replayOne(ctx, item)
		if err != nil {
			r.logger.Warn("Failed to replay offline transaction",
				zap.String("original_id", item.ID), zap.Error(err))
			metrics.OfflineReplayItems.WithLabelValues("failed").Inc()
			result.Failed++
			result.FailedItems = append(result.FailedItems, FailedItem{
				OriginalID: item.ID,
				Error:      err.Error(),
			})
			continue
		}
		metrics.OfflineReplayItems.WithLabelValues("processed").Inc()
		result.Processed++
		result.ProcessedItems = append(result.ProcessedItems, ProcessedItem{
			OriginalID: item.ID,
			NewID:      tx.ID,
			Status:     tx.Status,
		})
	}

	r.logger.Info("Offline batch replayed",
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed))

	return result, nil
}

func (r *Reconciler) replayOne(ctx context.Context, item OfflineTransaction) (*Transaction, error) {
	if item.Amount <= 0 {
		return nil, errs.Invalidf("amount must be positive")
	}
	if !ValidMethod(item.PaymentMethod) {
		return nil, errs.Invalidf("unsupported payment method %q", item.PaymentMethod)
	}
	projectID, err := uuid.Parse(item.ProjectID)
	if err != nil {
		return nil, errs.Invalidf("invalid project id %q", item.ProjectID)
	}

	tx := &Transaction{
		ProjectID:     projectID,
		Amount:        item.Amount,
		Currency:      item.Currency,
		PaymentMethod: item.PaymentMethod,
		Status:        StatusProcessing,
		Offline:       false,
	}
	if item.MilestoneID != "" {
		milestoneID, err := uuid.Parse(item.MilestoneID)
		if err != nil {
			return nil, errs.Invalidf("invalid milestone id %q", item.MilestoneID)
		}
		tx.MilestoneID = &milestoneID
	}
	if item.MobileMoneyProvider != "" {
		tx.MobileMoneyProvider = &item.MobileMoneyProvider
	}
	if item.ID != "" {
		sessionID := item.ID
		tx.ProviderSessionID = &sessionID
	}

	if err := r.repo.Insert(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}
