package payments

import (
	"time"

	"github.com/google/uuid"
)

// Transaction statuses. The conditional transition into
// StatusCompleted is what makes webhook delivery duplicate-safe.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusQueued     = "queued"
)

// Payment methods accepted by the platform.
const (
	MethodMobileMoney = "mobile_money"
	MethodCard        = "card"
	MethodCrypto      = "crypto"
)

// ValidMethod reports whether method is a supported payment method.
func ValidMethod(method string) bool {
	switch method {
	case MethodMobileMoney, MethodCard, MethodCrypto:
		return true
	}
	return false
}

// Transaction is a donation payment record. ProviderSessionID is the
// external checkout/payment reference webhooks correlate on.
type Transaction struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	ProjectID           uuid.UUID  `db:"project_id" json:"projectId"`
	MilestoneID         *uuid.UUID `db:"milestone_id" json:"milestoneId,omitempty"`
	Amount              float64    `db:"amount" json:"amount"`
	Currency            string     `db:"currency" json:"currency"`
	PaymentMethod       string     `db:"payment_method" json:"paymentMethod"`
	Status              string     `db:"status" json:"status"`
	TxHash              *string    `db:"tx_hash" json:"txHash,omitempty"`
	DonorAddress        *string    `db:"donor_address" json:"donorAddress,omitempty"`
	Offline             bool       `db:"offline" json:"offline"`
	ProviderSessionID   *string    `db:"provider_session_id" json:"providerSessionId,omitempty"`
	MobileMoneyProvider *string    `db:"mobile_money_provider" json:"mobileMoneyProvider,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`
}

// Settled reports whether the transaction has reached a terminal state.
func (t *Transaction) Settled() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}
