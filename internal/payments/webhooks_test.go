package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/pkg/errs"
)

const webhookSecret = "whsec_test"

func signCard(secret string, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestIngress(repo Repository) *Ingress {
	logger := zap.NewNop()
	service := NewService(repo, nil, nil, nil, nil, "", nil, logger)
	return NewIngress(service, webhookSecret, webhookSecret, 5*time.Minute, logger)
}

func cardEventBody(sessionID string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":           sessionID,
				"amount_total": 5000,
			},
		},
	})
	return body
}

func TestVerifyCardSignature(t *testing.T) {
	now := time.Now()
	body := []byte(`{"type":"checkout.session.completed"}`)

	t.Run("valid signature accepted", func(t *testing.T) {
		header := signCard(webhookSecret, now.Unix(), body)
		assert.NoError(t, verifyCardSignature(webhookSecret, header, body, 5*time.Minute, now))
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		header := signCard("whsec_other", now.Unix(), body)
		err := verifyCardSignature(webhookSecret, header, body, 5*time.Minute, now)
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("tampered body rejected", func(t *testing.T) {
		header := signCard(webhookSecret, now.Unix(), body)
		err := verifyCardSignature(webhookSecret, header, []byte(`{"type":"other"}`), 5*time.Minute, now)
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("stale timestamp rejected", func(t *testing.T) {
		stale := now.Add(-10 * time.Minute)
		header := signCard(webhookSecret, stale.Unix(), body)
		err := verifyCardSignature(webhookSecret, header, body, 5*time.Minute, now)
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		err := verifyCardSignature(webhookSecret, "", body, 5*time.Minute, now)
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		err := verifyCardSignature(webhookSecret, "v1=deadbeef", body, 5*time.Minute, now)
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("any v1 entry may match", func(t *testing.T) {
		mac := hmac.New(sha256.New, []byte(webhookSecret))
		fmt.Fprintf(mac, "%d.", now.Unix())
		mac.Write(body)
		header := fmt.Sprintf("t=%d,v1=deadbeef,v1=%s", now.Unix(), hex.EncodeToString(mac.Sum(nil)))
		assert.NoError(t, verifyCardSignature(webhookSecret, header, body, 5*time.Minute, now))
	})
}

func TestHandleCardRejectsBadSignatureWithoutSideEffects(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	ingress := newTestIngress(mockRepo)

	body := cardEventBody("cs_123")
	err := ingress.HandleCard(context.Background(), body, "t=1,v1=deadbeef")

	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "CompleteBySession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCardIgnoresOtherEventTypes(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	ingress := newTestIngress(mockRepo)

	body, _ := json.Marshal(map[string]interface{}{"type": "invoice.paid"})
	header := signCard(webhookSecret, time.Now().Unix(), body)

	err := ingress.HandleCard(context.Background(), body, header)

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "CompleteBySession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCardCompletesTransaction(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	mockProjects := new(MockProjectRepo)
	logger := zap.NewNop()
	service := NewService(mockRepo, mockProjects, nil, nil, nil, "", nil, logger)
	ingress := NewIngress(service, webhookSecret, webhookSecret, 5*time.Minute, logger)

	projectID := uuid.New()
	tx := &Transaction{ID: uuid.New(), ProjectID: projectID, Amount: 50, Currency: "USD", Status: StatusCompleted}
	mockRepo.On("CompleteBySession", mock.Anything, "cs_123", "stripe_cs_123", (*string)(nil)).
		Return(tx, true, nil)
	mockProjects.On("GetByID", mock.Anything, projectID).
		Return(testProject(projectID), nil)
	mockProjects.On("IncrementFunding", mock.Anything, projectID, (*uuid.UUID)(nil), 50.0).Return(nil)

	body := cardEventBody("cs_123")
	header := signCard(webhookSecret, time.Now().Unix(), body)

	err := ingress.HandleCard(context.Background(), body, header)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockProjects.AssertExpectations(t)
}

func TestHandleCardDuplicateDeliveryIsNoop(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	mockProjects := new(MockProjectRepo)
	logger := zap.NewNop()
	service := NewService(mockRepo, mockProjects, nil, nil, nil, "", nil, logger)
	ingress := NewIngress(service, webhookSecret, webhookSecret, 5*time.Minute, logger)

	tx := &Transaction{ID: uuid.New(), ProjectID: uuid.New(), Amount: 50, Currency: "USD", Status: StatusCompleted}
	mockRepo.On("CompleteBySession", mock.Anything, "cs_123", "stripe_cs_123", (*string)(nil)).
		Return(tx, false, nil)

	body := cardEventBody("cs_123")
	header := signCard(webhookSecret, time.Now().Unix(), body)

	err := ingress.HandleCard(context.Background(), body, header)

	assert.NoError(t, err)
	mockProjects.AssertNotCalled(t, "IncrementFunding", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMobileMoneySignature(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	ingress := newTestIngress(mockRepo)

	body, _ := json.Marshal(MobileMoneyEvent{
		Type:          MobileEventPending,
		Provider:      "M-Pesa",
		TransactionID: "MPE123",
		Reference:     "cs_456",
	})

	t.Run("bad signature rejected", func(t *testing.T) {
		_, err := ingress.HandleMobileMoney(context.Background(), body, "deadbeef")
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("valid signature accepted", func(t *testing.T) {
		event, err := ingress.HandleMobileMoney(context.Background(), body, signBody(webhookSecret, body))
		assert.NoError(t, err)
		assert.Equal(t, MobileEventPending, event.Type)
	})
}

func TestHandleMobileMoneyRejectsMalformedPayload(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	ingress := newTestIngress(mockRepo)

	tests := []MobileMoneyEvent{
		{Type: "payment_unknown", TransactionID: "x", Reference: "r"},
		{Type: MobileEventSuccess, TransactionID: "x", Reference: ""},
		{Type: MobileEventSuccess, TransactionID: "", Reference: "r"},
		{Type: MobileEventSuccess, TransactionID: "x", Reference: "r", Amount: 0},
	}

	for _, event := range tests {
		body, _ := json.Marshal(event)
		_, err := ingress.HandleMobileMoney(context.Background(), body, signBody(webhookSecret, body))
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	}
	mockRepo.AssertNotCalled(t, "CompleteBySession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMobileMoneyFailureMarksTransactionFailed(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	ingress := newTestIngress(mockRepo)

	provider := "Orange Money"
	mockRepo.On("FailBySession", mock.Anything, "cs_789", "OM42", &provider).Return(nil)

	event := MobileMoneyEvent{
		Type:          MobileEventFailed,
		Provider:      provider,
		TransactionID: "OM42",
		Reference:     "cs_789",
	}
	body, _ := json.Marshal(event)

	_, err := ingress.HandleMobileMoney(context.Background(), body, signBody(webhookSecret, body))

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
