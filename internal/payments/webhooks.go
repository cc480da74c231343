package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"fundflow-africa/donations-backend/internal/metrics"
	"fundflow-africa/donations-backend/pkg/errs"
)

// Mobile money webhook event types. The payload is a tagged union on
// this field.
const (
	MobileEventSuccess = "payment_success"
	MobileEventFailed  = "payment_failed"
	MobileEventPending = "payment_pending"
)

// cardEvent mirrors the provider's checkout event envelope. Only
// checkout.session.completed carries a session we act on.
type cardEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID          string            `json:"id"`
			AmountTotal int64             `json:"amount_total"`
			Metadata    map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// MobileMoneyEvent is the mobile money provider callback payload.
// Reference is the provider session id recorded at checkout;
// TransactionID is the provider-side receipt number.
type MobileMoneyEvent struct {
	Type          string  `json:"type"`
	Provider      string  `json:"provider"`
	TransactionID string  `json:"transactionId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PhoneNumber   string  `json:"phoneNumber"`
	Reference     string  `json:"reference"`
	Timestamp     string  `json:"timestamp"`
}

func (e *MobileMoneyEvent) validate() error {
	switch e.Type {
	case MobileEventSuccess, MobileEventFailed, MobileEventPending:
	default:
		return errs.Invalidf("unknown mobile money event type %q", e.Type)
	}
	if e.Reference == "" {
		return errs.Invalidf("missing payment reference")
	}
	if e.TransactionID == "" {
		return errs.Invalidf("missing provider transaction id")
	}
	if e.Type == MobileEventSuccess && e.Amount <= 0 {
		return errs.Invalidf("success event requires a positive amount")
	}
	return nil
}

// Ingress verifies and applies payment provider webhook deliveries.
type Ingress struct {
	service            *Service
	stripeSecret       string
	mobileMoneySecret  string
	signatureTolerance time.Duration
	now                func() time.Time
	logger             *zap.Logger
}

// NewIngress creates the webhook ingress.
func NewIngress(service *Service, stripeSecret, mobileMoneySecret string, tolerance time.Duration, logger *zap.Logger) *Ingress {
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	return &Ingress{
		service:            service,
		stripeSecret:       stripeSecret,
		mobileMoneySecret:  mobileMoneySecret,
		signatureTolerance: tolerance,
		now:                time.Now,
		logger:             logger,
	}
}

// HandleCard processes a card provider webhook. The raw body and the
// Stripe-Signature header must be passed through unmodified, since the
// signature covers the exact bytes received.
func (i *Ingress) HandleCard(ctx context.Context, body []byte, signatureHeader string) error {
	if err := verifyCardSignature(i.stripeSecret, signatureHeader, body, i.signatureTolerance, i.now()); err != nil {
		metrics.WebhookEvents.WithLabelValues("card", "rejected").Inc()
		return err
	}

	var event cardEvent
	if err := json.Unmarshal(body, &event); err != nil {
		metrics.WebhookEvents.WithLabelValues("card", "rejected").Inc()
		return errs.Invalidf("malformed webhook payload: %v", err)
	}

	if event.Type != "checkout.session.completed" {
		i.logger.Debug("Ignoring card webhook event", zap.String("type", event.Type))
		metrics.WebhookEvents.WithLabelValues("card", "ignored").Inc()
		return nil
	}
	if event.Data.Object.ID == "" {
		metrics.WebhookEvents.WithLabelValues("card", "rejected").Inc()
		return errs.Invalidf("missing session id in event")
	}

	txHash := fmt.Sprintf("stripe_%s", event.Data.Object.ID)
	_, won, err := i.service.CompleteBySession(ctx, event.Data.Object.ID, txHash, nil)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("card", "error").Inc()
		return err
	}
	if won {
		metrics.WebhookEvents.WithLabelValues("card", "completed").Inc()
	} else {
		metrics.WebhookEvents.WithLabelValues("card", "duplicate").Inc()
	}
	return nil
}

// HandleMobileMoney processes a mobile money provider callback.
func (i *Ingress) HandleMobileMoney(ctx context.Context, body []byte, signature string) (*MobileMoneyEvent, error) {
	if err := verifyBodySignature(i.mobileMoneySecret, signature, body); err != nil {
		metrics.WebhookEvents.WithLabelValues("mobile_money", "rejected").Inc()
		return nil, err
	}

	var event MobileMoneyEvent
	if err := json.Unmarshal(body, &event); err != nil {
		metrics.WebhookEvents.WithLabelValues("mobile_money", "rejected").Inc()
		return nil, errs.Invalidf("malformed webhook payload: %v", err)
	}
	if err := event.validate(); err != nil {
		metrics.WebhookEvents.WithLabelValues("mobile_money", "rejected").Inc()
		return nil, err
	}

	switch event.Type {
	case MobileEventSuccess:
		_, won, err := i.service.CompleteBySession(ctx, event.Reference, event.TransactionID, &event.Provider)
		if err != nil {
			metrics.WebhookEvents.WithLabelValues("mobile_money", "error").Inc()
			return nil, err
		}
		if won {
			metrics.WebhookEvents.WithLabelValues("mobile_money", "completed").Inc()
		} else {
			metrics.WebhookEvents.WithLabelValues("mobile_money", "duplicate").Inc()
		}
	case MobileEventFailed:
		if err := i.service.FailBySession(ctx, event.Reference, event.TransactionID, &event.Provider); err != nil {
			metrics.WebhookEvents.WithLabelValues("mobile_money", "error").Inc()
			return nil, err
		}
		metrics.WebhookEvents.WithLabelValues("mobile_money", "failed").Inc()
	case MobileEventPending:
		// Informational; the transaction stays in its current state.
		metrics.WebhookEvents.WithLabelValues("mobile_money", "pending").Inc()
	}

	return &event, nil
}

// verifyCardSignature checks a "t=<unix>,v1=<hex hmac>" header. The
// signed payload is "<t>.<body>" keyed with the endpoint secret. Any
// v1 entry may match; the timestamp must be within tolerance of now.
func verifyCardSignature(secret, header string, body []byte, tolerance time.Duration, now time.Time) error {
	if secret == "" {
		return errs.Invalidf("webhook secret not configured")
	}
	if header == "" {
		return errs.Invalidf("missing signature header")
	}

	var timestamp int64
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return errs.Invalidf("malformed signature timestamp")
			}
			timestamp = ts
		case "v1":
			candidates = append(candidates, kv[1])
		}
	}
	if timestamp == 0 || len(candidates) == 0 {
		return errs.Invalidf("malformed signature header")
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > tolerance || age < -tolerance {
		return errs.Invalidf("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range candidates {
		if hmac.Equal([]byte(expected), []byte(candidate)) {
			return nil
		}
	}
	return errs.Invalidf("signature verification failed")
}

// verifyBodySignature checks a plain hex HMAC-SHA256 of the body.
func verifyBodySignature(secret, signature string, body []byte) error {
	if secret == "" {
		return errs.Invalidf("webhook secret not configured")
	}
	if signature == "" {
		return errs.Invalidf("missing signature header")
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errs.Invalidf("signature verification failed")
	}
	return nil
}
