package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fundflow-africa/donations-backend/internal/notifications/websocket"
	"fundflow-africa/donations-backend/internal/payments"
	"fundflow-africa/donations-backend/internal/validation"
)

// SMSClient is the subset of the SNS API used for SMS delivery.
type SMSClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// EmailClient is the subset of the SES API used for email delivery.
type EmailClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// ServiceConfig contains service configuration
type ServiceConfig struct {
	SenderEmail  string
	SMSEnabled   bool
	EmailEnabled bool
}

// Service fans platform events out over SMS, email and websocket.
// Every method is fire-and-forget: failures are logged and recorded in
// delivery logs, never returned to callers. Implements the Notifier
// interfaces consumed by validation intake, settlement and payments.
type Service struct {
	db        *gorm.DB
	wsManager *websocket.Manager
	sms       SMSClient
	email     EmailClient
	config    ServiceConfig
	logger    *zap.Logger
}

// NewService creates the notification service and migrates its tables.
// sms, email and wsManager may each be nil; the channel is skipped.
func NewService(db *gorm.DB, wsManager *websocket.Manager, sms SMSClient, email EmailClient, config ServiceConfig, logger *zap.Logger) (*Service, error) {
	if err := db.AutoMigrate(&SentNotification{}, &DeliveryLog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Service{
		db:        db,
		wsManager: wsManager,
		sms:       sms,
		email:     email,
		config:    config,
		logger:    logger,
	}, nil
}

// ValidationSubmitted announces a new community validation.
func (s *Service) ValidationSubmitted(ctx context.Context, projectID uuid.UUID, v *validation.Validation) {
	subject := "New community validation"
	content := fmt.Sprintf("A community validator submitted a %d-star validation for project %s.", v.Rating, projectID)

	record := s.record(EventValidationSubmitted, projectID.String(), subject, content, map[string]interface{}{
		"validationId": v.ID.String(),
		"milestoneId":  v.MilestoneID.String(),
		"rating":       v.Rating,
	})

	s.broadcast(record, EventValidationSubmitted, projectID.String(), map[string]interface{}{
		"validationId": v.ID.String(),
		"milestoneId":  v.MilestoneID.String(),
		"rating":       v.Rating,
	})
	s.finalize(record)
}

// MilestoneCompleted announces a verified milestone with released funds.
func (s *Service) MilestoneCompleted(ctx context.Context, projectID, milestoneID uuid.UUID) {
	subject := "Milestone verified"
	content := fmt.Sprintf("Milestone %s of project %s was verified by the community and funds were released.", milestoneID, projectID)

	record := s.record(EventMilestoneCompleted, projectID.String(), subject, content, map[string]interface{}{
		"milestoneId": milestoneID.String(),
	})

	s.broadcast(record, EventMilestoneCompleted, projectID.String(), map[string]interface{}{
		"milestoneId": milestoneID.String(),
	})
	s.finalize(record)
}

// DonationCompleted thanks the donor and announces the donation.
func (s *Service) DonationCompleted(ctx context.Context, tx *payments.Transaction, projectTitle, receiptKey string) {
	subject := "Donation received"
	content := fmt.Sprintf("Your donation of %.2f %s to %q has been received. Thank you for supporting African communities.",
		tx.Amount, tx.Currency, projectTitle)
	if receiptKey != "" {
		content += fmt.Sprintf(" Receipt reference: %s", receiptKey)
	}

	record := s.record(EventDonationCompleted, tx.ProjectID.String(), subject, content, map[string]interface{}{
		"transactionId": tx.ID.String(),
		"amount":        tx.Amount,
		"currency":      tx.Currency,
		"receiptKey":    receiptKey,
	})

	if tx.DonorAddress != nil {
		s.deliverToDonor(ctx, record, *tx.DonorAddress, subject, content)
	}

	s.broadcast(record, EventDonationCompleted, tx.ProjectID.String(), map[string]interface{}{
		"transactionId": tx.ID.String(),
		"amount":        tx.Amount,
		"currency":      tx.Currency,
	})
	s.finalize(record)
}

// deliverToDonor routes by address shape: emails carry an @, phone
// numbers start with +.
func (s *Service) deliverToDonor(ctx context.Context, record *SentNotification, address, subject, content string) {
	switch {
	case strings.Contains(address, "@"):
		s.sendEmail(ctx, record, address, subject, content)
	case strings.HasPrefix(address, "+"):
		s.sendSMS(ctx, record, address, content)
	}
}

func (s *Service) sendSMS(ctx context.Context, record *SentNotification, phoneNumber, message string) {
	if s.sms == nil || !s.config.SMSEnabled {
		return
	}

	_, err := s.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phoneNumber),
		Message:     aws.String(message),
	})
	s.logDelivery(record, ChannelSMS, phoneNumber, err)
}

func (s *Service) sendEmail(ctx context.Context, record *SentNotification, to, subject, body string) {
	if s.email == nil || !s.config.EmailEnabled {
		return
	}

	_, err := s.email.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.config.SenderEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(body)},
				},
			},
		},
	})
	s.logDelivery(record, ChannelEmail, to, err)
}

func (s *Service) broadcast(record *SentNotification, event, projectID string, data map[string]interface{}) {
	if s.wsManager == nil {
		return
	}

	err := s.wsManager.Broadcast(websocket.Message{
		Type:      event,
		ProjectID: projectID,
		Data:      data,
		Timestamp: time.Now(),
	})
	s.logDelivery(record, ChannelWebSocket, "broadcast", err)
}

// record persists the notification row. A nil return means persistence
// failed; delivery still proceeds, only unlogged.
func (s *Service) record(event, projectID, subject, content string, metadata map[string]interface{}) *SentNotification {
	meta, _ := json.Marshal(metadata)
	record := &SentNotification{
		ID:        uuid.New(),
		Event:     event,
		ProjectID: projectID,
		Subject:   subject,
		Content:   content,
		Status:    StatusSent,
		Metadata:  datatypes.JSON(meta),
	}
	if err := s.db.Create(record).Error; err != nil {
		s.logger.Warn("Failed to persist notification record",
			zap.String("event", event), zap.Error(err))
		return nil
	}
	return record
}

func (s *Service) logDelivery(record *SentNotification, channel, recipient string, deliveryErr error) {
	if deliveryErr != nil {
		s.logger.Warn("Notification delivery failed",
			zap.String("channel", channel),
			zap.String("recipient", recipient),
			zap.Error(deliveryErr))
	}
	if record == nil {
		return
	}

	now := time.Now()
	entry := &DeliveryLog{
		ID:             uuid.New(),
		NotificationID: record.ID,
		Channel:        channel,
		Recipient:      recipient,
		Status:         StatusSent,
		SentAt:         &now,
	}
	if deliveryErr != nil {
		entry.Status = StatusFailed
		msg := deliveryErr.Error()
		entry.ErrorMessage = &msg
		record.Status = StatusFailed
	}
	if err := s.db.Create(entry).Error; err != nil {
		s.logger.Warn("Failed to persist delivery log", zap.Error(err))
	}
}

func (s *Service) finalize(record *SentNotification) {
	if record == nil {
		return
	}
	s.db.Save(record)
}

// RecentNotifications returns the latest notification records.
func (s *Service) RecentNotifications(ctx context.Context, limit int) ([]SentNotification, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []SentNotification
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	return records, nil
}

// Close shuts down the websocket hub.
func (s *Service) Close() error {
	if s.wsManager != nil {
		s.wsManager.Close()
	}
	return nil
}
