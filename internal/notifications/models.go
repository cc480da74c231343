package notifications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Delivery channels.
const (
	ChannelSMS       = "sms"
	ChannelEmail     = "email"
	ChannelWebSocket = "websocket"
)

// Delivery statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Event kinds broadcast by the platform.
const (
	EventValidationSubmitted = "validation_submitted"
	EventMilestoneCompleted  = "milestone_completed"
	EventDonationCompleted   = "donation_completed"
)

// SentNotification is the persisted record of one notification fan-out.
type SentNotification struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	Event     string         `json:"event" gorm:"not null;index"`
	ProjectID string         `json:"project_id" gorm:"index"`
	Subject   string         `json:"subject"`
	Content   string         `json:"content"`
	Status    string         `json:"status" gorm:"not null"`
	Metadata  datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// DeliveryLog records one channel delivery attempt for a notification.
type DeliveryLog struct {
	ID             uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	NotificationID uuid.UUID  `json:"notification_id" gorm:"not null;index"`
	Channel        string     `json:"channel" gorm:"not null"`
	Recipient      string     `json:"recipient"`
	Status         string     `json:"status" gorm:"not null"`
	ErrorMessage   *string    `json:"error_message"`
	SentAt         *time.Time `json:"sent_at"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
}
