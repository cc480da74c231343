package validation

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Validation statuses. Submissions are created pending; only the
// consensus engine moves them to approved or rejected.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Validator account statuses.
const (
	ValidatorActive   = "active"
	ValidatorInactive = "inactive"
)

// Validation is one community member's on-the-ground verification of a
// milestone.
type Validation struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	ProjectID   uuid.UUID      `db:"project_id" json:"projectId"`
	MilestoneID uuid.UUID      `db:"milestone_id" json:"milestoneId"`
	ValidatorID uuid.UUID      `db:"validator_id" json:"validatorId"`
	Rating      int            `db:"rating" json:"rating"`
	Comment     string         `db:"feedback_comment" json:"comment"`
	Photos      pq.StringArray `db:"validation_photos" json:"photos"`
	GPSLat      *float64       `db:"gps_lat" json:"gpsLat,omitempty"`
	GPSLng      *float64       `db:"gps_lng" json:"gpsLng,omitempty"`
	GPSAccuracy *float64       `db:"gps_accuracy" json:"gpsAccuracy,omitempty"`
	Language    string         `db:"language" json:"language"`
	Status      string         `db:"status" json:"status"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
}

// CommunityValidator is a community member authorized to verify
// milestone progress. Reputation is managed outside this core; only
// the validation count is maintained here.
type CommunityValidator struct {
	ID               uuid.UUID `db:"id" json:"id"`
	RegionID         string    `db:"region_id" json:"regionId"`
	ReputationScore  float64   `db:"reputation_score" json:"reputationScore"`
	ValidationCount  int       `db:"validation_count" json:"validationCount"`
	EndorsementCount int       `db:"endorsement_count" json:"endorsementCount"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// Active reports whether the validator may submit validations.
func (v *CommunityValidator) Active() bool {
	return v.Status == ValidatorActive
}
