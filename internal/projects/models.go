package projects

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Project categories supported by the platform.
const (
	CategoryWater          = "water"
	CategoryEducation      = "education"
	CategoryHealth         = "health"
	CategoryAgriculture    = "agriculture"
	CategoryInfrastructure = "infrastructure"
)

// Categories lists all valid project categories.
var Categories = []string{
	CategoryWater,
	CategoryEducation,
	CategoryHealth,
	CategoryAgriculture,
	CategoryInfrastructure,
}

// ValidCategory reports whether c is a known project category.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// Milestone statuses. "releasing" is the internal settlement claim
// state; a milestone in "completed" with VerifiedAt set has passed
// community verification.
const (
	MilestonePending   = "pending"
	MilestoneActive    = "active"
	MilestoneReleasing = "releasing"
	MilestoneCompleted = "completed"
	MilestoneRejected  = "rejected"
)

// Project represents a community project being funded.
type Project struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	Title         string         `db:"title" json:"title"`
	Description   string         `db:"description" json:"description"`
	TargetAmount  float64        `db:"target_amount" json:"targetAmount"`
	CurrentAmount float64        `db:"current_amount" json:"currentAmount"`
	Currency      string         `db:"currency" json:"currency"`
	Category      string         `db:"category" json:"category"`
	RegionID      string         `db:"region_id" json:"regionId"`
	NGOAddress    string         `db:"ngo_address" json:"ngoAddress"`
	Images        pq.StringArray `db:"images" json:"images"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`

	Milestones []Milestone `db:"-" json:"milestones"`
}

// Milestone is a funded sub-goal of a project, released only after
// community verification reaches consensus.
type Milestone struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	ProjectID          uuid.UUID  `db:"project_id" json:"projectId"`
	Title              string     `db:"title" json:"title"`
	Description        string     `db:"description" json:"description"`
	TargetAmount       float64    `db:"target_amount" json:"targetAmount"`
	CurrentAmount      float64    `db:"current_amount" json:"currentAmount"`
	Status             string     `db:"status" json:"status"`
	ValidatorsRequired int        `db:"validators_required" json:"validatorsRequired"`
	ValidatorsApproved int        `db:"validators_approved" json:"validatorsApproved"`
	Position           int        `db:"position" json:"position"`
	VerifiedAt         *time.Time `db:"verified_at" json:"verifiedAt,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
}

// Settled reports whether the milestone has already completed
// settlement.
func (m *Milestone) Settled() bool {
	return m.Status == MilestoneCompleted
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Category string
	RegionID string
	Limit    int
	Offset   int
}
