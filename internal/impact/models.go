package impact

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MetricsRowID is the key of the singleton aggregate row.
const MetricsRowID = "default"

// CurrencyMap stores per-currency accumulated amounts as JSONB.
type CurrencyMap map[string]float64

// Value implements driver.Valuer.
func (m CurrencyMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *CurrencyMap) Scan(src interface{}) error {
	return scanJSONB(src, m)
}

// CategoryMap stores per-category counts as JSONB.
type CategoryMap map[string]int64

// Value implements driver.Valuer.
func (m CategoryMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *CategoryMap) Scan(src interface{}) error {
	return scanJSONB(src, m)
}

func scanJSONB(src, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", src)
	}
}

// Metrics is the deployment-wide impact aggregate. All fields are
// additive and never decrease.
type Metrics struct {
	ID                     string      `db:"id" json:"-"`
	WaterAccessImproved    int64       `db:"water_access_improved" json:"waterAccessImproved"`
	SchoolsBuilt           int64       `db:"schools_built" json:"schoolsBuilt"`
	HealthClinicsSupported int64       `db:"health_clinics_supported" json:"healthClinicsSupported"`
	JobsCreated            int64       `db:"jobs_created" json:"jobsCreated"`
	CommunitiesReached     int64       `db:"communities_reached" json:"communitiesReached"`
	LocalCurrencyImpact    CurrencyMap `db:"local_currency_impact" json:"localCurrencyImpact"`
	ProjectsByCategory     CategoryMap `db:"projects_by_category" json:"projectsByCategory"`
	UpdatedAt              time.Time   `db:"updated_at" json:"updatedAt"`
}

// ZeroMetrics returns an empty aggregate, served when no row exists yet.
func ZeroMetrics() *Metrics {
	return &Metrics{
		ID:                  MetricsRowID,
		LocalCurrencyImpact: CurrencyMap{},
		ProjectsByCategory:  CategoryMap{},
	}
}

// Increment is one application of a confirmed donation to the
// aggregate.
type Increment struct {
	WaterAccessImproved    int64
	SchoolsBuilt           int64
	HealthClinicsSupported int64
	JobsCreated            int64
	CommunitiesReached     int64
	Currency               string
	Amount                 float64
	Category               string
}
