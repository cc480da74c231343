package funds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/internal/validation"
)

// HTTPReleaser invokes the external fund-release collaborator over
// HTTP. The transfer itself (smart contract, custodial payout) is
// opaque to this service; only success or failure matters here.
type HTTPReleaser struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPReleaser creates a releaser pointed at the configured
// endpoint.
func NewHTTPReleaser(endpoint string, timeout time.Duration, logger *zap.Logger) *HTTPReleaser {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPReleaser{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type releaseRequest struct {
	ProjectID   uuid.UUID `json:"projectId"`
	MilestoneID uuid.UUID `json:"milestoneId"`
	Validations int       `json:"validationCount"`
}

// Release asks the collaborator to release milestone funds. Callers
// guarantee at-most-once invocation per settlement attempt.
func (r *HTTPReleaser) Release(ctx context.Context, projectID, milestoneID uuid.UUID, validations []validation.Validation) error {
	payload, err := json.Marshal(releaseRequest{
		ProjectID:   projectID,
		MilestoneID: milestoneID,
		Validations: len(validations),
	})
	if err != nil {
		return fmt.Errorf("failed to encode release request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build release request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("fund release call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("fund release returned status %d", resp.StatusCode)
	}

	r.logger.Info("Fund release accepted",
		zap.String("project_id", projectID.String()),
		zap.String("milestone_id", milestoneID.String()),
		zap.Int("validations", len(validations)))

	return nil
}
