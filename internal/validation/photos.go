package validation

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"fundflow-africa/donations-backend/pkg/storage"
)

// PhotoChecker verifies that a submitted photo reference is reachable.
// Checks are best-effort: an unreachable photo is logged and never
// blocks or fails the submission.
type PhotoChecker interface {
	Check(ctx context.Context, ref string) error
}

// LivenessChecker probes http(s) URLs with a HEAD request and bucket
// keys against the photo object store.
type LivenessChecker struct {
	client *http.Client
	store  storage.ObjectStore
	bucket string
	logger *zap.Logger
}

// NewLivenessChecker creates a photo checker. store may be nil when no
// object store is configured, in which case bucket-key refs are skipped.
func NewLivenessChecker(store storage.ObjectStore, bucket string, logger *zap.Logger) *LivenessChecker {
	return &LivenessChecker{
		client: &http.Client{Timeout: 5 * time.Second},
		store:  store,
		bucket: bucket,
		logger: logger,
	}
}

func (c *LivenessChecker) Check(ctx context.Context, ref string) error {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, ref, nil)
		if err != nil {
			return err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			c.logger.Warn("Photo URL not accessible",
				zap.String("url", ref), zap.Int("status", resp.StatusCode))
		}
		return nil
	}

	if c.store == nil {
		return nil
	}
	_, err := c.store.Exists(ctx, c.bucket, ref)
	return err
}
