// Package recovery resolves working retrieval URLs for stored objects whose
// primary access URL has gone stale. It is a resilience patch over
// misconfigured or eventually-consistent storage, not a correctness
// mechanism: results are best effort and never fabricated.
package recovery

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/config"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/domain"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/port"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/metrics"
)

type recoveryService struct {
	client *http.Client
	cfg    config.RecoveryConfig
	logger *slog.Logger
}

// NewRecoveryService creates a new recovery service. The probing client uses
// the configured bounded timeout so a dead endpoint fails fast instead of
// hanging the caller.
func NewRecoveryService(cfg config.RecoveryConfig, logger *slog.Logger) port.RecoveryService {
	return &recoveryService{
		client: &http.Client{Timeout: cfg.ProbeTimeout},
		cfg:    cfg,
		logger: logger,
	}
}

// Resolve probes the candidate URLs for originalURL in priority order with a
// lightweight existence check, returning the first that answers. When every
// candidate fails it returns domain.ErrResourceUnavailable; callers must
// surface that to the user rather than substitute content.
func (r *recoveryService) Resolve(ctx context.Context, originalURL string) (string, error) {
	for _, candidate := range Candidates(originalURL, r.cfg) {
		if r.probe(ctx, candidate) {
			metrics.RecoveryProbes.WithLabelValues("hit").Inc()
			r.logger.Info("recovered working URL", "original", originalURL, "resolved", candidate)
			return candidate, nil
		}
		metrics.RecoveryProbes.WithLabelValues("miss").Inc()
	}
	return "", domain.ErrResourceUnavailable
}

func (r *recoveryService) probe(ctx context.Context, candidate string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, candidate, nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
