package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/transitledger/backend/internal/domain/shared"
	"github.com/transitledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// HTTPRecorder ships audit entries to the audit log service. Delivery is
// fire-and-forget: each entry posts from its own goroutine with a detached
// context, and failures are logged, never surfaced to the caller.
type HTTPRecorder struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewHTTPRecorder creates a new HTTPRecorder
func NewHTTPRecorder(cfg config.AuditConfig, logger *zap.Logger) *HTTPRecorder {
	return &HTTPRecorder{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Record implements shared.AuditRecorder. The caller's context is not reused:
// the business transaction may already be committed and its context canceled
// by the time the entry ships.
func (r *HTTPRecorder) Record(_ context.Context, entry shared.AuditEntry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.send(ctx, entry); err != nil {
			r.logger.Warn("audit delivery failed",
				zap.String("module", entry.ModuleName),
				zap.String("action", entry.Action),
				zap.Error(err))
		}
	}()
}

func (r *HTTPRecorder) send(ctx context.Context, entry shared.AuditEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/audit-logs", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("audit sink returned %d", resp.StatusCode)
	}
	return nil
}

var _ shared.AuditRecorder = (*HTTPRecorder)(nil)
