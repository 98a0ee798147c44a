package scheduler

import (
	"context"
	"sync"
	"time"

	appsync "github.com/transitledger/backend/internal/application/syncdata"
	"github.com/transitledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SyncTrigger runs the upstream data sync on a fixed interval. One run fires
// immediately on Start so a fresh deployment does not wait a full interval
// for its first cache fill.
type SyncTrigger struct {
	service  *appsync.Service
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewSyncTrigger creates a new SyncTrigger
func NewSyncTrigger(service *appsync.Service, cfg config.SchedulerConfig, logger *zap.Logger) *SyncTrigger {
	return &SyncTrigger{
		service:  service,
		interval: cfg.SyncInterval,
		timeout:  cfg.JobTimeout,
		logger:   logger,
	}
}

// Start launches the periodic sync loop. Calling Start on a running trigger
// is a no-op.
func (t *SyncTrigger) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isRunning {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.isRunning = true

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("sync scheduler started", zap.Duration("interval", t.interval))
}

// Stop halts the loop and waits for an in-flight run to finish
func (t *SyncTrigger) Stop() {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return
	}
	t.cancel()
	t.isRunning = false
	t.mu.Unlock()

	t.wg.Wait()
	t.logger.Info("sync scheduler stopped")
}

func (t *SyncTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	t.runOnce(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runOnce(ctx)
		}
	}
}

func (t *SyncTrigger) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	result, err := t.service.SyncAll(runCtx, "scheduler")
	if err != nil {
		t.logger.Error("scheduled sync failed", zap.Error(err))
		return
	}
	if result.Partial {
		t.logger.Warn("scheduled sync finished partially")
	}
}
