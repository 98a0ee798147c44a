package revenue

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ConfigCache caches the active system configuration. Get returns (nil, nil)
// on a miss; cache failures must never fail the caller.
type ConfigCache interface {
	Get(ctx context.Context) (*revenue.SystemConfiguration, error)
	Set(ctx context.Context, cfg *revenue.SystemConfiguration) error
	Invalidate(ctx context.Context) error
}

// UpdateConfigRequest carries the mutable reconciliation parameters
type UpdateConfigRequest struct {
	DriverSharePercent    *decimal.Decimal
	ConductorSharePercent *decimal.Decimal
	InstallmentFrequency  *revenue.PaymentFrequency
	InstallmentCount      *int
	DueDateOffsetDays     *int
	Actor                 string
}

// SystemConfigService serves the active reconciliation parameters through a
// read-through cache. Every new trip reconciliation reads the configuration,
// so lookups go to the cache first and fall back to the database.
type SystemConfigService struct {
	repo   revenue.SystemConfigurationRepository
	cache  ConfigCache
	audit  shared.AuditRecorder
	logger *zap.Logger
}

// NewSystemConfigService creates a new SystemConfigService
func NewSystemConfigService(
	repo revenue.SystemConfigurationRepository,
	cache ConfigCache,
	audit shared.AuditRecorder,
	logger *zap.Logger,
) *SystemConfigService {
	return &SystemConfigService{repo: repo, cache: cache, audit: audit, logger: logger}
}

// Active returns the active configuration, seeding the default when none has
// ever been saved.
func (s *SystemConfigService) Active(ctx context.Context) (*revenue.SystemConfiguration, error) {
	if cfg, err := s.cache.Get(ctx); err != nil {
		s.logger.Warn("config cache read failed", zap.Error(err))
	} else if cfg != nil {
		return cfg, nil
	}

	cfg, err := s.repo.FindActive(ctx)
	if err != nil {
		if err != shared.ErrNotFound {
			return nil, err
		}
		cfg = revenue.DefaultSystemConfiguration()
		if err := s.repo.Save(ctx, cfg); err != nil {
			return nil, err
		}
		s.logger.Info("seeded default system configuration")
	}

	if err := s.cache.Set(ctx, cfg); err != nil {
		s.logger.Warn("config cache write failed", zap.Error(err))
	}
	return cfg, nil
}

// Update applies partial changes to the active configuration and invalidates
// the cache.
func (s *SystemConfigService) Update(ctx context.Context, req UpdateConfigRequest) (*revenue.SystemConfiguration, error) {
	cfg, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}

	old := *cfg
	if req.DriverSharePercent != nil {
		cfg.DriverSharePercent = *req.DriverSharePercent
	}
	if req.ConductorSharePercent != nil {
		cfg.ConductorSharePercent = *req.ConductorSharePercent
	}
	if req.InstallmentFrequency != nil {
		cfg.InstallmentFrequency = *req.InstallmentFrequency
	}
	if req.InstallmentCount != nil {
		cfg.InstallmentCount = *req.InstallmentCount
	}
	if req.DueDateOffsetDays != nil {
		cfg.DueDateOffsetDays = *req.DueDateOffsetDays
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Touch()
	if err := s.repo.Save(ctx, cfg); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("config cache invalidation failed", zap.Error(err))
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  "system-configuration",
		Action:      "update",
		PerformedBy: req.Actor,
		RecordID:    cfg.ID.String(),
		OldValues:   old,
		NewValues:   cfg,
	})
	return cfg, nil
}
