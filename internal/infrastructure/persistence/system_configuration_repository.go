package persistence

import (
	"context"
	"errors"

	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/shared"
	"github.com/transitledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSystemConfigurationRepository implements SystemConfigurationRepository
// using GORM. A partial unique index on active keeps at most one active row.
type GormSystemConfigurationRepository struct {
	db *gorm.DB
}

// NewGormSystemConfigurationRepository creates a new GormSystemConfigurationRepository
func NewGormSystemConfigurationRepository(db *gorm.DB) *GormSystemConfigurationRepository {
	return &GormSystemConfigurationRepository{db: db}
}

// FindActive returns the single active configuration
func (r *GormSystemConfigurationRepository) FindActive(ctx context.Context) (*revenue.SystemConfiguration, error) {
	var model models.SystemConfigurationModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or updates the configuration
func (r *GormSystemConfigurationRepository) Save(ctx context.Context, cfg *revenue.SystemConfiguration) error {
	model := models.SystemConfigurationModelFromDomain(cfg)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isUniqueViolation(err, "") {
			return shared.NewDomainError("ACTIVE_CONFIG_EXISTS",
				"Another active configuration already exists")
		}
		return err
	}
	return nil
}

var _ revenue.SystemConfigurationRepository = (*GormSystemConfigurationRepository)(nil)
