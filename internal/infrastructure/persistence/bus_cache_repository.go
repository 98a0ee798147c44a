package persistence

import (
	"context"
	"errors"

	"github.com/transitledger/backend/internal/domain/shared"
	"github.com/transitledger/backend/internal/domain/syncdata"
	"github.com/transitledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBusCacheRepository implements BusLocalRepository using GORM
type GormBusCacheRepository struct {
	db *gorm.DB
}

// NewGormBusCacheRepository creates a new GormBusCacheRepository
func NewGormBusCacheRepository(db *gorm.DB) *GormBusCacheRepository {
	return &GormBusCacheRepository{db: db}
}

// FindByExternalID finds a cached bus by its upstream ID
func (r *GormBusCacheRepository) FindByExternalID(ctx context.Context, externalID int64) (*syncdata.BusLocal, error) {
	var model models.BusLocalModel
	if err := r.db.WithContext(ctx).
		First(&model, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert inserts or updates a row keyed by upstream ID
func (r *GormBusCacheRepository) Upsert(ctx context.Context, bus *syncdata.BusLocal) error {
	model := models.BusLocalModelFromDomain(bus)
	model.IsDeleted = false
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"body_number", "plate_number", "capacity", "is_deleted", "synced_at",
			}),
		}).
		Create(model).Error
}

// SoftDeleteMissing flags every row absent from keepExternalIDs as deleted
func (r *GormBusCacheRepository) SoftDeleteMissing(ctx context.Context, keepExternalIDs []int64) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BusLocalModel{}).
		Where("is_deleted = ?", false)
	if len(keepExternalIDs) > 0 {
		query = query.Where("external_id NOT IN ?", keepExternalIDs)
	}
	result := query.Update("is_deleted", true)
	return result.RowsAffected, result.Error
}

var _ syncdata.BusLocalRepository = (*GormBusCacheRepository)(nil)
