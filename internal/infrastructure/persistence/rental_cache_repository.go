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

// GormRentalCacheRepository implements RentalLocalRepository using GORM.
// Upserts never touch is_revenue_recorded: that flag is owned by the
// reconciliation workflow, not the sync.
type GormRentalCacheRepository struct {
	db *gorm.DB
}

// NewGormRentalCacheRepository creates a new GormRentalCacheRepository
func NewGormRentalCacheRepository(db *gorm.DB) *GormRentalCacheRepository {
	return &GormRentalCacheRepository{db: db}
}

// FindByExternalID finds a cached rental by its upstream ID
func (r *GormRentalCacheRepository) FindByExternalID(ctx context.Context, externalID int64) (*syncdata.RentalLocal, error) {
	var model models.RentalLocalModel
	if err := r.db.WithContext(ctx).
		First(&model, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert inserts or updates a row keyed by upstream ID, preserving the
// protected is_revenue_recorded flag on update.
func (r *GormRentalCacheRepository) Upsert(ctx context.Context, rental *syncdata.RentalLocal) error {
	model := models.RentalLocalModelFromDomain(rental)
	model.IsDeleted = false
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"customer_name", "bus_external_id", "contract_amount",
				"rental_date", "is_deleted", "synced_at",
			}),
		}).
		Create(model).Error
}

// SoftDeleteMissing flags every row absent from keepExternalIDs as deleted
func (r *GormRentalCacheRepository) SoftDeleteMissing(ctx context.Context, keepExternalIDs []int64) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RentalLocalModel{}).
		Where("is_deleted = ?", false)
	if len(keepExternalIDs) > 0 {
		query = query.Where("external_id NOT IN ?", keepExternalIDs)
	}
	result := query.Update("is_deleted", true)
	return result.RowsAffected, result.Error
}

var _ syncdata.RentalLocalRepository = (*GormRentalCacheRepository)(nil)
