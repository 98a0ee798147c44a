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

// GormBusTripCacheRepository implements BusTripLocalRepository using GORM.
// Upserts never touch is_revenue_recorded or is_expense_recorded: those
// flags are owned by the financial workflows and must survive re-sync.
type GormBusTripCacheRepository struct {
	db *gorm.DB
}

// NewGormBusTripCacheRepository creates a new GormBusTripCacheRepository
func NewGormBusTripCacheRepository(db *gorm.DB) *GormBusTripCacheRepository {
	return &GormBusTripCacheRepository{db: db}
}

// FindByTrip finds a cached trip by its composite key
func (r *GormBusTripCacheRepository) FindByTrip(ctx context.Context, assignmentID, busTripID int64) (*syncdata.BusTripLocal, error) {
	var model models.BusTripLocalModel
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND bus_trip_id = ?", assignmentID, busTripID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUnrecorded returns live trips with no revenue recorded yet
func (r *GormBusTripCacheRepository) FindUnrecorded(ctx context.Context, filter syncdata.TripFilter) ([]syncdata.BusTripLocal, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BusTripLocalModel{}).
		Where("is_deleted = ?", false)
	if filter.UnrecordedOnly {
		query = query.Where("is_revenue_recorded = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("trip_date ASC, assignment_id ASC, bus_trip_id ASC")
	if filter.PageSize > 0 {
		limit, offset := paginate(filter.Page, filter.PageSize)
		query = query.Limit(limit).Offset(offset)
	}

	var tripModels []models.BusTripLocalModel
	if err := query.Find(&tripModels).Error; err != nil {
		return nil, 0, err
	}
	trips := make([]syncdata.BusTripLocal, len(tripModels))
	for i := range tripModels {
		trips[i] = *tripModels[i].ToDomain()
	}
	return trips, total, nil
}

// Upsert inserts or updates a row keyed by the composite trip key. The
// financial flags are excluded from the update column list so a re-synced
// trip never loses its recorded state.
func (r *GormBusTripCacheRepository) Upsert(ctx context.Context, trip *syncdata.BusTripLocal) error {
	model := models.BusTripLocalModelFromDomain(trip)
	model.IsDeleted = false
	model.IsRevenueRecorded = false
	model.IsExpenseRecorded = false
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "assignment_id"}, {Name: "bus_trip_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"bus_external_id", "driver_employee_no", "conductor_employee_no",
				"assignment_type", "assignment_value", "trip_revenue", "fuel_expense",
				"trip_date", "payment_method", "is_deleted", "synced_at",
			}),
		}).
		Create(model).Error
}

// SoftDeleteMissing flags every row whose composite (assignment_id,
// bus_trip_id) key is absent from keep as deleted. Matching on the
// assignment alone would spare removed trips that share an assignment
// with a surviving one.
func (r *GormBusTripCacheRepository) SoftDeleteMissing(ctx context.Context, keep []syncdata.TripKey) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BusTripLocalModel{}).
		Where("is_deleted = ?", false)
	if len(keep) > 0 {
		pairs := make([][]any, len(keep))
		for i, k := range keep {
			pairs[i] = []any{k.AssignmentID, k.BusTripID}
		}
		query = query.Where("(assignment_id, bus_trip_id) NOT IN ?", pairs)
	}
	result := query.Update("is_deleted", true)
	return result.RowsAffected, result.Error
}

// MarkRevenueRecorded flips the one-way is_revenue_recorded flag
func (r *GormBusTripCacheRepository) MarkRevenueRecorded(ctx context.Context, assignmentID, busTripID int64) error {
	result := r.db.WithContext(ctx).Model(&models.BusTripLocalModel{}).
		Where("assignment_id = ? AND bus_trip_id = ?", assignmentID, busTripID).
		Update("is_revenue_recorded", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ syncdata.BusTripLocalRepository = (*GormBusTripCacheRepository)(nil)
