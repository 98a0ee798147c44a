package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/shared"
	"github.com/transitledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRevenueRepository implements RevenueRepository using GORM
type GormRevenueRepository struct {
	db *gorm.DB
}

// NewGormRevenueRepository creates a new GormRevenueRepository
func NewGormRevenueRepository(db *gorm.DB) *GormRevenueRepository {
	return &GormRevenueRepository{db: db}
}

// FindByID finds a revenue record by its ID
func (r *GormRevenueRepository) FindByID(ctx context.Context, id uuid.UUID) (*revenue.Revenue, error) {
	var model models.RevenueModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTrip finds the revenue recorded for one trip pair
func (r *GormRevenueRepository) FindByTrip(ctx context.Context, assignmentID, busTripID int64) (*revenue.Revenue, error) {
	var model models.RevenueModel
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

// FindAll finds revenue records matching the filter with pagination
func (r *GormRevenueRepository) FindAll(ctx context.Context, filter revenue.RevenueFilter) ([]revenue.Revenue, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RevenueModel{})
	if filter.AssignmentType != nil {
		query = query.Where("assignment_type = ?", filter.AssignmentType.String())
	}
	if filter.Status != nil {
		query = query.Where("remittance_status = ?", string(*filter.Status))
	}
	if filter.DateFrom != nil {
		query = query.Where("revenue_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("revenue_date <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := paginate(filter.Page, filter.PageSize)
	order := orderClause(revenueSortColumns, filter.OrderBy, filter.OrderDir, "revenue_date")
	var revenueModels []models.RevenueModel
	if err := query.Order(order).Limit(limit).Offset(offset).
		Find(&revenueModels).Error; err != nil {
		return nil, 0, err
	}

	revenues := make([]revenue.Revenue, len(revenueModels))
	for i := range revenueModels {
		revenues[i] = *revenueModels[i].ToDomain()
	}
	return revenues, total, nil
}

// LastCodeForYear returns the lexicographically-last revenue code for the
// year, deleted rows included so codes never reuse.
func (r *GormRevenueRepository) LastCodeForYear(ctx context.Context, year int) (string, error) {
	var code *string
	if err := r.db.WithContext(ctx).Model(&models.RevenueModel{}).
		Unscoped().
		Where("code LIKE ?", fmt.Sprintf("%s-%d-%%", revenue.RevenueCodePrefix, year)).
		Select("MAX(code)").
		Scan(&code).Error; err != nil {
		return "", err
	}
	if code == nil {
		return "", nil
	}
	return *code, nil
}

// Create inserts the revenue row. A duplicate trip pair surfaces as
// ErrAlreadyRecorded: the unique index is the authoritative at-most-once
// guard under concurrent recording.
func (r *GormRevenueRepository) Create(ctx context.Context, rev *revenue.Revenue) error {
	model := models.RevenueModelFromDomain(rev)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err, "idx_revenues_trip") {
			return shared.ErrAlreadyRecorded
		}
		if isUniqueViolation(err, "") {
			return shared.NewDomainError("DUPLICATE_REVENUE_CODE",
				fmt.Sprintf("Revenue code %s already exists", rev.Code))
		}
		return err
	}
	return nil
}

// Update saves the revenue row
func (r *GormRevenueRepository) Update(ctx context.Context, rev *revenue.Revenue) error {
	model := models.RevenueModelFromDomain(rev)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ revenue.RevenueRepository = (*GormRevenueRepository)(nil)
