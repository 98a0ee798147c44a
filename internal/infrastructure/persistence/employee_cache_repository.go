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

// GormEmployeeCacheRepository implements EmployeeLocalRepository using GORM
type GormEmployeeCacheRepository struct {
	db *gorm.DB
}

// NewGormEmployeeCacheRepository creates a new GormEmployeeCacheRepository
func NewGormEmployeeCacheRepository(db *gorm.DB) *GormEmployeeCacheRepository {
	return &GormEmployeeCacheRepository{db: db}
}

// FindByNumber finds a cached employee by employee number
func (r *GormEmployeeCacheRepository) FindByNumber(ctx context.Context, employeeNumber string) (*syncdata.EmployeeLocal, error) {
	var model models.EmployeeLocalModel
	if err := r.db.WithContext(ctx).
		First(&model, "employee_number = ?", employeeNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert inserts or updates a row keyed by employee number. A re-appearing
// employee clears the soft delete flag.
func (r *GormEmployeeCacheRepository) Upsert(ctx context.Context, employee *syncdata.EmployeeLocal) error {
	model := models.EmployeeLocalModelFromDomain(employee)
	model.IsDeleted = false
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "employee_number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"first_name", "last_name", "position", "is_deleted", "synced_at",
			}),
		}).
		Create(model).Error
}

// SoftDeleteMissing flags every row absent from keep as deleted
func (r *GormEmployeeCacheRepository) SoftDeleteMissing(ctx context.Context, keep []string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.EmployeeLocalModel{}).
		Where("is_deleted = ?", false)
	if len(keep) > 0 {
		query = query.Where("employee_number NOT IN ?", keep)
	}
	result := query.Update("is_deleted", true)
	return result.RowsAffected, result.Error
}

var _ syncdata.EmployeeLocalRepository = (*GormEmployeeCacheRepository)(nil)
