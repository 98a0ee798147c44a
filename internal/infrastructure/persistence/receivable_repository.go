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
	"gorm.io/gorm/clause"
)

// GormReceivableRepository implements ReceivableRepository using GORM
type GormReceivableRepository struct {
	db *gorm.DB
}

// NewGormReceivableRepository creates a new GormReceivableRepository
func NewGormReceivableRepository(db *gorm.DB) *GormReceivableRepository {
	return &GormReceivableRepository{db: db}
}

func (r *GormReceivableRepository) preloadSchedules(db *gorm.DB) *gorm.DB {
	return db.Preload("Schedules", func(db *gorm.DB) *gorm.DB {
		return db.Order("installment_number ASC")
	})
}

// FindByID finds a receivable with its installment schedule
func (r *GormReceivableRepository) FindByID(ctx context.Context, id uuid.UUID) (*revenue.Receivable, error) {
	var model models.ReceivableModel
	if err := r.preloadSchedules(r.db.WithContext(ctx)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInstallmentID finds the receivable owning an installment
func (r *GormReceivableRepository) FindByInstallmentID(ctx context.Context, installmentID uuid.UUID) (*revenue.Receivable, error) {
	var schedule models.InstallmentScheduleModel
	if err := r.db.WithContext(ctx).
		First(&schedule, "id = ?", installmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, schedule.ReceivableID)
}

// LastCodeForYear returns the lexicographically-last receivable code for the
// year, deleted rows included so codes never reuse.
func (r *GormReceivableRepository) LastCodeForYear(ctx context.Context, year int) (string, error) {
	var code *string
	if err := r.db.WithContext(ctx).Model(&models.ReceivableModel{}).
		Unscoped().
		Where("code LIKE ?", fmt.Sprintf("%s-%d-%%", revenue.ReceivableCodePrefix, year)).
		Select("MAX(code)").
		Scan(&code).Error; err != nil {
		return "", err
	}
	if code == nil {
		return "", nil
	}
	return *code, nil
}

// Create inserts the receivable and all schedule rows atomically
func (r *GormReceivableRepository) Create(ctx context.Context, rcv *revenue.Receivable) error {
	model := models.ReceivableModelFromDomain(rcv)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err, "") {
			return shared.NewDomainError("DUPLICATE_RECEIVABLE_CODE",
				fmt.Sprintf("Receivable code %s already exists", rcv.Code))
		}
		return err
	}
	return nil
}

// Update saves the aggregate amounts and status plus every schedule row
func (r *GormReceivableRepository) Update(ctx context.Context, rcv *revenue.Receivable) error {
	model := models.ReceivableModelFromDomain(rcv)
	schedules := model.Schedules
	model.Schedules = nil

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	for i := range schedules {
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"amount_paid", "balance", "status", "due_date", "amount_due",
				}),
			}).
			Create(&schedules[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReplaceSchedules deletes existing schedule rows and inserts the
// receivable's current ones.
func (r *GormReceivableRepository) ReplaceSchedules(ctx context.Context, rcv *revenue.Receivable) error {
	model := models.ReceivableModelFromDomain(rcv)
	schedules := model.Schedules
	model.Schedules = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("receivable_id = ?", rcv.ID).
			Delete(&models.InstallmentScheduleModel{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&schedules).Error; err != nil {
			return err
		}
		return tx.Save(model).Error
	})
}

// Delete soft deletes the receivable and its schedules
func (r *GormReceivableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("receivable_id = ?", id).
			Delete(&models.InstallmentScheduleModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ReceivableModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ revenue.ReceivableRepository = (*GormReceivableRepository)(nil)
