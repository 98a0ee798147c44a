package persistence

import (
	"context"
	"time"

	"github.com/transitledger/backend/internal/domain/payroll"
	"github.com/transitledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPayrollRecordRepository implements PayrollRecordRepository using GORM
type GormPayrollRecordRepository struct {
	db *gorm.DB
}

// NewGormPayrollRecordRepository creates a new GormPayrollRecordRepository
func NewGormPayrollRecordRepository(db *gorm.DB) *GormPayrollRecordRepository {
	return &GormPayrollRecordRepository{db: db}
}

// FindByPeriod returns all payroll records for one period
func (r *GormPayrollRecordRepository) FindByPeriod(ctx context.Context, periodStart, periodEnd time.Time) ([]payroll.PayrollRecord, error) {
	var recordModels []models.PayrollRecordModel
	if err := r.db.WithContext(ctx).
		Where("period_start = ? AND period_end = ?", periodStart, periodEnd).
		Order("employee_number ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]payroll.PayrollRecord, len(recordModels))
	for i := range recordModels {
		records[i] = *recordModels[i].ToDomain()
	}
	return records, nil
}

// Upsert replaces any existing record for the same employee and period, so
// payroll reruns after HR corrections are idempotent.
func (r *GormPayrollRecordRepository) Upsert(ctx context.Context, record *payroll.PayrollRecord) error {
	model := models.PayrollRecordModelFromDomain(record)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "employee_number"}, {Name: "period_start"}, {Name: "period_end"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"basic_rate", "rate_type", "days_present", "gross_pay",
				"total_benefits", "total_deductions", "net_pay", "updated_at", "version",
			}),
		}).
		Create(model).Error
}

var _ payroll.PayrollRecordRepository = (*GormPayrollRecordRepository)(nil)
