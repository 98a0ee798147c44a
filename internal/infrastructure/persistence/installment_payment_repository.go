package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInstallmentPaymentRepository implements InstallmentPaymentRepository
// using GORM. Payment rows are immutable: inserted once, never updated.
type GormInstallmentPaymentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentPaymentRepository creates a new GormInstallmentPaymentRepository
func NewGormInstallmentPaymentRepository(db *gorm.DB) *GormInstallmentPaymentRepository {
	return &GormInstallmentPaymentRepository{db: db}
}

// Create inserts a batch of payment rows
func (r *GormInstallmentPaymentRepository) Create(ctx context.Context, payments []revenue.InstallmentPayment) error {
	if len(payments) == 0 {
		return nil
	}
	paymentModels := make([]models.InstallmentPaymentModel, len(payments))
	for i, p := range payments {
		paymentModels[i] = models.InstallmentPaymentModelFromDomain(p)
	}
	return r.db.WithContext(ctx).Create(&paymentModels).Error
}

// FindByReceivable returns a receivable's payment history, oldest first
func (r *GormInstallmentPaymentRepository) FindByReceivable(ctx context.Context, receivableID uuid.UUID) ([]revenue.InstallmentPayment, error) {
	var paymentModels []models.InstallmentPaymentModel
	if err := r.db.WithContext(ctx).
		Where("receivable_id = ?", receivableID).
		Order("created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]revenue.InstallmentPayment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = paymentModels[i].ToDomain()
	}
	return payments, nil
}

var _ revenue.InstallmentPaymentRepository = (*GormInstallmentPaymentRepository)(nil)
