package revenue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RevenueFilter carries list filtering options for revenue records
type RevenueFilter struct {
	AssignmentType *AssignmentType
	Status         *RemittanceStatus
	DateFrom       *time.Time
	DateTo         *time.Time
	Search         string
	Page           int
	PageSize       int
	OrderBy        string // revenue_date or amount_remitted
	OrderDir       string
}

// RevenueRepository persists revenue records
type RevenueRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Revenue, error)
	FindByTrip(ctx context.Context, assignmentID, busTripID int64) (*Revenue, error)
	FindAll(ctx context.Context, filter RevenueFilter) ([]Revenue, int64, error)
	// LastCodeForYear returns the lexicographically-last revenue code for
	// the year, or empty string when none exist.
	LastCodeForYear(ctx context.Context, year int) (string, error)
	// Create inserts the revenue row. A duplicate (assignment_id,
	// bus_trip_id) pair surfaces as shared.ErrAlreadyRecorded.
	Create(ctx context.Context, rev *Revenue) error
	Update(ctx context.Context, rev *Revenue) error
}

// ReceivableRepository persists receivables with their installment schedules
type ReceivableRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Receivable, error)
	FindByInstallmentID(ctx context.Context, installmentID uuid.UUID) (*Receivable, error)
	LastCodeForYear(ctx context.Context, year int) (string, error)
	// Create inserts the receivable and all schedule rows atomically
	Create(ctx context.Context, r *Receivable) error
	// Update saves aggregate amounts/status and every schedule row
	Update(ctx context.Context, r *Receivable) error
	// ReplaceSchedules deletes existing schedule rows and inserts the
	// receivable's current ones
	ReplaceSchedules(ctx context.Context, r *Receivable) error
	// Delete soft deletes the receivable and its schedules
	Delete(ctx context.Context, id uuid.UUID) error
}

// InstallmentPaymentRepository persists immutable payment records
type InstallmentPaymentRepository interface {
	Create(ctx context.Context, payments []InstallmentPayment) error
	FindByReceivable(ctx context.Context, receivableID uuid.UUID) ([]InstallmentPayment, error)
}

// SystemConfigurationRepository persists the reconciliation parameters
type SystemConfigurationRepository interface {
	// FindActive returns the single active configuration
	FindActive(ctx context.Context) (*SystemConfiguration, error)
	Save(ctx context.Context, cfg *SystemConfiguration) error
}
