package payroll

import (
	"context"
	"time"

	"github.com/transitledger/backend/internal/domain/payroll"
	"github.com/transitledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DataProvider fetches per-employee payroll inputs from the HR system
type DataProvider interface {
	FetchPayrollData(ctx context.Context, periodStart, periodEnd time.Time) ([]payroll.EmployeePayrollData, error)
}

// EmployeeResult is the outcome of computing one employee's pay
type EmployeeResult struct {
	EmployeeNumber string                 `json:"employee_number"`
	Record         *payroll.PayrollRecord `json:"record,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

// RunResult summarizes one payroll computation run
type RunResult struct {
	PeriodStart time.Time        `json:"period_start"`
	PeriodEnd   time.Time        `json:"period_end"`
	Total       int              `json:"total"`
	Computed    int              `json:"computed"`
	Failed      int              `json:"failed"`
	Results     []EmployeeResult `json:"results"`
}

// Service computes payroll for a period from live HR data. Records upsert
// per employee and period, so reruns after an HR correction replace the
// previous figures instead of duplicating them.
type Service struct {
	provider DataProvider
	records  payroll.PayrollRecordRepository
	audit    shared.AuditRecorder
	logger   *zap.Logger
}

// NewService creates a new payroll Service
func NewService(provider DataProvider, records payroll.PayrollRecordRepository, audit shared.AuditRecorder, logger *zap.Logger) *Service {
	return &Service{provider: provider, records: records, audit: audit, logger: logger}
}

// ListByPeriod returns the stored payroll records for a period
func (s *Service) ListByPeriod(ctx context.Context, periodStart, periodEnd time.Time) ([]payroll.PayrollRecord, error) {
	return s.records.FindByPeriod(ctx, periodStart, periodEnd)
}

// Run fetches HR data and computes pay for every employee in the period.
// One employee's bad data never blocks the rest; the summary reports
// per-employee outcomes.
func (s *Service) Run(ctx context.Context, periodStart, periodEnd time.Time, actor string) (*RunResult, error) {
	if periodEnd.Before(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Payroll period end precedes start")
	}

	data, err := s.provider.FetchPayrollData(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Total:       len(data),
		Results:     make([]EmployeeResult, 0, len(data)),
	}
	for _, d := range data {
		er := EmployeeResult{EmployeeNumber: d.EmployeeNumber}
		record, err := payroll.Compute(d, periodStart, periodEnd)
		if err == nil {
			err = s.records.Upsert(ctx, record)
		}
		if err != nil {
			er.Error = err.Error()
			result.Failed++
			s.logger.Warn("payroll computation failed",
				zap.String("employee", d.EmployeeNumber), zap.Error(err))
		} else {
			er.Record = record
			result.Computed++
		}
		result.Results = append(result.Results, er)
	}

	s.logger.Info("payroll run finished",
		zap.Time("period_start", periodStart),
		zap.Time("period_end", periodEnd),
		zap.Int("computed", result.Computed),
		zap.Int("failed", result.Failed))
	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  "payroll",
		Action:      "run",
		PerformedBy: actor,
		Metadata: map[string]any{
			"period_start": periodStart.Format("2006-01-02"),
			"period_end":   periodEnd.Format("2006-01-02"),
			"computed":     result.Computed,
			"failed":       result.Failed,
		},
	})
	return result, nil
}
