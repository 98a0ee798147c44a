package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/shared"
)

// EmployeePayrollData is one employee's slice of the HR payroll payload
type EmployeePayrollData struct {
	EmployeeNumber string          `json:"employee_number"`
	BasicRate      decimal.Decimal `json:"basic_rate"`
	RateType       RateType        `json:"rate_type"`
	Attendances    []Attendance    `json:"attendances"`
	Benefits       []PayItem       `json:"benefits"`
	Deductions     []PayItem       `json:"deductions"`
}

// PayrollRecord is the computed pay for one employee over one period
type PayrollRecord struct {
	shared.BaseAggregateRoot
	EmployeeNumber  string          `json:"employee_number"`
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	BasicRate       decimal.Decimal `json:"basic_rate"`
	RateType        RateType        `json:"rate_type"`
	DaysPresent     decimal.Decimal `json:"days_present"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	TotalBenefits   decimal.Decimal `json:"total_benefits"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
}

// Compute builds a payroll record from one employee's HR payload. Pure: the
// only side effect is the caller's eventual persistence call.
func Compute(data EmployeePayrollData, periodStart, periodEnd time.Time) (*PayrollRecord, error) {
	if data.EmployeeNumber == "" {
		return nil, shared.NewDomainError("INVALID_EMPLOYEE", "Employee number cannot be empty")
	}
	if !data.RateType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RATE_TYPE", "Rate type is not valid")
	}
	if data.BasicRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Basic rate cannot be negative")
	}
	if periodEnd.Before(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Payroll period end precedes start")
	}

	present := PresentDays(data.Attendances)
	gross := GrossPay(data.BasicRate, data.RateType, present, periodStart, periodEnd)
	benefits := SumPayItems(data.Benefits, periodStart, periodEnd, present)
	deductions := SumPayItems(data.Deductions, periodStart, periodEnd, present)

	return &PayrollRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EmployeeNumber:    data.EmployeeNumber,
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
		BasicRate:         data.BasicRate,
		RateType:          data.RateType,
		DaysPresent:       present,
		GrossPay:          gross,
		TotalBenefits:     benefits,
		TotalDeductions:   deductions,
		NetPay:            NetPay(gross, benefits, deductions),
	}, nil
}

// PayrollRecordRepository persists computed payroll records
type PayrollRecordRepository interface {
	FindByPeriod(ctx context.Context, periodStart, periodEnd time.Time) ([]PayrollRecord, error)
	// Upsert replaces any existing record for the same employee and period
	Upsert(ctx context.Context, record *PayrollRecord) error
}
