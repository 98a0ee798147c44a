package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/payroll"
)

// PayrollRecordModel maps computed payroll records. The unique index on
// (employee_number, period_start, period_end) makes reruns idempotent.
type PayrollRecordModel struct {
	AggregateModel
	EmployeeNumber  string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_payroll_period,priority:1"`
	PeriodStart     time.Time       `gorm:"not null;uniqueIndex:idx_payroll_period,priority:2"`
	PeriodEnd       time.Time       `gorm:"not null;uniqueIndex:idx_payroll_period,priority:3"`
	BasicRate       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	RateType        string          `gorm:"type:varchar(16);not null"`
	DaysPresent     decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	GrossPay        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TotalBenefits   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TotalDeductions decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	NetPay          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
}

// TableName returns the table name for PayrollRecordModel
func (PayrollRecordModel) TableName() string {
	return "payroll_records"
}

// ToDomain converts PayrollRecordModel to a domain PayrollRecord
func (m *PayrollRecordModel) ToDomain() *payroll.PayrollRecord {
	record := &payroll.PayrollRecord{
		EmployeeNumber:  m.EmployeeNumber,
		PeriodStart:     m.PeriodStart,
		PeriodEnd:       m.PeriodEnd,
		BasicRate:       m.BasicRate,
		RateType:        payroll.RateType(m.RateType),
		DaysPresent:     m.DaysPresent,
		GrossPay:        m.GrossPay,
		TotalBenefits:   m.TotalBenefits,
		TotalDeductions: m.TotalDeductions,
		NetPay:          m.NetPay,
	}
	m.PopulateAggregateRoot(&record.BaseAggregateRoot)
	return record
}

// PayrollRecordModelFromDomain converts a domain PayrollRecord to its model
func PayrollRecordModelFromDomain(r *payroll.PayrollRecord) *PayrollRecordModel {
	m := &PayrollRecordModel{
		EmployeeNumber:  r.EmployeeNumber,
		PeriodStart:     r.PeriodStart,
		PeriodEnd:       r.PeriodEnd,
		BasicRate:       r.BasicRate,
		RateType:        string(r.RateType),
		DaysPresent:     r.DaysPresent,
		GrossPay:        r.GrossPay,
		TotalBenefits:   r.TotalBenefits,
		TotalDeductions: r.TotalDeductions,
		NetPay:          r.NetPay,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}
