package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/revenue"
	"gorm.io/gorm"
)

// RevenueModel maps trip revenue records. The unique index on
// (assignment_id, bus_trip_id) is the authoritative at-most-once guard for
// recording a trip, regardless of application-level checks.
type RevenueModel struct {
	AggregateModel
	Code                  string          `gorm:"type:varchar(16);not null;uniqueIndex"`
	AssignmentID          int64           `gorm:"not null;uniqueIndex:idx_revenues_trip,priority:1"`
	BusTripID             int64           `gorm:"not null;uniqueIndex:idx_revenues_trip,priority:2"`
	AssignmentType        string          `gorm:"type:varchar(16);not null"`
	RevenueDate           time.Time       `gorm:"not null;index"`
	AmountRemitted        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	ExpectedRemittance    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	ShortageAmount        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	RemittanceStatus      string          `gorm:"type:varchar(16);not null;index"`
	PaymentMethod         string          `gorm:"type:varchar(16);not null"`
	Description           string          `gorm:"type:text"`
	DriverReceivableID    *uuid.UUID      `gorm:"type:uuid"`
	ConductorReceivableID *uuid.UUID      `gorm:"type:uuid"`
	JournalEntryID        *uuid.UUID      `gorm:"type:uuid"`
	DeletedAt             gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for RevenueModel
func (RevenueModel) TableName() string {
	return "revenues"
}

// ToDomain converts RevenueModel to a domain Revenue
func (m *RevenueModel) ToDomain() *revenue.Revenue {
	rev := &revenue.Revenue{
		Code:                  m.Code,
		AssignmentID:          m.AssignmentID,
		BusTripID:             m.BusTripID,
		AssignmentType:        revenue.AssignmentType(m.AssignmentType),
		RevenueDate:           m.RevenueDate,
		AmountRemitted:        m.AmountRemitted,
		ExpectedRemittance:    m.ExpectedRemittance,
		ShortageAmount:        m.ShortageAmount,
		RemittanceStatus:      revenue.RemittanceStatus(m.RemittanceStatus),
		PaymentMethod:         revenue.PaymentMethod(m.PaymentMethod),
		Description:           m.Description,
		DriverReceivableID:    m.DriverReceivableID,
		ConductorReceivableID: m.ConductorReceivableID,
		JournalEntryID:        m.JournalEntryID,
	}
	m.PopulateAggregateRoot(&rev.BaseAggregateRoot)
	return rev
}

// RevenueModelFromDomain converts a domain Revenue to RevenueModel
func RevenueModelFromDomain(r *revenue.Revenue) *RevenueModel {
	m := &RevenueModel{
		Code:                  r.Code,
		AssignmentID:          r.AssignmentID,
		BusTripID:             r.BusTripID,
		AssignmentType:        r.AssignmentType.String(),
		RevenueDate:           r.RevenueDate,
		AmountRemitted:        r.AmountRemitted,
		ExpectedRemittance:    r.ExpectedRemittance,
		ShortageAmount:        r.ShortageAmount,
		RemittanceStatus:      string(r.RemittanceStatus),
		PaymentMethod:         string(r.PaymentMethod),
		Description:           r.Description,
		DriverReceivableID:    r.DriverReceivableID,
		ConductorReceivableID: r.ConductorReceivableID,
		JournalEntryID:        r.JournalEntryID,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// ReceivableModel maps shortage receivables
type ReceivableModel struct {
	AggregateModel
	Code             string                    `gorm:"type:varchar(16);not null;uniqueIndex"`
	DebtorEmployeeNo string                    `gorm:"type:varchar(32);not null;index"`
	DebtorName       string                    `gorm:"type:varchar(255);not null"`
	DebtorRole       string                    `gorm:"type:varchar(16);not null"`
	Description      string                    `gorm:"type:text"`
	TotalAmount      decimal.Decimal           `gorm:"type:numeric(14,2);not null"`
	PaidAmount       decimal.Decimal           `gorm:"type:numeric(14,2);not null"`
	Balance          decimal.Decimal           `gorm:"type:numeric(14,2);not null"`
	Status           string                    `gorm:"type:varchar(16);not null;index"`
	Frequency        string                    `gorm:"type:varchar(16);not null"`
	NumberOfPayments int                       `gorm:"not null"`
	DueDate          time.Time                  `gorm:"not null"`
	DeletedAt        gorm.DeletedAt             `gorm:"index"`
	Schedules        []InstallmentScheduleModel `gorm:"foreignKey:ReceivableID"`
}

// TableName returns the table name for ReceivableModel
func (ReceivableModel) TableName() string {
	return "receivables"
}

// InstallmentScheduleModel maps one amortized installment
type InstallmentScheduleModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReceivableID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InstallmentNumber int             `gorm:"not null"`
	DueDate           time.Time       `gorm:"not null;index"`
	AmountDue         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	AmountPaid        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Balance           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Status            string          `gorm:"type:varchar(16);not null;index"`
	DeletedAt         gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for InstallmentScheduleModel
func (InstallmentScheduleModel) TableName() string {
	return "installment_schedules"
}

// ToDomain converts ReceivableModel to a domain Receivable
func (m *ReceivableModel) ToDomain() *revenue.Receivable {
	r := &revenue.Receivable{
		Code:             m.Code,
		DebtorEmployeeNo: m.DebtorEmployeeNo,
		DebtorName:       m.DebtorName,
		DebtorRole:       revenue.DebtorRole(m.DebtorRole),
		Description:      m.Description,
		TotalAmount:      m.TotalAmount,
		PaidAmount:       m.PaidAmount,
		Balance:          m.Balance,
		Status:           revenue.ReceivableStatus(m.Status),
		Frequency:        revenue.PaymentFrequency(m.Frequency),
		NumberOfPayments: m.NumberOfPayments,
		DueDate:          m.DueDate,
	}
	m.PopulateAggregateRoot(&r.BaseAggregateRoot)

	r.Schedules = make([]revenue.InstallmentSchedule, len(m.Schedules))
	for i := range m.Schedules {
		r.Schedules[i] = m.Schedules[i].ToDomain()
	}
	return r
}

// ToDomain converts InstallmentScheduleModel to a domain InstallmentSchedule
func (m *InstallmentScheduleModel) ToDomain() revenue.InstallmentSchedule {
	return revenue.InstallmentSchedule{
		ID:                m.ID,
		ReceivableID:      m.ReceivableID,
		InstallmentNumber: m.InstallmentNumber,
		DueDate:           m.DueDate,
		AmountDue:         m.AmountDue,
		AmountPaid:        m.AmountPaid,
		Balance:           m.Balance,
		Status:            revenue.InstallmentStatus(m.Status),
	}
}

// ReceivableModelFromDomain converts a domain Receivable to its model
func ReceivableModelFromDomain(r *revenue.Receivable) *ReceivableModel {
	m := &ReceivableModel{
		Code:             r.Code,
		DebtorEmployeeNo: r.DebtorEmployeeNo,
		DebtorName:       r.DebtorName,
		DebtorRole:       string(r.DebtorRole),
		Description:      r.Description,
		TotalAmount:      r.TotalAmount,
		PaidAmount:       r.PaidAmount,
		Balance:          r.Balance,
		Status:           string(r.Status),
		Frequency:        r.Frequency.String(),
		NumberOfPayments: r.NumberOfPayments,
		DueDate:          r.DueDate,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)

	m.Schedules = make([]InstallmentScheduleModel, len(r.Schedules))
	for i, s := range r.Schedules {
		m.Schedules[i] = InstallmentScheduleModel{
			ID:                s.ID,
			ReceivableID:      s.ReceivableID,
			InstallmentNumber: s.InstallmentNumber,
			DueDate:           s.DueDate,
			AmountDue:         s.AmountDue,
			AmountPaid:        s.AmountPaid,
			Balance:           s.Balance,
			Status:            string(s.Status),
		}
	}
	return m
}

// InstallmentPaymentModel maps immutable payment records
type InstallmentPaymentModel struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primary_key"`
	InstallmentScheduleID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReceivableID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount                decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PaymentDate           time.Time       `gorm:"not null"`
	Method                string          `gorm:"type:varchar(16);not null"`
	Reference             string          `gorm:"type:varchar(128)"`
	JournalEntryID        *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt             time.Time       `gorm:"not null"`
}

// TableName returns the table name for InstallmentPaymentModel
func (InstallmentPaymentModel) TableName() string {
	return "installment_payments"
}

// ToDomain converts InstallmentPaymentModel to a domain InstallmentPayment
func (m *InstallmentPaymentModel) ToDomain() revenue.InstallmentPayment {
	return revenue.InstallmentPayment{
		ID:                    m.ID,
		InstallmentScheduleID: m.InstallmentScheduleID,
		ReceivableID:          m.ReceivableID,
		Amount:                m.Amount,
		PaymentDate:           m.PaymentDate,
		Method:                revenue.PaymentMethod(m.Method),
		Reference:             m.Reference,
		JournalEntryID:        m.JournalEntryID,
		CreatedAt:             m.CreatedAt,
	}
}

// InstallmentPaymentModelFromDomain converts a domain payment to its model
func InstallmentPaymentModelFromDomain(p revenue.InstallmentPayment) InstallmentPaymentModel {
	return InstallmentPaymentModel{
		ID:                    p.ID,
		InstallmentScheduleID: p.InstallmentScheduleID,
		ReceivableID:          p.ReceivableID,
		Amount:                p.Amount,
		PaymentDate:           p.PaymentDate,
		Method:                string(p.Method),
		Reference:             p.Reference,
		JournalEntryID:        p.JournalEntryID,
		CreatedAt:             p.CreatedAt,
	}
}

// SystemConfigurationModel maps the reconciliation parameters. A partial
// unique index keeps at most one active row.
type SystemConfigurationModel struct {
	AggregateModel
	DriverSharePercent    decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	ConductorSharePercent decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	InstallmentFrequency  string          `gorm:"type:varchar(16);not null"`
	InstallmentCount      int             `gorm:"not null"`
	DueDateOffsetDays     int             `gorm:"not null"`
	Active                bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for SystemConfigurationModel
func (SystemConfigurationModel) TableName() string {
	return "system_configurations"
}

// ToDomain converts SystemConfigurationModel to a domain SystemConfiguration
func (m *SystemConfigurationModel) ToDomain() *revenue.SystemConfiguration {
	cfg := &revenue.SystemConfiguration{
		DriverSharePercent:    m.DriverSharePercent,
		ConductorSharePercent: m.ConductorSharePercent,
		InstallmentFrequency:  revenue.PaymentFrequency(m.InstallmentFrequency),
		InstallmentCount:      m.InstallmentCount,
		DueDateOffsetDays:     m.DueDateOffsetDays,
		Active:                m.Active,
	}
	m.PopulateAggregateRoot(&cfg.BaseAggregateRoot)
	return cfg
}

// SystemConfigurationModelFromDomain converts a domain configuration to its model
func SystemConfigurationModelFromDomain(c *revenue.SystemConfiguration) *SystemConfigurationModel {
	m := &SystemConfigurationModel{
		DriverSharePercent:    c.DriverSharePercent,
		ConductorSharePercent: c.ConductorSharePercent,
		InstallmentFrequency:  c.InstallmentFrequency.String(),
		InstallmentCount:      c.InstallmentCount,
		DueDateOffsetDays:     c.DueDateOffsetDays,
		Active:                c.Active,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}
