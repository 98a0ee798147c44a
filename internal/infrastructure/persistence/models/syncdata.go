package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/syncdata"
)

// EmployeeLocalModel mirrors upstream HR employees. Rows soft delete via the
// is_deleted flag so historical trip references stay resolvable.
type EmployeeLocalModel struct {
	EmployeeNumber string    `gorm:"type:varchar(32);primary_key"`
	FirstName      string    `gorm:"type:varchar(128);not null"`
	LastName       string    `gorm:"type:varchar(128);not null"`
	Position       string    `gorm:"type:varchar(32);not null"`
	IsDeleted      bool      `gorm:"not null;default:false;index"`
	SyncedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for EmployeeLocalModel
func (EmployeeLocalModel) TableName() string {
	return "employees_local"
}

// ToDomain converts EmployeeLocalModel to a domain EmployeeLocal
func (m *EmployeeLocalModel) ToDomain() *syncdata.EmployeeLocal {
	return &syncdata.EmployeeLocal{
		EmployeeNumber: m.EmployeeNumber,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Position:       syncdata.EmployeePosition(m.Position),
		IsDeleted:      m.IsDeleted,
		SyncedAt:       m.SyncedAt,
	}
}

// EmployeeLocalModelFromDomain converts a domain EmployeeLocal to its model
func EmployeeLocalModelFromDomain(e *syncdata.EmployeeLocal) *EmployeeLocalModel {
	return &EmployeeLocalModel{
		EmployeeNumber: e.EmployeeNumber,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		Position:       string(e.Position),
		IsDeleted:      e.IsDeleted,
		SyncedAt:       e.SyncedAt,
	}
}

// BusLocalModel mirrors upstream inventory buses
type BusLocalModel struct {
	ExternalID  int64     `gorm:"primary_key;autoIncrement:false"`
	BodyNumber  string    `gorm:"type:varchar(32);not null"`
	PlateNumber string    `gorm:"type:varchar(32);not null"`
	Capacity    int       `gorm:"not null;default:0"`
	IsDeleted   bool      `gorm:"not null;default:false;index"`
	SyncedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for BusLocalModel
func (BusLocalModel) TableName() string {
	return "buses_local"
}

// ToDomain converts BusLocalModel to a domain BusLocal
func (m *BusLocalModel) ToDomain() *syncdata.BusLocal {
	return &syncdata.BusLocal{
		ExternalID:  m.ExternalID,
		BodyNumber:  m.BodyNumber,
		PlateNumber: m.PlateNumber,
		Capacity:    m.Capacity,
		IsDeleted:   m.IsDeleted,
		SyncedAt:    m.SyncedAt,
	}
}

// BusLocalModelFromDomain converts a domain BusLocal to its model
func BusLocalModelFromDomain(b *syncdata.BusLocal) *BusLocalModel {
	return &BusLocalModel{
		ExternalID:  b.ExternalID,
		BodyNumber:  b.BodyNumber,
		PlateNumber: b.PlateNumber,
		Capacity:    b.Capacity,
		IsDeleted:   b.IsDeleted,
		SyncedAt:    b.SyncedAt,
	}
}

// RentalLocalModel mirrors upstream rental contracts. is_revenue_recorded is
// owned by this service and never overwritten by sync upserts.
type RentalLocalModel struct {
	ExternalID        int64           `gorm:"primary_key;autoIncrement:false"`
	CustomerName      string          `gorm:"type:varchar(255);not null"`
	BusExternalID     int64           `gorm:"not null;index"`
	ContractAmount    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	RentalDate        time.Time       `gorm:"not null"`
	IsRevenueRecorded bool            `gorm:"not null;default:false"`
	IsDeleted         bool            `gorm:"not null;default:false;index"`
	SyncedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for RentalLocalModel
func (RentalLocalModel) TableName() string {
	return "rentals_local"
}

// ToDomain converts RentalLocalModel to a domain RentalLocal
func (m *RentalLocalModel) ToDomain() *syncdata.RentalLocal {
	return &syncdata.RentalLocal{
		ExternalID:        m.ExternalID,
		CustomerName:      m.CustomerName,
		BusExternalID:     m.BusExternalID,
		ContractAmount:    m.ContractAmount,
		RentalDate:        m.RentalDate,
		IsRevenueRecorded: m.IsRevenueRecorded,
		IsDeleted:         m.IsDeleted,
		SyncedAt:          m.SyncedAt,
	}
}

// RentalLocalModelFromDomain converts a domain RentalLocal to its model
func RentalLocalModelFromDomain(r *syncdata.RentalLocal) *RentalLocalModel {
	return &RentalLocalModel{
		ExternalID:        r.ExternalID,
		CustomerName:      r.CustomerName,
		BusExternalID:     r.BusExternalID,
		ContractAmount:    r.ContractAmount,
		RentalDate:        r.RentalDate,
		IsRevenueRecorded: r.IsRevenueRecorded,
		IsDeleted:         r.IsDeleted,
		SyncedAt:          r.SyncedAt,
	}
}

// BusTripLocalModel mirrors upstream bus trips. The composite primary key is
// (assignment_id, bus_trip_id); the financial flags are owned by this
// service and preserved across sync upserts.
type BusTripLocalModel struct {
	AssignmentID        int64           `gorm:"primary_key;autoIncrement:false"`
	BusTripID           int64           `gorm:"primary_key;autoIncrement:false"`
	BusExternalID       int64           `gorm:"not null;index"`
	DriverEmployeeNo    string          `gorm:"type:varchar(32);not null"`
	ConductorEmployeeNo string          `gorm:"type:varchar(32);not null"`
	AssignmentType      string          `gorm:"type:varchar(16);not null"`
	AssignmentValue     decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	TripRevenue         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	FuelExpense         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TripDate            time.Time       `gorm:"not null;index"`
	PaymentMethod       string          `gorm:"type:varchar(16);not null"`
	IsRevenueRecorded   bool            `gorm:"not null;default:false;index"`
	IsExpenseRecorded   bool            `gorm:"not null;default:false"`
	IsDeleted           bool            `gorm:"not null;default:false;index"`
	SyncedAt            time.Time       `gorm:"not null"`
}

// TableName returns the table name for BusTripLocalModel
func (BusTripLocalModel) TableName() string {
	return "bus_trips_local"
}

// ToDomain converts BusTripLocalModel to a domain BusTripLocal
func (m *BusTripLocalModel) ToDomain() *syncdata.BusTripLocal {
	return &syncdata.BusTripLocal{
		AssignmentID:        m.AssignmentID,
		BusTripID:           m.BusTripID,
		BusExternalID:       m.BusExternalID,
		DriverEmployeeNo:    m.DriverEmployeeNo,
		ConductorEmployeeNo: m.ConductorEmployeeNo,
		AssignmentType:      revenue.AssignmentType(m.AssignmentType),
		AssignmentValue:     m.AssignmentValue,
		TripRevenue:         m.TripRevenue,
		FuelExpense:         m.FuelExpense,
		TripDate:            m.TripDate,
		PaymentMethod:       revenue.PaymentMethod(m.PaymentMethod),
		IsRevenueRecorded:   m.IsRevenueRecorded,
		IsExpenseRecorded:   m.IsExpenseRecorded,
		IsDeleted:           m.IsDeleted,
		SyncedAt:            m.SyncedAt,
	}
}

// BusTripLocalModelFromDomain converts a domain BusTripLocal to its model
func BusTripLocalModelFromDomain(t *syncdata.BusTripLocal) *BusTripLocalModel {
	return &BusTripLocalModel{
		AssignmentID:        t.AssignmentID,
		BusTripID:           t.BusTripID,
		BusExternalID:       t.BusExternalID,
		DriverEmployeeNo:    t.DriverEmployeeNo,
		ConductorEmployeeNo: t.ConductorEmployeeNo,
		AssignmentType:      t.AssignmentType.String(),
		AssignmentValue:     t.AssignmentValue,
		TripRevenue:         t.TripRevenue,
		FuelExpense:         t.FuelExpense,
		TripDate:            t.TripDate,
		PaymentMethod:       string(t.PaymentMethod),
		IsRevenueRecorded:   t.IsRevenueRecorded,
		IsExpenseRecorded:   t.IsExpenseRecorded,
		IsDeleted:           t.IsDeleted,
		SyncedAt:            t.SyncedAt,
	}
}
