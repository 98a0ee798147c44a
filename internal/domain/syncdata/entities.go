package syncdata

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/revenue"
)

// EmployeePosition is the role an employee holds on trips
type EmployeePosition string

const (
	PositionDriver    EmployeePosition = "DRIVER"
	PositionConductor EmployeePosition = "CONDUCTOR"
	PositionOther     EmployeePosition = "OTHER"
)

// EmployeeLocal mirrors one upstream HR employee. Rows are never hard
// deleted: an employee absent from a later sync is soft deleted so trip
// references stay resolvable.
type EmployeeLocal struct {
	EmployeeNumber string           `json:"employee_number"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Position       EmployeePosition `json:"position"`
	IsDeleted      bool             `json:"is_deleted"`
	SyncedAt       time.Time        `json:"synced_at"`
}

// FullName returns the employee's display name
func (e *EmployeeLocal) FullName() string {
	if e.FirstName == "" {
		return e.LastName
	}
	return e.FirstName + " " + e.LastName
}

// BusLocal mirrors one upstream inventory bus
type BusLocal struct {
	ExternalID  int64     `json:"external_id"`
	BodyNumber  string    `json:"body_number"`
	PlateNumber string    `json:"plate_number"`
	Capacity    int       `json:"capacity"`
	IsDeleted   bool      `json:"is_deleted"`
	SyncedAt    time.Time `json:"synced_at"`
}

// RentalLocal mirrors one upstream operations rental contract
type RentalLocal struct {
	ExternalID        int64           `json:"external_id"`
	CustomerName      string          `json:"customer_name"`
	BusExternalID     int64           `json:"bus_external_id"`
	ContractAmount    decimal.Decimal `json:"contract_amount"`
	RentalDate        time.Time       `json:"rental_date"`
	IsRevenueRecorded bool            `json:"is_revenue_recorded"`
	IsDeleted         bool            `json:"is_deleted"`
	SyncedAt          time.Time       `json:"synced_at"`
}

// BusTripLocal mirrors one upstream operations bus trip. The pair
// (AssignmentID, BusTripID) is unique; IsRevenueRecorded and
// IsExpenseRecorded are protected financial flags owned by this service and
// must survive re-sync even when the upstream row is absent or unchanged.
type BusTripLocal struct {
	AssignmentID        int64                  `json:"assignment_id"`
	BusTripID           int64                  `json:"bus_trip_id"`
	BusExternalID       int64                  `json:"bus_external_id"`
	DriverEmployeeNo    string                 `json:"driver_employee_no"`
	ConductorEmployeeNo string                 `json:"conductor_employee_no"`
	AssignmentType      revenue.AssignmentType `json:"assignment_type"`
	AssignmentValue     decimal.Decimal        `json:"assignment_value"`
	TripRevenue         decimal.Decimal        `json:"trip_revenue"`
	FuelExpense         decimal.Decimal        `json:"fuel_expense"`
	TripDate            time.Time              `json:"trip_date"`
	PaymentMethod       revenue.PaymentMethod  `json:"payment_method"`
	IsRevenueRecorded   bool                   `json:"is_revenue_recorded"`
	IsExpenseRecorded   bool                   `json:"is_expense_recorded"`
	IsDeleted           bool                   `json:"is_deleted"`
	SyncedAt            time.Time              `json:"synced_at"`
}
