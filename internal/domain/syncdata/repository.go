package syncdata

import (
	"context"
)

// TripFilter carries list filtering options for cached bus trips
type TripFilter struct {
	UnrecordedOnly bool
	Page           int
	PageSize       int
}

// EmployeeLocalRepository persists the employee cache table
type EmployeeLocalRepository interface {
	FindByNumber(ctx context.Context, employeeNumber string) (*EmployeeLocal, error)
	// Upsert inserts or updates a row keyed by employee number
	Upsert(ctx context.Context, employee *EmployeeLocal) error
	// SoftDeleteMissing flags every row whose employee number is not in
	// keep as deleted, without removing the row.
	SoftDeleteMissing(ctx context.Context, keep []string) (int64, error)
}

// BusLocalRepository persists the bus cache table
type BusLocalRepository interface {
	FindByExternalID(ctx context.Context, externalID int64) (*BusLocal, error)
	Upsert(ctx context.Context, bus *BusLocal) error
	SoftDeleteMissing(ctx context.Context, keepExternalIDs []int64) (int64, error)
}

// RentalLocalRepository persists the rental cache table. Upserts never touch
// the protected is_revenue_recorded flag.
type RentalLocalRepository interface {
	FindByExternalID(ctx context.Context, externalID int64) (*RentalLocal, error)
	Upsert(ctx context.Context, rental *RentalLocal) error
	SoftDeleteMissing(ctx context.Context, keepExternalIDs []int64) (int64, error)
}

// TripKey is the composite identity of a cached bus trip. An assignment can
// carry several trips, so neither column identifies a row alone.
type TripKey struct {
	AssignmentID int64
	BusTripID    int64
}

// BusTripLocalRepository persists the bus trip cache table. Upserts never
// touch the protected is_revenue_recorded / is_expense_recorded flags.
type BusTripLocalRepository interface {
	FindByTrip(ctx context.Context, assignmentID, busTripID int64) (*BusTripLocal, error)
	FindUnrecorded(ctx context.Context, filter TripFilter) ([]BusTripLocal, int64, error)
	Upsert(ctx context.Context, trip *BusTripLocal) error
	// SoftDeleteMissing flags every live row whose composite key is absent
	// from keep as deleted, without removing the row.
	SoftDeleteMissing(ctx context.Context, keep []TripKey) (int64, error)
	// MarkRevenueRecorded flips the one-way is_revenue_recorded flag
	MarkRevenueRecorded(ctx context.Context, assignmentID, busTripID int64) error
}

// Gateway fetches upstream payloads. Implementations retry with backoff and
// parse the weakly-typed upstream responses into the cache entity types at
// the boundary.
type Gateway interface {
	FetchEmployees(ctx context.Context) ([]EmployeeLocal, error)
	FetchBuses(ctx context.Context) ([]BusLocal, error)
	FetchRentals(ctx context.Context) ([]RentalLocal, error)
	FetchBusTrips(ctx context.Context) ([]BusTripLocal, error)
}
