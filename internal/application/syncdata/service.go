package syncdata

import (
	"context"
	"sync"
	"time"

	"github.com/transitledger/backend/internal/domain/shared"
	"github.com/transitledger/backend/internal/domain/syncdata"
	"go.uber.org/zap"
)

// TableResult reports the outcome of syncing one cache table
type TableResult struct {
	Table       string `json:"table"`
	Fetched     int    `json:"fetched"`
	Upserted    int    `json:"upserted"`
	SoftDeleted int64  `json:"soft_deleted"`
	Error       string `json:"error,omitempty"`
}

// SyncResult summarizes one full sync run. Partial reports a run where at
// least one table failed while others succeeded.
type SyncResult struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Partial    bool          `json:"partial"`
	Tables     []TableResult `json:"tables"`
}

// Service mirrors upstream HR, inventory and operations data into the local
// cache tables. Tables sync in dependency order (employees and buses before
// rentals and trips) so foreign references always resolve. Rows missing from
// an upstream response are soft deleted, never removed, and upserts preserve
// the locally-owned financial flags.
type Service struct {
	gateway   syncdata.Gateway
	employees syncdata.EmployeeLocalRepository
	buses     syncdata.BusLocalRepository
	rentals   syncdata.RentalLocalRepository
	trips     syncdata.BusTripLocalRepository
	audit     shared.AuditRecorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new sync Service
func NewService(
	gateway syncdata.Gateway,
	employees syncdata.EmployeeLocalRepository,
	buses syncdata.BusLocalRepository,
	rentals syncdata.RentalLocalRepository,
	trips syncdata.BusTripLocalRepository,
	audit shared.AuditRecorder,
	logger *zap.Logger,
) *Service {
	return &Service{
		gateway:   gateway,
		employees: employees,
		buses:     buses,
		rentals:   rentals,
		trips:     trips,
		audit:     audit,
		logger:    logger,
		now:       time.Now,
	}
}

// WithNow overrides the clock, for tests
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// SyncAll refreshes every cache table from upstream. Each table is isolated:
// a fetch or persistence failure marks that table failed and the run partial,
// and the remaining tables still sync.
func (s *Service) SyncAll(ctx context.Context, actor string) (*SyncResult, error) {
	result := &SyncResult{StartedAt: s.now()}

	// Employees and buses have no mutual dependency, so they refresh in
	// parallel. Rentals and trips reference both tables and wait for them.
	var employees, buses TableResult
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		employees = s.syncEmployees(ctx)
	}()
	go func() {
		defer wg.Done()
		buses = s.syncBuses(ctx)
	}()
	wg.Wait()

	result.Tables = append(result.Tables,
		employees,
		buses,
		s.syncRentals(ctx),
		s.syncTrips(ctx),
	)
	for _, t := range result.Tables {
		if t.Error != "" {
			result.Partial = true
		}
	}
	result.FinishedAt = s.now()

	s.logger.Info("sync run finished",
		zap.Bool("partial", result.Partial),
		zap.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)))
	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  "sync-data",
		Action:      "sync-all",
		PerformedBy: actor,
		Metadata:    map[string]any{"partial": result.Partial, "tables": result.Tables},
	})
	return result, nil
}

func (s *Service) syncEmployees(ctx context.Context) TableResult {
	result := TableResult{Table: "employees"}

	rows, err := s.gateway.FetchEmployees(ctx)
	if err != nil {
		return s.failed(result, err)
	}
	result.Fetched = len(rows)
	if len(rows) == 0 {
		return s.skippedEmpty(result)
	}

	syncedAt := s.now()
	keep := make([]string, 0, len(rows))
	for i := range rows {
		rows[i].SyncedAt = syncedAt
		if err := s.employees.Upsert(ctx, &rows[i]); err != nil {
			return s.failed(result, err)
		}
		result.Upserted++
		keep = append(keep, rows[i].EmployeeNumber)
	}

	deleted, err := s.employees.SoftDeleteMissing(ctx, keep)
	if err != nil {
		return s.failed(result, err)
	}
	result.SoftDeleted = deleted
	return result
}

func (s *Service) syncBuses(ctx context.Context) TableResult {
	result := TableResult{Table: "buses"}

	rows, err := s.gateway.FetchBuses(ctx)
	if err != nil {
		return s.failed(result, err)
	}
	result.Fetched = len(rows)
	if len(rows) == 0 {
		return s.skippedEmpty(result)
	}

	syncedAt := s.now()
	keep := make([]int64, 0, len(rows))
	for i := range rows {
		rows[i].SyncedAt = syncedAt
		if err := s.buses.Upsert(ctx, &rows[i]); err != nil {
			return s.failed(result, err)
		}
		result.Upserted++
		keep = append(keep, rows[i].ExternalID)
	}

	deleted, err := s.buses.SoftDeleteMissing(ctx, keep)
	if err != nil {
		return s.failed(result, err)
	}
	result.SoftDeleted = deleted
	return result
}

func (s *Service) syncRentals(ctx context.Context) TableResult {
	result := TableResult{Table: "rentals"}

	rows, err := s.gateway.FetchRentals(ctx)
	if err != nil {
		return s.failed(result, err)
	}
	result.Fetched = len(rows)
	if len(rows) == 0 {
		return s.skippedEmpty(result)
	}

	syncedAt := s.now()
	keep := make([]int64, 0, len(rows))
	for i := range rows {
		rows[i].SyncedAt = syncedAt
		if err := s.rentals.Upsert(ctx, &rows[i]); err != nil {
			return s.failed(result, err)
		}
		result.Upserted++
		keep = append(keep, rows[i].ExternalID)
	}

	deleted, err := s.rentals.SoftDeleteMissing(ctx, keep)
	if err != nil {
		return s.failed(result, err)
	}
	result.SoftDeleted = deleted
	return result
}

func (s *Service) syncTrips(ctx context.Context) TableResult {
	result := TableResult{Table: "bus_trips"}

	rows, err := s.gateway.FetchBusTrips(ctx)
	if err != nil {
		return s.failed(result, err)
	}
	result.Fetched = len(rows)
	if len(rows) == 0 {
		return s.skippedEmpty(result)
	}

	syncedAt := s.now()
	keep := make([]syncdata.TripKey, 0, len(rows))
	for i := range rows {
		rows[i].SyncedAt = syncedAt
		if err := s.trips.Upsert(ctx, &rows[i]); err != nil {
			return s.failed(result, err)
		}
		result.Upserted++
		keep = append(keep, syncdata.TripKey{
			AssignmentID: rows[i].AssignmentID,
			BusTripID:    rows[i].BusTripID,
		})
	}

	deleted, err := s.trips.SoftDeleteMissing(ctx, keep)
	if err != nil {
		return s.failed(result, err)
	}
	result.SoftDeleted = deleted
	return result
}

// skippedEmpty leaves the cache untouched when upstream reports no rows at
// all. A genuinely emptied dataset is indistinguishable from a broken feed,
// and soft-deleting the whole table on a bad response is the worse failure.
func (s *Service) skippedEmpty(result TableResult) TableResult {
	s.logger.Warn("upstream returned no rows, keeping the local cache",
		zap.String("table", result.Table))
	return result
}

func (s *Service) failed(result TableResult, err error) TableResult {
	result.Error = err.Error()
	s.logger.Error("cache table sync failed",
		zap.String("table", result.Table), zap.Error(err))
	return result
}
