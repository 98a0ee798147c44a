package revenue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/shared"
	"github.com/transitledger/backend/internal/domain/syncdata"
	"go.uber.org/zap"
)

// CreateRevenueRequest records the remittance for one cached trip
type CreateRevenueRequest struct {
	AssignmentID   int64
	BusTripID      int64
	AmountRemitted *decimal.Decimal // defaults to the trip's recorded revenue
	RevenueDate    *time.Time       // defaults to the trip date
	PaymentMethod  *revenue.PaymentMethod
	Description    string
	Actor          string
}

// UpdateRevenueRequest amends a recorded revenue
type UpdateRevenueRequest struct {
	AmountRemitted *decimal.Decimal
	Description    *string
	RevenueDate    *time.Time
	Actor          string
}

// TripResult is the outcome of reconciling one trip in a batch
type TripResult struct {
	AssignmentID int64  `json:"assignment_id"`
	BusTripID    int64  `json:"bus_trip_id"`
	RevenueCode  string `json:"revenue_code,omitempty"`
	Error        string `json:"error,omitempty"`
}

// BatchResult summarizes a batch reconciliation run
type BatchResult struct {
	Total     int          `json:"total"`
	Processed int          `json:"processed"`
	Failed    int          `json:"failed"`
	Results   []TripResult `json:"results"`
}

// TripRevenueService reconciles cached bus trips into revenue records,
// shortage receivables and ledger entries. Each reconciliation runs in a
// single transaction so the revenue row, both receivables, the journal entry
// and the trip's recorded flag commit or roll back together.
type TripRevenueService struct {
	revenueRepo revenue.RevenueRepository
	tripRepo    syncdata.BusTripLocalRepository
	scope       TransactionScope
	configs     *SystemConfigService
	accounts    PostingAccounts
	audit       shared.AuditRecorder
	logger      *zap.Logger
	now         func() time.Time
}

// NewTripRevenueService creates a new TripRevenueService
func NewTripRevenueService(
	revenueRepo revenue.RevenueRepository,
	tripRepo syncdata.BusTripLocalRepository,
	scope TransactionScope,
	configs *SystemConfigService,
	accounts PostingAccounts,
	audit shared.AuditRecorder,
	logger *zap.Logger,
) *TripRevenueService {
	return &TripRevenueService{
		revenueRepo: revenueRepo,
		tripRepo:    tripRepo,
		scope:       scope,
		configs:     configs,
		accounts:    accounts,
		audit:       audit,
		logger:      logger,
		now:         time.Now,
	}
}

// WithNow overrides the clock, for tests
func (s *TripRevenueService) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Get returns one revenue record
func (s *TripRevenueService) Get(ctx context.Context, id uuid.UUID) (*revenue.Revenue, error) {
	return s.revenueRepo.FindByID(ctx, id)
}

// List returns revenue records matching the filter
func (s *TripRevenueService) List(ctx context.Context, filter revenue.RevenueFilter) ([]revenue.Revenue, int64, error) {
	return s.revenueRepo.FindAll(ctx, filter)
}

// ListUnrecorded returns cached trips that have no revenue recorded yet
func (s *TripRevenueService) ListUnrecorded(ctx context.Context, filter syncdata.TripFilter) ([]syncdata.BusTripLocal, int64, error) {
	filter.UnrecordedOnly = true
	return s.tripRepo.FindUnrecorded(ctx, filter)
}

// CreateForTrip reconciles one cached trip. It computes the expected
// remittance and shortage, splits the shortage into driver and conductor
// receivables per the active configuration, posts the revenue journal entry
// and flips the trip's recorded flag, all atomically. Recording the same
// trip twice fails with ALREADY_RECORDED.
func (s *TripRevenueService) CreateForTrip(ctx context.Context, req CreateRevenueRequest) (*revenue.Revenue, error) {
	cfg, err := s.configs.Active(ctx)
	if err != nil {
		return nil, err
	}

	var rev *revenue.Revenue
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		trip, err := repos.Trips().FindByTrip(ctx, req.AssignmentID, req.BusTripID)
		if err != nil {
			return err
		}
		if trip.IsDeleted {
			return shared.NewDomainError("TRIP_DELETED",
				"Cannot record revenue for a trip deleted upstream")
		}
		if trip.IsRevenueRecorded {
			return shared.ErrAlreadyRecorded
		}

		rev, err = s.buildRevenue(ctx, repos, trip, req)
		if err != nil {
			return err
		}
		// Insert first: the unique (assignment_id, bus_trip_id) constraint is
		// the authoritative at-most-once guard under concurrent requests.
		if err := repos.Revenues().Create(ctx, rev); err != nil {
			return err
		}

		if rev.ShortageAmount.IsPositive() {
			if err := s.createShortageReceivables(ctx, repos, trip, rev, cfg); err != nil {
				return err
			}
		}

		entryID, err := s.postRevenueEntry(ctx, repos, trip, rev)
		if err != nil {
			return err
		}
		if entryID != uuid.Nil {
			rev.LinkJournalEntry(entryID)
		}
		if err := repos.Revenues().Update(ctx, rev); err != nil {
			return err
		}

		return repos.Trips().MarkRevenueRecorded(ctx, trip.AssignmentID, trip.BusTripID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trip revenue recorded",
		zap.String("code", rev.Code),
		zap.Int64("assignment_id", rev.AssignmentID),
		zap.Int64("bus_trip_id", rev.BusTripID),
		zap.String("shortage", rev.ShortageAmount.StringFixed(2)))
	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  SourceModuleRevenue,
		Action:      "create",
		PerformedBy: req.Actor,
		RecordID:    rev.ID.String(),
		NewValues:   rev,
	})
	return rev, nil
}

// ProcessAllUnrecorded reconciles every unrecorded trip in one run. Each trip
// gets its own transaction so one failure never poisons the rest; the
// summary reports per-trip outcomes.
func (s *TripRevenueService) ProcessAllUnrecorded(ctx context.Context, actor string) (*BatchResult, error) {
	trips, _, err := s.tripRepo.FindUnrecorded(ctx, syncdata.TripFilter{UnrecordedOnly: true})
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Total: len(trips), Results: make([]TripResult, 0, len(trips))}
	for i := range trips {
		trip := &trips[i]
		rev, err := s.CreateForTrip(ctx, CreateRevenueRequest{
			AssignmentID: trip.AssignmentID,
			BusTripID:    trip.BusTripID,
			Actor:        actor,
		})
		tr := TripResult{AssignmentID: trip.AssignmentID, BusTripID: trip.BusTripID}
		if err != nil {
			tr.Error = err.Error()
			result.Failed++
			s.logger.Warn("batch reconciliation: trip failed",
				zap.Int64("assignment_id", trip.AssignmentID),
				zap.Int64("bus_trip_id", trip.BusTripID),
				zap.Error(err))
		} else {
			tr.RevenueCode = rev.Code
			result.Processed++
		}
		result.Results = append(result.Results, tr)
	}

	s.logger.Info("batch reconciliation finished",
		zap.Int("total", result.Total),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed))
	return result, nil
}

// Update amends a recorded revenue. Changing the amount recomputes the
// shortage and regenerates the shortage receivables; it is rejected once any
// linked receivable carries payments.
func (s *TripRevenueService) Update(ctx context.Context, id uuid.UUID, req UpdateRevenueRequest) (*revenue.Revenue, error) {
	cfg, err := s.configs.Active(ctx)
	if err != nil {
		return nil, err
	}

	var rev *revenue.Revenue
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rev, err = repos.Revenues().FindByID(ctx, id)
		if err != nil {
			return err
		}

		amountChanged := req.AmountRemitted != nil && !req.AmountRemitted.Equal(rev.AmountRemitted)
		if amountChanged {
			if err := s.dropUnpaidReceivables(ctx, repos, rev); err != nil {
				return err
			}
		}

		if err := rev.Amend(req.AmountRemitted, req.Description, req.RevenueDate); err != nil {
			return err
		}

		if amountChanged && rev.ShortageAmount.IsPositive() {
			trip, err := repos.Trips().FindByTrip(ctx, rev.AssignmentID, rev.BusTripID)
			if err != nil {
				return err
			}
			if err := s.createShortageReceivables(ctx, repos, trip, rev, cfg); err != nil {
				return err
			}
		}

		return repos.Revenues().Update(ctx, rev)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  SourceModuleRevenue,
		Action:      "update",
		PerformedBy: req.Actor,
		RecordID:    rev.ID.String(),
		NewValues:   rev,
	})
	return rev, nil
}

// buildRevenue derives the reconciliation outcome from the trip snapshot and
// allocates the next revenue code.
func (s *TripRevenueService) buildRevenue(
	ctx context.Context,
	repos TransactionalRepositories,
	trip *syncdata.BusTripLocal,
	req CreateRevenueRequest,
) (*revenue.Revenue, error) {
	amountRemitted := trip.TripRevenue
	if req.AmountRemitted != nil {
		amountRemitted = *req.AmountRemitted
	}
	revenueDate := trip.TripDate
	if req.RevenueDate != nil {
		revenueDate = *req.RevenueDate
	}
	method := trip.PaymentMethod
	if req.PaymentMethod != nil {
		method = *req.PaymentMethod
	}
	if method == "" {
		method = revenue.PaymentMethodCash
	}

	expected := revenue.ExpectedRemittance(trip.AssignmentType, trip.TripRevenue, trip.AssignmentValue, trip.FuelExpense)
	shortage := revenue.Shortage(expected, amountRemitted)
	status := revenue.RemittanceStatusFor(amountRemitted, expected)

	year := revenueDate.Year()
	last, err := repos.Revenues().LastCodeForYear(ctx, year)
	if err != nil {
		return nil, err
	}
	code, err := revenue.NextDocumentCode(revenue.RevenueCodePrefix, year, last)
	if err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Trip revenue for assignment %d trip %d", trip.AssignmentID, trip.BusTripID)
	}

	return revenue.NewRevenue(code, trip.AssignmentID, trip.BusTripID, trip.AssignmentType,
		revenueDate, amountRemitted, expected, shortage, status, method, description)
}

// createShortageReceivables splits the shortage between the trip's driver and
// conductor per the active configuration and attaches the resulting
// receivables to the revenue. A zero share creates no receivable for that
// role.
func (s *TripRevenueService) createShortageReceivables(
	ctx context.Context,
	repos TransactionalRepositories,
	trip *syncdata.BusTripLocal,
	rev *revenue.Revenue,
	cfg *revenue.SystemConfiguration,
) error {
	startDate := rev.RevenueDate.AddDate(0, 0, cfg.DueDateOffsetDays)

	var driverID, conductorID *uuid.UUID
	debtors := []struct {
		role       revenue.DebtorRole
		employeeNo string
		target     **uuid.UUID
	}{
		{revenue.DebtorRoleDriver, trip.DriverEmployeeNo, &driverID},
		{revenue.DebtorRoleConductor, trip.ConductorEmployeeNo, &conductorID},
	}

	for _, d := range debtors {
		share := cfg.ShareOf(d.role, rev.ShortageAmount)
		if !share.IsPositive() || d.employeeNo == "" {
			continue
		}

		name := d.employeeNo
		if emp, err := repos.Employees().FindByNumber(ctx, d.employeeNo); err == nil {
			name = emp.FullName()
		}

		last, err := repos.Receivables().LastCodeForYear(ctx, rev.RevenueDate.Year())
		if err != nil {
			return err
		}
		code, err := revenue.NextDocumentCode(revenue.ReceivableCodePrefix, rev.RevenueDate.Year(), last)
		if err != nil {
			return err
		}

		rcv, err := revenue.NewReceivable(code, d.employeeNo, name, d.role,
			fmt.Sprintf("Shortage share for %s", rev.Code),
			share, startDate, cfg.InstallmentCount, cfg.InstallmentFrequency)
		if err != nil {
			return err
		}
		if err := repos.Receivables().Create(ctx, rcv); err != nil {
			return err
		}
		id := rcv.ID
		*d.target = &id
	}

	rev.LinkReceivables(driverID, conductorID)
	return nil
}

// dropUnpaidReceivables removes the revenue's linked receivables ahead of a
// shortage recomputation. Any payment on either receivable blocks the whole
// amendment.
func (s *TripRevenueService) dropUnpaidReceivables(ctx context.Context, repos TransactionalRepositories, rev *revenue.Revenue) error {
	for _, id := range []*uuid.UUID{rev.DriverReceivableID, rev.ConductorReceivableID} {
		if id == nil {
			continue
		}
		rcv, err := repos.Receivables().FindByID(ctx, *id)
		if err != nil {
			if err == shared.ErrNotFound {
				continue
			}
			return err
		}
		if rcv.HasPayments() {
			return shared.NewDomainError("HAS_PAYMENTS",
				fmt.Sprintf("Cannot amend amount: receivable %s already carries payments", rcv.Code))
		}
		if err := repos.Receivables().Delete(ctx, *id); err != nil {
			return err
		}
	}
	rev.ClearReceivables()
	return nil
}

// postRevenueEntry creates and posts the AUTO_GENERATED journal entry for a
// reconciled trip inside the current transaction.
func (s *TripRevenueService) postRevenueEntry(
	ctx context.Context,
	repos TransactionalRepositories,
	trip *syncdata.BusTripLocal,
	rev *revenue.Revenue,
) (uuid.UUID, error) {
	byCode, err := resolvePostingAccounts(ctx, repos.Accounts(), s.accounts)
	if err != nil {
		return uuid.Nil, err
	}

	companyShare := revenue.CompanyShareAmount(trip.AssignmentType, trip.TripRevenue, trip.AssignmentValue)
	tripRef := fmt.Sprintf("%s (assignment %d trip %d)", rev.Code, rev.AssignmentID, rev.BusTripID)
	lines := buildRevenueEntryLines(byCode, s.accounts, rev, companyShare, trip.FuelExpense, tripRef)
	// A trip with zero amounts everywhere has nothing to post
	if len(lines) < 2 {
		return uuid.Nil, nil
	}

	code, err := allocateEntryCode(ctx, repos.JournalEntries(), rev.RevenueDate)
	if err != nil {
		return uuid.Nil, err
	}
	entry, err := ledger.NewJournalEntry(code, rev.RevenueDate, SourceModuleRevenue, rev.Code,
		"Trip revenue "+tripRef, ledger.EntryTypeAutoGenerated, lines)
	if err != nil {
		return uuid.Nil, err
	}
	if err := entry.Post("system"); err != nil {
		return uuid.Nil, err
	}
	if err := repos.JournalEntries().Create(ctx, entry); err != nil {
		return uuid.Nil, err
	}
	return entry.ID, nil
}
