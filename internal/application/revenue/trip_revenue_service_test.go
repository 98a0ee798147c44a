package revenue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/shared"
	"github.com/transitledger/backend/internal/domain/syncdata"
	"go.uber.org/zap"
)

var tripDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var testAccounts = PostingAccounts{
	Cash:           "1005",
	TripReceivable: "1010",
	TripRevenue:    "4005",
	FuelRecovery:   "4010",
}

type revenueFixture struct {
	service *TripRevenueService
	scope   *memScope
	configs *SystemConfigService
	audit   *recordingAudit
}

func newRevenueFixture(t *testing.T) *revenueFixture {
	t.Helper()
	scope := &memScope{
		revenues:    newMemRevenueRepo(),
		receivables: newMemReceivableRepo(),
		payments:    &memPaymentRepo{},
		trips:       newMemTripRepo(),
		employees:   newMemEmployeeRepo(),
		entries:     newMemEntryRepo(),
		accounts:    newMemAccountRepo(),
	}

	ctx := context.Background()
	seed := []struct {
		code, name    string
		accountType   ledger.AccountType
		normalBalance ledger.NormalBalance
	}{
		{"1005", "Cash on Hand", ledger.AccountTypeAsset, ledger.NormalBalanceDebit},
		{"1010", "Trip Receivable", ledger.AccountTypeAsset, ledger.NormalBalanceDebit},
		{"4005", "Trip Revenue", ledger.AccountTypeRevenue, ledger.NormalBalanceCredit},
		{"4010", "Fuel Recovery", ledger.AccountTypeRevenue, ledger.NormalBalanceCredit},
	}
	for _, s := range seed {
		account, err := ledger.NewAccount(s.code, s.name, s.accountType, s.normalBalance, "")
		require.NoError(t, err)
		require.NoError(t, scope.accounts.Save(ctx, account))
	}

	require.NoError(t, scope.employees.Upsert(ctx, &syncdata.EmployeeLocal{
		EmployeeNumber: "EMP-0001", FirstName: "Juan", LastName: "Dela Cruz", Position: syncdata.PositionDriver,
	}))
	require.NoError(t, scope.employees.Upsert(ctx, &syncdata.EmployeeLocal{
		EmployeeNumber: "EMP-0002", FirstName: "Maria", LastName: "Santos", Position: syncdata.PositionConductor,
	}))

	audit := &recordingAudit{}
	configs := NewSystemConfigService(&memConfigRepo{}, &memConfigCache{}, audit, zap.NewNop())
	service := NewTripRevenueService(scope.revenues, scope.trips, scope, configs, testAccounts, audit, zap.NewNop())
	return &revenueFixture{service: service, scope: scope, configs: configs, audit: audit}
}

// seedBoundaryTrip caches a boundary trip owing 2000 boundary plus 500 fuel,
// with 2300 collected on the road.
func (f *revenueFixture) seedBoundaryTrip(t *testing.T) *syncdata.BusTripLocal {
	t.Helper()
	trip := &syncdata.BusTripLocal{
		AssignmentID:        17,
		BusTripID:           42,
		BusExternalID:       5,
		DriverEmployeeNo:    "EMP-0001",
		ConductorEmployeeNo: "EMP-0002",
		AssignmentType:      revenue.AssignmentTypeBoundary,
		AssignmentValue:     d("2000"),
		TripRevenue:         d("2300"),
		FuelExpense:         d("500"),
		TripDate:            tripDate,
		PaymentMethod:       revenue.PaymentMethodCash,
	}
	require.NoError(t, f.scope.trips.Upsert(context.Background(), trip))
	return trip
}

func TestTripRevenueService_CreateForTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("reconciles a short boundary trip end to end", func(t *testing.T) {
		f := newRevenueFixture(t)
		f.seedBoundaryTrip(t)

		rev, err := f.service.CreateForTrip(ctx, CreateRevenueRequest{
			AssignmentID: 17, BusTripID: 42, Actor: "alice",
		})
		require.NoError(t, err)

		assert.Equal(t, "REV-2026-0001", rev.Code)
		assert.True(t, rev.ExpectedRemittance.Equal(d("2500")))
		assert.True(t, rev.ShortageAmount.Equal(d("200")))
		assert.Equal(t, revenue.RemittanceStatusPartiallyPaid, rev.RemittanceStatus)

		// Shortage splits 60/40 between driver and conductor.
		require.NotNil(t, rev.DriverReceivableID)
		require.NotNil(t, rev.ConductorReceivableID)
		driver, err := f.scope.receivables.FindByID(ctx, *rev.DriverReceivableID)
		require.NoError(t, err)
		assert.True(t, driver.TotalAmount.Equal(d("120")))
		assert.Equal(t, "Juan Dela Cruz", driver.DebtorName)
		assert.Equal(t, revenue.DebtorRoleDriver, driver.DebtorRole)
		assert.Len(t, driver.Schedules, 4)
		// First installment falls one week after the offset start date.
		assert.Equal(t, tripDate.AddDate(0, 0, 14), driver.Schedules[0].DueDate)

		conductor, err := f.scope.receivables.FindByID(ctx, *rev.ConductorReceivableID)
		require.NoError(t, err)
		assert.True(t, conductor.TotalAmount.Equal(d("80")))
		assert.Equal(t, "Maria Santos", conductor.DebtorName)

		// The revenue entry posts automatically and balances.
		require.NotNil(t, rev.JournalEntryID)
		entry, err := f.scope.entries.FindByID(ctx, *rev.JournalEntryID)
		require.NoError(t, err)
		assert.Equal(t, ledger.EntryStatusPosted, entry.Status)
		assert.Equal(t, ledger.EntryTypeAutoGenerated, entry.EntryType)
		assert.Len(t, entry.Lines, 4)
		assert.True(t, entry.TotalDebit.Equal(d("2500")))
		assert.True(t, entry.TotalDebit.Equal(entry.TotalCredit))

		trip, err := f.scope.trips.FindByTrip(ctx, 17, 42)
		require.NoError(t, err)
		assert.True(t, trip.IsRevenueRecorded)

		assert.Contains(t, f.audit.actions(), "create")
	})

	t.Run("full remittance yields no receivables", func(t *testing.T) {
		f := newRevenueFixture(t)
		f.seedBoundaryTrip(t)

		amount := d("2500")
		rev, err := f.service.CreateForTrip(ctx, CreateRevenueRequest{
			AssignmentID: 17, BusTripID: 42, AmountRemitted: &amount, Actor: "alice",
		})
		require.NoError(t, err)

		assert.Equal(t, revenue.RemittanceStatusPaid, rev.RemittanceStatus)
		assert.True(t, rev.ShortageAmount.IsZero())
		assert.Nil(t, rev.DriverReceivableID)
		assert.Nil(t, rev.ConductorReceivableID)
		assert.Zero(t, f.scope.receivables.count())

		require.NotNil(t, rev.JournalEntryID)
		entry, err := f.scope.entries.FindByID(ctx, *rev.JournalEntryID)
		require.NoError(t, err)
		assert.Len(t, entry.Lines, 3)
	})

	t.Run("percentage trip owes a revenue fraction plus fuel", func(t *testing.T) {
		f := newRevenueFixture(t)
		require.NoError(t, f.scope.trips.Upsert(ctx, &syncdata.BusTripLocal{
			AssignmentID:     21,
			BusTripID:        7,
			DriverEmployeeNo: "EMP-0001",
			AssignmentType:   revenue.AssignmentTypePercentage,
			AssignmentValue:  d("0.30"),
			TripRevenue:      d("10000"),
			FuelExpense:      d("300"),
			TripDate:         tripDate,
			PaymentMethod:    revenue.PaymentMethodCash,
		}))

		// No override: the driver turns in the full 10000 collected, as the
		// batch run does.
		rev, err := f.service.CreateForTrip(ctx, CreateRevenueRequest{
			AssignmentID: 21, BusTripID: 7, Actor: "alice",
		})
		require.NoError(t, err)

		assert.True(t, rev.ExpectedRemittance.Equal(d("3300")))
		assert.True(t, rev.AmountRemitted.Equal(d("10000")))
		assert.Equal(t, revenue.RemittanceStatusPaid, rev.RemittanceStatus)

		require.NotNil(t, rev.JournalEntryID)
		entry, err := f.scope.entries.FindByID(ctx, *rev.JournalEntryID)
		require.NoError(t, err)
		assert.Equal(t, ledger.EntryStatusPosted, entry.Status)
		// All 10000 cash is accounted for: 300 recovers the fuel advance
		// and the remaining 9700 is revenue.
		assert.True(t, entry.TotalDebit.Equal(d("10000")))
		assert.True(t, entry.TotalDebit.Equal(entry.TotalCredit))
		require.Len(t, entry.Lines, 3)
		credits := make(map[string]decimal.Decimal, 2)
		for _, line := range entry.Lines {
			if line.Credit.IsPositive() {
				credits[line.AccountCode] = line.Credit
			}
		}
		assert.True(t, credits["4005"].Equal(d("9700")))
		assert.True(t, credits["4010"].Equal(d("300")))
	})

	t.Run("remitting more than expected still posts a balanced entry", func(t *testing.T) {
		f := newRevenueFixture(t)
		f.seedBoundaryTrip(t)

		amount := d("2650")
		rev, err := f.service.CreateForTrip(ctx, CreateRevenueRequest{
			AssignmentID: 17, BusTripID: 42, AmountRemitted: &amount, Actor: "alice",
		})
		require.NoError(t, err)

		assert.Equal(t, revenue.RemittanceStatusPaid, rev.RemittanceStatus)
		assert.True(t, rev.ShortageAmount.IsZero())
		assert.Nil(t, rev.DriverReceivableID)

		require.NotNil(t, rev.JournalEntryID)
		entry, err := f.scope.entries.FindByID(ctx, *rev.JournalEntryID)
		require.NoError(t, err)
		// The 150 overage stays on the revenue credit: 2650 cash against
		// 2150 revenue and 500 fuel recovery.
		assert.True(t, entry.TotalDebit.Equal(d("2650")))
		assert.True(t, entry.TotalDebit.Equal(entry.TotalCredit))
	})

	t.Run("recording the same trip twice fails", func(t *testing.T) {
		f := newRevenueFixture(t)
		f.seedBoundaryTrip(t)

		_, err := f.service.CreateForTrip(ctx, CreateRevenueRequest{AssignmentID: 17, BusTripID: 42})
		require.NoError(t, err)

		_, err = f.service.CreateForTrip(ctx, CreateRevenueRequest{AssignmentID: 17, BusTripID: 42})
		assert.ErrorIs(t, err, shared.ErrAlreadyRecorded)
	})

	t.Run("rejects a trip deleted upstream", func(t *testing.T) {
		f := newRevenueFixture(t)
		trip := f.seedBoundaryTrip(t)
		trip.IsDeleted = true

		_, err := f.service.CreateForTrip(ctx, CreateRevenueRequest{AssignmentID: 17, BusTripID: 42})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deleted upstream")
	})

	t.Run("fails on an unknown trip", func(t *testing.T) {
		f := newRevenueFixture(t)
		_, err := f.service.CreateForTrip(ctx, CreateRevenueRequest{AssignmentID: 99, BusTripID: 1})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("skips the conductor receivable when no conductor rode", func(t *testing.T) {
		f := newRevenueFixture(t)
		trip := f.seedBoundaryTrip(t)
		trip.ConductorEmployeeNo = ""

		rev, err := f.service.CreateForTrip(ctx, CreateRevenueRequest{AssignmentID: 17, BusTripID: 42})
		require.NoError(t, err)

		assert.NotNil(t, rev.DriverReceivableID)
		assert.Nil(t, rev.ConductorReceivableID)
		assert.Equal(t, 1, f.scope.receivables.count())
	})

	t.Run("a trip with zero amounts posts no entry", func(t *testing.T) {
		f := newRevenueFixture(t)
		require.NoError(t, f.scope.trips.Upsert(ctx, &syncdata.BusTripLocal{
			AssignmentID:   30,
			BusTripID:      1,
			AssignmentType: revenue.AssignmentTypeBoundary,
			TripDate:       tripDate,
			PaymentMethod:  revenue.PaymentMethodCash,
		}))

		rev, err := f.service.CreateForTrip(ctx, CreateRevenueRequest{AssignmentID: 30, BusTripID: 1})
		require.NoError(t, err)
		assert.Nil(t, rev.JournalEntryID)
		assert.Zero(t, f.scope.entries.count())
	})
}

func TestTripRevenueService_ProcessAllUnrecorded(t *testing.T) {
	ctx := context.Background()
	f := newRevenueFixture(t)
	f.seedBoundaryTrip(t)
	require.NoError(t, f.scope.trips.Upsert(ctx, &syncdata.BusTripLocal{
		AssignmentID:     18,
		BusTripID:        43,
		DriverEmployeeNo: "EMP-0001",
		AssignmentType:   revenue.AssignmentTypeBoundary,
		AssignmentValue:  d("1800"),
		TripRevenue:      d("1800"),
		TripDate:         tripDate,
		PaymentMethod:    revenue.PaymentMethodCash,
	}))

	// Trip 18/43 already has a revenue row from an earlier run whose flag
	// update never landed. The batch must surface it without stopping.
	stale, err := revenue.NewRevenue("REV-2026-0099", 18, 43, revenue.AssignmentTypeBoundary,
		tripDate, d("1800"), d("1800"), decimal.Zero, revenue.RemittanceStatusPaid,
		revenue.PaymentMethodCash, "stale")
	require.NoError(t, err)
	require.NoError(t, f.scope.revenues.Create(ctx, stale))

	result, err := f.service.ProcessAllUnrecorded(ctx, "batch")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 2)

	byTrip := make(map[int64]TripResult, 2)
	for _, tr := range result.Results {
		byTrip[tr.AssignmentID] = tr
	}
	assert.NotEmpty(t, byTrip[17].RevenueCode)
	assert.Empty(t, byTrip[17].Error)
	assert.NotEmpty(t, byTrip[18].Error)
}

func TestTripRevenueService_Update(t *testing.T) {
	ctx := context.Background()

	create := func(t *testing.T, f *revenueFixture) *revenue.Revenue {
		t.Helper()
		f.seedBoundaryTrip(t)
		rev, err := f.service.CreateForTrip(ctx, CreateRevenueRequest{
			AssignmentID: 17, BusTripID: 42, Actor: "alice",
		})
		require.NoError(t, err)
		return rev
	}

	t.Run("amends the description without touching receivables", func(t *testing.T) {
		f := newRevenueFixture(t)
		rev := create(t, f)

		desc := "Corrected dispatcher note"
		updated, err := f.service.Update(ctx, rev.ID, UpdateRevenueRequest{Description: &desc, Actor: "alice"})
		require.NoError(t, err)
		assert.Equal(t, desc, updated.Description)
		assert.Equal(t, 2, f.scope.receivables.count())
	})

	t.Run("raising the amount to the expected clears the shortage", func(t *testing.T) {
		f := newRevenueFixture(t)
		rev := create(t, f)

		amount := d("2500")
		updated, err := f.service.Update(ctx, rev.ID, UpdateRevenueRequest{AmountRemitted: &amount, Actor: "alice"})
		require.NoError(t, err)

		assert.True(t, updated.ShortageAmount.IsZero())
		assert.Equal(t, revenue.RemittanceStatusPaid, updated.RemittanceStatus)
		assert.Nil(t, updated.DriverReceivableID)
		assert.Nil(t, updated.ConductorReceivableID)
		assert.Zero(t, f.scope.receivables.count())
	})

	t.Run("changing the amount regenerates the shortage split", func(t *testing.T) {
		f := newRevenueFixture(t)
		rev := create(t, f)

		amount := d("2400")
		updated, err := f.service.Update(ctx, rev.ID, UpdateRevenueRequest{AmountRemitted: &amount, Actor: "alice"})
		require.NoError(t, err)

		assert.True(t, updated.ShortageAmount.Equal(d("100")))
		require.NotNil(t, updated.DriverReceivableID)
		driver, err := f.scope.receivables.FindByID(ctx, *updated.DriverReceivableID)
		require.NoError(t, err)
		assert.True(t, driver.TotalAmount.Equal(d("60")))
	})

	t.Run("refuses an amount change once a receivable carries payments", func(t *testing.T) {
		f := newRevenueFixture(t)
		rev := create(t, f)

		driver, err := f.scope.receivables.FindByID(ctx, *rev.DriverReceivableID)
		require.NoError(t, err)
		_, err = driver.ApplyCascadePayment(driver.Schedules[0].ID, d("20"), tripDate.AddDate(0, 0, 14),
			revenue.PaymentMethodCash, "OR-100")
		require.NoError(t, err)
		require.NoError(t, f.scope.receivables.Update(ctx, driver))

		amount := d("2500")
		_, err = f.service.Update(ctx, rev.ID, UpdateRevenueRequest{AmountRemitted: &amount, Actor: "alice"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "carries payments")
	})

	t.Run("fails on an unknown revenue", func(t *testing.T) {
		f := newRevenueFixture(t)
		desc := "x"
		_, err := f.service.Update(ctx, uuid.New(), UpdateRevenueRequest{Description: &desc})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
