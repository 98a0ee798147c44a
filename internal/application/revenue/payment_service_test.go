package revenue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type paymentFixture struct {
	service    *PaymentService
	scope      *memScope
	receivable *revenue.Receivable
}

// newPaymentFixture seeds a 200.00 receivable amortized over four weekly
// installments of 50.00 each.
func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := newRevenueFixture(t)

	rcv, err := revenue.NewReceivable("RCVL-2026-0001", "EMP-0001", "Juan Dela Cruz",
		revenue.DebtorRoleDriver, "Shortage share for REV-2026-0001",
		d("200"), tripDate.AddDate(0, 0, 7), 4, revenue.FrequencyWeekly)
	require.NoError(t, err)
	require.NoError(t, f.scope.receivables.Create(context.Background(), rcv))

	service := NewPaymentService(f.scope.receivables, f.scope.payments, f.scope,
		testAccounts, f.audit, zap.NewNop())
	return &paymentFixture{service: service, scope: f.scope, receivable: rcv}
}

func (f *paymentFixture) installment(n int) uuid.UUID {
	return f.receivable.Schedules[n-1].ID
}

func TestPaymentService_RecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("settles one installment and posts the entry", func(t *testing.T) {
		f := newPaymentFixture(t)

		result, err := f.service.RecordPayment(ctx, RecordPaymentRequest{
			InstallmentID: f.installment(1),
			Amount:        d("50"),
			Method:        revenue.PaymentMethodCash,
			Reference:     "OR-1001",
			Actor:         "teller",
		})
		require.NoError(t, err)

		require.Len(t, result.Payments, 1)
		assert.True(t, result.Payments[0].Amount.Equal(d("50")))
		assert.Equal(t, "OR-1001", result.Payments[0].Reference)

		rcv := result.Receivable
		assert.True(t, rcv.PaidAmount.Equal(d("50")))
		assert.True(t, rcv.Balance.Equal(d("150")))
		assert.Equal(t, revenue.ReceivableStatusPartiallyPaid, rcv.Status)
		assert.Equal(t, revenue.InstallmentStatusPaid, rcv.Schedules[0].Status)

		// The settlement entry posts in the same transaction.
		require.NotNil(t, result.Payments[0].JournalEntryID)
		entry, err := f.scope.entries.FindByID(ctx, *result.Payments[0].JournalEntryID)
		require.NoError(t, err)
		assert.Equal(t, ledger.EntryStatusPosted, entry.Status)
		require.Len(t, entry.Lines, 2)
		assert.Equal(t, "1005", entry.Lines[0].AccountCode)
		assert.True(t, entry.Lines[0].Debit.Equal(d("50")))
		assert.Equal(t, "1010", entry.Lines[1].AccountCode)
		assert.True(t, entry.Lines[1].Credit.Equal(d("50")))
	})

	t.Run("excess cascades across later installments", func(t *testing.T) {
		f := newPaymentFixture(t)

		result, err := f.service.RecordPayment(ctx, RecordPaymentRequest{
			InstallmentID: f.installment(1),
			Amount:        d("120"),
			Method:        revenue.PaymentMethodCash,
			Actor:         "teller",
		})
		require.NoError(t, err)

		// 50 + 50 + 20 across the first three installments.
		require.Len(t, result.Payments, 3)
		assert.True(t, result.Payments[2].Amount.Equal(d("20")))
		assert.Equal(t, revenue.InstallmentStatusPartiallyPaid, result.Receivable.Schedules[2].Status)

		// One settlement entry covers the whole cascade.
		assert.Equal(t, 1, f.scope.entries.count())
		for _, p := range result.Payments {
			require.NotNil(t, p.JournalEntryID)
			assert.Equal(t, *result.Payments[0].JournalEntryID, *p.JournalEntryID)
		}
	})

	t.Run("settling everything closes the receivable", func(t *testing.T) {
		f := newPaymentFixture(t)

		result, err := f.service.RecordPayment(ctx, RecordPaymentRequest{
			InstallmentID: f.installment(1),
			Amount:        d("200"),
			Method:        revenue.PaymentMethodBankTransfer,
			Actor:         "teller",
		})
		require.NoError(t, err)
		assert.Equal(t, revenue.ReceivableStatusPaid, result.Receivable.Status)
		assert.True(t, result.Receivable.Balance.IsZero())
	})

	t.Run("rejects an amount above the remaining balance", func(t *testing.T) {
		f := newPaymentFixture(t)

		_, err := f.service.RecordPayment(ctx, RecordPaymentRequest{
			InstallmentID: f.installment(1),
			Amount:        d("250"),
			Method:        revenue.PaymentMethodCash,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds")

		// Nothing persisted.
		payments, err := f.scope.payments.FindByReceivable(ctx, f.receivable.ID)
		require.NoError(t, err)
		assert.Empty(t, payments)
	})

	t.Run("rejects a paid installment as the starting point", func(t *testing.T) {
		f := newPaymentFixture(t)
		_, err := f.service.RecordPayment(ctx, RecordPaymentRequest{
			InstallmentID: f.installment(1), Amount: d("50"), Method: revenue.PaymentMethodCash,
		})
		require.NoError(t, err)

		_, err = f.service.RecordPayment(ctx, RecordPaymentRequest{
			InstallmentID: f.installment(1), Amount: d("10"), Method: revenue.PaymentMethodCash,
		})
		assert.Error(t, err)
	})

	t.Run("fails on an unknown installment", func(t *testing.T) {
		f := newPaymentFixture(t)
		_, err := f.service.RecordPayment(ctx, RecordPaymentRequest{
			InstallmentID: uuid.New(), Amount: d("50"), Method: revenue.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPaymentService_GetReceivable(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	// Viewed long after every due date has lapsed.
	f.service.WithNow(func() time.Time { return tripDate.AddDate(1, 0, 0) })

	rcv, err := f.service.GetReceivable(ctx, f.receivable.ID)
	require.NoError(t, err)
	for _, s := range rcv.Schedules {
		assert.Equal(t, revenue.InstallmentStatusOverdue, s.Status)
	}

	_, err = f.service.GetReceivable(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPaymentService_ListPayments(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	_, err := f.service.RecordPayment(ctx, RecordPaymentRequest{
		InstallmentID: f.installment(1), Amount: d("120"), Method: revenue.PaymentMethodCash,
	})
	require.NoError(t, err)

	payments, err := f.service.ListPayments(ctx, f.receivable.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 3)
}

func TestPaymentService_RegenerateSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the schedule of an untouched receivable", func(t *testing.T) {
		f := newPaymentFixture(t)

		rcv, err := f.service.RegenerateSchedule(ctx, f.receivable.ID,
			tripDate.AddDate(0, 0, 30), 2, revenue.FrequencyMonthly, "alice")
		require.NoError(t, err)

		require.Len(t, rcv.Schedules, 2)
		assert.True(t, rcv.Schedules[0].AmountDue.Equal(d("100")))
		assert.Equal(t, revenue.FrequencyMonthly, rcv.Frequency)
	})

	t.Run("refuses once any installment carries money", func(t *testing.T) {
		f := newPaymentFixture(t)
		_, err := f.service.RecordPayment(ctx, RecordPaymentRequest{
			InstallmentID: f.installment(1), Amount: d("10"), Method: revenue.PaymentMethodCash,
		})
		require.NoError(t, err)

		_, err = f.service.RegenerateSchedule(ctx, f.receivable.ID,
			tripDate, 2, revenue.FrequencyMonthly, "alice")
		require.Error(t, err)

		stored, err := f.scope.receivables.FindByID(ctx, f.receivable.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Schedules, 4)
	})
}
