package revenue

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRevenue(t *testing.T) *Revenue {
	t.Helper()
	rev, err := NewRevenue("REV-2026-0001", 17, 42, AssignmentTypeBoundary,
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		d("2300"), d("2500"), d("200"), RemittanceStatusPartiallyPaid, PaymentMethodCash,
		"Route 7 morning trip")
	require.NoError(t, err)
	return rev
}

func TestNewRevenue(t *testing.T) {
	t.Run("creates a revenue record", func(t *testing.T) {
		rev := newTestRevenue(t)

		assert.Equal(t, int64(17), rev.AssignmentID)
		assert.Equal(t, int64(42), rev.BusTripID)
		assert.True(t, rev.ShortageAmount.Equal(d("200")))
		assert.Equal(t, RemittanceStatusPartiallyPaid, rev.RemittanceStatus)
		assert.Nil(t, rev.JournalEntryID)
		assert.Nil(t, rev.DriverReceivableID)
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewRevenue("", 17, 42, AssignmentTypeBoundary, time.Now(),
			d("2300"), d("2500"), d("200"), RemittanceStatusPartiallyPaid, PaymentMethodCash, "")
		assert.Error(t, err)
	})

	t.Run("fails with non positive trip references", func(t *testing.T) {
		_, err := NewRevenue("REV-2026-0001", 0, 42, AssignmentTypeBoundary, time.Now(),
			d("2300"), d("2500"), d("200"), RemittanceStatusPartiallyPaid, PaymentMethodCash, "")
		assert.Error(t, err)
	})

	t.Run("fails with negative amount remitted", func(t *testing.T) {
		_, err := NewRevenue("REV-2026-0001", 17, 42, AssignmentTypeBoundary, time.Now(),
			d("-1"), d("2500"), d("200"), RemittanceStatusPartiallyPaid, PaymentMethodCash, "")
		assert.Error(t, err)
	})

	t.Run("fails with unknown payment method", func(t *testing.T) {
		_, err := NewRevenue("REV-2026-0001", 17, 42, AssignmentTypeBoundary, time.Now(),
			d("2300"), d("2500"), d("200"), RemittanceStatusPartiallyPaid, PaymentMethod("CHECK"), "")
		assert.Error(t, err)
	})
}

func TestRevenue_Links(t *testing.T) {
	rev := newTestRevenue(t)

	driverID := uuid.New()
	conductorID := uuid.New()
	rev.LinkReceivables(&driverID, &conductorID)
	require.NotNil(t, rev.DriverReceivableID)
	assert.Equal(t, driverID, *rev.DriverReceivableID)
	assert.Equal(t, conductorID, *rev.ConductorReceivableID)

	entryID := uuid.New()
	rev.LinkJournalEntry(entryID)
	require.NotNil(t, rev.JournalEntryID)
	assert.Equal(t, entryID, *rev.JournalEntryID)
}

func TestRevenue_Amend(t *testing.T) {
	t.Run("recomputes shortage and status from a new amount", func(t *testing.T) {
		rev := newTestRevenue(t)

		amount := d("2500")
		require.NoError(t, rev.Amend(&amount, nil, nil))
		assert.True(t, rev.ShortageAmount.IsZero())
		assert.Equal(t, RemittanceStatusPaid, rev.RemittanceStatus)
	})

	t.Run("updates description and date only", func(t *testing.T) {
		rev := newTestRevenue(t)

		desc := "Corrected route"
		date := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
		require.NoError(t, rev.Amend(nil, &desc, &date))
		assert.Equal(t, "Corrected route", rev.Description)
		assert.Equal(t, date, rev.RevenueDate)
		assert.True(t, rev.ShortageAmount.Equal(d("200")))
	})

	t.Run("fails on negative amount", func(t *testing.T) {
		rev := newTestRevenue(t)
		amount := d("-5")
		assert.Error(t, rev.Amend(&amount, nil, nil))
	})
}

func TestRevenue_ClearReceivables(t *testing.T) {
	rev := newTestRevenue(t)
	driverID := uuid.New()
	rev.LinkReceivables(&driverID, nil)

	rev.ClearReceivables()
	assert.Nil(t, rev.DriverReceivableID)
	assert.Nil(t, rev.ConductorReceivableID)
	assert.True(t, rev.ShortageAmount.IsZero())
	assert.Equal(t, RemittanceStatusPaid, rev.RemittanceStatus)
}

func TestNextDocumentCode(t *testing.T) {
	t.Run("starts a fresh year", func(t *testing.T) {
		code, err := NextDocumentCode(RevenueCodePrefix, 2026, "")
		require.NoError(t, err)
		assert.Equal(t, "REV-2026-0001", code)
	})

	t.Run("increments the sequence", func(t *testing.T) {
		code, err := NextDocumentCode(ReceivableCodePrefix, 2026, "RCVL-2026-0007")
		require.NoError(t, err)
		assert.Equal(t, "RCVL-2026-0008", code)
	})

	t.Run("fails on wrong prefix", func(t *testing.T) {
		_, err := NextDocumentCode("REV", 2026, "RCVL-2026-0007")
		assert.Error(t, err)
	})

	t.Run("fails on a malformed sequence", func(t *testing.T) {
		_, err := NextDocumentCode("REV", 2026, "REV-2026-zz")
		assert.Error(t, err)
	})
}
