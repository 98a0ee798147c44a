package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balancedLines(amount decimal.Decimal) []JournalEntryLine {
	return []JournalEntryLine{
		{AccountCode: "1005", Debit: amount, Credit: decimal.Zero},
		{AccountCode: "4005", Debit: decimal.Zero, Credit: amount},
	}
}

func newTestEntry(t *testing.T) *JournalEntry {
	t.Helper()
	entry, err := NewJournalEntry("JE-2026-0001", time.Now(), "revenue", "RV-2026-0001",
		"Trip revenue", EntryTypeManual, balancedLines(decimal.NewFromInt(2500)))
	require.NoError(t, err)
	return entry
}

func TestNewJournalEntry(t *testing.T) {
	t.Run("creates a draft entry with numbered lines", func(t *testing.T) {
		entry := newTestEntry(t)

		assert.Equal(t, EntryStatusDraft, entry.Status)
		assert.True(t, entry.TotalDebit.Equal(decimal.NewFromInt(2500)))
		assert.True(t, entry.TotalCredit.Equal(decimal.NewFromInt(2500)))
		require.Len(t, entry.Lines, 2)
		assert.Equal(t, 1, entry.Lines[0].LineNumber)
		assert.Equal(t, 2, entry.Lines[1].LineNumber)
		assert.Equal(t, entry.ID, entry.Lines[0].JournalEntryID)
		assert.Nil(t, entry.PostedAt)
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewJournalEntry("", time.Now(), "", "", "x", EntryTypeManual,
			balancedLines(decimal.NewFromInt(100)))
		assert.Error(t, err)
	})

	t.Run("fails with fewer than two lines", func(t *testing.T) {
		_, err := NewJournalEntry("JE-2026-0001", time.Now(), "", "", "x", EntryTypeManual,
			[]JournalEntryLine{{AccountCode: "1005", Debit: decimal.NewFromInt(100)}})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least two lines")
	})

	t.Run("fails when debits do not equal credits", func(t *testing.T) {
		lines := []JournalEntryLine{
			{AccountCode: "1005", Debit: decimal.NewFromInt(100)},
			{AccountCode: "4005", Credit: decimal.NewFromInt(90)},
		}
		_, err := NewJournalEntry("JE-2026-0001", time.Now(), "", "", "x", EntryTypeManual, lines)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not equal")
	})

	t.Run("fails when a line has both debit and credit", func(t *testing.T) {
		lines := []JournalEntryLine{
			{AccountCode: "1005", Debit: decimal.NewFromInt(100), Credit: decimal.NewFromInt(100)},
			{AccountCode: "4005", Credit: decimal.NewFromInt(100)},
		}
		_, err := NewJournalEntry("JE-2026-0001", time.Now(), "", "", "x", EntryTypeManual, lines)
		assert.Error(t, err)
	})

	t.Run("fails when a line has neither debit nor credit", func(t *testing.T) {
		lines := []JournalEntryLine{
			{AccountCode: "1005"},
			{AccountCode: "4005"},
		}
		_, err := NewJournalEntry("JE-2026-0001", time.Now(), "", "", "x", EntryTypeManual, lines)
		assert.Error(t, err)
	})

	t.Run("fails on negative amounts", func(t *testing.T) {
		lines := []JournalEntryLine{
			{AccountCode: "1005", Debit: decimal.NewFromInt(-100)},
			{AccountCode: "4005", Credit: decimal.NewFromInt(-100)},
		}
		_, err := NewJournalEntry("JE-2026-0001", time.Now(), "", "", "x", EntryTypeManual, lines)
		assert.Error(t, err)
	})
}

func TestJournalEntry_Post(t *testing.T) {
	t.Run("posts a draft entry", func(t *testing.T) {
		entry := newTestEntry(t)

		require.NoError(t, entry.Post("alice"))
		assert.Equal(t, EntryStatusPosted, entry.Status)
		assert.Equal(t, "alice", entry.PostedBy)
		require.NotNil(t, entry.PostedAt)
	})

	t.Run("fails on already posted entry", func(t *testing.T) {
		entry := newTestEntry(t)
		require.NoError(t, entry.Post("alice"))

		err := entry.Post("bob")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Only DRAFT entries")
	})
}

func TestJournalEntry_MarkAdjusted(t *testing.T) {
	t.Run("marks a posted entry adjusted without touching amounts", func(t *testing.T) {
		entry := newTestEntry(t)
		require.NoError(t, entry.Post("alice"))

		require.NoError(t, entry.MarkAdjusted())
		assert.Equal(t, EntryStatusAdjusted, entry.Status)
		assert.True(t, entry.TotalDebit.Equal(decimal.NewFromInt(2500)))
	})

	t.Run("fails on a draft entry", func(t *testing.T) {
		entry := newTestEntry(t)
		assert.Error(t, entry.MarkAdjusted())
	})

	t.Run("fails on a reversed entry", func(t *testing.T) {
		entry := newTestEntry(t)
		require.NoError(t, entry.Post("alice"))
		require.NoError(t, entry.MarkReversed())

		assert.Error(t, entry.MarkAdjusted())
	})
}

func TestJournalEntry_BuildReversal(t *testing.T) {
	t.Run("builds a mirror entry referencing the original", func(t *testing.T) {
		entry := newTestEntry(t)
		require.NoError(t, entry.Post("alice"))

		reversal, err := entry.BuildReversal("JE-2026-0002", time.Now(), "duplicate recording")
		require.NoError(t, err)

		assert.Equal(t, EntryStatusDraft, reversal.Status)
		require.NotNil(t, reversal.ReversalOf)
		assert.Equal(t, entry.ID, *reversal.ReversalOf)
		assert.Contains(t, reversal.Description, "Reversal of JE-2026-0001")
		assert.Contains(t, reversal.Description, "duplicate recording")

		require.Len(t, reversal.Lines, 2)
		// Debits and credits swap sides.
		assert.True(t, reversal.Lines[0].Credit.Equal(entry.Lines[0].Debit))
		assert.True(t, reversal.Lines[0].Debit.Equal(entry.Lines[0].Credit))
		assert.True(t, reversal.Lines[1].Debit.Equal(entry.Lines[1].Credit))
		assert.True(t, reversal.TotalDebit.Equal(entry.TotalDebit))
	})

	t.Run("does not modify the original entry", func(t *testing.T) {
		entry := newTestEntry(t)
		require.NoError(t, entry.Post("alice"))

		_, err := entry.BuildReversal("JE-2026-0002", time.Now(), "")
		require.NoError(t, err)
		assert.Equal(t, EntryStatusPosted, entry.Status)
	})

	t.Run("fails on a draft entry", func(t *testing.T) {
		entry := newTestEntry(t)
		_, err := entry.BuildReversal("JE-2026-0002", time.Now(), "")
		assert.Error(t, err)
	})

	t.Run("fails on an already reversed entry", func(t *testing.T) {
		entry := newTestEntry(t)
		require.NoError(t, entry.Post("alice"))
		require.NoError(t, entry.MarkReversed())

		_, err := entry.BuildReversal("JE-2026-0002", time.Now(), "")
		assert.Error(t, err)
	})
}

func TestJournalEntry_ReplaceLines(t *testing.T) {
	t.Run("replaces lines and recomputes totals", func(t *testing.T) {
		entry := newTestEntry(t)

		require.NoError(t, entry.ReplaceLines(balancedLines(decimal.NewFromInt(900))))
		assert.True(t, entry.TotalDebit.Equal(decimal.NewFromInt(900)))
		assert.True(t, entry.TotalCredit.Equal(decimal.NewFromInt(900)))
		assert.Equal(t, 1, entry.Lines[0].LineNumber)
	})

	t.Run("fails on a posted entry", func(t *testing.T) {
		entry := newTestEntry(t)
		require.NoError(t, entry.Post("alice"))

		err := entry.ReplaceLines(balancedLines(decimal.NewFromInt(900)))
		assert.Error(t, err)
	})

	t.Run("fails on unbalanced replacement", func(t *testing.T) {
		entry := newTestEntry(t)
		lines := []JournalEntryLine{
			{AccountCode: "1005", Debit: decimal.NewFromInt(100)},
			{AccountCode: "4005", Credit: decimal.NewFromInt(50)},
		}
		assert.Error(t, entry.ReplaceLines(lines))
	})
}

func TestNextEntryCode(t *testing.T) {
	t.Run("starts a fresh year", func(t *testing.T) {
		code, err := NextEntryCode(2026, "")
		require.NoError(t, err)
		assert.Equal(t, "JE-2026-0001", code)
	})

	t.Run("increments the sequence", func(t *testing.T) {
		code, err := NextEntryCode(2026, "JE-2026-0041")
		require.NoError(t, err)
		assert.Equal(t, "JE-2026-0042", code)
	})

	t.Run("fails on a code from another year", func(t *testing.T) {
		_, err := NextEntryCode(2026, "JE-2025-0041")
		assert.Error(t, err)
	})

	t.Run("fails on a malformed sequence", func(t *testing.T) {
		_, err := NextEntryCode(2026, "JE-2026-zzzz")
		assert.Error(t, err)
	})
}

func TestJournalEntryStatus_IsEditable(t *testing.T) {
	assert.True(t, EntryStatusDraft.IsEditable())
	assert.False(t, EntryStatusPosted.IsEditable())
	assert.False(t, EntryStatusAdjusted.IsEditable())
	assert.False(t, EntryStatusReversed.IsEditable())
}
