package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/shared"
)

// JournalEntryStatus represents the lifecycle state of a journal entry
type JournalEntryStatus string

const (
	EntryStatusDraft    JournalEntryStatus = "DRAFT"
	EntryStatusPosted   JournalEntryStatus = "POSTED"
	EntryStatusAdjusted JournalEntryStatus = "ADJUSTED"
	EntryStatusReversed JournalEntryStatus = "REVERSED"
)

// IsValid checks if the status is a valid JournalEntryStatus
func (s JournalEntryStatus) IsValid() bool {
	switch s {
	case EntryStatusDraft, EntryStatusPosted, EntryStatusAdjusted, EntryStatusReversed:
		return true
	}
	return false
}

// String returns the string representation of JournalEntryStatus
func (s JournalEntryStatus) String() string {
	return string(s)
}

// IsEditable returns true if the entry can still be modified or deleted
func (s JournalEntryStatus) IsEditable() bool {
	return s == EntryStatusDraft
}

// JournalEntryType distinguishes manual entries from system-generated ones
type JournalEntryType string

const (
	EntryTypeManual        JournalEntryType = "MANUAL"
	EntryTypeAutoGenerated JournalEntryType = "AUTO_GENERATED"
)

// IsValid checks if the entry type is valid
func (t JournalEntryType) IsValid() bool {
	return t == EntryTypeManual || t == EntryTypeAutoGenerated
}

// EntryCodePrefix is the prefix of generated journal entry codes
const EntryCodePrefix = "JE"

// JournalEntryLine is a single debit or credit against one account.
// Exactly one of Debit/Credit must be positive; the other must be zero.
type JournalEntryLine struct {
	ID             uuid.UUID       `json:"id"`
	JournalEntryID uuid.UUID       `json:"journal_entry_id"`
	AccountID      uuid.UUID       `json:"account_id"`
	AccountCode    string          `json:"account_code"`
	LineNumber     int             `json:"line_number"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Memo           string          `json:"memo"`
}

// Validate checks the debit-XOR-credit rule for the line
func (l *JournalEntryLine) Validate() error {
	if l.AccountCode == "" {
		return shared.NewDomainError("INVALID_LINE", "Line account code cannot be empty")
	}
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return shared.NewDomainError("INVALID_LINE",
			fmt.Sprintf("Line for account %s has a negative amount", l.AccountCode))
	}
	hasDebit := l.Debit.IsPositive()
	hasCredit := l.Credit.IsPositive()
	if hasDebit == hasCredit {
		return shared.NewDomainError("INVALID_LINE",
			fmt.Sprintf("Line for account %s must have exactly one of debit or credit greater than zero", l.AccountCode))
	}
	return nil
}

// JournalEntry is a balanced double-entry accounting record
type JournalEntry struct {
	shared.BaseAggregateRoot
	Code            string             `json:"code"`
	EntryDate       time.Time          `json:"entry_date"`
	SourceModule    string             `json:"source_module"`
	SourceReference string             `json:"source_reference"`
	Description     string             `json:"description"`
	TotalDebit      decimal.Decimal    `json:"total_debit"`
	TotalCredit     decimal.Decimal    `json:"total_credit"`
	Status          JournalEntryStatus `json:"status"`
	EntryType       JournalEntryType   `json:"entry_type"`
	AdjustmentOf    *uuid.UUID         `json:"adjustment_of"`
	ReversalOf      *uuid.UUID         `json:"reversal_of"`
	PostedBy        string             `json:"posted_by"`
	PostedAt        *time.Time         `json:"posted_at"`
	Lines           []JournalEntryLine `json:"lines"`
}

// NewJournalEntry creates a DRAFT journal entry after validating every line
// and the balance invariant. Line numbers are assigned in input order.
func NewJournalEntry(
	code string,
	entryDate time.Time,
	sourceModule string,
	sourceReference string,
	description string,
	entryType JournalEntryType,
	lines []JournalEntryLine,
) (*JournalEntry, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ENTRY_CODE", "Journal entry code cannot be empty")
	}
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", "Journal entry type is not valid")
	}
	if len(lines) < 2 {
		return nil, shared.NewDomainError("INVALID_LINES", "Journal entry requires at least two lines")
	}

	totalDebit, totalCredit, err := sumLines(lines)
	if err != nil {
		return nil, err
	}
	if !totalDebit.Equal(totalCredit) {
		return nil, shared.NewDomainError("UNBALANCED_ENTRY",
			fmt.Sprintf("Total debit %s does not equal total credit %s",
				totalDebit.StringFixed(2), totalCredit.StringFixed(2)))
	}

	entry := &JournalEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		EntryDate:         entryDate,
		SourceModule:      sourceModule,
		SourceReference:   sourceReference,
		Description:       description,
		TotalDebit:        totalDebit,
		TotalCredit:       totalCredit,
		Status:            EntryStatusDraft,
		EntryType:         entryType,
	}
	entry.Lines = numberLines(entry.ID, lines)

	return entry, nil
}

// sumLines validates each line and returns the debit and credit totals
func sumLines(lines []JournalEntryLine) (decimal.Decimal, decimal.Decimal, error) {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i := range lines {
		if err := lines[i].Validate(); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		totalDebit = totalDebit.Add(lines[i].Debit)
		totalCredit = totalCredit.Add(lines[i].Credit)
	}
	return totalDebit, totalCredit, nil
}

// numberLines assigns IDs, parent references and stable line numbers
func numberLines(entryID uuid.UUID, lines []JournalEntryLine) []JournalEntryLine {
	numbered := make([]JournalEntryLine, len(lines))
	for i := range lines {
		numbered[i] = lines[i]
		numbered[i].ID = uuid.New()
		numbered[i].JournalEntryID = entryID
		numbered[i].LineNumber = i + 1
	}
	return numbered
}

// Post transitions the entry from DRAFT to POSTED, locking it against edits
func (e *JournalEntry) Post(approver string) error {
	if e.Status != EntryStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only DRAFT entries can be posted, current status is %s", e.Status))
	}
	now := time.Now()
	e.Status = EntryStatusPosted
	e.PostedBy = approver
	e.PostedAt = &now
	e.UpdatedAt = now
	e.IncrementVersion()
	return nil
}

// MarkAdjusted flags a POSTED entry as superseded by an adjustment entry.
// The entry's amounts remain untouched.
func (e *JournalEntry) MarkAdjusted() error {
	if e.Status != EntryStatusPosted {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only POSTED entries can be adjusted, current status is %s", e.Status))
	}
	e.Status = EntryStatusAdjusted
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// MarkReversed flags a POSTED entry as reversed
func (e *JournalEntry) MarkReversed() error {
	if e.Status != EntryStatusPosted {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only POSTED entries can be reversed, current status is %s", e.Status))
	}
	e.Status = EntryStatusReversed
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// BuildReversal constructs a mirror DRAFT entry with every line's debit and
// credit swapped and the reversal back-reference set. It does not modify the
// original; callers flag the original via MarkReversed inside the same
// transaction.
func (e *JournalEntry) BuildReversal(code string, entryDate time.Time, reason string) (*JournalEntry, error) {
	if e.Status != EntryStatusPosted {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only POSTED entries can be reversed, current status is %s", e.Status))
	}

	mirrored := make([]JournalEntryLine, len(e.Lines))
	for i, line := range e.Lines {
		mirrored[i] = JournalEntryLine{
			AccountID:   line.AccountID,
			AccountCode: line.AccountCode,
			Debit:       line.Credit,
			Credit:      line.Debit,
			Memo:        line.Memo,
		}
	}

	description := fmt.Sprintf("Reversal of %s", e.Code)
	if reason != "" {
		description = fmt.Sprintf("%s: %s", description, reason)
	}

	reversal, err := NewJournalEntry(code, entryDate, e.SourceModule, e.SourceReference,
		description, e.EntryType, mirrored)
	if err != nil {
		return nil, err
	}
	originalID := e.ID
	reversal.ReversalOf = &originalID
	return reversal, nil
}

// ReplaceLines swaps out all lines of a DRAFT entry and recomputes totals
func (e *JournalEntry) ReplaceLines(lines []JournalEntryLine) error {
	if !e.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only DRAFT entries can be modified, current status is %s", e.Status))
	}
	if len(lines) < 2 {
		return shared.NewDomainError("INVALID_LINES", "Journal entry requires at least two lines")
	}
	totalDebit, totalCredit, err := sumLines(lines)
	if err != nil {
		return err
	}
	if !totalDebit.Equal(totalCredit) {
		return shared.NewDomainError("UNBALANCED_ENTRY",
			fmt.Sprintf("Total debit %s does not equal total credit %s",
				totalDebit.StringFixed(2), totalCredit.StringFixed(2)))
	}

	e.Lines = numberLines(e.ID, lines)
	e.TotalDebit = totalDebit
	e.TotalCredit = totalCredit
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// NextEntryCode computes the next sequential code for a calendar year given
// the lexicographically-last existing code for that year, e.g.
// ("JE-2026-0041") -> "JE-2026-0042". An empty lastCode starts the sequence.
func NextEntryCode(year int, lastCode string) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", EntryCodePrefix, year)
	seq := 0
	if lastCode != "" {
		if !strings.HasPrefix(lastCode, prefix) {
			return "", shared.NewDomainError("INVALID_ENTRY_CODE",
				fmt.Sprintf("Code %q does not belong to year %d", lastCode, year))
		}
		n, err := strconv.Atoi(strings.TrimPrefix(lastCode, prefix))
		if err != nil {
			return "", shared.NewDomainError("INVALID_ENTRY_CODE",
				fmt.Sprintf("Code %q has a malformed sequence number", lastCode))
		}
		seq = n
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}
