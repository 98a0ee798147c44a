package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ModuleName identifies this module in audit entries
const ModuleName = "journal-entries"

// EntryLineInput is one requested debit or credit line
type EntryLineInput struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
}

// CreateEntryRequest carries the fields for a new journal entry
type CreateEntryRequest struct {
	EntryDate       time.Time
	SourceModule    string
	SourceReference string
	Description     string
	EntryType       ledger.JournalEntryType
	Lines           []EntryLineInput
	Actor           string
}

// UpdateEntryRequest replaces the mutable fields of a DRAFT entry
type UpdateEntryRequest struct {
	EntryDate   *time.Time
	Description *string
	Lines       []EntryLineInput
	Actor       string
}

// JournalEntryService validates, balances and persists double-entry journal
// entries, including posting, adjustment and reversal workflows.
type JournalEntryService struct {
	entryRepo   ledger.JournalEntryRepository
	accountRepo ledger.AccountRepository
	scope       TransactionScope
	audit       shared.AuditRecorder
	logger      *zap.Logger
	now         func() time.Time
}

// NewJournalEntryService creates a new JournalEntryService
func NewJournalEntryService(
	entryRepo ledger.JournalEntryRepository,
	accountRepo ledger.AccountRepository,
	scope TransactionScope,
	audit shared.AuditRecorder,
	logger *zap.Logger,
) *JournalEntryService {
	return &JournalEntryService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		scope:       scope,
		audit:       audit,
		logger:      logger,
		now:         time.Now,
	}
}

// WithNow overrides the clock, for tests
func (s *JournalEntryService) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Get returns one journal entry with its lines
func (s *JournalEntryService) Get(ctx context.Context, id uuid.UUID) (*ledger.JournalEntry, error) {
	return s.entryRepo.FindByID(ctx, id)
}

// List returns journal entries matching the filter
func (s *JournalEntryService) List(ctx context.Context, filter ledger.JournalEntryFilter) ([]ledger.JournalEntry, int64, error) {
	return s.entryRepo.FindAll(ctx, filter)
}

// Create validates and persists a new DRAFT journal entry. Account
// resolution and the balance check happen before any write; the entry and
// all its lines are inserted in one transaction.
func (s *JournalEntryService) Create(ctx context.Context, req CreateEntryRequest) (*ledger.JournalEntry, error) {
	var entry *ledger.JournalEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines, err := s.resolveLines(ctx, repos.Accounts(), req.Lines)
		if err != nil {
			return err
		}

		code, err := s.allocateCode(ctx, repos.JournalEntries(), req.EntryDate)
		if err != nil {
			return err
		}

		entryType := req.EntryType
		if entryType == "" {
			entryType = ledger.EntryTypeManual
		}

		entry, err = ledger.NewJournalEntry(code, req.EntryDate, req.SourceModule,
			req.SourceReference, req.Description, entryType, lines)
		if err != nil {
			return err
		}
		return repos.JournalEntries().Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("journal entry created",
		zap.String("code", entry.Code),
		zap.String("total_debit", entry.TotalDebit.StringFixed(2)))
	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  ModuleName,
		Action:      "create",
		PerformedBy: req.Actor,
		RecordID:    entry.ID.String(),
		NewValues:   entry,
	})
	return entry, nil
}

// Post transitions a DRAFT entry to POSTED, recording the approver
func (s *JournalEntryService) Post(ctx context.Context, id uuid.UUID, approver string) (*ledger.JournalEntry, error) {
	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.Post(approver); err != nil {
		return nil, err
	}
	if err := s.entryRepo.UpdateStatus(ctx, entry); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  ModuleName,
		Action:      "post",
		PerformedBy: approver,
		RecordID:    entry.ID.String(),
	})
	return entry, nil
}

// CreateAdjustment creates a new DRAFT entry correcting a POSTED original.
// The original keeps its amounts and flips to ADJUSTED in the same
// transaction.
func (s *JournalEntryService) CreateAdjustment(ctx context.Context, originalID uuid.UUID, req CreateEntryRequest) (*ledger.JournalEntry, error) {
	var adjustment *ledger.JournalEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		original, err := repos.JournalEntries().FindByID(ctx, originalID)
		if err != nil {
			return err
		}
		if original.Status != ledger.EntryStatusPosted {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Only POSTED entries can be adjusted, %s is %s", original.Code, original.Status))
		}

		lines, err := s.resolveLines(ctx, repos.Accounts(), req.Lines)
		if err != nil {
			return err
		}
		code, err := s.allocateCode(ctx, repos.JournalEntries(), req.EntryDate)
		if err != nil {
			return err
		}

		description := req.Description
		if description == "" {
			description = fmt.Sprintf("Adjustment of %s", original.Code)
		}
		adjustment, err = ledger.NewJournalEntry(code, req.EntryDate, original.SourceModule,
			original.SourceReference, description, ledger.EntryTypeManual, lines)
		if err != nil {
			return err
		}
		adjustment.AdjustmentOf = &original.ID

		if err := repos.JournalEntries().Create(ctx, adjustment); err != nil {
			return err
		}
		if err := original.MarkAdjusted(); err != nil {
			return err
		}
		return repos.JournalEntries().UpdateStatus(ctx, original)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  ModuleName,
		Action:      "adjust",
		PerformedBy: req.Actor,
		RecordID:    adjustment.ID.String(),
		Metadata:    map[string]any{"adjustment_of": originalID.String()},
	})
	return adjustment, nil
}

// CreateReversal creates the mirror entry of a POSTED original, with every
// line's debit and credit swapped. At most one reversal may exist per entry.
func (s *JournalEntryService) CreateReversal(ctx context.Context, originalID uuid.UUID, reason, actor string) (*ledger.JournalEntry, error) {
	var reversal *ledger.JournalEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		original, err := repos.JournalEntries().FindByID(ctx, originalID)
		if err != nil {
			return err
		}

		reversed, err := repos.JournalEntries().HasReversal(ctx, originalID)
		if err != nil {
			return err
		}
		if reversed {
			return shared.NewDomainError("ALREADY_REVERSED",
				fmt.Sprintf("Entry %s has already been reversed", original.Code))
		}

		entryDate := s.now()
		code, err := s.allocateCode(ctx, repos.JournalEntries(), entryDate)
		if err != nil {
			return err
		}
		reversal, err = original.BuildReversal(code, entryDate, reason)
		if err != nil {
			return err
		}

		if err := repos.JournalEntries().Create(ctx, reversal); err != nil {
			return err
		}
		if err := original.MarkReversed(); err != nil {
			return err
		}
		return repos.JournalEntries().UpdateStatus(ctx, original)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  ModuleName,
		Action:      "reverse",
		PerformedBy: actor,
		RecordID:    reversal.ID.String(),
		Reason:      reason,
		Metadata:    map[string]any{"reversal_of": originalID.String()},
	})
	return reversal, nil
}

// Update replaces the lines and mutable fields of a DRAFT entry
func (s *JournalEntryService) Update(ctx context.Context, id uuid.UUID, req UpdateEntryRequest) (*ledger.JournalEntry, error) {
	var entry *ledger.JournalEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entry, err = repos.JournalEntries().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !entry.Status.IsEditable() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Only DRAFT entries can be modified, %s is %s", entry.Code, entry.Status))
		}

		if len(req.Lines) > 0 {
			lines, err := s.resolveLines(ctx, repos.Accounts(), req.Lines)
			if err != nil {
				return err
			}
			if err := entry.ReplaceLines(lines); err != nil {
				return err
			}
		}
		if req.EntryDate != nil {
			entry.EntryDate = *req.EntryDate
		}
		if req.Description != nil {
			entry.Description = *req.Description
		}
		return repos.JournalEntries().Update(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  ModuleName,
		Action:      "update",
		PerformedBy: req.Actor,
		RecordID:    id.String(),
		NewValues:   entry,
	})
	return entry, nil
}

// Delete soft deletes a DRAFT entry, cascading to its lines
func (s *JournalEntryService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !entry.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only DRAFT entries can be deleted, %s is %s", entry.Code, entry.Status))
	}
	if err := s.entryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  ModuleName,
		Action:      "delete",
		PerformedBy: actor,
		RecordID:    id.String(),
	})
	return nil
}

// resolveLines maps requested account codes to active accounts. Every code
// must resolve to a non-archived account or the whole request is rejected
// before any write.
func (s *JournalEntryService) resolveLines(ctx context.Context, accounts ledger.AccountRepository, inputs []EntryLineInput) ([]ledger.JournalEntryLine, error) {
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("INVALID_LINES", "Journal entry requires at least two lines")
	}

	codes := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		if _, ok := seen[in.AccountCode]; !ok {
			seen[in.AccountCode] = struct{}{}
			codes = append(codes, in.AccountCode)
		}
	}

	found, err := accounts.FindByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*ledger.Account, len(found))
	for i := range found {
		if !found[i].IsArchived() {
			byCode[found[i].Code] = &found[i]
		}
	}

	lines := make([]ledger.JournalEntryLine, len(inputs))
	for i, in := range inputs {
		account, ok := byCode[in.AccountCode]
		if !ok {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND",
				fmt.Sprintf("Account code %q does not resolve to an active account", in.AccountCode))
		}
		lines[i] = ledger.JournalEntryLine{
			AccountID:   account.ID,
			AccountCode: account.Code,
			Debit:       in.Debit,
			Credit:      in.Credit,
			Memo:        in.Memo,
		}
	}
	return lines, nil
}

// allocateCode issues the next sequential entry code for the entry's year
func (s *JournalEntryService) allocateCode(ctx context.Context, entries ledger.JournalEntryRepository, entryDate time.Time) (string, error) {
	year := entryDate.Year()
	if entryDate.IsZero() {
		year = s.now().Year()
	}
	last, err := entries.LastCodeForYear(ctx, year)
	if err != nil {
		return "", err
	}
	return ledger.NextEntryCode(year, last)
}
