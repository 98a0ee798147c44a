package revenue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RecordPaymentRequest applies money to one installment, cascading any excess
type RecordPaymentRequest struct {
	InstallmentID uuid.UUID
	Amount        decimal.Decimal
	PaymentDate   *time.Time // defaults to now
	Method        revenue.PaymentMethod
	Reference     string
	Actor         string
}

// PaymentResult reports the outcome of one cascade payment
type PaymentResult struct {
	Receivable *revenue.Receivable          `json:"receivable"`
	Payments   []revenue.InstallmentPayment `json:"payments"`
}

// PaymentService settles installment schedules. A payment targets one
// installment; any excess cascades forward across the remaining unpaid
// installments, and the settlement journal entry posts in the same
// transaction as the payment rows.
type PaymentService struct {
	receivableRepo revenue.ReceivableRepository
	paymentRepo    revenue.InstallmentPaymentRepository
	scope          TransactionScope
	accounts       PostingAccounts
	audit          shared.AuditRecorder
	logger         *zap.Logger
	now            func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	receivableRepo revenue.ReceivableRepository,
	paymentRepo revenue.InstallmentPaymentRepository,
	scope TransactionScope,
	accounts PostingAccounts,
	audit shared.AuditRecorder,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		receivableRepo: receivableRepo,
		paymentRepo:    paymentRepo,
		scope:          scope,
		accounts:       accounts,
		audit:          audit,
		logger:         logger,
		now:            time.Now,
	}
}

// WithNow overrides the clock, for tests
func (s *PaymentService) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// GetReceivable returns one receivable with its schedule, overdue flags
// refreshed against the current time.
func (s *PaymentService) GetReceivable(ctx context.Context, id uuid.UUID) (*revenue.Receivable, error) {
	rcv, err := s.receivableRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rcv.RefreshOverdue(s.now())
	return rcv, nil
}

// ListPayments returns the payment history of a receivable
func (s *PaymentService) ListPayments(ctx context.Context, receivableID uuid.UUID) ([]revenue.InstallmentPayment, error) {
	return s.paymentRepo.FindByReceivable(ctx, receivableID)
}

// RegenerateSchedule replaces a receivable's installment schedule. It fails
// with HAS_PAYMENTS once any installment carries money.
func (s *PaymentService) RegenerateSchedule(
	ctx context.Context,
	receivableID uuid.UUID,
	startDate time.Time,
	numberOfPayments int,
	frequency revenue.PaymentFrequency,
	actor string,
) (*revenue.Receivable, error) {
	var rcv *revenue.Receivable
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		rcv, err = repos.Receivables().FindByID(ctx, receivableID)
		if err != nil {
			return err
		}
		if err := rcv.RegenerateSchedule(startDate, numberOfPayments, frequency); err != nil {
			return err
		}
		return repos.Receivables().ReplaceSchedules(ctx, rcv)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  SourceModulePayments,
		Action:      "regenerate-schedule",
		PerformedBy: actor,
		RecordID:    receivableID.String(),
		NewValues:   rcv.Schedules,
	})
	return rcv, nil
}

// RecordPayment applies a cascade payment starting at the selected
// installment. The payment rows, the updated schedule, the receivable totals
// and the settlement journal entry commit atomically.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error) {
	paymentDate := s.now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	var result PaymentResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rcv, err := repos.Receivables().FindByInstallmentID(ctx, req.InstallmentID)
		if err != nil {
			return err
		}

		payments, err := rcv.ApplyCascadePayment(req.InstallmentID, req.Amount, paymentDate, req.Method, req.Reference)
		if err != nil {
			return err
		}

		entryID, err := s.postPaymentEntry(ctx, repos, rcv, req.Amount, paymentDate)
		if err != nil {
			return err
		}
		for i := range payments {
			payments[i].JournalEntryID = &entryID
		}

		if err := repos.Payments().Create(ctx, payments); err != nil {
			return err
		}
		if err := repos.Receivables().Update(ctx, rcv); err != nil {
			return err
		}

		result = PaymentResult{Receivable: rcv, Payments: payments}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("installment payment recorded",
		zap.String("receivable", result.Receivable.Code),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.Int("installments_touched", len(result.Payments)))
	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  SourceModulePayments,
		Action:      "record-payment",
		PerformedBy: req.Actor,
		RecordID:    result.Receivable.ID.String(),
		NewValues:   result.Payments,
	})
	return &result, nil
}

// postPaymentEntry creates and posts the AUTO_GENERATED settlement entry
// inside the current transaction.
func (s *PaymentService) postPaymentEntry(
	ctx context.Context,
	repos TransactionalRepositories,
	rcv *revenue.Receivable,
	amount decimal.Decimal,
	paymentDate time.Time,
) (uuid.UUID, error) {
	byCode, err := resolvePostingAccounts(ctx, repos.Accounts(), s.accounts)
	if err != nil {
		return uuid.Nil, err
	}

	lines := buildPaymentEntryLines(byCode, s.accounts, amount, rcv.Code)
	code, err := allocateEntryCode(ctx, repos.JournalEntries(), paymentDate)
	if err != nil {
		return uuid.Nil, err
	}

	entry, err := ledger.NewJournalEntry(code, paymentDate, SourceModulePayments, rcv.Code,
		"Installment payment on "+rcv.Code, ledger.EntryTypeAutoGenerated, lines)
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
