package revenue

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/shared"
)

// SourceModuleRevenue and SourceModulePayments tag auto-generated journal
// entries with the workflow that produced them.
const (
	SourceModuleRevenue  = "trip-revenue"
	SourceModulePayments = "installment-payments"
)

// PostingAccounts names the chart of accounts codes the reconciliation
// workflows post against. The codes come from configuration so operators can
// remap them without a deploy.
type PostingAccounts struct {
	Cash           string // debited with the money actually remitted
	TripReceivable string // debited with shortages, credited by payments
	TripRevenue    string // credited with the company's share of the trip
	FuelRecovery   string // credited with the fuel advance being recovered
}

// Validate checks that every posting account code is set
func (p PostingAccounts) Validate() error {
	for _, code := range []string{p.Cash, p.TripReceivable, p.TripRevenue, p.FuelRecovery} {
		if code == "" {
			return shared.NewDomainError("INVALID_POSTING_ACCOUNTS",
				"All posting account codes must be configured")
		}
	}
	return nil
}

func (p PostingAccounts) codes() []string {
	return []string{p.Cash, p.TripReceivable, p.TripRevenue, p.FuelRecovery}
}

// resolvePostingAccounts loads the configured posting accounts inside the
// current transaction, rejecting archived or missing ones.
func resolvePostingAccounts(ctx context.Context, accounts ledger.AccountRepository, p PostingAccounts) (map[string]*ledger.Account, error) {
	found, err := accounts.FindByCodes(ctx, p.codes())
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*ledger.Account, len(found))
	for i := range found {
		if !found[i].IsArchived() {
			byCode[found[i].Code] = &found[i]
		}
	}
	for _, code := range p.codes() {
		if _, ok := byCode[code]; !ok {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND",
				fmt.Sprintf("Posting account %s does not resolve to an active account", code))
		}
	}
	return byCode, nil
}

func postingLine(account *ledger.Account, debit, credit decimal.Decimal, memo string) ledger.JournalEntryLine {
	return ledger.JournalEntryLine{
		AccountID:   account.ID,
		AccountCode: account.Code,
		Debit:       debit,
		Credit:      credit,
		Memo:        memo,
	}
}

// buildRevenueEntryLines produces the balanced lines for one reconciled trip:
//
//	Dr Cash                amount remitted
//	Dr Trip receivable     shortage            (only when short)
//	Cr Trip revenue        company share
//	Cr Fuel recovery       fuel expense
//
// When short, remitted + shortage equals company share + fuel by construction
// of the expected remittance. When the remittance covers or exceeds the
// expected amount there is no receivable leg, so the revenue credit absorbs
// everything remitted beyond the fuel recovery. Shortage zero guarantees
// remitted >= company share + fuel, so that credit is never negative.
func buildRevenueEntryLines(
	byCode map[string]*ledger.Account,
	p PostingAccounts,
	rev *revenue.Revenue,
	companyShare, fuelExpense decimal.Decimal,
	tripRef string,
) []ledger.JournalEntryLine {
	lines := make([]ledger.JournalEntryLine, 0, 4)
	if rev.AmountRemitted.IsPositive() {
		lines = append(lines, postingLine(byCode[p.Cash],
			rev.AmountRemitted, decimal.Zero, "Remittance collected for "+tripRef))
	}
	revenueCredit := companyShare
	if rev.ShortageAmount.IsPositive() {
		lines = append(lines, postingLine(byCode[p.TripReceivable],
			rev.ShortageAmount, decimal.Zero, "Remittance shortage for "+tripRef))
	} else {
		revenueCredit = rev.AmountRemitted.Sub(fuelExpense)
	}
	if revenueCredit.IsPositive() {
		lines = append(lines, postingLine(byCode[p.TripRevenue],
			decimal.Zero, revenueCredit, "Company share for "+tripRef))
	}
	if fuelExpense.IsPositive() {
		lines = append(lines, postingLine(byCode[p.FuelRecovery],
			decimal.Zero, fuelExpense, "Fuel advance recovered for "+tripRef))
	}
	return lines
}

// buildPaymentEntryLines produces the balanced lines for an installment
// payment: cash in, receivable down.
func buildPaymentEntryLines(
	byCode map[string]*ledger.Account,
	p PostingAccounts,
	amount decimal.Decimal,
	receivableCode string,
) []ledger.JournalEntryLine {
	memo := "Installment payment on " + receivableCode
	return []ledger.JournalEntryLine{
		postingLine(byCode[p.Cash], amount, decimal.Zero, memo),
		postingLine(byCode[p.TripReceivable], decimal.Zero, amount, memo),
	}
}

// allocateEntryCode issues the next journal entry code within the transaction
func allocateEntryCode(ctx context.Context, entries ledger.JournalEntryRepository, date time.Time) (string, error) {
	last, err := entries.LastCodeForYear(ctx, date.Year())
	if err != nil {
		return "", err
	}
	return ledger.NextEntryCode(date.Year(), last)
}
