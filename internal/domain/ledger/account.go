package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/transitledger/backend/internal/domain/shared"
)

// AccountType classifies an account in the chart of accounts
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// CodePrefix returns the numeric code prefix for the account type
func (t AccountType) CodePrefix() string {
	switch t {
	case AccountTypeAsset:
		return "1"
	case AccountTypeLiability:
		return "2"
	case AccountTypeEquity:
		return "3"
	case AccountTypeRevenue:
		return "4"
	case AccountTypeExpense:
		return "5"
	}
	return ""
}

// NormalBalance indicates which side increases an account's balance
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "DEBIT"
	NormalBalanceCredit NormalBalance = "CREDIT"
)

// IsValid checks if the normal balance is valid
func (b NormalBalance) IsValid() bool {
	return b == NormalBalanceDebit || b == NormalBalanceCredit
}

// CodeStep is the gap between consecutively allocated account code suffixes.
// Leaving gaps lets operators slot related accounts between existing ones.
const CodeStep = 5

// Account represents one entry in the chart of accounts
type Account struct {
	shared.BaseAggregateRoot
	Code          string        `json:"code"`
	Name          string        `json:"name"`
	Type          AccountType   `json:"type"`
	NormalBalance NormalBalance `json:"normal_balance"`
	Description   string        `json:"description"`
	ArchivedAt    *time.Time    `json:"archived_at"`
}

// NewAccount creates a new chart of accounts entry
func NewAccount(code, name string, accountType AccountType, normalBalance NormalBalance, description string) (*Account, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Account type is not valid")
	}
	if !normalBalance.IsValid() {
		return nil, shared.NewDomainError("INVALID_NORMAL_BALANCE", "Normal balance must be DEBIT or CREDIT")
	}
	if err := ValidateAccountCode(code, accountType); err != nil {
		return nil, err
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Type:              accountType,
		NormalBalance:     normalBalance,
		Description:       description,
	}, nil
}

// ValidateAccountCode checks that a code has the typed prefix followed by a
// three digit suffix, e.g. "1005" for an asset account.
func ValidateAccountCode(code string, accountType AccountType) error {
	prefix := accountType.CodePrefix()
	if prefix == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Account type is not valid")
	}
	if !strings.HasPrefix(code, prefix) || len(code) != len(prefix)+3 {
		return shared.NewDomainError("INVALID_ACCOUNT_CODE",
			fmt.Sprintf("Account code must be prefix %q followed by a 3-digit suffix", prefix))
	}
	if _, err := strconv.Atoi(code[len(prefix):]); err != nil {
		return shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code suffix must be numeric")
	}
	return nil
}

// NextAccountCode computes the next code for a type given the highest suffix
// currently allocated. Suffixes advance in increments of CodeStep.
func NextAccountCode(accountType AccountType, maxExistingCode string) (string, error) {
	prefix := accountType.CodePrefix()
	if prefix == "" {
		return "", shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Account type is not valid")
	}

	suffix := 0
	if maxExistingCode != "" {
		if err := ValidateAccountCode(maxExistingCode, accountType); err != nil {
			return "", err
		}
		suffix, _ = strconv.Atoi(maxExistingCode[len(prefix):])
	}
	next := suffix + CodeStep
	if next > 999 {
		return "", shared.NewDomainError("CODE_SPACE_EXHAUSTED",
			fmt.Sprintf("No more account codes available for type %s", accountType))
	}
	return fmt.Sprintf("%s%03d", prefix, next), nil
}

// IsArchived returns true if the account has been archived
func (a *Account) IsArchived() bool {
	return a.ArchivedAt != nil
}

// Archive archives the account, removing it from active use.
// Archived accounts are excluded from uniqueness checks and cannot be
// referenced by new journal entry lines.
func (a *Account) Archive() error {
	if a.IsArchived() {
		return shared.NewDomainError("INVALID_STATE", "Account is already archived")
	}
	now := time.Now()
	a.ArchivedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
	return nil
}

// Rename updates the account name
func (a *Account) Rename(name string) error {
	if a.IsArchived() {
		return shared.NewDomainError("INVALID_STATE", "Cannot rename an archived account")
	}
	if name == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	a.Name = name
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}
