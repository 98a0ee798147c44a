package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CreateAccountRequest carries the fields for a new chart of accounts entry.
// When Code is empty the next code for the type is allocated automatically.
type CreateAccountRequest struct {
	Code          string
	Name          string
	Type          ledger.AccountType
	NormalBalance ledger.NormalBalance
	Description   string
	Actor         string
}

// AccountService manages the chart of accounts
type AccountService struct {
	accountRepo ledger.AccountRepository
	audit       shared.AuditRecorder
	logger      *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo ledger.AccountRepository, audit shared.AuditRecorder, logger *zap.Logger) *AccountService {
	return &AccountService{accountRepo: accountRepo, audit: audit, logger: logger}
}

// Get returns one account by id
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	return s.accountRepo.FindByID(ctx, id)
}

// List returns accounts matching the filter
func (s *AccountService) List(ctx context.Context, filter ledger.AccountFilter) ([]ledger.Account, int64, error) {
	return s.accountRepo.FindAll(ctx, filter)
}

// SuggestCode returns the next available code for an account type
func (s *AccountService) SuggestCode(ctx context.Context, accountType ledger.AccountType) (string, error) {
	maxCode, err := s.accountRepo.MaxCodeForType(ctx, accountType)
	if err != nil {
		return "", err
	}
	return ledger.NextAccountCode(accountType, maxCode)
}

// Create adds an account to the chart. Name and code must be unique per type
// among non-archived accounts; archived accounts never block reuse.
func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (*ledger.Account, error) {
	nameTaken, err := s.accountRepo.ExistsActiveByName(ctx, req.Type, req.Name)
	if err != nil {
		return nil, err
	}
	if nameTaken {
		return nil, shared.NewDomainError("DUPLICATE_ACCOUNT_NAME",
			fmt.Sprintf("An active %s account named %q already exists", req.Type, req.Name))
	}

	code := req.Code
	if code == "" {
		code, err = s.SuggestCode(ctx, req.Type)
		if err != nil {
			return nil, err
		}
	} else {
		codeTaken, err := s.accountRepo.ExistsActiveByCode(ctx, req.Type, code)
		if err != nil {
			return nil, err
		}
		if codeTaken {
			return nil, shared.NewDomainError("DUPLICATE_ACCOUNT_CODE",
				fmt.Sprintf("An active account with code %s already exists", code))
		}
	}

	account, err := ledger.NewAccount(code, req.Name, req.Type, req.NormalBalance, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account created", zap.String("code", account.Code), zap.String("type", account.Type.String()))
	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  "accounts",
		Action:      "create",
		PerformedBy: req.Actor,
		RecordID:    account.ID.String(),
		NewValues:   account,
	})
	return account, nil
}

// Rename changes an account's display name
func (s *AccountService) Rename(ctx context.Context, id uuid.UUID, name, actor string) (*ledger.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.accountRepo.ExistsActiveByName(ctx, account.Type, name)
	if err != nil {
		return nil, err
	}
	if taken && account.Name != name {
		return nil, shared.NewDomainError("DUPLICATE_ACCOUNT_NAME",
			fmt.Sprintf("An active %s account named %q already exists", account.Type, name))
	}

	oldName := account.Name
	if err := account.Rename(name); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  "accounts",
		Action:      "rename",
		PerformedBy: actor,
		RecordID:    account.ID.String(),
		OldValues:   map[string]any{"name": oldName},
		NewValues:   map[string]any{"name": name},
	})
	return account, nil
}

// Archive removes an account from active use. Its code and name become
// reusable; historical journal entry lines keep referencing it.
func (s *AccountService) Archive(ctx context.Context, id uuid.UUID, actor string) error {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := account.Archive(); err != nil {
		return err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return err
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ModuleName:  "accounts",
		Action:      "archive",
		PerformedBy: actor,
		RecordID:    account.ID.String(),
	})
	return nil
}
