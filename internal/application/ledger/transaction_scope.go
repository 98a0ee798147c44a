package ledger

import (
	"context"

	"github.com/transitledger/backend/internal/domain/ledger"
)

// TransactionalRepositories provides ledger repositories bound to one
// database transaction.
type TransactionalRepositories interface {
	JournalEntries() ledger.JournalEntryRepository
	Accounts() ledger.AccountRepository
}

// TransactionScope runs a function atomically: every repository operation
// inside fn commits together or not at all.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
