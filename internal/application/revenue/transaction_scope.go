package revenue

import (
	"context"

	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/syncdata"
)

// TransactionalRepositories provides every repository the reconciliation
// workflows touch, bound to one database transaction. Revenue, receivables,
// ledger entries and the trip flag always commit together.
type TransactionalRepositories interface {
	Revenues() revenue.RevenueRepository
	Receivables() revenue.ReceivableRepository
	Payments() revenue.InstallmentPaymentRepository
	Trips() syncdata.BusTripLocalRepository
	Employees() syncdata.EmployeeLocalRepository
	JournalEntries() ledger.JournalEntryRepository
	Accounts() ledger.AccountRepository
}

// TransactionScope runs a function atomically: every repository operation
// inside fn commits together or not at all.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
