package persistence

import (
	"context"

	apprevenue "github.com/transitledger/backend/internal/application/revenue"
	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/syncdata"
	"gorm.io/gorm"
)

// GormRevenueTransactionScope implements the revenue TransactionScope using
// GORM transactions. One trip reconciliation writes the revenue row, the
// shortage receivables, the journal entry and the trip flag through a single
// transaction obtained here.
type GormRevenueTransactionScope struct {
	db *gorm.DB
}

// NewGormRevenueTransactionScope creates a new GormRevenueTransactionScope
func NewGormRevenueTransactionScope(db *gorm.DB) *GormRevenueTransactionScope {
	return &GormRevenueTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormRevenueTransactionScope) Execute(ctx context.Context, fn func(repos apprevenue.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRevenueRepositories{tx: tx})
	})
}

type gormRevenueRepositories struct {
	tx *gorm.DB
}

// Revenues returns the revenue repository scoped to the current transaction
func (r *gormRevenueRepositories) Revenues() revenue.RevenueRepository {
	return NewGormRevenueRepository(r.tx)
}

// Receivables returns the receivable repository scoped to the current transaction
func (r *gormRevenueRepositories) Receivables() revenue.ReceivableRepository {
	return NewGormReceivableRepository(r.tx)
}

// Payments returns the payment repository scoped to the current transaction
func (r *gormRevenueRepositories) Payments() revenue.InstallmentPaymentRepository {
	return NewGormInstallmentPaymentRepository(r.tx)
}

// Trips returns the trip cache repository scoped to the current transaction
func (r *gormRevenueRepositories) Trips() syncdata.BusTripLocalRepository {
	return NewGormBusTripCacheRepository(r.tx)
}

// Employees returns the employee cache repository scoped to the current transaction
func (r *gormRevenueRepositories) Employees() syncdata.EmployeeLocalRepository {
	return NewGormEmployeeCacheRepository(r.tx)
}

// JournalEntries returns the journal entry repository scoped to the current transaction
func (r *gormRevenueRepositories) JournalEntries() ledger.JournalEntryRepository {
	return NewGormJournalEntryRepository(r.tx)
}

// Accounts returns the account repository scoped to the current transaction
func (r *gormRevenueRepositories) Accounts() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

var _ apprevenue.TransactionScope = (*GormRevenueTransactionScope)(nil)
var _ apprevenue.TransactionalRepositories = (*gormRevenueRepositories)(nil)
