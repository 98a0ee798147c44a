package persistence

import (
	"context"

	appledger "github.com/transitledger/backend/internal/application/ledger"
	"github.com/transitledger/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormLedgerTransactionScope implements the ledger TransactionScope using
// GORM transactions. Journal entry workflows that touch the entry table and
// the chart of accounts commit atomically through it.
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

type gormLedgerRepositories struct {
	tx *gorm.DB
}

// JournalEntries returns the journal entry repository scoped to the current transaction
func (r *gormLedgerRepositories) JournalEntries() ledger.JournalEntryRepository {
	return NewGormJournalEntryRepository(r.tx)
}

// Accounts returns the account repository scoped to the current transaction
func (r *gormLedgerRepositories) Accounts() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

var _ appledger.TransactionScope = (*GormLedgerTransactionScope)(nil)
var _ appledger.TransactionalRepositories = (*gormLedgerRepositories)(nil)
