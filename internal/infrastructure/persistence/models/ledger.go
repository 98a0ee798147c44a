package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// AccountModel maps the chart of accounts. Uniqueness of active codes and
// names is enforced by partial unique indexes that exclude archived rows, so
// archiving frees the code and name for reuse.
type AccountModel struct {
	AggregateModel
	Code          string     `gorm:"type:varchar(8);not null;index"`
	Name          string     `gorm:"type:varchar(255);not null"`
	Type          string     `gorm:"type:varchar(16);not null;index"`
	NormalBalance string     `gorm:"type:varchar(8);not null"`
	Description   string     `gorm:"type:text"`
	ArchivedAt    *time.Time `gorm:"index"`
}

// TableName returns the table name for AccountModel
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts AccountModel to a domain Account
func (m *AccountModel) ToDomain() *ledger.Account {
	account := &ledger.Account{
		Code:          m.Code,
		Name:          m.Name,
		Type:          ledger.AccountType(m.Type),
		NormalBalance: ledger.NormalBalance(m.NormalBalance),
		Description:   m.Description,
		ArchivedAt:    m.ArchivedAt,
	}
	m.PopulateAggregateRoot(&account.BaseAggregateRoot)
	return account
}

// AccountModelFromDomain converts a domain Account to AccountModel
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{
		Code:          a.Code,
		Name:          a.Name,
		Type:          a.Type.String(),
		NormalBalance: string(a.NormalBalance),
		Description:   a.Description,
		ArchivedAt:    a.ArchivedAt,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}

// JournalEntryModel maps journal entry headers. Lines live in their own
// table and are loaded alongside the header.
type JournalEntryModel struct {
	AggregateModel
	Code            string                  `gorm:"type:varchar(16);not null;uniqueIndex"`
	EntryDate       time.Time               `gorm:"not null;index"`
	SourceModule    string                  `gorm:"type:varchar(64);index"`
	SourceReference string                  `gorm:"type:varchar(64);index"`
	Description     string                  `gorm:"type:text"`
	TotalDebit      decimal.Decimal         `gorm:"type:numeric(14,2);not null"`
	TotalCredit     decimal.Decimal         `gorm:"type:numeric(14,2);not null"`
	Status          string                  `gorm:"type:varchar(16);not null;index"`
	EntryType       string                  `gorm:"type:varchar(16);not null"`
	AdjustmentOf    *uuid.UUID              `gorm:"type:uuid"`
	ReversalOf      *uuid.UUID              `gorm:"type:uuid;index"`
	PostedBy        string                  `gorm:"type:varchar(128)"`
	PostedAt        *time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
	Lines           []JournalEntryLineModel `gorm:"foreignKey:JournalEntryID"`
}

// TableName returns the table name for JournalEntryModel
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// JournalEntryLineModel maps one debit or credit line
type JournalEntryLineModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	JournalEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountCode    string          `gorm:"type:varchar(8);not null"`
	LineNumber     int             `gorm:"not null"`
	Debit          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Credit         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Memo           string          `gorm:"type:text"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for JournalEntryLineModel
func (JournalEntryLineModel) TableName() string {
	return "journal_entry_lines"
}

// ToDomain converts JournalEntryModel to a domain JournalEntry
func (m *JournalEntryModel) ToDomain() *ledger.JournalEntry {
	entry := &ledger.JournalEntry{
		Code:            m.Code,
		EntryDate:       m.EntryDate,
		SourceModule:    m.SourceModule,
		SourceReference: m.SourceReference,
		Description:     m.Description,
		TotalDebit:      m.TotalDebit,
		TotalCredit:     m.TotalCredit,
		Status:          ledger.JournalEntryStatus(m.Status),
		EntryType:       ledger.JournalEntryType(m.EntryType),
		AdjustmentOf:    m.AdjustmentOf,
		ReversalOf:      m.ReversalOf,
		PostedBy:        m.PostedBy,
		PostedAt:        m.PostedAt,
	}
	m.PopulateAggregateRoot(&entry.BaseAggregateRoot)

	entry.Lines = make([]ledger.JournalEntryLine, len(m.Lines))
	for i := range m.Lines {
		entry.Lines[i] = m.Lines[i].ToDomain()
	}
	return entry
}

// ToDomain converts JournalEntryLineModel to a domain JournalEntryLine
func (m *JournalEntryLineModel) ToDomain() ledger.JournalEntryLine {
	return ledger.JournalEntryLine{
		ID:             m.ID,
		JournalEntryID: m.JournalEntryID,
		AccountID:      m.AccountID,
		AccountCode:    m.AccountCode,
		LineNumber:     m.LineNumber,
		Debit:          m.Debit,
		Credit:         m.Credit,
		Memo:           m.Memo,
	}
}

// JournalEntryModelFromDomain converts a domain JournalEntry to its model
func JournalEntryModelFromDomain(e *ledger.JournalEntry) *JournalEntryModel {
	m := &JournalEntryModel{
		Code:            e.Code,
		EntryDate:       e.EntryDate,
		SourceModule:    e.SourceModule,
		SourceReference: e.SourceReference,
		Description:     e.Description,
		TotalDebit:      e.TotalDebit,
		TotalCredit:     e.TotalCredit,
		Status:          e.Status.String(),
		EntryType:       string(e.EntryType),
		AdjustmentOf:    e.AdjustmentOf,
		ReversalOf:      e.ReversalOf,
		PostedBy:        e.PostedBy,
		PostedAt:        e.PostedAt,
	}
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)

	m.Lines = make([]JournalEntryLineModel, len(e.Lines))
	for i, line := range e.Lines {
		m.Lines[i] = JournalEntryLineModel{
			ID:             line.ID,
			JournalEntryID: line.JournalEntryID,
			AccountID:      line.AccountID,
			AccountCode:    line.AccountCode,
			LineNumber:     line.LineNumber,
			Debit:          line.Debit,
			Credit:         line.Credit,
			Memo:           line.Memo,
		}
	}
	return m
}
