package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountFilter carries list filtering options for accounts
type AccountFilter struct {
	Type            *AccountType
	IncludeArchived bool
	Search          string
	Page            int
	PageSize        int
}

// AccountRepository persists chart of accounts entries
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByCode(ctx context.Context, code string) (*Account, error)
	FindByCodes(ctx context.Context, codes []string) ([]Account, error)
	FindAll(ctx context.Context, filter AccountFilter) ([]Account, int64, error)
	// MaxCodeForType returns the highest allocated code for a type among
	// non-archived accounts, or empty string when none exist.
	MaxCodeForType(ctx context.Context, accountType AccountType) (string, error)
	// ExistsActive reports whether a non-archived account with the given
	// type and name, or type and code, already exists.
	ExistsActiveByName(ctx context.Context, accountType AccountType, name string) (bool, error)
	ExistsActiveByCode(ctx context.Context, accountType AccountType, code string) (bool, error)
	Save(ctx context.Context, account *Account) error
}

// JournalEntryFilter carries list filtering options for journal entries
type JournalEntryFilter struct {
	Status       *JournalEntryStatus
	EntryType    *JournalEntryType
	SourceModule string
	DateFrom     *time.Time
	DateTo       *time.Time
	Search       string
	Page         int
	PageSize     int
	OrderBy      string
	OrderDir     string
}

// JournalEntryRepository persists journal entries and their lines
type JournalEntryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*JournalEntry, error)
	FindByCode(ctx context.Context, code string) (*JournalEntry, error)
	FindAll(ctx context.Context, filter JournalEntryFilter) ([]JournalEntry, int64, error)
	// LastCodeForYear returns the lexicographically-last entry code carrying
	// the given year's prefix, or empty string when none exist.
	LastCodeForYear(ctx context.Context, year int) (string, error)
	// HasReversal reports whether a reversal entry referencing the given
	// original already exists.
	HasReversal(ctx context.Context, originalID uuid.UUID) (bool, error)
	// Create inserts the entry and all lines atomically
	Create(ctx context.Context, entry *JournalEntry) error
	// Update saves entry fields and replaces its lines atomically
	Update(ctx context.Context, entry *JournalEntry) error
	// UpdateStatus persists a status transition on the entry header
	UpdateStatus(ctx context.Context, entry *JournalEntry) error
	// Delete soft deletes a DRAFT entry, cascading to its lines
	Delete(ctx context.Context, id uuid.UUID) error
}
