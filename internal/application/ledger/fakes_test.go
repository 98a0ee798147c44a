package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/domain/shared"
)

// memAccountRepo is an in-memory AccountRepository
type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*ledger.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[uuid.UUID]*ledger.Account)}
}

func (r *memAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memAccountRepo) FindByCode(_ context.Context, code string) (*ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Code == code {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memAccountRepo) FindByCodes(_ context.Context, codes []string) ([]ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []ledger.Account
	for _, code := range codes {
		for _, a := range r.accounts {
			if a.Code == code {
				found = append(found, *a)
			}
		}
	}
	return found, nil
}

func (r *memAccountRepo) FindAll(_ context.Context, filter ledger.AccountFilter) ([]ledger.Account, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Account
	for _, a := range r.accounts {
		if filter.Type != nil && a.Type != *filter.Type {
			continue
		}
		if !filter.IncludeArchived && a.IsArchived() {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (r *memAccountRepo) MaxCodeForType(_ context.Context, accountType ledger.AccountType) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	maxCode := ""
	for _, a := range r.accounts {
		if a.Type == accountType && !a.IsArchived() && a.Code > maxCode {
			maxCode = a.Code
		}
	}
	return maxCode, nil
}

func (r *memAccountRepo) ExistsActiveByName(_ context.Context, accountType ledger.AccountType, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Type == accountType && a.Name == name && !a.IsArchived() {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAccountRepo) ExistsActiveByCode(_ context.Context, accountType ledger.AccountType, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Type == accountType && a.Code == code && !a.IsArchived() {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAccountRepo) Save(_ context.Context, account *ledger.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = account
	return nil
}

// memEntryRepo is an in-memory JournalEntryRepository
type memEntryRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*ledger.JournalEntry
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: make(map[uuid.UUID]*ledger.JournalEntry)}
}

func (r *memEntryRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memEntryRepo) FindByCode(_ context.Context, code string) (*ledger.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Code == code {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memEntryRepo) FindAll(_ context.Context, filter ledger.JournalEntryFilter) ([]ledger.JournalEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.JournalEntry
	for _, e := range r.entries {
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *memEntryRepo) LastCodeForYear(_ context.Context, year int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := fmt.Sprintf("%s-%d-", ledger.EntryCodePrefix, year)
	last := ""
	for _, e := range r.entries {
		if strings.HasPrefix(e.Code, prefix) && e.Code > last {
			last = e.Code
		}
	}
	return last, nil
}

func (r *memEntryRepo) HasReversal(_ context.Context, originalID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ReversalOf != nil && *e.ReversalOf == originalID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEntryRepo) Create(_ context.Context, entry *ledger.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *memEntryRepo) Update(_ context.Context, entry *ledger.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[entry.ID]; !ok {
		return shared.ErrNotFound
	}
	r.entries[entry.ID] = entry
	return nil
}

func (r *memEntryRepo) UpdateStatus(_ context.Context, entry *ledger.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[entry.ID]; !ok {
		return shared.ErrNotFound
	}
	r.entries[entry.ID] = entry
	return nil
}

func (r *memEntryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

// memScope runs the function directly against the shared repos, without a
// real transaction.
type memScope struct {
	entries  *memEntryRepo
	accounts *memAccountRepo
}

func (s *memScope) JournalEntries() ledger.JournalEntryRepository { return s.entries }
func (s *memScope) Accounts() ledger.AccountRepository           { return s.accounts }

func (s *memScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// recordingAudit captures audit entries for assertions
type recordingAudit struct {
	mu      sync.Mutex
	entries []shared.AuditEntry
}

func (a *recordingAudit) Record(_ context.Context, entry shared.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Action
	}
	return out
}
