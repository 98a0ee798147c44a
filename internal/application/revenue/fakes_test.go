package revenue

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/shared"
	"github.com/transitledger/backend/internal/domain/syncdata"
)

// memRevenueRepo is an in-memory RevenueRepository enforcing the unique
// (assignment_id, bus_trip_id) constraint the way the database does.
type memRevenueRepo struct {
	mu       sync.Mutex
	revenues map[uuid.UUID]*revenue.Revenue
}

func newMemRevenueRepo() *memRevenueRepo {
	return &memRevenueRepo{revenues: make(map[uuid.UUID]*revenue.Revenue)}
}

func (r *memRevenueRepo) FindByID(_ context.Context, id uuid.UUID) (*revenue.Revenue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rev, ok := r.revenues[id]; ok {
		return rev, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memRevenueRepo) FindByTrip(_ context.Context, assignmentID, busTripID int64) (*revenue.Revenue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rev := range r.revenues {
		if rev.AssignmentID == assignmentID && rev.BusTripID == busTripID {
			return rev, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memRevenueRepo) FindAll(_ context.Context, filter revenue.RevenueFilter) ([]revenue.Revenue, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []revenue.Revenue
	for _, rev := range r.revenues {
		if filter.Status != nil && rev.RemittanceStatus != *filter.Status {
			continue
		}
		out = append(out, *rev)
	}
	return out, int64(len(out)), nil
}

func (r *memRevenueRepo) LastCodeForYear(_ context.Context, year int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := fmt.Sprintf("%s-%d-", revenue.RevenueCodePrefix, year)
	last := ""
	for _, rev := range r.revenues {
		if strings.HasPrefix(rev.Code, prefix) && rev.Code > last {
			last = rev.Code
		}
	}
	return last, nil
}

func (r *memRevenueRepo) Create(_ context.Context, rev *revenue.Revenue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.revenues {
		if existing.AssignmentID == rev.AssignmentID && existing.BusTripID == rev.BusTripID {
			return shared.ErrAlreadyRecorded
		}
	}
	r.revenues[rev.ID] = rev
	return nil
}

func (r *memRevenueRepo) Update(_ context.Context, rev *revenue.Revenue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.revenues[rev.ID]; !ok {
		return shared.ErrNotFound
	}
	r.revenues[rev.ID] = rev
	return nil
}

// memReceivableRepo is an in-memory ReceivableRepository
type memReceivableRepo struct {
	mu          sync.Mutex
	receivables map[uuid.UUID]*revenue.Receivable
}

func newMemReceivableRepo() *memReceivableRepo {
	return &memReceivableRepo{receivables: make(map[uuid.UUID]*revenue.Receivable)}
}

func (r *memReceivableRepo) FindByID(_ context.Context, id uuid.UUID) (*revenue.Receivable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rcv, ok := r.receivables[id]; ok {
		return rcv, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memReceivableRepo) FindByInstallmentID(_ context.Context, installmentID uuid.UUID) (*revenue.Receivable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rcv := range r.receivables {
		for i := range rcv.Schedules {
			if rcv.Schedules[i].ID == installmentID {
				return rcv, nil
			}
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memReceivableRepo) LastCodeForYear(_ context.Context, year int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := fmt.Sprintf("%s-%d-", revenue.ReceivableCodePrefix, year)
	last := ""
	for _, rcv := range r.receivables {
		if strings.HasPrefix(rcv.Code, prefix) && rcv.Code > last {
			last = rcv.Code
		}
	}
	return last, nil
}

func (r *memReceivableRepo) Create(_ context.Context, rcv *revenue.Receivable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receivables[rcv.ID] = rcv
	return nil
}

func (r *memReceivableRepo) Update(_ context.Context, rcv *revenue.Receivable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.receivables[rcv.ID]; !ok {
		return shared.ErrNotFound
	}
	r.receivables[rcv.ID] = rcv
	return nil
}

func (r *memReceivableRepo) ReplaceSchedules(_ context.Context, rcv *revenue.Receivable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.receivables[rcv.ID]; !ok {
		return shared.ErrNotFound
	}
	r.receivables[rcv.ID] = rcv
	return nil
}

func (r *memReceivableRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.receivables[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.receivables, id)
	return nil
}

func (r *memReceivableRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.receivables)
}

// memPaymentRepo is an in-memory InstallmentPaymentRepository
type memPaymentRepo struct {
	mu       sync.Mutex
	payments []revenue.InstallmentPayment
}

func (r *memPaymentRepo) Create(_ context.Context, payments []revenue.InstallmentPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, payments...)
	return nil
}

func (r *memPaymentRepo) FindByReceivable(_ context.Context, receivableID uuid.UUID) ([]revenue.InstallmentPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []revenue.InstallmentPayment
	for _, p := range r.payments {
		if p.ReceivableID == receivableID {
			out = append(out, p)
		}
	}
	return out, nil
}

// memTripRepo is an in-memory BusTripLocalRepository keyed by the
// (assignment_id, bus_trip_id) pair.
type memTripRepo struct {
	mu    sync.Mutex
	trips map[[2]int64]*syncdata.BusTripLocal
}

func newMemTripRepo() *memTripRepo {
	return &memTripRepo{trips: make(map[[2]int64]*syncdata.BusTripLocal)}
}

func (r *memTripRepo) FindByTrip(_ context.Context, assignmentID, busTripID int64) (*syncdata.BusTripLocal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if trip, ok := r.trips[[2]int64{assignmentID, busTripID}]; ok {
		return trip, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memTripRepo) FindUnrecorded(_ context.Context, filter syncdata.TripFilter) ([]syncdata.BusTripLocal, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []syncdata.BusTripLocal
	for _, trip := range r.trips {
		if trip.IsDeleted {
			continue
		}
		if filter.UnrecordedOnly && trip.IsRevenueRecorded {
			continue
		}
		out = append(out, *trip)
	}
	return out, int64(len(out)), nil
}

func (r *memTripRepo) Upsert(_ context.Context, trip *syncdata.BusTripLocal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trips[[2]int64{trip.AssignmentID, trip.BusTripID}] = trip
	return nil
}

func (r *memTripRepo) SoftDeleteMissing(_ context.Context, _ []syncdata.TripKey) (int64, error) {
	return 0, nil
}

func (r *memTripRepo) MarkRevenueRecorded(_ context.Context, assignmentID, busTripID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	trip, ok := r.trips[[2]int64{assignmentID, busTripID}]
	if !ok {
		return shared.ErrNotFound
	}
	trip.IsRevenueRecorded = true
	return nil
}

// memEmployeeRepo is an in-memory EmployeeLocalRepository
type memEmployeeRepo struct {
	mu        sync.Mutex
	employees map[string]*syncdata.EmployeeLocal
}

func newMemEmployeeRepo() *memEmployeeRepo {
	return &memEmployeeRepo{employees: make(map[string]*syncdata.EmployeeLocal)}
}

func (r *memEmployeeRepo) FindByNumber(_ context.Context, employeeNumber string) (*syncdata.EmployeeLocal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.employees[employeeNumber]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memEmployeeRepo) Upsert(_ context.Context, employee *syncdata.EmployeeLocal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[employee.EmployeeNumber] = employee
	return nil
}

func (r *memEmployeeRepo) SoftDeleteMissing(_ context.Context, keep []string) (int64, error) {
	return 0, nil
}

// memAccountRepo is an in-memory ledger.AccountRepository covering what the
// posting helpers use.
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
	return false, nil
}

func (r *memAccountRepo) ExistsActiveByCode(_ context.Context, accountType ledger.AccountType, code string) (bool, error) {
	return false, nil
}

func (r *memAccountRepo) Save(_ context.Context, account *ledger.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = account
	return nil
}

// memEntryRepo is an in-memory ledger.JournalEntryRepository
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
	r.entries[entry.ID] = entry
	return nil
}

func (r *memEntryRepo) UpdateStatus(_ context.Context, entry *ledger.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *memEntryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

func (r *memEntryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// memConfigRepo is an in-memory SystemConfigurationRepository counting the
// database round trips the cache is supposed to absorb.
type memConfigRepo struct {
	mu    sync.Mutex
	cfg   *revenue.SystemConfiguration
	finds int
}

func (r *memConfigRepo) FindActive(_ context.Context) (*revenue.SystemConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.cfg == nil {
		return nil, shared.ErrNotFound
	}
	// Hand out a copy, as a row scan would.
	cfg := *r.cfg
	return &cfg, nil
}

func (r *memConfigRepo) Save(_ context.Context, cfg *revenue.SystemConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	return nil
}

// memConfigCache is an in-memory ConfigCache with injectable failures
type memConfigCache struct {
	mu          sync.Mutex
	cfg         *revenue.SystemConfiguration
	getErr      error
	setErr      error
	invalidates int
}

func (c *memConfigCache) Get(_ context.Context) (*revenue.SystemConfiguration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.cfg == nil {
		return nil, nil
	}
	// Hand out a copy, as deserialization would.
	cfg := *c.cfg
	return &cfg, nil
}

func (c *memConfigCache) Set(_ context.Context, cfg *revenue.SystemConfiguration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	copied := *cfg
	c.cfg = &copied
	return nil
}

func (c *memConfigCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = nil
	c.invalidates++
	return nil
}

// memScope runs the function directly against the shared repos, without a
// real transaction.
type memScope struct {
	revenues    *memRevenueRepo
	receivables *memReceivableRepo
	payments    *memPaymentRepo
	trips       *memTripRepo
	employees   *memEmployeeRepo
	entries     *memEntryRepo
	accounts    *memAccountRepo
}

func (s *memScope) Revenues() revenue.RevenueRepository                  { return s.revenues }
func (s *memScope) Receivables() revenue.ReceivableRepository            { return s.receivables }
func (s *memScope) Payments() revenue.InstallmentPaymentRepository      { return s.payments }
func (s *memScope) Trips() syncdata.BusTripLocalRepository              { return s.trips }
func (s *memScope) Employees() syncdata.EmployeeLocalRepository         { return s.employees }
func (s *memScope) JournalEntries() ledger.JournalEntryRepository       { return s.entries }
func (s *memScope) Accounts() ledger.AccountRepository                  { return s.accounts }

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
