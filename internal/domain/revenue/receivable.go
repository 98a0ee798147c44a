package revenue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/shared"
)

// PaymentFrequency is the cadence of an installment schedule
type PaymentFrequency string

const (
	FrequencyDaily    PaymentFrequency = "DAILY"
	FrequencyWeekly   PaymentFrequency = "WEEKLY"
	FrequencyBiweekly PaymentFrequency = "BIWEEKLY"
	FrequencyMonthly  PaymentFrequency = "MONTHLY"
)

// IsValid checks if the payment frequency is valid
func (f PaymentFrequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// String returns the string representation of PaymentFrequency
func (f PaymentFrequency) String() string {
	return string(f)
}

// DueDateFor returns the due date of the n-th installment (1-based) counted
// from the start date. MONTHLY advances calendar months rather than a fixed
// day count.
func (f PaymentFrequency) DueDateFor(start time.Time, installmentNumber int) time.Time {
	switch f {
	case FrequencyDaily:
		return start.AddDate(0, 0, installmentNumber)
	case FrequencyWeekly:
		return start.AddDate(0, 0, 7*installmentNumber)
	case FrequencyBiweekly:
		return start.AddDate(0, 0, 14*installmentNumber)
	case FrequencyMonthly:
		return start.AddDate(0, installmentNumber, 0)
	}
	return start.AddDate(0, 0, installmentNumber)
}

// PaymentMethod is how an installment payment was settled
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodEWallet      PaymentMethod = "E_WALLET"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodEWallet:
		return true
	}
	return false
}

// InstallmentStatus is the state of one installment in a schedule
type InstallmentStatus string

const (
	InstallmentStatusPending       InstallmentStatus = "PENDING"
	InstallmentStatusPartiallyPaid InstallmentStatus = "PARTIALLY_PAID"
	InstallmentStatusPaid          InstallmentStatus = "PAID"
	InstallmentStatusOverdue       InstallmentStatus = "OVERDUE"
)

// IsPayable returns true if the installment can still receive payments
func (s InstallmentStatus) IsPayable() bool {
	return s != InstallmentStatusPaid
}

// ReceivableStatus is the aggregate payment state of a receivable
type ReceivableStatus string

const (
	ReceivableStatusPending       ReceivableStatus = "PENDING"
	ReceivableStatusPartiallyPaid ReceivableStatus = "PARTIALLY_PAID"
	ReceivableStatusPaid          ReceivableStatus = "PAID"
)

// DebtorRole identifies which trip employee owes the receivable
type DebtorRole string

const (
	DebtorRoleDriver    DebtorRole = "DRIVER"
	DebtorRoleConductor DebtorRole = "CONDUCTOR"
)

// ReceivableCodePrefix is the prefix of generated receivable codes
const ReceivableCodePrefix = "RCVL"

// InstallmentSchedule is one amortized installment of a receivable.
// InstallmentNumber ordering is significant: cascade payments walk it in
// ascending order.
type InstallmentSchedule struct {
	ID                uuid.UUID         `json:"id"`
	ReceivableID      uuid.UUID         `json:"receivable_id"`
	InstallmentNumber int               `json:"installment_number"`
	DueDate           time.Time         `json:"due_date"`
	AmountDue         decimal.Decimal   `json:"amount_due"`
	AmountPaid        decimal.Decimal   `json:"amount_paid"`
	Balance           decimal.Decimal   `json:"balance"`
	Status            InstallmentStatus `json:"status"`
}

// InstallmentPayment is an immutable record of money applied to one
// installment.
type InstallmentPayment struct {
	ID                    uuid.UUID       `json:"id"`
	InstallmentScheduleID uuid.UUID       `json:"installment_schedule_id"`
	ReceivableID          uuid.UUID       `json:"receivable_id"`
	Amount                decimal.Decimal `json:"amount"`
	PaymentDate           time.Time       `json:"payment_date"`
	Method                PaymentMethod   `json:"method"`
	Reference             string          `json:"reference"`
	JournalEntryID        *uuid.UUID      `json:"journal_entry_id"`
	CreatedAt             time.Time       `json:"created_at"`
}

// GenerateSchedule amortizes a total into n installments rounded to two
// decimal places. Installments 1..n-1 each carry the rounded base amount;
// the final installment absorbs the rounding remainder so the schedule sums
// back to the total exactly.
func GenerateSchedule(totalAmount decimal.Decimal, startDate time.Time, numberOfPayments int, frequency PaymentFrequency) ([]InstallmentSchedule, error) {
	if !totalAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Schedule total must be positive")
	}
	if numberOfPayments <= 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_COUNT", "Number of payments must be positive")
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY",
			fmt.Sprintf("Unknown payment frequency %q", frequency))
	}

	base := totalAmount.Div(decimal.NewFromInt(int64(numberOfPayments))).Round(2)
	schedules := make([]InstallmentSchedule, numberOfPayments)
	allocated := decimal.Zero

	for i := 0; i < numberOfPayments; i++ {
		amount := base
		if i == numberOfPayments-1 {
			amount = totalAmount.Sub(allocated)
		}
		allocated = allocated.Add(amount)

		schedules[i] = InstallmentSchedule{
			ID:                uuid.New(),
			InstallmentNumber: i + 1,
			DueDate:           frequency.DueDateFor(startDate, i+1),
			AmountDue:         amount,
			AmountPaid:        decimal.Zero,
			Balance:           amount,
			Status:            InstallmentStatusPending,
		}
	}

	return schedules, nil
}

// Receivable is an amount owed to the company by a trip employee for a
// remittance shortage, settled through an installment schedule.
type Receivable struct {
	shared.BaseAggregateRoot
	Code             string                `json:"code"`
	DebtorEmployeeNo string                `json:"debtor_employee_no"`
	DebtorName       string                `json:"debtor_name"`
	DebtorRole       DebtorRole            `json:"debtor_role"`
	Description      string                `json:"description"`
	TotalAmount      decimal.Decimal       `json:"total_amount"`
	PaidAmount       decimal.Decimal       `json:"paid_amount"`
	Balance          decimal.Decimal       `json:"balance"`
	Status           ReceivableStatus      `json:"status"`
	Frequency        PaymentFrequency      `json:"frequency"`
	NumberOfPayments int                   `json:"number_of_payments"`
	DueDate          time.Time             `json:"due_date"`
	Schedules        []InstallmentSchedule `json:"schedules"`
}

// NewReceivable creates a receivable together with its amortized installment
// schedule.
func NewReceivable(
	code string,
	debtorEmployeeNo string,
	debtorName string,
	role DebtorRole,
	description string,
	totalAmount decimal.Decimal,
	startDate time.Time,
	numberOfPayments int,
	frequency PaymentFrequency,
) (*Receivable, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_RECEIVABLE_CODE", "Receivable code cannot be empty")
	}
	if debtorEmployeeNo == "" {
		return nil, shared.NewDomainError("INVALID_DEBTOR", "Debtor employee number cannot be empty")
	}

	schedules, err := GenerateSchedule(totalAmount, startDate, numberOfPayments, frequency)
	if err != nil {
		return nil, err
	}

	r := &Receivable{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		DebtorEmployeeNo:  debtorEmployeeNo,
		DebtorName:        debtorName,
		DebtorRole:        role,
		Description:       description,
		TotalAmount:       totalAmount,
		PaidAmount:        decimal.Zero,
		Balance:           totalAmount,
		Status:            ReceivableStatusPending,
		Frequency:         frequency,
		NumberOfPayments:  numberOfPayments,
		DueDate:           frequency.DueDateFor(startDate, numberOfPayments),
	}
	for i := range schedules {
		schedules[i].ReceivableID = r.ID
	}
	r.Schedules = schedules

	return r, nil
}

// HasPayments reports whether any installment has received money
func (r *Receivable) HasPayments() bool {
	for i := range r.Schedules {
		if r.Schedules[i].AmountPaid.IsPositive() {
			return true
		}
	}
	return false
}

// RegenerateSchedule replaces the installment schedule. It is allowed only
// while no installment has any payment; otherwise it fails with a conflict
// and modifies nothing, protecting payment history integrity.
func (r *Receivable) RegenerateSchedule(startDate time.Time, numberOfPayments int, frequency PaymentFrequency) error {
	if r.HasPayments() {
		return shared.NewDomainError("HAS_PAYMENTS",
			"Cannot regenerate schedule: installments already carry payments")
	}

	schedules, err := GenerateSchedule(r.TotalAmount, startDate, numberOfPayments, frequency)
	if err != nil {
		return err
	}
	for i := range schedules {
		schedules[i].ReceivableID = r.ID
	}
	r.Schedules = schedules
	r.Frequency = frequency
	r.NumberOfPayments = numberOfPayments
	r.DueDate = frequency.DueDateFor(startDate, numberOfPayments)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// ApplyCascadePayment applies one payment starting at the selected
// installment and cascading any leftover across subsequent unpaid
// installments in ascending installment number, until the amount is
// exhausted. Returns the immutable payment records created, one per touched
// installment.
func (r *Receivable) ApplyCascadePayment(
	startingInstallmentID uuid.UUID,
	amount decimal.Decimal,
	paymentDate time.Time,
	method PaymentMethod,
	reference string,
) ([]InstallmentPayment, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD",
			fmt.Sprintf("Unknown payment method %q", method))
	}
	if amount.GreaterThan(r.Balance) {
		return nil, shared.NewDomainError("EXCEEDS_BALANCE",
			fmt.Sprintf("Payment amount %s exceeds outstanding balance %s",
				amount.StringFixed(2), r.Balance.StringFixed(2)))
	}

	start := -1
	for i := range r.Schedules {
		if r.Schedules[i].ID == startingInstallmentID {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, shared.ErrNotFound
	}
	if r.Schedules[start].Status == InstallmentStatusPaid {
		return nil, shared.NewDomainError("INSTALLMENT_PAID",
			fmt.Sprintf("Installment %d is already fully paid", r.Schedules[start].InstallmentNumber))
	}

	remaining := amount
	payments := make([]InstallmentPayment, 0, len(r.Schedules)-start)
	apply := func(inst *InstallmentSchedule) {
		if !inst.Status.IsPayable() || !inst.Balance.IsPositive() {
			return
		}

		applied := remaining
		if applied.GreaterThan(inst.Balance) {
			applied = inst.Balance
		}

		inst.AmountPaid = inst.AmountPaid.Add(applied)
		inst.Balance = inst.AmountDue.Sub(inst.AmountPaid)
		if inst.Balance.IsZero() {
			inst.Status = InstallmentStatusPaid
		} else {
			inst.Status = InstallmentStatusPartiallyPaid
		}

		payments = append(payments, InstallmentPayment{
			ID:                    uuid.New(),
			InstallmentScheduleID: inst.ID,
			ReceivableID:          r.ID,
			Amount:                applied,
			PaymentDate:           paymentDate,
			Method:                method,
			Reference:             reference,
			CreatedAt:             time.Now(),
		})

		remaining = remaining.Sub(applied)
	}

	for i := start; i < len(r.Schedules) && remaining.IsPositive(); i++ {
		apply(&r.Schedules[i])
	}
	// The aggregate-balance validation above admits payments larger than the
	// outstanding balance from the selected installment onward; any leftover
	// settles earlier unpaid installments so the payment is never discarded.
	for i := 0; i < start && remaining.IsPositive(); i++ {
		apply(&r.Schedules[i])
	}

	r.PaidAmount = r.PaidAmount.Add(amount)
	r.Balance = r.TotalAmount.Sub(r.PaidAmount)
	switch {
	case r.Balance.IsZero():
		r.Status = ReceivableStatusPaid
	default:
		r.Status = ReceivableStatusPartiallyPaid
	}
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return payments, nil
}

// RefreshOverdue flags unpaid installments whose due date has passed
func (r *Receivable) RefreshOverdue(asOf time.Time) {
	for i := range r.Schedules {
		inst := &r.Schedules[i]
		if inst.Status == InstallmentStatusPending && inst.DueDate.Before(asOf) {
			inst.Status = InstallmentStatusOverdue
		}
	}
}
