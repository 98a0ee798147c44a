package revenue

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/shared"
)

// RevenueCodePrefix is the prefix of generated revenue codes
const RevenueCodePrefix = "REV"

// Revenue records the money actually remitted for one external trip together
// with the reconciliation outcome. At most one revenue row exists per
// (assignment_id, bus_trip_id) pair; the storage layer enforces this with a
// unique constraint.
type Revenue struct {
	shared.BaseAggregateRoot
	Code                  string           `json:"code"`
	AssignmentID          int64            `json:"assignment_id"`
	BusTripID             int64            `json:"bus_trip_id"`
	AssignmentType        AssignmentType   `json:"assignment_type"`
	RevenueDate           time.Time        `json:"revenue_date"`
	AmountRemitted        decimal.Decimal  `json:"amount_remitted"`
	ExpectedRemittance    decimal.Decimal  `json:"expected_remittance"`
	ShortageAmount        decimal.Decimal  `json:"shortage_amount"`
	RemittanceStatus      RemittanceStatus `json:"remittance_status"`
	PaymentMethod         PaymentMethod    `json:"payment_method"`
	Description           string           `json:"description"`
	DriverReceivableID    *uuid.UUID       `json:"driver_receivable_id"`
	ConductorReceivableID *uuid.UUID       `json:"conductor_receivable_id"`
	JournalEntryID        *uuid.UUID       `json:"journal_entry_id"`
}

// NewRevenue creates a revenue record for one reconciled trip
func NewRevenue(
	code string,
	assignmentID, busTripID int64,
	assignmentType AssignmentType,
	revenueDate time.Time,
	amountRemitted, expectedRemittance, shortageAmount decimal.Decimal,
	remittanceStatus RemittanceStatus,
	paymentMethod PaymentMethod,
	description string,
) (*Revenue, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_REVENUE_CODE", "Revenue code cannot be empty")
	}
	if assignmentID <= 0 || busTripID <= 0 {
		return nil, shared.NewDomainError("INVALID_TRIP_REFERENCE", "Assignment and bus trip IDs must be positive")
	}
	if amountRemitted.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount remitted cannot be negative")
	}
	if !remittanceStatus.IsValid() {
		return nil, shared.NewDomainError("INVALID_REMITTANCE_STATUS", "Remittance status is not valid")
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD",
			fmt.Sprintf("Unknown payment method %q", paymentMethod))
	}

	return &Revenue{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Code:               code,
		AssignmentID:       assignmentID,
		BusTripID:          busTripID,
		AssignmentType:     assignmentType,
		RevenueDate:        revenueDate,
		AmountRemitted:     amountRemitted,
		ExpectedRemittance: expectedRemittance,
		ShortageAmount:     shortageAmount,
		RemittanceStatus:   remittanceStatus,
		PaymentMethod:      paymentMethod,
		Description:        description,
	}, nil
}

// LinkReceivables attaches the shortage receivables created for the trip
func (r *Revenue) LinkReceivables(driverReceivableID, conductorReceivableID *uuid.UUID) {
	r.DriverReceivableID = driverReceivableID
	r.ConductorReceivableID = conductorReceivableID
	r.UpdatedAt = time.Now()
}

// LinkJournalEntry attaches the ledger entry recorded for the trip
func (r *Revenue) LinkJournalEntry(entryID uuid.UUID) {
	r.JournalEntryID = &entryID
	r.UpdatedAt = time.Now()
}

// ClearReceivables detaches both receivable links and restores PAID status.
// Used when an amended revenue no longer carries a shortage.
func (r *Revenue) ClearReceivables() {
	r.DriverReceivableID = nil
	r.ConductorReceivableID = nil
	r.ShortageAmount = decimal.Zero
	r.RemittanceStatus = RemittanceStatusPaid
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// Amend updates the mutable fields of a revenue record
func (r *Revenue) Amend(amountRemitted *decimal.Decimal, description *string, revenueDate *time.Time) error {
	if amountRemitted != nil {
		if amountRemitted.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", "Amount remitted cannot be negative")
		}
		r.AmountRemitted = *amountRemitted
		r.ShortageAmount = Shortage(r.ExpectedRemittance, *amountRemitted)
		r.RemittanceStatus = RemittanceStatusFor(*amountRemitted, r.ExpectedRemittance)
	}
	if description != nil {
		r.Description = *description
	}
	if revenueDate != nil {
		r.RevenueDate = *revenueDate
	}
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// NextDocumentCode computes the next sequential document code for a calendar
// year given the lexicographically-last existing code with that prefix, e.g.
// ("REV", 2026, "REV-2026-0007") -> "REV-2026-0008".
func NextDocumentCode(prefix string, year int, lastCode string) (string, error) {
	full := fmt.Sprintf("%s-%d-", prefix, year)
	seq := 0
	if lastCode != "" {
		if !strings.HasPrefix(lastCode, full) {
			return "", shared.NewDomainError("INVALID_CODE",
				fmt.Sprintf("Code %q does not belong to prefix %s and year %d", lastCode, prefix, year))
		}
		n, err := strconv.Atoi(strings.TrimPrefix(lastCode, full))
		if err != nil {
			return "", shared.NewDomainError("INVALID_CODE",
				fmt.Sprintf("Code %q has a malformed sequence number", lastCode))
		}
		seq = n
	}
	return fmt.Sprintf("%s%04d", full, seq+1), nil
}
