package revenue

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/shared"
)

// SystemConfiguration holds the active reconciliation parameters: how a
// shortage splits between the driver and conductor, and how the resulting
// receivables amortize. Exactly one record is active at a time.
type SystemConfiguration struct {
	shared.BaseAggregateRoot
	// DriverSharePercent and ConductorSharePercent are percentages (0-100)
	// applied independently to the shortage; they need not sum to 100.
	DriverSharePercent    decimal.Decimal  `json:"driver_share_percent"`
	ConductorSharePercent decimal.Decimal  `json:"conductor_share_percent"`
	InstallmentFrequency  PaymentFrequency `json:"installment_frequency"`
	InstallmentCount      int              `json:"installment_count"`
	// DueDateOffsetDays shifts the schedule start date forward from the
	// revenue date before due dates are computed.
	DueDateOffsetDays int  `json:"due_date_offset_days"`
	Active            bool `json:"active"`
}

// DefaultSystemConfiguration returns the configuration used until operators
// override it.
func DefaultSystemConfiguration() *SystemConfiguration {
	return &SystemConfiguration{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		DriverSharePercent:    decimal.NewFromInt(60),
		ConductorSharePercent: decimal.NewFromInt(40),
		InstallmentFrequency:  FrequencyWeekly,
		InstallmentCount:      4,
		DueDateOffsetDays:     7,
		Active:                true,
	}
}

// Validate checks the configuration invariants
func (c *SystemConfiguration) Validate() error {
	hundred := decimal.NewFromInt(100)
	if c.DriverSharePercent.IsNegative() || c.DriverSharePercent.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_SHARE", "Driver share percent must be between 0 and 100")
	}
	if c.ConductorSharePercent.IsNegative() || c.ConductorSharePercent.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_SHARE", "Conductor share percent must be between 0 and 100")
	}
	if !c.InstallmentFrequency.IsValid() {
		return shared.NewDomainError("INVALID_FREQUENCY", "Installment frequency is not valid")
	}
	if c.InstallmentCount <= 0 {
		return shared.NewDomainError("INVALID_PAYMENT_COUNT", "Installment count must be positive")
	}
	if c.DueDateOffsetDays < 0 {
		return shared.NewDomainError("INVALID_OFFSET", "Due date offset cannot be negative")
	}
	return nil
}

// ShareOf returns the given role's share of a shortage, rounded to two
// decimal places. Shares are computed independently per role.
func (c *SystemConfiguration) ShareOf(role DebtorRole, shortage decimal.Decimal) decimal.Decimal {
	percent := c.DriverSharePercent
	if role == DebtorRoleConductor {
		percent = c.ConductorSharePercent
	}
	return shortage.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
}

// Touch records a configuration update
func (c *SystemConfiguration) Touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
