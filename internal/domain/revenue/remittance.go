package revenue

import (
	"github.com/shopspring/decimal"
)

// AssignmentType is the compensation scheme attached to a trip assignment
type AssignmentType string

const (
	// AssignmentTypeBoundary means the operator owes a fixed boundary amount
	// plus the fuel advanced by the company.
	AssignmentTypeBoundary AssignmentType = "BOUNDARY"
	// AssignmentTypePercentage means the company's share is a fraction of
	// the trip revenue, plus the fuel advanced.
	AssignmentTypePercentage AssignmentType = "PERCENTAGE"
)

// IsValid checks if the assignment type is valid
func (t AssignmentType) IsValid() bool {
	return t == AssignmentTypeBoundary || t == AssignmentTypePercentage
}

// String returns the string representation of AssignmentType
func (t AssignmentType) String() string {
	return string(t)
}

// RemittanceStatus indicates whether the collected trip revenue covered the
// expected remittance.
type RemittanceStatus string

const (
	RemittanceStatusPaid          RemittanceStatus = "PAID"
	RemittanceStatusPartiallyPaid RemittanceStatus = "PARTIALLY_PAID"
)

// IsValid checks if the remittance status is valid
func (s RemittanceStatus) IsValid() bool {
	return s == RemittanceStatusPaid || s == RemittanceStatusPartiallyPaid
}

// ExpectedRemittance computes the amount the trip operator owes the company.
// BOUNDARY: fuel expense + assignment value.
// PERCENTAGE: trip revenue * assignment value (a fraction, e.g. 0.30) + fuel.
// Unknown assignment types fall back to the BOUNDARY formula.
func ExpectedRemittance(assignmentType AssignmentType, tripRevenue, assignmentValue, fuelExpense decimal.Decimal) decimal.Decimal {
	if assignmentType == AssignmentTypePercentage {
		return tripRevenue.Mul(assignmentValue).Add(fuelExpense)
	}
	return fuelExpense.Add(assignmentValue)
}

// Shortage returns the positive gap between the expected remittance and the
// revenue actually collected. Never negative.
func Shortage(expected, tripRevenue decimal.Decimal) decimal.Decimal {
	shortage := expected.Sub(tripRevenue)
	if shortage.IsNegative() {
		return decimal.Zero
	}
	return shortage
}

// CompanyShareAmount is the company's cut excluding fuel: the revenue
// fraction for PERCENTAGE assignments, the assignment value verbatim for
// everything else.
func CompanyShareAmount(assignmentType AssignmentType, tripRevenue, assignmentValue decimal.Decimal) decimal.Decimal {
	if assignmentType == AssignmentTypePercentage {
		return tripRevenue.Mul(assignmentValue)
	}
	return assignmentValue
}

// RemittanceStatusFor derives the remittance status from collected revenue
// versus the expected remittance.
func RemittanceStatusFor(tripRevenue, expected decimal.Decimal) RemittanceStatus {
	if tripRevenue.GreaterThanOrEqual(expected) {
		return RemittanceStatusPaid
	}
	return RemittanceStatusPartiallyPaid
}
