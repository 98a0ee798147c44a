package revenue

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestExpectedRemittance(t *testing.T) {
	t.Run("boundary adds fuel to the fixed amount", func(t *testing.T) {
		// Boundary 2000 plus fuel 500, regardless of the 2300 collected.
		expected := ExpectedRemittance(AssignmentTypeBoundary, d("2300"), d("2000"), d("500"))
		assert.True(t, expected.Equal(d("2500")), "got %s", expected)
	})

	t.Run("percentage takes a revenue fraction plus fuel", func(t *testing.T) {
		expected := ExpectedRemittance(AssignmentTypePercentage, d("10000"), d("0.30"), d("300"))
		assert.True(t, expected.Equal(d("3300")), "got %s", expected)
	})

	t.Run("unknown type falls back to boundary formula", func(t *testing.T) {
		expected := ExpectedRemittance(AssignmentType("WEIRD"), d("2300"), d("2000"), d("500"))
		assert.True(t, expected.Equal(d("2500")))
	})

	t.Run("zero fuel", func(t *testing.T) {
		expected := ExpectedRemittance(AssignmentTypeBoundary, d("2300"), d("2000"), decimal.Zero)
		assert.True(t, expected.Equal(d("2000")))
	})
}

func TestShortage(t *testing.T) {
	t.Run("positive gap", func(t *testing.T) {
		assert.True(t, Shortage(d("2500"), d("2300")).Equal(d("200")))
	})

	t.Run("never negative when collection exceeds expected", func(t *testing.T) {
		assert.True(t, Shortage(d("3300"), d("10000")).IsZero())
	})

	t.Run("zero when exactly covered", func(t *testing.T) {
		assert.True(t, Shortage(d("2500"), d("2500")).IsZero())
	})
}

func TestCompanyShareAmount(t *testing.T) {
	t.Run("percentage share excludes fuel", func(t *testing.T) {
		assert.True(t, CompanyShareAmount(AssignmentTypePercentage, d("10000"), d("0.30")).Equal(d("3000")))
	})

	t.Run("boundary share is the assignment value", func(t *testing.T) {
		assert.True(t, CompanyShareAmount(AssignmentTypeBoundary, d("2300"), d("2000")).Equal(d("2000")))
	})
}

func TestRemittanceStatusFor(t *testing.T) {
	assert.Equal(t, RemittanceStatusPartiallyPaid, RemittanceStatusFor(d("2300"), d("2500")))
	assert.Equal(t, RemittanceStatusPaid, RemittanceStatusFor(d("2500"), d("2500")))
	assert.Equal(t, RemittanceStatusPaid, RemittanceStatusFor(d("10000"), d("3300")))
}
