package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// toDecimal converts a float64 to a decimal.Decimal
func toDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// toDecimalPtr converts an optional float64 to a *decimal.Decimal
func toDecimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

// parseDate parses a YYYY-MM-DD date string
func parseDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, raw)
}

// parseDatePtr parses an optional YYYY-MM-DD date string
func parseDatePtr(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
