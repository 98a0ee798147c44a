package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateType is how an employee's basic rate is expressed
type RateType string

const (
	RateTypeDaily   RateType = "DAILY"
	RateTypeMonthly RateType = "MONTHLY"
)

// IsValid checks if the rate type is valid
func (t RateType) IsValid() bool {
	return t == RateTypeDaily || t == RateTypeMonthly
}

// PayFrequency is the recurrence of a benefit or deduction line
type PayFrequency string

const (
	PayFrequencyDaily       PayFrequency = "DAILY"
	PayFrequencyWeekly      PayFrequency = "WEEKLY"
	PayFrequencySemiMonthly PayFrequency = "SEMI_MONTHLY"
	PayFrequencyMonthly     PayFrequency = "MONTHLY"
)

// IsValid checks if the pay frequency is valid
func (f PayFrequency) IsValid() bool {
	switch f {
	case PayFrequencyDaily, PayFrequencyWeekly, PayFrequencySemiMonthly, PayFrequencyMonthly:
		return true
	}
	return false
}

// AttendanceStatus is the per-day attendance outcome from the HR system
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceHalfDay AttendanceStatus = "HALF_DAY"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLeave   AttendanceStatus = "LEAVE"
)

// Attendance is one day of an employee's attendance record
type Attendance struct {
	Date   time.Time        `json:"date"`
	Status AttendanceStatus `json:"status"`
}

// PayItem is one recurring benefit or deduction from the HR payload
type PayItem struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Frequency PayFrequency    `json:"frequency"`
}

// PresentDays counts compensable days in an attendance set. A half day
// counts as 0.5.
func PresentDays(attendances []Attendance) decimal.Decimal {
	days := decimal.Zero
	half := decimal.NewFromFloat(0.5)
	for _, a := range attendances {
		switch a.Status {
		case AttendancePresent:
			days = days.Add(decimal.NewFromInt(1))
		case AttendanceHalfDay:
			days = days.Add(half)
		}
	}
	return days
}

// PeriodDays returns the inclusive day count of a payroll period
func PeriodDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// FrequencyMultiplier converts a recurring benefit/deduction amount to the
// number of times it applies within one payroll period. The rules are fixed:
// DAILY items apply once per present day, WEEKLY items once per full week of
// the period, SEMI_MONTHLY and MONTHLY items once per cutoff.
func FrequencyMultiplier(frequency PayFrequency, periodStart, periodEnd time.Time, presentDays decimal.Decimal) decimal.Decimal {
	switch frequency {
	case PayFrequencyDaily:
		return presentDays
	case PayFrequencyWeekly:
		weeks := PeriodDays(periodStart, periodEnd) / 7
		if weeks < 1 {
			weeks = 1
		}
		return decimal.NewFromInt(int64(weeks))
	case PayFrequencySemiMonthly, PayFrequencyMonthly:
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(1)
}

// GrossPay computes base pay for the period. Daily-rated employees earn
// rate x present days; monthly-rated employees earn the rate prorated by the
// period length against a 30-day month.
func GrossPay(basicRate decimal.Decimal, rateType RateType, presentDays decimal.Decimal, periodStart, periodEnd time.Time) decimal.Decimal {
	if rateType == RateTypeMonthly {
		days := decimal.NewFromInt(int64(PeriodDays(periodStart, periodEnd)))
		return basicRate.Mul(days).Div(decimal.NewFromInt(30)).Round(2)
	}
	return basicRate.Mul(presentDays).Round(2)
}

// SumPayItems totals a set of recurring items over the period using the
// fixed frequency multiplier rules.
func SumPayItems(items []PayItem, periodStart, periodEnd time.Time, presentDays decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		mult := FrequencyMultiplier(item.Frequency, periodStart, periodEnd, presentDays)
		total = total.Add(item.Amount.Mul(mult))
	}
	return total.Round(2)
}

// NetPay is gross pay plus benefits minus deductions
func NetPay(gross, totalBenefits, totalDeductions decimal.Decimal) decimal.Decimal {
	return gross.Add(totalBenefits).Sub(totalDeductions).Round(2)
}
