package external

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/payroll"
	"github.com/transitledger/backend/internal/domain/syncdata"
	"go.uber.org/zap"
)

// HRClient talks to the HR system. It serves two callers: the sync service
// mirrors the employee roster, and payroll fetches per-employee attendance
// and pay items for a period.
type HRClient struct {
	client  *Client
	baseURL string
	logger  *zap.Logger
}

// NewHRClient creates a new HRClient
func NewHRClient(client *Client, baseURL string, logger *zap.Logger) *HRClient {
	return &HRClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type employeePayload struct {
	EmployeeNumber string `json:"employee_number"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Position       string `json:"position"`
}

// FetchEmployees returns the current HR employee roster
func (c *HRClient) FetchEmployees(ctx context.Context) ([]syncdata.EmployeeLocal, error) {
	var payload listPayload[employeePayload]
	if err := c.client.GetJSON(ctx, c.baseURL+"/api/employees", &payload); err != nil {
		return nil, fmt.Errorf("fetching employees: %w", err)
	}

	employees := make([]syncdata.EmployeeLocal, 0, len(payload.items))
	for _, row := range payload.items {
		if row.EmployeeNumber == "" {
			c.logger.Warn("skipping employee with empty employee number")
			continue
		}
		employees = append(employees, syncdata.EmployeeLocal{
			EmployeeNumber: row.EmployeeNumber,
			FirstName:      row.FirstName,
			LastName:       row.LastName,
			Position:       parsePosition(row.Position),
		})
	}
	return employees, nil
}

type payrollPayload struct {
	EmployeeNumber string          `json:"employee_number"`
	BasicRate      decimal.Decimal `json:"basic_rate"`
	RateType       string          `json:"rate_type"`
	Attendances    []struct {
		Date   string `json:"date"`
		Status string `json:"status"`
	} `json:"attendances"`
	Benefits   []payItemPayload `json:"benefits"`
	Deductions []payItemPayload `json:"deductions"`
}

type payItemPayload struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Frequency string          `json:"frequency"`
}

// FetchPayrollData returns per-employee payroll inputs for the period.
// Malformed rows are passed through as-is so the payroll run can report them
// individually instead of failing wholesale.
func (c *HRClient) FetchPayrollData(ctx context.Context, periodStart, periodEnd time.Time) ([]payroll.EmployeePayrollData, error) {
	endpoint := fmt.Sprintf("%s/api/payroll-data?payroll_period_start=%s&payroll_period_end=%s",
		c.baseURL,
		url.QueryEscape(periodStart.Format("2006-01-02")),
		url.QueryEscape(periodEnd.Format("2006-01-02")))

	var payload listPayload[payrollPayload]
	if err := c.client.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fetching payroll data: %w", err)
	}

	data := make([]payroll.EmployeePayrollData, 0, len(payload.items))
	for _, row := range payload.items {
		d := payroll.EmployeePayrollData{
			EmployeeNumber: row.EmployeeNumber,
			BasicRate:      row.BasicRate,
			RateType:       payroll.RateType(strings.ToUpper(row.RateType)),
			Benefits:       parsePayItems(row.Benefits),
			Deductions:     parsePayItems(row.Deductions),
		}
		for _, a := range row.Attendances {
			date, err := time.Parse("2006-01-02", a.Date)
			if err != nil {
				c.logger.Warn("skipping unparseable attendance date",
					zap.String("employee", row.EmployeeNumber),
					zap.String("date", a.Date))
				continue
			}
			d.Attendances = append(d.Attendances, payroll.Attendance{
				Date:   date,
				Status: payroll.AttendanceStatus(strings.ToUpper(a.Status)),
			})
		}
		data = append(data, d)
	}
	return data, nil
}

func parsePayItems(rows []payItemPayload) []payroll.PayItem {
	items := make([]payroll.PayItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, payroll.PayItem{
			Name:      row.Name,
			Amount:    row.Amount,
			Frequency: payroll.PayFrequency(strings.ToUpper(row.Frequency)),
		})
	}
	return items
}

func parsePosition(raw string) syncdata.EmployeePosition {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DRIVER":
		return syncdata.PositionDriver
	case "CONDUCTOR":
		return syncdata.PositionConductor
	}
	return syncdata.PositionOther
}
