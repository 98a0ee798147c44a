package external

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/domain/syncdata"
	"go.uber.org/zap"
)

// OperationsClient talks to the operations system for rental contracts and
// bus trip assignments.
type OperationsClient struct {
	client  *Client
	baseURL string
	logger  *zap.Logger
}

// NewOperationsClient creates a new OperationsClient
func NewOperationsClient(client *Client, baseURL string, logger *zap.Logger) *OperationsClient {
	return &OperationsClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type rentalPayload struct {
	ID             int64           `json:"id"`
	CustomerName   string          `json:"customer_name"`
	BusID          int64           `json:"bus_id"`
	ContractAmount decimal.Decimal `json:"contract_amount"`
	RentalDate     string          `json:"rental_date"`
}

// FetchRentals returns the current rental contracts
func (c *OperationsClient) FetchRentals(ctx context.Context) ([]syncdata.RentalLocal, error) {
	var payload listPayload[rentalPayload]
	if err := c.client.GetJSON(ctx, c.baseURL+"/api/rentals", &payload); err != nil {
		return nil, fmt.Errorf("fetching rentals: %w", err)
	}

	rentals := make([]syncdata.RentalLocal, 0, len(payload.items))
	for _, row := range payload.items {
		if row.ID == 0 {
			c.logger.Warn("skipping rental with zero ID")
			continue
		}
		rentals = append(rentals, syncdata.RentalLocal{
			ExternalID:     row.ID,
			CustomerName:   row.CustomerName,
			BusExternalID:  row.BusID,
			ContractAmount: row.ContractAmount,
			RentalDate:     parseUpstreamDate(row.RentalDate),
		})
	}
	return rentals, nil
}

type busTripPayload struct {
	AssignmentID        int64           `json:"assignment_id"`
	BusTripID           int64           `json:"bus_trip_id"`
	BusID               int64           `json:"bus_id"`
	DriverEmployeeNo    string          `json:"driver_employee_no"`
	ConductorEmployeeNo string          `json:"conductor_employee_no"`
	AssignmentType      string          `json:"assignment_type"`
	AssignmentValue     decimal.Decimal `json:"assignment_value"`
	TripRevenue         decimal.Decimal `json:"trip_revenue"`
	FuelExpense         decimal.Decimal `json:"fuel_expense"`
	TripDate            string          `json:"trip_date"`
	PaymentMethod       string          `json:"payment_method"`
}

// FetchBusTrips returns the current trip assignments. Trips with an
// unrecognized assignment type are skipped with a warning: a wrong scheme
// would silently miscompute the expected remittance downstream.
func (c *OperationsClient) FetchBusTrips(ctx context.Context) ([]syncdata.BusTripLocal, error) {
	var payload listPayload[busTripPayload]
	if err := c.client.GetJSON(ctx, c.baseURL+"/api/bus-trips", &payload); err != nil {
		return nil, fmt.Errorf("fetching bus trips: %w", err)
	}

	trips := make([]syncdata.BusTripLocal, 0, len(payload.items))
	for _, row := range payload.items {
		if row.AssignmentID == 0 || row.BusTripID == 0 {
			c.logger.Warn("skipping trip with incomplete key",
				zap.Int64("assignment_id", row.AssignmentID),
				zap.Int64("bus_trip_id", row.BusTripID))
			continue
		}
		assignmentType := revenue.AssignmentType(strings.ToUpper(row.AssignmentType))
		if !assignmentType.IsValid() {
			c.logger.Warn("skipping trip with unknown assignment type",
				zap.Int64("assignment_id", row.AssignmentID),
				zap.String("assignment_type", row.AssignmentType))
			continue
		}
		method := revenue.PaymentMethod(strings.ToUpper(row.PaymentMethod))
		if !method.IsValid() {
			method = revenue.PaymentMethodCash
		}
		trips = append(trips, syncdata.BusTripLocal{
			AssignmentID:        row.AssignmentID,
			BusTripID:           row.BusTripID,
			BusExternalID:       row.BusID,
			DriverEmployeeNo:    row.DriverEmployeeNo,
			ConductorEmployeeNo: row.ConductorEmployeeNo,
			AssignmentType:      assignmentType,
			AssignmentValue:     row.AssignmentValue,
			TripRevenue:         row.TripRevenue,
			FuelExpense:         row.FuelExpense,
			TripDate:            parseUpstreamDate(row.TripDate),
			PaymentMethod:       method,
		})
	}
	return trips, nil
}

// parseUpstreamDate accepts the two timestamp shapes the upstream services
// send, RFC 3339 and bare dates. A zero time means unparseable.
func parseUpstreamDate(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t
	}
	return time.Time{}
}
