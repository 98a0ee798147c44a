package external

import (
	"context"

	"github.com/transitledger/backend/internal/domain/syncdata"
	"github.com/transitledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Gateway composes the per-system clients into the single upstream gateway
// the sync service consumes.
type Gateway struct {
	hr         *HRClient
	operations *OperationsClient
	inventory  *InventoryClient
}

// NewGateway wires the upstream clients from configuration
func NewGateway(cfg config.ExternalConfig, logger *zap.Logger) *Gateway {
	client := NewClient(cfg, logger)
	return &Gateway{
		hr:         NewHRClient(client, cfg.HRBaseURL, logger),
		operations: NewOperationsClient(client, cfg.OperationsBaseURL, logger),
		inventory:  NewInventoryClient(client, cfg.InventoryBaseURL, logger),
	}
}

// HR exposes the HR client for callers beyond the sync service, payroll in
// particular.
func (g *Gateway) HR() *HRClient {
	return g.hr
}

// FetchEmployees returns the current HR employee roster
func (g *Gateway) FetchEmployees(ctx context.Context) ([]syncdata.EmployeeLocal, error) {
	return g.hr.FetchEmployees(ctx)
}

// FetchBuses returns the current bus fleet
func (g *Gateway) FetchBuses(ctx context.Context) ([]syncdata.BusLocal, error) {
	return g.inventory.FetchBuses(ctx)
}

// FetchRentals returns the current rental contracts
func (g *Gateway) FetchRentals(ctx context.Context) ([]syncdata.RentalLocal, error) {
	return g.operations.FetchRentals(ctx)
}

// FetchBusTrips returns the current trip assignments
func (g *Gateway) FetchBusTrips(ctx context.Context) ([]syncdata.BusTripLocal, error) {
	return g.operations.FetchBusTrips(ctx)
}

var _ syncdata.Gateway = (*Gateway)(nil)
