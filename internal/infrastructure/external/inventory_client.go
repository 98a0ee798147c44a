package external

import (
	"context"
	"fmt"
	"strings"

	"github.com/transitledger/backend/internal/domain/syncdata"
	"go.uber.org/zap"
)

// InventoryClient talks to the inventory system for the bus fleet
type InventoryClient struct {
	client  *Client
	baseURL string
	logger  *zap.Logger
}

// NewInventoryClient creates a new InventoryClient
func NewInventoryClient(client *Client, baseURL string, logger *zap.Logger) *InventoryClient {
	return &InventoryClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type busPayload struct {
	ID          int64  `json:"id"`
	BodyNumber  string `json:"body_number"`
	PlateNumber string `json:"plate_number"`
	Capacity    int    `json:"capacity"`
}

// FetchBuses returns the current bus fleet
func (c *InventoryClient) FetchBuses(ctx context.Context) ([]syncdata.BusLocal, error) {
	var payload listPayload[busPayload]
	if err := c.client.GetJSON(ctx, c.baseURL+"/api/buses", &payload); err != nil {
		return nil, fmt.Errorf("fetching buses: %w", err)
	}

	buses := make([]syncdata.BusLocal, 0, len(payload.items))
	for _, row := range payload.items {
		if row.ID == 0 {
			c.logger.Warn("skipping bus with zero ID")
			continue
		}
		buses = append(buses, syncdata.BusLocal{
			ExternalID:  row.ID,
			BodyNumber:  row.BodyNumber,
			PlateNumber: row.PlateNumber,
			Capacity:    row.Capacity,
		})
	}
	return buses, nil
}
