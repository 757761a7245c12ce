package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/username/tradejournal/src/models"
)

func (c *Client) ListTrades(ctx context.Context, token string) ([]models.Trade, error) {
	trades := []models.Trade{}
	if err := c.sendJSON(ctx, token, http.MethodGet, "/api/trades/", nil, &trades); err != nil {
		return nil, err
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	return trades, nil
}

func (c *Client) CreateTrade(ctx context.Context, token string, in models.TradeInput) (*models.Trade, error) {
	var t models.Trade
	if err := c.sendJSON(ctx, token, http.MethodPost, "/trades/", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTrade(ctx context.Context, token string, id int64, in models.TradeInput) (*models.Trade, error) {
	var t models.Trade
	if err := c.sendJSON(ctx, token, http.MethodPut, fmt.Sprintf("/api/trades/%d", id), in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTrade(ctx context.Context, token string, id int64) error {
	return c.sendJSON(ctx, token, http.MethodDelete, fmt.Sprintf("/api/trades/%d", id), nil, nil)
}

// Report fetches the remote performance summary. The remote API computes it;
// this service never does.
func (c *Client) Report(ctx context.Context, token string) (*models.ReportSummary, error) {
	var r models.ReportSummary
	if err := c.sendJSON(ctx, token, http.MethodGet, "/api/report/", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
