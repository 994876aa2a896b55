package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetPositions fetches a page of per-market exposure snapshots.
func (c *Client) GetPositions(ctx context.Context, opts GetPositionsOptions) (*PositionsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.Ticker != "" {
		query.Set("ticker", opts.Ticker)
	}
	if opts.EventTicker != "" {
		query.Set("event_ticker", opts.EventTicker)
	}

	var resp PositionsResponse
	if err := c.get(ctx, "/portfolio/positions", query, &resp); err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}

	return &resp, nil
}

// GetFills fetches a page of the account's trade executions.
func (c *Client) GetFills(ctx context.Context, opts GetFillsOptions) (*FillsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.Ticker != "" {
		query.Set("ticker", opts.Ticker)
	}
	if opts.OrderID != "" {
		query.Set("order_id", opts.OrderID)
	}

	var resp FillsResponse
	if err := c.get(ctx, "/portfolio/fills", query, &resp); err != nil {
		return nil, fmt.Errorf("get fills: %w", err)
	}

	return &resp, nil
}

// GetBalance fetches the authenticated account's balance in cents.
func (c *Client) GetBalance(ctx context.Context) (*BalanceResponse, error) {
	var resp BalanceResponse
	if err := c.get(ctx, "/portfolio/balance", nil, &resp); err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &resp, nil
}
