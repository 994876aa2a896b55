package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// CreateOrder submits a new order. When the caller leaves ClientOrderID
// empty a random UUID is assigned so an identical resubmission after a
// transport failure is deduplicated server-side rather than doubled.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if req.ClientOrderID == "" {
		req.ClientOrderID = uuid.NewString()
	}

	var resp OrderResponse
	if err := c.do(ctx, http.MethodPost, "/portfolio/orders", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("create order %s: %w", req.Ticker, err)
	}

	return &resp.Order, nil
}

// CancelOrder cancels a resting order by server-assigned ID.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*Order, error) {
	var resp OrderResponse
	if err := c.do(ctx, http.MethodDelete, "/portfolio/orders/"+orderID, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return &resp.Order, nil
}

// AmendOrder partially updates a resting order. Only the fields set in
// req change; nil fields keep their current values.
func (c *Client) AmendOrder(ctx context.Context, orderID string, req AmendOrderRequest) (*Order, error) {
	var resp OrderResponse
	if err := c.do(ctx, http.MethodPatch, "/portfolio/orders/"+orderID, nil, req, &resp); err != nil {
		return nil, fmt.Errorf("amend order %s: %w", orderID, err)
	}
	return &resp.Order, nil
}

// GetOrders fetches a page of the account's orders.
func (c *Client) GetOrders(ctx context.Context, opts GetOrdersOptions) (*OrdersResponse, error) {
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
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	var resp OrdersResponse
	if err := c.get(ctx, "/portfolio/orders", query, &resp); err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}

	return &resp, nil
}

// GetOrder fetches a single order by server-assigned ID.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var resp OrderResponse
	if err := c.get(ctx, "/portfolio/orders/"+orderID, nil, &resp); err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return &resp.Order, nil
}
