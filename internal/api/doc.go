// Package api provides the authenticated Kalshi REST client.
//
// REST endpoints:
//   - Production: https://trading-api.kalshi.com/trade-api/v2
//   - Demo: https://demo-api.kalshi.co/trade-api/v2
//
// Every request carries KALSHI-ACCESS-KEY, KALSHI-ACCESS-SIGNATURE and
// KALSHI-ACCESS-TIMESTAMP headers computed by internal/auth. Responses
// are decoded into typed structs; a shape mismatch surfaces as a
// DecodeError rather than a silently zeroed field.
//
// The client performs no automatic retries. Trading calls are not
// idempotent without a client_order_id, so retry policy belongs to the
// caller, not the transport.
package api
