package api

// Wire types mirror the exchange's JSON. Prices are integer cents in
// [0,100]; money amounts (balance, exposure, pnl) are integer cents
// with no upper bound. Nothing here is persisted locally; the exchange
// owns canonical state.

// ExchangeStatusResponse from GET /exchange/status.
type ExchangeStatusResponse struct {
	ExchangeActive      bool   `json:"exchange_active"`
	TradingActive       bool   `json:"trading_active"`
	EstimatedResumeTime string `json:"exchange_estimated_resume_time,omitempty"`
}

// Market represents a tradeable binary market.
type Market struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Status      string `json:"status"` // open | closed | settled
	Result      string `json:"result"` // yes | no, empty until settled

	YesBid    int `json:"yes_bid"`
	YesAsk    int `json:"yes_ask"`
	NoBid     int `json:"no_bid"`
	NoAsk     int `json:"no_ask"`
	LastPrice int `json:"last_price"`

	Volume       int64 `json:"volume"`
	OpenInterest int64 `json:"open_interest"`

	OpenTime       string `json:"open_time"`
	CloseTime      string `json:"close_time"`
	ExpirationTime string `json:"expiration_time"`
}

// MarketsResponse from GET /markets.
type MarketsResponse struct {
	Markets []Market `json:"markets"`
	Cursor  string   `json:"cursor"`
}

// SingleMarketResponse from GET /markets/{ticker}.
type SingleMarketResponse struct {
	Market Market `json:"market"`
}

// Event groups related markets under one event ticker.
type Event struct {
	EventTicker       string `json:"event_ticker"`
	SeriesTicker      string `json:"series_ticker"`
	Title             string `json:"title"`
	Category          string `json:"category"`
	MutuallyExclusive bool   `json:"mutually_exclusive"`

	// Markets is populated on the detail endpoint; the list endpoint
	// returns events without nested markets.
	Markets []Market `json:"markets,omitempty"`
}

// EventsResponse from GET /events.
type EventsResponse struct {
	Events []Event `json:"events"`
	Cursor string  `json:"cursor"`
}

// SingleEventResponse from GET /events/{event_ticker}.
type SingleEventResponse struct {
	Event Event `json:"event"`
}

// OrderbookResponse from GET /markets/{ticker}/orderbook.
type OrderbookResponse struct {
	Orderbook Orderbook `json:"orderbook"`
}

// Orderbook holds resting liquidity as [price_cents, quantity] pairs,
// one list per side. A bid on one side implies an ask at 100-price on
// the other; the exchange only sends bids.
type Orderbook struct {
	Yes [][]int `json:"yes"`
	No  [][]int `json:"no"`
}

// Order is the server's view of a submitted order. This client only
// submits, queries, cancels and amends; it never owns order state.
type Order struct {
	OrderID       string `json:"order_id"`
	ClientOrderID string `json:"client_order_id"`
	Ticker        string `json:"ticker"`
	Side          string `json:"side"`   // yes | no
	Action        string `json:"action"` // buy | sell
	Type          string `json:"type"`   // market | limit

	Count          int `json:"count"`
	RemainingCount int `json:"remaining_count"`
	YesPrice       int `json:"yes_price,omitempty"`
	NoPrice        int `json:"no_price,omitempty"`

	Status         string `json:"status"` // resting | executed | canceled | expired
	CreatedTime    string `json:"created_time"`
	ExpirationTime string `json:"expiration_time,omitempty"`
}

// OrderResponse wraps a single order.
type OrderResponse struct {
	Order Order `json:"order"`
}

// OrdersResponse from GET /portfolio/orders.
type OrdersResponse struct {
	Orders []Order `json:"orders"`
	Cursor string  `json:"cursor"`
}

// Position is a per-market exposure snapshot.
type Position struct {
	Ticker            string `json:"ticker"`
	MarketExposure    int64  `json:"market_exposure"`
	TotalTraded       int64  `json:"total_traded"`
	RealizedPnl       int64  `json:"realized_pnl"`
	Position          int    `json:"position"` // signed contract count
	RestingOrderCount int    `json:"resting_order_count"`
}

// PositionsResponse from GET /portfolio/positions.
type PositionsResponse struct {
	MarketPositions []Position `json:"market_positions"`
	Cursor          string     `json:"cursor"`
}

// Fill is an immutable trade execution record.
type Fill struct {
	TradeID     string `json:"trade_id"`
	OrderID     string `json:"order_id"`
	Ticker      string `json:"ticker"`
	Side        string `json:"side"`
	Action      string `json:"action"`
	Count       int    `json:"count"`
	Price       int    `json:"price"`
	IsTaker     bool   `json:"is_taker"`
	CreatedTime string `json:"created_time"`
}

// FillsResponse from GET /portfolio/fills.
type FillsResponse struct {
	Fills  []Fill `json:"fills"`
	Cursor string `json:"cursor"`
}

// BalanceResponse from GET /portfolio/balance. All values are cents.
type BalanceResponse struct {
	Balance          int64 `json:"balance"`
	AvailableBalance int64 `json:"available_balance"`
	PayoutAvailable  int64 `json:"payout_available"`
}

// GetMarketsOptions configures a GetMarkets request. Cursor is opaque
// and passed through unmodified.
type GetMarketsOptions struct {
	Limit        int
	Cursor       string
	EventTicker  string
	SeriesTicker string
	Status       string
}

// GetEventsOptions configures a GetEvents request.
type GetEventsOptions struct {
	Limit        int
	Cursor       string
	SeriesTicker string
	Status       string
}

// GetOrdersOptions configures a GetOrders request.
type GetOrdersOptions struct {
	Limit  int
	Cursor string
	Ticker string
	Status string
}

// GetPositionsOptions configures a GetPositions request.
type GetPositionsOptions struct {
	Limit       int
	Cursor      string
	Ticker      string
	EventTicker string
}

// GetFillsOptions configures a GetFills request.
type GetFillsOptions struct {
	Limit   int
	Cursor  string
	Ticker  string
	OrderID string
}

// CreateOrderRequest is the body of POST /portfolio/orders.
// ClientOrderID makes resubmission idempotent; CreateOrder fills in a
// random one when the caller leaves it empty.
type CreateOrderRequest struct {
	Ticker        string `json:"ticker"`
	ClientOrderID string `json:"client_order_id"`
	Side          string `json:"side"`
	Action        string `json:"action"`
	Type          string `json:"type"`
	Count         int    `json:"count"`

	YesPrice      int    `json:"yes_price,omitempty"`
	NoPrice       int    `json:"no_price,omitempty"`
	ExpirationTS  int64  `json:"expiration_ts,omitempty"`
	TimeInForce   string `json:"time_in_force,omitempty"`
	BuyMaxCost    int64  `json:"buy_max_cost,omitempty"`
	SellPositionF bool   `json:"sell_position_floor,omitempty"`
}

// AmendOrderRequest is the body of PATCH /portfolio/orders/{id}.
// Only non-nil fields are changed.
type AmendOrderRequest struct {
	Count    *int `json:"count,omitempty"`
	YesPrice *int `json:"yes_price,omitempty"`
	NoPrice  *int `json:"no_price,omitempty"`
}
