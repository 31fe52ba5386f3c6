package domain

// OrderRequest is the fully composed, signed payload sent to the order
// endpoint. Struct field order mirrors the canonical signing order; the
// signature and API key are attached after signing.
type OrderRequest struct {
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	Leverage    int    `json:"leverage,omitempty"`
	OrderType   string `json:"order_type"`
	Qty         string `json:"qty"`
	TimeInForce string `json:"time_in_force"`
	Timestamp   int64  `json:"timestamp"`
	Sign        string `json:"sign"`
	APIKey      string `json:"api_key"`
}

// BalanceSnapshot is the account equity for one quote coin, fetched fresh
// for every percentage-sized alert and discarded afterwards.
type BalanceSnapshot struct {
	Coin   string
	Equity float64
}

// Outcome is the normalized result of one exchange call. Success or not is
// a value, never a panic or a control-flow escape past the gateway.
type Outcome struct {
	Success bool
	Status  int
	Body    string
	Message string
}
