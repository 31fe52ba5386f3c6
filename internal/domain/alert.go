package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type OrderSide string

const (
	SideBuy  OrderSide = "Buy"
	SideSell OrderSide = "Sell"
)

type Action string

const (
	ActionOpenLong   Action = "open_long"
	ActionCloseLong  Action = "close_long"
	ActionOpenShort  Action = "open_short"
	ActionCloseShort Action = "close_short"
)

type TradeType string

const (
	TradeTypeDerivatives TradeType = "derivatives"
	TradeTypeSpot        TradeType = "spot"
)

// Credentials are supplied inside each alert and live only for the
// duration of that relay operation. They must never be logged.
type Credentials struct {
	APIKey    string
	SecretKey string
}

// Alert is an inbound trade signal, typically a TradingView alert message.
// Exactly one of Qty or Percentage must be set.
type Alert struct {
	APIKey     string    `json:"api_key"`
	SecretKey  string    `json:"secret_key"`
	Symbol     string    `json:"symbol"`
	Action     Action    `json:"action,omitempty"`
	Side       OrderSide `json:"side,omitempty"`
	Leverage   int       `json:"leverage,omitempty"`
	Qty        float64   `json:"qty,omitempty"`
	Percentage float64   `json:"percentage,omitempty"`
	TradeType  TradeType `json:"trade_type,omitempty"`
}

func (a *Alert) Credentials() Credentials {
	return Credentials{APIKey: a.APIKey, SecretKey: a.SecretKey}
}

// OrderSide resolves the side to trade: an explicit side wins, otherwise
// the semantic action is mapped (open_long/close_short buy, the rest sell).
func (a *Alert) OrderSide() (OrderSide, error) {
	if a.Side != "" {
		if a.Side != SideBuy && a.Side != SideSell {
			return "", fmt.Errorf("%w: unknown side %q", ErrMalformedAlert, a.Side)
		}
		return a.Side, nil
	}
	switch a.Action {
	case ActionOpenLong, ActionCloseShort:
		return SideBuy, nil
	case ActionCloseLong, ActionOpenShort:
		return SideSell, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrMalformedAlert, a.Action)
	}
}

// ParseAlert decodes and validates a webhook body. It fails closed: any
// missing required field, unknown field, unknown action or ambiguous
// sizing rejects the alert before anything touches the network. Unknown
// fields matter here because a typo'd sizing key would otherwise relay an
// order with the wrong size.
func ParseAlert(body []byte) (*Alert, error) {
	var a Alert
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedAlert, err)
	}

	if a.APIKey == "" || a.SecretKey == "" {
		return nil, fmt.Errorf("%w: missing credentials", ErrMalformedAlert)
	}
	if a.Symbol == "" {
		return nil, fmt.Errorf("%w: missing symbol", ErrMalformedAlert)
	}
	if _, err := a.OrderSide(); err != nil {
		return nil, err
	}
	if a.Leverage < 0 {
		return nil, fmt.Errorf("%w: leverage must be positive", ErrMalformedAlert)
	}

	hasQty := a.Qty != 0
	hasPct := a.Percentage != 0
	if hasQty == hasPct {
		return nil, fmt.Errorf("%w: exactly one of qty or percentage is required", ErrMalformedAlert)
	}

	if a.TradeType == "" {
		a.TradeType = TradeTypeDerivatives
	}

	return &a, nil
}
