package exchange

import (
	"fmt"
	"strconv"
	"time"

	"signal-relay/internal/domain"

	"github.com/shopspring/decimal"
)

// Composer builds signed Bybit order payloads. It implements
// domain.OrderComposer and holds no state.
type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

// Compose builds the signed order payload for a sized alert. Field
// insertion order is part of the wire contract and must match what the
// exchange signs server-side. The timestamp is generated here, at build
// time, so a composed order cannot be replayed later.
//
// Only derivatives are supported; the spot order endpoint uses a different
// scheme and is a known limitation, rejected up front.
func (c *Composer) Compose(alert *domain.Alert, side domain.OrderSide, qty decimal.Decimal) (*domain.OrderRequest, error) {
	if alert.TradeType != domain.TradeTypeDerivatives {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedTradeType, alert.TradeType)
	}

	timestamp := time.Now().UnixMilli()
	qtyStr := qty.String()

	params := []Param{
		{"symbol", alert.Symbol},
		{"side", string(side)},
	}
	if alert.Leverage > 0 {
		params = append(params, Param{"leverage", strconv.Itoa(alert.Leverage)})
	}
	params = append(params,
		Param{"order_type", "Market"},
		Param{"qty", qtyStr},
		Param{"time_in_force", "GoodTillCancel"},
		Param{"timestamp", strconv.FormatInt(timestamp, 10)},
	)

	return &domain.OrderRequest{
		Symbol:      alert.Symbol,
		Side:        string(side),
		Leverage:    alert.Leverage,
		OrderType:   "Market",
		Qty:         qtyStr,
		TimeInForce: "GoodTillCancel",
		Timestamp:   timestamp,
		Sign:        Sign(alert.SecretKey, params),
		APIKey:      alert.APIKey,
	}, nil
}
