package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Exchange defines the authenticated calls the relay makes against the
// derivatives exchange. Credentials arrive with each call; the gateway
// itself holds only the base URL and an HTTP client.
type Exchange interface {
	FetchEquity(ctx context.Context, creds Credentials, coin string) (*BalanceSnapshot, error)
	SubmitOrder(ctx context.Context, order *OrderRequest) (*Outcome, error)
	GetInstruments(ctx context.Context) ([]Instrument, error)
}

// OrderComposer builds the exchange-specific signed payload for a sized
// alert. Implementations own the canonical field order and the signature.
type OrderComposer interface {
	Compose(alert *Alert, side OrderSide, qty decimal.Decimal) (*OrderRequest, error)
}

// InstrumentRepository stores exchange lot-size metadata.
type InstrumentRepository interface {
	SaveInstrument(ctx context.Context, inst *Instrument) error
	GetInstrument(ctx context.Context, symbol string) (*Instrument, error)
	ListInstruments(ctx context.Context) ([]*Instrument, error)
}
