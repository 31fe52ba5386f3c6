package usecase

import (
	"context"
	"fmt"
	"math"

	"signal-relay/internal/domain"

	"github.com/shopspring/decimal"
)

// PositionSizer converts an alert's sizing mode into an order quantity.
// Quantities are computed with decimal arithmetic; this is the one boundary
// where float rounding could silently change what gets sent to the exchange.
type PositionSizer struct {
	instruments domain.InstrumentRepository
}

func NewPositionSizer(instruments domain.InstrumentRepository) *PositionSizer {
	return &PositionSizer{instruments: instruments}
}

// Validate cheaply rejects impossible sizing. It needs no balance, so the
// caller can run it before paying for a signed equity fetch.
func (s *PositionSizer) Validate(alert *domain.Alert) error {
	if alert.Qty != 0 {
		if math.IsNaN(alert.Qty) || math.IsInf(alert.Qty, 0) || alert.Qty <= 0 {
			return fmt.Errorf("%w: qty must be a positive number", domain.ErrInvalidSizing)
		}
		return nil
	}
	pct := alert.Percentage
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct <= 0 || pct > 100 {
		return fmt.Errorf("%w: percentage must be in (0,100]", domain.ErrInvalidSizing)
	}
	return nil
}

// Size returns the order quantity for the alert. Fixed quantities pass
// through unchanged. Percentage sizing requires a freshly fetched balance
// and yields equity * pct / 100, truncated down to the instrument's qty
// step when lot-size metadata is known.
func (s *PositionSizer) Size(ctx context.Context, alert *domain.Alert, balance *domain.BalanceSnapshot) (decimal.Decimal, error) {
	if err := s.Validate(alert); err != nil {
		return decimal.Zero, err
	}

	if alert.Qty != 0 {
		return decimal.NewFromFloat(alert.Qty), nil
	}

	pct := alert.Percentage
	if balance == nil {
		return decimal.Zero, fmt.Errorf("%w: percentage sizing requires a balance snapshot", domain.ErrBalanceUnavailable)
	}
	if math.IsNaN(balance.Equity) || math.IsInf(balance.Equity, 0) {
		return decimal.Zero, fmt.Errorf("%w: equity is not a finite number", domain.ErrInvalidSizing)
	}

	qty := decimal.NewFromFloat(balance.Equity).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100))

	qty = s.truncateToStep(ctx, alert.Symbol, qty)

	if !qty.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: computed quantity %s is not positive", domain.ErrInvalidSizing, qty)
	}
	return qty, nil
}

// truncateToStep floors the quantity to the instrument's lot-size step.
// Missing metadata means no truncation; the exchange may reject then.
func (s *PositionSizer) truncateToStep(ctx context.Context, symbol string, qty decimal.Decimal) decimal.Decimal {
	if s.instruments == nil {
		return qty
	}
	inst, err := s.instruments.GetInstrument(ctx, symbol)
	if err != nil || inst == nil || inst.QtyStep <= 0 {
		return qty
	}
	step := decimal.NewFromFloat(inst.QtyStep)
	return qty.Div(step).Floor().Mul(step)
}
