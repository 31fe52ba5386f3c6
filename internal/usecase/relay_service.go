package usecase

import (
	"context"
	"fmt"

	"signal-relay/internal/domain"

	"go.uber.org/zap"
)

// QuoteCoin is the currency equity is measured in for percentage sizing.
const QuoteCoin = "USDT"

// RelayService drives one alert through the pipeline:
// validate -> size (balance fetch if needed) -> compose+sign -> submit.
// Each alert produces exactly one outcome; nothing is retried and nothing
// survives the call. The only shared state is the injected gateway.
type RelayService struct {
	exchange domain.Exchange
	composer domain.OrderComposer
	sizer    *PositionSizer
	logger   *zap.Logger
}

func NewRelayService(ex domain.Exchange, composer domain.OrderComposer, sizer *PositionSizer, logger *zap.Logger) *RelayService {
	return &RelayService{
		exchange: ex,
		composer: composer,
		sizer:    sizer,
		logger:   logger,
	}
}

// Process relays one webhook body to the exchange. A nil return means the
// order was accepted; otherwise the error wraps one of the domain
// sentinels so the HTTP layer can pick a status code. Any panic below is
// recovered into ErrUnexpectedFault so one bad alert can never take the
// process down.
func (s *RelayService) Process(ctx context.Context, body []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered panic while relaying alert", zap.Any("panic", r))
			err = fmt.Errorf("%w: %v", domain.ErrUnexpectedFault, r)
		}
	}()

	alert, err := domain.ParseAlert(body)
	if err != nil {
		return err
	}

	side, err := alert.OrderSide()
	if err != nil {
		return err
	}

	// Reject unsupported trade types and impossible sizing before any
	// network call; an out-of-range percentage must not cost a signed
	// balance fetch.
	if alert.TradeType != domain.TradeTypeDerivatives {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedTradeType, alert.TradeType)
	}
	if err := s.sizer.Validate(alert); err != nil {
		return err
	}

	var balance *domain.BalanceSnapshot
	if alert.Percentage != 0 {
		balance, err = s.exchange.FetchEquity(ctx, alert.Credentials(), QuoteCoin)
		if err != nil {
			s.logger.Error("Balance fetch failed",
				zap.String("symbol", alert.Symbol),
				zap.Error(err))
			return err
		}
	}

	qty, err := s.sizer.Size(ctx, alert, balance)
	if err != nil {
		return err
	}

	order, err := s.composer.Compose(alert, side, qty)
	if err != nil {
		return err
	}

	outcome, err := s.exchange.SubmitOrder(ctx, order)
	if err != nil {
		s.logger.Error("Order submit failed",
			zap.String("symbol", alert.Symbol),
			zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrExchangeFailure, err)
	}

	if !outcome.Success {
		s.logger.Error("Exchange rejected order",
			zap.String("symbol", alert.Symbol),
			zap.String("side", string(side)),
			zap.Int("status", outcome.Status),
			zap.String("message", outcome.Message),
			zap.String("body", outcome.Body))
		return fmt.Errorf("%w: status %d", domain.ErrExchangeFailure, outcome.Status)
	}

	s.logger.Info("Order relayed",
		zap.String("symbol", alert.Symbol),
		zap.String("side", string(side)),
		zap.String("qty", qty.String()),
		zap.Int("status", outcome.Status))
	return nil
}
