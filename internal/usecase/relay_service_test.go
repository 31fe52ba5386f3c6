package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"signal-relay/internal/domain"
	"signal-relay/internal/infrastructure/exchange"
	"signal-relay/internal/usecase"

	"go.uber.org/zap"
)

type MockExchange struct {
	Equity        float64
	BalanceErr    error
	Outcome       *domain.Outcome
	SubmitErr     error
	BalanceCalled bool
	SubmitCalled  bool
	Submitted     *domain.OrderRequest
}

func (m *MockExchange) FetchEquity(ctx context.Context, creds domain.Credentials, coin string) (*domain.BalanceSnapshot, error) {
	m.BalanceCalled = true
	if m.BalanceErr != nil {
		return nil, m.BalanceErr
	}
	return &domain.BalanceSnapshot{Coin: coin, Equity: m.Equity}, nil
}

func (m *MockExchange) SubmitOrder(ctx context.Context, order *domain.OrderRequest) (*domain.Outcome, error) {
	m.SubmitCalled = true
	m.Submitted = order
	if m.SubmitErr != nil {
		return nil, m.SubmitErr
	}
	if m.Outcome != nil {
		return m.Outcome, nil
	}
	return &domain.Outcome{Success: true, Status: 200}, nil
}

func (m *MockExchange) GetInstruments(ctx context.Context) ([]domain.Instrument, error) {
	return nil, nil
}

func newService(ex *MockExchange) *usecase.RelayService {
	sizer := usecase.NewPositionSizer(&MockInstrumentRepo{})
	return usecase.NewRelayService(ex, exchange.NewComposer(), sizer, zap.NewNop())
}

func TestRelay_ActionMapping(t *testing.T) {
	cases := []struct {
		action string
		side   string
	}{
		{"open_long", "Buy"},
		{"close_long", "Sell"},
		{"open_short", "Sell"},
		{"close_short", "Buy"},
	}

	for _, tc := range cases {
		ex := &MockExchange{}
		svc := newService(ex)
		body := []byte(`{"api_key":"k","secret_key":"s","symbol":"BTCUSDT","action":"` + tc.action + `","qty":1}`)

		if err := svc.Process(context.Background(), body); err != nil {
			t.Fatalf("%s: Process failed: %v", tc.action, err)
		}
		if !ex.SubmitCalled {
			t.Fatalf("%s: expected order submit", tc.action)
		}
		if ex.Submitted.Side != tc.side {
			t.Errorf("%s: expected side %s, got %s", tc.action, tc.side, ex.Submitted.Side)
		}
	}
}

func TestRelay_UnknownActionNoExchangeCall(t *testing.T) {
	ex := &MockExchange{}
	svc := newService(ex)
	body := []byte(`{"api_key":"k","secret_key":"s","symbol":"BTCUSDT","action":"go_long","qty":1}`)

	err := svc.Process(context.Background(), body)
	if !errors.Is(err, domain.ErrMalformedAlert) {
		t.Errorf("Expected ErrMalformedAlert, got %v", err)
	}
	if ex.BalanceCalled || ex.SubmitCalled {
		t.Error("Expected no exchange call for malformed alert")
	}
}

func TestRelay_FixedQtySkipsBalanceFetch(t *testing.T) {
	ex := &MockExchange{}
	svc := newService(ex)
	body := []byte(`{"api_key":"k","secret_key":"s","symbol":"BTCUSDT","action":"open_long","qty":2}`)

	if err := svc.Process(context.Background(), body); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if ex.BalanceCalled {
		t.Error("Fixed qty sizing must not fetch balance")
	}
	if ex.Submitted.Qty != "2" {
		t.Errorf("Expected qty 2, got %s", ex.Submitted.Qty)
	}
}

func TestRelay_PercentageSizing(t *testing.T) {
	ex := &MockExchange{Equity: 1000}
	svc := newService(ex)
	body := []byte(`{"api_key":"k","secret_key":"s","symbol":"BTCUSDT","action":"open_long","percentage":10}`)

	if err := svc.Process(context.Background(), body); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !ex.BalanceCalled {
		t.Fatal("Expected balance fetch for percentage sizing")
	}
	if ex.Submitted.Qty != "100" {
		t.Errorf("Expected qty 100, got %s", ex.Submitted.Qty)
	}
	if ex.Submitted.Side != "Buy" {
		t.Errorf("Expected side Buy, got %s", ex.Submitted.Side)
	}
}

func TestRelay_SpotRejectedBeforeNetwork(t *testing.T) {
	ex := &MockExchange{}
	svc := newService(ex)
	body := []byte(`{"api_key":"k","secret_key":"s","symbol":"BTCUSDT","action":"open_long","percentage":10,"trade_type":"spot"}`)

	err := svc.Process(context.Background(), body)
	if !errors.Is(err, domain.ErrUnsupportedTradeType) {
		t.Errorf("Expected ErrUnsupportedTradeType, got %v", err)
	}
	if ex.BalanceCalled || ex.SubmitCalled {
		t.Error("Expected no exchange call for spot alert")
	}
}

func TestRelay_InvalidPercentageSkipsBalanceFetch(t *testing.T) {
	ex := &MockExchange{Equity: 1000}
	svc := newService(ex)
	body := []byte(`{"api_key":"k","secret_key":"s","symbol":"BTCUSDT","action":"open_long","percentage":200}`)

	err := svc.Process(context.Background(), body)
	if !errors.Is(err, domain.ErrInvalidSizing) {
		t.Errorf("Expected ErrInvalidSizing, got %v", err)
	}
	if ex.BalanceCalled || ex.SubmitCalled {
		t.Error("Out-of-range percentage must be rejected before any exchange call")
	}
}

func TestRelay_BalanceFailureShortCircuits(t *testing.T) {
	ex := &MockExchange{BalanceErr: domain.ErrBalanceUnavailable}
	svc := newService(ex)
	body := []byte(`{"api_key":"k","secret_key":"s","symbol":"BTCUSDT","action":"open_long","percentage":10}`)

	err := svc.Process(context.Background(), body)
	if !errors.Is(err, domain.ErrBalanceUnavailable) {
		t.Errorf("Expected ErrBalanceUnavailable, got %v", err)
	}
	if ex.SubmitCalled {
		t.Error("Order endpoint must not be called after a sizing failure")
	}
}

func TestRelay_ExchangeRejection(t *testing.T) {
	ex := &MockExchange{Outcome: &domain.Outcome{Success: false, Status: 403, Body: `{}`}}
	svc := newService(ex)
	body := []byte(`{"api_key":"k","secret_key":"s","symbol":"BTCUSDT","action":"open_long","qty":1}`)

	err := svc.Process(context.Background(), body)
	if !errors.Is(err, domain.ErrExchangeFailure) {
		t.Errorf("Expected ErrExchangeFailure, got %v", err)
	}
}

func TestRelay_ErrorsNeverLeakSecret(t *testing.T) {
	ex := &MockExchange{Outcome: &domain.Outcome{Success: false, Status: 500}}
	svc := newService(ex)
	body := []byte(`{"api_key":"k","secret_key":"supersecret","symbol":"BTCUSDT","action":"open_long","qty":1}`)

	err := svc.Process(context.Background(), body)
	if err == nil {
		t.Fatal("Expected error")
	}
	if strings.Contains(err.Error(), "supersecret") {
		t.Error("Error message must not contain the secret key")
	}
}
