package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"signal-relay/internal/domain"
)

const (
	BybitBaseURL = "https://api.bybit.com"

	endpointWalletBalance = "/wallet-balance"
	endpointOrderCreate   = "/order/create"
	endpointSymbols       = "/symbols"
)

// BybitGateway performs the signed HTTP calls against the exchange. It
// holds only read-only state (base URL, HTTP client) and is safe to share
// between concurrent relay operations. Credentials travel with each call.
type BybitGateway struct {
	baseURL string
	client  *http.Client
}

func NewBybitGateway(baseURL string, timeout time.Duration) *BybitGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BybitGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchEquity queries the wallet-balance endpoint for one quote coin. The
// snapshot is fetched fresh per call and never cached: percentage sizing
// must reflect current equity.
func (g *BybitGateway) FetchEquity(ctx context.Context, creds domain.Credentials, coin string) (*domain.BalanceSnapshot, error) {
	timestamp := time.Now().UnixMilli()
	params := []Param{
		{"coin", coin},
		{"timestamp", strconv.FormatInt(timestamp, 10)},
	}
	sign := Sign(creds.SecretKey, params)

	q := url.Values{}
	q.Set("coin", coin)
	q.Set("timestamp", strconv.FormatInt(timestamp, 10))
	q.Set("sign", sign)
	q.Set("api_key", creds.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+endpointWalletBalance+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBalanceUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBalanceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBalanceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrBalanceUnavailable, resp.StatusCode)
	}

	var result struct {
		Result map[string]struct {
			Equity float64 `json:"equity"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBalanceUnavailable, err)
	}
	if result.Result == nil {
		return nil, fmt.Errorf("%w: no result object", domain.ErrBalanceUnavailable)
	}
	entry, ok := result.Result[coin]
	if !ok {
		return nil, fmt.Errorf("%w: no balance for %s", domain.ErrBalanceUnavailable, coin)
	}

	return &domain.BalanceSnapshot{Coin: coin, Equity: entry.Equity}, nil
}

// SubmitOrder performs exactly one POST to the order endpoint and
// classifies the response. Success means HTTP 200, a well-formed JSON body
// and a present, non-null result field; an empty result object still
// counts. Anything else, including transport errors and timeouts, is a
// Failure outcome carrying the raw status and body for diagnostics.
func (g *BybitGateway) SubmitOrder(ctx context.Context, order *domain.OrderRequest) (*domain.Outcome, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+endpointOrderCreate, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return &domain.Outcome{Success: false, Message: err.Error()}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.Outcome{Success: false, Status: resp.StatusCode, Message: err.Error()}, nil
	}

	return classify(resp.StatusCode, body), nil
}

// classify applies the binary success rule. Exchange-specific error codes
// are not interpreted beyond extracting ret_msg for diagnostics.
func classify(status int, body []byte) *domain.Outcome {
	outcome := &domain.Outcome{Status: status, Body: string(body)}

	var result struct {
		Result json.RawMessage `json:"result"`
		RetMsg string          `json:"ret_msg"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		outcome.Message = "malformed response body"
		return outcome
	}
	outcome.Message = result.RetMsg

	hasResult := len(result.Result) > 0 && string(result.Result) != "null"
	if status == http.StatusOK && hasResult {
		outcome.Success = true
	}
	return outcome
}

// GetInstruments lists tradable symbols with their lot-size filters. The
// endpoint is public, so no signature is attached.
func (g *BybitGateway) GetInstruments(ctx context.Context) ([]domain.Instrument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+endpointSymbols, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("symbols request failed: status %d", resp.StatusCode)
	}

	var result struct {
		Result []struct {
			Name          string `json:"name"`
			BaseCurrency  string `json:"base_currency"`
			QuoteCurrency string `json:"quote_currency"`
			LotSizeFilter struct {
				QtyStep       float64 `json:"qty_step"`
				MinTradingQty float64 `json:"min_trading_qty"`
			} `json:"lot_size_filter"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	instruments := make([]domain.Instrument, 0, len(result.Result))
	for _, item := range result.Result {
		instruments = append(instruments, domain.Instrument{
			Symbol:    item.Name,
			BaseCoin:  item.BaseCurrency,
			QuoteCoin: item.QuoteCurrency,
			QtyStep:   item.LotSizeFilter.QtyStep,
			MinQty:    item.LotSizeFilter.MinTradingQty,
			UpdatedAt: time.Now(),
		})
	}

	return instruments, nil
}
