package domain

import "errors"

// Relay error taxonomy. Validation errors map to HTTP 400, the rest to a
// generic HTTP 500; full detail is only ever logged.
var (
	ErrMalformedAlert       = errors.New("malformed alert")
	ErrBalanceUnavailable   = errors.New("balance unavailable")
	ErrInvalidSizing        = errors.New("invalid sizing")
	ErrUnsupportedTradeType = errors.New("unsupported trade type")
	ErrExchangeFailure      = errors.New("exchange failure")
	ErrUnexpectedFault      = errors.New("unexpected fault")
)
