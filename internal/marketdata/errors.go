package marketdata

import "errors"

var (
	// ErrDataUnavailable means every provider in the chain was exhausted
	// without producing usable history. Terminal for the requested symbol.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrThrottled means the provider rejected the call for rate reasons.
	// The resolver treats it as a soft failure and moves to the next
	// provider in the chain.
	ErrThrottled = errors.New("provider throttled request")

	// ErrUnsupportedSymbol means the provider cannot serve this symbol
	// class at all (index symbols on the CSV provider). Detected before
	// any network call is made.
	ErrUnsupportedSymbol = errors.New("symbol not supported by provider")
)
