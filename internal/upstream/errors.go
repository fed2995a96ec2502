package upstream

import "errors"

// Failure classes surfaced by the client. Handlers map these onto user-facing
// copy; everything that is not one of these sentinels is treated as a server
// error.
var (
	// ErrNoConnectivity means no HTTP response was received at all.
	ErrNoConnectivity = errors.New("upstream: no connectivity")
	// ErrRateLimited is returned by a single attempt that hit HTTP 429.
	ErrRateLimited = errors.New("upstream: rate limited")
	// ErrServer covers any non-2xx response. A 429 that survives all retries
	// carries both ErrServer and ErrRateLimited in its chain.
	ErrServer = errors.New("upstream: server error")
	// ErrUnauthorized signals a rejected bearer token.
	ErrUnauthorized = errors.New("upstream: unauthorized")
	// ErrInvalidShape marks a payload that did not match the expected schema.
	// Callers degrade to an empty data set instead of propagating it.
	ErrInvalidShape = errors.New("upstream: invalid response shape")
)
