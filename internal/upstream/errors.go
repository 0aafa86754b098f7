package upstream

import "errors"

var (
	// ErrMissingKey is returned when a service needs an API key and
	// neither the request nor the configuration provides one.
	ErrMissingKey = errors.New("api key not provided")

	// ErrUpstream wraps transport failures and non-2xx responses from
	// the remote service.
	ErrUpstream = errors.New("upstream request failed")
)
