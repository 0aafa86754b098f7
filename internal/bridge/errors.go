package bridge

import "errors"

// Sentinel errors for connection management.
var (
	// ErrAlreadyConnected indicates a connect attempt while a handle
	// exists. The caller must disconnect first.
	ErrAlreadyConnected = errors.New("bridge: already connected")

	// ErrNoPort indicates a connect attempt with no port named in the
	// request and no default_port configured.
	ErrNoPort = errors.New("bridge: no serial port specified")
)
