package broadcast

import "errors"

// ErrClosed indicates a Subscribe call after the hub has shut down.
var ErrClosed = errors.New("broadcast: hub is closed")
