package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrNotArchivable) {
//	    // snapshot events are in-memory only
//	}
var (
	// ErrNotArchivable is returned when an event kind other than press or
	// release is offered to the archive.
	ErrNotArchivable = errors.New("device: event is not archivable")
)
