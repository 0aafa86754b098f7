package songs

import "errors"

// ErrNotFound is returned when a song id resolves to no audio file.
var ErrNotFound = errors.New("song not found")
