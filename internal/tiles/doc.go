// Package tiles generates random screen coordinates for tile sprites.
//
// Tiles are placed one at a time. A candidate position is rejected
// while it sits closer than the configured radius to any already placed
// tile within the look-back window; after enough failed attempts the
// tile is placed unconstrained so impossible parameters still yield a
// full layout.
package tiles
