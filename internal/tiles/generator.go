package tiles

import (
	"math"
	"math/rand"
)

// maxAttempts bounds the rejection sampling per tile before the
// unconstrained fallback placement.
const maxAttempts = 500

// Params controls one generation run.
type Params struct {
	// Width and Height bound the coordinate space: x in [0, Width),
	// y in [0, Height).
	Width  float64
	Height float64

	// Count is how many tiles to place.
	Count int

	// Window is how many previously placed tiles each candidate is
	// checked against.
	Window int

	// Radius is the minimum distance to tiles within the window.
	// Zero or negative disables the constraint.
	Radius float64
}

// Layout holds generated coordinates, index-aligned across X and Y.
type Layout struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Generator produces tile layouts.
//
// Safe for concurrent use: the default uniform source is the
// goroutine-safe package-level generator of math/rand.
type Generator struct {
	uniform func() float64
}

// New creates a Generator backed by the shared random source.
func New() *Generator {
	return &Generator{uniform: rand.Float64}
}

// Generate places Count tiles and returns their coordinates. The
// slices are always Count long; tiles whose constraint could not be
// satisfied within the attempt limit are placed unconstrained.
func (g *Generator) Generate(p Params) Layout {
	count := p.Count
	if count < 0 {
		count = 0
	}

	layout := Layout{
		X: make([]float64, 0, count),
		Y: make([]float64, 0, count),
	}

	for i := 0; i < count; i++ {
		placed := false
		for attempt := 0; attempt < maxAttempts; attempt++ {
			x := g.uniform() * p.Width
			y := g.uniform() * p.Height
			if p.Radius <= 0 || !overlapsWindow(x, y, layout, i, p.Window, p.Radius) {
				layout.X = append(layout.X, x)
				layout.Y = append(layout.Y, y)
				placed = true
				break
			}
		}
		if !placed {
			layout.X = append(layout.X, g.uniform()*p.Width)
			layout.Y = append(layout.Y, g.uniform()*p.Height)
		}
	}
	return layout
}

// overlapsWindow reports whether (x, y) sits closer than radius to an
// already placed tile within window positions of index idx. Only
// indices below idx exist at call time, so the window reaches back.
func overlapsWindow(x, y float64, layout Layout, idx, window int, radius float64) bool {
	start := idx - window
	if start < 0 {
		start = 0
	}
	for i := start; i < len(layout.X); i++ {
		if math.Hypot(layout.X[i]-x, layout.Y[i]-y) < radius {
			return true
		}
	}
	return false
}
