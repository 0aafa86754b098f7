package tiles

import (
	"testing"
)

// scriptedGenerator returns a Generator whose uniform source pops the
// given values in order, then repeats the final value forever.
func scriptedGenerator(values ...float64) *Generator {
	i := 0
	return &Generator{uniform: func() float64 {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}}
}

func TestGenerateBounds(t *testing.T) {
	g := New()

	layout := g.Generate(Params{Width: 800, Height: 600, Count: 50})

	if len(layout.X) != 50 || len(layout.Y) != 50 {
		t.Fatalf("lengths = %d/%d, want 50/50", len(layout.X), len(layout.Y))
	}
	for i := range layout.X {
		if layout.X[i] < 0 || layout.X[i] >= 800 {
			t.Errorf("x[%d] = %v, want within [0, 800)", i, layout.X[i])
		}
		if layout.Y[i] < 0 || layout.Y[i] >= 600 {
			t.Errorf("y[%d] = %v, want within [0, 600)", i, layout.Y[i])
		}
	}
}

func TestGenerateCountEdgeCases(t *testing.T) {
	g := New()

	tests := []struct {
		name  string
		count int
	}{
		{"zero count", 0},
		{"negative count", -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := g.Generate(Params{Width: 100, Height: 100, Count: tt.count})
			if len(layout.X) != 0 || len(layout.Y) != 0 {
				t.Errorf("lengths = %d/%d, want 0/0", len(layout.X), len(layout.Y))
			}
			if layout.X == nil || layout.Y == nil {
				t.Error("coordinate slices must be non-nil for JSON encoding")
			}
		})
	}
}

func TestGenerateRejectsOverlapWithinWindow(t *testing.T) {
	// Unit square so the scripted uniform value is the coordinate.
	// Second tile first lands on the first tile, is rejected, then
	// lands clear of it.
	g := scriptedGenerator(
		0.5, 0.5, // tile 0
		0.5, 0.5, // tile 1, attempt 1: distance 0, rejected
		0.9, 0.9, // tile 1, attempt 2: accepted
	)

	layout := g.Generate(Params{Width: 1, Height: 1, Count: 2, Window: 6, Radius: 0.3})

	want := Layout{X: []float64{0.5, 0.9}, Y: []float64{0.5, 0.9}}
	for i := range want.X {
		if layout.X[i] != want.X[i] || layout.Y[i] != want.Y[i] {
			t.Errorf("tile %d = (%v, %v), want (%v, %v)",
				i, layout.X[i], layout.Y[i], want.X[i], want.Y[i])
		}
	}
}

func TestGenerateWindowZeroDisablesChecks(t *testing.T) {
	// Same script as the rejection test, but window 0 looks back at
	// nothing, so the overlapping candidate is accepted as-is.
	g := scriptedGenerator(
		0.5, 0.5,
		0.5, 0.5,
	)

	layout := g.Generate(Params{Width: 1, Height: 1, Count: 2, Window: 0, Radius: 0.3})

	if layout.X[1] != 0.5 || layout.Y[1] != 0.5 {
		t.Errorf("tile 1 = (%v, %v), want (0.5, 0.5) accepted without checks",
			layout.X[1], layout.Y[1])
	}
}

func TestGenerateWindowLimitsLookback(t *testing.T) {
	// Three tiles on a line, window 1. Tile 2 overlaps tile 0 but only
	// tile 1 is within its window, so the candidate is accepted.
	g := scriptedGenerator(
		0.1, 0.1, // tile 0
		0.5, 0.5, // tile 1 (clear of tile 0)
		0.1, 0.1, // tile 2: overlaps tile 0, outside window
	)

	layout := g.Generate(Params{Width: 1, Height: 1, Count: 3, Window: 1, Radius: 0.2})

	if layout.X[2] != 0.1 || layout.Y[2] != 0.1 {
		t.Errorf("tile 2 = (%v, %v), want (0.1, 0.1)", layout.X[2], layout.Y[2])
	}
}

func TestGenerateFallbackOnImpossibleRadius(t *testing.T) {
	// Every candidate is identical, so once the first tile is placed no
	// later candidate can satisfy the radius. The fallback must still
	// fill the layout.
	g := scriptedGenerator(0.5)

	layout := g.Generate(Params{Width: 10, Height: 10, Count: 4, Window: 6, Radius: 1000})

	if len(layout.X) != 4 || len(layout.Y) != 4 {
		t.Fatalf("lengths = %d/%d, want 4/4", len(layout.X), len(layout.Y))
	}
	for i := range layout.X {
		if layout.X[i] != 5.0 || layout.Y[i] != 5.0 {
			t.Errorf("tile %d = (%v, %v), want (5, 5)", i, layout.X[i], layout.Y[i])
		}
	}
}

func TestGenerateRadiusZeroSkipsConstraint(t *testing.T) {
	g := scriptedGenerator(0.5)

	layout := g.Generate(Params{Width: 1, Height: 1, Count: 3, Window: 6, Radius: 0})

	// All tiles identical and accepted on the first attempt.
	for i := range layout.X {
		if layout.X[i] != 0.5 || layout.Y[i] != 0.5 {
			t.Errorf("tile %d = (%v, %v), want (0.5, 0.5)", i, layout.X[i], layout.Y[i])
		}
	}
}

func TestOverlapsWindowDistance(t *testing.T) {
	layout := Layout{X: []float64{0}, Y: []float64{0}}

	tests := []struct {
		name   string
		x, y   float64
		radius float64
		want   bool
	}{
		{"well clear", 10, 10, 5, false},
		{"inside radius", 1, 1, 5, true},
		{"exactly at radius", 3, 4, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overlapsWindow(tt.x, tt.y, layout, 1, 6, tt.radius)
			if got != tt.want {
				t.Errorf("overlapsWindow(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func BenchmarkGenerate(b *testing.B) {
	g := New()
	p := Params{Width: 1920, Height: 1080, Count: 100, Window: 6, Radius: 40}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = g.Generate(p)
	}
}
