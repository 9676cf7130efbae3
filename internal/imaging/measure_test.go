package imaging

import (
	"math"
	"testing"
)

func TestPoint2D_OffsetAndDistance(t *testing.T) {
	p := Point2D{X: 453, Y: 304}
	q := Point2D{X: 450, Y: 300}

	dx, dy := p.Offset(q)
	if dx != 3 || dy != 4 {
		t.Errorf("Offset: got (%v,%v), want (3,4)", dx, dy)
	}
	if d := p.Distance(q); d != 5 {
		t.Errorf("Distance: got %v, want 5", d)
	}
	if d := q.Distance(p); d != 5 {
		t.Errorf("Distance is not symmetric: %v", d)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   float64
	}{
		{1.23456, 2, 1.23},
		{2.5, 0, 3},
		{-0.04, 1, 0},
		{99.999, 2, 100},
		{1.5, 4, 1.5},
		{math.NaN(), 2, 0},
		{math.Inf(1), 2, 0},
		{math.Inf(-1), 2, 0},
	}

	for _, tt := range tests {
		got := Round(tt.v, tt.places)
		if got != tt.want {
			t.Errorf("Round(%v, %d): got %v, want %v", tt.v, tt.places, got, tt.want)
		}
	}
}

func TestRound_NoNegativeZero(t *testing.T) {
	got := Round(-0.0001, 2)
	if math.Signbit(got) {
		t.Errorf("Round produced negative zero")
	}
}
