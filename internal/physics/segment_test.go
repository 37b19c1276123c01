package physics

import "testing"

func TestSegmentOverlapAndTouch(t *testing.T) {
	a := movableSegment{low: 0, high: 10}
	b := movableSegment{low: 10, high: 20}
	c := movableSegment{low: 11, high: 20}

	if !a.overlaps(b) {
		t.Fatalf("edge-sharing segments must overlap")
	}
	if !a.touching(b) {
		t.Fatalf("edge-sharing segments must touch")
	}
	if a.overlaps(c) {
		t.Fatalf("segments with a gap must not overlap")
	}
	if a.touching(c) {
		t.Fatalf("segments with a gap must not touch")
	}
}

func TestSegmentShouldImpact(t *testing.T) {
	cases := []struct {
		name string
		a, b movableSegment
		want bool
	}{
		{"closing from below", movableSegment{0, 10, 2}, movableSegment{20, 30, -1}, true},
		{"closing from above", movableSegment{20, 30, -1}, movableSegment{0, 10, 2}, true},
		{"parting", movableSegment{0, 10, -1}, movableSegment{20, 30, 1}, false},
		{"same velocity", movableSegment{0, 10, 3}, movableSegment{20, 30, 3}, false},
		{"chasing but slower", movableSegment{0, 10, 1}, movableSegment{20, 30, 2}, false},
	}
	for _, tc := range cases {
		if got := tc.a.shouldImpact(tc.b); got != tc.want {
			t.Errorf("%s: shouldImpact = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSegmentTimeOfImpact(t *testing.T) {
	a := movableSegment{low: 0, high: 10, speed: 2}
	b := movableSegment{low: 20, high: 30, speed: -2}

	if got := a.timeOfImpact(b); got != 2.5 {
		t.Fatalf("timeOfImpact = %g, want 2.5", got)
	}
	if got := b.timeOfImpact(a); got != 2.5 {
		t.Fatalf("reversed timeOfImpact = %g, want 2.5", got)
	}

	same := movableSegment{low: 0, high: 10, speed: 1}
	other := movableSegment{low: 20, high: 30, speed: 1}
	if got := same.timeOfImpact(other); got != -1 {
		t.Fatalf("equal velocities must yield -1, got %g", got)
	}
}

func TestSegmentTimeOfSeparation(t *testing.T) {
	a := movableSegment{low: 0, high: 10, speed: 4}
	b := movableSegment{low: 5, high: 15, speed: 0}

	// a's trailing edge clears b's far edge once it travels 15 units
	// relative to b.
	if got := a.timeOfSeparation(b); got != 3.75 {
		t.Fatalf("timeOfSeparation = %g, want 3.75", got)
	}
	if got := b.timeOfSeparation(a); got != 3.75 {
		t.Fatalf("reversed timeOfSeparation = %g, want 3.75", got)
	}
}
