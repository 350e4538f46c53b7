package geo

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestPointDistance(t *testing.T) {
	a := Pt(0, 0)
	b := Pt(3, 4)
	if !approxEqual(a.Distance(b), 5.0, tolerance) {
		t.Errorf("expected distance 5.0, got %f", a.Distance(b))
	}
}

func TestPointAddSubScale(t *testing.T) {
	p := Pt(1, 2)
	q := Pt(3, -1)

	sum := p.Add(q)
	if sum.X != 4 || sum.Y != 1 {
		t.Errorf("Add = %v, want {4 1}", sum)
	}

	diff := q.Sub(p)
	if diff.X != 2 || diff.Y != -3 {
		t.Errorf("Sub = %v, want {2 -3}", diff)
	}

	scaled := p.Scale(2)
	if scaled.X != 2 || scaled.Y != 4 {
		t.Errorf("Scale = %v, want {2 4}", scaled)
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	z := Origin.Normalize()
	if z.X != 0 || z.Y != 0 {
		t.Errorf("Normalize of zero vector = %v, want origin", z)
	}
}

func TestNormalizeUnitLength(t *testing.T) {
	n := Pt(3, 4).Normalize()
	if !approxEqual(n.Length(), 1.0, tolerance) {
		t.Errorf("normalized length = %f, want 1.0", n.Length())
	}
}

func TestMidPoint(t *testing.T) {
	m := MidPoint(Pt(0, 0), Pt(10, 6))
	if m.X != 5 || m.Y != 3 {
		t.Errorf("MidPoint = %v, want {5 3}", m)
	}
}

func TestPolylineLength(t *testing.T) {
	// L-shaped route: 30 m east then 40 m north.
	pts := []Point2D{Pt(0, 0), Pt(30, 0), Pt(30, 40)}
	if got := PolylineLength(pts); !approxEqual(got, 70.0, tolerance) {
		t.Errorf("PolylineLength = %f, want 70.0", got)
	}
}

func TestPolylineLengthDegenerate(t *testing.T) {
	if got := PolylineLength(nil); got != 0 {
		t.Errorf("PolylineLength(nil) = %f, want 0", got)
	}
	if got := PolylineLength([]Point2D{Pt(1, 1)}); got != 0 {
		t.Errorf("PolylineLength(single point) = %f, want 0", got)
	}
}

func TestPolylineFromPairs(t *testing.T) {
	pairs := [][2]float64{{0, 0}, {3, 4}}
	pts := PolylineFromPairs(pairs)
	if len(pts) != 2 {
		t.Fatalf("expected 2 points, got %d", len(pts))
	}
	if !approxEqual(PolylineLength(pts), 5.0, tolerance) {
		t.Errorf("length through pairs = %f, want 5.0", PolylineLength(pts))
	}
}
