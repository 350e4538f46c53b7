package geo

// PolylineLength returns the total length of the polyline through pts.
// Fewer than two points yield 0.
func PolylineLength(pts []Point2D) float64 {
	if len(pts) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i-1].Distance(pts[i])
	}
	return total
}

// PolylineFromPairs builds a polyline from [x, y] coordinate pairs, the
// form routed pipe geometry arrives in from GIS exports.
func PolylineFromPairs(pairs [][2]float64) []Point2D {
	pts := make([]Point2D, len(pairs))
	for i, pr := range pairs {
		pts[i] = Pt(pr[0], pr[1])
	}
	return pts
}
