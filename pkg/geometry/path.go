package geometry

import "math"

// BoundingBox computes the axis-aligned bounding box of a set of points.
func BoundingBox(points []Point2D) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Translate returns a copy of points shifted by (dx, dy).
func Translate(points []Point2D, dx, dy float64) []Point2D {
	out := make([]Point2D, len(points))
	for i, p := range points {
		out[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

// SegmentDistance returns the distance from p to the segment a-b.
func SegmentDistance(p, a, b Point2D) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Distance(Point2D{X: a.X + t*dx, Y: a.Y + t*dy})
}

// PolylineDistance returns the smallest distance from p to any segment of the polyline.
// A single point polyline degenerates to a point distance.
func PolylineDistance(p Point2D, points []Point2D) float64 {
	switch len(points) {
	case 0:
		return math.Inf(1)
	case 1:
		return p.Distance(points[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(points); i++ {
		best = math.Min(best, SegmentDistance(p, points[i-1], points[i]))
	}
	return best
}

// CirclePoints generates n evenly-spaced points around an ellipse inscribed in r.
func CirclePoints(r Rect, n int) []Point2D {
	c := r.Center()
	rx, ry := r.Width/2, r.Height/2
	points := make([]Point2D, n)
	for i := 0; i < n; i++ {
		angle := float64(i) * 2.0 * math.Pi / float64(n)
		points[i] = Point2D{
			X: c.X + rx*math.Cos(angle),
			Y: c.Y + ry*math.Sin(angle),
		}
	}
	return points
}
