package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// PointInPolygon tests if a point is inside a polygon using ray casting.
// Points exactly on the boundary may report either way; use
// PointInOrOnPolygon when the boundary must count as inside.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// PointInOrOnPolygon reports whether p lies inside the polygon ring or on
// one of its edges.
func PointInOrOnPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) == 0 {
		return false
	}
	if PointInPolygon(p, polygon) {
		return true
	}
	for _, e := range edges(polygon) {
		if PointSegmentDistance(p, e[0], e[1]) == 0 {
			return true
		}
	}
	return false
}

// PointSegmentDistance returns the distance from p to the closest point of
// the segment a-b. A zero-length segment is treated as the point a.
func PointSegmentDistance(p, a, b Point2D) float64 {
	ab := r2.Sub(b.Vec(), a.Vec())
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return p.Distance(a)
	}

	t := r2.Dot(r2.Sub(p.Vec(), a.Vec()), ab) / l2
	t = math.Max(0, math.Min(1, t))

	proj := r2.Add(a.Vec(), r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p.Vec(), proj))
}

// SegmentsIntersect reports whether the closed segments p1-p2 and q1-q2
// share at least one point. Degenerate (zero-length) segments are allowed.
func SegmentsIntersect(p1, p2, q1, q2 Point2D) bool {
	d1 := crossProduct(q1, q2, p1)
	d2 := crossProduct(q1, q2, p2)
	d3 := crossProduct(p1, p2, q1)
	d4 := crossProduct(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear and touching cases
	if d1 == 0 && onSegment(q1, q2, p1) {
		return true
	}
	if d2 == 0 && onSegment(q1, q2, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, q2) {
		return true
	}
	return false
}

// SegmentSegmentDistance returns the minimum distance between the segments
// p1-p2 and q1-q2, which is zero if they cross or touch.
func SegmentSegmentDistance(p1, p2, q1, q2 Point2D) float64 {
	if SegmentsIntersect(p1, p2, q1, q2) {
		return 0
	}
	return math.Min(
		math.Min(PointSegmentDistance(p1, q1, q2), PointSegmentDistance(p2, q1, q2)),
		math.Min(PointSegmentDistance(q1, p1, p2), PointSegmentDistance(q2, p1, p2)),
	)
}

// CoreDistance returns the distance between two point sets interpreted by
// their length: one vertex is a point, two a segment, three or more a closed
// polygon ring including its interior. Overlapping or touching shapes return
// zero. An empty set has no extent and is infinitely far from everything.
func CoreDistance(a, b []Point2D) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}

	if len(a) >= 3 {
		for _, p := range b {
			if PointInPolygon(p, a) {
				return 0
			}
		}
	}
	if len(b) >= 3 {
		for _, p := range a {
			if PointInPolygon(p, b) {
				return 0
			}
		}
	}

	best := math.Inf(1)
	eb := edges(b)
	for _, ea := range edges(a) {
		for _, e := range eb {
			d := SegmentSegmentDistance(ea[0], ea[1], e[0], e[1])
			if d == 0 {
				return 0
			}
			if d < best {
				best = d
			}
		}
	}
	return best
}

// edges returns the boundary segments of a point set as used by CoreDistance.
func edges(pts []Point2D) [][2]Point2D {
	switch len(pts) {
	case 0:
		return nil
	case 1:
		return [][2]Point2D{{pts[0], pts[0]}}
	case 2:
		return [][2]Point2D{{pts[0], pts[1]}}
	}
	out := make([][2]Point2D, len(pts))
	for i := range pts {
		out[i] = [2]Point2D{pts[i], pts[(i+1)%len(pts)]}
	}
	return out
}

// onSegment reports whether p, known to be collinear with a-b, lies within
// the segment's extent.
func onSegment(a, b, p Point2D) bool {
	return p.X >= math.Min(a.X, b.X) && p.X <= math.Max(a.X, b.X) &&
		p.Y >= math.Min(a.Y, b.Y) && p.Y <= math.Max(a.Y, b.Y)
}

// crossProduct computes the cross product of vectors OA and OB.
func crossProduct(o, a, b Point2D) float64 {
	return r2.Cross(r2.Sub(a.Vec(), o.Vec()), r2.Sub(b.Vec(), o.Vec()))
}
