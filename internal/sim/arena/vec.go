package arena

import "math"

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

func Dist(a, b Vec2) float64 { return a.Sub(b).Len() }

// forwardOf converts a yaw in degrees (0 = +X, counter-clockwise) into a
// unit direction vector.
func forwardOf(yawDeg float64) Vec2 {
	rad := yawDeg * math.Pi / 180
	return Vec2{X: math.Cos(rad), Y: math.Sin(rad)}
}

// withinCone reports whether target lies inside the cone of coneDeg total
// width centered on the observer's facing. A coincident position counts as
// inside (the actor is on top of the target).
func withinCone(from Vec2, yawDeg float64, target Vec2, coneDeg float64) bool {
	d := target.Sub(from)
	l := d.Len()
	if l == 0 {
		return true
	}
	f := forwardOf(yawDeg)
	dot := (f.X*d.X + f.Y*d.Y) / l
	limit := math.Cos(coneDeg / 2 * math.Pi / 180)
	return dot >= limit
}
