package engine

import "math"

// CollisionRadius returns the radius of the circle approximating the vehicle
// body: half the footprint diagonal minus a small slack so the circle hugs
// the body rather than its corners.
func (v VehicleState) CollisionRadius() float64 {
	return math.Hypot(v.Width, v.Height)/2 - collisionSlack
}

// CircleIntersects reports whether a circle centered at (cx, cy) overlaps the
// obstacle. Uses closest-point-on-rectangle distance. Exact tangency
// (distance² == radius²) does not count as an intersection.
func (o Obstacle) CircleIntersects(cx, cy, radius float64) bool {
	closestX := Clamp(cx, o.X, o.X+o.Width)
	closestY := Clamp(cy, o.Y, o.Y+o.Height)
	dx := cx - closestX
	dy := cy - closestY
	return dx*dx+dy*dy < radius*radius
}

// FirstObstacleHit tests the circle against every obstacle and returns the
// index of the first intersecting one, or NoObstacle. Every obstacle is
// evaluated the same way, so ordering changes only which hit is reported,
// never whether a hit occurs.
func FirstObstacleHit(cx, cy, radius float64, obstacles []Obstacle) int {
	for i, o := range obstacles {
		if o.CircleIntersects(cx, cy, radius) {
			return i
		}
	}
	return NoObstacle
}

// Contains reports whether the point (x, y) falls inside the oriented spot
// rectangle. The point is transformed into the spot's local frame by undoing
// the spot rotation around its center.
func (s ParkingSpot) Contains(x, y float64) bool {
	dx := x - s.X
	dy := y - s.Y
	cos := math.Cos(-s.Angle)
	sin := math.Sin(-s.Angle)
	localX := dx*cos - dy*sin
	localY := dx*sin + dy*cos
	return math.Abs(localX) <= s.Width/2 && math.Abs(localY) <= s.Height/2
}
