package math3d

import (
	"fmt"
	"math"
)

// Vector3 is a point in the robot frame, in centimeters. X points towards the
// left side of the body, Y towards the rear, and Z up, so a foot on the ground
// has a negative Z.
type Vector3 struct {
	X float64
	Y float64
	Z float64
}

var (
	ZeroVector3 = Vector3{}
)

func (v Vector3) String() string {
	return fmt.Sprintf("&Vec3{x=%0.2f y=%0.2f z=%0.2f}", v.X, v.Y, v.Z)
}

// Add adds two vectors, and returns the result.
func (v Vector3) Add(vv Vector3) Vector3 {
	return Vector3{
		(v.X + vv.X),
		(v.Y + vv.Y),
		(v.Z + vv.Z),
	}
}

// Subtract returns the vector from vv to v.
func (v Vector3) Subtract(vv Vector3) Vector3 {
	return Vector3{
		(v.X - vv.X),
		(v.Y - vv.Y),
		(v.Z - vv.Z),
	}
}

func (v Vector3) MultiplyByScalar(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// Distance calculates and returns the distance between this vector and another,
// as a float64.
func (v Vector3) Distance(vv Vector3) float64 {
	dx := v.X - vv.X
	dy := v.Y - vv.Y
	dz := v.Z - vv.Z
	return math.Sqrt((dx * dx) + (dy * dy) + (dz * dz))
}

// PlanarDistance is the distance between the projections of the two vectors
// onto the ground plane.
func (v Vector3) PlanarDistance(vv Vector3) float64 {
	return math.Hypot(v.X-vv.X, v.Y-vv.Y)
}

// WithZ returns a copy of the vector at the given height.
func (v Vector3) WithZ(z float64) Vector3 {
	v.Z = z
	return v
}

// Lerp blends linearly from v (at t=0) to vv (at t=1). The factor isn't
// clamped.
func (v Vector3) Lerp(vv Vector3, t float64) Vector3 {
	return Vector3{
		v.X + (vv.X-v.X)*t,
		v.Y + (vv.Y-v.Y)*t,
		v.Z + (vv.Z-v.Z)*t,
	}
}
