package gait

// SmoothStep eases t from 0 to 1 with zero velocity at both ends. The input is
// clamped to [0,1].
func SmoothStep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// Lerp blends from a (t=0) to b (t=1). The factor isn't clamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Lift is the height of a swinging foot above the ground at progress t: a
// parabola which peaks at maxLift when t=0.5 and is zero at both ends.
func Lift(maxLift, t float64) float64 {
	return 4 * maxLift * t * (1 - t)
}

// Frame is the shape of a trajectory at one sample: how far along the ground
// the foot has moved (0..1, eased), and how high it is raised (0..1).
type Frame struct {
	XY float64
	Z  float64
}

// frame returns the frame for sample i of n. Samples past n hold the final
// frame.
func frame(i, n int) Frame {
	if i >= n {
		return Frame{XY: 1, Z: 0}
	}

	t := float64(i) / float64(n)
	return Frame{
		XY: SmoothStep(t),
		Z:  Lift(1, t),
	}
}
