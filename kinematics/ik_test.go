package kinematics

import (
	"math"
	"testing"

	"github.com/hexctl/hexapod/math3d"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveUnreachable(t *testing.T) {
	_, err := Solve(MidLeft, 40, 0, -24)
	assert.True(t, errors.Is(err, ErrUnreachable), "got: %v", err)
}

func TestSolveInvalidLeg(t *testing.T) {
	for _, id := range []LegID{0, 7, -1} {
		_, err := Solve(id, 18, -15, -24)
		assert.True(t, errors.Is(err, ErrInvalidLeg), "leg %d: %v", id, err)
	}
}

func TestSolveBasePositions(t *testing.T) {
	tbl := DefaultTable()
	for _, id := range AllLegs {
		b := tbl.Base(id)
		_, err := Solve(id, b.X, b.Y, b.Z)
		assert.NoError(t, err, "leg %s", id)
	}
}

// The boundary of the reachable annulus is inclusive. A leg with its hip at
// the body center makes the distances exact.
func TestSolveReachBoundary(t *testing.T) {
	tbl := DefaultTable()
	tbl[MidLeft.Index()].Origin = math3d.ZeroVector3
	s := NewSolver(tbl)

	type eg struct {
		x  float64
		ok bool
	}

	examples := []eg{
		{5.5 + 28, true},
		{5.5 + 3, true},
		{5.5 + 28 + 1e-6, false},
		{5.5 + 3 - 1e-6, false},
		{5.5 + 15, true},
	}

	for _, x := range examples {
		_, err := s.Solve(MidLeft, math3d.Vector3{X: x.x})
		if x.ok {
			assert.NoError(t, err, "x=%v", x.x)
		} else {
			assert.True(t, errors.Is(err, ErrUnreachable), "x=%v: %v", x.x, err)
		}
	}
}

func TestSolveStraightLeg(t *testing.T) {
	tbl := DefaultTable()
	tbl[MidLeft.Index()].Origin = math3d.ZeroVector3
	s := NewSolver(tbl)

	q, err := s.Solve(MidLeft, math3d.Vector3{X: 33.5})
	require.NoError(t, err)
	assert.InDelta(t, 0, q.Hip, 1e-9)
	assert.InDelta(t, 0, q.Knee, 1e-9)
	assert.InDelta(t, -math.Pi, q.Ankle, 1e-9)
}

func TestRoundTrip(t *testing.T) {
	s := NewSolver(DefaultTable())
	n := 0

	for _, id := range AllLegs {
		base := s.Base(id)
		for dx := -8.0; dx <= 8; dx += 2 {
			for dy := -8.0; dy <= 8; dy += 2 {
				for _, z := range []float64{-30, -24, -18, -12, -6} {
					p := math3d.Vector3{X: base.X + dx, Y: base.Y + dy, Z: z}
					q, err := s.Solve(id, p)
					if errors.Is(err, ErrUnreachable) {
						continue
					}
					require.NoError(t, err)

					act, err := s.Forward(id, q)
					require.NoError(t, err)
					assert.InDelta(t, p.X, act.X, 1e-3, "%s %v", id, p)
					assert.InDelta(t, p.Y, act.Y, 1e-3, "%s %v", id, p)
					assert.InDelta(t, p.Z, act.Z, 1e-3, "%s %v", id, p)
					n++
				}
			}
		}
	}

	// Most of the grid is inside the annulus.
	assert.Greater(t, n, 500)
}

func TestMirrorSymmetry(t *testing.T) {
	tbl := DefaultTable()
	s := NewSolver(tbl)

	pairs := [][2]LegID{
		{FrontLeft, FrontRight},
		{MidLeft, MidRight},
		{RearLeft, RearRight},
	}

	type eg struct {
		dx, dy, z float64
	}

	examples := []eg{
		{11, -7, -24},
		{11, 7, -24},
		{14, 0, -20},
		{9, -3, -16},
	}

	for _, pair := range pairs {
		l := tbl[pair[0].Index()].Origin
		r := tbl[pair[1].Index()].Origin

		for _, x := range examples {
			ql, err := s.Solve(pair[0], math3d.Vector3{X: l.X + x.dx, Y: l.Y + x.dy, Z: x.z})
			require.NoError(t, err)
			qr, err := s.Solve(pair[1], math3d.Vector3{X: r.X - x.dx, Y: r.Y + x.dy, Z: x.z})
			require.NoError(t, err)

			assert.InDelta(t, math.Abs(ql.Hip), math.Abs(qr.Hip), 1e-9, "%v %v", pair, x)
			assert.InDelta(t, math.Abs(ql.Knee), math.Abs(qr.Knee), 1e-9, "%v %v", pair, x)
			assert.InDelta(t, math.Abs(ql.Ankle), math.Abs(qr.Ankle), 1e-9, "%v %v", pair, x)
		}
	}
}

func TestFlip(t *testing.T) {
	for _, a := range []float64{0, 0.3, -0.3, math.Pi, -math.Pi / 2, 3} {
		assert.InDelta(t, a, unflip(flip(a)), 1e-12, "%v", a)
	}
}

func TestLegID(t *testing.T) {
	assert.Equal(t, "FL", FrontLeft.String())
	assert.Equal(t, "RR", RearRight.String())
	assert.Equal(t, "leg(9)", LegID(9).String())
	assert.True(t, MidLeft.Left())
	assert.False(t, MidRight.Left())
	assert.Equal(t, 0, FrontLeft.Index())
}

func TestParseLegID(t *testing.T) {
	type eg struct {
		in  string
		exp LegID
	}

	for _, e := range []eg{
		{"FL", FrontLeft},
		{"mr", MidRight},
		{" rr ", RearRight},
		{"3", MidLeft},
	} {
		id, err := ParseLegID(e.in)
		require.NoError(t, err, e.in)
		assert.Equal(t, e.exp, id, e.in)
	}

	for _, s := range []string{"", "0", "7", "XX"} {
		_, err := ParseLegID(s)
		assert.True(t, errors.Is(err, ErrInvalidLeg), s)
	}
}
