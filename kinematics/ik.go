package kinematics

import (
	"math"

	"github.com/hexctl/hexapod/math3d"
	"github.com/hexctl/hexapod/utils"
	"github.com/pkg/errors"
)

// ErrUnreachable is returned when the target lies outside the annulus that
// the thigh and shin can span.
var ErrUnreachable = errors.New("target out of reach")

// JointAngles are the hip, knee, and ankle angles of one leg, in radians.
type JointAngles struct {
	Hip   float64
	Knee  float64
	Ankle float64
}

// Degrees returns the three angles in degrees, in hip, knee, ankle order.
func (q JointAngles) Degrees() (float64, float64, float64) {
	return utils.Deg(q.Hip), utils.Deg(q.Knee), utils.Deg(q.Ankle)
}

// Solver converts foot positions to joint angles for the legs in its table.
// It holds no state between calls.
type Solver struct {
	Geometry Geometry
	Legs     Table
}

// NewSolver returns a solver for the given legs, with the default geometry.
func NewSolver(t Table) *Solver {
	return &Solver{
		Geometry: DefaultGeometry,
		Legs:     t,
	}
}

var defaultSolver = NewSolver(DefaultTable())

// Solve returns the joint angles which place the foot of the given leg at
// (x,y,z), using the default leg table.
func Solve(id LegID, x, y, z float64) (JointAngles, error) {
	return defaultSolver.Solve(id, math3d.Vector3{X: x, Y: y, Z: z})
}

// Base returns the standing position of the given leg.
func (s *Solver) Base(id LegID) math3d.Vector3 {
	return s.Legs.Base(id)
}

// planar is the target reduced to the plane of the leg: the heading of the
// plane, and the position of the foot within it relative to the knee pivot.
type planar struct {
	local   math3d.Vector3
	heading float64
	r       float64
	h       float64
	d       float64
}

func (s *Solver) reduce(leg LegConfig, p math3d.Vector3) planar {
	lx := p.X - leg.Origin.X
	ly := p.Y - leg.Origin.Y
	r := math.Hypot(lx, ly) - s.Geometry.Hip
	h := -p.Z

	return planar{
		local:   math3d.Vector3{X: lx, Y: ly, Z: p.Z},
		heading: math.Atan2(ly, lx),
		r:       r,
		h:       h,
		d:       math.Hypot(r, h),
	}
}

// reachable is written so that a NaN distance is out of reach.
func (g Geometry) reachable(d float64) bool {
	return d >= g.MinReach() && d <= g.MaxReach()
}

// Solve returns the joint angles which place the foot of the given leg at p.
// The returned error wraps ErrInvalidLeg or ErrUnreachable, and no angles are
// computed in either case.
func (s *Solver) Solve(id LegID, p math3d.Vector3) (JointAngles, error) {
	leg, err := s.Legs.Leg(id)
	if err != nil {
		return JointAngles{}, err
	}

	pl := s.reduce(leg, p)
	if !s.Geometry.reachable(pl.d) {
		return JointAngles{}, errors.Wrapf(ErrUnreachable, "%s to %v (D=%0.3f, want %0.1f..%0.1f)",
			id, p, pl.d, s.Geometry.MinReach(), s.Geometry.MaxReach())
	}

	hip := pl.heading
	if leg.InvertHip {
		hip = flip(hip)
	}

	l2 := s.Geometry.Thigh
	l3 := s.Geometry.Shin
	d := pl.d

	gamma := math.Acos(utils.Clamp((d*d-l2*l2-l3*l3)/(2*l2*l3), -1, 1))
	beta := math.Acos(utils.Clamp((d*d+l2*l2-l3*l3)/(2*l2*d), -1, 1))
	alpha := math.Atan2(pl.h, pl.r)

	knee := -(alpha - beta)

	var ankle float64
	if leg.InvertKnee {
		ankle = gamma - math.Pi
	} else {
		ankle = -(math.Pi - gamma)
	}

	q := JointAngles{Hip: hip, Knee: knee, Ankle: ankle}
	if math.IsNaN(q.Hip) || math.IsNaN(q.Knee) || math.IsNaN(q.Ankle) {
		log.Errorf("invalid %s angles for %v: r=%0.2f, h=%0.2f, d=%0.2f", id, p, pl.r, pl.h, pl.d)
		log.Errorf("alpha=%0.2f, beta=%0.2f, gamma=%0.2f", alpha, beta, gamma)
		return JointAngles{}, errors.Errorf("invalid %s angles for %v", id, p)
	}

	return q, nil
}

// flip turns a heading around by half a revolution, staying in (-pi, pi].
func flip(a float64) float64 {
	if a > 0 {
		return a - math.Pi
	}
	return a + math.Pi
}

// unflip is the inverse of flip.
func unflip(a float64) float64 {
	if a <= 0 {
		return a + math.Pi
	}
	return a - math.Pi
}

// Forward returns the foot position produced by the given joint angles.
func (s *Solver) Forward(id LegID, q JointAngles) (math3d.Vector3, error) {
	leg, err := s.Legs.Leg(id)
	if err != nil {
		return math3d.ZeroVector3, err
	}

	heading := q.Hip
	if leg.InvertHip {
		heading = unflip(heading)
	}

	// Both ankle conventions reduce to the same bend between thigh and shin.
	thigh := -q.Knee
	shin := thigh + q.Ankle + math.Pi

	r := s.Geometry.Thigh*math.Cos(thigh) + s.Geometry.Shin*math.Cos(shin)
	h := s.Geometry.Thigh*math.Sin(thigh) + s.Geometry.Shin*math.Sin(shin)
	radial := r + s.Geometry.Hip

	return math3d.Vector3{
		X: leg.Origin.X + radial*math.Cos(heading),
		Y: leg.Origin.Y + radial*math.Sin(heading),
		Z: -h,
	}, nil
}
