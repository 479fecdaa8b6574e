package gait

import (
	"time"

	"github.com/hexctl/hexapod/kinematics"
	"github.com/hexctl/hexapod/math3d"
	"github.com/sirupsen/logrus"
)

// Solver converts foot positions to joint angles.
type Solver interface {
	Solve(id kinematics.LegID, p math3d.Vector3) (kinematics.JointAngles, error)
	Base(id kinematics.LegID) math3d.Vector3
}

// Actuator sends joint angles to the servos of a leg. Available is false when
// there is no hardware to send them to at all.
type Actuator interface {
	Available() bool
	SetLeg(id kinematics.LegID, q kinematics.JointAngles) error
}

// Clock paces samples. It is satisfied by clock.Clock.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type Phase string

const (
	PhaseSwing Phase = "swing"
	PhaseShift Phase = "shift"
	PhaseStand Phase = "stand"
	PhaseGlide Phase = "glide"
)

// Sample is one commanded posture, as sent to the servos.
type Sample struct {
	Gait  Kind
	Phase Phase

	// Index of the swinging group within the cycle.
	Group int

	// Legs in the air, and legs on the ground. Together they are all six.
	Swing  []kinematics.LegID
	Stance []kinematics.LegID

	Index  int
	Points int
	Feet   Feet

	// Legs skipped because they couldn't reach, or whose servos failed.
	Misses int
	Faults int
}

// Rig is the hardware shared by every gait: the solver, the servos, and the
// clock used to pace them.
type Rig struct {
	solver Solver
	act    Actuator
	clock  Clock

	// OnSample, if set, is called with every sample after it is sent.
	OnSample func(Sample)
}

func NewRig(s Solver, a Actuator, c Clock) *Rig {
	return &Rig{
		solver: s,
		act:    a,
		clock:  c,
	}
}

func (r *Rig) ready() error {
	if r.act == nil || !r.act.Available() {
		return ErrNoActuator
	}
	return nil
}

// Posture returns the standing position of every foot at the given height.
func (r *Rig) Posture(z float64) Feet {
	return r.base(z)
}

func (r *Rig) base(z float64) Feet {
	var f Feet
	for _, id := range kinematics.AllLegs {
		f[id.Index()] = r.solver.Base(id).WithZ(z)
	}
	return f
}

// send solves and actuates every leg of the sample, then waits for pace.
// Legs which can't be solved or written are logged and skipped, leaving their
// servos where they were.
func (r *Rig) send(s Sample, pace time.Duration) {
	for _, id := range kinematics.AllLegs {
		p := s.Feet[id.Index()]

		q, err := r.solver.Solve(id, p)
		if err != nil {
			log.WithFields(logrus.Fields{
				"leg":   id,
				"phase": s.Phase,
				"i":     s.Index,
			}).Warnf("skipping leg: %v", err)
			s.Misses++
			continue
		}

		if err := r.act.SetLeg(id, q); err != nil {
			log.WithFields(logrus.Fields{
				"leg":   id,
				"phase": s.Phase,
				"i":     s.Index,
			}).Warnf("write failed: %v", err)
			s.Faults++
		}
	}

	if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		log.Debugf("%s %s %d/%d feet=%v", s.Gait, s.Phase, s.Index, s.Points, s.Feet)
	}

	if r.OnSample != nil {
		r.OnSample(s)
	}

	if pace > 0 {
		r.clock.Sleep(pace)
	}
}

// Place sends every foot straight to the given position, in a single sample.
func (r *Rig) Place(kind Kind, feet Feet) error {
	if err := r.ready(); err != nil {
		return err
	}

	r.send(Sample{
		Gait:   kind,
		Phase:  PhaseStand,
		Stance: kinematics.AllLegs[:],
		Points: 0,
		Feet:   feet,
	}, 0)

	return nil
}

// Glide moves every foot along a straight line from one posture to another,
// without lifting, over the given number of samples.
func (r *Rig) Glide(kind Kind, from, to Feet, points int, d time.Duration) error {
	if err := r.ready(); err != nil {
		return err
	}
	if points <= 0 {
		return r.Place(kind, to)
	}

	pace := d / time.Duration(points)
	for i := 0; i <= points; i++ {
		f := frame(i, points)
		s := Sample{
			Gait:   kind,
			Phase:  PhaseGlide,
			Stance: kinematics.AllLegs[:],
			Index:  i,
			Points: points,
		}
		for j := range s.Feet {
			s.Feet[j] = from[j].Lerp(to[j], f.XY)
		}
		r.send(s, pace)
	}

	return nil
}

// target is where a leg of group k (of n) lands: ahead of its base by the
// share of the step which the remaining stance shifts of the cycle will carry
// it back by. The first group lands a full step ahead.
func target(base, u math3d.Vector3, step float64, k, n int) math3d.Vector3 {
	return base.Add(u.MultiplyByScalar(step * float64(n-k) / float64(n)))
}

// sequential runs one cycle in which the groups swing one after another while
// every other leg holds still, and after each swing all six legs shift back
// by one share of the step.
func (r *Rig) sequential(kind Kind, cfg Config, groups []group, u Feet, feet *Feet) {
	n := len(groups)
	shift := cfg.StepLength / float64(n)
	base := r.base(cfg.StanceHeight)

	swingPace := cfg.SwingDuration / time.Duration(cfg.SwingPoints)
	shiftPace := cfg.StanceDuration / time.Duration(cfg.StancePoints)

	for k, g := range groups {
		log.Infof("%s: group %d %v swing", kind, k+1, g)

		start := *feet
		end := start
		for _, id := range g {
			i := id.Index()
			end[i] = target(base[i], u[i], cfg.StepLength, k, n)
		}

		rest := g.rest()
		for i := 0; i <= cfg.SwingPoints; i++ {
			f := frame(i, cfg.SwingPoints)
			s := Sample{
				Gait:   kind,
				Phase:  PhaseSwing,
				Group:  k,
				Swing:  g,
				Stance: rest,
				Index:  i,
				Points: cfg.SwingPoints,
				Feet:   start,
			}
			for _, id := range g {
				j := id.Index()
				s.Feet[j] = start[j].Lerp(end[j], f.XY).WithZ(cfg.StanceHeight + f.Z*cfg.LiftHeight)
			}
			r.send(s, swingPace)
		}
		*feet = end

		log.Infof("%s: group %d shift", kind, k+1)

		start = *feet
		for j := range end {
			end[j] = start[j].Add(u[j].MultiplyByScalar(-shift)).WithZ(cfg.StanceHeight)
		}

		for i := 0; i <= cfg.StancePoints; i++ {
			f := frame(i, cfg.StancePoints)
			s := Sample{
				Gait:   kind,
				Phase:  PhaseShift,
				Group:  k,
				Stance: kinematics.AllLegs[:],
				Index:  i,
				Points: cfg.StancePoints,
			}
			for j := range s.Feet {
				s.Feet[j] = start[j].Lerp(end[j], f.XY)
			}
			r.send(s, shiftPace)
		}
		*feet = end
	}
}

// concurrent runs one cycle in which each group swings while every other leg
// shifts back by one share of the step, in the same samples.
func (r *Rig) concurrent(kind Kind, cfg Config, groups []group, u Feet, feet *Feet) {
	n := len(groups)
	shift := cfg.StepLength / float64(n)
	base := r.base(cfg.StanceHeight)

	points := cfg.SwingPoints
	if cfg.StancePoints > points {
		points = cfg.StancePoints
	}
	window := cfg.SwingDuration
	if cfg.StanceDuration > window {
		window = cfg.StanceDuration
	}
	pace := window / time.Duration(points)

	for k, g := range groups {
		log.Infof("%s: group %d %v swing", kind, k+1, g)

		start := *feet
		end := start
		for _, id := range kinematics.AllLegs {
			i := id.Index()
			if g.has(id) {
				end[i] = target(base[i], u[i], cfg.StepLength, k, n)
			} else {
				end[i] = start[i].Add(u[i].MultiplyByScalar(-shift)).WithZ(cfg.StanceHeight)
			}
		}

		rest := g.rest()
		for i := 0; i <= points; i++ {
			fs := frame(i, cfg.SwingPoints)
			fg := frame(i, cfg.StancePoints)
			s := Sample{
				Gait:   kind,
				Phase:  PhaseSwing,
				Group:  k,
				Swing:  g,
				Stance: rest,
				Index:  i,
				Points: points,
			}
			for _, id := range kinematics.AllLegs {
				j := id.Index()
				if g.has(id) {
					s.Feet[j] = start[j].Lerp(end[j], fs.XY).WithZ(cfg.StanceHeight + fs.Z*cfg.LiftHeight)
				} else {
					s.Feet[j] = start[j].Lerp(end[j], fg.XY)
				}
			}
			r.send(s, pace)
		}
		*feet = end
	}
}
