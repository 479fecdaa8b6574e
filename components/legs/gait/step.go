package gait

import (
	"time"

	"github.com/hexctl/hexapod/kinematics"
	"github.com/hexctl/hexapod/math3d"
	"github.com/pkg/errors"
)

// minStepPoints is the fewest samples a single test step may be split into.
const minStepPoints = 10

// SingleStep swings one leg forward by a step and slides it back to its base,
// with the other five feet held at their bases. The swing takes 60% of the
// points, and the whole step takes the swing duration. Both ends of the step
// are checked for reach before anything moves.
func (r *Rig) SingleStep(kind Kind, id kinematics.LegID, cfg Config) error {
	if !id.Valid() {
		return errors.Wrapf(kinematics.ErrInvalidLeg, "%d", int(id))
	}
	if cfg.SwingPoints < minStepPoints {
		return errors.Wrapf(ErrInvalidConfig, "need at least %d points, got %d", minStepPoints, cfg.SwingPoints)
	}
	if err := r.ready(); err != nil {
		return err
	}

	u, err := stride(Forward, id)
	if err != nil {
		return err
	}

	i := id.Index()
	base := r.base(cfg.StanceHeight)
	ahead := base[i].Add(u.MultiplyByScalar(cfg.StepLength))

	for _, at := range []math3d.Vector3{base[i], ahead} {
		if _, err := r.solver.Solve(id, at); err != nil {
			return errors.Wrapf(err, "step %s", id)
		}
	}

	swingPoints := cfg.SwingPoints * 6 / 10
	stancePoints := cfg.SwingPoints - swingPoints
	pace := cfg.SwingDuration / time.Duration(cfg.SwingPoints)

	log.Infof("single step: %s %0.1fcm from %v to %v", id, base[i].Distance(ahead), base[i], ahead)

	swing := group{id}
	rest := swing.rest()

	for n := 0; n <= swingPoints; n++ {
		f := frame(n, swingPoints)
		s := Sample{
			Gait:   kind,
			Phase:  PhaseSwing,
			Swing:  swing,
			Stance: rest,
			Index:  n,
			Points: swingPoints,
			Feet:   base,
		}
		s.Feet[i] = base[i].Lerp(ahead, f.XY).WithZ(cfg.StanceHeight + f.Z*cfg.LiftHeight)
		r.send(s, pace)
	}

	for n := 0; n <= stancePoints; n++ {
		f := frame(n, stancePoints)
		s := Sample{
			Gait:   kind,
			Phase:  PhaseShift,
			Stance: kinematics.AllLegs[:],
			Index:  n,
			Points: stancePoints,
			Feet:   base,
		}
		s.Feet[i] = ahead.Lerp(base[i], f.XY)
		r.send(s, pace)
	}

	return nil
}
