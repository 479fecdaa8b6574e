package gait

import (
	"time"

	"github.com/hexctl/hexapod/kinematics"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// closureTolerance is how far (cm) a foot may drift from its base over a
// cycle before it is reported.
const closureTolerance = 1e-6

// engine is the state shared by every gait: its config and the tracked
// position of every foot, which persists from one cycle to the next.
type engine struct {
	kind Kind
	rig  *Rig
	cfg  Config

	feet     Feet
	tracking bool
}

func (e *engine) Kind() Kind {
	return e.kind
}

// Config returns a copy of the current config.
func (e *engine) Config() Config {
	return e.cfg
}

// SetConfig replaces the tuning used from the next cycle on. The values aren't
// validated here; a cycle with no points fails.
func (e *engine) SetConfig(stepLength, liftHeight float64, swing, stance time.Duration, swingPoints, stancePoints int) {
	e.cfg.StepLength = stepLength
	e.cfg.LiftHeight = liftHeight
	e.cfg.SwingDuration = swing
	e.cfg.StanceDuration = stance
	e.cfg.SwingPoints = swingPoints
	e.cfg.StancePoints = stancePoints
	log.Infof("%s config: %v", e.kind, e.cfg)
}

// Feet returns the tracked position of every foot. Before the first cycle or
// stand, every foot is at its base.
func (e *engine) Feet() Feet {
	if !e.tracking {
		return e.rig.base(e.cfg.StanceHeight)
	}
	return e.feet
}

// Stand puts every foot at its base position and forgets the tracked state.
func (e *engine) Stand() error {
	feet := e.rig.base(e.cfg.StanceHeight)
	if err := e.rig.Place(e.kind, feet); err != nil {
		return errors.Wrapf(err, "%s stand", e.kind)
	}

	e.feet = feet
	e.tracking = true
	return nil
}

// begin checks that a cycle can run, and returns the stride of every leg.
func (e *engine) begin(d Direction) (Feet, error) {
	if err := e.cfg.Validate(); err != nil {
		return Feet{}, err
	}
	if err := e.rig.ready(); err != nil {
		return Feet{}, err
	}

	u, err := strides(d)
	if err != nil {
		return Feet{}, err
	}

	if !e.tracking {
		e.feet = e.rig.base(e.cfg.StanceHeight)
		e.tracking = true
	}

	return u, nil
}

// drift compares the tracked feet against the given posture, logging and
// returning the legs which are off by more than closureTolerance.
func (e *engine) drift(want Feet) []kinematics.LegID {
	var off []kinematics.LegID

	for _, id := range kinematics.AllLegs {
		i := id.Index()
		got := []float64{e.feet[i].X, e.feet[i].Y}
		exp := []float64{want[i].X, want[i].Y}

		if !floats.EqualApprox(got, exp, closureTolerance) {
			d := e.feet[i].Subtract(want[i])
			log.Warnf("%s: %s off by (%0.4f, %0.4f), %0.4fcm after cycle", e.kind, id, d.X, d.Y, e.feet[i].PlanarDistance(want[i]))
			off = append(off, id)
		}
	}

	return off
}

// walk runs cycle n times, pausing in between, and stops at the first error.
func (e *engine) walk(cycle func(Direction) error, d Direction, n int) error {
	log.Infof("%s: walking %s for %d cycles", e.kind, d, n)

	for i := 0; i < n; i++ {
		if i > 0 && e.cfg.Pause > 0 {
			e.rig.clock.Sleep(e.cfg.Pause)
		}

		if err := cycle(d); err != nil {
			return errors.Wrapf(err, "%s cycle %d/%d", e.kind, i+1, n)
		}
	}

	return nil
}
