package gait

import (
	"time"

	"github.com/hexctl/hexapod/kinematics"
	"github.com/pkg/errors"
)

// Diagonal pairs swing in turn, so four feet are always on the ground.
var bipedalGroups = []group{
	{kinematics.FrontLeft, kinematics.MidRight},
	{kinematics.FrontRight, kinematics.RearLeft},
	{kinematics.MidLeft, kinematics.RearRight},
}

func DefaultBipedalConfig() Config {
	return Config{
		StepLength:     4,
		LiftHeight:     4,
		SwingDuration:  50 * time.Millisecond,
		StanceDuration: 20 * time.Millisecond,
		SwingPoints:    20,
		StancePoints:   10,
		StanceHeight:   -24,
		Pause:          20 * time.Millisecond,
	}
}

// Bipedal sits between Wave and Tripod in both speed and stability.
type Bipedal struct {
	engine
}

func NewBipedal(rig *Rig, cfg Config) *Bipedal {
	return &Bipedal{
		engine: engine{
			kind: KindBipedal,
			rig:  rig,
			cfg:  cfg,
		},
	}
}

// RunCycle swings each pair once. While a pair swings the other four legs
// hold; then all six slide back by a third of the step. Only straight
// directions are supported.
func (b *Bipedal) RunCycle(d Direction) error {
	if d.Turning() {
		return errors.Wrapf(ErrUnsupportedDirection, "bipedal can't %s", d)
	}

	u, err := b.begin(d)
	if err != nil {
		return err
	}

	start := b.rig.clock.Now()
	b.rig.sequential(b.kind, b.cfg, bipedalGroups, u, &b.feet)

	off := b.drift(b.rig.base(b.cfg.StanceHeight))
	log.Infof("bipedal: %s cycle done in %v (%d legs off base)", d, b.rig.clock.Now().Sub(start), len(off))
	return nil
}

// RunWalk runs the given number of cycles, stopping at the first failure.
func (b *Bipedal) RunWalk(d Direction, cycles int) error {
	return b.walk(b.RunCycle, d, cycles)
}
