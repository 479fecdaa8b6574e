package gait

import (
	"time"

	"github.com/hexctl/hexapod/kinematics"
	"github.com/pkg/errors"
)

// Legs swing one at a time, front to back, left before right. Five feet are
// always on the ground.
var waveGroups = []group{
	{kinematics.FrontLeft},
	{kinematics.FrontRight},
	{kinematics.MidLeft},
	{kinematics.MidRight},
	{kinematics.RearLeft},
	{kinematics.RearRight},
}

func DefaultWaveConfig() Config {
	return Config{
		StepLength:     4,
		LiftHeight:     4,
		SwingDuration:  10 * time.Millisecond,
		StanceDuration: 10 * time.Millisecond,
		SwingPoints:    50,
		StancePoints:   20,
		StanceHeight:   -24,
		Pause:          20 * time.Millisecond,
	}
}

// Wave is the slowest and most stable gait.
type Wave struct {
	engine
}

func NewWave(rig *Rig, cfg Config) *Wave {
	return &Wave{
		engine: engine{
			kind: KindWave,
			rig:  rig,
			cfg:  cfg,
		},
	}
}

// RunCycle swings every leg once, in order. After each swing, all six feet
// slide back by a sixth of the step, so every foot ends the cycle at its base.
// Only straight directions are supported.
func (w *Wave) RunCycle(d Direction) error {
	if d.Turning() {
		return errors.Wrapf(ErrUnsupportedDirection, "wave can't %s", d)
	}

	u, err := w.begin(d)
	if err != nil {
		return err
	}

	start := w.rig.clock.Now()
	w.rig.sequential(w.kind, w.cfg, waveGroups, u, &w.feet)

	off := w.drift(w.rig.base(w.cfg.StanceHeight))
	log.Infof("wave: %s cycle done in %v (%d legs off base)", d, w.rig.clock.Now().Sub(start), len(off))
	return nil
}

// RunWalk runs the given number of cycles, stopping at the first failure.
func (w *Wave) RunWalk(d Direction, cycles int) error {
	return w.walk(w.RunCycle, d, cycles)
}
