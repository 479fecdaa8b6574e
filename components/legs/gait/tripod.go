package gait

import (
	"time"

	"github.com/hexctl/hexapod/kinematics"
	"github.com/pkg/errors"
)

// Two alternating tripods. Each is stable on its own.
var tripodGroups = []group{
	{kinematics.FrontLeft, kinematics.MidRight, kinematics.RearLeft},
	{kinematics.FrontRight, kinematics.MidLeft, kinematics.RearRight},
}

func DefaultTripodConfig() Config {
	return Config{
		StepLength:     6,
		LiftHeight:     4,
		SwingDuration:  5 * time.Millisecond,
		StanceDuration: 5 * time.Millisecond,
		SwingPoints:    120,
		StancePoints:   60,
		StanceHeight:   -24,
		Pause:          50 * time.Millisecond,
	}
}

// TripodPreset returns one of the named tunings: slow, normal, or fast.
func TripodPreset(name string) (Config, error) {
	c := DefaultTripodConfig()

	switch name {
	case "slow":
		c.StepLength = 4
		c.LiftHeight = 3
		c.SwingDuration = 10 * time.Millisecond
		c.StanceDuration = 10 * time.Millisecond
		c.SwingPoints = 80
		c.StancePoints = 40
	case "normal":
	case "fast":
		c.StepLength = 8
		c.LiftHeight = 3
		c.SwingDuration = 3 * time.Millisecond
		c.StanceDuration = 3 * time.Millisecond
		c.SwingPoints = 100
		c.StancePoints = 50
	default:
		return c, errors.Errorf("unknown tripod preset: %q", name)
	}

	return c, nil
}

// Tripod is the fastest gait, and the only one which can turn on the spot.
type Tripod struct {
	engine
}

func NewTripod(rig *Rig, cfg Config) *Tripod {
	return &Tripod{
		engine: engine{
			kind: KindTripod,
			rig:  rig,
			cfg:  cfg,
		},
	}
}

// RunCycle swings each tripod once, while the other one slides back by half
// the step in the same samples. From the standing posture, the first group
// lands a full step ahead of base; every cycle ends with all feet half a step
// ahead of base.
func (t *Tripod) RunCycle(d Direction) error {
	u, err := t.begin(d)
	if err != nil {
		return err
	}

	start := t.rig.clock.Now()
	t.rig.concurrent(t.kind, t.cfg, tripodGroups, u, &t.feet)

	want := t.rig.base(t.cfg.StanceHeight)
	for i := range want {
		want[i] = want[i].Add(u[i].MultiplyByScalar(t.cfg.StepLength / 2))
	}

	off := t.drift(want)
	log.Infof("tripod: %s cycle done in %v (%d legs off)", d, t.rig.clock.Now().Sub(start), len(off))
	return nil
}

// RunWalk runs the given number of cycles, stopping at the first failure.
func (t *Tripod) RunWalk(d Direction, cycles int) error {
	return t.walk(t.RunCycle, d, cycles)
}
