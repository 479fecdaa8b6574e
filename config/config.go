package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hexctl/hexapod"
	"github.com/hexctl/hexapod/components/legs/gait"
	"github.com/hexctl/hexapod/kinematics"
	"github.com/hexctl/hexapod/servos"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "config",
})

var ErrInvalid = errors.New("invalid config")

// Gait overrides the compiled-in tuning of one gait. Unset fields keep the
// default.
type Gait struct {
	StepLength   *float64 `toml:"step_length"`
	LiftHeight   *float64 `toml:"lift_height"`
	SwingMS      *int     `toml:"swing_ms"`
	StanceMS     *int     `toml:"stance_ms"`
	SwingPoints  *int     `toml:"swing_points"`
	StancePoints *int     `toml:"stance_points"`
	StanceHeight *float64 `toml:"stance_height"`
	PauseMS      *int     `toml:"pause_ms"`

	// Start from a named tripod preset instead of the default.
	Preset string `toml:"preset"`
}

// Leg is the calibration of one leg, matched to the table by name (FL, FR,
// ML, MR, RL, RR).
type Leg struct {
	Name         string   `toml:"name"`
	Channel      *int     `toml:"channel"`
	HipOffset    *float64 `toml:"hip_offset"`
	MirrorJoints *bool    `toml:"mirror_joints"`
	InvertHip    *bool    `toml:"invert_hip"`
	InvertKnee   *bool    `toml:"invert_knee"`
}

type Board struct {
	Bus     string `toml:"bus"`
	Address uint16 `toml:"address"`

	// Leave this side of the body unpowered.
	Disabled bool `toml:"disabled"`
}

type I2C struct {
	Left      Board  `toml:"left"`
	Right     Board  `toml:"right"`
	Frequency int    `toml:"frequency"`
	MinPulse  uint16 `toml:"min_pulse"`
	MaxPulse  uint16 `toml:"max_pulse"`
}

type Move struct {
	Gait      string `toml:"gait"`
	Direction string `toml:"direction"`
	Cycles    int    `toml:"cycles"`
}

type Config struct {
	Wave    Gait `toml:"wave"`
	Tripod  Gait `toml:"tripod"`
	Bipedal Gait `toml:"bipedal"`

	Legs  []Leg  `toml:"legs"`
	I2C   I2C    `toml:"i2c"`
	Moves []Move `toml:"moves"`

	// Foot height (z) when sitting.
	SitHeight float64 `toml:"sit_height"`

	// Shut down once the move script is done.
	ExitWhenDone bool `toml:"exit_when_done"`
}

// Default returns the config used when no file is given.
func Default() *Config {
	return &Config{
		I2C: I2C{
			Left:      Board{Bus: "", Address: servos.DefaultAddress},
			Right:     Board{Bus: "", Address: servos.SecondAddress},
			Frequency: int(servos.DefaultOpts.Frequency / physic.Hertz),
			MinPulse:  servos.DefaultOpts.MinPulse,
			MaxPulse:  servos.DefaultOpts.MaxPulse,
		},
		SitHeight:    -12,
		ExitWhenDone: true,
	}
}

// Load reads the TOML file at path over the defaults, and validates the
// result.
func Load(path string) (*Config, error) {
	c := Default()

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	for _, k := range md.Undecoded() {
		log.Warnf("unknown key in %s: %s", path, k)
	}

	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "validating %s", path)
	}

	log.Infof("loaded %s", path)
	return c, nil
}

// Decode is Load for a string.
func Decode(s string) (*Config, error) {
	c := Default()

	if _, err := toml.Decode(s, c); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) Validate() error {
	for _, k := range []gait.Kind{gait.KindWave, gait.KindTripod, gait.KindBipedal} {
		gc, err := c.GaitConfig(k)
		if err != nil {
			return err
		}
		if err := gc.Validate(); err != nil {
			return errors.Wrapf(err, "[%s]", k)
		}
	}

	if _, err := c.Table(); err != nil {
		return err
	}

	if _, err := c.Script(); err != nil {
		return err
	}

	if c.I2C.Frequency <= 0 {
		return errors.Wrapf(ErrInvalid, "i2c frequency must be positive (got %d)", c.I2C.Frequency)
	}

	if c.I2C.MinPulse >= c.I2C.MaxPulse || c.I2C.MaxPulse > 4095 {
		return errors.Wrapf(ErrInvalid, "bad pulse range %d..%d", c.I2C.MinPulse, c.I2C.MaxPulse)
	}

	return nil
}

func (c *Config) section(k gait.Kind) (Gait, gait.Config, error) {
	switch k {
	case gait.KindWave:
		return c.Wave, gait.DefaultWaveConfig(), nil

	case gait.KindBipedal:
		return c.Bipedal, gait.DefaultBipedalConfig(), nil

	case gait.KindTripod:
		base := gait.DefaultTripodConfig()
		if c.Tripod.Preset != "" {
			p, err := gait.TripodPreset(c.Tripod.Preset)
			if err != nil {
				return Gait{}, gait.Config{}, errors.Wrap(ErrInvalid, err.Error())
			}
			base = p
		}
		return c.Tripod, base, nil
	}

	return Gait{}, gait.Config{}, errors.Wrapf(ErrInvalid, "unknown gait: %q", k)
}

// GaitConfig returns the tuning for the given gait, with overrides applied.
func (c *Config) GaitConfig(k gait.Kind) (gait.Config, error) {
	g, gc, err := c.section(k)
	if err != nil {
		return gait.Config{}, err
	}

	if g.Preset != "" && k != gait.KindTripod {
		return gait.Config{}, errors.Wrapf(ErrInvalid, "[%s] presets are tripod only", k)
	}

	if g.StepLength != nil {
		gc.StepLength = *g.StepLength
	}
	if g.LiftHeight != nil {
		gc.LiftHeight = *g.LiftHeight
	}
	if g.SwingMS != nil {
		gc.SwingDuration = time.Duration(*g.SwingMS) * time.Millisecond
	}
	if g.StanceMS != nil {
		gc.StanceDuration = time.Duration(*g.StanceMS) * time.Millisecond
	}
	if g.SwingPoints != nil {
		gc.SwingPoints = *g.SwingPoints
	}
	if g.StancePoints != nil {
		gc.StancePoints = *g.StancePoints
	}
	if g.StanceHeight != nil {
		gc.StanceHeight = *g.StanceHeight
	}
	if g.PauseMS != nil {
		gc.Pause = time.Duration(*g.PauseMS) * time.Millisecond
	}

	return gc, nil
}

// Table returns the leg table with the calibration overrides applied.
func (c *Config) Table() (kinematics.Table, error) {
	t := kinematics.DefaultTable()
	seen := map[kinematics.LegID]bool{}

	for _, l := range c.Legs {
		id, err := kinematics.ParseLegID(l.Name)
		if err != nil {
			return t, errors.Wrap(ErrInvalid, err.Error())
		}

		if seen[id] {
			return t, errors.Wrapf(ErrInvalid, "leg %s calibrated twice", id)
		}
		seen[id] = true

		lc := &t[id.Index()]
		if l.Channel != nil {
			if *l.Channel < 0 || *l.Channel > 13 {
				return t, errors.Wrapf(ErrInvalid, "leg %s channel %d out of range", id, *l.Channel)
			}
			lc.Channel = *l.Channel
		}
		if l.HipOffset != nil {
			lc.HipOffset = *l.HipOffset
		}
		if l.MirrorJoints != nil {
			lc.MirrorJoints = *l.MirrorJoints
		}
		if l.InvertHip != nil {
			lc.InvertHip = *l.InvertHip
		}
		if l.InvertKnee != nil {
			lc.InvertKnee = *l.InvertKnee
		}
	}

	return t, nil
}

// Script returns the scripted moves, in order.
func (c *Config) Script() ([]hexapod.Move, error) {
	moves := make([]hexapod.Move, 0, len(c.Moves))

	for i, m := range c.Moves {
		k, err := gait.ParseKind(m.Gait)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalid, "move %d: %s", i+1, err)
		}

		d := gait.Forward
		if m.Direction != "" {
			d, err = gait.ParseDirection(m.Direction)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalid, "move %d: %s", i+1, err)
			}
		}

		if m.Cycles <= 0 {
			return nil, errors.Wrapf(ErrInvalid, "move %d: cycles must be positive", i+1)
		}

		moves = append(moves, hexapod.Move{Gait: k, Direction: d, Cycles: m.Cycles})
	}

	return moves, nil
}

// PWM returns the driver options for both boards.
func (c *Config) PWM() servos.Opts {
	return servos.Opts{
		Frequency: physic.Frequency(c.I2C.Frequency) * physic.Hertz,
		MinPulse:  c.I2C.MinPulse,
		MaxPulse:  c.I2C.MaxPulse,
	}
}
