package main

import (
	"github.com/benbjohnson/clock"
	"github.com/hexctl/hexapod/components/legs/gait"
	"github.com/hexctl/hexapod/config"
	fakeservo "github.com/hexctl/hexapod/fake/servo"
	"github.com/hexctl/hexapod/kinematics"
	"github.com/hexctl/hexapod/servos"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// bot is everything between the gaits and the hardware.
type bot struct {
	cfg    *config.Config
	solver *kinematics.Solver
	servos *servos.Adapter
	rig    *gait.Rig

	buses []i2c.BusCloser
	fakes []*fakeservo.FakeServo
}

func newBot(cfg *config.Config, dryRun bool) (*bot, error) {
	table, err := cfg.Table()
	if err != nil {
		return nil, err
	}

	b := &bot{
		cfg:    cfg,
		solver: kinematics.NewSolver(table),
	}
	clk := clock.New()

	// Left as nil interfaces for boards which are disabled.
	var left, right servos.Driver

	if dryRun {
		log.Infof("dry run, no servos will move")
		if !cfg.I2C.Left.Disabled {
			f := fakeservo.New("left")
			b.fakes = append(b.fakes, f)
			left = f
		}
		if !cfg.I2C.Right.Disabled {
			f := fakeservo.New("right")
			b.fakes = append(b.fakes, f)
			right = f
		}

	} else {
		if _, err := host.Init(); err != nil {
			return nil, errors.Wrap(err, "initializing host")
		}

		opts := cfg.PWM()
		opts.Clock = clk

		if !cfg.I2C.Left.Disabled {
			d, err := b.openBoard(cfg.I2C.Left, &opts)
			if err != nil {
				b.Close()
				return nil, errors.Wrap(err, "left board")
			}
			left = d
		}

		if !cfg.I2C.Right.Disabled {
			d, err := b.openBoard(cfg.I2C.Right, &opts)
			if err != nil {
				b.Close()
				return nil, errors.Wrap(err, "right board")
			}
			right = d
		}
	}

	b.servos = servos.New(table, left, right)
	b.rig = gait.NewRig(b.solver, b.servos, clk)
	return b, nil
}

func (b *bot) openBoard(c config.Board, opts *servos.Opts) (*servos.PCA9685, error) {
	bus, err := i2creg.Open(c.Bus)
	if err != nil {
		return nil, errors.Wrapf(err, "opening i2c bus %q", c.Bus)
	}
	b.buses = append(b.buses, bus)

	d, err := servos.NewPCA9685(bus, c.Address, opts)
	if err != nil {
		return nil, err
	}

	log.Infof("opened %v on %s", d, bus)
	return d, nil
}

// engine returns a gait engine configured from the file. A preset, if given,
// replaces the tripod config.
func (b *bot) engine(k gait.Kind, preset string) (gait.Engine, error) {
	cfg, err := b.cfg.GaitConfig(k)
	if err != nil {
		return nil, err
	}

	if preset != "" {
		if k != gait.KindTripod {
			return nil, errors.Errorf("presets are tripod only (got %s)", k)
		}
		if cfg, err = gait.TripodPreset(preset); err != nil {
			return nil, err
		}
	}

	log.Infof("%s: %v", k, cfg)

	switch k {
	case gait.KindWave:
		return gait.NewWave(b.rig, cfg), nil
	case gait.KindTripod:
		return gait.NewTripod(b.rig, cfg), nil
	case gait.KindBipedal:
		return gait.NewBipedal(b.rig, cfg), nil
	}

	return nil, errors.Errorf("unknown gait: %q", k)
}

// engines returns all three gaits, tripod first.
func (b *bot) engines() ([]gait.Engine, error) {
	var out []gait.Engine
	for _, k := range []gait.Kind{gait.KindTripod, gait.KindWave, gait.KindBipedal} {
		e, err := b.engine(k, "")
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Close releases the buses, and reports what a dry run would have written.
func (b *bot) Close() error {
	for _, f := range b.fakes {
		log.Infof("dry run: %d writes to %s board", len(f.Writes()), f.Name)
	}

	var err error
	for _, bus := range b.buses {
		err = multierr.Append(err, bus.Close())
	}
	b.buses = nil
	return err
}
