package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hexctl/hexapod"
	"github.com/hexctl/hexapod/components/controller"
	"github.com/hexctl/hexapod/components/legs"
	"github.com/hexctl/hexapod/components/legs/gait"
	"github.com/hexctl/hexapod/config"
	"github.com/hexctl/hexapod/kinematics"
	"github.com/hexctl/hexapod/math3d"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "main",
})

const tickRate = 60

func main() {
	app := &cli.App{
		Name:  "hexapod",
		Usage: "walk a six legged robot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log every sample",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "log as json",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "record servo writes instead of opening the i2c boards",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			if c.Bool("json") {
				logrus.SetFormatter(&logrus.JSONFormatter{})
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "stand up, play the move script, and sit down",
				Action: withBot(run),
			},
			{
				Name:  "walk",
				Usage: "walk a number of cycles in one direction",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "gait", Aliases: []string{"g"}, Value: string(gait.KindTripod)},
					&cli.StringFlag{Name: "direction", Aliases: []string{"d"}, Value: gait.Forward.String()},
					&cli.IntFlag{Name: "cycles", Aliases: []string{"n"}, Value: 1},
					&cli.StringFlag{Name: "preset", Usage: "tripod preset (slow, normal, fast)"},
				},
				Action: withBot(walk),
			},
			{
				Name:   "stand",
				Usage:  "place every foot at its base position",
				Action: withBot(stand),
			},
			{
				Name:   "center",
				Usage:  "move every servo to 90 degrees",
				Action: withBot(center),
			},
			{
				Name:   "release",
				Usage:  "turn off every servo",
				Action: withBot(release),
			},
			{
				Name:  "step",
				Usage: "step a single leg forward and back",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "leg", Aliases: []string{"l"}, Value: kinematics.FrontLeft.String()},
					&cli.StringFlag{Name: "gait", Aliases: []string{"g"}, Value: string(gait.KindWave)},
				},
				Action: withBot(step),
			},
			{
				Name:  "ik",
				Usage: "solve one foot position and explain the result",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "leg", Aliases: []string{"l"}, Value: kinematics.FrontLeft.String()},
					&cli.Float64Flag{Name: "x", Required: true},
					&cli.Float64Flag{Name: "y", Required: true},
					&cli.Float64Flag{Name: "z", Required: true},
				},
				Action: ik,
			},
			{
				Name:  "check",
				Usage: "check every base position, and a step either side of it, is reachable",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "step", Value: gait.DefaultTripodConfig().StepLength},
				},
				Action: check,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// withBot opens the hardware before the action, and closes it after.
func withBot(action func(*cli.Context, *bot) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		b, err := newBot(cfg, c.Bool("dry-run"))
		if err != nil {
			return err
		}

		err = action(c, b)
		if cerr := b.Close(); cerr != nil {
			log.Warnf("%s (while closing)", cerr)
		}
		return err
	}
}

func run(c *cli.Context, b *bot) error {
	moves, err := b.cfg.Script()
	if err != nil {
		return err
	}

	engines, err := b.engines()
	if err != nil {
		return err
	}

	h := hexapod.NewHexapod()
	l := legs.New(h, b.rig, b.servos, engines...)
	l.SitHeight = b.cfg.SitHeight
	h.Add(l)
	h.Add(controller.New(h, moves, b.cfg.ExitWhenDone))

	log.Infof("booting components")
	if err := h.Boot(); err != nil {
		return err
	}

	// Catch both SIGINT (ctrl+c) and SIGTERM (kill/systemd), to allow the
	// hexapod to sit down and power off its servos before exiting.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	t := clock.New().Ticker(time.Second / tickRate)
	defer t.Stop()

	log.Infof("starting loop")
	for {
		select {
		case s := <-sig:
			if h.Shutdown {
				return errors.Errorf("caught %v twice, giving up", s)
			}
			log.Infof("caught %v, shutting down", s)
			h.Shutdown = true

		case now := <-t.C:
			if err := h.Tick(now); err != nil {
				log.Error(err)
			}
			if h.Halted {
				log.Infof("halted")
				return nil
			}
		}
	}
}

func walk(c *cli.Context, b *bot) error {
	k, err := gait.ParseKind(c.String("gait"))
	if err != nil {
		return err
	}

	d, err := gait.ParseDirection(c.String("direction"))
	if err != nil {
		return err
	}

	e, err := b.engine(k, c.String("preset"))
	if err != nil {
		return err
	}

	if err := e.Stand(); err != nil {
		return err
	}

	return e.RunWalk(d, c.Int("cycles"))
}

func stand(c *cli.Context, b *bot) error {
	e, err := b.engine(gait.KindTripod, "")
	if err != nil {
		return err
	}
	return e.Stand()
}

func center(c *cli.Context, b *bot) error {
	return b.servos.Center()
}

func release(c *cli.Context, b *bot) error {
	return b.servos.Shutdown()
}

func step(c *cli.Context, b *bot) error {
	id, err := kinematics.ParseLegID(c.String("leg"))
	if err != nil {
		return err
	}

	k, err := gait.ParseKind(c.String("gait"))
	if err != nil {
		return err
	}

	cfg, err := b.cfg.GaitConfig(k)
	if err != nil {
		return err
	}

	return b.rig.SingleStep(k, id, cfg)
}

func ik(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	table, err := cfg.Table()
	if err != nil {
		return err
	}

	id, err := kinematics.ParseLegID(c.String("leg"))
	if err != nil {
		return err
	}

	p := math3d.Vector3{X: c.Float64("x"), Y: c.Float64("y"), Z: c.Float64("z")}
	r := kinematics.NewSolver(table).Diagnose(id, p)
	fmt.Fprintln(c.App.Writer, r)

	if !r.Reachable() {
		return cli.Exit("", 2)
	}
	return nil
}

func check(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	table, err := cfg.Table()
	if err != nil {
		return err
	}

	failed := kinematics.NewSolver(table).CheckBasePositions(c.Float64("step"))
	if len(failed) == 0 {
		fmt.Fprintln(c.App.Writer, "all base positions reachable")
		return nil
	}

	fmt.Fprintln(c.App.Writer, kinematics.Summary(failed))
	return cli.Exit(fmt.Sprintf("%d positions unreachable", len(failed)), 2)
}
