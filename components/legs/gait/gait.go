package gait

import (
	"fmt"
	"strings"
	"time"

	"github.com/hexctl/hexapod/kinematics"
	"github.com/hexctl/hexapod/math3d"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "gait",
})

var (
	ErrUnsupportedDirection = errors.New("direction not supported by gait")
	ErrNoActuator           = errors.New("no actuator available")
	ErrInvalidConfig        = errors.New("invalid gait config")
)

// Kind names a gait.
type Kind string

const (
	KindWave    Kind = "wave"
	KindTripod  Kind = "tripod"
	KindBipedal Kind = "bipedal"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindWave, KindTripod, KindBipedal:
		return k, nil
	}
	return "", errors.Errorf("unknown gait: %q", s)
}

type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
	TurnLeft
	TurnRight
)

var directionNames = []string{"forward", "backward", "left", "right", "turn-left", "turn-right"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(s)
	for i, n := range directionNames {
		if s == n {
			return Direction(i), nil
		}
	}
	return 0, errors.Errorf("unknown direction: %q", s)
}

// Turning returns true for the two in-place rotations.
func (d Direction) Turning() bool {
	return d == TurnLeft || d == TurnRight
}

// stride returns the unit vector along which the given leg swings when
// walking in the given direction. Feet swing in the direction of travel and
// slide the opposite way during stance. When turning, the front and rear
// pairs swing sideways in opposite directions and the middle pair stays put.
func stride(d Direction, id kinematics.LegID) (math3d.Vector3, error) {
	switch d {
	case Forward:
		return math3d.Vector3{Y: -1}, nil
	case Backward:
		return math3d.Vector3{Y: 1}, nil
	case Left:
		return math3d.Vector3{X: 1}, nil
	case Right:
		return math3d.Vector3{X: -1}, nil
	case TurnLeft, TurnRight:
		var x float64
		switch id {
		case kinematics.FrontLeft, kinematics.FrontRight:
			x = 1
		case kinematics.RearLeft, kinematics.RearRight:
			x = -1
		}
		if d == TurnRight {
			x = -x
		}
		return math3d.Vector3{X: x}, nil
	}

	return math3d.ZeroVector3, errors.Wrapf(ErrUnsupportedDirection, "%s", d)
}

// strides returns the stride of every leg.
func strides(d Direction) (Feet, error) {
	var u Feet
	for _, id := range kinematics.AllLegs {
		v, err := stride(d, id)
		if err != nil {
			return u, err
		}
		u[id.Index()] = v
	}
	return u, nil
}

// Config is the tuning of one gait.
type Config struct {

	// Distance (cm) the body travels over one cycle.
	StepLength float64

	// Peak height (cm) of a swinging foot above the ground.
	LiftHeight float64

	SwingDuration  time.Duration
	StanceDuration time.Duration

	// Number of samples each phase is divided into.
	SwingPoints  int
	StancePoints int

	// Height (z, so negative) of feet on the ground.
	StanceHeight float64

	// Pause between consecutive cycles of a walk.
	Pause time.Duration
}

func (c Config) String() string {
	return fmt.Sprintf("step=%0.1fcm lift=%0.1fcm swing=%v/%d stance=%v/%d height=%0.1fcm pause=%v",
		c.StepLength, c.LiftHeight, c.SwingDuration, c.SwingPoints,
		c.StanceDuration, c.StancePoints, c.StanceHeight, c.Pause)
}

// Validate returns an error if a cycle can't run with this config. The
// runtime setters don't call it; cycles do.
func (c Config) Validate() error {
	if c.SwingPoints <= 0 || c.StancePoints <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "points must be positive (swing=%d, stance=%d)", c.SwingPoints, c.StancePoints)
	}
	if c.SwingDuration < 0 || c.StanceDuration < 0 || c.Pause < 0 {
		return errors.Wrap(ErrInvalidConfig, "durations must not be negative")
	}
	return nil
}

// Engine is a gait which can be walked.
type Engine interface {
	Kind() Kind
	RunCycle(d Direction) error
	RunWalk(d Direction, cycles int) error
	Stand() error
	Config() Config
	SetConfig(stepLength, liftHeight float64, swing, stance time.Duration, swingPoints, stancePoints int)
	Feet() Feet
}

// Feet holds one position per leg, indexed by LegID.Index.
type Feet [kinematics.NumLegs]math3d.Vector3

// group is a set of legs which swing together.
type group []kinematics.LegID

func (g group) has(id kinematics.LegID) bool {
	for _, x := range g {
		if x == id {
			return true
		}
	}
	return false
}

// rest returns the legs not in the group.
func (g group) rest() group {
	var out group
	for _, id := range kinematics.AllLegs {
		if !g.has(id) {
			out = append(out, id)
		}
	}
	return out
}
