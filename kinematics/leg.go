package kinematics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hexctl/hexapod/math3d"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "kinematics",
})

// ErrInvalidLeg is returned for leg ids outside 1..6.
var ErrInvalidLeg = errors.New("invalid leg id")

// LegID identifies a physical leg. Odd ids are on the left side of the body,
// even ids on the right, numbered front to back.
type LegID int

const (
	FrontLeft LegID = iota + 1
	FrontRight
	MidLeft
	MidRight
	RearLeft
	RearRight
)

// NumLegs is the number of legs on the robot.
const NumLegs = 6

// AllLegs lists every leg, in id order.
var AllLegs = [NumLegs]LegID{FrontLeft, FrontRight, MidLeft, MidRight, RearLeft, RearRight}

var legNames = [NumLegs]string{"FL", "FR", "ML", "MR", "RL", "RR"}

func (id LegID) Valid() bool {
	return id >= 1 && id <= NumLegs
}

// Index returns the zero-based position of the leg in per-leg arrays.
func (id LegID) Index() int {
	return int(id) - 1
}

// Left returns true for legs mounted on the left side of the body.
func (id LegID) Left() bool {
	return id%2 == 1
}

func (id LegID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("leg(%d)", int(id))
	}
	return legNames[id.Index()]
}

// ParseLegID accepts either a leg name (FL) or its number (1).
func ParseLegID(s string) (LegID, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range legNames {
		if s == n {
			return LegID(i + 1), nil
		}
	}

	if n, err := strconv.Atoi(s); err == nil && LegID(n).Valid() {
		return LegID(n), nil
	}

	return 0, errors.Wrapf(ErrInvalidLeg, "%q", s)
}

// Geometry holds the segment lengths, in centimeters, shared by every leg.
type Geometry struct {
	Hip   float64
	Thigh float64
	Shin  float64
}

// DefaultGeometry is the measured geometry of the robot.
var DefaultGeometry = Geometry{
	Hip:   5.5,
	Thigh: 12.5,
	Shin:  15.5,
}

// MinReach is the shortest hip-to-foot distance the thigh and shin can span.
func (g Geometry) MinReach() float64 {
	if g.Thigh > g.Shin {
		return g.Thigh - g.Shin
	}
	return g.Shin - g.Thigh
}

// MaxReach is the distance with the knee fully straightened.
func (g Geometry) MaxReach() float64 {
	return g.Thigh + g.Shin
}

// LegConfig describes one leg: where its hip axis sits, how it is mounted,
// and where its three servos are plugged in.
type LegConfig struct {
	ID LegID

	// Position of the hip axis relative to the center of the body. Only X and
	// Y are used.
	Origin math3d.Vector3

	// Mirrored mounting on the right side of the body.
	InvertHip  bool
	InvertKnee bool

	// Nominal standing position of the foot.
	Base math3d.Vector3

	// First of three consecutive PWM channels (hip, knee, ankle) on the
	// board for this side of the body.
	Channel int

	// Added to the hip angle (degrees) before it is sent to the servo.
	HipOffset float64

	// Negate the knee and ankle angles before they are sent to the servo.
	MirrorJoints bool
}

// Table is the configuration of all six legs, indexed by LegID.Index.
type Table [NumLegs]LegConfig

// DefaultTable returns the compiled-in leg configuration.
func DefaultTable() Table {
	return Table{
		{
			ID:        FrontLeft,
			Origin:    math3d.Vector3{X: 6.8956, Y: -7.7136},
			Base:      math3d.Vector3{X: 18, Y: -15, Z: -24},
			Channel:   0,
			HipOffset: 37.5,
		},
		{
			ID:           FrontRight,
			Origin:       math3d.Vector3{X: -8.6608, Y: -7.7136},
			InvertHip:    true,
			InvertKnee:   true,
			Base:         math3d.Vector3{X: -18, Y: -15, Z: -24},
			Channel:      0,
			HipOffset:    -37.5,
			MirrorJoints: true,
		},
		{
			ID:      MidLeft,
			Origin:  math3d.Vector3{X: 10.1174, Y: 0.0645},
			Base:    math3d.Vector3{X: 22, Y: 0, Z: -24},
			Channel: 3,
		},
		{
			ID:           MidRight,
			Origin:       math3d.Vector3{X: -11.8826, Y: -0.0645},
			InvertHip:    true,
			InvertKnee:   true,
			Base:         math3d.Vector3{X: -22, Y: 0, Z: -24},
			Channel:      3,
			MirrorJoints: true,
		},
		{
			ID:        RearLeft,
			Origin:    math3d.Vector3{X: 6.8956, Y: 7.8427},
			Base:      math3d.Vector3{X: 18, Y: 15, Z: -24},
			Channel:   6,
			HipOffset: -37.5,
		},
		{
			ID:           RearRight,
			Origin:       math3d.Vector3{X: -8.6608, Y: 7.8427},
			InvertHip:    true,
			InvertKnee:   true,
			Base:         math3d.Vector3{X: -18, Y: 15, Z: -24},
			Channel:      6,
			HipOffset:    37.5,
			MirrorJoints: true,
		},
	}
}

// Leg returns the configuration of the given leg.
func (t *Table) Leg(id LegID) (LegConfig, error) {
	if !id.Valid() {
		return LegConfig{}, errors.Wrapf(ErrInvalidLeg, "%d", int(id))
	}
	return t[id.Index()], nil
}

// Base returns the standing position of the given leg. Invalid ids return the
// zero vector.
func (t *Table) Base(id LegID) math3d.Vector3 {
	if !id.Valid() {
		return math3d.ZeroVector3
	}
	return t[id.Index()].Base
}
