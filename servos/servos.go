package servos

import (
	"github.com/hexctl/hexapod/kinematics"
	"github.com/hexctl/hexapod/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "servos",
})

// ErrInvalidChannel is returned for channels the board doesn't have.
var ErrInvalidChannel = errors.New("invalid channel")

const (
	MinAngle    = 0.0
	MaxAngle    = 180.0
	CenterAngle = 90.0

	jointsPerLeg = 3
)

// Driver positions the servo on one channel of a PWM board. The angle is in
// degrees, 0..180, with 90 at the center of travel.
type Driver interface {
	SetAngle(channel int, degrees float64) error
}

// Releaser is implemented by drivers which can stop driving a channel, so
// that the servo goes limp.
type Releaser interface {
	Off(channel int) error
}

// Adapter sends joint angles to the servos of each leg. The left legs are on
// one board and the right legs on another. Either board may be missing, in
// which case the legs on that side are silently skipped.
type Adapter struct {
	legs  kinematics.Table
	left  Driver
	right Driver
}

// New returns an adapter for the given legs. Pass a nil interface (not a nil
// pointer) for a missing board.
func New(legs kinematics.Table, left, right Driver) *Adapter {
	if left == nil {
		log.Warnf("no left board; legs 1, 3, 5 will not move")
	}
	if right == nil {
		log.Warnf("no right board; legs 2, 4, 6 will not move")
	}

	return &Adapter{
		legs:  legs,
		left:  left,
		right: right,
	}
}

func (a *Adapter) board(id kinematics.LegID) Driver {
	if id.Left() {
		return a.left
	}
	return a.right
}

// Available returns true if at least one board is attached.
func (a *Adapter) Available() bool {
	return a.left != nil || a.right != nil
}

// ServoAngles converts joint angles to the angles sent to the leg's three
// servos: the hip is corrected by the leg's offset, the knee and ankle are
// negated on mirrored legs, and everything is shifted to center on 90 and
// clamped to the servo's travel.
func ServoAngles(leg kinematics.LegConfig, q kinematics.JointAngles) (float64, float64, float64) {
	hip, knee, ankle := q.Degrees()
	hip += leg.HipOffset

	if leg.MirrorJoints {
		knee = -knee
		ankle = -ankle
	}

	return servoAngle(hip), servoAngle(knee), servoAngle(ankle)
}

func servoAngle(deg float64) float64 {
	return utils.Clamp(CenterAngle+deg, MinAngle, MaxAngle)
}

// SetLeg moves the three servos of a leg. Every channel is attempted even if
// an earlier one fails; the failures are combined.
func (a *Adapter) SetLeg(id kinematics.LegID, q kinematics.JointAngles) error {
	leg, err := a.legs.Leg(id)
	if err != nil {
		return err
	}

	d := a.board(id)
	if d == nil {
		return nil
	}

	hip, knee, ankle := ServoAngles(leg, q)
	log.Debugf("%s hip=%0.1f knee=%0.1f ankle=%0.1f", id, hip, knee, ankle)

	var errs error
	for j, deg := range [jointsPerLeg]float64{hip, knee, ankle} {
		ch := leg.Channel + j
		if err := d.SetAngle(ch, deg); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "%s (while setting channel %d)", id, ch))
		}
	}

	return errs
}

// Center drives every servo of every attached leg to the middle of its
// travel.
func (a *Adapter) Center() error {
	var errs error

	for _, leg := range a.legs {
		d := a.board(leg.ID)
		if d == nil {
			continue
		}
		for j := 0; j < jointsPerLeg; j++ {
			if err := d.SetAngle(leg.Channel+j, CenterAngle); err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "%s (while centering channel %d)", leg.ID, leg.Channel+j))
			}
		}
	}

	return errs
}

// Shutdown releases every servo, on boards which support it. This should be
// called before terminating the program, so the servos don't stay powered
// indefinitely.
func (a *Adapter) Shutdown() error {
	var errs error

	for _, leg := range a.legs {
		r, ok := a.board(leg.ID).(Releaser)
		if !ok {
			continue
		}
		for j := 0; j < jointsPerLeg; j++ {
			if err := r.Off(leg.Channel + j); err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "%s (while releasing channel %d)", leg.ID, leg.Channel+j))
			}
		}
	}

	log.Infof("servos released")
	return errs
}
