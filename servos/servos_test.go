package servos

import (
	"testing"

	"github.com/hexctl/hexapod/fake/servo"
	"github.com/hexctl/hexapod/kinematics"
	"github.com/hexctl/hexapod/utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestServoAngles(t *testing.T) {
	tbl := kinematics.DefaultTable()

	type eg struct {
		leg   kinematics.LegID
		q     kinematics.JointAngles
		hip   float64
		knee  float64
		ankle float64
	}

	examples := []eg{
		{kinematics.FrontLeft, kinematics.JointAngles{}, 127.5, 90, 90},
		{kinematics.FrontRight, kinematics.JointAngles{}, 52.5, 90, 90},
		{kinematics.MidLeft, kinematics.JointAngles{Hip: utils.Rad(20), Knee: utils.Rad(10), Ankle: utils.Rad(-30)}, 110, 100, 60},
		{kinematics.MidRight, kinematics.JointAngles{Hip: utils.Rad(20), Knee: utils.Rad(10), Ankle: utils.Rad(-30)}, 110, 80, 120},
		{kinematics.RearLeft, kinematics.JointAngles{Ankle: utils.Rad(-180)}, 52.5, 90, 0},
		{kinematics.RearRight, kinematics.JointAngles{Ankle: utils.Rad(-180)}, 127.5, 90, 180},
	}

	for _, x := range examples {
		hip, knee, ankle := ServoAngles(tbl[x.leg.Index()], x.q)
		assert.InDelta(t, x.hip, hip, 1e-9, "%s hip", x.leg)
		assert.InDelta(t, x.knee, knee, 1e-9, "%s knee", x.leg)
		assert.InDelta(t, x.ankle, ankle, 1e-9, "%s ankle", x.leg)
	}
}

func TestSetLegChannels(t *testing.T) {
	left := servo.New("left")
	right := servo.New("right")
	a := New(kinematics.DefaultTable(), left, right)

	require.NoError(t, a.SetLeg(kinematics.MidRight, kinematics.JointAngles{}))
	assert.Empty(t, left.Writes())
	assert.Equal(t, []int{3, 4, 5}, right.Channels())

	require.NoError(t, a.SetLeg(kinematics.RearLeft, kinematics.JointAngles{}))
	assert.Equal(t, []int{6, 7, 8}, left.Channels())

	hip, _ := left.Angle(6)
	assert.Equal(t, 52.5, hip)
}

func TestSetLegMissingBoard(t *testing.T) {
	left := servo.New("left")
	a := New(kinematics.DefaultTable(), left, nil)
	assert.True(t, a.Available())

	assert.NoError(t, a.SetLeg(kinematics.FrontRight, kinematics.JointAngles{}))
	assert.Empty(t, left.Writes())

	assert.NoError(t, a.SetLeg(kinematics.FrontLeft, kinematics.JointAngles{}))
	assert.Len(t, left.Writes(), 3)

	assert.False(t, New(kinematics.DefaultTable(), nil, nil).Available())
}

func TestSetLegInvalid(t *testing.T) {
	left := servo.New("left")
	a := New(kinematics.DefaultTable(), left, left)

	err := a.SetLeg(kinematics.LegID(0), kinematics.JointAngles{})
	assert.True(t, errors.Is(err, kinematics.ErrInvalidLeg))
	assert.Empty(t, left.Writes())
}

func TestSetLegFailures(t *testing.T) {
	left := servo.New("left")
	left.FailWith(3, errors.New("nak"))
	left.FailWith(5, errors.New("nak"))
	a := New(kinematics.DefaultTable(), left, nil)

	err := a.SetLeg(kinematics.MidLeft, kinematics.JointAngles{})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "channel 3")

	// The channel in between was still written.
	assert.Equal(t, []int{4}, left.Channels())
}

func TestCenterAndShutdown(t *testing.T) {
	left := servo.New("left")
	right := servo.New("right")
	a := New(kinematics.DefaultTable(), left, right)

	require.NoError(t, a.Center())

	for _, b := range []*servo.FakeServo{left, right} {
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, b.Channels())
		for _, w := range b.Writes() {
			assert.Equal(t, CenterAngle, w.Angle)
		}
	}

	require.NoError(t, a.Shutdown())
	for ch := 0; ch < 9; ch++ {
		assert.True(t, left.Released(ch))
		assert.True(t, right.Released(ch))
	}
}
