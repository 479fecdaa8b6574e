package gait

import (
	"testing"
	"time"

	"github.com/hexctl/hexapod/kinematics"
	"github.com/hexctl/hexapod/math3d"
	"github.com/hexctl/hexapod/servos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// segments splits samples into runs with the same phase and group.
func segments(samples []Sample) [][]Sample {
	var out [][]Sample
	for i, s := range samples {
		if i == 0 || s.Phase != samples[i-1].Phase || s.Group != samples[i-1].Group {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], s)
	}
	return out
}

// stanceTravel sums, per leg, how far each foot moved while on the ground.
func stanceTravel(samples []Sample) Feet {
	var travel Feet
	for _, seg := range segments(samples) {
		first, last := seg[0], seg[len(seg)-1]
		for _, id := range first.Stance {
			i := id.Index()
			travel[i] = travel[i].Add(last.Feet[i].Subtract(first.Feet[i]))
		}
	}
	return travel
}

func TestWaveSequence(t *testing.T) {
	h := newHarness()
	w := NewWave(h.rig, DefaultWaveConfig())

	require.NoError(t, w.RunCycle(Forward))

	phases := h.phases()
	require.Len(t, phases, 12)

	for k, id := range kinematics.AllLegs {
		swing := phases[2*k]
		assert.Equal(t, PhaseSwing, swing.Phase)
		assert.Equal(t, []kinematics.LegID{id}, swing.Swing)
		assert.Len(t, swing.Stance, 5)

		shift := phases[2*k+1]
		assert.Equal(t, PhaseShift, shift.Phase)
		assert.Empty(t, shift.Swing)
		assert.Len(t, shift.Stance, 6)
	}

	assert.Len(t, h.samples, 6*(50+1+20+1))
	assertPartition(t, h.samples)
}

func TestWaveClosure(t *testing.T) {
	h := newHarness()
	cfg := DefaultWaveConfig()
	w := NewWave(h.rig, cfg)
	base := h.rig.base(cfg.StanceHeight)

	for _, d := range []Direction{Forward, Backward, Left, Right} {
		h.samples = nil
		require.NoError(t, w.RunCycle(d))
		assertFeet(t, base, w.Feet(), "%s", d)

		u, err := strides(d)
		require.NoError(t, err)

		travel := stanceTravel(h.samples)
		for i := range travel {
			exp := u[i].MultiplyByScalar(-cfg.StepLength)
			assert.InDelta(t, exp.X, travel[i].X, 1e-9, "%s leg %d", d, i+1)
			assert.InDelta(t, exp.Y, travel[i].Y, 1e-9, "%s leg %d", d, i+1)
			assert.InDelta(t, 0, travel[i].Z, 1e-9)
		}
	}
}

func TestWaveFirstSwing(t *testing.T) {
	h := newHarness()
	w := NewWave(h.rig, DefaultWaveConfig())
	require.NoError(t, w.RunCycle(Forward))

	// The first leg swings a full step ahead, and the others hold still.
	seg := segments(h.samples)[0]
	first, last := seg[0], seg[len(seg)-1]
	assert.InDelta(t, -19, last.Feet[0].Y, 1e-9)
	assert.InDelta(t, -24, last.Feet[0].Z, 1e-9)
	assert.InDelta(t, -20, seg[25].Feet[0].Z, 1e-9)
	for i := 1; i < kinematics.NumLegs; i++ {
		assert.Equal(t, first.Feet[i], last.Feet[i])
	}

	// The last leg swings a sixth of a step ahead.
	seg = segments(h.samples)[10]
	last = seg[len(seg)-1]
	assert.Equal(t, []kinematics.LegID{kinematics.RearRight}, last.Swing)
	assert.InDelta(t, 15-4.0/6, last.Feet[5].Y, 1e-9)
}

func TestWaveTurnUnsupported(t *testing.T) {
	h := newHarness()
	w := NewWave(h.rig, DefaultWaveConfig())

	for _, d := range []Direction{TurnLeft, TurnRight} {
		assert.ErrorIs(t, w.RunCycle(d), ErrUnsupportedDirection)
		assert.ErrorIs(t, w.RunWalk(d, 3), ErrUnsupportedDirection)
	}
	assert.Empty(t, h.samples)
	assert.Empty(t, h.left.Writes())
}

func TestWaveWalk(t *testing.T) {
	h := newHarness()
	w := NewWave(h.rig, DefaultWaveConfig())

	require.NoError(t, w.RunWalk(Forward, 3))
	assert.Len(t, h.samples, 3*6*(51+21))

	// One sleep per sample, plus the pauses between cycles.
	assert.Equal(t, 3*6*(51+21)+2, h.clock.sleeps)
	perCycle := 6 * (51*200*time.Microsecond + 21*500*time.Microsecond)
	assert.Equal(t, 3*perCycle+2*20*time.Millisecond, h.clock.slept)
}

func TestWaveWalkAborts(t *testing.T) {
	h := newHarness()
	w := NewWave(h.rig, DefaultWaveConfig())
	w.SetConfig(4, 4, 10*time.Millisecond, 10*time.Millisecond, 0, 20)

	err := w.RunWalk(Forward, 3)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "cycle 1/3")
	assert.Empty(t, h.samples)
}

func TestWaveSetConfig(t *testing.T) {
	h := newHarness()
	w := NewWave(h.rig, DefaultWaveConfig())

	w.SetConfig(3, 2, 20*time.Millisecond, 15*time.Millisecond, 10, 5)
	c := w.Config()
	assert.Equal(t, 3.0, c.StepLength)
	assert.Equal(t, 2.0, c.LiftHeight)
	assert.Equal(t, 20*time.Millisecond, c.SwingDuration)
	assert.Equal(t, 15*time.Millisecond, c.StanceDuration)
	assert.Equal(t, 10, c.SwingPoints)
	assert.Equal(t, 5, c.StancePoints)
	assert.Equal(t, -24.0, c.StanceHeight)

	require.NoError(t, w.RunCycle(Forward))
	assert.Len(t, h.samples, 6*(11+6))
	assertFeet(t, h.rig.base(-24), w.Feet())
}

func TestWaveMissingSide(t *testing.T) {
	h := newHarness()
	tbl := kinematics.DefaultTable()
	h.rig.act = servos.New(tbl, h.left, nil)
	w := NewWave(h.rig, DefaultWaveConfig())

	require.NoError(t, w.RunCycle(Forward))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, h.left.Channels())
	assert.Empty(t, h.right.Writes())
	assertFeet(t, h.rig.base(-24), w.Feet())
}

func TestWaveUnreachable(t *testing.T) {
	h := newHarness()
	cfg := DefaultWaveConfig()
	cfg.StanceHeight = -40
	w := NewWave(h.rig, cfg)

	// Nothing can reach, but the cycle still runs to the end.
	require.NoError(t, w.RunCycle(Forward))
	assert.Len(t, h.samples, 6*(51+21))
	for _, s := range h.samples {
		assert.Equal(t, 6, s.Misses)
	}
	assert.Empty(t, h.left.Writes())
	assertFeet(t, h.rig.base(-40), w.Feet())
}

func TestWaveWriteFailure(t *testing.T) {
	h := newHarness()
	h.left.FailWith(0, assert.AnError)
	w := NewWave(h.rig, DefaultWaveConfig())

	require.NoError(t, w.RunCycle(Forward))
	for _, s := range h.samples {
		assert.Equal(t, 1, s.Faults)
	}
}

func TestWaveChangeDirection(t *testing.T) {
	h := newHarness()
	w := NewWave(h.rig, DefaultWaveConfig())

	require.NoError(t, w.RunCycle(Forward))
	require.NoError(t, w.RunCycle(Left))
	assertFeet(t, h.rig.base(-24), w.Feet())
}

func TestWaveStand(t *testing.T) {
	h := newHarness()
	w := NewWave(h.rig, DefaultWaveConfig())

	w.feet[0] = math3d.Vector3{X: 1, Y: 2, Z: 3}
	w.tracking = true

	require.NoError(t, w.Stand())
	assertFeet(t, h.rig.base(-24), w.Feet())
	assert.Equal(t, PhaseStand, h.samples[0].Phase)
}
