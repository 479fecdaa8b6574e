package gait

import (
	"testing"

	"github.com/hexctl/hexapod/kinematics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBipedalSequence(t *testing.T) {
	h := newHarness()
	b := NewBipedal(h.rig, DefaultBipedalConfig())

	require.NoError(t, b.RunCycle(Forward))
	assertPartition(t, h.samples)

	phases := h.phases()
	require.Len(t, phases, 6)

	pairs := [][]kinematics.LegID{
		{kinematics.FrontLeft, kinematics.MidRight},
		{kinematics.FrontRight, kinematics.RearLeft},
		{kinematics.MidLeft, kinematics.RearRight},
	}

	for k, pair := range pairs {
		assert.Equal(t, PhaseSwing, phases[2*k].Phase)
		assert.Equal(t, pair, phases[2*k].Swing)
		assert.Len(t, phases[2*k].Stance, 4)
		assert.Equal(t, PhaseShift, phases[2*k+1].Phase)
	}

	assert.Len(t, h.samples, 3*(20+1+10+1))
}

func TestBipedalClosure(t *testing.T) {
	h := newHarness()
	cfg := DefaultBipedalConfig()
	b := NewBipedal(h.rig, cfg)
	base := h.rig.base(cfg.StanceHeight)

	for _, d := range []Direction{Forward, Left, Backward, Right} {
		h.samples = nil
		require.NoError(t, b.RunCycle(d))
		assertFeet(t, base, b.Feet(), "%s", d)

		u, err := strides(d)
		require.NoError(t, err)

		travel := stanceTravel(h.samples)
		for i := range travel {
			exp := u[i].MultiplyByScalar(-cfg.StepLength)
			assert.InDelta(t, exp.X, travel[i].X, 1e-9, "%s leg %d", d, i+1)
			assert.InDelta(t, exp.Y, travel[i].Y, 1e-9, "%s leg %d", d, i+1)
		}
	}
}

func TestBipedalPairsLand(t *testing.T) {
	h := newHarness()
	b := NewBipedal(h.rig, DefaultBipedalConfig())
	require.NoError(t, b.RunCycle(Backward))

	segs := segments(h.samples)

	// The first pair lands a full step behind base, the last a third.
	last := segs[0][len(segs[0])-1]
	assert.InDelta(t, -15+4, last.Feet[kinematics.FrontLeft.Index()].Y, 1e-9)
	assert.InDelta(t, 0+4, last.Feet[kinematics.MidRight.Index()].Y, 1e-9)

	last = segs[4][len(segs[4])-1]
	assert.InDelta(t, 15+4.0/3, last.Feet[kinematics.RearRight.Index()].Y, 1e-9)
}

func TestBipedalTurnUnsupported(t *testing.T) {
	h := newHarness()
	b := NewBipedal(h.rig, DefaultBipedalConfig())

	assert.ErrorIs(t, b.RunCycle(TurnRight), ErrUnsupportedDirection)
	assert.ErrorIs(t, b.RunWalk(TurnLeft, 2), ErrUnsupportedDirection)
	assert.Empty(t, h.samples)
}

func TestBipedalWalk(t *testing.T) {
	h := newHarness()
	b := NewBipedal(h.rig, DefaultBipedalConfig())

	require.NoError(t, b.RunWalk(Right, 4))
	assert.Len(t, h.samples, 4*3*(21+11))
	assertFeet(t, h.rig.base(-24), b.Feet())
	assert.Equal(t, KindBipedal, b.Kind())
}
