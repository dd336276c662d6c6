package geom_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/bladecore/internal/game/geom"
)

func TestMoveTowards_DoesNotOvershoot(t *testing.T) {
	got := geom.MoveTowards(geom.V(0, 0), geom.V(1, 0), 5)
	assert.Equal(t, geom.V(1, 0), got)
}

func TestMoveTowards_PartialStep(t *testing.T) {
	got := geom.MoveTowards(geom.V(0, 0), geom.V(10, 0), 2.5)
	assert.InDelta(t, 2.5, got.X, 1e-9)
	assert.InDelta(t, 0, got.Y, 1e-9)
}

func TestRotate_QuarterTurn(t *testing.T) {
	got := geom.Rotate(geom.V(1, 0), 90)
	assert.InDelta(t, 0, got.X, 1e-9)
	assert.InDelta(t, 1, got.Y, 1e-9)
}

func TestAngleDeg(t *testing.T) {
	assert.InDelta(t, 0, geom.AngleDeg(geom.V(3, 0)), 1e-9)
	assert.InDelta(t, 90, geom.AngleDeg(geom.V(0, 2)), 1e-9)
	assert.InDelta(t, 180, geom.AngleDeg(geom.V(-1, 0)), 1e-9)
}

func TestNormalized_ZeroStaysZero(t *testing.T) {
	assert.True(t, geom.Zero.Normalized().IsZero())
}

func TestLerp_ClampsT(t *testing.T) {
	a, b := geom.V(0, 0), geom.V(4, 4)
	assert.Equal(t, b, geom.Lerp(a, b, 3))
	assert.Equal(t, a, geom.Lerp(a, b, -1))
	assert.InDelta(t, 1.6, geom.Lerp1(3, 0.2, 0.5), 1e-9)
}

func TestMoveTowards_Property_RemainingDistance(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cur := geom.V(rapid.Float64Range(-50, 50).Draw(rt, "cx"), rapid.Float64Range(-50, 50).Draw(rt, "cy"))
		tgt := geom.V(rapid.Float64Range(-50, 50).Draw(rt, "tx"), rapid.Float64Range(-50, 50).Draw(rt, "ty"))
		step := rapid.Float64Range(0, 20).Draw(rt, "step")
		got := geom.MoveTowards(cur, tgt, step)
		want := math.Max(0, geom.Dist(cur, tgt)-step)
		assert.InDelta(rt, want, geom.Dist(got, tgt), 1e-6)
	})
}
