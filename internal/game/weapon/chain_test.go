package weapon_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/bladecore/internal/game/damage"
	"github.com/cory-johannsen/bladecore/internal/game/geom"
	"github.com/cory-johannsen/bladecore/internal/game/weapon"
)

func ids(ts []weapon.Target) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID()
	}
	return out
}

func TestBuildQueue_SortsFiltersAndTruncates(t *testing.T) {
	src := &fakeTargets{list: []*fakeTarget{
		{id: "c", pos: geom.V(0, 8)},
		{id: "a", pos: geom.V(2, 0)},
		{id: "dead", pos: geom.V(1, 0), dead: true},
		{id: "out", pos: geom.V(11, 0)},
		{id: "b", pos: geom.V(-5, 0)},
	}}
	q := weapon.BuildQueue(geom.Zero, src.Opponents("hero"), 10, 2)
	assert.Equal(t, []string{"a", "b"}, ids(q))
}

func TestBuildQueue_EqualDistancesKeepScanOrder(t *testing.T) {
	src := &fakeTargets{list: []*fakeTarget{
		{id: "n", pos: geom.V(0, 3)},
		{id: "e", pos: geom.V(3, 0)},
		{id: "s", pos: geom.V(0, -3)},
		{id: "near", pos: geom.V(1, 0)},
	}}
	q := weapon.BuildQueue(geom.Zero, src.Opponents("hero"), 10, 10)
	assert.Equal(t, []string{"near", "n", "e", "s"}, ids(q))
}

func TestBuildQueue_NonPositiveLimit(t *testing.T) {
	src := &fakeTargets{list: []*fakeTarget{{id: "a", pos: geom.V(1, 0)}}}
	assert.Empty(t, weapon.BuildQueue(geom.Zero, src.Opponents("hero"), 10, 0))
}

func TestBuildQueue_Property_BoundedAndOrdered(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(rt, "n")
		src := &fakeTargets{}
		for i := 0; i < n; i++ {
			src.list = append(src.list, &fakeTarget{
				id:  string(rune('a' + i)),
				pos: geom.V(rapid.Float64Range(-20, 20).Draw(rt, "x"), rapid.Float64Range(-20, 20).Draw(rt, "y")),
			})
		}
		limit := rapid.IntRange(0, 8).Draw(rt, "limit")
		maxRange := rapid.Float64Range(0, 25).Draw(rt, "range")

		q := weapon.BuildQueue(geom.Zero, src.Opponents("hero"), maxRange, limit)
		assert.LessOrEqual(rt, len(q), limit)
		prev := -1.0
		for _, tgt := range q {
			d := tgt.Position().Len()
			assert.LessOrEqual(rt, d, maxRange)
			assert.GreaterOrEqual(rt, d, prev)
			prev = d
		}
	})
}

func TestEffectFor_Tiers(t *testing.T) {
	p := weapon.ContinuousThrustParams{ShortEffect: "s", MediumEffect: "m", LongEffect: "l"}
	assert.Equal(t, "s", weapon.EffectFor(p, 4))
	assert.Equal(t, "m", weapon.EffectFor(p, 4.01))
	assert.Equal(t, "m", weapon.EffectFor(p, 9))
	assert.Equal(t, "l", weapon.EffectFor(p, 9.5))

	p.ShortEffect = ""
	assert.Equal(t, "m", weapon.EffectFor(p, 1), "unset tier falls through")
}

const rapierYAML = `
id: rapier
name: Rapier
damage: 12
damage_type: physical
element: lightning
click: thrust
hold: continuous_thrust
position_offset: {x: 0.8, y: 0}
hit_radius: 0.5
continuous_thrust:
  range: 9
  limit: 4
animations:
  thrust:
    prefab: jab
    duration: 0.2
`

func TestLoadDefinitionFromBytes_OverlaysDefaults(t *testing.T) {
	def, err := weapon.LoadDefinitionFromBytes([]byte(rapierYAML))
	require.NoError(t, err)
	assert.Equal(t, "rapier", def.ID)
	assert.Equal(t, 12.0, def.Damage)
	assert.Equal(t, damage.Physical, def.DamageType)
	assert.Equal(t, damage.Lightning, def.Element)
	assert.Equal(t, weapon.ModeThrust, def.Click)
	assert.Equal(t, weapon.ModeContinuousThrust, def.Hold)
	assert.Equal(t, geom.V(0.8, 0), def.PositionOffset)
	assert.Equal(t, 9.0, def.ContinuousThrust.Range)
	assert.Equal(t, 4, def.ContinuousThrust.Limit)
	assert.Equal(t, 25.0, def.ContinuousThrust.Speed)
	assert.Equal(t, 180.0, def.Swing.Degrees)
	require.NotNil(t, def.Animations.Thrust)
	assert.Equal(t, "jab", def.Animations.Thrust.Prefab)
	assert.Nil(t, def.Animations.Swing)
}

func TestLoadDefinitionFromBytes_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing id":    "name: x\n",
		"bad motion":    "id: x\nclick: pirouette\n",
		"idle click":    "id: x\nclick: idle\n",
		"bad density":   "id: x\nheavy_thrust:\n  particle_density: 2\n",
		"unknown field": "id: x\nweight: 3\n",
		"zero speed":    "id: x\ncontinuous_thrust:\n  speed: 0\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := weapon.LoadDefinitionFromBytes([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadDefinitions_Dir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rapier.yaml"), []byte(rapierYAML), 0o644))
	defs, err := weapon.LoadDefinitions(dir)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "rapier", defs[0].ID)
}

func TestParseMode(t *testing.T) {
	m, err := weapon.ParseMode("Heavy-Thrust")
	require.NoError(t, err)
	assert.Equal(t, weapon.ModeHeavyThrust, m)
	assert.Equal(t, "continuous_thrust", weapon.ModeContinuousThrust.String())
	_, err = weapon.ParseMode("kick")
	assert.Error(t, err)
}
