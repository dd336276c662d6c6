package combatant_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/bladecore/internal/game/combatant"
	"github.com/cory-johannsen/bladecore/internal/game/damage"
)

func TestGainExp_LevelsUp(t *testing.T) {
	c, rec := newFighter(t)
	c.GainExp(120)
	assert.Equal(t, 2, c.Level())
	assert.Equal(t, 20, c.Exp())
	assert.Equal(t, 110, c.ExpToNext())
	assert.Equal(t, 18, c.StatPoints())
	ups := rec.OfKind(combatant.EventLevelUp)
	require.Len(t, ups, 1)
	assert.Equal(t, 2.0, ups[0].Value)
}

func TestGainExp_PendingLevelResolvesOnTick(t *testing.T) {
	c, _ := newFighter(t)
	c.GainExp(250)
	assert.Equal(t, 2, c.Level())
	c.Tick(0.1)
	assert.Equal(t, 3, c.Level())
	assert.Equal(t, 40, c.Exp())
}

func TestAddStatPoint_Pools(t *testing.T) {
	c, _ := newFighter(t)
	require.True(t, c.AddStatPoint(combatant.AttrHealth))
	require.True(t, c.AddStatPoint(combatant.AttrMana))
	require.True(t, c.AddStatPoint(combatant.AttrStamina))
	assert.Equal(t, 20.0, c.Health().Max())
	assert.Equal(t, 15.0, c.Mana().Max())
	assert.Equal(t, 15.0, c.Stamina().Max())
	assert.Equal(t, 12, c.StatPoints())
}

func TestAddStatPoint_HealthSurvivesCorruption(t *testing.T) {
	c, _ := newFighter(t)
	require.True(t, c.AddStatPoint(combatant.AttrHealth))
	c.AddCorruption(40)
	assert.Equal(t, 12.0, c.Health().Max())
	c.AddPurity(40)
	assert.Equal(t, 20.0, c.Health().Max())
}

func TestAddStatPoint_AgilityRaisesSpeed(t *testing.T) {
	c, _ := newFighter(t)
	for i := 0; i < 12; i++ {
		require.True(t, c.AddStatPoint(combatant.AttrAgility))
	}
	assert.Equal(t, 12, c.Attributes().Agility)
	assert.Equal(t, 14.0, c.Speed())
}

func TestAddStatPoint_DexterityRaisesCrit(t *testing.T) {
	c, _ := newFighter(t)
	require.True(t, c.AddStatPointByName("Dexterity"))
	assert.Equal(t, 0.5, c.CritChance())
}

func TestAddStatPointByName_UnknownRejected(t *testing.T) {
	c, _ := newFighter(t)
	assert.False(t, c.AddStatPointByName("wisdom"))
	assert.Equal(t, 15, c.StatPoints())
}

func TestAddStatPoint_RequiresPoints(t *testing.T) {
	rules := combatant.DefaultRules()
	rules.StartingStatPoints = 0
	c := combatant.New("c", "C", rules, nil)
	assert.False(t, c.AddStatPoint(combatant.AttrStrength))
	assert.Equal(t, 0, c.Attributes().Strength)
}

func TestSpeed_Property_MonotonicInAgility(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(rt, "points")
		rules := combatant.DefaultRules()
		rules.StartingStatPoints = n
		c := combatant.New("c", "C", rules, nil)
		prev := c.Speed()
		for i := 0; i < n; i++ {
			require.True(rt, c.AddStatPoint(combatant.AttrAgility))
			assert.Greater(rt, c.Speed(), prev)
			prev = c.Speed()
		}
	})
}

const bruteYAML = `
id: brute
name: Brute
health: 30
health_regen: 0.5
stat_points: 0
attributes:
  strength: 4
  agility: 2
corruption: 50
profile:
  resistances:
    physical: 25
  weaknesses:
    fire: 50
`

func TestLoadTemplateFromBytes(t *testing.T) {
	tmpl, err := combatant.LoadTemplateFromBytes([]byte(bruteYAML))
	require.NoError(t, err)
	assert.Equal(t, "brute", tmpl.ID)
	assert.Equal(t, 30.0, tmpl.Health)
	assert.Equal(t, 4, tmpl.Attributes.Strength)

	c := combatant.NewFromTemplate("brute-1", tmpl, combatant.DefaultRules(), nil)
	assert.Equal(t, "Brute", c.Name())
	assert.Equal(t, 15.0, c.Health().Max())
	assert.Equal(t, 50.0, c.Corruption())
	assert.Equal(t, 0, c.StatPoints())
	assert.Equal(t, 5.0, c.Speed())
	assert.Equal(t, 25, c.Profile().Resistance(damage.AxisPhysical))
	assert.Equal(t, 50, c.Profile().Weakness(damage.AxisFire))
}

func TestLoadTemplateFromBytes_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing id":    "name: X\n",
		"missing name":  "id: x\n",
		"unknown field": "id: x\nname: X\nluck: 3\n",
		"both meters":   "id: x\nname: X\npurity: 5\ncorruption: 5\n",
		"bad axis":      "id: x\nname: X\nprofile:\n  resistances:\n    plasma: 5\n",
		"negative pool": "id: x\nname: X\nhealth: -1\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := combatant.LoadTemplateFromBytes([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadTemplates_Dir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brute.yaml"), []byte(bruteYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	tmpls, err := combatant.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, tmpls, 1)
	assert.Equal(t, "brute", tmpls[0].ID)
}

func TestLoadTemplates_MissingDir(t *testing.T) {
	_, err := combatant.LoadTemplates(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
