package arena_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/bladecore/internal/arena"
	"github.com/cory-johannsen/bladecore/internal/content"
	"github.com/cory-johannsen/bladecore/internal/game/combatant"
	"github.com/cory-johannsen/bladecore/internal/game/dice"
	"github.com/cory-johannsen/bladecore/internal/game/weapon"
	"github.com/cory-johannsen/bladecore/internal/scripting"
)

const sparringYAML = `
id: sparring
seed: 9
duration: 1
participants:
  - id: hero
    template: knight
    team: blue
    aim: {x: 1, y: 0}
    slots:
      primary:
        weapon: rapier
        click: {resource: stamina, cost: 2}
  - id: dummy
    template: knight
    team: red
    position: {x: 1.5, y: 0}
events:
  - {at: 0, participant: hero, action: begin, slot: primary}
  - {at: 0.125, participant: hero, action: release, slot: primary}
  - {at: 0.25, participant: hero, action: sprint}
`

func sparringLibrary(t *testing.T, encYAML string) (*content.Library, *content.Encounter) {
	t.Helper()
	lib := content.NewLibrary()
	tmpl, err := combatant.LoadTemplateFromBytes([]byte("id: knight\nname: Knight\nhealth: 100\n"))
	require.NoError(t, err)
	require.NoError(t, lib.RegisterTemplate(tmpl))
	def, err := weapon.LoadDefinitionFromBytes([]byte("id: rapier\nclick: thrust\n"))
	require.NoError(t, err)
	require.NoError(t, lib.RegisterWeapon(def))
	enc, err := content.LoadEncounterFromBytes([]byte(encYAML))
	require.NoError(t, err)
	require.NoError(t, lib.RegisterEncounter(enc))
	return lib, enc
}

func TestMatch_PlaysScriptToDuration(t *testing.T) {
	lib, enc := sparringLibrary(t, sparringYAML)
	m, err := arena.NewMatch(lib, enc, arena.Options{})
	require.NoError(t, err)

	assert.True(t, m.Step(0.125))
	assert.True(t, m.Step(0.125), "release fires the click thrust")
	assert.Equal(t, 90.0, m.Entity("dummy").Combatant().Health().Current())
	assert.Equal(t, 8.25, m.Entity("hero").Combatant().Stamina().Current(), "paid before the tick, then regenerated")

	m.Step(0.125)
	assert.True(t, m.Entity("hero").Combatant().IsSprinting())

	s := m.RunToEnd(0.125)
	assert.True(t, m.Done())
	assert.Equal(t, 8, s.Ticks)
	assert.Equal(t, 1.0, s.Elapsed)
	assert.Empty(t, s.Winner)
	assert.Equal(t, "hero", s.Standings[0].Name)
	assert.Equal(t, 10, s.Standings[0].DamageDealt)
	assert.Equal(t, 10, s.Standings[1].DamageTaken)
	assert.False(t, m.Step(0.125), "finished matches stay finished")
	assert.NotNil(t, m.Weapon("hero", "rapier"))
	assert.Nil(t, m.Weapon("hero", "axe"))
	assert.Nil(t, m.Weapon("nobody", "rapier"))
}

const growthYAML = `
id: growth
seed: 4
duration: 0.5
participants:
  - {id: hero, template: knight, team: blue}
  - {id: dummy, template: knight, team: red, position: {x: 5, y: 0}}
events:
  - {at: 0, participant: hero, action: allocate, stat: dexterity}
  - {at: 0, participant: hero, action: purity, amount: 30}
  - {at: 0, participant: dummy, action: corruption, amount: 20}
  - {at: 0, participant: hero, action: enter_rich_zone}
  - {at: 0.125, participant: hero, action: leave_rich_zone}
`

func TestMatch_GrowthAndZoneEvents(t *testing.T) {
	lib, enc := sparringLibrary(t, growthYAML)
	m, err := arena.NewMatch(lib, enc, arena.Options{})
	require.NoError(t, err)

	hero := m.Entity("hero").Combatant()
	dummy := m.Entity("dummy").Combatant()
	points := hero.StatPoints()

	m.Step(0.125)
	assert.Equal(t, 1, hero.Attributes().Dexterity)
	assert.Equal(t, points-1, hero.StatPoints())
	assert.Equal(t, 0.5, hero.CritChance())
	assert.Equal(t, 30.0, hero.Purity())
	assert.Equal(t, 20.0, dummy.Corruption())
	assert.Equal(t, 80.0, dummy.Health().Max())
	assert.True(t, hero.InRichManaZone())

	m.Step(0.125)
	assert.False(t, hero.InRichManaZone())
}

func TestMatch_EndsWhenDecided(t *testing.T) {
	lib, enc := sparringLibrary(t, sparringYAML)
	m, err := arena.NewMatch(lib, enc, arena.Options{})
	require.NoError(t, err)

	m.Entity("dummy").TakeDamage(combatant.Hit{Amount: 500})
	assert.False(t, m.Step(0.125))
	assert.Equal(t, "blue", m.Summary().Winner)
	assert.Equal(t, 1, m.Arena().Ticks())
}

func TestMatch_SoloEncounterRunsFullDuration(t *testing.T) {
	lib, enc := sparringLibrary(t, `
id: solo
duration: 0.5
participants:
  - {id: hero, template: knight, team: blue}
`)
	m, err := arena.NewMatch(lib, enc, arena.Options{})
	require.NoError(t, err)
	s := m.RunToEnd(0.125)
	assert.Equal(t, 4, s.Ticks)
	assert.Equal(t, "blue", s.Winner)
}

func TestMatch_RejectsDanglingReferences(t *testing.T) {
	lib, _ := sparringLibrary(t, sparringYAML)
	enc, err := content.LoadEncounterFromBytes([]byte(`
id: broken
duration: 1
participants:
  - {id: hero, template: ogre, team: blue}
`))
	require.NoError(t, err)
	_, err = arena.NewMatch(lib, enc, arena.Options{})
	assert.ErrorContains(t, err, `unknown template "ogre"`)
}

func TestMatch_RunToEndIgnoresNonPositiveStep(t *testing.T) {
	lib, enc := sparringLibrary(t, sparringYAML)
	m, err := arena.NewMatch(lib, enc, arena.Options{})
	require.NoError(t, err)
	s := m.RunToEnd(0)
	assert.Zero(t, s.Ticks)
	assert.False(t, m.Done())
}

func TestRunner_DrivesUntilFinished(t *testing.T) {
	r := arena.NewRunner(5*time.Millisecond, nil)
	var calls atomic.Int64
	r.Register("a", func(dt float64) bool {
		assert.InDelta(t, 0.005, dt, 1e-12)
		return calls.Add(1) < 3
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, r.Run(ctx))
	assert.Equal(t, int64(3), calls.Load())
	assert.Zero(t, r.Len())
}

func TestRunner_StopsOnCancel(t *testing.T) {
	r := arena.NewRunner(5*time.Millisecond, nil)
	r.Register("forever", func(float64) bool { return true })
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Run(ctx), context.DeadlineExceeded)
	assert.Equal(t, 1, r.Len())
}

func TestRunner_Unregister(t *testing.T) {
	r := arena.NewRunner(time.Millisecond, nil)
	r.Register("a", func(float64) bool { return true })
	r.Unregister("a")
	assert.NoError(t, r.Run(context.Background()), "an empty runner returns at once")
}

func TestRunner_PanicsOnZeroInterval(t *testing.T) {
	assert.Panics(t, func() { arena.NewRunner(0, nil) })
}

func TestRunner_DrivesMatch(t *testing.T) {
	lib, enc := sparringLibrary(t, sparringYAML)
	m, err := arena.NewMatch(lib, enc, arena.Options{})
	require.NoError(t, err)

	r := arena.NewRunner(time.Millisecond, nil)
	r.Register(enc.ID, func(float64) bool { return m.Step(0.125) })
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Run(ctx))
	assert.True(t, m.Done())
	assert.Equal(t, 10, m.Summary().Standings[1].DamageTaken)
}

func TestMatch_ShippedEncountersPlayOut(t *testing.T) {
	root := filepath.Join("..", "..", "content")
	lib, err := content.Load(context.Background(), root, nil)
	require.NoError(t, err)
	mgr := scripting.NewManager(dice.NewSeededSource(5), zap.NewNop(), 0)
	defer mgr.Close()
	require.NoError(t, mgr.LoadDir(filepath.Join(root, "scripts")))

	for _, id := range lib.EncounterIDs() {
		enc, _ := lib.Encounter(id)
		m, err := arena.NewMatch(lib, enc, arena.Options{Selector: mgr})
		require.NoError(t, err, id)
		s := m.RunToEnd(1.0 / 60)
		assert.True(t, m.Done(), id)
		assert.LessOrEqual(t, s.Elapsed, enc.Duration+2.0/60, id)
		assert.Len(t, s.Standings, len(enc.Participants), id)
	}
}
