package content_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/bladecore/internal/content"
	"github.com/cory-johannsen/bladecore/internal/game/geom"
	"github.com/cory-johannsen/bladecore/internal/game/item"
	"github.com/cory-johannsen/bladecore/internal/game/resource"
)

const duelYAML = `
id: duel
name: Duel
seed: 42
duration: 5
participants:
  - id: hero
    template: knight
    team: blue
    position: {x: 0, y: 0}
    style: ironwind
    slots:
      primary:
        weapon: rapier
        click: {resource: stamina, cost: 2}
        hold: {resource: mana, cost: 50, percentage: true}
      secondary:
        click: {weapon: dagger}
  - id: brute
    template: knight
    team: red
    position: {x: 2, y: 0}
    aim: {x: -1, y: 0}
events:
  - {at: 1.5, participant: hero, action: release, slot: primary}
  - {at: 0.5, participant: hero, action: aim, point: {x: 2, y: 1}}
  - {at: 1.0, participant: hero, action: begin, slot: primary}
  - {at: 0.5, participant: hero, action: sprint}
`

const knightYAML = "id: knight\nname: Knight\nhealth: 20\n"

const rapierYAML = "id: rapier\nname: Rapier\ndamage: 6\n"

const daggerYAML = "id: dagger\nname: Dagger\ndamage: 3\n"

const styleYAML = "id: ironwind\nname: Iron Wind\nstrikes:\n  - type: swing\n  - type: thrust\n"

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func seedRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, content.CombatantsDir, "knight.yaml"), knightYAML)
	writeFile(t, filepath.Join(root, content.WeaponsDir, "rapier.yaml"), rapierYAML)
	writeFile(t, filepath.Join(root, content.WeaponsDir, "dagger.yaml"), daggerYAML)
	writeFile(t, filepath.Join(root, content.StylesDir, "ironwind.yaml"), styleYAML)
	writeFile(t, filepath.Join(root, content.EncountersDir, "duel.yaml"), duelYAML)
	return root
}

func TestLoadEncounterFromBytes(t *testing.T) {
	enc, err := content.LoadEncounterFromBytes([]byte(duelYAML))
	require.NoError(t, err)
	assert.Equal(t, "duel", enc.ID)
	assert.Equal(t, uint64(42), enc.Seed)
	assert.Equal(t, 5.0, enc.Duration)
	require.Len(t, enc.Participants, 2)

	hero := enc.Participant("hero")
	require.NotNil(t, hero)
	assert.Equal(t, geom.V(1, 0), hero.Aim, "aim defaults to one unit along +X")
	primary := hero.Slots[item.SlotPrimary]
	assert.Equal(t, "rapier", primary.Click.Weapon)
	assert.Equal(t, "rapier", primary.Hold.Weapon, "slot weapon is the binding default")
	assert.Equal(t, resource.Cost{Kind: resource.KindMana, Amount: 50, Percentage: true}, primary.Hold.Cost)
	assert.Equal(t, "dagger", hero.Slots[item.SlotSecondary].Click.Weapon)
	assert.Equal(t, []string{"rapier", "dagger"}, hero.Weapons())

	assert.Equal(t, geom.V(-1, 0), enc.Participant("brute").Aim)
	assert.Nil(t, enc.Participant("ghost"))
}

func TestLoadEncounterFromBytes_EventsSortedStable(t *testing.T) {
	enc, err := content.LoadEncounterFromBytes([]byte(duelYAML))
	require.NoError(t, err)
	var actions []content.Action
	for _, ev := range enc.Events {
		actions = append(actions, ev.Action)
	}
	assert.Equal(t, []content.Action{
		content.ActionAim, content.ActionSprint, content.ActionBegin, content.ActionRelease,
	}, actions)
	assert.Equal(t, geom.V(2, 1), enc.Events[0].Point)
}

func TestLoadEncounterFromBytes_Rejects(t *testing.T) {
	base := "id: e\nduration: 1\nparticipants:\n  - {id: a, template: t, team: x}\n"
	cases := map[string]string{
		"missing id":       "duration: 1\nparticipants:\n  - {id: a, template: t, team: x}\n",
		"zero duration":    "id: e\nparticipants:\n  - {id: a, template: t, team: x}\n",
		"no participants":  "id: e\nduration: 1\n",
		"duplicate":        base + "  - {id: a, template: t, team: y}\n",
		"missing team":     "id: e\nduration: 1\nparticipants:\n  - {id: a, template: t}\n",
		"unknown field":    base + "weather: rain\n",
		"bad slot":         "id: e\nduration: 1\nparticipants:\n  - id: a\n    template: t\n    team: x\n    slots:\n      tertiary: {weapon: w}\n",
		"bad resource":     "id: e\nduration: 1\nparticipants:\n  - id: a\n    template: t\n    team: x\n    slots:\n      primary: {click: {resource: gold}}\n",
		"negative cost":    "id: e\nduration: 1\nparticipants:\n  - id: a\n    template: t\n    team: x\n    slots:\n      primary: {click: {resource: mana, cost: -1}}\n",
		"unknown actor":    base + "events:\n  - {at: 0, participant: b, action: sprint}\n",
		"unknown action":   base + "events:\n  - {at: 0, participant: a, action: dance}\n",
		"negative time":    base + "events:\n  - {at: -1, participant: a, action: sprint}\n",
		"bad event slot":   base + "events:\n  - {at: 0, participant: a, action: begin, slot: third}\n",
		"unknown stat":     base + "events:\n  - {at: 0, participant: a, action: allocate, stat: luck}\n",
		"zero purity":      base + "events:\n  - {at: 0, participant: a, action: purity}\n",
		"negative taint":   base + "events:\n  - {at: 0, participant: a, action: corruption, amount: -3}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := content.LoadEncounterFromBytes([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ConcurrentDirectories(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	lib, err := content.Load(context.Background(), seedRoot(t), zap.New(core))
	require.NoError(t, err)

	tmpls, weapons, styles, encounters := lib.Counts()
	assert.Equal(t, 1, tmpls)
	assert.Equal(t, 2, weapons)
	assert.Equal(t, 1, styles)
	assert.Equal(t, 1, encounters)
	assert.NotNil(t, lib.Template("knight"))
	assert.Equal(t, 6.0, lib.Weapon("rapier").Damage)
	assert.NotNil(t, lib.Style("ironwind"))
	_, ok := lib.Encounter("duel")
	assert.True(t, ok)
	assert.Equal(t, []string{"duel"}, lib.EncounterIDs())
	assert.Equal(t, 1, logs.FilterMessage("content loaded").Len())
}

func TestLoad_MissingSubdirectoriesAreEmpty(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, content.WeaponsDir, "rapier.yaml"), rapierYAML)
	lib, err := content.Load(context.Background(), root, nil)
	require.NoError(t, err)
	tmpls, weapons, _, encounters := lib.Counts()
	assert.Zero(t, tmpls)
	assert.Equal(t, 1, weapons)
	assert.Zero(t, encounters)
}

func TestLoad_ErrorNamesFile(t *testing.T) {
	root := seedRoot(t)
	writeFile(t, filepath.Join(root, content.WeaponsDir, "broken.yaml"), "id: broken\nweight: 9\n")
	_, err := content.Load(context.Background(), root, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestLoad_DuplicateIDs(t *testing.T) {
	root := seedRoot(t)
	writeFile(t, filepath.Join(root, content.WeaponsDir, "rapier-copy.yaml"), rapierYAML)
	_, err := content.Load(context.Background(), root, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"rapier" already registered`)
}

func TestLoad_DanglingReferences(t *testing.T) {
	root := seedRoot(t)
	require.NoError(t, os.Remove(filepath.Join(root, content.WeaponsDir, "dagger.yaml")))
	require.NoError(t, os.Remove(filepath.Join(root, content.StylesDir, "ironwind.yaml")))
	_, err := content.Load(context.Background(), root, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown weapon "dagger"`)
	assert.Contains(t, err.Error(), `unknown style "ironwind"`)
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := content.Load(ctx, seedRoot(t), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLibrary_RegisterRejectsDuplicates(t *testing.T) {
	lib := content.NewLibrary()
	enc, err := content.LoadEncounterFromBytes([]byte(duelYAML))
	require.NoError(t, err)
	require.NoError(t, lib.RegisterEncounter(enc))
	assert.Error(t, lib.RegisterEncounter(enc))
	assert.Error(t, lib.CheckEncounter(enc), "nothing the encounter names is registered")
}

func TestLoad_ShippedContent(t *testing.T) {
	lib, err := content.Load(context.Background(), filepath.Join("..", "..", "content"), nil)
	require.NoError(t, err)
	templates, weapons, styles, encounters := lib.Counts()
	assert.Equal(t, 3, templates)
	assert.Equal(t, 3, weapons)
	assert.Equal(t, 2, styles)
	assert.Equal(t, 2, encounters)
	assert.Equal(t, []string{"chapel_skirmish", "courtyard_duel"}, lib.EncounterIDs())
}
