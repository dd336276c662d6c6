package weapon_test

import (
	"github.com/cory-johannsen/bladecore/internal/game/combatant"
	"github.com/cory-johannsen/bladecore/internal/game/damage"
	"github.com/cory-johannsen/bladecore/internal/game/dice"
	"github.com/cory-johannsen/bladecore/internal/game/geom"
	"github.com/cory-johannsen/bladecore/internal/game/weapon"
)

type fakeWielder struct {
	id  string
	pos geom.Vec2
}

func (w *fakeWielder) ID() string              { return w.id }
func (w *fakeWielder) Position() geom.Vec2     { return w.pos }
func (w *fakeWielder) SetPosition(p geom.Vec2) { w.pos = p }

// strikingWielder triples every hit and reports it as critical.
type strikingWielder struct {
	fakeWielder
	gotType damage.Type
}

func (w *strikingWielder) StrikeDamage(base int, t damage.Type, _ dice.Source) (int, bool) {
	w.gotType = t
	return base * 3, true
}

type fixedAim struct{ p geom.Vec2 }

func (a *fixedAim) AimPoint() geom.Vec2 { return a.p }

type fakeTarget struct {
	id   string
	pos  geom.Vec2
	dead bool
	hits []combatant.Hit
}

func (t *fakeTarget) ID() string          { return t.id }
func (t *fakeTarget) Position() geom.Vec2 { return t.pos }
func (t *fakeTarget) Alive() bool         { return !t.dead }
func (t *fakeTarget) TakeDamage(h combatant.Hit) int {
	t.hits = append(t.hits, h)
	return h.Amount
}

type fakeTargets struct{ list []*fakeTarget }

func (f *fakeTargets) Opponents(string) []weapon.Target {
	out := make([]weapon.Target, len(f.list))
	for i, t := range f.list {
		out[i] = t
	}
	return out
}

type recordingSpawner struct{ reqs []weapon.SpawnRequest }

func (s *recordingSpawner) Spawn(r weapon.SpawnRequest) { s.reqs = append(s.reqs, r) }

func (s *recordingSpawner) prefabs() []string {
	out := make([]string, len(s.reqs))
	for i, r := range s.reqs {
		out[i] = r.Prefab
	}
	return out
}

type stubSelector struct {
	motion string
	ok     bool
	calls  []weapon.StrikeContext
}

func (s *stubSelector) SelectMotion(_ string, ctx weapon.StrikeContext) (string, bool) {
	s.calls = append(s.calls, ctx)
	return s.motion, s.ok
}

type rig struct {
	wielder *fakeWielder
	aim     *fixedAim
	targets *fakeTargets
	spawner *recordingSpawner
	m       *weapon.Machine
}

// newRig builds a machine for a wielder at the origin aiming along +X.
func newRig(def weapon.Definition, targets ...*fakeTarget) *rig {
	r := &rig{
		wielder: &fakeWielder{id: "hero"},
		aim:     &fixedAim{p: geom.V(10, 0)},
		targets: &fakeTargets{list: targets},
		spawner: &recordingSpawner{},
	}
	r.m = weapon.NewMachine(def, weapon.Deps{
		Wielder: r.wielder,
		Aim:     r.aim,
		Targets: r.targets,
		Spawner: r.spawner,
	})
	return r
}

// runToIdle ticks until the machine is idle, at most max ticks.
func (r *rig) runToIdle(dt float64, max int) int {
	n := 0
	for !r.m.IsIdle() && n < max {
		r.m.Tick(dt)
		n++
	}
	return n
}

func testDefinition() weapon.Definition {
	def := weapon.DefaultDefinition()
	def.ID = "sword"
	def.Swing.Duration = 0.5
	def.Thrust.Duration = 0.5
	def.HeavyThrust.Duration = 1
	return def
}
