package arena

import (
	"github.com/cory-johannsen/bladecore/internal/game/combatant"
	"github.com/cory-johannsen/bladecore/internal/game/damage"
	"github.com/cory-johannsen/bladecore/internal/game/dice"
	"github.com/cory-johannsen/bladecore/internal/game/geom"
	"github.com/cory-johannsen/bladecore/internal/game/item"
	"github.com/cory-johannsen/bladecore/internal/game/weapon"
)

// Entity is one fighter placed in an arena: its combat state, where it
// stands, where it aims, the weapons it holds and how it is being pushed.
type Entity struct {
	id       string
	name     string
	team     string
	position geom.Vec2
	velocity geom.Vec2
	aim      geom.Vec2

	c       *combatant.Combatant
	user    *item.User
	weapons []*weapon.Machine
	styles  *weapon.StyleBook

	// ledger is the arena's damage tally; set at spawn.
	ledger func(attackerID string, dealt int, killed bool)

	hitsTaken   int
	damageTaken int
	damageDealt int
	kills       int
}

var (
	_ weapon.Wielder = (*Entity)(nil)
	_ weapon.Aimer   = (*Entity)(nil)
	_ weapon.Target  = (*Entity)(nil)
	_ weapon.Striker = (*Entity)(nil)
	_ combatant.Body = (*Entity)(nil)

	_ item.Readier = (*weapon.Machine)(nil)
)

// ID returns the entity's generated unique id.
func (e *Entity) ID() string { return e.id }

// Name returns the participant name the entity was spawned under.
func (e *Entity) Name() string { return e.name }

// Team returns the entity's team.
func (e *Entity) Team() string { return e.team }

// Position returns the entity's world position.
func (e *Entity) Position() geom.Vec2 { return e.position }

// SetPosition moves the entity. Weapons call this during a heavy thrust dash.
func (e *Entity) SetPosition(p geom.Vec2) { e.position = p }

// Velocity returns the entity's knockback velocity.
func (e *Entity) Velocity() geom.Vec2 { return e.velocity }

// AimPoint returns the world point the entity aims at.
func (e *Entity) AimPoint() geom.Vec2 { return e.aim }

// Combatant returns the entity's combat state.
func (e *Entity) Combatant() *combatant.Combatant { return e.c }

// Weapons returns the entity's weapons in loadout order.
func (e *Entity) Weapons() []*weapon.Machine { return e.weapons }

// Alive reports whether the entity can still be hit.
func (e *Entity) Alive() bool { return !e.c.IsDead() }

// TakeDamage routes a hit into the combatant and records the exchange.
func (e *Entity) TakeDamage(h combatant.Hit) int {
	if e.c.IsDead() {
		return e.c.TakeDamage(h)
	}
	dealt := e.c.TakeDamage(h)
	e.hitsTaken++
	e.damageTaken += dealt
	if e.ledger != nil {
		e.ledger(h.AttackerID, dealt, e.c.IsDead())
	}
	return dealt
}

// StrikeDamage scales the entity's weapon hits by its attributes and rolls
// for a critical.
func (e *Entity) StrikeDamage(base int, t damage.Type, src dice.Source) (int, bool) {
	return e.c.WeaponDamage(base, t, src)
}

// ApplyImpulse adds a knockback impulse to the entity's velocity.
func (e *Entity) ApplyImpulse(impulse geom.Vec2) { e.velocity = e.velocity.Add(impulse) }

// Aim points the entity at p.
func (e *Entity) Aim(p geom.Vec2) { e.aim = p }

// BeginUse presses slot.
//
// Postcondition: Returns false when the entity is dead or the slot rejects it.
func (e *Entity) BeginUse(slot item.Slot) bool {
	if !e.Alive() {
		return false
	}
	return e.user.BeginUse(slot)
}

// ReleaseUse releases slot.
//
// Postcondition: Returns false when the entity is dead or the slot was not held.
func (e *Entity) ReleaseUse(slot item.Slot) bool {
	if !e.Alive() {
		return false
	}
	return e.user.ReleaseUse(slot)
}

// SetStyle switches the swordsmanship style of every weapon the entity holds.
func (e *Entity) SetStyle(s *weapon.Style) { e.styles.Set(s) }

func (e *Entity) tickInput(dt float64) {
	if !e.Alive() {
		return
	}
	e.user.Tick(dt)
}

func (e *Entity) tickWeapons(dt float64) {
	for _, w := range e.weapons {
		if !e.Alive() {
			w.Cancel()
			continue
		}
		w.Tick(dt)
	}
}

// integrate moves the entity by its knockback velocity and bleeds the velocity
// off at damping per second.
func (e *Entity) integrate(dt, damping float64) {
	if e.velocity.IsZero() {
		return
	}
	e.position = e.position.Add(e.velocity.Scale(dt))
	keep := 1 - damping*dt
	if keep <= 0 {
		e.velocity = geom.Vec2{}
		return
	}
	e.velocity = e.velocity.Scale(keep)
	if e.velocity.Len() < restSpeed {
		e.velocity = geom.Vec2{}
	}
}

// restSpeed is the speed below which knockback stops.
const restSpeed = 0.01
