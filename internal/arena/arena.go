// Package arena is the headless world combatants fight in. It owns entity
// placement, the per-tick update order, contact resolution between blades and
// bodies, knockback motion, and the transient effects weapons spawn.
package arena

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/bladecore/internal/content"
	"github.com/cory-johannsen/bladecore/internal/game/combatant"
	"github.com/cory-johannsen/bladecore/internal/game/dice"
	"github.com/cory-johannsen/bladecore/internal/game/geom"
	"github.com/cory-johannsen/bladecore/internal/game/item"
	"github.com/cory-johannsen/bladecore/internal/game/weapon"
)

// DefaultDamping is the knockback velocity lost per second, as a fraction.
const DefaultDamping = 8.0

// DefaultKillExp is the experience awarded for landing a killing blow.
const DefaultKillExp = 50

// Options configures an Arena. Zero values fall back to stock behaviour.
type Options struct {
	Rules combatant.Rules
	Input item.Settings
	// Damping is the fraction of knockback velocity lost per second.
	Damping float64
	// KillExp is the experience a killing blow earns; negative disables it.
	KillExp      int
	RichManaZone bool
	Selector     weapon.MotionSelector
	Source       dice.Source
	Logger       *zap.Logger
}

// Fighter describes an entity to spawn.
type Fighter struct {
	Name     string
	Team     string
	Template *combatant.Template
	Position geom.Vec2
	Aim      geom.Vec2
	Style    *weapon.Style
	// Weapons are the definitions the fighter holds; slot bindings refer to
	// them by id.
	Weapons []*weapon.Definition
	Slots   map[item.Slot]content.Slot
}

// Arena is a simulation world.
//
// It is not safe for concurrent use; drive it from a single goroutine.
type Arena struct {
	opts    Options
	logger  *zap.Logger
	src     dice.Source
	effects *Effects

	entities []*Entity
	byID     map[string]*Entity
	elapsed  float64
	ticks    int
}

// New creates an empty arena.
//
// Postcondition: Returns an arena with no entities at time 0.
func New(opts Options) *Arena {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Source == nil {
		opts.Source = dice.NewCryptoSource()
	}
	if opts.Damping <= 0 {
		opts.Damping = DefaultDamping
	}
	if opts.KillExp == 0 {
		opts.KillExp = DefaultKillExp
	}
	if opts.Rules == (combatant.Rules{}) {
		opts.Rules = combatant.DefaultRules()
	}
	if opts.Input == (item.Settings{}) {
		opts.Input = item.DefaultSettings()
	}
	return &Arena{
		opts:    opts,
		logger:  opts.Logger,
		src:     opts.Source,
		effects: NewEffects(),
		byID:    make(map[string]*Entity),
	}
}

// Spawn places a fighter in the arena.
//
// Precondition: f.Name and f.Team must be non-empty; every weapon a slot
// binds must be among f.Weapons.
// Postcondition: Returns the new entity, appended to the spawn order, or an
// error describing every problem with f.
func (a *Arena) Spawn(f Fighter) (*Entity, error) {
	defs := make(map[string]*weapon.Definition, len(f.Weapons))
	var errs []error
	if f.Name == "" {
		errs = append(errs, errors.New("fighter name must not be empty"))
	}
	if f.Team == "" {
		errs = append(errs, fmt.Errorf("fighter %q: team must not be empty", f.Name))
	}
	for _, d := range f.Weapons {
		if _, dup := defs[d.ID]; dup {
			errs = append(errs, fmt.Errorf("fighter %q: weapon %q listed twice", f.Name, d.ID))
		}
		defs[d.ID] = d
	}
	for slot, s := range f.Slots {
		for _, id := range []string{s.Click.Weapon, s.Hold.Weapon} {
			if id != "" && defs[id] == nil {
				errs = append(errs, fmt.Errorf("fighter %q %s: weapon %q not held", f.Name, slot, id))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("arena: spawn: %w", err)
	}

	id := uuid.NewString()
	e := &Entity{
		id:       id,
		name:     f.Name,
		team:     f.Team,
		position: f.Position,
		aim:      f.Aim,
		styles:   weapon.NewStyleBook(f.Style),
	}
	logger := a.logger.With(zap.String("entity", f.Name))
	if f.Template != nil {
		e.c = combatant.NewFromTemplate(id, f.Template, a.opts.Rules, logger)
	} else {
		e.c = combatant.New(id, f.Name, a.opts.Rules, logger)
	}
	e.c.SetBody(e)
	e.c.SetInRichManaZone(a.opts.RichManaZone)
	e.user = item.NewUser(e.c, a.opts.Input, logger)
	e.ledger = a.credit

	machines := make(map[string]*weapon.Machine, len(f.Weapons))
	for _, d := range f.Weapons {
		m := weapon.NewMachine(*d, weapon.Deps{
			Wielder:  e,
			Aim:      e,
			Targets:  a,
			Spawner:  a.effects,
			Selector: a.opts.Selector,
			Source:   a.src,
			Logger:   logger,
		})
		m.FollowStyles(e.styles)
		e.c.AttachSkill(m)
		machines[d.ID] = m
		e.weapons = append(e.weapons, m)
	}
	for slot, s := range f.Slots {
		e.user.Bind(slot, item.SlotBindings{
			Click: bindingFor(s.Click, machines),
			Hold:  bindingFor(s.Hold, machines),
		})
	}

	a.entities = append(a.entities, e)
	a.byID[id] = e
	a.logger.Debug("spawned",
		zap.String("entity", f.Name),
		zap.String("id", id),
		zap.String("team", f.Team),
		zap.Int("weapons", len(e.weapons)),
	)
	return e, nil
}

func bindingFor(b content.Binding, machines map[string]*weapon.Machine) item.Binding {
	out := item.Binding{Cost: b.Cost}
	if m, ok := machines[b.Weapon]; ok {
		out.Target = m
	}
	return out
}

// Entity returns the entity with id, or nil.
func (a *Arena) Entity(id string) *Entity { return a.byID[id] }

// Entities returns every entity in spawn order.
func (a *Arena) Entities() []*Entity { return a.entities }

// Effects returns the arena's live effect registry.
func (a *Arena) Effects() *Effects { return a.effects }

// Elapsed returns the simulated seconds since the arena was created.
func (a *Arena) Elapsed() float64 { return a.elapsed }

// Ticks returns how many ticks have run.
func (a *Arena) Ticks() int { return a.ticks }

// Opponents returns every entity not on the team of the entity with id of, in
// spawn order. An unknown id has no opponents.
func (a *Arena) Opponents(of string) []weapon.Target {
	self := a.byID[of]
	if self == nil {
		return nil
	}
	var out []weapon.Target
	for _, e := range a.entities {
		if e.team != self.team {
			out = append(out, e)
		}
	}
	return out
}

// Tick advances the world by dt seconds. Order: combatant pools, input
// slots, weapon motions, blade contact, knockback movement, effect expiry.
//
// Precondition: dt >= 0.
func (a *Arena) Tick(dt float64) {
	if dt < 0 {
		return
	}
	a.elapsed += dt
	a.ticks++

	for _, e := range a.entities {
		e.c.Tick(dt)
	}
	for _, e := range a.entities {
		e.tickInput(dt)
	}
	for _, e := range a.entities {
		e.tickWeapons(dt)
	}
	a.resolveContacts()
	for _, e := range a.entities {
		e.integrate(dt, a.opts.Damping)
	}
	a.effects.Tick(dt)
}

func (a *Arena) resolveContacts() {
	for _, e := range a.entities {
		if !e.Alive() {
			continue
		}
		for _, w := range e.weapons {
			if !w.HitVolumeActive() {
				continue
			}
			for _, o := range a.Opponents(e.id) {
				if o.Alive() && w.InReach(o.Position()) {
					w.Contact(o)
				}
			}
		}
	}
}

func (a *Arena) credit(attackerID string, dealt int, killed bool) {
	attacker := a.byID[attackerID]
	if attacker == nil {
		return
	}
	attacker.damageDealt += dealt
	if !killed {
		return
	}
	attacker.kills++
	if a.opts.KillExp > 0 {
		attacker.c.GainExp(a.opts.KillExp)
	}
	a.logger.Debug("kill",
		zap.String("entity", attacker.name),
		zap.Int("kills", attacker.kills),
		zap.Int("level", attacker.c.Level()),
	)
}

// Decided reports whether at most one team still has a living member.
func (a *Arena) Decided() bool {
	return len(a.livingTeams()) <= 1
}

func (a *Arena) livingTeams() []string {
	var teams []string
	seen := make(map[string]bool)
	for _, e := range a.entities {
		if e.Alive() && !seen[e.team] {
			seen[e.team] = true
			teams = append(teams, e.team)
		}
	}
	return teams
}

// Standing is one entity's state in a Summary.
type Standing struct {
	Name        string
	Team        string
	Alive       bool
	Health      float64
	MaxHealth   float64
	Level       int
	HitsTaken   int
	DamageTaken int
	DamageDealt int
	Kills       int
	Exp         int
}

// Summary is a snapshot of a fight's outcome.
type Summary struct {
	Elapsed float64
	Ticks   int
	// Winner is the only team with living members, or empty when the fight
	// is undecided or nobody survived.
	Winner    string
	Standings []Standing
	Effects   int
}

// Summary snapshots the arena.
func (a *Arena) Summary() Summary {
	s := Summary{Elapsed: a.elapsed, Ticks: a.ticks, Effects: a.effects.Spawned()}
	if teams := a.livingTeams(); len(teams) == 1 {
		s.Winner = teams[0]
	}
	for _, e := range a.entities {
		s.Standings = append(s.Standings, Standing{
			Name:        e.name,
			Team:        e.team,
			Alive:       e.Alive(),
			Health:      e.c.Health().Current(),
			MaxHealth:   e.c.Health().Max(),
			Level:       e.c.Level(),
			HitsTaken:   e.hitsTaken,
			DamageTaken: e.damageTaken,
			DamageDealt: e.damageDealt,
			Kills:       e.kills,
			Exp:         e.c.Exp(),
		})
	}
	return s
}
