package arena

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bladecore/internal/content"
	"github.com/cory-johannsen/bladecore/internal/game/dice"
	"github.com/cory-johannsen/bladecore/internal/game/weapon"
)

// Match plays an encounter script against an arena: it spawns the
// participants, feeds their timed inputs in, and stops at the encounter's
// duration or once the fight is decided.
type Match struct {
	enc      *content.Encounter
	arena    *Arena
	logger   *zap.Logger
	entities map[string]*Entity
	next     int
	done     bool
	// contested is set when the encounter starts with two or more teams.
	contested bool
}

// NewMatch builds an arena for enc from the definitions in lib. A non-zero
// encounter seed replaces opts.Source with a deterministic one.
//
// Precondition: enc must have passed Validate.
// Postcondition: Returns a match at time 0 with every participant spawned in
// file order, or an error listing every unresolved reference.
func NewMatch(lib *content.Library, enc *content.Encounter, opts Options) (*Match, error) {
	if err := lib.CheckEncounter(enc); err != nil {
		return nil, fmt.Errorf("arena: match %q: %w", enc.ID, err)
	}
	if enc.Seed != 0 {
		opts.Source = dice.NewSeededSource(enc.Seed)
	}
	opts.RichManaZone = opts.RichManaZone || enc.RichManaZone
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	opts.Logger = opts.Logger.With(zap.String("encounter", enc.ID))

	m := &Match{
		enc:      enc,
		arena:    New(opts),
		logger:   opts.Logger,
		entities: make(map[string]*Entity, len(enc.Participants)),
	}
	var errs []error
	teams := make(map[string]bool)
	for _, p := range enc.Participants {
		teams[p.Team] = true
		f := Fighter{
			Name:     p.ID,
			Team:     p.Team,
			Template: lib.Template(p.Template),
			Position: p.Position,
			Aim:      p.Aim,
			Slots:    p.Slots,
		}
		if p.Style != "" {
			f.Style = lib.Style(p.Style)
		}
		for _, id := range p.Weapons() {
			f.Weapons = append(f.Weapons, lib.Weapon(id))
		}
		e, err := m.arena.Spawn(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m.entities[p.ID] = e
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("arena: match %q: %w", enc.ID, err)
	}
	m.contested = len(teams) > 1
	return m, nil
}

// Arena returns the match's world.
func (m *Match) Arena() *Arena { return m.arena }

// Entity returns the entity spawned for participant id, or nil.
func (m *Match) Entity(id string) *Entity { return m.entities[id] }

// Done reports whether the match has ended.
func (m *Match) Done() bool { return m.done }

// Step applies every input due by the current time, then advances the arena
// by dt.
//
// Postcondition: Returns false once the encounter duration has elapsed or at
// most one team remains in a fight that began with several; later calls do
// nothing.
func (m *Match) Step(dt float64) bool {
	if m.done {
		return false
	}
	now := m.arena.Elapsed()
	for m.next < len(m.enc.Events) && m.enc.Events[m.next].At <= now {
		m.apply(m.enc.Events[m.next])
		m.next++
	}
	m.arena.Tick(dt)
	if m.arena.Elapsed() >= m.enc.Duration || (m.contested && m.arena.Decided()) {
		m.done = true
		m.logger.Info("match finished",
			zap.Float64("elapsed", m.arena.Elapsed()),
			zap.Int("ticks", m.arena.Ticks()),
			zap.String("winner", m.arena.Summary().Winner),
		)
	}
	return !m.done
}

// RunToEnd steps the match by dt without a wall clock until it ends.
//
// Precondition: dt > 0.
func (m *Match) RunToEnd(dt float64) Summary {
	if dt <= 0 {
		return m.arena.Summary()
	}
	for m.Step(dt) {
	}
	return m.arena.Summary()
}

func (m *Match) apply(ev content.Event) {
	e := m.entities[ev.Participant]
	if e == nil {
		return
	}
	var ok bool
	switch ev.Action {
	case content.ActionBegin:
		ok = e.BeginUse(ev.Slot)
	case content.ActionRelease:
		ok = e.ReleaseUse(ev.Slot)
	case content.ActionAim:
		e.Aim(ev.Point)
		ok = true
	case content.ActionSprint:
		ok = e.Combatant().StartSprint()
	case content.ActionStopSprint:
		e.Combatant().StopSprint()
		ok = true
	case content.ActionAllocate:
		ok = e.Combatant().AddStatPointByName(ev.Stat)
	case content.ActionPurity:
		ok = e.Alive()
		e.Combatant().AddPurity(ev.Amount)
	case content.ActionCorruption:
		ok = e.Alive()
		e.Combatant().AddCorruption(ev.Amount)
	case content.ActionEnterRichZone:
		e.Combatant().SetInRichManaZone(true)
		ok = true
	case content.ActionLeaveRichZone:
		e.Combatant().SetInRichManaZone(false)
		ok = true
	}
	m.logger.Debug("input",
		zap.String("participant", ev.Participant),
		zap.String("action", string(ev.Action)),
		zap.Stringer("slot", ev.Slot),
		zap.Float64("at", ev.At),
		zap.Bool("accepted", ok),
	)
}

// Summary snapshots the match's arena.
func (m *Match) Summary() Summary { return m.arena.Summary() }

// Weapon returns participant id's machine for weapon defID, or nil.
func (m *Match) Weapon(id, defID string) *weapon.Machine {
	e := m.entities[id]
	if e == nil {
		return nil
	}
	for _, w := range e.weapons {
		if w.Definition().ID == defID {
			return w
		}
	}
	return nil
}
