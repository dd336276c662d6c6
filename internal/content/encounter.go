package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/bladecore/internal/game/combatant"
	"github.com/cory-johannsen/bladecore/internal/game/geom"
	"github.com/cory-johannsen/bladecore/internal/game/item"
	"github.com/cory-johannsen/bladecore/internal/game/resource"
)

// Action is an input event kind in an encounter script.
type Action string

const (
	ActionBegin      Action = "begin"
	ActionRelease    Action = "release"
	ActionAim        Action = "aim"
	ActionSprint     Action = "sprint"
	ActionStopSprint Action = "stop_sprint"
	// ActionAllocate spends one stat point on the event's Stat.
	ActionAllocate Action = "allocate"
	// ActionPurity and ActionCorruption shift the meter by the event's Amount.
	ActionPurity     Action = "purity"
	ActionCorruption Action = "corruption"
	// ActionEnterRichZone and ActionLeaveRichZone toggle rich mana regeneration.
	ActionEnterRichZone Action = "enter_rich_zone"
	ActionLeaveRichZone Action = "leave_rich_zone"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionBegin, ActionRelease, ActionAim, ActionSprint, ActionStopSprint,
		ActionAllocate, ActionPurity, ActionCorruption,
		ActionEnterRichZone, ActionLeaveRichZone:
		return true
	}
	return false
}

// Binding is one click or hold action of a slot: what it costs and which of
// the participant's weapons it activates.
type Binding struct {
	Cost   resource.Cost
	Weapon string
}

// Slot is a participant's loadout for one use slot.
type Slot struct {
	Click Binding
	Hold  Binding
}

// Participant is one fighter placed into an encounter.
type Participant struct {
	ID       string
	Template string
	Team     string
	Position geom.Vec2
	Aim      geom.Vec2
	Style    string
	Slots    map[item.Slot]Slot
}

// Weapons returns the distinct weapon ids bound in p's slots, in slot order
// with click before hold.
func (p *Participant) Weapons() []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range []item.Slot{item.SlotPrimary, item.SlotSecondary} {
		slot, ok := p.Slots[s]
		if !ok {
			continue
		}
		for _, id := range []string{slot.Click.Weapon, slot.Hold.Weapon} {
			if id != "" && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// Event is one timed input in an encounter script.
type Event struct {
	At          float64
	Participant string
	Action      Action
	Slot        item.Slot
	Point       geom.Vec2
	// Stat names the attribute an allocate event raises.
	Stat string
	// Amount is the meter shift of a purity or corruption event.
	Amount float64
}

// Encounter is a scripted fight: who takes part, which inputs they make and
// when, and how long the simulation runs.
type Encounter struct {
	ID           string
	Name         string
	Seed         uint64
	Duration     float64
	RichManaZone bool
	Participants []*Participant
	// Events are ordered by At; events sharing a time keep file order.
	Events []Event
}

// Participant returns the participant with id, or nil.
func (e *Encounter) Participant(id string) *Participant {
	for _, p := range e.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

type yamlBinding struct {
	Resource   resource.Kind `yaml:"resource"`
	Cost       float64       `yaml:"cost"`
	Percentage bool          `yaml:"percentage"`
	Weapon     string        `yaml:"weapon"`
}

type yamlSlot struct {
	Weapon string      `yaml:"weapon"`
	Click  yamlBinding `yaml:"click"`
	Hold   yamlBinding `yaml:"hold"`
}

type yamlParticipant struct {
	ID       string              `yaml:"id"`
	Template string              `yaml:"template"`
	Team     string              `yaml:"team"`
	Position geom.Vec2           `yaml:"position"`
	Aim      *geom.Vec2          `yaml:"aim"`
	Style    string              `yaml:"style"`
	Slots    map[string]yamlSlot `yaml:"slots"`
}

type yamlEvent struct {
	At          float64   `yaml:"at"`
	Participant string    `yaml:"participant"`
	Action      Action    `yaml:"action"`
	Slot        string    `yaml:"slot"`
	Point       geom.Vec2 `yaml:"point"`
	Stat        string    `yaml:"stat"`
	Amount      float64   `yaml:"amount"`
}

type yamlEncounter struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Seed         uint64            `yaml:"seed"`
	Duration     float64           `yaml:"duration"`
	RichManaZone bool              `yaml:"rich_mana_zone"`
	Participants []yamlParticipant `yaml:"participants"`
	Events       []yamlEvent       `yaml:"events"`
}

// LoadEncounterFromBytes parses and validates an encounter from YAML bytes.
//
// Precondition: data must be YAML conforming to the encounter schema.
// Postcondition: Returns a validated Encounter with events sorted by time, or
// a non-nil error.
func LoadEncounterFromBytes(data []byte) (*Encounter, error) {
	var raw yamlEncounter
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing encounter YAML: %w", err)
	}
	enc, err := convertEncounter(raw)
	if err != nil {
		return nil, err
	}
	if err := enc.Validate(); err != nil {
		return nil, fmt.Errorf("validating encounter: %w", err)
	}
	return enc, nil
}

// LoadEncounters reads every *.yaml / *.yml file in dir as an encounter.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all encounters or the first error, naming the file.
func LoadEncounters(dir string) ([]*Encounter, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading encounter dir %q: %w", dir, err)
	}
	var out []*Encounter
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		enc, err := LoadEncounterFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		out = append(out, enc)
	}
	return out, nil
}

// convertEncounter turns the parsed YAML into domain types. A slot-level
// weapon is the default for both of its bindings.
func convertEncounter(raw yamlEncounter) (*Encounter, error) {
	enc := &Encounter{
		ID:           raw.ID,
		Name:         raw.Name,
		Seed:         raw.Seed,
		Duration:     raw.Duration,
		RichManaZone: raw.RichManaZone,
	}
	for _, yp := range raw.Participants {
		p := &Participant{
			ID:       yp.ID,
			Template: yp.Template,
			Team:     yp.Team,
			Position: yp.Position,
			Aim:      yp.Position.Add(geom.V(1, 0)),
			Style:    yp.Style,
			Slots:    make(map[item.Slot]Slot, len(yp.Slots)),
		}
		if yp.Aim != nil {
			p.Aim = *yp.Aim
		}
		for name, ys := range yp.Slots {
			slot, err := item.ParseSlot(name)
			if err != nil {
				return nil, fmt.Errorf("participant %q: %w", yp.ID, err)
			}
			p.Slots[slot] = Slot{
				Click: convertBinding(ys.Click, ys.Weapon),
				Hold:  convertBinding(ys.Hold, ys.Weapon),
			}
		}
		enc.Participants = append(enc.Participants, p)
	}
	for i, ye := range raw.Events {
		ev := Event{
			At:          ye.At,
			Participant: ye.Participant,
			Action:      ye.Action,
			Point:       ye.Point,
			Stat:        ye.Stat,
			Amount:      ye.Amount,
		}
		if ye.Slot != "" {
			slot, err := item.ParseSlot(ye.Slot)
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", i, err)
			}
			ev.Slot = slot
		}
		enc.Events = append(enc.Events, ev)
	}
	sort.SliceStable(enc.Events, func(i, j int) bool { return enc.Events[i].At < enc.Events[j].At })
	return enc, nil
}

func convertBinding(yb yamlBinding, slotWeapon string) Binding {
	b := Binding{
		Cost:   resource.Cost{Kind: yb.Resource, Amount: yb.Cost, Percentage: yb.Percentage},
		Weapon: yb.Weapon,
	}
	if b.Weapon == "" {
		b.Weapon = slotWeapon
	}
	return b
}

// Validate checks the encounter's internal consistency. References to
// templates, weapons and styles are checked by Library.
//
// Postcondition: Returns nil or every violation joined into one error.
func (e *Encounter) Validate() error {
	var errs []error
	if e.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if e.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be > 0, got %v", e.Duration))
	}
	if len(e.Participants) == 0 {
		errs = append(errs, errors.New("at least one participant is required"))
	}
	ids := make(map[string]bool, len(e.Participants))
	for i, p := range e.Participants {
		switch {
		case p.ID == "":
			errs = append(errs, fmt.Errorf("participant %d: id must not be empty", i))
		case ids[p.ID]:
			errs = append(errs, fmt.Errorf("participant %q: duplicate id", p.ID))
		}
		ids[p.ID] = true
		if p.Template == "" {
			errs = append(errs, fmt.Errorf("participant %q: template must not be empty", p.ID))
		}
		if p.Team == "" {
			errs = append(errs, fmt.Errorf("participant %q: team must not be empty", p.ID))
		}
		for slot, s := range p.Slots {
			for _, kb := range []struct {
				kind string
				b    Binding
			}{{"click", s.Click}, {"hold", s.Hold}} {
				kind, b := kb.kind, kb.b
				if err := b.Cost.Kind.Validate(); err != nil {
					errs = append(errs, fmt.Errorf("participant %q %s %s: %w", p.ID, slot, kind, err))
				}
				if b.Cost.Amount < 0 {
					errs = append(errs, fmt.Errorf("participant %q %s %s: cost must be >= 0", p.ID, slot, kind))
				}
			}
		}
	}
	for i, ev := range e.Events {
		if ev.At < 0 {
			errs = append(errs, fmt.Errorf("event %d: at must be >= 0", i))
		}
		if !ids[ev.Participant] {
			errs = append(errs, fmt.Errorf("event %d: unknown participant %q", i, ev.Participant))
		}
		switch {
		case !ev.Action.Valid():
			errs = append(errs, fmt.Errorf("event %d: unknown action %q", i, ev.Action))
		case ev.Action == ActionAllocate && !knownStat(ev.Stat):
			errs = append(errs, fmt.Errorf("event %d: allocate: unknown stat %q", i, ev.Stat))
		case (ev.Action == ActionPurity || ev.Action == ActionCorruption) && ev.Amount <= 0:
			errs = append(errs, fmt.Errorf("event %d: %s amount must be > 0", i, ev.Action))
		}
	}
	return errors.Join(errs...)
}

func knownStat(name string) bool {
	_, ok := combatant.ParseAttribute(name)
	return ok
}
