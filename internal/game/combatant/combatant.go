// Package combatant owns a fighter's resource pools, defensive profile,
// exhaustion locks and leveling counters, and is the sole entry point for
// inflicting damage.
package combatant

import (
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bladecore/internal/game/damage"
	"github.com/cory-johannsen/bladecore/internal/game/geom"
	"github.com/cory-johannsen/bladecore/internal/game/stat"
)

// Rules holds the tunables shared by every combatant built from the same config.
// Durations and rates are in seconds and units per second.
type Rules struct {
	BaseHealth         float64
	BaseMana           float64
	BaseStamina        float64
	BaseSpeed          float64
	HealthRegen        float64
	ManaRegen          float64
	RichManaRegen      float64
	StaminaRegen       float64
	StaminaDrain       float64
	ExhaustionDuration float64
	StartingStatPoints int
	BaseExp            int
	KnockbackForce     float64
}

// DefaultRules returns the stock tuning.
func DefaultRules() Rules {
	return Rules{
		BaseHealth:         10,
		BaseMana:           10,
		BaseStamina:        10,
		BaseSpeed:          3,
		HealthRegen:        0,
		ManaRegen:          2,
		RichManaRegen:      7,
		StaminaRegen:       2,
		StaminaDrain:       5,
		ExhaustionDuration: 7,
		StartingStatPoints: 15,
		BaseExp:            100,
		KnockbackForce:     10,
	}
}

// Attributes are the allocatable character attributes.
type Attributes struct {
	Strength  int `yaml:"strength"`
	Agility   int `yaml:"agility"` // +1 speed per point to 10, +0.5 beyond
	Dexterity int `yaml:"dexterity"`
	Thaumir   int `yaml:"thaumir"`
	Charisma  int `yaml:"charisma"`
}

// Interruptible is a channeled ability that must abort when its owner is hit.
type Interruptible interface {
	Interrupt()
}

// Body receives knockback impulses.
type Body interface {
	ApplyImpulse(impulse geom.Vec2)
}

// Combatant is the live combat state of one fighter.
//
// It is not safe for concurrent use; the simulation tick serialises access.
type Combatant struct {
	id     string
	name   string
	rules  Rules
	logger *zap.Logger

	health  *stat.Pool
	mana    *stat.Pool
	stamina *stat.Pool

	baseHealth float64
	profile    damage.Profile
	attrs      Attributes

	// ArtifactCritBonus is added to the 2x critical multiplier.
	ArtifactCritBonus float64

	speed      float64
	critChance float64

	sprinting      bool
	inRichManaZone bool

	manaExhausted       bool
	staminaExhausted    bool
	manaExhaustTimer    float64
	staminaExhaustTimer float64

	dead bool

	level      int
	exp        int
	expToNext  int
	statPoints int

	skills       []Interruptible
	body         Body
	observers    []subscription
	nextObserver int
}

type subscription struct {
	id int
	o  Observer
}

// New creates a living combatant with full pools sized from rules.
//
// Precondition: id must be non-empty.
// Postcondition: Returns a combatant at level 1 with Health, Mana and Stamina full.
func New(id, name string, rules Rules, logger *zap.Logger) *Combatant {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Combatant{
		id:         id,
		name:       name,
		rules:      rules,
		logger:     logger.With(zap.String("combatant", id)),
		health:     stat.NewPool(rules.BaseHealth),
		mana:       stat.NewPool(rules.BaseMana),
		stamina:    stat.NewPool(rules.BaseStamina),
		baseHealth: rules.BaseHealth,
		level:      1,
		expToNext:  rules.BaseExp,
		statPoints: rules.StartingStatPoints,
	}
	c.recomputeStats()
	return c
}

// ID returns the combatant's unique identifier.
func (c *Combatant) ID() string { return c.id }

// Name returns the display name.
func (c *Combatant) Name() string { return c.name }

// Health returns the health pool.
func (c *Combatant) Health() *stat.Pool { return c.health }

// Mana returns the mana pool.
func (c *Combatant) Mana() *stat.Pool { return c.mana }

// Stamina returns the stamina pool.
func (c *Combatant) Stamina() *stat.Pool { return c.stamina }

// Profile returns a copy of the defensive profile.
func (c *Combatant) Profile() damage.Profile { return c.profile }

// SetProfile replaces resistances and weaknesses. Purity and corruption are
// preserved; use AddPurity/AddCorruption to move them.
func (c *Combatant) SetProfile(p damage.Profile) {
	p.Purity = c.profile.Purity
	p.Corruption = c.profile.Corruption
	c.profile = p
}

// Purity returns the purity meter in [0, 100].
func (c *Combatant) Purity() float64 { return c.profile.Purity }

// Corruption returns the corruption meter in [0, 100].
func (c *Combatant) Corruption() float64 { return c.profile.Corruption }

// Attributes returns a copy of the allocated attributes.
func (c *Combatant) Attributes() Attributes { return c.attrs }

// Speed returns the agility-derived movement speed: BaseSpeed plus one unit per
// agility point up to 10, then half a unit per point above 10. The curve is
// continuous at agility 10.
func (c *Combatant) Speed() float64 { return c.speed }

// CritChance returns the critical hit chance in percent.
func (c *Combatant) CritChance() float64 { return c.critChance }

// IsDead reports whether the combatant has died. Death is terminal.
func (c *Combatant) IsDead() bool { return c.dead }

// IsSprinting reports whether a sprint is in progress.
func (c *Combatant) IsSprinting() bool { return c.sprinting }

// IsManaExhausted reports whether the mana exhaustion lock is active.
func (c *Combatant) IsManaExhausted() bool { return c.manaExhausted }

// IsStaminaExhausted reports whether the stamina exhaustion lock is active.
func (c *Combatant) IsStaminaExhausted() bool { return c.staminaExhausted }

// Level returns the current level.
func (c *Combatant) Level() int { return c.level }

// Exp returns experience accumulated toward the next level.
func (c *Combatant) Exp() int { return c.exp }

// ExpToNext returns the experience needed for the next level.
func (c *Combatant) ExpToNext() int { return c.expToNext }

// StatPoints returns unspent stat points.
func (c *Combatant) StatPoints() int { return c.statPoints }

// Subscribe registers o for notifications and returns a function that removes it.
// Removal is safe from inside a notification; the event in flight still
// reaches every observer registered when it was raised.
//
// Precondition: o must not be nil.
func (c *Combatant) Subscribe(o Observer) (unsubscribe func()) {
	c.nextObserver++
	id := c.nextObserver
	c.observers = append(c.observers, subscription{id: id, o: o})
	return func() {
		for i, existing := range c.observers {
			if existing.id == id {
				c.observers = slices.Delete(c.observers, i, i+1)
				return
			}
		}
	}
}

// AttachSkill registers a channeled ability to be interrupted on every hit.
func (c *Combatant) AttachSkill(s Interruptible) {
	if s != nil {
		c.skills = append(c.skills, s)
	}
}

// SetBody sets the knockback receiver. nil disables knockback.
func (c *Combatant) SetBody(b Body) { c.body = b }

// SetInRichManaZone toggles the faster mana regeneration rate.
func (c *Combatant) SetInRichManaZone(v bool) { c.inRichManaZone = v }

// InRichManaZone reports whether mana regenerates at the rich rate.
func (c *Combatant) InRichManaZone() bool { return c.inRichManaZone }

// InterruptSkills synchronously aborts every attached channeled ability.
func (c *Combatant) InterruptSkills() {
	for _, s := range c.skills {
		s.Interrupt()
	}
}

func (c *Combatant) emit(e Event) {
	e.CombatantID = c.id
	for _, s := range slices.Clone(c.observers) {
		s.o.OnCombatEvent(e)
	}
}

func (c *Combatant) emitBar(b Bar) {
	var cur, max float64
	switch b {
	case BarHealth:
		cur, max = c.health.Current(), c.health.Max()
	case BarMana:
		cur, max = c.mana.Current(), c.mana.Max()
	case BarStamina:
		cur, max = c.stamina.Current(), c.stamina.Max()
	case BarExp:
		cur, max = float64(c.exp), float64(c.expToNext)
	}
	c.emit(Event{Kind: EventBarUpdated, Bar: b, Value: cur, Max: max})
}

// recomputeStats derives speed and crit chance from attributes and re-clamps pools.
func (c *Combatant) recomputeStats() {
	agi := float64(c.attrs.Agility)
	if c.attrs.Agility <= 10 {
		c.speed = c.rules.BaseSpeed + agi
	} else {
		c.speed = c.rules.BaseSpeed + 10 + (agi-10)*0.5
	}
	c.critChance = float64(c.attrs.Dexterity) * 0.5
	c.health.Clamp()
	c.mana.Clamp()
	c.stamina.Clamp()
}

func roundHalfEven(v float64) float64 { return math.RoundToEven(v) }
