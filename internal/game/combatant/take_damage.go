package combatant

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bladecore/internal/game/damage"
	"github.com/cory-johannsen/bladecore/internal/game/dice"
	"github.com/cory-johannsen/bladecore/internal/game/geom"
)

// Hit describes one incoming attack.
type Hit struct {
	// Amount is the raw damage before the target's profile is applied.
	Amount int
	// Knockback is the impulse direction; the zero vector means no knockback.
	Knockback geom.Vec2
	// AttackerID identifies the source of the hit. May be empty.
	AttackerID string
	Type       damage.Type
	Critical   bool
	Element    damage.Element
}

// TakeDamage applies a hit. In order: channeled skills are interrupted, the hit
// is ignored if already dead, the final damage is resolved against the profile
// and subtracted from health, health-changed fires iff health strictly dropped,
// a knockback impulse is requested iff the direction is non-zero, and the
// combatant dies iff health reaches 0.
//
// Precondition: h.Amount >= 0.
// Postcondition: Returns the resolved damage, or 0 when already dead.
func (c *Combatant) TakeDamage(h Hit) int {
	c.InterruptSkills()
	if c.dead {
		return 0
	}

	final := damage.CalculateFinalDamage(h.Amount, h.Type, h.Element, c.profile)
	before := c.health.Current()
	c.health.Add(-float64(final))
	if c.health.Current() < before {
		c.emit(Event{Kind: EventHealthChanged, Bar: BarHealth, Value: c.health.Current(), Max: c.health.Max()})
	}

	if !h.Knockback.IsZero() && c.body != nil {
		c.body.ApplyImpulse(h.Knockback.Scale(c.rules.KnockbackForce))
	}

	c.emitBar(BarHealth)

	c.logger.Debug("took damage",
		zap.String("attacker", h.AttackerID),
		zap.Int("raw", h.Amount),
		zap.Int("final", final),
		zap.Stringer("type", h.Type),
		zap.Stringer("element", h.Element),
		zap.Bool("critical", h.Critical),
		zap.Float64("health", c.health.Current()),
	)

	if c.health.Current() <= 0 {
		c.die()
	}
	return final
}

// die marks the combatant dead. Death is one-way.
func (c *Combatant) die() {
	if c.dead {
		return
	}
	c.dead = true
	c.sprinting = false
	c.logger.Debug("died")
	c.emit(Event{Kind: EventDied})
}

// MagicalDamage returns base scaled by thaumir.
func (c *Combatant) MagicalDamage(base int) int {
	return base + c.attrs.Thaumir
}

// baseStrikeDamage is the unarmed strike before purity and crits.
const baseStrikeDamage = 10

// RollDamage rolls an unarmed strike: the base strike dampened by the
// attacker's own purity, doubled (plus ArtifactCritBonus) on a critical roll
// against CritChance.
//
// Precondition: src must be non-nil.
// Postcondition: Returns (damage >= 0, whether the roll was critical).
func (c *Combatant) RollDamage(src dice.Source) (int, bool) {
	return c.rollCritical(math.RoundToEven(baseStrikeDamage*(1-c.profile.Purity/100)), src)
}

// WeaponDamage scales a weapon hit by its wielder: magical hits add thaumir,
// and a critical roll against CritChance multiplies by 2 + ArtifactCritBonus.
//
// Precondition: src must be non-nil.
// Postcondition: Returns (damage >= 0, whether the roll was critical).
func (c *Combatant) WeaponDamage(base int, t damage.Type, src dice.Source) (int, bool) {
	if base < 0 {
		base = 0
	}
	if t == damage.Magical {
		base = c.MagicalDamage(base)
	}
	return c.rollCritical(float64(base), src)
}

func (c *Combatant) rollCritical(dmg float64, src dice.Source) (int, bool) {
	if dice.Chance(src, c.critChance) {
		return int(math.RoundToEven(dmg * (2 + c.ArtifactCritBonus))), true
	}
	return int(dmg), false
}
