package combatant

import (
	"math"
	"strings"

	"go.uber.org/zap"
)

// Attribute names an allocatable stat.
type Attribute int

const (
	AttrHealth Attribute = iota
	AttrMana
	AttrStamina
	AttrStrength
	AttrAgility
	AttrDexterity
	AttrThaumir
	AttrCharisma
)

var attributeNames = map[string]Attribute{
	"health":    AttrHealth,
	"mana":      AttrMana,
	"stamina":   AttrStamina,
	"strength":  AttrStrength,
	"agility":   AttrAgility,
	"dexterity": AttrDexterity,
	"thaumir":   AttrThaumir,
	"charisma":  AttrCharisma,
}

// ParseAttribute resolves a case-insensitive attribute name.
func ParseAttribute(name string) (Attribute, bool) {
	a, ok := attributeNames[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

const (
	healthPerPoint  = 10
	manaPerPoint    = 5
	staminaPerPoint = 5
	pointsPerLevel  = 3
	expGrowth       = 1.1
)

// AddStatPoint spends one stat point on a. Health raises the base health (so
// corruption keeps scaling the new cap), Mana and Stamina raise their caps,
// the rest increment the attribute.
//
// Postcondition: Returns true iff a point was spent.
func (c *Combatant) AddStatPoint(a Attribute) bool {
	if c.dead || c.statPoints <= 0 {
		return false
	}
	switch a {
	case AttrHealth:
		c.baseHealth += healthPerPoint
		c.health.SetBase(c.baseHealth)
		c.updateMaxHealth()
	case AttrMana:
		c.mana.SetMax(c.mana.Max() + manaPerPoint)
	case AttrStamina:
		c.stamina.SetMax(c.stamina.Max() + staminaPerPoint)
	case AttrStrength:
		c.attrs.Strength++
	case AttrAgility:
		c.attrs.Agility++
	case AttrDexterity:
		c.attrs.Dexterity++
	case AttrThaumir:
		c.attrs.Thaumir++
	case AttrCharisma:
		c.attrs.Charisma++
	default:
		return false
	}
	c.statPoints--
	c.recomputeStats()
	c.emit(Event{Kind: EventStatsChanged})
	return true
}

// AddStatPointByName is AddStatPoint keyed by attribute name. Unknown names
// are rejected with a warning.
func (c *Combatant) AddStatPointByName(name string) bool {
	a, ok := ParseAttribute(name)
	if !ok {
		c.logger.Warn("invalid stat name", zap.String("stat", name))
		return false
	}
	return c.AddStatPoint(a)
}

// GainExp adds experience and levels up once if the threshold is met. Further
// pending levels resolve on subsequent ticks.
//
// Precondition: exp > 0; other values are ignored.
func (c *Combatant) GainExp(exp int) {
	if c.dead || exp <= 0 {
		return
	}
	c.exp += exp
	if c.exp >= c.expToNext {
		c.levelUp()
	}
	c.emitBar(BarExp)
}

func (c *Combatant) levelUp() {
	c.level++
	c.exp -= c.expToNext
	c.expToNext = int(float64(c.rules.BaseExp) * math.Pow(expGrowth, float64(c.level-1)))
	c.statPoints += pointsPerLevel
	c.logger.Debug("level up",
		zap.Int("level", c.level),
		zap.Int("exp_to_next", c.expToNext),
	)
	c.emit(Event{Kind: EventLevelUp, Value: float64(c.level)})
	c.emit(Event{Kind: EventStatsChanged})
}
