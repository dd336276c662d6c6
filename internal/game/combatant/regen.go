package combatant

import "go.uber.org/zap"

// Tick advances regeneration, sprint drain, display refresh, level-up and
// exhaustion timers by dt seconds, in that order. Dead combatants do not tick.
//
// Precondition: dt >= 0.
func (c *Combatant) Tick(dt float64) {
	if c.dead || dt < 0 {
		return
	}

	c.drainSprint(dt)
	c.regenerate(dt)

	c.emitBar(BarHealth)
	c.emitBar(BarMana)
	c.emitBar(BarStamina)
	c.emitBar(BarExp)

	if c.exp >= c.expToNext {
		c.levelUp()
	}

	c.tickExhaustion(dt)
}

func (c *Combatant) drainSprint(dt float64) {
	if !c.sprinting {
		return
	}
	if c.staminaExhausted || c.stamina.IsEmpty() {
		c.sprinting = false
		return
	}
	c.stamina.Add(-c.rules.StaminaDrain * dt)
	if c.stamina.IsEmpty() {
		c.sprinting = false
		c.exhaust(BarStamina)
	}
}

func (c *Combatant) regenerate(dt float64) {
	if c.rules.HealthRegen > 0 && !c.health.IsFull() {
		if c.health.Add(c.rules.HealthRegen*dt) > 0 {
			c.emit(Event{Kind: EventHealthChanged, Bar: BarHealth, Value: c.health.Current(), Max: c.health.Max()})
		}
	}

	if !c.manaExhausted && !c.mana.IsFull() {
		rate := c.rules.ManaRegen
		if c.inRichManaZone {
			rate = c.rules.RichManaRegen
		}
		c.mana.Add(rate * dt)
	}

	if !c.sprinting && !c.staminaExhausted && !c.stamina.IsFull() {
		c.stamina.Add(c.rules.StaminaRegen * dt)
	}
}

func (c *Combatant) tickExhaustion(dt float64) {
	if c.staminaExhausted {
		c.staminaExhaustTimer -= dt
		if c.staminaExhaustTimer <= 0 {
			c.staminaExhausted = false
			c.recover(BarStamina)
		}
	}
	if c.manaExhausted {
		c.manaExhaustTimer -= dt
		if c.manaExhaustTimer <= 0 {
			c.manaExhausted = false
			c.recover(BarMana)
		}
	}
}

// exhaust starts the fixed-duration lock for the mana or stamina pool.
func (c *Combatant) exhaust(b Bar) {
	switch b {
	case BarMana:
		c.manaExhausted = true
		c.manaExhaustTimer = c.rules.ExhaustionDuration
	case BarStamina:
		c.staminaExhausted = true
		c.staminaExhaustTimer = c.rules.ExhaustionDuration
	default:
		return
	}
	c.logger.Debug("exhaustion lock started",
		zap.Stringer("pool", b),
		zap.Float64("duration", c.rules.ExhaustionDuration),
	)
	c.emit(Event{Kind: EventExhausted, Bar: b, Value: c.rules.ExhaustionDuration})
}

func (c *Combatant) recover(b Bar) {
	c.logger.Debug("exhaustion lock ended", zap.Stringer("pool", b))
	c.emit(Event{Kind: EventRecovered, Bar: b})
}

// UseMana deducts amount from mana when enough is available and the mana
// lock is not active. Emptying the pool starts the mana exhaustion lock.
//
// Postcondition: Returns true iff mana was deducted.
func (c *Combatant) UseMana(amount float64) bool {
	if c.dead || amount < 0 || c.manaExhausted || c.mana.Current() < amount {
		return false
	}
	c.mana.Add(-amount)
	c.emitBar(BarMana)
	if c.mana.IsEmpty() {
		c.exhaust(BarMana)
	}
	return true
}

// UseStamina deducts amount from stamina under the same rules as UseMana,
// using the stamina exhaustion lock.
//
// Postcondition: Returns true iff stamina was deducted.
func (c *Combatant) UseStamina(amount float64) bool {
	if c.dead || amount < 0 || c.staminaExhausted || c.stamina.Current() < amount {
		return false
	}
	c.stamina.Add(-amount)
	c.emitBar(BarStamina)
	if c.stamina.IsEmpty() {
		c.sprinting = false
		c.exhaust(BarStamina)
	}
	return true
}

// SpendHealth pays amount of health as an action cost. Health has no
// exhaustion lock: paying the last point kills.
//
// Postcondition: Returns true iff health was deducted.
func (c *Combatant) SpendHealth(amount float64) bool {
	if c.dead || amount < 0 || c.health.Current() < amount {
		return false
	}
	before := c.health.Current()
	c.health.Add(-amount)
	if c.health.Current() < before {
		c.emit(Event{Kind: EventHealthChanged, Bar: BarHealth, Value: c.health.Current(), Max: c.health.Max()})
	}
	c.emitBar(BarHealth)
	if c.health.IsEmpty() {
		c.die()
	}
	return true
}

// StartSprint begins sprinting. Rejected while dead, stamina-exhausted or out
// of stamina.
//
// Postcondition: Returns true iff IsSprinting() is now true.
func (c *Combatant) StartSprint() bool {
	if c.dead || c.staminaExhausted || c.stamina.IsEmpty() {
		return false
	}
	c.sprinting = true
	return true
}

// StopSprint ends any sprint in progress.
func (c *Combatant) StopSprint() { c.sprinting = false }
