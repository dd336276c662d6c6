package combatant

import "go.uber.org/zap"

// AddPurity moves the purity/corruption axis toward purity. Existing corruption
// is cancelled first; only the remainder raises purity. The meters are never
// both positive.
//
// Precondition: amount > 0; other amounts and dead combatants are no-ops.
// Postcondition: !(Purity() > 0 && Corruption() > 0).
func (c *Combatant) AddPurity(amount float64) {
	if c.dead || amount <= 0 {
		return
	}
	if c.profile.Corruption > 0 {
		reduction := min(c.profile.Corruption, amount)
		c.profile.Corruption -= reduction
		amount -= reduction
		c.updateMaxHealth()
	}
	if amount > 0 {
		c.profile.Purity = clampMeter(c.profile.Purity + amount)
	}
	c.afterMeterChange()
}

// AddCorruption moves the axis toward corruption. Existing purity is cancelled
// first; only the remainder raises corruption, which shrinks max health.
//
// Precondition: amount > 0; other amounts and dead combatants are no-ops.
// Postcondition: !(Purity() > 0 && Corruption() > 0);
// Health().Max() == round(baseHealth * (1 - Corruption()/100)).
func (c *Combatant) AddCorruption(amount float64) {
	if c.dead || amount <= 0 {
		return
	}
	if c.profile.Purity > 0 {
		reduction := min(c.profile.Purity, amount)
		c.profile.Purity -= reduction
		amount -= reduction
	}
	if amount > 0 {
		c.profile.Corruption = clampMeter(c.profile.Corruption + amount)
		c.updateMaxHealth()
	}
	c.afterMeterChange()
}

// updateMaxHealth applies corruption to the base health cap and re-clamps current.
func (c *Combatant) updateMaxHealth() {
	c.health.SetMax(roundHalfEven(c.baseHealth * (1 - c.profile.Corruption/100)))
}

func (c *Combatant) afterMeterChange() {
	c.recomputeStats()
	c.logger.Debug("purity axis changed",
		zap.Float64("purity", c.profile.Purity),
		zap.Float64("corruption", c.profile.Corruption),
		zap.Float64("max_health", c.health.Max()),
	)
	c.emit(Event{Kind: EventStatsChanged})
}

func clampMeter(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
