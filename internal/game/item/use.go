// Package item is the action-activation layer between input and weapons: it
// tells clicks from holds, enforces per-slot cooldowns and pays each
// action's resource cost before activating.
package item

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bladecore/internal/game/resource"
)

// Slot is an input slot.
type Slot int

const (
	SlotPrimary Slot = iota
	SlotSecondary

	slotCount
)

// String returns the slot name.
func (s Slot) String() string {
	switch s {
	case SlotPrimary:
		return "primary"
	case SlotSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// ParseSlot resolves "primary" or "secondary".
func ParseSlot(name string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "primary":
		return SlotPrimary, nil
	case "secondary":
		return SlotSecondary, nil
	default:
		return 0, fmt.Errorf("unknown slot %q", name)
	}
}

// Activator is what a binding triggers, typically a weapon.
type Activator interface {
	Activate(isPrimary, isHold bool) bool
}

// Readier is implemented by activators that can refuse an activation before
// its cost is charged, such as a weapon still in the middle of a motion.
type Readier interface {
	Ready() bool
}

// Binding pairs an action's cost with the activator it triggers. A nil
// Target only pays the cost.
type Binding struct {
	Cost   resource.Cost
	Target Activator
}

// SlotBindings are the click and hold actions of one slot.
type SlotBindings struct {
	Click Binding
	Hold  Binding
}

// Settings are the input timings shared by all slots, in seconds.
type Settings struct {
	HoldThreshold float64
	Cooldown      float64
}

// DefaultSettings returns a 0.3s hold threshold and a 0.3s cooldown.
func DefaultSettings() Settings {
	return Settings{HoldThreshold: 0.3, Cooldown: 0.3}
}

type slotState struct {
	bindings  SlotBindings
	cooldown  float64
	holding   bool
	held      float64
	holdFired bool
}

// User tracks press state for each slot of one combatant.
//
// It is not safe for concurrent use; the simulation tick serialises access.
type User struct {
	payer    resource.Payer
	settings Settings
	logger   *zap.Logger
	slots    [slotCount]slotState
}

// NewUser creates a User that charges payer.
//
// Precondition: payer must not be nil.
func NewUser(payer resource.Payer, settings Settings, logger *zap.Logger) *User {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &User{payer: payer, settings: settings, logger: logger}
}

// Bind sets the click and hold actions of slot.
func (u *User) Bind(slot Slot, b SlotBindings) {
	if s := u.slot(slot); s != nil {
		s.bindings = b
	}
}

// IsHolding reports whether slot is pressed.
func (u *User) IsHolding(slot Slot) bool {
	s := u.slot(slot)
	return s != nil && s.holding
}

// Cooldown returns the remaining cooldown of slot.
func (u *User) Cooldown(slot Slot) float64 {
	if s := u.slot(slot); s != nil {
		return s.cooldown
	}
	return 0
}

// BeginUse presses slot. Rejected while the slot is cooling down.
//
// Postcondition: Returns true iff the press was accepted.
func (u *User) BeginUse(slot Slot) bool {
	s := u.slot(slot)
	if s == nil || s.cooldown > 0 {
		return false
	}
	s.holding = true
	s.held = 0
	s.holdFired = false
	return true
}

// ReleaseUse releases slot and starts its cooldown. A release before the hold
// threshold fires the click action; a release after it fires the hold action
// unless the hold already fired.
//
// Postcondition: Returns true iff the slot was being held.
func (u *User) ReleaseUse(slot Slot) bool {
	s := u.slot(slot)
	if s == nil || !s.holding {
		return false
	}
	s.holding = false
	s.cooldown = u.settings.Cooldown
	if s.holdFired {
		return true
	}
	if s.held >= u.settings.HoldThreshold {
		s.holdFired = true
		u.activate(slot, s.bindings.Hold, true)
	} else {
		u.activate(slot, s.bindings.Click, false)
	}
	return true
}

// Tick counts down cooldowns and fires the hold action of any slot held past
// the threshold.
//
// Precondition: dt >= 0.
func (u *User) Tick(dt float64) {
	for i := range u.slots {
		s := &u.slots[i]
		if s.cooldown > 0 {
			s.cooldown -= dt
		}
		if !s.holding {
			continue
		}
		s.held += dt
		if !s.holdFired && s.held >= u.settings.HoldThreshold {
			s.holdFired = true
			u.activate(Slot(i), s.bindings.Hold, true)
		}
	}
}

// activate pays the binding's cost and, only if paid, triggers its target.
// A target that reports itself not ready is skipped without charging.
func (u *User) activate(slot Slot, b Binding, isHold bool) bool {
	if r, ok := b.Target.(Readier); ok && !r.Ready() {
		u.logger.Debug("activation target busy",
			zap.Stringer("slot", slot),
			zap.Bool("hold", isHold),
		)
		return false
	}
	if !resource.DeductResources(u.payer, b.Cost) {
		u.logger.Debug("activation unaffordable",
			zap.Stringer("slot", slot),
			zap.Bool("hold", isHold),
			zap.String("resource", string(b.Cost.Kind)),
			zap.Float64("cost", b.Cost.Amount),
		)
		return false
	}
	if b.Target == nil {
		return true
	}
	ok := b.Target.Activate(slot == SlotPrimary, isHold)
	u.logger.Debug("activated",
		zap.Stringer("slot", slot),
		zap.Bool("hold", isHold),
		zap.Bool("started", ok),
	)
	return ok
}

func (u *User) slot(s Slot) *slotState {
	if s < 0 || s >= slotCount {
		return nil
	}
	return &u.slots[s]
}
