// Package resource deducts action costs from a combatant's pools on behalf of
// the action-activation layer.
package resource

import (
	"fmt"

	"github.com/cory-johannsen/bladecore/internal/game/combatant"
	"github.com/cory-johannsen/bladecore/internal/game/stat"
)

// Kind names the pool an action draws from.
type Kind string

const (
	// KindNone costs nothing.
	KindNone Kind = ""
	// KindHealth pays in health. There is no lock; paying the last point kills.
	KindHealth Kind = "health"
	// KindMana pays in mana and can trigger the mana exhaustion lock.
	KindMana Kind = "mana"
	// KindStamina pays in stamina and can trigger the stamina exhaustion lock.
	KindStamina Kind = "stamina"
)

// Validate reports whether k is a known pool kind.
func (k Kind) Validate() error {
	switch k {
	case KindNone, KindHealth, KindMana, KindStamina:
		return nil
	default:
		return fmt.Errorf("unknown resource %q", string(k))
	}
}

// Payer is the subset of a combatant the ledger charges.
type Payer interface {
	Health() *stat.Pool
	Mana() *stat.Pool
	Stamina() *stat.Pool
	SpendHealth(amount float64) bool
	UseMana(amount float64) bool
	UseStamina(amount float64) bool
}

var _ Payer = (*combatant.Combatant)(nil)

// Cost is the price of one action.
type Cost struct {
	Kind   Kind    `yaml:"resource"`
	Amount float64 `yaml:"cost"`
	// Percentage interprets Amount as a percent of the pool's max.
	Percentage bool `yaml:"percentage"`
}

// Resolve returns the flat amount c charges against a pool whose cap is max.
//
// Postcondition: Returns Amount, or Amount% of max when Percentage is set.
func (c Cost) Resolve(max float64) float64 {
	if c.Percentage {
		return c.Amount / 100 * max
	}
	return c.Amount
}

// DeductResources charges cost to p. Mana and stamina honour the exhaustion
// locks; a cost of KindNone or zero always succeeds.
//
// Precondition: p must not be nil.
// Postcondition: Returns true iff the full cost was paid; on false no pool changed.
func DeductResources(p Payer, cost Cost) bool {
	if cost.Amount < 0 {
		return false
	}
	switch cost.Kind {
	case KindNone:
		return true
	case KindHealth:
		return p.SpendHealth(cost.Resolve(p.Health().Max()))
	case KindMana:
		return p.UseMana(cost.Resolve(p.Mana().Max()))
	case KindStamina:
		return p.UseStamina(cost.Resolve(p.Stamina().Max()))
	default:
		return false
	}
}
