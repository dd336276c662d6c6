// Package stat implements the regenerating, depletable resource pools
// (health, mana, stamina) owned by a combatant.
package stat

// Pool is a single numeric resource with a cap and an additive modifier stack.
//
// Invariant: 0 <= Current() <= Max() after every mutation.
// It is not safe for concurrent use; the owning combatant serialises access.
type Pool struct {
	base      float64
	current   float64
	max       float64
	modifiers []float64
}

// NewPool creates a full pool with base = max = current = initial.
//
// Precondition: initial >= 0; negative values are treated as 0.
// Postcondition: Current() == Max() == Base() == max(initial, 0).
func NewPool(initial float64) *Pool {
	if initial < 0 {
		initial = 0
	}
	return &Pool{base: initial, current: initial, max: initial}
}

// Base returns the unmodified base value.
func (p *Pool) Base() float64 { return p.base }

// Current returns the present amount in the pool.
func (p *Pool) Current() float64 { return p.current }

// Max returns the pool's cap.
func (p *Pool) Max() float64 { return p.max }

// Value returns base plus the sum of all active modifiers.
//
// Postcondition: Returns Base() + sum(Modifiers()).
func (p *Pool) Value() float64 {
	v := p.base
	for _, m := range p.modifiers {
		v += m
	}
	return v
}

// AddModifier pushes m onto the modifier stack. Zero modifiers are ignored.
func (p *Pool) AddModifier(m float64) {
	if m == 0 {
		return
	}
	p.modifiers = append(p.modifiers, m)
}

// RemoveModifier deletes the first modifier equal to m. Duplicate-valued
// modifiers are removed one per call.
//
// Postcondition: Returns true iff an element was removed.
func (p *Pool) RemoveModifier(m float64) bool {
	if m == 0 {
		return false
	}
	for i, v := range p.modifiers {
		if v == m {
			p.modifiers = append(p.modifiers[:i], p.modifiers[i+1:]...)
			return true
		}
	}
	return false
}

// Modifiers returns a copy of the modifier stack in insertion order.
func (p *Pool) Modifiers() []float64 {
	out := make([]float64, len(p.modifiers))
	copy(out, p.modifiers)
	return out
}

// SetCurrent assigns v, clamped to [0, Max()].
func (p *Pool) SetCurrent(v float64) {
	p.current = clamp(v, 0, p.max)
}

// Add changes Current() by delta, clamped to [0, Max()], and returns the
// change actually applied.
func (p *Pool) Add(delta float64) float64 {
	before := p.current
	p.SetCurrent(p.current + delta)
	return p.current - before
}

// SetMax assigns a new cap (floored at 0) and re-clamps Current().
//
// Postcondition: Current() <= Max().
func (p *Pool) SetMax(v float64) {
	if v < 0 {
		v = 0
	}
	p.max = v
	p.SetCurrent(p.current)
}

// SetBase assigns the unmodified base value.
func (p *Pool) SetBase(v float64) { p.base = v }

// Clamp re-applies the [0, Max()] bounds.
func (p *Pool) Clamp() { p.SetCurrent(p.current) }

// IsFull reports whether Current() has reached Max().
func (p *Pool) IsFull() bool { return p.current >= p.max }

// IsEmpty reports whether Current() is 0.
func (p *Pool) IsEmpty() bool { return p.current <= 0 }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
