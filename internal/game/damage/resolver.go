package damage

import (
	"fmt"
	"math"
)

// Profile is a combatant's defensive profile: per-axis resistance and weakness
// percentages plus the purity and corruption meters.
//
// Invariant: every percentage is within [0, 100].
type Profile struct {
	resistance [axisCount]int
	weakness   [axisCount]int
	// Purity dampens holy damage taken. Kept in [0, 100].
	Purity float64
	// Corruption scales max health. Kept in [0, 100].
	Corruption float64
}

// ProfileSpec is the YAML shape of a Profile: axis name to percentage.
type ProfileSpec struct {
	Resistances map[string]int `yaml:"resistances"`
	Weaknesses  map[string]int `yaml:"weaknesses"`
}

// Build converts the spec to a Profile, validating axis names and ranges.
//
// Postcondition: Returns a Profile or an error describing the first bad entry.
func (s ProfileSpec) Build() (Profile, error) {
	var p Profile
	for name, pct := range s.Resistances {
		a, err := ParseAxis(name)
		if err != nil {
			return Profile{}, fmt.Errorf("resistances: %w", err)
		}
		if pct < 0 || pct > 100 {
			return Profile{}, fmt.Errorf("resistances.%s must be 0-100, got %d", name, pct)
		}
		p.resistance[a] = pct
	}
	for name, pct := range s.Weaknesses {
		a, err := ParseAxis(name)
		if err != nil {
			return Profile{}, fmt.Errorf("weaknesses: %w", err)
		}
		if pct < 0 || pct > 100 {
			return Profile{}, fmt.Errorf("weaknesses.%s must be 0-100, got %d", name, pct)
		}
		p.weakness[a] = pct
	}
	return p, nil
}

// Resistance returns the resistance percentage for a.
func (p Profile) Resistance(a Axis) int { return p.resistance[a] }

// Weakness returns the weakness percentage for a.
func (p Profile) Weakness(a Axis) int { return p.weakness[a] }

// SetResistance assigns the resistance for a, clamped to [0, 100].
func (p *Profile) SetResistance(a Axis, pct int) { p.resistance[a] = clampPct(pct) }

// SetWeakness assigns the weakness for a, clamped to [0, 100].
func (p *Profile) SetWeakness(a Axis, pct int) { p.weakness[a] = clampPct(pct) }

// multiplier is (1 - resistance/100) * (1 + weakness/100) for axis a.
func (p Profile) multiplier(a Axis) float64 {
	return (1 - float64(p.resistance[a])/100) * (1 + float64(p.weakness[a])/100)
}

// CalculateFinalDamage applies the damage-type and element modifiers of target
// to raw. Holy damage is additionally dampened by the target's purity. Both a
// type and an element modifier may apply to the same hit; None contributes
// nothing. Rounding is half-to-even.
//
// The function is pure: identical inputs always yield the same output.
//
// Precondition: raw >= 0; negative raw is treated as 0.
// Postcondition: Returns >= 0.
func CalculateFinalDamage(raw int, t Type, e Element, target Profile) int {
	if raw <= 0 {
		return 0
	}
	mod := 1.0
	if a, ok := t.Axis(); ok {
		mod *= target.multiplier(a)
		if t == Holy && target.Purity > 0 {
			mod *= 1 - target.Purity/100
		}
	}
	if a, ok := e.Axis(); ok {
		mod *= target.multiplier(a)
	}
	if mod < 0 {
		mod = 0
	}
	return int(math.RoundToEven(float64(raw) * mod))
}

func clampPct(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
