// Package damage resolves how much of a raw hit survives a target's
// resistances, weaknesses and purity.
package damage

import (
	"fmt"
	"strings"
)

// Type is the damage category of a hit.
type Type int

const (
	TypeNone Type = iota
	Physical
	Magical
	Holy
	Demonic
)

// Element is the elemental affinity of a hit.
type Element int

const (
	ElementNone Element = iota
	Fire
	Water
	Earth
	Air
	Ice
	Lightning
	Space
	Time
)

// Axis is one resistance/weakness category: a damage type or an element.
type Axis int

const (
	AxisPhysical Axis = iota
	AxisMagical
	AxisHoly
	AxisDemonic
	AxisFire
	AxisWater
	AxisEarth
	AxisAir
	AxisIce
	AxisLightning
	AxisSpace
	AxisTime

	axisCount
)

var axisNames = [axisCount]string{
	"physical", "magical", "holy", "demonic",
	"fire", "water", "earth", "air", "ice", "lightning", "space", "time",
}

// Axes returns every axis in declaration order.
func Axes() []Axis {
	out := make([]Axis, axisCount)
	for i := range out {
		out[i] = Axis(i)
	}
	return out
}

// String returns the lowercase axis name.
func (a Axis) String() string {
	if a < 0 || a >= axisCount {
		return "unknown"
	}
	return axisNames[a]
}

// ParseAxis resolves a case-insensitive axis name.
//
// Postcondition: Returns the axis or an error naming the unknown value.
func ParseAxis(s string) (Axis, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range axisNames {
		if n == s {
			return Axis(i), nil
		}
	}
	return 0, fmt.Errorf("unknown damage axis %q", s)
}

// Axis maps a damage type to its axis. TypeNone has no axis.
func (t Type) Axis() (Axis, bool) {
	if t <= TypeNone || t > Demonic {
		return 0, false
	}
	return AxisPhysical + Axis(t-Physical), true
}

// String returns the lowercase type name, or "none".
func (t Type) String() string {
	if a, ok := t.Axis(); ok {
		return a.String()
	}
	return "none"
}

// UnmarshalText parses a damage type name; "" and "none" map to TypeNone.
func (t *Type) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	if s == "" || s == "none" {
		*t = TypeNone
		return nil
	}
	for v := Physical; v <= Demonic; v++ {
		if v.String() == s {
			*t = v
			return nil
		}
	}
	return fmt.Errorf("unknown damage type %q", s)
}

// Axis maps an element to its axis. ElementNone has no axis.
func (e Element) Axis() (Axis, bool) {
	if e <= ElementNone || e > Time {
		return 0, false
	}
	return AxisFire + Axis(e-Fire), true
}

// String returns the lowercase element name, or "none".
func (e Element) String() string {
	if a, ok := e.Axis(); ok {
		return a.String()
	}
	return "none"
}

// UnmarshalText parses an element name; "" and "none" map to ElementNone.
func (e *Element) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	if s == "" || s == "none" {
		*e = ElementNone
		return nil
	}
	for v := Fire; v <= Time; v++ {
		if v.String() == s {
			*e = v
			return nil
		}
	}
	return fmt.Errorf("unknown element %q", s)
}
