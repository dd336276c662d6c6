// Package weapon implements the per-weapon attack state machine: idle-follow,
// the four attack motions, chain targeting for the continuous thrust, and
// contact resolution against opponents.
package weapon

import (
	"fmt"
	"strings"
)

// Mode is the motion a weapon is performing. Exactly one mode is current.
type Mode int

const (
	ModeIdle Mode = iota
	ModeSwing
	ModeThrust
	ModeHeavyThrust
	ModeContinuousThrust
)

var modeNames = [...]string{
	ModeIdle:             "idle",
	ModeSwing:            "swing",
	ModeThrust:           "thrust",
	ModeHeavyThrust:      "heavy_thrust",
	ModeContinuousThrust: "continuous_thrust",
}

// String returns the snake_case name of m.
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// ParseMode resolves a mode name. Hyphens and case are ignored.
func ParseMode(s string) (Mode, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, name := range modeNames {
		if name == norm {
			return Mode(i), nil
		}
	}
	return ModeIdle, fmt.Errorf("unknown motion %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler for YAML decoding.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
