package weapon

import (
	"github.com/cory-johannsen/bladecore/internal/game/combatant"
	"github.com/cory-johannsen/bladecore/internal/game/damage"
	"github.com/cory-johannsen/bladecore/internal/game/dice"
	"github.com/cory-johannsen/bladecore/internal/game/geom"
)

// Wielder is the entity holding the weapon. Its position is the weapon pivot,
// and heavy and continuous thrusts move it.
type Wielder interface {
	ID() string
	Position() geom.Vec2
	SetPosition(p geom.Vec2)
}

// Striker is implemented by wielders that scale their weapon's damage, for
// example with attributes or critical hits.
type Striker interface {
	StrikeDamage(base int, t damage.Type, src dice.Source) (amount int, critical bool)
}

// Aimer supplies the world point the wielder is aiming at.
type Aimer interface {
	AimPoint() geom.Vec2
}

// Target is a damageable opponent.
type Target interface {
	ID() string
	Position() geom.Vec2
	Alive() bool
	TakeDamage(h combatant.Hit) int
}

// TargetSource enumerates the live opponents of a wielder in a stable order.
type TargetSource interface {
	Opponents(of string) []Target
}

// SpawnRequest asks for a transient visual object. Rotation is in degrees.
type SpawnRequest struct {
	Prefab   string
	Position geom.Vec2
	Rotation float64
	FlipY    bool
	Lifetime float64
}

// Spawner creates fire-and-forget visuals.
type Spawner interface {
	Spawn(req SpawnRequest)
}

// StrikeContext describes an activation to a special-strike hook.
type StrikeContext struct {
	WeaponID  string
	WielderID string
	Primary   bool
	Hold      bool
	// StrikeIndex is the position of the strike within the style.
	StrikeIndex int
	// Default is the motion the activation would use without the hook.
	Default Mode
	// InRange counts live opponents within the continuous thrust range.
	InRange int
	// Nearest is the distance to the nearest live opponent, or -1 if none.
	Nearest float64
}

// MotionSelector picks the motion for a special strike. ok is false when the
// hook is missing or fails; the default is used then.
type MotionSelector interface {
	SelectMotion(hook string, ctx StrikeContext) (motion string, ok bool)
}

// Pose is the blade's world transform.
type Pose struct {
	Position geom.Vec2
	// Rotation is in degrees.
	Rotation float64
	FlipY    bool
}
