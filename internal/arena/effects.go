package arena

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/bladecore/internal/game/geom"
	"github.com/cory-johannsen/bladecore/internal/game/weapon"
)

// Effect is a live transient visual.
type Effect struct {
	ID        string
	Prefab    string
	Position  geom.Vec2
	Rotation  float64
	FlipY     bool
	Remaining float64
}

// Effects is the registry of live transient visuals. An effect spawned with
// no lifetime lasts until the next expiry pass.
type Effects struct {
	live    []*Effect
	spawned int
}

var _ weapon.Spawner = (*Effects)(nil)

// NewEffects returns an empty registry.
func NewEffects() *Effects { return &Effects{} }

// Spawn registers a new effect for req.
func (x *Effects) Spawn(req weapon.SpawnRequest) {
	x.spawned++
	x.live = append(x.live, &Effect{
		ID:        uuid.NewString(),
		Prefab:    req.Prefab,
		Position:  req.Position,
		Rotation:  req.Rotation,
		FlipY:     req.FlipY,
		Remaining: req.Lifetime,
	})
}

// Tick ages every effect by dt and drops the expired ones.
func (x *Effects) Tick(dt float64) {
	kept := x.live[:0]
	for _, e := range x.live {
		e.Remaining -= dt
		if e.Remaining > 0 {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(x.live); i++ {
		x.live[i] = nil
	}
	x.live = kept
}

// Live returns the effects currently alive, oldest first.
func (x *Effects) Live() []*Effect { return x.live }

// Spawned returns how many effects have ever been spawned.
func (x *Effects) Spawned() int { return x.spawned }
