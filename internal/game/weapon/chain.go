package weapon

import (
	"sort"

	"github.com/cory-johannsen/bladecore/internal/game/geom"
)

// BuildQueue selects the live candidates within maxRange of origin, nearest
// first, keeping at most limit. Equal distances keep candidate order.
//
// Postcondition: len(result) <= max(limit, 0); distances are non-decreasing.
func BuildQueue(origin geom.Vec2, candidates []Target, maxRange float64, limit int) []Target {
	if limit <= 0 {
		return nil
	}
	type ranked struct {
		t Target
		d float64
	}
	var inRange []ranked
	for _, c := range candidates {
		if c == nil || !c.Alive() {
			continue
		}
		d := geom.Dist(origin, c.Position())
		if d <= maxRange {
			inRange = append(inRange, ranked{t: c, d: d})
		}
	}
	sort.SliceStable(inRange, func(i, j int) bool { return inRange[i].d < inRange[j].d })
	if len(inRange) > limit {
		inRange = inRange[:limit]
	}
	queue := make([]Target, len(inRange))
	for i, r := range inRange {
		queue[i] = r.t
	}
	return queue
}

// EffectFor picks the dash effect for a jump of distance d: short up to 4,
// medium up to 9, long beyond. An unset tier falls through to the next.
func EffectFor(p ContinuousThrustParams, d float64) string {
	switch {
	case d <= 4 && p.ShortEffect != "":
		return p.ShortEffect
	case d <= 9 && p.MediumEffect != "":
		return p.MediumEffect
	default:
		return p.LongEffect
	}
}
