package weapon

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bladecore/internal/game/dice"
	"github.com/cory-johannsen/bladecore/internal/game/geom"
)

// reachEpsilon is how close a continuous thrust must get to count as arrived.
const reachEpsilon = 0.05

// progress returns elapsed/duration clamped to [0, 1]; a non-positive
// duration completes immediately.
func progress(elapsed, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	return geom.Clamp01(elapsed / duration)
}

type swing struct {
	params     SwingParams
	startAngle float64
	facingLeft bool
	elapsed    float64
}

func (m *Machine) startSwing(p SwingParams) motion {
	pivot, aim := m.pivot(), m.aimPoint()
	base := geom.AngleDeg(aim.Sub(pivot))
	facingLeft := aim.X < pivot.X

	start := base + p.StartOffset
	if facingLeft {
		start = base - p.StartOffset
	}
	s := &swing{params: p, startAngle: start, facingLeft: facingLeft}
	m.place(start, m.def.PositionOffset, facingLeft)
	m.playAnimation(m.def.Animations.Swing, base, facingLeft)
	return s
}

func (s *swing) mode() Mode        { return ModeSwing }
func (s *swing) contactHits() bool { return true }

// angle returns the blade angle at the current progress. Facing right sweeps
// clockwise, facing left counter-clockwise.
func (s *swing) angle() float64 {
	dir := -1.0
	if s.facingLeft {
		dir = 1
	}
	return s.startAngle + s.params.Degrees*progress(s.elapsed, s.params.Duration)*dir
}

func (s *swing) tick(m *Machine, dt float64) bool {
	s.elapsed += dt
	m.place(s.angle(), m.def.PositionOffset, s.facingLeft)
	return s.elapsed >= s.params.Duration
}

type thrust struct {
	angle       float64
	localStart  geom.Vec2
	localTarget geom.Vec2
	facingLeft  bool
	elapsed     float64
	duration    float64
}

func (m *Machine) startThrust() motion {
	pivot, aim := m.pivot(), m.aimPoint()
	dir := aim.Sub(pivot).Normalized()
	angle := geom.AngleDeg(dir)
	localStart := geom.Rotate(m.def.PositionOffset, angle)
	t := &thrust{
		angle:       angle,
		localStart:  localStart,
		localTarget: localStart.Add(dir.Scale(m.def.Thrust.Distance)),
		facingLeft:  aim.X < pivot.X,
		duration:    m.def.Thrust.Duration,
	}
	t.apply(m)
	m.playAnimation(m.def.Animations.Thrust, angle, t.facingLeft)
	return t
}

func (t *thrust) mode() Mode        { return ModeThrust }
func (t *thrust) contactHits() bool { return true }

// local returns the blade offset: out during the first half, back during the second.
func (t *thrust) local() geom.Vec2 {
	half := t.duration / 2
	if t.elapsed <= half {
		return geom.Lerp(t.localStart, t.localTarget, progress(t.elapsed, half))
	}
	return geom.Lerp(t.localTarget, t.localStart, progress(t.elapsed-half, half))
}

func (t *thrust) apply(m *Machine) {
	m.pose = Pose{
		Position: m.pivot().Add(t.local()),
		Rotation: t.angle + m.def.RotationOffset,
		FlipY:    t.facingLeft,
	}
}

func (t *thrust) tick(m *Machine, dt float64) bool {
	t.elapsed += dt
	t.apply(m)
	return t.elapsed >= t.duration
}

type heavyThrust struct {
	params      HeavyThrustParams
	angle       float64
	start       geom.Vec2
	end         geom.Vec2
	elapsed     float64
	accumulated float64
}

func (m *Machine) startHeavyThrust() motion {
	pivot := m.pivot()
	dir := m.aimPoint().Sub(pivot).Normalized()
	h := &heavyThrust{
		params: m.def.HeavyThrust,
		angle:  geom.AngleDeg(dir),
		start:  pivot,
		end:    pivot.Add(dir.Scale(m.def.HeavyThrust.Distance)),
	}
	m.place(h.angle, m.def.PositionOffset, m.pose.FlipY)
	return h
}

func (h *heavyThrust) mode() Mode        { return ModeHeavyThrust }
func (h *heavyThrust) contactHits() bool { return true }

// spacing is the trail distance between particles.
func (h *heavyThrust) spacing() float64 {
	return geom.Lerp1(3, 0.2, h.params.ParticleDensity)
}

func (h *heavyThrust) tick(m *Machine, dt float64) bool {
	h.elapsed += dt
	half := h.params.Duration / 2

	if h.elapsed <= half {
		pull := m.def.PositionOffset.Add(geom.V(-h.params.Pullback*progress(h.elapsed, half), 0))
		m.place(h.angle, pull, m.pose.FlipY)
	} else {
		cur := m.pivot()
		next := geom.Lerp(h.start, h.end, progress(h.elapsed-half, half))
		h.trail(m, cur, next)
		m.deps.Wielder.SetPosition(next)
		m.place(h.angle, m.def.PositionOffset, m.pose.FlipY)
	}
	return h.elapsed >= h.params.Duration
}

// trail emits one particle each time the distance dashed crosses the spacing.
func (h *heavyThrust) trail(m *Machine, from, to geom.Vec2) {
	if h.params.ParticleDensity <= 0 || len(h.params.Particles) == 0 {
		return
	}
	spacing := h.spacing()
	h.accumulated += geom.Dist(from, to)
	for h.accumulated >= spacing {
		h.accumulated -= spacing

		src := m.deps.Source
		prefab := h.params.Particles[src.Intn(len(h.params.Particles))]
		along := geom.Lerp(from, to, dice.Float64(src))
		m.spawn(SpawnRequest{
			Prefab:   prefab,
			Position: along.Add(insideUnitCircle(src).Scale(h.params.ParticleSpawnRadius)),
			Lifetime: h.params.ParticleLifetime,
		})
	}
}

// insideUnitCircle returns a uniformly distributed point in the unit disc.
func insideUnitCircle(src dice.Source) geom.Vec2 {
	r := math.Sqrt(dice.Float64(src))
	return geom.FromAngle(dice.Float64(src) * 360).Scale(r)
}

type continuousThrust struct {
	params ContinuousThrustParams
	queue  []Target
	target Target
	end    geom.Vec2
	angle  float64
	links  int
}

func (m *Machine) startContinuousThrust() motion {
	if m.deps.Targets == nil {
		return nil
	}
	p := m.def.ContinuousThrust
	origin := m.pivot()
	queue := BuildQueue(origin, m.deps.Targets.Opponents(m.deps.Wielder.ID()), p.Range, p.Limit)
	if len(queue) == 0 {
		return nil
	}
	c := &continuousThrust{params: p, queue: queue}
	if !c.advance(m) {
		return nil
	}
	return c
}

func (c *continuousThrust) mode() Mode        { return ModeContinuousThrust }
func (c *continuousThrust) contactHits() bool { return false }

// advance dequeues the next live target and aims the dash at it. Targets that
// died while queued are dropped without counting as a link.
func (c *continuousThrust) advance(m *Machine) bool {
	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		if !next.Alive() {
			continue
		}
		start := m.pivot()
		c.target = next
		c.end = next.Position()
		c.angle = geom.AngleDeg(c.end.Sub(start))
		c.links++
		m.spawn(SpawnRequest{
			Prefab:   EffectFor(c.params, geom.Dist(start, c.end)),
			Position: start,
			Rotation: c.angle,
			Lifetime: c.params.EffectLifetime,
		})
		m.logger.Debug("chain link",
			zap.Int("link", c.links),
			zap.String("target", next.ID()),
			zap.Float64("distance", geom.Dist(start, c.end)),
		)
		return true
	}
	return false
}

func (c *continuousThrust) tick(m *Machine, dt float64) bool {
	pos := geom.MoveTowards(m.pivot(), c.end, c.params.Speed*dt)
	m.deps.Wielder.SetPosition(pos)
	m.place(c.angle, m.def.PositionOffset, m.pose.FlipY)

	if geom.Dist(pos, c.end) > reachEpsilon {
		return false
	}
	if c.target.Alive() {
		m.dealDamage(c.target)
	}
	if len(c.queue) > 0 && c.links < c.params.Limit {
		return !c.advance(m)
	}
	return true
}
