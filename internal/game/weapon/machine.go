package weapon

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bladecore/internal/game/combatant"
	"github.com/cory-johannsen/bladecore/internal/game/dice"
	"github.com/cory-johannsen/bladecore/internal/game/geom"
)

// motion is the payload of the active mode. A nil motion is Idle.
type motion interface {
	mode() Mode
	// tick advances the motion by dt and reports whether it has finished.
	tick(m *Machine, dt float64) bool
	// contactHits reports whether touching an opponent deals damage.
	contactHits() bool
}

// Deps are the collaborators a Machine works through. Only Wielder is
// required; the rest are skipped when nil.
type Deps struct {
	Wielder  Wielder
	Aim      Aimer
	Targets  TargetSource
	Spawner  Spawner
	Selector MotionSelector
	Source   dice.Source
	Logger   *zap.Logger
}

// Machine is one weapon instance's attack state.
//
// It is not safe for concurrent use; the simulation tick serialises access.
type Machine struct {
	def    Definition
	deps   Deps
	logger *zap.Logger

	style       *Style
	strikeIndex int

	motion motion
	struck map[string]bool
	pose   Pose
}

// NewMachine creates an idle weapon.
//
// Precondition: def should have passed Validate; deps.Wielder must be non-nil
// for the weapon to act.
func NewMachine(def Definition, deps Deps) *Machine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Source == nil {
		deps.Source = dice.NewCryptoSource()
	}
	wielder := ""
	if deps.Wielder != nil {
		wielder = deps.Wielder.ID()
	}
	m := &Machine{
		def:    def,
		deps:   deps,
		logger: logger.With(zap.String("weapon", def.ID), zap.String("wielder", wielder)),
		struck: make(map[string]bool),
	}
	if deps.Wielder != nil {
		m.idleFollow()
	}
	return m
}

// Definition returns the weapon's static definition.
func (m *Machine) Definition() Definition { return m.def }

// Mode returns the active mode.
func (m *Machine) Mode() Mode {
	if m.motion == nil {
		return ModeIdle
	}
	return m.motion.mode()
}

// IsIdle reports whether no motion is active.
func (m *Machine) IsIdle() bool { return m.motion == nil }

// Pose returns the blade's current world transform.
func (m *Machine) Pose() Pose { return m.pose }

// HitVolumeActive reports whether the blade's hit volume is enabled. It is
// enabled for the whole of every motion.
func (m *Machine) HitVolumeActive() bool { return m.motion != nil }

// Style returns the current style, or nil.
func (m *Machine) Style() *Style { return m.style }

// StrikeIndex returns the index of the next strike in the current style.
func (m *Machine) StrikeIndex() int { return m.strikeIndex }

// SetStyle replaces the style and restarts its strike cycle.
func (m *Machine) SetStyle(s *Style) {
	m.style = s
	m.strikeIndex = 0
}

// FollowStyles adopts b's current style and tracks later changes until the
// returned function is called.
func (m *Machine) FollowStyles(b *StyleBook) (unsubscribe func()) {
	m.SetStyle(b.Current())
	return b.Subscribe(m.SetStyle)
}

// Ready reports whether an activation could start a motion now.
func (m *Machine) Ready() bool { return m.deps.Wielder != nil && m.motion == nil }

// Activate starts the motion chosen for this input. Without a style, a click
// uses the definition's Click motion and a hold its Hold motion. With a style,
// the next strike in its cycle may override that choice.
//
// Activation is rejected while any motion is active, when the wielder is
// missing, and when a continuous thrust finds no target. A rejected
// activation does not advance the strike cycle.
//
// Postcondition: Returns true iff a motion started.
func (m *Machine) Activate(isPrimary, isHold bool) bool {
	if m.deps.Wielder == nil || m.motion != nil {
		return false
	}

	chosen := m.def.Click
	if isHold {
		chosen = m.def.Hold
	}

	var strike *Strike
	if m.style != nil && len(m.style.Strikes) > 0 {
		strike = &m.style.Strikes[m.strikeIndex%len(m.style.Strikes)]
		switch strike.Type {
		case StrikeSwing:
			chosen = ModeSwing
		case StrikeSpecial:
			chosen = m.selectSpecial(strike, chosen, isPrimary, isHold)
		}
	}

	if !m.start(chosen, strike) {
		return false
	}
	if m.style != nil && len(m.style.Strikes) > 0 {
		m.strikeIndex = (m.strikeIndex + 1) % len(m.style.Strikes)
	}
	return true
}

func (m *Machine) selectSpecial(strike *Strike, fallback Mode, isPrimary, isHold bool) Mode {
	if m.deps.Selector == nil {
		m.logger.Debug("special strike without selector", zap.String("hook", strike.Hook))
		return fallback
	}
	ctx := m.strikeContext(fallback, isPrimary, isHold)
	name, ok := m.deps.Selector.SelectMotion(strike.Hook, ctx)
	if !ok {
		return fallback
	}
	mode, err := ParseMode(name)
	if err != nil || mode == ModeIdle {
		m.logger.Warn("special strike hook returned an invalid motion",
			zap.String("hook", strike.Hook),
			zap.String("motion", name),
		)
		return fallback
	}
	return mode
}

func (m *Machine) strikeContext(fallback Mode, isPrimary, isHold bool) StrikeContext {
	ctx := StrikeContext{
		WeaponID:    m.def.ID,
		WielderID:   m.deps.Wielder.ID(),
		Primary:     isPrimary,
		Hold:        isHold,
		StrikeIndex: m.strikeIndex,
		Default:     fallback,
		Nearest:     -1,
	}
	if m.deps.Targets == nil {
		return ctx
	}
	origin := m.deps.Wielder.Position()
	for _, t := range m.deps.Targets.Opponents(ctx.WielderID) {
		if !t.Alive() {
			continue
		}
		d := geom.Dist(origin, t.Position())
		if d <= m.def.ContinuousThrust.Range {
			ctx.InRange++
		}
		if ctx.Nearest < 0 || d < ctx.Nearest {
			ctx.Nearest = d
		}
	}
	return ctx
}

func (m *Machine) start(mode Mode, strike *Strike) bool {
	var mo motion
	switch mode {
	case ModeSwing:
		params := m.def.Swing
		if strike != nil && strike.Swing != nil {
			params = *strike.Swing
		}
		mo = m.startSwing(params)
	case ModeThrust:
		mo = m.startThrust()
	case ModeHeavyThrust:
		mo = m.startHeavyThrust()
	case ModeContinuousThrust:
		mo = m.startContinuousThrust()
	}
	if mo == nil {
		return false
	}
	m.motion = mo
	clear(m.struck)
	m.logger.Debug("motion started", zap.Stringer("mode", mode))
	return true
}

// Tick advances the active motion by dt seconds, or tracks the aim point
// while idle.
//
// Precondition: dt >= 0.
func (m *Machine) Tick(dt float64) {
	if m.deps.Wielder == nil || dt < 0 {
		return
	}
	if m.motion == nil {
		m.idleFollow()
		return
	}
	if m.motion.tick(m, dt) {
		m.finish()
	}
}

// Cancel aborts any active motion and returns to Idle.
func (m *Machine) Cancel() {
	if m.motion != nil {
		m.finish()
	}
}

// Interrupt aborts a continuous thrust, the weapon's channeled motion. Other
// motions run on.
func (m *Machine) Interrupt() {
	if m.motion != nil && m.motion.mode() == ModeContinuousThrust {
		m.logger.Debug("channel interrupted")
		m.finish()
	}
}

func (m *Machine) finish() {
	m.logger.Debug("motion ended", zap.Stringer("mode", m.motion.mode()))
	m.motion = nil
	clear(m.struck)
}

// Contact resolves the hit volume touching t. During a swing, thrust or heavy
// thrust each live opponent is struck at most once per motion.
//
// Postcondition: Returns true iff t took a hit.
func (m *Machine) Contact(t Target) bool {
	if m.motion == nil || !m.motion.contactHits() || t == nil || !t.Alive() {
		return false
	}
	if m.struck[t.ID()] {
		return false
	}
	m.struck[t.ID()] = true
	m.dealDamage(t)
	return true
}

// InReach reports whether p lies within the blade's hit radius.
func (m *Machine) InReach(p geom.Vec2) bool {
	return geom.Dist(m.pose.Position, p) <= m.def.HitRadius
}

func (m *Machine) dealDamage(t Target) int {
	amount := int(math.RoundToEven(m.def.Damage))
	var critical bool
	if s, ok := m.deps.Wielder.(Striker); ok {
		amount, critical = s.StrikeDamage(amount, m.def.DamageType, m.deps.Source)
	}
	dealt := t.TakeDamage(combatant.Hit{
		Amount:     amount,
		Knockback:  t.Position().Sub(m.pivot()).Normalized(),
		AttackerID: m.deps.Wielder.ID(),
		Type:       m.def.DamageType,
		Critical:   critical,
		Element:    m.def.Element,
	})
	m.logger.Debug("hit",
		zap.String("target", t.ID()),
		zap.Int("damage", dealt),
		zap.Bool("critical", critical),
	)
	return dealt
}

// pivot is the weapon's anchor: the wielder's position.
func (m *Machine) pivot() geom.Vec2 { return m.deps.Wielder.Position() }

func (m *Machine) aimPoint() geom.Vec2 {
	if m.deps.Aim == nil {
		return m.pivot().Add(geom.V(1, 0))
	}
	return m.deps.Aim.AimPoint()
}

// place sets the pose for a blade at angle degrees around the pivot.
func (m *Machine) place(angle float64, local geom.Vec2, flip bool) {
	m.pose = Pose{
		Position: m.pivot().Add(geom.Rotate(local, angle)),
		Rotation: angle + m.def.RotationOffset,
		FlipY:    flip,
	}
}

func (m *Machine) idleFollow() {
	pivot, aim := m.pivot(), m.aimPoint()
	angle := geom.AngleDeg(aim.Sub(pivot))
	m.place(angle, m.def.PositionOffset, aim.X < pivot.X)
}

func (m *Machine) spawn(req SpawnRequest) {
	if m.deps.Spawner == nil || req.Prefab == "" {
		return
	}
	m.deps.Spawner.Spawn(req)
}

// playAnimation spawns a start-of-motion visual around the pivot, mirrored
// when facing left.
func (m *Machine) playAnimation(a *Animation, baseAngle float64, facingLeft bool) {
	if a == nil {
		return
	}
	rot := baseAngle + a.RotationOffset
	m.spawn(SpawnRequest{
		Prefab:   a.Prefab,
		Position: m.pivot().Add(geom.Rotate(a.Offset, rot)),
		Rotation: rot,
		FlipY:    facingLeft,
		Lifetime: a.Duration,
	})
}
