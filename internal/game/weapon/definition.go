package weapon

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/bladecore/internal/game/damage"
	"github.com/cory-johannsen/bladecore/internal/game/geom"
)

// SwingParams tunes a swing. A style strike may override them per strike.
type SwingParams struct {
	StartOffset float64 `yaml:"start_offset"`
	Degrees     float64 `yaml:"degrees"`
	Duration    float64 `yaml:"duration"`
}

// ThrustParams tunes a thrust.
type ThrustParams struct {
	Distance float64 `yaml:"distance"`
	Duration float64 `yaml:"duration"`
}

// HeavyThrustParams tunes the pull-back and dash of a heavy thrust and its
// particle trail.
type HeavyThrustParams struct {
	Pullback float64 `yaml:"pullback"`
	Distance float64 `yaml:"distance"`
	Duration float64 `yaml:"duration"`
	// ParticleDensity in [0, 1] maps to a spacing of lerp(3, 0.2, density).
	ParticleDensity     float64  `yaml:"particle_density"`
	ParticleLifetime    float64  `yaml:"particle_lifetime"`
	ParticleSpawnRadius float64  `yaml:"particle_spawn_radius"`
	Particles           []string `yaml:"particles"`
}

// ContinuousThrustParams tunes target chaining.
type ContinuousThrustParams struct {
	Range          float64 `yaml:"range"`
	Limit          int     `yaml:"limit"`
	Speed          float64 `yaml:"speed"`
	ShortEffect    string  `yaml:"short_effect"`
	MediumEffect   string  `yaml:"medium_effect"`
	LongEffect     string  `yaml:"long_effect"`
	EffectLifetime float64 `yaml:"effect_lifetime"`
}

// Animation is a transient visual spawned when a swing or thrust starts.
type Animation struct {
	Prefab         string    `yaml:"prefab"`
	Offset         geom.Vec2 `yaml:"offset"`
	RotationOffset float64   `yaml:"rotation_offset"`
	Duration       float64   `yaml:"duration"`
}

// Animations groups the per-motion start animations. Nil entries spawn nothing.
type Animations struct {
	Swing  *Animation `yaml:"swing"`
	Thrust *Animation `yaml:"thrust"`
}

// Definition is the static description of a weapon, loaded from YAML.
type Definition struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Damage     float64        `yaml:"damage"`
	DamageType damage.Type    `yaml:"damage_type"`
	Element    damage.Element `yaml:"element"`
	// Click and Hold are the default motions for a short press and a held press.
	Click Mode `yaml:"click"`
	Hold  Mode `yaml:"hold"`
	// PositionOffset and RotationOffset place the blade relative to the pivot.
	PositionOffset geom.Vec2 `yaml:"position_offset"`
	RotationOffset float64   `yaml:"rotation_offset"`
	// HitRadius is the contact radius around the blade position.
	HitRadius float64 `yaml:"hit_radius"`

	Swing            SwingParams            `yaml:"swing"`
	Thrust           ThrustParams           `yaml:"thrust"`
	HeavyThrust      HeavyThrustParams      `yaml:"heavy_thrust"`
	ContinuousThrust ContinuousThrustParams `yaml:"continuous_thrust"`
	Animations       Animations             `yaml:"animations"`
}

// DefaultDefinition returns the stock sword tuning. Loaders decode on top of
// it, so omitted YAML keys keep these values.
func DefaultDefinition() Definition {
	return Definition{
		Damage:         10,
		Click:          ModeSwing,
		Hold:           ModeThrust,
		PositionOffset: geom.V(1, 0),
		HitRadius:      0.75,
		Swing:          SwingParams{StartOffset: 90, Degrees: 180, Duration: 0.3},
		Thrust:         ThrustParams{Distance: 1, Duration: 0.2},
		HeavyThrust: HeavyThrustParams{
			Pullback:            2,
			Distance:            15,
			Duration:            0.6,
			ParticleDensity:     0.5,
			ParticleLifetime:    0.5,
			ParticleSpawnRadius: 0.5,
		},
		ContinuousThrust: ContinuousThrustParams{
			Range:          13,
			Limit:          33,
			Speed:          25,
			EffectLifetime: 0.5,
		},
	}
}

// Validate checks that the definition satisfies its invariants.
//
// Precondition: d must not be nil.
// Postcondition: Returns nil iff all fields are valid; otherwise one error
// listing every violation.
func (d *Definition) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Damage < 0 {
		errs = append(errs, errors.New("damage must be >= 0"))
	}
	if d.Click == ModeIdle || d.Hold == ModeIdle {
		errs = append(errs, errors.New("click and hold must name a motion"))
	}
	if d.HitRadius < 0 {
		errs = append(errs, errors.New("hit_radius must be >= 0"))
	}
	if d.Swing.Duration <= 0 || d.Thrust.Duration <= 0 || d.HeavyThrust.Duration <= 0 {
		errs = append(errs, errors.New("motion durations must be > 0"))
	}
	if d.HeavyThrust.ParticleDensity < 0 || d.HeavyThrust.ParticleDensity > 1 {
		errs = append(errs, errors.New("heavy_thrust.particle_density must be in [0, 1]"))
	}
	if d.ContinuousThrust.Range < 0 || d.ContinuousThrust.Limit < 0 || d.ContinuousThrust.Speed <= 0 {
		errs = append(errs, errors.New("continuous_thrust range and limit must be >= 0 and speed > 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon %q validation failed: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// LoadDefinitionFromBytes parses one weapon definition over DefaultDefinition.
// Unknown keys are rejected.
//
// Postcondition: Returns a validated *Definition, or an error.
func LoadDefinitionFromBytes(data []byte) (*Definition, error) {
	def := DefaultDefinition()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parsing weapon YAML: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadDefinitions reads all *.yaml files in dir.
//
// Precondition: dir is a readable directory path.
// Postcondition: Returns all valid definitions or the first encountered error.
func LoadDefinitions(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading weapon dir %q: %w", dir, err)
	}
	var defs []*Definition
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		def, err := LoadDefinitionFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}
