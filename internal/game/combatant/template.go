package combatant

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/bladecore/internal/game/damage"
)

// Template defines a reusable combatant archetype loaded from YAML.
// Zero pool sizes fall back to the Rules the combatant is built with.
type Template struct {
	ID                string             `yaml:"id"`
	Name              string             `yaml:"name"`
	Health            float64            `yaml:"health"`
	Mana              float64            `yaml:"mana"`
	Stamina           float64            `yaml:"stamina"`
	HealthRegen       float64            `yaml:"health_regen"`
	Attributes        Attributes         `yaml:"attributes"`
	StatPoints        *int               `yaml:"stat_points"`
	ArtifactCritBonus float64            `yaml:"artifact_crit_bonus"`
	Purity            float64            `yaml:"purity"`
	Corruption        float64            `yaml:"corruption"`
	Profile           damage.ProfileSpec `yaml:"profile"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, pool sizes and
// regen are non-negative, at most one of purity/corruption is positive, both
// lie in [0, 100], and the profile builds.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("combatant template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("combatant template %q: name must not be empty", t.ID)
	}
	if t.Health < 0 || t.Mana < 0 || t.Stamina < 0 {
		return fmt.Errorf("combatant template %q: pool sizes must be >= 0", t.ID)
	}
	if t.HealthRegen < 0 {
		return fmt.Errorf("combatant template %q: health_regen must be >= 0", t.ID)
	}
	if t.StatPoints != nil && *t.StatPoints < 0 {
		return fmt.Errorf("combatant template %q: stat_points must be >= 0", t.ID)
	}
	if t.Purity < 0 || t.Purity > 100 || t.Corruption < 0 || t.Corruption > 100 {
		return fmt.Errorf("combatant template %q: purity and corruption must be in [0, 100]", t.ID)
	}
	if t.Purity > 0 && t.Corruption > 0 {
		return fmt.Errorf("combatant template %q: purity and corruption are mutually exclusive", t.ID)
	}
	if _, err := t.Profile.Build(); err != nil {
		return fmt.Errorf("combatant template %q: %w", t.ID, err)
	}
	return nil
}

// LoadTemplateFromBytes parses a single combatant template from raw YAML bytes.
// Unknown keys are rejected.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing combatant YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading combatant dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

// NewFromTemplate creates a live combatant with the given instance id from tmpl.
//
// Precondition: tmpl must have passed Validate.
// Postcondition: Returns a combatant with full pools and the template's
// attributes, profile and purity or corruption applied.
func NewFromTemplate(id string, tmpl *Template, rules Rules, logger *zap.Logger) *Combatant {
	if tmpl.Health > 0 {
		rules.BaseHealth = tmpl.Health
	}
	if tmpl.Mana > 0 {
		rules.BaseMana = tmpl.Mana
	}
	if tmpl.Stamina > 0 {
		rules.BaseStamina = tmpl.Stamina
	}
	if tmpl.HealthRegen > 0 {
		rules.HealthRegen = tmpl.HealthRegen
	}
	if tmpl.StatPoints != nil {
		rules.StartingStatPoints = *tmpl.StatPoints
	}

	c := New(id, tmpl.Name, rules, logger)
	c.attrs = tmpl.Attributes
	c.ArtifactCritBonus = tmpl.ArtifactCritBonus
	if p, err := tmpl.Profile.Build(); err == nil {
		c.profile = p
	}
	c.recomputeStats()
	c.AddPurity(tmpl.Purity)
	c.AddCorruption(tmpl.Corruption)
	return c
}
