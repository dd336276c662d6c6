// Package content loads the YAML data an arena is built from: combatant
// templates, weapon definitions, swordsmanship styles and encounter scripts.
package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/bladecore/internal/game/combatant"
	"github.com/cory-johannsen/bladecore/internal/game/weapon"
)

// Subdirectories of a content root.
const (
	CombatantsDir = "combatants"
	WeaponsDir    = "weapons"
	StylesDir     = "styles"
	EncountersDir = "encounters"
)

// Library holds all loaded definitions indexed by ID.
type Library struct {
	templates  map[string]*combatant.Template
	weapons    map[string]*weapon.Definition
	styles     map[string]*weapon.Style
	encounters map[string]*Encounter
}

// NewLibrary returns an empty Library.
//
// Postcondition: all internal maps are initialised.
func NewLibrary() *Library {
	return &Library{
		templates:  make(map[string]*combatant.Template),
		weapons:    make(map[string]*weapon.Definition),
		styles:     make(map[string]*weapon.Style),
		encounters: make(map[string]*Encounter),
	}
}

// RegisterTemplate adds t to the library.
//
// Precondition: t must not be nil.
// Postcondition: Template(t.ID) returns t; returns error if t.ID already registered.
func (l *Library) RegisterTemplate(t *combatant.Template) error {
	if _, exists := l.templates[t.ID]; exists {
		return fmt.Errorf("content: combatant template ID %q already registered", t.ID)
	}
	l.templates[t.ID] = t
	return nil
}

// RegisterWeapon adds d to the library.
//
// Precondition: d must not be nil.
// Postcondition: Weapon(d.ID) returns d; returns error if d.ID already registered.
func (l *Library) RegisterWeapon(d *weapon.Definition) error {
	if _, exists := l.weapons[d.ID]; exists {
		return fmt.Errorf("content: weapon ID %q already registered", d.ID)
	}
	l.weapons[d.ID] = d
	return nil
}

// RegisterStyle adds s to the library.
//
// Precondition: s must not be nil.
// Postcondition: Style(s.ID) returns s; returns error if s.ID already registered.
func (l *Library) RegisterStyle(s *weapon.Style) error {
	if _, exists := l.styles[s.ID]; exists {
		return fmt.Errorf("content: style ID %q already registered", s.ID)
	}
	l.styles[s.ID] = s
	return nil
}

// RegisterEncounter adds e to the library.
//
// Precondition: e must not be nil.
// Postcondition: Encounter(e.ID) returns e; returns error if e.ID already registered.
func (l *Library) RegisterEncounter(e *Encounter) error {
	if _, exists := l.encounters[e.ID]; exists {
		return fmt.Errorf("content: encounter ID %q already registered", e.ID)
	}
	l.encounters[e.ID] = e
	return nil
}

// Template returns the combatant template for id, or nil.
func (l *Library) Template(id string) *combatant.Template { return l.templates[id] }

// Weapon returns the weapon definition for id, or nil.
func (l *Library) Weapon(id string) *weapon.Definition { return l.weapons[id] }

// Style returns the style for id, or nil.
func (l *Library) Style(id string) *weapon.Style { return l.styles[id] }

// Encounter returns the encounter for id and whether it was found.
func (l *Library) Encounter(id string) (*Encounter, bool) {
	e, ok := l.encounters[id]
	return e, ok
}

// EncounterIDs returns every registered encounter id, sorted.
func (l *Library) EncounterIDs() []string {
	ids := make([]string, 0, len(l.encounters))
	for id := range l.encounters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Counts reports how many of each definition kind are registered.
func (l *Library) Counts() (templates, weapons, styles, encounters int) {
	return len(l.templates), len(l.weapons), len(l.styles), len(l.encounters)
}

// CheckEncounter verifies that every template, weapon and style e refers to
// is registered.
//
// Postcondition: Returns nil or every dangling reference joined into one error.
func (l *Library) CheckEncounter(e *Encounter) error {
	var errs []error
	for _, p := range e.Participants {
		if l.templates[p.Template] == nil {
			errs = append(errs, fmt.Errorf("encounter %q participant %q: unknown template %q", e.ID, p.ID, p.Template))
		}
		if p.Style != "" && l.styles[p.Style] == nil {
			errs = append(errs, fmt.Errorf("encounter %q participant %q: unknown style %q", e.ID, p.ID, p.Style))
		}
		for _, w := range p.Weapons() {
			if l.weapons[w] == nil {
				errs = append(errs, fmt.Errorf("encounter %q participant %q: unknown weapon %q", e.ID, p.ID, w))
			}
		}
	}
	return errors.Join(errs...)
}

// Load reads every content subdirectory of root concurrently and registers the
// results. A missing subdirectory contributes nothing.
//
// Precondition: root must be a readable directory; logger may be nil.
// Postcondition: Returns a Library whose encounters reference only registered
// definitions, or the first load error naming the offending file.
func Load(ctx context.Context, root string, logger *zap.Logger) (*Library, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	var (
		templates  []*combatant.Template
		weapons    []*weapon.Definition
		styles     []*weapon.Style
		encounters []*Encounter
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		templates, err = loadOptional(gctx, filepath.Join(root, CombatantsDir), combatant.LoadTemplates)
		return err
	})
	g.Go(func() error {
		var err error
		weapons, err = loadOptional(gctx, filepath.Join(root, WeaponsDir), weapon.LoadDefinitions)
		return err
	})
	g.Go(func() error {
		var err error
		styles, err = loadOptional(gctx, filepath.Join(root, StylesDir), weapon.LoadStyles)
		return err
	})
	g.Go(func() error {
		var err error
		encounters, err = loadOptional(gctx, filepath.Join(root, EncountersDir), LoadEncounters)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lib := NewLibrary()
	var errs []error
	for _, t := range templates {
		errs = append(errs, lib.RegisterTemplate(t))
	}
	for _, w := range weapons {
		errs = append(errs, lib.RegisterWeapon(w))
	}
	for _, s := range styles {
		errs = append(errs, lib.RegisterStyle(s))
	}
	for _, e := range encounters {
		errs = append(errs, lib.RegisterEncounter(e))
	}
	for _, id := range lib.EncounterIDs() {
		errs = append(errs, lib.CheckEncounter(lib.encounters[id]))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	logger.Info("content loaded",
		zap.String("root", root),
		zap.Int("combatants", len(templates)),
		zap.Int("weapons", len(weapons)),
		zap.Int("styles", len(styles)),
		zap.Int("encounters", len(encounters)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return lib, nil
}

// loadOptional runs load on dir unless dir does not exist or ctx is done.
func loadOptional[T any](ctx context.Context, dir string, load func(string) ([]T, error)) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return load(dir)
}
