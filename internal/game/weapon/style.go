package weapon

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// StrikeType is how a style strike picks its motion.
type StrikeType string

const (
	// StrikeSwing always swings.
	StrikeSwing StrikeType = "swing"
	// StrikeThrust uses the weapon's click or hold default.
	StrikeThrust StrikeType = "thrust"
	// StrikeSpecial asks the strike's hook for a motion, falling back to the
	// click or hold default.
	StrikeSpecial StrikeType = "special"
)

// Strike is one entry of a style's ordered strike list.
type Strike struct {
	Type StrikeType `yaml:"type"`
	// Swing overrides the weapon's swing parameters for this strike only.
	Swing *SwingParams `yaml:"swing"`
	// Hook names the script hook consulted by a special strike.
	Hook string `yaml:"hook"`
}

// Style is a swordsmanship style: an ordered strike list cycled on each
// activation.
type Style struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Strikes []Strike `yaml:"strikes"`
}

// Validate checks that the style satisfies its invariants.
//
// Precondition: s must not be nil.
// Postcondition: Returns nil iff ID is non-empty, every strike type is known,
// swing overrides have a positive duration, and special strikes name a hook.
func (s *Style) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("style: id must not be empty")
	}
	for i, st := range s.Strikes {
		switch st.Type {
		case StrikeSwing, StrikeThrust:
		case StrikeSpecial:
			if st.Hook == "" {
				return fmt.Errorf("style %q: strike %d: special strike must name a hook", s.ID, i)
			}
		default:
			return fmt.Errorf("style %q: strike %d: unknown type %q", s.ID, i, st.Type)
		}
		if st.Swing != nil && st.Swing.Duration <= 0 {
			return fmt.Errorf("style %q: strike %d: swing duration must be > 0", s.ID, i)
		}
	}
	return nil
}

// LoadStyleFromBytes parses a single style from raw YAML bytes.
//
// Postcondition: Returns a validated *Style, or an error.
func LoadStyleFromBytes(data []byte) (*Style, error) {
	var s Style
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing style YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadStyles reads all *.yaml files in dir.
//
// Precondition: dir is a readable directory path.
// Postcondition: Returns all valid styles or the first encountered error.
func LoadStyles(dir string) ([]*Style, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading style dir %q: %w", dir, err)
	}
	var styles []*Style
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		s, err := LoadStyleFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		styles = append(styles, s)
	}
	return styles, nil
}

// StyleBook holds a wielder's current style and notifies subscribers when it
// changes.
type StyleBook struct {
	current *Style
	nextID  int
	subs    []styleSub
}

type styleSub struct {
	id int
	fn func(*Style)
}

// NewStyleBook returns a book whose current style is initial (may be nil).
func NewStyleBook(initial *Style) *StyleBook {
	return &StyleBook{current: initial}
}

// Current returns the current style, or nil.
func (b *StyleBook) Current() *Style { return b.current }

// Set replaces the current style and notifies every subscriber in
// registration order. Subscribers may unsubscribe while being notified.
func (b *StyleBook) Set(s *Style) {
	b.current = s
	for _, sub := range slices.Clone(b.subs) {
		sub.fn(s)
	}
}

// Subscribe registers fn for style changes and returns a function removing it.
//
// Precondition: fn must not be nil.
func (b *StyleBook) Subscribe(fn func(*Style)) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, styleSub{id: id, fn: fn})
	return func() {
		for i, sub := range b.subs {
			if sub.id == id {
				b.subs = slices.Delete(b.subs, i, i+1)
				return
			}
		}
	}
}
