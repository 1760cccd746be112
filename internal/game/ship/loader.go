package ship

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

// LoadClassFromBytes parses a single class definition from raw YAML bytes.
//
// Postcondition: Returns a validated *ClassDef, or an error.
func LoadClassFromBytes(data []byte) (*ClassDef, error) {
	var d ClassDef
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing ship class YAML: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadClasses reads all *.yaml files in dir and returns the parsed classes.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all classes or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadClasses(dir string) ([]*ClassDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ship dir %q: %w", dir, err)
	}

	var defs []*ClassDef
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		d, err := LoadClassFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// Registry holds class definitions indexed by Class.
type Registry struct {
	classes map[Class]*ClassDef
}

// NewRegistry registers every definition in defs.
//
// Postcondition: returns an error naming the first duplicate class.
func NewRegistry(defs []*ClassDef) (*Registry, error) {
	r := &Registry{classes: make(map[Class]*ClassDef, len(defs))}
	for _, d := range defs {
		if _, exists := r.classes[d.ID]; exists {
			return nil, fmt.Errorf("ship: class %q already registered", d.ID)
		}
		r.classes[d.ID] = d
	}
	return r, nil
}

// Class returns the definition for c and whether it was found.
func (r *Registry) Class(c Class) (*ClassDef, bool) {
	d, ok := r.classes[c]
	return d, ok
}

// Classes returns every registered class in sorted order.
func (r *Registry) Classes() []Class {
	out := make([]Class, 0, len(r.classes))
	for c := range r.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CheckWeapons verifies that every weapon ID referenced by a class is
// known to weapons.
//
// Postcondition: returns an error naming the first unresolved reference.
func (r *Registry) CheckWeapons(weapons *weapon.Registry) error {
	for _, c := range r.Classes() {
		for _, id := range r.classes[c].Weapons {
			if _, ok := weapons.Profile(id); !ok {
				return fmt.Errorf("ship class %q references unknown weapon %q", c, id)
			}
		}
	}
	return nil
}
