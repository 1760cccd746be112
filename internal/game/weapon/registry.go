package weapon

import (
	"fmt"
	"sort"
)

// Registry holds weapon profiles indexed by ID.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]*Profile)}
}

// NewRegistryFrom registers every profile in ps.
//
// Postcondition: returns an error naming the first duplicate ID.
func NewRegistryFrom(ps []*Profile) (*Registry, error) {
	r := NewRegistry()
	for _, p := range ps {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds p to the registry.
//
// Precondition: p must not be nil.
// Postcondition: Profile(p.ID) returns p; returns error if p.ID already registered.
func (r *Registry) Register(p *Profile) error {
	if _, exists := r.profiles[p.ID]; exists {
		return fmt.Errorf("weapon: Registry.Register: weapon ID %q already registered", p.ID)
	}
	r.profiles[p.ID] = p
	return nil
}

// Profile returns the profile for id and whether it was found.
func (r *Registry) Profile(id string) (*Profile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// Build instantiates fresh weapons for ids, in order.
//
// Postcondition: returns an error naming the first unknown ID.
func (r *Registry) Build(ids []string) ([]*Weapon, error) {
	out := make([]*Weapon, 0, len(ids))
	for _, id := range ids {
		p, ok := r.profiles[id]
		if !ok {
			return nil, fmt.Errorf("weapon: unknown weapon ID %q", id)
		}
		out = append(out, New(p))
	}
	return out, nil
}

// IDs returns every registered ID in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
