package gameserver

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/ship"
	"github.com/cory-johannsen/skirmish/internal/game/sim"
)

// SpawnGroup is one line of a scenario: Count actors of Class placed at
// Position, Position+Spacing, Position+2*Spacing and so on.
type SpawnGroup struct {
	Class    ship.Class        `yaml:"class"`
	Faction  string            `yaml:"faction"`
	Name     string            `yaml:"name"`
	Player   bool              `yaml:"player"`
	Count    int               `yaml:"count"`
	Position geom.Vec3         `yaml:"position"`
	Spacing  geom.Vec3         `yaml:"spacing"`
	Facing   geom.Vec3         `yaml:"facing"`
	Bonus    *combat.StatBonus `yaml:"bonus"`
}

// Scenario is the initial population of a battle, loaded from YAML.
type Scenario struct {
	ID     string       `yaml:"id"`
	Name   string       `yaml:"name"`
	Groups []SpawnGroup `yaml:"spawns"`
}

// Roster lists the actors a scenario spawned, in spawn order.
type Roster struct {
	Players []uuid.UUID
	AI      []uuid.UUID
}

// Validate checks the scenario's static invariants.
//
// Postcondition: Returns nil or an error joining every violation.
func (s *Scenario) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("scenario id must not be empty"))
	}
	if len(s.Groups) == 0 {
		errs = append(errs, fmt.Errorf("scenario %q has no spawns", s.ID))
	}
	for i, g := range s.Groups {
		if g.Class == "" {
			errs = append(errs, fmt.Errorf("spawns[%d]: class must not be empty", i))
		}
		if _, ok := combat.ParseFaction(g.Faction); !ok {
			errs = append(errs, fmt.Errorf("spawns[%d]: unknown faction %q", i, g.Faction))
		}
		if g.Count < 0 {
			errs = append(errs, fmt.Errorf("spawns[%d]: count must be >= 0, got %d", i, g.Count))
		}
		if g.Player && g.Count > 1 {
			errs = append(errs, fmt.Errorf("spawns[%d]: player groups spawn a single actor", i))
		}
		if !g.Position.IsFinite() || !g.Spacing.IsFinite() || !g.Facing.IsFinite() {
			errs = append(errs, fmt.Errorf("spawns[%d]: vectors must be finite", i))
		}
		if g.Bonus != nil {
			if err := g.Bonus.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("spawns[%d]: %w", i, err))
			}
		}
	}
	return errors.Join(errs...)
}

// LoadScenarioFromBytes parses and validates a scenario.
func LoadScenarioFromBytes(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenario reads a scenario file.
//
// Precondition: path must name a readable YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %q: %w", path, err)
	}
	s, err := LoadScenarioFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading scenario %q: %w", path, err)
	}
	return s, nil
}

// Populate spawns every group into b.
//
// Precondition: s has passed Validate.
// Postcondition: on error, actors spawned before the failing one remain.
func (s *Scenario) Populate(b *Battle) (Roster, error) {
	var r Roster
	for i, g := range s.Groups {
		faction, _ := combat.ParseFaction(g.Faction)
		count := g.Count
		if count == 0 {
			count = 1
		}
		for n := 0; n < count; n++ {
			name := g.Name
			if name == "" {
				name = string(g.Class)
			}
			if count > 1 {
				name = fmt.Sprintf("%s %d", name, n+1)
			}
			id, err := b.Spawn(sim.SpawnSpec{
				Class:    g.Class,
				Name:     name,
				Faction:  faction,
				Position: g.Position.Add(g.Spacing.Scale(float64(n))),
				Facing:   g.Facing,
				Player:   g.Player,
				Bonus:    g.Bonus,
			})
			if err != nil {
				return r, fmt.Errorf("scenario %q spawns[%d]: %w", s.ID, i, err)
			}
			if g.Player {
				r.Players = append(r.Players, id)
			} else {
				r.AI = append(r.AI, id)
			}
		}
	}
	return r, nil
}
