// Package content assembles the runtime tables a battle needs from
// configuration: weapon profiles, ship classes, Lua hooks and the roller.
package content

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/ship"
	"github.com/cory-johannsen/skirmish/internal/game/sim"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
	"github.com/cory-johannsen/skirmish/internal/gameserver"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// Pack holds the loaded content.
type Pack struct {
	Weapons *weapon.Registry
	Classes *ship.Registry
	// Scripts is nil when scripting is disabled.
	Scripts *scripting.Manager
	Roller  *dice.Roller
}

// Load reads the content named by cfg.Content. Empty ship or weapon
// directories select the built-in tables; an empty scripts directory
// disables scripting. A non-zero simulation seed selects a deterministic
// roller.
//
// Precondition: cfg has passed Validate; logger must be non-nil.
// Postcondition: every ship class references only known weapons.
func Load(cfg config.Config, logger *zap.Logger) (*Pack, error) {
	start := time.Now()

	var src dice.Source
	if cfg.Simulation.Seed != 0 {
		src = dice.NewSeededSource(cfg.Simulation.Seed)
		logger.Info("deterministic randomness", zap.Uint64("seed", cfg.Simulation.Seed))
	} else {
		src = dice.NewCryptoSource()
	}
	p := &Pack{Roller: dice.NewLoggedRoller(src, logger)}

	profiles := weapon.DefaultProfiles()
	if dir := cfg.Content.WeaponsDir; dir != "" {
		loaded, err := weapon.LoadProfiles(dir)
		if err != nil {
			return nil, fmt.Errorf("loading weapon profiles: %w", err)
		}
		profiles = loaded
	}
	weapons, err := weapon.NewRegistryFrom(profiles)
	if err != nil {
		return nil, fmt.Errorf("registering weapon profiles: %w", err)
	}
	p.Weapons = weapons

	defs := ship.DefaultClasses()
	if dir := cfg.Content.ShipsDir; dir != "" {
		loaded, err := ship.LoadClasses(dir)
		if err != nil {
			return nil, fmt.Errorf("loading ship classes: %w", err)
		}
		defs = loaded
	}
	classes, err := ship.NewRegistry(defs)
	if err != nil {
		return nil, fmt.Errorf("registering ship classes: %w", err)
	}
	if err := classes.CheckWeapons(weapons); err != nil {
		return nil, err
	}
	p.Classes = classes

	if dir := cfg.Content.ScriptsDir; dir != "" {
		p.Scripts = scripting.NewManager(p.Roller, logger)
		if err := p.Scripts.LoadGlobal(dir, scripting.DefaultInstructionLimit); err != nil {
			p.Scripts.Close()
			return nil, fmt.Errorf("loading scripts: %w", err)
		}
	}

	logger.Info("content loaded",
		zap.Int("weapons", len(weapons.IDs())),
		zap.Int("classes", len(classes.Classes())),
		zap.Bool("scripting", p.Scripts != nil),
		zap.Duration("elapsed", time.Since(start)),
	)
	return p, nil
}

// NewBattle creates an empty battle over the pack's tables. When scripting
// is enabled, engine.actor resolves against this battle.
func (p *Pack) NewBattle(cfg config.SimulationConfig, logger *zap.Logger) *gameserver.Battle {
	w := sim.New(sim.OptionsFrom(cfg), p.Weapons, p.Classes, p.Roller, logger)
	b := gameserver.NewBattle(w, cfg.Dt(), logger)
	if p.Scripts != nil {
		p.Scripts.GetActor = b.ActorInfo
	}
	return b
}

// Close releases the script VMs.
func (p *Pack) Close() {
	if p.Scripts != nil {
		p.Scripts.Close()
	}
}
