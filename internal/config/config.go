// Package config provides Viper-based configuration loading for the skirmish server.
package config

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GameServerConfig holds the combat service gRPC listener settings.
type GameServerConfig struct {
	// GRPCHost is the bind address for the combat gRPC service.
	GRPCHost string `mapstructure:"grpc_host"`
	// GRPCPort is the TCP port for the combat gRPC service.
	GRPCPort int `mapstructure:"grpc_port"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (g GameServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.GRPCHost, g.GRPCPort)
}

// SimulationConfig holds the tunables of the fixed-step combat core.
type SimulationConfig struct {
	// TickRateHz is the number of fixed simulation steps per second.
	TickRateHz int `mapstructure:"tick_rate_hz"`
	// AIInterval is the period of the AI transition table evaluation.
	AIInterval time.Duration `mapstructure:"ai_interval"`
	// AcquisitionRadius bounds AI target acquisition.
	AcquisitionRadius float64 `mapstructure:"acquisition_radius"`
	// HomingLockRange bounds homing projectile target acquisition.
	HomingLockRange float64 `mapstructure:"homing_lock_range"`
	// InterceptHorizon is the largest accepted intercept time.
	InterceptHorizon float64 `mapstructure:"intercept_horizon"`
	// MaxEnemies caps the number of enemy actors in one battle.
	MaxEnemies int `mapstructure:"max_enemies"`
	// Seed selects deterministic randomness when non-zero.
	Seed uint64 `mapstructure:"seed"`
}

// Dt returns the fixed step length in seconds.
//
// Precondition: TickRateHz > 0.
// Postcondition: Returns 1/TickRateHz.
func (s SimulationConfig) Dt() float64 {
	return 1.0 / float64(s.TickRateHz)
}

// TickInterval returns the wall-clock duration of one step.
//
// Precondition: TickRateHz > 0.
func (s SimulationConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRateHz)
}

// ContentConfig locates the YAML content tables and Lua scripts.
type ContentConfig struct {
	// ShipsDir holds ship-class YAML files; empty uses the built-in presets.
	ShipsDir string `mapstructure:"ships_dir"`
	// WeaponsDir holds weapon profile YAML files; empty uses the built-in profiles.
	WeaponsDir string `mapstructure:"weapons_dir"`
	// ScriptsDir holds Lua progression hooks; empty disables scripting.
	ScriptsDir string `mapstructure:"scripts_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	GameServer GameServerConfig `mapstructure:"gameserver"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Content    ContentConfig    `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGameServer(c.GameServer); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateGameServer(g GameServerConfig) error {
	var errs []string
	if g.GRPCHost == "" {
		errs = append(errs, "gameserver.grpc_host must not be empty")
	}
	if g.GRPCPort < 1 || g.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("gameserver.grpc_port must be 1-65535, got %d", g.GRPCPort))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickRateHz < 1 || s.TickRateHz > 1000 {
		errs = append(errs, fmt.Sprintf("simulation.tick_rate_hz must be 1-1000, got %d", s.TickRateHz))
	}
	if s.AIInterval <= 0 {
		errs = append(errs, "simulation.ai_interval must be positive")
	}
	for name, v := range map[string]float64{
		"acquisition_radius": s.AcquisitionRadius,
		"homing_lock_range":  s.HomingLockRange,
		"intercept_horizon":  s.InterceptHorizon,
	} {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Sprintf("simulation.%s must be a positive finite number, got %v", name, v))
		}
	}
	if s.MaxEnemies < 0 {
		errs = append(errs, fmt.Sprintf("simulation.max_enemies must be >= 0, got %d", s.MaxEnemies))
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by the defaults alone.
//
// Postcondition: Returns a valid Config.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("config: defaults are invalid: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("gameserver.grpc_host", "127.0.0.1")
	v.SetDefault("gameserver.grpc_port", 50061)

	v.SetDefault("simulation.tick_rate_hz", 60)
	v.SetDefault("simulation.ai_interval", "5s")
	v.SetDefault("simulation.acquisition_radius", 200.0)
	v.SetDefault("simulation.homing_lock_range", 100.0)
	v.SetDefault("simulation.intercept_horizon", 100.0)
	v.SetDefault("simulation.max_enemies", 15)
	v.SetDefault("simulation.seed", 0)

	v.SetDefault("content.ships_dir", "")
	v.SetDefault("content.weapons_dir", "")
	v.SetDefault("content.scripts_dir", "")
}
