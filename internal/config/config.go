// Package config provides Viper-based configuration loading for the arena
// simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/bladecore/internal/game/combatant"
	"github.com/cory-johannsen/bladecore/internal/game/item"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulationConfig holds the tick loop and content locations.
type SimulationConfig struct {
	// TickRate is the number of simulation ticks per simulated second.
	TickRate int `mapstructure:"tick_rate"`
	// MaxDuration caps any encounter's wall-clock run time; 0 disables the cap.
	MaxDuration time.Duration `mapstructure:"max_duration"`
	// Realtime paces ticks against the wall clock instead of running flat out.
	Realtime bool `mapstructure:"realtime"`
	// ContentDir is the root holding combatants/, weapons/, styles/ and encounters/.
	ContentDir string `mapstructure:"content_dir"`
	// ScriptDir holds the Lua special-strike hooks; empty disables scripting.
	ScriptDir string `mapstructure:"script_dir"`
	// ScriptInstructionLimit is the Lua opcode budget per hook call; 0 uses the default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
	// RichManaZone places every encounter in a rich mana zone.
	RichManaZone bool `mapstructure:"rich_mana_zone"`
}

// Step returns the simulated seconds per tick.
//
// Precondition: TickRate > 0.
func (s SimulationConfig) Step() float64 { return 1 / float64(s.TickRate) }

// Interval returns the wall-clock time between realtime ticks.
//
// Precondition: TickRate > 0.
func (s SimulationConfig) Interval() time.Duration { return time.Second / time.Duration(s.TickRate) }

// CombatantConfig holds the tuning shared by every combatant.
type CombatantConfig struct {
	BaseHealth         float64 `mapstructure:"base_health"`
	BaseMana           float64 `mapstructure:"base_mana"`
	BaseStamina        float64 `mapstructure:"base_stamina"`
	BaseSpeed          float64 `mapstructure:"base_speed"` // speed at agility 0; see Combatant.Speed
	HealthRegen        float64 `mapstructure:"health_regen"`
	ManaRegen          float64 `mapstructure:"mana_regen"`
	RichManaRegen      float64 `mapstructure:"rich_mana_regen"`
	StaminaRegen       float64 `mapstructure:"stamina_regen"`
	StaminaDrain       float64 `mapstructure:"stamina_drain"`
	ExhaustionDuration float64 `mapstructure:"exhaustion_duration"`
	StartingStatPoints int     `mapstructure:"starting_stat_points"`
	BaseExp            int     `mapstructure:"base_exp"`
	KnockbackForce     float64 `mapstructure:"knockback_force"`
	// KnockbackDamping is the fraction of knockback velocity lost per second.
	KnockbackDamping float64 `mapstructure:"knockback_damping"`
	// KillExp is the experience a killing blow earns; 0 disables it.
	KillExp int `mapstructure:"kill_exp"`
}

// Rules converts the section into combatant tuning.
func (c CombatantConfig) Rules() combatant.Rules {
	return combatant.Rules{
		BaseHealth:         c.BaseHealth,
		BaseMana:           c.BaseMana,
		BaseStamina:        c.BaseStamina,
		BaseSpeed:          c.BaseSpeed,
		HealthRegen:        c.HealthRegen,
		ManaRegen:          c.ManaRegen,
		RichManaRegen:      c.RichManaRegen,
		StaminaRegen:       c.StaminaRegen,
		StaminaDrain:       c.StaminaDrain,
		ExhaustionDuration: c.ExhaustionDuration,
		StartingStatPoints: c.StartingStatPoints,
		BaseExp:            c.BaseExp,
		KnockbackForce:     c.KnockbackForce,
	}
}

// InputConfig holds click/hold timing in seconds.
type InputConfig struct {
	HoldThreshold float64 `mapstructure:"hold_threshold"`
	Cooldown      float64 `mapstructure:"cooldown"`
}

// Settings converts the section into item-use timings.
func (i InputConfig) Settings() item.Settings {
	return item.Settings{HoldThreshold: i.HoldThreshold, Cooldown: i.Cooldown}
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Combatant  CombatantConfig  `mapstructure:"combatant"`
	Input      InputConfig      `mapstructure:"input"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombatant(c.Combatant); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateInput(c.Input); err != nil {
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

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickRate < 1 || s.TickRate > 1000 {
		errs = append(errs, fmt.Sprintf("simulation.tick_rate must be 1-1000, got %d", s.TickRate))
	}
	if s.MaxDuration < 0 {
		errs = append(errs, "simulation.max_duration must not be negative")
	}
	if s.ContentDir == "" {
		errs = append(errs, "simulation.content_dir must not be empty")
	}
	if s.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("simulation.script_instruction_limit must be >= 0, got %d", s.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

type namedValue struct {
	name string
	v    float64
}

func validateCombatant(c CombatantConfig) error {
	var errs []string
	for _, f := range []namedValue{
		{"base_health", c.BaseHealth},
		{"base_mana", c.BaseMana},
		{"base_stamina", c.BaseStamina},
	} {
		if f.v <= 0 {
			errs = append(errs, fmt.Sprintf("combatant.%s must be > 0, got %v", f.name, f.v))
		}
	}
	for _, f := range []namedValue{
		{"base_speed", c.BaseSpeed},
		{"health_regen", c.HealthRegen},
		{"mana_regen", c.ManaRegen},
		{"rich_mana_regen", c.RichManaRegen},
		{"stamina_regen", c.StaminaRegen},
		{"stamina_drain", c.StaminaDrain},
		{"exhaustion_duration", c.ExhaustionDuration},
		{"knockback_force", c.KnockbackForce},
		{"knockback_damping", c.KnockbackDamping},
	} {
		if f.v < 0 {
			errs = append(errs, fmt.Sprintf("combatant.%s must not be negative, got %v", f.name, f.v))
		}
	}
	if c.StartingStatPoints < 0 {
		errs = append(errs, fmt.Sprintf("combatant.starting_stat_points must be >= 0, got %d", c.StartingStatPoints))
	}
	if c.KillExp < 0 {
		errs = append(errs, fmt.Sprintf("combatant.kill_exp must be >= 0, got %d", c.KillExp))
	}
	if c.BaseExp < 1 {
		errs = append(errs, fmt.Sprintf("combatant.base_exp must be >= 1, got %d", c.BaseExp))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateInput(i InputConfig) error {
	var errs []string
	if i.HoldThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("input.hold_threshold must be > 0, got %v", i.HoldThreshold))
	}
	if i.Cooldown < 0 {
		errs = append(errs, fmt.Sprintf("input.cooldown must not be negative, got %v", i.Cooldown))
	}
	if len(errs) > 0 {
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

	// Environment variable overrides with BLADE_ prefix
	v.SetEnvPrefix("BLADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Default returns the configuration built from defaults alone.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("config.Default: defaults are invalid: %v", err))
	}
	return cfg
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("simulation.tick_rate", 60)
	v.SetDefault("simulation.max_duration", "5m")
	v.SetDefault("simulation.realtime", false)
	v.SetDefault("simulation.content_dir", "content")
	v.SetDefault("simulation.script_dir", "content/scripts")
	v.SetDefault("simulation.script_instruction_limit", 0)
	v.SetDefault("simulation.rich_mana_zone", false)

	rules := combatant.DefaultRules()
	v.SetDefault("combatant.base_health", rules.BaseHealth)
	v.SetDefault("combatant.base_mana", rules.BaseMana)
	v.SetDefault("combatant.base_stamina", rules.BaseStamina)
	v.SetDefault("combatant.base_speed", rules.BaseSpeed)
	v.SetDefault("combatant.health_regen", rules.HealthRegen)
	v.SetDefault("combatant.mana_regen", rules.ManaRegen)
	v.SetDefault("combatant.rich_mana_regen", rules.RichManaRegen)
	v.SetDefault("combatant.stamina_regen", rules.StaminaRegen)
	v.SetDefault("combatant.stamina_drain", rules.StaminaDrain)
	v.SetDefault("combatant.exhaustion_duration", rules.ExhaustionDuration)
	v.SetDefault("combatant.starting_stat_points", rules.StartingStatPoints)
	v.SetDefault("combatant.base_exp", rules.BaseExp)
	v.SetDefault("combatant.knockback_force", rules.KnockbackForce)
	v.SetDefault("combatant.knockback_damping", 8.0)
	v.SetDefault("combatant.kill_exp", 50)

	input := item.DefaultSettings()
	v.SetDefault("input.hold_threshold", input.HoldThreshold)
	v.SetDefault("input.cooldown", input.Cooldown)
}
