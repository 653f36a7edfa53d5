// Package config loads battle settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/Garsondee/battlescape/internal/battle"
)

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Battle BattleConfig `mapstructure:"battle"`
	Save   SaveConfig   `mapstructure:"save"`
}

type LogConfig struct {
	Debug   bool `mapstructure:"debug"`
	TraceAI bool `mapstructure:"trace_ai"`
}

type BattleConfig struct {
	MaxViewDistance       int  `mapstructure:"max_view_distance"`
	MaxDarknessToSeeUnits int  `mapstructure:"max_darkness_to_see_units"`
	TurnAIUseGrenade      int  `mapstructure:"turn_ai_use_grenade"`
	TurnAIUseBlaster      int  `mapstructure:"turn_ai_use_blaster"`
	Difficulty            int  `mapstructure:"difficulty"`
	CheatTurn             int  `mapstructure:"cheat_turn"` // turn the AI becomes omniscient; 0 never
	SmokeStun             bool `mapstructure:"smoke_stun"`
	ExplosionHeight       int  `mapstructure:"explosion_height"`
}

type SaveConfig struct {
	DSN string `mapstructure:"dsn"`
}

// EnvPrefix prefixes environment overrides, e.g. BATTLESCAPE_BATTLE_DIFFICULTY.
const EnvPrefix = "BATTLESCAPE"

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.debug", false)
	v.SetDefault("log.trace_ai", false)
	v.SetDefault("battle.max_view_distance", 20)
	v.SetDefault("battle.max_darkness_to_see_units", 9)
	v.SetDefault("battle.turn_ai_use_grenade", 3)
	v.SetDefault("battle.turn_ai_use_blaster", 3)
	v.SetDefault("battle.difficulty", 0)
	v.SetDefault("battle.cheat_turn", 20)
	v.SetDefault("battle.smoke_stun", true)
	v.SetDefault("battle.explosion_height", 0)
	v.SetDefault("save.dsn", "battlescape.db")
}

// Default returns the built-in settings.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// defaults alone always decode
		panic(err)
	}
	return cfg
}

// Load reads config from the given YAML file path. An empty path or a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine can't work with.
func (c *Config) Validate() error {
	b := c.Battle
	switch {
	case b.MaxViewDistance <= 0:
		return fmt.Errorf("battle.max_view_distance must be positive, got %d", b.MaxViewDistance)
	case b.MaxDarknessToSeeUnits < 0 || b.MaxDarknessToSeeUnits > 15:
		return fmt.Errorf("battle.max_darkness_to_see_units must be 0-15, got %d", b.MaxDarknessToSeeUnits)
	case b.Difficulty < 0 || b.Difficulty > 4:
		return fmt.Errorf("battle.difficulty must be 0-4, got %d", b.Difficulty)
	case b.ExplosionHeight < 0:
		return fmt.Errorf("battle.explosion_height must not be negative, got %d", b.ExplosionHeight)
	}
	return nil
}

// Apply copies the battle rules onto b.
func (c *Config) Apply(b *battle.Battle) {
	b.TurnAIUseGrenade = c.Battle.TurnAIUseGrenade
	b.TurnAIUseBlaster = c.Battle.TurnAIUseBlaster
	b.Difficulty = c.Battle.Difficulty
	b.SmokeStun = c.Battle.SmokeStun
}

// CheatingAt reports whether the AI should be omniscient on the given turn.
func (c *Config) CheatingAt(turn int) bool {
	return c.Battle.CheatTurn > 0 && turn >= c.Battle.CheatTurn
}
