// Package config loads clinicquest settings from a YAML file and
// CLINIC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/nathoo/clinicquest/types"
)

// Database modes.
const (
	ModeMemory = "memory"
	ModeSQLite = "sqlite"
)

// Config is the full clinicquest configuration, one section per concern.
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Discord  DiscordConfig  `mapstructure:"discord"`
	Save     SaveConfig     `mapstructure:"save"`
}

// GameConfig selects the world content. Non-zero rule fields override the
// values the content declares.
type GameConfig struct {
	Dir           string `mapstructure:"dir"` // Lua directory or .yaml file
	MaxHP         int    `mapstructure:"max_hp"`
	StartHP       int    `mapstructure:"start_hp"`
	StartStrength int    `mapstructure:"start_strength"`
	Seed          int64  `mapstructure:"seed"` // 0 = time-based
}

// DatabaseConfig picks where protagonists live. SQLitePath is only read
// in sqlite mode.
type DatabaseConfig struct {
	Mode       string `mapstructure:"mode"` // memory | sqlite
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LogConfig controls the zap logger built by NewLogger. Debug selects the
// development encoder; File redirects output away from stderr.
type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	File  string `mapstructure:"file"`
}

// DiscordConfig holds the bot token and the command prefix it answers to.
type DiscordConfig struct {
	Token  string `mapstructure:"token"`
	Prefix string `mapstructure:"prefix"`
}

// SaveConfig is where /save and /load keep their JSON snapshots.
type SaveConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads the config file at path. A missing file, or an empty path,
// leaves the defaults in place. Environment variables override both,
// e.g. CLINIC_DISCORD_TOKEN for discord.token.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("game.dir", "games/clinic")
	v.SetDefault("game.max_hp", 0)
	v.SetDefault("game.start_hp", 0)
	v.SetDefault("game.start_strength", 0)
	v.SetDefault("game.seed", 0)
	v.SetDefault("database.mode", ModeMemory)
	v.SetDefault("database.sqlite_path", "./data/clinic.db")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.file", "")
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.prefix", "!")
	v.SetDefault("save.dir", ".")

	v.SetEnvPrefix("CLINIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isNotExist(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

func (c *Config) validate() error {
	switch c.Database.Mode {
	case ModeMemory, ModeSQLite:
	default:
		return fmt.Errorf("config: unknown database mode %q", c.Database.Mode)
	}
	if c.Game.MaxHP < 0 || c.Game.StartHP < 0 || c.Game.StartStrength < 0 {
		return fmt.Errorf("config: game rules must not be negative")
	}
	return nil
}

// Rules returns r with the configured overrides applied.
func (g GameConfig) Rules(r types.Rules) types.Rules {
	if g.MaxHP > 0 {
		r.MaxHP = g.MaxHP
	}
	if g.StartHP > 0 {
		r.StartHP = g.StartHP
	}
	if g.StartStrength > 0 {
		r.StartStrength = g.StartStrength
	}
	return r
}
