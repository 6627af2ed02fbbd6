package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/modstack/modstack/pkg/launcher"
)

// Config holds the CLI configuration, read from a TOML file.
//
// Example:
//
//	game_path = "/games/bannerlord"
//	profile = "default"
//	game_mode = "singleplayer"
//
//	[cache]
//	backend = "file"       # file, redis, or none
//	redis_addr = "localhost:6379"
//
//	[launch]
//	game_mode_fragment = "/{{gameMode}}"
//	modules_fragment = "_MODULES_{{subModIds}}_MODULES_"
//	marker = "*"
type Config struct {
	GamePath string `toml:"game_path"`
	Profile  string `toml:"profile"`
	GameMode string `toml:"game_mode"`

	Cache  CacheConfig  `toml:"cache"`
	Launch LaunchConfig `toml:"launch"`
}

// CacheConfig selects and configures a snapshot cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// LaunchConfig overrides the launch parameter template fragments.
type LaunchConfig struct {
	GameModeFragment string `toml:"game_mode_fragment"`
	ModulesFragment  string `toml:"modules_fragment"`
	Marker           string `toml:"marker"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Profile:  "default",
		GameMode: launcher.GameModeSingleplayer,
		Cache:    CacheConfig{Backend: "file"},
	}
}

// loadConfig reads the TOML configuration at path, or the default location
// when path is empty. A missing file yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Profile == "" {
		cfg.Profile = "default"
	}
	if cfg.GameMode == "" {
		cfg.GameMode = launcher.GameModeSingleplayer
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "file"
	}
	return cfg, nil
}

// template builds the launch parameter template from the config, falling back
// to the official launcher convention for unset fragments.
func (c Config) template() launcher.Template {
	t := launcher.DefaultTemplate()
	if c.Launch.GameModeFragment != "" {
		t.GameModeFragment = c.Launch.GameModeFragment
	}
	if c.Launch.ModulesFragment != "" {
		t.ModulesFragment = c.Launch.ModulesFragment
	}
	if c.Launch.Marker != "" {
		t.Marker = c.Launch.Marker
	}
	return t
}

// configDir returns the config directory using XDG standard (~/.config/modstack/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
