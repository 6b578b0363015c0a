package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Editor   EditorConfig   `mapstructure:"editor"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path       string `mapstructure:"path"`
	Migrations string `mapstructure:"migrations"`
}

// CatalogConfig points at an optional user token catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// EditorConfig holds token list presentation settings.
type EditorConfig struct {
	ColorfulTokens bool    `mapstructure:"colorful_tokens"`
	LineHeight     int     `mapstructure:"line_height"`
	SlideSpeed     float64 `mapstructure:"slide_speed"`
	FrameMS        int     `mapstructure:"frame_ms"`
}

type LogConfig struct {
	Path  string `mapstructure:"path"`
	Debug bool   `mapstructure:"debug"`
}

// Path returns the config file location: $CUTSCENES_CONFIG or ~/.config/cutscenes/config.toml.
func Path() string {
	if p := os.Getenv("CUTSCENES_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "cutscenes", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix CUTSCENES_.
func Load() (Config, error) {
	v := viper.New()
	home := os.Getenv("HOME")

	// default values
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "cutscenes", "cutscenes.db"))
	v.SetDefault("database.migrations", filepath.Join("internal", "database", "migrations"))
	v.SetDefault("catalog.path", "")
	v.SetDefault("editor.colorful_tokens", true)
	v.SetDefault("editor.line_height", 1)
	v.SetDefault("editor.slide_speed", 0.5)
	v.SetDefault("editor.frame_ms", 16)
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "cutscenes", "cutscenes.log"))
	v.SetDefault("log.debug", false)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("CUTSCENES")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file leaves the defaults; a broken one is an error
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(Path()); statErr == nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.normalize()
	return c, nil
}

func (c *Config) normalize() {
	if c.Editor.LineHeight < 1 {
		c.Editor.LineHeight = 1
	}
	if c.Editor.SlideSpeed <= 0 || c.Editor.SlideSpeed > 1 {
		c.Editor.SlideSpeed = 0.5
	}
	if c.Editor.FrameMS <= 0 {
		c.Editor.FrameMS = 16
	}
}

// Save writes the provided config to disk, creating the config directory if needed.
// The TUI uses it to persist the colorful-tokens toggle.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.migrations", cfg.Database.Migrations)
	v.Set("catalog.path", cfg.Catalog.Path)
	v.Set("editor.colorful_tokens", cfg.Editor.ColorfulTokens)
	v.Set("editor.line_height", cfg.Editor.LineHeight)
	v.Set("editor.slide_speed", cfg.Editor.SlideSpeed)
	v.Set("editor.frame_ms", cfg.Editor.FrameMS)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.debug", cfg.Log.Debug)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
