// Package config loads holonet's configuration: a TOML file overlaid with
// HOLONET_* environment variables, plus a watcher that reloads the file
// when it changes on disk.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of configuration environment variables.
const EnvPrefix = "HOLONET_"

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("config: invalid configuration")

// ParseError reports a configuration file that is not valid TOML.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config: parse %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Config is the holonet configuration.
type Config struct {
	// Language is the BCP 47 tag of the UI language.
	Language string `toml:"language"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// ScriptsDir holds Lua feature scripts. Empty disables scripting.
	ScriptsDir string `toml:"scripts_dir"`

	// LangDir holds extra YAML language files overriding the bundled ones.
	LangDir string `toml:"lang_dir"`

	User UserConfig `toml:"user"`

	// Settings are module setting values keyed by setting key.
	Settings map[string]any `toml:"settings"`
}

// UserConfig describes the acting user of a local session.
type UserConfig struct {
	Name string `toml:"name"`
	GM   bool   `toml:"gm"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Language: "en",
		LogLevel: "info",
		User: UserConfig{
			Name: "gamemaster",
			GM:   true,
		},
		Settings: make(map[string]any),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	if c.Language == "" {
		return fmt.Errorf("%w: empty language", ErrInvalid)
	}
	return nil
}

// Load reads path (a missing file is not an error), overlays the
// environment and validates the result. An empty path loads only defaults
// and environment.
func Load(path string) (*Config, error) {
	raw := make(map[string]any)
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &raw); err != nil {
				return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	env, err := NewEnvLoader(EnvPrefix).Load()
	if err != nil {
		return nil, err
	}
	merge(raw, env)

	cfg, err := decode(raw)
	if err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode turns a merged raw map into a Config on top of the defaults.
func decode(raw map[string]any) (*Config, error) {
	data, err := toml.Marshal(raw)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Settings == nil {
		cfg.Settings = make(map[string]any)
	}
	return cfg, nil
}

// merge copies src into dst, descending into nested tables.
func merge(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			merge(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}
