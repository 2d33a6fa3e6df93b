package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader reads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // e.g. "HOLONET_"
	mapping map[string]string // env var -> config path
}

// NewEnvLoader creates a loader. The prefix includes the trailing
// underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
	}
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LANGUAGE":    "language",
		prefix + "LOG_LEVEL":   "log_level",
		prefix + "SCRIPTS_DIR": "scripts_dir",
		prefix + "LANG_DIR":    "lang_dir",
		prefix + "USER_NAME":   "user.name",
		prefix + "USER_GM":     "user.gm",
	}
}

// AddMapping maps an environment variable to a config path.
func (l *EnvLoader) AddMapping(envVar, path string) {
	l.mapping[envVar] = path
}

// Load returns the configuration found in the environment. Explicitly
// mapped variables come first; then every <prefix>SETTINGS_<NAME> variable
// sets settings.<name>, with the name lowercased and underscores turned
// into dashes. Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for env, path := range l.mapping {
		if val, ok := os.LookupEnv(env); ok {
			setByPath(config, path, parseValue(val))
		}
	}

	settingsPrefix := l.prefix + "SETTINGS_"
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, settingsPrefix) {
			continue
		}
		if _, mapped := l.mapping[name]; mapped {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, settingsPrefix)), "_", "-")
		if key == "" {
			continue
		}
		settings, _ := config["settings"].(map[string]any)
		if settings == nil {
			settings = make(map[string]any)
			config["settings"] = settings
		}
		settings[key] = parseValue(value)
	}

	return config, nil
}

// parseValue converts an environment string to a bool, int64, float64 or
// leaves it a string.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
