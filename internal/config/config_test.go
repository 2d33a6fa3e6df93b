package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != "en" || cfg.LogLevel != "info" || !cfg.User.GM {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Settings == nil {
		t.Error("Settings map is nil")
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "holonet.toml", `
language = "de"
log_level = "debug"
scripts_dir = "scripts"

[user]
name = "player"
gm = false

[settings]
attack-animation = false
crawl-size = 30
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != "de" || cfg.LogLevel != "debug" || cfg.ScriptsDir != "scripts" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.User.Name != "player" || cfg.User.GM {
		t.Errorf("user = %+v", cfg.User)
	}
	if cfg.Settings["attack-animation"] != false || cfg.Settings["crawl-size"] != int64(30) {
		t.Errorf("settings = %#v", cfg.Settings)
	}
}

func TestLoad_EnvOverlay(t *testing.T) {
	path := writeFile(t, t.TempDir(), "holonet.toml", `
log_level = "debug"

[settings]
crawl-size = 30
`)
	t.Setenv("HOLONET_LOG_LEVEL", "warn")
	t.Setenv("HOLONET_USER_GM", "false")
	t.Setenv("HOLONET_SETTINGS_ATTACK_ANIMATION", "off")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want env value", cfg.LogLevel)
	}
	if cfg.User.GM {
		t.Error("user.gm not overridden")
	}
	if cfg.Settings["attack-animation"] != false {
		t.Errorf("attack-animation = %#v", cfg.Settings["attack-animation"])
	}
	if cfg.Settings["crawl-size"] != int64(30) {
		t.Error("file setting lost during overlay")
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := writeFile(t, dir, "bad.toml", "language = ")
	var parseErr *ParseError
	if _, err := Load(bad); !errors.As(err, &parseErr) {
		t.Errorf("err = %v, want ParseError", err)
	}

	invalid := writeFile(t, dir, "invalid.toml", `log_level = "chatty"`)
	if _, err := Load(invalid); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"yes", true},
		{"OFF", false},
		{"42", int64(42)},
		{"1.5", 1.5},
		{"fa fa-jedi", "fa fa-jedi"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestSetByPath(t *testing.T) {
	m := map[string]any{}
	setByPath(m, "user.name", "gm")
	setByPath(m, "user.gm", true)
	user, _ := m["user"].(map[string]any)
	if user["name"] != "gm" || user["gm"] != true {
		t.Errorf("m = %#v", m)
	}
}
