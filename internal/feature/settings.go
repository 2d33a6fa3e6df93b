package feature

import (
	"context"
	"fmt"

	"github.com/dshills/holonet/internal/lifecycle"
	"github.com/dshills/holonet/internal/logging"
	"github.com/dshills/holonet/internal/settings"
)

// Setting keys.
const (
	KeyLogLevel        = "log-level"
	KeyAttackAnimation = "attack-animation"
	KeyRename          = "rename"
	KeyStrainReminder  = "strain-reminder"
	KeyDiceHelper      = "dice-helper"
	KeyTalentChecker   = "talent-checker"
	KeyCrawlFolder     = "opening-crawl-folder"
	KeyCrawlMusic      = "opening-crawl-music"
	KeyVehicleRoller   = "vehicle-roller"
)

// NameSettings is the name of the settings feature.
const NameSettings = "settings"

// SettingSpecs returns every module setting in registration order.
func SettingSpecs() []settings.Spec {
	toggle := func(key, labels string) settings.Spec {
		return settings.Spec{
			Key:     key,
			NameKey: "holonet." + labels + ".settings.name",
			HintKey: "holonet." + labels + ".settings.hint",
			Scope:   settings.ScopeWorld,
			Default: true,
			Config:  true,
		}
	}
	return []settings.Spec{
		{
			Key:     KeyLogLevel,
			NameKey: "holonet.settings.log-level.name",
			HintKey: "holonet.settings.log-level.hint",
			Scope:   settings.ScopeClient,
			Default: "info",
			Choices: []string{"debug", "info", "warn", "error"},
			Config:  true,
		},
		toggle(KeyAttackAnimation, "attack-animation"),
		toggle(KeyRename, "rename"),
		toggle(KeyStrainReminder, "strain-reminder"),
		toggle(KeyDiceHelper, "dice-helper"),
		toggle(KeyTalentChecker, "talent-checker"),
		{
			Key:     KeyCrawlFolder,
			NameKey: "holonet.opening-crawl.settings.folder",
			Scope:   settings.ScopeWorld,
			Default: "Opening Crawls",
			Config:  true,
		},
		{
			Key:     KeyCrawlMusic,
			NameKey: "holonet.opening-crawl.settings.music",
			Scope:   settings.ScopeWorld,
			Default: "",
			Config:  true,
		},
		toggle(KeyVehicleRoller, "vehicle-roller"),
	}
}

// Settings registers every module setting before any other feature reads
// one, and keeps the log level in sync with its setting.
type Settings struct {
	base
	initial map[string]any
}

// NewSettings creates the settings feature. initial values are applied
// right after registration.
func NewSettings(initial map[string]any) *Settings {
	return &Settings{base: newBase(NameSettings), initial: initial}
}

// Setup implements lifecycle.Feature.
func (s *Settings) Setup(ctx context.Context, env *lifecycle.Env) error {
	s.bind(env)
	for _, spec := range SettingSpecs() {
		if err := env.Settings.Register(spec); err != nil {
			return err
		}
	}
	if len(s.initial) > 0 {
		if err := env.Settings.Apply(s.initial); err != nil {
			s.log.Warn("ignoring configured settings: %v", err)
		}
	}

	if env.Log != nil {
		env.Log.SetLevel(logging.ParseLevel(env.Settings.String(KeyLogLevel)))
		return env.Settings.OnChange(KeyLogLevel, func(key string, old, value any) {
			env.Log.SetLevel(logging.ParseLevel(fmt.Sprint(value)))
		})
	}
	return nil
}
