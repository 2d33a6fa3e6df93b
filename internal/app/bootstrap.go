package app

import (
	"context"
	"errors"
	"os"

	"github.com/dshills/holonet/internal/feature"
	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/lifecycle"
	"github.com/dshills/holonet/internal/logging"
	"github.com/dshills/holonet/internal/script"
	"github.com/dshills/holonet/internal/settings"
	"github.com/dshills/holonet/internal/ui"
)

// bootstrapper builds the components in dependency order and releases
// what it already built when a later step fails.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{app: app, initOrder: make([]string, 0, 6)}
}

func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initLogger,
		b.initSettings,
		b.initRegistry,
		b.initToolbar,
		b.initFeatures,
		b.initOrchestrator,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

func (b *bootstrapper) initLogger() error {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(b.app.cfg.LogLevel)
	if b.app.opts.LogOutput != nil {
		cfg.Output = b.app.opts.LogOutput
	}
	b.app.log = logging.New(cfg)
	b.initOrder = append(b.initOrder, "logger")
	return nil
}

func (b *bootstrapper) initSettings() error {
	b.app.settings = settings.NewStore(settings.WithLogger(b.app.log))
	b.initOrder = append(b.initOrder, "settings")
	return nil
}

func (b *bootstrapper) initRegistry() error {
	b.app.registry = hook.NewRegistry(hook.WithLogger(b.app.log))
	b.initOrder = append(b.initOrder, "registry")
	return nil
}

func (b *bootstrapper) initToolbar() error {
	b.app.ui = ui.NewRegistrar(b.app.host, b.app.host, ui.WithLogger(b.app.log))
	b.initOrder = append(b.initOrder, "toolbar")
	return nil
}

// initFeatures collects the built-ins, the scripts and any extra features.
// A script that fails to load is logged and left out.
func (b *bootstrapper) initFeatures() error {
	features := feature.Builtins(feature.Options{
		Settings:     initialSettings(b.app.cfg),
		Animations:   b.app.opts.Animations,
		DatapadLines: b.app.opts.DatapadLines,
	})

	if dir := b.app.cfg.ScriptsDir; dir != "" {
		scripts, err := script.LoadDir(context.Background(), dir,
			script.WithLogger(b.app.log.WithComponent("script")))
		switch {
		case errors.Is(err, os.ErrNotExist):
			b.app.log.Warn("scripts directory %s does not exist", dir)
		case err != nil:
			b.app.log.Warn("some scripts failed to load: %v", err)
		}
		for _, s := range scripts {
			features = append(features, s)
		}
	}

	b.app.features = append(features, b.app.opts.Features...)
	b.initOrder = append(b.initOrder, "features")
	return nil
}

func (b *bootstrapper) initOrchestrator() error {
	env := &lifecycle.Env{
		Host:     b.app.host,
		Settings: b.app.settings,
		UI:       b.app.ui,
		Log:      b.app.log,
	}
	orch := lifecycle.New(env, b.app.registry, lifecycle.WithLogger(b.app.log))
	if err := orch.Use(b.app.features...); err != nil {
		return &InitError{Component: "features", Err: err}
	}
	orch.Declare(feature.Points...)
	orch.ReadyOrder(feature.ReadyOrder...)
	b.app.orch = orch
	b.initOrder = append(b.initOrder, "orchestrator")
	return nil
}

// cleanup releases built components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "features":
			for _, f := range b.app.features {
				if c, ok := f.(interface{ Close() }); ok {
					c.Close()
				}
			}
		}
	}
}
