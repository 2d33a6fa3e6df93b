// Package app provides the composition root of holonet. It wires the
// logger, settings store, hook registry, registrars, built-in features and
// Lua scripts to a host, and subscribes them to the host's lifecycle.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/holonet/internal/config"
	"github.com/dshills/holonet/internal/event"
	"github.com/dshills/holonet/internal/feature"
	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/i18n"
	"github.com/dshills/holonet/internal/lifecycle"
	"github.com/dshills/holonet/internal/logging"
	"github.com/dshills/holonet/internal/render"
	"github.com/dshills/holonet/internal/settings"
	"github.com/dshills/holonet/internal/ui"
)

// Application owns every holonet component attached to one host.
type Application struct {
	mu sync.Mutex

	opts Options
	cfg  *config.Config
	host host.Host
	log  *logging.Logger

	settings *settings.Store
	registry *hook.Registry
	ui       *ui.Registrar
	orch     *lifecycle.Orchestrator
	features []lifecycle.Feature

	subs     []event.Subscription
	attached bool
	closed   bool
}

// Options configures the application.
type Options struct {
	// Config is the loaded configuration. Nil uses config.Default.
	Config *config.Config

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// Animations overrides the default attack animations.
	Animations map[string]feature.Animation

	// DatapadLines is the number of empty lines in a new datapad.
	DatapadLines int

	// Features are added after the built-in features and scripts.
	Features []lifecycle.Feature
}

// New builds the application for h. Nothing is subscribed to the host
// until Attach.
func New(opts Options, h host.Host) (*Application, error) {
	if h == nil {
		return nil, &InitError{Component: "host", Err: ErrNoHost}
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	app := &Application{opts: opts, cfg: cfg, host: h}
	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Catalog loads the localization catalog for cfg: the bundled language
// files plus <lang_dir>/<language>.yaml when it exists.
func Catalog(cfg *config.Config) (*i18n.Catalog, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.LangDir != "" {
		path := filepath.Join(cfg.LangDir, cfg.Language+".yaml")
		if _, err := os.Stat(path); err == nil {
			return i18n.LoadFile(cfg.Language, path)
		}
	}
	return i18n.Bundled(cfg.Language)
}

// Attach registers the template helpers and subscribes the toolbar
// registrar and the orchestrator to the host. It may be called once.
func (app *Application) Attach() error {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.closed {
		return ErrClosed
	}
	if app.attached {
		return ErrAlreadyAttached
	}

	if err := render.Register(app.host, app.host); err != nil {
		return &InitError{Component: "template helpers", Err: err}
	}
	sub, err := app.ui.Attach(app.host)
	if err != nil {
		return &InitError{Component: "toolbar", Err: err}
	}
	if err := app.orch.Attach(app.host); err != nil {
		sub.Cancel()
		return &InitError{Component: "lifecycle", Err: err}
	}
	app.subs = append(app.subs, sub)
	app.attached = true
	app.log.Debug("attached %d features", len(app.features))
	return nil
}

// ApplyConfig pushes the settings of a reloaded configuration into the
// live settings store. Settings exist only after setup.
func (app *Application) ApplyConfig(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	if app.orch.State() == lifecycle.StateUninitialized {
		return ErrNotStarted
	}
	if err := app.settings.Apply(initialSettings(cfg)); err != nil {
		return err
	}
	app.mu.Lock()
	app.cfg = cfg
	app.mu.Unlock()
	app.log.Info("configuration applied")
	return nil
}

// Close cancels the host subscriptions and releases features holding
// resources, such as Lua states. It is idempotent.
func (app *Application) Close() error {
	app.mu.Lock()
	if app.closed {
		app.mu.Unlock()
		return nil
	}
	app.closed = true
	subs := app.subs
	app.subs = nil
	features := app.features
	app.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	var errs []error
	for _, f := range features {
		switch c := f.(type) {
		case interface{ Close() error }:
			errs = append(errs, c.Close())
		case interface{ Close() }:
			c.Close()
		}
	}
	return errors.Join(errs...)
}

// Start attaches the application and fires the host's setup and ready
// moments. Only hosts that can start themselves support it.
func (app *Application) Start(ctx context.Context) error {
	starter, ok := app.host.(interface {
		Start(ctx context.Context) error
	})
	if !ok {
		return ErrCannotStart
	}
	if err := app.Attach(); err != nil {
		return err
	}
	return starter.Start(ctx)
}

// Config returns the configuration last applied.
func (app *Application) Config() *config.Config {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.cfg
}

// Logger returns the root logger.
func (app *Application) Logger() *logging.Logger { return app.log }

// Settings returns the settings store.
func (app *Application) Settings() *settings.Store { return app.settings }

// Registry returns the hook registry.
func (app *Application) Registry() *hook.Registry { return app.registry }

// Orchestrator returns the lifecycle orchestrator.
func (app *Application) Orchestrator() *lifecycle.Orchestrator { return app.orch }

// Toolbar returns the toolbar registrar.
func (app *Application) Toolbar() *ui.Registrar { return app.ui }

// Features returns the features in declared order.
func (app *Application) Features() []lifecycle.Feature {
	app.mu.Lock()
	defer app.mu.Unlock()
	return append([]lifecycle.Feature(nil), app.features...)
}

// initialSettings returns cfg's settings with the log level seeded from
// log_level unless [settings] sets it explicitly.
func initialSettings(cfg *config.Config) map[string]any {
	out := make(map[string]any, len(cfg.Settings)+1)
	for k, v := range cfg.Settings {
		out[k] = v
	}
	if _, ok := out[feature.KeyLogLevel]; !ok && cfg.LogLevel != "" {
		level := cfg.LogLevel
		if level == "warning" {
			level = "warn"
		}
		out[feature.KeyLogLevel] = level
	}
	return out
}
