// Package lifecycle sequences holonet's features through the host
// lifecycle. Setup runs every feature's setup in declared order. Ready runs
// the activations, collects interceptors, installs one chain per declared
// extension point through the host's interception facility, freezes the
// registry and finally runs the post-install finishers.
package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dshills/holonet/internal/event"
	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/logging"
)

// Orchestrator drives features through setup and ready.
type Orchestrator struct {
	mu       sync.Mutex
	state    State
	busy     bool
	features []Feature
	names    map[string]bool
	points   []hook.Point
	ready    []string

	env      *Env
	registry *hook.Registry
	log      *logging.Logger

	subs []event.Subscription
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// New creates an orchestrator that installs the interceptors of registry
// on env.Host.
func New(env *Env, registry *hook.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		names:    make(map[string]bool),
		env:      env,
		registry: registry,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.WithComponent("lifecycle")
	if env.Log == nil {
		env.Log = o.log
	}
	return o
}

// Use adds features in declared order. Features can only be added before
// setup.
func (o *Orchestrator) Use(features ...Feature) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateUninitialized || o.busy {
		return fmt.Errorf("%w: cannot add features when %s", ErrInvalidTransition, o.state)
	}
	for _, f := range features {
		if o.names[f.Name()] {
			return fmt.Errorf("%w: %s", ErrDuplicateFeature, f.Name())
		}
		o.names[f.Name()] = true
		o.features = append(o.features, f)
	}
	return nil
}

// Declare adds extension points to install on ready. Declaring a point
// twice has no effect.
func (o *Orchestrator) Declare(points ...hook.Point) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, p := range points {
		declared := false
		for _, q := range o.points {
			if p == q {
				declared = true
				break
			}
		}
		if !declared {
			o.points = append(o.points, p)
		}
	}
}

// ReadyOrder sets the order in which the named features activate on
// ready. Activators not named follow in declared order. Every name must be
// a feature added with Use by the time ready runs.
func (o *Orchestrator) ReadyOrder(names ...string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ready = append([]string(nil), names...)
}

// Activations returns the names of the activators in the order ready runs
// them.
func (o *Orchestrator) Activations() ([]string, error) {
	o.mu.Lock()
	features, err := sortFeatures(o.features)
	ready := o.ready
	o.mu.Unlock()
	if err != nil {
		return nil, err
	}
	activators, err := activationOrder(features, ready)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(activators))
	for i, f := range activators {
		names[i] = f.Name()
	}
	return names, nil
}

// Features returns the features in declared order.
func (o *Orchestrator) Features() []Feature {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Feature(nil), o.features...)
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Attach subscribes Setup and Ready to the host's one-shot lifecycle
// events.
func (o *Orchestrator) Attach(events interface {
	Once(topic string, h event.Handler) (event.Subscription, error)
}) error {
	o.mu.Lock()
	if len(o.subs) > 0 {
		o.mu.Unlock()
		return ErrAlreadyAttached
	}
	o.mu.Unlock()

	setup, err := events.Once(event.TopicSetup, func(ctx context.Context, _ any) error {
		return o.Setup(ctx)
	})
	if err != nil {
		return err
	}
	ready, err := events.Once(event.TopicReady, func(ctx context.Context, _ any) error {
		return o.Ready(ctx)
	})
	if err != nil {
		setup.Cancel()
		return err
	}

	o.mu.Lock()
	o.subs = append(o.subs, setup, ready)
	o.mu.Unlock()
	return nil
}

// Setup runs every feature's setup. The first failure aborts the phase and
// leaves the state unchanged.
func (o *Orchestrator) Setup(ctx context.Context) error {
	features, err := o.begin(StateUninitialized)
	if err != nil {
		return err
	}
	completed := false
	defer func() { o.end(completed) }()

	for _, f := range features {
		o.log.Debug("setup %s", f.Name())
		if err := f.Setup(ctx, o.env); err != nil {
			o.log.Error("setup %s failed: %v", f.Name(), err)
			return &InitError{Phase: "setup", Feature: f.Name(), Err: err}
		}
	}

	completed = true
	o.log.Info("setup complete, %d features", len(features))
	return nil
}

// Ready activates features, installs the declared points and runs the
// finishers. Activation and finisher failures are logged and the remaining
// features still run; registration and installation failures abort.
//
// Interceptors may only be registered on declared points. Every declared
// point is checked against the host before any of them is wrapped.
func (o *Orchestrator) Ready(ctx context.Context) error {
	features, err := o.begin(StateSetupComplete)
	if err != nil {
		return err
	}
	completed := false
	defer func() { o.end(completed) }()

	o.mu.Lock()
	order := o.ready
	o.mu.Unlock()
	activators, err := activationOrder(features, order)
	if err != nil {
		return &InitError{Phase: "ready", Err: err}
	}
	for _, f := range activators {
		o.log.Debug("ready %s", f.Name())
		if err := f.(Activator).Ready(ctx, o.env); err != nil {
			o.log.Error("ready %s failed: %v", f.Name(), err)
		}
	}

	declared := o.declared()
	if err := o.check(declared); err != nil {
		return err
	}

	for _, f := range features {
		p, ok := f.(InterceptorProvider)
		if !ok {
			continue
		}
		r := &declaredRegistrar{registry: o.registry, feature: f.Name(), points: declared, log: o.log}
		if err := p.Intercept(r); err != nil {
			return &InitError{Phase: "intercept", Feature: f.Name(), Err: err}
		}
	}

	if err := o.install(declared); err != nil {
		return err
	}
	o.registry.Freeze()

	for _, f := range features {
		fin, ok := f.(Finisher)
		if !ok {
			continue
		}
		if err := fin.Installed(ctx, o.env); err != nil {
			o.log.Error("installed %s failed: %v", f.Name(), err)
		}
	}

	completed = true
	o.log.Info("ready, %d extension points installed", len(declared))
	return nil
}

// check verifies that every declared point can be installed.
func (o *Orchestrator) check(points []hook.Point) error {
	for _, point := range points {
		if !o.env.Host.Supports(point) {
			return &InitError{Phase: "install", Feature: string(point), Err: ErrUnsupportedPoint}
		}
		if _, installed := o.registry.Chain(point); installed {
			return &InitError{Phase: "install", Feature: string(point), Err: hook.ErrAlreadyInstalled}
		}
	}
	return nil
}

func (o *Orchestrator) install(points []hook.Point) error {
	for _, point := range points {
		point := point
		var installErr error
		err := o.env.Host.Intercept(point, func(original hook.Original) hook.Original {
			chain, err := o.registry.Install(point, original)
			if err != nil {
				installErr = err
				return original
			}
			o.log.Debug("installed %s with %d interceptors", point, chain.Len())
			return chain.Invoke
		})
		if err == nil {
			err = installErr
		}
		if err != nil {
			return &InitError{Phase: "install", Feature: string(point), Err: err}
		}
	}
	return nil
}

// begin checks the state and returns the features in run order.
func (o *Orchestrator) begin(want State) ([]Feature, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != want || o.busy {
		return nil, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, want.next(), o.state)
	}
	features, err := sortFeatures(o.features)
	if err != nil {
		return nil, &InitError{Phase: want.next().String(), Err: err}
	}
	o.busy = true
	return features, nil
}

// end releases the phase started by begin and advances on success.
func (o *Orchestrator) end(ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.busy = false
	if ok {
		o.state = o.state.next()
	}
}

func (o *Orchestrator) declared() []hook.Point {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]hook.Point(nil), o.points...)
}

// activationOrder returns the activators of features, the ones named in
// order first.
func activationOrder(features []Feature, order []string) ([]Feature, error) {
	byName := make(map[string]Feature, len(features))
	for _, f := range features {
		byName[f.Name()] = f
	}

	out := make([]Feature, 0, len(features))
	placed := make(map[string]bool, len(order))
	for _, name := range order {
		f, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: ready order names %s", ErrUnknownDependency, name)
		}
		if _, ok := f.(Activator); !ok || placed[name] {
			continue
		}
		placed[name] = true
		out = append(out, f)
	}
	for _, f := range features {
		if _, ok := f.(Activator); ok && !placed[f.Name()] {
			out = append(out, f)
		}
	}
	return out, nil
}

// declaredRegistrar is the Registrar features see on ready. It rejects
// points that are not declared, since those would never be installed.
type declaredRegistrar struct {
	registry *hook.Registry
	feature  string
	points   []hook.Point
	log      *logging.Logger
}

func (r *declaredRegistrar) Register(point hook.Point, ic hook.Interceptor) error {
	if !slices.Contains(r.points, point) {
		name := r.feature
		if ic != nil {
			name = ic.Name()
		}
		r.log.Warn("%s: interceptor %q on undeclared point %s rejected", r.feature, name, point)
		return fmt.Errorf("%w: %s", ErrUndeclaredPoint, point)
	}
	return r.registry.Register(point, ic)
}

func (r *declaredRegistrar) RegisterFunc(point hook.Point, name string, fn hook.InterceptFunc) error {
	return r.Register(point, hook.NewInterceptor(name, fn))
}
