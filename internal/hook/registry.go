package hook

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshills/holonet/internal/logging"
)

// Registry holds the ordered interceptor list of every extension point and
// installs one chain per point.
//
// Registration is open while the process starts. Installing a point closes it
// for registration; Freeze closes all of them. Afterwards the lists are only
// read through the installed chains.
type Registry struct {
	mu     sync.Mutex
	points map[Point][]Interceptor
	order  []Point
	chains map[Point]*Chain
	frozen bool

	log *logging.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRegistry creates an empty, open registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		points: make(map[Point][]Interceptor),
		chains: make(map[Point]*Chain),
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends ic to the interceptors of point. Registering under a
// point that already has interceptors composes with them.
//
// Once the point is installed or the registry is frozen the call is rejected
// with ErrRegistryFrozen and a warning is logged.
func (r *Registry) Register(point Point, ic Interceptor) error {
	if ic == nil {
		return ErrNilInterceptor
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, installed := r.chains[point]; installed || r.frozen {
		r.log.Warn("interceptor %q registered on %s after installation; rejected", ic.Name(), point)
		return fmt.Errorf("%w: %q on %s", ErrRegistryFrozen, ic.Name(), point)
	}

	if _, ok := r.points[point]; !ok {
		r.order = append(r.order, point)
	}
	r.points[point] = append(r.points[point], ic)
	r.log.Debug("registered %q on %s at position %d", ic.Name(), point, len(r.points[point])-1)
	return nil
}

// RegisterFunc registers fn under name on point.
func (r *Registry) RegisterFunc(point Point, name string, fn InterceptFunc) error {
	return r.Register(point, NewInterceptor(name, fn))
}

// Install builds the chain of point over its current interceptors and
// original. It may be called once per point.
func (r *Registry) Install(point Point, original Original) (*Chain, error) {
	if original == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilOriginal, point)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, installed := r.chains[point]; installed {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInstalled, point)
	}

	chain := Compose(point, original, r.points[point]...).WithLogger(r.log)
	r.chains[point] = chain
	if _, ok := r.points[point]; !ok {
		r.order = append(r.order, point)
		r.points[point] = nil
	}
	r.log.Info("installed %s with %d interceptors", point, chain.Len())
	return chain, nil
}

// Freeze rejects every later registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

// Chain returns the installed chain of point.
func (r *Registry) Chain(point Point) (*Chain, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chains[point]
	return c, ok
}

// Call invokes the installed chain of point. Calling a point that is not
// installed rejects with ErrNotInstalled.
func (r *Registry) Call(ctx context.Context, point Point, args ...any) *Pending {
	c, ok := r.Chain(point)
	if !ok {
		return Rejected(fmt.Errorf("%w: %s", ErrNotInstalled, point))
	}
	return c.Invoke(ctx, Args(args))
}

// Points returns every known point in first-registration order.
func (r *Registry) Points() []Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Point, len(r.order))
	copy(out, r.order)
	return out
}

// Names returns the interceptor names of point in chain order.
func (r *Registry) Names(point Point) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	steps := r.points[point]
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name()
	}
	return names
}
