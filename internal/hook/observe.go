package hook

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/dshills/holonet/internal/logging"
)

// Observer consumes the result of an original call.
type Observer interface {
	Name() string
	Observe(ctx context.Context, result any, args Args) error
}

// ObserverFunc wraps a function as an Observer.
type ObserverFunc struct {
	name string
	fn   func(ctx context.Context, result any, args Args) error
}

// NewObserver creates a named observer from fn.
func NewObserver(name string, fn func(ctx context.Context, result any, args Args) error) *ObserverFunc {
	return &ObserverFunc{name: name, fn: fn}
}

// Name implements Observer.
func (f *ObserverFunc) Name() string { return f.name }

// Observe implements Observer.
func (f *ObserverFunc) Observe(ctx context.Context, result any, args Args) error {
	if f.fn == nil {
		return nil
	}
	return f.fn(ctx, result, args)
}

// ObserveOption configures an observing step.
type ObserveOption func(*observing)

// WithObserverLogger sets the logger for observer failures.
func WithObserverLogger(l *logging.Logger) ObserveOption {
	return func(o *observing) {
		if l != nil {
			o.log = l
		}
	}
}

// WithErrorReporter sets a callback that receives every observer failure,
// for surfacing them through the host.
func WithErrorReporter(fn func(*ObserverError)) ObserveOption {
	return func(o *observing) { o.report = fn }
}

type observing struct {
	name      string
	observers []Observer
	log       *logging.Logger
	report    func(*ObserverError)
}

// Observe returns an interceptor that lets the rest of the chain run first
// and then hands its result to every observer in order.
//
// All observers see the identical value. A failing or panicking observer is
// logged and reported, and the next observer still runs. The caller receives
// the downstream result unchanged; a downstream rejection skips the observers
// and is passed through.
func Observe(name string, observers []Observer, opts ...ObserveOption) Interceptor {
	o := &observing{
		name:      name,
		observers: append([]Observer(nil), observers...),
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return NewInterceptor(name, func(ctx context.Context, next Continuation, args Args) *Pending {
		return Then(next(ctx, args), func(result any) (any, error) {
			o.notify(ctx, result, args)
			return result, nil
		})
	})
}

func (o *observing) notify(ctx context.Context, result any, args Args) {
	point, _ := PointFrom(ctx)
	for _, obs := range o.observers {
		if err := o.call(ctx, point, obs, result, args); err != nil {
			oerr := &ObserverError{Point: point, Step: o.name, Observer: obs.Name(), Err: err}
			o.log.Error("%v", oerr)
			if o.report != nil {
				o.report(oerr)
			}
		}
	}
}

func (o *observing) call(ctx context.Context, point Point, obs Observer, result any, args Args) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Point: point, Step: obs.Name(), Value: r, Stack: string(debug.Stack())}
		}
	}()
	if err = obs.Observe(ctx, result, args); err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	return nil
}
