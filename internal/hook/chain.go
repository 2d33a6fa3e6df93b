package hook

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/dshills/holonet/internal/logging"
)

// originalStep is the step name used for the host implementation.
const originalStep = "original"

// Chain is the composed callable for one extension point: an ordered list of
// interceptors terminating in the host's original implementation.
// A Chain is immutable once built and safe for concurrent calls.
type Chain struct {
	point    Point
	steps    []Interceptor
	original Original
	log      *logging.Logger

	calls atomic.Uint64
}

// Compose builds a chain over steps and original. steps[0] is entered first.
func Compose(point Point, original Original, steps ...Interceptor) *Chain {
	return &Chain{
		point:    point,
		steps:    append([]Interceptor(nil), steps...),
		original: original,
		log:      logging.Nop(),
	}
}

// WithLogger sets the logger used for chain diagnostics and returns c.
func (c *Chain) WithLogger(l *logging.Logger) *Chain {
	if l != nil {
		c.log = l.WithField("point", c.point)
	}
	return c
}

// Point returns the extension point the chain was built for.
func (c *Chain) Point() Point { return c.point }

// Len returns the number of interceptors in front of the original.
func (c *Chain) Len() int { return len(c.steps) }

// Calls returns how many times the chain has been entered.
func (c *Chain) Calls() uint64 { return c.calls.Load() }

// Call invokes the chain with args.
func (c *Chain) Call(ctx context.Context, args ...any) *Pending {
	return c.Invoke(ctx, Args(args))
}

// Invoke invokes the chain with an argument list.
//
// The continuation handed to step i enters step i+1; the one handed to the
// last step enters the original. Continuations are built per call so each
// of them can refuse a second use.
func (c *Chain) Invoke(ctx context.Context, args Args) *Pending {
	n := c.calls.Add(1)
	c.log.Debug("call %d with %d interceptors", n, len(c.steps))

	var reached atomic.Bool
	next := c.guard(originalStep, func(ctx context.Context, args Args) *Pending {
		reached.Store(true)
		return c.run(originalStep, func() *Pending { return c.original(ctx, args) })
	})

	for i := len(c.steps) - 1; i >= 0; i-- {
		step, inner := c.steps[i], next
		enter := func(ctx context.Context, args Args) *Pending {
			return c.run(step.Name(), func() *Pending { return step.Intercept(ctx, inner, args) })
		}
		if i == 0 {
			next = enter
		} else {
			next = c.guard(step.Name(), enter)
		}
	}

	p := next(context.WithValue(ctx, pointKey{}, c.point), args)
	p.whenSettled(func(_ any, err error) {
		if err == nil && !reached.Load() {
			c.log.Warn("call %d settled without reaching the original implementation", n)
		}
	})
	return p
}

// guard lets k run once; later calls reject without running it.
func (c *Chain) guard(name string, k Continuation) Continuation {
	var used atomic.Bool
	return func(ctx context.Context, args Args) *Pending {
		if used.Swap(true) {
			c.log.Warn("continuation into %q called twice", name)
			return Rejected(fmt.Errorf("%w: %s into %q", ErrContinuationReused, c.point, name))
		}
		return k(ctx, args)
	}
}

// run executes one step, turning panics and nil results into rejections.
func (c *Chain) run(name string, fn func() *Pending) (p *Pending) {
	defer func() {
		if r := recover(); r != nil {
			p = Rejected(&PanicError{Point: c.point, Step: name, Value: r, Stack: string(debug.Stack())})
		}
	}()
	if p = fn(); p == nil {
		return Rejected(fmt.Errorf("%w: %s step %q", ErrNilPending, c.point, name))
	}
	return c.annotate(p)
}

// annotate sets the chain's point on panics recovered by Go and Then,
// which do not know it.
func (c *Chain) annotate(p *Pending) *Pending {
	out := newPending()
	p.whenSettled(func(v any, err error) {
		if perr, ok := err.(*PanicError); ok && perr.Point == "" {
			withPoint := *perr
			withPoint.Point = c.point
			err = &withPoint
		}
		out.settle(v, err)
	})
	return out
}

type pointKey struct{}

// PointFrom returns the extension point whose chain ctx was passed
// through.
func PointFrom(ctx context.Context) (Point, bool) {
	p, ok := ctx.Value(pointKey{}).(Point)
	return p, ok
}
