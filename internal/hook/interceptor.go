package hook

import "context"

// Continuation invokes the remainder of a chain with a possibly rewritten
// argument list. It may be called at most once per step invocation.
type Continuation func(ctx context.Context, args Args) *Pending

// Interceptor is a step of a chain.
type Interceptor interface {
	// Name identifies the interceptor in logs and Names.
	Name() string

	// Intercept runs the step. It must eventually call next, forwarding the
	// arguments the rest of the chain should see, and return a result.
	Intercept(ctx context.Context, next Continuation, args Args) *Pending
}

// InterceptFunc is the function shape of an interceptor.
type InterceptFunc func(ctx context.Context, next Continuation, args Args) *Pending

// InterceptorFunc wraps a function as an Interceptor.
type InterceptorFunc struct {
	name string
	fn   InterceptFunc
}

// NewInterceptor creates a named interceptor from fn.
func NewInterceptor(name string, fn InterceptFunc) *InterceptorFunc {
	return &InterceptorFunc{name: name, fn: fn}
}

// Name implements Interceptor.
func (f *InterceptorFunc) Name() string { return f.name }

// Intercept implements Interceptor. A nil function forwards unchanged.
func (f *InterceptorFunc) Intercept(ctx context.Context, next Continuation, args Args) *Pending {
	if f.fn == nil {
		return next(ctx, args)
	}
	return f.fn(ctx, next, args)
}

// Original is the host's own implementation of an extension point.
type Original func(ctx context.Context, args Args) *Pending

// Immediate adapts a synchronous host function. The result is settled
// before Immediate's Original returns.
func Immediate(fn func(ctx context.Context, args Args) (any, error)) Original {
	return func(ctx context.Context, args Args) *Pending {
		v, err := fn(ctx, args)
		if err != nil {
			return Rejected(err)
		}
		return Resolved(v)
	}
}

// Deferred adapts a host function whose result arrives later. fn runs on its
// own goroutine and the Original returns before it finishes.
func Deferred(fn func(ctx context.Context, args Args) (any, error)) Original {
	return func(ctx context.Context, args Args) *Pending {
		return Go(func() (any, error) {
			return fn(ctx, args)
		})
	}
}
