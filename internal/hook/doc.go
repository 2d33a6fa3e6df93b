// Package hook composes interceptors around host-owned operations.
//
// A host operation that can be augmented is an extension point, named by a
// Point. Features register Interceptors against a point on the Registry while
// the process starts; once every feature had its chance the Registry installs
// one Chain per point in front of the host's Original implementation and
// stops accepting registrations.
//
// # Chains
//
// A Chain is an ordered middleware pipeline. Interceptor 0 is entered first;
// its Continuation dispatches to interceptor 1, and so on, with the last
// continuation bound to the host's Original:
//
//	chain := hook.Compose(hook.PointMessageSend, original, first, second)
//	res, err := chain.Call(ctx, msg).Await()
//
// Each interceptor sees the argument list produced by the step before it and
// may rewrite it before calling next. It can also wait for the downstream
// result and inspect or replace it before returning to its own caller.
//
// # Deferred results
//
// Every step returns a *Pending, whether the work finished already or not.
// Immediate and Deferred adapt synchronous and asynchronous host functions to
// the same Original shape, so interceptors never need to know which one they
// are in front of:
//
//	func(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
//	    args, err := deriveArgs(ctx, args) // may block
//	    if err != nil {
//	        return hook.Rejected(err)
//	    }
//	    return next(ctx, args)
//	}
//
// An interceptor that needs the downstream value calls Await on the result of
// next, or uses Then to transform it without blocking.
//
// # Guarantees
//
//   - Interceptors run in registration order. The registry never reorders.
//   - A continuation is good for one call. A second call rejects with
//     ErrContinuationReused and does not reach the original again.
//   - Rejections travel back to the caller unmodified. A panic inside a step
//     becomes a *PanicError rejection.
//   - Observe builds the one result-observing step: the original runs first,
//     then every Observer sees the same value; one failing observer never
//     keeps the next from running.
package hook
