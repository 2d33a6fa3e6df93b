package hook_test

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/holonet/internal/hook"
)

var errBoom = errors.New("boom")

// recorder collects the order in which steps run.
type recorder struct {
	calls []string
}

func (r *recorder) step(name string) hook.Interceptor {
	return hook.NewInterceptor(name, func(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
		r.calls = append(r.calls, name)
		return next(ctx, args)
	})
}

func echoOriginal(count *int) hook.Original {
	return hook.Immediate(func(ctx context.Context, args hook.Args) (any, error) {
		*count++
		return args, nil
	})
}

func TestChain_RunsInRegistrationOrder(t *testing.T) {
	rec := &recorder{}
	originals := 0

	chain := hook.Compose(hook.PointMessageSend, echoOriginal(&originals),
		rec.step("first"), rec.step("second"), rec.step("third"))

	if _, err := chain.Call(context.Background(), "msg").Await(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("order = %v, want %v", rec.calls, want)
	}
	if originals != 1 {
		t.Errorf("original called %d times, want 1", originals)
	}
	if chain.Calls() != 1 {
		t.Errorf("Calls() = %d, want 1", chain.Calls())
	}
}

func TestChain_NoInterceptors(t *testing.T) {
	originals := 0
	chain := hook.Compose(hook.PointMessageSend, echoOriginal(&originals))

	v, err := chain.Call(context.Background(), 1, 2).Await()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(v, hook.Args{1, 2}) {
		t.Errorf("result = %v, want [1 2]", v)
	}
	if originals != 1 {
		t.Errorf("original called %d times, want 1", originals)
	}
}

func TestChain_ArgumentRewriting(t *testing.T) {
	marker := func(m string) hook.Interceptor {
		return hook.NewInterceptor(m, func(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
			return next(ctx, args.Append(m))
		})
	}

	var seen hook.Args
	original := hook.Immediate(func(ctx context.Context, args hook.Args) (any, error) {
		seen = args
		return nil, nil
	})

	chain := hook.Compose(hook.PointRollDialog, original, marker("a"), marker("b"))
	if _, err := chain.Call(context.Background(), "base").Await(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := hook.Args{"base", "a", "b"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("original saw %v, want %v", seen, want)
	}
}

func TestChain_ResultVisibleToInterceptor(t *testing.T) {
	doubler := hook.NewInterceptor("double", func(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
		v, err := next(ctx, args).Await()
		if err != nil {
			return hook.Rejected(err)
		}
		return hook.Resolved(v.(int) * 2)
	})
	original := hook.Immediate(func(ctx context.Context, args hook.Args) (any, error) {
		return args[0].(int) + 1, nil
	})

	v, err := hook.Compose(hook.PointMessageSend, original, doubler).Call(context.Background(), 4).Await()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 10 {
		t.Errorf("result = %v, want 10", v)
	}
}

func TestChain_DeferredOriginal(t *testing.T) {
	release := make(chan struct{})
	original := hook.Deferred(func(ctx context.Context, args hook.Args) (any, error) {
		<-release
		return "created", nil
	})

	var after string
	inspect := hook.NewInterceptor("inspect", func(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
		return hook.Then(next(ctx, args), func(v any) (any, error) {
			after = v.(string)
			return v, nil
		})
	})
	passthrough := hook.NewInterceptor("passthrough", func(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
		return next(ctx, args)
	})

	p := hook.Compose(hook.PointEntityCreate, original, passthrough, inspect).Call(context.Background())
	if p.Settled() {
		t.Fatal("result settled before the deferred original finished")
	}

	close(release)
	v, err := p.Await()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "created" || after != "created" {
		t.Errorf("result = %v, inspected = %q; want created", v, after)
	}
}

func TestChain_DeferredInterceptorCompletesBeforeNext(t *testing.T) {
	var derived atomic.Bool
	async := hook.NewInterceptor("async", func(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
		sub := hook.Go(func() (any, error) {
			time.Sleep(5 * time.Millisecond)
			derived.Store(true)
			return "derived", nil
		})
		v, err := sub.Await()
		if err != nil {
			return hook.Rejected(err)
		}
		return next(ctx, args.With(0, v))
	})

	var sawDerived bool
	var seen any
	original := hook.Immediate(func(ctx context.Context, args hook.Args) (any, error) {
		sawDerived = derived.Load()
		seen = args[0]
		return nil, nil
	})

	if _, err := hook.Compose(hook.PointRollDialog, original, async).Call(context.Background(), "stale").Await(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sawDerived || seen != "derived" {
		t.Errorf("original saw derived=%v arg=%v", sawDerived, seen)
	}
}

func TestChain_ErrorPropagatesUnmodified(t *testing.T) {
	originals := 0
	failing := hook.NewInterceptor("failing", func(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
		return hook.Rejected(errBoom)
	})
	rec := &recorder{}

	_, err := hook.Compose(hook.PointMessageSend, echoOriginal(&originals), failing, rec.step("after")).
		Call(context.Background()).Await()
	if err != errBoom {
		t.Errorf("err = %v, want errBoom unmodified", err)
	}
	if originals != 0 {
		t.Errorf("original ran %d times after a failing step", originals)
	}
	if len(rec.calls) != 0 {
		t.Errorf("later steps ran: %v", rec.calls)
	}
}

func TestChain_OriginalErrorPropagates(t *testing.T) {
	original := hook.Deferred(func(ctx context.Context, args hook.Args) (any, error) {
		return nil, errBoom
	})
	rec := &recorder{}

	_, err := hook.Compose(hook.PointEntityCreate, original, rec.step("a")).Call(context.Background()).Await()
	if !errors.Is(err, errBoom) {
		t.Errorf("err = %v, want errBoom", err)
	}
}

func TestChain_PanicBecomesRejection(t *testing.T) {
	panicking := hook.NewInterceptor("panicking", func(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
		panic("bad step")
	})
	originals := 0

	_, err := hook.Compose(hook.PointMessageSend, echoOriginal(&originals), panicking).Call(context.Background()).Await()

	var perr *hook.PanicError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *PanicError", err)
	}
	if perr.Step != "panicking" || perr.Point != hook.PointMessageSend {
		t.Errorf("PanicError = %+v", perr)
	}
}

func TestChain_DeferredPanicNamesPoint(t *testing.T) {
	tests := []struct {
		name  string
		chain *hook.Chain
		step  string
	}{
		{
			name: "deferred original",
			chain: hook.Compose(hook.PointEntityCreate, hook.Deferred(func(ctx context.Context, args hook.Args) (any, error) {
				panic("create failed")
			})),
			step: "deferred",
		},
		{
			name: "then",
			chain: hook.Compose(hook.PointRollDialog, hook.Deferred(func(ctx context.Context, args hook.Args) (any, error) {
				return "dialog", nil
			}), hook.NewInterceptor("after", func(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
				return hook.Then(next(ctx, args), func(any) (any, error) { panic("after failed") })
			})),
			step: "then",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.chain.Call(context.Background()).Await()
			var perr *hook.PanicError
			if !errors.As(err, &perr) {
				t.Fatalf("err = %v, want *PanicError", err)
			}
			if perr.Point != tt.chain.Point() || perr.Step != tt.step {
				t.Errorf("PanicError = %+v", perr)
			}
		})
	}
}

func TestChain_PointInContext(t *testing.T) {
	var seen hook.Point
	original := hook.Immediate(func(ctx context.Context, args hook.Args) (any, error) {
		seen, _ = hook.PointFrom(ctx)
		return nil, nil
	})
	if _, err := hook.Compose(hook.PointMessageSend, original).Call(context.Background()).Await(); err != nil {
		t.Fatal(err)
	}
	if seen != hook.PointMessageSend {
		t.Errorf("PointFrom = %q", seen)
	}
	if _, ok := hook.PointFrom(context.Background()); ok {
		t.Error("PointFrom found a point outside a chain")
	}
}

func TestChain_ContinuationAtMostOnce(t *testing.T) {
	originals := 0
	var second error
	twice := hook.NewInterceptor("twice", func(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
		first := next(ctx, args)
		_, second = next(ctx, args).Await()
		return first
	})

	if _, err := hook.Compose(hook.PointMessageSend, echoOriginal(&originals), twice).Call(context.Background()).Await(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(second, hook.ErrContinuationReused) {
		t.Errorf("second next = %v, want ErrContinuationReused", second)
	}
	if originals != 1 {
		t.Errorf("original called %d times, want 1", originals)
	}
}

func TestChain_NilResultRejected(t *testing.T) {
	nilStep := hook.NewInterceptor("nil", func(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
		return nil
	})
	originals := 0

	_, err := hook.Compose(hook.PointMessageSend, echoOriginal(&originals), nilStep).Call(context.Background()).Await()
	if !errors.Is(err, hook.ErrNilPending) {
		t.Errorf("err = %v, want ErrNilPending", err)
	}
}

func TestChain_EachCallIndependent(t *testing.T) {
	originals := 0
	rec := &recorder{}
	chain := hook.Compose(hook.PointMessageSend, echoOriginal(&originals), rec.step("a"))

	for i := 0; i < 3; i++ {
		if _, err := chain.Call(context.Background(), i).Await(); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if originals != 3 || len(rec.calls) != 3 {
		t.Errorf("originals=%d steps=%d, want 3 each", originals, len(rec.calls))
	}
}
