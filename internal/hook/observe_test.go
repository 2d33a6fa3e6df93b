package hook_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/holonet/internal/hook"
)

type created struct{ ids []string }

func TestObserve_SiblingsSeeIdenticalResult(t *testing.T) {
	result := &created{ids: []string{"a", "b"}}
	original := hook.Deferred(func(ctx context.Context, args hook.Args) (any, error) {
		return result, nil
	})

	var first, second any
	step := hook.Observe("post-create", []hook.Observer{
		hook.NewObserver("rename", func(ctx context.Context, v any, args hook.Args) error {
			first = v
			return nil
		}),
		hook.NewObserver("strain", func(ctx context.Context, v any, args hook.Args) error {
			second = v
			return nil
		}),
	})

	v, err := hook.Compose(hook.PointEntityCreate, original, step).Call(context.Background(), "combat").Await()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != result {
		t.Errorf("caller got %v, want the created result", v)
	}
	if first != result || second != result {
		t.Errorf("observers saw %v and %v, want the same created result", first, second)
	}
}

func TestObserve_FailingSiblingIsolated(t *testing.T) {
	tests := []struct {
		name string
		fail func() error
	}{
		{"error", func() error { return errBoom }},
		{"panic", func() error { panic("observer exploded") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &created{}
			original := hook.Immediate(func(ctx context.Context, args hook.Args) (any, error) {
				return result, nil
			})

			secondRan := false
			var reported []*hook.ObserverError
			step := hook.Observe("post-create", []hook.Observer{
				hook.NewObserver("first", func(ctx context.Context, v any, args hook.Args) error {
					return tt.fail()
				}),
				hook.NewObserver("second", func(ctx context.Context, v any, args hook.Args) error {
					secondRan = true
					return nil
				}),
			}, hook.WithErrorReporter(func(e *hook.ObserverError) {
				reported = append(reported, e)
			}))

			v, err := hook.Compose(hook.PointEntityCreate, original, step).Call(context.Background()).Await()
			if err != nil {
				t.Fatalf("observer failure reached the caller: %v", err)
			}
			if v != result {
				t.Errorf("caller got %v, want created result", v)
			}
			if !secondRan {
				t.Error("second observer did not run")
			}
			if len(reported) != 1 || reported[0].Observer != "first" {
				t.Fatalf("reported = %v, want one failure of first", reported)
			}
			if tt.name == "error" && !errors.Is(reported[0], errBoom) {
				t.Errorf("reported error does not wrap errBoom: %v", reported[0])
			}
			if reported[0].Point != hook.PointEntityCreate {
				t.Errorf("reported point = %q", reported[0].Point)
			}
			var perr *hook.PanicError
			if tt.name == "panic" && (!errors.As(reported[0], &perr) || perr.Point != hook.PointEntityCreate || perr.Step != "first") {
				t.Errorf("reported panic = %+v", perr)
			}
		})
	}
}

func TestObserve_OriginalFailureSkipsObservers(t *testing.T) {
	original := hook.Deferred(func(ctx context.Context, args hook.Args) (any, error) {
		return nil, errBoom
	})
	ran := false
	step := hook.Observe("post-create", []hook.Observer{
		hook.NewObserver("o", func(ctx context.Context, v any, args hook.Args) error {
			ran = true
			return nil
		}),
	})

	_, err := hook.Compose(hook.PointEntityCreate, original, step).Call(context.Background()).Await()
	if !errors.Is(err, errBoom) {
		t.Errorf("err = %v, want errBoom", err)
	}
	if ran {
		t.Error("observer ran after the original failed")
	}
}

func TestObserve_ObserversGetCallArgs(t *testing.T) {
	original := hook.Immediate(func(ctx context.Context, args hook.Args) (any, error) {
		return "ok", nil
	})
	var seen hook.Args
	step := hook.Observe("post-create", []hook.Observer{
		hook.NewObserver("o", func(ctx context.Context, v any, args hook.Args) error {
			seen = args
			return nil
		}),
	})

	if _, err := hook.Compose(hook.PointEntityCreate, original, step).Call(context.Background(), "Combatant", 3).Await(); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != "Combatant" || seen[1] != 3 {
		t.Errorf("observer args = %v", seen)
	}
}
