package hook_test

import (
	"errors"
	"testing"

	"github.com/dshills/holonet/internal/hook"
)

func TestPending_Resolved(t *testing.T) {
	p := hook.Resolved(42)
	if !p.Settled() {
		t.Fatal("Resolved should be settled")
	}
	v, err := p.Await()
	if v != 42 || err != nil {
		t.Errorf("Await = %v, %v", v, err)
	}
	if p.String() != "resolved(42)" {
		t.Errorf("String = %q", p.String())
	}
}

func TestPending_Rejected(t *testing.T) {
	p := hook.Rejected(errBoom)
	if _, err := p.Await(); err != errBoom {
		t.Errorf("err = %v", err)
	}
}

func TestPending_Go(t *testing.T) {
	release := make(chan struct{})
	p := hook.Go(func() (any, error) {
		<-release
		return "late", nil
	})
	if p.Settled() {
		t.Fatal("settled before fn returned")
	}
	close(release)
	<-p.Done()
	if v, _ := p.Await(); v != "late" {
		t.Errorf("v = %v", v)
	}
}

func TestPending_GoPanic(t *testing.T) {
	_, err := hook.Go(func() (any, error) { panic("oops") }).Await()
	var perr *hook.PanicError
	if !errors.As(err, &perr) {
		t.Errorf("err = %v, want *PanicError", err)
	}
}

func TestThen(t *testing.T) {
	p := hook.Then(hook.Resolved(2), func(v any) (any, error) { return v.(int) + 1, nil })
	if !p.Settled() {
		t.Error("Then of a settled value should settle inline")
	}
	if v, _ := p.Await(); v != 3 {
		t.Errorf("v = %v, want 3", v)
	}

	called := false
	_, err := hook.Then(hook.Rejected(errBoom), func(v any) (any, error) {
		called = true
		return nil, nil
	}).Await()
	if err != errBoom || called {
		t.Errorf("rejection not passed through: err=%v called=%v", err, called)
	}
}
