package hook

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Pending is the result of a chain step that may not be available yet.
// It settles exactly once, with either a value or an error.
type Pending struct {
	done chan struct{}

	mu        sync.Mutex
	settled   bool
	value     any
	err       error
	callbacks []func(any, error)
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Resolved returns a Pending already settled with v.
func Resolved(v any) *Pending {
	p := newPending()
	p.settle(v, nil)
	return p
}

// Rejected returns a Pending already settled with err.
func Rejected(err error) *Pending {
	p := newPending()
	p.settle(nil, err)
	return p
}

// Go runs fn on a new goroutine and returns its deferred result.
// A panic in fn rejects the Pending with a *PanicError.
func Go(fn func() (any, error)) *Pending {
	p := newPending()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.settle(nil, &PanicError{Step: "deferred", Value: r, Stack: string(debug.Stack())})
			}
		}()
		v, err := fn()
		p.settle(v, err)
	}()
	return p
}

// Await blocks until p settles and returns its outcome.
func (p *Pending) Await() (any, error) {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.err
}

// Done is closed once p settles.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Settled reports whether the outcome is already available.
func (p *Pending) Settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled
}

// settle records the outcome. Later calls are ignored.
func (p *Pending) settle(v any, err error) {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return
	}
	p.settled = true
	p.value, p.err = v, err
	callbacks := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(v, err)
	}
}

// whenSettled runs fn with the outcome: inline when p already settled,
// otherwise on the goroutine that settles it.
func (p *Pending) whenSettled(fn func(any, error)) {
	p.mu.Lock()
	if !p.settled {
		p.callbacks = append(p.callbacks, fn)
		p.mu.Unlock()
		return
	}
	v, err := p.value, p.err
	p.mu.Unlock()
	fn(v, err)
}

// Then returns a Pending settled with fn applied to p's value.
// A rejection of p skips fn and is passed through unchanged.
// fn runs without an extra goroutine hop, so a chain of already
// settled steps runs back to back.
func Then(p *Pending, fn func(any) (any, error)) *Pending {
	out := newPending()
	p.whenSettled(func(v any, err error) {
		if err != nil {
			out.settle(nil, err)
			return
		}
		defer func() {
			if r := recover(); r != nil {
				out.settle(nil, &PanicError{Step: "then", Value: r, Stack: string(debug.Stack())})
			}
		}()
		out.settle(fn(v))
	})
	return out
}

// String describes the state for debugging.
func (p *Pending) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case !p.settled:
		return "pending"
	case p.err != nil:
		return fmt.Sprintf("rejected(%v)", p.err)
	default:
		return fmt.Sprintf("resolved(%v)", p.value)
	}
}
