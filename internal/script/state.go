// Package script runs Lua feature scripts. Each script file becomes a
// lifecycle feature: it can hook the setup and ready moments and register
// interceptors on extension points through the global holonet table.
//
//	holonet.on_setup(function() ... end)
//	holonet.on_ready(function() ... end)
//	holonet.intercept("message-send", "shout", function(next, args)
//	    args[1].Content = string.upper(args[1].Content)
//	    return next(args)
//	end)
//
// Go values reach Lua as userdata whose exported fields can be read and
// assigned; numbers, strings, booleans, slices and string maps are copied
// into plain Lua values.
package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds setup and ready callbacks.
const DefaultTimeout = 5 * time.Second

var (
	// ErrStateClosed is returned when using a closed script.
	ErrStateClosed = errors.New("script: lua state is closed")

	// ErrBadPoint is returned when a script intercepts an empty point name.
	ErrBadPoint = errors.New("script: bad extension point")
)

// ScriptError is a Lua error raised by a script.
type ScriptError struct {
	Script  string
	Message string
	Err     error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s: %s", e.Script, e.Message)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// state wraps an LState. An LState must only be used by one goroutine at a
// time; calls hold mu for their whole duration. Go functions called back
// from Lua pass a hold through the context so that chain steps re-entering
// the same state while the outer call waits do not lock again.
type state struct {
	name string
	L    *lua.LState

	mu     sync.Mutex
	closed bool
}

type holdKey struct{ s *state }

type hold struct{ active atomic.Bool }

func newState(name string) *state {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, fn := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(fn, lua.LNil)
	}

	s := &state{name: name, L: L}
	registerValueType(L)
	return s
}

// enter acquires the state for a call, unless ctx already carries an active
// hold on it. The returned context carries the hold.
func (s *state) enter(ctx context.Context) (context.Context, func(), error) {
	if h, ok := ctx.Value(holdKey{s}).(*hold); ok && h.active.Load() {
		return ctx, func() {}, nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, nil, ErrStateClosed
	}
	h := &hold{}
	h.active.Store(true)
	ctx = context.WithValue(ctx, holdKey{s}, h)
	s.L.SetContext(ctx)
	return ctx, func() {
		h.active.Store(false)
		s.L.RemoveContext()
		s.mu.Unlock()
	}, nil
}

// call runs fn in protected mode and returns its first result.
func (s *state) call(fn *lua.LFunction, args ...lua.LValue) (lua.LValue, error) {
	err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	if err != nil {
		return lua.LNil, s.unwrap(err)
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret, nil
}

// unwrap returns the Go error a Go callback raised inside Lua, or a
// ScriptError for errors raised by Lua code.
func (s *state) unwrap(err error) error {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		if ud, ok := apiErr.Object.(*lua.LUserData); ok {
			if goErr, ok := ud.Value.(error); ok {
				return goErr
			}
		}
		msg := err.Error()
		if apiErr.Object != nil {
			msg = apiErr.Object.String()
		}
		return &ScriptError{Script: s.name, Message: msg, Err: apiErr}
	}
	return &ScriptError{Script: s.name, Message: err.Error(), Err: err}
}

// raise throws err into Lua so that unwrap can recover it unchanged.
func (s *state) raise(L *lua.LState, err error) int {
	ud := L.NewUserData()
	ud.Value = err
	L.Error(ud, 1)
	return 0
}

func (s *state) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}
