package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/lifecycle"
	"github.com/dshills/holonet/internal/logging"
)

// Feature is a Lua script acting as a lifecycle feature.
type Feature struct {
	name    string
	path    string
	timeout time.Duration
	log     *logging.Logger

	st *state

	mu         sync.Mutex
	env        *lifecycle.Env
	setup      []*lua.LFunction
	ready      []*lua.LFunction
	intercepts []intercept
}

type intercept struct {
	point hook.Point
	name  string
	fn    *lua.LFunction
}

var (
	_ lifecycle.Feature             = (*Feature)(nil)
	_ lifecycle.Activator           = (*Feature)(nil)
	_ lifecycle.InterceptorProvider = (*Feature)(nil)
)

// Option configures a Feature.
type Option func(*Feature)

// WithLogger sets the script logger.
func WithLogger(l *logging.Logger) Option {
	return func(f *Feature) {
		if l != nil {
			f.log = l
		}
	}
}

// WithTimeout bounds each setup and ready callback.
func WithTimeout(d time.Duration) Option {
	return func(f *Feature) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// Load runs the script at path. Top-level code runs immediately and
// normally only registers callbacks.
func Load(ctx context.Context, path string, opts ...Option) (*Feature, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return load(ctx, base, path, string(source), opts...)
}

// LoadString runs source as a script called name.
func LoadString(ctx context.Context, name, source string, opts ...Option) (*Feature, error) {
	return load(ctx, name, "<string>", source, opts...)
}

func load(ctx context.Context, name, path, source string, opts ...Option) (*Feature, error) {
	f := &Feature{
		name:    "script:" + name,
		path:    path,
		timeout: DefaultTimeout,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.WithField("script", name)
	f.st = newState(name)
	f.installAPI()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	_, leave, err := f.st.enter(ctx)
	if err != nil {
		return nil, err
	}
	fn, err := f.st.L.LoadString(source)
	if err == nil {
		_, err = f.st.call(fn)
	} else {
		err = &ScriptError{Script: name, Message: err.Error(), Err: err}
	}
	leave()
	if err != nil {
		f.st.close()
		return nil, err
	}

	f.log.Debug("loaded %s: %d setup, %d ready, %d interceptors", path, len(f.setup), len(f.ready), len(f.intercepts))
	return f, nil
}

// LoadDir loads every .lua file in dir in lexical order. Scripts that fail
// to load are skipped and their errors returned joined.
func LoadDir(ctx context.Context, dir string, opts ...Option) ([]*Feature, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}

	var (
		features []*Feature
		errs     []error
	)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".lua" {
			continue
		}
		f, err := Load(ctx, filepath.Join(dir, e.Name()), opts...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		features = append(features, f)
	}
	return features, errors.Join(errs...)
}

// Name implements lifecycle.Feature.
func (f *Feature) Name() string { return f.name }

// Path returns the script file.
func (f *Feature) Path() string { return f.path }

// Setup implements lifecycle.Feature.
func (f *Feature) Setup(ctx context.Context, env *lifecycle.Env) error {
	f.mu.Lock()
	f.env = env
	fns := append([]*lua.LFunction(nil), f.setup...)
	f.mu.Unlock()
	return f.run(ctx, "setup", fns)
}

// Ready implements lifecycle.Activator.
func (f *Feature) Ready(ctx context.Context, env *lifecycle.Env) error {
	f.mu.Lock()
	fns := append([]*lua.LFunction(nil), f.ready...)
	f.mu.Unlock()
	return f.run(ctx, "ready", fns)
}

func (f *Feature) run(ctx context.Context, phase string, fns []*lua.LFunction) error {
	if len(fns) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	_, leave, err := f.st.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()

	for _, fn := range fns {
		if _, err := f.st.call(fn); err != nil {
			return fmt.Errorf("%s: %w", phase, err)
		}
	}
	return nil
}

// Intercept implements lifecycle.InterceptorProvider.
func (f *Feature) Intercept(r lifecycle.Registrar) error {
	f.mu.Lock()
	intercepts := append([]intercept(nil), f.intercepts...)
	f.mu.Unlock()

	for _, ic := range intercepts {
		if err := r.Register(ic.point, &interceptor{feature: f, spec: ic}); err != nil {
			return err
		}
	}
	return nil
}

// Points returns the extension points the script intercepts.
func (f *Feature) Points() []hook.Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []hook.Point
	for _, ic := range f.intercepts {
		out = append(out, ic.point)
	}
	return out
}

// Close releases the Lua state.
func (f *Feature) Close() {
	f.st.close()
}

func (f *Feature) environment() *lifecycle.Env {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.env
}

// interceptor adapts a Lua function(next, args) to hook.Interceptor. The
// Lua function runs synchronously; next awaits the rest of the chain.
type interceptor struct {
	feature *Feature
	spec    intercept
}

func (ic *interceptor) Name() string {
	return ic.feature.name + "/" + ic.spec.name
}

func (ic *interceptor) Intercept(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
	st := ic.feature.st
	ctx, leave, err := st.enter(ctx)
	if err != nil {
		return hook.Rejected(err)
	}
	defer leave()

	in := newSlots(st.L, args)
	var (
		called     bool
		nextResult any
		pushed     slot
	)
	nextFn := st.L.NewFunction(func(L *lua.LState) int {
		forward := args
		if L.GetTop() >= 1 && L.Get(1) != lua.LNil {
			forward = in.forward(L.Get(1))
		}
		called = true
		v, err := next(ctx, forward).Await()
		if err != nil {
			return st.raise(L, err)
		}
		nextResult = v
		pushed = newSlot(L, v)
		L.Push(pushed.lv)
		return 1
	})

	ret, err := st.call(ic.spec.fn, nextFn, in.table)
	if err != nil {
		return hook.Rejected(err)
	}
	if called && (ret == lua.LNil || pushed.kept(ret)) {
		return hook.Resolved(nextResult)
	}
	return hook.Resolved(toGo(ret))
}

// slot is a Go value and the Lua value handed to the script for it.
type slot struct {
	goValue any
	lv      lua.LValue
	snap    any
}

func newSlot(L *lua.LState, v any) slot {
	s := slot{goValue: v, lv: toLua(L, v)}
	if t, ok := s.lv.(*lua.LTable); ok {
		s.snap = toGo(t)
	}
	return s
}

// kept reports whether lv is still the value the slot handed out, with
// unchanged contents for tables.
func (s slot) kept(lv lua.LValue) bool {
	if lv != s.lv {
		return false
	}
	t, ok := lv.(*lua.LTable)
	return !ok || reflect.DeepEqual(toGo(t), s.snap)
}

func (s slot) value(lv lua.LValue) any {
	if s.kept(lv) {
		return s.goValue
	}
	return toGo(lv)
}

// slots is the args table of one interceptor call. Arguments the script
// leaves untouched are forwarded as the original Go values.
type slots struct {
	table *lua.LTable
	items []slot
}

func newSlots(L *lua.LState, args hook.Args) *slots {
	s := &slots{table: L.NewTable(), items: make([]slot, len(args))}
	for i, a := range args {
		s.items[i] = newSlot(L, a)
		s.table.RawSetInt(i+1, s.items[i].lv)
	}
	return s
}

// forward turns the value passed to next back into arguments. A non-table
// value becomes the only argument.
func (s *slots) forward(lv lua.LValue) hook.Args {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return hook.Args{s.at(0, lv)}
	}
	n := t.Len()
	out := make(hook.Args, n)
	for i := 1; i <= n; i++ {
		out[i-1] = s.at(i-1, t.RawGetInt(i))
	}
	return out
}

func (s *slots) at(i int, lv lua.LValue) any {
	if i < len(s.items) {
		return s.items[i].value(lv)
	}
	return toGo(lv)
}

// installAPI creates the holonet global.
func (f *Feature) installAPI() {
	L := f.st.L
	api := L.NewTable()
	L.SetFuncs(api, map[string]lua.LGFunction{
		"on_setup": func(L *lua.LState) int {
			fn := L.CheckFunction(1)
			f.mu.Lock()
			f.setup = append(f.setup, fn)
			f.mu.Unlock()
			return 0
		},
		"on_ready": func(L *lua.LState) int {
			fn := L.CheckFunction(1)
			f.mu.Lock()
			f.ready = append(f.ready, fn)
			f.mu.Unlock()
			return 0
		},
		"intercept": func(L *lua.LState) int {
			point := L.CheckString(1)
			name := L.CheckString(2)
			fn := L.CheckFunction(3)
			if point == "" {
				return f.st.raise(L, ErrBadPoint)
			}
			f.mu.Lock()
			f.intercepts = append(f.intercepts, intercept{point: hook.Point(point), name: name, fn: fn})
			f.mu.Unlock()
			return 0
		},
		"setting": func(L *lua.LState) int {
			key := L.CheckString(1)
			env := f.environment()
			if env == nil || env.Settings == nil {
				L.Push(lua.LNil)
				return 1
			}
			v, err := env.Settings.Get(key)
			if err != nil {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(toLua(L, v))
			return 1
		},
		"localize": func(L *lua.LState) int {
			key := L.CheckString(1)
			if env := f.environment(); env != nil && env.Host != nil {
				L.Push(lua.LString(env.Host.Localize(key)))
				return 1
			}
			L.Push(lua.LString(key))
			return 1
		},
		"notify": func(L *lua.LState) int {
			msg := L.CheckString(1)
			level := host.NoticeLevel(L.OptString(2, string(host.NoticeInfo)))
			if env := f.environment(); env != nil && env.Host != nil {
				env.Host.Notify(level, msg)
			}
			return 0
		},
		"log": func(L *lua.LState) int {
			f.log.Info("%s", L.CheckString(1))
			return 0
		},
		"warn": func(L *lua.LState) int {
			f.log.Warn("%s", L.CheckString(1))
			return 0
		},
	})
	L.SetGlobal("holonet", api)
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		f.log.Info("%s", strings.Join(parts, "\t"))
		return 0
	}))
}
