package lifecycle

import (
	"context"
	"fmt"
	"slices"

	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/logging"
	"github.com/dshills/holonet/internal/settings"
	"github.com/dshills/holonet/internal/ui"
)

// Env is what features receive in every phase.
type Env struct {
	Host     host.Host
	Settings *settings.Store
	UI       *ui.Registrar
	Log      *logging.Logger
}

// Logger returns the logger for feature name.
func (e *Env) Logger(name string) *logging.Logger {
	return e.Log.WithField("feature", name)
}

// Feature is a unit of behavior with a setup step.
type Feature interface {
	Name() string
	Setup(ctx context.Context, env *Env) error
}

// Activator is a Feature with work to do once the host is ready.
type Activator interface {
	Ready(ctx context.Context, env *Env) error
}

// Registrar accepts interceptors for extension points.
type Registrar interface {
	Register(point hook.Point, ic hook.Interceptor) error
	RegisterFunc(point hook.Point, name string, fn hook.InterceptFunc) error
}

// InterceptorProvider is a Feature that contributes interceptors.
type InterceptorProvider interface {
	Intercept(r Registrar) error
}

// Finisher is a Feature with work that needs the installed chains.
type Finisher interface {
	Installed(ctx context.Context, env *Env) error
}

// Dependent is a Feature that must run after the named features.
type Dependent interface {
	After() []string
}

// sortFeatures orders features so every Dependent comes after the
// features it names. Features keep their declared order otherwise.
func sortFeatures(features []Feature) ([]Feature, error) {
	index := make(map[string]int, len(features))
	for i, f := range features {
		index[f.Name()] = i
	}

	deps := make([][]int, len(features))
	for i, f := range features {
		d, ok := f.(Dependent)
		if !ok {
			continue
		}
		for _, name := range d.After() {
			j, ok := index[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s runs after %s", ErrUnknownDependency, f.Name(), name)
			}
			deps[i] = append(deps[i], j)
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	mark := make([]int, len(features))
	out := make([]Feature, 0, len(features))

	var visit func(i int, path []string) error
	visit = func(i int, path []string) error {
		switch mark[i] {
		case done:
			return nil
		case visiting:
			cycle := append(slices.Clone(path), features[i].Name())
			return fmt.Errorf("%w: %v", ErrCyclicDependency, cycle)
		}
		mark[i] = visiting
		for _, j := range deps[i] {
			if err := visit(j, append(path, features[i].Name())); err != nil {
				return err
			}
		}
		mark[i] = done
		out = append(out, features[i])
		return nil
	}

	for i := range features {
		if err := visit(i, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}
