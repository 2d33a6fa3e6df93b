package feature

import (
	"context"

	"github.com/dshills/holonet/internal/lifecycle"
	"github.com/dshills/holonet/internal/logging"
)

// base carries what every feature keeps after setup.
type base struct {
	name string
	env  *lifecycle.Env
	log  *logging.Logger
}

func newBase(name string) base {
	return base{name: name, log: logging.Nop()}
}

// Name implements lifecycle.Feature.
func (b *base) Name() string { return b.name }

func (b *base) bind(env *lifecycle.Env) {
	b.env = env
	if env.Log != nil {
		b.log = env.Logger(b.name)
	}
}

// enabled reports whether the feature's toggle setting is on.
func (b *base) enabled(key string) bool {
	return b.env != nil && b.env.Settings.Bool(key)
}

// gm reports whether the acting user is a GM.
func (b *base) gm() bool {
	if b.env == nil {
		return false
	}
	u := b.env.Host.CurrentUser()
	return u != nil && u.IsGM()
}

// Setup binds the environment. Features with more to do override it.
func (b *base) Setup(ctx context.Context, env *lifecycle.Env) error {
	b.bind(env)
	return nil
}
