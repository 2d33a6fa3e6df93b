// Package host defines the surfaces of the host application that holonet
// extends. The host owns every implementation; holonet only subscribes,
// intercepts and registers.
package host

import (
	"context"

	"github.com/dshills/holonet/internal/event"
	"github.com/dshills/holonet/internal/hook"
)

// Events is the host's lifecycle and UI event source.
type Events interface {
	On(topic string, h event.Handler) (event.Subscription, error)
	Once(topic string, h event.Handler) (event.Subscription, error)
}

// Operations is the host's operation-interception facility.
type Operations interface {
	// Intercept replaces the implementation of point with wrap(original).
	// From then on every caller of the operation anywhere in the host goes
	// through the returned Original.
	Intercept(point hook.Point, wrap func(original hook.Original) hook.Original) error

	// Supports reports whether point can be intercepted.
	Supports(point hook.Point) bool
}

// Templates is the host's template-rendering surface.
type Templates interface {
	// RegisterHelper makes helper callable by name from every template.
	RegisterHelper(name string, helper any) error

	// Render evaluates a template with every registered helper.
	Render(source string, data any) (string, error)
}

// User is an account connected to the host.
type User interface {
	ID() string
	Name() string
	IsGM() bool
}

// Users exposes the acting user.
type Users interface {
	CurrentUser() User
}

// Localizer resolves localization keys.
type Localizer interface {
	Localize(key string) string
	Format(key string, args ...any) string
}

// Documents is the host's document store. holonet treats documents as opaque
// records and never persists them itself.
type Documents interface {
	Create(ctx context.Context, doc *Document) (*Document, error)
	Get(ctx context.Context, id string) (*Document, error)
	Update(ctx context.Context, id string, fn func(*Document) error) (*Document, error)
	List(ctx context.Context, kind Kind) ([]*Document, error)
}

// Chat posts plain chat messages. Roll messages go through the
// message-send extension point instead.
type Chat interface {
	Post(ctx context.Context, msg *Message) error
}

// Dialogs opens host dialogs and pickers.
type Dialogs interface {
	Open(ctx context.Context, name string, data any) error
}

// Media plays animations and sounds on the canvas.
type Media interface {
	Play(ctx context.Context, opts PlayOptions) error
}

// Notifier shows transient notifications.
type Notifier interface {
	Notify(level NoticeLevel, msg string)
}

// Host is everything holonet consumes.
type Host interface {
	Events
	Operations
	Templates
	Users
	Localizer
	Documents
	Chat
	Dialogs
	Media
	Notifier
}
