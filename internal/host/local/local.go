// Package local is an in-process host: an event bus, an operation table,
// a Handlebars renderer, a document store and recorders for chat, dialogs,
// media and notifications. The CLI runs sessions against it and tests use
// it as the host double.
package local

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/holonet/internal/event"
	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/logging"
)

// Errors returned by the local host.
var (
	// ErrUnknownOperation is returned when intercepting an operation the host does not have.
	ErrUnknownOperation = errors.New("local: unknown operation")

	// ErrNotFound is returned for unknown document ids.
	ErrNotFound = errors.New("local: document not found")

	// ErrBadArguments is returned when an operation gets arguments it cannot use.
	ErrBadArguments = errors.New("local: bad arguments")

	// ErrDuplicateHelper is returned when a template helper name is taken.
	ErrDuplicateHelper = errors.New("local: helper already registered")
)

var _ host.Host = (*Host)(nil)

// Host is the in-process host.
type Host struct {
	bus *event.Bus
	log *logging.Logger

	opsMu sync.RWMutex
	ops   map[hook.Point]hook.Original

	helpersMu sync.RWMutex
	helpers   map[string]any

	userMu sync.RWMutex
	user   *User

	localizer host.Localizer

	docsMu sync.RWMutex
	docs   map[string]*host.Document
	order  []string

	recMu   sync.Mutex
	chat    []*host.Message
	dialogs []DialogRecord
	media   []host.PlayOptions
	notices []Notice
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host logger.
func WithLogger(l *logging.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l
		}
	}
}

// WithUser sets the acting user.
func WithUser(u *User) Option {
	return func(h *Host) { h.user = u }
}

// WithLocalizer sets the localizer.
func WithLocalizer(l host.Localizer) Option {
	return func(h *Host) { h.localizer = l }
}

// New creates a host with its three built-in operations.
func New(opts ...Option) *Host {
	h := &Host{
		bus:       event.NewBus(),
		log:       logging.Nop(),
		helpers:   make(map[string]any),
		user:      NewUser("gamemaster", true),
		localizer: identity{},
		docs:      make(map[string]*host.Document),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.WithComponent("host")
	h.ops = map[hook.Point]hook.Original{
		hook.PointMessageSend:  hook.Immediate(h.sendMessage),
		hook.PointEntityCreate: hook.Deferred(h.createEmbedded),
		hook.PointRollDialog:   hook.Immediate(h.displayRollDialog),
	}
	return h
}

// Start fires the setup moment, then the ready moment.
func (h *Host) Start(ctx context.Context) error {
	if err := h.bus.Emit(ctx, event.TopicSetup, nil); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if err := h.bus.Emit(ctx, event.TopicReady, nil); err != nil {
		return fmt.Errorf("ready: %w", err)
	}
	return nil
}

// Emit fires an arbitrary topic.
func (h *Host) Emit(ctx context.Context, topic string, payload any) error {
	return h.bus.Emit(ctx, topic, payload)
}

// On implements host.Events.
func (h *Host) On(topic string, fn event.Handler) (event.Subscription, error) {
	return h.bus.On(topic, fn)
}

// Once implements host.Events.
func (h *Host) Once(topic string, fn event.Handler) (event.Subscription, error) {
	return h.bus.Once(topic, fn)
}

// BuildControls asks subscribers for toolbar contributions, the way the
// host does on every canvas redraw.
func (h *Host) BuildControls(ctx context.Context) ([]host.ControlGroup, error) {
	controls := []host.ControlGroup{{
		Name:  "token",
		Title: "Token Controls",
		Layer: "TokenLayer",
		Icon:  "fas fa-user-alt",
	}}
	err := h.bus.Emit(ctx, event.TopicControls, &controls)
	return controls, err
}

// DropActor fires an actor-sheet drop.
func (h *Host) DropActor(ctx context.Context, drop host.DropData) error {
	return h.bus.Emit(ctx, event.TopicDropActorSheetData, drop)
}

// Localize implements host.Localizer.
func (h *Host) Localize(key string) string { return h.localizer.Localize(key) }

// Format implements host.Localizer.
func (h *Host) Format(key string, args ...any) string { return h.localizer.Format(key, args...) }

type identity struct{}

func (identity) Localize(key string) string { return key }

func (identity) Format(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	return fmt.Sprintf("%s %v", key, args)
}
