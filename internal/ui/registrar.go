// Package ui contributes holonet's toolbar group to the host's scene
// controls. The group is rebuilt by the host on every canvas redraw, and the
// acting user's GM flag is checked on every rebuild.
package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/holonet/internal/event"
	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/logging"
)

// Group layout.
const (
	GroupNameKey  = "holonet.controls.name"
	GroupTitleKey = "holonet.controls.title"
	GroupLayer    = "ControlsLayer"
	GroupIcon     = "fa fa-jedi"
)

// Action names.
const (
	ActionOpeningCrawl    = "opening-crawl"
	ActionNewDatapad      = "new-journal-template"
	ActionShop            = "shop"
	ActionAttackAnimation = "attack-animation"
)

var (
	// ErrUnknownAction is returned when binding a trigger to an action that
	// is not in the toolbar.
	ErrUnknownAction = errors.New("ui: unknown action")

	// ErrUnbound is returned when a tool without a trigger is clicked.
	ErrUnbound = errors.New("ui: action has no trigger")
)

// Trigger runs when a tool is clicked.
type Trigger func(ctx context.Context) error

// ActionSpec describes one toolbar tool. NameKey and TitleKey are
// localization keys.
type ActionSpec struct {
	Action   string
	NameKey  string
	TitleKey string
	Icon     string
	Trigger  Trigger
}

// DefaultActions returns the toolbar tools in display order, unbound.
func DefaultActions() []ActionSpec {
	return []ActionSpec{
		{
			Action:   ActionOpeningCrawl,
			NameKey:  "holonet.controls.opening-crawl.name",
			TitleKey: "holonet.controls.opening-crawl.title",
			Icon:     "fas fa-journal-whills",
		},
		{
			Action:   ActionNewDatapad,
			NameKey:  "holonet.controls.new-journal-template.name",
			TitleKey: "holonet.controls.new-journal-template.title",
			Icon:     "fas fa-book-medical",
		},
		{
			Action:   ActionShop,
			NameKey:  "holonet.shop.html.scene.name",
			TitleKey: "holonet.shop.html.scene.title",
			Icon:     "fas fa-shopping-cart",
		},
		{
			Action:   ActionAttackAnimation,
			NameKey:  "holonet.attack-animation.custom.button-name",
			TitleKey: "holonet.attack-animation.custom.button-title",
			Icon:     "fas fa-bullseye",
		},
	}
}

// Registrar owns the toolbar group.
type Registrar struct {
	users     host.Users
	localizer host.Localizer
	log       *logging.Logger

	mu      sync.RWMutex
	actions []ActionSpec
}

// Option configures a Registrar.
type Option func(*Registrar)

// WithLogger sets the registrar logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registrar) {
		if l != nil {
			r.log = l
		}
	}
}

// WithActions replaces the default tool list.
func WithActions(actions ...ActionSpec) Option {
	return func(r *Registrar) {
		r.actions = append([]ActionSpec(nil), actions...)
	}
}

// NewRegistrar creates a registrar with DefaultActions.
func NewRegistrar(users host.Users, l host.Localizer, opts ...Option) *Registrar {
	r := &Registrar{
		users:     users,
		localizer: l,
		log:       logging.Nop(),
		actions:   DefaultActions(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("ui")
	return r
}

// Bind sets the trigger of action.
func (r *Registrar) Bind(action string, trigger Trigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.actions {
		if r.actions[i].Action == action {
			r.actions[i].Trigger = trigger
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownAction, action)
}

// Actions returns the tool list in display order.
func (r *Registrar) Actions() []ActionSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ActionSpec(nil), r.actions...)
}

// Attach subscribes the registrar to toolbar rebuilds.
func (r *Registrar) Attach(events host.Events) (event.Subscription, error) {
	return events.On(event.TopicControls, r.handle)
}

func (r *Registrar) handle(ctx context.Context, payload any) error {
	controls, ok := payload.(*[]host.ControlGroup)
	if !ok || controls == nil {
		return fmt.Errorf("ui: controls payload is %T", payload)
	}
	r.Contribute(controls)
	return nil
}

// Contribute appends the group to controls when the acting user is a GM.
func (r *Registrar) Contribute(controls *[]host.ControlGroup) {
	user := r.users.CurrentUser()
	if user == nil || !user.IsGM() {
		return
	}
	*controls = append(*controls, r.Group())
}

// Group builds the localized control group.
func (r *Registrar) Group() host.ControlGroup {
	actions := r.Actions()
	tools := make([]host.Tool, 0, len(actions))
	for _, a := range actions {
		tools = append(tools, host.Tool{
			Name:    r.localizer.Localize(a.NameKey),
			Title:   r.localizer.Localize(a.TitleKey),
			Icon:    a.Icon,
			Button:  true,
			OnClick: r.click(a),
		})
	}
	return host.ControlGroup{
		Name:  r.localizer.Localize(GroupNameKey),
		Title: r.localizer.Localize(GroupTitleKey),
		Layer: GroupLayer,
		Icon:  GroupIcon,
		Tools: tools,
	}
}

func (r *Registrar) click(a ActionSpec) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if a.Trigger == nil {
			return fmt.Errorf("%w: %s", ErrUnbound, a.Action)
		}
		r.log.Debug("tool %s clicked", a.Action)
		if err := a.Trigger(ctx); err != nil {
			r.log.Error("tool %s: %v", a.Action, err)
			return err
		}
		return nil
	}
}
