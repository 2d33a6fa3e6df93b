package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Topics fired by the host.
const (
	// TopicSetup fires once, before the world is loaded.
	TopicSetup = "setup"

	// TopicReady fires once, after the world is fully loaded.
	TopicReady = "ready"

	// TopicControls fires on every toolbar rebuild; the payload is a
	// pointer to the control group slice being assembled.
	TopicControls = "get-scene-control-buttons"

	// TopicDropActorSheetData fires when something is dropped on an actor sheet.
	TopicDropActorSheetData = "drop-actor-sheet-data"
)

// Handler handles an emitted payload.
type Handler func(ctx context.Context, payload any) error

// Subscription is a handle on a registered handler.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// Topic returns the subscribed topic.
	Topic() string

	// IsActive reports whether the handler still receives events.
	IsActive() bool

	// Cancel stops delivery permanently.
	Cancel()
}

type subscription struct {
	id        string
	topic     string
	handler   Handler
	once      bool
	cancelled atomic.Bool
}

func (s *subscription) ID() string     { return s.id }
func (s *subscription) Topic() string  { return s.topic }
func (s *subscription) IsActive() bool { return !s.cancelled.Load() }
func (s *subscription) Cancel()        { s.cancelled.Store(true) }

// Bus delivers events to subscribers synchronously.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]*subscription

	emitted   atomic.Uint64
	delivered atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]*subscription)}
}

// On subscribes h to every emission of topic.
func (b *Bus) On(topic string, h Handler) (Subscription, error) {
	return b.subscribe(topic, h, false)
}

// Once subscribes h to the next emission of topic only.
func (b *Bus) Once(topic string, h Handler) (Subscription, error) {
	return b.subscribe(topic, h, true)
}

func (b *Bus) subscribe(topic string, h Handler, once bool) (Subscription, error) {
	if topic == "" {
		return nil, ErrInvalidTopic
	}
	if h == nil {
		return nil, ErrNilHandler
	}

	sub := &subscription{
		id:      uuid.NewString(),
		topic:   topic,
		handler: h,
		once:    once,
	}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()
	return sub, nil
}

// Emit delivers payload to every active subscriber of topic in
// subscription order. Handler failures are collected and returned joined.
func (b *Bus) Emit(ctx context.Context, topic string, payload any) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	b.emitted.Add(1)

	b.mu.RLock()
	subs := make([]*subscription, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if sub.once {
			if !sub.cancelled.CompareAndSwap(false, true) {
				continue
			}
		} else if !sub.IsActive() {
			continue
		}
		b.delivered.Add(1)
		if err := deliver(ctx, sub, payload); err != nil {
			errs = append(errs, err)
		}
	}

	b.prune(topic)
	return errors.Join(errs...)
}

func deliver(ctx context.Context, sub *subscription, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{
				SubscriptionID: sub.id,
				Topic:          sub.topic,
				Err:            fmt.Errorf("%w: %v", ErrHandlerPanic, r),
			}
		}
	}()
	if herr := sub.handler(ctx, payload); herr != nil {
		return &HandlerError{SubscriptionID: sub.id, Topic: sub.topic, Err: herr}
	}
	return nil
}

// prune drops cancelled subscriptions of topic.
func (b *Bus) prune(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	live := b.subs[topic][:0]
	for _, s := range b.subs[topic] {
		if s.IsActive() {
			live = append(live, s)
		}
	}
	if len(live) == 0 {
		delete(b.subs, topic)
		return
	}
	b.subs[topic] = live
}

// Count returns the number of active subscriptions on topic.
func (b *Bus) Count(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, s := range b.subs[topic] {
		if s.IsActive() {
			n++
		}
	}
	return n
}

// Stats returns emitted and delivered counters.
func (b *Bus) Stats() (emitted, delivered uint64) {
	return b.emitted.Load(), b.delivered.Load()
}
