// Package settings holds holonet's module settings: registered keys with a
// scope, a default and localized labels, typed accessors and change
// subscriptions. Features register their keys during setup; values can be
// applied in bulk from the configuration file.
package settings

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"sync"

	"github.com/dshills/holonet/internal/logging"
)

// Scope is where a setting is stored by the host.
type Scope string

// Setting scopes.
const (
	ScopeWorld  Scope = "world"
	ScopeClient Scope = "client"
)

var (
	// ErrUnknownSetting is returned for keys that were never registered.
	ErrUnknownSetting = errors.New("settings: unknown setting")

	// ErrDuplicateSetting is returned when a key is registered twice.
	ErrDuplicateSetting = errors.New("settings: setting already registered")

	// ErrTypeMismatch is returned when a value cannot be converted to the
	// type of the setting's default.
	ErrTypeMismatch = errors.New("settings: type mismatch")
)

// Spec describes a setting.
type Spec struct {
	Key     string
	NameKey string
	HintKey string
	Scope   Scope
	Default any
	Choices []string
	// Config marks settings shown in the host's settings dialog.
	Config bool
}

// ChangeFunc is called after a setting changes.
type ChangeFunc func(key string, old, value any)

// Store is a registry of settings and their current values.
type Store struct {
	mu       sync.RWMutex
	specs    map[string]Spec
	order    []string
	values   map[string]any
	watchers map[string][]ChangeFunc

	log *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		specs:    make(map[string]Spec),
		values:   make(map[string]any),
		watchers: make(map[string][]ChangeFunc),
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("settings")
	return s
}

// Register adds a setting with its default value.
func (s *Store) Register(spec Spec) error {
	if spec.Key == "" {
		return fmt.Errorf("%w: empty key", ErrUnknownSetting)
	}
	if spec.Scope == "" {
		spec.Scope = ScopeWorld
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.specs[spec.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSetting, spec.Key)
	}
	s.specs[spec.Key] = spec
	s.order = append(s.order, spec.Key)
	s.values[spec.Key] = spec.Default
	s.log.Debug("registered %s (%s)", spec.Key, spec.Scope)
	return nil
}

// Registered reports whether key exists.
func (s *Store) Registered(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.specs[key]
	return ok
}

// Specs returns every registered setting in registration order.
func (s *Store) Specs() []Spec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Spec, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.specs[key])
	}
	return out
}

// Get returns the current value of key.
func (s *Store) Get(key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return v, nil
}

// Bool returns key as a bool, false when unknown or not a bool.
func (s *Store) Bool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

// String returns key as a string, empty when unknown or not a string.
func (s *Store) String(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// Int returns key as an int, zero when unknown or not an int.
func (s *Store) Int(key string) int {
	v, _ := s.Get(key)
	i, _ := v.(int)
	return i
}

// Set changes key. The value is converted to the type of the default and,
// when the setting has choices, must be one of them. Watchers run after the
// store is unlocked and only when the value changed.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	spec, ok := s.specs[key]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	converted, err := convert(spec, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	old := s.values[key]
	if reflect.DeepEqual(old, converted) {
		s.mu.Unlock()
		return nil
	}
	s.values[key] = converted
	watchers := append([]ChangeFunc(nil), s.watchers[key]...)
	s.mu.Unlock()

	s.log.Info("%s changed from %v to %v", key, old, converted)
	for _, fn := range watchers {
		fn(key, old, converted)
	}
	return nil
}

// OnChange subscribes fn to changes of key.
func (s *Store) OnChange(key string, fn ChangeFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.specs[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	s.watchers[key] = append(s.watchers[key], fn)
	return nil
}

// Apply sets every value in values, in key order. Failures do not stop the
// remaining keys and are returned joined.
func (s *Store) Apply(values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if err := s.Set(k, values[k]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func convert(spec Spec, value any) (any, error) {
	var out any
	switch spec.Default.(type) {
	case bool:
		switch v := value.(type) {
		case bool:
			out = v
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, mismatch(spec, value)
			}
			out = b
		default:
			return nil, mismatch(spec, value)
		}
	case int:
		switch v := value.(type) {
		case int:
			out = v
		case int64:
			out = int(v)
		case float64:
			if v != float64(int(v)) {
				return nil, mismatch(spec, value)
			}
			out = int(v)
		case string:
			i, err := strconv.Atoi(v)
			if err != nil {
				return nil, mismatch(spec, value)
			}
			out = i
		default:
			return nil, mismatch(spec, value)
		}
	case string:
		switch v := value.(type) {
		case string:
			out = v
		case fmt.Stringer:
			out = v.String()
		case bool, int, int64, float64:
			out = fmt.Sprint(v)
		default:
			return nil, mismatch(spec, value)
		}
	default:
		out = value
	}

	if len(spec.Choices) > 0 {
		str := fmt.Sprint(out)
		for _, c := range spec.Choices {
			if c == str {
				return out, nil
			}
		}
		return nil, fmt.Errorf("%w: %s must be one of %v, got %q", ErrTypeMismatch, spec.Key, spec.Choices, str)
	}
	return out, nil
}

func mismatch(spec Spec, value any) error {
	return fmt.Errorf("%w: %s wants %T, got %T", ErrTypeMismatch, spec.Key, spec.Default, value)
}
