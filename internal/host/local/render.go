package local

import (
	"fmt"
	"reflect"

	"github.com/aymerick/raymond"
)

// RegisterHelper implements host.Templates.
func (h *Host) RegisterHelper(name string, helper any) error {
	if name == "" || helper == nil {
		return fmt.Errorf("%w: helper needs a name and a function", ErrBadArguments)
	}
	if reflect.TypeOf(helper).Kind() != reflect.Func {
		return fmt.Errorf("%w: helper %s is a %T", ErrBadArguments, name, helper)
	}
	h.helpersMu.Lock()
	defer h.helpersMu.Unlock()
	if _, exists := h.helpers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHelper, name)
	}
	h.helpers[name] = helper
	return nil
}

// Helpers returns the registered helper names.
func (h *Host) Helpers() []string {
	h.helpersMu.RLock()
	defer h.helpersMu.RUnlock()
	names := make([]string, 0, len(h.helpers))
	for name := range h.helpers {
		names = append(names, name)
	}
	return names
}

// Render evaluates a Handlebars template against data with every
// registered helper available. A failing helper fails the render.
func (h *Host) Render(source string, data any) (string, error) {
	tpl, err := raymond.Parse(source)
	if err != nil {
		return "", fmt.Errorf("render: parse: %w", err)
	}

	h.helpersMu.RLock()
	helpers := make(map[string]interface{}, len(h.helpers))
	for name, fn := range h.helpers {
		helpers[name] = fn
	}
	h.helpersMu.RUnlock()

	tpl.RegisterHelpers(helpers)
	out, err := tpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return out, nil
}
