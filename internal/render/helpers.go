package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/aymerick/raymond"

	"github.com/dshills/holonet/internal/host"
)

// Helper names.
const (
	HelperIff      = "iff"
	HelperLocalize = "localize"
	HelperTimes    = "times"
)

// Repeat renders body count times with indices 0..count-1 when count is
// truthy, and fallback exactly once otherwise. A non-positive count that is
// still truthy (a negative number) renders nothing.
func Repeat(count any, body func(i int) string, fallback func() string) string {
	if !Truthy(count) {
		return fallback()
	}
	n := Count(count)
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(body(i))
	}
	return b.String()
}

// Count converts a loop count argument to an int. Unusable values count
// as zero.
func Count(v any) int {
	f, ok := coerce(v)
	if !ok {
		return 0
	}
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Ceil(f))
}

// Iff is the iff block helper. An unknown operator panics with an
// *UnknownOperatorError, which raymond turns into an Exec error.
func Iff(a any, operator string, b any, options *raymond.Options) raymond.SafeString {
	ok, err := Compare(a, operator, b)
	if err != nil {
		panic(err)
	}
	if ok {
		return raymond.SafeString(options.Fn())
	}
	return raymond.SafeString(options.Inverse())
}

// Times is the times block helper. Each iteration sees its position as
// @index.
func Times(count any, options *raymond.Options) raymond.SafeString {
	out := Repeat(count,
		func(i int) string {
			frame := options.NewDataFrame()
			frame.Set("index", i)
			return options.FnData(frame)
		},
		options.Inverse,
	)
	return raymond.SafeString(out)
}

// LocalizeHelper returns the localize helper bound to l.
func LocalizeHelper(l host.Localizer) func(key string) string {
	return func(key string) string {
		return l.Localize(key)
	}
}

// Register adds iff, localize and times to the host template surface.
// It stops at the first helper the host refuses.
func Register(templates host.Templates, l host.Localizer) error {
	helpers := []struct {
		name string
		fn   any
	}{
		{HelperIff, Iff},
		{HelperLocalize, LocalizeHelper(l)},
		{HelperTimes, Times},
	}
	for _, h := range helpers {
		if err := templates.RegisterHelper(h.name, h.fn); err != nil {
			return fmt.Errorf("register helper %s: %w", h.name, err)
		}
	}
	return nil
}
