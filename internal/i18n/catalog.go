// Package i18n loads language files into a message catalog.
//
// Language files are nested YAML maps. Nested keys are joined with dots, so
//
//	holonet:
//	  controls:
//	    title: Holonet Enhancements
//
// is looked up as "holonet.controls.title". Unknown keys localize to
// themselves, which is what the host does for missing translations.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed lang/*.yaml
var bundled embed.FS

// ErrEmptyKey is returned when a language file has an empty key.
var ErrEmptyKey = errors.New("i18n: empty key")

// Catalog resolves localization keys for one language. Keys the language
// does not define resolve to their English text.
type Catalog struct {
	tag     language.Tag
	printer *message.Printer
	keys    map[string]struct{}
}

// Load builds a catalog for tag. english is always loaded first; sources for
// tag override it key by key.
func Load(tag language.Tag, english []byte, sources ...[]byte) (*Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	keys := make(map[string]struct{})

	add := func(t language.Tag, data []byte) error {
		flat, err := parse(data)
		if err != nil {
			return err
		}
		for k, v := range flat {
			if err := b.SetString(t, k, v); err != nil {
				return fmt.Errorf("i18n: set %q: %w", k, err)
			}
			keys[k] = struct{}{}
		}
		return nil
	}

	if err := add(language.English, english); err != nil {
		return nil, err
	}
	if tag != language.English {
		// Seed tag with English so lookups never depend on parent matching.
		if err := add(tag, english); err != nil {
			return nil, err
		}
	}
	for _, src := range sources {
		if err := add(tag, src); err != nil {
			return nil, err
		}
	}

	return &Catalog{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b)),
		keys:    keys,
	}, nil
}

// Bundled loads the catalog shipped with the binary for lang, for example
// "en" or "de-DE". Languages without a bundled file use English.
func Bundled(lang string) (*Catalog, error) {
	tag := language.English
	if lang != "" {
		parsed, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("i18n: language %q: %w", lang, err)
		}
		tag = parsed
	}

	english, err := bundled.ReadFile("lang/en.yaml")
	if err != nil {
		return nil, err
	}

	base, _ := tag.Base()
	var extra [][]byte
	if base.String() != "en" {
		if data, err := bundled.ReadFile("lang/" + base.String() + ".yaml"); err == nil {
			extra = append(extra, data)
		}
	}
	return Load(tag, english, extra...)
}

// LoadFile adds a language file from disk on top of the bundled catalog.
func LoadFile(lang, path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("i18n: %w", err)
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("i18n: language %q: %w", lang, err)
	}
	english, err := bundled.ReadFile("lang/en.yaml")
	if err != nil {
		return nil, err
	}
	return Load(tag, english, data)
}

// Tag returns the catalog language.
func (c *Catalog) Tag() language.Tag { return c.tag }

// Has reports whether key is defined.
func (c *Catalog) Has(key string) bool {
	_, ok := c.keys[key]
	return ok
}

// Localize returns the translation of key, or key itself when undefined.
func (c *Catalog) Localize(key string) string {
	if !c.Has(key) {
		return key
	}
	return c.printer.Sprintf(key)
}

// Format localizes key and formats args into it with fmt verbs.
func (c *Catalog) Format(key string, args ...any) string {
	if !c.Has(key) {
		return key
	}
	return c.printer.Sprintf(key, args...)
}

// Keys returns all defined keys, sorted.
func (c *Catalog) Keys() []string {
	out := make([]string, 0, len(c.keys))
	for k := range c.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func parse(data []byte) (map[string]string, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("i18n: parse: %w", err)
	}
	flat := make(map[string]string)
	if err := flatten("", tree, flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		if k == "" {
			return ErrEmptyKey
		}
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return nil
}
