package feature

import (
	"context"

	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/lifecycle"
	"github.com/dshills/holonet/internal/ui"
)

// NameDatapad is the name of the datapad feature.
const NameDatapad = "datapad"

const datapadTemplate = `<div class="datapad">
<h2>{{title}}</h2>
{{#times lines}}<p class="datapad-line" data-line="{{@index}}"></p>{{/times}}
</div>`

// Datapad creates journal entries styled as in-universe datapads.
type Datapad struct {
	base
	lines int
}

// NewDatapad creates the feature. lines is the number of empty lines in a
// new datapad.
func NewDatapad(lines int) *Datapad {
	if lines <= 0 {
		lines = 3
	}
	return &Datapad{base: newBase(NameDatapad), lines: lines}
}

// Setup implements lifecycle.Feature.
func (d *Datapad) Setup(ctx context.Context, env *lifecycle.Env) error {
	d.bind(env)
	if env.UI == nil {
		return nil
	}
	return env.UI.Bind(ui.ActionNewDatapad, func(ctx context.Context) error {
		_, err := d.Create(ctx)
		return err
	})
}

// Create adds a datapad journal and opens it.
func (d *Datapad) Create(ctx context.Context) (*host.Document, error) {
	name := d.env.Host.Localize("holonet.datapad.default-name")
	content, err := d.env.Host.Render(datapadTemplate, map[string]any{
		"title": name,
		"lines": d.lines,
	})
	if err != nil {
		return nil, err
	}
	doc, err := d.env.Host.Create(ctx, &host.Document{
		Kind:  host.KindJournal,
		Name:  name,
		Data:  map[string]any{"content": content},
		Flags: map[string]any{"holonet": NameDatapad},
	})
	if err != nil {
		return nil, err
	}
	return doc, d.env.Host.Open(ctx, "journal-sheet", doc.ID)
}
