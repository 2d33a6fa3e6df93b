package feature

import (
	"context"
	"strings"

	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/lifecycle"
)

// NameDiceHelper is the name of the dice helper feature.
const NameDiceHelper = "dice-helper"

// diceHelperTemplate is the body of the dice helper journal.
const diceHelperTemplate = `<h1>{{localize "holonet.dice-helper.journal"}}</h1>
<table>
{{#each symbols}}<tr><td>{{name}}</td><td>{{#iff count ">" 0}}{{#times count}}&#9679;{{/times}}{{else}}-{{/iff}}</td></tr>
{{/each}}</table>`

// DiceHelper keeps a journal explaining the narrative dice symbols.
type DiceHelper struct {
	base
	journalID string
}

var (
	_ lifecycle.Activator = (*DiceHelper)(nil)
	_ lifecycle.Finisher  = (*DiceHelper)(nil)
)

// NewDiceHelper creates the feature.
func NewDiceHelper() *DiceHelper {
	return &DiceHelper{base: newBase(NameDiceHelper)}
}

// Ready finds an existing dice helper journal.
func (d *DiceHelper) Ready(ctx context.Context, env *lifecycle.Env) error {
	if !d.enabled(KeyDiceHelper) {
		return nil
	}
	doc, err := d.find(ctx)
	if err != nil {
		return err
	}
	if doc != nil {
		d.journalID = doc.ID
	}
	return nil
}

// Installed creates the journal once the host is fully wired.
func (d *DiceHelper) Installed(ctx context.Context, env *lifecycle.Env) error {
	if !d.enabled(KeyDiceHelper) || !d.gm() || d.journalID != "" {
		return nil
	}
	content, err := env.Host.Render(diceHelperTemplate, map[string]any{
		"symbols": []map[string]any{
			{"name": "Success", "count": 1},
			{"name": "Advantage", "count": 1},
			{"name": "Triumph", "count": 1},
			{"name": "Failure", "count": 1},
			{"name": "Threat", "count": 1},
			{"name": "Despair", "count": 1},
			{"name": "Blank", "count": 0},
		},
	})
	if err != nil {
		return err
	}
	doc, err := env.Host.Create(ctx, &host.Document{
		Kind:  host.KindJournal,
		Name:  env.Host.Localize("holonet.dice-helper.journal"),
		Data:  map[string]any{"content": strings.TrimSpace(content)},
		Flags: map[string]any{"holonet": NameDiceHelper},
	})
	if err != nil {
		return err
	}
	d.journalID = doc.ID
	d.log.Info("created dice helper journal %s", doc.ID)
	return nil
}

// JournalID returns the dice helper journal, empty before it exists.
func (d *DiceHelper) JournalID() string { return d.journalID }

func (d *DiceHelper) find(ctx context.Context) (*host.Document, error) {
	journals, err := d.env.Host.List(ctx, host.KindJournal)
	if err != nil {
		return nil, err
	}
	for _, j := range journals {
		if j.Flags["holonet"] == NameDiceHelper {
			return j, nil
		}
	}
	return nil, nil
}
