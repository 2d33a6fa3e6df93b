package feature

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/lifecycle"
)

// NameRename is the name of the rename feature.
const NameRename = "rename"

var numbered = regexp.MustCompile(`^(.*\S)\s+(\d+)$`)

// splitNumber splits "Stormtrooper 3" into ("Stormtrooper", 3). Names
// without a trailing number return 0.
func splitNumber(name string) (string, int) {
	m := numbered.FindStringSubmatch(name)
	if m == nil {
		return name, 0
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return name, 0
	}
	return m[1], n
}

// Rename numbers combatants that share a name so they can be told apart:
// once a second "Stormtrooper" joins the combat, the unnumbered ones become
// "Stormtrooper 1", "Stormtrooper 2" and so on.
type Rename struct {
	base
}

var (
	_ lifecycle.Activator = (*Rename)(nil)
	_ lifecycle.Dependent = (*Rename)(nil)
)

// NewRename creates the rename feature.
func NewRename() *Rename {
	return &Rename{base: newBase(NameRename)}
}

// After implements lifecycle.Dependent.
func (r *Rename) After() []string { return []string{NameSettings} }

// Ready renumbers combatants already in the combat.
func (r *Rename) Ready(ctx context.Context, env *lifecycle.Env) error {
	if !r.enabled(KeyRename) || !r.gm() {
		return nil
	}
	return r.renumber(ctx, nil)
}

// Observer returns the entity-create observer.
func (r *Rename) Observer() hook.Observer {
	return hook.NewObserver(NameRename, func(ctx context.Context, result any, args hook.Args) error {
		if !r.enabled(KeyRename) || !r.gm() {
			return nil
		}
		created, _ := result.([]*host.Document)
		if len(created) == 0 {
			return nil
		}
		bases := make(map[string]bool, len(created))
		for _, doc := range created {
			b, _ := splitNumber(doc.Name)
			bases[b] = true
		}
		return r.renumber(ctx, bases)
	})
}

// renumber assigns numbers within every name group that has more than one
// combatant. With a nil only every group is renumbered.
func (r *Rename) renumber(ctx context.Context, only map[string]bool) error {
	docs := r.env.Host
	combatants, err := docs.List(ctx, host.KindCombatant)
	if err != nil {
		return err
	}

	groups := make(map[string][]*host.Document)
	var order []string
	for _, c := range combatants {
		b, _ := splitNumber(c.Name)
		if only != nil && !only[b] {
			continue
		}
		if _, seen := groups[b]; !seen {
			order = append(order, b)
		}
		groups[b] = append(groups[b], c)
	}

	for _, b := range order {
		members := groups[b]
		if len(members) < 2 {
			continue
		}
		used := make(map[int]bool)
		for _, m := range members {
			if _, n := splitNumber(m.Name); n > 0 {
				used[n] = true
			}
		}
		next := 1
		for _, m := range members {
			if _, n := splitNumber(m.Name); n > 0 {
				continue
			}
			for used[next] {
				next++
			}
			used[next] = true
			name := fmt.Sprintf("%s %d", b, next)
			if _, err := docs.Update(ctx, m.ID, func(d *host.Document) error {
				d.Name = name
				return nil
			}); err != nil {
				return err
			}
			r.log.Debug("renamed %s to %s", m.Name, name)
		}
	}
	return nil
}
