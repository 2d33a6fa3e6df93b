package feature

import (
	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/lifecycle"
)

// NameCombatTracker is the name of the feature observing combatant
// creation.
const NameCombatTracker = "combat-tracker"

// CombatTracker observes entity creation with the rename observer first
// and the strain reminder second. Both see the created combatants only
// after the host finished creating them, and the caller gets the host's
// result unchanged.
type CombatTracker struct {
	base
	rename *Rename
	strain *StrainReminder
}

var (
	_ lifecycle.InterceptorProvider = (*CombatTracker)(nil)
	_ lifecycle.Dependent           = (*CombatTracker)(nil)
)

// NewCombatTracker creates the feature.
func NewCombatTracker(rename *Rename, strain *StrainReminder) *CombatTracker {
	return &CombatTracker{base: newBase(NameCombatTracker), rename: rename, strain: strain}
}

// After implements lifecycle.Dependent.
func (c *CombatTracker) After() []string {
	return []string{NameRename, NameStrainReminder}
}

// Intercept implements lifecycle.InterceptorProvider.
func (c *CombatTracker) Intercept(r lifecycle.Registrar) error {
	observers := []hook.Observer{c.rename.Observer(), c.strain.Observer()}
	return r.Register(hook.PointEntityCreate, hook.Observe(NameCombatTracker, observers,
		hook.WithObserverLogger(c.log),
		hook.WithErrorReporter(func(err *hook.ObserverError) {
			if c.env != nil {
				c.env.Host.Notify(host.NoticeError, err.Error())
			}
		}),
	))
}
