package feature

import (
	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/lifecycle"
)

// Points are the extension points the built-in features intercept.
var Points = []hook.Point{
	hook.PointMessageSend,
	hook.PointEntityCreate,
	hook.PointRollDialog,
}

// ReadyOrder is the order the built-in features activate on ready. It
// differs from the declared order, which is the setup order.
var ReadyOrder = []string{
	NameRename,
	NameAttackAnimation,
	NameOpeningCrawl,
	NameShop,
	NameDiceHelper,
	NameTalentChecker,
}

// Options configures the built-in features.
type Options struct {
	// Settings are initial setting values, usually from the config file.
	Settings map[string]any

	// Animations overrides DefaultAnimations.
	Animations map[string]Animation

	// DatapadLines is the number of empty lines in a new datapad.
	DatapadLines int
}

// Builtins returns the built-in features in declared order.
func Builtins(opts Options) []lifecycle.Feature {
	rename := NewRename()
	strain := NewStrainReminder()
	return []lifecycle.Feature{
		NewSettings(opts.Settings),
		rename,
		NewAttackAnimation(opts.Animations),
		NewDiceHelper(),
		strain,
		NewTalentChecker(),
		NewOpeningCrawl(),
		NewDatapad(opts.DatapadLines),
		NewShop(),
		NewVehicleRoller(),
		NewCombatTracker(rename, strain),
	}
}
