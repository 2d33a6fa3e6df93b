package feature

import (
	"context"
	"slices"
	"sync"

	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/lifecycle"
	"github.com/dshills/holonet/internal/ui"
)

// NameShop is the name of the shop feature.
const NameShop = "shop"

// FlagShopType holds the kind of a generated shop sheet.
const FlagShopType = "shop-type"

// ShopTypes are the kinds of shop the generator offers.
var ShopTypes = []string{"armor", "cybernetics", "general", "weapons", "droids", "vehicles", "starships"}

// Shop opens the shop generator and keeps track of the shop sheets it
// generated.
type Shop struct {
	base

	mu     sync.Mutex
	sheets []string
}

// NewShop creates the feature.
func NewShop() *Shop {
	return &Shop{base: newBase(NameShop)}
}

// Setup implements lifecycle.Feature.
func (s *Shop) Setup(ctx context.Context, env *lifecycle.Env) error {
	s.bind(env)
	if env.UI == nil {
		return nil
	}
	return env.UI.Bind(ui.ActionShop, s.Open)
}

// Ready implements lifecycle.Activator. It finds the shop sheets already in
// the world. A sheet with a missing or unknown shop type becomes a general
// store.
func (s *Shop) Ready(ctx context.Context, env *lifecycle.Env) error {
	actors, err := env.Host.List(ctx, host.KindActor)
	if err != nil {
		return err
	}

	var sheets []string
	for _, a := range actors {
		if a.Flags["holonet"] != NameShop {
			continue
		}
		sheets = append(sheets, a.ID)
		if kind, _ := a.Flags[FlagShopType].(string); slices.Contains(ShopTypes, kind) {
			continue
		}
		if _, err := env.Host.Update(ctx, a.ID, func(d *host.Document) error {
			d.Flags[FlagShopType] = "general"
			return nil
		}); err != nil {
			s.log.Warn("shop sheet %s: %v", a.Name, err)
		}
	}

	s.mu.Lock()
	s.sheets = sheets
	s.mu.Unlock()
	s.log.Debug("%d shop sheets", len(sheets))
	return nil
}

// Sheets returns the IDs of the shop sheets found on ready.
func (s *Shop) Sheets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sheets...)
}

// Open shows the generator dialog.
func (s *Shop) Open(ctx context.Context) error {
	return s.env.Host.Open(ctx, "shop-creator", map[string]any{
		"title":  s.env.Host.Localize("holonet.shop.html.scene.title"),
		"types":  append([]string(nil), ShopTypes...),
		"sheets": s.Sheets(),
	})
}
