package feature

import (
	"context"

	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/lifecycle"
)

// NameTalentChecker is the name of the talent checker feature.
const NameTalentChecker = "talent-checker"

// TalentChecker warns the GM about characters owning talents without an
// activation type.
type TalentChecker struct {
	base
}

var _ lifecycle.Activator = (*TalentChecker)(nil)

// NewTalentChecker creates the feature.
func NewTalentChecker() *TalentChecker {
	return &TalentChecker{base: newBase(NameTalentChecker)}
}

// Ready implements lifecycle.Activator.
func (t *TalentChecker) Ready(ctx context.Context, env *lifecycle.Env) error {
	if !t.enabled(KeyTalentChecker) || !t.gm() {
		return nil
	}
	missing, err := t.Check(ctx)
	if err != nil {
		return err
	}
	for _, m := range missing {
		env.Host.Notify(host.NoticeWarn, env.Host.Format("holonet.talent-checker.missing", m.Actor, m.Count))
	}
	return nil
}

// MissingActivation is one character with incomplete talents.
type MissingActivation struct {
	Actor string
	Count int
}

// Check lists characters whose talents lack an activation type, in actor
// order.
func (t *TalentChecker) Check(ctx context.Context) ([]MissingActivation, error) {
	actors, err := t.env.Host.List(ctx, host.KindActor)
	if err != nil {
		return nil, err
	}
	items, err := t.env.Host.List(ctx, host.KindItem)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, item := range items {
		if item.Type == "talent" && item.String("activation") == "" {
			counts[item.String("actorId")]++
		}
	}

	var out []MissingActivation
	for _, a := range actors {
		if a.Type != host.ActorCharacter {
			continue
		}
		if n := counts[a.ID]; n > 0 {
			out = append(out, MissingActivation{Actor: a.Name, Count: n})
		}
	}
	return out, nil
}
