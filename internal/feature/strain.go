package feature

import (
	"context"
	"errors"

	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/lifecycle"
)

// NameStrainReminder is the name of the strain reminder feature.
const NameStrainReminder = "strain-reminder"

// StrainReminder posts a chat reminder for every character that joins a
// combat while carrying strain.
type StrainReminder struct {
	base
}

var _ lifecycle.Dependent = (*StrainReminder)(nil)

// NewStrainReminder creates the strain reminder feature.
func NewStrainReminder() *StrainReminder {
	return &StrainReminder{base: newBase(NameStrainReminder)}
}

// After implements lifecycle.Dependent.
func (s *StrainReminder) After() []string { return []string{NameSettings} }

// Observer returns the entity-create observer.
func (s *StrainReminder) Observer() hook.Observer {
	return hook.NewObserver(NameStrainReminder, func(ctx context.Context, result any, args hook.Args) error {
		if !s.enabled(KeyStrainReminder) {
			return nil
		}
		created, _ := result.([]*host.Document)

		var errs []error
		for _, c := range created {
			actor, err := s.env.Host.Get(ctx, c.String("actorId"))
			if err != nil {
				continue
			}
			if actor.Type != host.ActorCharacter {
				continue
			}
			strain := actor.Int("strain")
			if strain <= 0 {
				continue
			}
			msg := &host.Message{
				Speaker: actor.Name,
				Content: s.env.Host.Format("holonet.strain-reminder.message", actor.Name, strain),
			}
			if err := s.env.Host.Post(ctx, msg); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
