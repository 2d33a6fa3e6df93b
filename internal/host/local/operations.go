package local

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/host"
)

// Intercept implements host.Operations.
func (h *Host) Intercept(point hook.Point, wrap func(hook.Original) hook.Original) error {
	h.opsMu.Lock()
	defer h.opsMu.Unlock()

	original, ok := h.ops[point]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOperation, point)
	}
	wrapped := wrap(original)
	if wrapped == nil {
		return fmt.Errorf("%w: %s wrapped to nil", ErrUnknownOperation, point)
	}
	h.ops[point] = wrapped
	h.log.Debug("operation %s intercepted", point)
	return nil
}

// Supports implements host.Operations.
func (h *Host) Supports(point hook.Point) bool {
	h.opsMu.RLock()
	defer h.opsMu.RUnlock()
	_, ok := h.ops[point]
	return ok
}

func (h *Host) operation(point hook.Point) hook.Original {
	h.opsMu.RLock()
	defer h.opsMu.RUnlock()
	return h.ops[point]
}

// SendMessage turns a finished roll into a chat message.
func (h *Host) SendMessage(ctx context.Context, msg *host.Message) (*host.Message, error) {
	v, err := h.operation(hook.PointMessageSend)(ctx, hook.Args{msg}).Await()
	if err != nil {
		return nil, err
	}
	out, _ := v.(*host.Message)
	return out, nil
}

// CreateCombatants adds combatants to the active combat.
func (h *Host) CreateCombatants(ctx context.Context, specs ...host.CombatantSpec) ([]*host.Document, error) {
	v, err := h.operation(hook.PointEntityCreate)(ctx, hook.Args{string(host.KindCombatant), specs}).Await()
	if err != nil {
		return nil, err
	}
	out, _ := v.([]*host.Document)
	return out, nil
}

// DisplayRollDialog shows the dice pool dialog for req.
func (h *Host) DisplayRollDialog(ctx context.Context, req *host.RollRequest) (*host.RollRequest, error) {
	v, err := h.operation(hook.PointRollDialog)(ctx, hook.Args{req}).Await()
	if err != nil {
		return nil, err
	}
	out, _ := v.(*host.RollRequest)
	return out, nil
}

func (h *Host) sendMessage(ctx context.Context, args hook.Args) (any, error) {
	msg, ok := args.At(0).(*host.Message)
	if !ok || msg == nil {
		return nil, fmt.Errorf("%w: message-send wants *host.Message, got %T", ErrBadArguments, args.At(0))
	}
	h.recMu.Lock()
	h.chat = append(h.chat, msg)
	h.recMu.Unlock()
	return msg, nil
}

func (h *Host) createEmbedded(ctx context.Context, args hook.Args) (any, error) {
	name, _ := args.At(0).(string)
	if name != string(host.KindCombatant) {
		return nil, fmt.Errorf("%w: cannot embed %q in a combat", ErrBadArguments, name)
	}
	specs, ok := args.At(1).([]host.CombatantSpec)
	if !ok {
		return nil, fmt.Errorf("%w: entity-create wants []host.CombatantSpec, got %T", ErrBadArguments, args.At(1))
	}

	created := make([]*host.Document, 0, len(specs))
	for _, spec := range specs {
		actorType := ""
		if actor, err := h.Get(ctx, spec.ActorID); err == nil {
			actorType = actor.Type
		}
		doc, err := h.Create(ctx, &host.Document{
			ID:   uuid.NewString(),
			Kind: host.KindCombatant,
			Type: actorType,
			Name: spec.TokenName,
			Data: map[string]any{"actorId": spec.ActorID},
		})
		if err != nil {
			return nil, err
		}
		created = append(created, doc)
	}
	return created, nil
}

func (h *Host) displayRollDialog(ctx context.Context, args hook.Args) (any, error) {
	req, ok := args.At(0).(*host.RollRequest)
	if !ok || req == nil {
		return nil, fmt.Errorf("%w: roll-dialog-display wants *host.RollRequest, got %T", ErrBadArguments, args.At(0))
	}
	if err := h.Open(ctx, "roll-dialog", req); err != nil {
		return nil, err
	}
	return req, nil
}
