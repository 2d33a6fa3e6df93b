package feature

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/holonet/internal/event"
	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/lifecycle"
)

// NameVehicleRoller is the name of the vehicle roller feature.
const NameVehicleRoller = "vehicle-roller"

// Crew roles.
const (
	RolePilot    = "pilot"
	RoleGunner   = "gunner"
	RoleEngineer = "engineer"
)

// ErrNotVehicle is returned when crew is dropped on something other than a
// vehicle.
var ErrNotVehicle = errors.New("feature: drop target is not a vehicle")

// VehicleRoller lets characters crew vehicles. Vehicle checks then roll
// with the pool of the crew member holding the matching role.
type VehicleRoller struct {
	base
	sub event.Subscription
}

var (
	_ lifecycle.InterceptorProvider = (*VehicleRoller)(nil)
	_ lifecycle.Dependent           = (*VehicleRoller)(nil)
)

// NewVehicleRoller creates the feature.
func NewVehicleRoller() *VehicleRoller {
	return &VehicleRoller{base: newBase(NameVehicleRoller)}
}

// After implements lifecycle.Dependent.
func (v *VehicleRoller) After() []string { return []string{NameSettings} }

// Setup subscribes to actor-sheet drops.
func (v *VehicleRoller) Setup(ctx context.Context, env *lifecycle.Env) error {
	v.bind(env)
	sub, err := env.Host.On(event.TopicDropActorSheetData, func(ctx context.Context, payload any) error {
		drop, ok := payload.(host.DropData)
		if !ok {
			return fmt.Errorf("vehicle-roller: drop payload is %T", payload)
		}
		err := v.RegisterCrew(ctx, drop)
		if errors.Is(err, ErrNotVehicle) {
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	v.sub = sub
	return nil
}

// RoleFor returns the crew role that rolls skill.
func RoleFor(skill string) string {
	switch {
	case strings.HasPrefix(skill, "Gunnery"):
		return RoleGunner
	case strings.HasPrefix(skill, "Mechanics"):
		return RoleEngineer
	default:
		return RolePilot
	}
}

// RegisterCrew assigns the dropped actor to a role on the target vehicle.
func (v *VehicleRoller) RegisterCrew(ctx context.Context, drop host.DropData) error {
	if !v.enabled(KeyVehicleRoller) || drop.Type != string(host.KindActor) {
		return nil
	}
	vehicle, err := v.env.Host.Get(ctx, drop.TargetID)
	if err != nil {
		return err
	}
	if vehicle.Type != host.ActorVehicle {
		return fmt.Errorf("%w: %s", ErrNotVehicle, vehicle.Name)
	}
	member, err := v.env.Host.Get(ctx, drop.ID)
	if err != nil {
		return err
	}
	if member.Type == host.ActorVehicle {
		return fmt.Errorf("vehicle-roller: %s cannot crew %s", member.Name, vehicle.Name)
	}
	role := drop.Role
	if role == "" {
		role = RolePilot
	}

	if _, err := v.env.Host.Update(ctx, vehicle.ID, func(d *host.Document) error {
		crew, _ := d.Flags["crew"].(map[string]any)
		next := make(map[string]any, len(crew)+1)
		for k, val := range crew {
			next[k] = val
		}
		next[role] = member.ID
		if d.Flags == nil {
			d.Flags = make(map[string]any)
		}
		d.Flags["crew"] = next
		return nil
	}); err != nil {
		return err
	}

	return v.env.Host.Post(ctx, &host.Message{
		Speaker: member.Name,
		Content: v.env.Host.Format("holonet.vehicle-roller.crew-registered", member.Name, vehicle.Name, role),
	})
}

// Intercept implements lifecycle.InterceptorProvider.
func (v *VehicleRoller) Intercept(r lifecycle.Registrar) error {
	return r.RegisterFunc(hook.PointRollDialog, NameVehicleRoller, v.intercept)
}

// intercept derives the crew member's pool asynchronously, then hands the
// rewritten request to the rest of the chain.
func (v *VehicleRoller) intercept(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
	return hook.Go(func() (any, error) {
		forward, err := v.substitute(ctx, args)
		if err != nil {
			return nil, err
		}
		return next(ctx, forward).Await()
	})
}

func (v *VehicleRoller) substitute(ctx context.Context, args hook.Args) (hook.Args, error) {
	req, ok := args.At(0).(*host.RollRequest)
	if !ok || req == nil || !v.enabled(KeyVehicleRoller) {
		return args, nil
	}
	vehicle, err := v.env.Host.Get(ctx, req.ActorID)
	if err != nil || vehicle.Type != host.ActorVehicle {
		return args, nil
	}
	crew, _ := vehicle.Flags["crew"].(map[string]any)
	memberID, _ := crew[RoleFor(req.Skill)].(string)
	if memberID == "" {
		return args, nil
	}
	member, err := v.env.Host.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}

	rewritten := *req
	rewritten.Pool = CrewPool(member, req.Skill, req.Pool)
	rewritten.Crew = member.Name
	v.log.Debug("%s rolls %s for %s", member.Name, req.Skill, vehicle.Name)
	return args.With(0, &rewritten), nil
}

// CrewPool builds the positive dice of member's skill on top of the
// negative dice already in pool.
func CrewPool(member *host.Document, skill string, pool host.DicePool) host.DicePool {
	skills, _ := member.Data["skills"].(map[string]any)
	entry, _ := skills[skill].(map[string]any)
	rank, characteristic := asInt(entry["rank"]), asInt(entry["characteristic"])

	hi, lo := rank, characteristic
	if lo > hi {
		hi, lo = lo, hi
	}
	pool.Proficiency = lo
	pool.Ability = hi - lo
	return pool
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Close stops listening for drops.
func (v *VehicleRoller) Close() {
	if v.sub != nil {
		v.sub.Cancel()
	}
}
