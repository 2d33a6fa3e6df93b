package feature

import (
	"context"
	"maps"
	"sort"

	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/lifecycle"
	"github.com/dshills/holonet/internal/ui"
)

// NameAttackAnimation is the name of the attack animation feature.
const NameAttackAnimation = "attack-animation"

// Animation is what plays for one weapon skill.
type Animation struct {
	Source string
	Sound  string
}

// DefaultAnimations maps weapon skills to animations.
func DefaultAnimations() map[string]Animation {
	return map[string]Animation{
		"Ranged: Light": {Source: "jb2a.laser_shot.blue", Sound: "sounds/blaster-light.ogg"},
		"Ranged: Heavy": {Source: "jb2a.laser_shot.red", Sound: "sounds/blaster-heavy.ogg"},
		"Gunnery":       {Source: "jb2a.bullet.01.orange", Sound: "sounds/turbolaser.ogg"},
		"Melee":         {Source: "jb2a.melee_generic.slash.01.orange"},
		"Lightsaber":    {Source: "jb2a.melee_generic.slash.01.blue", Sound: "sounds/saber-swing.ogg"},
	}
}

// AttackAnimation plays an animation on the canvas whenever a weapon roll
// is posted to chat. It never changes what gets posted.
type AttackAnimation struct {
	base
	animations map[string]Animation
}

var (
	_ lifecycle.Activator           = (*AttackAnimation)(nil)
	_ lifecycle.InterceptorProvider = (*AttackAnimation)(nil)
)

// NewAttackAnimation creates the feature. A nil map uses DefaultAnimations.
func NewAttackAnimation(animations map[string]Animation) *AttackAnimation {
	if animations == nil {
		animations = DefaultAnimations()
	}
	return &AttackAnimation{base: newBase(NameAttackAnimation), animations: maps.Clone(animations)}
}

// Setup implements lifecycle.Feature.
func (a *AttackAnimation) Setup(ctx context.Context, env *lifecycle.Env) error {
	a.bind(env)
	if env.UI == nil {
		return nil
	}
	return env.UI.Bind(ui.ActionAttackAnimation, a.Configure)
}

// Ready turns the feature off when there is nothing to play.
func (a *AttackAnimation) Ready(ctx context.Context, env *lifecycle.Env) error {
	if !a.enabled(KeyAttackAnimation) {
		return nil
	}
	for _, anim := range a.animations {
		if anim.Source != "" {
			return nil
		}
	}
	env.Host.Notify(host.NoticeWarn, env.Host.Localize("holonet.attack-animation.missing"))
	return env.Settings.Set(KeyAttackAnimation, false)
}

// Intercept implements lifecycle.InterceptorProvider.
func (a *AttackAnimation) Intercept(r lifecycle.Registrar) error {
	return r.RegisterFunc(hook.PointMessageSend, NameAttackAnimation, a.intercept)
}

func (a *AttackAnimation) intercept(ctx context.Context, next hook.Continuation, args hook.Args) *hook.Pending {
	if msg, ok := args.At(0).(*host.Message); ok && a.enabled(KeyAttackAnimation) {
		a.play(ctx, msg)
	}
	return next(ctx, args)
}

// play starts the animation for msg. Failures are logged; the message is
// posted either way.
func (a *AttackAnimation) play(ctx context.Context, msg *host.Message) {
	if msg.Roll == nil || msg.Roll.Item == "" {
		return
	}
	anim, ok := a.animations[msg.Roll.Skill]
	if !ok || anim.Source == "" {
		return
	}
	opts := host.PlayOptions{
		Source: anim.Source,
		Sound:  anim.Sound,
		Origin: msg.Roll.ActorID,
	}
	if err := a.env.Host.Play(ctx, opts); err != nil {
		a.log.Warn("animation for %s: %v", msg.Roll.Item, err)
	}
}

// Configure opens the animation configuration dialog.
func (a *AttackAnimation) Configure(ctx context.Context) error {
	skills := make([]string, 0, len(a.animations))
	for skill := range a.animations {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return a.env.Host.Open(ctx, "attack-animation-config", map[string]any{
		"skills":     skills,
		"animations": maps.Clone(a.animations),
	})
}
