package local

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/holonet/internal/event"
	"github.com/dshills/holonet/internal/hook"
	"github.com/dshills/holonet/internal/host"
)

func TestStart_FiresSetupThenReady(t *testing.T) {
	h := New()
	var order []string
	_, _ = h.Once(event.TopicReady, func(ctx context.Context, _ any) error {
		order = append(order, "ready")
		return nil
	})
	_, _ = h.Once(event.TopicSetup, func(ctx context.Context, _ any) error {
		order = append(order, "setup")
		return nil
	})

	if err := h.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if strings.Join(order, ",") != "setup,ready" {
		t.Errorf("order = %v", order)
	}
}

func TestStart_SetupErrorStops(t *testing.T) {
	h := New()
	errSetup := errors.New("setup failed")
	readyRan := false
	_, _ = h.Once(event.TopicSetup, func(ctx context.Context, _ any) error { return errSetup })
	_, _ = h.Once(event.TopicReady, func(ctx context.Context, _ any) error {
		readyRan = true
		return nil
	})

	if err := h.Start(context.Background()); !errors.Is(err, errSetup) {
		t.Errorf("err = %v, want errSetup", err)
	}
	if readyRan {
		t.Error("ready fired after a failed setup")
	}
}

func TestOriginals(t *testing.T) {
	ctx := context.Background()
	h := New()

	msg, err := h.SendMessage(ctx, &host.Message{Content: "hello"})
	if err != nil || msg.Content != "hello" {
		t.Fatalf("SendMessage = %v, %v", msg, err)
	}
	if len(h.ChatLog()) != 1 {
		t.Errorf("chat log has %d entries", len(h.ChatLog()))
	}

	actor, _ := h.Create(ctx, &host.Document{Kind: host.KindActor, Type: host.ActorMinion, Name: "Stormtrooper"})
	created, err := h.CreateCombatants(ctx,
		host.CombatantSpec{ActorID: actor.ID, TokenName: "Stormtrooper"},
		host.CombatantSpec{ActorID: actor.ID, TokenName: "Stormtrooper"})
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 2 || created[0].Type != host.ActorMinion || created[0].ID == created[1].ID {
		t.Errorf("created = %+v", created)
	}

	req, err := h.DisplayRollDialog(ctx, &host.RollRequest{Skill: "Piloting"})
	if err != nil || req.Skill != "Piloting" {
		t.Fatalf("DisplayRollDialog = %v, %v", req, err)
	}
	if d := h.Dialogs(); len(d) != 1 || d[0].Name != "roll-dialog" {
		t.Errorf("dialogs = %v", d)
	}
}

func TestOriginals_BadArguments(t *testing.T) {
	ctx := context.Background()
	h := New()

	_, err := h.operation(hook.PointMessageSend)(ctx, hook.Args{"not a message"}).Await()
	if !errors.Is(err, ErrBadArguments) {
		t.Errorf("message-send err = %v", err)
	}
	_, err = h.operation(hook.PointEntityCreate)(ctx, hook.Args{"Token", nil}).Await()
	if !errors.Is(err, ErrBadArguments) {
		t.Errorf("entity-create err = %v", err)
	}
}

func TestIntercept(t *testing.T) {
	ctx := context.Background()
	h := New()

	var seen string
	err := h.Intercept(hook.PointMessageSend, func(original hook.Original) hook.Original {
		return func(ctx context.Context, args hook.Args) *hook.Pending {
			seen = args[0].(*host.Message).Content
			return original(ctx, args)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := h.SendMessage(ctx, &host.Message{Content: "routed"}); err != nil {
		t.Fatal(err)
	}
	if seen != "routed" {
		t.Errorf("interceptor saw %q", seen)
	}

	if err := h.Intercept("no-such-op", func(o hook.Original) hook.Original { return o }); !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("err = %v, want ErrUnknownOperation", err)
	}
	for _, p := range []hook.Point{hook.PointMessageSend, hook.PointEntityCreate, hook.PointRollDialog} {
		if !h.Supports(p) {
			t.Errorf("Supports(%s) = false", p)
		}
	}
	if h.Supports("no-such-op") {
		t.Error("Supports(no-such-op) = true")
	}
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	h := New()

	doc, err := h.Create(ctx, &host.Document{Kind: host.KindJournal, Name: "Datapad"})
	if err != nil {
		t.Fatal(err)
	}
	if doc.ID == "" {
		t.Fatal("Create did not assign an id")
	}

	doc.Name = "mutated outside"
	got, _ := h.Get(ctx, doc.ID)
	if got.Name != "Datapad" {
		t.Errorf("stored document was mutated through the returned copy")
	}

	_, err = h.Update(ctx, doc.ID, func(d *host.Document) error {
		d.Name = "Renamed"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	errNo := errors.New("no")
	if _, err := h.Update(ctx, doc.ID, func(d *host.Document) error {
		d.Name = "Discarded"
		return errNo
	}); !errors.Is(err, errNo) {
		t.Errorf("err = %v", err)
	}

	got, _ = h.Get(ctx, doc.ID)
	if got.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", got.Name)
	}

	list, _ := h.List(ctx, host.KindJournal)
	if len(list) != 1 {
		t.Errorf("List = %v", list)
	}
	if _, err := h.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBuildControls(t *testing.T) {
	h := New()
	_, _ = h.On(event.TopicControls, func(ctx context.Context, payload any) error {
		controls := payload.(*[]host.ControlGroup)
		*controls = append(*controls, host.ControlGroup{Name: "extra"})
		return nil
	})

	controls, err := h.BuildControls(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(controls) != 2 || controls[1].Name != "extra" {
		t.Errorf("controls = %+v", controls)
	}
}

func TestRender(t *testing.T) {
	h := New()
	if err := h.RegisterHelper("shout", func(s string) string { return strings.ToUpper(s) }); err != nil {
		t.Fatal(err)
	}
	if err := h.RegisterHelper("shout", func(s string) string { return s }); !errors.Is(err, ErrDuplicateHelper) {
		t.Errorf("err = %v, want ErrDuplicateHelper", err)
	}
	if err := h.RegisterHelper("bad", 42); !errors.Is(err, ErrBadArguments) {
		t.Errorf("err = %v, want ErrBadArguments", err)
	}

	out, err := h.Render(`{{shout name}}!`, map[string]any{"name": "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "HELLO!" {
		t.Errorf("Render = %q", out)
	}

	if _, err := h.Render(`{{#if}}`, nil); err == nil {
		t.Error("expected parse error")
	}
}

func TestUsers(t *testing.T) {
	h := New()
	if !h.CurrentUser().IsGM() {
		t.Error("default user should be the GM")
	}
	player := NewUser("player", false)
	h.SetUser(player)
	if h.CurrentUser().IsGM() || h.CurrentUser().Name() != "player" {
		t.Errorf("CurrentUser = %v", h.CurrentUser())
	}
}

func TestRecorders(t *testing.T) {
	ctx := context.Background()
	h := New()
	_ = h.Post(ctx, &host.Message{Content: "reminder"})
	_ = h.Play(ctx, host.PlayOptions{Source: "blaster.webm"})
	h.Notify(host.NoticeWarn, "careful")

	if len(h.ChatLog()) != 1 || len(h.Played()) != 1 || len(h.Notices()) != 1 {
		t.Errorf("records = %d chat, %d media, %d notices", len(h.ChatLog()), len(h.Played()), len(h.Notices()))
	}
	if h.Notices()[0].Level != host.NoticeWarn {
		t.Errorf("notice = %+v", h.Notices()[0])
	}
}
