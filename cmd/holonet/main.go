// Package main is the entry point for holonet. It runs a session against
// the in-process host and prints what the features did.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/holonet/internal/app"
	"github.com/dshills/holonet/internal/config"
	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/host/local"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type flags struct {
	configPath string
	scriptsDir string
	language   string
	logLevel   string
	gm         bool
	watch      bool
}

func main() {
	os.Exit(run())
}

func run() int {
	f, set := parseFlags()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if set["scripts"] {
		cfg.ScriptsDir = f.scriptsDir
	}
	if set["lang"] {
		cfg.Language = f.language
	}
	if set["log-level"] {
		cfg.LogLevel = f.logLevel
	}
	if set["gm"] {
		cfg.User.GM = f.gm
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	catalog, err := app.Catalog(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load translations: %v\n", err)
		return 1
	}
	h := local.New(
		local.WithLocalizer(catalog),
		local.WithUser(local.NewUser(cfg.User.Name, cfg.User.GM)),
	)

	application, err := app.New(app.Options{Config: cfg}, h)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	world, err := seed(ctx, h)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := application.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := session(ctx, h, world, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if !f.watch {
		return 0
	}
	if f.configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -watch needs -config")
		return 1
	}
	w, err := config.NewWatcher(f.configPath, func(cfg *config.Config) {
		if err := application.ApplyConfig(cfg); err != nil {
			application.Logger().Warn("reload: %v", err)
		}
	}, config.WithWatcherLogger(application.Logger().WithComponent("config")))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer w.Close()

	fmt.Printf("watching %s, press Ctrl-C to stop\n", w.Path())
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (flags, map[string]bool) {
	var f flags
	var showVersion bool
	var showHelp bool

	flag.StringVar(&f.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&f.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&f.scriptsDir, "scripts", "", "Directory of Lua feature scripts")
	flag.StringVar(&f.language, "lang", "en", "UI language")
	flag.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&f.gm, "gm", true, "Act as a game master")
	flag.BoolVar(&f.watch, "watch", false, "Keep running and apply configuration edits")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "holonet - game table enhancements\n\n")
		fmt.Fprintf(os.Stderr, "Usage: holonet [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  holonet                          Run a session with defaults\n")
		fmt.Fprintf(os.Stderr, "  holonet -gm=false                Run as a player\n")
		fmt.Fprintf(os.Stderr, "  holonet -c holonet.toml -watch   Apply config edits live\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("holonet %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	set := make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set
}

// world holds the documents a session plays with.
type world struct {
	trooper *host.Document
	kira    *host.Document
	ship    *host.Document
	pilot   *host.Document
}

func seed(ctx context.Context, h *local.Host) (*world, error) {
	docs := []*host.Document{
		{Kind: host.KindActor, Type: host.ActorMinion, Name: "Stormtrooper"},
		{Kind: host.KindActor, Type: host.ActorCharacter, Name: "Kira", Data: map[string]any{"strain": 2}},
		{Kind: host.KindActor, Type: host.ActorVehicle, Name: "Ghost"},
		{Kind: host.KindActor, Type: host.ActorCharacter, Name: "Hera", Data: map[string]any{
			"skills": map[string]any{
				"Piloting: Space": map[string]any{"rank": 3, "characteristic": 4},
			},
		}},
	}
	created := make([]*host.Document, 0, len(docs))
	for _, d := range docs {
		doc, err := h.Create(ctx, d)
		if err != nil {
			return nil, err
		}
		created = append(created, doc)
	}
	if _, err := h.Create(ctx, &host.Document{
		Kind: host.KindItem,
		Type: "talent",
		Name: "Grit",
		Data: map[string]any{"actorId": created[1].ID},
	}); err != nil {
		return nil, err
	}
	return &world{trooper: created[0], kira: created[1], ship: created[2], pilot: created[3]}, nil
}

// session drives each intercepted operation once and prints the outcome.
func session(ctx context.Context, h *local.Host, w *world, out io.Writer) error {
	msg, err := h.SendMessage(ctx, &host.Message{
		Speaker: w.kira.Name,
		Content: "Kira fires her blaster.",
		Roll:    &host.Roll{ActorID: w.kira.ID, Skill: "Ranged: Light", Item: "Blaster Pistol", Success: 2},
	})
	if err != nil {
		return fmt.Errorf("message-send: %w", err)
	}
	if msg != nil {
		fmt.Fprintf(out, "chat: %s\n", msg.Content)
	}
	// A script may keep the roll message out of the chat log.
	posted := len(h.ChatLog())
	for _, p := range h.Played() {
		fmt.Fprintf(out, "animation: %s\n", p.Source)
	}

	spec := host.CombatantSpec{ActorID: w.trooper.ID, TokenName: w.trooper.Name}
	if _, err := h.CreateCombatants(ctx, spec, spec, host.CombatantSpec{ActorID: w.kira.ID, TokenName: w.kira.Name}); err != nil {
		return fmt.Errorf("entity-create: %w", err)
	}
	combatants, err := h.List(ctx, host.KindCombatant)
	if err != nil {
		return err
	}
	for _, c := range combatants {
		fmt.Fprintf(out, "combatant: %s\n", c.Name)
	}

	if err := h.DropActor(ctx, host.DropData{TargetID: w.ship.ID, Type: string(host.KindActor), ID: w.pilot.ID, Role: "pilot"}); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	req, err := h.DisplayRollDialog(ctx, &host.RollRequest{ActorID: w.ship.ID, Skill: "Piloting: Space", Pool: host.DicePool{Difficulty: 2}})
	if err != nil {
		return fmt.Errorf("roll-dialog-display: %w", err)
	}
	fmt.Fprintf(out, "roll: %s by %q, %+v\n", req.Skill, req.Crew, req.Pool)

	for _, m := range h.ChatLog()[posted:] {
		fmt.Fprintf(out, "chat: %s\n", m.Content)
	}

	controls, err := h.BuildControls(ctx)
	if err != nil {
		return fmt.Errorf("controls: %w", err)
	}
	for _, g := range controls {
		fmt.Fprintf(out, "toolbar: %s (%d tools)\n", g.Title, len(g.Tools))
		for _, t := range g.Tools {
			fmt.Fprintf(out, "  %s\n", t.Title)
		}
	}

	rendered, err := h.Render(`{{localize "holonet.controls.title"}}:{{#times n}} {{@index}}{{else}} none{{/times}}`, map[string]any{"n": 3})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	fmt.Fprintf(out, "template: %s\n", rendered)

	for _, n := range h.Notices() {
		fmt.Fprintf(out, "notice [%s]: %s\n", n.Level, n.Message)
	}
	return nil
}
