package host

import (
	"context"
	"maps"
)

// Kind is a document type.
type Kind string

// Document kinds.
const (
	KindActor     Kind = "Actor"
	KindCombatant Kind = "Combatant"
	KindJournal   Kind = "JournalEntry"
	KindItem      Kind = "Item"
	KindScene     Kind = "Scene"
)

// Actor types.
const (
	ActorCharacter = "character"
	ActorMinion    = "minion"
	ActorRival     = "rival"
	ActorVehicle   = "vehicle"
)

// Document is a host record.
type Document struct {
	ID    string
	Kind  Kind
	Type  string
	Name  string
	Data  map[string]any
	Flags map[string]any
}

// Clone returns a copy with independent top-level maps.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Data = maps.Clone(d.Data)
	c.Flags = maps.Clone(d.Flags)
	return &c
}

// Int reads an integer field from Data.
func (d *Document) Int(key string) int {
	switch v := d.Data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// String reads a string field from Data.
func (d *Document) String(key string) string {
	s, _ := d.Data[key].(string)
	return s
}

// DicePool is a narrative dice pool.
type DicePool struct {
	Ability     int
	Proficiency int
	Difficulty  int
	Challenge   int
	Boost       int
	Setback     int
	Force       int
}

// Roll describes a finished roll.
type Roll struct {
	ActorID string
	Skill   string
	Item    string
	Pool    DicePool
	Success int
}

// Message is a chat message.
type Message struct {
	Speaker string
	Flavor  string
	Content string
	Roll    *Roll
	Whisper []string
}

// RollRequest is the argument of the roll dialog.
type RollRequest struct {
	ActorID string
	Skill   string
	Title   string
	Pool    DicePool
	Crew    string
}

// CombatantSpec is one entry of an entity-create call.
type CombatantSpec struct {
	ActorID   string
	TokenName string
}

// DropData is the payload of an actor-sheet drop.
type DropData struct {
	TargetID string
	Type     string
	ID       string
	Role     string
}

// ControlGroup is one toolbar group.
type ControlGroup struct {
	Name  string
	Title string
	Layer string
	Icon  string
	Tools []Tool
}

// Tool is a toolbar button.
type Tool struct {
	Name    string
	Title   string
	Icon    string
	Button  bool
	OnClick func(ctx context.Context) error
}

// NoticeLevel is a notification severity.
type NoticeLevel string

// Notification levels.
const (
	NoticeInfo  NoticeLevel = "info"
	NoticeWarn  NoticeLevel = "warning"
	NoticeError NoticeLevel = "error"
)

// PlayOptions describes an animation to play.
type PlayOptions struct {
	Source string
	Sound  string
	Origin string
	Target string
}
