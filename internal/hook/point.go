package hook

// Point names a host operation reachable for interception.
type Point string

// Extension points the host exposes.
const (
	// PointMessageSend is the chat message creation of a finished roll.
	PointMessageSend Point = "message-send"

	// PointEntityCreate is the creation of combat entities.
	PointEntityCreate Point = "entity-create"

	// PointRollDialog is the display of the dice pool dialog.
	PointRollDialog Point = "roll-dialog-display"
)

// String implements fmt.Stringer.
func (p Point) String() string { return string(p) }

// Args is the argument list flowing through a chain.
type Args []any

// Clone returns a shallow copy of a.
func (a Args) Clone() Args {
	if a == nil {
		return nil
	}
	out := make(Args, len(a))
	copy(out, a)
	return out
}

// At returns the argument at i, or nil when out of range.
func (a Args) At(i int) any {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// With returns a copy of a where position i holds v.
// The copy is extended with nils when i is past the end.
func (a Args) With(i int, v any) Args {
	n := len(a)
	if i >= n {
		n = i + 1
	}
	out := make(Args, n)
	copy(out, a)
	out[i] = v
	return out
}

// Append returns a copy of a with vs added at the end.
func (a Args) Append(vs ...any) Args {
	out := make(Args, 0, len(a)+len(vs))
	out = append(out, a...)
	return append(out, vs...)
}
