package availability

// GestureState is the selection state machine's current state.
type GestureState string

const (
	GestureIdle     GestureState = "idle"
	GestureDragging GestureState = "dragging"
)

// Gesture turns a serial stream of pointer events over day cells into a
// single mutation against the store per down/up cycle.
//
// The commit rules are asymmetric on purpose and load-bearing:
//   - a simple click (anchor == cursor) toggles a manual block but never
//     touches a feed-owned day;
//   - a drag spanning two or more days overwrites the whole range with the
//     manual tag, including feed-owned days.
//
// Pointer events are delivered serially by the UI layer, so Gesture itself
// is not synchronized; each commit is atomic via the store's own lock.
type Gesture struct {
	store  *Store
	state  GestureState
	anchor Day
	cursor Day
}

// NewGesture returns an idle gesture bound to the store.
func NewGesture(store *Store) *Gesture {
	return &Gesture{store: store, state: GestureIdle}
}

// State returns the current machine state.
func (g *Gesture) State() GestureState {
	return g.state
}

// PointerDown starts a drag anchored at the given day.
func (g *Gesture) PointerDown(day Day) {
	g.state = GestureDragging
	g.anchor = day
	g.cursor = day
}

// PointerEnter moves the drag cursor. Ignored unless dragging; no mutation
// happens until PointerUp.
func (g *Gesture) PointerEnter(day Day) {
	if g.state != GestureDragging {
		return
	}
	g.cursor = day
}

// Highlight returns the live preview range [min(anchor,cursor),
// max(anchor,cursor)] for the rendering layer. ok is false when idle.
func (g *Gesture) Highlight() (start, end Day, ok bool) {
	if g.state != GestureDragging {
		return Day{}, Day{}, false
	}
	return MinDay(g.anchor, g.cursor), MaxDay(g.anchor, g.cursor), true
}

// PointerUp commits exactly one mutation and returns to idle. A PointerUp
// with no prior PointerDown is a no-op.
func (g *Gesture) PointerUp() {
	if g.state != GestureDragging {
		return
	}
	g.state = GestureIdle

	if g.anchor == g.cursor {
		// Simple click: toggle a manual block, leave feed days alone.
		day := g.anchor
		if tag, blocked := g.store.SourceOf(day); blocked {
			if tag.IsManual() {
				g.store.UnsetManual(day)
			}
			return
		}
		g.store.SetManual(day)
		return
	}

	// Drag: overwrite the whole inclusive range, feed days included.
	start := MinDay(g.anchor, g.cursor)
	end := MaxDay(g.anchor, g.cursor)
	g.store.OverwriteWithManual(DaysBetween(start, end))
}
