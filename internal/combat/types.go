package combat

// Side tells whose entities produced an event.
type Side int

const (
	SideOwn Side = iota
	SideOpponent
)

// Sides lists both sides in narration order.
var Sides = [2]Side{SideOwn, SideOpponent}

func (s Side) Other() Side {
	if s == SideOwn {
		return SideOpponent
	}
	return SideOwn
}

func (s Side) String() string {
	if s == SideOwn {
		return "own"
	}
	return "opponent"
}

// ParseSide accepts "own"/"player" and "opponent"/"enemy".
func ParseSide(s string) (Side, bool) {
	switch s {
	case "own", "player", "self":
		return SideOwn, true
	case "opponent", "enemy":
		return SideOpponent, true
	}
	return SideOwn, false
}

// EntityID is the host's opaque handle for an item or combatant.
type EntityID string

// Event is one combat effect reported by the host.
type Event struct {
	Source     EntityID
	SourceName string // resolved through the naming provider when empty
	Side       Side
	Kind       ActionKind
	Magnitude  int // filled by the engine
	Critical   bool
	Target     EntityID
	TargetName string

	// Health of the affected combatant around the effect, used as a
	// magnitude fallback when the source carries no attribute.
	HealthBefore int
	HealthAfter  int
}

// IsOwnSide reports whether the narrating player's entity acted.
func (e Event) IsOwnSide() bool { return e.Side == SideOwn }
