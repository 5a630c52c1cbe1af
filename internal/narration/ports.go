package narration

import (
	"log/slog"

	"combat_narrator/internal/clock"
	"combat_narrator/internal/combat"
)

// NameResolver turns an entity handle into a display name.
type NameResolver interface {
	DisplayName(id combat.EntityID) (string, bool)
}

// AttributeProvider reads one of the fixed numeric attributes of an entity.
type AttributeProvider interface {
	Attribute(id combat.EntityID, kind combat.AttributeKind) (int, bool)
}

// HealthReading is a side's current health as reported by the host.
type HealthReading struct {
	Health    int
	MaxHealth int
	Shield    int
}

// HealthReader reports current health for a side.
type HealthReader interface {
	Health(side combat.Side) (HealthReading, bool)
}

// PhaseOracle confirms the encounter is still in combat.
type PhaseOracle interface {
	InCombat() bool
}

// SpeechSink receives announcements. interrupt preempts in-progress speech.
type SpeechSink interface {
	Speak(text string, interrupt bool)
}

// Utterance is a phrase and how it should be delivered.
type Utterance struct {
	Text      string
	Interrupt bool
}

// Deps are the collaborators a Session talks to. Speech and Scheduler are
// required; the rest degrade to generic phrases or silence when nil.
type Deps struct {
	Speech     SpeechSink
	Scheduler  clock.Scheduler
	Names      NameResolver
	Attributes AttributeProvider
	Health     HealthReader
	Phase      PhaseOracle
	Logger     *slog.Logger
}
