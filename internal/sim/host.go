package sim

import (
	"fmt"
	"log/slog"

	"combat_narrator/internal/combat"
	"combat_narrator/internal/config"
	"combat_narrator/internal/narration"
)

// Host plays script steps against a board and feeds the session, in the
// order a game client would report them.
type Host struct {
	board   *Board
	session *narration.Session
	log     *slog.Logger

	effects int
	ended   bool
}

func NewHost(board *Board, session *narration.Session, log *slog.Logger) *Host {
	if log == nil {
		log = slog.Default()
	}
	return &Host{board: board, session: session, log: log}
}

func (h *Host) Ended() bool  { return h.ended }
func (h *Host) Effects() int { return h.effects }

// Apply plays one step. Steps after the encounter ended are ignored.
func (h *Host) Apply(step config.StepConfig) error {
	if h.ended {
		return nil
	}
	switch step.Type {
	case config.StepEffect:
		return h.effect(step)
	case config.StepHealth:
		side, ok := combat.ParseSide(step.Side)
		if !ok {
			return fmt.Errorf("health step: unknown side %q", step.Side)
		}
		h.board.SetHealth(side, step.Health, step.MaxHealth, step.Shield)
		h.session.OnHealthChanged(side)
		h.checkDefeat()
	case config.StepToggle:
		mode := h.session.ToggleMode()
		h.log.Debug("mode toggled", "mode", mode.String())
	case config.StepEnd:
		h.End()
	default:
		return fmt.Errorf("unknown step type %q", step.Type)
	}
	return nil
}

func (h *Host) effect(step config.StepConfig) error {
	id := combat.EntityID(step.Item)
	side, ok := h.board.ItemSide(id)
	if !ok {
		return fmt.Errorf("effect step: unknown item %q", step.Item)
	}
	kind, ok := combat.ParseActionKind(step.Kind)
	if !ok {
		return fmt.Errorf("effect step: unknown kind %q", step.Kind)
	}
	ev, touched := h.board.Apply(combat.Event{
		Source:   id,
		Side:     side,
		Kind:     kind,
		Critical: step.Critical,
		Target:   combat.EntityID(step.Target),
	}, step.Amount)

	h.effects++
	h.session.OnEffect(ev)
	for _, s := range touched {
		h.session.OnHealthChanged(s)
	}
	h.checkDefeat()
	return nil
}

func (h *Host) checkDefeat() {
	if h.board.Defeated() {
		h.log.Info("combatant defeated", "encounter", h.session.EncounterID())
		h.End()
	}
}

// End announces whatever the current wave holds, leaves combat and stops
// the session.
func (h *Host) End() {
	if h.ended {
		return
	}
	h.ended = true
	h.session.FlushWave()
	h.board.Leave()
	h.session.Stop()
}
