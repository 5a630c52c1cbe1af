package narration

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"combat_narrator/internal/clock"
	"combat_narrator/internal/combat"
)

// Session narrates one encounter at a time. All methods must be called
// from the host's update loop, the same loop the scheduler runs on.
type Session struct {
	speech   SpeechSink
	phase    PhaseOracle
	sched    clock.Scheduler
	log      *slog.Logger
	settings Settings

	classifier *Classifier
	ledger     *Ledger
	monitor    *Monitor
	wave       *waveAggregator

	active    bool
	mode      Mode
	dealt     int
	taken     int
	label     string
	encounter string
}

// NewSession wires a session to its collaborators. The mode in settings is
// the starting preference; ToggleMode changes it for later encounters too.
func NewSession(deps Deps, settings Settings) (*Session, error) {
	if deps.Speech == nil {
		return nil, errors.New("narration: speech sink is required")
	}
	if deps.Scheduler == nil {
		return nil, errors.New("narration: scheduler is required")
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	settings = settings.withDefaults()
	return &Session{
		speech:     deps.Speech,
		phase:      deps.Phase,
		sched:      deps.Scheduler,
		log:        log,
		settings:   settings,
		classifier: NewClassifier(deps.Names, deps.Attributes),
		ledger:     NewLedger(),
		monitor:    NewMonitor(deps.Health, deps.Speech, deps.Scheduler, settings, log),
		wave:       newWaveAggregator(),
		mode:       settings.Mode,
		label:      DefaultOpponentLabel,
	}, nil
}

// guard turns a panic inside an entry point into a logged no-op.
func (s *Session) guard(op string) {
	if r := recover(); r != nil {
		s.log.Error("narration fault", "op", op, "encounter", s.encounter, "panic", fmt.Sprint(r))
	}
}

// Start begins a new encounter, stopping any encounter still running.
func (s *Session) Start(opponentLabel string) {
	defer s.guard("start")
	if s.active {
		s.log.Warn("start while active, stopping previous encounter", "encounter", s.encounter)
		s.Stop()
	}
	if opponentLabel == "" {
		opponentLabel = DefaultOpponentLabel
	}
	s.label = opponentLabel
	s.encounter = uuid.NewString()
	s.dealt, s.taken = 0, 0
	s.wave.cancel()
	s.wave.reset()
	s.classifier.SetOpponentLabel(opponentLabel)
	s.ledger.Reset(opponentLabel)
	s.monitor.Start(opponentLabel)
	s.active = true
	if s.mode == ModeBatched {
		s.monitor.StartPeriodic()
	}
	s.log.Info("encounter started", "encounter", s.encounter, "opponent", opponentLabel, "mode", s.mode.String())
}

// Stop ends the encounter. Pending timers are cancelled and unflushed wave
// data is dropped; totals and the recap stay readable until the next Start.
func (s *Session) Stop() {
	defer s.guard("stop")
	if !s.active {
		return
	}
	s.wave.cancel()
	s.wave.reset()
	s.monitor.StopPeriodic()
	s.active = false
	s.log.Info("encounter stopped", "encounter", s.encounter, "dealt", s.dealt, "taken", s.taken)
}

// OnEffect handles one combat event.
func (s *Session) OnEffect(ev combat.Event) {
	defer s.guard("effect")
	if !s.active {
		return
	}
	if s.phase != nil && !s.phase.InCombat() {
		s.log.Debug("dropping out-of-phase event", "encounter", s.encounter, "kind", ev.Kind.String())
		return
	}

	name := s.classifier.SourceName(ev)
	ev.SourceName = name
	s.ledger.RecordTrigger(name, ev.Side)
	if !IsNarratable(ev.Kind) {
		return
	}

	ev.Magnitude = s.classifier.ComputeMagnitude(ev)
	s.ledger.RecordDetail(name, ev.Side, ev.Kind, ev.Magnitude, ev.Critical)
	if ev.Kind == combat.ActionDamage && ev.Magnitude > 0 {
		if ev.Side == combat.SideOwn {
			s.dealt += ev.Magnitude
		} else {
			s.taken += ev.Magnitude
		}
	}

	switch s.mode {
	case ModeIndividual:
		if u, ok := s.classifier.FormatImmediate(ev); ok {
			s.speech.Speak(u.Text, u.Interrupt)
		}
	default:
		target, hasTarget := s.classifier.TargetName(ev)
		s.wave.add(ev, name, target, hasTarget)
		s.armWave()
	}
}

// armWave restarts the quiet-period timer measured from the latest event.
func (s *Session) armWave() {
	s.wave.cancel()
	s.wave.timer = s.sched.AfterFunc(s.settings.WaveWindow, s.onWaveTimer)
}

func (s *Session) onWaveTimer() {
	s.wave.timer = nil
	s.FlushWave()
}

// FlushWave speaks everything buffered for both sides as one announcement
// and clears the buckets.
func (s *Session) FlushWave() {
	defer s.guard("flush")
	s.wave.cancel()
	text := s.wave.take(s.label)
	if text == "" {
		return
	}
	s.speech.Speak(text, false)
}

// OnHealthChanged re-reads a side's health and raises threshold alerts.
func (s *Session) OnHealthChanged(side combat.Side) {
	defer s.guard("health")
	if !s.active {
		return
	}
	s.monitor.Refresh(side)
	s.monitor.CheckThresholds()
}

// ToggleMode switches between batched and individual narration and returns
// the new mode. Only later events are affected.
func (s *Session) ToggleMode() Mode {
	defer s.guard("toggle")
	if s.mode == ModeBatched {
		s.mode = ModeIndividual
		if s.active {
			s.monitor.StopPeriodic()
			s.FlushWave()
		}
	} else {
		s.mode = ModeBatched
		if s.active {
			s.monitor.StartPeriodic()
		}
	}
	s.log.Info("narration mode changed", "encounter", s.encounter, "mode", s.mode.String())
	return s.mode
}

func (s *Session) Active() bool        { return s.active }
func (s *Session) Mode() Mode          { return s.mode }
func (s *Session) EncounterID() string { return s.encounter }
func (s *Session) OpponentLabel() string {
	return s.label
}

// PendingWave reports whether batched events are waiting for a flush.
func (s *Session) PendingWave() bool { return s.wave.hasActivity() }

// Snapshot exposes the monitor's view of a side.
func (s *Session) Snapshot(side combat.Side) HealthSnapshot {
	return s.monitor.Snapshot(side)
}

// Stats exposes one ledger entry.
func (s *Session) Stats(name string, side combat.Side) (EntityStats, bool) {
	return s.ledger.Stats(name, side)
}

// Totals returns raw damage dealt and taken this encounter.
func (s *Session) Totals() (dealt, taken int) { return s.dealt, s.taken }

func (s *Session) DamageDealt() string { return humanize.Comma(int64(s.dealt)) }
func (s *Session) DamageTaken() string { return humanize.Comma(int64(s.taken)) }

// HealthText reports one side's current health on demand.
func (s *Session) HealthText(side combat.Side) string {
	return s.monitor.HealthText(side)
}

// CombatSummary is a one-breath status: totals and both sides' health.
func (s *Session) CombatSummary() string {
	return fmt.Sprintf("Dealt %s damage, took %s damage. You: %s. %s: %s.",
		s.DamageDealt(), s.DamageTaken(),
		s.HealthText(combat.SideOwn), s.label, s.HealthText(combat.SideOpponent))
}

func (s *Session) RecapLines() []string {
	return s.ledger.BuildRecap(s.dealt, s.taken)
}

func (s *Session) HasRecapData() bool {
	return s.ledger.HasData()
}
