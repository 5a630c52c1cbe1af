package narration

import (
	"log/slog"

	"github.com/dustin/go-humanize"

	"combat_narrator/internal/clock"
	"combat_narrator/internal/combat"
)

// HealthSnapshot is the last known health of one side plus which one-shot
// alerts have fired this encounter. AnnouncedCritical implies AnnouncedLow.
type HealthSnapshot struct {
	LastHealth        int
	LastMaxHealth     int
	LastShield        int
	AnnouncedLow      bool
	AnnouncedCritical bool
}

// Ratio is health over max health; an unknown max counts as full.
func (h HealthSnapshot) Ratio() float64 {
	if h.LastMaxHealth <= 0 {
		return 1
	}
	return float64(h.LastHealth) / float64(h.LastMaxHealth)
}

// Monitor tracks both sides' health, raises threshold alerts and runs the
// periodic status report.
type Monitor struct {
	health   HealthReader
	speech   SpeechSink
	sched    clock.Scheduler
	log      *slog.Logger
	settings Settings

	label    string
	snaps    [2]HealthSnapshot
	periodic clock.Timer
	armed    bool
}

func NewMonitor(health HealthReader, speech SpeechSink, sched clock.Scheduler, settings Settings, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		health:   health,
		speech:   speech,
		sched:    sched,
		log:      log,
		settings: settings.withDefaults(),
		label:    DefaultOpponentLabel,
	}
}

// Start forgets the previous encounter and captures current health for
// both sides.
func (m *Monitor) Start(opponentLabel string) {
	if opponentLabel == "" {
		opponentLabel = DefaultOpponentLabel
	}
	m.label = opponentLabel
	m.snaps = [2]HealthSnapshot{}
	for _, side := range combat.Sides {
		m.Refresh(side)
	}
}

// Refresh re-reads one side's health into its snapshot.
func (m *Monitor) Refresh(side combat.Side) {
	r, ok := m.read(side)
	if !ok {
		return
	}
	s := &m.snaps[sideIndex(side)]
	s.LastHealth = r.Health
	s.LastMaxHealth = r.MaxHealth
	s.LastShield = r.Shield
}

func (m *Monitor) read(side combat.Side) (HealthReading, bool) {
	if m.health == nil {
		return HealthReading{}, false
	}
	return m.health.Health(side)
}

func (m *Monitor) Snapshot(side combat.Side) HealthSnapshot {
	return m.snaps[sideIndex(side)]
}

// CheckThresholds fires at most one low and one critical alert per side
// per encounter. Crossing straight into critical marks low as spent too.
func (m *Monitor) CheckThresholds() {
	for _, side := range combat.Sides {
		s := &m.snaps[sideIndex(side)]
		ratio := s.Ratio()
		switch {
		case ratio <= m.settings.CriticalRatio && !s.AnnouncedCritical:
			s.AnnouncedCritical = true
			s.AnnouncedLow = true
			m.log.Info("critical health alert", "side", side.String(), "ratio", ratio)
			m.speech.Speak(m.criticalAlert(side), true)
		case ratio <= m.settings.LowRatio && !s.AnnouncedLow:
			s.AnnouncedLow = true
			m.log.Info("low health alert", "side", side.String(), "ratio", ratio)
			m.speech.Speak(m.lowAlert(side), true)
		}
	}
}

func (m *Monitor) criticalAlert(side combat.Side) string {
	if side == combat.SideOwn {
		return "Your health is critical!"
	}
	return m.label + " health critical!"
}

func (m *Monitor) lowAlert(side combat.Side) string {
	if side == combat.SideOwn {
		return "Your health is low"
	}
	return m.label + " health low"
}

// StartPeriodic arms the status report: first after StatusDelay, then every
// StatusInterval until StopPeriodic.
func (m *Monitor) StartPeriodic() {
	m.StopPeriodic()
	m.armed = true
	m.periodic = m.sched.AfterFunc(m.settings.StatusDelay, m.tick)
}

func (m *Monitor) StopPeriodic() {
	m.armed = false
	clock.Stop(m.periodic)
	m.periodic = nil
}

func (m *Monitor) tick() {
	if !m.armed {
		return
	}
	m.periodic = m.sched.AfterFunc(m.settings.StatusInterval, m.tick)
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("periodic status failed", "panic", r)
		}
	}()
	for _, side := range combat.Sides {
		m.Refresh(side)
		m.speech.Speak(m.sideLabel(side)+": "+m.HealthText(side), false)
	}
}

func (m *Monitor) sideLabel(side combat.Side) string {
	if side == combat.SideOwn {
		return "You"
	}
	return m.label
}

// HealthText renders "<health> health[, <shield> shield]". The host may
// report health with shield included, so shield is subtracted unless that
// would go negative.
func (m *Monitor) HealthText(side combat.Side) string {
	r, ok := m.read(side)
	if !ok {
		s := m.snaps[sideIndex(side)]
		r = HealthReading{Health: s.LastHealth, MaxHealth: s.LastMaxHealth, Shield: s.LastShield}
	}
	health := r.Health
	if r.Shield > 0 {
		if corrected := r.Health - r.Shield; corrected >= 0 {
			health = corrected
		}
	}
	text := humanize.Comma(int64(health)) + " health"
	if r.Shield > 0 {
		text += ", " + humanize.Comma(int64(r.Shield)) + " shield"
	}
	return text
}
