package narration

import (
	"testing"
	"time"

	"combat_narrator/internal/clock"
	"combat_narrator/internal/combat"
	"combat_narrator/internal/speech"
)

func newTestMonitor(w *fakeWorld) (*Monitor, *clock.Manual, *speech.Recorder) {
	clk := clock.NewManual()
	rec := speech.NewRecorder(clk.Now)
	return NewMonitor(w, rec, clk, DefaultSettings(), quietLogger()), clk, rec
}

func TestMonitorThresholdsAreOneShot(t *testing.T) {
	w := swordWorld()
	m, _, rec := newTestMonitor(w)
	m.Start("Goblin")

	for _, hp := range []int{20, 8, 50, 20, 5} {
		w.setHealth(combat.SideOwn, hp, 100, 0)
		m.Refresh(combat.SideOwn)
		m.CheckThresholds()
	}

	want := []string{"Your health is low", "Your health is critical!"}
	got := rec.Texts()
	if len(got) != len(want) {
		t.Fatalf("alerts = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("alert %d = %q, want %q", i, got[i], want[i])
		}
	}
	if rec.Interrupts() != 2 {
		t.Fatalf("interrupts = %d, want 2", rec.Interrupts())
	}
}

func TestMonitorCriticalFirstSuppressesLow(t *testing.T) {
	w := swordWorld()
	m, _, rec := newTestMonitor(w)
	m.Start("Goblin")

	w.setHealth(combat.SideOwn, 8, 100, 0)
	m.Refresh(combat.SideOwn)
	m.CheckThresholds()
	w.setHealth(combat.SideOwn, 20, 100, 0)
	m.Refresh(combat.SideOwn)
	m.CheckThresholds()

	if got := rec.Texts(); len(got) != 1 || got[0] != "Your health is critical!" {
		t.Fatalf("alerts = %q, want one critical alert", got)
	}
	snap := m.Snapshot(combat.SideOwn)
	if !snap.AnnouncedCritical || !snap.AnnouncedLow {
		t.Fatalf("snapshot = %+v, want both flags set", snap)
	}
}

func TestMonitorOpponentAlertsAndZeroMax(t *testing.T) {
	w := swordWorld()
	m, _, rec := newTestMonitor(w)
	w.setHealth(combat.SideOwn, 0, 0, 0)
	m.Start("Goblin")

	w.setHealth(combat.SideOpponent, 40, 200, 0)
	m.Refresh(combat.SideOpponent)
	m.CheckThresholds()

	if got := rec.Texts(); len(got) != 1 || got[0] != "Goblin health low" {
		t.Fatalf("alerts = %q, want [Goblin health low]", got)
	}
}

func TestMonitorStartResetsFlags(t *testing.T) {
	w := swordWorld()
	m, _, rec := newTestMonitor(w)
	m.Start("Goblin")
	w.setHealth(combat.SideOwn, 5, 100, 0)
	m.Refresh(combat.SideOwn)
	m.CheckThresholds()

	m.Start("Orc")
	if snap := m.Snapshot(combat.SideOwn); snap.AnnouncedCritical || snap.LastHealth != 5 {
		t.Fatalf("snapshot after start = %+v", snap)
	}
	m.CheckThresholds()
	if len(rec.Utterances) != 2 {
		t.Fatalf("utterances = %d, want a fresh critical alert", len(rec.Utterances))
	}
}

func TestMonitorPeriodicStatus(t *testing.T) {
	w := swordWorld()
	w.setHealth(combat.SideOwn, 100, 120, 20)
	w.setHealth(combat.SideOpponent, 10, 200, 30)
	m, clk, rec := newTestMonitor(w)
	m.Start("Goblin")
	m.StartPeriodic()

	clk.Advance(1999 * time.Millisecond)
	if len(rec.Utterances) != 0 {
		t.Fatalf("spoke before initial delay: %q", rec.Texts())
	}
	clk.Advance(time.Millisecond)
	want := []string{"You: 80 health, 20 shield", "Goblin: 10 health, 30 shield"}
	got := rec.Texts()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("status = %q, want %q", got, want)
	}
	for _, u := range rec.Utterances {
		if u.Interrupt {
			t.Fatal("periodic status must not interrupt")
		}
	}

	clk.Advance(5 * time.Second)
	if len(rec.Utterances) != 4 {
		t.Fatalf("utterances = %d, want 4 after one interval", len(rec.Utterances))
	}

	m.StopPeriodic()
	clk.Advance(time.Minute)
	if len(rec.Utterances) != 4 {
		t.Fatalf("utterances = %d, want no speech after stop", len(rec.Utterances))
	}
}

func TestMonitorRestartPeriodicKeepsOneTimer(t *testing.T) {
	w := swordWorld()
	m, clk, rec := newTestMonitor(w)
	m.Start("Goblin")
	m.StartPeriodic()
	m.StartPeriodic()
	clk.Advance(2 * time.Second)
	if len(rec.Utterances) != 2 {
		t.Fatalf("utterances = %d, want one report per side", len(rec.Utterances))
	}
	if clk.Pending() != 1 {
		t.Fatalf("pending timers = %d, want 1", clk.Pending())
	}
}

func TestHealthTextCorrection(t *testing.T) {
	w := swordWorld()
	m, _, _ := newTestMonitor(w)

	tests := []struct {
		health, shield int
		want           string
	}{
		{100, 0, "100 health"},
		{100, 25, "75 health, 25 shield"},
		{10, 30, "10 health, 30 shield"},
		{2500, 0, "2,500 health"},
	}
	for _, tt := range tests {
		w.setHealth(combat.SideOwn, tt.health, 3000, tt.shield)
		if got := m.HealthText(combat.SideOwn); got != tt.want {
			t.Fatalf("health text = %q, want %q", got, tt.want)
		}
	}
}
