package sim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"combat_narrator/internal/clock"
	"combat_narrator/internal/combat"
	"combat_narrator/internal/config"
	"combat_narrator/internal/narration"
	"combat_narrator/internal/speech"
)

const skirmish = `
name: skirmish
opponent: Goblin
own: { health: 100 }
enemy: { health: 200, shield: 10 }
items:
  - { id: sword, name: Sword, side: own, attributes: { damage: 10 } }
  - { id: potion, name: Potion, side: own, attributes: { heal: 5 } }
  - { id: club, name: Club, side: enemy, attributes: { damage: 30 } }
script:
  - { at: 0.2, type: effect, item: sword, kind: damage }
  - { at: 0.4, type: effect, item: sword, kind: damage }
  - { at: 0.6, type: effect, item: club, kind: damage }
  - { at: 3.0, type: effect, item: potion, kind: heal }
  - { at: 5.0, type: end }
`

func mustScenario(t *testing.T, src string) *config.Scenario {
	t.Helper()
	sc, err := config.ParseScenario([]byte(src))
	if err != nil {
		t.Fatalf("parse scenario: %v", err)
	}
	return sc
}

func quiet() narration.Settings {
	s := narration.DefaultSettings()
	s.StatusDelay = time.Hour
	s.StatusInterval = time.Hour
	return s
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockSink expects announcements through testify.
type mockSink struct {
	mock.Mock
}

func (m *mockSink) Speak(text string, interrupt bool) {
	m.Called(text, interrupt)
}

func TestRunReplaysScript(t *testing.T) {
	sink := &mockSink{}
	sink.On("Speak", "You: 20 damage (Sword). Goblin: 30 damage (Club)", false).Once()
	sink.On("Speak", "You: 5 heal", false).Once()

	res, err := Run(mustScenario(t, skirmish), quiet(), Options{Logger: discard(), Sink: sink})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	sink.AssertExpectations(t)

	want := []Line{
		{T: 2.1, Text: "You: 20 damage (Sword). Goblin: 30 damage (Club)"},
		{T: 4.5, Text: "You: 5 heal"},
	}
	if len(res.Transcript) != len(want) {
		t.Fatalf("transcript = %+v, want %+v", res.Transcript, want)
	}
	for i := range want {
		if res.Transcript[i] != want[i] {
			t.Fatalf("line %d = %+v, want %+v", i, res.Transcript[i], want[i])
		}
	}
	if res.Dealt != "20" || res.Taken != "30" {
		t.Fatalf("totals = %s/%s, want 20/30", res.Dealt, res.Taken)
	}
	if res.Effects != 4 || res.Duration != 5.0 {
		t.Fatalf("effects = %d, duration = %v", res.Effects, res.Duration)
	}
	wantRecap := []string{
		"Combat over. Damage dealt: 20. Damage taken: 30.",
		"Your Sword: 20 damage, 2 triggers",
		"Your Potion: 5 heal, 1 trigger",
		"Goblin's Club: 30 damage, 1 trigger",
	}
	if len(res.Recap) != len(wantRecap) {
		t.Fatalf("recap = %q", res.Recap)
	}
	for i := range wantRecap {
		if res.Recap[i] != wantRecap[i] {
			t.Fatalf("recap %d = %q, want %q", i, res.Recap[i], wantRecap[i])
		}
	}
}

func TestRunEndsWhenScriptAndWaveAreDone(t *testing.T) {
	sc := mustScenario(t, skirmish)
	sc.Script = sc.Script[:3]
	res, err := Run(sc, quiet(), Options{Logger: discard()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Duration != 2.1 || len(res.Transcript) != 1 {
		t.Fatalf("duration = %v, transcript = %+v", res.Duration, res.Transcript)
	}
}

func TestRunStopsOnDefeat(t *testing.T) {
	sc := mustScenario(t, skirmish)
	sc.Enemy = config.CombatantConfig{Health: 15, MaxHealth: 15}
	res, err := Run(sc, quiet(), Options{Logger: discard()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Effects != 2 {
		t.Fatalf("effects = %d, want replay to stop at defeat", res.Effects)
	}
	want := []Line{
		{T: 0.4, Text: "Goblin health critical!", Interrupt: true},
		{T: 0.4, Text: "You: 20 damage (Sword)"},
	}
	if len(res.Transcript) != len(want) || res.Transcript[0] != want[0] || res.Transcript[1] != want[1] {
		t.Fatalf("transcript = %+v, want %+v", res.Transcript, want)
	}
}

func TestRunIndividualModeAndAlerts(t *testing.T) {
	sc := mustScenario(t, skirmish)
	sc.Mode = "individual"
	sc.Script = append(sc.Script[:1:1],
		config.StepConfig{At: 1, Type: config.StepHealth, Side: "own", Health: 80, MaxHealth: 1000},
		config.StepConfig{At: 2, Type: config.StepToggle},
		config.StepConfig{At: 2.5, Type: config.StepEffect, Item: "club", Kind: "damage", Critical: true},
		config.StepConfig{At: 6, Type: config.StepEnd},
	)
	res, err := Run(sc, quiet(), Options{Logger: discard()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []Line{
		{T: 0.2, Text: "Sword: 10 damage"},
		{T: 1, Text: "Your health is critical!", Interrupt: true},
		{T: 4, Text: "Goblin: critical hit! 30 damage (Club)"},
	}
	if len(res.Transcript) != len(want) {
		t.Fatalf("transcript = %+v, want %+v", res.Transcript, want)
	}
	for i := range want {
		if res.Transcript[i] != want[i] {
			t.Fatalf("line %d = %+v, want %+v", i, res.Transcript[i], want[i])
		}
	}
	if res.Mode != "batched" || res.Interrupts != 1 {
		t.Fatalf("mode = %s, interrupts = %d", res.Mode, res.Interrupts)
	}
}

func TestRandomReplayIsDeterministic(t *testing.T) {
	base := mustScenario(t, skirmish)
	a, err := RandomScenario(base, 42, 60)
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	b, _ := RandomScenario(base, 42, 60)
	if len(a.Script) != 61 || a.Script[60].Type != config.StepEnd {
		t.Fatalf("script length = %d", len(a.Script))
	}

	ra, err := Run(a, narration.DefaultSettings(), Options{Logger: discard()})
	if err != nil {
		t.Fatalf("run a: %v", err)
	}
	rb, err := Run(b, narration.DefaultSettings(), Options{Logger: discard()})
	if err != nil {
		t.Fatalf("run b: %v", err)
	}
	if len(ra.Transcript) == 0 || len(ra.Transcript) != len(rb.Transcript) {
		t.Fatalf("transcripts = %d vs %d lines", len(ra.Transcript), len(rb.Transcript))
	}
	for i := range ra.Transcript {
		if ra.Transcript[i] != rb.Transcript[i] {
			t.Fatalf("line %d differs: %+v vs %+v", i, ra.Transcript[i], rb.Transcript[i])
		}
	}
	if ra.Dealt != rb.Dealt || ra.Taken != rb.Taken {
		t.Fatalf("totals differ: %s/%s vs %s/%s", ra.Dealt, ra.Taken, rb.Dealt, rb.Taken)
	}
	if ra.Encounter == rb.Encounter {
		t.Fatal("each replay should get its own encounter id")
	}
}

func TestRandomScenarioNeedsItems(t *testing.T) {
	if _, err := RandomScenario(&config.Scenario{Name: "empty"}, 1, 5); err == nil {
		t.Fatal("expected error for scenario without items")
	}
}

func TestBoardApply(t *testing.T) {
	b, err := NewBoard(mustScenario(t, skirmish))
	if err != nil {
		t.Fatalf("board: %v", err)
	}

	ev, touched := b.Apply(combat.Event{Source: "sword", Side: combat.SideOwn, Kind: combat.ActionDamage}, 0)
	if ev.HealthBefore != 200 || ev.HealthAfter != 200 || len(touched) != 1 || touched[0] != combat.SideOpponent {
		t.Fatalf("shielded hit = %+v touched %v", ev, touched)
	}
	ev, _ = b.Apply(combat.Event{Source: "sword", Side: combat.SideOwn, Kind: combat.ActionDamage}, 0)
	if ev.HealthAfter != 190 {
		t.Fatalf("health after = %d, want 190", ev.HealthAfter)
	}

	ev, _ = b.Apply(combat.Event{Source: "potion", Side: combat.SideOwn, Kind: combat.ActionHeal}, 0)
	if ev.HealthAfter != 100 {
		t.Fatalf("heal must cap at max, got %d", ev.HealthAfter)
	}

	b.Apply(combat.Event{Source: "club", Side: combat.SideOpponent, Kind: combat.ActionShield}, 25)
	r, _ := b.Health(combat.SideOpponent)
	if r.Shield != 25 || r.Health != 215 {
		t.Fatalf("reading = %+v, want shield folded into health", r)
	}

	b.Apply(combat.Event{Source: "club", Side: combat.SideOpponent, Kind: combat.ActionMaxHealthDown}, 40)
	r, _ = b.Health(combat.SideOwn)
	if r.MaxHealth != 60 || r.Health != 60 {
		t.Fatalf("reading = %+v after max health down", r)
	}

	_, touched = b.Apply(combat.Event{Source: "sword", Side: combat.SideOwn, Kind: combat.ActionFreeze}, 0)
	if len(touched) != 0 {
		t.Fatalf("freeze touched %v", touched)
	}
}

func TestRunLive(t *testing.T) {
	sc := mustScenario(t, `
opponent: Goblin
own: { health: 100 }
enemy: { health: 100 }
items:
  - { id: sword, name: Sword, side: own, attributes: { damage: 10 } }
script:
  - { at: 0.01, type: effect, item: sword, kind: damage }
  - { at: 0.02, type: effect, item: sword, kind: damage }
  - { at: 0.3, type: end }
`)
	settings := quiet()
	settings.WaveWindow = 50 * time.Millisecond

	rec := speech.NewRecorder(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	recap, err := RunLive(ctx, sc, settings, rec, discard())
	if err != nil {
		t.Fatalf("run live: %v", err)
	}
	if got := rec.Texts(); len(got) != 1 || got[0] != "You: 20 damage (Sword)" {
		t.Fatalf("speech = %q", got)
	}
	if len(recap) == 0 || recap[0] != "Combat over. Damage dealt: 20. Damage taken: 0." {
		t.Fatalf("recap = %q", recap)
	}
}

func TestRunLiveCancelled(t *testing.T) {
	sc := mustScenario(t, skirmish)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunLive(ctx, sc, quiet(), speech.NewRecorder(nil), discard())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunLiveStopsLeftoverTimers(t *testing.T) {
	sc := mustScenario(t, `
opponent: Goblin
own: { health: 100 }
enemy: { health: 15, max_health: 15 }
items:
  - { id: sword, name: Sword, side: own, attributes: { damage: 10 } }
script:
  - { at: 0.01, type: effect, item: sword, kind: damage }
  - { at: 0.02, type: effect, item: sword, kind: damage }
  - { at: 30, type: effect, item: sword, kind: damage }
  - { at: 60, type: end }
`)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	loop := clock.NewLoop(16, discard())
	if _, err := runLive(ctx, loop, sc, quiet(), speech.NewRecorder(nil), discard()); err != nil {
		t.Fatalf("run live: %v", err)
	}
	if n := loop.Pending(); n != 0 {
		t.Fatalf("pending timers = %d after defeat, want 0", n)
	}

	cancelled, stop := context.WithCancel(context.Background())
	stop()
	loop = clock.NewLoop(16, discard())
	if _, err := runLive(cancelled, loop, sc, quiet(), speech.NewRecorder(nil), discard()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if n := loop.Pending(); n != 0 {
		t.Fatalf("pending timers = %d after cancel, want 0", n)
	}
}
