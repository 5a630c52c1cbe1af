package narration

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"combat_narrator/internal/clock"
	"combat_narrator/internal/combat"
	"combat_narrator/internal/speech"
)

// fakeWorld is a tiny host: named items with attributes and two health bars.
type fakeWorld struct {
	names  map[combat.EntityID]string
	attrs  map[combat.EntityID]map[combat.AttributeKind]int
	health [2]HealthReading
	panics bool
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		names: map[combat.EntityID]string{},
		attrs: map[combat.EntityID]map[combat.AttributeKind]int{},
	}
}

func (w *fakeWorld) item(id combat.EntityID, name string, attrs map[combat.AttributeKind]int) {
	w.names[id] = name
	w.attrs[id] = attrs
}

func (w *fakeWorld) DisplayName(id combat.EntityID) (string, bool) {
	n, ok := w.names[id]
	return n, ok
}

func (w *fakeWorld) Attribute(id combat.EntityID, kind combat.AttributeKind) (int, bool) {
	if w.panics {
		panic("attribute table corrupted")
	}
	v, ok := w.attrs[id][kind]
	return v, ok
}

func (w *fakeWorld) Health(side combat.Side) (HealthReading, bool) {
	return w.health[sideIndex(side)], true
}

func (w *fakeWorld) setHealth(side combat.Side, health, max, shield int) {
	w.health[sideIndex(side)] = HealthReading{Health: health, MaxHealth: max, Shield: shield}
}

// mockPhase answers InCombat through testify expectations.
type mockPhase struct {
	mock.Mock
}

func (m *mockPhase) InCombat() bool {
	args := m.Called()
	return args.Bool(0)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// quietStatus pushes the periodic report far enough out that wave tests
// only hear waves.
func quietStatus(s Settings) Settings {
	s.StatusDelay = time.Hour
	s.StatusInterval = time.Hour
	return s
}

type harness struct {
	session *Session
	clock   *clock.Manual
	speech  *speech.Recorder
	world   *fakeWorld
}

func newHarness(t *testing.T, world *fakeWorld, phase PhaseOracle, settings Settings) *harness {
	t.Helper()
	clk := clock.NewManual()
	rec := speech.NewRecorder(clk.Now)
	s, err := NewSession(Deps{
		Speech:     rec,
		Scheduler:  clk,
		Names:      world,
		Attributes: world,
		Health:     world,
		Phase:      phase,
		Logger:     quietLogger(),
	}, settings)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return &harness{session: s, clock: clk, speech: rec, world: world}
}

func swordWorld() *fakeWorld {
	w := newFakeWorld()
	w.item("sword", "Sword", map[combat.AttributeKind]int{combat.AttrDamageAmount: 10})
	w.item("club", "Club", map[combat.AttributeKind]int{combat.AttrDamageAmount: 50})
	w.item("potion", "Potion", map[combat.AttributeKind]int{combat.AttrHealAmount: 7})
	w.item("ice", "Ice Wand", map[combat.AttributeKind]int{combat.AttrFreezeAmount: 2})
	w.item("pistol", "Pistol", map[combat.AttributeKind]int{})
	w.item("bomb", "Bomb", map[combat.AttributeKind]int{})
	w.item("wall", "Shield Wall", map[combat.AttributeKind]int{combat.AttrShieldAmount: 15})
	w.setHealth(combat.SideOwn, 100, 100, 0)
	w.setHealth(combat.SideOpponent, 200, 200, 0)
	return w
}
