package narration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"combat_narrator/internal/combat"
)

// NoDataLine is the whole recap when nothing was recorded.
const NoDataLine = "No combat data recorded."

// EntityStats are one entity's running totals for the encounter.
type EntityStats struct {
	Damage   int
	Heal     int
	Shield   int
	Triggers int
	Crits    int
	Repairs  int
}

// Ledger accumulates per-entity totals, one map per side.
type Ledger struct {
	opponentLabel string
	stats         [2]map[string]*EntityStats
}

func NewLedger() *Ledger {
	l := &Ledger{}
	l.Reset(DefaultOpponentLabel)
	return l
}

// Reset clears both sides for a new encounter.
func (l *Ledger) Reset(opponentLabel string) {
	if opponentLabel == "" {
		opponentLabel = DefaultOpponentLabel
	}
	l.opponentLabel = opponentLabel
	l.stats = [2]map[string]*EntityStats{{}, {}}
}

func (l *Ledger) entry(name string, side combat.Side) *EntityStats {
	m := l.stats[sideIndex(side)]
	st, ok := m[name]
	if !ok {
		st = &EntityStats{}
		m[name] = st
	}
	return st
}

// RecordTrigger counts one processed event for name, narratable or not.
func (l *Ledger) RecordTrigger(name string, side combat.Side) {
	l.entry(name, side).Triggers++
}

// RecordDetail adds a narratable event's size to the matching total. It
// never touches the trigger count.
func (l *Ledger) RecordDetail(name string, side combat.Side, kind combat.ActionKind, magnitude int, critical bool) {
	st := l.entry(name, side)
	if magnitude > 0 {
		switch kind {
		case combat.ActionDamage:
			st.Damage += magnitude
		case combat.ActionHeal:
			st.Heal += magnitude
		case combat.ActionShield:
			st.Shield += magnitude
		}
	}
	if kind == combat.ActionRepair {
		st.Repairs++
	}
	if critical {
		st.Crits++
	}
}

// Stats returns a copy of name's totals.
func (l *Ledger) Stats(name string, side combat.Side) (EntityStats, bool) {
	st, ok := l.stats[sideIndex(side)][name]
	if !ok {
		return EntityStats{}, false
	}
	return *st, true
}

func (l *Ledger) HasData() bool {
	return len(l.stats[0]) > 0 || len(l.stats[1]) > 0
}

// BuildRecap renders the end-of-encounter report: the aggregate line, then
// own entries, then opposing entries, each ordered by damage and trigger
// count, highest first.
func (l *Ledger) BuildRecap(dealt, taken int) []string {
	if !l.HasData() {
		return []string{NoDataLine}
	}
	lines := []string{fmt.Sprintf("Combat over. Damage dealt: %s. Damage taken: %s.",
		humanize.Comma(int64(dealt)), humanize.Comma(int64(taken)))}
	for _, side := range combat.Sides {
		for _, name := range l.ranked(side) {
			lines = append(lines, l.recapLine(side, name))
		}
	}
	return lines
}

func (l *Ledger) ranked(side combat.Side) []string {
	m := l.stats[sideIndex(side)]
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := m[names[i]], m[names[j]]
		if a.Damage != b.Damage {
			return a.Damage > b.Damage
		}
		if a.Triggers != b.Triggers {
			return a.Triggers > b.Triggers
		}
		return names[i] < names[j]
	})
	return names
}

func (l *Ledger) recapLine(side combat.Side, name string) string {
	st := l.stats[sideIndex(side)][name]
	var parts []string
	if st.Damage > 0 {
		parts = append(parts, humanize.Comma(int64(st.Damage))+" damage")
	}
	if st.Heal > 0 {
		parts = append(parts, humanize.Comma(int64(st.Heal))+" heal")
	}
	if st.Shield > 0 {
		parts = append(parts, humanize.Comma(int64(st.Shield))+" shield")
	}
	if st.Repairs > 0 {
		parts = append(parts, count(st.Repairs, "repair"))
	}
	if st.Crits > 0 {
		parts = append(parts, count(st.Crits, "crit"))
	}
	parts = append(parts, count(st.Triggers, "trigger"))

	owner := "Your "
	if side == combat.SideOpponent {
		owner = l.opponentLabel + "'s "
	}
	return owner + name + ": " + strings.Join(parts, ", ")
}

// count renders n with a naively pluralized noun.
func count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

func sideIndex(side combat.Side) int {
	if side == combat.SideOpponent {
		return 1
	}
	return 0
}
