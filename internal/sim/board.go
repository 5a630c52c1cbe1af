package sim

import (
	"fmt"

	"combat_narrator/internal/combat"
	"combat_narrator/internal/config"
	"combat_narrator/internal/narration"
)

type item struct {
	id    combat.EntityID
	name  string
	side  combat.Side
	attrs map[combat.AttributeKind]int
}

type bar struct {
	health, max, shield int
}

// Board is the in-memory encounter state a scenario plays against. It
// answers the narration ports the way a game client would.
type Board struct {
	items    map[combat.EntityID]*item
	bars     [2]bar
	inCombat bool
}

func NewBoard(sc *config.Scenario) (*Board, error) {
	b := &Board{items: map[combat.EntityID]*item{}, inCombat: true}
	for _, side := range combat.Sides {
		c := sc.Combatant(side)
		b.bars[index(side)] = bar{health: c.Health, max: c.MaxHealth, shield: c.Shield}
	}
	for _, ic := range sc.Items {
		side, ok := combat.ParseSide(ic.Side)
		if !ok {
			return nil, fmt.Errorf("item %s: unknown side %q", ic.ID, ic.Side)
		}
		it := &item{id: combat.EntityID(ic.ID), name: ic.Name, side: side, attrs: map[combat.AttributeKind]int{}}
		for name, v := range ic.Attributes {
			kind, ok := combat.ParseAttributeKind(name)
			if !ok {
				return nil, fmt.Errorf("item %s: unknown attribute %q", ic.ID, name)
			}
			it.attrs[kind] = v
		}
		b.items[it.id] = it
	}
	return b, nil
}

func index(side combat.Side) int {
	if side == combat.SideOpponent {
		return 1
	}
	return 0
}

// DisplayName implements narration.NameResolver. Unnamed items stay unresolved.
func (b *Board) DisplayName(id combat.EntityID) (string, bool) {
	it, ok := b.items[id]
	if !ok || it.name == "" {
		return "", false
	}
	return it.name, true
}

func (b *Board) Attribute(id combat.EntityID, kind combat.AttributeKind) (int, bool) {
	it, ok := b.items[id]
	if !ok {
		return 0, false
	}
	v, ok := it.attrs[kind]
	return v, ok
}

// Health reports the bar with shield folded into health, as game HUDs do.
func (b *Board) Health(side combat.Side) (narration.HealthReading, bool) {
	br := b.bars[index(side)]
	return narration.HealthReading{Health: br.health + br.shield, MaxHealth: br.max, Shield: br.shield}, true
}

func (b *Board) InCombat() bool { return b.inCombat }

// Leave takes the board out of the combat phase.
func (b *Board) Leave() { b.inCombat = false }

func (b *Board) ItemSide(id combat.EntityID) (combat.Side, bool) {
	it, ok := b.items[id]
	if !ok {
		return combat.SideOwn, false
	}
	return it.side, true
}

// SetHealth overwrites a side's bar. A zero max keeps the current max.
func (b *Board) SetHealth(side combat.Side, health, maxHealth, shield int) {
	br := &b.bars[index(side)]
	if maxHealth > 0 {
		br.max = maxHealth
	}
	br.health = clamp(health, 0, br.max)
	br.shield = max(shield, 0)
}

// Defeated reports whether either side has run out of health.
func (b *Board) Defeated() bool {
	return b.bars[0].health <= 0 || b.bars[1].health <= 0
}

// Apply resolves ev against the board. The effect is sized by the source's
// attribute, falling back to amount. The returned event carries the
// affected side's health around the effect; touched lists sides whose bar
// changed.
func (b *Board) Apply(ev combat.Event, amount int) (out combat.Event, touched []combat.Side) {
	size := amount
	if v, ok := b.Attribute(ev.Source, narration.AttributeFor(ev.Kind)); ok && v != 0 {
		size = v
	}
	if size < 0 {
		size = -size
	}

	affected := ev.Side
	switch ev.Kind {
	case combat.ActionDamage, combat.ActionBurn, combat.ActionPoison, combat.ActionMaxHealthDown:
		affected = ev.Side.Other()
	}
	br := &b.bars[index(affected)]
	before := *br

	switch ev.Kind {
	case combat.ActionDamage, combat.ActionBurn, combat.ActionPoison:
		absorbed := min(br.shield, size)
		br.shield -= absorbed
		br.health = clamp(br.health-(size-absorbed), 0, br.max)
	case combat.ActionHeal, combat.ActionRegen:
		br.health = clamp(br.health+size, 0, br.max)
	case combat.ActionShield:
		br.shield += size
	case combat.ActionMaxHealthUp:
		br.max += size
		br.health += size
	case combat.ActionMaxHealthDown:
		br.max = max(br.max-size, 0)
		br.health = min(br.health, br.max)
	}

	ev.HealthBefore = before.health
	ev.HealthAfter = br.health
	if *br != before {
		touched = append(touched, affected)
	}
	return ev, touched
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
