package config

import (
	"errors"
	"fmt"

	"combat_narrator/internal/combat"
)

// Step types understood by the replay host.
const (
	StepEffect = "effect"
	StepHealth = "health"
	StepToggle = "toggle"
	StepEnd    = "end"
)

type Scenario struct {
	Name     string          `yaml:"name"`
	Opponent string          `yaml:"opponent"`
	Mode     string          `yaml:"mode"`
	Own      CombatantConfig `yaml:"own"`
	Enemy    CombatantConfig `yaml:"enemy"`
	Items    []ItemConfig    `yaml:"items"`
	Script   []StepConfig    `yaml:"script"`
}

type CombatantConfig struct {
	Health    int `yaml:"health"`
	MaxHealth int `yaml:"max_health"`
	Shield    int `yaml:"shield"`
}

type ItemConfig struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Side       string         `yaml:"side"`
	Attributes map[string]int `yaml:"attributes"`
}

// StepConfig is one scripted moment. At is seconds since the encounter began.
type StepConfig struct {
	At       float64 `yaml:"at"`
	Type     string  `yaml:"type"`
	Item     string  `yaml:"item,omitempty"`
	Kind     string  `yaml:"kind,omitempty"`
	Target   string  `yaml:"target,omitempty"`
	Critical bool    `yaml:"critical,omitempty"`
	// Amount sizes the effect when the item carries no matching attribute.
	Amount    int    `yaml:"amount,omitempty"`
	Side      string `yaml:"side,omitempty"`
	Health    int    `yaml:"health,omitempty"`
	MaxHealth int    `yaml:"max_health,omitempty"`
	Shield    int    `yaml:"shield,omitempty"`
}

// Combatant returns the configured health bar for a side.
func (sc *Scenario) Combatant(side combat.Side) CombatantConfig {
	if side == combat.SideOpponent {
		return sc.Enemy
	}
	return sc.Own
}

// Validate checks references and enum names across items and script.
func (sc *Scenario) Validate() error {
	var errs []error
	for _, side := range combat.Sides {
		c := sc.Combatant(side)
		if c.MaxHealth < 0 || c.Health < 0 || c.Shield < 0 {
			errs = append(errs, fmt.Errorf("%s combatant: negative health values", side))
		}
	}

	ids := map[string]bool{}
	for i, it := range sc.Items {
		if it.ID == "" {
			errs = append(errs, fmt.Errorf("item %d: missing id", i))
			continue
		}
		if ids[it.ID] {
			errs = append(errs, fmt.Errorf("item %s: duplicate id", it.ID))
		}
		ids[it.ID] = true
		if _, ok := combat.ParseSide(it.Side); !ok {
			errs = append(errs, fmt.Errorf("item %s: unknown side %q", it.ID, it.Side))
		}
		for name := range it.Attributes {
			if _, ok := combat.ParseAttributeKind(name); !ok {
				errs = append(errs, fmt.Errorf("item %s: unknown attribute %q", it.ID, name))
			}
		}
	}

	for i, st := range sc.Script {
		if st.At < 0 {
			errs = append(errs, fmt.Errorf("step %d: negative time", i))
		}
		switch st.Type {
		case StepEffect:
			if !ids[st.Item] {
				errs = append(errs, fmt.Errorf("step %d: unknown item %q", i, st.Item))
			}
			if _, ok := combat.ParseActionKind(st.Kind); !ok {
				errs = append(errs, fmt.Errorf("step %d: unknown kind %q", i, st.Kind))
			}
			if st.Target != "" && !ids[st.Target] {
				errs = append(errs, fmt.Errorf("step %d: unknown target %q", i, st.Target))
			}
		case StepHealth:
			if _, ok := combat.ParseSide(st.Side); !ok {
				errs = append(errs, fmt.Errorf("step %d: unknown side %q", i, st.Side))
			}
		case StepToggle, StepEnd:
		default:
			errs = append(errs, fmt.Errorf("step %d: unknown type %q", i, st.Type))
		}
	}
	return errors.Join(errs...)
}
