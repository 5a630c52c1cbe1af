package narration

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"combat_narrator/internal/combat"
)

// genericSource names an item the host could not name.
const genericSource = "Something"


// waveRoute says which bucket field a batched event lands in.
type waveRoute int

const (
	routeNone waveRoute = iota
	routeDamage
	routeHeal
	routeShield
	routeStatus
	routeReload
	routeModify
	routeRepair
	routeTargetTag
)

// kindSpec is everything the engine knows about one action kind.
type kindSpec struct {
	narratable bool
	attr       combat.AttributeKind
	// healthFallback sizes the action from the health delta when the
	// source carries no attribute.
	healthFallback bool
	// noun follows the magnitude in immediate speech ("10 damage"); kinds
	// without a noun are spoken with verb instead.
	noun  string
	verb  string
	route waveRoute
	tag   string
}

var kindSpecs = [combat.ActionKindCount]kindSpec{
	combat.ActionDamage:          {narratable: true, attr: combat.AttrDamageAmount, healthFallback: true, noun: "damage", route: routeDamage},
	combat.ActionHeal:            {narratable: true, attr: combat.AttrHealAmount, healthFallback: true, noun: "heal", route: routeHeal},
	combat.ActionShield:          {narratable: true, attr: combat.AttrShieldAmount, noun: "shield", route: routeShield},
	combat.ActionBurn:            {narratable: true, attr: combat.AttrBurnAmount, noun: "burn", route: routeStatus, tag: "burn"},
	combat.ActionPoison:          {narratable: true, attr: combat.AttrPoisonAmount, noun: "poison", route: routeStatus, tag: "poison"},
	combat.ActionRegen:           {narratable: true, attr: combat.AttrRegenAmount, noun: "regen", route: routeStatus, tag: "regen"},
	combat.ActionGoldSteal:       {narratable: true, attr: combat.AttrGoldAmount, healthFallback: true, noun: "gold stolen", route: routeStatus, tag: "gold stolen"},
	combat.ActionMaxHealthUp:     {narratable: true, attr: combat.AttrMaxHealthAmount, healthFallback: true, noun: "max health gained", route: routeStatus, tag: "max health up"},
	combat.ActionMaxHealthDown:   {narratable: true, attr: combat.AttrMaxHealthAmount, healthFallback: true, noun: "max health lost", route: routeStatus, tag: "max health down"},
	combat.ActionSlow:            {narratable: true, attr: combat.AttrSlowAmount, noun: "slow", route: routeStatus, tag: "slow"},
	combat.ActionFreeze:          {narratable: true, attr: combat.AttrFreezeAmount, noun: "freeze", route: routeStatus, tag: "freeze"},
	combat.ActionHaste:           {narratable: true, attr: combat.AttrHasteAmount, noun: "haste", route: routeStatus, tag: "haste"},
	combat.ActionCharge:          {narratable: true, attr: combat.AttrChargeAmount, noun: "charge", route: routeStatus, tag: "charge"},
	combat.ActionReload:          {narratable: true, attr: combat.AttrReloadAmount, noun: "reload", route: routeReload},
	combat.ActionModifyAttribute: {narratable: true, attr: combat.AttrModifyAmount, noun: "buff", route: routeModify},
	combat.ActionRepair:          {narratable: true, verb: "repaired", route: routeRepair},
	combat.ActionDestroy:         {narratable: true, verb: "destroyed", route: routeTargetTag, tag: "destroyed"},
	combat.ActionDisable:         {narratable: true, verb: "disabled", route: routeTargetTag, tag: "disabled"},
	combat.ActionTransform:       {narratable: true, verb: "transformed", route: routeStatus, tag: "transformed"},
	combat.ActionUpgrade:         {narratable: true, verb: "upgraded", route: routeStatus, tag: "upgraded"},
	combat.ActionQuestComplete:   {narratable: true, verb: "quest complete", route: routeStatus, tag: "quest complete"},
	combat.ActionFlightStart:     {narratable: true, verb: "took flight", route: routeStatus, tag: "flying"},
	combat.ActionFlightStop:      {narratable: true, verb: "landed", route: routeStatus, tag: "landed"},
	combat.ActionFlightToggle:    {narratable: true, verb: "toggled flight", route: routeStatus, tag: "flight toggled"},
}

func specFor(kind combat.ActionKind) kindSpec {
	if kind < 0 || kind >= combat.ActionKindCount {
		return kindSpec{}
	}
	return kindSpecs[kind]
}

// IsNarratable reports whether kind is ever spoken. Everything else is
// only counted as a trigger.
func IsNarratable(kind combat.ActionKind) bool {
	return specFor(kind).narratable
}

// AttributeFor returns the attribute that sizes kind, or AttrNone.
func AttributeFor(kind combat.ActionKind) combat.AttributeKind {
	return specFor(kind).attr
}

// targetsItem reports whether the kind's phrase names its target.
func targetsItem(kind combat.ActionKind) bool {
	r := specFor(kind).route
	return r == routeRepair || r == routeTargetTag
}

// Classifier sizes and phrases single events. It holds no per-event state.
type Classifier struct {
	names         NameResolver
	attrs         AttributeProvider
	opponentLabel string
}

func NewClassifier(names NameResolver, attrs AttributeProvider) *Classifier {
	return &Classifier{names: names, attrs: attrs, opponentLabel: DefaultOpponentLabel}
}

func (c *Classifier) SetOpponentLabel(label string) {
	if label == "" {
		label = DefaultOpponentLabel
	}
	c.opponentLabel = label
}

// SourceName returns the acting entity's display name, or a generic word.
func (c *Classifier) SourceName(ev combat.Event) string {
	if ev.SourceName != "" {
		return ev.SourceName
	}
	if c.names != nil && ev.Source != "" {
		if n, ok := c.names.DisplayName(ev.Source); ok && n != "" {
			return n
		}
	}
	return genericSource
}

// TargetName returns the target's display name when the host knows it.
func (c *Classifier) TargetName(ev combat.Event) (string, bool) {
	if ev.TargetName != "" {
		return ev.TargetName, true
	}
	if c.names != nil && ev.Target != "" {
		if n, ok := c.names.DisplayName(ev.Target); ok && n != "" {
			return n, true
		}
	}
	return "", false
}

// ComputeMagnitude sizes an event from the source's attribute. Reload
// defaults to 1; damage, heal, gold steal and max-health changes fall back
// to the reported health delta.
func (c *Classifier) ComputeMagnitude(ev combat.Event) int {
	spec := specFor(ev.Kind)
	value := 0
	if spec.attr != combat.AttrNone && c.attrs != nil && ev.Source != "" {
		if v, ok := c.attrs.Attribute(ev.Source, spec.attr); ok {
			value = v
		}
	}
	if value != 0 {
		return value
	}
	if ev.Kind == combat.ActionReload {
		return 1
	}
	if spec.healthFallback {
		return abs(ev.HealthBefore - ev.HealthAfter)
	}
	return 0
}

// FormatImmediate phrases one event for individual mode. An enemy freeze
// yields only an interrupting one-word alert. It returns false when there
// is nothing worth saying.
func (c *Classifier) FormatImmediate(ev combat.Event) (Utterance, bool) {
	spec := specFor(ev.Kind)
	if !spec.narratable {
		return Utterance{}, false
	}
	if ev.Kind == combat.ActionFreeze && ev.Side == combat.SideOpponent {
		return Utterance{Text: "Frozen!", Interrupt: true}, true
	}

	prefix := ""
	if ev.Side == combat.SideOpponent {
		prefix = c.opponentLabel + " "
	}
	head := prefix + c.SourceName(ev) + ": "

	if spec.noun == "" {
		text := head + spec.verb
		if targetsItem(ev.Kind) {
			if target, ok := c.TargetName(ev); ok {
				text += " " + target
			}
		}
		return Utterance{Text: text}, true
	}

	mag := ev.Magnitude
	if mag == 0 || (mag < 0 && ev.Kind != combat.ActionModifyAttribute) {
		return Utterance{}, false
	}
	noun := spec.noun
	if ev.Kind == combat.ActionModifyAttribute && mag < 0 {
		noun = "debuff"
	}
	text := fmt.Sprintf("%s%s %s", head, humanize.Comma(int64(abs(mag))), noun)
	if ev.Kind == combat.ActionDamage && ev.Critical {
		text = "Critical hit! " + text
	}
	return Utterance{Text: text}, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
