package combat

import "strings"

// ActionKind is the closed set of effect kinds the host can report.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionPassive
	ActionCooldownChange
	ActionReposition

	ActionDamage
	ActionHeal
	ActionShield
	ActionBurn
	ActionPoison
	ActionRegen
	ActionGoldSteal
	ActionMaxHealthUp
	ActionMaxHealthDown
	ActionSlow
	ActionFreeze
	ActionHaste
	ActionCharge
	ActionReload
	ActionModifyAttribute
	ActionRepair
	ActionDestroy
	ActionDisable
	ActionTransform
	ActionUpgrade
	ActionQuestComplete
	ActionFlightStart
	ActionFlightStop
	ActionFlightToggle

	ActionKindCount
)

var actionNames = [ActionKindCount]string{
	ActionUnknown:         "unknown",
	ActionPassive:         "passive",
	ActionCooldownChange:  "cooldown-change",
	ActionReposition:      "reposition",
	ActionDamage:          "damage",
	ActionHeal:            "heal",
	ActionShield:          "shield",
	ActionBurn:            "burn",
	ActionPoison:          "poison",
	ActionRegen:           "regen",
	ActionGoldSteal:       "gold-steal",
	ActionMaxHealthUp:     "max-health-up",
	ActionMaxHealthDown:   "max-health-down",
	ActionSlow:            "slow",
	ActionFreeze:          "freeze",
	ActionHaste:           "haste",
	ActionCharge:          "charge",
	ActionReload:          "reload",
	ActionModifyAttribute: "modify-attribute",
	ActionRepair:          "repair",
	ActionDestroy:         "destroy",
	ActionDisable:         "disable",
	ActionTransform:       "transform",
	ActionUpgrade:         "upgrade",
	ActionQuestComplete:   "quest-complete",
	ActionFlightStart:     "flight-start",
	ActionFlightStop:      "flight-stop",
	ActionFlightToggle:    "flight-toggle",
}

func (k ActionKind) String() string {
	if k < 0 || k >= ActionKindCount {
		return actionNames[ActionUnknown]
	}
	return actionNames[k]
}

// ParseActionKind maps a kebab-case name to its kind. Underscores and case
// are tolerated so scenario files can use either spelling.
func ParseActionKind(s string) (ActionKind, bool) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for k, name := range actionNames {
		if name == norm {
			return ActionKind(k), true
		}
	}
	return ActionUnknown, false
}

// AttributeKind names the numeric attribute that carries an action's size.
type AttributeKind int

const (
	AttrNone AttributeKind = iota
	AttrDamageAmount
	AttrHealAmount
	AttrShieldAmount
	AttrBurnAmount
	AttrPoisonAmount
	AttrRegenAmount
	AttrGoldAmount
	AttrMaxHealthAmount
	AttrSlowAmount
	AttrFreezeAmount
	AttrHasteAmount
	AttrChargeAmount
	AttrReloadAmount
	AttrModifyAmount

	AttributeKindCount
)

var attributeNames = [AttributeKindCount]string{
	AttrNone:            "",
	AttrDamageAmount:    "damage",
	AttrHealAmount:      "heal",
	AttrShieldAmount:    "shield",
	AttrBurnAmount:      "burn",
	AttrPoisonAmount:    "poison",
	AttrRegenAmount:     "regen",
	AttrGoldAmount:      "gold",
	AttrMaxHealthAmount: "max_health",
	AttrSlowAmount:      "slow",
	AttrFreezeAmount:    "freeze",
	AttrHasteAmount:     "haste",
	AttrChargeAmount:    "charge",
	AttrReloadAmount:    "reload",
	AttrModifyAmount:    "modify",
}

func (a AttributeKind) String() string {
	if a < 0 || a >= AttributeKindCount {
		return ""
	}
	return attributeNames[a]
}

// ParseAttributeKind maps the snake_case key used in scenario files.
func ParseAttributeKind(s string) (AttributeKind, bool) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if norm == "" {
		return AttrNone, false
	}
	for a, name := range attributeNames {
		if name == norm {
			return AttributeKind(a), true
		}
	}
	return AttrNone, false
}
