package sim

import (
	"fmt"
	"math/rand"

	"combat_narrator/internal/combat"
	"combat_narrator/internal/config"
)

// NewRand returns a deterministic source; seed 0 is treated as 1.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	src := rand.NewSource(seed)
	return rand.New(src)
}

// burstKinds are the kinds a random burst draws from, weighted by repetition.
var burstKinds = []combat.ActionKind{
	combat.ActionDamage, combat.ActionDamage, combat.ActionDamage, combat.ActionDamage,
	combat.ActionHeal, combat.ActionShield, combat.ActionBurn, combat.ActionPoison,
	combat.ActionFreeze, combat.ActionSlow, combat.ActionHaste, combat.ActionReload,
	combat.ActionModifyAttribute, combat.ActionRepair, combat.ActionPassive, combat.ActionCooldownChange,
}

// RandomScenario keeps base's combatants and items and replaces the script
// with n effects in quick bursts, followed by an end step.
func RandomScenario(base *config.Scenario, seed int64, n int) (*config.Scenario, error) {
	if len(base.Items) == 0 {
		return nil, fmt.Errorf("scenario %s: no items to draw from", base.Name)
	}
	rng := NewRand(seed)
	sc := *base
	sc.Name = fmt.Sprintf("%s#%d", base.Name, seed)
	sc.Script = make([]config.StepConfig, 0, n+1)

	at := 0.5
	for i := 0; i < n; i++ {
		// mostly tight bursts with the occasional pause long enough to flush a wave
		if rng.Intn(6) == 0 {
			at += 1.5 + rng.Float64()*2
		} else {
			at += 0.05 + rng.Float64()*0.4
		}
		src := base.Items[rng.Intn(len(base.Items))]
		kind := burstKinds[rng.Intn(len(burstKinds))]
		st := config.StepConfig{
			At:       round2(at),
			Type:     config.StepEffect,
			Item:     src.ID,
			Kind:     kind.String(),
			Critical: kind == combat.ActionDamage && rng.Intn(8) == 0,
			Amount:   1 + rng.Intn(20),
		}
		if kind == combat.ActionRepair {
			st.Target = base.Items[rng.Intn(len(base.Items))].ID
		}
		sc.Script = append(sc.Script, st)
	}
	sc.Script = append(sc.Script, config.StepConfig{At: round2(at + 3), Type: config.StepEnd})
	return &sc, nil
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
