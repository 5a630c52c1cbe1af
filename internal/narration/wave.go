package narration

import (
	"strings"

	"github.com/dustin/go-humanize"

	"combat_narrator/internal/clock"
	"combat_narrator/internal/combat"
)

// WaveBucket accumulates one side's batched events until the next flush.
type WaveBucket struct {
	TotalDamage   int
	TotalHeal     int
	TotalShield   int
	TotalBuffs    int
	TotalDebuffs  int
	TotalRepairs  int
	DamageByItem  map[string]int
	StatusEffects []string // insertion-ordered set
	ReloadsByItem map[string]int
	RepairedItems []string
	HadCritical   bool
}

func newWaveBucket() *WaveBucket {
	b := &WaveBucket{}
	b.Reset()
	return b
}

func (b *WaveBucket) Reset() {
	*b = WaveBucket{
		DamageByItem:  map[string]int{},
		ReloadsByItem: map[string]int{},
	}
}

// HasActivity reports whether anything was recorded since the last reset.
func (b *WaveBucket) HasActivity() bool {
	return b.TotalDamage != 0 || b.TotalHeal != 0 || b.TotalShield != 0 ||
		b.TotalBuffs != 0 || b.TotalDebuffs != 0 || b.TotalRepairs != 0 ||
		len(b.DamageByItem) > 0 || len(b.StatusEffects) > 0 ||
		len(b.ReloadsByItem) > 0 || len(b.RepairedItems) > 0
}

func (b *WaveBucket) addStatus(tag string) {
	for _, s := range b.StatusEffects {
		if s == tag {
			return
		}
	}
	b.StatusEffects = append(b.StatusEffects, tag)
}

// add routes one sized event into the bucket. Amounts that are not
// positive are dropped, the same as in the ledger.
func (b *WaveBucket) add(ev combat.Event, item, target string, hasTarget bool) {
	spec := specFor(ev.Kind)
	switch spec.route {
	case routeDamage:
		if ev.Magnitude <= 0 {
			return
		}
		b.TotalDamage += ev.Magnitude
		b.DamageByItem[item] += ev.Magnitude
	case routeHeal:
		if ev.Magnitude <= 0 {
			return
		}
		b.TotalHeal += ev.Magnitude
	case routeShield:
		if ev.Magnitude <= 0 {
			return
		}
		b.TotalShield += ev.Magnitude
	case routeStatus:
		b.addStatus(spec.tag)
	case routeReload:
		b.ReloadsByItem[item] += ev.Magnitude
	case routeModify:
		if ev.Magnitude < 0 {
			b.TotalDebuffs++
		} else {
			b.TotalBuffs++
		}
	case routeRepair:
		b.TotalRepairs++
		if hasTarget {
			b.RepairedItems = append(b.RepairedItems, target)
		}
	case routeTargetTag:
		if !hasTarget {
			b.addStatus(spec.tag)
			break
		}
		b.addStatus(spec.tag + " " + target)
	}
	if ev.Critical {
		b.HadCritical = true
	}
}

// topDamageItem is the item with the largest damage share; ties go to the
// alphabetically first name.
func (b *WaveBucket) topDamageItem() string {
	best, bestDmg := "", 0
	for item, dmg := range b.DamageByItem {
		if dmg > bestDmg || (dmg == bestDmg && item < best) {
			best, bestDmg = item, dmg
		}
	}
	return best
}

// Phrase renders the bucket as one sentence headed by label.
func (b *WaveBucket) Phrase(label string) string {
	var parts []string
	if b.TotalDamage > 0 {
		p := humanize.Comma(int64(b.TotalDamage)) + " damage"
		if item := b.topDamageItem(); item != "" {
			p += " (" + item + ")"
		}
		if b.HadCritical {
			p = "critical hit! " + p
		}
		parts = append(parts, p)
	}
	if b.TotalHeal > 0 {
		parts = append(parts, humanize.Comma(int64(b.TotalHeal))+" heal")
	}
	if b.TotalShield > 0 {
		parts = append(parts, humanize.Comma(int64(b.TotalShield))+" shield")
	}
	parts = append(parts, b.StatusEffects...)
	if len(b.ReloadsByItem) == 1 {
		for item := range b.ReloadsByItem {
			parts = append(parts, item+" reloaded")
		}
	} else if len(b.ReloadsByItem) > 1 {
		total := 0
		for _, n := range b.ReloadsByItem {
			total += n
		}
		parts = append(parts, count(total, "reload"))
	}
	if b.TotalBuffs > 0 {
		parts = append(parts, count(b.TotalBuffs, "buff"))
	}
	if b.TotalDebuffs > 0 {
		parts = append(parts, count(b.TotalDebuffs, "debuff"))
	}
	if b.TotalRepairs == 1 && len(b.RepairedItems) == 1 {
		parts = append(parts, "repaired "+b.RepairedItems[0])
	} else if b.TotalRepairs > 0 {
		parts = append(parts, count(b.TotalRepairs, "repair"))
	}
	if len(parts) == 0 {
		return ""
	}
	return label + ": " + strings.Join(parts, ", ")
}

// waveAggregator owns both buckets and the debounce timer.
type waveAggregator struct {
	buckets [2]*WaveBucket
	timer   clock.Timer
}

func newWaveAggregator() *waveAggregator {
	return &waveAggregator{buckets: [2]*WaveBucket{newWaveBucket(), newWaveBucket()}}
}

func (w *waveAggregator) bucket(side combat.Side) *WaveBucket {
	return w.buckets[sideIndex(side)]
}

func (w *waveAggregator) add(ev combat.Event, item, target string, hasTarget bool) {
	w.bucket(ev.Side).add(ev, item, target, hasTarget)
}

func (w *waveAggregator) hasActivity() bool {
	return w.buckets[0].HasActivity() || w.buckets[1].HasActivity()
}

// take renders every active side and clears both buckets.
func (w *waveAggregator) take(opponentLabel string) string {
	var sentences []string
	for _, side := range combat.Sides {
		b := w.bucket(side)
		if !b.HasActivity() {
			continue
		}
		label := "You"
		if side == combat.SideOpponent {
			label = opponentLabel
		}
		if p := b.Phrase(label); p != "" {
			sentences = append(sentences, p)
		}
	}
	w.reset()
	return strings.Join(sentences, ". ")
}

func (w *waveAggregator) cancel() {
	clock.Stop(w.timer)
	w.timer = nil
}

func (w *waveAggregator) reset() {
	w.buckets[0].Reset()
	w.buckets[1].Reset()
}
