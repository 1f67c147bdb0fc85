// Package offline grants bulk catch-up progress for time spent away.
// It reuses the live cycle math with expected values in place of random
// rolls, so catch-up and live play converge on the same rates.
package offline

import (
	"math"

	"emberhollow/server/content"
	"emberhollow/server/internal/modifier"
	"emberhollow/server/internal/skill"
	"emberhollow/server/internal/state"
)

// MaxElapsedMs caps creditable offline time at 24 hours.
const MaxElapsedMs = 24 * 60 * 60 * 1000

// Efficiency bounds. The base fraction rises with prestige but never
// exceeds full-rate.
const (
	baseEfficiency = 0.8
	maxEfficiency  = 1.5
)

// Summary is the result of one catch-up computation, shown to the
// player before (or as) it is applied.
type Summary struct {
	SkillID    string
	ActionID   string
	ElapsedMs  int64
	CappedMs   int64
	Efficiency float64
	Cycles     int64

	Resources map[string]int
	RareDrops map[string]int
	XP        int
}

// Efficiency computes the offline progress fraction from the aggregated
// prestige bonus.
func Efficiency(set *modifier.Set) float64 {
	e := baseEfficiency + modifier.OfflineEfficiencyBonus(set)
	if e > maxEfficiency {
		return maxEfficiency
	}
	return e
}

// Simulate computes catch-up progress for the skill that was active
// when the player went offline. It does not mutate the state; Apply
// deposits the summary.
func Simulate(reg *content.Registry, g *state.GameState, nowMs int64) *Summary {
	if g.LastOnline <= 0 || nowMs <= g.LastOnline {
		return nil
	}
	skillID := g.ActiveSkillID
	if skillID == "" {
		return nil
	}
	sp, err := g.Skill(skillID)
	if err != nil || !sp.WasActive || sp.ActionID == "" {
		return nil
	}
	action, ok := reg.Action(skillID, sp.ActionID)
	if !ok {
		return nil
	}

	elapsed := nowMs - g.LastOnline
	capped := elapsed
	if capped > MaxElapsedMs {
		capped = MaxElapsedMs
	}

	set := modifier.Aggregate(reg, g, nowMs)
	stats := modifier.FinalStats(reg, g, set, skillID)
	duration := skill.Duration(action, stats.SpeedMultiplier)
	cycles := int64(math.Floor(float64(capped) / duration))
	if cycles <= 0 {
		return nil
	}

	eff := Efficiency(set)
	summary := &Summary{
		SkillID:    skillID,
		ActionID:   action.ID,
		ElapsedMs:  elapsed,
		CappedMs:   capped,
		Efficiency: eff,
		Cycles:     cycles,
		Resources:  make(map[string]int),
		RareDrops:  make(map[string]int),
	}

	gain := float64(skill.BaseGain(action, stats))
	if action.CritChance > 0 {
		mult := action.CritMultiplier
		if mult <= 0 {
			mult = 2
		}
		gain *= 1 + action.CritChance*(mult-1)
	}
	gain *= 1 + skill.DoubleChance(action, stats)
	total := int(math.Floor(float64(cycles) * gain * eff))
	distributeYield(summary.Resources, action, total)

	summary.XP = int(math.Floor(float64(cycles) * float64(skill.CycleXP(action, stats)) * eff))

	for _, drop := range action.RareDrops {
		n := int(math.Floor(float64(cycles) * skill.RareChance(drop, stats) * eff))
		if n > 0 {
			summary.RareDrops[drop.Item] += n
		}
	}
	for _, extra := range action.ExtraResources {
		amount := extra.Amount
		if amount < 1 {
			amount = 1
		}
		n := int(math.Floor(float64(cycles) * extra.Chance * float64(amount) * eff))
		if n > 0 {
			summary.Resources[extra.Item] += n
		}
	}

	return summary
}

// distributeYield splits the total yield across weighted variants, or
// credits it all to the action's base resource.
func distributeYield(out map[string]int, action *content.ActionDefinition, total int) {
	if total <= 0 {
		return
	}
	if len(action.Variants) == 0 {
		if action.Resource != "" {
			out[action.Resource] += total
		}
		return
	}
	weightSum := 0.0
	for _, v := range action.Variants {
		if v.Weight > 0 {
			weightSum += v.Weight
		}
	}
	if weightSum <= 0 {
		out[action.Variants[0].Resource] += total
		return
	}
	credited := 0
	for _, v := range action.Variants {
		if v.Weight <= 0 {
			continue
		}
		n := int(math.Floor(float64(total) * v.Weight / weightSum))
		out[v.Resource] += n
		credited += n
	}
	// Rounding remainder goes to the heaviest variant.
	if rest := total - credited; rest > 0 {
		heaviest := action.Variants[0]
		for _, v := range action.Variants[1:] {
			if v.Weight > heaviest.Weight {
				heaviest = v
			}
		}
		out[heaviest.Resource] += rest
	}
}

// Apply deposits a summary into the state.
func Apply(g *state.GameState, summary *Summary) {
	if summary == nil {
		return
	}
	for item, n := range summary.Resources {
		_ = g.AddItem(item, n)
	}
	for item, n := range summary.RareDrops {
		_ = g.AddItem(item, n)
	}
	if summary.XP > 0 {
		_, _ = g.AddXP(summary.SkillID, summary.XP)
	}
	g.BumpStat("offlineCycles", int(summary.Cycles))
}
