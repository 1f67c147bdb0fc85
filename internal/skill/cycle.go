package skill

import (
	"context"
	"math"

	"emberhollow/server/content"
	"emberhollow/server/internal/modifier"
	"emberhollow/server/internal/state"
	logprog "emberhollow/server/logging/progression"
)

// CycleResult records everything one completed cycle produced. The
// offline simulator consumes the same record, so live and catch-up
// progress cannot drift apart.
type CycleResult struct {
	Resource  string
	Amount    int
	XP        int
	Crit      bool
	Doubled   bool
	RareDrops []string
	Extras    []content.Stack
	BuffID    string
}

// BaseGain resolves the pre-roll yield for one cycle: base amount plus
// flat bonuses, scaled by the aggregate amount percent, floored, never
// below one.
func BaseGain(action *content.ActionDefinition, stats modifier.SkillStats) int {
	gain := (float64(action.BaseAmount) + stats.AmountFlat) * (1 + stats.AmountPercent/100)
	n := int(math.Floor(gain))
	if n < 1 {
		n = 1
	}
	return n
}

// CycleXP resolves the experience one cycle grants after multipliers.
func CycleXP(action *content.ActionDefinition, stats modifier.SkillStats) int {
	xp := int(math.Floor(float64(action.BaseXP) * stats.XPMultiplier))
	if xp < 0 {
		xp = 0
	}
	return xp
}

// DoubleChance is the final probability of a doubled yield.
func DoubleChance(action *content.ActionDefinition, stats modifier.SkillStats) float64 {
	c := action.DoubleChance + stats.DoubleChance
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// RareChance is the final probability for one rare-drop entry.
func RareChance(drop content.RareDrop, stats modifier.SkillStats) float64 {
	c := drop.Chance * (1 + stats.RarePercent/100)
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// PerformCycle rolls one full cycle. It only produces the result record;
// applyCycle deposits it into the state.
func (e *Engine) PerformCycle(action *content.ActionDefinition, stats modifier.SkillStats) CycleResult {
	result := CycleResult{
		Resource: action.Resource,
		Amount:   BaseGain(action, stats),
		XP:       CycleXP(action, stats),
	}

	if len(action.Variants) > 0 {
		result.Resource = e.pickVariant(action.Variants)
	}

	if action.CritChance > 0 && e.rng.Float64() < action.CritChance {
		mult := action.CritMultiplier
		if mult <= 0 {
			mult = 2
		}
		result.Amount = int(math.Floor(float64(result.Amount) * mult))
		result.Crit = true
	}

	if e.rng.Float64() < DoubleChance(action, stats) {
		result.Amount *= 2
		result.Doubled = true
	}

	for _, drop := range action.RareDrops {
		if e.rng.Float64() < RareChance(drop, stats) {
			result.RareDrops = append(result.RareDrops, drop.Item)
		}
	}
	for _, extra := range action.ExtraResources {
		if e.rng.Float64() < extra.Chance {
			amount := extra.Amount
			if amount < 1 {
				amount = 1
			}
			result.Extras = append(result.Extras, content.Stack{Item: extra.Item, Amount: amount})
		}
	}

	if ab := action.ActionBuff; ab != nil && e.rng.Float64() < ab.Chance {
		result.BuffID = ab.BuffID
	}

	return result
}

func (e *Engine) pickVariant(variants []content.ResourceVariant) string {
	total := 0.0
	for _, v := range variants {
		if v.Weight > 0 {
			total += v.Weight
		}
	}
	if total <= 0 {
		return variants[0].Resource
	}
	roll := e.rng.Float64() * total
	for _, v := range variants {
		if v.Weight <= 0 {
			continue
		}
		roll -= v.Weight
		if roll < 0 {
			return v.Resource
		}
	}
	return variants[len(variants)-1].Resource
}

// applyCycle deposits a cycle result into the state and emits log events.
func (e *Engine) applyCycle(ctx context.Context, g *state.GameState, skillID string, action *content.ActionDefinition, result CycleResult, nowMs int64, tick uint64) {
	if result.Resource != "" && result.Amount > 0 {
		if err := g.AddItem(result.Resource, result.Amount); err == nil {
			g.BumpStat("resourcesGathered", result.Amount)
		}
	}
	for _, item := range result.RareDrops {
		_ = g.AddItem(item, 1)
	}
	for _, extra := range result.Extras {
		_ = g.AddItem(extra.Item, extra.Amount)
	}

	gained, _ := g.AddXP(skillID, result.XP)
	g.BumpStat("cyclesCompleted", 1)

	if result.BuffID != "" {
		if def, ok := e.reg.Buff(result.BuffID); ok {
			duration := int64(def.DurationMs)
			if ab := action.ActionBuff; ab != nil && ab.DurationMs > 0 {
				duration = int64(ab.DurationMs)
			}
			g.AddBuff(result.BuffID, nowMs+duration)
		}
	}

	logprog.CycleCompleted(ctx, e.pub, tick, skillID, logprog.CyclePayload{
		Action:   action.ID,
		Resource: result.Resource,
		Amount:   result.Amount,
		XP:       result.XP,
		Crit:     result.Crit,
		Doubled:  result.Doubled,
	})
	if gained > 0 {
		if sp, err := g.Skill(skillID); err == nil {
			logprog.LevelUp(ctx, e.pub, tick, skillID, logprog.LevelUpPayload{
				Level:    sp.Level,
				XPToNext: sp.XPToNext,
			})
		}
	}
}
