package modifier

import (
	"emberhollow/server/content"
	"emberhollow/server/internal/state"
)

// prestigeKeys maps upgrade effect types onto aggregation keys. Upgrades
// with unknown effect types contribute nothing.
var prestigeKeys = map[string]Key{
	content.EffectXPPercentGlobal:     {Skill: GlobalSkill, Kind: KindXPPercent},
	content.EffectAmountPercentGlobal: {Skill: GlobalSkill, Kind: KindAmountPercent},
	content.EffectRareDropPercent:     {Skill: GlobalSkill, Kind: KindRarePercent},
	content.EffectSpeedPercentGlobal:  {Skill: GlobalSkill, Kind: KindSpeedPercent},
	content.EffectOfflineEfficiency:   {Skill: GlobalSkill, Kind: KindOfflineEfficiency},
}

// Aggregate walks every active bonus source and folds it into one Set.
// Expired buffs contribute nothing; callers prune them separately.
func Aggregate(reg *content.Registry, g *state.GameState, nowMs int64) *Set {
	set := NewSet()

	for _, itemID := range g.Player.Tools {
		addItemModifiers(reg, set, itemID)
	}
	for _, itemID := range g.Player.Equipment {
		addItemModifiers(reg, set, itemID)
	}

	for _, buff := range g.Buffs {
		if !buff.Permanent && buff.ExpiresAt <= nowMs {
			continue
		}
		def, ok := reg.Buff(buff.ID)
		if !ok {
			continue
		}
		for name, v := range def.Modifiers {
			set.AddNamed(name, v)
		}
	}

	for upgradeID, level := range g.Prestige.Upgrades {
		if level <= 0 {
			continue
		}
		def, ok := reg.Prestige(upgradeID)
		if !ok {
			continue
		}
		key, ok := prestigeKeys[def.EffectType]
		if !ok {
			continue
		}
		set.Add(key, def.BonusPerLevel*float64(level))
	}

	return set
}

func addItemModifiers(reg *content.Registry, set *Set, itemID string) {
	def, ok := reg.Item(itemID)
	if !ok {
		return
	}
	for name, v := range def.Modifiers {
		set.AddNamed(name, v)
	}
}

// SkillStats is the final multiplier bundle for one skill's actions.
type SkillStats struct {
	SpeedMultiplier float64
	XPMultiplier    float64
	AmountFlat      float64
	AmountPercent   float64
	RarePercent     float64
	DoubleChance    float64
}

// FinalStats combines the aggregated set with the equipped tool's
// intrinsic stats for skillID.
func FinalStats(reg *content.Registry, g *state.GameState, set *Set, skillID string) SkillStats {
	stats := SkillStats{SpeedMultiplier: 1, XPMultiplier: 1}

	if toolID := g.Player.Tools[skillID]; toolID != "" {
		if tool, ok := reg.Item(toolID); ok {
			if tool.Stats.SpeedMultiplier > 0 {
				stats.SpeedMultiplier = tool.Stats.SpeedMultiplier
			}
			if tool.Stats.XPMultiplier > 0 {
				stats.XPMultiplier = tool.Stats.XPMultiplier
			}
			stats.DoubleChance += tool.Stats.DoubleChance
		}
	}

	stats.SpeedMultiplier *= 1 + set.SkillTotal(skillID, KindSpeedPercent)/100
	stats.XPMultiplier *= 1 + set.SkillTotal(skillID, KindXPPercent)/100
	stats.AmountFlat = set.SkillTotal(skillID, KindAmountFlat)
	stats.AmountPercent = set.SkillTotal(skillID, KindAmountPercent)
	stats.RarePercent = set.SkillTotal(skillID, KindRarePercent)
	stats.DoubleChance += set.SkillTotal(skillID, KindDoublePercent) / 100
	return stats
}

// OfflineEfficiencyBonus returns the aggregated offline efficiency
// fraction, typically from prestige upgrades.
func OfflineEfficiencyBonus(set *Set) float64 {
	return set.Value(Key{Skill: GlobalSkill, Kind: KindOfflineEfficiency})
}
