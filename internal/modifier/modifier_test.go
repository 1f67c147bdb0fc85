package modifier

import (
	"math"
	"testing"

	"emberhollow/server/content"
	"emberhollow/server/internal/state"
)

func TestParseKey(t *testing.T) {
	cases := []struct {
		in   string
		want Key
		ok   bool
	}{
		{"mining_speed_percent", Key{"mining", KindSpeedPercent}, true},
		{"global_xp_percent", Key{GlobalSkill, KindXPPercent}, true},
		{"fishing_double_percent", Key{"fishing", KindDoublePercent}, true},
		{"offline_efficiency", Key{GlobalSkill, KindOfflineEfficiency}, true},
		{"mining_amount_flat", Key{"mining", KindAmountFlat}, true},
		{"speed_percent", Key{}, false},
		{"not_a_modifier", Key{}, false},
		{"", Key{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseKey(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseKey(%q) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestUnknownKeysContributeZero(t *testing.T) {
	set := NewSet()
	set.AddNamed("totally_unknown", 50)
	if got := set.SkillTotal("mining", KindSpeedPercent); got != 0 {
		t.Fatalf("unknown key leaked into totals: %v", got)
	}
}

func TestAggregateSources(t *testing.T) {
	reg := content.Default()
	g := state.New(reg)
	g.Player.Tools["mining"] = "gilded_pickaxe"
	g.AddBuff("gold_rush", 10_000)
	g.Prestige.Upgrades["timeless_knowledge"] = 2

	set := Aggregate(reg, g, 5_000)

	// gilded_pickaxe carries mining_rare_percent 10, gold_rush adds 15.
	if got := set.SkillTotal("mining", KindRarePercent); got != 25 {
		t.Fatalf("rare percent = %v, want 25", got)
	}
	// timeless_knowledge grants 5 global xp percent per level.
	if got := set.SkillTotal("woodcutting", KindXPPercent); got != 10 {
		t.Fatalf("global xp percent = %v, want 10", got)
	}
}

func TestAggregateSkipsExpiredBuffs(t *testing.T) {
	reg := content.Default()
	g := state.New(reg)
	g.AddBuff("gold_rush", 1_000)

	set := Aggregate(reg, g, 2_000)
	if got := set.SkillTotal("mining", KindSpeedPercent); got != 0 {
		t.Fatalf("expired buff contributed %v", got)
	}
}

func TestFinalStatsCombinesToolAndPercents(t *testing.T) {
	reg := content.Default()
	g := state.New(reg)
	g.Player.Tools["mining"] = "gilded_pickaxe"
	g.AddBuff("miners_focus", 10_000)

	set := Aggregate(reg, g, 0)
	stats := FinalStats(reg, g, set, "mining")

	// tool 1.5x, buff +20 percent.
	if math.Abs(stats.SpeedMultiplier-1.8) > 1e-9 {
		t.Fatalf("speed = %v, want 1.8", stats.SpeedMultiplier)
	}
	if stats.DoubleChance != 0.05 {
		t.Fatalf("double chance = %v, want 0.05", stats.DoubleChance)
	}
	if stats.XPMultiplier != 1 {
		t.Fatalf("xp multiplier = %v, want 1", stats.XPMultiplier)
	}
}

func TestOfflineEfficiencyBonus(t *testing.T) {
	reg := content.Default()
	g := state.New(reg)
	g.Prestige.Upgrades["dream_echo"] = 3

	set := Aggregate(reg, g, 0)
	got := OfflineEfficiencyBonus(set)
	if got < 0.299 || got > 0.301 {
		t.Fatalf("offline efficiency bonus = %v, want 0.3", got)
	}
}
