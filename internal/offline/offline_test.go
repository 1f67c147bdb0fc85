package offline

import (
	"testing"

	"emberhollow/server/content"
	"emberhollow/server/internal/modifier"
	"emberhollow/server/internal/state"
)

func activeMiningState(t *testing.T, reg *content.Registry) *state.GameState {
	t.Helper()
	g := state.New(reg)
	sp := g.Skills["mining"]
	sp.WasActive = true
	sp.ActionID = "mine_copper"
	g.ActiveSkillID = "mining"
	return g
}

func TestSimulateCountsCycles(t *testing.T) {
	reg := content.Default()
	g := activeMiningState(t, reg)
	g.LastOnline = 1_000

	// One hour away at 3000ms per cycle.
	summary := Simulate(reg, g, 1_000+3_600_000)
	if summary == nil {
		t.Fatalf("expected a summary")
	}
	if summary.Cycles != 1200 {
		t.Fatalf("cycles = %d, want 1200", summary.Cycles)
	}
	if summary.Efficiency != 0.8 {
		t.Fatalf("efficiency = %v, want base 0.8", summary.Efficiency)
	}
	total := summary.Resources["copper_ore"] + summary.Resources["tin_ore"]
	// 1200 cycles, 1 ore each, crit adds 2 percent, at 0.8 efficiency.
	cycles := float64(1200)
	want := int(cycles * (1 + 0.02) * 0.8)
	if total < want-1 || total > want+1 {
		t.Fatalf("total ore = %d, want about %d", total, want)
	}
	if summary.XP == 0 {
		t.Fatalf("expected xp in summary")
	}
}

func TestSimulateCapsElapsedTime(t *testing.T) {
	reg := content.Default()
	g := activeMiningState(t, reg)
	g.LastOnline = 0

	threeDays := int64(3 * 24 * 60 * 60 * 1000)
	summary := Simulate(reg, g, threeDays)
	if summary == nil {
		t.Fatalf("expected a summary")
	}
	if summary.CappedMs != MaxElapsedMs {
		t.Fatalf("capped = %d, want %d", summary.CappedMs, MaxElapsedMs)
	}
	if summary.ElapsedMs != threeDays {
		t.Fatalf("elapsed = %d, want raw %d", summary.ElapsedMs, threeDays)
	}
	if summary.Cycles != MaxElapsedMs/3000 {
		t.Fatalf("cycles = %d, want %d", summary.Cycles, MaxElapsedMs/3000)
	}
}

func TestSimulateRequiresActiveSkill(t *testing.T) {
	reg := content.Default()
	g := state.New(reg)
	g.LastOnline = 1_000
	if s := Simulate(reg, g, 1_000_000); s != nil {
		t.Fatalf("idle state should produce no summary")
	}

	g = activeMiningState(t, reg)
	g.LastOnline = 0
	if s := Simulate(reg, g, 1_000_000); s != nil {
		t.Fatalf("zero last-online should produce no summary")
	}
}

func TestEfficiencyClamp(t *testing.T) {
	reg := content.Default()
	g := state.New(reg)
	set := modifier.Aggregate(reg, g, 0)
	if got := Efficiency(set); got != 0.8 {
		t.Fatalf("base efficiency = %v, want 0.8", got)
	}

	g.Prestige.Upgrades["dream_echo"] = 100
	set = modifier.Aggregate(reg, g, 0)
	if got := Efficiency(set); got != 1.5 {
		t.Fatalf("efficiency = %v, want clamp 1.5", got)
	}
}

func TestApplyDepositsSummary(t *testing.T) {
	reg := content.Default()
	g := state.New(reg)
	Apply(g, &Summary{
		SkillID:   "mining",
		Cycles:    10,
		Resources: map[string]int{"copper_ore": 8},
		RareDrops: map[string]int{"rough_gem": 1},
		XP:        40,
	})
	if g.Count("copper_ore") != 8 || g.Count("rough_gem") != 1 {
		t.Fatalf("resources not applied")
	}
	if g.Skills["mining"].TotalXP != 40 {
		t.Fatalf("xp = %d, want 40", g.Skills["mining"].TotalXP)
	}
	Apply(g, nil)
}
