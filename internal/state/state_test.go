package state

import (
	"testing"

	"emberhollow/server/content"
)

func newTestState(t *testing.T) *GameState {
	t.Helper()
	return New(content.Default())
}

func TestXPToNextCurve(t *testing.T) {
	cases := []struct {
		level int
		want  int
	}{
		{1, 50},
		{2, 174},
		{10, 3154},
	}
	for _, tc := range cases {
		if got := XPToNext(tc.level); got != tc.want {
			t.Fatalf("XPToNext(%d) = %d, want %d", tc.level, got, tc.want)
		}
	}
}

func TestAddXPLevelsUp(t *testing.T) {
	g := newTestState(t)
	gained, err := g.AddXP("mining", 60)
	if err != nil {
		t.Fatalf("AddXP: %v", err)
	}
	if gained != 1 {
		t.Fatalf("expected 1 level gained, got %d", gained)
	}
	sp := g.Skills["mining"]
	if sp.Level != 2 {
		t.Fatalf("level = %d, want 2", sp.Level)
	}
	if sp.XP != 10 {
		t.Fatalf("carryover xp = %d, want 10", sp.XP)
	}
	if sp.XPToNext != XPToNext(2) {
		t.Fatalf("xpToNext = %d, want %d", sp.XPToNext, XPToNext(2))
	}
}

func TestAddXPMultiLevelInOneGrant(t *testing.T) {
	g := newTestState(t)
	gained, err := g.AddXP("mining", XPToNext(1)+XPToNext(2)+5)
	if err != nil {
		t.Fatalf("AddXP: %v", err)
	}
	if gained != 2 {
		t.Fatalf("expected 2 levels, got %d", gained)
	}
	if sp := g.Skills["mining"]; sp.Level != 3 || sp.XP != 5 {
		t.Fatalf("got level=%d xp=%d, want level=3 xp=5", sp.Level, sp.XP)
	}
}

func TestAddXPClampsAtMaxLevel(t *testing.T) {
	g := newTestState(t)
	sp := g.Skills["mining"]
	sp.Level = 99
	sp.XP = 123
	sp.XPToNext = 456
	if _, err := g.AddXP("mining", 1000); err != nil {
		t.Fatalf("AddXP: %v", err)
	}
	if sp.XP != 0 || sp.XPToNext != 0 {
		t.Fatalf("max level should clamp xp=%d xpToNext=%d to zero", sp.XP, sp.XPToNext)
	}
	if sp.Level != 99 {
		t.Fatalf("level moved past cap: %d", sp.Level)
	}
}

func TestHPLevelRaisesMaxHP(t *testing.T) {
	g := newTestState(t)
	g.Player.HP = 40
	if _, err := g.AddXP("hp", XPToNext(1)); err != nil {
		t.Fatalf("AddXP: %v", err)
	}
	if g.Player.MaxHP != DefaultMaxHP+HPPerLevel {
		t.Fatalf("maxHp = %d, want %d", g.Player.MaxHP, DefaultMaxHP+HPPerLevel)
	}
	if g.Player.HP != 40+HPPerLevel {
		t.Fatalf("hp = %d, want %d", g.Player.HP, 40+HPPerLevel)
	}
}

func TestInventoryRoundTrip(t *testing.T) {
	g := newTestState(t)
	if err := g.AddItem("copper_ore", 5); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := g.RemoveItem("copper_ore", 2, ReasonUsed); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if g.Count("copper_ore") != 3 {
		t.Fatalf("count = %d, want 3", g.Count("copper_ore"))
	}
	stats := g.ResourceStats["copper_ore"]
	if stats.Gained != 5 || stats.Used != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if err := g.RemoveItem("copper_ore", 10, ReasonUsed); err != ErrInsufficient {
		t.Fatalf("expected ErrInsufficient, got %v", err)
	}
	if g.Count("copper_ore") != 3 {
		t.Fatalf("failed removal must not change count")
	}
	if err := g.RemoveItem("copper_ore", 3, ReasonSold); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if _, held := g.Inventory["copper_ore"]; held {
		t.Fatalf("zeroed stacks should be deleted")
	}
	if stats.Sold != 3 {
		t.Fatalf("sold = %d, want 3", stats.Sold)
	}
}

func TestAddItemRejectsInvalidAmounts(t *testing.T) {
	g := newTestState(t)
	for _, bad := range []int{0, -3} {
		if err := g.AddItem("copper_ore", bad); err != ErrInvalidAmount {
			t.Fatalf("AddItem(%d) = %v, want ErrInvalidAmount", bad, err)
		}
	}
}

func TestBuffRefreshAndPrune(t *testing.T) {
	g := newTestState(t)
	g.AddBuff("gold_rush", 1000)
	g.AddBuff("gold_rush", 5000)
	if len(g.Buffs) != 1 {
		t.Fatalf("re-apply must refresh, got %d entries", len(g.Buffs))
	}
	if g.Buffs[0].ExpiresAt != 5000 {
		t.Fatalf("expiry = %d, want 5000", g.Buffs[0].ExpiresAt)
	}
	g.AddPermanentBuff("perm_strength_3")

	removed := g.PruneExpiredBuffs(6000)
	if len(removed) != 1 || removed[0] != "gold_rush" {
		t.Fatalf("removed = %v", removed)
	}
	if !g.HasBuff("perm_strength_3") {
		t.Fatalf("permanent buffs must survive pruning")
	}
}

func TestEquipToolSwapsWithInventory(t *testing.T) {
	g := newTestState(t)
	reg := content.Default()
	g.AddItem("bronze_pickaxe", 1)
	g.AddItem("iron_pickaxe", 1)

	if err := g.EquipTool(reg, "iron_pickaxe"); err != ErrLevelTooLow {
		t.Fatalf("expected level gate, got %v", err)
	}
	if err := g.EquipTool(reg, "bronze_pickaxe"); err != nil {
		t.Fatalf("EquipTool: %v", err)
	}
	if g.Count("bronze_pickaxe") != 0 {
		t.Fatalf("equipped tool should leave the inventory")
	}

	g.Skills["mining"].Level = 10
	if err := g.EquipTool(reg, "iron_pickaxe"); err != nil {
		t.Fatalf("EquipTool: %v", err)
	}
	if g.Player.Tools["mining"] != "iron_pickaxe" {
		t.Fatalf("tool = %q", g.Player.Tools["mining"])
	}
	if g.Count("bronze_pickaxe") != 1 {
		t.Fatalf("swapped tool should return to inventory")
	}

	if err := g.UnequipTool("mining"); err != nil {
		t.Fatalf("UnequipTool: %v", err)
	}
	if err := g.UnequipTool("mining"); err != ErrNothingEquipped {
		t.Fatalf("expected ErrNothingEquipped, got %v", err)
	}
}

func TestTwoHandedWeaponClaimsOffhand(t *testing.T) {
	g := newTestState(t)
	reg := content.Default()
	g.AddItem("bronze_sword", 1)
	g.AddItem("wooden_shield", 1)
	g.AddItem("shortbow", 1)

	if err := g.EquipItem(reg, "bronze_sword"); err != nil {
		t.Fatalf("EquipItem: %v", err)
	}
	if err := g.EquipItem(reg, "wooden_shield"); err != nil {
		t.Fatalf("EquipItem: %v", err)
	}
	if err := g.EquipItem(reg, "shortbow"); err != nil {
		t.Fatalf("EquipItem: %v", err)
	}
	if g.Player.Equipment[SlotOffhand] != "" {
		t.Fatalf("two-handed weapon must clear the offhand")
	}
	if g.Count("wooden_shield") != 1 || g.Count("bronze_sword") != 1 {
		t.Fatalf("displaced gear should be back in the inventory")
	}

	if err := g.EquipItem(reg, "wooden_shield"); err != nil {
		t.Fatalf("EquipItem: %v", err)
	}
	if g.Player.Equipment[SlotWeapon] != "" {
		t.Fatalf("equipping an offhand must displace a two-handed weapon")
	}
	if g.Count("shortbow") != 1 {
		t.Fatalf("shortbow should return to inventory")
	}
}
