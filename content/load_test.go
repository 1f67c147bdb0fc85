package content

import "testing"

func TestDefaultPackLoads(t *testing.T) {
	reg := Default()
	if _, ok := reg.Item("copper_ore"); !ok {
		t.Fatalf("expected copper_ore in pack")
	}
	if _, ok := reg.Skill("mining"); !ok {
		t.Fatalf("expected mining skill in pack")
	}
	if _, ok := reg.Skill("hp"); !ok {
		t.Fatalf("expected hp skill from multi-document file")
	}
	if _, ok := reg.Recipe("smelt_bronze"); !ok {
		t.Fatalf("expected smelt_bronze recipe")
	}
	if _, ok := reg.Enemy("goblin"); !ok {
		t.Fatalf("expected goblin enemy")
	}
	if _, ok := reg.Shop("general_store"); !ok {
		t.Fatalf("expected general_store shop")
	}
	if len(reg.Achievements()) == 0 {
		t.Fatalf("expected achievements in pack")
	}
}

func TestActionLookup(t *testing.T) {
	reg := Default()
	action, ok := reg.Action("mining", "mine_copper")
	if !ok {
		t.Fatalf("expected mine_copper action")
	}
	if action.BaseTimeMs != 3000 {
		t.Fatalf("mine_copper baseTime = %d, want 3000", action.BaseTimeMs)
	}
	if len(action.Variants) != 2 {
		t.Fatalf("mine_copper variants = %d, want 2", len(action.Variants))
	}
	if action.Variants[0].Resource != "copper_ore" || action.Variants[0].Weight != 8 {
		t.Fatalf("variant[0] = %+v, want copper_ore weight 8", action.Variants[0])
	}
	if action.Variants[1].Resource != "tin_ore" || action.Variants[1].Weight != 4 {
		t.Fatalf("variant[1] = %+v, want tin_ore weight 4", action.Variants[1])
	}
	if _, ok := reg.Action("mining", "chop_tree"); ok {
		t.Fatalf("chop_tree should not resolve under mining")
	}
	if _, ok := reg.Action("unknown", "mine_copper"); ok {
		t.Fatalf("unknown skill should not resolve actions")
	}
}

func TestTypeMultiplier(t *testing.T) {
	if got := TypeMultiplier(CombatTriangle, "melee", "ranged"); got != 1.25 {
		t.Fatalf("melee vs ranged = %v, want 1.25", got)
	}
	if got := TypeMultiplier(CombatTriangle, "melee", "magic"); got != 0.75 {
		t.Fatalf("melee vs magic = %v, want 0.75", got)
	}
	if got := TypeMultiplier(ElementMatrix, "fire", "nature"); got != 1.20 {
		t.Fatalf("fire vs nature = %v, want 1.20", got)
	}
	if got := TypeMultiplier(FamilyMatrix, "water", "demon"); got != 1.15 {
		t.Fatalf("water vs demon = %v, want 1.15", got)
	}
	if got := TypeMultiplier(CombatTriangle, "melee", "melee"); got != 1 {
		t.Fatalf("same type should be neutral, got %v", got)
	}
	if got := TypeMultiplier(ElementMatrix, "", "fire"); got != 1 {
		t.Fatalf("missing attacker element should be neutral, got %v", got)
	}
}

func TestPermanentBuffRoundTrip(t *testing.T) {
	reg := Default()
	id := PermanentBuffID("strength", 3)
	if id != "perm_strength_3" {
		t.Fatalf("unexpected id %q", id)
	}
	stat, value, ok := ParsePermanentBuffID(id)
	if !ok || stat != "strength" || value != 3 {
		t.Fatalf("parse %q = %q,%v,%v", id, stat, value, ok)
	}
	reg.RegisterPermanentBonus("strength", 3)
	buff, ok := reg.Buff(id)
	if !ok {
		t.Fatalf("expected dynamic buff registered")
	}
	if buff.DurationMs != 0 {
		t.Fatalf("permanent buff should have no duration, got %d", buff.DurationMs)
	}
	if _, _, ok := ParsePermanentBuffID("gold_rush"); ok {
		t.Fatalf("gold_rush should not parse as permanent bonus")
	}
}

func TestDynamicBuffNeverShadowsStatic(t *testing.T) {
	reg := Default()
	reg.RegisterDynamicBuff(&BuffDefinition{ID: "gold_rush", Name: "Fake"})
	buff, ok := reg.Buff("gold_rush")
	if !ok {
		t.Fatalf("expected gold_rush")
	}
	if buff.Name != "Gold Rush" {
		t.Fatalf("static buff shadowed by dynamic registration: %q", buff.Name)
	}
}

func TestRegistryRejectsDanglingReferences(t *testing.T) {
	reg := &Registry{
		items:   map[string]*ItemDefinition{},
		recipes: map[string]*RecipeDefinition{"bad": {ID: "bad", Inputs: []Stack{{Item: "missing", Amount: 1}}}},
		enemies: map[string]*EnemyDefinition{},
		shops:   map[string]*ShopDefinition{},
	}
	if err := reg.validateReferences(); err == nil {
		t.Fatalf("expected dangling input to fail validation")
	}
}
