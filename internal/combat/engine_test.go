package combat

import (
	"context"
	"math/rand"
	"testing"

	"emberhollow/server/content"
	"emberhollow/server/internal/state"
	"emberhollow/server/logging"
)

func newTestEngine(t *testing.T, seed int64) (*Engine, *content.Registry, *state.GameState) {
	t.Helper()
	reg := content.Default()
	return NewEngine(reg, rand.New(rand.NewSource(seed)), logging.NopPublisher()), reg, state.New(reg)
}

func TestStartCombatInitializesSession(t *testing.T) {
	eng, reg, g := newTestEngine(t, 1)
	ctx := context.Background()

	if err := eng.StartCombat(ctx, g, "goblin", 0, 0); err != nil {
		t.Fatalf("StartCombat: %v", err)
	}
	enemy, _ := reg.Enemy("goblin")
	if g.Combat.EnemyHP != enemy.HP {
		t.Fatalf("enemy hp = %d, want %d", g.Combat.EnemyHP, enemy.HP)
	}
	if g.Combat.EnemyTimer != EnemyInterval(enemy) {
		t.Fatalf("enemy timer = %v", g.Combat.EnemyTimer)
	}
	if err := eng.StartCombat(ctx, g, "goblin", 0, 0); err != ErrAlreadyFighting {
		t.Fatalf("expected ErrAlreadyFighting, got %v", err)
	}
}

func TestStartCombatUnknownEnemy(t *testing.T) {
	eng, _, g := newTestEngine(t, 1)
	if err := eng.StartCombat(context.Background(), g, "dragon", 0, 0); err != ErrUnknownEnemy {
		t.Fatalf("expected ErrUnknownEnemy, got %v", err)
	}
}

func TestFightRunsToCompletion(t *testing.T) {
	eng, _, g := newTestEngine(t, 99)
	ctx := context.Background()
	g.Skills["attack"].Level = 40
	g.Skills["strength"].Level = 40
	g.Skills["defence"].Level = 40

	if err := eng.StartCombat(ctx, g, "giant_rat", 0, 0); err != nil {
		t.Fatalf("StartCombat: %v", err)
	}
	var result string
	for i := 0; i < 10_000 && result == ""; i++ {
		result = eng.Tick(ctx, g, 100, uint64(i))
	}
	if result != ResultWin {
		t.Fatalf("result = %q, want win against a giant rat at level 40", result)
	}
	if g.Combat != nil {
		t.Fatalf("session should be cleared after the fight")
	}
	if g.Skills["hp"].TotalXP == 0 || g.Skills["attack"].TotalXP == 0 {
		t.Fatalf("victory xp not granted: hp=%d attack=%d", g.Skills["hp"].TotalXP, g.Skills["attack"].TotalXP)
	}
	if g.Count("bones") == 0 {
		t.Fatalf("guaranteed drop missing")
	}
	if g.Player.Stats["enemiesDefeated"] != 1 {
		t.Fatalf("enemiesDefeated = %d", g.Player.Stats["enemiesDefeated"])
	}
}

func TestLossRestoresHP(t *testing.T) {
	eng, _, g := newTestEngine(t, 3)
	ctx := context.Background()
	g.Player.HP = 2
	g.Player.MaxHP = 2

	if err := eng.StartCombat(ctx, g, "ember_fiend", 0, 0); err != nil {
		t.Fatalf("StartCombat: %v", err)
	}
	var result string
	for i := 0; i < 10_000 && result == ""; i++ {
		result = eng.Tick(ctx, g, 100, uint64(i))
	}
	if result != ResultLose {
		t.Fatalf("result = %q, want lose at 2 hp", result)
	}
	if g.Player.HP != g.Player.MaxHP {
		t.Fatalf("hp should reset to max after a loss, got %d", g.Player.HP)
	}
}

func TestFleeIsFreeByDefault(t *testing.T) {
	eng, _, g := newTestEngine(t, 1)
	ctx := context.Background()

	if err := eng.StopCombat(ctx, g, 0); err != ErrNotFighting {
		t.Fatalf("expected ErrNotFighting, got %v", err)
	}
	eng.StartCombat(ctx, g, "goblin", 0, 0)
	if err := eng.StopCombat(ctx, g, 0); err != nil {
		t.Fatalf("StopCombat: %v", err)
	}
	if g.Combat != nil {
		t.Fatalf("flee should end the session")
	}
	if g.Player.HP != g.Player.MaxHP {
		t.Fatalf("default flee must not cost hp")
	}
}

func TestFleePenaltyConfigurable(t *testing.T) {
	eng, _, g := newTestEngine(t, 1)
	ctx := context.Background()
	eng.FleePenaltyPercent = 50

	eng.StartCombat(ctx, g, "goblin", 0, 0)
	if err := eng.StopCombat(ctx, g, 0); err != nil {
		t.Fatalf("StopCombat: %v", err)
	}
	if g.Player.HP != g.Player.MaxHP/2 {
		t.Fatalf("hp = %d, want %d", g.Player.HP, g.Player.MaxHP/2)
	}
}

func TestTimerOvershootCarriesForward(t *testing.T) {
	eng, _, g := newTestEngine(t, 1)
	ctx := context.Background()
	eng.StartCombat(ctx, g, "goblin", 0, 0)

	// One giant delta: both sides act, leftover carries into the timers.
	before := g.Combat.PlayerTimer
	eng.Tick(ctx, g, before+150, 0)
	if g.Combat == nil {
		t.Fatalf("fight ended unexpectedly early")
	}
	want := PlayerInterval(1) - 150
	if g.Combat.PlayerTimer != want {
		t.Fatalf("player timer = %v, want %v", g.Combat.PlayerTimer, want)
	}
}

func TestResolveLoadoutReadsEquipment(t *testing.T) {
	eng, reg, g := newTestEngine(t, 1)
	_ = eng
	g.AddItem("ember_staff", 1)
	g.AddItem("iron_shield", 1)
	g.Skills["magic"].Level = 12
	g.Skills["defence"].Level = 10
	if err := g.EquipItem(reg, "ember_staff"); err != nil {
		t.Fatalf("EquipItem: %v", err)
	}

	l := ResolveLoadout(reg, g, state.StyleMagic)
	if l.CombatType != "magic" || l.Element != "fire" {
		t.Fatalf("loadout = %+v", l)
	}
	if l.WeaponPower != 9 || l.WeaponAccuracy != 9 {
		t.Fatalf("weapon stats = power %v accuracy %v", l.WeaponPower, l.WeaponAccuracy)
	}
	if l.TotalDefence != 10 {
		t.Fatalf("total defence = %v, want 10", l.TotalDefence)
	}
}
