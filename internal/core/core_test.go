package core

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"emberhollow/server/content"
	"emberhollow/server/internal/config"
	"emberhollow/server/internal/save"
)

type memStore struct {
	data map[string][]byte
	fail bool
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (s *memStore) Put(_ context.Context, key string, value []byte) error {
	if s.fail {
		return errors.New("disk full")
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, save.ErrNotFound
	}
	return v, nil
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCore(t *testing.T, store Storage) (*Core, *fakeClock) {
	t.Helper()
	cfg := config.Config{
		TickInterval:     100 * time.Millisecond,
		AutosaveInterval: time.Hour,
	}
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	if store == nil {
		store = newMemStore()
	}
	rng := rand.New(rand.NewSource(7))
	return New(cfg, content.Default(), store, nil, rng, clock.Now), clock
}

func TestAdvanceCompletesCycles(t *testing.T) {
	c, clock := newTestCore(t, nil)
	ctx := context.Background()

	if err := c.StartAction(ctx, "woodcutting", "chop_tree"); err != nil {
		t.Fatalf("StartAction: %v", err)
	}
	for i := 0; i < 30; i++ {
		clock.advance(100 * time.Millisecond)
		c.Advance(ctx, 100*time.Millisecond)
	}

	snap := c.Snapshot()
	if snap.Inventory["wood"] < 1 {
		t.Fatalf("expected at least one wood after 3s, inventory %v", snap.Inventory)
	}
	wc := snap.Skills["woodcutting"]
	if !wc.IsActive || wc.TotalXP < 4 {
		t.Fatalf("woodcutting should be running with xp, got %+v", wc)
	}
	if snap.ActiveSkillID != "woodcutting" {
		t.Fatalf("active skill = %q", snap.ActiveSkillID)
	}
	if snap.TotalPlayMs != 3000 {
		t.Fatalf("play time = %d, want 3000", snap.TotalPlayMs)
	}
}

func TestCraftCompletesAcrossReload(t *testing.T) {
	store := newMemStore()
	c, clock := newTestCore(t, store)
	ctx := context.Background()

	if err := c.mutate(func(int64, uint64) error {
		if err := c.g.AddItem("copper_ore", 1); err != nil {
			return err
		}
		return c.g.AddItem("tin_ore", 1)
	}); err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	if err := c.AddToQueue(ctx, "smelt_bronze", 1); err != nil {
		t.Fatalf("AddToQueue: %v", err)
	}
	c.Save(ctx)

	// The deadline passed long before the process came back up.
	clock.advance(time.Hour)
	restored, _ := newTestCore(t, store)
	restored.clock = clock.Now
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	restored.Advance(ctx, 100*time.Millisecond)

	snap := restored.Snapshot()
	if snap.Inventory["bronze_bar"] != 1 {
		t.Fatalf("bronze_bar = %d after reload, want 1", snap.Inventory["bronze_bar"])
	}
	if snap.ActiveCraft != nil {
		t.Fatalf("overdue craft should have cleared, got %+v", snap.ActiveCraft)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newMemStore()
	c, clock := newTestCore(t, store)
	ctx := context.Background()

	if err := c.mutate(func(int64, uint64) error {
		return c.g.AddItem("iron_ore", 42)
	}); err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	if err := c.StartAction(ctx, "mining", "mine_copper"); err != nil {
		t.Fatalf("StartAction: %v", err)
	}
	c.Save(ctx)
	if _, ok := store.data[save.KeySave]; !ok {
		t.Fatal("save blob not written")
	}
	if got := string(store.data[save.KeyLastOnline]); got != "1700000000000" {
		t.Fatalf("last_online stamp = %q, want 1700000000000", got)
	}

	clock.advance(time.Hour)
	restored, _ := newTestCore(t, store)
	restored.clock = clock.Now
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	snap := restored.Snapshot()
	if snap.Inventory["iron_ore"] != 42 {
		t.Fatalf("iron_ore = %d after reload", snap.Inventory["iron_ore"])
	}
	if snap.ActiveSkillID != "mining" || !snap.Skills["mining"].IsActive {
		t.Fatalf("mining should have resumed, snapshot %+v", snap.Skills["mining"])
	}

	sum := restored.OfflineSummary()
	if sum == nil {
		t.Fatal("expected an offline summary after an hour away")
	}
	if sum.SkillID != "mining" || sum.Cycles == 0 {
		t.Fatalf("offline summary %+v", sum)
	}
	if snap.Inventory["copper_ore"] < sum.Resources["copper_ore"] {
		t.Fatalf("offline yield not applied: have %d, summary %d",
			snap.Inventory["copper_ore"], sum.Resources["copper_ore"])
	}
}

func TestSaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	store := newMemStore()
	c, _ := newTestCore(t, store)
	ctx := context.Background()

	if err := c.mutate(func(int64, uint64) error {
		return c.g.AddItem("coins", 100)
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store.fail = true
	c.Save(ctx)

	d := c.Diagnostics()
	if d.SaveFailures != 1 || d.SavesWritten != 0 {
		t.Fatalf("diagnostics after failed save: %+v", d)
	}
	if c.Snapshot().Inventory["coins"] != 100 {
		t.Fatal("in-memory state lost after failed save")
	}
}

func TestResetGameWipesEverything(t *testing.T) {
	store := newMemStore()
	c, _ := newTestCore(t, store)
	ctx := context.Background()

	if err := c.mutate(func(int64, uint64) error {
		c.g.AddItem("coins", 500)
		c.g.Prestige.Points = 9
		return nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c.ResetGame(ctx)

	snap := c.Snapshot()
	if len(snap.Inventory) != 0 {
		t.Fatalf("inventory survived reset: %v", snap.Inventory)
	}
	if snap.Prestige.Points != 0 {
		t.Fatalf("prestige survived reset: %+v", snap.Prestige)
	}
	if _, ok := store.data[save.KeySave]; !ok {
		t.Fatal("reset state not persisted")
	}
}

func TestPurchasePrestigeUpgrade(t *testing.T) {
	c, _ := newTestCore(t, nil)
	ctx := context.Background()

	if err := c.PurchasePrestigeUpgrade(ctx, "timeless_knowledge"); err == nil {
		t.Fatal("expected purchase to fail with zero points")
	}
	if err := c.mutate(func(int64, uint64) error {
		c.g.Prestige.Points = 150
		return nil
	}); err != nil {
		t.Fatalf("seed points: %v", err)
	}
	if err := c.PurchasePrestigeUpgrade(ctx, "timeless_knowledge"); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	snap := c.Snapshot()
	if snap.Prestige.Points != 50 || snap.Prestige.Upgrades["timeless_knowledge"] != 1 {
		t.Fatalf("prestige after purchase: %+v", snap.Prestige)
	}
}

func TestChangesFeedPublishesOnMutation(t *testing.T) {
	c, _ := newTestCore(t, nil)
	ch, cancel := c.Changes().Subscribe()
	defer cancel()

	if err := seedAndEquipTool(c); err != nil {
		t.Fatalf("equip: %v", err)
	}
	select {
	case snap := <-ch:
		if snap.Player.Tools["mining"] != "bronze_pickaxe" {
			t.Fatalf("snapshot tools = %v", snap.Player.Tools)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
}

// seedAndEquipTool grants a pickaxe and equips it in one locked step so
// the feed sees a single change.
func seedAndEquipTool(c *Core) error {
	return c.mutate(func(int64, uint64) error {
		if err := c.g.AddItem("bronze_pickaxe", 1); err != nil {
			return err
		}
		return c.g.EquipTool(c.reg, "bronze_pickaxe")
	})
}

func TestApplyPermanentBonusSurvivesPrune(t *testing.T) {
	c, clock := newTestCore(t, nil)
	ctx := context.Background()

	if err := c.ApplyPermanentBonus("strength", 3); err != nil {
		t.Fatalf("ApplyPermanentBonus: %v", err)
	}
	clock.advance(48 * time.Hour)
	c.Advance(ctx, 100*time.Millisecond)

	snap := c.Snapshot()
	found := false
	for _, b := range snap.Buffs {
		if b.ID == "perm_strength_3" && b.Permanent {
			found = true
		}
	}
	if !found {
		t.Fatalf("permanent buff missing after prune, buffs %v", snap.Buffs)
	}
}
