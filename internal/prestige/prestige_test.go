package prestige

import (
	"testing"

	"emberhollow/server/content"
	"emberhollow/server/internal/state"
)

func TestCostCurve(t *testing.T) {
	def := &content.PrestigeDefinition{BaseCost: 100, CostMultiplier: 1.5}
	if got := Cost(def, 0); got != 100 {
		t.Fatalf("cost at level 0 = %d, want 100", got)
	}
	if got := Cost(def, 2); got != 225 {
		t.Fatalf("cost at level 2 = %d, want 225", got)
	}
}

func TestPurchaseFlow(t *testing.T) {
	reg := content.Default()
	g := state.New(reg)

	if _, err := Purchase(reg, g, "nope"); err != ErrUnknownUpgrade {
		t.Fatalf("expected ErrUnknownUpgrade, got %v", err)
	}
	if _, err := Purchase(reg, g, "timeless_knowledge"); err != ErrInsufficientPoints {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	Award(g, 500)
	cost, err := Purchase(reg, g, "timeless_knowledge")
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if cost != 100 {
		t.Fatalf("cost = %d, want 100", cost)
	}
	if g.Prestige.Points != 400 {
		t.Fatalf("points = %d, want 400", g.Prestige.Points)
	}
	if Level(g, "timeless_knowledge") != 1 {
		t.Fatalf("level = %d, want 1", Level(g, "timeless_knowledge"))
	}
}

func TestPurchaseStopsAtMaxLevel(t *testing.T) {
	reg := content.Default()
	g := state.New(reg)
	def, _ := reg.Prestige("fortunes_favor")
	g.Prestige.Upgrades["fortunes_favor"] = def.MaxLevel
	Award(g, 1_000_000)

	if _, err := Purchase(reg, g, "fortunes_favor"); err != ErrMaxLevel {
		t.Fatalf("expected ErrMaxLevel, got %v", err)
	}
}
