// Package prestige manages the permanent upgrade ledger. Upgrade costs
// grow geometrically with each purchase.
package prestige

import (
	"errors"
	"math"

	"emberhollow/server/content"
	"emberhollow/server/internal/state"
)

var (
	ErrUnknownUpgrade     = errors.New("unknown prestige upgrade")
	ErrMaxLevel           = errors.New("upgrade already at max level")
	ErrInsufficientPoints = errors.New("not enough prestige points")
)

// Cost returns the price of buying the next level when the upgrade is
// currently at level.
func Cost(def *content.PrestigeDefinition, level int) int {
	return int(math.Floor(float64(def.BaseCost) * math.Pow(def.CostMultiplier, float64(level))))
}

// Level returns the purchased level for upgradeID, zero when never bought.
func Level(g *state.GameState, upgradeID string) int {
	return g.Prestige.Upgrades[upgradeID]
}

// Purchase buys one level of upgradeID, deducting points. The ledger is
// untouched when any validation fails.
func Purchase(reg *content.Registry, g *state.GameState, upgradeID string) (int, error) {
	def, ok := reg.Prestige(upgradeID)
	if !ok {
		return 0, ErrUnknownUpgrade
	}
	level := g.Prestige.Upgrades[upgradeID]
	if def.MaxLevel > 0 && level >= def.MaxLevel {
		return 0, ErrMaxLevel
	}
	cost := Cost(def, level)
	if g.Prestige.Points < cost {
		return 0, ErrInsufficientPoints
	}
	g.Prestige.Points -= cost
	g.Prestige.Upgrades[upgradeID] = level + 1
	return cost, nil
}

// Award credits prestige points, the currency spent on upgrades.
func Award(g *state.GameState, points int) {
	if points <= 0 {
		return
	}
	g.Prestige.Points += points
}
