package state

// Reasons recorded against ResourceStats when inventory changes.
const (
	ReasonGathered = "gathered"
	ReasonCrafted  = "crafted"
	ReasonLoot     = "loot"
	ReasonPurchase = "purchase"
	ReasonReward   = "reward"
	ReasonUsed     = "used"
	ReasonSold     = "sold"
	ReasonConsumed = "consumed"
)

// AddItem grants amount of itemID. Gains are tallied in ResourceStats.
func (g *GameState) AddItem(itemID string, amount int) error {
	if !ValidAmount(float64(amount)) {
		return ErrInvalidAmount
	}
	g.Inventory[itemID] += amount
	g.resourceStats(itemID).Gained += amount
	return nil
}

// RemoveItem takes amount of itemID out of the inventory, recording the
// reason. Removing more than is held fails without partial effect.
func (g *GameState) RemoveItem(itemID string, amount int, reason string) error {
	if !ValidAmount(float64(amount)) {
		return ErrInvalidAmount
	}
	held := g.Inventory[itemID]
	if held < amount {
		return ErrInsufficient
	}
	if held == amount {
		delete(g.Inventory, itemID)
	} else {
		g.Inventory[itemID] = held - amount
	}
	stats := g.resourceStats(itemID)
	switch reason {
	case ReasonSold:
		stats.Sold += amount
	default:
		stats.Used += amount
	}
	return nil
}

// Count returns how many of itemID the player holds.
func (g *GameState) Count(itemID string) int {
	return g.Inventory[itemID]
}

func (g *GameState) resourceStats(itemID string) *ResourceStats {
	stats, ok := g.ResourceStats[itemID]
	if !ok {
		stats = &ResourceStats{}
		g.ResourceStats[itemID] = stats
	}
	return stats
}
