package core

import (
	"context"
	"errors"

	"emberhollow/server/internal/offline"
	"emberhollow/server/internal/prestige"
	"emberhollow/server/internal/state"
	logecon "emberhollow/server/logging/economy"
)

var ErrUnknownBuff = errors.New("unknown buff")

// mutate runs fn under the lock and broadcasts the new state when it
// succeeds.
func (c *Core) mutate(fn func(now int64, tick uint64) error) error {
	c.mu.Lock()
	err := fn(c.nowMs(), c.tick)
	var snap Snapshot
	if err == nil {
		snap = c.buildSnapshot()
	}
	c.mu.Unlock()
	if err == nil {
		c.changes.Publish(snap)
	}
	return err
}

func (c *Core) StartAction(ctx context.Context, skillID, actionID string) error {
	return c.mutate(func(now int64, tick uint64) error {
		return c.skills.StartAction(ctx, c.g, skillID, actionID, now, tick)
	})
}

func (c *Core) StopSkill(ctx context.Context, skillID string) error {
	return c.mutate(func(now int64, tick uint64) error {
		c.skills.StopSkill(ctx, c.g, skillID, tick)
		return nil
	})
}

func (c *Core) AddToQueue(ctx context.Context, recipeID string, quantity int) error {
	return c.mutate(func(now int64, tick uint64) error {
		return c.crafts.AddToQueue(ctx, c.g, recipeID, quantity, now, tick)
	})
}

func (c *Core) CancelCraft(ctx context.Context) error {
	return c.mutate(func(now int64, tick uint64) error {
		return c.crafts.CancelCraft(ctx, c.g, now, tick)
	})
}

func (c *Core) StartCombat(ctx context.Context, enemyID string) error {
	return c.mutate(func(now int64, tick uint64) error {
		return c.combat.StartCombat(ctx, c.g, enemyID, now, tick)
	})
}

func (c *Core) StopCombat(ctx context.Context) error {
	return c.mutate(func(now int64, tick uint64) error {
		return c.combat.StopCombat(ctx, c.g, tick)
	})
}

func (c *Core) SetCombatStyle(style string) error {
	return c.mutate(func(int64, uint64) error {
		switch style {
		case state.StyleAccurate, state.StyleAggressive, state.StyleDefensive, state.StyleRanged, state.StyleMagic:
		default:
			return errors.New("unknown combat style")
		}
		c.g.Player.CombatStyle = style
		if c.g.Combat != nil {
			c.g.Combat.PlayerStyle = style
		}
		return nil
	})
}

func (c *Core) EquipTool(itemID string) error {
	return c.mutate(func(int64, uint64) error {
		return c.g.EquipTool(c.reg, itemID)
	})
}

func (c *Core) UnequipTool(skillID string) error {
	return c.mutate(func(int64, uint64) error {
		return c.g.UnequipTool(skillID)
	})
}

func (c *Core) EquipItem(itemID string) error {
	return c.mutate(func(int64, uint64) error {
		return c.g.EquipItem(c.reg, itemID)
	})
}

func (c *Core) UnequipItem(slot string) error {
	return c.mutate(func(int64, uint64) error {
		return c.g.UnequipItem(slot)
	})
}

func (c *Core) BuyFromShop(ctx context.Context, shopID, itemID string) error {
	return c.mutate(func(now int64, tick uint64) error {
		return c.shop.Buy(ctx, c.g, shopID, itemID, tick)
	})
}

func (c *Core) SellItem(ctx context.Context, itemID string, amount int) (int, error) {
	var earned int
	err := c.mutate(func(now int64, tick uint64) error {
		var err error
		earned, err = c.shop.Sell(ctx, c.g, itemID, amount, tick)
		return err
	})
	return earned, err
}

func (c *Core) OpenItem(ctx context.Context, itemID string) (map[string]int, error) {
	var loot map[string]int
	err := c.mutate(func(now int64, tick uint64) error {
		var err error
		loot, err = c.shop.Open(ctx, c.g, itemID, tick)
		return err
	})
	return loot, err
}

// AddBuff grants a defined buff for its configured duration.
func (c *Core) AddBuff(buffID string) error {
	return c.mutate(func(now int64, tick uint64) error {
		def, ok := c.reg.Buff(buffID)
		if !ok {
			return ErrUnknownBuff
		}
		if def.DurationMs <= 0 {
			c.g.AddPermanentBuff(buffID)
			return nil
		}
		c.g.AddBuff(buffID, now+int64(def.DurationMs))
		return nil
	})
}

// ApplyPermanentBonus mints a never-expiring stat buff and attaches it.
func (c *Core) ApplyPermanentBonus(stat string, value float64) error {
	return c.mutate(func(int64, uint64) error {
		id := c.reg.RegisterPermanentBonus(stat, value)
		c.g.AddPermanentBuff(id)
		return nil
	})
}

func (c *Core) PurchasePrestigeUpgrade(ctx context.Context, upgradeID string) error {
	return c.mutate(func(now int64, tick uint64) error {
		cost, err := prestige.Purchase(c.reg, c.g, upgradeID)
		if err != nil {
			return err
		}
		logecon.PrestigePurchased(ctx, c.pub, tick, logecon.PurchasePayload{
			Item: upgradeID,
			Cost: cost,
		})
		return nil
	})
}

// OfflineSummary reports what the last load granted for time away, or
// nil when the session started fresh.
func (c *Core) OfflineSummary() *offline.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastOffline
}

// ResetGame discards all progress, prestige included, and persists the
// fresh state immediately.
func (c *Core) ResetGame(ctx context.Context) {
	c.mu.Lock()
	c.g = state.New(c.reg)
	c.lastOffline = nil
	snap := c.buildSnapshot()
	c.mu.Unlock()
	c.changes.Publish(snap)
	c.Save(ctx)
}
