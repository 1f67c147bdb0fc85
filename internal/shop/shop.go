// Package shop handles the item economy: store purchases, selling back
// to the vendor, and opening loot containers.
package shop

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"emberhollow/server/content"
	"emberhollow/server/internal/state"
	"emberhollow/server/logging"
	logecon "emberhollow/server/logging/economy"
)

var (
	ErrUnknownShop  = errors.New("unknown shop")
	ErrNotForSale   = errors.New("item not sold here")
	ErrOutOfStock   = errors.New("out of stock")
	ErrLevelTooLow  = errors.New("level too low")
	ErrCannotAfford = errors.New("cannot afford")
	ErrNotOpenable  = errors.New("item cannot be opened")
)

// CurrencyItem is the default currency when a shop entry names none.
const CurrencyItem = "coins"

type Engine struct {
	reg *content.Registry
	rng *rand.Rand
	pub logging.Publisher
}

func NewEngine(reg *content.Registry, rng *rand.Rand, pub logging.Publisher) *Engine {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Engine{reg: reg, rng: rng, pub: pub}
}

// EffectivePrice applies an entry's sale discount.
func EffectivePrice(entry *content.ShopEntry) int {
	if entry.SalePercent <= 0 {
		return entry.Price
	}
	return int(math.Floor(float64(entry.Price) * float64(100-entry.SalePercent) / 100))
}

// stockKey identifies one shop entry in the runtime stock map.
func stockKey(shopID, itemID string) string {
	return shopID + "/" + itemID
}

func findEntry(shop *content.ShopDefinition, itemID string) *content.ShopEntry {
	for _, cat := range shop.Categories {
		for i := range cat.Items {
			if cat.Items[i].ItemID == itemID {
				return &cat.Items[i]
			}
		}
	}
	return nil
}

// Buy purchases one unit of itemID from shopID. Stock of -1 never
// depletes; finite stock is tracked at runtime and persists in saves.
func (e *Engine) Buy(ctx context.Context, g *state.GameState, shopID, itemID string, tick uint64) error {
	shop, ok := e.reg.Shop(shopID)
	if !ok {
		return ErrUnknownShop
	}
	entry := findEntry(shop, itemID)
	if entry == nil {
		return ErrNotForSale
	}

	if entry.RequiresLevel > 0 && entry.Skill != "" {
		sp, err := g.Skill(entry.Skill)
		if err != nil || sp.Level < entry.RequiresLevel {
			return ErrLevelTooLow
		}
	}

	key := stockKey(shopID, itemID)
	stock, tracked := g.ShopStock[key]
	if !tracked {
		stock = entry.Stock
	}
	if stock == 0 {
		return ErrOutOfStock
	}

	currency := entry.Currency
	if currency == "" {
		currency = CurrencyItem
	}
	price := EffectivePrice(entry)
	if g.Count(currency) < price {
		return ErrCannotAfford
	}
	if price > 0 {
		if err := g.RemoveItem(currency, price, state.ReasonUsed); err != nil {
			return ErrCannotAfford
		}
	}
	if err := g.AddItem(itemID, 1); err != nil {
		return err
	}
	if stock > 0 {
		g.ShopStock[key] = stock - 1
	}
	logecon.ShopPurchase(ctx, e.pub, tick, logecon.PurchasePayload{
		Shop: shopID,
		Item: itemID,
		Cost: price,
	})
	return nil
}

// Sell trades amount of itemID for its base value in currency.
func (e *Engine) Sell(ctx context.Context, g *state.GameState, itemID string, amount int, tick uint64) (int, error) {
	def, ok := e.reg.Item(itemID)
	if !ok {
		return 0, state.ErrUnknownItem
	}
	if err := g.RemoveItem(itemID, amount, state.ReasonSold); err != nil {
		return 0, err
	}
	proceeds := def.Value * amount
	if proceeds > 0 {
		_ = g.AddItem(CurrencyItem, proceeds)
	}
	g.BumpStat("itemsSold", amount)
	logecon.ItemGranted(ctx, e.pub, tick, logecon.ItemPayload{
		Item:   CurrencyItem,
		Amount: proceeds,
		Reason: "sold " + itemID,
	})
	return proceeds, nil
}

// Open consumes one openable container and rolls its loot table.
// Returns what dropped.
func (e *Engine) Open(ctx context.Context, g *state.GameState, itemID string, tick uint64) (map[string]int, error) {
	def, ok := e.reg.Item(itemID)
	if !ok {
		return nil, state.ErrUnknownItem
	}
	if def.Openable == nil || len(def.Openable.Loot) == 0 {
		return nil, ErrNotOpenable
	}
	if err := g.RemoveItem(itemID, 1, state.ReasonConsumed); err != nil {
		return nil, err
	}
	g.BumpStat("itemsOpened", 1)

	rolls := def.Openable.Rolls
	if rolls < 1 {
		rolls = 1
	}
	loot := make(map[string]int)
	for i := 0; i < rolls; i++ {
		entry := e.pickLoot(def.Openable.Loot)
		amount := entry.Min
		if entry.Max > entry.Min {
			amount += e.rng.Intn(entry.Max - entry.Min + 1)
		}
		if amount < 1 {
			amount = 1
		}
		loot[entry.Item] += amount
	}
	for item, amount := range loot {
		_ = g.AddItem(item, amount)
		logecon.ItemGranted(ctx, e.pub, tick, logecon.ItemPayload{
			Item:   item,
			Amount: amount,
			Reason: "opened " + itemID,
		})
	}
	return loot, nil
}

func (e *Engine) pickLoot(entries []content.LootEntry) content.LootEntry {
	total := 0.0
	for _, entry := range entries {
		if entry.Weight > 0 {
			total += entry.Weight
		}
	}
	if total <= 0 {
		return entries[0]
	}
	roll := e.rng.Float64() * total
	for _, entry := range entries {
		if entry.Weight <= 0 {
			continue
		}
		roll -= entry.Weight
		if roll < 0 {
			return entry
		}
	}
	return entries[len(entries)-1]
}
