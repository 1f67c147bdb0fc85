package economy

import (
	"context"

	"emberhollow/server/logging"
)

const (
	// EventItemGranted is emitted when items are credited to the inventory.
	EventItemGranted logging.EventType = "economy.item_granted"
	// EventItemGrantFailed is emitted when an item credit is rejected.
	EventItemGrantFailed logging.EventType = "economy.item_grant_failed"
	// EventShopPurchase is emitted on a successful shop purchase.
	EventShopPurchase logging.EventType = "economy.shop_purchase"
	// EventPrestigePurchased is emitted when a prestige upgrade level is bought.
	EventPrestigePurchased logging.EventType = "economy.prestige_purchased"
)

type ItemPayload struct {
	Item   string `json:"item"`
	Amount int    `json:"amount"`
	Reason string `json:"reason,omitempty"`
}

type PurchasePayload struct {
	Shop string `json:"shop,omitempty"`
	Item string `json:"item"`
	Cost int    `json:"cost"`
}

func itemRef(itemID string) logging.EntityRef {
	return logging.EntityRef{ID: itemID, Kind: logging.EntityKindItem}
}

// ItemGranted publishes a successful inventory credit.
func ItemGranted(ctx context.Context, pub logging.Publisher, tick uint64, payload ItemPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventItemGranted,
		Tick:     tick,
		Actor:    itemRef(payload.Item),
		Severity: logging.SeverityDebug,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}

// ItemGrantFailed publishes a rejected inventory credit.
func ItemGrantFailed(ctx context.Context, pub logging.Publisher, tick uint64, payload ItemPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventItemGrantFailed,
		Tick:     tick,
		Actor:    itemRef(payload.Item),
		Severity: logging.SeverityWarn,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}

// ShopPurchase publishes a successful shop purchase.
func ShopPurchase(ctx context.Context, pub logging.Publisher, tick uint64, payload PurchasePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventShopPurchase,
		Tick:     tick,
		Actor:    itemRef(payload.Item),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}

// PrestigePurchased publishes a prestige upgrade purchase.
func PrestigePurchased(ctx context.Context, pub logging.Publisher, tick uint64, payload PurchasePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPrestigePurchased,
		Tick:     tick,
		Actor:    itemRef(payload.Item),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}
