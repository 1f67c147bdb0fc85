package crafting

import (
	"context"

	"emberhollow/server/logging"
)

const (
	// EventCraftStarted is emitted when a queued job becomes the active craft.
	EventCraftStarted logging.EventType = "crafting.craft_started"
	// EventCraftFinished is emitted when an active craft finalizes successfully.
	EventCraftFinished logging.EventType = "crafting.craft_finished"
	// EventCraftCancelled is emitted when a craft is cancelled or fails finalization.
	EventCraftCancelled logging.EventType = "crafting.craft_cancelled"
	// EventJobSkipped is emitted when an unaffordable queue entry is discarded.
	EventJobSkipped logging.EventType = "crafting.job_skipped"
)

type CraftPayload struct {
	Recipe   string `json:"recipe"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason,omitempty"`
}

func recipeRef(recipeID string) logging.EntityRef {
	return logging.EntityRef{ID: recipeID, Kind: logging.EntityKindItem}
}

// CraftStarted publishes the start of an active craft.
func CraftStarted(ctx context.Context, pub logging.Publisher, tick uint64, payload CraftPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCraftStarted,
		Tick:     tick,
		Actor:    recipeRef(payload.Recipe),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCrafting,
		Payload:  payload,
	})
}

// CraftFinished publishes a successful craft finalization.
func CraftFinished(ctx context.Context, pub logging.Publisher, tick uint64, payload CraftPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCraftFinished,
		Tick:     tick,
		Actor:    recipeRef(payload.Recipe),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCrafting,
		Payload:  payload,
	})
}

// CraftCancelled publishes a cancelled or failed craft.
func CraftCancelled(ctx context.Context, pub logging.Publisher, tick uint64, payload CraftPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCraftCancelled,
		Tick:     tick,
		Actor:    recipeRef(payload.Recipe),
		Severity: logging.SeverityWarn,
		Category: logging.CategoryCrafting,
		Payload:  payload,
	})
}

// JobSkipped publishes the removal of an unaffordable queue entry.
func JobSkipped(ctx context.Context, pub logging.Publisher, tick uint64, payload CraftPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventJobSkipped,
		Tick:     tick,
		Actor:    recipeRef(payload.Recipe),
		Severity: logging.SeverityWarn,
		Category: logging.CategoryCrafting,
		Payload:  payload,
	})
}
