package combat

import (
	"context"

	"emberhollow/server/logging"
)

const (
	// EventCombatStarted is emitted when an encounter begins.
	EventCombatStarted logging.EventType = "combat.started"
	// EventCombatEnded is emitted when an encounter reaches a terminal state.
	EventCombatEnded logging.EventType = "combat.ended"
	// EventPlayerHit is emitted when the player lands a hit.
	EventPlayerHit logging.EventType = "combat.player_hit"
	// EventEnemyHit is emitted when the enemy lands a hit.
	EventEnemyHit logging.EventType = "combat.enemy_hit"
)

type StartedPayload struct {
	Enemy string `json:"enemy"`
	Style string `json:"style"`
}

type EndedPayload struct {
	Enemy  string `json:"enemy"`
	Result string `json:"result"`
	XP     int    `json:"xp,omitempty"`
}

type HitPayload struct {
	Enemy  string  `json:"enemy"`
	Damage int     `json:"damage"`
	Chance float64 `json:"chance,omitempty"`
}

func enemyRef(enemyID string) logging.EntityRef {
	return logging.EntityRef{ID: enemyID, Kind: logging.EntityKindEnemy}
}

// Started publishes the beginning of an encounter.
func Started(ctx context.Context, pub logging.Publisher, tick uint64, payload StartedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCombatStarted,
		Tick:     tick,
		Actor:    enemyRef(payload.Enemy),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// Ended publishes a terminal encounter state.
func Ended(ctx context.Context, pub logging.Publisher, tick uint64, payload EndedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCombatEnded,
		Tick:     tick,
		Actor:    enemyRef(payload.Enemy),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// PlayerHit publishes a successful player attack.
func PlayerHit(ctx context.Context, pub logging.Publisher, tick uint64, payload HitPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerHit,
		Tick:     tick,
		Actor:    enemyRef(payload.Enemy),
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// EnemyHit publishes a successful enemy attack.
func EnemyHit(ctx context.Context, pub logging.Publisher, tick uint64, payload HitPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEnemyHit,
		Tick:     tick,
		Actor:    enemyRef(payload.Enemy),
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}
