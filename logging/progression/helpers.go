package progression

import (
	"context"

	"emberhollow/server/logging"
)

const (
	// EventActionStarted is emitted when a skill action begins ticking.
	EventActionStarted logging.EventType = "progression.action_started"
	// EventActionStopped is emitted when a skill action is stopped or cleared.
	EventActionStopped logging.EventType = "progression.action_stopped"
	// EventCycleCompleted is emitted once per completed action cycle.
	EventCycleCompleted logging.EventType = "progression.cycle_completed"
	// EventLevelUp is emitted when a skill gains one or more levels.
	EventLevelUp logging.EventType = "progression.level_up"
	// EventResumeFailed is emitted when a persisted action can no longer be rebuilt.
	EventResumeFailed logging.EventType = "progression.resume_failed"
)

type CyclePayload struct {
	Action   string `json:"action"`
	Resource string `json:"resource,omitempty"`
	Amount   int    `json:"amount"`
	XP       int    `json:"xp"`
	Crit     bool   `json:"crit,omitempty"`
	Doubled  bool   `json:"doubled,omitempty"`
}

type LevelUpPayload struct {
	Level    int `json:"level"`
	XPToNext int `json:"xpToNext"`
}

type ResumeFailedPayload struct {
	ActionID string `json:"actionId"`
	Reason   string `json:"reason"`
}

func skillRef(skillID string) logging.EntityRef {
	return logging.EntityRef{ID: skillID, Kind: logging.EntityKindSkill}
}

// ActionStarted publishes the start of a skill action.
func ActionStarted(ctx context.Context, pub logging.Publisher, tick uint64, skillID, actionID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventActionStarted,
		Tick:     tick,
		Actor:    skillRef(skillID),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryProgression,
		Payload:  map[string]any{"action": actionID},
	})
}

// ActionStopped publishes the end of a skill action.
func ActionStopped(ctx context.Context, pub logging.Publisher, tick uint64, skillID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventActionStopped,
		Tick:     tick,
		Actor:    skillRef(skillID),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryProgression,
	})
}

// CycleCompleted publishes the outcome of one action cycle.
func CycleCompleted(ctx context.Context, pub logging.Publisher, tick uint64, skillID string, payload CyclePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCycleCompleted,
		Tick:     tick,
		Actor:    skillRef(skillID),
		Severity: logging.SeverityDebug,
		Category: logging.CategoryProgression,
		Payload:  payload,
	})
}

// LevelUp publishes a skill level gain.
func LevelUp(ctx context.Context, pub logging.Publisher, tick uint64, skillID string, payload LevelUpPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLevelUp,
		Tick:     tick,
		Actor:    skillRef(skillID),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryProgression,
		Payload:  payload,
	})
}

// ResumeFailed publishes a failed action rebuild after load.
func ResumeFailed(ctx context.Context, pub logging.Publisher, tick uint64, skillID string, payload ResumeFailedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventResumeFailed,
		Tick:     tick,
		Actor:    skillRef(skillID),
		Severity: logging.SeverityWarn,
		Category: logging.CategoryProgression,
		Payload:  payload,
	})
}
