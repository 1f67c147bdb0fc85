// Package skill drives timed gathering actions. One skill at most is
// active across the whole state; a fixed-interval tick burns down the
// active action's remaining time and executes completed cycles.
package skill

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"emberhollow/server/content"
	"emberhollow/server/internal/modifier"
	"emberhollow/server/internal/state"
	"emberhollow/server/logging"
	logprog "emberhollow/server/logging/progression"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrLevelTooLow   = errors.New("level too low")
)

// MinCycleMs is the floor for a single cycle's duration regardless of
// speed bonuses.
const MinCycleMs = 200

// Engine executes skill actions against a GameState. It holds no state
// of its own beyond its random source.
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

// Duration computes the effective cycle length for an action given the
// final speed multiplier, clamped to MinCycleMs.
func Duration(action *content.ActionDefinition, speedMultiplier float64) float64 {
	if speedMultiplier <= 0 {
		speedMultiplier = 1
	}
	d := math.Floor(float64(action.BaseTimeMs) / speedMultiplier)
	if d < MinCycleMs {
		return MinCycleMs
	}
	return d
}

// StartAction activates an action for skillID, deactivating whatever
// else was running. Effective stats are computed from current modifiers.
func (e *Engine) StartAction(ctx context.Context, g *state.GameState, skillID, actionID string, nowMs int64, tick uint64) error {
	sp, err := g.Skill(skillID)
	if err != nil {
		return err
	}
	action, ok := e.reg.Action(skillID, actionID)
	if !ok {
		return ErrUnknownAction
	}
	if sp.Level < action.RequiredLevel {
		return ErrLevelTooLow
	}

	for id, other := range g.Skills {
		if id == skillID {
			continue
		}
		other.IsActive = false
		other.WasActive = false
		other.ActionID = ""
		other.TimeLeftMs = 0
		other.DurationMs = 0
	}

	set := modifier.Aggregate(e.reg, g, nowMs)
	stats := modifier.FinalStats(e.reg, g, set, skillID)
	sp.ActionID = actionID
	sp.DurationMs = Duration(action, stats.SpeedMultiplier)
	sp.TimeLeftMs = sp.DurationMs
	sp.IsActive = true
	sp.WasActive = true
	g.ActiveSkillID = skillID

	logprog.ActionStarted(ctx, e.pub, tick, skillID, actionID)
	return nil
}

// StopSkill clears the skill's runtime fields and releases the active
// pointer when it referenced this skill.
func (e *Engine) StopSkill(ctx context.Context, g *state.GameState, skillID string, tick uint64) {
	sp, err := g.Skill(skillID)
	if err != nil {
		return
	}
	actionID := sp.ActionID
	e.clearSkillState(sp)
	if g.ActiveSkillID == skillID {
		g.ActiveSkillID = ""
	}
	if actionID != "" {
		logprog.ActionStopped(ctx, e.pub, tick, skillID)
	}
}

func (e *Engine) clearSkillState(sp *state.SkillProgress) {
	sp.IsActive = false
	sp.WasActive = false
	sp.ActionID = ""
	sp.TimeLeftMs = 0
	sp.DurationMs = 0
}

// Tick advances the active skill by dtMs. Completed cycles execute and
// the timer resets to the recomputed duration, so modifier changes made
// mid-cycle apply to the next cycle rather than retroactively.
func (e *Engine) Tick(ctx context.Context, g *state.GameState, dtMs float64, nowMs int64, tick uint64) {
	if g.ActiveSkillID == "" {
		return
	}
	sp, err := g.Skill(g.ActiveSkillID)
	if err != nil || !sp.IsActive {
		return
	}
	action, ok := e.reg.Action(g.ActiveSkillID, sp.ActionID)
	if !ok {
		// The action vanished from content. Fail closed.
		skillID, actionID := g.ActiveSkillID, sp.ActionID
		e.clearSkillState(sp)
		g.ActiveSkillID = ""
		logprog.ResumeFailed(ctx, e.pub, tick, skillID, logprog.ResumeFailedPayload{
			ActionID: actionID,
			Reason:   "action removed from content",
		})
		return
	}

	sp.TimeLeftMs -= dtMs
	if sp.TimeLeftMs > 0 {
		return
	}

	skillID := g.ActiveSkillID
	set := modifier.Aggregate(e.reg, g, nowMs)
	stats := modifier.FinalStats(e.reg, g, set, skillID)
	result := e.PerformCycle(action, stats)
	e.applyCycle(ctx, g, skillID, action, result, nowMs, tick)

	// Recompute with post-cycle state so freshly applied buffs count.
	set = modifier.Aggregate(e.reg, g, nowMs)
	stats = modifier.FinalStats(e.reg, g, set, skillID)
	sp.DurationMs = Duration(action, stats.SpeedMultiplier)
	sp.TimeLeftMs = sp.DurationMs
}

// Resume reactivates a skill after load. Only a skill whose WasActive
// flag survived the save and which matches the active pointer comes
// back; its timer is clamped into the freshly computed duration.
func (e *Engine) Resume(ctx context.Context, g *state.GameState, skillID string, nowMs int64) bool {
	sp, err := g.Skill(skillID)
	if err != nil {
		return false
	}
	if !sp.WasActive || g.ActiveSkillID != skillID || sp.ActionID == "" {
		return false
	}
	action, ok := e.reg.Action(skillID, sp.ActionID)
	if !ok {
		actionID := sp.ActionID
		e.clearSkillState(sp)
		if g.ActiveSkillID == skillID {
			g.ActiveSkillID = ""
		}
		logprog.ResumeFailed(ctx, e.pub, 0, skillID, logprog.ResumeFailedPayload{
			ActionID: actionID,
			Reason:   "action removed from content",
		})
		return false
	}

	set := modifier.Aggregate(e.reg, g, nowMs)
	stats := modifier.FinalStats(e.reg, g, set, skillID)
	sp.DurationMs = Duration(action, stats.SpeedMultiplier)
	if sp.TimeLeftMs < 0 {
		sp.TimeLeftMs = 0
	}
	if sp.TimeLeftMs > sp.DurationMs {
		sp.TimeLeftMs = sp.DurationMs
	}
	sp.IsActive = true
	return true
}

// ResumeAll resumes every resumable skill. The single-active rule means
// at most one call succeeds.
func (e *Engine) ResumeAll(ctx context.Context, g *state.GameState, nowMs int64) {
	for id := range g.Skills {
		e.Resume(ctx, g, id, nowMs)
	}
}
